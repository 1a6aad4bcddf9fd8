package util

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rill.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
history = "sqlite3:///tmp/rill.db"
prompt = "rill> "
debug_ast_file = "tree.json"
`)
	config := Configuration{LogLevel: "error", DebugAST: "text"}
	if err := LoadConfigFile(path, &config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.LogLevel != "debug" || config.History != "sqlite3:///tmp/rill.db" || config.Prompt != "rill> " {
		t.Errorf("file values not applied: %+v", config)
	}
	if config.DumpFile != "tree.json" {
		t.Errorf("debug_ast_file not applied, got %q", config.DumpFile)
	}
	if config.DebugAST != "text" {
		t.Errorf("keys missing from the file must keep their value, got %q", config.DebugAST)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []string{
		`log_level = `,
		`colour = "always"`,
	}
	for i, body := range tests {
		var config Configuration
		if err := LoadConfigFile(writeConfig(t, body), &config); err == nil {
			t.Errorf("tests[%d] - expected an error for %q", i, body)
		}
	}

	var config Configuration
	if err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"), &config); err == nil {
		t.Errorf("a missing file must be reported")
	}
}

func TestOverride(t *testing.T) {
	config := Configuration{LogLevel: "debug", History: "file", Prompt: "$ "}
	flags := Configuration{LogLevel: "warn", History: "ignored", Prompt: "ignored"}

	flags.DumpFile = "out.json"
	config.Override(flags, map[string]bool{"log-level": true, "debug-ast-file": true})
	if config.DumpFile != "out.json" {
		t.Errorf("explicit -debug-ast-file must win, got %q", config.DumpFile)
	}
	if config.LogLevel != "warn" {
		t.Errorf("explicit flags must win, got %q", config.LogLevel)
	}
	if config.History != "file" || config.Prompt != "$ " {
		t.Errorf("flags not passed must keep the file values: %+v", config)
	}
}
