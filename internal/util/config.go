package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ConfigEnv names the environment variable holding a default config file.
const ConfigEnv = "RILL_CONFIG"

const DefaultPrompt = ">> "

type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	DebugAST string `toml:"debug_ast"`
	DumpFile string `toml:"debug_ast_file"`
	History  string `toml:"history"`
	Prompt   string `toml:"prompt"`
}

// LoadConfigFile decodes the TOML file at path over config, leaving fields
// the file does not mention untouched. Unknown keys are an error.
func LoadConfigFile(path string, config *Configuration) error {
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key '%s' in config file '%s'", undecoded[0], path)
	}
	return nil
}

// Override copies every field named in set from flags onto c. Flags the
// user did not pass keep the file's values.
func (c *Configuration) Override(flags Configuration, set map[string]bool) {
	if set["log-level"] {
		c.LogLevel = flags.LogLevel
	}
	if set["log-file"] {
		c.LogFile = flags.LogFile
	}
	if set["debug-ast"] {
		c.DebugAST = flags.DebugAST
	}
	if set["debug-ast-file"] {
		c.DumpFile = flags.DumpFile
	}
	if set["history"] {
		c.History = flags.History
	}
	if set["prompt"] {
		c.Prompt = flags.Prompt
	}
}
