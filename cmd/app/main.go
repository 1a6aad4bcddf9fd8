package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"rill/internal/history"
	"rill/internal/interp"
	"rill/internal/parser"
	"rill/internal/repl"
	"rill/internal/util"
)

const (
	DefaultHistoryFile = ".rill_history"
)

var (
	// Version is the current version of the rill binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// config file
	configFile string
	// flag values; the config file fills whatever is not passed explicitly
	flags util.Configuration
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Read settings from a TOML file (default $"+util.ConfigEnv+")")
	// parser config
	flag.StringVar(&flags.DebugAST, "debug-ast", "", "Dump the checked tree before running: text, json, pretty")
	flag.StringVar(&flags.DumpFile, "debug-ast-file", "", "Write the checked tree as JSON to this file before running")
	// repl config
	flag.StringVar(&flags.History, "history", "", "REPL history target: a file path, sqlite3://, mysql:// or postgres://")
	flag.StringVar(&flags.Prompt, "prompt", util.DefaultPrompt, "REPL prompt")
	// log config
	flag.StringVar(&flags.LogLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.LogFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return interp.ExitOK
	}

	if help {
		printHelp()
		return interp.ExitOK
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return interp.ExitUsage
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	if logWriter != os.Stderr {
		defer logWriter.Close()
	}
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	switch config.DebugAST {
	case "", parser.DumpText, parser.DumpJSON, parser.DumpPretty:
	default:
		fmt.Fprintf(os.Stderr, "unknown -debug-ast mode '%s'; use text, json or pretty\n", config.DebugAST)
		return interp.ExitUsage
	}

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: rill [options] [script]")
		return interp.ExitUsage
	}

	opts := interp.Options{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stdin:    os.Stdin,
		DumpAST:  config.DebugAST,
		DumpFile: config.DumpFile,
	}

	if flag.NArg() == 1 {
		return runFile(flag.Arg(0), opts)
	}
	return runPrompt(config, opts)
}

func loadConfiguration() (util.Configuration, error) {
	config := util.Configuration{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    Commit,
		LogLevel:  flags.LogLevel,
		LogFile:   flags.LogFile,
		DebugAST:  flags.DebugAST,
		DumpFile:  flags.DumpFile,
		History:   flags.History,
		Prompt:    flags.Prompt,
	}

	path := configFile
	if path == "" {
		path = os.Getenv(util.ConfigEnv)
	}
	if path == "" {
		return config, nil
	}

	if err := util.LoadConfigFile(path, &config); err != nil {
		return config, err
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	config.Override(flags, set)
	return config, nil
}

func runFile(path string, opts interp.Options) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read script '%s': %v\n", path, err)
		return interp.ExitNoInput
	}
	slog.Info("running script", slog.String("path", path), slog.Int("bytes", len(source)))
	return interp.Run(string(source), opts).ExitCode
}

func runPrompt(config util.Configuration, opts interp.Options) int {
	target := config.History
	if target == "" {
		if home, err := os.UserHomeDir(); err == nil {
			target = filepath.Join(home, DefaultHistoryFile)
		}
	}

	var store history.Store
	if target != "" {
		s, err := history.Open(target)
		if err != nil {
			slog.Warn("history disabled", slog.String("target", target), slog.Any("error", err))
		} else {
			store = s
			defer store.Close()
		}
	}

	if err := repl.Start(opts, config.Prompt, store, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return interp.ExitRuntime
	}
	return interp.ExitOK
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("rill version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: rill [options] [script]

Options:
  -config <file>     Read settings from a TOML file. Default is $%s.
  -debug-ast <mode>  Dump the checked tree before running: text, json or pretty.
  -debug-ast-file <path>
                     Write the checked tree as JSON to a file before running.
  -history <target>  REPL history: a file path, sqlite3://<path>, mysql://<dsn> or postgres://<url>.
                     Default is ~/%s.
  -prompt <text>     REPL prompt. Default is '%s'.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Without a script, rill starts an interactive prompt. A line that opens a
block keeps reading until the block is closed.

Exit status:
  0   success
  64  usage error
  65  the script failed to check
  66  the script could not be read
  70  the script failed while running

Examples:
  rill                          Start the interactive prompt
  rill -log-level=debug         Start with debug logging enabled
  rill myfile.rill              Check and run the provided file
  rill -debug-ast=text f.rill   Print the checked tree, then run

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.ConfigEnv, DefaultHistoryFile, util.DefaultPrompt, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
