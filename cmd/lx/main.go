package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"lx/internal/diag"
	"lx/internal/parser"
	"lx/internal/repl"
	"lx/internal/runner"
	"lx/internal/util"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
)

var (
	// Version, BuildDate and Commit are set at link time with -ldflags -X.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// config file, overridden by the flags below
	configFile string
	// logging
	logLevel string
	logFile  string
	// runtime config
	debugAST    string
	historyDSN  string
	echo        bool
	maxDepth    int
	abortOnFail bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file")
	// parser config
	flag.StringVar(&debugAST, "debug-ast", "", "Render the AST as json, yaml or text")
	// repl config
	flag.StringVar(&historyDSN, "history", "", "REPL history store: a file path or a sqlite://, mysql:// or postgres:// DSN")
	flag.BoolVar(&echo, "echo", false, "Print the value of each REPL input")
	flag.BoolVar(&abortOnFail, "abort-on-error", false, "End the REPL session on the first error")
	// evaluator config
	flag.IntVar(&maxDepth, "max-depth", 0, "Maximum nested function calls (0 keeps the configured value)")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return 0
	}

	if help {
		printHelp()
		return 0
	}

	config, err := util.LoadConfiguration(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	applyFlags(&config)
	if err := config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Creates a new Logger that uses a JSONHandler to write to standard error
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter, closeLog := configureLogWriter(config)
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))
	slog.Debug("configuration loaded",
		slog.String("file", config.ConfigFile),
		slog.String("log-level", config.LogLevel),
		slog.String("debug-ast", config.DebugAST),
	)

	// Optional profiling via env var: LX_CPU_PROFILE=<path>
	if profPath := os.Getenv("LX_CPU_PROFILE"); profPath != "" {
		stop := startCPUProfile(profPath)
		defer stop()
	}

	var opts []runner.Option
	if config.DebugAST != "" {
		opts = append(opts, runner.WithASTOutput(os.Stderr))
	}
	r, err := runner.New(config, os.Stdout, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch flag.NArg() {
	case 0:
		if err := repl.Start(context.Background(), config, r, os.Stdout, os.Stderr); err != nil {
			return 1
		}
		return 0
	case 1:
		if err := r.ExecuteFile(flag.Arg(0)); err != nil {
			reportError(r, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "expected at most one file, got %d arguments\n", flag.NArg())
		return 2
	}
}

// applyFlags overrides configuration values with the flags given on the
// command line.
func applyFlags(config *util.Configuration) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "debug-ast":
			config.DebugAST = debugAST
		case "history":
			config.History.DSN = historyDSN
		case "echo":
			config.Repl.Echo = echo
		case "abort-on-error":
			config.Repl.AbortOnError = abortOnFail
		case "max-depth":
			if maxDepth != 0 {
				config.MaxCallDepth = maxDepth
			}
		}
	})
}

func reportError(r *runner.Runner, err error) {
	var d *diag.Error
	if errors.As(err, &d) {
		fmt.Fprintln(os.Stderr, r.Render(err))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func configureLogWriter(config util.Configuration) (io.Writer, func()) {
	noop := func() {}
	if strings.EqualFold(config.LogLevel, "none") || config.LogLevel == "" {
		return io.Discard, noop
	}
	if config.LogFile == "" {
		return os.Stderr, noop
	}

	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", config.LogFile, err)
		return os.Stderr, noop
	}
	logWriter, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", config.LogFile, err)
		return os.Stderr, noop
	}
	return logWriter, func() { _ = logWriter.Close() }
}

func startCPUProfile(path string) func() {
	profFile, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create CPU profile %q: %v\n", path, err)
		return func() {}
	}
	if err := pprof.StartCPUProfile(profFile); err != nil {
		fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
		_ = profFile.Close()
		return func() {}
	}
	return func() {
		pprof.StopCPUProfile()
		_ = profFile.Close()
	}
}

func printVersion() {
	fmt.Printf("lx version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: lx [options] [filename]

Options:
  -config <path>       Load configuration from a TOML file. Default is $LX_HOME/config.toml, then ~/.lx/config.toml.
  -debug-ast <format>  Render the AST as %s, %s or %s. Files dump to <file>.ast.<format>, the REPL to stderr.
  -history <dsn>       Where the REPL keeps its history. Default is ~/.lx_history.
  -echo                Print the value of each REPL input.
  -abort-on-error      End the REPL session on the first error.
  -max-depth <n>       Maximum nested function calls. Default is 10000,
                       0 keeps the configured value.
  -help                Display this help information and exit.
  -version             Display version information and exit.
  -log-level <level>   Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>     Specify a log file to write logs. Default is stderr.

Details:
Without a filename lx starts an interactive session. Type :quit or press
Ctrl-D to leave it.

Examples:
  lx                                 Start the REPL
  lx main.lx                         Execute the provided lx file
  lx -history sqlite://lx.db         Keep REPL history in a sqlite database
  lx -log-level=debug main.lx        Execute with debug logging enabled

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, parser.FormatJSON, parser.FormatYAML, parser.FormatText, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
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
