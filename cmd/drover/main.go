package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/launcher"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitConnFailed = 2
	ExitTimeout    = 3
)

// Config holds the CLI configuration.
type Config struct {
	Browser  string // registered browser type: attach, chrome, chromium
	Host     string
	Port     int
	Headless bool
	Binary   string // explicit browser binary path
	Timeout  time.Duration
	Output   string // json, ndjson, text
	Verbose  bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Sessions overrides the session registry for testing. If nil, the
	// launcher registry is used.
	Sessions *drover.Registry
}

// DefaultConfig returns the default configuration with built-in defaults.
// The config file and environment variables are applied later in the chain.
func DefaultConfig() *Config {
	return &Config{
		Browser: "attach",
		Host:    "localhost",
		Port:    9222,
		Timeout: 10 * time.Second,
		Output:  "json",
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func main() {
	cfg := DefaultConfig()
	os.Exit(run(os.Args[1:], cfg))
}

// flagValues stores values parsed from CLI flags before they get overwritten.
type flagValues struct {
	browser  string
	host     string
	port     int
	headless bool
	binary   string
	timeout  time.Duration
	output   string
	verbose  bool
}

func run(args []string, cfg *Config) int {
	// Parse into temporary variables so we can snapshot values before overwriting
	var fv flagValues
	fs := flag.NewFlagSet("drover", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	fs.StringVar(&fv.browser, "browser", cfg.Browser, "Browser type: attach, chrome, chromium (env: DROVER_BROWSER)")
	fs.StringVar(&fv.host, "host", cfg.Host, "Debug endpoint host (env: DROVER_HOST)")
	fs.IntVar(&fv.port, "port", cfg.Port, "Debug endpoint port (env: DROVER_PORT)")
	fs.BoolVar(&fv.headless, "headless", cfg.Headless, "Launch the browser headless")
	fs.StringVar(&fv.binary, "binary", cfg.Binary, "Browser binary path")
	fs.DurationVar(&fv.timeout, "timeout", cfg.Timeout, "Command timeout")
	fs.StringVar(&fv.output, "output", cfg.Output, "Output format: json, ndjson, text")
	fs.BoolVar(&fv.verbose, "verbose", cfg.Verbose, "Log protocol commands to stderr")

	fs.Usage = func() { printUsage(cfg, fs) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitError
	}

	// Track which flags were explicitly set on the command line
	explicitFlags := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		explicitFlags[f.Name] = true
	})

	// Config precedence: built-in defaults < .droverrc < env vars < CLI flags
	loadConfigFile(cfg)
	applyEnvVars(cfg, explicitFlags)
	reapplyExplicitFlags(cfg, &fv, explicitFlags)

	remaining := fs.Args()
	if len(remaining) < 1 {
		printUsage(cfg, fs)
		return ExitError
	}

	cmd := remaining[0]

	info, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(cfg.Stderr, "unknown command: %s\n", cmd)
		return ExitError
	}
	return info.Run(cfg, remaining[1:])
}

// applyEnvVars applies environment variables to cfg, but only for fields
// not already set by explicit CLI flags.
func applyEnvVars(cfg *Config, explicit map[string]bool) {
	if !explicit["browser"] {
		if v := os.Getenv("DROVER_BROWSER"); v != "" {
			cfg.Browser = v
		}
	}
	if !explicit["host"] {
		if v := os.Getenv("DROVER_HOST"); v != "" {
			cfg.Host = v
		}
	}
	if !explicit["port"] {
		if v := os.Getenv("DROVER_PORT"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				cfg.Port = i
			}
		}
	}
}

// reapplyExplicitFlags re-applies flag values that were explicitly set on
// the command line, since .droverrc loading may have overwritten them.
func reapplyExplicitFlags(cfg *Config, fv *flagValues, explicit map[string]bool) {
	if explicit["browser"] {
		cfg.Browser = fv.browser
	}
	if explicit["host"] {
		cfg.Host = fv.host
	}
	if explicit["port"] {
		cfg.Port = fv.port
	}
	if explicit["headless"] {
		cfg.Headless = fv.headless
	}
	if explicit["binary"] {
		cfg.Binary = fv.binary
	}
	if explicit["timeout"] {
		cfg.Timeout = fv.timeout
	}
	if explicit["output"] {
		cfg.Output = fv.output
	}
	if explicit["verbose"] {
		cfg.Verbose = fv.verbose
	}
}

func (cfg *Config) registry() *drover.Registry {
	if cfg.Sessions != nil {
		return cfg.Sessions
	}
	return launcher.Registry()
}

func (cfg *Config) logger() *slog.Logger {
	if !cfg.Verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(cfg.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// withSession executes a function with a live session, then outputs its
// result. Teardown failure is reported but does not override the command's
// own outcome.
func withSession(cfg *Config, fn func(ctx context.Context, sess drover.Session) (interface{}, error)) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sess, err := cfg.registry().New(ctx, cfg.Browser, drover.Options{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Headless:   cfg.Headless,
		BinaryPath: cfg.Binary,
		Logger:     cfg.logger(),
	})
	if err != nil {
		fmt.Fprintf(cfg.Stderr, "error: %v\n", err)
		return ExitConnFailed
	}
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			fmt.Fprintf(cfg.Stderr, "warning: closing session: %v\n", err)
		}
	}()

	result, err := fn(ctx, sess)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintln(cfg.Stderr, "error: timeout")
			return ExitTimeout
		}
		fmt.Fprintf(cfg.Stderr, "error: %v\n", err)
		return ExitError
	}

	return outputResult(cfg, result)
}
