// Package config reads command-line flags with environment defaults.
package config

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for flag defaults
const (
	EnvPort       = "IFTAR_PORT"
	EnvDB         = "IFTAR_DB"
	EnvCategories = "IFTAR_CATEGORIES"
	EnvLogLevel   = "IFTAR_LOGLEVEL"
)

// DefaultEnvFile is read for defaults when present
const DefaultEnvFile = ".env"

// Config holds the startup options
type Config struct {
	Port           int
	DBPath         string
	CategoriesFile string
	LogLevel       string
	NoBanner       bool
	NoKeyboard     bool
	ShowVersion    bool
}

// Addr returns the listen address for Port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load parses args (without the program name). Flag defaults come from the
// IFTAR_* environment, then from a .env file in the working directory, then
// from built-in values. Returns flag.ErrHelp when -help is given.
func Load(args []string, output io.Writer) (*Config, error) {
	return load(args, output, os.LookupEnv, DefaultEnvFile)
}

func load(args []string, output io.Writer, lookup func(string) (string, bool), envFile string) (*Config, error) {
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	env := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if v := strings.TrimSpace(dotenv[key]); v != "" {
			return v
		}
		return def
	}

	defPort, err := strconv.Atoi(env(EnvPort, "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
	}

	cfg := &Config{}
	fset := flag.NewFlagSet("iftarlantern", flag.ContinueOnError)
	fset.SetOutput(output)
	fset.IntVar(&cfg.Port, "port", defPort, "HTTP server port")
	fset.StringVar(&cfg.DBPath, "db", env(EnvDB, "iftar-lantern.db"), "SQLite database path")
	fset.StringVar(&cfg.CategoriesFile, "categories", env(EnvCategories, ""), "YAML category registry (built-in categories if empty)")
	fset.StringVar(&cfg.LogLevel, "loglevel", env(EnvLogLevel, "info"), "Log level (debug, info, warn, error)")
	fset.BoolVar(&cfg.NoBanner, "nobanner", false, "Skip the startup banner")
	fset.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")
	fset.Usage = func() {
		fmt.Fprint(fset.Output(), usage)
	}

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fset.Args(), " "))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DBPath == "" {
		return nil, stderrors.New("database path must not be empty")
	}

	return cfg, nil
}

const usage = `Iftar Lantern - no-repeat iftar meal picker

Usage:
  iftarlantern [options]

Options:
  -port int          HTTP server port (default 8080, env IFTAR_PORT)
  -db string         SQLite database path (default "iftar-lantern.db", env IFTAR_DB)
  -categories string YAML category registry (env IFTAR_CATEGORIES)
  -loglevel str      Log level: debug, info, warn, error (default "info", env IFTAR_LOGLEVEL)
  -nobanner          Skip the startup banner
  -nokeyboard        Disable keyboard shortcuts
  -version           Show version and exit
  -help              Show this help message

Defaults are also read from a .env file in the working directory.

Keyboard Shortcuts (when enabled):
  o              Open the picker in the browser
  g              Generate a combo and print it
  r              Reset the no-repeat cycle
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  iftarlantern                              # Run on port 8080 with iftar-lantern.db
  iftarlantern -port 9000                   # Run on port 9000
  iftarlantern -categories family.yaml      # Use a custom category list
  iftarlantern -nokeyboard -nobanner        # Run as a background service

`
