package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileName = "config.toml"
	HomeEnv        = "LX_HOME"
	DefaultBanner  = "Relp v1.0.0"
	DefaultPrompt  = "> "
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	// ConfigFile is the file the configuration was loaded from, if any.
	ConfigFile string `toml:"-"`

	LogLevel     string        `toml:"log_level"`
	LogFile      string        `toml:"log_file"`
	DebugAST     string        `toml:"debug_ast"`
	MaxCallDepth int           `toml:"max_call_depth"`
	History      HistoryConfig `toml:"history"`
	Repl         ReplConfig    `toml:"repl"`
}

type HistoryConfig struct {
	// DSN selects the store: empty or a path for a plain file, or a
	// sqlite://, mysql:// or postgres:// URL.
	DSN   string `toml:"dsn"`
	Limit int    `toml:"limit"`
}

type ReplConfig struct {
	Prompt       string `toml:"prompt"`
	Banner       string `toml:"banner"`
	Echo         bool   `toml:"echo"`
	AbortOnError bool   `toml:"abort_on_error"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Version:      "dev",
		BuildDate:    "unknown",
		Commit:       "unknown",
		LogLevel:     "none",
		MaxCallDepth: 10000,
		History: HistoryConfig{
			Limit: 1000,
		},
		Repl: ReplConfig{
			Prompt: DefaultPrompt,
			Banner: DefaultBanner,
		},
	}
}

// LoadConfiguration reads path over the defaults. With an empty path the
// first of $LX_HOME/config.toml and ~/.lx/config.toml that exists is used,
// and having neither is not an error.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config '%s': %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("config '%s': unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.ConfigFile = path

	return cfg, cfg.Validate()
}

// FindConfigFile returns the default configuration file location or "".
func FindConfigFile() string {
	var candidates []string
	if home := os.Getenv(HomeEnv); home != "" {
		candidates = append(candidates, filepath.Join(home, ConfigFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".lx", ConfigFileName))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		} else if !errors.Is(err, fs.ErrNotExist) {
			return c // let the loader report the problem
		}
	}
	return ""
}

func (c Configuration) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "none", "":
	default:
		return fmt.Errorf("invalid log_level '%s'", c.LogLevel)
	}
	switch c.DebugAST {
	case "", "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid debug_ast format '%s', want json, yaml or text", c.DebugAST)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("invalid history limit %d", c.History.Limit)
	}
	return nil
}
