package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
log_level = "debug"
debug_ast = "yaml"

[history]
dsn = "sqlite:///tmp/lx.db"
limit = 50

[repl]
prompt = "lx> "
echo = true
abort_on_error = true
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"log_level", cfg.LogLevel, "debug"},
		{"debug_ast", cfg.DebugAST, "yaml"},
		{"history.dsn", cfg.History.DSN, "sqlite:///tmp/lx.db"},
		{"history.limit", cfg.History.Limit, 50},
		{"repl.prompt", cfg.Repl.Prompt, "lx> "},
		{"repl.banner", cfg.Repl.Banner, DefaultBanner},
		{"repl.echo", cfg.Repl.Echo, true},
		{"repl.abort_on_error", cfg.Repl.AbortOnError, true},
		{"max_call_depth", cfg.MaxCallDepth, 10000},
		{"config file", cfg.ConfigFile, path},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Fatalf("%s wrong. expected=%v, got=%v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestLoadConfigurationUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
log_level = "info"
colour = "red"

[repl]
promt = "?"
`)

	_, err := LoadConfiguration(path)
	if err == nil {
		t.Fatalf("expected an error for unknown keys")
	}
	if !strings.Contains(err.Error(), "colour") || !strings.Contains(err.Error(), "repl.promt") {
		t.Fatalf("error does not name the unknown keys: %v", err)
	}
}

func TestLoadConfigurationInvalidValues(t *testing.T) {
	tests := []string{
		`log_level = "loud"`,
		`debug_ast = "xml"`,
		"[history]\nlimit = -1",
		`log_level = 3`,
	}

	for i, content := range tests {
		path := writeConfig(t, t.TempDir(), content)
		if _, err := LoadConfiguration(path); err == nil {
			t.Fatalf("tests[%d] - expected an error for %q", i, content)
		}
	}
}

func TestLoadConfigurationMissingExplicitFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadConfigurationFromHome(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `log_level = "warn"`)
	t.Setenv(HomeEnv, home)

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log level wrong. expected=warn, got=%s", cfg.LogLevel)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfiguration() {
		t.Fatalf("expected defaults, got=%+v", cfg)
	}
}
