package main

import (
	"flag"
	"io"
	"log/slog"
	"lx/internal/util"
	"os"
	"path/filepath"
	"testing"
)

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", slog.LevelError},
		{"", slog.LevelError},
	}

	for i, tt := range tests {
		if got := logLevelFromString(tt.input); got != tt.expected {
			t.Fatalf("tests[%d] - level wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

func TestConfigureLogWriter(t *testing.T) {
	config := util.DefaultConfiguration()

	w, closeLog := configureLogWriter(config)
	closeLog()
	if w != io.Discard {
		t.Fatalf("log level none should discard, got=%T", w)
	}

	config.LogLevel = "info"
	w, closeLog = configureLogWriter(config)
	closeLog()
	if w != os.Stderr {
		t.Fatalf("expected stderr, got=%T", w)
	}

	config.LogFile = filepath.Join(t.TempDir(), "logs", "lx.log")
	w, closeLog = configureLogWriter(config)
	if _, err := io.WriteString(w, "{}\n"); err != nil {
		t.Fatalf("write log: %v", err)
	}
	closeLog()
	if _, err := os.Stat(config.LogFile); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestApplyFlagsMaxDepth(t *testing.T) {
	t.Cleanup(func() { maxDepth = 0 })

	tests := []struct {
		value    string
		expected int
	}{
		{"0", 250},
		{"40", 40},
	}

	for i, tt := range tests {
		if err := flag.Set("max-depth", tt.value); err != nil {
			t.Fatalf("tests[%d] - set flag: %v", i, err)
		}
		config := util.DefaultConfiguration()
		config.MaxCallDepth = 250
		applyFlags(&config)
		if config.MaxCallDepth != tt.expected {
			t.Fatalf("tests[%d] - MaxCallDepth wrong. expected=%d, got=%d", i, tt.expected, config.MaxCallDepth)
		}
	}
}
