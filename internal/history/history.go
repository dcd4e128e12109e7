// Package history persists REPL input lines between sessions.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const DefaultFileName = ".lx_history"

type Store interface {
	// Load returns stored lines oldest first, at most the configured limit.
	Load(ctx context.Context) ([]string, error)
	Append(ctx context.Context, line string) error
	Close() error
}

// Open picks a store from dsn. An empty dsn means ~/.lx_history; sqlite://,
// mysql:// and postgres:// URLs select a database; anything else is a file
// path. A limit of 0 keeps every line.
func Open(ctx context.Context, dsn string, limit int) (Store, error) {
	scheme, rest, hasScheme := strings.Cut(dsn, "://")
	if !hasScheme {
		if dsn == "" {
			path, err := DefaultFilePath()
			if err != nil {
				return nil, err
			}
			dsn = path
		}
		scheme, rest = "file", dsn
	}

	slog.Debug("open history", slog.String("scheme", scheme))

	var (
		store Store
		err   error
	)
	switch scheme {
	case "file":
		store, err = openFile(rest, limit)
	case "sqlite", "sqlite3":
		store, err = openSQL(ctx, DriverSQLite, rest, limit)
	case "mysql":
		store, err = openSQL(ctx, DriverMySQL, rest, limit)
	case "postgres", "postgresql":
		store, err = openSQL(ctx, DriverPostgres, dsn, limit)
	default:
		return nil, fmt.Errorf("unsupported history scheme '%s'", scheme)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openFile(path string, limit int) (Store, error) {
	s, err := OpenFile(path, limit)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQL(ctx context.Context, driver, source string, limit int) (Store, error) {
	s, err := OpenSQL(ctx, driver, source, limit)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// keepLast trims lines to the newest limit entries.
func keepLast(lines []string, limit int) []string {
	if limit > 0 && len(lines) > limit {
		return lines[len(lines)-limit:]
	}
	return lines
}
