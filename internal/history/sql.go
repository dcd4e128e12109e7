package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS lx_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	line TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS lx_history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	line TEXT NOT NULL,
	created_at DATETIME(3) NOT NULL
)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS lx_history (
	id BIGSERIAL PRIMARY KEY,
	line TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
}

// SQLStore keeps history in the lx_history table of a database/sql database.
type SQLStore struct {
	db     *sql.DB
	driver string
	limit  int
}

// OpenSQL connects with driver, creates the history table when missing and
// returns the store. source is in the driver's own connection syntax, except
// that postgres also accepts a URL.
func OpenSQL(ctx context.Context, driver, source string, limit int) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported history driver '%s'", driver)
	}

	source, err := normalizeSource(driver, source)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	slog.Debug("history store ready", slog.String("driver", driver), slog.Int("limit", limit))
	return &SQLStore{db: db, driver: driver, limit: limit}, nil
}

func normalizeSource(driver, source string) (string, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(source)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return cfg.FormatDSN(), nil
	case DriverPostgres:
		if strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") {
			conn, err := pq.ParseURL(source)
			if err != nil {
				return "", fmt.Errorf("invalid postgres url: %w", err)
			}
			return conn, nil
		}
		return source, nil
	case DriverSQLite:
		if source == "" {
			return "", fmt.Errorf("missing sqlite database path")
		}
		return source, nil
	}
	return source, nil
}

func (s *SQLStore) Load(ctx context.Context) ([]string, error) {
	query := "SELECT line FROM lx_history ORDER BY id ASC"
	var args []interface{}
	if s.limit > 0 {
		query = "SELECT line FROM (SELECT id, line FROM lx_history ORDER BY id DESC LIMIT ?) recent ORDER BY id ASC"
		args = append(args, s.limit)
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return lines, nil
}

func (s *SQLStore) Append(ctx context.Context, line string) error {
	query := s.bind("INSERT INTO lx_history (line, created_at) VALUES (?, ?)")
	if _, err := s.db.ExecContext(ctx, query, line, time.Now().UTC()); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Driver() string {
	return s.driver
}

// bind rewrites ? placeholders into the driver's style.
func (s *SQLStore) bind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var out strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			out.WriteString("$" + strconv.Itoa(n))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
