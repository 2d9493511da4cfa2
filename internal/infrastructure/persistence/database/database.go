// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/pkg/config"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Dialect selects placeholder syntax. Schema and upserts are shared.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "sqlite3", "sqlite", "libsql":
		return DialectSQLite, nil
	case "pgx", "postgres":
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driverName)
	}
}

// DB represents a wrapper around the standard SQL database connection. The
// context-aware query methods rebind placeholders for the dialect and report
// slow statements.
type DB struct {
	*sql.DB
	dialect Dialect
	logger  *logging.ChanneledLogger
}

// Options configures the pool of a new connection.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultOptions reads the pool settings from config.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(config.DBConnMaxIdleMinutes) * time.Minute,
	}
}

// DataSourceName appends the auth token libsql expects to remote URLs.
func DataSourceName(driverName, databaseURL, authToken string) string {
	if driverName == "libsql" && authToken != "" {
		return fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
	}
	return databaseURL
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(ctx context.Context, driverName, dataSourceName string, opts Options, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	dialect, err := DialectFor(driverName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driverName, "duration", duration)
	CheckAndLogSlowQuery(logger, "DATABASE_CONNECTION", duration)

	return &DB{DB: db, dialect: dialect, logger: logger}, nil
}

// Wrap adopts an already opened handle. Used by tests with in-memory databases.
func Wrap(db *sql.DB, dialect Dialect, logger *logging.ChanneledLogger) *DB {
	return &DB{DB: db, dialect: dialect, logger: logger}
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites `?` placeholders as `$n` for Postgres. Question marks inside
// single-quoted literals are left alone.
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			quoted = !quoted
			b.WriteByte(ch)
		case ch == '?' && !quoted:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, db.Rebind(query), args...)
	CheckAndLogSlowQuery(db.logger, query, time.Since(start))
	return result, err
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, db.Rebind(query), args...)
	CheckAndLogSlowQuery(db.logger, query, time.Since(start))
	return rows, err
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, db.Rebind(query), args...)
	CheckAndLogSlowQuery(db.logger, query, time.Since(start))
	return row
}
