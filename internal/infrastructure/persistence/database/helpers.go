// Package database provides database helper functions
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/pkg/config"
)

// TimeLayout is how timestamps are stored in TEXT columns on every dialect.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t in UTC RFC3339 with nanoseconds
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a timestamp written by FormatTime
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", value, err)
	}
	return t, nil
}

// TestConnectionWithLogger runs a trivial query against an open connection.
func TestConnectionWithLogger(ctx context.Context, db *DB, logger *logging.ChanneledLogger) error {
	start := time.Now()

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		logger.Database().Error("Connection test query failed", "error", err.Error())
		return fmt.Errorf("connection test query failed: %w", err)
	}
	if result != 1 {
		logger.Database().Error("Unexpected connection test result", "result", result, "expected", 1)
		return fmt.Errorf("unexpected query result: %d", result)
	}

	logger.Database().Debug("Connection test successful", "duration", time.Since(start))
	return nil
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.DBSlowQueryThreshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds threshold
// and logs it using the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if logger == nil {
		return
	}
	threshold := GetSlowQueryThreshold()

	// Schema creation runs once and is allowed to be slower
	if strings.HasPrefix(strings.TrimSpace(query), "CREATE") {
		threshold *= 5
	}

	if duration > threshold {
		logger.LogSlowQuery(query, duration)
	}
}

// IsNoRows reports whether err is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
