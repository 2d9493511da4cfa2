// Package dbtest opens throwaway in-memory databases with the full schema.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	schema "github.com/fundroad/fundroad-go/internal/infrastructure/database"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database"
)

// NewSQLite returns a private in-memory database using the pure Go driver.
// A single connection keeps every statement on the same memory database.
func NewSQLite(t testing.TB) *database.DB {
	t.Helper()

	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	db := database.Wrap(raw, database.DialectSQLite, logging.NewDiscardLogger())
	require.NoError(t, schema.NewTableCreator().CreateSchema(context.Background(), db))
	return db
}
