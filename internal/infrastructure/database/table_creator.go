// Package database provides schema creation for the Fund Road store.
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor is satisfied by *sql.DB and the persistence wrapper around it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TableCreator handles the creation of the database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent.
func (tc *TableCreator) CreateSchema(ctx context.Context, db Executor) error {
	for _, tableSQL := range tables {
		if _, err := db.ExecContext(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// TableNames lists the tables CreateSchema manages, in creation order.
func TableNames() []string {
	return []string{"users", "step_completion", "substep_completion", "user_resources", "resource_attachments"}
}

// Column types stay within what both SQLite and Postgres accept. Timestamps
// are RFC 3339 text.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, display_name TEXT NOT NULL, password_hash TEXT NOT NULL, created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS step_completion (user_id TEXT NOT NULL REFERENCES users(id), step_id INTEGER NOT NULL, completed BOOLEAN NOT NULL, updated_at TEXT NOT NULL, PRIMARY KEY (user_id, step_id))`,
	`CREATE TABLE IF NOT EXISTS substep_completion (user_id TEXT NOT NULL REFERENCES users(id), step_id INTEGER NOT NULL, substep_title TEXT NOT NULL, completed BOOLEAN NOT NULL, updated_at TEXT NOT NULL, PRIMARY KEY (user_id, step_id, substep_title))`,
	`CREATE TABLE IF NOT EXISTS user_resources (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id), step_id INTEGER NOT NULL, substep_title TEXT NOT NULL, resource_type TEXT NOT NULL, schema_version INTEGER NOT NULL, payload TEXT NOT NULL, updated_at TEXT NOT NULL, UNIQUE (user_id, step_id, substep_title, resource_type))`,
	`CREATE TABLE IF NOT EXISTS resource_attachments (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id), step_id INTEGER NOT NULL, substep_title TEXT NOT NULL, resource_type TEXT NOT NULL, file_name TEXT NOT NULL, content_type TEXT NOT NULL, size_bytes BIGINT NOT NULL, object_key TEXT NOT NULL, thumbnail_key TEXT, created_at TEXT NOT NULL)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	`CREATE INDEX IF NOT EXISTS idx_step_completion_user ON step_completion(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_substep_completion_user ON substep_completion(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_resources_user ON user_resources(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_resource_attachments_resource ON resource_attachments(user_id, step_id, substep_title, resource_type)`,
}
