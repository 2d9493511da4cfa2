// Package user provides the concrete SQL-based implementation of the user
// domain repository.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fundroad/fundroad-go/internal/domain/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database"
)

// SQLUserRepository is the SQL-based implementation of user.Repository.
type SQLUserRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLUserRepository creates a new instance of the repository.
func NewSQLUserRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLUserRepository {
	return &SQLUserRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a user by their unique identifier. Returns user.ErrUserNotFound when absent.
func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	const query = `
		SELECT id, email, display_name, password_hash, created_at
		FROM users
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading user by ID", "id", id)

	found, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			r.logger.Database().Debug("User not found by ID", "id", id)
			return nil, user.ErrUserNotFound
		}
		r.logger.Database().Error("Failed to load user by ID", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	r.logger.Database().Debug("User loaded by ID", "id", id, "duration", time.Since(start))
	return found, nil
}

// FindByEmail retrieves a user by email, compared case-insensitively.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	const query = `
		SELECT id, email, display_name, password_hash, created_at
		FROM users
		WHERE email = ?`

	start := time.Now()
	email = normalizeEmail(email)
	r.logger.Database().Debug("Loading user by email")

	found, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		r.logger.Database().Error("Failed to load user by email", "error", err.Error())
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	r.logger.Database().Debug("User loaded by email", "userId", found.ID, "duration", time.Since(start))
	return found, nil
}

// Create inserts a new user. Returns user.ErrEmailAlreadyTaken on a duplicate email.
func (r *SQLUserRepository) Create(ctx context.Context, u *user.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	u.Email = normalizeEmail(u.Email)
	r.logger.Database().Debug("Executing user insert", "id", u.ID)

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.DisplayName, u.PasswordHash, database.FormatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailAlreadyTaken
		}
		r.logger.Database().Error("User insert failed", "error", err.Error(), "id", u.ID)
		return fmt.Errorf("insert user: %w", err)
	}

	r.logger.Database().Info("User insert completed", "id", u.ID, "duration", time.Since(start))
	return nil
}

func (r *SQLUserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parsed
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation recognizes duplicate-key errors from pgx and the SQLite drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
