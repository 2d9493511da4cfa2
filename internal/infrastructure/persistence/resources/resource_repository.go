// Package resources provides the SQL implementations of the user resource and
// attachment repositories.
package resources

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database"
)

// SQLResourceRepository stores resource envelopes, one row per
// (user, step, substep, type).
type SQLResourceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLResourceRepository creates a new resource repository
func NewSQLResourceRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLResourceRepository {
	return &SQLResourceRepository{db: db, logger: logger}
}

const resourceColumns = `id, user_id, step_id, substep_title, resource_type, schema_version, payload, updated_at`

// Find returns the saved resource or nil, nil when none exists.
func (r *SQLResourceRepository) Find(ctx context.Context, userID string, stepID int, substepTitle, resourceType string) (*resources.UserResource, error) {
	const query = `SELECT ` + resourceColumns + `
		FROM user_resources
		WHERE user_id = ? AND step_id = ? AND substep_title = ? AND resource_type = ?`

	start := time.Now()
	resource, err := scanResource(r.db.QueryRowContext(ctx, query, userID, stepID, substepTitle, resourceType))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load resource", "error", err.Error(), "stepId", stepID, "type", resourceType)
		return nil, fmt.Errorf("find resource: %w", err)
	}

	r.logger.Database().Debug("Resource loaded", "stepId", stepID, "type", resourceType, "duration", time.Since(start))
	return resource, nil
}

// FindByUser lists the user's resources ordered by step, substep and type.
func (r *SQLResourceRepository) FindByUser(ctx context.Context, userID string) ([]*resources.UserResource, error) {
	const query = `SELECT ` + resourceColumns + `
		FROM user_resources
		WHERE user_id = ?
		ORDER BY step_id, substep_title, resource_type`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Database().Error("Failed to query resources", "error", err.Error())
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var out []*resources.UserResource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return out, nil
}

// Upsert saves the envelope. On conflict the existing row keeps its id.
func (r *SQLResourceRepository) Upsert(ctx context.Context, resource *resources.UserResource) error {
	const query = `
		INSERT INTO user_resources (` + resourceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, step_id, substep_title, resource_type) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		resource.ID,
		resource.UserID,
		resource.StepID,
		resource.SubstepTitle,
		resource.Envelope.Type,
		resource.Envelope.SchemaVersion,
		string(resource.Envelope.Payload),
		database.FormatTime(resource.UpdatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Resource upsert failed", "error", err.Error(), "stepId", resource.StepID, "type", resource.Envelope.Type)
		return fmt.Errorf("upsert resource: %w", err)
	}

	r.logger.Database().Debug("Resource upserted", "stepId", resource.StepID, "type", resource.Envelope.Type, "duration", time.Since(start))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*resources.UserResource, error) {
	var resource resources.UserResource
	var payload, updatedAt string
	err := row.Scan(
		&resource.ID,
		&resource.UserID,
		&resource.StepID,
		&resource.SubstepTitle,
		&resource.Envelope.Type,
		&resource.Envelope.SchemaVersion,
		&payload,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	resource.Envelope.Payload = json.RawMessage(payload)
	resource.Component = resources.ComponentFor(resource.Envelope.Type)
	if resource.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &resource, nil
}

// SQLAttachmentRepository stores attachment metadata; file bytes live in object storage.
type SQLAttachmentRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAttachmentRepository creates a new attachment repository
func NewSQLAttachmentRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAttachmentRepository {
	return &SQLAttachmentRepository{db: db, logger: logger}
}

func (r *SQLAttachmentRepository) Create(ctx context.Context, a *resources.Attachment) error {
	const query = `
		INSERT INTO resource_attachments (id, user_id, step_id, substep_title, resource_type, file_name,
		                                  content_type, size_bytes, object_key, thumbnail_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var thumbnail sql.NullString
	if a.ThumbnailKey != "" {
		thumbnail = sql.NullString{String: a.ThumbnailKey, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.StepID, a.SubstepTitle, a.ResourceType, a.FileName,
		a.ContentType, a.Size, a.ObjectKey, thumbnail, database.FormatTime(a.CreatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Attachment insert failed", "error", err.Error(), "id", a.ID)
		return fmt.Errorf("insert attachment: %w", err)
	}
	r.logger.Database().Info("Attachment stored", "id", a.ID, "size", a.Size)
	return nil
}

// FindByResource lists attachments of one resource, oldest first.
func (r *SQLAttachmentRepository) FindByResource(ctx context.Context, userID string, stepID int, substepTitle, resourceType string) ([]*resources.Attachment, error) {
	const query = `
		SELECT id, user_id, step_id, substep_title, resource_type, file_name,
		       content_type, size_bytes, object_key, thumbnail_key, created_at
		FROM resource_attachments
		WHERE user_id = ? AND step_id = ? AND substep_title = ? AND resource_type = ?
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID, stepID, substepTitle, resourceType)
	if err != nil {
		r.logger.Database().Error("Failed to query attachments", "error", err.Error())
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var out []*resources.Attachment
	for rows.Next() {
		var a resources.Attachment
		var thumbnail sql.NullString
		var createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.StepID, &a.SubstepTitle, &a.ResourceType, &a.FileName,
			&a.ContentType, &a.Size, &a.ObjectKey, &thumbnail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.ThumbnailKey = thumbnail.String
		if a.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return out, nil
}
