// Package progress provides the SQL implementation of the completion record
// repository.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database"
)

// SQLProgressRepository reads and upserts step and substep completion rows.
type SQLProgressRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLProgressRepository creates a new progress repository
func NewSQLProgressRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLProgressRepository {
	return &SQLProgressRepository{db: db, logger: logger}
}

// FindStepRecords returns every step record for the user, ordered by step id.
func (r *SQLProgressRepository) FindStepRecords(ctx context.Context, userID string) ([]journey.StepCompletionRecord, error) {
	const query = `
		SELECT user_id, step_id, completed, updated_at
		FROM step_completion
		WHERE user_id = ?
		ORDER BY step_id`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Database().Error("Failed to query step completion", "error", err.Error())
		return nil, fmt.Errorf("query step completion: %w", err)
	}
	defer rows.Close()

	var records []journey.StepCompletionRecord
	for rows.Next() {
		var record journey.StepCompletionRecord
		var updatedAt string
		if err := rows.Scan(&record.UserID, &record.StepID, &record.Completed, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan step completion: %w", err)
		}
		if record.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step completion: %w", err)
	}

	r.logger.Database().Debug("Step completion loaded", "count", len(records), "duration", time.Since(start))
	return records, nil
}

// FindSubstepRecords returns every substep record for the user.
func (r *SQLProgressRepository) FindSubstepRecords(ctx context.Context, userID string) ([]journey.SubstepCompletionRecord, error) {
	const query = `
		SELECT user_id, step_id, substep_title, completed, updated_at
		FROM substep_completion
		WHERE user_id = ?
		ORDER BY step_id, substep_title`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Database().Error("Failed to query substep completion", "error", err.Error())
		return nil, fmt.Errorf("query substep completion: %w", err)
	}
	defer rows.Close()

	var records []journey.SubstepCompletionRecord
	for rows.Next() {
		var record journey.SubstepCompletionRecord
		var updatedAt string
		if err := rows.Scan(&record.UserID, &record.StepID, &record.SubstepTitle, &record.Completed, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan substep completion: %w", err)
		}
		if record.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate substep completion: %w", err)
	}

	r.logger.Database().Debug("Substep completion loaded", "count", len(records), "duration", time.Since(start))
	return records, nil
}

// UpsertStep writes the record keyed by (user, step); an existing row is overwritten.
func (r *SQLProgressRepository) UpsertStep(ctx context.Context, record journey.StepCompletionRecord) error {
	const query = `
		INSERT INTO step_completion (user_id, step_id, completed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, step_id) DO UPDATE SET
			completed = excluded.completed,
			updated_at = excluded.updated_at`

	start := time.Now()
	if _, err := r.db.ExecContext(ctx, query, record.UserID, record.StepID, record.Completed, database.FormatTime(record.UpdatedAt)); err != nil {
		r.logger.Database().Error("Step completion upsert failed", "error", err.Error(), "stepId", record.StepID)
		return fmt.Errorf("upsert step %d completion: %w", record.StepID, err)
	}

	r.logger.Database().Debug("Step completion upserted", "stepId", record.StepID, "completed", record.Completed, "duration", time.Since(start))
	return nil
}

// UpsertSubstep writes the record keyed by (user, step, title); an existing row is overwritten.
func (r *SQLProgressRepository) UpsertSubstep(ctx context.Context, record journey.SubstepCompletionRecord) error {
	const query = `
		INSERT INTO substep_completion (user_id, step_id, substep_title, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, step_id, substep_title) DO UPDATE SET
			completed = excluded.completed,
			updated_at = excluded.updated_at`

	start := time.Now()
	if _, err := r.db.ExecContext(ctx, query, record.UserID, record.StepID, record.SubstepTitle, record.Completed, database.FormatTime(record.UpdatedAt)); err != nil {
		r.logger.Database().Error("Substep completion upsert failed", "error", err.Error(), "stepId", record.StepID, "substep", record.SubstepTitle)
		return fmt.Errorf("upsert substep %q completion: %w", record.SubstepTitle, err)
	}

	r.logger.Database().Debug("Substep completion upserted", "stepId", record.StepID, "substep", record.SubstepTitle, "completed", record.Completed, "duration", time.Since(start))
	return nil
}
