// Package repositories defines the persistence contracts for per-user journey
// data. Implementations live under infrastructure/persistence.
package repositories

import (
	"context"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
)

// ProgressRepository reads and upserts completion records. Upserts resolve
// conflicts on the natural key, last write wins.
type ProgressRepository interface {
	FindStepRecords(ctx context.Context, userID string) ([]journey.StepCompletionRecord, error)
	FindSubstepRecords(ctx context.Context, userID string) ([]journey.SubstepCompletionRecord, error)
	UpsertStep(ctx context.Context, record journey.StepCompletionRecord) error
	UpsertSubstep(ctx context.Context, record journey.SubstepCompletionRecord) error
}

type ResourceRepository interface {
	Find(ctx context.Context, userID string, stepID int, substepTitle, resourceType string) (*resources.UserResource, error)
	FindByUser(ctx context.Context, userID string) ([]*resources.UserResource, error)
	Upsert(ctx context.Context, resource *resources.UserResource) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *resources.Attachment) error
	FindByResource(ctx context.Context, userID string, stepID int, substepTitle, resourceType string) ([]*resources.Attachment, error)
}
