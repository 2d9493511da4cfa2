package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/domain/repositories"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
)

// ResourceRef names one resource form: (step, substep, type) of a user.
type ResourceRef struct {
	UserID       string
	StepID       int
	SubStep      string
	ResourceType string
}

// ResourceService orchestrates saving and loading of user resource forms.
type ResourceService struct {
	resourceRepo repositories.ResourceRepository
	catalog      *journey.Catalog
	navigation   *NavigationService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	now          func() time.Time
}

// NewResourceService creates a new resource service
func NewResourceService(resourceRepo repositories.ResourceRepository, catalog *journey.Catalog, navigation *NavigationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		catalog:      catalog,
		navigation:   navigation,
		logger:       logger,
		perfTracker:  perfTracker,
		now:          time.Now,
	}
}

// resolve validates the reference against the catalog and returns it with the
// canonical substep title.
func (s *ResourceService) resolve(ref ResourceRef) (ResourceRef, error) {
	sub, err := s.catalog.ResolveSubStep(ref.StepID, ref.SubStep)
	if err != nil {
		return ref, err
	}
	if !resources.IsKnownType(ref.ResourceType) {
		return ref, fmt.Errorf("%w: unknown type %q", resources.ErrInvalidEnvelope, ref.ResourceType)
	}
	ref.SubStep = sub.Title
	return ref, nil
}

// Get returns the saved resource or ErrResourceNotFound.
func (s *ResourceService) Get(ctx context.Context, ref ResourceRef) (*resources.UserResource, error) {
	ref, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	resource, err := s.resourceRepo.Find(ctx, ref.UserID, ref.StepID, ref.SubStep, ref.ResourceType)
	if err != nil {
		return nil, fmt.Errorf("load resource: %w", err)
	}
	if resource == nil {
		return nil, resources.ErrResourceNotFound
	}
	return resource, nil
}

// List returns every resource saved by the user
func (s *ResourceService) List(ctx context.Context, userID string) ([]*resources.UserResource, error) {
	list, err := s.resourceRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if list == nil {
		list = []*resources.UserResource{}
	}
	return list, nil
}

// Save validates and upserts the envelope. The outcome, success or failure, is
// recorded in the session's last-save slot.
func (s *ResourceService) Save(ctx context.Context, sessionID string, ref ResourceRef, envelope resources.Envelope) (*resources.UserResource, error) {
	marker := s.perfTracker.StartOperationWithContext(ctx, "resource:save", ref.UserID)
	defer marker.Complete()

	resource, err := s.save(ctx, ref, envelope)
	s.navigation.RecordSaveResult(sessionID, err == nil, s.now())
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	return resource, nil
}

func (s *ResourceService) save(ctx context.Context, ref ResourceRef, envelope resources.Envelope) (*resources.UserResource, error) {
	ref, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if envelope.Type == "" {
		envelope.Type = ref.ResourceType
	}
	if envelope.Type != ref.ResourceType {
		return nil, fmt.Errorf("%w: envelope type %q does not match %q", resources.ErrInvalidEnvelope, envelope.Type, ref.ResourceType)
	}
	if envelope.SchemaVersion == 0 {
		envelope.SchemaVersion = resources.CurrentVersion(envelope.Type)
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	resource := &resources.UserResource{
		ID:           security.GenerateULID(),
		UserID:       ref.UserID,
		StepID:       ref.StepID,
		SubstepTitle: ref.SubStep,
		Envelope:     envelope,
		Component:    resources.ComponentFor(envelope.Type),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.resourceRepo.Upsert(ctx, resource); err != nil {
		s.logger.Content().Error("Failed to save resource",
			"userId", ref.UserID, "stepId", ref.StepID, "substep", ref.SubStep, "type", ref.ResourceType, "error", err.Error())
		return nil, fmt.Errorf("save resource: %w", err)
	}

	// The stored row keeps its original id on conflict; read it back so the
	// caller sees the persisted identity.
	if stored, err := s.resourceRepo.Find(ctx, ref.UserID, ref.StepID, ref.SubStep, ref.ResourceType); err == nil && stored != nil {
		resource = stored
	}

	s.logger.Content().Info("Resource saved", "userId", ref.UserID, "stepId", ref.StepID, "type", ref.ResourceType, "schemaVersion", envelope.SchemaVersion)
	return resource, nil
}
