// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/repositories"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
)

// ErrToggleInFlight is returned when a toggle on the same completion key is
// still being persisted.
var ErrToggleInFlight = errors.New("completion toggle already in flight")

// ToggleCounter receives toggle outcomes. The metrics registry implements it.
type ToggleCounter interface {
	CountToggle(kind string, completed bool)
}

type toggleKey struct {
	userID string
	stepID int
	title  string
}

// JourneyService merges the static journey with a user's completion records
// and persists completion changes.
type JourneyService struct {
	catalog      *journey.Catalog
	progressRepo repositories.ProgressRepository
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	toggles      ToggleCounter
	now          func() time.Time

	mu       sync.Mutex
	inFlight map[toggleKey]struct{}
}

// NewJourneyService creates the journey service. perfTracker and toggles may be nil.
func NewJourneyService(catalog *journey.Catalog, progressRepo repositories.ProgressRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, toggles ToggleCounter) *JourneyService {
	return &JourneyService{
		catalog:      catalog,
		progressRepo: progressRepo,
		logger:       logger,
		perfTracker:  perfTracker,
		toggles:      toggles,
		now:          time.Now,
		inFlight:     make(map[toggleKey]struct{}),
	}
}

func (s *JourneyService) Catalog() *journey.Catalog {
	return s.catalog
}

// StaticSteps returns the journey with its default completion flags.
func (s *JourneyService) StaticSteps() []journey.Step {
	return s.catalog.Steps()
}

// LoadView returns the reconciled journey for a user. Without a user the
// static defaults are returned at once. A failed fetch is logged and degrades
// to the static defaults; it never surfaces as an error.
func (s *JourneyService) LoadView(ctx context.Context, userID string) journey.View {
	static := s.catalog.Steps()
	if userID == "" {
		return journey.View{Steps: static, Progress: journey.CalculateProgress(static)}
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "journey:load_view", userID)
	defer marker.Complete()

	stepRecords, substepRecords, err := s.fetchRecords(ctx, userID)
	if err != nil {
		marker.SetError(err)
		s.logger.Content().Error("Failed to load completion records, showing static journey",
			"userId", userID, "error", err.Error())
		return journey.View{Steps: static, Progress: journey.CalculateProgress(static)}
	}

	view := journey.BuildView(static, stepRecords, substepRecords)
	s.logger.Content().Debug("Journey view loaded",
		"userId", userID,
		"stepRecords", len(stepRecords),
		"substepRecords", len(substepRecords),
		"percentage", view.Progress.Percentage)
	return view
}

// fetchRecords reads both record sets concurrently and returns once both have
// resolved.
func (s *JourneyService) fetchRecords(ctx context.Context, userID string) ([]journey.StepCompletionRecord, []journey.SubstepCompletionRecord, error) {
	var stepRecords []journey.StepCompletionRecord
	var substepRecords []journey.SubstepCompletionRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.progressRepo.FindStepRecords(gctx, userID)
		if err != nil {
			return fmt.Errorf("step records: %w", err)
		}
		stepRecords = records
		return nil
	})
	g.Go(func() error {
		records, err := s.progressRepo.FindSubstepRecords(gctx, userID)
		if err != nil {
			return fmt.Errorf("substep records: %w", err)
		}
		substepRecords = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stepRecords, substepRecords, nil
}

// ToggleStepCompletion flips the step's current merged completion and returns
// the new value.
func (s *JourneyService) ToggleStepCompletion(ctx context.Context, userID string, stepID int) (bool, error) {
	if _, err := s.catalog.Step(stepID); err != nil {
		return false, err
	}

	key := toggleKey{userID: userID, stepID: stepID}
	if !s.acquire(key) {
		return false, ErrToggleInFlight
	}
	defer s.release(key)

	steps, err := s.currentSteps(ctx, userID)
	if err != nil {
		return false, err
	}
	step, _ := journey.FindStep(steps, stepID)

	completed := !step.IsCompleted
	if err := s.SetStepCompletion(ctx, userID, stepID, completed); err != nil {
		return false, err
	}
	return completed, nil
}

// ToggleSubStepCompletion flips a substep's current merged completion. The
// substep may be named by title, alias or key; the record is stored under the
// canonical title.
func (s *JourneyService) ToggleSubStepCompletion(ctx context.Context, userID string, stepID int, substep string) (bool, error) {
	sub, err := s.catalog.ResolveSubStep(stepID, substep)
	if err != nil {
		return false, err
	}

	key := toggleKey{userID: userID, stepID: stepID, title: sub.Title}
	if !s.acquire(key) {
		return false, ErrToggleInFlight
	}
	defer s.release(key)

	steps, err := s.currentSteps(ctx, userID)
	if err != nil {
		return false, err
	}
	step, _ := journey.FindStep(steps, stepID)
	current, _ := step.FindSubStep(sub.Title)

	completed := !current.IsCompleted
	if err := s.SetSubStepCompletion(ctx, userID, stepID, sub.Title, completed); err != nil {
		return false, err
	}
	return completed, nil
}

// SetStepCompletion upserts the step record with an explicit value.
func (s *JourneyService) SetStepCompletion(ctx context.Context, userID string, stepID int, completed bool) error {
	if _, err := s.catalog.Step(stepID); err != nil {
		return err
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "journey:set_step", userID)
	defer marker.Complete()

	record := journey.StepCompletionRecord{
		UserID:    userID,
		StepID:    stepID,
		Completed: completed,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.progressRepo.UpsertStep(ctx, record); err != nil {
		marker.SetError(err)
		s.logger.Content().Error("Failed to persist step completion", "userId", userID, "stepId", stepID, "error", err.Error())
		return fmt.Errorf("save step %d completion: %w", stepID, err)
	}

	s.countToggle("step", completed)
	s.logger.Content().Info("Step completion saved", "userId", userID, "stepId", stepID, "completed", completed)
	return nil
}

// SetSubStepCompletion upserts the substep record with an explicit value.
func (s *JourneyService) SetSubStepCompletion(ctx context.Context, userID string, stepID int, substep string, completed bool) error {
	sub, err := s.catalog.ResolveSubStep(stepID, substep)
	if err != nil {
		return err
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "journey:set_substep", userID)
	defer marker.Complete()

	record := journey.SubstepCompletionRecord{
		UserID:       userID,
		StepID:       stepID,
		SubstepTitle: sub.Title,
		Completed:    completed,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.progressRepo.UpsertSubstep(ctx, record); err != nil {
		marker.SetError(err)
		s.logger.Content().Error("Failed to persist substep completion",
			"userId", userID, "stepId", stepID, "substep", sub.Title, "error", err.Error())
		return fmt.Errorf("save substep %q completion: %w", sub.Title, err)
	}

	s.countToggle("substep", completed)
	s.logger.Content().Info("Substep completion saved", "userId", userID, "stepId", stepID, "substep", sub.Title, "completed", completed)
	return nil
}

// currentSteps is the merged state a toggle negates. Unlike LoadView a read
// failure is returned, since negating the static default could undo real work.
func (s *JourneyService) currentSteps(ctx context.Context, userID string) ([]journey.Step, error) {
	stepRecords, substepRecords, err := s.fetchRecords(ctx, userID)
	if err != nil {
		s.logger.Content().Error("Failed to read completion before toggle", "userId", userID, "error", err.Error())
		return nil, fmt.Errorf("read completion: %w", err)
	}
	return journey.Reconcile(s.catalog.Steps(), stepRecords, substepRecords), nil
}

func (s *JourneyService) acquire(key toggleKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *JourneyService) release(key toggleKey) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

func (s *JourneyService) countToggle(kind string, completed bool) {
	if s.toggles != nil {
		s.toggles.CountToggle(kind, completed)
	}
}
