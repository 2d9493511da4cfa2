package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
)

// StepRequest carries everything the step view route reads.
type StepRequest struct {
	UserID    string
	SessionID string
	StepID    int
	SubStep   string
	Path      string
	Tab       string
	Resource  string
	ResetAt   int64
}

// StepView is one step of the reconciled journey with the session's tab state.
type StepView struct {
	Step             journey.Step     `json:"step"`
	ActiveSubStep    *journey.SubStep `json:"activeSubStep,omitempty"`
	ActiveTab        navigation.Tab   `json:"activeTab"`
	SelectedResource string           `json:"selectedResource,omitempty"`
	Progress         journey.Progress `json:"progress"`
	PreviousStepID   *int             `json:"previousStepId,omitempty"`
	NextStepID       *int             `json:"nextStepId,omitempty"`
}

// RoadmapService assembles step views and maps legacy routes.
type RoadmapService struct {
	journey    *JourneyService
	navigation *NavigationService
}

// NewRoadmapService creates a new roadmap service
func NewRoadmapService(journeyService *JourneyService, navigationService *NavigationService) *RoadmapService {
	return &RoadmapService{journey: journeyService, navigation: navigationService}
}

// StepView resolves the step and optional substep, merges the user's
// completion and runs the session's tab machine on the request snapshot.
func (s *RoadmapService) StepView(ctx context.Context, req StepRequest) (*StepView, error) {
	catalog := s.journey.Catalog()
	if _, err := catalog.Step(req.StepID); err != nil {
		return nil, err
	}

	var activeTitle string
	if req.SubStep != "" {
		sub, err := catalog.ResolveSubStep(req.StepID, req.SubStep)
		if err != nil {
			return nil, err
		}
		activeTitle = sub.Title
	}

	view := s.journey.LoadView(ctx, req.UserID)
	step, ok := journey.FindStep(view.Steps, req.StepID)
	if !ok {
		return nil, fmt.Errorf("step %d: %w", req.StepID, journey.ErrStepNotFound)
	}

	state := s.navigation.EvaluateTab(req.SessionID, navigation.Snapshot{
		Path:     req.Path,
		URLTab:   req.Tab,
		ResetAt:  req.ResetAt,
		Resource: req.Resource,
	})

	result := &StepView{
		Step:             step,
		ActiveTab:        state.Tab,
		SelectedResource: req.Resource,
		Progress:         view.Progress,
	}
	if activeTitle != "" {
		if sub, ok := step.FindSubStep(activeTitle); ok {
			result.ActiveSubStep = &sub
		}
	}
	if _, ok := journey.FindStep(view.Steps, req.StepID-1); ok {
		prev := req.StepID - 1
		result.PreviousStepID = &prev
	}
	if _, ok := journey.FindStep(view.Steps, req.StepID+1); ok {
		next := req.StepID + 1
		result.NextStepID = &next
	}
	return result, nil
}

// LegacyPath maps a legacy step route onto the current shape. The substep
// segment goes through the alias table; unknown segments are kept so the
// target route reports them as not found. rawQuery is appended unchanged.
func (s *RoadmapService) LegacyPath(rawStepID, rawSubStep, rawQuery string) string {
	target := "/roadmap/step/" + url.PathEscape(rawStepID)
	if rawSubStep != "" {
		segment := rawSubStep
		if stepID, err := strconv.Atoi(rawStepID); err == nil {
			segment = s.journey.Catalog().CanonicalTitle(stepID, rawSubStep)
		}
		target += "/" + url.PathEscape(segment)
	}
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}
