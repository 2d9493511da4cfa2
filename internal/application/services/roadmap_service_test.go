package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
)

func newTestRoadmapService(t *testing.T) (*RoadmapService, *JourneyService) {
	t.Helper()
	journeyService := newTestJourneyService(t, newMemoryProgress())
	return NewRoadmapService(journeyService, newTestNavigationService()), journeyService
}

func TestStepViewResolvesSubStepAndTab(t *testing.T) {
	svc, journeyService := newTestRoadmapService(t)
	ctx := context.Background()
	require.NoError(t, journeyService.SetSubStepCompletion(ctx, "u1", 3, "Tests utilisateurs", true))

	view, err := svc.StepView(ctx, StepRequest{
		UserID:    "u1",
		SessionID: "s1",
		StepID:    3,
		SubStep:   "user-tests",
		Path:      "/roadmap/step/3/user-tests",
		Tab:       "resources",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, view.Step.ID)
	require.NotNil(t, view.ActiveSubStep)
	assert.Equal(t, "Tests utilisateurs", view.ActiveSubStep.Title)
	assert.True(t, view.ActiveSubStep.IsCompleted)
	assert.Equal(t, navigation.TabResources, view.ActiveTab)
	require.NotNil(t, view.PreviousStepID)
	require.NotNil(t, view.NextStepID)
	assert.Equal(t, 2, *view.PreviousStepID)
	assert.Equal(t, 4, *view.NextStepID)
}

// Moving from a substep shown on its resources tab to another step lands on
// the overview.
func TestStepViewPathChangeResetsTab(t *testing.T) {
	svc, _ := newTestRoadmapService(t)
	ctx := context.Background()

	view, err := svc.StepView(ctx, StepRequest{SessionID: "s1", StepID: 1, SubStep: "Recherche utilisateur", Path: "/roadmap/step/1/recherche", Tab: "resources"})
	require.NoError(t, err)
	assert.Equal(t, navigation.TabResources, view.ActiveTab)

	view, err = svc.StepView(ctx, StepRequest{SessionID: "s1", StepID: 2, Path: "/roadmap/step/2"})
	require.NoError(t, err)
	assert.Equal(t, navigation.TabOverview, view.ActiveTab)
	assert.Nil(t, view.ActiveSubStep)
}

func TestStepViewNotFound(t *testing.T) {
	svc, _ := newTestRoadmapService(t)

	_, err := svc.StepView(context.Background(), StepRequest{StepID: 0})
	assert.ErrorIs(t, err, journey.ErrStepNotFound)

	_, err = svc.StepView(context.Background(), StepRequest{StepID: 1, SubStep: "inconnu"})
	assert.ErrorIs(t, err, journey.ErrSubStepNotFound)
}

func TestStepViewEdges(t *testing.T) {
	svc, _ := newTestRoadmapService(t)

	first, err := svc.StepView(context.Background(), StepRequest{StepID: 1, Path: "/roadmap/step/1"})
	require.NoError(t, err)
	assert.Nil(t, first.PreviousStepID)

	last, err := svc.StepView(context.Background(), StepRequest{StepID: 5, Path: "/roadmap/step/5"})
	require.NoError(t, err)
	assert.Nil(t, last.NextStepID)
}

func TestLegacyPath(t *testing.T) {
	svc, _ := newTestRoadmapService(t)

	assert.Equal(t, "/roadmap/step/2", svc.LegacyPath("2", "", ""))
	assert.Equal(t, "/roadmap/step/3/Tests%20utilisateurs?tab=course", svc.LegacyPath("3", "tests", "tab=course"))
	assert.Equal(t, "/roadmap/step/3/unknown", svc.LegacyPath("3", "unknown", ""))
	assert.Equal(t, "/roadmap/step/abc", svc.LegacyPath("abc", "", ""))
}
