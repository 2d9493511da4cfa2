package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database/dbtest"
	persistence "github.com/fundroad/fundroad-go/internal/infrastructure/persistence/resources"
)

type failingResources struct{}

func (failingResources) Find(context.Context, string, int, string, string) (*resources.UserResource, error) {
	return nil, errOffline
}

func (failingResources) FindByUser(context.Context, string) ([]*resources.UserResource, error) {
	return nil, errOffline
}

func (failingResources) Upsert(context.Context, *resources.UserResource) error {
	return errOffline
}

func newTestResourceService(t *testing.T) (*ResourceService, *NavigationService) {
	t.Helper()
	logger := logging.NewDiscardLogger()
	nav := newTestNavigationService()
	repo := persistence.NewSQLResourceRepository(dbtest.NewSQLite(t), logger)
	return NewResourceService(repo, testCatalog(t), nav, logger, nil), nav
}

func personaEnvelope(name string) resources.Envelope {
	payload, _ := json.Marshal(map[string]string{"name": name})
	return resources.Envelope{Type: "persona", SchemaVersion: 2, Payload: payload}
}

func TestSaveResourceRecordsSuccess(t *testing.T) {
	ctx := context.Background()
	svc, nav := newTestResourceService(t)
	ref := ResourceRef{UserID: "u1", StepID: 1, SubStep: "recherche", ResourceType: "persona"}

	first, err := svc.Save(ctx, "s1", ref, personaEnvelope("Camille"))
	require.NoError(t, err)
	assert.Equal(t, "Recherche utilisateur", first.SubstepTitle)
	assert.Equal(t, resources.ComponentPersona, first.Component)

	second, err := svc.Save(ctx, "s1", ref, personaEnvelope("Léa"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the row identity")

	loaded, err := svc.Get(ctx, ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Léa"}`, string(loaded.Envelope.Payload))

	status := nav.LastSave("s1")
	assert.True(t, status.Successful)
	require.NotNil(t, status.At)
	assert.WithinDuration(t, time.Now(), *status.At, 5*time.Second)
}

func TestSaveResourceValidation(t *testing.T) {
	ctx := context.Background()
	svc, nav := newTestResourceService(t)
	ref := ResourceRef{UserID: "u1", StepID: 1, SubStep: "Recherche utilisateur", ResourceType: "persona"}

	bad := personaEnvelope("x")
	bad.SchemaVersion = 3
	_, err := svc.Save(ctx, "s1", ref, bad)
	assert.ErrorIs(t, err, resources.ErrInvalidEnvelope)
	assert.False(t, nav.LastSave("s1").Successful)
	assert.NotNil(t, nav.LastSave("s1").At, "failures are recorded too")

	mismatch := personaEnvelope("x")
	mismatch.Type = "swot"
	_, err = svc.Save(ctx, "s1", ref, mismatch)
	assert.ErrorIs(t, err, resources.ErrInvalidEnvelope)

	_, err = svc.Save(ctx, "s1", ResourceRef{UserID: "u1", StepID: 1, SubStep: "nope", ResourceType: "persona"}, personaEnvelope("x"))
	assert.ErrorIs(t, err, journey.ErrSubStepNotFound)

	_, err = svc.Save(ctx, "s1", ResourceRef{UserID: "u1", StepID: 1, SubStep: "recherche", ResourceType: "poem"}, personaEnvelope("x"))
	assert.ErrorIs(t, err, resources.ErrInvalidEnvelope)
}

func TestSaveResourceDefaultsVersionAndType(t *testing.T) {
	svc, _ := newTestResourceService(t)
	ref := ResourceRef{UserID: "u1", StepID: 3, SubStep: "bmc", ResourceType: "business_model_canvas"}

	saved, err := svc.Save(context.Background(), "", ref, resources.Envelope{Payload: json.RawMessage(`{"segments":[]}`)})
	require.NoError(t, err)
	assert.Equal(t, "business_model_canvas", saved.Envelope.Type)
	assert.Equal(t, 2, saved.Envelope.SchemaVersion)
}

func TestSaveResourcePersistenceFailure(t *testing.T) {
	nav := newTestNavigationService()
	svc := NewResourceService(failingResources{}, testCatalog(t), nav, logging.NewDiscardLogger(), nil)
	ref := ResourceRef{UserID: "u1", StepID: 1, SubStep: "recherche", ResourceType: "persona"}

	_, err := svc.Save(context.Background(), "s1", ref, personaEnvelope("x"))
	assert.True(t, errors.Is(err, errOffline))
	assert.False(t, nav.LastSave("s1").Successful)
	assert.NotNil(t, nav.LastSave("s1").At)
}

func TestGetAndListResources(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestResourceService(t)

	_, err := svc.Get(ctx, ResourceRef{UserID: "u1", StepID: 1, SubStep: "recherche", ResourceType: "persona"})
	assert.ErrorIs(t, err, resources.ErrResourceNotFound)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.Save(ctx, "", ResourceRef{UserID: "u1", StepID: 1, SubStep: "recherche", ResourceType: "persona"}, personaEnvelope("x"))
	require.NoError(t, err)
	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
