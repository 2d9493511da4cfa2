package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database/dbtest"
)

func newRepository(t *testing.T) *SQLProgressRepository {
	return NewSQLProgressRepository(dbtest.NewSQLite(t), logging.NewDiscardLogger())
}

func TestStepRecordsUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, repo.UpsertStep(ctx, journey.StepCompletionRecord{UserID: "u1", StepID: 2, Completed: true, UpdatedAt: at}))
	require.NoError(t, repo.UpsertStep(ctx, journey.StepCompletionRecord{UserID: "u1", StepID: 1, Completed: true, UpdatedAt: at}))
	require.NoError(t, repo.UpsertStep(ctx, journey.StepCompletionRecord{UserID: "u1", StepID: 2, Completed: false, UpdatedAt: at.Add(time.Minute)}))
	require.NoError(t, repo.UpsertStep(ctx, journey.StepCompletionRecord{UserID: "u2", StepID: 2, Completed: true, UpdatedAt: at}))

	records, err := repo.FindStepRecords(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].StepID)
	assert.True(t, records[0].Completed)
	assert.Equal(t, 2, records[1].StepID)
	assert.False(t, records[1].Completed)
	assert.True(t, records[1].UpdatedAt.Equal(at.Add(time.Minute)))
}

func TestSubstepRecordsKeyedByExactTitle(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)
	at := time.Now().UTC()

	require.NoError(t, repo.UpsertSubstep(ctx, journey.SubstepCompletionRecord{UserID: "u1", StepID: 1, SubstepTitle: "Recherche utilisateur", Completed: true, UpdatedAt: at}))
	require.NoError(t, repo.UpsertSubstep(ctx, journey.SubstepCompletionRecord{UserID: "u1", StepID: 1, SubstepTitle: "recherche utilisateur", Completed: true, UpdatedAt: at}))
	require.NoError(t, repo.UpsertSubstep(ctx, journey.SubstepCompletionRecord{UserID: "u1", StepID: 1, SubstepTitle: "Recherche utilisateur", Completed: false, UpdatedAt: at}))

	records, err := repo.FindSubstepRecords(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byTitle := map[string]bool{}
	for _, record := range records {
		byTitle[record.SubstepTitle] = record.Completed
	}
	assert.Equal(t, map[string]bool{"Recherche utilisateur": false, "recherche utilisateur": true}, byTitle)
}

func TestFindRecordsForUnknownUser(t *testing.T) {
	repo := newRepository(t)

	steps, err := repo.FindStepRecords(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, steps)

	substeps, err := repo.FindSubstepRecords(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, substeps)
}
