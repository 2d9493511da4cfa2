package journey

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSteps() []Step {
	return []Step{
		{ID: 1, Title: "Idéation", SubSteps: []SubStep{
			{Title: "Définir le problème"},
			{Title: "Recherche utilisateur", Resources: []Resource{{Name: "Persona", Type: "persona"}}},
		}},
		{ID: 2, Title: "Validation", SubSteps: []SubStep{
			{Title: "Étude de marché"},
		}},
		{ID: 3, Title: "Modèle économique", SubSteps: []SubStep{
			{Title: "Business Model Canvas"},
			{Title: "Tests utilisateurs"},
			{Title: "Prévisionnel financier"},
		}},
	}
}

func setAll(steps []Step, completed bool) []Step {
	out := CloneSteps(steps)
	for i := range out {
		out[i].IsCompleted = completed
		for j := range out[i].SubSteps {
			out[i].SubSteps[j].IsCompleted = completed
		}
	}
	return out
}

func TestCalculateProgressNothingCompleted(t *testing.T) {
	p := CalculateProgress(setAll(fixtureSteps(), false))
	assert.Equal(t, Progress{CompletedSteps: 0, TotalSteps: 3, CompletedSubsteps: 0, TotalSubsteps: 6, Percentage: 0}, p)
}

func TestCalculateProgressEverythingCompleted(t *testing.T) {
	p := CalculateProgress(setAll(fixtureSteps(), true))
	assert.Equal(t, 100, p.Percentage)
	assert.Equal(t, 3, p.CompletedSteps)
	assert.Equal(t, 6, p.CompletedSubsteps)
}

func TestCalculateProgressWeights(t *testing.T) {
	steps := fixtureSteps()
	steps[0].IsCompleted = true             // 1/3 steps
	steps[2].SubSteps[1].IsCompleted = true // 1/6 substeps

	// (1/3)*0.6 + (1/6)*0.4 = 0.2666...
	assert.Equal(t, 27, CalculateProgress(steps).Percentage)
}

func TestCalculateProgressEmpty(t *testing.T) {
	assert.Equal(t, Progress{}, CalculateProgress(nil))

	onlySteps := []Step{{ID: 1, IsCompleted: true}}
	assert.Equal(t, 60, CalculateProgress(onlySteps).Percentage)
}

func TestCalculateProgressOrderInvariantAndIdempotent(t *testing.T) {
	steps := fixtureSteps()
	steps[1].IsCompleted = true
	steps[0].SubSteps[0].IsCompleted = true

	want := CalculateProgress(steps)
	assert.Equal(t, want, CalculateProgress(steps))

	reversed := CloneSteps(steps)
	slices.Reverse(reversed)
	assert.Equal(t, want, CalculateProgress(reversed))
}

func TestReconcileWithoutRecordsIsIdentity(t *testing.T) {
	static := fixtureSteps()
	static[1].IsCompleted = true

	assert.Equal(t, static, Reconcile(static, nil, nil))
	assert.Equal(t, static, Reconcile(static, []StepCompletionRecord{}, []SubstepCompletionRecord{}))
}

func TestReconcileRecordsOverrideDefaults(t *testing.T) {
	static := fixtureSteps()
	static[1].IsCompleted = true

	merged := Reconcile(static,
		[]StepCompletionRecord{{StepID: 1, Completed: true}, {StepID: 2, Completed: false}},
		[]SubstepCompletionRecord{
			{StepID: 3, SubstepTitle: "Tests utilisateurs", Completed: true},
			{StepID: 1, SubstepTitle: "Tests utilisateurs", Completed: true},
		},
	)

	assert.True(t, merged[0].IsCompleted)
	assert.False(t, merged[1].IsCompleted)
	assert.False(t, merged[2].IsCompleted)
	assert.True(t, merged[2].SubSteps[1].IsCompleted)
	assert.False(t, merged[0].SubSteps[0].IsCompleted)
	assert.False(t, merged[0].SubSteps[1].IsCompleted)
}

func TestReconcileMatchesTitlesExactly(t *testing.T) {
	merged := Reconcile(fixtureSteps(), nil, []SubstepCompletionRecord{
		{StepID: 3, SubstepTitle: "tests utilisateurs", Completed: true},
		{StepID: 3, SubstepTitle: "Tests utilisateurs ", Completed: true},
	})
	assert.False(t, merged[2].SubSteps[1].IsCompleted)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	static := fixtureSteps()
	before := CloneSteps(static)

	merged := Reconcile(static, []StepCompletionRecord{{StepID: 1, Completed: true}},
		[]SubstepCompletionRecord{{StepID: 1, SubstepTitle: "Recherche utilisateur", Completed: true}})
	merged[0].SubSteps[1].Resources[0].Name = "changed"

	assert.Equal(t, before, static)
}

func TestBuildView(t *testing.T) {
	view := BuildView(fixtureSteps(), []StepCompletionRecord{{StepID: 2, Completed: true}}, nil)
	assert.True(t, view.Steps[1].IsCompleted)
	assert.Equal(t, 1, view.Progress.CompletedSteps)
	assert.Equal(t, 20, view.Progress.Percentage)
	assert.False(t, view.IsLoading)
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog([]Step{{ID: 2, Title: "x"}}, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Step{{ID: 1, Title: " "}}, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Step{{ID: 1, Title: "x", SubSteps: []SubStep{{Title: "Étude"}, {Title: "etude"}}}}, nil)
	assert.ErrorContains(t, err, "share key")

	_, err = NewCatalog(fixtureSteps(), map[int]map[string]string{1: {"old": "Missing"}})
	assert.ErrorContains(t, err, "unknown substep")

	_, err = NewCatalog(fixtureSteps(), map[int]map[string]string{9: {"old": "Missing"}})
	assert.ErrorContains(t, err, "unknown step")
}

func TestCatalogResolveSubStep(t *testing.T) {
	catalog, err := NewCatalog(fixtureSteps(), map[int]map[string]string{3: {"tests": "Tests utilisateurs"}})
	require.NoError(t, err)

	for _, raw := range []string{"Tests utilisateurs", "tests", "tests-utilisateurs", "TESTS UTILISATEURS"} {
		sub, err := catalog.ResolveSubStep(3, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "Tests utilisateurs", sub.Title, raw)
		assert.Equal(t, "tests-utilisateurs", sub.Key)
	}

	sub, err := catalog.ResolveSubStep(2, "etude-de-marche")
	require.NoError(t, err)
	assert.Equal(t, "Étude de marché", sub.Title)

	_, err = catalog.ResolveSubStep(3, "nope")
	assert.ErrorIs(t, err, ErrSubStepNotFound)

	_, err = catalog.ResolveSubStep(42, "nope")
	assert.ErrorIs(t, err, ErrStepNotFound)

	_, err = catalog.Step(42)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestCatalogReturnsCopies(t *testing.T) {
	catalog, err := NewCatalog(fixtureSteps(), nil)
	require.NoError(t, err)

	steps := catalog.Steps()
	steps[0].IsCompleted = true
	steps[0].SubSteps[0].Title = "mutated"

	fresh := catalog.Steps()
	assert.False(t, fresh[0].IsCompleted)
	assert.Equal(t, "Définir le problème", fresh[0].SubSteps[0].Title)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "recherche-utilisateur", Slug("Recherche utilisateur"))
	assert.Equal(t, "pacte-d-associes", Slug("Pacte d'associés"))
	assert.Equal(t, "etude-de-marche", Slug("  Étude   de marché! "))
	assert.Equal(t, "", Slug("!!"))
}
