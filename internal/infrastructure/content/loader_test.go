package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/domain/entities/financing"
)

func TestEmbeddedContentLoads(t *testing.T) {
	content, err := Load("")
	require.NoError(t, err)

	steps := content.Catalog.Steps()
	require.Len(t, steps, 5)
	for i, step := range steps {
		assert.Equal(t, i+1, step.ID)
		assert.NotEmpty(t, step.SubSteps)
		assert.False(t, step.IsCompleted)
	}

	sub, err := content.Catalog.ResolveSubStep(1, "Recherche utilisateur")
	require.NoError(t, err)
	assert.Equal(t, "recherche-utilisateur", sub.Key)

	_, err = content.Catalog.ResolveSubStep(3, "Tests utilisateurs")
	require.NoError(t, err)

	assert.NotEmpty(t, content.Financing)
	assert.NotEmpty(t, financing.Filter{Stage: "fundraising"}.Apply(content.Financing))
}

func TestEmbeddedAliasesResolve(t *testing.T) {
	content, err := Load("")
	require.NoError(t, err)

	sub, err := content.Catalog.ResolveSubStep(3, "user-tests")
	require.NoError(t, err)
	assert.Equal(t, "Tests utilisateurs", sub.Title)
}

func TestLoadRejectsUnknownResourceType(t *testing.T) {
	fsys := fstest.MapFS{
		journeyFile: {Data: []byte(`
steps:
  - id: 1
    title: Idée
    substeps:
      - title: Problème
        resources:
          - name: Mystère
            type: hologram
`)},
	}

	_, err := LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")
}

func TestLoadRejectsDuplicateSubstepTitles(t *testing.T) {
	fsys := fstest.MapFS{
		journeyFile: {Data: []byte(`
steps:
  - id: 1
    title: Idée
    substeps:
      - title: Problème
      - title: Problème
`)},
	}

	_, err := LoadFS(fsys)
	assert.ErrorContains(t, err, "duplicate substep title")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	fsys := fstest.MapFS{
		journeyFile: {Data: []byte(`
steps:
  - id: 1
    title: Idée
    colour: red
`)},
	}

	_, err := LoadFS(fsys)
	assert.Error(t, err)
}

func TestFinancingIsOptional(t *testing.T) {
	fsys := fstest.MapFS{
		journeyFile: {Data: []byte(`
steps:
  - id: 1
    title: Idée
    substeps:
      - title: Problème
`)},
	}

	content, err := LoadFS(fsys)
	require.NoError(t, err)
	assert.Empty(t, content.Financing)
}
