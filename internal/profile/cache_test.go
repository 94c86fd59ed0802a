package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

type fakeLocator struct {
	docs map[string]*model.ResourceDocument
}

func (f *fakeLocator) ResourceByURL(kind model.ResourceKind, canonical string) *model.ResourceDocument {
	stem, _ := model.CanonicalStem(canonical)
	return f.docs[stem]
}

func taskProfile() *model.ResourceDocument {
	return &model.ResourceDocument{
		Kind: model.KindStructureDefinition,
		URL:  "http://x.org/fhir/StructureDefinition/task-a",
		StructureDefinition: &model.StructureDefinitionFields{
			HasDifferential: true,
			Differential: []model.ElementDefinition{
				{Id: "Task.input", Path: "Task.input", Min: 1, Max: "*"},
				{Id: "Task.input:message-name", Path: "Task.input", SliceName: "message-name", Min: 1, Max: "1"},
				{Id: "Task.input:business-key", Path: "Task.input", SliceName: "business-key", Min: 0, Max: "1"},
				{Id: "Task.status", Path: "Task.status", Min: 1, Max: "1"},
			},
		},
	}
}

func TestCardinalitiesExtraction(t *testing.T) {
	c := NewCache(&fakeLocator{docs: map[string]*model.ResourceDocument{
		"http://x.org/fhir/StructureDefinition/task-a": taskProfile(),
	}})

	cards, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/task-a", "Task.input")
	require.NoError(t, err)

	base, ok := cards.Base()
	require.True(t, ok)
	assert.Equal(t, 1, base.Min)
	assert.True(t, base.Unbounded())

	assert.Equal(t, Cardinality{Min: 1, Max: "1"}, cards["message-name"])
	assert.Equal(t, Cardinality{Min: 0, Max: "1"}, cards["business-key"])
	// elements at other paths are not part of this map
	assert.NotContains(t, cards, "Task.status")
}

func TestCardinalitiesUnresolvedProfile(t *testing.T) {
	c := NewCache(&fakeLocator{docs: map[string]*model.ResourceDocument{}})

	_, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/absent", "Task.input")
	require.Error(t, err)
	var ae *lint.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, lint.ErrCodeProfileUnresolved, ae.Code)
}

func TestCardinalitiesNilLocator(t *testing.T) {
	c := NewCache(nil)
	_, err := c.Cardinalities("http://x.org/p", "Task.input")
	require.Error(t, err)
}

func TestCardinalitiesPerPathEntries(t *testing.T) {
	c := NewCache(&fakeLocator{docs: map[string]*model.ResourceDocument{
		"http://x.org/fhir/StructureDefinition/task-a": taskProfile(),
	}})

	inputs, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/task-a", "Task.input")
	require.NoError(t, err)
	status, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/task-a", "Task.status")
	require.NoError(t, err)

	assert.Contains(t, inputs, "message-name")
	base, ok := status.Base()
	require.True(t, ok)
	assert.Equal(t, Cardinality{Min: 1, Max: "1"}, base)
	assert.NotContains(t, status, "message-name")
}

func TestCardinalitiesComputedOnce(t *testing.T) {
	loc := &fakeLocator{docs: map[string]*model.ResourceDocument{
		"http://x.org/fhir/StructureDefinition/task-a": taskProfile(),
	}}
	c := NewCache(loc)

	first, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/task-a", "Task.input")
	require.NoError(t, err)

	// Mutating the locator after first access must not change the entry.
	delete(loc.docs, "http://x.org/fhir/StructureDefinition/task-a")
	second, err := c.Cardinalities("http://x.org/fhir/StructureDefinition/task-a", "Task.input")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
