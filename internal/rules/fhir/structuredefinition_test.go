package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func validStructureDefinition() *model.ResourceDocument {
	rb := config.Default()
	return &model.ResourceDocument{
		Kind:    model.KindStructureDefinition,
		URL:     "http://x.org/fhir/StructureDefinition/task-order",
		Status:  "active",
		Version: rb.VersionPlaceholder,
		Date:    rb.DatePlaceholder,
		ReadAccessTags: []model.ReadAccessTag{
			{Coding: model.Coding{System: rb.ReadAccessTagSystem, Code: "ALL"}},
		},
		StructureDefinition: &model.StructureDefinitionFields{
			HasDifferential: true,
			Differential: []model.ElementDefinition{
				{Id: "Task.input", Path: "Task.input", Min: 1, Max: "2"},
				{Id: "Task.input:message-name", Path: "Task.input", SliceName: "message-name", Min: 1, Max: "1"},
				{Id: "Task.input:business-key", Path: "Task.input", SliceName: "business-key", Min: 0, Max: "1"},
			},
		},
	}
}

// --- differential / snapshot ---

func TestStructureDefinitionRequiresDifferential(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.HasDifferential = false
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "must carry a differential"), 1)
}

func TestStructureDefinitionForbidsSnapshot(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.HasSnapshot = true
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "must not carry a snapshot"), 1)
}

// --- element ids ---

func TestStructureDefinitionUniqueElementIds(t *testing.T) {
	items := newRules().Evaluate(validStructureDefinition(), "sd.json")
	assert.Len(t, itemsWith(items, lint.SeveritySuccess, "element ids are unique"), 1)
}

func TestStructureDefinitionDuplicateElementId(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential = append(doc.StructureDefinition.Differential,
		model.ElementDefinition{Id: "Task.input", Path: "Task.other"})
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, `duplicate differential element id "Task.input"`), 1)
}

func TestStructureDefinitionElementWithoutId(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential = append(doc.StructureDefinition.Differential,
		model.ElementDefinition{Path: "Task.other"})
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "has no id"), 1)
}

// --- slice cardinality convention ---

func TestSliceMinSumWithinBaseMin(t *testing.T) {
	items := newRules().Evaluate(validStructureDefinition(), "sd.json")
	assert.Len(t, itemsWith(items, lint.SeveritySuccess, "sum of slice minimums"), 1)
	assert.Empty(t, itemsWith(items, lint.SeverityWarn, "sum of slice minimums"))
}

func TestSliceMinSumExceedsBaseMinWarns(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential[2].Min = 1 // sum 2 > base min 1
	items := newRules().Evaluate(doc, "sd.json")
	warns := itemsWith(items, lint.SeverityWarn, "exceeds base minimum")
	require.Len(t, warns, 1)
}

func TestSliceMinSumExceedsBaseMaxErrors(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential[0].Max = "1"
	doc.StructureDefinition.Differential[2].Min = 1 // sum 2 > base max 1
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "exceeds base maximum"), 1)
}

func TestSliceMaxExceedsBaseMaxErrors(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential[1].Max = "3" // slice max 3 > base max 2
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "exceeding base max"), 1)
}

func TestUnboundedSliceUnderBoundedBaseErrors(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential[1].Max = "*"
	items := newRules().Evaluate(doc, "sd.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "is unbounded but base max"), 1)
}

func TestUnboundedBaseAcceptsAnySliceMax(t *testing.T) {
	doc := validStructureDefinition()
	doc.StructureDefinition.Differential[0].Max = "*"
	doc.StructureDefinition.Differential[1].Max = "99"
	items := newRules().Evaluate(doc, "sd.json")
	assert.Empty(t, itemsWith(items, lint.SeverityError, "exceeding base max"))
}
