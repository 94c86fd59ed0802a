package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func validQuestionnaire() *model.ResourceDocument {
	rb := config.Default()
	return &model.ResourceDocument{
		Kind:    model.KindQuestionnaire,
		URL:     "http://x.org/fhir/Questionnaire/release-approval",
		Status:  "active",
		Version: rb.VersionPlaceholder,
		Date:    rb.DatePlaceholder,
		ReadAccessTags: []model.ReadAccessTag{
			{Coding: model.Coding{System: rb.ReadAccessTagSystem, Code: "ALL"}},
		},
		Questionnaire: &model.QuestionnaireFields{
			Items: []model.QuestionnaireItem{
				{LinkId: "business-key", Text: "Business key", Type: "string", Required: true},
				{LinkId: "approve", Text: "Approve the release?", Type: "boolean", Required: true},
				{LinkId: "note", Text: "Optional note", Type: "text"},
			},
		},
	}
}

func TestQuestionnaireUniqueLinkIds(t *testing.T) {
	items := newRules().Evaluate(validQuestionnaire(), "q.json")
	assert.Len(t, itemsWith(items, lint.SeveritySuccess, "linkIds are unique"), 1)
}

func TestQuestionnaireDuplicateLinkId(t *testing.T) {
	doc := validQuestionnaire()
	doc.Questionnaire.Items = append(doc.Questionnaire.Items,
		model.QuestionnaireItem{LinkId: "approve", Text: "Again", Type: "boolean"})
	items := newRules().Evaluate(doc, "q.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, `duplicate Questionnaire item linkId "approve"`), 1)
}

func TestQuestionnaireNestedDuplicateLinkId(t *testing.T) {
	doc := validQuestionnaire()
	doc.Questionnaire.Items[2].Items = []model.QuestionnaireItem{
		{LinkId: "business-key", Text: "Nested", Type: "string"},
	}
	items := newRules().Evaluate(doc, "q.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, `duplicate Questionnaire item linkId "business-key"`), 1)
}

func TestQuestionnaireItemMissingFields(t *testing.T) {
	doc := validQuestionnaire()
	doc.Questionnaire.Items = append(doc.Questionnaire.Items,
		model.QuestionnaireItem{LinkId: "incomplete"})
	items := newRules().Evaluate(doc, "q.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "needs linkId, text and type"), 1)
}

func TestQuestionnaireRequiredOnDisplayItem(t *testing.T) {
	doc := validQuestionnaire()
	doc.Questionnaire.Items = append(doc.Questionnaire.Items,
		model.QuestionnaireItem{LinkId: "hint", Text: "Read this", Type: "display", Required: true})
	items := newRules().Evaluate(doc, "q.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "must not be required"), 1)
}

// --- CodeSystem ---

func validCodeSystem() *model.ResourceDocument {
	rb := config.Default()
	return &model.ResourceDocument{
		Kind:    model.KindCodeSystem,
		URL:     "http://x.org/fhir/CodeSystem/order-codes",
		Status:  "active",
		Version: rb.VersionPlaceholder,
		Date:    rb.DatePlaceholder,
		ReadAccessTags: []model.ReadAccessTag{
			{Coding: model.Coding{System: rb.ReadAccessTagSystem, Code: "ALL"}},
		},
		CodeSystem: &model.CodeSystemFields{
			Concepts: []model.Coding{{Code: "new"}, {Code: "update"}},
		},
	}
}

func TestCodeSystemCleanConcepts(t *testing.T) {
	items := newRules().Evaluate(validCodeSystem(), "cs.json")
	assert.Len(t, itemsWith(items, lint.SeveritySuccess, "non-blank and unique"), 1)
}

func TestCodeSystemDuplicateConcept(t *testing.T) {
	doc := validCodeSystem()
	doc.CodeSystem.Concepts = append(doc.CodeSystem.Concepts, model.Coding{Code: "new"})
	items := newRules().Evaluate(doc, "cs.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, `duplicates concept code "new"`), 1)
}

func TestCodeSystemNoConcepts(t *testing.T) {
	doc := validCodeSystem()
	doc.CodeSystem.Concepts = nil
	items := newRules().Evaluate(doc, "cs.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "defines no concepts"), 1)
}

// --- ActivityDefinition ---

func TestActivityDefinitionDistinctMessages(t *testing.T) {
	items := newRules().Evaluate(orderActivity(), "ad.json")
	assert.Len(t, itemsWith(items, lint.SeveritySuccess, "distinct message names"), 1)
}

func TestActivityDefinitionDuplicateMessage(t *testing.T) {
	doc := orderActivity()
	doc.ActivityDefinition.MessageNames = append(doc.ActivityDefinition.MessageNames, "startOrderTransfer")
	items := newRules().Evaluate(doc, "ad.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, `duplicates message name "startOrderTransfer"`), 1)
}

func TestActivityDefinitionNoMessages(t *testing.T) {
	doc := orderActivity()
	doc.ActivityDefinition.MessageNames = nil
	items := newRules().Evaluate(doc, "ad.json")
	assert.Len(t, itemsWith(items, lint.SeverityError, "declares no message names"), 1)
}
