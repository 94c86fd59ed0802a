package fhir

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// requirableItemTypes are the item types a required flag may be set on.
// Display and group items carry no answer, so requiring them is meaningless.
var requirableItemTypes = map[string]bool{
	"string":   true,
	"text":     true,
	"boolean":  true,
	"integer":  true,
	"decimal":  true,
	"date":     true,
	"dateTime": true,
	"time":     true,
	"url":      true,
	"choice":   true,
	"quantity": true,
}

func (r *Rules) evaluateQuestionnaire(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	q := doc.Questionnaire
	if q == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"Questionnaire document carries no items"))
	}

	linkIds := make(map[string]bool)
	unique := true
	var walk func(qi []model.QuestionnaireItem)
	walk = func(qi []model.QuestionnaireItem) {
		for _, item := range qi {
			if item.LinkId == "" || item.Text == "" || item.Type == "" {
				items = append(items, lint.Errorf(lint.CategoryResource, subject,
					"Questionnaire item %q needs linkId, text and type", item.LinkId))
			}
			if item.LinkId != "" {
				if linkIds[item.LinkId] {
					unique = false
					items = append(items, lint.Errorf(lint.CategoryResource, subject,
						"duplicate Questionnaire item linkId %q", item.LinkId))
				}
				linkIds[item.LinkId] = true
			}
			if item.Required && !requirableItemTypes[item.Type] {
				items = append(items, lint.Errorf(lint.CategoryResource, subject,
					"Questionnaire item %q of type %q must not be required", item.LinkId, item.Type))
			}
			walk(item.Items)
		}
	}
	walk(q.Items)

	if unique && len(linkIds) > 0 {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"all Questionnaire item linkIds are unique"))
	}

	return items
}
