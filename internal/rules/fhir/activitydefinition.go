package fhir

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func (r *Rules) evaluateActivityDefinition(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	ad := doc.ActivityDefinition
	if ad == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"ActivityDefinition document carries no authorization fields"))
	}

	if len(ad.MessageNames) == 0 {
		items = append(items, lint.Error(lint.CategoryResource, subject,
			"ActivityDefinition declares no message names"))
		return items
	}

	seen := make(map[string]bool, len(ad.MessageNames))
	clean := true
	for _, name := range ad.MessageNames {
		if name == "" {
			clean = false
			items = append(items, lint.Error(lint.CategoryResource, subject,
				"ActivityDefinition declares a blank message name"))
			continue
		}
		if seen[name] {
			clean = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"ActivityDefinition duplicates message name %q", name))
		}
		seen[name] = true
	}
	if clean {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"ActivityDefinition declares %d distinct message names", len(seen)))
	}

	return items
}
