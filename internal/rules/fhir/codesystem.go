package fhir

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func (r *Rules) evaluateCodeSystem(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	cs := doc.CodeSystem
	if cs == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"CodeSystem document carries no concept fields"))
	}

	if len(cs.Concepts) == 0 {
		items = append(items, lint.Error(lint.CategoryResource, subject,
			"CodeSystem defines no concepts"))
		return items
	}

	seen := make(map[string]bool, len(cs.Concepts))
	clean := true
	for _, c := range cs.Concepts {
		if c.Code == "" {
			clean = false
			items = append(items, lint.Error(lint.CategoryResource, subject,
				"CodeSystem contains a blank concept code"))
			continue
		}
		if seen[c.Code] {
			clean = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"CodeSystem duplicates concept code %q", c.Code))
		}
		seen[c.Code] = true
	}
	if clean {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"CodeSystem concept codes are non-blank and unique"))
	}

	return items
}
