package fhir

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func (r *Rules) evaluateValueSet(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	vs := doc.ValueSet
	if vs == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"ValueSet document carries no compose fields"))
	}

	withSystem := 0
	for i, inc := range vs.Includes {
		if inc.System == "" {
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"compose.include[%d] has no system", i))
			continue
		}
		withSystem++
		items = append(items, checkIncludeConcepts(inc, i, subject)...)
	}

	if withSystem == 0 {
		items = append(items, lint.Error(lint.CategoryResource, subject,
			"ValueSet needs at least one compose.include with a system"))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"ValueSet has %d compose.include entries with a system", withSystem))
	}

	return items
}

// checkIncludeConcepts requires concept codes to be non-blank and unique
// within one include.
func checkIncludeConcepts(inc model.ValueSetInclude, index int, subject model.FileRef) []lint.Item {
	var items []lint.Item
	seen := make(map[string]bool, len(inc.Concepts))
	clean := true
	for _, c := range inc.Concepts {
		if c.Code == "" {
			clean = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"compose.include[%d] contains a blank concept code", index))
			continue
		}
		if seen[c.Code] {
			clean = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"compose.include[%d] duplicates concept code %q", index, c.Code))
		}
		seen[c.Code] = true
	}
	if clean && len(inc.Concepts) > 0 {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"compose.include[%d] concept codes are non-blank and unique", index))
	}
	return items
}
