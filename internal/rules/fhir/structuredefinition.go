package fhir

import (
	"strconv"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func (r *Rules) evaluateStructureDefinition(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	sd := doc.StructureDefinition
	if sd == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"StructureDefinition document carries no definition fields"))
	}

	if !sd.HasDifferential {
		items = append(items, lint.Error(lint.CategoryResource, subject,
			"StructureDefinition must carry a differential"))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"StructureDefinition carries a differential"))
	}

	if sd.HasSnapshot {
		items = append(items, lint.Error(lint.CategoryResource, subject,
			"StructureDefinition must not carry a snapshot"))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"StructureDefinition carries no snapshot"))
	}

	items = append(items, checkElementIds(sd.Differential, subject)...)
	items = append(items, checkSliceCardinalityRules(sd.Differential, subject)...)

	return items
}

// checkElementIds requires every differential element to have a unique id.
func checkElementIds(elements []model.ElementDefinition, subject model.FileRef) []lint.Item {
	var items []lint.Item
	seen := make(map[string]bool, len(elements))
	unique := true
	for i, el := range elements {
		if el.Id == "" {
			unique = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"differential element %d has no id", i))
			continue
		}
		if seen[el.Id] {
			unique = false
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"duplicate differential element id %q", el.Id))
		}
		seen[el.Id] = true
	}
	if unique && len(elements) > 0 {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"all differential element ids are unique"))
	}
	return items
}

// checkSliceCardinalityRules applies the profiling convention per sliced
// element: the sum of slice minimums should not exceed the base minimum
// (WARN) and must not exceed the base maximum (ERROR); no individual slice
// maximum may exceed the base maximum (ERROR).
func checkSliceCardinalityRules(elements []model.ElementDefinition, subject model.FileRef) []lint.Item {
	var items []lint.Item

	bases := make(map[string]model.ElementDefinition)
	slices := make(map[string][]model.ElementDefinition)
	for _, el := range elements {
		if el.SliceName == "" {
			bases[el.Path] = el
		} else {
			slices[el.Path] = append(slices[el.Path], el)
		}
	}

	for path, sliced := range slices {
		base, ok := bases[path]
		if !ok {
			continue // no base element constrained at this path
		}

		minSum := 0
		maxViolation := false
		for _, s := range sliced {
			minSum += s.Min
			if !base.Unbounded() && !s.Unbounded() {
				baseMax, err1 := strconv.Atoi(base.Max)
				sliceMax, err2 := strconv.Atoi(s.Max)
				if err1 == nil && err2 == nil && sliceMax > baseMax {
					maxViolation = true
					items = append(items, lint.Errorf(lint.CategoryCardinality, subject,
						"slice %s of %s has max %s exceeding base max %s", s.SliceName, path, s.Max, base.Max))
				}
			} else if !base.Unbounded() && s.Unbounded() {
				maxViolation = true
				items = append(items, lint.Errorf(lint.CategoryCardinality, subject,
					"slice %s of %s is unbounded but base max is %s", s.SliceName, path, base.Max))
			}
		}
		if !maxViolation {
			items = append(items, lint.Successf(lint.CategoryCardinality, subject,
				"no slice of %s exceeds the base maximum", path))
		}

		if minSum > base.Min {
			items = append(items, lint.Warnf(lint.CategoryCardinality, subject,
				"sum of slice minimums (%d) of %s exceeds base minimum %d", minSum, path, base.Min))
		} else {
			items = append(items, lint.Successf(lint.CategoryCardinality, subject,
				"sum of slice minimums of %s stays within the base minimum", path))
		}

		if !base.Unbounded() {
			if baseMax, err := strconv.Atoi(base.Max); err == nil && minSum > baseMax {
				items = append(items, lint.Errorf(lint.CategoryCardinality, subject,
					"sum of slice minimums (%d) of %s exceeds base maximum %s", minSum, path, base.Max))
			}
		}
	}

	return items
}
