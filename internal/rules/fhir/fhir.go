// Package fhir holds one rule module per structured document kind. Each
// module takes a single parsed document and produces lint items; no module
// ever returns an error for a rule violation.
package fhir

import (
	"strconv"

	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/internal/profile"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Rules evaluates resource documents against the rulebook. Cardinality
// checks consult the profile cache; canonical resolution goes through the
// locator (the bundle's resource index).
type Rules struct {
	rules    *config.Rulebook
	profiles *profile.Cache
	locator  model.ResourceLocator
}

// New creates the resource rule sets. profiles and locator may be nil, which
// degrades the dependent checks to skipped diagnostics.
func New(rules *config.Rulebook, profiles *profile.Cache, locator model.ResourceLocator) *Rules {
	return &Rules{rules: rules, profiles: profiles, locator: locator}
}

// Evaluate dispatches the document to its kind-specific rule set. Unknown
// kinds yield a single diagnostic.
func (r *Rules) Evaluate(doc *model.ResourceDocument, file string) []lint.Item {
	subject := model.FileRef{File: file, Element: doc.URL}
	items := r.evaluateCommon(doc, subject)

	switch doc.Kind {
	case model.KindTask:
		items = append(items, r.evaluateTask(doc, subject)...)
	case model.KindStructureDefinition:
		items = append(items, r.evaluateStructureDefinition(doc, subject)...)
	case model.KindValueSet:
		items = append(items, r.evaluateValueSet(doc, subject)...)
	case model.KindCodeSystem:
		items = append(items, r.evaluateCodeSystem(doc, subject)...)
	case model.KindActivityDefinition:
		items = append(items, r.evaluateActivityDefinition(doc, subject)...)
	case model.KindQuestionnaire:
		items = append(items, r.evaluateQuestionnaire(doc, subject)...)
	default:
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"unsupported resource kind %q", doc.Kind))
	}
	return items
}

// evaluateCommon covers the obligations shared by every kind: required
// fields, read-access tagging and the literal placeholder tokens.
func (r *Rules) evaluateCommon(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if doc.URL == "" {
		items = append(items, lint.Error(lint.CategoryResource, subject, "url is missing"))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject, "url is present"))
	}

	if doc.Status == "" {
		items = append(items, lint.Error(lint.CategoryResource, subject, "status is missing"))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject, "status is present"))
	}

	if doc.Version != r.rules.VersionPlaceholder {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"version must equal the placeholder %s, got %q", r.rules.VersionPlaceholder, doc.Version))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"version equals the placeholder %s", r.rules.VersionPlaceholder))
	}

	if doc.Date != r.rules.DatePlaceholder {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"date must equal the placeholder %s, got %q", r.rules.DatePlaceholder, doc.Date))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"date equals the placeholder %s", r.rules.DatePlaceholder))
	}

	items = append(items, r.evaluateReadAccess(doc, subject)...)
	return items
}

// evaluateReadAccess checks for a read-access tag with code ALL or LOCAL and
// validates any parent-organization-role extensions attached to such tags.
func (r *Rules) evaluateReadAccess(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	found := false
	for _, tag := range doc.ReadAccessTags {
		if tag.System != r.rules.ReadAccessTagSystem {
			continue
		}
		if r.rules.IsReadAccessAll(tag.Code) {
			found = true
		}
		for _, ext := range tag.Extensions {
			if ext.URL != r.rules.ParentOrganizationRoleURL {
				continue
			}
			for _, coding := range ext.Codings {
				if r.rules.IsOrganizationRole(coding.Code) {
					items = append(items, lint.Successf(lint.CategoryReadAccess, subject,
						"parent organization role '%s' is a known organization role", coding.Code))
				} else {
					items = append(items, lint.Errorf(lint.CategoryReadAccess, subject,
						"parent organization role '%s' is not a known organization role", coding.Code))
				}
			}
		}
	}

	if found {
		items = append(items, lint.Success(lint.CategoryReadAccess, subject,
			"read-access tag with code ALL or LOCAL is present"))
	} else {
		items = append(items, lint.Error(lint.CategoryReadAccess, subject,
			"missing read-access-tag with code ALL or LOCAL"))
	}
	return items
}

// checkCount validates an observed element count against a cardinality.
func checkCount(count int, card profile.Cardinality, label string, subject model.FileRef) lint.Item {
	if count < card.Min {
		return lint.Errorf(lint.CategoryCardinality, subject,
			"%s occurs %d times, below minimum %d", label, count, card.Min)
	}
	if !card.Unbounded() {
		if max, err := strconv.Atoi(card.Max); err == nil && count > max {
			return lint.Errorf(lint.CategoryCardinality, subject,
				"%s occurs %d times, exceeds maximum %s", label, count, card.Max)
		}
	}
	return lint.Successf(lint.CategoryCardinality, subject,
		"%s occurs %d times, within [%d..%s]", label, count, card.Min, card.Max)
}
