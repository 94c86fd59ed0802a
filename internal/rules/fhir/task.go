package fhir

import (
	"github.com/plugdev/pluglint/internal/profile"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Task statuses that require a business-key input.
var businessKeyStatuses = map[string]bool{
	"in-progress": true,
	"completed":   true,
	"failed":      true,
}

func (r *Rules) evaluateTask(doc *model.ResourceDocument, subject model.FileRef) []lint.Item {
	var items []lint.Item

	task := doc.Task
	if task == nil {
		return append(items, lint.Error(lint.CategoryResource, subject,
			"Task document carries no task fields"))
	}

	if doc.Status != "draft" {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task status must be draft, got %q", doc.Status))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"Task status is draft"))
	}

	if task.Intent != "order" {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task intent must be order, got %q", task.Intent))
	} else {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"Task intent is order"))
	}

	items = append(items, r.checkOrganizationIdentifier(task.Requester, "requester", subject)...)
	items = append(items, r.checkOrganizationIdentifier(task.Recipient, "recipient", subject)...)
	items = append(items, r.checkTaskInstantiates(task, subject)...)
	items = append(items, r.checkTaskInputs(doc, task, subject)...)
	items = append(items, r.checkTaskCardinalities(task, subject)...)

	return items
}

// checkOrganizationIdentifier validates the requester/recipient identifier:
// fixed authority system, organization placeholder value.
func (r *Rules) checkOrganizationIdentifier(id *model.Identifier, role string, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if id == nil {
		return append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task %s identifier is missing", role))
	}
	if id.System != r.rules.OrganizationIdentifierSystem {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task %s identifier system must be %s, got %q", role, r.rules.OrganizationIdentifierSystem, id.System))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"Task %s identifier uses the organization authority", role))
	}
	if id.Value != r.rules.OrganizationPlaceholder {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task %s identifier value must equal the placeholder %s, got %q", role, r.rules.OrganizationPlaceholder, id.Value))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"Task %s identifier value equals the organization placeholder", role))
	}
	return items
}

// checkTaskInstantiates validates instantiatesCanonical: version placeholder
// suffix plus resolution to an existing ActivityDefinition.
func (r *Rules) checkTaskInstantiates(task *model.TaskFields, subject model.FileRef) []lint.Item {
	var items []lint.Item
	value := task.InstantiatesCanonical
	if value == "" {
		return append(items, lint.Error(lint.CategoryReference, subject,
			"Task instantiatesCanonical is missing"))
	}

	if model.CanonicalVersion(value) != r.rules.VersionPlaceholder {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"Task instantiatesCanonical %q must end with |%s", value, r.rules.VersionPlaceholder))
	} else {
		items = append(items, lint.Success(lint.CategoryReference, subject,
			"Task instantiatesCanonical carries the version placeholder"))
	}

	if r.locator == nil {
		items = append(items, lint.Warn(lint.CategoryReference, subject,
			"no resource set available, instantiatesCanonical resolution skipped"))
	} else if r.locator.ResourceByURL(model.KindActivityDefinition, value) == nil {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"Task instantiatesCanonical %q does not resolve to an ActivityDefinition", value))
	} else {
		items = append(items, lint.Successf(lint.CategoryReference, subject,
			"Task instantiatesCanonical %q resolves to an ActivityDefinition", value))
	}
	return items
}

// checkTaskInputs validates the input list: type coding and value presence,
// duplicate system#code pairs, the mandatory message-name slice and the
// status-conditional business-key slice.
func (r *Rules) checkTaskInputs(doc *model.ResourceDocument, task *model.TaskFields, subject model.FileRef) []lint.Item {
	var items []lint.Item

	seen := make(map[string]int)
	hasMessageName := false
	hasBusinessKey := false

	for i, in := range task.Inputs {
		if in.Type.System == "" || in.Type.Code == "" {
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"Task.input[%d] needs a type coding with system and code", i))
			continue
		}
		if in.Value == "" {
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"Task.input[%d] (%s) has no value", i, in.Type.Key()))
		}
		seen[in.Type.Key()]++
		if in.Type.System == r.rules.MessageSystem {
			switch in.Type.Code {
			case r.rules.MessageNameCode:
				hasMessageName = true
			case r.rules.BusinessKeyCode:
				hasBusinessKey = true
			}
		}
	}

	duplicates := 0
	for key, count := range seen {
		if count > 1 {
			duplicates++
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"duplicate slice: Task.input type %s occurs %d times", key, count))
		}
	}
	if duplicates == 0 {
		items = append(items, lint.Success(lint.CategoryResource, subject,
			"Task.input contains no duplicate type codings"))
	}

	if !hasMessageName {
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task.input is missing the mandatory %s slice", r.rules.MessageNameCode))
	} else {
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"Task.input carries the %s slice", r.rules.MessageNameCode))
	}

	switch {
	case businessKeyStatuses[doc.Status] && !hasBusinessKey:
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task.input requires a %s slice for status %s", r.rules.BusinessKeyCode, doc.Status))
	case doc.Status == "draft" && hasBusinessKey:
		items = append(items, lint.Errorf(lint.CategoryResource, subject,
			"Task.input must not carry a %s slice for status draft", r.rules.BusinessKeyCode))
	default:
		items = append(items, lint.Successf(lint.CategoryResource, subject,
			"Task.input %s slice matches status %s", r.rules.BusinessKeyCode, doc.Status))
	}

	return items
}

// checkTaskCardinalities counts inputs per slice code and checks them against
// the profile's slice cardinality map. An unresolvable profile degrades every
// dependent check to a single skipped diagnostic.
func (r *Rules) checkTaskCardinalities(task *model.TaskFields, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if task.InstantiatesProfile == "" {
		return append(items, lint.Warn(lint.CategoryCardinality, subject,
			"Task declares no profile, slice cardinality checks skipped"))
	}
	if r.profiles == nil {
		return append(items, lint.Warn(lint.CategoryCardinality, subject,
			"no profile cache available, slice cardinality checks skipped"))
	}

	cards, err := r.profiles.Cardinalities(task.InstantiatesProfile, "Task.input")
	if err != nil {
		return append(items, lint.Warnf(lint.CategoryCardinality, subject,
			"profile %s unresolved, slice cardinality checks skipped: %v", task.InstantiatesProfile, err))
	}

	counts := make(map[string]int)
	for _, in := range task.Inputs {
		counts[in.Type.Code]++
	}

	if base, ok := cards.Base(); ok {
		items = append(items, checkCount(len(task.Inputs), base, "Task.input", subject))
	}
	for slice, card := range cards {
		if slice == profile.BaseKey {
			continue
		}
		items = append(items, checkCount(counts[slice], card, "Task.input slice "+slice, subject))
	}
	return items
}
