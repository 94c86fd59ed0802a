// Package crossref resolves canonical references declared in process graphs
// against the resource document set: profiles, message names and
// instantiates-canonical links.
package crossref

import (
	"strings"
	"unicode"

	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Recognized field injection names. Anything else is an unknown injection.
const (
	FieldProfile               = "profile"
	FieldMessageName           = "messageName"
	FieldInstantiatesCanonical = "instantiatesCanonical"
)

// ResourceIndex is the lookup surface the checker needs: canonical URL
// resolution plus reverse lookup of activities by declared message name.
type ResourceIndex interface {
	model.ResourceLocator
	ActivityByMessageName(name string) *model.ResourceDocument
}

// Checker validates canonical references against a resource index. It runs
// after all documents of its scope are parsed, so every resolution is against
// the complete set.
type Checker struct {
	rules   *config.Rulebook
	locator ResourceIndex
}

// NewChecker creates a Checker over the given resource set.
func NewChecker(rules *config.Rulebook, locator ResourceIndex) *Checker {
	return &Checker{rules: rules, locator: locator}
}

// CheckInjections validates every field injection of the node. The three
// recognized fields must be literals: resolution happens at analysis time,
// not at process-run time, so an expression value is always an error.
func (c *Checker) CheckInjections(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	var profile, messageName, instantiates string
	for _, fi := range node.FieldInjections {
		switch fi.Name {
		case FieldProfile, FieldMessageName, FieldInstantiatesCanonical:
			if fi.Kind == model.ValueExpression {
				items = append(items, lint.Errorf(lint.CategoryInjection, subject,
					"field injection %q must be a literal, expression %q cannot be resolved statically",
					fi.Name, fi.Value))
				continue
			}
			switch fi.Name {
			case FieldProfile:
				profile = fi.Value
				items = append(items, c.checkProfile(fi.Value, subject)...)
			case FieldMessageName:
				messageName = fi.Value
				items = append(items, c.CheckMessageName(fi.Value, subject)...)
			case FieldInstantiatesCanonical:
				instantiates = fi.Value
				items = append(items, c.checkInstantiatesCanonical(fi.Value, subject)...)
			}
		default:
			items = append(items, lint.Warnf(lint.CategoryInjection, subject,
				"unknown field injection %q", fi.Name))
		}
	}

	if profile != "" {
		if instantiates != "" {
			items = append(items, c.checkAgreement(profile, instantiates, subject)...)
		}
		if messageName != "" {
			items = append(items, c.checkAgreement(profile, messageName, subject)...)
		}
	}

	return items
}

// checkProfile validates the declared task profile: non-empty, version
// placeholder present, resolvable to a StructureDefinition.
func (c *Checker) checkProfile(value string, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if value == "" {
		return append(items, lint.Error(lint.CategoryReference, subject,
			"profile is empty"))
	}
	if model.CanonicalVersion(value) != c.rules.VersionPlaceholder {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"profile %q does not end with |%s", value, c.rules.VersionPlaceholder))
	} else {
		items = append(items, lint.Success(lint.CategoryReference, subject,
			"profile carries the version placeholder"))
	}
	if c.locator.ResourceByURL(model.KindStructureDefinition, value) == nil {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"profile %q does not resolve to a StructureDefinition", value))
	} else {
		items = append(items, lint.Successf(lint.CategoryReference, subject,
			"profile %q resolves to a StructureDefinition", value))
	}
	return items
}

// CheckMessageName validates a declared message name: non-empty and declared
// by some ActivityDefinition in the resource set.
func (c *Checker) CheckMessageName(name string, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if name == "" {
		return append(items, lint.Error(lint.CategoryReference, subject,
			"message name is empty"))
	}
	if c.locator.ActivityByMessageName(name) == nil {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"no ActivityDefinition declares message name %q", name))
	} else {
		items = append(items, lint.Successf(lint.CategoryReference, subject,
			"message name %q is declared by an ActivityDefinition", name))
	}
	return items
}

// checkInstantiatesCanonical validates the instantiates-canonical reference:
// non-empty, version placeholder present, resolvable to an ActivityDefinition.
func (c *Checker) checkInstantiatesCanonical(value string, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if value == "" {
		return append(items, lint.Error(lint.CategoryReference, subject,
			"instantiatesCanonical is empty"))
	}
	if model.CanonicalVersion(value) != c.rules.VersionPlaceholder {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"instantiatesCanonical %q does not end with |%s", value, c.rules.VersionPlaceholder))
	} else {
		items = append(items, lint.Success(lint.CategoryReference, subject,
			"instantiatesCanonical carries the version placeholder"))
	}
	if c.locator.ResourceByURL(model.KindActivityDefinition, value) == nil {
		items = append(items, lint.Errorf(lint.CategoryReference, subject,
			"instantiatesCanonical %q does not resolve to an ActivityDefinition", value))
	} else {
		items = append(items, lint.Successf(lint.CategoryReference, subject,
			"instantiatesCanonical %q resolves to an ActivityDefinition", value))
	}
	return items
}

// checkAgreement applies the stem agreement heuristic: the profile's
// identifying segment and the other canonical (or message name) must share at
// least one token. This is deliberately a heuristic, not an equality check.
func (c *Checker) checkAgreement(profile, other string, subject model.FileRef) []lint.Item {
	profStem, _ := model.CanonicalStem(profile)
	otherStem, _ := model.CanonicalStem(other)

	profTokens := identifyingTokens(profStem, c.rules.AgreementMinTokenLen)
	otherTokens := identifyingTokens(otherStem, c.rules.AgreementMinTokenLen)

	for tok := range profTokens {
		if otherTokens[tok] {
			return []lint.Item{lint.Successf(lint.CategoryReference, subject,
				"profile and %q agree on %q", other, tok)}
		}
	}
	return []lint.Item{lint.Warnf(lint.CategoryReference, subject,
		"profile %q and %q share no identifying token", profile, other)}
}

// identifyingTokens extracts the comparison tokens of a canonical stem or
// message name: the last path segment split at camel-case, dash, underscore
// and dot boundaries, case-folded, keeping tokens of at least minLen runes.
func identifyingTokens(s string, minLen int) map[string]bool {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}

	tokens := make(map[string]bool)
	var cur []rune
	flush := func() {
		if len(cur) >= minLen {
			tokens[strings.ToLower(string(cur))] = true
		}
		cur = cur[:0]
	}
	for _, r := range s {
		switch {
		case r == '-' || r == '_' || r == '.':
			flush()
		case unicode.IsUpper(r) && len(cur) > 0 && !unicode.IsUpper(cur[len(cur)-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return tokens
}
