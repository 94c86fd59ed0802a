package model

import (
	"encoding/json"
	"strings"
)

// ResourceKind enumerates the structured document kinds the engine validates.
type ResourceKind string

const (
	KindTask                ResourceKind = "Task"
	KindStructureDefinition ResourceKind = "StructureDefinition"
	KindValueSet            ResourceKind = "ValueSet"
	KindCodeSystem          ResourceKind = "CodeSystem"
	KindActivityDefinition  ResourceKind = "ActivityDefinition"
	KindQuestionnaire       ResourceKind = "Questionnaire"
)

// ResourceKinds lists all document kinds in a stable order.
var ResourceKinds = []ResourceKind{
	KindTask, KindStructureDefinition, KindValueSet,
	KindCodeSystem, KindActivityDefinition, KindQuestionnaire,
}

// Coding is a system/code pair.
type Coding struct {
	System string
	Code   string
}

// Key returns the system#code identity of the coding.
func (c Coding) Key() string {
	return c.System + "#" + c.Code
}

// Extension is a URL-keyed extension carrying codings.
type Extension struct {
	URL     string
	Codings []Coding
}

// ReadAccessTag is one meta tag controlling read access, with any extensions
// attached to it.
type ReadAccessTag struct {
	Coding
	Extensions []Extension
}

// TaskInput is one Task.input entry: a type coding plus a value.
type TaskInput struct {
	Type  Coding
	Value string
}

// Identifier is a system/value identifier reference.
type Identifier struct {
	System string
	Value  string
}

// TaskFields are the fields specific to Task documents.
type TaskFields struct {
	Intent                string
	Requester             *Identifier
	Recipient             *Identifier
	InstantiatesCanonical string
	Inputs                []TaskInput
	// InstantiatesProfile is the profile the Task claims conformance to
	// (meta.profile), used for slice cardinality checks.
	InstantiatesProfile string
}

// ElementDefinition is one element of a StructureDefinition differential or
// snapshot, reduced to the fields cardinality analysis needs.
type ElementDefinition struct {
	Id        string
	Path      string
	SliceName string
	Min       int
	// Max is "0", "1", ... or "*" (unbounded).
	Max string
}

// Unbounded reports whether the element's max cardinality is "*".
func (e ElementDefinition) Unbounded() bool {
	return e.Max == "*"
}

// StructureDefinitionFields are the fields specific to StructureDefinition
// documents.
type StructureDefinitionFields struct {
	HasDifferential bool
	HasSnapshot     bool
	Differential    []ElementDefinition
}

// ValueSetInclude is one compose.include entry.
type ValueSetInclude struct {
	System   string
	Concepts []Coding
}

// ValueSetFields are the fields specific to ValueSet documents.
type ValueSetFields struct {
	Includes []ValueSetInclude
}

// CodeSystemFields are the fields specific to CodeSystem documents.
type CodeSystemFields struct {
	Concepts []Coding
}

// ActivityDefinitionFields are the fields specific to ActivityDefinition
// documents.
type ActivityDefinitionFields struct {
	// MessageNames are the message names the activity declares it handles
	// (process-authorization extension).
	MessageNames []string
}

// QuestionnaireItem is one item of a Questionnaire item tree.
type QuestionnaireItem struct {
	LinkId   string
	Text     string
	Type     string
	Required bool
	Items    []QuestionnaireItem
}

// QuestionnaireFields are the fields specific to Questionnaire documents.
type QuestionnaireFields struct {
	Items []QuestionnaireItem
}

// ResourceDocument is one parsed structured resource document. Kind selects
// which of the kind-specific field structs is populated; the shared fields
// are present on every kind.
type ResourceDocument struct {
	Kind    ResourceKind
	URL     string
	Status  string
	Version string
	Date    string

	ReadAccessTags []ReadAccessTag

	// Source is the raw document, when available, for structural validation.
	// The engine never parses it beyond JSON Schema checking.
	Source json.RawMessage

	Task                *TaskFields
	StructureDefinition *StructureDefinitionFields
	ValueSet            *ValueSetFields
	CodeSystem          *CodeSystemFields
	ActivityDefinition  *ActivityDefinitionFields
	Questionnaire       *QuestionnaireFields
}

// CanonicalStem returns the canonical value before the version separator,
// and whether a separator was present.
func CanonicalStem(canonical string) (string, bool) {
	stem, _, found := strings.Cut(canonical, "|")
	return stem, found
}

// CanonicalVersion returns the part after the version separator, or "".
func CanonicalVersion(canonical string) string {
	_, version, _ := strings.Cut(canonical, "|")
	return version
}
