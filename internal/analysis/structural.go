package analysis

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// documentSchemaJSON is the JSON Schema for the generic shape every resource
// document shares. Embedded as a constant to avoid filesystem dependencies.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://pluglint.dev/schemas/document.json",
  "type": "object",
  "required": ["resourceType"],
  "properties": {
    "resourceType": {
      "type": "string",
      "enum": ["Task", "StructureDefinition", "ValueSet", "CodeSystem", "ActivityDefinition", "Questionnaire"]
    },
    "url": {
      "type": "string",
      "minLength": 1
    },
    "version": { "type": "string" },
    "date": { "type": "string" },
    "status": {
      "type": "string",
      "enum": ["draft", "active", "retired", "unknown", "in-progress", "completed", "failed", "requested"]
    },
    "meta": {
      "type": "object",
      "properties": {
        "tag": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "system": { "type": "string" },
              "code": { "type": "string" }
            }
          }
        },
        "profile": {
          "type": "array",
          "items": { "type": "string" }
        }
      }
    }
  }
}`

// structuralValidator runs the stage-1 structural check over a document's
// raw source. A failure yields one diagnostic item and the kind rule set is
// skipped; siblings are unaffected. Safe for concurrent use.
type structuralValidator struct {
	schema *jsonschema.Schema
}

func newStructuralValidator() (*structuralValidator, error) {
	c := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource("https://pluglint.dev/schemas/document.json", doc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}
	s, err := c.Compile("https://pluglint.dev/schemas/document.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &structuralValidator{schema: s}, nil
}

// Check validates the document's raw source against the generic schema.
// Documents without source bytes pass: the tree model layer already parsed
// them. Returns the diagnostic items and whether the kind rules may run.
func (v *structuralValidator) Check(doc *model.ResourceDocument, subject model.FileRef) ([]lint.Item, bool) {
	if len(doc.Source) == 0 {
		return nil, true
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(doc.Source)))
	if err != nil {
		return []lint.Item{lint.Errorf(lint.CategoryStructural, subject,
			"document is not parseable JSON: %v", err)}, false
	}
	if err := v.schema.Validate(inst); err != nil {
		return []lint.Item{lint.Errorf(lint.CategoryStructural, subject,
			"document fails structural validation: %v", err)}, false
	}
	return []lint.Item{lint.Success(lint.CategoryStructural, subject,
		"document passes structural validation")}, true
}
