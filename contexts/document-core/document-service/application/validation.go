package application

import (
	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/shared/jsonptr"
)

// Validator checks documents against resolved schemas and applies
// schema-declared defaults. Conformance evaluation itself is delegated
// to the ConformanceChecker port.
type Validator struct {
	Checker ports.ConformanceChecker
}

// Validate returns a ValidationFailedError carrying every violation the
// checker reports, or nil when the document conforms.
func (v Validator) Validate(document map[string]any, schema map[string]any) error {
	violations, err := v.Checker.Check(document, schema)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &domainerrors.ValidationFailedError{Violations: violations}
	}
	return nil
}

// ApplyDefaults returns a deep copy of the document with schema
// defaults filled in for absent properties. Object-typed properties
// present in both schema and document are recursed into; arrays only
// take a default at the array position itself, never per item.
func (v Validator) ApplyDefaults(document map[string]any, schema map[string]any) map[string]any {
	result := jsonptr.Clone(document).(map[string]any)
	applyDefaults(result, schema)
	return result
}

func applyDefaults(document map[string]any, schema map[string]any) {
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range properties {
		property, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		value, present := document[name]
		if !present {
			if def, has := property["default"]; has {
				// Defaults are copied so later document mutation
				// cannot reach back into the schema.
				document[name] = jsonptr.Clone(def)
			}
			continue
		}
		if property["type"] == "object" {
			if nested, ok := value.(map[string]any); ok {
				applyDefaults(nested, property)
			}
		}
	}
}
