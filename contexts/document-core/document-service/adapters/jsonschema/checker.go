// Package jsonschemaadapter implements the ConformanceChecker port on
// santhosh-tekuri/jsonschema. Schemas arrive fully resolved (no $ref),
// so each check compiles the schema as a standalone resource.
package jsonschemaadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	"papyrus/internal/shared/jsonptr"
)

const schemaURL = "inline://schema.json"

type Checker struct {
	Logger *slog.Logger
}

// Check compiles the schema, evaluates the document, and flattens the
// validator's error tree into one violation per broken rule. Violations
// are data, not an error; the error return means the checker itself
// could not run.
func (c Checker) Check(document map[string]any, schema map[string]any) ([]domainerrors.Violation, error) {
	rawSchema, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(rawSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	// Round-trip the document through encoding/json so the instance
	// uses the decoded-JSON representation the validator expects.
	rawDoc, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var instance any
	if err := json.Unmarshal(rawDoc, &instance); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return flatten(ve), nil
		}
		return nil, err
	}
	return nil, nil
}

// flatten walks to the leaf causes; the root error only says the
// document "doesn't validate", the leaves name the broken rules.
func flatten(ve *jsonschema.ValidationError) []domainerrors.Violation {
	if len(ve.Causes) == 0 {
		return []domainerrors.Violation{toViolation(ve)}
	}
	var out []domainerrors.Violation
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}

func toViolation(ve *jsonschema.ValidationError) domainerrors.Violation {
	path, err := jsonptr.Parse(ve.InstanceLocation)
	if err != nil {
		path = []string{}
	}
	return domainerrors.Violation{
		Message: ve.Message,
		Path:    path,
		Rule:    keywordOf(ve.KeywordLocation),
		Param:   ve.KeywordLocation,
	}
}

// keywordOf extracts the violated keyword from a location such as
// "/properties/tags/minItems".
func keywordOf(keywordLocation string) string {
	trimmed := strings.TrimSuffix(keywordLocation, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
