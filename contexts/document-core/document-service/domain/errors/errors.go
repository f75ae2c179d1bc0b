// Package errors defines the document-service failure taxonomy. Every
// recoverable failure is a distinguishable value so the transport layer
// can map it to a caller-facing code without matching message text.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDocumentID = errors.New("invalid document id format")
	ErrDocumentExists    = errors.New("document already exists")
	ErrInvalidOperation  = errors.New("invalid operation")
)

// DocumentNotFoundError reports an absent document.
type DocumentNotFoundError struct {
	DocID string
}

func (e *DocumentNotFoundError) Error() string {
	return "document not found: " + e.DocID
}

// SchemaNotFoundError reports an absent schema.
type SchemaNotFoundError struct {
	SchemaID string
}

func (e *SchemaNotFoundError) Error() string {
	return "schema not found: " + e.SchemaID
}

// PathNotFoundError reports a pointer that does not resolve. Pointer is
// always the full original pointer string.
type PathNotFoundError struct {
	Pointer string
}

func (e *PathNotFoundError) Error() string {
	return "path not found: " + e.Pointer
}

// VersionConflictError reports an optimistic-lock mismatch. No write
// has been performed when this is returned.
type VersionConflictError struct {
	Expected int
	Actual   int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, but found %d", e.Expected, e.Actual)
}

// Violation is one structured schema violation.
type Violation struct {
	Message string   `json:"message"`
	Path    []string `json:"path"`
	Rule    string   `json:"rule"`
	Param   any      `json:"param,omitempty"`
}

// ValidationFailedError carries the full ordered violation list.
type ValidationFailedError struct {
	Violations []Violation
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed with %d violation(s)", len(e.Violations))
}

// NewCircularReference reports a reference cycle during schema
// resolution through the same structured-violation channel as schema
// validation failures.
func NewCircularReference(schemaID string) *ValidationFailedError {
	return &ValidationFailedError{Violations: []Violation{{
		Message: "circular reference detected: " + schemaID,
		Path:    []string{},
		Rule:    "ref_resolution",
	}}}
}
