package ports

import (
	"context"
	"errors"
	"time"

	"papyrus/contexts/document-core/document-service/domain/entities"
	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
)

// Storage adapter sentinels. Adapters must signal absence with
// ErrNotFound (wrapped is fine); callers match with errors.Is and never
// inspect message text. Any other storage failure propagates as-is.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotImplemented = errors.New("not implemented")
)

// Storage persists document content and metadata, each write
// individually atomic from the perspective of concurrent readers. The
// (document, metadata) pair is not atomic as a unit; the service writes
// the document first and accepts the narrow crash window between them.
type Storage interface {
	ReadDocument(ctx context.Context, id string) (map[string]any, error)
	WriteDocument(ctx context.Context, id string, content map[string]any) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, limit int, offset int) ([]string, error)
	ReadMetadata(ctx context.Context, id string) (entities.DocumentMetadata, bool, error)
	WriteMetadata(ctx context.Context, id string, metadata entities.DocumentMetadata) error
}

// SchemaFetcher reads raw (unresolved) schemas. Schemas are stored as
// documents, so any Storage satisfies this.
type SchemaFetcher interface {
	ReadDocument(ctx context.Context, id string) (map[string]any, error)
}

// ConformanceChecker evaluates a document against a fully resolved
// schema and returns one violation per broken rule. A nil slice means
// the document conforms. The returned error is reserved for checker
// malfunction (for example an uncompilable schema), not for violations.
type ConformanceChecker interface {
	Check(document map[string]any, schema map[string]any) ([]domainerrors.Violation, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
