package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"papyrus/contexts/document-core/document-service/domain/entities"
	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/shared/jsonptr"
)

const defaultListLimit = 100

// Service implements document CRUD with schema validation and
// optimistic locking. Every mutation is a self-contained
// read-modify-write: load current document and metadata, compare the
// caller's expected version, mutate a copy, revalidate the whole
// document against the schema it was created with, then persist the
// document before its metadata.
type Service struct {
	Storage   ports.Storage
	Schemas   *SchemaResolver
	Validator Validator
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CreateDocument validates the initial document against the schema
// (after applying defaults) and persists it at version 1. A customID,
// when given, must be a 26-character uppercase alphanumeric id that is
// not already in use.
func (s Service) CreateDocument(
	ctx context.Context,
	schemaID string,
	document map[string]any,
	customID string,
) (string, entities.DocumentMetadata, error) {
	if customID != "" {
		if !entities.IsValidDocumentID(customID) {
			return "", entities.DocumentMetadata{}, fmt.Errorf("%w: %s", domainerrors.ErrInvalidDocumentID, customID)
		}
		_, err := s.Storage.ReadDocument(ctx, customID)
		switch {
		case err == nil:
			return "", entities.DocumentMetadata{}, fmt.Errorf("%w: %s", domainerrors.ErrDocumentExists, customID)
		case errors.Is(err, ports.ErrNotFound):
			// id is free
		default:
			return "", entities.DocumentMetadata{}, err
		}
	}

	schema, err := s.Schemas.Load(ctx, schemaID)
	if err != nil {
		return "", entities.DocumentMetadata{}, err
	}

	if document == nil {
		document = map[string]any{}
	}
	withDefaults := s.Validator.ApplyDefaults(document, schema)
	if err := s.Validator.Validate(withDefaults, schema); err != nil {
		return "", entities.DocumentMetadata{}, err
	}

	docID := customID
	if docID == "" {
		docID, err = s.IDGen.NewID(ctx)
		if err != nil {
			return "", entities.DocumentMetadata{}, err
		}
	}

	metadata := entities.NewDocumentMetadata(docID, schemaID, s.Clock.Now().UTC())
	if err := s.Storage.WriteDocument(ctx, docID, withDefaults); err != nil {
		return "", entities.DocumentMetadata{}, err
	}
	if err := s.Storage.WriteMetadata(ctx, docID, metadata); err != nil {
		return "", entities.DocumentMetadata{}, err
	}

	s.log("document created", "document_created", "doc_id", docID, "schema_id", schemaID)
	return docID, metadata, nil
}

// ReadNode returns the value at the pointer and the current version.
// Reads never consume a version argument; there is no optimistic lock
// on the read path.
func (s Service) ReadNode(ctx context.Context, docID string, pointer string) (any, int, error) {
	document, metadata, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	if isRootPointer(pointer) {
		return document, metadata.Version, nil
	}
	value, err := jsonptr.Resolve(document, pointer)
	if err != nil {
		return nil, 0, mapPointerError(err)
	}
	return value, metadata.Version, nil
}

// UpdateNode replaces the value at the pointer under optimistic
// locking. The final pointer token may name a new map key; missing
// intermediate nodes are never created.
func (s Service) UpdateNode(
	ctx context.Context,
	docID string,
	pointer string,
	value any,
	expectedVersion int,
) (any, int, error) {
	document, metadata, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	if metadata.Version != expectedVersion {
		return nil, 0, &domainerrors.VersionConflictError{Expected: expectedVersion, Actual: metadata.Version}
	}
	if isRootPointer(pointer) {
		return nil, 0, fmt.Errorf("%w: document root cannot be replaced", domainerrors.ErrInvalidOperation)
	}

	updatedAny, err := jsonptr.Set(document, pointer, value)
	if err != nil {
		return nil, 0, mapPointerError(err)
	}
	updated := updatedAny.(map[string]any)

	newMetadata, err := s.commit(ctx, updated, metadata)
	if err != nil {
		return nil, 0, err
	}
	s.log("node updated", "node_updated", "doc_id", docID, "pointer", pointer, "version", newMetadata.Version)
	return value, newMetadata.Version, nil
}

// CreateNode appends a value to the sequence at parentPointer under
// optimistic locking. Only sequence parents are supported; appending to
// a map position is a deliberate non-operation (use UpdateNode with a
// pointer naming the new key instead).
func (s Service) CreateNode(
	ctx context.Context,
	docID string,
	parentPointer string,
	value any,
	expectedVersion int,
) (any, int, error) {
	document, metadata, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	if metadata.Version != expectedVersion {
		return nil, 0, &domainerrors.VersionConflictError{Expected: expectedVersion, Actual: metadata.Version}
	}

	parent, err := s.resolveNode(document, parentPointer)
	if err != nil {
		return nil, 0, err
	}
	switch parent.(type) {
	case []any:
	case map[string]any:
		return nil, 0, fmt.Errorf("%w: parent at %q must be an array for append operations, got object",
			domainerrors.ErrInvalidOperation, parentPointer)
	default:
		return nil, 0, fmt.Errorf("%w: parent at %q must be an array for append operations, got %T",
			domainerrors.ErrInvalidOperation, parentPointer, parent)
	}

	updatedAny, err := jsonptr.Append(document, parentPointer, value)
	if err != nil {
		return nil, 0, mapPointerError(err)
	}
	updated := updatedAny.(map[string]any)

	newMetadata, err := s.commit(ctx, updated, metadata)
	if err != nil {
		return nil, 0, err
	}
	s.log("node appended", "node_appended", "doc_id", docID, "pointer", parentPointer, "version", newMetadata.Version)
	return value, newMetadata.Version, nil
}

// DeleteNode removes the node at the pointer under optimistic locking
// and returns the removed value. The root is never deletable,
// regardless of document state.
func (s Service) DeleteNode(
	ctx context.Context,
	docID string,
	pointer string,
	expectedVersion int,
) (any, int, error) {
	if isRootPointer(pointer) {
		return nil, 0, fmt.Errorf("%w: cannot delete document root", domainerrors.ErrInvalidOperation)
	}
	document, metadata, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	if metadata.Version != expectedVersion {
		return nil, 0, &domainerrors.VersionConflictError{Expected: expectedVersion, Actual: metadata.Version}
	}

	removed, err := jsonptr.Resolve(document, pointer)
	if err != nil {
		return nil, 0, mapPointerError(err)
	}
	updatedAny, err := jsonptr.Delete(document, pointer)
	if err != nil {
		return nil, 0, mapPointerError(err)
	}
	updated := updatedAny.(map[string]any)

	newMetadata, err := s.commit(ctx, updated, metadata)
	if err != nil {
		return nil, 0, err
	}
	s.log("node deleted", "node_deleted", "doc_id", docID, "pointer", pointer, "version", newMetadata.Version)
	return removed, newMetadata.Version, nil
}

// ListDocuments returns one metadata entry per stored document id,
// paginated. Ids whose metadata is unexpectedly absent are skipped
// rather than failing the whole call.
func (s Service) ListDocuments(ctx context.Context, limit int, offset int) ([]entities.DocumentMetadata, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	ids, err := s.Storage.ListDocuments(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]entities.DocumentMetadata, 0, len(ids))
	for _, id := range ids {
		metadata, ok, err := s.Storage.ReadMetadata(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, metadata)
	}
	return out, nil
}

// commit revalidates the whole mutated document against the schema the
// document was created with, then persists document before metadata.
func (s Service) commit(
	ctx context.Context,
	document map[string]any,
	metadata entities.DocumentMetadata,
) (entities.DocumentMetadata, error) {
	schema, err := s.Schemas.Load(ctx, metadata.SchemaID)
	if err != nil {
		return entities.DocumentMetadata{}, err
	}
	if err := s.Validator.Validate(document, schema); err != nil {
		return entities.DocumentMetadata{}, err
	}
	next := metadata.IncrementVersion(s.Clock.Now().UTC())
	if err := s.Storage.WriteDocument(ctx, metadata.DocID, document); err != nil {
		return entities.DocumentMetadata{}, err
	}
	if err := s.Storage.WriteMetadata(ctx, metadata.DocID, next); err != nil {
		return entities.DocumentMetadata{}, err
	}
	return next, nil
}

func (s Service) loadDocument(ctx context.Context, docID string) (map[string]any, entities.DocumentMetadata, error) {
	document, err := s.Storage.ReadDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, entities.DocumentMetadata{}, &domainerrors.DocumentNotFoundError{DocID: docID}
		}
		return nil, entities.DocumentMetadata{}, err
	}
	metadata, ok, err := s.Storage.ReadMetadata(ctx, docID)
	if err != nil {
		return nil, entities.DocumentMetadata{}, err
	}
	if !ok {
		return nil, entities.DocumentMetadata{}, &domainerrors.DocumentNotFoundError{DocID: docID}
	}
	return document, metadata, nil
}

func (s Service) resolveNode(document map[string]any, pointer string) (any, error) {
	if isRootPointer(pointer) {
		return document, nil
	}
	value, err := jsonptr.Resolve(document, pointer)
	if err != nil {
		return nil, mapPointerError(err)
	}
	return value, nil
}

func (s Service) log(msg string, event string, args ...any) {
	if s.Logger == nil {
		return
	}
	attrs := append([]any{
		"event", event,
		"module", "document-core/document-service",
		"layer", "application",
	}, args...)
	s.Logger.Info(msg, attrs...)
}

// isRootPointer accepts both the RFC 6901 root ("") and the "/" form
// the original tooling sends for the document root.
func isRootPointer(pointer string) bool {
	return pointer == "" || pointer == "/"
}

func mapPointerError(err error) error {
	var notFound *jsonptr.NotFoundError
	if errors.As(err, &notFound) {
		return &domainerrors.PathNotFoundError{Pointer: notFound.Pointer}
	}
	var syntax *jsonptr.SyntaxError
	if errors.As(err, &syntax) {
		return fmt.Errorf("%w: %s", domainerrors.ErrInvalidOperation, syntax.Error())
	}
	if errors.Is(err, jsonptr.ErrRootOperation) {
		return fmt.Errorf("%w: %s", domainerrors.ErrInvalidOperation, err)
	}
	return err
}
