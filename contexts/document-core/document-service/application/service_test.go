package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"papyrus/contexts/document-core/document-service/domain/entities"
	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/shared/jsonptr"
)

type testStorage struct {
	documents map[string]map[string]any
	metadata  map[string]entities.DocumentMetadata

	writeDocumentErr error
	readMetadataErr  error
}

func newTestStorage() *testStorage {
	return &testStorage{
		documents: make(map[string]map[string]any),
		metadata:  make(map[string]entities.DocumentMetadata),
	}
}

func (s *testStorage) ReadDocument(_ context.Context, id string) (map[string]any, error) {
	document, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, id)
	}
	return jsonptr.Clone(document).(map[string]any), nil
}

func (s *testStorage) WriteDocument(_ context.Context, id string, content map[string]any) error {
	if s.writeDocumentErr != nil {
		return s.writeDocumentErr
	}
	s.documents[id] = jsonptr.Clone(content).(map[string]any)
	return nil
}

func (s *testStorage) DeleteDocument(_ context.Context, id string) error {
	delete(s.documents, id)
	delete(s.metadata, id)
	return nil
}

func (s *testStorage) ListDocuments(_ context.Context, limit int, offset int) ([]string, error) {
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *testStorage) ReadMetadata(_ context.Context, id string) (entities.DocumentMetadata, bool, error) {
	if s.readMetadataErr != nil {
		return entities.DocumentMetadata{}, false, s.readMetadataErr
	}
	metadata, ok := s.metadata[id]
	return metadata, ok, nil
}

func (s *testStorage) WriteMetadata(_ context.Context, id string, metadata entities.DocumentMetadata) error {
	s.metadata[id] = metadata
	return nil
}

// testFetcher serves schemas from a fixed map.
type testFetcher struct {
	schemas map[string]map[string]any
}

func (f testFetcher) ReadDocument(_ context.Context, id string) (map[string]any, error) {
	schema, ok := f.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, id)
	}
	return jsonptr.Clone(schema).(map[string]any), nil
}

// requiredChecker flags each top-level required property that is absent
// from the document. Enough conformance behavior for service tests.
type requiredChecker struct{}

func (requiredChecker) Check(document map[string]any, schema map[string]any) ([]domainerrors.Violation, error) {
	var violations []domainerrors.Violation
	for _, field := range RequiredFields(schema) {
		if _, ok := document[field]; !ok {
			violations = append(violations, domainerrors.Violation{
				Message: "missing required property: " + field,
				Path:    []string{},
				Rule:    "required",
				Param:   field,
			})
		}
	}
	return violations, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDGen struct {
	ids  []string
	next int
}

func (g *sequenceIDGen) NewID(context.Context) (string, error) {
	if g.next >= len(g.ids) {
		return "", errors.New("id generator exhausted")
	}
	id := g.ids[g.next]
	g.next++
	return id, nil
}

const (
	testDocID   = "01HXZW4T8NQY2M5K7J9B3C6D8E"
	otherDocID  = "01HXZW4T8NQY2M5K7J9B3C6D8F"
	reportsID   = "reports_v1"
	documentsID = "documents_v1"
)

func reportSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title":    map[string]any{"type": "string"},
			"status":   map[string]any{"type": "string", "default": "draft"},
			"sections": map[string]any{"type": "array"},
			"meta": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"owner": map[string]any{"type": "string", "default": "unassigned"},
				},
			},
		},
	}
}

func newTestService(storage *testStorage) Service {
	fetcher := testFetcher{schemas: map[string]map[string]any{
		reportsID: reportSchema(),
	}}
	return Service{
		Storage:   storage,
		Schemas:   NewSchemaResolver(fetcher, nil),
		Validator: Validator{Checker: requiredChecker{}},
		Clock:     fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		IDGen:     &sequenceIDGen{ids: []string{testDocID, otherDocID}},
	}
}

func TestCreateDocumentGeneratesIDAndStartsAtVersionOne(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	docID, metadata, err := service.CreateDocument(context.Background(), reportsID, map[string]any{
		"title":    "Q1 Report",
		"sections": []any{},
	}, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if docID != testDocID {
		t.Fatalf("docID = %q", docID)
	}
	if metadata.Version != 1 {
		t.Fatalf("version = %d, want 1", metadata.Version)
	}
	if metadata.SchemaID != reportsID {
		t.Fatalf("schema id = %q", metadata.SchemaID)
	}
	if !metadata.CreatedAt.Equal(metadata.UpdatedAt) {
		t.Fatal("created and updated timestamps should match at version 1")
	}

	stored := storage.documents[docID]
	if stored["status"] != "draft" {
		t.Fatalf("default not applied, status = %v", stored["status"])
	}
}

func TestCreateDocumentAppliesNestedDefaults(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	docID, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{
		"title": "Q1 Report",
		"meta":  map[string]any{},
	}, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	meta := storage.documents[docID]["meta"].(map[string]any)
	if meta["owner"] != "unassigned" {
		t.Fatalf("nested default not applied: %v", meta)
	}
}

func TestCreateDocumentRejectsInvalidInitialDocument(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	_, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{}, "")
	var failed *domainerrors.ValidationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected ValidationFailedError, got %v", err)
	}
	if len(failed.Violations) != 1 || failed.Violations[0].Rule != "required" {
		t.Fatalf("violations = %+v", failed.Violations)
	}
	if len(storage.documents) != 0 {
		t.Fatal("invalid document was persisted")
	}
}

func TestCreateDocumentWithCustomID(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	docID, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{"title": "x"}, otherDocID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if docID != otherDocID {
		t.Fatalf("docID = %q, want custom id", docID)
	}

	_, _, err = service.CreateDocument(context.Background(), reportsID, map[string]any{"title": "x"}, otherDocID)
	if !errors.Is(err, domainerrors.ErrDocumentExists) {
		t.Fatalf("expected ErrDocumentExists, got %v", err)
	}
}

func TestCreateDocumentRejectsMalformedCustomID(t *testing.T) {
	service := newTestService(newTestStorage())

	for _, id := range []string{"short", "lowercase-not-allowed-here", "01HXZW4T8NQY2M5K7J9B3C6D8!"} {
		_, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{"title": "x"}, id)
		if !errors.Is(err, domainerrors.ErrInvalidDocumentID) {
			t.Fatalf("id %q: expected ErrInvalidDocumentID, got %v", id, err)
		}
	}
}

func TestCreateDocumentUnknownSchema(t *testing.T) {
	service := newTestService(newTestStorage())

	_, _, err := service.CreateDocument(context.Background(), "nope", map[string]any{"title": "x"}, "")
	var notFound *domainerrors.SchemaNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected SchemaNotFoundError, got %v", err)
	}
	if notFound.SchemaID != "nope" {
		t.Fatalf("schema id = %q", notFound.SchemaID)
	}
}

func mustCreate(t *testing.T, service Service, document map[string]any) string {
	t.Helper()
	docID, _, err := service.CreateDocument(context.Background(), reportsID, document, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return docID
}

func TestReadNode(t *testing.T) {
	service := newTestService(newTestStorage())
	docID := mustCreate(t, service, map[string]any{
		"title":    "Q1 Report",
		"sections": []any{map[string]any{"heading": "Intro"}},
	})

	value, version, err := service.ReadNode(context.Background(), docID, "/sections/0/heading")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if value != "Intro" || version != 1 {
		t.Fatalf("got (%v, %d)", value, version)
	}

	// Both root spellings return the whole document.
	for _, pointer := range []string{"", "/"} {
		root, _, err := service.ReadNode(context.Background(), docID, pointer)
		if err != nil {
			t.Fatalf("read root %q failed: %v", pointer, err)
		}
		if root.(map[string]any)["title"] != "Q1 Report" {
			t.Fatalf("root read %q returned %v", pointer, root)
		}
	}
}

func TestReadNodeErrors(t *testing.T) {
	service := newTestService(newTestStorage())
	docID := mustCreate(t, service, map[string]any{"title": "x"})

	_, _, err := service.ReadNode(context.Background(), "01HXZW4T8NQY2M5K7J9B3C6D99", "")
	var docNotFound *domainerrors.DocumentNotFoundError
	if !errors.As(err, &docNotFound) {
		t.Fatalf("expected DocumentNotFoundError, got %v", err)
	}

	_, _, err = service.ReadNode(context.Background(), docID, "/missing")
	var pathNotFound *domainerrors.PathNotFoundError
	if !errors.As(err, &pathNotFound) {
		t.Fatalf("expected PathNotFoundError, got %v", err)
	}
	if pathNotFound.Pointer != "/missing" {
		t.Fatalf("pointer = %q", pathNotFound.Pointer)
	}
}

func TestUpdateNodeBumpsVersion(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "before"})

	value, version, err := service.UpdateNode(context.Background(), docID, "/title", "after", 1)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if value != "after" || version != 2 {
		t.Fatalf("got (%v, %d), want (after, 2)", value, version)
	}
	if storage.documents[docID]["title"] != "after" {
		t.Fatal("update not persisted")
	}
	if storage.metadata[docID].Version != 2 {
		t.Fatal("metadata version not persisted")
	}
}

func TestUpdateNodeCanAddNewMapKey(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "x"})

	_, _, err := service.UpdateNode(context.Background(), docID, "/summary", "fresh", 1)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if storage.documents[docID]["summary"] != "fresh" {
		t.Fatal("new key not persisted")
	}
}

func TestUpdateNodeVersionConflictLeavesDocumentUntouched(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "before"})

	_, _, err := service.UpdateNode(context.Background(), docID, "/title", "after", 7)
	var conflict *domainerrors.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected VersionConflictError, got %v", err)
	}
	if conflict.Expected != 7 || conflict.Actual != 1 {
		t.Fatalf("conflict = %+v", conflict)
	}
	if storage.documents[docID]["title"] != "before" {
		t.Fatal("conflicting write mutated the document")
	}
	if storage.metadata[docID].Version != 1 {
		t.Fatal("conflicting write bumped the version")
	}
}

func TestUpdateNodeRejectsRootAndRevalidates(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "x"})

	for _, pointer := range []string{"", "/"} {
		if _, _, err := service.UpdateNode(context.Background(), docID, pointer, map[string]any{}, 1); !errors.Is(err, domainerrors.ErrInvalidOperation) {
			t.Fatalf("root update %q: expected ErrInvalidOperation, got %v", pointer, err)
		}
	}

	// A mutation that would break the schema is rejected whole.
	docID2 := mustCreate(t, service, map[string]any{"title": "keep", "meta": map[string]any{"owner": "a"}})
	_, _, err := service.DeleteNode(context.Background(), docID2, "/title", 1)
	var failed *domainerrors.ValidationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected ValidationFailedError, got %v", err)
	}
	if storage.documents[docID2]["title"] != "keep" {
		t.Fatal("invalid mutation was persisted")
	}
}

func TestCreateNodeAppendsToSequence(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "x", "sections": []any{"a"}})

	value, version, err := service.CreateNode(context.Background(), docID, "/sections", "b", 1)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if value != "b" || version != 2 {
		t.Fatalf("got (%v, %d)", value, version)
	}
	got := storage.documents[docID]["sections"].([]any)
	if !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Fatalf("sections = %v", got)
	}
}

func TestCreateNodeRejectsNonSequenceParents(t *testing.T) {
	service := newTestService(newTestStorage())
	docID := mustCreate(t, service, map[string]any{"title": "x", "meta": map[string]any{"owner": "a"}})

	// Document root is an object, never an append target.
	if _, _, err := service.CreateNode(context.Background(), docID, "/", "v", 1); !errors.Is(err, domainerrors.ErrInvalidOperation) {
		t.Fatalf("root append: expected ErrInvalidOperation, got %v", err)
	}
	if _, _, err := service.CreateNode(context.Background(), docID, "/meta", "v", 1); !errors.Is(err, domainerrors.ErrInvalidOperation) {
		t.Fatalf("map append: expected ErrInvalidOperation, got %v", err)
	}
	if _, _, err := service.CreateNode(context.Background(), docID, "/title", "v", 1); !errors.Is(err, domainerrors.ErrInvalidOperation) {
		t.Fatalf("scalar append: expected ErrInvalidOperation, got %v", err)
	}

	_, _, err := service.CreateNode(context.Background(), docID, "/missing", "v", 1)
	var pathNotFound *domainerrors.PathNotFoundError
	if !errors.As(err, &pathNotFound) {
		t.Fatalf("expected PathNotFoundError, got %v", err)
	}
}

func TestDeleteNodeReturnsRemovedValue(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{
		"title":    "x",
		"sections": []any{"a", "b", "c"},
	})

	removed, version, err := service.DeleteNode(context.Background(), docID, "/sections/1", 1)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed != "b" || version != 2 {
		t.Fatalf("got (%v, %d)", removed, version)
	}
	got := storage.documents[docID]["sections"].([]any)
	if !reflect.DeepEqual(got, []any{"a", "c"}) {
		t.Fatalf("sections = %v", got)
	}
}

func TestDeleteNodeRejectsRootBeforeLookup(t *testing.T) {
	service := newTestService(newTestStorage())

	// Root deletion fails even for an id that does not exist.
	for _, pointer := range []string{"", "/"} {
		_, _, err := service.DeleteNode(context.Background(), "01HXZW4T8NQY2M5K7J9B3C6D99", pointer, 1)
		if !errors.Is(err, domainerrors.ErrInvalidOperation) {
			t.Fatalf("root delete %q: expected ErrInvalidOperation, got %v", pointer, err)
		}
	}
}

func TestVersionIncrementsOncePerMutation(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "x", "sections": []any{}})

	version := 1
	for i := 0; i < 4; i++ {
		_, next, err := service.CreateNode(context.Background(), docID, "/sections", i, version)
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if next != version+1 {
			t.Fatalf("append %d: version %d, want %d", i, next, version+1)
		}
		version = next
	}
	if storage.metadata[docID].Version != 5 {
		t.Fatalf("final version = %d, want 5", storage.metadata[docID].Version)
	}
}

func TestListDocumentsPaginates(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	ids := []string{
		"01HXZW4T8NQY2M5K7J9B3C6DA1",
		"01HXZW4T8NQY2M5K7J9B3C6DA2",
		"01HXZW4T8NQY2M5K7J9B3C6DA3",
		"01HXZW4T8NQY2M5K7J9B3C6DA4",
		"01HXZW4T8NQY2M5K7J9B3C6DA5",
	}
	for _, id := range ids {
		if _, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{"title": id}, id); err != nil {
			t.Fatalf("seed %s failed: %v", id, err)
		}
	}

	var collected []string
	for offset := 0; ; offset += 2 {
		page, err := service.ListDocuments(context.Background(), 2, offset)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(page) == 0 {
			break
		}
		if len(page) > 2 {
			t.Fatalf("page larger than limit: %d", len(page))
		}
		for _, metadata := range page {
			collected = append(collected, metadata.DocID)
		}
	}
	sort.Strings(collected)
	if !reflect.DeepEqual(collected, ids) {
		t.Fatalf("pages do not partition the set: %v", collected)
	}
}

func TestListDocumentsSkipsOrphanedIDs(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	docID := mustCreate(t, service, map[string]any{"title": "x"})

	// A stored document whose metadata is missing is skipped.
	storage.documents[otherDocID] = map[string]any{}

	page, err := service.ListDocuments(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page) != 1 || page[0].DocID != docID {
		t.Fatalf("page = %+v", page)
	}
}

func TestListDocumentsPropagatesMetadataErrors(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	mustCreate(t, service, map[string]any{"title": "x"})

	boom := errors.New("metadata backend down")
	storage.readMetadataErr = boom
	if _, err := service.ListDocuments(context.Background(), 0, 0); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCreateDocumentPropagatesStorageErrors(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)

	boom := errors.New("disk full")
	storage.writeDocumentErr = boom
	_, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{"title": "x"}, "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(storage.metadata) != 0 {
		t.Fatal("metadata written despite document write failure")
	}
}

func TestMutationsValidateAgainstTheDocumentsOwnSchema(t *testing.T) {
	storage := newTestStorage()
	fetcher := testFetcher{schemas: map[string]map[string]any{
		reportsID: reportSchema(),
		documentsID: {
			"type":       "object",
			"required":   []any{"name"},
			"properties": map[string]any{"name": map[string]any{"type": "string"}},
		},
	}}
	service := Service{
		Storage:   storage,
		Schemas:   NewSchemaResolver(fetcher, nil),
		Validator: Validator{Checker: requiredChecker{}},
		Clock:     fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		IDGen:     &sequenceIDGen{ids: []string{testDocID, otherDocID}},
	}

	reportID, _, err := service.CreateDocument(context.Background(), reportsID, map[string]any{"title": "r"}, "")
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}
	namedID, _, err := service.CreateDocument(context.Background(), documentsID, map[string]any{"name": "n"}, "")
	if err != nil {
		t.Fatalf("create named failed: %v", err)
	}

	// Each document revalidates against the schema recorded at creation,
	// not whichever schema was loaded most recently.
	if _, _, err := service.UpdateNode(context.Background(), reportID, "/extra", 1, 1); err != nil {
		t.Fatalf("report update failed: %v", err)
	}
	if _, _, err := service.DeleteNode(context.Background(), namedID, "/name", 1); err == nil {
		t.Fatal("removing a required property should fail against the document's own schema")
	}
	if _, _, err := service.DeleteNode(context.Background(), reportID, "/extra", 2); err != nil {
		t.Fatalf("report delete failed: %v", err)
	}
}

func TestUpdatedAtTracksClock(t *testing.T) {
	storage := newTestStorage()
	service := newTestService(storage)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docID := mustCreate(t, service, map[string]any{"title": "x"})

	later := created.Add(time.Hour)
	service.Clock = fixedClock{now: later}
	if _, _, err := service.UpdateNode(context.Background(), docID, "/title", "y", 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	metadata := storage.metadata[docID]
	if !metadata.CreatedAt.Equal(created) {
		t.Fatalf("created_at moved: %v", metadata.CreatedAt)
	}
	if !metadata.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at = %v, want %v", metadata.UpdatedAt, later)
	}
}
