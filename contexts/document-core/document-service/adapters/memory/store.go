package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"papyrus/contexts/document-core/document-service/domain/entities"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/shared/jsonptr"
)

// Store is an in-memory Storage used by tests and DSN-less runs. It
// also serves as SchemaFetcher (schemas are documents), Clock and
// IDGenerator so a module can be wired from the store alone.
type Store struct {
	mu        sync.RWMutex
	documents map[string]map[string]any
	metadata  map[string]entities.DocumentMetadata
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]map[string]any),
		metadata:  make(map[string]entities.DocumentMetadata),
	}
}

func (s *Store) ReadDocument(_ context.Context, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ports.ErrNotFound)
	}
	return jsonptr.Clone(content).(map[string]any), nil
}

func (s *Store) WriteDocument(_ context.Context, id string, content map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id] = jsonptr.Clone(content).(map[string]any)
	return nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, ports.ErrNotFound)
	}
	delete(s.documents, id)
	delete(s.metadata, id)
	return nil
}

func (s *Store) ListDocuments(_ context.Context, limit int, offset int) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.metadata))
	for id := range s.metadata {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	if offset >= len(ids) {
		return []string{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *Store) ReadMetadata(_ context.Context, id string) (entities.DocumentMetadata, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metadata, ok := s.metadata[id]
	if !ok {
		return entities.DocumentMetadata{}, false, nil
	}
	return metadata, true, nil
}

func (s *Store) WriteMetadata(_ context.Context, id string, metadata entities.DocumentMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[id] = metadata
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return entities.NewDocumentID(), nil
}
