// Package file implements Storage on the local file system: one
// <id>.json per document and one <id>.meta.json per metadata record.
// Writes go to a uniquely named temp file, are fsynced, then atomically
// renamed into place, so a concurrent reader never observes a
// half-written artifact.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"papyrus/contexts/document-core/document-service/domain/entities"
	"papyrus/contexts/document-core/document-service/ports"
)

const (
	documentSuffix = ".json"
	metadataSuffix = ".meta.json"
)

type Storage struct {
	baseDir string
	logger  *slog.Logger
}

func NewStorage(baseDir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", baseDir, err)
	}
	return &Storage{baseDir: baseDir, logger: logger}, nil
}

func (s *Storage) ReadDocument(_ context.Context, id string) (map[string]any, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("read document %s: %w", id, err)
	}
	var content map[string]any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return content, nil
}

func (s *Storage) WriteDocument(_ context.Context, id string, content map[string]any) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.writeAtomic(s.documentPath(id), content)
}

func (s *Storage) DeleteDocument(_ context.Context, id string) error {
	return fmt.Errorf("delete document: %w", ports.ErrNotImplemented)
}

// ListDocuments scans the base directory for content files and returns
// a sorted, paginated slice of ids. Ids are ULIDs, so lexical order is
// creation order.
func (s *Storage) ListDocuments(_ context.Context, limit int, offset int) ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list storage dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, metadataSuffix) || !strings.HasSuffix(name, documentSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, documentSuffix))
	}
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

func (s *Storage) ReadMetadata(_ context.Context, id string) (entities.DocumentMetadata, bool, error) {
	if err := checkID(id); err != nil {
		return entities.DocumentMetadata{}, false, err
	}
	raw, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entities.DocumentMetadata{}, false, nil
		}
		return entities.DocumentMetadata{}, false, fmt.Errorf("read metadata %s: %w", id, err)
	}
	var metadata entities.DocumentMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return entities.DocumentMetadata{}, false, fmt.Errorf("decode metadata %s: %w", id, err)
	}
	return metadata, true, nil
}

func (s *Storage) WriteMetadata(_ context.Context, id string, metadata entities.DocumentMetadata) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.writeAtomic(s.metadataPath(id), metadata)
}

// writeAtomic serializes the payload into a uniquely named temp file,
// forces it to disk, then renames it over the target. The temp file is
// removed on any failure.
func (s *Storage) writeAtomic(path string, payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + "." + uuid.NewString() + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file for %s: %w", path, err)
	}
	return nil
}

func (s *Storage) documentPath(id string) string {
	return filepath.Join(s.baseDir, id+documentSuffix)
}

func (s *Storage) metadataPath(id string) string {
	return filepath.Join(s.baseDir, id+metadataSuffix)
}

// checkID rejects ids that would escape the base directory. Treated as
// absent rather than invalid: nothing with such an id was ever stored.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return fmt.Errorf("document %q: %w", id, ports.ErrNotFound)
	}
	return nil
}
