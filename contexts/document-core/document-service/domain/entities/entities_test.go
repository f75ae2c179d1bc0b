package entities

import (
	"testing"
	"time"
)

func TestNewDocumentIDShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewDocumentID()
		if !IsValidDocumentID(id) {
			t.Fatalf("generated id %q fails its own validation", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValidDocumentID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"01HXZW4T8NQY2M5K7J9B3C6D8E", true},
		{"ABCDEFGHJKMNPQRSTVWXYZ0123", true},
		{"", false},
		{"01HXZW4T8NQY2M5K7J9B3C6D8", false},   // 25 chars
		{"01HXZW4T8NQY2M5K7J9B3C6D8EX", false}, // 27 chars
		{"01hxzw4t8nqy2m5k7j9b3c6d8e", false},  // lowercase
		{"01HXZW4T8NQY2M5K7J9B3C6D8!", false},
		{"01HXZW4T8NQY M5K7J9B3C6D8E", false},
	}
	for _, tc := range cases {
		if got := IsValidDocumentID(tc.id); got != tc.valid {
			t.Fatalf("IsValidDocumentID(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

func TestNewDocumentMetadata(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	metadata := NewDocumentMetadata("doc-1", "reports_v1", now)

	if metadata.DocID != "doc-1" || metadata.SchemaID != "reports_v1" {
		t.Fatalf("metadata = %+v", metadata)
	}
	if metadata.Version != 1 {
		t.Fatalf("version = %d, want 1", metadata.Version)
	}
	if !metadata.CreatedAt.Equal(now) || !metadata.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v / %v", metadata.CreatedAt, metadata.UpdatedAt)
	}
}

func TestIncrementVersion(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	metadata := NewDocumentMetadata("doc-1", "reports_v1", created)

	later := created.Add(30 * time.Minute)
	next := metadata.IncrementVersion(later)

	if next.Version != 2 {
		t.Fatalf("version = %d, want 2", next.Version)
	}
	if next.DocID != metadata.DocID || next.SchemaID != metadata.SchemaID {
		t.Fatalf("identity changed: %+v", next)
	}
	if !next.CreatedAt.Equal(created) {
		t.Fatalf("created_at moved: %v", next.CreatedAt)
	}
	if !next.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at = %v, want %v", next.UpdatedAt, later)
	}
	if metadata.Version != 1 {
		t.Fatal("receiver mutated")
	}
}
