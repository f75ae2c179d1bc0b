package entities

import "time"

// DocumentMetadata is an immutable value describing one stored document.
// SchemaID records the schema the document was created against; every
// post-mutation validation runs against exactly that schema.
type DocumentMetadata struct {
	DocID     string    `json:"doc_id"`
	SchemaID  string    `json:"schema_id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocumentMetadata builds version-1 metadata for a just-created document.
func NewDocumentMetadata(docID string, schemaID string, now time.Time) DocumentMetadata {
	return DocumentMetadata{
		DocID:     docID,
		SchemaID:  schemaID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IncrementVersion returns a new value with version+1 and a fresh
// updated_at. DocID, SchemaID and CreatedAt never change.
func (m DocumentMetadata) IncrementVersion(now time.Time) DocumentMetadata {
	return DocumentMetadata{
		DocID:     m.DocID,
		SchemaID:  m.SchemaID,
		Version:   m.Version + 1,
		CreatedAt: m.CreatedAt,
		UpdatedAt: now,
	}
}
