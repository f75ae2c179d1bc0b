package entities

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// DocumentIDLength is the canonical ULID text length.
const DocumentIDLength = 26

// NewDocumentID returns a fresh ULID string: 26 uppercase Crockford
// base32 characters, lexicographically sortable by creation time.
func NewDocumentID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// IsValidDocumentID reports whether a caller-supplied id has the
// accepted shape: exactly 26 characters, uppercase alphanumeric.
func IsValidDocumentID(id string) bool {
	if len(id) != DocumentIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
