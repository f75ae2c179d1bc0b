package postgresadapter

import (
	"context"
	"time"

	"papyrus/contexts/document-core/document-service/domain/entities"
)

// ULIDGenerator implements ports.IDGenerator with fresh ULIDs.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID(_ context.Context) (string, error) {
	return entities.NewDocumentID(), nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
