package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papyrus/contexts/document-core/document-service/domain/entities"
	"papyrus/contexts/document-core/document-service/ports"
)

const uniqueViolationCode = "23505"

type documentRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Content   []byte    `gorm:"column:content;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (documentRow) TableName() string { return "documents" }

type metadataRow struct {
	DocID     string    `gorm:"column:doc_id;primaryKey"`
	SchemaID  string    `gorm:"column:schema_id"`
	Version   int       `gorm:"column:version"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (metadataRow) TableName() string { return "document_metadata" }

// Repository implements Storage on postgres. Content and metadata live
// in separate tables so each write stays individually atomic, matching
// the file adapter's two-artifact layout.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) ReadDocument(ctx context.Context, id string) (map[string]any, error) {
	var row documentRow
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ports.ErrNotFound)
		}
		return nil, r.logError("document_repo_read_failed", err, "doc_id", id)
	}
	var content map[string]any
	if err := json.Unmarshal(row.Content, &content); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return content, nil
}

func (r *Repository) WriteDocument(ctx context.Context, id string, content map[string]any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	row := documentRow{ID: id, Content: raw, UpdatedAt: time.Now().UTC()}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"content":    row.Content,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("document_repo_write_failed", create.Error, "doc_id", id)
	}
	return nil
}

func (r *Repository) DeleteDocument(_ context.Context, _ string) error {
	return fmt.Errorf("delete document: %w", ports.ErrNotImplemented)
}

func (r *Repository) ListDocuments(ctx context.Context, limit int, offset int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&metadataRow{}).
		Order("doc_id").
		Limit(limit).
		Offset(offset).
		Pluck("doc_id", &ids).
		Error
	if err != nil {
		return nil, r.logError("document_repo_list_failed", err)
	}
	return ids, nil
}

func (r *Repository) ReadMetadata(ctx context.Context, id string) (entities.DocumentMetadata, bool, error) {
	var row metadataRow
	err := r.db.WithContext(ctx).
		Where("doc_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DocumentMetadata{}, false, nil
		}
		return entities.DocumentMetadata{}, false, r.logError("document_repo_read_metadata_failed", err, "doc_id", id)
	}
	return entities.DocumentMetadata{
		DocID:     row.DocID,
		SchemaID:  row.SchemaID,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *Repository) WriteMetadata(ctx context.Context, id string, metadata entities.DocumentMetadata) error {
	row := metadataRow{
		DocID:     id,
		SchemaID:  metadata.SchemaID,
		Version:   metadata.Version,
		CreatedAt: metadata.CreatedAt,
		UpdatedAt: metadata.UpdatedAt,
	}
	if metadata.Version == 1 {
		// First version must be an insert: a concurrent create racing
		// the same custom id surfaces as a unique violation.
		create := r.db.WithContext(ctx).Create(&row)
		if create.Error != nil {
			if isUniqueViolation(create.Error) {
				return fmt.Errorf("document %s: %w", id, ports.ErrAlreadyExists)
			}
			return r.logError("document_repo_write_metadata_failed", create.Error, "doc_id", id)
		}
		return nil
	}
	save := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"version":    row.Version,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if save.Error != nil {
		return r.logError("document_repo_write_metadata_failed", save.Error, "doc_id", id)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	attrs := append([]any{
		"event", event,
		"module", "document-core/document-service",
		"layer", "adapters/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("postgres repository failure", attrs...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
