package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"papyrus/contexts/document-core/document-service/application"
	"papyrus/contexts/document-core/document-service/domain/entities"
	httptransport "papyrus/contexts/document-core/document-service/transport/http"
)

type Handler struct {
	Service application.Service
	Schemas *application.SchemaResolver
	Logger  *slog.Logger
}

func (h Handler) CreateDocumentHandler(
	ctx context.Context,
	req httptransport.CreateDocumentRequest,
) (httptransport.CreateDocumentResponse, error) {
	_, metadata, err := h.Service.CreateDocument(ctx, req.SchemaID, req.Document, req.DocID)
	if err != nil {
		return httptransport.CreateDocumentResponse{}, err
	}
	return httptransport.CreateDocumentResponse{
		Status: "success",
		Data:   toMetadataDTO(metadata),
	}, nil
}

func (h Handler) ReadNodeHandler(
	ctx context.Context,
	docID string,
	pointer string,
) (httptransport.NodeResponse, error) {
	value, version, err := h.Service.ReadNode(ctx, docID, pointer)
	if err != nil {
		return httptransport.NodeResponse{}, err
	}
	return httptransport.NodeResponse{Status: "success", Value: value, Version: version}, nil
}

func (h Handler) UpdateNodeHandler(
	ctx context.Context,
	docID string,
	req httptransport.UpdateNodeRequest,
) (httptransport.NodeResponse, error) {
	value, version, err := h.Service.UpdateNode(ctx, docID, req.Pointer, req.Value, req.ExpectedVersion)
	if err != nil {
		return httptransport.NodeResponse{}, err
	}
	return httptransport.NodeResponse{Status: "success", Value: value, Version: version}, nil
}

func (h Handler) CreateNodeHandler(
	ctx context.Context,
	docID string,
	req httptransport.CreateNodeRequest,
) (httptransport.NodeResponse, error) {
	value, version, err := h.Service.CreateNode(ctx, docID, req.ParentPointer, req.Value, req.ExpectedVersion)
	if err != nil {
		return httptransport.NodeResponse{}, err
	}
	return httptransport.NodeResponse{Status: "success", Value: value, Version: version}, nil
}

func (h Handler) DeleteNodeHandler(
	ctx context.Context,
	docID string,
	req httptransport.DeleteNodeRequest,
) (httptransport.NodeResponse, error) {
	removed, version, err := h.Service.DeleteNode(ctx, docID, req.Pointer, req.ExpectedVersion)
	if err != nil {
		return httptransport.NodeResponse{}, err
	}
	return httptransport.NodeResponse{Status: "success", Value: removed, Version: version}, nil
}

func (h Handler) ListDocumentsHandler(
	ctx context.Context,
	limit int,
	offset int,
) (httptransport.ListDocumentsResponse, error) {
	items, err := h.Service.ListDocuments(ctx, limit, offset)
	if err != nil {
		return httptransport.ListDocumentsResponse{}, err
	}
	resp := httptransport.ListDocumentsResponse{
		Status: "success",
		Data:   make([]httptransport.MetadataDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toMetadataDTO(item))
	}
	return resp, nil
}

func (h Handler) GetSchemaHandler(
	ctx context.Context,
	schemaID string,
	dereferenced bool,
) (httptransport.SchemaResponse, error) {
	var (
		schema map[string]any
		err    error
	)
	if dereferenced {
		schema, err = h.Schemas.Load(ctx, schemaID)
	} else {
		schema, err = h.Schemas.LoadRaw(ctx, schemaID)
	}
	if err != nil {
		return httptransport.SchemaResponse{}, err
	}
	return httptransport.SchemaResponse{Status: "success", Schema: schema}, nil
}

func (h Handler) SchemaDependenciesHandler(
	ctx context.Context,
	schemaID string,
) (httptransport.SchemaDependenciesResponse, error) {
	deps, err := h.Schemas.Dependencies(ctx, schemaID)
	if err != nil {
		return httptransport.SchemaDependenciesResponse{}, err
	}
	return httptransport.SchemaDependenciesResponse{Status: "success", Dependencies: deps}, nil
}

func (h Handler) ClearSchemaCacheHandler(_ context.Context) httptransport.ClearCacheResponse {
	h.Schemas.ClearCache()
	return httptransport.ClearCacheResponse{Status: "success"}
}

func toMetadataDTO(metadata entities.DocumentMetadata) httptransport.MetadataDTO {
	return httptransport.MetadataDTO{
		DocID:     metadata.DocID,
		SchemaID:  metadata.SchemaID,
		Version:   metadata.Version,
		CreatedAt: metadata.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: metadata.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
