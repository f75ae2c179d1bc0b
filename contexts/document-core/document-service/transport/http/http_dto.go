package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type MetadataDTO struct {
	DocID     string `json:"doc_id"`
	SchemaID  string `json:"schema_id"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateDocumentRequest struct {
	SchemaID string         `json:"schema_id"`
	Document map[string]any `json:"document"`
	DocID    string         `json:"doc_id,omitempty"`
}

type CreateDocumentResponse struct {
	Status string      `json:"status"`
	Data   MetadataDTO `json:"data"`
}

type NodeResponse struct {
	Status  string `json:"status"`
	Value   any    `json:"value"`
	Version int    `json:"version"`
}

type UpdateNodeRequest struct {
	Pointer         string `json:"pointer"`
	Value           any    `json:"value"`
	ExpectedVersion int    `json:"expected_version"`
}

type CreateNodeRequest struct {
	ParentPointer   string `json:"parent_pointer"`
	Value           any    `json:"value"`
	ExpectedVersion int    `json:"expected_version"`
}

type DeleteNodeRequest struct {
	Pointer         string `json:"pointer"`
	ExpectedVersion int    `json:"expected_version"`
}

type ListDocumentsResponse struct {
	Status string        `json:"status"`
	Data   []MetadataDTO `json:"data"`
}

type SchemaResponse struct {
	Status string         `json:"status"`
	Schema map[string]any `json:"schema"`
}

type SchemaDependenciesResponse struct {
	Status       string   `json:"status"`
	Dependencies []string `json:"dependencies"`
}

type ClearCacheResponse struct {
	Status string `json:"status"`
}
