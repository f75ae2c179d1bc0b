package httpserver

import (
	"net/http"
)

// handleGetSchema godoc
//
//	@Summary	Fetch a schema, resolved by default
//	@Tags		schemas
//	@Produce	json
//	@Param		schema_id		path		string	true	"schema id"
//	@Param		dereferenced	query		bool	false	"inline $refs (default true)"
//	@Success	200				{object}	http.SchemaResponse
//	@Failure	404				{object}	http.ErrorResponse
//	@Router		/v1/schemas/{schema_id} [get]
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schemaID := r.PathValue("schema_id")
	dereferenced := r.URL.Query().Get("dereferenced") != "false"

	resp, err := s.documents.Handler.GetSchemaHandler(r.Context(), schemaID, dereferenced)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSchemaDependencies godoc
//
//	@Summary	List cross-schema references
//	@Tags		schemas
//	@Produce	json
//	@Param		schema_id	path		string	true	"schema id"
//	@Success	200			{object}	http.SchemaDependenciesResponse
//	@Router		/v1/schemas/{schema_id}/dependencies [get]
func (s *Server) handleSchemaDependencies(w http.ResponseWriter, r *http.Request) {
	resp, err := s.documents.Handler.SchemaDependenciesHandler(r.Context(), r.PathValue("schema_id"))
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClearSchemaCache godoc
//
//	@Summary	Clear the resolved-schema cache
//	@Tags		schemas
//	@Success	200	{object}	http.ClearCacheResponse
//	@Router		/v1/schemas/cache/clear [post]
func (s *Server) handleClearSchemaCache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.documents.Handler.ClearSchemaCacheHandler(r.Context()))
}
