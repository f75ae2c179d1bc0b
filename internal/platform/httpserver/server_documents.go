package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	documenthttp "papyrus/contexts/document-core/document-service/transport/http"
)

// handleCreateDocument godoc
//
//	@Summary	Create a document against a schema
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		request	body		http.CreateDocumentRequest	true	"schema id, initial document, optional custom id"
//	@Success	200		{object}	http.CreateDocumentResponse
//	@Failure	422		{object}	http.ErrorResponse
//	@Router		/v1/documents [post]
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documenthttp.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDocumentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}
	if req.SchemaID == "" {
		writeDocumentError(w, http.StatusBadRequest, "missing_schema_id", "schema_id is required", nil)
		return
	}

	resp, err := s.documents.Handler.CreateDocumentHandler(r.Context(), req)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleListDocuments godoc
//
//	@Summary	List document metadata
//	@Tags		documents
//	@Produce	json
//	@Param		limit	query		int	false	"page size (default 100)"
//	@Param		offset	query		int	false	"page start"
//	@Success	200		{object}	http.ListDocumentsResponse
//	@Router		/v1/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	resp, err := s.documents.Handler.ListDocumentsHandler(r.Context(), limit, offset)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReadNode godoc
//
//	@Summary	Read a node addressed by JSON Pointer
//	@Tags		documents
//	@Produce	json
//	@Param		doc_id	path		string	true	"document id"
//	@Param		pointer	query		string	false	"JSON Pointer, empty or / for the root"
//	@Success	200		{object}	http.NodeResponse
//	@Failure	404		{object}	http.ErrorResponse
//	@Router		/v1/documents/{doc_id}/node [get]
func (s *Server) handleReadNode(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("doc_id")
	pointer := r.URL.Query().Get("pointer")

	resp, err := s.documents.Handler.ReadNodeHandler(r.Context(), docID, pointer)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateNode godoc
//
//	@Summary	Replace a node under optimistic locking
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		doc_id	path		string	true	"document id"
//	@Param		request	body		http.UpdateNodeRequest	true	"pointer, value, expected version"
//	@Success	200		{object}	http.NodeResponse
//	@Failure	409		{object}	http.ErrorResponse
//	@Router		/v1/documents/{doc_id}/node [put]
func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req documenthttp.UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDocumentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.documents.Handler.UpdateNodeHandler(r.Context(), r.PathValue("doc_id"), req)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateNode godoc
//
//	@Summary	Append a value to a sequence node
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		doc_id	path		string	true	"document id"
//	@Param		request	body		http.CreateNodeRequest	true	"parent pointer, value, expected version"
//	@Success	200		{object}	http.NodeResponse
//	@Failure	400		{object}	http.ErrorResponse
//	@Router		/v1/documents/{doc_id}/nodes [post]
func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req documenthttp.CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDocumentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.documents.Handler.CreateNodeHandler(r.Context(), r.PathValue("doc_id"), req)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteNode godoc
//
//	@Summary	Delete a node and return its value
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		doc_id	path		string	true	"document id"
//	@Param		request	body		http.DeleteNodeRequest	true	"pointer, expected version"
//	@Success	200		{object}	http.NodeResponse
//	@Failure	400		{object}	http.ErrorResponse
//	@Router		/v1/documents/{doc_id}/node [delete]
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	var req documenthttp.DeleteNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDocumentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.documents.Handler.DeleteNodeHandler(r.Context(), r.PathValue("doc_id"), req)
	if err != nil {
		writeDocumentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		writeDocumentError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer", nil)
		return 0, false
	}
	return value, true
}
