package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	documentservice "papyrus/contexts/document-core/document-service"
	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	documenthttp "papyrus/contexts/document-core/document-service/transport/http"
	_ "papyrus/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	documents documentservice.Module
	swaggerUI bool
}

func New(
	documents documentservice.Module,
	logger *slog.Logger,
	addr string,
	swaggerUI bool,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		documents: documents,
		swaggerUI: swaggerUI,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.withRequestID(s.mux))
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

func (s *Server) registerRoutes() {
	if s.swaggerUI {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /v1/documents", s.handleCreateDocument)
	s.mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /v1/documents/{doc_id}/node", s.handleReadNode)
	s.mux.HandleFunc("PUT /v1/documents/{doc_id}/node", s.handleUpdateNode)
	s.mux.HandleFunc("POST /v1/documents/{doc_id}/nodes", s.handleCreateNode)
	s.mux.HandleFunc("DELETE /v1/documents/{doc_id}/node", s.handleDeleteNode)

	s.mux.HandleFunc("GET /v1/schemas/{schema_id}", s.handleGetSchema)
	s.mux.HandleFunc("GET /v1/schemas/{schema_id}/dependencies", s.handleSchemaDependencies)
	s.mux.HandleFunc("POST /v1/schemas/cache/clear", s.handleClearSchemaCache)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		s.logger.Debug("http request",
			"event", "http_request",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		next.ServeHTTP(w, r)
	})
}

func writeDocumentDomainError(w http.ResponseWriter, err error) {
	var (
		notFound       *domainerrors.DocumentNotFoundError
		schemaNotFound *domainerrors.SchemaNotFoundError
		pathNotFound   *domainerrors.PathNotFoundError
		conflict       *domainerrors.VersionConflictError
		validation     *domainerrors.ValidationFailedError
	)
	switch {
	case errors.As(err, &notFound):
		writeDocumentError(w, http.StatusNotFound, "document_not_found", err.Error(), nil)
	case errors.As(err, &schemaNotFound):
		writeDocumentError(w, http.StatusNotFound, "schema_not_found", err.Error(), nil)
	case errors.As(err, &pathNotFound):
		writeDocumentError(w, http.StatusNotFound, "path_not_found", err.Error(), map[string]any{
			"pointer": pathNotFound.Pointer,
		})
	case errors.As(err, &conflict):
		writeDocumentError(w, http.StatusConflict, "version_conflict", err.Error(), map[string]any{
			"expected": conflict.Expected,
			"actual":   conflict.Actual,
		})
	case errors.As(err, &validation):
		writeDocumentError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error(), validation.Violations)
	case errors.Is(err, domainerrors.ErrDocumentExists):
		writeDocumentError(w, http.StatusConflict, "document_exists", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidDocumentID):
		writeDocumentError(w, http.StatusBadRequest, "invalid_document_id", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidOperation):
		writeDocumentError(w, http.StatusBadRequest, "invalid_operation", err.Error(), nil)
	default:
		writeDocumentError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func writeDocumentError(w http.ResponseWriter, status int, code string, message string, details any) {
	writeJSON(w, status, documenthttp.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
