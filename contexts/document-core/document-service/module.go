package documentservice

import (
	"log/slog"

	httpadapter "papyrus/contexts/document-core/document-service/adapters/http"
	jsonschemaadapter "papyrus/contexts/document-core/document-service/adapters/jsonschema"
	"papyrus/contexts/document-core/document-service/adapters/memory"
	"papyrus/contexts/document-core/document-service/application"
	"papyrus/contexts/document-core/document-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Schemas *application.SchemaResolver
	Store   *memory.Store
}

type Dependencies struct {
	Storage       ports.Storage
	SchemaFetcher ports.SchemaFetcher
	Checker       ports.ConformanceChecker
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolver := application.NewSchemaResolver(deps.SchemaFetcher, deps.Logger)
	service := application.Service{
		Storage:   deps.Storage,
		Schemas:   resolver,
		Validator: application.Validator{Checker: deps.Checker},
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Schemas: resolver,
			Logger:  deps.Logger,
		},
		Service: service,
		Schemas: resolver,
	}
}

// NewInMemoryModule wires the whole service from a single in-memory
// store; schemas are seeded through the store's WriteDocument.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Storage:       store,
		SchemaFetcher: store,
		Checker:       jsonschemaadapter.Checker{Logger: logger},
		Clock:         store,
		IDGenerator:   store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
