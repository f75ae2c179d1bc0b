// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"log/slog"

	documentservice "papyrus/contexts/document-core/document-service"
	"papyrus/contexts/document-core/document-service/adapters/file"
	jsonschemaadapter "papyrus/contexts/document-core/document-service/adapters/jsonschema"
	postgresadapter "papyrus/contexts/document-core/document-service/adapters/postgres"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/platform/config"
	"papyrus/internal/platform/db"
	"papyrus/internal/platform/httpserver"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

// BuildAPI wires the document service: file storage by default,
// postgres when POSTGRES_DSN is set. Schemas are always read from the
// schema directory; they are authored artifacts, not request data.
func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	schemaStore, err := file.NewStorage(cfg.SchemaDir, logger)
	if err != nil {
		return nil, err
	}

	var (
		storage ports.Storage
		pg      *db.Postgres
	)
	if cfg.PostgresDSN != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		storage = postgresadapter.NewRepository(pg.DB, logger)
	} else {
		storage, err = file.NewStorage(cfg.StorageDir, logger)
		if err != nil {
			return nil, err
		}
	}

	module := documentservice.NewModule(documentservice.Dependencies{
		Storage:       storage,
		SchemaFetcher: schemaStore,
		Checker:       jsonschemaadapter.Checker{Logger: logger},
		Clock:         postgresadapter.SystemClock{},
		IDGenerator:   postgresadapter.ULIDGenerator{},
		Logger:        logger,
	})

	server := httpserver.New(module, logger, ":"+cfg.HTTPPort, cfg.EnableSwaggerUI)
	return &APIApp{server: server, postgres: pg, logger: logger}, nil
}

func (a *APIApp) Run() error {
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}
