package main

import (
	"log"

	"papyrus/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server.
func main() {
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("papyrus api bootstrap failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("papyrus api shutdown: %v", err)
		}
	}()

	if err := app.Run(); err != nil {
		log.Fatalf("papyrus api stopped: %v", err)
	}
}
