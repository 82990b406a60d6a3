// cmd/ingest/main.go
//
// Standalone daemon for pulling inventory count sheets from Google
// Drive into the snapshot log.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pantrytrack/backend/internal/config"
	"github.com/pantrytrack/backend/internal/ingest"
	"github.com/pantrytrack/backend/internal/repository/postgres"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.Drive.CredentialsJSON == "" {
		log.Fatal("GOOGLE_DRIVE_CREDENTIALS_JSON is required")
	}

	driveService, err := ingest.NewDriveService(cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	productRepo := postgres.NewProductRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	readingRepo := postgres.NewReadingRepository(db)
	ingestService := ingest.NewService(driveService, productRepo, snapshotRepo, readingRepo)

	r := mux.NewRouter()

	handler := ingest.NewHandler(driveService, ingestService)
	handler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
