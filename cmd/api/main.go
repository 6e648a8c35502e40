package main

import (
	"fmt"
	"log"
	"net/http"

	"certreg-backend/certreg/blobstore"
	"certreg-backend/internal/config"
	"certreg-backend/internal/database"
	"certreg-backend/internal/handlers"
	"certreg-backend/internal/middleware"
	"certreg-backend/internal/services"
	"certreg-backend/internal/store"
)

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	blobs, err := blobstore.New(cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to init blob storage: %v", err)
	}

	registry := services.NewRegistryService(store.NewPostgresStore(db), blobs)

	certHandler := handlers.NewCertificateHandler(registry)
	healthHandler := handlers.NewHealthHandler(db)

	router := http.NewServeMux()

	router.HandleFunc("GET /api/health", healthHandler.HealthCheck)
	router.HandleFunc("POST /api/upload", certHandler.UploadCertificate)
	router.HandleFunc("POST /api/verify", certHandler.VerifyCertificate)
	router.HandleFunc("GET /api/cert/{id}", certHandler.GetCertificate)
	router.HandleFunc("GET /api/cert/{id}/file", certHandler.GetCertificateFile)

	handler := middleware.CORS(cfg.CORSOrigin)(router)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	fmt.Printf("Server starting on http://%s\n", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
