// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pantrytrack/backend/internal/api"
	"github.com/pantrytrack/backend/internal/cache"
	"github.com/pantrytrack/backend/internal/config"
	"github.com/pantrytrack/backend/internal/forecast"
	"github.com/pantrytrack/backend/internal/repository/postgres"
	"github.com/pantrytrack/backend/internal/service"
	"github.com/pantrytrack/backend/internal/storage"
	"github.com/pantrytrack/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories and the analytics engine
	productRepo := postgres.NewProductRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	engine := forecast.NewEngine(snapshotRepo)

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, continuing without")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Initialize services
	productService := service.NewProductService(productRepo, engine, forecastCache)
	forecastService := service.NewForecastService(productRepo, engine, forecastCache)

	// Optional S3-compatible image store
	var imageStore storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("image store unavailable, uploads stay local")
		} else {
			imageStore = client
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ProductService:  productService,
		ForecastService: forecastService,
		ImageStore:      imageStore,
		UploadDir:       cfg.App.UploadDir,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
