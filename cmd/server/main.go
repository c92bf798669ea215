package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/site-generator-api/internal/api"
	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/config"
	"github.com/site-generator-api/internal/database"
	"github.com/site-generator-api/internal/generator"
	"github.com/site-generator-api/internal/repository"
	"github.com/site-generator-api/internal/service"
	"github.com/site-generator-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting site generator API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize the content generator and its cache
	gen, err := generator.NewGenkit(context.Background(), cfg.Generation.Model, cfg.Generation.RequestTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize content generator")
	}
	contentCache := cache.New(gen, cfg.Generation.CacheSize, cfg.Generation.CacheTTL, log)

	// Initialize services
	services := service.NewServices(repos, contentCache, cfg, log)

	// Initialize router
	router := api.NewRouter(services, repos, contentCache, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
