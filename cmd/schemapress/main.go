// Package main is the entry point for the SchemaPress API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schemapress/internal/cache"
	"schemapress/internal/config"
	"schemapress/internal/database"
	"schemapress/internal/engine"
	"schemapress/internal/handlers"
	"schemapress/internal/notify"
	"schemapress/internal/router"
	"schemapress/internal/store"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"direct_publish_requires_category", cfg.DirectPublishRequiresCategory,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default admin and system templates (no-op when present).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (record cache + notification channel).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	contentStore := store.NewContentStore(db)
	templateStore := store.NewTemplateStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Record cache and lifecycle event notifier, both Valkey-backed.
	recordCache := cache.NewRecordCache(valkeyClient, cfg.RecordCacheTTL)
	notifier := notify.New(valkeyClient)

	// The lifecycle engine orchestrates validate, score, render, persist,
	// invalidate, and notify for every content mutation.
	eng := engine.New(contentStore, templateStore, categoryStore, recordCache, notifier, cacheLogStore, engine.Options{
		DirectPublishRequiresCategory: cfg.DirectPublishRequiresCategory,
	})

	// Create handler groups with their dependencies.
	contentHandlers := handlers.NewContent(eng, contentStore, tagStore, recordCache)
	templateHandlers := handlers.NewTemplate(templateStore)
	taxonomyHandlers := handlers.NewTaxonomy(categoryStore, tagStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(contentHandlers, templateHandlers, taxonomyHandlers)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
