// Package main is the entry point for the StampCard API server.
// It loads configuration, opens the icon catalog store, connects to the
// optional PostgreSQL and Valkey services, sets up routing, and starts
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

	"stampcard/internal/cache"
	"stampcard/internal/config"
	"stampcard/internal/database"
	"stampcard/internal/handlers"
	"stampcard/internal/manifest"
	"stampcard/internal/router"
	"stampcard/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir,
	)

	// The icon catalog store is the one hard dependency: everything it
	// needs is the local filesystem.
	catalogStore, err := manifest.NewStore(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open catalog store", "error", err)
		os.Exit(1)
	}

	// PostgreSQL holds business and loyalty-card records. The catalog
	// API stays up without it.
	var (
		businessStore *store.BusinessStore
		cardStore     *store.CardStore
	)
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Warn("postgres unavailable, business endpoints disabled", "error", err)
	} else {
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		if cfg.IsDev() {
			if err := database.Seed(db); err != nil {
				slog.Error("failed to seed database", "error", err)
				os.Exit(1)
			}
		}
		businessStore = store.NewBusinessStore(db)
		cardStore = store.NewCardStore(db)
	}

	// Valkey caches rendered catalog responses across instances. Also
	// optional; reads fall through to the store.
	var catalogCache *cache.CatalogCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, response cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		catalogCache = cache.NewCatalogCache(valkeyClient, cache.DefaultCatalogTTL)
	}

	if cfg.AdminKeyHash == "" {
		slog.Warn("ADMIN_KEY_HASH not set, admin endpoints will reject all requests")
	}

	icons := handlers.NewIcons(catalogStore, catalogCache)
	businesses := handlers.NewBusinesses(businessStore, catalogStore, cfg.PublicURL)
	cards := handlers.NewCards(cardStore, businessStore)

	r := router.New(cfg, catalogStore.AssetsDir(), icons, businesses, cards)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
