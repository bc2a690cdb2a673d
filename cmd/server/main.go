package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rasoihq/rasoi-backend/internal/api"
	"github.com/rasoihq/rasoi-backend/internal/config"
	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/store"
	ws "github.com/rasoihq/rasoi-backend/internal/websocket"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
	"github.com/rasoihq/rasoi-backend/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := pgStore.RunMigrations(ctx, "migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Initialize Redis
	redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisStore.Close()
	logger.Info("connected to Redis")

	// Live ops feed
	hub := ws.NewHub(logger)
	go hub.Run()

	// Webhook gateway pieces
	verifier := whatsapp.NewVerifier(cfg.WhatsAppAppSecret, cfg.InsecureSkipVerification, logger)
	dedup := whatsapp.NewDeduper(redisStore.Client(), 24*time.Hour)
	processor := whatsapp.NewProcessor(pgStore, dedup, hub, logger)

	// Channel sync pipeline
	syncEngine := engine.NewSyncEngine(pgStore, redisStore, logger)
	cb := engine.NewCircuitBreaker(redisStore.Client(), logger)
	rateLimiter := engine.NewRateLimiter(redisStore.Client(), time.Minute, logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	syncer := worker.NewSyncer(pgStore, cb, hub, logger)
	pool := worker.NewPool(cfg.NumSyncWorkers, syncer, logger)
	pool.Start(workerCtx)

	dispatcher := worker.NewDispatcher(redisStore.Client(), pool, logger)
	go dispatcher.Start(workerCtx)

	// Setup router
	router := api.NewRouter(cfg, pgStore, syncEngine, rateLimiter, cb, processor, verifier, hub, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Drain the sync workers after the HTTP surface is down
	stopWorkers()
	pool.Stop()

	logger.Info("server stopped")
}
