package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-tracker/backend/internal/api"
	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/config"
	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalw("Failed to load config", "error", err)
	}

	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.Get()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("Failed to initialize services", "error", err)
	}
	defer tracker.Close()

	// Start snapshot service in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Errorw("PANIC in snapshot service - restarting in 30 seconds", "panic", r)
					}
				}()
				tracker.Snapshots.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return
			case <-time.After(30 * time.Second):
				log.Info("Snapshot service restarting after panic recovery...")
			}
		}
	}()

	router := api.SetupRouter(api.Dependencies{
		Scryfall:    tracker.Scryfall,
		Cards:       tracker.Cache,
		Dashboard:   tracker.Dashboard,
		Snapshots:   tracker.Snapshots,
		Store:       tracker.Store,
		Collection:  tracker.Collection,
		CacheTTL:    cfg.Cache.TTL,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the snapshot loop before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
