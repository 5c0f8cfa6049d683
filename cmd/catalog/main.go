package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model_catalog/internal/config"
	"model_catalog/internal/httpapi"
	"model_catalog/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utils.SetDefaultLogLevel(cfg.LogLevel)
	logger := utils.NewLogger("main")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Create router with all dependencies and load the catalog
	mux, deps, err := httpapi.NewRouter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	if cfg.Catalog.ReloadInterval > 0 {
		go deps.Manager.Run(ctx, cfg.Catalog.ReloadInterval)
	}

	// Create HTTP server
	addr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Catalog.InvokeTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Model catalog listening", "addr", addr, "items", deps.Manager.Catalog().Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := deps.Close(); err != nil {
		logger.Error("Failed to close dependencies", "error", err)
	}

	logger.Info("Server exited")
}
