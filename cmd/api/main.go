package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixam/fixam-site/cmd/mainconfig"
	appconfig "github.com/fixam/fixam-site/internal/config"
	"github.com/fixam/fixam-site/pkg/logging"
)

func main() {
	if err := mainconfig.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting fixam site API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	rt := mainconfig.NewRuntime(context.Background(), cfg, logger)
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close runtime", "error", err)
		}
	}()

	srv := newServer(cfg, rt.Handler)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}

// newServer sizes timeouts so a slow notification channel still completes
// inside the write deadline.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
