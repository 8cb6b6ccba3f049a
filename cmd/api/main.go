package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wishlist-extractor/api"
	"wishlist-extractor/extractor"
	"wishlist-extractor/internal/config"
	"wishlist-extractor/store"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logging, false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Fatalf("Failed to open %s list store: %v", cfg.Store.Driver, err)
	}
	defer listStore.Close()

	pipeline := extractor.NewExtractor(cfg.Extractor, logger)
	server := api.NewServer(pipeline, listStore, logger)
	httpServer := server.NewHTTPServer(cfg.Server.Addr(), cfg.Server.ReadTimeout)

	logger.Infof("Starting API server on %s", httpServer.Addr)
	logger.Info("Available endpoints:")
	logger.Info("  POST /extract              - Extract items from a wishlist or registry URL")
	logger.Info("  POST /compare              - Compare fresh items against a saved list")
	logger.Info("  PUT  /lists/{listId}/items - Save the current items of a list")
	logger.Info("  GET  /health               - Health check")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("API server stopped with error")
		listStore.Close()
		os.Exit(1)
	}
	logger.Info("API server stopped")
}
