package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "agri-inventory/internal/adapters/web"
	"agri-inventory/internal/app"
	"agri-inventory/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := config.InitStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	svc := app.NewAppService(st, cfg.AppOptions(logger))
	loaded, err := svc.Load(ctx)
	if err != nil {
		logger.Fatalf("load data: %v", err)
	}
	logger.WithField("seeded", loaded.Seeded).WithField("driver", cfg.StoreDriver).Info("data ready")

	go svc.RunAutosave(ctx, cfg.AutosaveInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           webAdapter.NewHandler(svc, logger, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if err := svc.Flush(shutdownCtx); err != nil {
		logger.WithError(err).Error("unsaved changes could not be written")
	}
}
