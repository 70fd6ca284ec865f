package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldsync/internal/app"
	"fieldsync/internal/platform/config"
	"fieldsync/internal/platform/httpserver"
	"fieldsync/internal/platform/logger"
	"fieldsync/internal/platform/metrics"
	profilehandler "fieldsync/internal/profile/handler"
	recordshandler "fieldsync/internal/records/handler"
	synchandler "fieldsync/internal/sync/handler"
	translationhandler "fieldsync/internal/translation/handler"
	httptransport "fieldsync/internal/transport/http"
)

const requestTimeout = 90 * time.Second

// main wires the services behind the local HTTP API the UI talks to.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, app.WithMetrics())
	if err != nil {
		log.Error("failed to initialise services", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: requestTimeout,
		Health:         a.Health,
		Handlers: []httptransport.Registrar{
			recordshandler.New(a.Records, log),
			profilehandler.New(a.Profiles, log),
			synchandler.New(a.Sync, log),
			translationhandler.New(a.Translation, log),
		},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting fieldsync", "addr", cfg.Server.Addr, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error("failed to release resources", "error", err)
	}
	log.Info("fieldsync stopped")
}

