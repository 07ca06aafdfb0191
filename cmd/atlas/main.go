// Command atlas serves the data center atlas API: per-year aggregates,
// snapshots, normalisation, and path projection over the loaded dataset.
// SIGHUP reloads the dataset.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/datacenter-atlas/internal/adapter/http"
	"github.com/couchcryptid/datacenter-atlas/internal/adapter/mapbox"
	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/dataset"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
	"github.com/couchcryptid/datacenter-atlas/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	geocoder := mapbox.NewFromConfig(cfg, metrics, logger)
	p := pipeline.New(pipeline.OptionsFromConfig(cfg), geocoder, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server. /readyz reports 503 until the first load completes.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := load(ctx, cfg, p, logger); err != nil {
		logger.Error("initial dataset load failed", "error", err)
		stop()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("reloading dataset")
				if err := load(ctx, cfg, p, logger); err != nil {
					logger.Error("dataset reload failed, keeping previous version", "error", err, "version", p.Version())
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func load(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) error {
	fsys := dataset.Seed()
	if cfg.DatasetDir != "" {
		fsys = dataset.Dir(cfg.DatasetDir)
	}
	ds, err := dataset.Load(fsys, logger)
	if err != nil {
		return err
	}
	return p.Load(ctx, ds)
}
