// Command bake pre-computes year snapshots and writes them to static files,
// a spreadsheet, and optionally a Kafka topic.
//
// Usage:
//
//	go run ./cmd/bake -out dist/atlas -xlsx dist/atlas.xlsx -from 2001 -to 2025
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/datacenter-atlas/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/datacenter-atlas/internal/adapter/kafka"
	"github.com/couchcryptid/datacenter-atlas/internal/adapter/mapbox"
	"github.com/couchcryptid/datacenter-atlas/internal/adapter/xlsx"
	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/dataset"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
	"github.com/couchcryptid/datacenter-atlas/internal/pipeline"
)

func main() {
	out := flag.String("out", "", "directory for per-year snapshot files")
	xlsxPath := flag.String("xlsx", "", "path of the summary workbook")
	from := flag.Int("from", 0, "first year to bake (default MIN_YEAR)")
	to := flag.Int("to", 0, "last year to bake (default MAX_YEAR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *out, *xlsxPath, *from, *to, logger); err != nil {
		logger.Error("bake failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out, xlsxPath string, from, to int, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	var loaders []pipeline.SnapshotLoader
	if out != "" {
		loaders = append(loaders, file.NewWriter(out, domain.DefaultChartFrame, logger))
	}
	if xlsxPath != "" {
		loaders = append(loaders, xlsx.NewWriter(xlsxPath, logger))
	}
	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, w)
	}
	if len(loaders) == 0 {
		return errors.New("no output configured: set -out, -xlsx, or KAFKA_BROKERS")
	}

	fsys := dataset.Seed()
	if cfg.DatasetDir != "" {
		fsys = dataset.Dir(cfg.DatasetDir)
	}
	ds, err := dataset.Load(fsys, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.OptionsFromConfig(cfg), mapbox.NewFromConfig(cfg, metrics, logger), logger, metrics)
	if err := p.Load(ctx, ds); err != nil {
		return err
	}

	years := p.Years()
	if from != 0 {
		years.Min = from
	}
	if to != 0 {
		years.Max = to
	}
	_, err = p.Export(ctx, years, loaders...)
	return err
}
