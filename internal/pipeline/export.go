package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// SnapshotLoader writes a batch of snapshots to a destination.
type SnapshotLoader interface {
	Name() string
	LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error
}

// Retry policy for sink writes: start at 200ms, double each attempt, cap at 5s.
const (
	exportAttempts   = 4
	exportBackoff    = 200 * time.Millisecond
	exportMaxBackoff = 5 * time.Second
)

// Export builds one snapshot per year of years (clamped to the pipeline
// range) and writes the batch to every loader. Snapshots are built with
// bounded parallelism; each loader is retried with exponential backoff and
// loaders run concurrently. The first loader that exhausts its retries fails
// the export.
func (p *Pipeline) Export(ctx context.Context, years domain.YearRange, loaders ...SnapshotLoader) ([]domain.Snapshot, error) {
	if _, err := p.current(); err != nil {
		return nil, err
	}
	years = clampRange(years.Normalized(), p.opts.Years)

	snapshots := make([]domain.Snapshot, years.Len())
	build, bctx := errgroup.WithContext(ctx)
	build.SetLimit(p.opts.ExportConcurrency)
	for i, year := range years.Years() {
		build.Go(func() error {
			snap, err := p.Snapshot(bctx, year)
			if err != nil {
				return fmt.Errorf("snapshot %d: %w", year, err)
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := build.Wait(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loaders {
		g.Go(func() error {
			return p.loadWithRetry(gctx, l, snapshots)
		})
	}
	if err := g.Wait(); err != nil {
		return snapshots, err
	}

	p.logger.Info("snapshots exported",
		"years", fmt.Sprintf("%d-%d", years.Min, years.Max),
		"count", len(snapshots),
		"sinks", len(loaders),
	)
	return snapshots, nil
}

func (p *Pipeline) loadWithRetry(ctx context.Context, l SnapshotLoader, snapshots []domain.Snapshot) error {
	backoff := exportBackoff
	var err error
	for attempt := 1; attempt <= exportAttempts; attempt++ {
		if err = l.LoadBatch(ctx, snapshots); err == nil {
			p.metrics.SnapshotsExported.WithLabelValues(l.Name()).Add(float64(len(snapshots)))
			return nil
		}
		p.metrics.ExportErrors.WithLabelValues(l.Name()).Inc()
		p.logger.Error("export batch failed",
			"sink", l.Name(),
			"attempt", attempt,
			"batch_size", len(snapshots),
			"error", err,
		)
		if attempt == exportAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, exportMaxBackoff)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("export to %s: %w", l.Name(), ctxErr)
	}
	return fmt.Errorf("export to %s: %w", l.Name(), err)
}

// clampRange intersects r with bounds; a range entirely outside bounds
// collapses to the nearest bound year.
func clampRange(r, bounds domain.YearRange) domain.YearRange {
	return domain.YearRange{Min: bounds.Clamp(r.Min), Max: bounds.Clamp(r.Max)}
}
