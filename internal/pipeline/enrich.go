package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// Enricher fills missing locations and addresses through a Geocoder.
type Enricher struct {
	geocoder    domain.Geocoder
	region      string
	concurrency int
	logger      *slog.Logger
}

// NewEnricher creates an Enricher. Pass a nil geocoder to disable enrichment.
func NewEnricher(geocoder domain.Geocoder, region string, concurrency int, logger *slog.Logger) *Enricher {
	return &Enricher{
		geocoder:    geocoder,
		region:      region,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// Enrich returns a copy of entities with geocoding applied, in input order.
// Lookup failures degrade per entity; only context cancellation is an error.
func (e *Enricher) Enrich(ctx context.Context, entities []domain.DataCenter, region string) ([]domain.DataCenter, error) {
	out := make([]domain.DataCenter, len(entities))
	copy(out, entities)
	if e.geocoder == nil {
		return out, nil
	}
	if region == "" {
		region = e.region
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = domain.EnrichWithGeocoding(gctx, out[i], e.geocoder, region, e.logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
