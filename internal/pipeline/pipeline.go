package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/datacenter-atlas/internal/cache"
	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/dataset"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
)

// ErrNotReady is returned by queries made before a dataset is loaded.
var ErrNotReady = errors.New("dataset not loaded")

// Options configures a Pipeline. Zero values fall back to the domain defaults.
type Options struct {
	Years domain.YearRange
	// HighConsumptionMWh overrides the dataset threshold when > 0.
	HighConsumptionMWh float64
	CacheSize          int
	ExportConcurrency  int
	Viewport           domain.Viewport
	Frames             domain.Frames
	RadarStyle         domain.RadarStyle
	Region             string
}

// OptionsFromConfig maps service configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Years:              domain.YearRange{Min: cfg.MinYear, Max: cfg.MaxYear},
		HighConsumptionMWh: cfg.HighConsumptionMWh,
		CacheSize:          cfg.CacheSize,
		ExportConcurrency:  cfg.ExportConcurrency,
		Region:             cfg.MapboxRegion,
	}
}

func (o Options) withDefaults() Options {
	if o.Years == (domain.YearRange{}) {
		o.Years = domain.DefaultYearRange
	}
	o.Years = o.Years.Normalized()
	if o.ExportConcurrency <= 0 {
		o.ExportConcurrency = 4
	}
	if o.Viewport == (domain.Viewport{}) {
		o.Viewport = domain.DefaultViewport
	}
	if o.Frames == (domain.Frames{}) {
		o.Frames = domain.DefaultFrames()
	}
	if o.RadarStyle == "" {
		o.RadarStyle = domain.RadarQuadratic
	}
	return o
}

// state is everything derived from one loaded dataset. It is replaced
// wholesale on Load and never mutated.
type state struct {
	version    string
	region     string
	entities   []domain.DataCenter
	aggregator *domain.Aggregator
	normalizer *domain.Normalizer
	energy     []domain.ConsumptionPoint
	water      []domain.ConsumptionPoint
	threshold  float64
	rejected   map[string]int
}

type memoKey struct {
	version string
	year    int
}

// Pipeline owns the loaded dataset and answers the year-driven queries the
// presentation layer makes.
type Pipeline struct {
	opts     Options
	enricher *Enricher
	logger   *slog.Logger
	metrics  *observability.Metrics

	state      atomic.Pointer[state]
	aggregates *cache.LRU[memoKey, domain.YearlyAggregate]
	snapshots  *cache.LRU[memoKey, domain.Snapshot]
	ready      atomic.Bool
}

// New creates a Pipeline. Pass a nil geocoder to disable enrichment.
func New(opts Options, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{
		opts:       opts,
		enricher:   NewEnricher(geocoder, opts.Region, opts.ExportConcurrency, logger),
		logger:     logger,
		metrics:    metrics,
		aggregates: cache.New[memoKey, domain.YearlyAggregate](opts.CacheSize),
		snapshots:  cache.New[memoKey, domain.Snapshot](opts.CacheSize),
	}
}

// CheckReadiness returns nil once a dataset has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded a dataset yet")
	}
	return nil
}

// Load derives every query structure from ds and swaps it in. Entities are
// enriched with the geocoder first; a failed lookup never fails the load.
func (p *Pipeline) Load(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()

	region := p.opts.Region
	if region == "" {
		region = ds.Region
	}
	entities, err := p.enricher.Enrich(ctx, ds.Entities, region)
	if err != nil {
		return fmt.Errorf("enrich entities: %w", err)
	}

	threshold := ds.Baseline.HighConsumptionMWh
	if p.opts.HighConsumptionMWh > 0 {
		threshold = p.opts.HighConsumptionMWh
	}
	population := ds.Population()

	s := &state{
		version:    ds.Version,
		region:     region,
		entities:   entities,
		aggregator: domain.NewAggregator(entities, p.opts.Years),
		normalizer: domain.NewNormalizer(entities),
		energy: domain.BuildConsumptionSeries(ds.Energy.Records, domain.SeriesOptions{
			Years:            p.opts.Years,
			Population:       population,
			DefaultPerCapita: ds.Baseline.EnergyPerCapitaMWh,
		}),
		water: domain.BuildConsumptionSeries(ds.Water.Records, domain.SeriesOptions{
			Years:            p.opts.Years,
			Population:       population,
			DefaultPerCapita: ds.Baseline.WaterPerCapitaGallons,
		}),
		threshold: threshold,
		rejected: map[string]int{
			domain.EnergySchema.Name: len(ds.Energy.Rejected),
			domain.WaterSchema.Name:  len(ds.Water.Rejected),
		},
	}

	for name, result := range map[string]domain.ParseResult{
		domain.EnergySchema.Name: ds.Energy,
		domain.WaterSchema.Name:  ds.Water,
	} {
		p.metrics.CSVRows.WithLabelValues(name, "accepted").Add(float64(len(result.Records)))
		p.metrics.CSVRows.WithLabelValues(name, "rejected").Add(float64(len(result.Rejected)))
	}

	for _, dc := range categoryMismatches(entities, threshold) {
		p.logger.Warn("authored category disagrees with threshold",
			"datacenter_id", dc.ID,
			"name", dc.Name,
			"energy_mwh", dc.EnergyConsumption,
			"category", dc.Category,
			"threshold_mwh", threshold,
		)
	}

	p.state.Store(s)
	p.aggregates.Purge()
	p.snapshots.Purge()
	p.metrics.DatasetEntities.Set(float64(len(entities)))
	p.metrics.DatasetLoaded.Set(1)
	p.ready.Store(true)

	p.logger.Info("dataset loaded",
		"version", ds.Version,
		"entities", len(entities),
		"energy_rows", len(ds.Energy.Records),
		"water_rows", len(ds.Water.Records),
		"years", fmt.Sprintf("%d-%d", p.opts.Years.Min, p.opts.Years.Max),
		"duration", time.Since(start),
	)
	return nil
}

func (p *Pipeline) current() (*state, error) {
	s := p.state.Load()
	if s == nil {
		return nil, ErrNotReady
	}
	return s, nil
}

// Years returns the year range queries are clamped to.
func (p *Pipeline) Years() domain.YearRange {
	return p.opts.Years
}

// Version returns the loaded dataset version, or "" before Load.
func (p *Pipeline) Version() string {
	if s := p.state.Load(); s != nil {
		return s.version
	}
	return ""
}

// AggregatesForYear returns cumulative and mean statistics for year, memoised
// per dataset version. The returned maps are shared with the memo and must not
// be modified.
func (p *Pipeline) AggregatesForYear(year int) (domain.YearlyAggregate, error) {
	s, err := p.current()
	if err != nil {
		return domain.YearlyAggregate{}, err
	}
	key := memoKey{version: s.version, year: p.opts.Years.Clamp(year)}
	if agg, ok := p.aggregates.Get(key); ok {
		p.metrics.MemoLookups.WithLabelValues("aggregate", "hit").Inc()
		return agg, nil
	}
	p.metrics.MemoLookups.WithLabelValues("aggregate", "miss").Inc()

	start := time.Now()
	agg := s.aggregator.AggregatesForYear(key.year)
	p.metrics.AggregateDuration.Observe(time.Since(start).Seconds())

	p.aggregates.Put(key, agg)
	return agg, nil
}

// AggregateSeries returns one aggregate per year of the configured range,
// oldest first.
func (p *Pipeline) AggregateSeries() ([]domain.YearlyAggregate, error) {
	s, err := p.current()
	if err != nil {
		return nil, err
	}
	return s.aggregator.Series(), nil
}

// Normalize maps raw against the dataset maximum of metric.
func (p *Pipeline) Normalize(metric domain.Metric, raw float64) (float64, error) {
	s, err := p.current()
	if err != nil {
		return 0, err
	}
	return s.normalizer.Normalize(metric, raw), nil
}

// ProjectPath builds the requested geometry in the configured frames. It does
// not need a loaded dataset.
func (p *Pipeline) ProjectPath(req domain.PathRequest) (domain.Path, error) {
	path, err := domain.ProjectPath(req, p.opts.Frames)
	kind, outcome := string(req.Kind), "ok"
	if err != nil {
		outcome = "invalid"
	}
	if errors.Is(err, domain.ErrUnknownPathKind) {
		kind = "unknown"
	}
	p.metrics.PathRequests.WithLabelValues(kind, outcome).Inc()
	return path, err
}

// Snapshot returns everything drawn for year, memoised per dataset version.
func (p *Pipeline) Snapshot(ctx context.Context, year int) (domain.Snapshot, error) {
	s, err := p.current()
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	key := memoKey{version: s.version, year: p.opts.Years.Clamp(year)}
	if snap, ok := p.snapshots.Get(key); ok {
		p.metrics.MemoLookups.WithLabelValues("snapshot", "hit").Inc()
		return snap, nil
	}
	p.metrics.MemoLookups.WithLabelValues("snapshot", "miss").Inc()

	start := time.Now()
	snap := domain.BuildSnapshot(domain.SnapshotInput{
		Year:           key.year,
		DatasetVersion: s.version,
		Aggregator:     s.aggregator,
		Normalizer:     s.normalizer,
		EnergySeries:   s.energy,
		WaterSeries:    s.water,
		Viewport:       p.opts.Viewport,
		Frames:         p.opts.Frames,
		RadarStyle:     p.opts.RadarStyle,
	})
	p.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())

	p.snapshots.Put(key, snap)
	return snap, nil
}

// DataCenters returns the entities operational by year, oldest first.
func (p *Pipeline) DataCenters(year int) ([]domain.DataCenter, error) {
	s, err := p.current()
	if err != nil {
		return nil, err
	}
	return s.aggregator.Visible(year), nil
}

// Series returns the full energy and water consumption series.
func (p *Pipeline) Series() (energy, water []domain.ConsumptionPoint, err error) {
	s, err := p.current()
	if err != nil {
		return nil, nil, err
	}
	return s.energy, s.water, nil
}

// CategoryMismatches lists entities whose authored category differs from the
// threshold rule.
func (p *Pipeline) CategoryMismatches() ([]domain.DataCenter, error) {
	s, err := p.current()
	if err != nil {
		return nil, err
	}
	return categoryMismatches(s.entities, s.threshold), nil
}

func categoryMismatches(entities []domain.DataCenter, threshold float64) []domain.DataCenter {
	var out []domain.DataCenter
	for _, dc := range entities {
		if domain.ClassifyCategory(dc, threshold) != dc.Category {
			out = append(out, dc)
		}
	}
	return out
}

// Info describes the loaded dataset.
type Info struct {
	Version      string                    `json:"version"`
	Region       string                    `json:"region"`
	Entities     int                       `json:"entities"`
	Years        domain.YearRange          `json:"years"`
	Maxima       map[domain.Metric]float64 `json:"maxima"`
	ThresholdMWh float64                   `json:"high_consumption_mwh"`
	RejectedRows map[string]int            `json:"rejected_rows"`
	// Bounds and Center are nil when no entity has a location.
	Bounds *domain.Bounds `json:"bounds,omitempty"`
	Center *domain.LatLng `json:"center,omitempty"`
}

// Info summarises the loaded dataset.
func (p *Pipeline) Info() (Info, error) {
	s, err := p.current()
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Version:      s.version,
		Region:       s.region,
		Entities:     len(s.entities),
		Years:        p.opts.Years,
		Maxima:       s.normalizer.Maxima(),
		ThresholdMWh: s.threshold,
		RejectedRows: s.rejected,
	}
	if b, ok := domain.BoundsOf(s.entities); ok {
		c := b.Center()
		info.Bounds = &b
		info.Center = &c
	}
	return info, nil
}
