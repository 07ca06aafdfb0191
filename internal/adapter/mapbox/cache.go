package mapbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/datacenter-atlas/internal/cache"
	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *cache.LRU[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache.New[string, domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, address, region string) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("fwd:%s|%s", address, region)
	return c.resolve(key, "forward", func() (domain.GeocodingResult, error) {
		return c.inner.ForwardGeocode(ctx, address, region)
	})
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, ll domain.LatLng) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", ll.Lat, ll.Lng)
	return c.resolve(key, "reverse", func() (domain.GeocodingResult, error) {
		return c.inner.ReverseGeocode(ctx, ll)
	})
}

func (c *CachedGeocoder) resolve(key, method string, fetch func() (domain.GeocodingResult, error)) (domain.GeocodingResult, error) {
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()

	result, err := fetch()
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.Put(key, result)
	}
	return result, nil
}

// NewFromConfig returns the cached Mapbox geocoder, or nil when geocoding is
// disabled.
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.MapboxEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	client := NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	return NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
}
