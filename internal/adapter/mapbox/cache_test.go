package mapbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/datacenter-atlas/internal/config"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	forwardCalls int
	reverseCalls int
	result       domain.GeocodingResult
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	m.forwardCalls++
	return m.result, nil
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _ domain.LatLng) (domain.GeocodingResult, error) {
	m.reverseCalls++
	return m.result, nil
}

func TestCachedGeocoder_ForwardCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{
			Location:         domain.LatLng{Lat: 39.02, Lng: -77.45},
			PlaceName:        "Ashburn",
			FormattedAddress: "Ashburn, VA",
		},
	}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "44274 Round Table Plz", "VA")
	require.NoError(t, err)
	r2, err := cached.ForwardGeocode(context.Background(), "44274 Round Table Plz", "VA")
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
}

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Sterling, VA"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())
	ll := domain.LatLng{Lat: 39.006, Lng: -77.429}

	_, err := cached.ReverseGeocode(context.Background(), ll)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), ll)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reverseCalls, "should only call inner once")
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Place, VA"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "Ashburn", "VA")
	_, _ = cached.ForwardGeocode(context.Background(), "Ashburn", "MD")
	_, _ = cached.ForwardGeocode(context.Background(), "Sterling", "VA")

	assert.Equal(t, 3, inner.forwardCalls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), domain.LatLng{Lat: 1, Lng: 2})
	_, _ = cached.ReverseGeocode(context.Background(), domain.LatLng{Lat: 1, Lng: 2})

	assert.Equal(t, 2, inner.reverseCalls)
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "x"}}
	cached := NewCachedGeocoder(inner, 1, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "a", "VA")
	_, _ = cached.ForwardGeocode(context.Background(), "b", "VA") // evicts "a"
	_, _ = cached.ForwardGeocode(context.Background(), "a", "VA")

	assert.Equal(t, 3, inner.forwardCalls)
}

func TestNewFromConfig(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	assert.Nil(t, NewFromConfig(&config.Config{}, metrics, testLogger()))

	g := NewFromConfig(&config.Config{MapboxEnabled: true, MapboxToken: testToken, MapboxCacheSize: 5}, metrics, testLogger())
	assert.IsType(t, &CachedGeocoder{}, g)
}
