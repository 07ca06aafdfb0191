package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	maxRetries     = 2
	breakerTrip    = 5
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	retryDelay time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		breaker:    newBreaker(logger),
		retryDelay: 250 * time.Millisecond,
		metrics:    metrics,
		logger:     logger,
	}
}

// newBreaker opens after consecutive failures so a Mapbox outage fails the
// remaining lookups fast instead of waiting out every timeout.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "mapbox",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= breakerTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ForwardGeocode converts a street address to coordinates.
func (c *Client) ForwardGeocode(ctx context.Context, address, region string) (domain.GeocodingResult, error) {
	query := address
	if region != "" {
		query = fmt.Sprintf("%s, %s", address, region)
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"address,poi"},
		"country":      {"us"},
	}

	return c.lookup(ctx, u+"?"+params.Encode(), "forward")
}

// ReverseGeocode converts coordinates to a street address.
func (c *Client) ReverseGeocode(ctx context.Context, ll domain.LatLng) (domain.GeocodingResult, error) {
	// Mapbox uses lng,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", ll.Lng, ll.Lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"address"},
	}

	return c.lookup(ctx, u+"?"+params.Encode(), "reverse")
}

func (c *Client) lookup(ctx context.Context, fullURL, method string) (domain.GeocodingResult, error) {
	start := time.Now()
	out, err := c.breaker.Execute(func() (any, error) {
		var result domain.GeocodingResult
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = c.retryDelay
		op := func() error {
			var err error
			result, err = c.doRequest(ctx, fullURL, method)
			return err
		}
		err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
		return result, err
	})
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return domain.GeocodingResult{}, err
	}
	result := out.(domain.GeocodingResult)
	if result.FormattedAddress == "" && result.Location.IsZero() {
		c.metrics.GeocodeRequests.WithLabelValues(method, "empty").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues(method, "success").Inc()
	}
	return result, nil
}

// doRequest performs one API call. Client errors are permanent; transport
// failures and server errors may be retried.
func (c *Client) doRequest(ctx context.Context, fullURL, method string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.GeocodingResult{}, backoff.Permanent(err)
		}
		return domain.GeocodingResult{}, fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return domain.GeocodingResult{}, backoff.Permanent(err)
		}
		c.logger.Debug("retryable mapbox response", "method", method, "status", resp.StatusCode)
		return domain.GeocodingResult{}, err
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Relevance:        f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Location = domain.LatLng{Lat: f.Center[1], Lng: f.Center[0]}
	}
	return result, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lng, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
