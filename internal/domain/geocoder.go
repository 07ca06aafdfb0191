package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Location         LatLng
	FormattedAddress string
	PlaceName        string
	Relevance        float64 // 0.0–1.0 provider relevance score
}

// Geocoder resolves data center addresses and coordinates.
type Geocoder interface {
	// ForwardGeocode converts a street address to coordinates, biased to region.
	ForwardGeocode(ctx context.Context, address, region string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to an address.
	ReverseGeocode(ctx context.Context, ll LatLng) (GeocodingResult, error)
}
