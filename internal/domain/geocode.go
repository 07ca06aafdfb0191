package domain

import (
	"context"
	"log/slog"
)

// Values of DataCenter.GeoSource.
const (
	GeoSourceForward  = "forward"
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// EnrichWithGeocoding fills in whichever of Location and Address is missing.
// A nil geocoder returns dc unchanged; a failed lookup keeps the authored
// values and marks GeoSource as failed.
func EnrichWithGeocoding(ctx context.Context, dc DataCenter, geocoder Geocoder, region string, logger *slog.Logger) DataCenter {
	if geocoder == nil {
		return dc
	}

	hasCoords := !dc.Location.IsZero()

	if !hasCoords && dc.Address != "" {
		result, err := geocoder.ForwardGeocode(ctx, dc.Address, region)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"datacenter_id", dc.ID,
				"address", dc.Address,
				"error", err,
			)
			dc.GeoSource = GeoSourceFailed
			return dc
		}
		if !result.Location.IsZero() {
			dc.Location = result.Location
			dc.GeoSource = GeoSourceForward
			return dc
		}
		dc.GeoSource = GeoSourceOriginal
		return dc
	}

	if hasCoords && dc.Address == "" {
		result, err := geocoder.ReverseGeocode(ctx, dc.Location)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"datacenter_id", dc.ID,
				"lat", dc.Location.Lat,
				"lng", dc.Location.Lng,
				"error", err,
			)
			dc.GeoSource = GeoSourceFailed
			return dc
		}
		if result.FormattedAddress != "" {
			dc.Address = result.FormattedAddress
			dc.GeoSource = GeoSourceReverse
			return dc
		}
	}

	dc.GeoSource = GeoSourceOriginal
	return dc
}
