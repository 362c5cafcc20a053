package weather

import (
	"context"

	"FireGar/internal/models/domain"
)

// Provider returns a weather/marine snapshot for prefilling assessments.
// Implementations must never fabricate readings in production paths.
type Provider interface {
	// GetSnapshot returns the freshest available snapshot. With
	// forceRefresh the cache freshness window is bypassed. A nil snapshot
	// with an error means no data is available at all; callers leave the
	// weather fields blank.
	GetSnapshot(ctx context.Context, forceRefresh bool) (*domain.WeatherSnapshot, error)
}

// compassPoints in 22.5 degree steps, clockwise from north.
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// compass converts wind/wave direction degrees to a compass point.
func compass(degrees float64) string {
	for degrees < 0 {
		degrees += 360
	}
	idx := int((degrees+11.25)/22.5) % len(compassPoints)
	return compassPoints[idx]
}
