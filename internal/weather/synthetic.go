package weather

import (
	"context"
	"math/rand"
	"time"

	"FireGar/internal/models/domain"
)

// SyntheticSource generates plausible-looking readings for local
// development when no weather API is reachable. Every snapshot is flagged
// Synthetic so it can never be mistaken for sensor data. Wire it only when
// env=local and weather.allowSynthetic is set.
type SyntheticSource struct{}

// Fetch implements Source.
func (SyntheticSource) Fetch(_ context.Context) (*domain.WeatherSnapshot, error) {
	return &domain.WeatherSnapshot{
		Temperature:     55 + rand.Float64()*30,
		TemperatureUnit: "°F",
		WindSpeed:       float64(rand.Intn(25)),
		WindDirection:   compass(rand.Float64() * 360),
		Humidity:        40 + rand.Intn(50),
		Precipitation:   "none",
		WaveHeight:      rand.Float64() * 6,
		WavePeriod:      8 + rand.Intn(8),
		WaveDirection:   compass(rand.Float64() * 360),
		Source:          "synthetic",
		FetchedAt:       time.Now().UTC(),
		Synthetic:       true,
	}, nil
}
