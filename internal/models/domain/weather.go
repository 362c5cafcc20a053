package domain

import (
	"fmt"
	"strings"
	"time"
)

// WeatherSnapshot is a point-in-time weather and marine reading used to
// prefill an assessment. Any subset of fields may be populated.
type WeatherSnapshot struct {
	Temperature     float64 `json:"temperature"`
	TemperatureUnit string  `json:"temperatureUnit"`
	WindSpeed       float64 `json:"windSpeed"`
	WindDirection   string  `json:"windDirection"`
	Humidity        int     `json:"humidity"`
	Precipitation   string  `json:"precipitation"`
	PrecipRate      float64 `json:"precipRate"`
	WaveHeight      float64 `json:"waveHeight"`
	WavePeriod      int     `json:"wavePeriod"`
	WaveDirection   string  `json:"waveDirection"`
	Alerts          string  `json:"alerts"`

	// Provenance.
	Source    string    `json:"source,omitempty"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	Stale     bool      `json:"stale,omitempty"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// Summary returns a short human-readable weather line for notifications.
func (w *WeatherSnapshot) Summary() string {
	if w == nil {
		return "no weather data"
	}
	parts := []string{
		fmt.Sprintf("%.0f%s", w.Temperature, w.TemperatureUnit),
		fmt.Sprintf("wind %.0f %s", w.WindSpeed, w.WindDirection),
		fmt.Sprintf("humidity %d%%", w.Humidity),
	}
	if w.WaveHeight > 0 {
		parts = append(parts, fmt.Sprintf("waves %.1f ft @ %ds %s", w.WaveHeight, w.WavePeriod, w.WaveDirection))
	}
	if w.Alerts != "" {
		parts = append(parts, "alerts: "+w.Alerts)
	}
	if w.Stale {
		parts = append(parts, "(stale)")
	}
	return strings.Join(parts, ", ")
}
