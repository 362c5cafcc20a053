package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"FireGar/internal/config"
	"FireGar/internal/models/domain"
	"FireGar/internal/utils/logger/sl"
)

// Client fetches conditions from an Open-Meteo compatible API: a forecast
// endpoint for atmospheric readings and a marine endpoint for sea state.
type Client struct {
	forecastURL string
	marineURL   string
	lat, lon    float64
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a weather API client.
func NewClient(cfg config.WeatherConfig, logger *slog.Logger) *Client {
	return &Client{
		forecastURL: cfg.ForecastURL,
		marineURL:   cfg.MarineURL,
		lat:         cfg.Latitude,
		lon:         cfg.Longitude,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.With(slog.String("component", "weather")),
	}
}

// Fetch retrieves a fresh snapshot. Marine readings are best-effort: a
// marine endpoint failure leaves the wave fields zero instead of failing
// the whole snapshot.
func (c *Client) Fetch(ctx context.Context) (*domain.WeatherSnapshot, error) {
	op := "weather.Client.Fetch"

	forecast, err := c.fetchForecast(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snapshot := &domain.WeatherSnapshot{
		Temperature:     forecast.Current.Temperature,
		TemperatureUnit: forecast.CurrentUnits.Temperature,
		WindSpeed:       forecast.Current.WindSpeed,
		WindDirection:   compass(forecast.Current.WindDirection),
		Humidity:        forecast.Current.Humidity,
		PrecipRate:      forecast.Current.Precipitation,
		Precipitation:   precipitationLabel(forecast.Current.Precipitation),
		Source:          "open-meteo",
		FetchedAt:       time.Now().UTC(),
	}

	marine, err := c.fetchMarine(ctx)
	if err != nil {
		c.log.Warn("marine conditions unavailable", sl.Err(err))
		return snapshot, nil
	}
	snapshot.WaveHeight = marine.Current.WaveHeight
	snapshot.WavePeriod = int(marine.Current.WavePeriod)
	snapshot.WaveDirection = compass(marine.Current.WaveDirection)

	return snapshot, nil
}

func (c *Client) fetchForecast(ctx context.Context) (*forecastResponse, error) {
	params := url.Values{
		"latitude":  {formatCoord(c.lat)},
		"longitude": {formatCoord(c.lon)},
		"current": {"temperature_2m,relative_humidity_2m,precipitation," +
			"wind_speed_10m,wind_direction_10m"},
		"temperature_unit": {"fahrenheit"},
		"wind_speed_unit":  {"mph"},
	}

	var resp forecastResponse
	if err := c.doRequest(ctx, c.forecastURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) fetchMarine(ctx context.Context) (*marineResponse, error) {
	params := url.Values{
		"latitude":    {formatCoord(c.lat)},
		"longitude":   {formatCoord(c.lon)},
		"current":     {"wave_height,wave_period,wave_direction"},
		"length_unit": {"imperial"},
	}

	var resp marineResponse
	if err := c.doRequest(ctx, c.marineURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func precipitationLabel(rate float64) string {
	switch {
	case rate <= 0:
		return "none"
	case rate < 0.1:
		return "light"
	case rate < 0.3:
		return "moderate"
	default:
		return "heavy"
	}
}

// Open-Meteo response types.

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      int     `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
	} `json:"current"`
	CurrentUnits struct {
		Temperature string `json:"temperature_2m"`
	} `json:"current_units"`
}

type marineResponse struct {
	Current struct {
		WaveHeight    float64 `json:"wave_height"`
		WavePeriod    float64 `json:"wave_period"`
		WaveDirection float64 `json:"wave_direction"`
	} `json:"current"`
}
