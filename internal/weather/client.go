// Package weather supplies current weather observations for policy locations.
// Readings flow through a layered supplier: an in-memory cache in front of the
// Open-Meteo API, with a deterministic synthetic generator as the last resort.
// The supplier never fails; callers always receive a usable reading tagged
// with its source.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"riskradar/internal/config"
	"riskradar/internal/external"
	"riskradar/internal/types"
)

// currentVariables are the instantaneous variables requested from Open-Meteo.
const currentVariables = "temperature_2m,relative_humidity_2m,apparent_temperature," +
	"precipitation,rain,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m,wind_gusts_10m,uv_index"

// dailyVariables are the 7-day forecast aggregates requested from Open-Meteo.
const dailyVariables = "temperature_2m_max,temperature_2m_min,precipitation_sum"

// Client fetches current conditions from the Open-Meteo forecast API.
type Client struct {
	base    *external.BaseClient
	baseURL string
	clock   types.Clock
}

// NewClient creates an Open-Meteo client with circuit breaking and retry
// behavior inherited from the shared BaseClient.
func NewClient(cfg config.WeatherConfig, clock types.Clock, opts ...external.BaseClientOption) *Client {
	if clock == nil {
		clock = types.RealClock{}
	}
	base := external.NewBaseClient(
		&http.Client{Timeout: cfg.Timeout},
		external.BreakerSettings{
			Name:      "open-meteo",
			Threshold: cfg.BreakerThreshold,
			Cooldown:  cfg.BreakerCooldown,
		},
		external.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			MinWait:    cfg.RetryBackoff,
			MaxWait:    cfg.Timeout,
		},
		"RiskRadar/1.0",
		opts...,
	)
	return &Client{base: base, baseURL: cfg.BaseURL, clock: clock}
}

// forecastResponse mirrors the subset of the Open-Meteo response we consume.
type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		Rain                float64 `json:"rain"`
		CloudCover          float64 `json:"cloud_cover"`
		PressureMSL         float64 `json:"pressure_msl"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
		WindGusts           float64 `json:"wind_gusts_10m"`
		UVIndex             float64 `json:"uv_index"`
	} `json:"current"`
	Daily struct {
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Current fetches the current conditions plus 7-day aggregates for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*types.WeatherReading, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", currentVariables)
	q.Set("daily", dailyVariables)
	q.Set("forecast_days", "7")
	q.Set("timezone", "UTC")

	endpoint := fmt.Sprintf("%s/forecast?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build weather request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather API returned %d", resp.StatusCode),
			nil,
			map[string]any{"body": string(body)},
		)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "failed to decode weather response", err)
	}

	return c.toReading(lat, lon, &payload), nil
}

// toReading normalizes the raw API payload into the domain reading.
func (c *Client) toReading(lat, lon float64, p *forecastResponse) *types.WeatherReading {
	r := &types.WeatherReading{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: c.clock.Now(),

		TemperatureC:         p.Current.Temperature,
		ApparentTemperatureC: p.Current.ApparentTemperature,
		HumidityPercent:      p.Current.RelativeHumidity,
		PressureHPa:          p.Current.PressureMSL,
		CloudCoverPercent:    p.Current.CloudCover,
		UVIndex:              p.Current.UVIndex,

		PrecipitationMM: p.Current.Precipitation,
		RainMM:          p.Current.Rain,

		WindSpeedKmh:     p.Current.WindSpeed,
		WindGustKmh:      p.Current.WindGusts,
		WindDirectionDeg: p.Current.WindDirection,

		Source: types.WeatherSourceLive,
	}

	for i, max := range p.Daily.TemperatureMax {
		if i == 0 {
			r.TemperatureMaxC = max
		}
		if i == 0 || max > r.TemperatureMax7dC {
			r.TemperatureMax7dC = max
		}
	}
	for i, min := range p.Daily.TemperatureMin {
		if i == 0 {
			r.TemperatureMinC = min
		}
		if i == 0 || min < r.TemperatureMin7dC {
			r.TemperatureMin7dC = min
		}
	}
	for _, sum := range p.Daily.PrecipitationSum {
		r.PrecipitationSum7dMM += sum
	}

	return r
}
