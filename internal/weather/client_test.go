package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskradar/internal/config"
	"riskradar/internal/external"
	"riskradar/internal/types"
)

const sampleForecast = `{
	"latitude": -23.55,
	"longitude": -46.63,
	"current": {
		"temperature_2m": 26.4,
		"relative_humidity_2m": 72,
		"apparent_temperature": 28.1,
		"precipitation": 1.2,
		"rain": 1.2,
		"cloud_cover": 80,
		"pressure_msl": 1015.3,
		"wind_speed_10m": 14.5,
		"wind_direction_10m": 120,
		"wind_gusts_10m": 31.0,
		"uv_index": 7.5
	},
	"daily": {
		"temperature_2m_max": [29.0, 31.5, 30.2, 28.8, 27.0, 26.5, 30.0],
		"temperature_2m_min": [19.5, 20.0, 18.2, 17.9, 18.5, 19.0, 20.1],
		"precipitation_sum": [5.0, 0.0, 12.5, 3.2, 0.0, 8.0, 1.3]
	}
}`

func newTestWeatherClient(serverURL string) *Client {
	return NewClient(config.WeatherConfig{
		BaseURL:          serverURL,
		Timeout:          5 * time.Second,
		MaxRetries:       0,
		RetryBackoff:     time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  time.Minute,
	}, mockClock{now: fixedTime()}, external.WithSleepFunc(func(time.Duration) {}))
}

func TestClient_Current_MapsPayload(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "-23.5500", r.URL.Query().Get("latitude"))
		assert.Equal(t, "7", r.URL.Query().Get("forecast_days"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleForecast))
	}))
	defer server.Close()

	client := newTestWeatherClient(server.URL)

	reading, err := client.Current(context.Background(), -23.55, -46.63)
	require.NoError(t, err)
	assert.Equal(t, "/forecast", gotPath)

	assert.Equal(t, 26.4, reading.TemperatureC)
	assert.Equal(t, 72.0, reading.HumidityPercent)
	assert.Equal(t, 1015.3, reading.PressureHPa)
	assert.Equal(t, 14.5, reading.WindSpeedKmh)
	assert.Equal(t, 31.0, reading.WindGustKmh)
	assert.Equal(t, types.WeatherSourceLive, reading.Source)
	assert.Equal(t, fixedTime(), reading.Timestamp)

	// Current-day extremes come from the first daily entry.
	assert.Equal(t, 29.0, reading.TemperatureMaxC)
	assert.Equal(t, 19.5, reading.TemperatureMinC)

	// 7-day aggregates: max of maxes, min of mins, sum of precipitation.
	assert.Equal(t, 31.5, reading.TemperatureMax7dC)
	assert.Equal(t, 17.9, reading.TemperatureMin7dC)
	assert.InDelta(t, 30.0, reading.PrecipitationSum7dMM, 0.001)
}

func TestClient_Current_Non200IsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"reason":"unknown location"}`))
	}))
	defer server.Close()

	client := newTestWeatherClient(server.URL)

	_, err := client.Current(context.Background(), -23.55, -46.63)
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok, "error type = %T, want *types.AppError", err)
	assert.Equal(t, types.ErrCodeUpstreamWeather, appErr.Code)
}

func TestClient_Current_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestWeatherClient(server.URL)

	_, err := client.Current(context.Background(), -23.55, -46.63)
	require.Error(t, err)
}
