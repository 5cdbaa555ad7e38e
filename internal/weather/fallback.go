package weather

import (
	"math"
	"time"

	"riskradar/internal/types"
)

// Synthetic produces a deterministic simulated reading for a coordinate when
// neither cache nor the live API can serve it. The same coordinate and day
// always yield the same reading, so repeated analyses stay reproducible.
func Synthetic(lat, lon float64, now time.Time) *types.WeatherReading {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 ||
		math.IsNaN(lat) || math.IsNaN(lon) {
		return minimalReading(lat, lon, now)
	}

	baseTemp, baseHumidity := regionalBaseline(lat)

	season := types.SeasonForMonth(now.Month())
	var tempShift, precip float64
	switch season {
	case types.SeasonSummer:
		tempShift, precip = 4, 8
	case types.SeasonWinter:
		tempShift, precip = -4, 1
	case types.SeasonSpring:
		tempShift, precip = 1, 4
	default:
		tempShift, precip = -1, 3
	}

	// Small deterministic variation so nearby coordinates do not all
	// collapse onto the same reading.
	noise := coordNoise(lat, lon, now)

	temp := baseTemp + tempShift + noise*3
	humidity := clampRange(baseHumidity+noise*10, 20, 100)

	return &types.WeatherReading{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: now,

		TemperatureC:         temp,
		ApparentTemperatureC: temp + 1,
		HumidityPercent:      humidity,
		PressureHPa:          1013 + noise*8,
		CloudCoverPercent:    clampRange(40+noise*30, 0, 100),
		UVIndex:              clampRange(6+noise*3, 0, 12),

		PrecipitationMM: clampRange(precip+noise*precip, 0, 80),
		RainMM:          clampRange(precip+noise*precip, 0, 80),

		WindSpeedKmh:     clampRange(12+noise*15, 0, 90),
		WindGustKmh:      clampRange(20+noise*25, 0, 140),
		WindDirectionDeg: math.Mod(math.Abs(lat*100+lon*10), 360),

		TemperatureMaxC: temp + 4,
		TemperatureMinC: temp - 5,

		TemperatureMax7dC:    temp + 5,
		TemperatureMin7dC:    temp - 6,
		PrecipitationSum7dMM: clampRange(precip*7*(1+noise), 0, 400),

		Source: types.WeatherSourceFallback,
	}
}

// regionalBaseline maps latitude bands to typical conditions.
func regionalBaseline(lat float64) (tempC, humidityPercent float64) {
	switch {
	case lat < -30:
		return 18, 70
	case lat < -15:
		return 24, 65
	default:
		return 28, 75
	}
}

// minimalReading is the last-resort neutral reading for unusable coordinates.
func minimalReading(lat, lon float64, now time.Time) *types.WeatherReading {
	return &types.WeatherReading{
		Latitude:        lat,
		Longitude:       lon,
		Timestamp:       now,
		TemperatureC:    22,
		TemperatureMaxC: 28,
		TemperatureMinC: 16,
		HumidityPercent: 60,
		PressureHPa:     1013,
		WindSpeedKmh:    10,
		Source:          types.WeatherSourceFallback,
	}
}

// coordNoise yields a stable pseudo-random value in [-1, 1] from a coordinate
// and the calendar day.
func coordNoise(lat, lon float64, now time.Time) float64 {
	seed := lat*7919 + lon*104729 + float64(now.YearDay())*31
	_, frac := math.Modf(math.Abs(math.Sin(seed) * 43758.5453))
	return frac*2 - 1
}

func clampRange(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
