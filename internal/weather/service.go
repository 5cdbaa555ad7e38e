package weather

import (
	"context"
	"log/slog"
	"time"

	"riskradar/internal/observability"
	"riskradar/internal/types"
)

// Fetcher is the live API dependency of the Service, extracted for testing.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (*types.WeatherReading, error)
}

// Service is the layered weather supplier: cache first, then the live API,
// then the synthetic generator. Current never fails; degraded readings are
// tagged via their Source field.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	metrics *observability.Metrics
	logger  *slog.Logger
	clock   types.Clock
}

// NewService creates the layered supplier. Logger and clock may be nil, in
// which case slog.Default and the real UTC clock are used.
func NewService(fetcher Fetcher, cacheTTL time.Duration, metrics *observability.Metrics, logger *slog.Logger, clock types.Clock) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Service{
		fetcher: fetcher,
		cache:   NewCache(cacheTTL),
		metrics: metrics,
		logger:  logger,
		clock:   clock,
	}
}

// Current returns the weather for a coordinate, degrading through the layers:
//
//	cache hit        -> Source = cache
//	live API success -> Source = live-api (and the reading is cached)
//	live API failure -> Source = simulated-fallback
func (s *Service) Current(ctx context.Context, lat, lon float64) types.WeatherReading {
	if cached, ok := s.cache.Get(lat, lon); ok {
		s.countLookup(types.WeatherSourceCache)
		r := *cached
		r.Source = types.WeatherSourceCache
		return r
	}

	reading, err := s.fetcher.Current(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("live weather fetch failed, using synthetic reading",
			"lat", lat, "lon", lon, "error", err)
		if s.metrics != nil {
			s.metrics.WeatherFailures.Inc()
		}
		s.countLookup(types.WeatherSourceFallback)
		return *Synthetic(lat, lon, s.clock.Now())
	}

	s.cache.Put(lat, lon, reading)
	s.countLookup(types.WeatherSourceLive)
	return *reading
}

func (s *Service) countLookup(source types.WeatherSource) {
	if s.metrics != nil {
		s.metrics.WeatherLookups.WithLabelValues(string(source)).Inc()
	}
}

var _ types.WeatherSupplier = (*Service)(nil)
