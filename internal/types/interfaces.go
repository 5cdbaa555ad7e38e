package types

import (
	"context"
	"time"
)

// Validator is implemented by entities to self-validate.
type Validator interface {
	Validate() error
}

// WeatherSupplier retrieves the current weather for a coordinate.
// Implementations must always return a usable reading; when live data is
// unavailable they degrade to cached or simulated values and tag the Source.
type WeatherSupplier interface {
	Current(ctx context.Context, lat, lon float64) WeatherReading
}

// CoverageModel scores one coverage for a policy given its features and weather.
type CoverageModel interface {
	// Coverage identifies which peril this model scores.
	Coverage() CoverageType

	// Score produces the raw 0..1 heuristic probability and the factors behind it.
	Score(features PropertyFeatures, weather WeatherReading) (float64, []RiskFactor)

	// SeasonalFactor returns the month's score multiplier for this peril.
	SeasonalFactor(m time.Month) float64

	// Recommendations returns peril-specific mitigation advice for the given
	// risk level and ranked factor list.
	Recommendations(level RiskLevel, factors []RiskFactor) []string
}

// SnapshotRepository persists and queries coverage analysis snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, snap *RiskSnapshot) (int64, error)
	SaveMany(ctx context.Context, snaps []*RiskSnapshot) ([]int64, error)
	History(ctx context.Context, policyNumber string, coverageCode int, latestOnly bool, limit int) ([]RiskSnapshot, error)
	Ranking(ctx context.Context, since time.Time, limit int) ([]CoverageAggregate, error)
	Stats(ctx context.Context) (*SnapshotStats, error)
	Purge(ctx context.Context, policyNumber string) (int64, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Logger defines the structured logging interface used throughout the service.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}
