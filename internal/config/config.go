// Package config defines the global configuration structure for the risk
// scoring service. Configuration is loaded once at process initialization and
// is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import "time"

// Config is the top-level configuration struct for the service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"riskradar-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	Scoring  ScoringConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`     // Fail fast when pool exhausted
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"` // Detect dead connections during failover
}

// WeatherConfig holds upstream weather API and cache settings.
type WeatherConfig struct {
	BaseURL  string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com/v1" validate:"required,url"`
	Timeout  time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"30m"`

	// Retry/breaker tuning for the upstream client.
	MaxRetries       int           `envconfig:"WEATHER_MAX_RETRIES" default:"2"`
	RetryBackoff     time.Duration `envconfig:"WEATHER_RETRY_BACKOFF" default:"500ms"`
	BreakerThreshold uint32        `envconfig:"WEATHER_BREAKER_THRESHOLD" default:"5"`
	BreakerCooldown  time.Duration `envconfig:"WEATHER_BREAKER_COOLDOWN" default:"60s"`
}

// ScoringConfig holds analysis pipeline tuning parameters.
type ScoringConfig struct {
	// ModelDir points at the directory holding trained model coefficient
	// files (one JSON file per coverage). Empty disables model blending
	// and scores run heuristic-only.
	ModelDir string `envconfig:"SCORING_MODEL_DIR"`

	MaxBatchSize     int `envconfig:"SCORING_MAX_BATCH_SIZE" default:"100"`
	BatchConcurrency int `envconfig:"SCORING_BATCH_CONCURRENCY" default:"8" validate:"gte=1"`

	// HighRiskThreshold is the average score at or above which a policy is
	// flagged in the batch high-risk report.
	HighRiskThreshold float64 `envconfig:"SCORING_HIGH_RISK_THRESHOLD" default:"70"`

	// HistoryDefaultLimit caps history queries when the caller omits a limit.
	HistoryDefaultLimit int `envconfig:"SCORING_HISTORY_LIMIT" default:"50"`

	// RankingWindow is how far back the portfolio ranking query looks.
	RankingWindow time.Duration `envconfig:"SCORING_RANKING_WINDOW" default:"720h"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not set.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the populated config failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates envconfig could not parse a variable's value.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
