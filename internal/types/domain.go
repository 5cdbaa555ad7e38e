package types

import "time"

// Geographic fallback used when a policy carries no usable coordinates.
// Roughly the center of the covered territory.
const (
	DefaultLatitude  = -15.0
	DefaultLongitude = -47.0
)

// PolicyInput is the caller-supplied description of a policy to analyze.
type PolicyInput struct {
	PolicyNumber     string       `json:"policy_number" validate:"required,min=3,max=50"`
	PropertyType     PropertyType `json:"property_type" validate:"required,oneof=house apartment duplex studio"`
	InsuredValue     float64      `json:"insured_value" validate:"required,gt=0"`
	PostalCode       string       `json:"postal_code" validate:"required,min=5,max=10"`
	ConstructionYear *int         `json:"construction_year,omitempty" validate:"omitempty,gte=1800"`
	Latitude         *float64     `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64     `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// Coordinates returns the policy's coordinates, falling back to the
// territory center when either axis is missing.
func (p PolicyInput) Coordinates() (lat, lon float64) {
	if p.Latitude == nil || p.Longitude == nil {
		return DefaultLatitude, DefaultLongitude
	}
	return *p.Latitude, *p.Longitude
}

// WeatherReading is a normalized point-in-time weather observation
// plus short-range aggregates for one location.
type WeatherReading struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`

	TemperatureC         float64 `json:"temperature_c"`
	ApparentTemperatureC float64 `json:"apparent_temperature_c"`
	HumidityPercent      float64 `json:"humidity_percent"`
	PressureHPa          float64 `json:"pressure_hpa"`
	CloudCoverPercent    float64 `json:"cloud_cover_percent"`
	UVIndex              float64 `json:"uv_index"`

	PrecipitationMM float64 `json:"precipitation_mm"`
	RainMM          float64 `json:"rain_mm"`

	WindSpeedKmh     float64 `json:"wind_speed_kmh"`
	WindGustKmh      float64 `json:"wind_gust_kmh"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`

	// Current-day extremes, first entry of the daily forecast block.
	TemperatureMaxC float64 `json:"temperature_max_c"`
	TemperatureMinC float64 `json:"temperature_min_c"`

	// 7-day forward aggregates from the daily forecast block.
	TemperatureMax7dC    float64 `json:"temperature_max_7d_c"`
	TemperatureMin7dC    float64 `json:"temperature_min_7d_c"`
	PrecipitationSum7dMM float64 `json:"precipitation_sum_7d_mm"`

	Source WeatherSource `json:"source"`
}

// PropertyFeatures is the model-ready view of a policy's property.
type PropertyFeatures struct {
	AgeYears         int          `json:"age_years"`
	PropertyType     PropertyType `json:"property_type"`
	InsuredValue     float64      `json:"insured_value"`
	ValueTier        ValueTier    `json:"value_tier"`
	PostalPrefix     string       `json:"postal_prefix"`
	Metropolitan     bool         `json:"metropolitan"`
	ConstructionRisk float64      `json:"construction_risk"`
}

// RiskFactor is one feature's contribution to a coverage score.
type RiskFactor struct {
	Feature    string  `json:"feature"`
	Value      float64 `json:"value"`
	Importance float64 `json:"importance"`
}

// CoverageRiskResult is the outcome of scoring one coverage for one policy.
type CoverageRiskResult struct {
	Coverage     CoverageType `json:"coverage"`
	CoverageCode int          `json:"coverage_code"`

	Probability     float64      `json:"probability"`
	RiskScore       float64      `json:"risk_score"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	ModelPrediction *float64     `json:"model_prediction,omitempty"`
	HeuristicScore  float64      `json:"heuristic_score"`
	MainFactors     []RiskFactor `json:"main_factors"`
	Recommendations []string     `json:"recommendations,omitempty"`

	SeasonalFactor float64   `json:"seasonal_factor"`
	AdjustedScore  float64   `json:"adjusted_score"`
	AdjustedLevel  RiskLevel `json:"adjusted_level"`

	Weather  WeatherReading   `json:"weather"`
	Property PropertyFeatures `json:"property"`

	ModelName    string  `json:"model_name"`
	ModelVersion string  `json:"model_version"`
	Confidence   float64 `json:"confidence"`

	// Error is set when this coverage fell back to the neutral result.
	Error        string `json:"error,omitempty"`
	ProcessingMS int64  `json:"processing_ms"`
}

// HighestRiskCoverage identifies the worst-scoring coverage of a policy.
type HighestRiskCoverage struct {
	Coverage CoverageType `json:"coverage"`
	Score    float64      `json:"score"`
	Level    RiskLevel    `json:"level"`
}

// CriticalFactor is a feature ranked by its summed importance across coverages.
type CriticalFactor struct {
	Feature         string  `json:"feature"`
	TotalImportance float64 `json:"total_importance"`
}

// PersistenceInfo reports how the snapshot write for an analysis went.
type PersistenceInfo struct {
	Saved        bool    `json:"saved"`
	RecordsSaved int     `json:"records_saved"`
	RecordIDs    []int64 `json:"record_ids,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// PolicySummary is the full analysis result for one policy.
type PolicySummary struct {
	PolicyNumber string    `json:"policy_number"`
	AnalyzedAt   time.Time `json:"analyzed_at"`

	Results []CoverageRiskResult `json:"results"`

	OverallRiskLevel RiskLevel            `json:"overall_risk_level"`
	AverageScore     float64              `json:"average_score"`
	HighestRisk      *HighestRiskCoverage `json:"highest_risk,omitempty"`
	Distribution     map[RiskLevel]int    `json:"distribution"`
	CriticalFactors  []CriticalFactor     `json:"critical_factors"`
	Recommendations  []string             `json:"recommendations"`

	CoveragesAnalyzed int              `json:"coverages_analyzed"`
	Persistence       *PersistenceInfo `json:"persistence,omitempty"`
	TotalTimeMS       int64            `json:"total_time_ms"`
}

// CoverageStats aggregates one coverage across a batch.
type CoverageStats struct {
	PolicyCount   int     `json:"policy_count"`
	AverageScore  float64 `json:"average_score"`
	MaxScore      float64 `json:"max_score"`
	MinScore      float64 `json:"min_score"`
	HighRiskCount int     `json:"high_risk_count"`
}

// PortfolioSummary aggregates a batch analysis across coverages and levels.
type PortfolioSummary struct {
	TotalAnalyses        int                            `json:"total_analyses"`
	AveragePortfolioRisk float64                        `json:"average_portfolio_risk"`
	CoverageBreakdown    map[CoverageType]CoverageStats `json:"coverage_breakdown"`
	Distribution         map[RiskLevel]int              `json:"distribution"`
}

// HighRiskPolicy flags a policy whose average score crossed the alert bar.
type HighRiskPolicy struct {
	PolicyNumber string               `json:"policy_number"`
	AverageScore float64              `json:"average_score"`
	HighestRisk  *HighestRiskCoverage `json:"highest_risk,omitempty"`
}

// BatchAnalysis is the outcome of analyzing a set of policies.
type BatchAnalysis struct {
	BatchID    string    `json:"batch_id"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	TotalPolicies    int               `json:"total_policies"`
	Summaries        []*PolicySummary  `json:"summaries"`
	Errors           map[string]string `json:"errors,omitempty"`
	Portfolio        PortfolioSummary  `json:"portfolio"`
	HighRiskPolicies []HighRiskPolicy  `json:"high_risk_policies"`
}

// RiskSnapshot is one persisted coverage analysis row.
type RiskSnapshot struct {
	ID             int64     `json:"id"`
	PolicyNumber   string    `json:"policy_number"`
	CoverageCode   int       `json:"coverage_code"`
	RiskScore      float64   `json:"risk_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Probability    float64   `json:"probability"`
	ModelName      string    `json:"model_name"`
	ModelVersion   string    `json:"model_version"`
	Confidence     float64   `json:"confidence"`
	Factors        JSONMap   `json:"factors,omitempty"`
	WeatherData    JSONMap   `json:"weather_data,omitempty"`
	PropertyData   JSONMap   `json:"property_data,omitempty"`
	PredictionData JSONMap   `json:"prediction_data,omitempty"`
	ProcessingMS   int64     `json:"processing_ms"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// CoverageAggregate is one row of the portfolio ranking query.
type CoverageAggregate struct {
	CoverageCode     int          `json:"coverage_code"`
	Coverage         CoverageType `json:"coverage"`
	AnalysisCount    int          `json:"analysis_count"`
	AvgScore         float64      `json:"avg_score"`
	MaxScore         float64      `json:"max_score"`
	MinScore         float64      `json:"min_score"`
	HighRiskCount    int          `json:"high_risk_count"`
	LastCalculatedAt time.Time    `json:"last_calculated_at"`
}

// SnapshotStats summarizes the snapshot store.
type SnapshotStats struct {
	TotalAnalyses   int     `json:"total_analyses"`
	TotalPolicies   int     `json:"total_policies"`
	TotalCoverages  int     `json:"total_coverages"`
	AvgScore        float64 `json:"avg_score"`
	MaxScore        float64 `json:"max_score"`
	MinScore        float64 `json:"min_score"`
	HighRiskCount   int     `json:"high_risk_count"`
	AvgProcessingMS float64 `json:"avg_processing_ms"`
}
