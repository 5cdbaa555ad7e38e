package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"riskradar/internal/config"
	"riskradar/internal/observability"
	"riskradar/internal/types"
)

// Manager orchestrates coverage analyses: weather lookup, feature extraction,
// per-coverage scoring, snapshot persistence, and summary aggregation.
type Manager struct {
	models      map[types.CoverageType]types.CoverageModel
	classifiers map[types.CoverageType]Classifier
	weather     types.WeatherSupplier
	repo        types.SnapshotRepository
	metrics     *observability.Metrics
	logger      *slog.Logger
	clock       types.Clock
	cfg         config.ScoringConfig
}

// ManagerOption configures a Manager beyond its required dependencies.
type ManagerOption func(*Manager)

// WithCoverageModel replaces the model for one coverage. Used in tests to
// inject failing or canned models.
func WithCoverageModel(model types.CoverageModel) ManagerOption {
	return func(m *Manager) {
		m.models[model.Coverage()] = model
	}
}

// NewManager creates the analysis manager. The repo may be nil, which
// disables persistence; logger and clock may be nil for defaults. The
// classifiers map comes from LoadModels and may be empty.
func NewManager(
	cfg config.ScoringConfig,
	weather types.WeatherSupplier,
	repo types.SnapshotRepository,
	classifiers map[types.CoverageType]Classifier,
	metrics *observability.Metrics,
	logger *slog.Logger,
	clock types.Clock,
	opts ...ManagerOption,
) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if classifiers == nil {
		classifiers = map[types.CoverageType]Classifier{}
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 8
	}

	m := &Manager{
		models: map[types.CoverageType]types.CoverageModel{
			types.CoverageElectricalDamage: ElectricalModel{},
			types.CoverageWindstorm:        WindstormModel{},
			types.CoverageHail:             HailModel{},
			types.CoverageFlooding:         FloodModel{},
		},
		classifiers: classifiers,
		weather:     weather,
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
		clock:       clock,
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Analyze scores the requested coverages for one policy. An empty coverages
// slice means all of them. When persist is true and a repository is wired,
// the successful coverage results are saved in a single transaction; a failed
// write degrades PersistenceInfo instead of failing the analysis.
func (m *Manager) Analyze(ctx context.Context, policy types.PolicyInput, coverages []types.CoverageType, persist bool) (*types.PolicySummary, error) {
	started := time.Now()

	if len(coverages) == 0 {
		coverages = types.AllCoverages()
	}
	for _, c := range coverages {
		if !c.IsValid() {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidCoverage,
				fmt.Sprintf("unknown coverage type %q", c),
				nil,
				map[string]any{"coverage": string(c)},
			)
		}
	}

	now := m.clock.Now()
	features := ExtractFeatures(policy, now)

	lat, lon := policy.Coordinates()
	weather := m.weather.Current(ctx, lat, lon)

	results := make([]types.CoverageRiskResult, 0, len(coverages))
	for _, coverage := range coverages {
		results = append(results, m.analyzeCoverage(coverage, features, weather, now.Month()))
	}

	summary := buildSummary(policy.PolicyNumber, now, results)

	if persist && m.repo != nil {
		summary.Persistence = m.persistResults(ctx, policy.PolicyNumber, now, results)
	}

	summary.TotalTimeMS = time.Since(started).Milliseconds()
	return summary, nil
}

// analyzeCoverage scores a single coverage, converting any panic in a model
// into the neutral fallback result so one bad coverage cannot sink the
// analysis.
func (m *Manager) analyzeCoverage(coverage types.CoverageType, f types.PropertyFeatures, w types.WeatherReading, month time.Month) (result types.CoverageRiskResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("coverage analysis failed, using neutral fallback",
				"coverage", coverage, "panic", r)
			if m.metrics != nil {
				m.metrics.AnalysesTotal.WithLabelValues("fallback").Inc()
			}
			result = fallbackResult(coverage, f, w, fmt.Sprintf("%v", r))
			result.ProcessingMS = time.Since(started).Milliseconds()
		}
	}()

	model, ok := m.models[coverage]
	if !ok {
		panic(fmt.Sprintf("no model registered for coverage %s", coverage))
	}

	result = predictCoverage(model, m.classifiers[coverage], f, w, month)
	result.ProcessingMS = time.Since(started).Milliseconds()

	if m.metrics != nil {
		m.metrics.AnalysesTotal.WithLabelValues("success").Inc()
		m.metrics.AnalysisDuration.WithLabelValues(string(coverage)).Observe(time.Since(started).Seconds())
	}
	return result
}

// persistResults writes one snapshot per successful coverage result in a
// single transaction and reports the outcome.
func (m *Manager) persistResults(ctx context.Context, policyNumber string, now time.Time, results []types.CoverageRiskResult) *types.PersistenceInfo {
	snaps := make([]*types.RiskSnapshot, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Error != "" {
			continue
		}
		snaps = append(snaps, m.toSnapshot(policyNumber, now, r))
	}
	if len(snaps) == 0 {
		return &types.PersistenceInfo{Saved: false}
	}

	ids, err := m.repo.SaveMany(ctx, snaps)
	if err != nil {
		m.logger.Error("failed to persist risk snapshots",
			"policy_number", policyNumber, "error", err)
		if m.metrics != nil {
			m.metrics.SnapshotsFailed.Inc()
		}
		return &types.PersistenceInfo{Saved: false, Error: err.Error()}
	}

	if m.metrics != nil {
		m.metrics.SnapshotsSaved.Add(float64(len(ids)))
	}
	return &types.PersistenceInfo{Saved: true, RecordsSaved: len(ids), RecordIDs: ids}
}

// toSnapshot converts a coverage result to its persisted row shape.
func (m *Manager) toSnapshot(policyNumber string, now time.Time, r *types.CoverageRiskResult) *types.RiskSnapshot {
	factors := types.JSONMap{
		"main_factors":        types.RiskFactorList(r.MainFactors),
		"seasonal_adjustment": r.SeasonalFactor,
	}
	weatherData, err := types.ToJSONMap(r.Weather)
	if err != nil {
		m.logger.Warn("failed to encode weather data for snapshot", "error", err)
	}
	propertyData, err := types.ToJSONMap(r.Property)
	if err != nil {
		m.logger.Warn("failed to encode property data for snapshot", "error", err)
	}
	// The whole result is kept as a schema-free blob so model output
	// changes never require a migration.
	predictionData, err := types.ToJSONMap(r)
	if err != nil {
		m.logger.Warn("failed to encode prediction data for snapshot", "error", err)
	}

	return &types.RiskSnapshot{
		PolicyNumber:   policyNumber,
		CoverageCode:   r.CoverageCode,
		RiskScore:      r.RiskScore,
		RiskLevel:      r.RiskLevel,
		Probability:    r.Probability,
		ModelName:      r.ModelName,
		ModelVersion:   r.ModelVersion,
		Confidence:     r.Confidence,
		Factors:        factors,
		WeatherData:    weatherData,
		PropertyData:   propertyData,
		PredictionData: predictionData,
		ProcessingMS:   r.ProcessingMS,
		CalculatedAt:   now,
	}
}

// BatchAnalyze analyzes a set of policies concurrently. Individual policy
// failures are collected per policy number instead of aborting the batch.
func (m *Manager) BatchAnalyze(ctx context.Context, policies []types.PolicyInput, persist bool) (*types.BatchAnalysis, error) {
	if len(policies) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "batch contains no policies", nil)
	}
	if m.cfg.MaxBatchSize > 0 && len(policies) > m.cfg.MaxBatchSize {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("batch size %d exceeds limit %d", len(policies), m.cfg.MaxBatchSize),
			nil,
			map[string]any{"size": len(policies), "limit": m.cfg.MaxBatchSize},
		)
	}

	if m.metrics != nil {
		m.metrics.BatchSize.Observe(float64(len(policies)))
	}

	summaries := make([]*types.PolicySummary, len(policies))
	var mu sync.Mutex
	failures := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.BatchConcurrency)

	for i := range policies {
		g.Go(func() error {
			policy := policies[i]
			summary, err := m.Analyze(gctx, policy, nil, persist)
			if err != nil {
				key := policy.PolicyNumber
				if key == "" {
					key = fmt.Sprintf("policy_%d", i+1)
				}
				m.logger.Error("batch policy analysis failed",
					"policy_number", key, "error", err)
				mu.Lock()
				failures[key] = err.Error()
				mu.Unlock()
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	// Workers never return errors; Wait only orders the writes above.
	_ = g.Wait()

	analyzed := make([]*types.PolicySummary, 0, len(policies))
	for _, s := range summaries {
		if s != nil {
			analyzed = append(analyzed, s)
		}
	}

	batch := &types.BatchAnalysis{
		BatchID:       uuid.NewString(),
		AnalyzedAt:    m.clock.Now(),
		TotalPolicies: len(policies),
		Summaries:     analyzed,
		Portfolio:     buildPortfolioSummary(analyzed),
	}
	if len(failures) > 0 {
		batch.Errors = failures
	}

	threshold := m.cfg.HighRiskThreshold
	if threshold <= 0 {
		threshold = 70
	}
	for _, s := range analyzed {
		if s.AverageScore >= threshold {
			batch.HighRiskPolicies = append(batch.HighRiskPolicies, types.HighRiskPolicy{
				PolicyNumber: s.PolicyNumber,
				AverageScore: s.AverageScore,
				HighestRisk:  s.HighestRisk,
			})
		}
	}

	return batch, nil
}

// errStoreUnavailable reports snapshot operations requested while the
// manager runs without a store (the server starts in analysis-only mode when
// the database is down).
func errStoreUnavailable() error {
	return types.NewAppError(types.ErrCodeInternalDB, "snapshot store unavailable", nil)
}

// History returns the persisted analyses for one policy, newest first. An
// empty coverage spans all coverages. A zero limit falls back to the
// configured default.
func (m *Manager) History(ctx context.Context, policyNumber string, coverage types.CoverageType, latestOnly bool, limit int) ([]types.RiskSnapshot, error) {
	if m.repo == nil {
		return nil, errStoreUnavailable()
	}
	coverageCode := 0
	if coverage != "" {
		if !coverage.IsValid() {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidCoverage,
				fmt.Sprintf("unknown coverage type %q", coverage), nil)
		}
		coverageCode = coverage.Code()
	}
	if limit <= 0 {
		limit = m.cfg.HistoryDefaultLimit
	}
	return m.repo.History(ctx, policyNumber, coverageCode, latestOnly, limit)
}

// Ranking returns per-coverage aggregates over the configured lookback
// window, worst first. A limit of zero or less returns all coverages.
func (m *Manager) Ranking(ctx context.Context, limit int) ([]types.CoverageAggregate, error) {
	if m.repo == nil {
		return nil, errStoreUnavailable()
	}
	window := m.cfg.RankingWindow
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return m.repo.Ranking(ctx, m.clock.Now().Add(-window), limit)
}

// Stats summarizes the snapshot store.
func (m *Manager) Stats(ctx context.Context) (*types.SnapshotStats, error) {
	if m.repo == nil {
		return nil, errStoreUnavailable()
	}
	return m.repo.Stats(ctx)
}

// Purge removes every snapshot of a policy. Purging a policy with no
// snapshots is a not-found error.
func (m *Manager) Purge(ctx context.Context, policyNumber string) (int64, error) {
	if m.repo == nil {
		return 0, errStoreUnavailable()
	}
	deleted, err := m.repo.Purge(ctx, policyNumber)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundPolicy,
			fmt.Sprintf("no snapshots found for policy %s", policyNumber),
			nil,
			map[string]any{"policy_number": policyNumber},
		)
	}
	return deleted, nil
}
