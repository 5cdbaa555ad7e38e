package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskradar/internal/config"
	"riskradar/internal/observability"
	"riskradar/internal/types"
)

// mockClock returns a fixed time for deterministic analyses.
type mockClock struct {
	now time.Time
}

func (m mockClock) Now() time.Time { return m.now }

// mockSupplier records the coordinates it was asked for and serves a fixed
// reading stamped with the analysis time.
type mockSupplier struct {
	reading types.WeatherReading
	lastLat float64
	lastLon float64
}

func (m *mockSupplier) Current(_ context.Context, lat, lon float64) types.WeatherReading {
	m.lastLat, m.lastLon = lat, lon
	r := m.reading
	r.Latitude = lat
	r.Longitude = lon
	return r
}

// mockRepo implements types.SnapshotRepository with canned behavior.
type mockRepo struct {
	saved       []*types.RiskSnapshot
	saveErr     error
	history     []types.RiskSnapshot
	ranking     []types.CoverageAggregate
	stats       *types.SnapshotStats
	purgedCount int64
	purgeErr    error
}

func (m *mockRepo) Save(_ context.Context, snap *types.RiskSnapshot) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, snap)
	return int64(len(m.saved)), nil
}

func (m *mockRepo) SaveMany(_ context.Context, snaps []*types.RiskSnapshot) ([]int64, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	ids := make([]int64, 0, len(snaps))
	for _, s := range snaps {
		m.saved = append(m.saved, s)
		ids = append(ids, int64(len(m.saved)))
	}
	return ids, nil
}

func (m *mockRepo) History(_ context.Context, _ string, _ int, _ bool, _ int) ([]types.RiskSnapshot, error) {
	return m.history, nil
}

func (m *mockRepo) Ranking(_ context.Context, _ time.Time, _ int) ([]types.CoverageAggregate, error) {
	return m.ranking, nil
}

func (m *mockRepo) Stats(_ context.Context) (*types.SnapshotStats, error) {
	return m.stats, nil
}

func (m *mockRepo) Purge(_ context.Context, _ string) (int64, error) {
	return m.purgedCount, m.purgeErr
}

// panicModel simulates a broken coverage model.
type panicModel struct {
	coverage types.CoverageType
}

func (p panicModel) Coverage() types.CoverageType { return p.coverage }
func (p panicModel) Score(types.PropertyFeatures, types.WeatherReading) (float64, []types.RiskFactor) {
	panic("model blew up")
}
func (p panicModel) SeasonalFactor(time.Month) float64 { return 1.0 }
func (p panicModel) Recommendations(types.RiskLevel, []types.RiskFactor) []string {
	panic("model blew up")
}

// fixedModel returns a preset heuristic probability.
type fixedModel struct {
	coverage types.CoverageType
	score    float64
}

func (f fixedModel) Coverage() types.CoverageType { return f.coverage }
func (f fixedModel) Score(types.PropertyFeatures, types.WeatherReading) (float64, []types.RiskFactor) {
	return f.score, []types.RiskFactor{{Feature: FeatWindSpeed, Value: 10, Importance: 0.5}}
}
func (f fixedModel) SeasonalFactor(time.Month) float64 { return 1.0 }
func (f fixedModel) Recommendations(level types.RiskLevel, _ []types.RiskFactor) []string {
	if level == types.RiskLevelHigh || level == types.RiskLevelMedium {
		return []string{"review the policy"}
	}
	return nil
}

// fixedClassifier returns a preset probability.
type fixedClassifier struct {
	proba float64
	err   error
}

func (f fixedClassifier) PredictProba(types.PropertyFeatures, types.WeatherReading) (float64, error) {
	return f.proba, f.err
}
func (f fixedClassifier) Name() string    { return "test_lr" }
func (f fixedClassifier) Version() string { return "9.9" }

func analysisTime() time.Time {
	return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		MaxBatchSize:        100,
		BatchConcurrency:    4,
		HighRiskThreshold:   70,
		HistoryDefaultLimit: 50,
		RankingWindow:       720 * time.Hour,
	}
}

func testPolicy() types.PolicyInput {
	lat, lon := -23.55, -46.63
	return types.PolicyInput{
		PolicyNumber: "POL-2026-0001",
		PropertyType: types.PropertyHouse,
		InsuredValue: 250_000,
		PostalCode:   "01310-100",
		Latitude:     &lat,
		Longitude:    &lon,
	}
}

func newTestManager(repo types.SnapshotRepository, opts ...ManagerOption) (*Manager, *mockSupplier) {
	supplier := &mockSupplier{reading: calmWeather(analysisTime())}
	m := NewManager(
		testScoringConfig(),
		supplier,
		repo,
		nil,
		observability.NewMetricsForTesting(),
		nil,
		mockClock{now: analysisTime()},
		opts...,
	)
	return m, supplier
}

func TestStoreOperationsWithoutRepository(t *testing.T) {
	m, _ := newTestManager(nil)
	ctx := context.Background()

	_, err := m.History(ctx, "POL-1", "", false, 0)
	require.Error(t, err)

	_, err = m.Ranking(ctx, 0)
	require.Error(t, err)

	_, err = m.Stats(ctx)
	require.Error(t, err)

	_, err = m.Purge(ctx, "POL-1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestAnalyze_AllCoveragesByDefault(t *testing.T) {
	m, _ := newTestManager(nil)

	summary, err := m.Analyze(context.Background(), testPolicy(), nil, false)
	require.NoError(t, err)

	assert.Len(t, summary.Results, 4)
	assert.Equal(t, 4, summary.CoveragesAnalyzed)
	assert.Equal(t, "POL-2026-0001", summary.PolicyNumber)
	assert.Equal(t, analysisTime(), summary.AnalyzedAt)
	assert.Nil(t, summary.Persistence, "persist=false must not touch the repo")

	seen := map[types.CoverageType]bool{}
	for _, r := range summary.Results {
		seen[r.Coverage] = true
		assert.GreaterOrEqual(t, r.RiskScore, 0.0)
		assert.LessOrEqual(t, r.RiskScore, 100.0)
		assert.Equal(t, r.Coverage.Code(), r.CoverageCode)
		assert.Empty(t, r.Error)
	}
	assert.Len(t, seen, 4)
}

func TestAnalyze_Deterministic(t *testing.T) {
	m, _ := newTestManager(nil)

	a, err := m.Analyze(context.Background(), testPolicy(), nil, false)
	require.NoError(t, err)
	b, err := m.Analyze(context.Background(), testPolicy(), nil, false)
	require.NoError(t, err)

	assert.Equal(t, a.AverageScore, b.AverageScore)
	assert.Equal(t, a.OverallRiskLevel, b.OverallRiskLevel)
	for i := range a.Results {
		assert.Equal(t, a.Results[i].RiskScore, b.Results[i].RiskScore)
		assert.Equal(t, a.Results[i].MainFactors, b.Results[i].MainFactors)
	}
}

func TestAnalyze_UnknownCoverageRejected(t *testing.T) {
	m, _ := newTestManager(nil)

	_, err := m.Analyze(context.Background(), testPolicy(), []types.CoverageType{"earthquake"}, false)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidCoverage, appErr.Code)
}

func TestAnalyze_MissingCoordinatesUseFallbackCenter(t *testing.T) {
	m, supplier := newTestManager(nil)

	policy := testPolicy()
	policy.Latitude = nil
	policy.Longitude = nil

	_, err := m.Analyze(context.Background(), policy, nil, false)
	require.NoError(t, err)

	assert.Equal(t, types.DefaultLatitude, supplier.lastLat)
	assert.Equal(t, types.DefaultLongitude, supplier.lastLon)
}

func TestAnalyze_BrokenModelYieldsFallbackEntry(t *testing.T) {
	m, _ := newTestManager(nil, WithCoverageModel(panicModel{coverage: types.CoverageHail}))

	summary, err := m.Analyze(context.Background(), testPolicy(), nil, false)
	require.NoError(t, err, "one broken coverage must not fail the analysis")
	require.Len(t, summary.Results, 4)

	var hail *types.CoverageRiskResult
	cleanCount := 0
	for i := range summary.Results {
		if summary.Results[i].Coverage == types.CoverageHail {
			hail = &summary.Results[i]
		} else if summary.Results[i].Error == "" {
			cleanCount++
		}
	}

	require.NotNil(t, hail)
	assert.NotEmpty(t, hail.Error)
	assert.Equal(t, 50.0, hail.RiskScore)
	assert.Equal(t, types.RiskLevelMedium, hail.RiskLevel)
	assert.Equal(t, 3, cleanCount)
	assert.Equal(t, 3, summary.CoveragesAnalyzed)
}

func TestAnalyze_ClassifierBlending(t *testing.T) {
	supplier := &mockSupplier{reading: calmWeather(analysisTime())}
	m := NewManager(
		testScoringConfig(),
		supplier,
		nil,
		map[types.CoverageType]Classifier{
			types.CoverageWindstorm: fixedClassifier{proba: 1.0},
		},
		observability.NewMetricsForTesting(),
		nil,
		mockClock{now: analysisTime()},
		WithCoverageModel(fixedModel{coverage: types.CoverageWindstorm, score: 0.4}),
	)

	summary, err := m.Analyze(context.Background(), testPolicy(), []types.CoverageType{types.CoverageWindstorm}, false)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	r := summary.Results[0]
	require.NotNil(t, r.ModelPrediction)
	assert.Equal(t, 1.0, *r.ModelPrediction)
	assert.InDelta(t, 0.7, r.Probability, 1e-9, "blend is the even split of 1.0 and 0.4")
	assert.InDelta(t, 70.0, r.RiskScore, 1e-9)
	assert.Equal(t, "test_lr", r.ModelName)
	assert.Equal(t, "9.9", r.ModelVersion)
	assert.InDelta(t, 0.4, r.HeuristicScore, 1e-9)
	assert.Equal(t, []string{"review the policy"}, r.Recommendations)
	assert.Equal(t, []string{"review the policy"}, summary.Recommendations)
}

func TestAnalyze_ClassifierErrorFallsBackToHeuristic(t *testing.T) {
	supplier := &mockSupplier{reading: calmWeather(analysisTime())}
	m := NewManager(
		testScoringConfig(),
		supplier,
		nil,
		map[types.CoverageType]Classifier{
			types.CoverageWindstorm: fixedClassifier{err: errors.New("model corrupted")},
		},
		observability.NewMetricsForTesting(),
		nil,
		mockClock{now: analysisTime()},
		WithCoverageModel(fixedModel{coverage: types.CoverageWindstorm, score: 0.4}),
	)

	summary, err := m.Analyze(context.Background(), testPolicy(), []types.CoverageType{types.CoverageWindstorm}, false)
	require.NoError(t, err)

	r := summary.Results[0]
	assert.Nil(t, r.ModelPrediction)
	assert.InDelta(t, 0.4, r.Probability, 1e-9)
	assert.Equal(t, heuristicVersion, r.ModelVersion)
	assert.Empty(t, r.Error)
}

func TestAnalyze_SeasonalAdjustmentCapped(t *testing.T) {
	// January flooding factor is 1.5; a 0.9 heuristic would adjust past 100.
	m, _ := newTestManager(nil, WithCoverageModel(fixedModelWithSeason{
		fixedModel: fixedModel{coverage: types.CoverageFlooding, score: 0.9},
		factor:     1.5,
	}))

	summary, err := m.Analyze(context.Background(), testPolicy(), []types.CoverageType{types.CoverageFlooding}, false)
	require.NoError(t, err)

	r := summary.Results[0]
	assert.InDelta(t, 90.0, r.RiskScore, 1e-9)
	assert.Equal(t, 1.5, r.SeasonalFactor)
	assert.Equal(t, 100.0, r.AdjustedScore)
	assert.Equal(t, types.RiskLevelHigh, r.AdjustedLevel)
}

type fixedModelWithSeason struct {
	fixedModel
	factor float64
}

func (f fixedModelWithSeason) SeasonalFactor(time.Month) float64 { return f.factor }

func TestAnalyze_PersistsSuccessfulResults(t *testing.T) {
	repo := &mockRepo{}
	m, _ := newTestManager(repo, WithCoverageModel(panicModel{coverage: types.CoverageHail}))

	summary, err := m.Analyze(context.Background(), testPolicy(), nil, true)
	require.NoError(t, err)

	require.NotNil(t, summary.Persistence)
	assert.True(t, summary.Persistence.Saved)
	assert.Equal(t, 3, summary.Persistence.RecordsSaved, "fallback entries are not persisted")
	assert.Len(t, summary.Persistence.RecordIDs, 3)
	require.Len(t, repo.saved, 3)

	snap := repo.saved[0]
	assert.Equal(t, "POL-2026-0001", snap.PolicyNumber)
	assert.Equal(t, analysisTime(), snap.CalculatedAt)
	factorList, ok := snap.Factors["main_factors"].(types.RiskFactorList)
	require.True(t, ok, "factor blob must carry the typed factor list")
	assert.NotEmpty(t, factorList)
	assert.NotEmpty(t, snap.WeatherData)
	assert.NotEmpty(t, snap.PropertyData)
	assert.NotEmpty(t, snap.PredictionData)
	assert.Equal(t, 0.8, snap.Confidence)
}

func TestAnalyze_PersistenceFailureDegrades(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("connection refused")}
	m, _ := newTestManager(repo)

	summary, err := m.Analyze(context.Background(), testPolicy(), nil, true)
	require.NoError(t, err, "a failed write must not fail the analysis")

	require.NotNil(t, summary.Persistence)
	assert.False(t, summary.Persistence.Saved)
	assert.Contains(t, summary.Persistence.Error, "connection refused")
}

func TestBatchAnalyze_SizeLimit(t *testing.T) {
	m, _ := newTestManager(nil)

	policies := make([]types.PolicyInput, 101)
	for i := range policies {
		policies[i] = testPolicy()
	}

	_, err := m.BatchAnalyze(context.Background(), policies, false)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationBatchSize, appErr.Code)
}

func TestBatchAnalyze_EmptyBatchRejected(t *testing.T) {
	m, _ := newTestManager(nil)

	_, err := m.BatchAnalyze(context.Background(), nil, false)
	assert.Error(t, err)
}

func TestBatchAnalyze_CollectsPerPolicyFailures(t *testing.T) {
	m, _ := newTestManager(nil)

	good := testPolicy()
	bad := testPolicy()
	bad.PolicyNumber = "POL-BAD"

	batch, err := m.BatchAnalyze(context.Background(), []types.PolicyInput{good, bad}, false)
	require.NoError(t, err)

	// Both analyses succeed here; failure collection is exercised through
	// Analyze's own validation path in handler tests. The batch must carry
	// every summary and aggregate them.
	assert.Equal(t, 2, batch.TotalPolicies)
	assert.Len(t, batch.Summaries, 2)
	assert.Empty(t, batch.Errors)
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, 8, batch.Portfolio.TotalAnalyses)
	assert.Len(t, batch.Portfolio.CoverageBreakdown, 4)
}

func TestBatchAnalyze_FlagsHighRiskPolicies(t *testing.T) {
	// All four coverages scoring 0.9 puts the average at 90.
	opts := make([]ManagerOption, 0, 4)
	for _, c := range types.AllCoverages() {
		opts = append(opts, WithCoverageModel(fixedModel{coverage: c, score: 0.9}))
	}
	m, _ := newTestManager(nil, opts...)

	batch, err := m.BatchAnalyze(context.Background(), []types.PolicyInput{testPolicy()}, false)
	require.NoError(t, err)

	require.Len(t, batch.HighRiskPolicies, 1)
	assert.Equal(t, "POL-2026-0001", batch.HighRiskPolicies[0].PolicyNumber)
	assert.InDelta(t, 90.0, batch.HighRiskPolicies[0].AverageScore, 1e-9)
}

func TestHistory_InvalidCoverage(t *testing.T) {
	m, _ := newTestManager(&mockRepo{})

	_, err := m.History(context.Background(), "POL-1", "earthquake", false, 10)
	require.Error(t, err)
}

func TestPurge_NoRowsIsNotFound(t *testing.T) {
	m, _ := newTestManager(&mockRepo{purgedCount: 0})

	_, err := m.Purge(context.Background(), "POL-MISSING")
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundPolicy, appErr.Code)
}

func TestPurge_ReturnsDeletedCount(t *testing.T) {
	m, _ := newTestManager(&mockRepo{purgedCount: 8})

	deleted, err := m.Purge(context.Background(), "POL-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), deleted)
}
