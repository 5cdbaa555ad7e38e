package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"riskradar/internal/types"
)

// SnapshotRepository provides data access for the risk_snapshots table.
// Rows are append-only: every analysis writes a new snapshot and history is
// reconstructed by ordering on calculated_at.
type SnapshotRepository struct {
	db DBTX
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given
// database connection (pool or transaction).
func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// snapColumns is the standard column set for snapshot queries. Scan order in
// scanSnapshot must match.
const snapColumns = `s.id, s.policy_number, s.coverage_code,
	s.risk_score, s.risk_level, s.probability,
	s.model_name, s.model_version, s.confidence,
	s.factors, s.weather_data, s.property_data, s.prediction_data,
	s.processing_ms, s.calculated_at`

// highRiskScore is the score at or above which a snapshot counts as high risk
// in ranking and stats aggregates. Matches the top classification band.
const highRiskScore = 70

func scanSnapshot(rows pgx.Rows) (types.RiskSnapshot, error) {
	var snap types.RiskSnapshot
	err := rows.Scan(
		&snap.ID,
		&snap.PolicyNumber,
		&snap.CoverageCode,
		&snap.RiskScore,
		&snap.RiskLevel,
		&snap.Probability,
		&snap.ModelName,
		&snap.ModelVersion,
		&snap.Confidence,
		&snap.Factors,
		&snap.WeatherData,
		&snap.PropertyData,
		&snap.PredictionData,
		&snap.ProcessingMS,
		&snap.CalculatedAt,
	)
	return snap, err
}

// Save inserts a single snapshot and returns the generated row ID.
func (r *SnapshotRepository) Save(ctx context.Context, snap *types.RiskSnapshot) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO risk_snapshots (
			policy_number, coverage_code,
			risk_score, risk_level, probability,
			model_name, model_version, confidence,
			factors, weather_data, property_data, prediction_data,
			processing_ms, calculated_at
		) VALUES (
			$1, $2,
			$3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, COALESCE($14, NOW())
		) RETURNING id`,
		snap.PolicyNumber,
		snap.CoverageCode,
		snap.RiskScore,
		snap.RiskLevel,
		snap.Probability,
		snap.ModelName,
		snap.ModelVersion,
		snap.Confidence,
		snap.Factors,
		snap.WeatherData,
		snap.PropertyData,
		snap.PredictionData,
		snap.ProcessingMS,
		nilIfZeroTime(snap.CalculatedAt),
	).Scan(&id)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to save risk snapshot", err)
	}
	snap.ID = id
	return id, nil
}

// SaveMany inserts all snapshots in a single atomic multi-row INSERT and
// returns the generated IDs in input order. Either every row is written or
// none are.
func (r *SnapshotRepository) SaveMany(ctx context.Context, snaps []*types.RiskSnapshot) ([]int64, error) {
	if len(snaps) == 0 {
		return nil, nil
	}

	const colCount = 14
	var sb strings.Builder
	sb.WriteString(`INSERT INTO risk_snapshots (
		policy_number, coverage_code,
		risk_score, risk_level, probability,
		model_name, model_version, confidence,
		factors, weather_data, property_data, prediction_data,
		processing_ms, calculated_at
	) VALUES `)

	args := make([]any, 0, len(snaps)*colCount)
	for i, snap := range snaps {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * colCount
		sb.WriteString("(")
		for j := 0; j < colCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			if j == colCount-1 { // calculated_at
				sb.WriteString(fmt.Sprintf("COALESCE($%d, NOW())", base+j+1))
			} else {
				sb.WriteString(fmt.Sprintf("$%d", base+j+1))
			}
		}
		sb.WriteString(")")

		args = append(args,
			snap.PolicyNumber,
			snap.CoverageCode,
			snap.RiskScore,
			snap.RiskLevel,
			snap.Probability,
			snap.ModelName,
			snap.ModelVersion,
			snap.Confidence,
			snap.Factors,
			snap.WeatherData,
			snap.PropertyData,
			snap.PredictionData,
			snap.ProcessingMS,
			nilIfZeroTime(snap.CalculatedAt),
		)
	}
	sb.WriteString(" RETURNING id")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save risk snapshots", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, len(snaps))
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan snapshot id", scanErr)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating snapshot ids", err)
	}

	for i, id := range ids {
		if i < len(snaps) {
			snaps[i].ID = id
		}
	}
	return ids, nil
}

// History retrieves snapshots for a policy, newest first. A coverageCode > 0
// narrows to one coverage. With latestOnly set, only the most recent snapshot
// per coverage is returned. An unknown policy yields an empty slice, not an
// error.
func (r *SnapshotRepository) History(ctx context.Context, policyNumber string, coverageCode int, latestOnly bool, limit int) ([]types.RiskSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("s.policy_number = $%d", argIdx))
	args = append(args, policyNumber)
	argIdx++

	if coverageCode > 0 {
		conditions = append(conditions, fmt.Sprintf("s.coverage_code = $%d", argIdx))
		args = append(args, coverageCode)
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var query string
	if latestOnly {
		// One row per coverage: DISTINCT ON keeps the newest snapshot of each.
		query = fmt.Sprintf(
			`SELECT * FROM (
				SELECT DISTINCT ON (s.coverage_code) %s
				FROM risk_snapshots s
				%s
				ORDER BY s.coverage_code, s.calculated_at DESC
			 ) latest
			 ORDER BY latest.calculated_at DESC
			 LIMIT $%d`,
			snapColumns, whereClause, argIdx,
		)
	} else {
		query = fmt.Sprintf(
			`SELECT %s
			 FROM risk_snapshots s
			 %s
			 ORDER BY s.calculated_at DESC, s.id DESC
			 LIMIT $%d`,
			snapColumns, whereClause, argIdx,
		)
	}
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query snapshot history", err)
	}
	defer rows.Close()

	results := []types.RiskSnapshot{}
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan snapshot row", scanErr)
		}
		results = append(results, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating snapshot rows", err)
	}

	return results, nil
}

// Ranking aggregates snapshots newer than the given time per coverage,
// ordered by average score descending. A limit of zero or less returns all
// coverages.
func (r *SnapshotRepository) Ranking(ctx context.Context, since time.Time, limit int) ([]types.CoverageAggregate, error) {
	if limit <= 0 {
		limit = len(types.AllCoverages())
	}
	rows, err := r.db.Query(ctx,
		`SELECT coverage_code,
			COUNT(*) AS analysis_count,
			AVG(risk_score) AS avg_score,
			MAX(risk_score) AS max_score,
			MIN(risk_score) AS min_score,
			COUNT(*) FILTER (WHERE risk_score >= $1) AS high_risk_count,
			MAX(calculated_at) AS last_calculated_at
		 FROM risk_snapshots
		 WHERE calculated_at >= $2
		 GROUP BY coverage_code
		 ORDER BY avg_score DESC
		 LIMIT $3`,
		highRiskScore, since, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query coverage ranking", err)
	}
	defer rows.Close()

	results := []types.CoverageAggregate{}
	for rows.Next() {
		var agg types.CoverageAggregate
		if scanErr := rows.Scan(
			&agg.CoverageCode,
			&agg.AnalysisCount,
			&agg.AvgScore,
			&agg.MaxScore,
			&agg.MinScore,
			&agg.HighRiskCount,
			&agg.LastCalculatedAt,
		); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan ranking row", scanErr)
		}
		// The schema constrains codes to the known range; an out-of-range
		// value leaves Coverage empty rather than failing the ranking.
		if coverage, cErr := types.CoverageFromCode(agg.CoverageCode); cErr == nil {
			agg.Coverage = coverage
		}
		results = append(results, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating ranking rows", err)
	}

	return results, nil
}

// Stats summarizes the whole snapshot store. An empty table produces zeroed
// stats rather than an error.
func (r *SnapshotRepository) Stats(ctx context.Context) (*types.SnapshotStats, error) {
	var stats types.SnapshotStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(DISTINCT policy_number),
			COUNT(DISTINCT coverage_code),
			COALESCE(AVG(risk_score), 0),
			COALESCE(MAX(risk_score), 0),
			COALESCE(MIN(risk_score), 0),
			COUNT(*) FILTER (WHERE risk_score >= $1),
			COALESCE(AVG(processing_ms), 0)
		 FROM risk_snapshots`,
		highRiskScore,
	).Scan(
		&stats.TotalAnalyses,
		&stats.TotalPolicies,
		&stats.TotalCoverages,
		&stats.AvgScore,
		&stats.MaxScore,
		&stats.MinScore,
		&stats.HighRiskCount,
		&stats.AvgProcessingMS,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query snapshot stats", err)
	}
	return &stats, nil
}

// Purge deletes every snapshot of a policy and returns the number of rows
// removed. Zero is not an error here; callers decide whether an empty purge
// means not found.
func (r *SnapshotRepository) Purge(ctx context.Context, policyNumber string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM risk_snapshots WHERE policy_number = $1`,
		policyNumber,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to purge policy snapshots", err)
	}
	return tag.RowsAffected(), nil
}

// nilIfZeroTime maps the zero time to nil so COALESCE in the INSERT falls
// back to NOW().
func nilIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
