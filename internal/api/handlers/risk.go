// Package handlers contains the HTTP handler implementations for the risk
// scoring API. It covers:
//   - Single-policy analysis (POST /v1/risk/analyze)
//   - Batch analysis (POST /v1/risk/batch)
//   - Coverage ranking (GET /v1/risk/ranking)
//   - Store statistics (GET /v1/risk/stats)
//   - Snapshot history (GET /v1/policies/{policyNumber}/coverages/history)
//   - Policy purge (DELETE /v1/policies/{policyNumber}/risk)
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"riskradar/internal/core"
	"riskradar/internal/types"
)

// RiskManager defines the service contract for the risk handler. Matches the
// scoring.Manager surface but is defined locally to avoid tight coupling.
type RiskManager interface {
	Analyze(ctx context.Context, policy types.PolicyInput, coverages []types.CoverageType, persist bool) (*types.PolicySummary, error)
	BatchAnalyze(ctx context.Context, policies []types.PolicyInput, persist bool) (*types.BatchAnalysis, error)
	History(ctx context.Context, policyNumber string, coverage types.CoverageType, latestOnly bool, limit int) ([]types.RiskSnapshot, error)
	Ranking(ctx context.Context, limit int) ([]types.CoverageAggregate, error)
	Stats(ctx context.Context) (*types.SnapshotStats, error)
	Purge(ctx context.Context, policyNumber string) (int64, error)
}

// AnalyzeRequest is the request body for POST /v1/risk/analyze. An empty
// coverages list means all four.
type AnalyzeRequest struct {
	Policy      types.PolicyInput    `json:"policy"`
	Coverages   []types.CoverageType `json:"coverages,omitempty"`
	SaveHistory bool                 `json:"save_history"`
}

// BatchRequest is the request body for POST /v1/risk/batch.
type BatchRequest struct {
	Policies    []types.PolicyInput `json:"policies"`
	SaveHistory bool                `json:"save_history"`
}

// PurgeResponse reports the outcome of a policy snapshot purge.
type PurgeResponse struct {
	PolicyNumber string `json:"policy_number"`
	Deleted      int64  `json:"deleted"`
}

// RiskHandler maps HTTP requests to RiskManager methods.
type RiskHandler struct {
	manager   RiskManager
	validator *core.Validator
	logger    *slog.Logger
}

// NewRiskHandler creates a RiskHandler with the provided dependencies.
func NewRiskHandler(manager RiskManager, val *core.Validator, logger *slog.Logger) *RiskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskHandler{
		manager:   manager,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the risk endpoints onto the v1 router group.
func (h *RiskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Post("/batch", h.HandleBatch)
		r.Get("/ranking", h.HandleRanking)
		r.Get("/stats", h.HandleStats)
	})
	r.Route("/policies/{policyNumber}", func(r chi.Router) {
		r.Get("/coverages/history", h.HandleHistory)
		r.Delete("/risk", h.HandlePurge)
	})
}

// HandleAnalyze handles POST /v1/risk/analyze:
//  1. Decode and validate the policy payload.
//  2. Run the analysis for the requested coverages.
//  3. Return the policy summary.
func (h *RiskHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req.Policy); err != nil {
		core.Error(w, r, err)
		return
	}

	summary, err := h.manager.Analyze(r.Context(), req.Policy, req.Coverages, req.SaveHistory)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: summary})
}

// HandleBatch handles POST /v1/risk/batch. The whole batch is validated up
// front; any malformed policy rejects the request with per-index details.
// Scoring failures inside a valid batch do not: those surface per policy in
// the response's errors map.
func (h *RiskHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	invalid := map[string]any{}
	for i, policy := range req.Policies {
		if err := h.validator.ValidateStruct(policy); err != nil {
			invalid[fmt.Sprintf("policy_%d", i)] = err.Error()
		}
	}
	if len(invalid) > 0 {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidPolicy,
			"batch contains invalid policies",
			nil,
			invalid,
		))
		return
	}

	batch, err := h.manager.BatchAnalyze(r.Context(), req.Policies, req.SaveHistory)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: batch})
}

// HandleHistory handles GET /v1/policies/{policyNumber}/coverages/history.
// Query params: coverage (optional, all when absent), latest_only (optional
// bool), limit (optional, capped by the manager's default when absent).
func (h *RiskHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	policyNumber := chi.URLParam(r, "policyNumber")
	q := r.URL.Query()

	coverage := types.CoverageType(q.Get("coverage"))

	latestOnly := false
	if v := q.Get("latest_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidParam,
				"latest_only must be a boolean",
				nil,
			))
			return
		}
		latestOnly = parsed
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidParam,
				"limit must be a non-negative integer",
				nil,
			))
			return
		}
		limit = parsed
	}

	snapshots, err := h.manager.History(r.Context(), policyNumber, coverage, latestOnly, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: snapshots})
}

// HandleRanking handles GET /v1/risk/ranking. Returns per-coverage aggregates
// over the configured lookback window, worst first. An optional limit query
// param truncates the ranking.
func (h *RiskHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidParam,
				"limit must be a non-negative integer",
				nil,
			))
			return
		}
		limit = parsed
	}

	ranking, err := h.manager.Ranking(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ranking})
}

// HandleStats handles GET /v1/risk/stats.
func (h *RiskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.Stats(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: stats})
}

// HandlePurge handles DELETE /v1/policies/{policyNumber}/risk. Purging a
// policy with no snapshots is a 404.
func (h *RiskHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	policyNumber := chi.URLParam(r, "policyNumber")

	deleted, err := h.manager.Purge(r.Context(), policyNumber)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: PurgeResponse{
		PolicyNumber: policyNumber,
		Deleted:      deleted,
	}})
}
