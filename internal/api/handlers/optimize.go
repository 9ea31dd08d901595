package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/ml"
	"github.com/adoptimizer/adoptimizer/internal/storage/models"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// OptimizeHandler runs confidence-gated portfolio budget optimization.
type OptimizeHandler struct {
	engine  *ml.Engine
	metrics repository.MetricsRepository
	history repository.HistoryRepository
}

// NewOptimizeHandler creates a new OptimizeHandler.
func NewOptimizeHandler(engine *ml.Engine, metrics repository.MetricsRepository, history repository.HistoryRepository) *OptimizeHandler {
	return &OptimizeHandler{engine: engine, metrics: metrics, history: history}
}

type optimizeRequest struct {
	Threshold  *float64               `json:"confidence_threshold"`
	Days       int                    `json:"days"`
	Candidates []ml.CampaignCandidate `json:"campaigns"`
}

const defaultConfidenceThreshold = 0.7

// Optimize evaluates each campaign and returns budget actions for those the
// model is confident about. Campaigns may be supplied in the request body;
// when omitted, the caller's stored metrics are rolled up into candidates.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, errors.New("invalid JSON body"))
			return
		}
	}

	threshold := defaultConfidenceThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
		// Accept percent form, e.g. 75 means 0.75.
		if threshold > 1 && threshold <= 100 {
			threshold /= 100
		}
	}

	candidates := req.Candidates
	if len(candidates) == 0 {
		var err error
		candidates, err = h.candidatesFromMetrics(r, req.Days)
		if err != nil {
			response.InternalError(w, err)
			return
		}
	}

	actions, err := h.engine.Optimize(candidates, threshold)
	if err != nil {
		var terr *ml.InvalidThresholdError
		if errors.As(err, &terr) {
			response.UnprocessableEntity(w, terr.Error(), []string{"confidence_threshold"})
			return
		}
		response.InternalError(w, err)
		return
	}
	if actions == nil {
		actions = []ml.OptimizationAction{}
	}

	h.saveHistory(r, actions)

	response.Success(w, map[string]interface{}{
		"confidence_threshold": threshold,
		"evaluated":            len(candidates),
		"actions":              actions,
	})
}

// candidatesFromMetrics builds optimization candidates from the user's
// per-campaign aggregates.
func (h *OptimizeHandler) candidatesFromMetrics(r *http.Request, days int) ([]ml.CampaignCandidate, error) {
	userID := auth.UserIDFromContext(r.Context())
	if days <= 0 {
		if parsed, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil {
			days = parsed
		}
	}

	aggregates, err := h.metrics.CampaignAggregates(r.Context(), userID, days)
	if err != nil {
		return nil, err
	}

	candidates := make([]ml.CampaignCandidate, 0, len(aggregates))
	for _, agg := range aggregates {
		candidates = append(candidates, ml.CampaignCandidate{
			Name:           agg.CampaignName,
			Impressions:    agg.Impressions,
			Spend:          agg.Spend,
			CurrentCTR:     agg.CTR,
			CurrentCPC:     agg.CPC,
			EngagementRate: agg.EngagementRate,
		})
	}
	return candidates, nil
}

// saveHistory records accepted actions without blocking the response.
func (h *OptimizeHandler) saveHistory(r *http.Request, actions []ml.OptimizationAction) {
	if h.history == nil || len(actions) == 0 {
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		return
	}

	records := make([]*models.OptimizationActionRecord, 0, len(actions))
	for _, action := range actions {
		records = append(records, &models.OptimizationActionRecord{
			UserID:       userID,
			Campaign:     action.Campaign,
			Action:       action.Action,
			Confidence:   action.Confidence,
			PredictedCTR: action.PredictedCTR,
			PredictedCPC: action.PredictedCPC,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, record := range records {
			if err := h.history.SaveOptimization(ctx, record); err != nil {
				log.Printf("failed to save optimization history: %v", err)
			}
			rec := &models.Recommendation{
				UserID:             record.UserID,
				CampaignName:       record.Campaign,
				RecommendationText: record.Action,
				ConfidenceScore:    record.Confidence,
			}
			if err := h.history.SaveRecommendation(ctx, rec); err != nil {
				log.Printf("failed to save recommendation: %v", err)
			}
		}
	}()
}
