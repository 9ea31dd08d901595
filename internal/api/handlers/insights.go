package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/charts"
	"github.com/adoptimizer/adoptimizer/internal/ml"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// InsightsHandler renders model-vs-actual charts from stored metrics.
type InsightsHandler struct {
	engine  *ml.Engine
	metrics repository.MetricsRepository
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(engine *ml.Engine, metrics repository.MetricsRepository) *InsightsHandler {
	return &InsightsHandler{engine: engine, metrics: metrics}
}

// CTRChart renders an HTML bar chart of current vs predicted CTR for the
// caller's campaigns.
func (h *InsightsHandler) CTRChart(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	days := 30
	if parsed, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && parsed > 0 {
		days = parsed
	}

	aggregates, err := h.metrics.CampaignAggregates(r.Context(), userID, days)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if len(aggregates) == 0 {
		response.NotFound(w, errors.New("no campaign metrics to chart"))
		return
	}

	data := make([]charts.CampaignCTR, 0, len(aggregates))
	for _, agg := range aggregates {
		result, err := h.engine.Predict(ml.PredictionRequest{
			Impressions:    agg.Impressions,
			Spend:          agg.Spend,
			CurrentCTR:     agg.CTR,
			CurrentCPC:     agg.CPC,
			EngagementRate: agg.EngagementRate,
		})
		if err != nil {
			// Campaigns with out-of-range aggregates are left off the chart.
			continue
		}
		data = append(data, charts.CampaignCTR{
			Campaign:     agg.CampaignName,
			CurrentCTR:   agg.CTR,
			PredictedCTR: result.PredictedCTR,
		})
	}
	if len(data) == 0 {
		response.NotFound(w, errors.New("no campaigns with valid metrics to chart"))
		return
	}

	config := charts.DefaultChartConfig()
	config.Title = "CTR Forecast by Campaign"
	config.Subtitle = "Current vs predicted click-through rate"

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderCTRComparison(data, config, w); err != nil {
		response.InternalError(w, err)
		return
	}
}
