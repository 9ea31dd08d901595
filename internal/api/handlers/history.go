package handlers

import (
	"net/http"
	"strconv"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/storage/models"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// HistoryHandler serves stored predictions, optimizer actions and
// recommendations.
type HistoryHandler struct {
	history repository.HistoryRepository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Predictions returns the caller's recent predictions.
func (h *HistoryHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	records, err := h.history.ListPredictions(r.Context(), userID, queryLimit(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if records == nil {
		records = []*models.PredictionRecord{}
	}
	response.Success(w, records)
}

// Optimizations returns the caller's recent optimizer actions.
func (h *HistoryHandler) Optimizations(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	records, err := h.history.ListOptimizations(r.Context(), userID, queryLimit(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if records == nil {
		records = []*models.OptimizationActionRecord{}
	}
	response.Success(w, records)
}

// Recommendations returns the caller's recent stored recommendations.
func (h *HistoryHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	recs, err := h.history.ListRecommendations(r.Context(), userID, queryLimit(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if recs == nil {
		recs = []*models.Recommendation{}
	}
	response.Success(w, recs)
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 50
	}
	return limit
}
