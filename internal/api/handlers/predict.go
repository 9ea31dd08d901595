package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/ml"
	"github.com/adoptimizer/adoptimizer/internal/storage/models"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// PredictHandler serves single-campaign performance predictions.
type PredictHandler struct {
	engine  *ml.Engine
	history repository.HistoryRepository
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(engine *ml.Engine, history repository.HistoryRepository) *PredictHandler {
	return &PredictHandler{engine: engine, history: history}
}

// predictRequest uses pointer fields so absent keys can be told apart from
// zero values when reporting missing fields.
type predictRequest struct {
	Impressions    *int     `json:"impressions"`
	Spend          *float64 `json:"spend"`
	CurrentCTR     *float64 `json:"current_CTR"`
	CurrentCPC     *float64 `json:"current_CPC"`
	EngagementRate *float64 `json:"engagement_rate"`
}

func (p predictRequest) missingFields() []string {
	var missing []string
	if p.Impressions == nil {
		missing = append(missing, "impressions")
	}
	if p.Spend == nil {
		missing = append(missing, "spend")
	}
	if p.CurrentCTR == nil {
		missing = append(missing, "current_CTR")
	}
	if p.CurrentCPC == nil {
		missing = append(missing, "current_CPC")
	}
	if p.EngagementRate == nil {
		missing = append(missing, "engagement_rate")
	}
	return missing
}

// Predict runs the model on one campaign's current metrics.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid JSON body"))
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		response.UnprocessableEntity(w, "Missing required fields: "+strings.Join(missing, ", "), missing)
		return
	}

	result, err := h.engine.Predict(ml.PredictionRequest{
		Impressions:    *req.Impressions,
		Spend:          *req.Spend,
		CurrentCTR:     *req.CurrentCTR,
		CurrentCPC:     *req.CurrentCPC,
		EngagementRate: *req.EngagementRate,
	})
	if err != nil {
		var verr *ml.ValidationError
		if errors.As(err, &verr) {
			response.UnprocessableEntity(w, verr.Error(), verr.Fields)
			return
		}
		response.InternalError(w, err)
		return
	}

	h.saveHistory(r, &req, result)
	response.Success(w, result)
}

// saveHistory records the prediction without blocking the response.
func (h *PredictHandler) saveHistory(r *http.Request, req *predictRequest, result *ml.PredictionResult) {
	if h.history == nil {
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		return
	}

	input, _ := json.Marshal(req)
	output, _ := json.Marshal(result)
	record := &models.PredictionRecord{
		UserID:     userID,
		InputJSON:  string(input),
		ResultJSON: string(output),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.history.SavePrediction(ctx, record); err != nil {
			log.Printf("failed to save prediction history: %v", err)
		}
	}()
}
