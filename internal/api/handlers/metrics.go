package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/storage/models"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// MetricsHandler manages campaign metrics endpoints.
type MetricsHandler struct {
	metrics repository.MetricsRepository
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics repository.MetricsRepository) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

type insertMetricRequest struct {
	Date         string  `json:"date"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	Spend        float64 `json:"spend"`
	Conversions  int     `json:"conversions"`
	Platform     string  `json:"platform"`
	CampaignName string  `json:"campaign_name"`
}

// Insert stores one day of campaign metrics for the authenticated user.
func (h *MetricsHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req insertMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid JSON body"))
		return
	}

	var invalid []string
	if req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		invalid = append(invalid, "date must be YYYY-MM-DD")
	}
	if req.Impressions < 0 {
		invalid = append(invalid, "impressions must not be negative")
	}
	if req.Clicks < 0 {
		invalid = append(invalid, "clicks must not be negative")
	}
	if req.Spend < 0 {
		invalid = append(invalid, "spend must not be negative")
	}
	if req.Conversions < 0 {
		invalid = append(invalid, "conversions must not be negative")
	}
	if strings.TrimSpace(req.CampaignName) == "" {
		invalid = append(invalid, "campaign_name is required")
	}
	if len(invalid) > 0 {
		response.UnprocessableEntity(w, strings.Join(invalid, "; "), invalid)
		return
	}
	if req.Platform == "" {
		req.Platform = "unknown"
	}

	metric := &models.CampaignMetric{
		UserID:       auth.UserIDFromContext(r.Context()),
		Date:         req.Date,
		Impressions:  req.Impressions,
		Clicks:       req.Clicks,
		Spend:        req.Spend,
		Conversions:  req.Conversions,
		Platform:     req.Platform,
		CampaignName: strings.TrimSpace(req.CampaignName),
	}
	if err := h.metrics.Insert(r.Context(), metric); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, metric)
}

// Summary returns aggregate metrics over the last N days (default 30).
func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	summary, err := h.metrics.Summary(r.Context(), userID, queryDays(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, summary)
}

// Campaigns returns per-campaign rollups over the last N days (default 30).
func (h *MetricsHandler) Campaigns(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	aggregates, err := h.metrics.CampaignAggregates(r.Context(), userID, queryDays(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if aggregates == nil {
		aggregates = []*models.CampaignAggregate{}
	}
	response.Success(w, aggregates)
}

type seedRequest struct {
	Days int   `json:"days"`
	Seed int64 `json:"seed"`
}

// Seed populates the caller's account with deterministic demo metrics.
func (h *MetricsHandler) Seed(w http.ResponseWriter, r *http.Request) {
	req := seedRequest{Days: 30, Seed: 42}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, errors.New("invalid JSON body"))
			return
		}
	}
	if req.Days <= 0 || req.Days > 365 {
		req.Days = 30
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.metrics.SeedSampleData(r.Context(), userID, req.Days, req.Seed); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"days":   req.Days,
		"seeded": true,
	})
}

func queryDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}
