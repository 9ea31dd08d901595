// Package models defines the data structures persisted by the storage layer.
package models

import "time"

// User represents an authenticated account.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// CampaignMetric is a single day of performance data for one campaign.
type CampaignMetric struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Impressions  int       `json:"impressions"`
	Clicks       int       `json:"clicks"`
	Spend        float64   `json:"spend"`
	Conversions  int       `json:"conversions"`
	Platform     string    `json:"platform"`
	CampaignName string    `json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// MetricsSummary aggregates a user's campaign metrics over a date window.
type MetricsSummary struct {
	TotalImpressions int     `json:"total_impressions"`
	TotalClicks      int     `json:"total_clicks"`
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions int     `json:"total_conversions"`

	// Derived rates, zero when the denominator is zero
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	EngagementRate float64 `json:"engagement_rate"`
	ROAS           float64 `json:"roas"`
}

// CampaignAggregate rolls up metrics per campaign, used to build
// optimization candidates.
type CampaignAggregate struct {
	CampaignName   string  `json:"campaign_name"`
	Platform       string  `json:"platform"`
	Impressions    int     `json:"impressions"`
	Clicks         int     `json:"clicks"`
	Spend          float64 `json:"spend"`
	Conversions    int     `json:"conversions"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Recommendation is a stored recommendation text for a campaign.
type Recommendation struct {
	ID                 int       `json:"id"`
	UserID             int       `json:"user_id"`
	CampaignName       string    `json:"campaign_name"`
	RecommendationText string    `json:"recommendation_text"`
	ConfidenceScore    float64   `json:"confidence_score"`
	CreatedAt          time.Time `json:"created_at"`
}

// PredictionRecord captures one prediction request and its result.
type PredictionRecord struct {
	ID         string    `json:"id"`
	UserID     int       `json:"user_id"`
	InputJSON  string    `json:"input"`
	ResultJSON string    `json:"result"`
	CreatedAt  time.Time `json:"created_at"`
}

// OptimizationActionRecord captures one budget action emitted by the
// portfolio optimizer.
type OptimizationActionRecord struct {
	ID           string    `json:"id"`
	UserID       int       `json:"user_id"`
	Campaign     string    `json:"campaign"`
	Action       string    `json:"action"`
	Confidence   float64   `json:"confidence"`
	PredictedCTR float64   `json:"predicted_ctr"`
	PredictedCPC float64   `json:"predicted_cpc"`
	CreatedAt    time.Time `json:"created_at"`
}
