// Package ml implements the predictive ad-performance engine: synthetic
// training data generation, a bagged regression-tree CTR model, deterministic
// CPC/label/recommendation post-processing, model lifecycle management, and
// confidence-gated portfolio optimization.
package ml

import "fmt"

// FeatureCount is the number of input features per campaign.
// Feature order is part of the training/inference contract:
// [impressions, spend, current_CTR, current_CPC, engagement_rate].
const FeatureCount = 5

// Label classifies the predicted CTR change relative to the current CTR.
type Label string

const (
	LabelHigh   Label = "High"
	LabelMedium Label = "Medium"
	LabelLow    Label = "Low"
)

// TrainingSample is one labeled synthetic campaign observation. Samples are
// generated in bulk and consumed only during training.
type TrainingSample struct {
	Impressions    int
	Spend          float64
	CurrentCTR     float64
	CurrentCPC     float64
	EngagementRate float64
	TargetCTR      float64
	TargetCPC      float64
}

// Features returns the sample's feature vector in the contract order.
func (s TrainingSample) Features() []float64 {
	return []float64{
		float64(s.Impressions),
		s.Spend,
		s.CurrentCTR,
		s.CurrentCPC,
		s.EngagementRate,
	}
}

// PredictionRequest carries the current performance signals of one campaign.
type PredictionRequest struct {
	Impressions    int
	Spend          float64
	CurrentCTR     float64
	CurrentCPC     float64
	EngagementRate float64
}

// Validate checks the request's field ranges. It returns a *ValidationError
// naming every violated field, so callers can report all problems at once.
func (r PredictionRequest) Validate() error {
	var fields []string
	if r.Impressions <= 0 {
		fields = append(fields, "impressions must be greater than zero")
	}
	if r.Spend < 0 {
		fields = append(fields, "spend must not be negative")
	}
	if r.CurrentCTR <= 0 || r.CurrentCTR > 1 {
		fields = append(fields, "current_CTR must be in (0, 1]")
	}
	if r.CurrentCPC <= 0 {
		fields = append(fields, "current_CPC must be greater than zero")
	}
	if r.EngagementRate < 0 || r.EngagementRate > 1 {
		fields = append(fields, "engagement_rate must be in [0, 1]")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// features returns the request's feature vector in the contract order.
func (r PredictionRequest) features() []float64 {
	return []float64{
		float64(r.Impressions),
		r.Spend,
		r.CurrentCTR,
		r.CurrentCPC,
		r.EngagementRate,
	}
}

// PredictionResult is the forecast for one campaign.
type PredictionResult struct {
	PredictedCTR    float64  `json:"predicted_CTR"` // rounded to 4 decimals
	PredictedCPC    float64  `json:"predicted_CPC"` // rounded to 2 decimals
	Label           Label    `json:"label"`
	Recommendations []string `json:"recommendations"`
	Recommendation  string   `json:"recommendation"` // Recommendations joined with " | "
	Confidence      float64  `json:"confidence"`
	Degraded        bool     `json:"degraded"` // true when produced by the heuristic fallback
}

// CampaignCandidate is one campaign considered during portfolio optimization.
type CampaignCandidate struct {
	Name           string  `json:"name"`
	Impressions    int     `json:"impressions"`
	Spend          float64 `json:"current_spend"`
	CurrentCTR     float64 `json:"current_ctr"`
	CurrentCPC     float64 `json:"current_cpc"`
	EngagementRate float64 `json:"engagement_rate"`
}

// OptimizationAction is the budget recommendation for one accepted campaign.
type OptimizationAction struct {
	Campaign     string  `json:"campaign"`
	Action       string  `json:"action"`
	Confidence   float64 `json:"confidence"`
	PredictedCTR float64 `json:"predicted_ctr"`
	PredictedCPC float64 `json:"predicted_cpc"`
}

func (a OptimizationAction) String() string {
	return fmt.Sprintf("%s: %s (confidence %.3f)", a.Campaign, a.Action, a.Confidence)
}
