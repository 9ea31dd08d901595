package ml

import (
	"fmt"
	"log"
	"math"
)

// HistoryRecorder receives prediction and optimization records.
// Calls are fire-and-forget: the engine never waits on the sink and a sink
// failure never fails the request.
type HistoryRecorder interface {
	Record(kind string, payload any)
}

// ConfidenceFunc scores trust in a forecast on [0, 1]. The production
// estimate derives from the ensemble prediction spread; tests inject fixed
// scores to pin the optimizer's gating behavior.
type ConfidenceFunc func(req PredictionRequest, mean, spread float64) float64

// Engine runs the full inference pipeline and the portfolio optimizer on top
// of the model lifecycle. It is also the graceful-degradation boundary: when
// no model can be made available, Predict substitutes a deterministic
// heuristic-only estimate instead of failing the request.
type Engine struct {
	lifecycle  *Lifecycle
	rules      RecommendationRules
	history    HistoryRecorder
	confidence ConfidenceFunc
}

// NewEngine creates an engine with the production rules and confidence
// estimate. history may be nil.
func NewEngine(lifecycle *Lifecycle, history HistoryRecorder) *Engine {
	return &Engine{
		lifecycle:  lifecycle,
		rules:      DefaultRecommendationRules(),
		history:    history,
		confidence: spreadConfidence,
	}
}

// SetConfidenceFunc overrides the forecast confidence estimate.
func (e *Engine) SetConfidenceFunc(fn ConfidenceFunc) {
	if fn != nil {
		e.confidence = fn
	}
}

// Lifecycle exposes the engine's model lifecycle.
func (e *Engine) Lifecycle() *Lifecycle {
	return e.lifecycle
}

// Predict validates the request and runs the inference pipeline:
// scaled forest prediction, CPC adjustment, performance label and
// recommendation synthesis. When the model is unavailable it falls back to
// the heuristic estimate and flags the result as degraded. A validation
// failure rejects the request with no partial result.
func (e *Engine) Predict(req PredictionRequest) (*PredictionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	artifact, err := e.lifecycle.ensure()
	if err != nil {
		log.Printf("Model unavailable, serving heuristic estimate: %v", err)
		result := e.heuristicResult(req)
		e.record("prediction", result)
		return result, nil
	}

	mean, spread := artifact.PredictCTR(req)

	ctrDelta := mean - req.CurrentCTR
	predictedCPC := AdjustCPC(req.CurrentCPC, ctrDelta)
	cpcDelta := predictedCPC - req.CurrentCPC

	label, err := ClassifyPerformance(mean, req.CurrentCTR)
	if err != nil {
		return nil, err
	}

	messages := e.rules.Synthesize(ctrDelta, cpcDelta, req.EngagementRate)

	result := &PredictionResult{
		PredictedCTR:    round(mean, 4),
		PredictedCPC:    round(predictedCPC, 2),
		Label:           label,
		Recommendations: messages,
		Recommendation:  e.rules.Render(messages),
		Confidence:      e.confidence(req, mean, spread),
	}

	e.record("prediction", result)
	return result, nil
}

// Optimize runs the prediction pipeline over every candidate campaign and
// gates each forecast against the confidence threshold. Rejected campaigns
// are dropped silently. Accepted actions preserve the candidate input order.
func (e *Engine) Optimize(candidates []CampaignCandidate, threshold float64) ([]OptimizationAction, error) {
	if threshold < 0 || threshold > 1 {
		return nil, &InvalidThresholdError{Threshold: threshold}
	}

	actions := make([]OptimizationAction, 0, len(candidates))
	for _, c := range candidates {
		req := PredictionRequest{
			Impressions:    c.Impressions,
			Spend:          c.Spend,
			CurrentCTR:     c.CurrentCTR,
			CurrentCPC:     c.CurrentCPC,
			EngagementRate: c.EngagementRate,
		}

		result, err := e.Predict(req)
		if err != nil {
			log.Printf("Skipping campaign %q: %v", c.Name, err)
			continue
		}

		if result.Confidence < threshold {
			continue
		}

		actions = append(actions, OptimizationAction{
			Campaign:     c.Name,
			Action:       budgetAction(result.Label, c.Spend),
			Confidence:   round(result.Confidence, 3),
			PredictedCTR: result.PredictedCTR,
			PredictedCPC: result.PredictedCPC,
		})
	}

	if len(actions) > 0 {
		e.record("optimization", actions)
	}
	return actions, nil
}

// heuristicResult is the deterministic estimate served when no model is
// available: a proportional CTR/CPC adjustment with a fixed recommendation.
func (e *Engine) heuristicResult(req PredictionRequest) *PredictionResult {
	predictedCTR := math.Min(req.CurrentCTR*1.1, 0.1)
	predictedCPC := math.Max(req.CurrentCPC*0.9, 5.0)

	label := LabelMedium
	if req.CurrentCTR > 0.02 {
		label = LabelHigh
	}

	message := "Consider increasing budget by 15% for better performance"
	return &PredictionResult{
		PredictedCTR:    round(predictedCTR, 4),
		PredictedCPC:    round(predictedCPC, 2),
		Label:           label,
		Recommendations: []string{message},
		Recommendation:  message,
		Confidence:      0,
		Degraded:        true,
	}
}

func (e *Engine) record(kind string, payload any) {
	if e.history == nil {
		return
	}
	go e.history.Record(kind, payload)
}

// budgetAction phrases the budget recommendation with the campaign's current
// spend substituted in.
func budgetAction(label Label, spend float64) string {
	switch label {
	case LabelHigh:
		return fmt.Sprintf("Increase budget by 20%% to $%.0f", spend*1.2)
	case LabelMedium:
		return fmt.Sprintf("Maintain current budget of $%.0f", spend)
	default:
		return fmt.Sprintf("Decrease budget by 15%% to $%.0f", spend*0.85)
	}
}

// spreadConfidence converts the ensemble tree spread into a [0, 1] trust
// score: tight agreement between trees scores high, wide disagreement decays
// toward 0.5. Deterministic for a fixed artifact and input.
func spreadConfidence(_ PredictionRequest, _ float64, spread float64) float64 {
	const spreadScale = 0.02 // CTR spread at which confidence bottoms out
	normalized := spread / spreadScale
	if normalized > 1 {
		normalized = 1
	}
	return 1 - 0.5*normalized
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
