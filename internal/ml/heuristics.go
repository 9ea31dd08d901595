package ml

import "strings"

// AdjustCPC maps a predicted CTR delta to a CPC forecast. Deterministic, no
// learned parameters. Improving CTR lowers CPC steeply (quality-score proxy);
// degrading CTR lowers it with a gentler slope. The asymmetry is intentional.
// CPC is never predicted below 1 currency unit.
func AdjustCPC(currentCPC, ctrDelta float64) float64 {
	var adjustment float64
	if ctrDelta > 0 {
		adjustment = -ctrDelta * 100
	} else {
		adjustment = ctrDelta * 50
	}

	predicted := currentCPC + adjustment
	if predicted < 1 {
		return 1
	}
	return predicted
}

// ClassifyPerformance labels the relative CTR improvement.
// Boundaries: improvement of exactly 0 is Low, exactly 0.10 is Medium.
func ClassifyPerformance(predictedCTR, currentCTR float64) (Label, error) {
	if currentCTR == 0 {
		return "", ErrZeroCurrentCTR
	}

	improvement := (predictedCTR - currentCTR) / currentCTR
	switch {
	case improvement > 0.10:
		return LabelHigh, nil
	case improvement > 0:
		return LabelMedium, nil
	default:
		return LabelLow, nil
	}
}

// RecommendationRules holds the action texts composed into a recommendation.
type RecommendationRules struct {
	BudgetUpStrong string
	BudgetUpSmall  string
	PauseCampaign  string
	ScaleApproach  string
	FixTargeting   string
	FixRelevance   string
	Maintain       string
	Separator      string
}

// DefaultRecommendationRules returns the production recommendation texts.
func DefaultRecommendationRules() RecommendationRules {
	return RecommendationRules{
		BudgetUpStrong: "Increase budget by 15-20% for maximum ROI",
		BudgetUpSmall:  "Consider a 5-10% budget increase",
		PauseCampaign:  "Pause campaign and test new creatives",
		ScaleApproach:  "Great CPC efficiency - scale this approach",
		FixTargeting:   "High CPC detected - optimize targeting",
		FixRelevance:   "Low engagement - improve ad relevance",
		Maintain:       "Maintain current strategy and monitor performance",
		Separator:      " | ",
	}
}

// Synthesize evaluates the rule groups independently and concatenates the
// non-empty matches in a fixed order: CTR delta, CPC delta, engagement.
// The CTR-delta group always fires; the maintain fallback is kept as an
// explicit invariant check anyway.
func (r RecommendationRules) Synthesize(ctrDelta, cpcDelta, engagementRate float64) []string {
	var messages []string

	switch {
	case ctrDelta > 0.02:
		messages = append(messages, r.BudgetUpStrong)
	case ctrDelta > 0:
		messages = append(messages, r.BudgetUpSmall)
	default:
		messages = append(messages, r.PauseCampaign)
	}

	if cpcDelta < -2 {
		messages = append(messages, r.ScaleApproach)
	} else if cpcDelta > 3 {
		messages = append(messages, r.FixTargeting)
	}

	if engagementRate < 0.05 {
		messages = append(messages, r.FixRelevance)
	}

	if len(messages) == 0 {
		messages = append(messages, r.Maintain)
	}

	return messages
}

// Render joins the ordered messages with the configured separator.
func (r RecommendationRules) Render(messages []string) string {
	return strings.Join(messages, r.Separator)
}
