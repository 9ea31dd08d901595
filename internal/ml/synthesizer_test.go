package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTrainingDataDeterministic(t *testing.T) {
	first := GenerateTrainingData(200, 42)
	second := GenerateTrainingData(200, 42)

	require.Len(t, first, 200)
	assert.Equal(t, first, second, "same seed must reproduce identical samples")
}

func TestGenerateTrainingDataSeedChangesSamples(t *testing.T) {
	first := GenerateTrainingData(50, 42)
	second := GenerateTrainingData(50, 43)

	assert.NotEqual(t, first, second)
}

func TestGenerateTrainingDataRanges(t *testing.T) {
	samples := GenerateTrainingData(500, 7)

	for _, s := range samples {
		assert.GreaterOrEqual(t, s.Impressions, minImpressions)
		assert.Less(t, s.Impressions, maxImpressions)
		assert.GreaterOrEqual(t, s.Spend, minSpend)
		assert.Less(t, s.Spend, maxSpend)
		assert.GreaterOrEqual(t, s.CurrentCTR, minCTR)
		assert.Less(t, s.CurrentCTR, maxCTR)
		assert.GreaterOrEqual(t, s.CurrentCPC, minCPC)
		assert.Less(t, s.CurrentCPC, maxCPC)
		assert.GreaterOrEqual(t, s.EngagementRate, minEngagement)
		assert.Less(t, s.EngagementRate, maxEngagement)

		// Targets are clipped to their contract ranges.
		assert.GreaterOrEqual(t, s.TargetCTR, targetCTRFloor)
		assert.LessOrEqual(t, s.TargetCTR, targetCTRCeil)
		assert.GreaterOrEqual(t, s.TargetCPC, targetCPCFloor)
		assert.LessOrEqual(t, s.TargetCPC, targetCPCCeil)
	}
}

func TestFeatureOrderContract(t *testing.T) {
	s := TrainingSample{
		Impressions:    1000,
		Spend:          50,
		CurrentCTR:     0.03,
		CurrentCPC:     15,
		EngagementRate: 0.04,
	}
	r := PredictionRequest{
		Impressions:    1000,
		Spend:          50,
		CurrentCTR:     0.03,
		CurrentCPC:     15,
		EngagementRate: 0.04,
	}

	want := []float64{1000, 50, 0.03, 15, 0.04}
	assert.Equal(t, want, s.Features())
	assert.Equal(t, want, r.features())
}
