package ml

import "math/rand"

// Synthetic feature ranges. The targets are a design stand-in for real
// labeled outcome data; determinism under a fixed seed matters here,
// statistical fidelity does not.
const (
	minImpressions = 1000
	maxImpressions = 100000
	minSpend       = 100.0
	maxSpend       = 10000.0
	minCTR         = 0.01
	maxCTR         = 0.1
	minCPC         = 2.0
	maxCPC         = 30.0
	minEngagement  = 0.02
	maxEngagement  = 0.2

	targetCTRFloor = 0.005
	targetCTRCeil  = 0.15
	targetCPCFloor = 1.0
	targetCPCCeil  = 35.0

	ctrNoiseSigma = 0.005
	cpcNoiseSigma = 0.5
)

// GenerateTrainingData produces n labeled synthetic campaign samples.
// The same seed reproduces the exact same sample sequence.
func GenerateTrainingData(n int, seed int64) []TrainingSample {
	rng := rand.New(rand.NewSource(seed))

	samples := make([]TrainingSample, n)
	for i := range samples {
		impressions := minImpressions + rng.Intn(maxImpressions-minImpressions)
		spend := minSpend + rng.Float64()*(maxSpend-minSpend)
		ctr := minCTR + rng.Float64()*(maxCTR-minCTR)
		cpc := minCPC + rng.Float64()*(maxCPC-minCPC)
		engagement := minEngagement + rng.Float64()*(maxEngagement-minEngagement)

		// Target CTR rewards current CTR, engagement and spend efficiency.
		targetCTR := 0.6*ctr +
			0.3*engagement +
			0.1*(10000*spend/float64(impressions)) +
			rng.NormFloat64()*ctrNoiseSigma

		// Target CPC follows current CPC with inverse-impressions and
		// inverse-engagement pressure.
		targetCPC := 0.7*cpc +
			0.2*(100000/float64(impressions)) +
			0.1*(0.1/engagement) +
			rng.NormFloat64()*cpcNoiseSigma

		samples[i] = TrainingSample{
			Impressions:    impressions,
			Spend:          spend,
			CurrentCTR:     ctr,
			CurrentCPC:     cpc,
			EngagementRate: engagement,
			TargetCTR:      clip(targetCTR, targetCTRFloor, targetCTRCeil),
			TargetCPC:      clip(targetCPC, targetCPCFloor, targetCPCCeil),
		}
	}

	return samples
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
