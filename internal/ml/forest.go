package ml

import (
	"math"
	"math/rand"
)

// ForestConfig holds the hyperparameters of the ensemble. They are fixed
// per training run for reproducibility.
type ForestConfig struct {
	TreeCount int   `json:"tree_count"`
	MaxDepth  int   `json:"max_depth"`
	Seed      int64 `json:"seed"`
}

// DefaultForestConfig returns the production hyperparameters.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		TreeCount: 100,
		MaxDepth:  10,
		Seed:      42,
	}
}

// Forest is a bagged ensemble of regression trees predicting CTR from scaled
// feature vectors. Inputs must be transformed by the scaler the forest was
// trained alongside.
type Forest struct {
	Config ForestConfig `json:"config"`
	Trees  []*treeNode  `json:"trees"`
}

// TrainForest fits the ensemble on scaled features. Each tree is grown on a
// bootstrap resample drawn from a seeded source, so training is deterministic.
func TrainForest(X [][]float64, y []float64, cfg ForestConfig) *Forest {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(X)

	trees := make([]*treeNode, cfg.TreeCount)
	for t := range trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		trees[t] = buildTree(X, y, sample, 0, cfg.MaxDepth)
	}

	return &Forest{Config: cfg, Trees: trees}
}

// Predict returns the ensemble mean for one scaled feature vector.
// Pure inference: no side effects.
func (f *Forest) Predict(x []float64) float64 {
	mean, _ := f.PredictWithSpread(x)
	return mean
}

// PredictWithSpread returns the ensemble mean and the standard deviation of
// the individual tree predictions. The spread is the basis for the
// prediction-confidence estimate.
func (f *Forest) PredictWithSpread(x []float64) (mean, spread float64) {
	var sum, sq float64
	for _, t := range f.Trees {
		v := t.predict(x)
		sum += v
		sq += v * v
	}
	n := float64(len(f.Trees))
	mean = sum / n

	variance := sq/n - mean*mean
	if variance > 0 {
		spread = math.Sqrt(variance)
	}
	return mean, spread
}

// Evaluate computes mean absolute error and the coefficient of determination
// on a held-out scaled test set. Both are surfaced to the caller as the
// production acceptance signals; no automatic quality gate is applied.
func (f *Forest) Evaluate(X [][]float64, y []float64) (mae, r2 float64) {
	if len(X) == 0 {
		return 0, 0
	}

	var targetSum float64
	for _, v := range y {
		targetSum += v
	}
	targetMean := targetSum / float64(len(y))

	var absErr, ssRes, ssTot float64
	for i, x := range X {
		pred := f.Predict(x)
		absErr += math.Abs(pred - y[i])
		ssRes += (pred - y[i]) * (pred - y[i])
		ssTot += (y[i] - targetMean) * (y[i] - targetMean)
	}

	mae = absErr / float64(len(X))
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return mae, r2
}
