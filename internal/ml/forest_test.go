package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearDataset builds a noiseless y = 2*x0 + x1 dataset.
func linearDataset(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		x0 := rng.Float64()
		x1 := rng.Float64()
		X[i] = []float64{x0, x1}
		y[i] = 2*x0 + x1
	}
	return X, y
}

func TestTrainForestDeterministic(t *testing.T) {
	X, y := linearDataset(200, 1)
	cfg := ForestConfig{TreeCount: 10, MaxDepth: 6, Seed: 42}

	a := TrainForest(X, y, cfg)
	b := TrainForest(X, y, cfg)

	probe := []float64{0.3, 0.7}
	assert.Equal(t, a.Predict(probe), b.Predict(probe),
		"identical data and seed must yield identical forests")
}

func TestForestLearnsLinearTarget(t *testing.T) {
	X, y := linearDataset(400, 2)
	forest := TrainForest(X, y, ForestConfig{TreeCount: 30, MaxDepth: 8, Seed: 42})

	testX, testY := linearDataset(100, 3)
	mae, r2 := forest.Evaluate(testX, testY)

	assert.Less(t, mae, 0.25, "MAE should be small on an easy target")
	assert.Greater(t, r2, 0.8, "R2 should be high on an easy target")
}

func TestForestPredictionsWithinTargetRange(t *testing.T) {
	// Leaves average training targets, so predictions stay within the
	// training target range.
	X := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []float64{0.01, 0.02, 0.05, 0.08, 0.1, 0.15}
	forest := TrainForest(X, y, ForestConfig{TreeCount: 20, MaxDepth: 4, Seed: 1})

	for _, probe := range [][]float64{{-10}, {0.5}, {2.5}, {100}} {
		p := forest.Predict(probe)
		assert.GreaterOrEqual(t, p, 0.01)
		assert.LessOrEqual(t, p, 0.15)
	}
}

func TestPredictWithSpread(t *testing.T) {
	X, y := linearDataset(100, 4)
	forest := TrainForest(X, y, ForestConfig{TreeCount: 15, MaxDepth: 6, Seed: 9})

	mean, spread := forest.PredictWithSpread([]float64{0.5, 0.5})
	assert.InDelta(t, mean, forest.Predict([]float64{0.5, 0.5}), 1e-12)
	assert.GreaterOrEqual(t, spread, 0.0)
}

func TestEvaluateConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{0.5, 0.5, 0.5}
	forest := TrainForest(X, y, ForestConfig{TreeCount: 5, MaxDepth: 3, Seed: 1})

	mae, r2 := forest.Evaluate(X, y)
	require.InDelta(t, 0, mae, 1e-9)
	// Zero target variance: R2 is reported as 0, not NaN.
	assert.Equal(t, 0.0, r2)
}
