package ml

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// TrainerConfig fixes the training run parameters for reproducibility.
type TrainerConfig struct {
	SampleCount  int
	Seed         int64
	TestFraction float64
	Forest       ForestConfig
}

// DefaultTrainerConfig returns the production training parameters.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		SampleCount:  500,
		Seed:         42,
		TestFraction: 0.2,
		Forest:       DefaultForestConfig(),
	}
}

// TrainingResult summarizes one completed training run.
type TrainingResult struct {
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	MAE       float64       `json:"mae"`
	R2        float64       `json:"r2"`
	TrainedAt time.Time     `json:"trained_at"`
	Duration  time.Duration `json:"duration"`
}

// minTrainingSamples is the smallest dataset that still leaves a train and a
// test partition worth evaluating.
const minTrainingSamples = 10

// Lifecycle owns the published model artifact and orchestrates training,
// persistence and loading. The artifact is process-wide shared state under a
// single-writer/multiple-reader discipline: a training run builds the new
// artifact completely, persists it, then swaps it in atomically. Readers
// always see a matched forest/scaler pair from one generation.
type Lifecycle struct {
	store  ArtifactStore
	config TrainerConfig

	mu       sync.RWMutex
	artifact *Artifact

	// trainMu serializes training and loading so concurrent retrains
	// cannot interleave their publish steps.
	trainMu sync.Mutex
}

// NewLifecycle creates a lifecycle in the untrained state.
func NewLifecycle(store ArtifactStore, config TrainerConfig) *Lifecycle {
	return &Lifecycle{store: store, config: config}
}

// Trained reports whether a usable artifact is currently published.
func (l *Lifecycle) Trained() bool {
	return l.Artifact() != nil
}

// Artifact returns the currently published artifact snapshot, or nil.
func (l *Lifecycle) Artifact() *Artifact {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.artifact
}

// Train runs a full training pass: synthesize data, split, fit the scaler on
// the training partition, train the forest on scaled features, evaluate on
// the held-out partition, persist and publish. A failure at any step leaves
// the previously published artifact intact.
func (l *Lifecycle) Train() (*TrainingResult, error) {
	l.trainMu.Lock()
	defer l.trainMu.Unlock()

	start := time.Now()

	if l.config.SampleCount < minTrainingSamples {
		return nil, fmt.Errorf("insufficient training data: %d samples (need %d)",
			l.config.SampleCount, minTrainingSamples)
	}

	samples := GenerateTrainingData(l.config.SampleCount, l.config.Seed)
	trainIdx, testIdx := splitIndices(len(samples), l.config.TestFraction, l.config.Seed)

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = samples[idx].Features()
		trainY[i] = samples[idx].TargetCTR
	}

	scaler, err := FitScaler(trainX)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}

	forest := TrainForest(scaler.TransformAll(trainX), trainY, l.config.Forest)

	testX := make([][]float64, len(testIdx))
	testY := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		testX[i] = scaler.Transform(samples[idx].Features())
		testY[i] = samples[idx].TargetCTR
	}
	mae, r2 := forest.Evaluate(testX, testY)

	artifact := &Artifact{
		Forest:    forest,
		Scaler:    scaler,
		TrainedAt: time.Now().UTC(),
		MAE:       mae,
		R2:        r2,
	}

	if l.store != nil {
		if err := l.store.Save(artifact); err != nil {
			return nil, fmt.Errorf("save artifact: %w", err)
		}
	}

	l.publish(artifact)
	log.Printf("Model trained: MAE=%.4f R2=%.4f (%d samples, %v)",
		mae, r2, l.config.SampleCount, time.Since(start).Round(time.Millisecond))

	return &TrainingResult{
		Status:    "success",
		Message:   "Model trained successfully",
		MAE:       mae,
		R2:        r2,
		TrainedAt: artifact.TrainedAt,
		Duration:  time.Since(start),
	}, nil
}

// Load materializes a persisted artifact into the trained state. When no
// artifact exists (or the stored one is unreadable), it falls back to a fresh
// training run; training-on-demand is part of the load contract, not an error
// path. Load only fails when both paths fail.
func (l *Lifecycle) Load() (*Artifact, error) {
	if l.store != nil {
		artifact, err := l.store.Load()
		if err != nil {
			log.Printf("Stored artifact unusable, retraining: %v", err)
		} else if artifact != nil {
			l.publish(artifact)
			return artifact, nil
		}
	}

	if _, err := l.Train(); err != nil {
		return nil, fmt.Errorf("%w: fallback training failed: %v", ErrModelUnavailable, err)
	}
	return l.Artifact(), nil
}

// Reload re-reads the persisted artifact and publishes it if present. Unlike
// Load it never falls back to training; it backs the artifact file watcher.
func (l *Lifecycle) Reload() error {
	if l.store == nil {
		return nil
	}
	artifact, err := l.store.Load()
	if err != nil {
		return err
	}
	if artifact == nil {
		return nil
	}
	l.publish(artifact)
	return nil
}

// ensure returns the published artifact, loading (or training) on demand.
func (l *Lifecycle) ensure() (*Artifact, error) {
	if a := l.Artifact(); a != nil {
		return a, nil
	}
	return l.Load()
}

func (l *Lifecycle) publish(a *Artifact) {
	l.mu.Lock()
	l.artifact = a
	l.mu.Unlock()
}

// splitIndices deterministically partitions n rows into train and held-out
// test indices.
func splitIndices(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testSize := int(float64(n) * testFraction)
	if testSize < 1 {
		testSize = 1
	}
	return perm[testSize:], perm[:testSize]
}
