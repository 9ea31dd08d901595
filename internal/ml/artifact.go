package ml

import (
	"encoding/json"
	"fmt"
	"time"
)

// Artifact pairs a fitted forest with the scaler it was trained alongside.
// The two are one unit: the forest was trained on scaler-transformed features
// and they must never be used independently of each other. A training run
// supersedes the previous artifact; artifacts are never mutated in place.
type Artifact struct {
	Forest    *Forest   `json:"forest"`
	Scaler    *Scaler   `json:"scaler"`
	TrainedAt time.Time `json:"trained_at"`
	MAE       float64   `json:"mae"`
	R2        float64   `json:"r2"`
}

// PredictCTR scales the request features with the artifact's own scaler and
// returns the ensemble mean and tree spread.
func (a *Artifact) PredictCTR(req PredictionRequest) (mean, spread float64) {
	return a.Forest.PredictWithSpread(a.Scaler.Transform(req.features()))
}

// Serialize encodes the artifact for persistence. The format is opaque to
// callers and not guaranteed compatible across versions.
func (a *Artifact) Serialize() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("serialize artifact: %w", err)
	}
	return data, nil
}

// DeserializeArtifact decodes a persisted artifact and checks that both
// halves of the pair are present.
func DeserializeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("deserialize artifact: %w", err)
	}
	if a.Forest == nil || a.Scaler == nil {
		return nil, fmt.Errorf("deserialize artifact: incomplete forest/scaler pair")
	}
	return &a, nil
}
