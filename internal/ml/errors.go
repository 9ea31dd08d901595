package ml

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable is returned when no trained artifact exists and the
// fallback training run also failed. Callers are expected to degrade to the
// heuristic-only estimate rather than fail the whole request.
var ErrModelUnavailable = errors.New("no trained model available")

// ErrZeroCurrentCTR is returned by the classifier when current CTR is zero.
// Request validation rejects such inputs before they reach the classifier.
var ErrZeroCurrentCTR = errors.New("current CTR must be greater than zero")

// ValidationError reports every missing or out-of-range request field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid prediction request: " + strings.Join(e.Fields, "; ")
}

// DegenerateFeatureError indicates a zero-variance feature column in the
// training set. It is fatal to that training run only.
type DegenerateFeatureError struct {
	Column int
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("feature column %d has zero variance", e.Column)
}

// InvalidThresholdError indicates a confidence threshold outside [0, 1].
// Percentage thresholds must be converted to fractions upstream.
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("confidence threshold %v is outside [0, 1]", e.Threshold)
}
