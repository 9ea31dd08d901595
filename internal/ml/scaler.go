package ml

import "math"

// Scaler holds a fitted standardization transform (per-feature mean and
// standard deviation). The fitted state must be reused at inference; refitting
// on inference inputs is a contract violation.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation over the feature
// matrix. A zero-variance column yields a *DegenerateFeatureError, which is
// fatal to the training run.
func FitScaler(features [][]float64) (*Scaler, error) {
	if len(features) == 0 {
		return nil, &DegenerateFeatureError{Column: 0}
	}

	cols := len(features[0])
	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, row := range features {
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(features))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range features {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			return nil, &DegenerateFeatureError{Column: j}
		}
	}

	return &Scaler{Mean: mean, Std: std}, nil
}

// Transform applies (x-mean)/std elementwise and returns a new vector.
// A zero std entry passes the value through unscaled rather than dividing
// by zero; FitScaler never produces such a state.
func (s *Scaler) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for j, x := range v {
		if s.Std[j] == 0 {
			out[j] = x
			continue
		}
		out[j] = (x - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll scales every row of the feature matrix.
func (s *Scaler) TransformAll(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		out[i] = s.Transform(row)
	}
	return out
}
