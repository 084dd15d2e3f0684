package models

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers features to zero mean and unit variance, matching
// whatever layout it was fitted on.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-column mean and standard deviation over the sample matrix.
func (s *StandardScaler) Fit(X *mat.Dense) {
	rows, cols := X.Dims()
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		col = mat.Col(col, j, X)
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std == 0 {
			// Constant column: pass through unscaled.
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
}

// Fitted reports whether Fit has been called.
func (s *StandardScaler) Fitted() bool {
	return s != nil && len(s.Mean) > 0 && len(s.Mean) == len(s.Std)
}

// Transform scales one sample in place into a new slice.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, errors.New("scaler not fitted")
	}
	if len(x) != len(s.Mean) {
		return nil, errors.New("feature length does not match fitted scaler")
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// TransformMatrix scales every row of X into a new matrix.
func (s *StandardScaler) TransformMatrix(X *mat.Dense) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if !s.Fitted() || cols != len(s.Mean) {
		return nil, errors.New("scaler not fitted for this matrix shape")
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Std[j])
		}
	}
	return out, nil
}
