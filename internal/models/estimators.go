package models

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Estimator is a fitted model that scores one already-scaled sample.
type Estimator interface {
	// Kind identifies the estimator for artifact persistence.
	Kind() string
	// Predict returns a probability for classifiers and a raw value for
	// regressors.
	Predict(x []float64) (float64, error)
}

const (
	kindLogistic = "logistic"
	kindRidge    = "ridge"
)

// LogisticClassifier is a binary classifier trained by gradient descent on
// scaled features. Predict returns the positive-class probability.
type LogisticClassifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (c *LogisticClassifier) Kind() string { return kindLogistic }

func (c *LogisticClassifier) Predict(x []float64) (float64, error) {
	if len(x) != len(c.Weights) {
		return 0, errors.New("feature length does not match model")
	}
	z := c.Bias
	for i, w := range c.Weights {
		z += w * x[i]
	}
	return sigmoid(z), nil
}

// trainLogistic fits a logistic classifier with mini-batch-free gradient
// descent. Deterministic given the seed, so training is reproducible.
func trainLogistic(X *mat.Dense, y []float64, epochs int, learningRate float64, seed int64) *LogisticClassifier {
	rows, cols := X.Dims()
	c := &LogisticClassifier{Weights: make([]float64, cols)}

	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(rows)

	for epoch := 0; epoch < epochs; epoch++ {
		for _, i := range order {
			z := c.Bias
			for j := 0; j < cols; j++ {
				z += c.Weights[j] * X.At(i, j)
			}
			err := sigmoid(z) - y[i]
			for j := 0; j < cols; j++ {
				c.Weights[j] -= learningRate * err * X.At(i, j)
			}
			c.Bias -= learningRate * err
		}
	}
	return c
}

// RidgeRegressor is a linear regressor with L2 regularization, fitted by
// solving the regularized normal equations.
type RidgeRegressor struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (r *RidgeRegressor) Kind() string { return kindRidge }

func (r *RidgeRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(r.Weights) {
		return 0, errors.New("feature length does not match model")
	}
	v := r.Bias
	for i, w := range r.Weights {
		v += w * x[i]
	}
	return v, nil
}

// trainRidge solves (AᵀA + λI)w = Aᵀy where A is X augmented with a bias
// column. The bias column is not regularized.
func trainRidge(X *mat.Dense, y []float64, lambda float64) (*RidgeRegressor, error) {
	rows, cols := X.Dims()

	a := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a.Set(i, j, X.At(i, j))
		}
		a.Set(i, cols, 1)
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 0; j < cols; j++ {
		ata.Set(j, j, ata.At(j, j)+lambda)
	}

	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(rows, y))

	var w mat.VecDense
	if err := w.SolveVec(&ata, &aty); err != nil {
		return nil, err
	}

	weights := make([]float64, cols)
	for j := 0; j < cols; j++ {
		weights[j] = w.AtVec(j)
	}
	return &RidgeRegressor{Weights: weights, Bias: w.AtVec(cols)}, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
