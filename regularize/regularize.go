// Package regularize provides penalties on the readout parameters, used as
// weight decay during training.
package regularize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/reggo/rbfnet/common"
)

func init() {
	common.Register(TwoNorm{})
	common.Register(OneNorm{})
	common.Register(None{})
}

// Regularizer adds a penalty on the parameter values to the training loss.
type Regularizer interface {
	// Loss returns the penalty for the parameters.
	Loss(parameters []float64) float64

	// LossDeriv returns the penalty and stores its gradient in derivative.
	// Both slices have the same length; derivative may hold stale values.
	LossDeriv(parameters, derivative []float64) float64

	// LossAddDeriv is LossDeriv but adds the gradient to derivative.
	LossAddDeriv(parameters, derivative []float64) float64
}

// Validate returns an InvalidConfiguration for a negative or non-finite
// weight. None is always valid.
func Validate(r Regularizer) error {
	var gamma float64
	switch r := r.(type) {
	case TwoNorm:
		gamma = r.Gamma
	case OneNorm:
		gamma = r.Gamma
	default:
		return nil
	}
	if !(gamma >= 0) || math.IsInf(gamma, 1) {
		return common.NewInvalidConfiguration("regularizer weight", gamma, "must be finite and non-negative")
	}
	return nil
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

// TwoNorm is gamma * ||w||_2^2.
type TwoNorm struct {
	Gamma float64
}

func (t TwoNorm) Loss(parameters []float64) float64 {
	return t.Gamma * floats.Dot(parameters, parameters)
}

func (t TwoNorm) LossDeriv(parameters, derivative []float64) float64 {
	zero(derivative)
	return t.LossAddDeriv(parameters, derivative)
}

func (t TwoNorm) LossAddDeriv(parameters, derivative []float64) float64 {
	floats.AddScaled(derivative, 2*t.Gamma, parameters)
	return t.Loss(parameters)
}

// OneNorm is gamma * ||w||_1. The subgradient at zero is zero.
type OneNorm struct {
	Gamma float64
}

func (o OneNorm) Loss(parameters []float64) float64 {
	return o.Gamma * floats.Norm(parameters, 1)
}

func (o OneNorm) LossDeriv(parameters, derivative []float64) float64 {
	zero(derivative)
	return o.LossAddDeriv(parameters, derivative)
}

func (o OneNorm) LossAddDeriv(parameters, derivative []float64) float64 {
	for i, p := range parameters {
		if p > 0 {
			derivative[i] += o.Gamma
		} else if p < 0 {
			derivative[i] -= o.Gamma
		}
	}
	return o.Loss(parameters)
}

// None adds nothing.
type None struct{}

func (None) Loss([]float64) float64 { return 0 }

func (None) LossDeriv(_, derivative []float64) float64 {
	zero(derivative)
	return 0
}

func (None) LossAddDeriv(_, _ []float64) float64 { return 0 }
