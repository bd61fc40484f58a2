// Package readout implements the trainable affine layer that maps kernel
// features to a scalar score.
package readout

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
)

// Linear computes w·z (+ b). Parameters are stored as the weights followed by
// the bias when present.
type Linear struct {
	inputDim   int
	bias       bool
	parameters []float64
}

// NewLinear creates a readout over inputDim features. All parameters start at zero.
func NewLinear(inputDim int, bias bool) *Linear {
	if inputDim < 1 {
		panic("readout: non-positive input dimension")
	}
	n := inputDim
	if bias {
		n++
	}
	return &Linear{
		inputDim:   inputDim,
		bias:       bias,
		parameters: make([]float64, n),
	}
}

// InputDim returns the number of features expected.
func (l *Linear) InputDim() int {
	return l.inputDim
}

// OutputDim is always one.
func (l *Linear) OutputDim() int {
	return 1
}

// HasBias reports whether the readout has an intercept.
func (l *Linear) HasBias() bool {
	return l.bias
}

// NumParameters returns the number of weights plus one for the bias.
func (l *Linear) NumParameters() int {
	return len(l.parameters)
}

// Parameters returns the parameters as a single slice of values. If p is
// nil a new slice is allocated. Panics if p has the wrong length.
func (l *Linear) Parameters(p []float64) []float64 {
	if p == nil {
		p = make([]float64, l.NumParameters())
	} else if len(p) != l.NumParameters() {
		panic("readout: parameter size mismatch")
	}
	copy(p, l.parameters)
	return p
}

// SetParameters sets the parameters in the order returned by Parameters.
// Panics if the length is wrong.
func (l *Linear) SetParameters(p []float64) {
	if len(p) != l.NumParameters() {
		panic("readout: parameter size mismatch")
	}
	copy(l.parameters, p)
}

// Weights returns a flat copy of the parameters, bias last.
func (l *Linear) Weights() []float64 {
	return l.Parameters(nil)
}

// ResetParameters draws every parameter from U(-1/√n, 1/√n) where n is the
// number of input features.
func (l *Linear) ResetParameters(src rand.Source) {
	rnd := rand.New(src)
	bound := 1 / math.Sqrt(float64(l.inputDim))
	for i := range l.parameters {
		l.parameters[i] = (2*rnd.Float64() - 1) * bound
	}
}

// Predict returns the score of a single feature row. Panics on a length mismatch.
func (l *Linear) Predict(feature []float64) float64 {
	return predict(l.parameters, feature, l.bias)
}

// PredictBatch returns the b×1 scores for the rows of features.
func (l *Linear) PredictBatch(features mat.Matrix) (*mat.Dense, error) {
	if common.IsEmpty(features) {
		return nil, common.NoData
	}
	nSamples, dim := features.Dims()
	if dim != l.inputDim {
		return nil, common.NewDimensionMismatch("feature width", l.inputDim, dim)
	}
	out := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, dim)
	for i := 0; i < nSamples; i++ {
		common.Row(features, i, row)
		out.Set(i, 0, l.Predict(row))
	}
	return out, nil
}

// Deriv stores the derivative of the loss with respect to every parameter
// given the derivative of the loss with respect to the prediction.
func (l *Linear) Deriv(feature []float64, dLossDPred float64, dLossDParam []float64) {
	deriv(feature, dLossDPred, dLossDParam, l.bias)
}

// LossDeriver returns a stateless view of the readout for gradient
// computations at arbitrary parameter values.
func (l *Linear) LossDeriver() LossDeriver {
	return LossDeriver{bias: l.bias}
}

// LossDeriver evaluates a readout at caller supplied parameters.
type LossDeriver struct {
	bias bool
}

func (d LossDeriver) Predict(parameters, feature []float64) float64 {
	return predict(parameters, feature, d.bias)
}

func (d LossDeriver) Deriv(parameters, feature []float64, dLossDPred float64, dLossDParam []float64) {
	deriv(feature, dLossDPred, dLossDParam, d.bias)
}

func predict(parameters, feature []float64, bias bool) float64 {
	nWeights := len(parameters)
	if bias {
		nWeights--
	}
	if len(feature) != nWeights {
		panic("readout: feature length mismatch")
	}
	out := floats.Dot(parameters[:nWeights], feature)
	if bias {
		out += parameters[nWeights]
	}
	return out
}

func deriv(feature []float64, dLossDPred float64, dLossDParam []float64, bias bool) {
	// The prediction is w·z + b, so dPred/dw_i = z_i and dPred/db = 1
	for i, z := range feature {
		dLossDParam[i] = z * dLossDPred
	}
	if bias {
		dLossDParam[len(feature)] = dLossDPred
	}
}
