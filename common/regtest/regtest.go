// Package regtest contains helper functions for testing the layers and
// trainers of the module.
package regtest

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/regularize"
	"github.com/reggo/rbfnet/train"
)

const (
	fdStep = 1e-6
	fdTol  = 1e-6
)

func panics(f func()) (b bool) {
	defer func() {
		if err := recover(); err != nil {
			b = true
		}
	}()
	f()
	return
}

// RandomMat returns an r×c matrix filled by f.
func RandomMat(r, c int, f func() float64) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, f())
		}
	}
	return m
}

// TestGetAndSetParameters checks the Parameters/SetParameters contract:
// nil allocates, the returned slice is a copy, and bad lengths panic.
func TestGetAndSetParameters(t *testing.T, p common.ParameterGetterSetter, name string) {
	var nilParam []float64
	if panics(func() { nilParam = p.Parameters(nil) }) {
		t.Errorf("%v: Parameters panicked with nil input", name)
		return
	}
	if len(nilParam) != p.NumParameters() {
		t.Errorf("%v: On nil input, incorrect length returned from Parameters()", name)
	}
	nilParamCopy := make([]float64, p.NumParameters())
	copy(nilParamCopy, nilParam)
	nonNilParam := make([]float64, p.NumParameters())
	p.Parameters(nonNilParam)
	if !floats.Equal(nilParam, nonNilParam) {
		t.Errorf("%v: Return from Parameters() with nil argument and non nil argument are different", name)
	}
	for i := range nonNilParam {
		nonNilParam[i] = rand.NormFloat64()
	}
	if !floats.Equal(nilParam, nilParamCopy) {
		t.Errorf("%v: Modifying the return from Parameters modified the underlying parameters", name)
	}
	setParam := make([]float64, p.NumParameters())
	copy(setParam, nonNilParam)
	p.SetParameters(setParam)
	if !floats.Equal(setParam, nonNilParam) {
		t.Errorf("%v: Input slice modified during call to SetParameters", name)
	}
	if afterParam := p.Parameters(nil); !floats.Equal(afterParam, setParam) {
		t.Errorf("%v: Set parameters followed by Parameters don't return the same argument", name)
	}

	badLength := make([]float64, p.NumParameters()+3)
	if !panics(func() { p.Parameters(badLength) }) {
		t.Errorf("%v: Parameters did not panic given a slice too long", name)
	}
	if !panics(func() { p.SetParameters(badLength) }) {
		t.Errorf("%v: SetParameters did not panic given a slice too long", name)
	}
	if p.NumParameters() == 0 {
		return
	}
	badLength = badLength[:p.NumParameters()-1]
	if !panics(func() { p.Parameters(badLength) }) {
		t.Errorf("%v: Parameters did not panic given a slice too short", name)
	}
	if !panics(func() { p.SetParameters(badLength) }) {
		t.Errorf("%v: SetParameters did not panic given a slice too short", name)
	}
}

// TestDeriv uses finite difference to check the gradient of the objective
// built from deriver at the given parameters.
func TestDeriv(t *testing.T, deriver train.LossDeriver, parameters []float64, features, labels mat.Matrix, losser loss.DerivLosser, regularizer regularize.Regularizer, name string) {
	obj, err := train.NewObjective(deriver, features, labels, losser, regularizer)
	if err != nil {
		t.Fatalf("%v: building objective: %v", name, err)
	}
	derivative := make([]float64, len(parameters))
	obj.LossGrad(parameters, derivative)

	fdDerivative := make([]float64, len(parameters))
	x := make([]float64, len(parameters))
	copy(x, parameters)
	for i := range x {
		x[i] += fdStep
		loss1 := obj.Loss(x)
		x[i] -= 2 * fdStep
		loss2 := obj.Loss(x)
		x[i] += fdStep
		fdDerivative[i] = (loss1 - loss2) / (2 * fdStep)
	}
	if !floats.EqualApprox(derivative, fdDerivative, fdTol) {
		t.Errorf("%v: deriv doesn't match: Finite Difference: %v, Analytic: %v", name, fdDerivative, derivative)
	}
}

// InputGrader is a feature map that can back-propagate to its input.
type InputGrader interface {
	common.Featurizer
	NumFeatures() int
	InputGrad(input, dLossDFeature, dLossDInput []float64)
}

// TestInputGrad checks InputGrad against a finite difference of
// seed·Featurize(input).
func TestInputGrad(t *testing.T, g InputGrader, input, seed []float64, name string) {
	analytic := make([]float64, len(input))
	g.InputGrad(input, seed, analytic)

	feature := make([]float64, g.NumFeatures())
	objective := func(x []float64) float64 {
		g.Featurize(x, feature)
		return floats.Dot(seed, feature)
	}
	x := make([]float64, len(input))
	copy(x, input)
	fd := make([]float64, len(input))
	for i := range x {
		x[i] += fdStep
		f1 := objective(x)
		x[i] -= 2 * fdStep
		f2 := objective(x)
		x[i] += fdStep
		fd[i] = (f1 - f2) / (2 * fdStep)
	}
	if !floats.EqualApprox(analytic, fd, fdTol) {
		t.Errorf("%v: input gradient doesn't match: Finite Difference: %v, Analytic: %v", name, fd, analytic)
	}
}

// TestLinearSolveAndDeriv compares the parameters found by LinearSolve with
// those found by minimizing the squared loss objective with L-BFGS.
func TestLinearSolveAndDeriv(t *testing.T, deriver train.LossDeriver, features, targets mat.Matrix, bias bool, name string) {
	linear, err := train.LinearSolve(features, targets, bias)
	if err != nil {
		t.Fatalf("%v: linear solve: %v", name, err)
	}
	obj, err := train.NewObjective(deriver, features, targets, loss.SquaredDistance{}, regularize.None{})
	if err != nil {
		t.Fatalf("%v: building objective: %v", name, err)
	}
	problem := optimize.Problem{Func: obj.Func, Grad: obj.Grad}
	settings := &optimize.Settings{GradientThreshold: 1e-10, MajorIterations: 10000}
	result, err := optimize.Minimize(problem, make([]float64, len(linear)), settings, &optimize.LBFGS{})
	if err != nil {
		t.Fatalf("%v: error training: %v", name, err)
	}
	if !floats.EqualApprox(linear, result.X, 1e-6) {
		t.Errorf("%v: parameters don't match for gradient based and linear solve. linear %v, optimized %v", name, linear, result.X)
	}
}
