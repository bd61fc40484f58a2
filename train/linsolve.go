package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/regularize"
)

// IsLinearSolveRegularizer returns true if the regularizer can be used with LinearSolve
func IsLinearSolveRegularizer(r regularize.Regularizer) bool {
	switch r.(type) {
	case nil:
	case regularize.None:
	default:
		return false
	}
	return true
}

// IsLinearSolveLosser returns true if the closed form solution minimizes the losser.
func IsLinearSolveLosser(l loss.Losser) bool {
	switch l.(type) {
	case nil:
	case loss.SquaredDistance:
	default:
		return false
	}
	return true
}

// LinearSolve finds the readout parameters minimizing the squared distance
// between features·w (+ b) and targets. Tall systems are solved in the least
// squares sense and wide ones for the minimum norm solution. The bias, when
// requested, is the last parameter.
func LinearSolve(features, targets mat.Matrix, bias bool) ([]float64, error) {
	if err := common.VerifyLabels(features, targets); err != nil {
		return nil, err
	}
	a := mat.DenseCopyOf(features)
	if bias {
		nSamples, _ := a.Dims()
		ones := mat.NewDense(nSamples, 1, nil)
		for i := 0; i < nSamples; i++ {
			ones.Set(i, 0, 1)
		}
		var augmented mat.Dense
		augmented.Augment(a, ones)
		a = &augmented
	}
	var parameters mat.Dense
	if err := parameters.Solve(a, targets); err != nil {
		return nil, errors.Wrap(err, "train: linear solve")
	}
	return mat.Col(nil, 0, &parameters), nil
}
