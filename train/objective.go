package train

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/regularize"
)

// Objective is the mean loss of a readout over a fixed set of feature rows
// plus a regularization penalty on the parameters.
type Objective struct {
	deriver     LossDeriver
	losser      loss.DerivLosser
	regularizer regularize.Regularizer

	features *mat.Dense
	labels   []float64

	// scratch
	prediction  []float64
	dLossDPred  []float64
	dLossDParam []float64
}

// NewObjective creates an objective over the rows of features. labels must be
// a single column with one row per feature row. A nil losser defaults to
// squared distance and a nil regularizer to none.
func NewObjective(deriver LossDeriver, features, labels mat.Matrix, losser loss.DerivLosser, regularizer regularize.Regularizer) (*Objective, error) {
	if err := common.VerifyLabels(features, labels); err != nil {
		return nil, err
	}
	if losser == nil {
		losser = loss.SquaredDistance{}
	}
	if regularizer == nil {
		regularizer = regularize.None{}
	}
	nSamples, _ := features.Dims()
	return &Objective{
		deriver:     deriver,
		losser:      losser,
		regularizer: regularizer,
		features:    mat.DenseCopyOf(features),
		labels:      mat.Col(nil, 0, labels),
		prediction:  make([]float64, nSamples),
		dLossDPred:  make([]float64, nSamples),
	}, nil
}

// LossGrad computes the objective at parameters and stores its gradient in grad.
func (o *Objective) LossGrad(parameters, grad []float64) float64 {
	if len(o.dLossDParam) != len(parameters) {
		o.dLossDParam = make([]float64, len(parameters))
	}
	for i := range o.prediction {
		o.prediction[i] = o.deriver.Predict(parameters, o.features.RawRowView(i))
	}
	// The losser already averages, so dLossDPred is per-sample scaled.
	l := o.losser.LossDeriv(o.prediction, o.labels, o.dLossDPred)

	for i := range grad {
		grad[i] = 0
	}
	for i, d := range o.dLossDPred {
		o.deriver.Deriv(parameters, o.features.RawRowView(i), d, o.dLossDParam)
		floats.Add(grad, o.dLossDParam)
	}
	return l + o.regularizer.LossAddDeriv(parameters, grad)
}

// Loss computes the objective without the gradient.
func (o *Objective) Loss(parameters []float64) float64 {
	for i := range o.prediction {
		o.prediction[i] = o.deriver.Predict(parameters, o.features.RawRowView(i))
	}
	return o.losser.Loss(o.prediction, o.labels) + o.regularizer.Loss(parameters)
}

// Func and Grad let an Objective be used as a gonum optimize.Problem.
func (o *Objective) Func(x []float64) float64 {
	return o.Loss(x)
}

func (o *Objective) Grad(grad, x []float64) {
	o.LossGrad(x, grad)
}
