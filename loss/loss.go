// Package loss provides loss functions over a batch of scalar predictions.
package loss

import (
	"math"

	"github.com/reggo/rbfnet/common"
)

// init registers all of the types into the common registry for
// encoding and decoding
func init() {
	common.Register(SquaredDistance{})
	common.Register(ManhattanDistance{})
	common.Register(CrossEntropy{})
}

var lenMismatch string = "length mismatch"

// Losser is an interface for a loss function.
// A loss function is a measure of the quality of a prediction, with
// a lower value of loss being better. Typically, the loss is zero
// iff prediction == truth, and is always non-negative
// A Losser will panic if len(prediction) != len(truth). The losser
// should not modify the slice values
type Losser interface {
	Loss(prediction, truth []float64) float64
}

// A DerivLosser is a loss function which can the loss and also the derivative
// of the loss function with respect to the prediction. The derivative
// is put in place into the derivative slice.
// The DerivLosser will panic if len(prediction), len(truth), and
// len(derivative) are not all equal
type DerivLosser interface {
	Losser
	LossDeriv(prediction, truth, derivative []float64) float64
}

// A ConvexDerivLosser is a loss function that is convex in the prediction
type ConvexDerivLosser interface {
	DerivLosser
	Convex()
}

// Classifier turns a raw prediction into a {0, 1} class label consistent
// with the way the loss treats the labels.
type Classifier interface {
	Classify(prediction float64) float64
}

// SquaredDistance is the mean of (pred - truth)^2
type SquaredDistance struct{}

func (SquaredDistance) Loss(prediction, truth []float64) (loss float64) {
	if len(prediction) != len(truth) {
		panic(lenMismatch)
	}
	for i := range prediction {
		diff := prediction[i] - truth[i]
		loss += diff * diff
	}
	loss /= float64(len(prediction))
	return loss
}

func (SquaredDistance) LossDeriv(prediction, truth, derivative []float64) (loss float64) {
	if len(prediction) != len(truth) || len(prediction) != len(derivative) {
		panic(lenMismatch)
	}
	for i := range prediction {
		diff := prediction[i] - truth[i]
		derivative[i] = diff
		loss += diff * diff
	}
	loss /= float64(len(prediction))
	for i := range derivative {
		derivative[i] /= float64(len(prediction)) / 2
	}
	return loss
}

// Classify thresholds the regression target at one half.
func (SquaredDistance) Classify(prediction float64) float64 {
	if prediction > 0.5 {
		return 1
	}
	return 0
}

// Convex allows SquaredDistance to be a ConvexDerivLosser
func (SquaredDistance) Convex() {}

// Manhattan distance is the mean of |pred - truth|
type ManhattanDistance struct{}

func (ManhattanDistance) Loss(prediction, truth []float64) float64 {
	if len(prediction) != len(truth) {
		panic(lenMismatch)
	}
	var loss float64
	for i, val := range prediction {
		loss += math.Abs(val - truth[i])
	}
	loss /= float64(len(prediction))
	return loss
}

func (ManhattanDistance) LossDeriv(prediction, truth, derivative []float64) (loss float64) {
	if len(prediction) != len(truth) || len(prediction) != len(derivative) {
		panic(lenMismatch)
	}
	for i := range prediction {
		loss += math.Abs(prediction[i] - truth[i])
		if prediction[i] > truth[i] {
			derivative[i] = 1.0 / float64(len(prediction))
		} else if prediction[i] < truth[i] {
			derivative[i] = -1.0 / float64(len(prediction))
		} else {
			derivative[i] = 0
		}
	}
	loss /= float64(len(prediction))
	return loss
}

// Classify thresholds the regression target at one half.
func (ManhattanDistance) Classify(prediction float64) float64 {
	return SquaredDistance{}.Classify(prediction)
}

// Convex allows ManhattanDistance to be a ConvexDerivLosser
func (ManhattanDistance) Convex() {}

// CrossEntropy is the mean binary cross entropy between sigmoid(pred) and
// labels in {0, 1}. Predictions are logits.
type CrossEntropy struct{}

// logLoss is -y log σ(z) - (1-y) log(1-σ(z)) written to avoid overflow.
func logLoss(z, y float64) float64 {
	return math.Max(z, 0) - z*y + math.Log1p(math.Exp(-math.Abs(z)))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func (CrossEntropy) Loss(prediction, truth []float64) float64 {
	if len(prediction) != len(truth) {
		panic(lenMismatch)
	}
	var loss float64
	for i, z := range prediction {
		loss += logLoss(z, truth[i])
	}
	return loss / float64(len(prediction))
}

func (CrossEntropy) LossDeriv(prediction, truth, derivative []float64) float64 {
	if len(prediction) != len(truth) || len(prediction) != len(derivative) {
		panic(lenMismatch)
	}
	n := float64(len(prediction))
	var loss float64
	for i, z := range prediction {
		loss += logLoss(z, truth[i])
		derivative[i] = (sigmoid(z) - truth[i]) / n
	}
	return loss / n
}

// Classify returns 1 for positive logits.
func (CrossEntropy) Classify(prediction float64) float64 {
	if prediction > 0 {
		return 1
	}
	return 0
}

// Convex allows CrossEntropy to be a ConvexDerivLosser
func (CrossEntropy) Convex() {}

// Sigmoid exposes the logistic function used by CrossEntropy.
func Sigmoid(z float64) float64 {
	return sigmoid(z)
}
