package train

import (
	"gonum.org/v1/gonum/floats"

	"github.com/reggo/rbfnet/common"
)

// SGD is plain gradient descent with a fixed learning rate. It is passed to
// training explicitly so the step count travels with the caller rather than
// with the model.
type SGD struct {
	LearningRate float64

	steps int
}

// NewSGD creates an optimizer with the given learning rate.
func NewSGD(lr float64) *SGD {
	return &SGD{LearningRate: lr}
}

// Validate returns an InvalidConfiguration error for a non-positive rate.
func (o *SGD) Validate() error {
	if !(o.LearningRate > 0) {
		return common.NewInvalidConfiguration("learning rate", o.LearningRate, "must be positive")
	}
	return nil
}

// Step updates the weights in place: w -= lr * grad.
func (o *SGD) Step(weights, grads []float64) {
	floats.AddScaled(weights, -o.LearningRate, grads)
	o.steps++
}

// Steps returns the number of updates applied so far.
func (o *SGD) Steps() int {
	return o.steps
}
