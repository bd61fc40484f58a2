package network

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/readout"
)

// Layer is a stage of a Model whose parameters are set from the training
// samples before training.
type Layer interface {
	ResetParameters(samples mat.Matrix, src rand.Source) error
}

// readoutLayer adapts the readout, whose initialization does not depend on
// the samples.
type readoutLayer struct {
	*readout.Linear
}

func (r readoutLayer) ResetParameters(_ mat.Matrix, src rand.Source) error {
	r.Linear.ResetParameters(src)
	return nil
}

// Layers returns the layers of the model in forward order.
func (m *Model) Layers() []Layer {
	return []Layer{m.featureMap, readoutLayer{m.readout}}
}
