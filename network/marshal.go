package network

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
)

type modelMarshal struct {
	Kind              Kind
	HiddenDim         int
	Sigma             float64
	ClusterIterations int
	State             State
	Prototypes        *blas64.General `json:",omitempty"`
	Weights           []float64
	Losser            common.InterfaceMarshaler
}

// MarshalJSON encodes the hyperparameters, prototypes, readout weights and
// losser of the model.
func (m *Model) MarshalJSON() ([]byte, error) {
	mm := modelMarshal{
		Kind:              m.kind,
		HiddenDim:         m.hiddenDim,
		Sigma:             m.sigma,
		ClusterIterations: m.clusterIterations,
		State:             m.state,
		Weights:           m.readout.Weights(),
		Losser:            common.InterfaceMarshaler{I: m.losser},
	}
	if p := m.featureMap.Prototypes(); p != nil {
		raw := p.RawMatrix()
		mm.Prototypes = &raw
	}
	return json.Marshal(mm)
}

// UnmarshalJSON restores a model encoded by MarshalJSON. The random source
// and logger are not part of the encoding and are kept from the receiver.
func (m *Model) UnmarshalJSON(data []byte) error {
	var mm modelMarshal
	if err := json.Unmarshal(data, &mm); err != nil {
		return errors.Wrap(err, "network: unmarshal")
	}
	opts := []Option{WithClusterIterations(mm.ClusterIterations)}
	if m.src != nil {
		opts = append(opts, WithSource(m.src))
	}
	if m.logger != nil {
		opts = append(opts, WithLogger(m.logger))
	}
	restored, err := New(mm.Kind, mm.HiddenDim, mm.Sigma, opts...)
	if err != nil {
		return errors.Wrap(err, "network: unmarshal")
	}
	if mm.Prototypes != nil {
		p := mat.NewDense(mm.Prototypes.Rows, mm.Prototypes.Cols, mm.Prototypes.Data)
		if err := restored.featureMap.SetPrototypes(p); err != nil {
			return errors.Wrap(err, "network: unmarshal prototypes")
		}
		// Kernel LR maps copy every sample, so only the readout pins the count.
		if rows, _ := p.Dims(); rows != restored.readout.InputDim() {
			return common.NewDimensionMismatch("prototype count", restored.readout.InputDim(), rows)
		}
	} else if mm.State != Uninitialized {
		return errors.New("network: unmarshal: fitted model without prototypes")
	}
	if len(mm.Weights) != restored.readout.NumParameters() {
		return common.NewDimensionMismatch("weights", restored.readout.NumParameters(), len(mm.Weights))
	}
	restored.readout.SetParameters(mm.Weights)
	if mm.Losser.I != nil {
		losser, ok := mm.Losser.I.(loss.DerivLosser)
		if !ok {
			return errors.Errorf("network: unmarshal: %T is not a losser", mm.Losser.I)
		}
		restored.losser = losser
	}
	restored.state = mm.State
	*m = *restored
	return nil
}
