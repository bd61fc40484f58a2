package common

import "gonum.org/v1/gonum/mat"

// Featurizer transforms a single input row into its feature row. Implementers
// may assume len(feature) is the number of features and must not modify input.
type Featurizer interface {
	Featurize(input, feature []float64)
}

// Predictor is a type that can make predictions on the rows of a matrix.
// See package network for the concrete models. This is here to avoid
// circular imports
type Predictor interface {
	Predict(inputs mat.Matrix) (*mat.Dense, error)
	InputDim() int
	OutputDim() int
}

// ParameterGetterSetter exposes a flat view of trainable parameters.
// Parameters puts the values into the argument, allocating when it is nil.
// Both methods panic if the slice has the wrong length.
type ParameterGetterSetter interface {
	NumParameters() int
	Parameters([]float64) []float64
	SetParameters([]float64)
}

// Row copies row i of m into dst. If dst is nil a new slice is allocated.
// Dense-backed matrices are read without the generic At path.
func Row(m mat.Matrix, i int, dst []float64) []float64 {
	_, c := m.Dims()
	if dst == nil {
		dst = make([]float64, c)
	}
	if rv, ok := m.(mat.RawRowViewer); ok {
		copy(dst, rv.RawRowView(i))
		return dst
	}
	return mat.Row(dst, i, m)
}
