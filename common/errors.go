package common

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidConfiguration is matched by every InvalidConfiguration.
	ErrInvalidConfiguration = errors.New("rbfnet: invalid configuration")
	// ErrDimensionMismatch is matched by every DimensionMismatch and DataMismatch.
	ErrDimensionMismatch = errors.New("rbfnet: dimension mismatch")

	NoData = errors.New("rbfnet: nil data")
	// ErrNotFitted is returned when a model or layer is used before its
	// parameters have been initialized from training data.
	ErrNotFitted = errors.New("rbfnet: parameters not initialized")
)

// InvalidConfiguration is returned when a hyperparameter is out of range,
// for example a non-positive bandwidth or more prototypes than samples.
type InvalidConfiguration struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *InvalidConfiguration) Error() string {
	return fmt.Sprintf("rbfnet: invalid %s %v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidConfiguration) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewInvalidConfiguration is shorthand for building an *InvalidConfiguration.
func NewInvalidConfiguration(param string, value interface{}, reason string) error {
	return &InvalidConfiguration{Param: param, Value: value, Reason: reason}
}

// DimensionMismatch is returned when a feature or batch dimension does not
// agree with what the receiver expects.
type DimensionMismatch struct {
	What     string
	Expected int
	Actual   int
}

func (e *DimensionMismatch) Error() string {
	return fmt.Sprintf("rbfnet: %s dimension mismatch: expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *DimensionMismatch) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// NewDimensionMismatch is shorthand for building a *DimensionMismatch.
func NewDimensionMismatch(what string, expected, actual int) error {
	return &DimensionMismatch{What: what, Expected: expected, Actual: actual}
}

type DataMismatch struct {
	Input  int
	Output int
	Weight int
}

func (d DataMismatch) Error() string {
	return fmt.Sprintf("rbfnet: length mismatch. inputs: %v, outputs: %v, weights: %v ", d.Input, d.Output, d.Weight)
}

func (d DataMismatch) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// VerifyInputs returns an error if the number of rows in inputs is not the same
// as the number of rows in outputs and the length of weights. As a special case,
// the length of weights is allowed to be zero.
func VerifyInputs(inputs, outputs mat.Matrix, weights []float64) error {
	if isNil(inputs) || isNil(outputs) {
		return NoData
	}
	nSamples, _ := inputs.Dims()
	nOutputSamples, _ := outputs.Dims()
	nWeights := len(weights)
	if nSamples != nOutputSamples || (nWeights != 0 && nSamples != nWeights) {
		return DataMismatch{
			Input:  nSamples,
			Output: nOutputSamples,
			Weight: nWeights,
		}
	}
	return nil
}

// VerifyLabels checks that labels is a single column with one row per input.
func VerifyLabels(inputs, labels mat.Matrix) error {
	if err := VerifyInputs(inputs, labels, nil); err != nil {
		return err
	}
	if _, c := labels.Dims(); c != 1 {
		return NewDimensionMismatch("label width", 1, c)
	}
	return nil
}

// isNil reports whether m is nil or a typed nil *mat.Dense.
func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	d, ok := m.(*mat.Dense)
	return ok && d == nil
}

// IsEmpty reports whether m is nil or has no rows.
func IsEmpty(m mat.Matrix) bool {
	if isNil(m) {
		return true
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return true
	}
	r, _ := m.Dims()
	return r == 0
}
