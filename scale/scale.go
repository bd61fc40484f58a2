// Package scale standardizes sample matrices before training. Scalers set
// their scale from one matrix (usually the training samples) and are then
// applied row by row to every matrix passed to the model.
package scale

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/reggo/rbfnet/common"
)

func init() {
	common.Register(&None{})
	common.Register(&Linear{})
	common.Register(&Normal{})
}

var errTooFew = errors.New("scale: less than two inputs")

// UniformDimension is returned by SetScale when every sample has the same
// value in some dimensions. The scale is still set; Dims lists the
// offending dimensions.
type UniformDimension struct {
	Dims []int
}

func (i *UniformDimension) Error() string {
	return fmt.Sprintf("scale: dimensions %v have a single value", i.Dims)
}

// Scaler transforms data points in place. SetScale must be called before
// Scale or Unscale.
type Scaler interface {
	Scale(point []float64) error   // Scales (in place) the data point
	Unscale(point []float64) error // Unscales (in place) the data point
	IsScaled() bool                // Returns true if the scale for this type has already been set
	Dimensions() int               // Number of dimensions for which the data was scaled
	SetScale(data mat.Matrix) error
}

// ScaleData scales every row of data in place. On error the rows already
// scaled are restored.
func ScaleData(scaler Scaler, data *mat.Dense) error {
	nSamples, _ := data.Dims()
	for r := 0; r < nSamples; r++ {
		if err := scaler.Scale(data.RawRowView(r)); err != nil {
			for i := 0; i < r; i++ {
				scaler.Unscale(data.RawRowView(i))
			}
			return errors.Wrapf(err, "scale: row %d", r)
		}
	}
	return nil
}

// UnscaleData reverses ScaleData.
func UnscaleData(scaler Scaler, data *mat.Dense) error {
	nSamples, _ := data.Dims()
	for r := 0; r < nSamples; r++ {
		if err := scaler.Unscale(data.RawRowView(r)); err != nil {
			return errors.Wrapf(err, "unscale: row %d", r)
		}
	}
	return nil
}

// None is a type specifying no transformation of the input should be done
type None struct {
	Dim    int // Dimensions
	Scaled bool
}

func (n *None) IsScaled() bool {
	return n.Scaled
}

func (n *None) Scale(x []float64) error {
	if len(x) != n.Dim {
		return common.NewDimensionMismatch("point", n.Dim, len(x))
	}
	return nil
}

func (n *None) Unscale(x []float64) error {
	return n.Scale(x)
}

func (n *None) Dimensions() int {
	return n.Dim
}

func (n *None) SetScale(data mat.Matrix) error {
	rows, cols := data.Dims()
	if rows < 2 {
		return errTooFew
	}
	n.Dim = cols
	n.Scaled = true
	return nil
}

// Linear scales the data to be between 0 and 1
type Linear struct {
	Min    []float64 // Minimum value of the data
	Max    []float64 // Maximum value of the data
	Scaled bool
	Dim    int
}

func (l *Linear) IsScaled() bool {
	return l.Scaled
}

func (l *Linear) Dimensions() int {
	return l.Dim
}

// SetScale finds the range of every dimension. If the minimum and maximum
// are identical in a dimension they are moved to that value ± 0.5 and a
// UniformDimension error is returned.
func (l *Linear) SetScale(data mat.Matrix) error {
	rows, dim := data.Dims()
	if rows < 2 {
		return errTooFew
	}
	l.Min = make([]float64, dim)
	l.Max = make([]float64, dim)
	col := make([]float64, rows)
	var unifError *UniformDimension
	for j := 0; j < dim; j++ {
		mat.Col(col, j, data)
		l.Min[j] = floats.Min(col)
		l.Max[j] = floats.Max(col)
		if l.Min[j] == l.Max[j] {
			if unifError == nil {
				unifError = &UniformDimension{}
			}
			unifError.Dims = append(unifError.Dims, j)
			l.Min[j] -= 0.5
			l.Max[j] += 0.5
		}
	}
	l.Scaled = true
	l.Dim = dim
	if unifError != nil {
		return unifError
	}
	return nil
}

func (l *Linear) Scale(point []float64) error {
	if len(point) != l.Dim {
		return common.NewDimensionMismatch("point", l.Dim, len(point))
	}
	for i, val := range point {
		point[i] = (val - l.Min[i]) / (l.Max[i] - l.Min[i])
	}
	return nil
}

func (l *Linear) Unscale(point []float64) error {
	if len(point) != l.Dim {
		return common.NewDimensionMismatch("point", l.Dim, len(point))
	}
	for i, val := range point {
		point[i] = val*(l.Max[i]-l.Min[i]) + l.Min[i]
	}
	return nil
}

// Normal scales the data to have a mean of 0 and a variance of 1
// in each dimension
type Normal struct {
	Mu     []float64
	Sigma  []float64
	Dim    int
	Scaled bool
}

func (n *Normal) IsScaled() bool {
	return n.Scaled
}

func (n *Normal) Dimensions() int {
	return n.Dim
}

// SetScale finds the mean and population standard deviation of every
// dimension. A zero standard deviation is replaced by 1 and reported with a
// UniformDimension error.
func (n *Normal) SetScale(data mat.Matrix) error {
	rows, dim := data.Dims()
	if rows < 2 {
		return errTooFew
	}
	n.Mu = make([]float64, dim)
	n.Sigma = make([]float64, dim)
	col := make([]float64, rows)
	var unifError *UniformDimension
	for j := 0; j < dim; j++ {
		mat.Col(col, j, data)
		n.Mu[j], n.Sigma[j] = stat.PopMeanStdDev(col, nil)
		if n.Sigma[j] == 0 {
			if unifError == nil {
				unifError = &UniformDimension{}
			}
			unifError.Dims = append(unifError.Dims, j)
			n.Sigma[j] = 1
		}
	}
	n.Scaled = true
	n.Dim = dim
	if unifError != nil {
		return unifError
	}
	return nil
}

func (n *Normal) Scale(point []float64) error {
	if len(point) != n.Dim {
		return common.NewDimensionMismatch("point", n.Dim, len(point))
	}
	for i := range point {
		point[i] = (point[i] - n.Mu[i]) / n.Sigma[i]
	}
	return nil
}

func (n *Normal) Unscale(point []float64) error {
	if len(point) != n.Dim {
		return common.NewDimensionMismatch("point", n.Dim, len(point))
	}
	for i := range point {
		point[i] = point[i]*n.Sigma[i] + n.Mu[i]
	}
	return nil
}
