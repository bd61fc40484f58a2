package readout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/common/regtest"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/regularize"
)

func TestGetAndSetParameters(t *testing.T) {
	for _, bias := range []bool{true, false} {
		l := NewLinear(4, bias)
		regtest.TestGetAndSetParameters(t, l, "linear")
	}
}

func TestNumParameters(t *testing.T) {
	assert.Equal(t, 5, NewLinear(5, false).NumParameters())
	assert.Equal(t, 6, NewLinear(5, true).NumParameters())
	assert.Panics(t, func() { NewLinear(0, true) })
}

func TestResetParametersBounds(t *testing.T) {
	l := NewLinear(16, true)
	l.ResetParameters(rand.NewSource(1))
	bound := 1 / math.Sqrt(16)
	nonZero := 0
	for _, p := range l.Weights() {
		assert.True(t, p >= -bound && p <= bound, "parameter %v outside ±%v", p, bound)
		if p != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 17, nonZero)

	again := NewLinear(16, true)
	again.ResetParameters(rand.NewSource(1))
	assert.Equal(t, l.Weights(), again.Weights())
}

func TestPredict(t *testing.T) {
	l := NewLinear(2, true)
	l.SetParameters([]float64{1, -2, 0.5})
	assert.Equal(t, 1*3-2*4+0.5, l.Predict([]float64{3, 4}))

	l = NewLinear(2, false)
	l.SetParameters([]float64{1, -2})
	assert.Equal(t, -5.0, l.Predict([]float64{3, 4}))
	assert.Panics(t, func() { l.Predict([]float64{1}) })

	out, err := l.PredictBatch(mat.NewDense(2, 2, []float64{3, 4, 1, 0}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-5, 1}, mat.Col(nil, 0, out))

	_, err = l.PredictBatch(mat.NewDense(2, 3, nil))
	assert.True(t, errors.Is(err, common.ErrDimensionMismatch))
	_, err = l.PredictBatch(nil)
	assert.Equal(t, common.NoData, err)
}

func TestDeriv(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	features := regtest.RandomMat(10, 3, rnd.NormFloat64)
	targets := regtest.RandomMat(10, 1, rnd.NormFloat64)
	for _, bias := range []bool{true, false} {
		l := NewLinear(3, bias)
		l.ResetParameters(rand.NewSource(4))
		regtest.TestDeriv(t, l.LossDeriver(), l.Parameters(nil), features, targets, loss.SquaredDistance{}, regularize.None{}, "linear")
		regtest.TestDeriv(t, l.LossDeriver(), l.Parameters(nil), features, targets, loss.ManhattanDistance{}, regularize.OneNorm{Gamma: 0.1}, "linear l1")
	}
}

func TestLossDeriverMatchesLinear(t *testing.T) {
	l := NewLinear(3, true)
	l.ResetParameters(rand.NewSource(5))
	feature := []float64{0.2, -1, 3}
	d := l.LossDeriver()
	assert.Equal(t, l.Predict(feature), d.Predict(l.Parameters(nil), feature))

	a := make([]float64, 4)
	b := make([]float64, 4)
	l.Deriv(feature, 0.3, a)
	d.Deriv(l.Parameters(nil), feature, 0.3, b)
	assert.Equal(t, a, b)
	assert.Equal(t, 0.3, a[3])
}
