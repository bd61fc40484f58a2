package scale

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
)

func flatten(data [][]float64) *mat.Dense {
	m := mat.NewDense(len(data), len(data[0]), nil)
	for i := range data {
		m.SetRow(i, data[i])
	}
	return m
}

func testJSON(t *testing.T, s Scaler, name string) {
	b, err := json.Marshal(common.InterfaceMarshaler{I: s})
	require.NoError(t, err, name)
	var decoded common.InterfaceMarshaler
	require.NoError(t, json.Unmarshal(b, &decoded), name)
	assert.Equal(t, s, decoded.I, name)
}

func testScaling(t *testing.T, u Scaler, data, scaledData *mat.Dense, name string) {
	origData := mat.DenseCopyOf(data)

	require.NoError(t, ScaleData(u, data), name)
	if !mat.EqualApprox(data, scaledData, 1e-14) {
		t.Errorf("Improper scaling for case %v. Expected: %v, Found: %v", name, mat.Formatted(scaledData), mat.Formatted(data))
	}
	require.NoError(t, UnscaleData(u, data), name)
	if !mat.EqualApprox(data, origData, 1e-14) {
		t.Errorf("Improper unscaling for case %v. Expected: %v, Found: %v", name, mat.Formatted(origData), mat.Formatted(data))
	}
}

type linearTest struct {
	data       [][]float64
	scaledData [][]float64
	min        []float64
	max        []float64
	name       string
	eqDim      bool
}

func TestLinear(t *testing.T) {
	for _, test := range []linearTest{
		{
			data:       [][]float64{{1}, {2}, {-3}, {-4}},
			scaledData: [][]float64{{5.0 / 6}, {1}, {1.0 / 6}, {0}},
			min:        []float64{-4},
			max:        []float64{2},
			name:       "OneD",
		},
		{
			data:       [][]float64{{1, 4}, {2, 9}, {-3, 12}, {-4, 15}},
			scaledData: [][]float64{{5.0 / 6, 0}, {1, 5.0 / 11}, {1.0 / 6, 8.0 / 11}, {0, 1}},
			min:        []float64{-4, 4},
			max:        []float64{2, 15},
			name:       "TwoD",
		},
		{
			data:       [][]float64{{1, 4}, {2, 4}, {-3, 4}, {-4, 4}},
			scaledData: [][]float64{{5.0 / 6, 0.5}, {1, 0.5}, {1.0 / 6, 0.5}, {0, 0.5}},
			min:        []float64{-4, 3.5},
			max:        []float64{2, 4.5},
			name:       "EqDim",
			eqDim:      true,
		},
	} {
		u := &Linear{}
		data := flatten(test.data)
		err := u.SetScale(data)
		if test.eqDim {
			var ud *UniformDimension
			require.True(t, errors.As(err, &ud), test.name)
			assert.Equal(t, []int{1}, ud.Dims)
		} else {
			require.NoError(t, err, test.name)
		}
		assert.True(t, u.IsScaled())
		if !floats.EqualApprox(u.Min, test.min, 1e-14) {
			t.Errorf("Min doesn't match for case %v", test.name)
		}
		if !floats.EqualApprox(u.Max, test.max, 1e-14) {
			t.Errorf("Max doesn't match for case %v", test.name)
		}
		testScaling(t, u, data, flatten(test.scaledData), test.name)
		testJSON(t, u, test.name)
	}
}

type normalTest struct {
	data       [][]float64
	scaledData [][]float64
	mu         []float64
	sigma      []float64
	name       string
	eqDim      bool
}

func TestNormal(t *testing.T) {
	s1, s2 := math.Sqrt(6.5), math.Sqrt(16.5)
	for _, test := range []normalTest{
		{
			data:       [][]float64{{1}, {2}, {-3}, {-4}},
			scaledData: [][]float64{{2 / s1}, {3 / s1}, {-2 / s1}, {-3 / s1}},
			mu:         []float64{-1},
			sigma:      []float64{s1},
			name:       "OneD",
		},
		{
			data: [][]float64{{1, 4}, {2, 9}, {-3, 12}, {-4, 15}},
			scaledData: [][]float64{
				{2 / s1, -6 / s2},
				{3 / s1, -1 / s2},
				{-2 / s1, 2 / s2},
				{-3 / s1, 5 / s2},
			},
			mu:    []float64{-1, 10},
			sigma: []float64{s1, s2},
			name:  "TwoD",
		},
		{
			data:       [][]float64{{1, 4}, {2, 4}, {-3, 4}, {-4, 4}},
			scaledData: [][]float64{{2 / s1, 0}, {3 / s1, 0}, {-2 / s1, 0}, {-3 / s1, 0}},
			mu:         []float64{-1, 4},
			sigma:      []float64{s1, 1},
			name:       "EqDim",
			eqDim:      true,
		},
	} {
		u := &Normal{}
		data := flatten(test.data)
		err := u.SetScale(data)
		if test.eqDim {
			var ud *UniformDimension
			assert.True(t, errors.As(err, &ud), test.name)
		} else {
			require.NoError(t, err, test.name)
		}
		if !floats.EqualApprox(u.Mu, test.mu, 1e-14) {
			t.Errorf("Mu doesn't match for case %v. Expected: %v, Found: %v", test.name, test.mu, u.Mu)
		}
		if !floats.EqualApprox(u.Sigma, test.sigma, 1e-14) {
			t.Errorf("Sigma doesn't match for case %v. Expected: %v, Found: %v", test.name, test.sigma, u.Sigma)
		}
		testScaling(t, u, data, flatten(test.scaledData), test.name)
		testJSON(t, u, test.name)
	}
}

func TestNone(t *testing.T) {
	n := &None{}
	data := flatten([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, n.SetScale(data))
	assert.Equal(t, 2, n.Dimensions())
	testScaling(t, n, data, mat.DenseCopyOf(data), "None")
}

func TestScaleErrors(t *testing.T) {
	for _, s := range []Scaler{&None{}, &Linear{}, &Normal{}} {
		assert.Equal(t, errTooFew, s.SetScale(mat.NewDense(1, 2, nil)))
		require.NoError(t, s.SetScale(flatten([][]float64{{1, 2}, {3, 5}})))
		err := s.Scale([]float64{1, 2, 3})
		assert.True(t, errors.Is(err, common.ErrDimensionMismatch))

		// A failed ScaleData leaves the matrix unchanged.
		wrong := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
		assert.Error(t, ScaleData(s, wrong))
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, wrong.RawMatrix().Data)
	}
}
