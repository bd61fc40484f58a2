package kmeans

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
)

func randomMat(r, c int, rnd *rand.Rand) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, rnd.NormFloat64()*3)
		}
	}
	return m
}

func TestSingleClusterIsMean(t *testing.T) {
	samples := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		-1, 0,
		5, 10,
	})
	km := &KMeans{Clusters: 1, MaxIterations: 100, Source: rand.NewSource(1)}
	require.NoError(t, km.Train(samples))

	assert.True(t, km.Converged())
	assert.Equal(t, 1, km.Iterations())
	got := km.Centroids().RawRowView(0)
	if !floats.EqualApprox(got, []float64{2, 4}, 1e-14) {
		t.Errorf("centroid mismatch. Expected %v, found %v", []float64{2, 4}, got)
	}
}

func TestCentroidsInsideBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for _, test := range []struct {
		n, d, k int
	}{
		{50, 2, 3},
		{20, 5, 20},
		{100, 3, 7},
		{9, 1, 4},
	} {
		samples := randomMat(test.n, test.d, rnd)
		km := &KMeans{Clusters: test.k, MaxIterations: 500, Source: rand.NewSource(rnd.Int63())}
		require.NoError(t, km.Train(samples))
		require.GreaterOrEqual(t, km.Iterations(), 1)

		centroids := km.Centroids()
		r, c := centroids.Dims()
		assert.Equal(t, test.k, r)
		assert.Equal(t, test.d, c)

		for j := 0; j < test.d; j++ {
			col := mat.Col(nil, j, samples)
			lo, hi := floats.Min(col), floats.Max(col)
			for i := 0; i < test.k; i++ {
				v := centroids.At(i, j)
				if math.IsNaN(v) || v < lo-1e-12 || v > hi+1e-12 {
					t.Errorf("n=%d k=%d: centroid %d coordinate %d = %v outside [%v, %v]", test.n, test.k, i, j, v, lo, hi)
				}
			}
		}
		assert.Len(t, km.Assignments(), test.n)
	}
}

func TestRestartFromConvergedCentroids(t *testing.T) {
	samples := randomMat(60, 3, rand.New(rand.NewSource(3)))
	km := &KMeans{Clusters: 4, MaxIterations: 1000, Source: rand.NewSource(11)}
	require.NoError(t, km.Train(samples))
	require.True(t, km.Converged())

	again := &KMeans{Clusters: 4, MaxIterations: 1000}
	require.NoError(t, again.TrainFrom(samples, km.Centroids()))
	assert.True(t, again.Converged())
	assert.Equal(t, 1, again.Iterations())
	assert.Equal(t, km.Assignments(), again.Assignments())
	if !mat.EqualApprox(km.Centroids(), again.Centroids(), 1e-12) {
		t.Errorf("centroids moved after restarting from a fixed point")
	}
}

func TestTiesAndEmptyClusters(t *testing.T) {
	samples := mat.NewDense(2, 1, []float64{0, 2})
	// Both centroids are equally close to every sample, so everything goes
	// to centroid 0 and centroid 1 is left empty.
	initial := mat.NewDense(2, 1, []float64{1, 1})
	km := &KMeans{Clusters: 2, MaxIterations: 10}
	require.NoError(t, km.TrainFrom(samples, initial))

	assert.Equal(t, []int{0, 0}, km.Assignments())
	centroids := km.Centroids()
	assert.Equal(t, 1.0, centroids.At(0, 0))
	assert.Equal(t, 1.0, centroids.At(1, 0), "empty cluster must keep its previous value")
	assert.True(t, km.Converged())
}

func TestMaxIterationsIsBestEffort(t *testing.T) {
	samples := randomMat(40, 2, rand.New(rand.NewSource(5)))
	km := &KMeans{Clusters: 5, MaxIterations: 1, Source: rand.NewSource(2)}
	require.NoError(t, km.Train(samples))
	assert.False(t, km.Converged())
	assert.Equal(t, 1, km.Iterations())
	r, _ := km.Centroids().Dims()
	assert.Equal(t, 5, r)
}

func TestReproducibleWithSource(t *testing.T) {
	samples := randomMat(30, 4, rand.New(rand.NewSource(9)))
	a, err := Cluster(samples, 3, 100, rand.NewSource(42))
	require.NoError(t, err)
	b, err := Cluster(samples, 3, 100, rand.NewSource(42))
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
}

func TestSamplesUnchanged(t *testing.T) {
	samples := randomMat(25, 2, rand.New(rand.NewSource(4)))
	cpy := mat.DenseCopyOf(samples)
	_, err := Cluster(samples, 3, 100, rand.NewSource(1))
	require.NoError(t, err)
	assert.True(t, mat.Equal(samples, cpy))
}

func TestBadConfiguration(t *testing.T) {
	samples := randomMat(5, 2, rand.New(rand.NewSource(1)))
	for _, test := range []struct {
		name    string
		k, iter int
	}{
		{"zero clusters", 0, 10},
		{"too many clusters", 6, 10},
		{"zero iterations", 2, 0},
	} {
		_, err := Cluster(samples, test.k, test.iter, rand.NewSource(1))
		var ic *common.InvalidConfiguration
		assert.True(t, errors.As(err, &ic), test.name)
	}

	_, err := Cluster(nil, 1, 10, nil)
	assert.Equal(t, common.NoData, err)

	km := &KMeans{Clusters: 2, MaxIterations: 10}
	err = km.TrainFrom(samples, mat.NewDense(2, 3, nil))
	assert.True(t, errors.Is(err, common.ErrDimensionMismatch))
	err = km.TrainFrom(samples, mat.NewDense(3, 2, nil))
	assert.True(t, errors.Is(err, common.ErrDimensionMismatch))
}

func TestPredictAndInertia(t *testing.T) {
	samples := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	km := &KMeans{Clusters: 2, MaxIterations: 10}

	_, err := km.Predict([]float64{0})
	assert.Equal(t, common.ErrNotFitted, err)

	require.NoError(t, km.TrainFrom(samples, mat.NewDense(2, 1, []float64{0, 10})))
	c, err := km.Predict([]float64{9})
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = km.Predict([]float64{1, 2})
	assert.True(t, errors.Is(err, common.ErrDimensionMismatch))

	inertia, err := km.Inertia(samples)
	require.NoError(t, err)
	assert.InDelta(t, 4*0.25, inertia, 1e-12)
}
