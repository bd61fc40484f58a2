// Package kmeans partitions samples into a fixed number of centroids by
// alternating nearest-centroid assignment and mean recomputation.
package kmeans

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
)

// KMeans is Lloyd's algorithm with Euclidean distance. Training does not
// modify the samples. A KMeans value is not safe for concurrent use.
type KMeans struct {
	Clusters      int
	MaxIterations int         // Upper bound on assignment rounds
	Source        rand.Source // Source for the initial centroids. Time seeded if nil
	Logger        *common.Logger

	centroids   *mat.Dense
	assignments []int
	iterations  int
	converged   bool
}

// Cluster runs k-means on the rows of samples and returns the k×d centroids.
func Cluster(samples mat.Matrix, k, maxIterations int, src rand.Source) (*mat.Dense, error) {
	km := &KMeans{Clusters: k, MaxIterations: maxIterations, Source: src}
	if err := km.Train(samples); err != nil {
		return nil, err
	}
	return km.centroids, nil
}

func (k *KMeans) validate(samples mat.Matrix) error {
	if common.IsEmpty(samples) {
		return common.NoData
	}
	nSamples, _ := samples.Dims()
	if k.Clusters < 1 {
		return common.NewInvalidConfiguration("clusters", k.Clusters, "must be positive")
	}
	if k.Clusters > nSamples {
		return common.NewInvalidConfiguration("clusters", k.Clusters, "exceeds the number of samples")
	}
	if k.MaxIterations < 1 {
		return common.NewInvalidConfiguration("max iterations", k.MaxIterations, "must be positive")
	}
	return nil
}

// Train chooses Clusters distinct samples uniformly at random as the initial
// centroids and iterates until the assignments stop changing or
// MaxIterations rounds have run. Not converging is not an error.
func (k *KMeans) Train(samples mat.Matrix) error {
	if err := k.validate(samples); err != nil {
		return err
	}
	src := k.Source
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	nSamples, inputDim := samples.Dims()

	// Assign the centroids to random data points to start
	perm := rand.New(src).Perm(nSamples)
	centroids := mat.NewDense(k.Clusters, inputDim, nil)
	for i := 0; i < k.Clusters; i++ {
		common.Row(samples, perm[i], centroids.RawRowView(i))
	}
	k.iterate(samples, centroids)
	return nil
}

// TrainFrom is like Train but starts from the given k×d centroids.
func (k *KMeans) TrainFrom(samples, initial mat.Matrix) error {
	if err := k.validate(samples); err != nil {
		return err
	}
	if common.IsEmpty(initial) {
		return common.NoData
	}
	_, inputDim := samples.Dims()
	r, c := initial.Dims()
	if r != k.Clusters {
		return common.NewDimensionMismatch("centroid count", k.Clusters, r)
	}
	if c != inputDim {
		return common.NewDimensionMismatch("centroid width", inputDim, c)
	}
	k.iterate(samples, mat.DenseCopyOf(initial))
	return nil
}

func (k *KMeans) iterate(samples mat.Matrix, centroids *mat.Dense) {
	data := mat.DenseCopyOf(samples)
	nSamples, inputDim := data.Dims()

	assign := make([]int, nSamples)
	prev := make([]int, nSamples)
	for i := range prev {
		prev[i] = -1 // no previous round
	}
	counts := make([]int, k.Clusters)
	mean := make([]float64, inputDim)

	k.iterations = 0
	k.converged = false
	for round := 0; round < k.MaxIterations; round++ {
		for i := 0; i < nSamples; i++ {
			assign[i] = nearest(centroids, data.RawRowView(i))
		}
		if equalInts(assign, prev) {
			k.converged = true
			break
		}
		copy(prev, assign)

		for c := 0; c < k.Clusters; c++ {
			counts[c] = 0
			for j := range mean {
				mean[j] = 0
			}
			for i, a := range assign {
				if a != c {
					continue
				}
				counts[c]++
				floats.Add(mean, data.RawRowView(i))
			}
			// An empty cluster keeps its previous centroid.
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), mean)
			centroids.SetRow(c, mean)
		}
		k.iterations++
	}

	k.centroids = centroids
	k.assignments = prev
	k.Logger.OrNoop().Debug("kmeans finished",
		"clusters", k.Clusters,
		"iterations", k.iterations,
		"converged", k.converged,
	)
}

// nearest returns the index of the closest centroid. Ties go to the lowest index.
func nearest(centroids *mat.Dense, x []float64) int {
	best := -1
	bestDist := math.Inf(1)
	nCentroids, _ := centroids.Dims()
	for c := 0; c < nCentroids; c++ {
		d := floats.Distance(x, centroids.RawRowView(c), 2)
		if d < bestDist || best == -1 {
			best = c
			bestDist = d
		}
	}
	return best
}

func equalInts(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Centroids returns a copy of the trained centroids, or nil before training.
func (k *KMeans) Centroids() *mat.Dense {
	if k.centroids == nil {
		return nil
	}
	return mat.DenseCopyOf(k.centroids)
}

// Assignments returns the cluster index of every sample from the last
// assignment round that changed the centroids.
func (k *KMeans) Assignments() []int {
	return append([]int(nil), k.assignments...)
}

// Iterations returns the number of centroid recomputation rounds performed.
func (k *KMeans) Iterations() int {
	return k.iterations
}

// Converged reports whether the last round left every assignment unchanged.
func (k *KMeans) Converged() bool {
	return k.converged
}

// Predict returns the index of the centroid nearest to x.
func (k *KMeans) Predict(x []float64) (int, error) {
	if k.centroids == nil {
		return -1, common.ErrNotFitted
	}
	_, dim := k.centroids.Dims()
	if len(x) != dim {
		return -1, common.NewDimensionMismatch("input width", dim, len(x))
	}
	return nearest(k.centroids, x), nil
}

// Inertia returns the sum of squared distances from each sample to its
// nearest centroid.
func (k *KMeans) Inertia(samples mat.Matrix) (float64, error) {
	if k.centroids == nil {
		return 0, common.ErrNotFitted
	}
	nSamples, dim := samples.Dims()
	if _, c := k.centroids.Dims(); c != dim {
		return 0, common.NewDimensionMismatch("input width", c, dim)
	}
	var inertia float64
	row := make([]float64, dim)
	for i := 0; i < nSamples; i++ {
		common.Row(samples, i, row)
		d := floats.Distance(row, k.centroids.RawRowView(nearest(k.centroids, row)), 2)
		inertia += d * d
	}
	return inertia, nil
}
