package kernel

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/kmeans"
)

// DefaultClusterIterations bounds the k-means rounds used to choose prototypes.
const DefaultClusterIterations = 1999

// Evaluate computes the kernel feature matrix between the rows of inputs and
// the rows of prototypes. The returned matrix is b×p where
//	features[i,j] = exp(-||inputs[i] - prototypes[j]|| / (2 σ^2))
func Evaluate(inputs, prototypes mat.Matrix, sigma float64) (*mat.Dense, error) {
	if err := validSigma(sigma); err != nil {
		return nil, err
	}
	if common.IsEmpty(inputs) || common.IsEmpty(prototypes) {
		return nil, common.NoData
	}
	nInputs, dim := inputs.Dims()
	nProto, protoDim := prototypes.Dims()
	if dim != protoDim {
		return nil, common.NewDimensionMismatch("input width", protoDim, dim)
	}
	proto := mat.DenseCopyOf(prototypes)
	features := mat.NewDense(nInputs, nProto, nil)
	input := make([]float64, dim)
	for i := 0; i < nInputs; i++ {
		common.Row(inputs, i, input)
		distFeatures(Gaussian{Sigma: sigma}, input, proto, features.RawRowView(i))
	}
	return features, nil
}

// distFeatures stores k(||input - p_j||) for every row p_j of prototypes.
func distFeatures(k DistKerneler, input []float64, prototypes *mat.Dense, feature []float64) {
	for j := range feature {
		feature[j] = k.KernelDist(dist(input, prototypes.RawRowView(j)))
	}
}

// FeatureMap maps inputs to their Gaussian kernel similarities against a
// fixed set of prototypes. The prototypes and bandwidth are set once by
// ResetParameters and are not trainable.
type FeatureMap struct {
	Gaussian

	hiddenDim         int
	clusterIterations int
	prototypes        *mat.Dense
	logger            *common.Logger
}

// NewFeatureMap creates a feature map with the given bandwidth. hiddenDim is
// the number of prototypes; zero means every training sample is a prototype.
func NewFeatureMap(sigma float64, hiddenDim int) (*FeatureMap, error) {
	if err := validSigma(sigma); err != nil {
		return nil, err
	}
	if hiddenDim < 0 {
		return nil, common.NewInvalidConfiguration("hidden dim", hiddenDim, "must not be negative")
	}
	return &FeatureMap{
		Gaussian:          Gaussian{Sigma: sigma},
		hiddenDim:         hiddenDim,
		clusterIterations: DefaultClusterIterations,
		logger:            common.NoopLogger(),
	}, nil
}

// SetLogger sets the logger used while choosing prototypes.
func (f *FeatureMap) SetLogger(l *common.Logger) {
	f.logger = l.OrNoop()
}

// SetClusterIterations overrides the k-means round limit.
func (f *FeatureMap) SetClusterIterations(n int) error {
	if n < 1 {
		return common.NewInvalidConfiguration("cluster iterations", n, "must be positive")
	}
	f.clusterIterations = n
	return nil
}

// ResetParameters sets the prototypes from the training samples. When the
// requested number of prototypes is smaller than the number of samples the
// prototypes are k-means centroids drawn with src, otherwise they are a copy
// of the samples.
func (f *FeatureMap) ResetParameters(samples mat.Matrix, src rand.Source) error {
	if common.IsEmpty(samples) {
		return common.NoData
	}
	nSamples, _ := samples.Dims()
	if f.hiddenDim > nSamples {
		return common.NewInvalidConfiguration("hidden dim", f.hiddenDim, "exceeds the number of samples")
	}
	if f.hiddenDim == 0 || f.hiddenDim == nSamples {
		f.prototypes = mat.DenseCopyOf(samples)
		return nil
	}
	km := &kmeans.KMeans{
		Clusters:      f.hiddenDim,
		MaxIterations: f.clusterIterations,
		Source:        src,
		Logger:        f.logger,
	}
	if err := km.Train(samples); err != nil {
		return errors.Wrap(err, "kernel: choosing prototypes")
	}
	f.prototypes = km.Centroids()
	return nil
}

// SetPrototypes replaces the prototypes with a copy of p. When a prototype
// count was configured p must have that many rows.
func (f *FeatureMap) SetPrototypes(p mat.Matrix) error {
	if common.IsEmpty(p) {
		return common.NoData
	}
	if r, _ := p.Dims(); f.hiddenDim != 0 && r != f.hiddenDim {
		return common.NewDimensionMismatch("prototype count", f.hiddenDim, r)
	}
	f.prototypes = mat.DenseCopyOf(p)
	return nil
}

// Prototypes returns a copy of the prototypes, or nil before ResetParameters.
func (f *FeatureMap) Prototypes() *mat.Dense {
	if f.prototypes == nil {
		return nil
	}
	return mat.DenseCopyOf(f.prototypes)
}

// HiddenDim returns the configured number of prototypes (0 for all samples).
func (f *FeatureMap) HiddenDim() int {
	return f.hiddenDim
}

// NumFeatures returns the number of prototypes.
func (f *FeatureMap) NumFeatures() int {
	if f.prototypes == nil {
		return f.hiddenDim
	}
	r, _ := f.prototypes.Dims()
	return r
}

// InputDim returns the width of the prototypes, or zero before ResetParameters.
func (f *FeatureMap) InputDim() int {
	if f.prototypes == nil {
		return 0
	}
	_, c := f.prototypes.Dims()
	return c
}

// Evaluate computes the feature matrix for the rows of inputs.
func (f *FeatureMap) Evaluate(inputs mat.Matrix) (*mat.Dense, error) {
	if f.prototypes == nil {
		return nil, common.ErrNotFitted
	}
	return Evaluate(inputs, f.prototypes, f.Sigma)
}

// Featurize stores the features of a single input into feature. Panics if
// the lengths do not match the prototypes.
func (f *FeatureMap) Featurize(input, feature []float64) {
	if f.prototypes == nil {
		panic("kernel: prototypes not set")
	}
	nProto, dim := f.prototypes.Dims()
	if len(input) != dim || len(feature) != nProto {
		panic("kernel: length mismatch")
	}
	distFeatures(f.Gaussian, input, f.prototypes, feature)
}

// InputGrad back-propagates dLossDFeature through the map and stores the
// derivative of the loss with respect to the input in dLossDInput.
func (f *FeatureMap) InputGrad(input, dLossDFeature, dLossDInput []float64) {
	if f.prototypes == nil {
		panic("kernel: prototypes not set")
	}
	nProto, dim := f.prototypes.Dims()
	if len(input) != dim || len(dLossDInput) != dim || len(dLossDFeature) != nProto {
		panic("kernel: length mismatch")
	}
	for i := range dLossDInput {
		dLossDInput[i] = 0
	}
	for j, seed := range dLossDFeature {
		if seed == 0 {
			continue
		}
		f.dKernelDX(input, f.prototypes.RawRowView(j), seed, dLossDInput)
	}
}
