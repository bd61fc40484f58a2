// Package network composes the kernel feature map and the linear readout
// into the two kernel classifiers: kernel logistic regression, which keeps
// every training sample as a prototype, and the RBF network, which keeps
// k-means centroids of the training samples.
//
// A Model moves through the states Uninitialized, Fitted, Trained and
// Scored. Models are not safe for concurrent use.
package network

import (
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/kernel"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/readout"
)

// Kind selects the classifier variant.
type Kind int

const (
	// KernelLR uses every training sample as a prototype and a readout
	// without bias.
	KernelLR Kind = iota
	// RBF uses hidden-dim k-means centroids as prototypes and a readout
	// with bias.
	RBF
)

func (k Kind) String() string {
	switch k {
	case KernelLR:
		return "kernel_lr"
	case RBF:
		return "rbf"
	}
	return "unknown"
}

// ParseKind accepts the names returned by Kind.String, case insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "kernel_lr", "klr", "kernel-lr":
		return KernelLR, nil
	case "rbf":
		return RBF, nil
	}
	return 0, common.NewInvalidConfiguration("model", s, "must be kernel_lr or rbf")
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != KernelLR && k != RBF {
		return nil, common.NewInvalidConfiguration("model", int(k), "unknown kind")
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// State is the lifecycle stage of a Model.
type State int

const (
	Uninitialized State = iota
	Fitted
	Trained
	Scored
)

var stateNames = [...]string{"uninitialized", "fitted", "trained", "scored"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger sets the logger for reset, training and scoring progress.
func WithLogger(l *common.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithSource sets the random source used to choose prototypes and to
// initialize the readout.
func WithSource(src rand.Source) Option {
	return func(m *Model) {
		m.src = src
	}
}

// WithClusterIterations bounds the k-means rounds of an RBF model.
func WithClusterIterations(n int) Option {
	return func(m *Model) {
		m.clusterIterations = n
	}
}

var _ common.Predictor = (*Model)(nil)

// Model is a kernel feature map followed by a linear readout.
type Model struct {
	kind      Kind
	hiddenDim int
	sigma     float64

	featureMap *kernel.FeatureMap
	readout    *readout.Linear
	losser     loss.DerivLosser // losser of the last fit, decides Classify

	state             State
	src               rand.Source
	clusterIterations int
	logger            *common.Logger
}

// New creates an uninitialized model. For KernelLR hiddenDim must equal the
// number of training samples later passed to ResetParameters; for RBF it is
// the number of prototypes and must not exceed it.
func New(kind Kind, hiddenDim int, sigma float64, opts ...Option) (*Model, error) {
	if kind != KernelLR && kind != RBF {
		return nil, common.NewInvalidConfiguration("model", int(kind), "unknown kind")
	}
	if hiddenDim < 1 {
		return nil, common.NewInvalidConfiguration("hidden dim", hiddenDim, "must be positive")
	}
	m := &Model{
		kind:              kind,
		hiddenDim:         hiddenDim,
		sigma:             sigma,
		losser:            loss.CrossEntropy{},
		clusterIterations: kernel.DefaultClusterIterations,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.src == nil {
		m.src = rand.NewSource(time.Now().UnixNano())
	}
	m.logger = m.logger.OrNoop().WithModel(kind.String())

	// Kernel LR keeps every sample, so the feature map is told to copy them.
	mapDim := hiddenDim
	if kind == KernelLR {
		mapDim = 0
	}
	fm, err := kernel.NewFeatureMap(sigma, mapDim)
	if err != nil {
		return nil, err
	}
	if err := fm.SetClusterIterations(m.clusterIterations); err != nil {
		return nil, err
	}
	fm.SetLogger(m.logger.WithComponent("kernel"))
	m.featureMap = fm
	m.readout = readout.NewLinear(hiddenDim, kind == RBF)
	return m, nil
}

// Kind returns the model variant.
func (m *Model) Kind() Kind {
	return m.kind
}

// State returns the current lifecycle state.
func (m *Model) State() State {
	return m.state
}

// HiddenDim returns the number of prototypes.
func (m *Model) HiddenDim() int {
	return m.hiddenDim
}

// Sigma returns the kernel bandwidth.
func (m *Model) Sigma() float64 {
	return m.sigma
}

// InputDim returns the sample width, or zero before ResetParameters.
func (m *Model) InputDim() int {
	return m.featureMap.InputDim()
}

// OutputDim is always one.
func (m *Model) OutputDim() int {
	return 1
}

// ResetParameters sets the prototypes from samples and draws new readout
// weights, moving the model to Fitted.
func (m *Model) ResetParameters(samples mat.Matrix) error {
	if common.IsEmpty(samples) {
		return common.NoData
	}
	nSamples, _ := samples.Dims()
	if m.kind == KernelLR && nSamples != m.hiddenDim {
		return common.NewInvalidConfiguration("hidden dim", m.hiddenDim, "must equal the number of training samples for kernel logistic regression")
	}
	for _, layer := range m.Layers() {
		if err := layer.ResetParameters(samples, m.src); err != nil {
			return errors.Wrap(err, "network: reset parameters")
		}
	}
	m.state = Fitted
	m.logger.Info("parameters reset",
		"samples", nSamples,
		"prototypes", m.featureMap.NumFeatures(),
		"sigma", m.sigma,
	)
	return nil
}

// Weights returns a flat copy of the readout parameters, bias last for RBF.
func (m *Model) Weights() []float64 {
	return m.readout.Weights()
}

// Prototypes returns a copy of the prototype matrix, or nil before
// ResetParameters.
func (m *Model) Prototypes() *mat.Dense {
	return m.featureMap.Prototypes()
}

// Predict returns the b×1 logits for the rows of inputs.
func (m *Model) Predict(inputs mat.Matrix) (*mat.Dense, error) {
	if m.state == Uninitialized {
		return nil, common.ErrNotFitted
	}
	features, err := m.featureMap.Evaluate(inputs)
	if err != nil {
		return nil, err
	}
	return m.readout.PredictBatch(features)
}

// checkWidth returns a DimensionMismatch if inputs do not match the prototypes.
func (m *Model) checkWidth(inputs mat.Matrix) error {
	if _, c := inputs.Dims(); c != m.featureMap.InputDim() {
		return common.NewDimensionMismatch("input width", m.featureMap.InputDim(), c)
	}
	return nil
}
