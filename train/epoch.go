package train

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/reggo/rbfnet/common"
)

var errNoSamples = errors.New("train: no samples")

// Epoch shuffles the sample order at every Init and partitions it into
// batches of BatchSize. The final batch holds the remainder when the number
// of samples is not a multiple of BatchSize.
type Epoch struct {
	BatchSize int

	rnd  *rand.Rand
	perm []int
	pos  int
}

// NewEpoch creates an epoch sampler drawing permutations from src.
func NewEpoch(batchSize int, src rand.Source) (*Epoch, error) {
	if batchSize < 1 {
		return nil, common.NewInvalidConfiguration("batch size", batchSize, "must be positive")
	}
	return &Epoch{BatchSize: batchSize, rnd: rand.New(src)}, nil
}

func (e *Epoch) Init(nSamples int) error {
	if nSamples < 1 {
		return errNoSamples
	}
	e.perm = e.rnd.Perm(nSamples)
	e.pos = 0
	return nil
}

func (e *Epoch) Next() []int {
	if e.pos >= len(e.perm) {
		return nil
	}
	end := e.pos + e.BatchSize
	if end > len(e.perm) {
		end = len(e.perm)
	}
	batch := e.perm[e.pos:end]
	e.pos = end
	return batch
}

// NumBatches returns the number of batches in a pass over nSamples samples.
func (e *Epoch) NumBatches(nSamples int) int {
	return (nSamples + e.BatchSize - 1) / e.BatchSize
}
