package train

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reggo/rbfnet/common"
)

func collect(s Sampler) [][]int {
	var batches [][]int
	for b := s.Next(); b != nil; b = s.Next() {
		batches = append(batches, append([]int(nil), b...))
	}
	return batches
}

func TestEpochCoversEverySample(t *testing.T) {
	for _, test := range []struct {
		nSamples, batchSize int
		sizes               []int
	}{
		{10, 3, []int{3, 3, 3, 1}},
		{10, 5, []int{5, 5}},
		{4, 10, []int{4}},
		{1, 1, []int{1}},
	} {
		e, err := NewEpoch(test.batchSize, rand.NewSource(1))
		require.NoError(t, err)
		require.NoError(t, e.Init(test.nSamples))
		assert.Equal(t, len(test.sizes), e.NumBatches(test.nSamples))

		batches := collect(e)
		var all []int
		for i, b := range batches {
			assert.Len(t, b, test.sizes[i])
			all = append(all, b...)
		}
		sort.Ints(all)
		for i, v := range all {
			assert.Equal(t, i, v)
		}
		assert.Len(t, all, test.nSamples)
		assert.Nil(t, e.Next(), "exhausted epoch must stay exhausted")
	}
}

func TestEpochReshuffles(t *testing.T) {
	e, err := NewEpoch(100, rand.NewSource(3))
	require.NoError(t, err)
	require.NoError(t, e.Init(100))
	first := append([]int(nil), e.Next()...)
	require.NoError(t, e.Init(100))
	second := e.Next()
	assert.NotEqual(t, first, second)
}

func TestEpochErrors(t *testing.T) {
	_, err := NewEpoch(0, rand.NewSource(1))
	assert.True(t, errors.Is(err, common.ErrInvalidConfiguration))

	e, err := NewEpoch(2, rand.NewSource(1))
	require.NoError(t, err)
	assert.Error(t, e.Init(0))

	var b Batch
	assert.Error(t, b.Init(0))
}

func TestBatch(t *testing.T) {
	var b Batch
	require.NoError(t, b.Init(3))
	assert.Equal(t, [][]int{{0, 1, 2}}, collect(&b))
	require.NoError(t, b.Init(2))
	assert.Equal(t, [][]int{{0, 1}}, collect(&b))
}
