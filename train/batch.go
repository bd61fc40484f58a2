package train

// Batch returns all of the samples as a single batch, in order. It is the
// sampler for full-batch training.
type Batch struct {
	batch []int
	done  bool
}

func (b *Batch) Init(nSamples int) error {
	if nSamples < 1 {
		return errNoSamples
	}
	b.batch = make([]int, nSamples)
	for i := range b.batch {
		b.batch[i] = i
	}
	b.done = false
	return nil
}

func (b *Batch) Next() []int {
	if b.done {
		return nil
	}
	b.done = true
	return b.batch
}
