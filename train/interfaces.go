package train

// Sampler hands out the sample indices of one pass over the data.
type Sampler interface {
	// Init prepares a pass over nSamples samples.
	Init(nSamples int) error
	// Next returns the indices of the next batch, or nil once the pass is
	// complete. Callers must not modify the returned slice.
	Next() []int
}

// LossDeriver evaluates a parametric readout at caller supplied parameters.
type LossDeriver interface {
	// Predict returns the prediction for one feature row.
	Predict(parameters, feature []float64) float64

	// Deriv computes the derivative of the loss with respect to each
	// parameter given the derivative of the loss with respect to the
	// prediction.
	Deriv(parameters, feature []float64, dLossDPred float64, dLossDParam []float64)
}
