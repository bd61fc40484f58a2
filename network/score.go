package network

import (
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
)

// Score returns the classification accuracy on the given data as a fraction
// in [0, 1]. Labels are 0 or 1 and a logit is turned into a class by the
// losser of the last fit. No weights are changed.
func (m *Model) Score(testX, testY mat.Matrix) (float64, error) {
	if m.state == Uninitialized {
		return 0, common.ErrNotFitted
	}
	if err := common.VerifyLabels(testX, testY); err != nil {
		return 0, err
	}
	if err := m.checkWidth(testX); err != nil {
		return 0, err
	}
	logits, err := m.Predict(testX)
	if err != nil {
		return 0, err
	}
	classifier, ok := m.losser.(loss.Classifier)
	if !ok {
		classifier = loss.CrossEntropy{}
	}
	nSamples, _ := testX.Dims()
	var correct int
	for i := 0; i < nSamples; i++ {
		if classifier.Classify(logits.At(i, 0)) == testY.At(i, 0) {
			correct++
		}
	}
	score := float64(correct) / float64(nSamples)
	m.state = Scored
	m.logger.Info("scored", "samples", nSamples, "accuracy", score)
	return score, nil
}
