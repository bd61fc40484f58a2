package network

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/train"
)

// Train runs minibatch gradient descent on the readout. Every epoch the
// training samples are shuffled and split into batches of
// settings.BatchSize; the final partial batch is still used. When validX is
// non-empty the mean validation loss is recorded after each epoch without
// updating the weights; a nil or typed nil validX skips validation. A nil
// settings uses train.DefaultSettings.
//
// An Uninitialized model is first reset with trainX.
func (m *Model) Train(trainX, trainY, validX, validY mat.Matrix, settings *train.Settings) (*train.History, error) {
	if settings == nil {
		settings = train.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	// Progress goes to the settings logger when one is given.
	logger := m.logger
	if settings.Logger != nil {
		logger = settings.Logger.WithModel(m.kind.String())
	}
	if err := common.VerifyLabels(trainX, trainY); err != nil {
		return nil, errors.Wrap(err, "network: training data")
	}
	if m.state == Uninitialized {
		if err := m.ResetParameters(trainX); err != nil {
			return nil, err
		}
	}
	if err := m.checkWidth(trainX); err != nil {
		return nil, err
	}
	validate := !common.IsEmpty(validX)
	if validate {
		if err := common.VerifyLabels(validX, validY); err != nil {
			return nil, errors.Wrap(err, "network: validation data")
		}
		if err := m.checkWidth(validX); err != nil {
			return nil, err
		}
	}

	nSamples, inputDim := trainX.Dims()
	// A single batch needs no shuffling.
	var sampler train.Sampler = &train.Batch{}
	if settings.BatchSize < nSamples {
		shuffled, err := train.NewEpoch(settings.BatchSize, settings.Source)
		if err != nil {
			return nil, err
		}
		sampler = shuffled
	}
	nFeatures := m.featureMap.NumFeatures()
	deriver := m.readout.LossDeriver()
	parameters := m.readout.Parameters(nil)
	grad := make([]float64, len(parameters))
	input := make([]float64, inputDim)

	history := &train.History{}
	for epoch := 0; epoch < settings.Epochs; epoch++ {
		start := time.Now()
		if err := sampler.Init(nSamples); err != nil {
			return history, err
		}
		var total float64
		for batch := sampler.Next(); batch != nil; batch = sampler.Next() {
			// Features are recomputed for every batch.
			features := mat.NewDense(len(batch), nFeatures, nil)
			labels := mat.NewDense(len(batch), 1, nil)
			for i, idx := range batch {
				common.Row(trainX, idx, input)
				m.featureMap.Featurize(input, features.RawRowView(i))
				labels.Set(i, 0, trainY.At(idx, 0))
			}
			obj, err := train.NewObjective(deriver, features, labels, settings.Losser, settings.Regularizer)
			if err != nil {
				return history, err
			}
			// Only the data term is recorded so TrainLoss compares with ValidLoss.
			l := obj.LossGrad(parameters, grad) - settings.Regularizer.Loss(parameters)
			total += l * float64(len(batch))
			settings.Optimizer.Step(parameters, grad)
		}
		m.readout.SetParameters(parameters)
		history.TrainLoss = append(history.TrainLoss, total/float64(nSamples))

		attrs := []any{
			"epoch", epoch + 1,
			"train_loss", history.TrainLoss[epoch],
		}
		if validate {
			l, err := m.Loss(validX, validY, settings.Losser)
			if err != nil {
				return history, err
			}
			history.ValidLoss = append(history.ValidLoss, l)
			attrs = append(attrs, "valid_loss", l)
		}
		attrs = append(attrs, "elapsed", time.Since(start))
		logger.Info("epoch finished", attrs...)
	}
	m.losser = settings.Losser
	m.state = Trained
	return history, nil
}

// Loss returns the mean loss of the model on inputs without changing any
// weights. A nil losser uses the losser of the last fit.
func (m *Model) Loss(inputs, labels mat.Matrix, losser loss.Losser) (float64, error) {
	if m.state == Uninitialized {
		return 0, common.ErrNotFitted
	}
	if err := common.VerifyLabels(inputs, labels); err != nil {
		return 0, err
	}
	if losser == nil {
		losser = m.losser
	}
	logits, err := m.Predict(inputs)
	if err != nil {
		return 0, err
	}
	return losser.Loss(logits.RawMatrix().Data, mat.Col(nil, 0, labels)), nil
}

// FitLinear sets the readout to the least squares solution on the kernel
// features of trainX, as an alternative to Train. The model then classifies
// like a squared distance fit. An Uninitialized model is first reset with
// trainX.
func (m *Model) FitLinear(trainX, trainY mat.Matrix) error {
	if err := common.VerifyLabels(trainX, trainY); err != nil {
		return err
	}
	if m.state == Uninitialized {
		if err := m.ResetParameters(trainX); err != nil {
			return err
		}
	}
	features, err := m.featureMap.Evaluate(trainX)
	if err != nil {
		return err
	}
	parameters, err := train.LinearSolve(features, trainY, m.readout.HasBias())
	if err != nil {
		return err
	}
	m.readout.SetParameters(parameters)
	m.losser = loss.SquaredDistance{}
	m.state = Trained
	m.logger.Info("readout solved", "parameters", len(parameters))
	return nil
}
