package train

import (
	"math/rand"
	"time"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/regularize"
)

// Settings holds the training hyperparameters and the optimizer state. It
// is passed to every training call rather than kept by the model.
type Settings struct {
	Epochs    int
	BatchSize int

	Optimizer   *SGD
	Losser      loss.DerivLosser
	Regularizer regularize.Regularizer

	Source rand.Source // Shuffling and initialization. Time seeded if nil
	Logger *common.Logger // Nil falls back to the logger of the trained model
}

// DefaultSettings returns the settings used for kernel logistic regression
// in the coursework runs: 100 epochs, batches of 32, learning rate 0.01 and
// cross entropy loss.
func DefaultSettings() *Settings {
	return &Settings{
		Epochs:      100,
		BatchSize:   32,
		Optimizer:   NewSGD(0.01),
		Losser:      loss.CrossEntropy{},
		Regularizer: regularize.None{},
	}
}

// Validate checks the hyperparameters and fills unset optional fields other
// than Logger.
func (s *Settings) Validate() error {
	if s.Epochs < 1 {
		return common.NewInvalidConfiguration("epochs", s.Epochs, "must be positive")
	}
	if s.BatchSize < 1 {
		return common.NewInvalidConfiguration("batch size", s.BatchSize, "must be positive")
	}
	if s.Optimizer == nil {
		return common.NewInvalidConfiguration("optimizer", nil, "must be set")
	}
	if err := s.Optimizer.Validate(); err != nil {
		return err
	}
	if s.Losser == nil {
		s.Losser = loss.CrossEntropy{}
	}
	if s.Regularizer == nil {
		s.Regularizer = regularize.None{}
	}
	if err := regularize.Validate(s.Regularizer); err != nil {
		return err
	}
	if s.Source == nil {
		s.Source = rand.NewSource(time.Now().UnixNano())
	}
	return nil
}

// History records the mean loss of every epoch. TrainLoss is the data term
// only, averaged over the batches of the epoch with the weights current at
// each batch; the regularizer penalty is not included.
type History struct {
	TrainLoss []float64
	ValidLoss []float64 // Empty when no validation data was given
}
