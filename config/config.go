// Package config holds the run configuration of the rbfnet command. A
// configuration is read from a JSON file and may be overridden by flags.
package config

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/loss"
	"github.com/reggo/rbfnet/network"
	"github.com/reggo/rbfnet/regularize"
	"github.com/reggo/rbfnet/train"
)

// Config is a single training run.
type Config struct {
	Model        string  `json:"model"` // kernel_lr or rbf
	Sigma        float64 `json:"sigma"`
	Hidden       int     `json:"hidden"` // RBF prototypes; ignored for kernel_lr
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	Loss         string  `json:"loss"`         // cross_entropy, squared or manhattan
	WeightDecay  float64 `json:"weight_decay"` // penalty weight, 0 disables
	DecayNorm    string  `json:"decay_norm"`   // l2 or l1
	Seed         int64   `json:"seed"`

	Samples    int     `json:"samples"` // synthetic samples, split into train and validation
	Dim        int     `json:"dim"`
	Center     float64 `json:"center"`
	Std        float64 `json:"std"`
	ValidRatio float64 `json:"valid_ratio"` // share kept for training
	Scale      string  `json:"scale"`       // normal, linear or none

	LogFormat string `json:"log_format"` // text or json
	Verbose   bool   `json:"verbose"`
}

// Default returns the kernel logistic regression run: sigma 1, learning
// rate 0.01, 100 epochs and batches of 32.
func Default() *Config {
	return &Config{
		Model:        "kernel_lr",
		Sigma:        1,
		Hidden:       32,
		LearningRate: 0.01,
		Epochs:       100,
		BatchSize:    32,
		Loss:         "cross_entropy",
		DecayNorm:    "l2",
		Seed:         1,
		Samples:      400,
		Dim:          2,
		Center:       1,
		Std:          1,
		ValidRatio:   0.8,
		Scale:        "normal",
		LogFormat:    "text",
	}
}

// Load reads a JSON file on top of the defaults. Unknown fields are errors.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: open")
	}
	defer f.Close()
	c := Default()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrapf(err, "config: decode %s", path)
	}
	return c, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := network.ParseKind(c.Model); err != nil {
		return err
	}
	if !(c.Sigma > 0) {
		return common.NewInvalidConfiguration("sigma", c.Sigma, "must be positive")
	}
	if c.Hidden < 1 {
		return common.NewInvalidConfiguration("hidden", c.Hidden, "must be positive")
	}
	if c.Samples < 4 {
		return common.NewInvalidConfiguration("samples", c.Samples, "must be at least 4")
	}
	if c.Dim < 1 {
		return common.NewInvalidConfiguration("dim", c.Dim, "must be positive")
	}
	if !(c.ValidRatio > 0 && c.ValidRatio < 1) {
		return common.NewInvalidConfiguration("valid ratio", c.ValidRatio, "must be in (0, 1)")
	}
	if c.WeightDecay < 0 {
		return common.NewInvalidConfiguration("weight decay", c.WeightDecay, "must not be negative")
	}
	if _, err := c.losser(); err != nil {
		return err
	}
	if _, err := c.regularizer(); err != nil {
		return err
	}
	switch c.Scale {
	case "normal", "linear", "none":
	default:
		return common.NewInvalidConfiguration("scale", c.Scale, "must be normal, linear or none")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return common.NewInvalidConfiguration("log format", c.LogFormat, "must be text or json")
	}
	return c.Settings().Validate()
}

func (c *Config) losser() (loss.DerivLosser, error) {
	switch strings.ToLower(c.Loss) {
	case "cross_entropy", "":
		return loss.CrossEntropy{}, nil
	case "squared":
		return loss.SquaredDistance{}, nil
	case "manhattan":
		return loss.ManhattanDistance{}, nil
	}
	return nil, common.NewInvalidConfiguration("loss", c.Loss, "must be cross_entropy, squared or manhattan")
}

func (c *Config) regularizer() (regularize.Regularizer, error) {
	var reg regularize.Regularizer
	switch strings.ToLower(c.DecayNorm) {
	case "l2", "":
		reg = regularize.TwoNorm{Gamma: c.WeightDecay}
	case "l1":
		reg = regularize.OneNorm{Gamma: c.WeightDecay}
	default:
		return nil, common.NewInvalidConfiguration("decay norm", c.DecayNorm, "must be l2 or l1")
	}
	if c.WeightDecay == 0 {
		return regularize.None{}, nil
	}
	return reg, nil
}

func (c *Config) logLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Settings converts the configuration into training settings with a fresh
// optimizer. The logger is left unset.
func (c *Config) Settings() *train.Settings {
	// Unknown names leave the fields nil; Validate reports them.
	losser, _ := c.losser()
	reg, _ := c.regularizer()
	return &train.Settings{
		Epochs:      c.Epochs,
		BatchSize:   c.BatchSize,
		Optimizer:   train.NewSGD(c.LearningRate),
		Losser:      losser,
		Regularizer: reg,
		Source:      rand.NewSource(c.Seed + 1),
	}
}

// Logger builds the logger selected by LogFormat and Verbose.
func (c *Config) Logger() *common.Logger {
	if c.LogFormat == "json" {
		return common.NewJSONLogger(os.Stderr, c.logLevel())
	}
	return common.NewTextLogger(os.Stderr, c.logLevel())
}
