// Command rbfnet trains a kernel logistic regression or RBF network
// classifier on synthetic two-class data and reports the test accuracy.
//
// The model is first trained on the training split while tracking the
// validation loss, then retrained from scratch on the training and
// validation samples together and scored on a held out test set.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/config"
	"github.com/reggo/rbfnet/dataset"
	"github.com/reggo/rbfnet/network"
	"github.com/reggo/rbfnet/plotcurve"
	"github.com/reggo/rbfnet/scale"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "rbfnet:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath     string
	plotPath       string
	prototypesPath string
	savePath       string
	profileDir     string
}

// parseFlags applies a JSON config file first and then every flag given on
// the command line.
func parseFlags(args []string) (*config.Config, *options, error) {
	def := config.Default()
	fs := flag.NewFlagSet("rbfnet", flag.ContinueOnError)
	var (
		opts      options
		model     = fs.String("model", def.Model, "model kind: kernel_lr or rbf")
		sigma     = fs.Float64("sigma", def.Sigma, "kernel bandwidth")
		hidden    = fs.Int("hidden", def.Hidden, "number of RBF prototypes")
		lr        = fs.Float64("lr", def.LearningRate, "learning rate")
		epochs    = fs.Int("epochs", def.Epochs, "training epochs")
		batch     = fs.Int("batch", def.BatchSize, "batch size")
		seed      = fs.Int64("seed", def.Seed, "random seed")
		samples   = fs.Int("samples", def.Samples, "number of synthetic training and validation samples")
		logFormat = fs.String("log-format", def.LogFormat, "log format: text or json")
		verbose   = fs.Bool("v", def.Verbose, "debug logging")
	)
	fs.StringVar(&opts.configPath, "config", "", "JSON run configuration")
	fs.StringVar(&opts.plotPath, "plot", "", "write the loss curve to this image file")
	fs.StringVar(&opts.prototypesPath, "plot-prototypes", "", "write the samples and prototypes to this image file")
	fs.StringVar(&opts.savePath, "save", "", "write the final model as JSON to this file")
	fs.StringVar(&opts.profileDir, "cpuprofile", "", "write a CPU profile to this directory")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := def
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *model
		case "sigma":
			cfg.Sigma = *sigma
		case "hidden":
			cfg.Hidden = *hidden
		case "lr":
			cfg.LearningRate = *lr
		case "epochs":
			cfg.Epochs = *epochs
		case "batch":
			cfg.BatchSize = *batch
		case "seed":
			cfg.Seed = *seed
		case "samples":
			cfg.Samples = *samples
		case "log-format":
			cfg.LogFormat = *logFormat
		case "v":
			cfg.Verbose = *verbose
		}
	})
	return cfg, &opts, cfg.Validate()
}

func newScaler(name string) scale.Scaler {
	switch name {
	case "linear":
		return &scale.Linear{}
	case "none":
		return &scale.None{}
	}
	return &scale.Normal{}
}

func run(args []string) error {
	cfg, opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.profileDir), profile.Quiet).Stop()
	}
	kind, err := network.ParseKind(cfg.Model)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	x, y, err := dataset.Blobs(cfg.Samples, cfg.Dim, cfg.Center, cfg.Std, rand.NewSource(cfg.Seed))
	if err != nil {
		return err
	}
	testX, testY, err := dataset.Blobs(cfg.Samples/4+1, cfg.Dim, cfg.Center, cfg.Std, rand.NewSource(cfg.Seed+1000))
	if err != nil {
		return err
	}

	scaler := newScaler(cfg.Scale)
	if err := scaler.SetScale(x); err != nil {
		var ud *scale.UniformDimension
		if !errors.As(err, &ud) {
			return err
		}
		logger.Warn("constant input dimensions", "dims", ud.Dims)
	}
	for _, m := range []*mat.Dense{x, testX} {
		if err := scale.ScaleData(scaler, m); err != nil {
			return err
		}
	}
	trainX, trainY, validX, validY, err := dataset.TrainValidSplit(x, y, cfg.ValidRatio)
	if err != nil {
		return err
	}

	newModel := func(nSamples int) (*network.Model, error) {
		hidden := cfg.Hidden
		if kind == network.KernelLR {
			hidden = nSamples
		}
		return network.New(kind, hidden, cfg.Sigma,
			network.WithSource(rand.NewSource(cfg.Seed+2)),
			network.WithLogger(logger),
		)
	}

	// Training data only, tracking the validation loss.
	nTrain, _ := trainX.Dims()
	model, err := newModel(nTrain)
	if err != nil {
		return err
	}
	settings := cfg.Settings()
	settings.Logger = logger
	history, err := model.Train(trainX, trainY, validX, validY, settings)
	if err != nil {
		return errors.Wrap(err, "training on the training split")
	}
	if opts.plotPath != "" {
		if err := plotcurve.Losses(history, kind.String(), opts.plotPath); err != nil {
			return err
		}
	}

	// Training and validation data, no validation.
	nAll, _ := x.Dims()
	model, err = newModel(nAll)
	if err != nil {
		return err
	}
	settings = cfg.Settings()
	settings.Logger = logger
	if _, err := model.Train(x, y, nil, nil, settings); err != nil {
		return errors.Wrap(err, "training on all samples")
	}
	score, err := model.Score(testX, testY)
	if err != nil {
		return err
	}
	fmt.Printf("score = %v in test set.\n", score)

	if opts.prototypesPath != "" {
		if err := plotcurve.Prototypes(x, y, model.Prototypes(), opts.prototypesPath); err != nil {
			return err
		}
	}
	if opts.savePath != "" {
		return save(model, opts.savePath)
	}
	return nil
}

func save(model common.Predictor, path string) error {
	b, err := json.MarshalIndent(model, "", "\t")
	if err != nil {
		return errors.Wrap(err, "encoding model")
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "saving model")
}
