// Package dataset generates synthetic two-class data and splits sample
// matrices for training and validation.
package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/reggo/rbfnet/common"
)

// Blobs returns n samples of width dim drawn from two isotropic normal
// clusters with standard deviation std, centred at -center and +center in
// every coordinate. Labels alternate 0, 1, 0, ... so that any prefix is
// balanced; class 0 belongs to the negative cluster.
func Blobs(n, dim int, center, std float64, src rand.Source) (x, y *mat.Dense, err error) {
	if n < 1 {
		return nil, nil, common.NewInvalidConfiguration("samples", n, "must be positive")
	}
	if dim < 1 {
		return nil, nil, common.NewInvalidConfiguration("dim", dim, "must be positive")
	}
	if !(std >= 0) || math.IsInf(std, 0) {
		return nil, nil, common.NewInvalidConfiguration("std", std, "must be non-negative and finite")
	}
	rnd := rand.New(src)
	x = mat.NewDense(n, dim, nil)
	y = mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		mean := -center
		if label == 1 {
			mean = center
		}
		row := x.RawRowView(i)
		for j := range row {
			row[j] = mean + std*rnd.NormFloat64()
		}
		y.Set(i, 0, label)
	}
	return x, y, nil
}

// TrainValidSplit keeps the first ratio share of the rows for training and
// the rest for validation. Both parts must be non-empty. The returned
// matrices do not share storage with the inputs.
func TrainValidSplit(x, y mat.Matrix, ratio float64) (trainX, trainY, validX, validY *mat.Dense, err error) {
	if err := common.VerifyLabels(x, y); err != nil {
		return nil, nil, nil, nil, err
	}
	if !(ratio > 0 && ratio < 1) {
		return nil, nil, nil, nil, common.NewInvalidConfiguration("ratio", ratio, "must be in (0, 1)")
	}
	n, c := x.Dims()
	split := int(float64(n) * ratio)
	if split == 0 || split == n {
		return nil, nil, nil, nil, common.NewInvalidConfiguration("ratio", ratio, "leaves an empty split")
	}
	xd := mat.DenseCopyOf(x)
	yd := mat.DenseCopyOf(y)
	trainX = mat.DenseCopyOf(xd.Slice(0, split, 0, c))
	trainY = mat.DenseCopyOf(yd.Slice(0, split, 0, 1))
	validX = mat.DenseCopyOf(xd.Slice(split, n, 0, c))
	validY = mat.DenseCopyOf(yd.Slice(split, n, 0, 1))
	return trainX, trainY, validX, validY, nil
}
