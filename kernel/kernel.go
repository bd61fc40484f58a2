// Package kernel implements the Gaussian kernel and the kernel feature map
// used by the kernel logistic regression and RBF network models.
package kernel

import (
	"math"

	"github.com/reggo/rbfnet/common"
)

func init() {
	common.Register(Gaussian{})
}

// dist computes the Euclidean norm of x-y with scaling to avoid overflow.
// Assumes lengths are equal.
func dist(x, y []float64) float64 {
	scale := 0.0
	sumSquares := 1.0
	for i, xi := range x {
		val := xi - y[i]
		if val == 0 {
			continue
		}
		absxi := math.Abs(val)
		if scale < absxi {
			sumSquares = 1 + sumSquares*(scale/absxi)*(scale/absxi)
			scale = absxi
		} else {
			sumSquares = sumSquares + (absxi/scale)*(absxi/scale)
		}
	}
	return scale * math.Sqrt(sumSquares)
}

// Kerneler is a type that can compute a kernel function between two
// locations
type Kerneler interface {
	Kernel(x, y []float64) float64
}

// A DistKerneler is a type that compute the kernel based on the distance
// between two points
type DistKerneler interface {
	KernelDist(dist float64) float64
}

var (
	_ Kerneler     = Gaussian{}
	_ DistKerneler = Gaussian{}
)

// Gaussian is the isotropic kernel
//	k(x, p) = exp(-||x - p|| / (2 σ^2))
// Note the distance is the Euclidean norm and is not squared.
type Gaussian struct {
	Sigma float64 // Bandwidth, must be positive
}

// Validate returns an InvalidConfiguration error if the bandwidth is not a
// positive finite number.
func (g Gaussian) Validate() error {
	return validSigma(g.Sigma)
}

func validSigma(sigma float64) error {
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return common.NewInvalidConfiguration("sigma", sigma, "must be positive and finite")
	}
	return nil
}

// KernelDist returns the kernel value at the given distance.
func (g Gaussian) KernelDist(dist float64) float64 {
	return math.Exp(-dist / (2 * g.Sigma * g.Sigma))
}

// Kernel returns the kernel value between x and y. Panics on a length mismatch.
func (g Gaussian) Kernel(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("kernel: length mismatch")
	}
	return g.KernelDist(dist(x, y))
}

// dKernelDX adds seed * dk(x, y)/dx into deriv. At x == y the norm has no
// derivative and the contribution is zero.
func (g Gaussian) dKernelDX(x, y []float64, seed float64, deriv []float64) {
	d := dist(x, y)
	if d == 0 {
		return
	}
	// dk/dx = k * -1/(2σ^2) * (x - y)/||x - y||
	coef := seed * g.KernelDist(d) * (-1 / (2 * g.Sigma * g.Sigma)) / d
	for i := range deriv {
		deriv[i] += coef * (x[i] - y[i])
	}
}
