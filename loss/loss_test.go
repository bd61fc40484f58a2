package loss

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/reggo/rbfnet/common"
)

const (
	FDStep = 10e-6
	FDTol  = 10e-8
	TOL    = 1e-14
)

func finiteDifferenceLosser(losser DerivLosser, prediction, truth []float64) (derivative, fdDerivative []float64) {
	if len(prediction) != len(truth) {
		panic("prediction and truth are not the same length")
	}
	derivative = make([]float64, len(prediction))
	losser.LossDeriv(prediction, truth, derivative)

	fdDerivative = make([]float64, len(prediction))
	scratch := make([]float64, len(prediction))
	for i := range prediction {
		prediction[i] += FDStep
		loss1 := losser.LossDeriv(prediction, truth, scratch)
		prediction[i] -= 2 * FDStep
		loss2 := losser.LossDeriv(prediction, truth, scratch)
		prediction[i] += FDStep
		fdDerivative[i] = (loss1 - loss2) / (2 * FDStep)
	}
	return
}

func testLosser(t *testing.T, losser DerivLosser, name string, prediction, truth []float64, trueloss float64) {
	derivative := make([]float64, len(prediction))
	loss := losser.Loss(prediction, truth)
	if math.Abs(loss-trueloss) > TOL {
		t.Errorf("%v: loss doesn't match from Loss(). Expected %v, Found: %v", name, trueloss, loss)
	}
	loss = losser.LossDeriv(prediction, truth, derivative)
	if math.Abs(loss-trueloss) > TOL {
		t.Errorf("%v: loss doesn't match from LossDeriv()", name)
	}
	derivative, fdDerivative := finiteDifferenceLosser(losser, prediction, truth)
	if !floats.EqualApprox(derivative, fdDerivative, FDTol) {
		t.Errorf("%v: derivative doesn't match. \n deriv: %v \n fdDeriv: %v ", name, derivative, fdDerivative)
	}
	if err := common.InterfaceTestMarshalAndUnmarshal(losser); err != nil {
		t.Errorf("%v: error marshaling and unmarshaling: %v", name, err)
	}
}

func TestSquaredDistance(t *testing.T) {
	prediction := []float64{1, 2, 3}
	truth := []float64{1.1, 2.2, 2.7}
	testLosser(t, SquaredDistance{}, "SquaredDistance", prediction, truth, (.1*.1+.2*.2+.3*.3)/3)

	derivative := make([]float64, 3)
	loss := SquaredDistance{}.LossDeriv(prediction, []float64{1, 2, 3}, derivative)
	if loss != 0 {
		t.Errorf("Non-zero loss for equal pred and truth")
	}
	for _, val := range derivative {
		if val != 0 {
			t.Errorf("Non-zero derivative for equal pred and truth")
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	testLosser(t, ManhattanDistance{}, "ManhattanDistance", []float64{1, 2, 3}, []float64{1.1, 2.2, 2.7}, (.1+.2+.3)/3)
}

func TestCrossEntropy(t *testing.T) {
	prediction := []float64{0.3, -1.2, 2.5, 0}
	truth := []float64{1, 0, 1, 0}
	var trueloss float64
	for i, z := range prediction {
		p := 1 / (1 + math.Exp(-z))
		trueloss += -truth[i]*math.Log(p) - (1-truth[i])*math.Log(1-p)
	}
	trueloss /= float64(len(prediction))
	testLosser(t, CrossEntropy{}, "CrossEntropy", prediction, truth, trueloss)

	// Large logits must not overflow.
	loss := CrossEntropy{}.Loss([]float64{800, -800}, []float64{1, 0})
	if loss != 0 || math.IsNaN(loss) {
		t.Errorf("Expected zero loss for confident correct logits, found %v", loss)
	}
	loss = CrossEntropy{}.Loss([]float64{-800}, []float64{1})
	if math.Abs(loss-800) > 1e-9 {
		t.Errorf("Expected loss 800 for a confident wrong logit, found %v", loss)
	}
}

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		name string
		c    Classifier
		in   float64
		want float64
	}{
		{"CrossEntropyPositive", CrossEntropy{}, 0.01, 1},
		{"CrossEntropyZero", CrossEntropy{}, 0, 0},
		{"CrossEntropyNegative", CrossEntropy{}, -3, 0},
		{"SquaredAbove", SquaredDistance{}, 0.7, 1},
		{"SquaredBelow", SquaredDistance{}, 0.2, 0},
		{"Manhattan", ManhattanDistance{}, 0.9, 1},
	} {
		if got := test.c.Classify(test.in); got != test.want {
			t.Errorf("%v: expected %v, found %v", test.name, test.want, got)
		}
	}
	if Sigmoid(0) != 0.5 {
		t.Errorf("Sigmoid(0) should be one half")
	}
}
