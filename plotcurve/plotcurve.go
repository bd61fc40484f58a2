// Package plotcurve renders training histories and prototype layouts to
// image files.
package plotcurve

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/reggo/rbfnet/common"
	"github.com/reggo/rbfnet/train"
)

var (
	trainColor = color.RGBA{B: 200, A: 255}
	validColor = color.RGBA{R: 200, A: 255}
)

func losses(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	return pts
}

// Losses saves the per-epoch training and validation loss of h to filename.
// The image format follows the file extension.
func Losses(h *train.History, title, filename string) error {
	if h == nil || len(h.TrainLoss) == 0 {
		return errors.New("plotcurve: empty history")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"

	l, err := plotter.NewLine(losses(h.TrainLoss))
	if err != nil {
		return errors.Wrap(err, "plotcurve: train loss")
	}
	l.Color = trainColor
	l.Width = vg.Points(2)
	p.Add(l)
	p.Legend.Add("train", l)

	if len(h.ValidLoss) > 0 {
		v, err := plotter.NewLine(losses(h.ValidLoss))
		if err != nil {
			return errors.Wrap(err, "plotcurve: valid loss")
		}
		v.Color = validColor
		v.Width = vg.Points(2)
		v.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(v)
		p.Legend.Add("valid", v)
	}
	p.Legend.Top = true
	return errors.Wrap(p.Save(6*vg.Inch, 4*vg.Inch, filename), "plotcurve: save")
}

// Prototypes saves a scatter of the first two features of the samples,
// colored by label, with the prototypes drawn as crosses.
func Prototypes(x, y, prototypes mat.Matrix, filename string) error {
	if err := common.VerifyLabels(x, y); err != nil {
		return err
	}
	if _, c := x.Dims(); c < 2 {
		return common.NewDimensionMismatch("plotted width", 2, c)
	}
	if _, c := prototypes.Dims(); c < 2 {
		return common.NewDimensionMismatch("plotted width", 2, c)
	}
	p := plot.New()
	p.Title.Text = "Prototypes"
	p.X.Label.Text = "Feature 1"
	p.Y.Label.Text = "Feature 2"

	nSamples, _ := x.Dims()
	var neg, pos plotter.XYs
	for i := 0; i < nSamples; i++ {
		pt := plotter.XY{X: x.At(i, 0), Y: x.At(i, 1)}
		if y.At(i, 0) > 0.5 {
			pos = append(pos, pt)
		} else {
			neg = append(neg, pt)
		}
	}
	for _, class := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"class 0", neg, trainColor},
		{"class 1", pos, validColor},
	} {
		if len(class.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(class.pts)
		if err != nil {
			return errors.Wrap(err, "plotcurve: samples")
		}
		s.Color = class.color
		p.Add(s)
		p.Legend.Add(class.name, s)
	}

	nProto, _ := prototypes.Dims()
	protoPts := make(plotter.XYs, nProto)
	for i := range protoPts {
		protoPts[i] = plotter.XY{X: prototypes.At(i, 0), Y: prototypes.At(i, 1)}
	}
	c, err := plotter.NewScatter(protoPts)
	if err != nil {
		return errors.Wrap(err, "plotcurve: prototypes")
	}
	c.Color = color.RGBA{A: 255}
	c.Shape = draw.CrossGlyph{}
	c.Radius = vg.Points(5)
	p.Add(c)
	p.Legend.Add("prototypes", c)

	return errors.Wrap(p.Save(5*vg.Inch, 5*vg.Inch, filename), "plotcurve: save")
}
