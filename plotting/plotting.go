// Package plotting renders diagnostic plots for label noise estimation: a
// heat map of the noise matrix and a histogram of self-label confidence.
// The builders return a *plot.Plot that the caller saves or embeds.
package plotting

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"github.com/YuminosukeSato/cleango/pkg/errors"
)

// matrixGrid adapts a K x K matrix to the heat map's grid interface. Grid
// columns follow matrix columns (true class) and grid rows follow matrix
// rows (noisy class).
type matrixGrid struct {
	m mat.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }

func (g matrixGrid) X(c int) float64 { return float64(c) }

func (g matrixGrid) Y(r int) float64 { return float64(r) }

// NoiseMatrixHeatMap draws P(s|y) as a heat map with the true class on the
// horizontal axis and the noisy class on the vertical axis.
func NoiseMatrixHeatMap(noiseMatrix mat.Matrix) (*plot.Plot, error) {
	r, c := noiseMatrix.Dims()
	if r != c {
		return nil, errors.NewDimensionError("NoiseMatrixHeatMap", r, c, 1)
	}
	if r < 2 {
		return nil, errors.NewValidationError("noiseMatrix",
			"requires at least 2 classes", r)
	}

	p := plot.New()
	p.Title.Text = "Label noise matrix P(s|y)"
	p.X.Label.Text = "true class y"
	p.Y.Label.Text = "noisy class s"

	heat := plotter.NewHeatMap(matrixGrid{m: noiseMatrix}, moreland.SmoothBlueRed().Palette(255))
	p.Add(heat)

	names := make([]string, r)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	p.NominalX(names...)
	p.NominalY(names...)
	return p, nil
}

// SelfConfidenceHistogram draws the distribution of psx[i][s[i]], the
// predicted probability each example assigns to its own noisy label. A
// heavy low-confidence tail suggests label errors.
func SelfConfidenceHistogram(s []int, psx mat.Matrix, bins int) (*plot.Plot, error) {
	n, k := psx.Dims()
	if len(s) != n {
		return nil, errors.NewDimensionError("SelfConfidenceHistogram", len(s), n, 0)
	}
	if n == 0 {
		return nil, errors.NewValidationError("s", "requires at least one example", 0)
	}
	if bins < 1 {
		bins = 16
	}

	values := make(plotter.Values, n)
	for i, label := range s {
		if label < 0 || label >= k {
			return nil, errors.NewValidationError("s",
				fmt.Sprintf("label at index %d is outside {0..%d}", i, k-1), label)
		}
		values[i] = psx.At(i, label)
	}

	p := plot.New()
	p.Title.Text = "Self-label confidence"
	p.X.Label.Text = "psx[i][s[i]]"
	p.Y.Label.Text = "examples"

	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, errors.Wrap(err, "building confidence histogram")
	}
	p.Add(hist)
	return p, nil
}
