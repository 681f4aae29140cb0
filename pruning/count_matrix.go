package pruning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/estimation"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

// PruneCountMatrix derives the K x K matrix of integer prune counts,
// oriented [noisy class][true class]: entry (s, y) with s != y is the
// number of examples labeled s to treat as mislabeled members of y, and the
// diagonal counts the examples each class keeps. Inputs missing for the
// chosen count method are estimated from (s, psx).
func PruneCountMatrix(s []int, psx mat.Matrix, invNoiseMatrix, confidentJoint mat.Matrix, opts Options) (*mat.Dense, error) {
	opts = opts.normalized()
	_, k := psx.Dims()
	sCounts := util.ValueCounts(s, k)

	var pcm *mat.Dense
	switch opts.CountMethod {
	case InverseNMDotS:
		if invNoiseMatrix == nil {
			var err error
			_, _, invNoiseMatrix, _, err = estimation.EstimatePyAndNoiseMatricesFromProbabilities(
				s, psx, estimation.WithConvergence(opts.ConvergeLatentEstimates))
			if err != nil {
				return nil, err
			}
		}
		// pcm[s][y] = P(y|s) * |s|: the expected count of examples labeled
		// s whose true class is y.
		pcm = mat.NewDense(k, k, nil)
		for ks := 0; ks < k; ks++ {
			for ky := 0; ky < k; ky++ {
				pcm.Set(ks, ky, invNoiseMatrix.At(ky, ks)*float64(sCounts[ks]))
			}
		}
	case CalibrateConfidentJoint:
		if confidentJoint == nil {
			var err error
			confidentJoint, err = estimation.ComputeConfidentJoint(s, psx)
			if err != nil {
				return nil, err
			}
		}
		pcm = mat.DenseCopyOf(confidentJoint)
		if total := mat.Sum(pcm); total > 0 {
			pcm.Scale(float64(len(s))/total, pcm)
		}
	default:
		return nil, errors.NewValueError("PruneCountMatrix",
			fmt.Sprintf("unknown count method %d", int(opts.CountMethod)))
	}

	pcm = KeepAtLeastNPerClass(pcm, opts.MinExamplesPerClass, opts.FracNoise)

	if opts.NumToRemovePerClass != nil {
		return recalibrateToRemovalTargets(pcm, sCounts, opts.NumToRemovePerClass)
	}
	return pcm, nil
}

// KeepAtLeastNPerClass adjusts a prune-count matrix so every class keeps at
// least n examples. Row diagonals below n are raised to n, with the raise
// spread as a uniform decrease over the row's nonzero off-diagonal entries,
// clamped at zero. fracNoise then scales the off-diagonal counts with the
// diagonal absorbing the reduction, preserving row totals. The result is
// rounded back to integers row by row.
func KeepAtLeastNPerClass(pcm mat.Matrix, n int, fracNoise float64) *mat.Dense {
	k, _ := pcm.Dims()
	out := mat.DenseCopyOf(pcm)

	for i := 0; i < k; i++ {
		diag := out.At(i, i)
		newDiag := math.Max(diag, float64(n))
		if diff := newDiag - diag; diff > 0 {
			nonzero := 0
			for j := 0; j < k; j++ {
				if j != i && out.At(i, j) > 0 {
					nonzero++
				}
			}
			if nonzero > 0 {
				dec := diff / float64(nonzero)
				for j := 0; j < k; j++ {
					if j != i && out.At(i, j) > 0 {
						out.Set(i, j, math.Max(out.At(i, j)-dec, 0))
					}
				}
			}
		}
		out.Set(i, i, newDiag)
	}

	if fracNoise != 1 {
		for i := 0; i < k; i++ {
			reduced := 0.0
			for j := 0; j < k; j++ {
				if j == i {
					continue
				}
				v := out.At(i, j)
				out.Set(i, j, v*fracNoise)
				reduced += v - v*fracNoise
			}
			out.Set(i, i, out.At(i, i)+reduced)
		}
	}
	return util.RoundPreservingRowTotals(out)
}

// recalibrateToRemovalTargets rescales each row's off-diagonal counts so
// exactly targets[s] examples are removed from noisy class s, keeping the
// rest on the diagonal. Targets beyond the class size clamp with a warning.
func recalibrateToRemovalTargets(pcm *mat.Dense, sCounts []int, targets []int) (*mat.Dense, error) {
	k, _ := pcm.Dims()
	if len(targets) != k {
		return nil, errors.NewDimensionError("PruneCountMatrix", k, len(targets), 0)
	}

	out := mat.DenseCopyOf(pcm)
	for i := 0; i < k; i++ {
		target := targets[i]
		if target < 0 {
			return nil, errors.NewValueError("PruneCountMatrix",
				fmt.Sprintf("negative removal target %d for class %d", target, i))
		}
		if target > sCounts[i] {
			errors.Warn(errors.NewPruneClampWarning(i, i, target, sCounts[i]))
			target = sCounts[i]
		}

		offDiag := 0.0
		for j := 0; j < k; j++ {
			if j != i {
				offDiag += out.At(i, j)
			}
		}
		switch {
		case offDiag > 0:
			scale := float64(target) / offDiag
			for j := 0; j < k; j++ {
				if j != i {
					out.Set(i, j, out.At(i, j)*scale)
				}
			}
		case target > 0:
			// Nothing was estimated as noise for this class: spread the
			// requested removals uniformly over the other classes.
			uniform := float64(target) / float64(k-1)
			for j := 0; j < k; j++ {
				if j != i {
					out.Set(i, j, uniform)
				}
			}
		}
		out.Set(i, i, float64(sCounts[i]-target))
	}
	return util.RoundPreservingRowTotals(out), nil
}
