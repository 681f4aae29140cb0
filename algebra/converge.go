package algebra

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

// PyMethod selects how the true-label prior py is computed from the noisy
// prior and the two conditional matrices.
type PyMethod int

const (
	// PyMethodCnt scales ps by the ratio of self-label probabilities,
	// py[k] = P(y=k|s=k) / P(s=k|y=k) * ps[k]. Robust because it never
	// divides by an off-diagonal noise rate. The default.
	PyMethodCnt PyMethod = iota

	// PyMethodEqn solves noiseMatrix * py = ps exactly via matrix inverse.
	PyMethodEqn

	// PyMethodMarginal normalizes the confident per-true-class counts.
	// Requires trueCounts (the confident joint's column sums).
	PyMethodMarginal

	// PyMethodMarginalPs marginalizes the inverse noise matrix over ps,
	// py[k] = sum_s P(y=k|s) ps[s].
	PyMethodMarginalPs
)

// String returns the method name used in logs and errors.
func (m PyMethod) String() string {
	switch m {
	case PyMethodCnt:
		return "cnt"
	case PyMethodEqn:
		return "eqn"
	case PyMethodMarginal:
		return "marginal"
	case PyMethodMarginalPs:
		return "marginal_ps"
	default:
		return "unknown"
	}
}

// Default iteration counts for ConvergeEstimates. Three noise-matrix
// rounds of five inverse updates each is enough for the estimates to
// stabilize in practice without risking an unbounded loop.
const (
	DefaultInnerIterations = 5
	DefaultOuterIterations = 3
)

// ComputePy computes the true-label prior py from ps and the conditional
// matrices using the selected method. trueCounts is only consulted by
// PyMethodMarginal and may be nil otherwise. The result is clipped into
// [1e-5, 1] and renormalized so no class ends up with zero prior mass.
func ComputePy(ps []float64, noiseMatrix, invNoiseMatrix mat.Matrix, method PyMethod, trueCounts []float64) ([]float64, error) {
	k := len(ps)
	py := make([]float64, k)

	switch method {
	case PyMethodCnt:
		for i := 0; i < k; i++ {
			py[i] = errors.SafeDivide(invNoiseMatrix.At(i, i), noiseMatrix.At(i, i)) * ps[i]
		}

	case PyMethodEqn:
		var nmInv mat.Dense
		if err := nmInv.Inverse(noiseMatrix); err != nil {
			return nil, errors.Wrap(errors.ErrSingularMatrix, "solving noise_matrix * py = ps")
		}
		var pyVec mat.VecDense
		pyVec.MulVec(&nmInv, mat.NewVecDense(k, ps))
		copy(py, pyVec.RawVector().Data)

	case PyMethodMarginal:
		if trueCounts == nil {
			return nil, errors.NewValueError("ComputePy",
				"trueCounts is required when method is marginal")
		}
		total := 0.0
		for _, c := range trueCounts {
			total += c
		}
		for i := 0; i < k; i++ {
			py[i] = errors.SafeDivide(trueCounts[i], total)
		}

	case PyMethodMarginalPs:
		for y := 0; y < k; y++ {
			for s := 0; s < k; s++ {
				py[y] += invNoiseMatrix.At(y, s) * ps[s]
			}
		}

	default:
		return nil, errors.NewValueError("ComputePy", "unknown py method")
	}

	py = util.ClipValues(py, pyFloor, 1.0, 1.0)
	if err := errors.CheckNumericalStability("ComputePy", py, 0); err != nil {
		return nil, err
	}
	return py, nil
}

// ConvergeEstimates reconciles independently estimated latent quantities so
// they satisfy their closed-form relationships. The inner loop alternates
// recomputing the inverse noise matrix from py and py from the inverse; the
// outer loop then recomputes the noise matrix from the converged inverse.
// Iteration counts are bounded; pass zero or negative values to use the
// defaults. Inputs are not modified.
func ConvergeEstimates(ps, py []float64, noiseMatrix, invNoiseMatrix mat.Matrix, innerIters, outerIters int) ([]float64, *mat.Dense, *mat.Dense, error) {
	if innerIters <= 0 {
		innerIters = DefaultInnerIterations
	}
	if outerIters <= 0 {
		outerIters = DefaultOuterIterations
	}

	curPy := append([]float64(nil), py...)
	nm := mat.DenseCopyOf(noiseMatrix)
	inv := mat.DenseCopyOf(invNoiseMatrix)

	var err error
	for outer := 0; outer < outerIters; outer++ {
		for inner := 0; inner < innerIters; inner++ {
			inv = ComputeInvNoiseMatrix(curPy, nm, ps)
			curPy, err = ComputePy(ps, nm, inv, PyMethodCnt, nil)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "converge iteration %d", outer*innerIters+inner)
			}
		}
		nm = ComputeNoiseMatrixFromInverse(ps, inv, curPy)
	}

	return curPy, nm, inv, nil
}
