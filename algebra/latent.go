// Package algebra implements the latent algebra relating the confident
// joint, the class priors ps and py, the noise matrix P(s|y), and the
// inverse noise matrix P(y|s).
//
// Matrix orientation is fixed throughout the module: the confident joint C
// has rows indexed by the noisy label s and columns by the latent true
// label y. Conditional matrices are column-stochastic, so P(s|y) holds one
// conditional distribution over s per true class y in each column, and
// P(y|s) one distribution over y per noisy class s.
//
// Every conditional matrix accepted or produced here must have trace
// greater than 1. A trace at or below 1 means the noisy labels carry no
// more signal than uniform guessing, which violates the method's core
// assumption and fails fast rather than being clamped.
package algebra

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

// columnSumTol bounds how far each column of a conditional matrix may
// drift from summing to exactly 1.
const columnSumTol = 1e-6

// pyFloor keeps every estimated class prior strictly positive.
const pyFloor = 1e-5

// ValidateConditional checks that m is a square column-stochastic
// conditional matrix with trace above 1. name identifies the matrix in
// error messages ("noise_matrix" or "inverse_noise_matrix").
func ValidateConditional(name string, m mat.Matrix) error {
	r, c := m.Dims()
	if r != c {
		return errors.NewDimensionError("ValidateConditional", r, c, 1)
	}

	for j, sum := range util.ColumnSums(m) {
		if sum < 1-columnSumTol || sum > 1+columnSumTol {
			return errors.NewValidationError(name,
				fmt.Sprintf("column %d must sum to 1, got %.6f", j, sum), sum)
		}
	}

	if trace := mat.Trace(m); trace <= 1 {
		return errors.NewNoiseTraceError(name, trace)
	}
	return nil
}

// NoiseMatrixFromConfidentJoint converts confident-joint counts into the
// noise matrix P(s|y) by normalizing each true-class column. A class with
// no confidently counted members yields a degenerate zero column; it is
// recovered as a clean identity column and reported through the warning
// handler rather than aborting the fit.
func NoiseMatrixFromConfidentJoint(C mat.Matrix) *mat.Dense {
	k, _ := C.Dims()
	nm := mat.NewDense(k, k, nil)

	colSums := util.ColumnSums(C)
	for y := 0; y < k; y++ {
		if colSums[y] <= 0 {
			errors.Warn(errors.NewDegenerateClassWarning(y, "noise matrix",
				"no examples confidently counted into this true class"))
			nm.Set(y, y, 1)
			continue
		}
		for s := 0; s < k; s++ {
			nm.Set(s, y, C.At(s, y)/colSums[y])
		}
	}
	return nm
}

// InvNoiseMatrixFromConfidentJoint converts confident-joint counts into the
// inverse noise matrix P(y|s) by normalizing each noisy-class row of C and
// transposing. A noisy class with no confident members becomes an identity
// column with a warning, mirroring NoiseMatrixFromConfidentJoint.
func InvNoiseMatrixFromConfidentJoint(C mat.Matrix) *mat.Dense {
	k, _ := C.Dims()
	inv := mat.NewDense(k, k, nil)

	rowSums := util.RowSums(C)
	for s := 0; s < k; s++ {
		if rowSums[s] <= 0 {
			errors.Warn(errors.NewDegenerateClassWarning(s, "inverse noise matrix",
				"no examples confidently counted for this noisy class"))
			inv.Set(s, s, 1)
			continue
		}
		for y := 0; y < k; y++ {
			inv.Set(y, s, C.At(s, y)/rowSums[s])
		}
	}
	return inv
}

// ComputePyInvNoiseMatrix derives the true-label prior py and the inverse
// noise matrix P(y|s) from the noisy prior ps and the noise matrix P(s|y).
// py solves noiseMatrix * py = ps, then is clipped into [1e-5, 1] and
// renormalized to guard against small negative components introduced by
// estimation error. Fails if the noise matrix is singular.
func ComputePyInvNoiseMatrix(ps []float64, noiseMatrix mat.Matrix) ([]float64, *mat.Dense, error) {
	k, c := noiseMatrix.Dims()
	if k != c {
		return nil, nil, errors.NewDimensionError("ComputePyInvNoiseMatrix", k, c, 1)
	}
	if len(ps) != k {
		return nil, nil, errors.NewDimensionError("ComputePyInvNoiseMatrix", k, len(ps), 0)
	}

	var nmInv mat.Dense
	if err := nmInv.Inverse(noiseMatrix); err != nil {
		return nil, nil, errors.Wrap(errors.ErrSingularMatrix, "inverting noise matrix for py")
	}

	var pyVec mat.VecDense
	pyVec.MulVec(&nmInv, mat.NewVecDense(k, ps))

	py := util.ClipValues(pyVec.RawVector().Data, pyFloor, 1.0, 1.0)
	if err := errors.CheckNumericalStability("ComputePyInvNoiseMatrix", py, 0); err != nil {
		return nil, nil, err
	}

	return py, ComputeInvNoiseMatrix(py, noiseMatrix, ps), nil
}

// ComputeInvNoiseMatrix derives P(y|s) from py and the noise matrix by
// definition: P(y|s) = P(s,y) / P(s) with P(s,y) = P(s|y) P(y). When ps is
// nil the marginal P(s) is taken from the joint's row sums.
func ComputeInvNoiseMatrix(py []float64, noiseMatrix mat.Matrix, ps []float64) *mat.Dense {
	k, _ := noiseMatrix.Dims()

	// joint[s][y] = P(s|y) P(y)
	joint := mat.NewDense(k, k, nil)
	for s := 0; s < k; s++ {
		for y := 0; y < k; y++ {
			joint.Set(s, y, noiseMatrix.At(s, y)*py[y])
		}
	}

	if ps == nil {
		ps = util.RowSums(joint)
	}

	inv := mat.NewDense(k, k, nil)
	for y := 0; y < k; y++ {
		for s := 0; s < k; s++ {
			inv.Set(y, s, errors.SafeDivide(joint.At(s, y), ps[s]))
		}
	}
	return inv
}

// ComputeNoiseMatrixFromInverse is the reverse direction: derive P(s|y)
// from ps and P(y|s) via P(s|y) = P(s,y) / P(y) with P(s,y) = P(y|s) P(s).
// When py is nil the marginal P(y) is taken from the joint's row sums.
func ComputeNoiseMatrixFromInverse(ps []float64, invNoiseMatrix mat.Matrix, py []float64) *mat.Dense {
	k, _ := invNoiseMatrix.Dims()

	// joint[y][s] = P(y|s) P(s)
	joint := mat.NewDense(k, k, nil)
	for y := 0; y < k; y++ {
		for s := 0; s < k; s++ {
			joint.Set(y, s, invNoiseMatrix.At(y, s)*ps[s])
		}
	}

	if py == nil {
		py = util.RowSums(joint)
	}

	nm := mat.NewDense(k, k, nil)
	for s := 0; s < k; s++ {
		for y := 0; y < k; y++ {
			nm.Set(s, y, errors.SafeDivide(joint.At(y, s), py[y]))
		}
	}
	return nm
}
