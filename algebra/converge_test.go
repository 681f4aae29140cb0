package algebra

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/pkg/errors"
)

func TestPyMethodString(t *testing.T) {
	tests := []struct {
		method PyMethod
		want   string
	}{
		{PyMethodCnt, "cnt"},
		{PyMethodEqn, "eqn"},
		{PyMethodMarginal, "marginal"},
		{PyMethodMarginalPs, "marginal_ps"},
		{PyMethod(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("PyMethod(%d).String() = %q, want %q", int(tt.method), got, tt.want)
		}
	}
}

// On inputs that already satisfy the latent algebra exactly, every py
// method recovers the same prior.
func TestComputePy_MethodsAgree(t *testing.T) {
	ps := []float64{0.6, 0.4}
	nm := mat.NewDense(2, 2, []float64{
		0.9, 0.2,
		0.1, 0.8,
	})
	inv := mat.NewDense(2, 2, []float64{
		6.0 / 7.0, 1.0 / 7.0,
		1.0 / 7.0, 6.0 / 7.0,
	})
	trueCounts := []float64{40, 30}

	wantPy := []float64{4.0 / 7.0, 3.0 / 7.0}

	tests := []struct {
		name       string
		method     PyMethod
		trueCounts []float64
	}{
		{"cnt", PyMethodCnt, nil},
		{"eqn", PyMethodEqn, nil},
		{"marginal", PyMethodMarginal, trueCounts},
		{"marginal_ps", PyMethodMarginalPs, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			py, err := ComputePy(ps, nm, inv, tt.method, tt.trueCounts)
			if err != nil {
				t.Fatalf("ComputePy() error = %v", err)
			}
			for i := range wantPy {
				if math.Abs(py[i]-wantPy[i]) > tol {
					t.Errorf("py[%d] = %v, want %v", i, py[i], wantPy[i])
				}
			}
		})
	}
}

func TestComputePy_MarginalRequiresCounts(t *testing.T) {
	ps := []float64{0.5, 0.5}
	nm := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.1, 0.9})
	inv := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.1, 0.9})

	_, err := ComputePy(ps, nm, inv, PyMethodMarginal, nil)
	if err == nil {
		t.Fatal("expected error when trueCounts is nil, got nil")
	}
	var valueErr *errors.ValueError
	if !errors.As(err, &valueErr) {
		t.Errorf("expected ValueError, got %T", err)
	}
}

func TestComputePy_ClipsToPositive(t *testing.T) {
	// A zero diagonal in the noise matrix would drive py negative or
	// undefined; the result must still be a valid positive prior.
	ps := []float64{0.7, 0.3}
	nm := mat.NewDense(2, 2, []float64{0.0, 0.4, 1.0, 0.6})
	inv := mat.NewDense(2, 2, []float64{0.2, 0.5, 0.8, 0.5})

	py, err := ComputePy(ps, nm, inv, PyMethodCnt, nil)
	if err != nil {
		t.Fatalf("ComputePy() error = %v", err)
	}

	sum := 0.0
	for i, v := range py {
		if v <= 0 {
			t.Errorf("py[%d] = %v, want strictly positive", i, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > tol {
		t.Errorf("sum(py) = %v, want 1.0", sum)
	}
}

// A consistent set of latent estimates is a fixed point: converging them
// changes nothing.
func TestConvergeEstimates_FixedPoint(t *testing.T) {
	ps := []float64{0.6, 0.4}
	py := []float64{4.0 / 7.0, 3.0 / 7.0}
	nm := mat.NewDense(2, 2, []float64{
		0.9, 0.2,
		0.1, 0.8,
	})
	inv := mat.NewDense(2, 2, []float64{
		6.0 / 7.0, 1.0 / 7.0,
		1.0 / 7.0, 6.0 / 7.0,
	})

	pyOut, nmOut, invOut, err := ConvergeEstimates(ps, py, nm, inv, 0, 0)
	if err != nil {
		t.Fatalf("ConvergeEstimates() error = %v", err)
	}

	for i := range py {
		if math.Abs(pyOut[i]-py[i]) > 1e-9 {
			t.Errorf("pyOut[%d] = %v, want %v", i, pyOut[i], py[i])
		}
	}
	matricesEqual(t, "noise_matrix", nmOut, nm, 1e-9)
	matricesEqual(t, "inverse_noise_matrix", invOut, inv, 1e-9)
}

// After convergence the outputs satisfy the Bayes relationship exactly:
// recomputing the inverse from the converged noise matrix and prior
// reproduces the converged inverse.
func TestConvergeEstimates_EnforcesConsistency(t *testing.T) {
	ps := []float64{0.55, 0.45}
	// Independently estimated matrices that do not satisfy Bayes with
	// each other, as raw confident-joint normalizations generally do not.
	nm := mat.NewDense(2, 2, []float64{
		0.85, 0.25,
		0.15, 0.75,
	})
	inv := mat.NewDense(2, 2, []float64{
		0.9, 0.2,
		0.1, 0.8,
	})
	py := []float64{0.5, 0.5}

	pyOut, nmOut, invOut, err := ConvergeEstimates(ps, py, nm, inv, 5, 3)
	if err != nil {
		t.Fatalf("ConvergeEstimates() error = %v", err)
	}

	recomputedInv := ComputeInvNoiseMatrix(pyOut, nmOut, ps)
	matricesEqual(t, "recomputed inverse", recomputedInv, invOut, 1e-9)

	sum := 0.0
	for _, v := range pyOut {
		sum += v
	}
	if math.Abs(sum-1.0) > tol {
		t.Errorf("sum(pyOut) = %v, want 1.0", sum)
	}
}

// Inputs must never be mutated by the convergence pass.
func TestConvergeEstimates_InputsUntouched(t *testing.T) {
	ps := []float64{0.6, 0.4}
	py := []float64{0.5, 0.5}
	nm := mat.NewDense(2, 2, []float64{0.9, 0.2, 0.1, 0.8})
	inv := mat.NewDense(2, 2, []float64{0.8, 0.1, 0.2, 0.9})

	nmCopy := mat.DenseCopyOf(nm)
	invCopy := mat.DenseCopyOf(inv)
	pyCopy := append([]float64(nil), py...)

	if _, _, _, err := ConvergeEstimates(ps, py, nm, inv, 2, 2); err != nil {
		t.Fatalf("ConvergeEstimates() error = %v", err)
	}

	matricesEqual(t, "noise_matrix input", nm, nmCopy, 0)
	matricesEqual(t, "inverse input", inv, invCopy, 0)
	for i := range py {
		if py[i] != pyCopy[i] {
			t.Errorf("py input mutated at %d", i)
		}
	}
}
