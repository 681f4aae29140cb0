package pruning

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/pkg/errors"
)

const tol = 1e-9

func checkCountMatrix(t *testing.T, name string, got, want *mat.Dense) {
	t.Helper()
	if !mat.EqualApprox(got, want, tol) {
		t.Errorf("%s mismatch:\ngot:\n%v\nwant:\n%v", name, mat.Formatted(got), mat.Formatted(want))
	}
}

// twelveEightLabels returns 12 examples labeled 0 followed by 8 labeled 1.
func twelveEightLabels() []int {
	s := make([]int, 20)
	for i := 12; i < 20; i++ {
		s[i] = 1
	}
	return s
}

func TestPruneCountMatrix_FromInverseNoiseMatrix(t *testing.T) {
	s := twelveEightLabels()
	psx := mat.NewDense(20, 2, nil)
	inv := mat.NewDense(2, 2, []float64{
		0.75, 0.25,
		0.25, 0.75,
	})

	pcm, err := PruneCountMatrix(s, psx, inv, nil, Options{CountMethod: InverseNMDotS})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// pcm[s][y] = inv[y][s] * count(s): [[0.75*12, 0.25*12], [0.25*8, 0.75*8]].
	want := mat.NewDense(2, 2, []float64{
		9, 3,
		2, 6,
	})
	checkCountMatrix(t, "pcm", pcm, want)
}

func TestPruneCountMatrix_FromConfidentJoint(t *testing.T) {
	s := make([]int, 24)
	for i := 16; i < 24; i++ {
		s[i] = 1
	}
	psx := mat.NewDense(24, 2, nil)
	joint := mat.NewDense(2, 2, []float64{
		6, 2,
		1, 3,
	})

	pcm, err := PruneCountMatrix(s, psx, nil, joint, Options{CountMethod: CalibrateConfidentJoint})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// The joint totals 12 over 24 examples, so every count doubles.
	want := mat.NewDense(2, 2, []float64{
		12, 4,
		2, 6,
	})
	checkCountMatrix(t, "pcm", pcm, want)
}

func TestPruneCountMatrix_EstimatesInverseWhenMissing(t *testing.T) {
	s := []int{0, 0, 0, 1, 1, 1}
	psx := mat.NewDense(6, 2, []float64{
		0.9, 0.1,
		0.8, 0.2,
		0.3, 0.7,
		0.2, 0.8,
		0.3, 0.7,
		0.7, 0.3,
	})

	pcm, err := PruneCountMatrix(s, psx, nil, nil, Options{
		CountMethod:         InverseNMDotS,
		MinExamplesPerClass: 1,
	})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// The confident joint for this fixture is [[2,1],[1,2]], which yields
	// inv = [[2/3,1/3],[1/3,2/3]] and hence pcm = inv^T * diag(counts).
	want := mat.NewDense(2, 2, []float64{
		2, 1,
		1, 2,
	})
	checkCountMatrix(t, "pcm", pcm, want)
}

func TestPruneCountMatrix_UnknownCountMethod(t *testing.T) {
	s := twelveEightLabels()
	psx := mat.NewDense(20, 2, nil)

	_, err := PruneCountMatrix(s, psx, nil, nil, Options{CountMethod: CountMethod(99)})
	if err == nil {
		t.Fatal("expected an error for an unknown count method")
	}
	var vErr *errors.ValueError
	if !errors.As(err, &vErr) {
		t.Errorf("error = %v, want *errors.ValueError", err)
	}
}

func TestKeepAtLeastNPerClass_RaisesDeficientDiagonal(t *testing.T) {
	pcm := mat.NewDense(3, 3, []float64{
		3, 4, 0,
		2, 10, 2,
		0, 1, 9,
	})

	got := KeepAtLeastNPerClass(pcm, 5, 1)

	// Row 0's diagonal rises from 3 to 5 and the deficit of 2 comes out of
	// its only nonzero off-diagonal entry. Rows 1 and 2 already keep enough.
	want := mat.NewDense(3, 3, []float64{
		5, 2, 0,
		2, 10, 2,
		0, 1, 9,
	})
	checkCountMatrix(t, "adjusted", got, want)
}

func TestKeepAtLeastNPerClass_ClampsOffDiagonalAtZero(t *testing.T) {
	pcm := mat.NewDense(2, 2, []float64{
		2, 2,
		0, 4,
	})

	got := KeepAtLeastNPerClass(pcm, 5, 1)

	// Raising row 0's diagonal by 3 exceeds the off-diagonal count of 2,
	// which clamps at zero instead of going negative.
	want := mat.NewDense(2, 2, []float64{
		5, 0,
		0, 5,
	})
	checkCountMatrix(t, "adjusted", got, want)
}

func TestKeepAtLeastNPerClass_FracNoise(t *testing.T) {
	tests := []struct {
		name      string
		pcm       *mat.Dense
		fracNoise float64
		want      *mat.Dense
	}{
		{
			name:      "halves noise counts exactly",
			pcm:       mat.NewDense(2, 2, []float64{8, 4, 2, 10}),
			fracNoise: 0.5,
			want:      mat.NewDense(2, 2, []float64{10, 2, 1, 11}),
		},
		{
			name:      "rounding keeps row totals",
			pcm:       mat.NewDense(2, 2, []float64{7, 3, 2, 8}),
			fracNoise: 0.5,
			want:      mat.NewDense(2, 2, []float64{8, 2, 1, 9}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeepAtLeastNPerClass(tt.pcm, 5, tt.fracNoise)
			checkCountMatrix(t, "adjusted", got, tt.want)

			rows, _ := got.Dims()
			for i := 0; i < rows; i++ {
				gotSum, wantSum := 0.0, 0.0
				for j := 0; j < rows; j++ {
					gotSum += got.At(i, j)
					wantSum += tt.pcm.At(i, j)
				}
				if gotSum != wantSum {
					t.Errorf("row %d total = %v, want %v", i, gotSum, wantSum)
				}
			}
		})
	}
}

func TestPruneCountMatrix_RemovalTargets(t *testing.T) {
	s := twelveEightLabels()
	psx := mat.NewDense(20, 2, nil)
	inv := mat.NewDense(2, 2, []float64{
		0.75, 0.25,
		0.25, 0.75,
	})

	pcm, err := PruneCountMatrix(s, psx, inv, nil, Options{
		CountMethod:         InverseNMDotS,
		NumToRemovePerClass: []int{5, 2},
	})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// Class 0 removes exactly 5 of its 12 examples, class 1 exactly 2 of 8.
	want := mat.NewDense(2, 2, []float64{
		7, 5,
		2, 6,
	})
	checkCountMatrix(t, "pcm", pcm, want)
}

func TestPruneCountMatrix_RemovalTargets_SpreadsWithoutEstimatedNoise(t *testing.T) {
	s := make([]int, 18)
	for i := 5; i < 11; i++ {
		s[i] = 1
	}
	for i := 11; i < 18; i++ {
		s[i] = 2
	}
	psx := mat.NewDense(18, 3, nil)
	joint := mat.NewDense(3, 3, []float64{
		5, 0, 0,
		0, 6, 0,
		0, 0, 7,
	})

	pcm, err := PruneCountMatrix(s, psx, nil, joint, Options{
		CountMethod:         CalibrateConfidentJoint,
		NumToRemovePerClass: []int{2, 0, 0},
	})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// Class 0 looks perfectly labeled, so the 2 requested removals spread
	// uniformly over the other classes.
	want := mat.NewDense(3, 3, []float64{
		3, 1, 1,
		0, 6, 0,
		0, 0, 7,
	})
	checkCountMatrix(t, "pcm", pcm, want)
}

func TestPruneCountMatrix_RemovalTargets_ClampToClassSize(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	s := twelveEightLabels()
	psx := mat.NewDense(20, 2, nil)
	inv := mat.NewDense(2, 2, []float64{
		0.75, 0.25,
		0.25, 0.75,
	})

	pcm, err := PruneCountMatrix(s, psx, inv, nil, Options{
		CountMethod:         InverseNMDotS,
		NumToRemovePerClass: []int{15, 2},
	})
	if err != nil {
		t.Fatalf("PruneCountMatrix failed: %v", err)
	}

	// Requesting 15 removals from a class of 12 clamps to 12, leaving the
	// diagonal empty.
	want := mat.NewDense(2, 2, []float64{
		0, 12,
		2, 6,
	})
	checkCountMatrix(t, "pcm", pcm, want)

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	var clamp *errors.PruneClampWarning
	if !errors.As(warnings[0], &clamp) {
		t.Fatalf("warning = %v, want *errors.PruneClampWarning", warnings[0])
	}
	if clamp.Requested != 15 || clamp.Available != 12 {
		t.Errorf("clamp = %d to %d, want 15 to 12", clamp.Requested, clamp.Available)
	}
}

func TestPruneCountMatrix_RemovalTargets_Validation(t *testing.T) {
	s := twelveEightLabels()
	psx := mat.NewDense(20, 2, nil)
	inv := mat.NewDense(2, 2, []float64{
		0.75, 0.25,
		0.25, 0.75,
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := PruneCountMatrix(s, psx, inv, nil, Options{
			CountMethod:         InverseNMDotS,
			NumToRemovePerClass: []int{1, 2, 3},
		})
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("error = %v, want *errors.DimensionError", err)
		}
	})

	t.Run("negative target", func(t *testing.T) {
		_, err := PruneCountMatrix(s, psx, inv, nil, Options{
			CountMethod:         InverseNMDotS,
			NumToRemovePerClass: []int{-1, 0},
		})
		var vErr *errors.ValueError
		if !errors.As(err, &vErr) {
			t.Errorf("error = %v, want *errors.ValueError", err)
		}
	})
}
