package estimation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/core/model"
)

// probeClassifier reads P(class 1) directly from the single feature column,
// so its probabilities are identical no matter how the folds fall.
type probeClassifier struct{}

func (p *probeClassifier) Fit(_ mat.Matrix, _ []int) error { return nil }

func (p *probeClassifier) Predict(X mat.Matrix) ([]int, error) {
	n, _ := X.Dims()
	preds := make([]int, n)
	for i := 0; i < n; i++ {
		if X.At(i, 0) > 0.5 {
			preds[i] = 1
		}
	}
	return preds, nil
}

func (p *probeClassifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	n, _ := X.Dims()
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x := X.At(i, 0)
		out.Set(i, 0, 1-x)
		out.Set(i, 1, x)
	}
	return out, nil
}

func (p *probeClassifier) Classes() []int { return []int{0, 1} }

func (p *probeClassifier) Clone() model.Classifier { return &probeClassifier{} }

// probeDataset returns 8 examples whose feature value is the probability of
// class 1. One example per class is mislabeled, and the thresholds work out
// to 0.7 and 0.675, so the confident joint is [[3 1] [1 3]].
func probeDataset() (*mat.Dense, []int) {
	X := mat.NewDense(8, 1, []float64{0.1, 0.2, 0.1, 0.8, 0.9, 0.7, 0.8, 0.3})
	s := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, s
}

func TestEstimatePyAndNoiseMatricesFromProbabilities(t *testing.T) {
	s, psx := fixtureLabelsAndProbabilities()

	py, noiseMatrix, invNoiseMatrix, cj, err := EstimatePyAndNoiseMatricesFromProbabilities(s, psx)
	if err != nil {
		t.Fatalf("EstimatePyAndNoiseMatricesFromProbabilities failed: %v", err)
	}

	wantCJ := [][]float64{
		{2, 1},
		{1, 2},
	}
	wantCond := [][]float64{
		{2.0 / 3.0, 1.0 / 3.0},
		{1.0 / 3.0, 2.0 / 3.0},
	}
	for i := range wantCJ {
		for j := range wantCJ[i] {
			if math.Abs(cj.At(i, j)-wantCJ[i][j]) > tol {
				t.Errorf("cj[%d][%d] = %v, want %v", i, j, cj.At(i, j), wantCJ[i][j])
			}
			if math.Abs(noiseMatrix.At(i, j)-wantCond[i][j]) > tol {
				t.Errorf("noiseMatrix[%d][%d] = %v, want %v", i, j, noiseMatrix.At(i, j), wantCond[i][j])
			}
			if math.Abs(invNoiseMatrix.At(i, j)-wantCond[i][j]) > tol {
				t.Errorf("invNoiseMatrix[%d][%d] = %v, want %v", i, j, invNoiseMatrix.At(i, j), wantCond[i][j])
			}
		}
	}
	for i, want := range []float64{0.5, 0.5} {
		if math.Abs(py[i]-want) > tol {
			t.Errorf("py[%d] = %v, want %v", i, py[i], want)
		}
	}
}

func TestEstimatePyNoiseMatricesAndCVPredProba(t *testing.T) {
	X, s := probeDataset()

	py, noiseMatrix, _, cj, psx, err := EstimatePyNoiseMatricesAndCVPredProba(X, s, &probeClassifier{}, 4, 3)
	if err != nil {
		t.Fatalf("EstimatePyNoiseMatricesAndCVPredProba failed: %v", err)
	}

	if math.Abs(psx.At(0, 0)-0.9) > tol || math.Abs(psx.At(0, 1)-0.1) > tol {
		t.Errorf("psx row 0 = [%v %v], want [0.9 0.1]", psx.At(0, 0), psx.At(0, 1))
	}

	wantCJ := [][]float64{
		{3, 1},
		{1, 3},
	}
	wantNM := [][]float64{
		{0.75, 0.25},
		{0.25, 0.75},
	}
	for i := range wantCJ {
		for j := range wantCJ[i] {
			if math.Abs(cj.At(i, j)-wantCJ[i][j]) > tol {
				t.Errorf("cj[%d][%d] = %v, want %v", i, j, cj.At(i, j), wantCJ[i][j])
			}
			if math.Abs(noiseMatrix.At(i, j)-wantNM[i][j]) > tol {
				t.Errorf("noiseMatrix[%d][%d] = %v, want %v", i, j, noiseMatrix.At(i, j), wantNM[i][j])
			}
		}
	}
	for i, want := range []float64{0.5, 0.5} {
		if math.Abs(py[i]-want) > tol {
			t.Errorf("py[%d] = %v, want %v", i, py[i], want)
		}
	}
}

func TestEstimateNoiseMatrices(t *testing.T) {
	X, s := probeDataset()

	noiseMatrix, invNoiseMatrix, err := EstimateNoiseMatrices(X, s, &probeClassifier{}, 4, 3)
	if err != nil {
		t.Fatalf("EstimateNoiseMatrices failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.25
			if i == j {
				want = 0.75
			}
			if math.Abs(noiseMatrix.At(i, j)-want) > tol {
				t.Errorf("noiseMatrix[%d][%d] = %v, want %v", i, j, noiseMatrix.At(i, j), want)
			}
			if math.Abs(invNoiseMatrix.At(i, j)-want) > tol {
				t.Errorf("invNoiseMatrix[%d][%d] = %v, want %v", i, j, invNoiseMatrix.At(i, j), want)
			}
		}
	}
}

func TestEstimateConfidentJointAndCVPredProba(t *testing.T) {
	X, s := probeDataset()

	cj, psx, err := EstimateConfidentJointAndCVPredProba(X, s, &probeClassifier{}, 4, 3)
	if err != nil {
		t.Fatalf("EstimateConfidentJointAndCVPredProba failed: %v", err)
	}

	rows, cols := psx.Dims()
	if rows != 8 || cols != 2 {
		t.Fatalf("psx dims = (%d, %d), want (8, 2)", rows, cols)
	}
	if total := mat.Sum(cj); total != 8 {
		t.Errorf("calibrated joint total = %v, want 8", total)
	}
}

func TestEstimateJoint(t *testing.T) {
	C := mat.NewDense(2, 2, []float64{
		2, 1,
		1, 2,
	})

	joint, err := EstimateJoint(nil, nil, C)
	if err != nil {
		t.Fatalf("EstimateJoint failed: %v", err)
	}

	want := [][]float64{
		{2.0 / 6.0, 1.0 / 6.0},
		{1.0 / 6.0, 2.0 / 6.0},
	}
	for i := range want {
		for j := range want[i] {
			if math.Abs(joint.At(i, j)-want[i][j]) > tol {
				t.Errorf("joint[%d][%d] = %v, want %v", i, j, joint.At(i, j), want[i][j])
			}
		}
	}
	if total := mat.Sum(joint); math.Abs(total-1) > tol {
		t.Errorf("joint total = %v, want 1", total)
	}
}

func TestEstimateJoint_FromProbabilities(t *testing.T) {
	s, psx := fixtureLabelsAndProbabilities()

	joint, err := EstimateJoint(s, psx, nil)
	if err != nil {
		t.Fatalf("EstimateJoint failed: %v", err)
	}
	if total := mat.Sum(joint); math.Abs(total-1) > tol {
		t.Errorf("joint total = %v, want 1", total)
	}
	if math.Abs(joint.At(0, 0)-2.0/6.0) > tol {
		t.Errorf("joint[0][0] = %v, want %v", joint.At(0, 0), 2.0/6.0)
	}
}

func TestEstimateJoint_RequiresInput(t *testing.T) {
	if _, err := EstimateJoint(nil, nil, nil); err == nil {
		t.Error("expected error when neither psx nor joint is supplied")
	}
}

func TestNumLabelErrors(t *testing.T) {
	s, psx := fixtureLabelsAndProbabilities()

	count, err := NumLabelErrors(s, psx)
	if err != nil {
		t.Fatalf("NumLabelErrors failed: %v", err)
	}
	if count != 2 {
		t.Errorf("NumLabelErrors = %d, want 2", count)
	}
}
