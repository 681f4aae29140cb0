package estimation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/crossval"
	"github.com/YuminosukeSato/cleango/pkg/errors"
)

// EstimatePyAndNoiseMatricesFromProbabilities estimates the latent prior py,
// the noise matrix, the inverse noise matrix and the confident joint from
// noisy labels and out-of-sample predicted probabilities.
func EstimatePyAndNoiseMatricesFromProbabilities(s []int, psx mat.Matrix, opts ...Option) ([]float64, *mat.Dense, *mat.Dense, *mat.Dense, error) {
	cj, err := ComputeConfidentJoint(s, psx, opts...)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	py, noiseMatrix, invNoiseMatrix, err := EstimateLatent(cj, s, opts...)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return py, noiseMatrix, invNoiseMatrix, cj, nil
}

// EstimateConfidentJointAndCVPredProba fits the prototype classifier with
// stratified cross-validation to obtain out-of-sample probabilities, then
// counts the confident joint from them. Returns (confidentJoint, psx).
func EstimateConfidentJointAndCVPredProba(X mat.Matrix, s []int, proto model.Prototype, nFolds int, seed int64, opts ...Option) (*mat.Dense, *mat.Dense, error) {
	psx, err := crossval.EstimateCVPredictedProbabilities(X, s, proto, nFolds, seed)
	if err != nil {
		return nil, nil, err
	}
	cj, err := ComputeConfidentJoint(s, psx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cj, psx, nil
}

// EstimatePyNoiseMatricesAndCVPredProba runs the full estimation pipeline
// from raw data: cross-validated probabilities, confident joint, then the
// latent estimates. Returns (py, noiseMatrix, invNoiseMatrix,
// confidentJoint, psx).
func EstimatePyNoiseMatricesAndCVPredProba(X mat.Matrix, s []int, proto model.Prototype, nFolds int, seed int64, opts ...Option) ([]float64, *mat.Dense, *mat.Dense, *mat.Dense, *mat.Dense, error) {
	cj, psx, err := EstimateConfidentJointAndCVPredProba(X, s, proto, nFolds, seed, opts...)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	py, noiseMatrix, invNoiseMatrix, err := EstimateLatent(cj, s, opts...)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return py, noiseMatrix, invNoiseMatrix, cj, psx, nil
}

// EstimateNoiseMatrices estimates only the noise matrix and the inverse
// noise matrix from raw data.
func EstimateNoiseMatrices(X mat.Matrix, s []int, proto model.Prototype, nFolds int, seed int64, opts ...Option) (*mat.Dense, *mat.Dense, error) {
	_, noiseMatrix, invNoiseMatrix, _, _, err := EstimatePyNoiseMatricesAndCVPredProba(X, s, proto, nFolds, seed, opts...)
	if err != nil {
		return nil, nil, err
	}
	return noiseMatrix, invNoiseMatrix, nil
}

// EstimateJoint returns the joint distribution P(s, y) as a K x K matrix of
// probabilities summing to 1. When C is nil the calibrated confident joint
// is computed from (s, psx) first.
func EstimateJoint(s []int, psx mat.Matrix, C mat.Matrix) (*mat.Dense, error) {
	if C == nil {
		if psx == nil {
			return nil, errors.NewValidationError("psx",
				"either psx or a confident joint is required", nil)
		}
		var err error
		C, err = ComputeConfidentJoint(s, psx)
		if err != nil {
			return nil, err
		}
	}
	joint := mat.DenseCopyOf(C)
	total := mat.Sum(joint)
	if total > 0 {
		joint.Scale(1/total, joint)
	}
	return joint, nil
}

// NumLabelErrors estimates how many examples are mislabeled: the
// off-diagonal mass of the calibrated confident joint.
func NumLabelErrors(s []int, psx mat.Matrix) (int, error) {
	cj, err := ComputeConfidentJoint(s, psx)
	if err != nil {
		return 0, err
	}
	return int(mat.Sum(cj) - mat.Trace(cj)), nil
}
