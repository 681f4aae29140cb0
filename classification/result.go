package classification

import (
	"gonum.org/v1/gonum/mat"
)

// FitResult is the immutable record of everything a fit estimated. It is
// returned by Fit and retained by the orchestrator; callers must not mutate
// the contained slices and matrices.
type FitResult struct {
	// NoiseMask marks the examples estimated to be label errors. Its
	// length equals the number of training examples.
	NoiseMask []bool

	// SortedIndices lists the flagged examples ordered most severe first.
	// Populated only when the fit used WithSortedIndexMethod.
	SortedIndices []int

	// SampleWeight holds the per-example weights used for the final fit,
	// aligned with the kept (unpruned) training set. Nil when the wrapped
	// classifier does not accept weights.
	SampleWeight []float64

	// Ps is the observed noisy-label prior P(s).
	Ps []float64

	// Py is the estimated true-label prior P(y).
	Py []float64

	// NoiseMatrix is P(s|y), columns summing to 1.
	NoiseMatrix *mat.Dense

	// InverseNoiseMatrix is P(y|s), columns summing to 1.
	InverseNoiseMatrix *mat.Dense

	// ConfidentJoint holds the confident count matrix, or nil when the
	// fit path never counted one.
	ConfidentJoint *mat.Dense

	// PrunedCount is the number of examples removed before the final fit.
	PrunedCount int

	// NumClasses is K, the number of distinct label values.
	NumClasses int
}

// estimationMode captures which latent inputs the caller supplied, resolved
// once at the start of a fit.
type estimationMode int

const (
	// modeEstimateAll estimates everything from labels and probabilities.
	modeEstimateAll estimationMode = iota

	// modeFromNoiseMatrix derives py and the inverse from a supplied P(s|y).
	modeFromNoiseMatrix

	// modeFromInverse derives the noise matrix from a supplied P(y|s).
	modeFromInverse

	// modeBothGiven skips matrix estimation entirely.
	modeBothGiven
)

func (m estimationMode) String() string {
	switch m {
	case modeEstimateAll:
		return "estimate_all"
	case modeFromNoiseMatrix:
		return "from_noise_matrix"
	case modeFromInverse:
		return "from_inverse_noise_matrix"
	case modeBothGiven:
		return "both_given"
	default:
		return "unknown"
	}
}

func resolveEstimationMode(cfg fitConfig) estimationMode {
	switch {
	case cfg.noiseMatrix != nil && cfg.invNoiseMatrix != nil:
		return modeBothGiven
	case cfg.noiseMatrix != nil:
		return modeFromNoiseMatrix
	case cfg.invNoiseMatrix != nil:
		return modeFromInverse
	default:
		return modeEstimateAll
	}
}
