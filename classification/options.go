package classification

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/algebra"
	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/pruning"
)

// Option configures a CleanLearning instance at construction time.
type Option func(*CleanLearning)

// WithClassifier sets the wrapped classifier. It must support cloning so
// cross-validation can fit an identical model per fold. Defaults to
// logistic regression when unset.
func WithClassifier(clf model.Prototype) Option {
	return func(c *CleanLearning) {
		c.clf = clf
	}
}

// WithSeed fixes the seed threaded through fold shuffling and the default
// classifier. The same seed reproduces the same fit.
func WithSeed(seed int64) Option {
	return func(c *CleanLearning) {
		c.seed = seed
	}
}

// WithCVFolds sets the number of stratified cross-validation folds used to
// estimate out-of-sample predicted probabilities. Defaults to 5.
func WithCVFolds(folds int) Option {
	return func(c *CleanLearning) {
		c.cvFolds = folds
	}
}

// WithPruneMethod selects the pruning strategy.
func WithPruneMethod(method pruning.Method) Option {
	return func(c *CleanLearning) {
		c.pruneMethod = method
	}
}

// WithPruneCountMethod selects how per-class prune counts are derived.
func WithPruneCountMethod(method pruning.CountMethod) Option {
	return func(c *CleanLearning) {
		c.countMethod = method
	}
}

// WithFracNoise scales the fraction of estimated noise that is pruned.
// Values in (0, 1] prune proportionally fewer examples; 1 prunes all
// estimated label errors.
func WithFracNoise(frac float64) Option {
	return func(c *CleanLearning) {
		c.fracNoise = frac
	}
}

// WithNumToRemovePerClass overrides the estimated per-class prune counts
// with explicit removal targets, indexed by noisy class.
func WithNumToRemovePerClass(counts []int) Option {
	return func(c *CleanLearning) {
		c.numToRemovePerClass = counts
	}
}

// WithConvergeLatentEstimates enables the fixed-point refinement of the
// latent estimates after counting.
func WithConvergeLatentEstimates(converge bool) Option {
	return func(c *CleanLearning) {
		c.convergeLatentEstimates = converge
	}
}

// WithPyMethod selects how the true-label prior is computed during
// estimation.
func WithPyMethod(method algebra.PyMethod) Option {
	return func(c *CleanLearning) {
		c.pyMethod = method
	}
}

// WithPULearning marks one class as perfectly labeled. Noise into and out
// of that class is forced to zero before pruning, so none of its examples
// are ever flagged. Pass a negative class to disable (the default).
func WithPULearning(class int) Option {
	return func(c *CleanLearning) {
		c.puLearning = class
	}
}

// FitOption supplies precomputed inputs to a single Fit call.
type FitOption func(*fitConfig)

type fitConfig struct {
	psx            mat.Matrix
	thresholds     []float64
	noiseMatrix    mat.Matrix
	invNoiseMatrix mat.Matrix

	rankErrors bool
	rankMethod pruning.RankMethod
}

func newFitConfig(opts []FitOption) fitConfig {
	var cfg fitConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPsx supplies out-of-sample predicted probabilities, skipping the
// cross-validation step entirely.
func WithPsx(psx mat.Matrix) FitOption {
	return func(cfg *fitConfig) {
		cfg.psx = psx
	}
}

// WithThresholds supplies per-class confidence thresholds used whenever the
// confident joint is counted during the fit.
func WithThresholds(thresholds []float64) FitOption {
	return func(cfg *fitConfig) {
		cfg.thresholds = thresholds
	}
}

// WithNoiseMatrix supplies a known P(s|y). Columns must sum to 1 and the
// trace must exceed 1.
func WithNoiseMatrix(noiseMatrix mat.Matrix) FitOption {
	return func(cfg *fitConfig) {
		cfg.noiseMatrix = noiseMatrix
	}
}

// WithInverseNoiseMatrix supplies a known P(y|s). Columns must sum to 1 and
// the trace must exceed 1.
func WithInverseNoiseMatrix(invNoiseMatrix mat.Matrix) FitOption {
	return func(cfg *fitConfig) {
		cfg.invNoiseMatrix = invNoiseMatrix
	}
}

// WithSortedIndexMethod additionally orders the flagged label errors by the
// given severity score and exposes them as FitResult.SortedIndices.
func WithSortedIndexMethod(method pruning.RankMethod) FitOption {
	return func(cfg *fitConfig) {
		cfg.rankErrors = true
		cfg.rankMethod = method
	}
}
