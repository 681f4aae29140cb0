// Package classification provides CleanLearning, the noise-robust training
// orchestrator. A fit estimates which training labels are wrong from
// out-of-sample predicted probabilities, prunes the suspect examples, and
// fits the wrapped classifier once on the cleaned, reweighted data.
package classification

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/algebra"
	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/crossval"
	"github.com/YuminosukeSato/cleango/estimation"
	"github.com/YuminosukeSato/cleango/linear_model"
	"github.com/YuminosukeSato/cleango/metrics"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/pkg/log"
	"github.com/YuminosukeSato/cleango/pruning"
	"github.com/YuminosukeSato/cleango/util"
)

// CleanLearning trains a classifier on data with noisy labels. It moves
// through a single state transition, unfit to fit, and afterwards delegates
// prediction to the wrapped classifier.
type CleanLearning struct {
	state *model.StateManager

	clf                     model.Prototype
	seed                    int64
	cvFolds                 int
	pruneMethod             pruning.Method
	countMethod             pruning.CountMethod
	fracNoise               float64
	numToRemovePerClass     []int
	convergeLatentEstimates bool
	pyMethod                algebra.PyMethod
	puLearning              int

	result *FitResult
}

var (
	_ model.Predictor = (*CleanLearning)(nil)
	_ model.Scorer    = (*CleanLearning)(nil)
)

// NewCleanLearning builds an orchestrator. Without WithClassifier it wraps
// a logistic regression seeded with the orchestrator's seed.
func NewCleanLearning(opts ...Option) *CleanLearning {
	c := &CleanLearning{
		state:      model.NewStateManager(),
		cvFolds:    5,
		fracNoise:  1.0,
		pyMethod:   algebra.PyMethodCnt,
		puLearning: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clf == nil {
		c.clf = linear_model.NewLogisticRegression(linear_model.WithSeed(c.seed))
	}
	return c
}

// Fit estimates label noise in (X, s), prunes the examples flagged as label
// errors, and fits the wrapped classifier exactly once on the remainder.
// FitOptions supply any precomputed inputs; whatever is missing is estimated.
// The returned FitResult is also retained and available through Result.
func (c *CleanLearning) Fit(X mat.Matrix, s []int, opts ...FitOption) (*FitResult, error) {
	cfg := newFitConfig(opts)

	n, d := X.Dims()
	if len(s) != n {
		return nil, errors.NewDimensionError("CleanLearning.Fit", n, len(s), 0)
	}
	if n == 0 {
		return nil, errors.NewValidationError("s", "requires at least one example", n)
	}
	for i, label := range s {
		if label < 0 {
			return nil, errors.NewValidationError("s",
				fmt.Sprintf("negative label at index %d", i), label)
		}
	}
	k := util.NumClasses(s)
	if k < 2 {
		return nil, errors.NewValidationError("s", "requires at least 2 distinct classes", k)
	}

	if cfg.psx != nil {
		if err := estimation.ValidateLabelsAndProbabilities(s, cfg.psx); err != nil {
			return nil, err
		}
	}
	if cfg.thresholds != nil && len(cfg.thresholds) != k {
		return nil, errors.NewDimensionError("CleanLearning.Fit", k, len(cfg.thresholds), 1)
	}
	if c.puLearning >= k {
		return nil, errors.NewValidationError("pulearning",
			fmt.Sprintf("class must be in {0..%d}", k-1), c.puLearning)
	}

	// Statistical preconditions on supplied matrices come before any
	// estimation work so inconsistent noise information fails immediately.
	if cfg.noiseMatrix != nil {
		if err := validateSuppliedConditional("noise_matrix", cfg.noiseMatrix, k); err != nil {
			return nil, err
		}
	}
	if cfg.invNoiseMatrix != nil {
		if err := validateSuppliedConditional("inverse_noise_matrix", cfg.invNoiseMatrix, k); err != nil {
			return nil, err
		}
	}

	sCounts := util.ValueCounts(s, k)
	if cfg.psx == nil {
		for class, count := range sCounts {
			if count < c.cvFolds {
				return nil, errors.NewValidationError("s",
					fmt.Sprintf("class %d has %d examples, fewer than %d cross-validation folds",
						class, count, c.cvFolds), count)
			}
		}
	}

	ps := make([]float64, k)
	for class, count := range sCounts {
		ps[class] = float64(count) / float64(n)
	}

	mode := resolveEstimationMode(cfg)
	logger := log.GetLoggerWithName("cleango.classification")
	logger.Debug("Fitting with label noise estimation",
		log.OperationKey, log.OperationFit,
		log.EstimationModeKey, mode.String(),
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.ClassesKey, k)

	var (
		py      []float64
		nm, inv *mat.Dense
		cj      *mat.Dense
		psx     = cfg.psx
		err     error
	)
	estOpts := c.estimationOptions(cfg)

	switch mode {
	case modeEstimateAll:
		if psx == nil {
			var psxDense *mat.Dense
			py, nm, inv, cj, psxDense, err = estimation.EstimatePyNoiseMatricesAndCVPredProba(
				X, s, c.clf, c.cvFolds, c.seed, estOpts...)
			psx = psxDense
		} else {
			py, nm, inv, cj, err = estimation.EstimatePyAndNoiseMatricesFromProbabilities(s, psx, estOpts...)
		}
	case modeFromNoiseMatrix:
		nm = mat.DenseCopyOf(cfg.noiseMatrix)
		py, inv, err = algebra.ComputePyInvNoiseMatrix(ps, nm)
	case modeFromInverse:
		inv = mat.DenseCopyOf(cfg.invNoiseMatrix)
		nm = algebra.ComputeNoiseMatrixFromInverse(ps, inv, nil)
		py, err = algebra.ComputePy(ps, nm, inv, algebra.PyMethodMarginalPs, nil)
	case modeBothGiven:
		nm = mat.DenseCopyOf(cfg.noiseMatrix)
		inv = mat.DenseCopyOf(cfg.invNoiseMatrix)
		py, err = algebra.ComputePy(ps, nm, inv, algebra.PyMethodMarginalPs, nil)
	}
	if err != nil {
		return nil, err
	}

	if psx == nil {
		psx, err = crossval.EstimateCVPredictedProbabilities(X, s, c.clf, c.cvFolds, c.seed)
		if err != nil {
			return nil, err
		}
	}

	// The calibrated-count prune method needs a confident joint; count one
	// here so supplied thresholds are honored on every path.
	if cj == nil && c.countMethod == pruning.CalibrateConfidentJoint {
		cj, err = estimation.ComputeConfidentJoint(s, psx, estOpts...)
		if err != nil {
			return nil, err
		}
	}

	if c.puLearning >= 0 {
		nm = util.RemoveNoiseFromClass(nm, c.puLearning)
		inv = util.RemoveNoiseFromClass(inv, c.puLearning)
		if cj != nil {
			zeroClassNoiseCounts(cj, c.puLearning)
		}
	}

	var cjArg mat.Matrix
	if cj != nil {
		cjArg = cj
	}
	mask, err := pruning.GetNoiseIndices(s, psx, inv, cjArg, pruning.Options{
		Method:                  c.pruneMethod,
		CountMethod:             c.countMethod,
		FracNoise:               c.fracNoise,
		NumToRemovePerClass:     c.numToRemovePerClass,
		ConvergeLatentEstimates: c.convergeLatentEstimates,
	})
	if err != nil {
		return nil, err
	}

	xPruned, sPruned := prunedTrainingSet(X, s, mask)
	if len(sPruned) == 0 {
		return nil, errors.NewValueError("CleanLearning.Fit",
			"every example was flagged as a label error")
	}

	// Exactly one final fit on the cleaned data, weighted by the inverse
	// self-label probability when the classifier supports weights.
	var sampleWeight []float64
	if weighted, ok := c.clf.(model.WeightedFitter); ok {
		sampleWeight = make([]float64, len(sPruned))
		perClass := make([]float64, k)
		for class := 0; class < k; class++ {
			w := errors.SafeDivide(1, nm.At(class, class))
			if w == 0 {
				w = 1
			}
			perClass[class] = w
		}
		for i, label := range sPruned {
			sampleWeight[i] = perClass[label]
		}
		err = weighted.FitWeighted(xPruned, sPruned, sampleWeight)
	} else {
		err = c.clf.Fit(xPruned, sPruned)
	}
	if err != nil {
		return nil, err
	}

	var sortedIndices []int
	if cfg.rankErrors {
		sortedIndices = pruning.OrderLabelErrors(mask, psx, s, cfg.rankMethod)
	}

	pruned := len(s) - len(sPruned)
	nmTrace := 0.0
	for class := 0; class < k; class++ {
		nmTrace += nm.At(class, class)
	}
	logger.Debug("Fit complete",
		log.OperationKey, log.OperationFit,
		log.EstimationModeKey, mode.String(),
		log.PruneMethodKey, c.pruneMethod.String(),
		log.PrunedKey, pruned,
		log.PruneFractionKey, float64(pruned)/float64(n),
		log.NoiseTraceKey, nmTrace)

	c.result = &FitResult{
		NoiseMask:          mask,
		SortedIndices:      sortedIndices,
		SampleWeight:       sampleWeight,
		Ps:                 ps,
		Py:                 py,
		NoiseMatrix:        nm,
		InverseNoiseMatrix: inv,
		ConfidentJoint:     cj,
		PrunedCount:        pruned,
		NumClasses:         k,
	}
	c.state.SetDimensions(d, len(sPruned))
	c.state.SetNumClasses(k)
	c.state.SetFitted()
	return c.result, nil
}

// Predict delegates to the wrapped classifier.
func (c *CleanLearning) Predict(X mat.Matrix) ([]int, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("CleanLearning", "Predict")
	}
	return c.clf.Predict(X)
}

// PredictProba delegates to the wrapped classifier.
func (c *CleanLearning) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("CleanLearning", "PredictProba")
	}
	return c.clf.PredictProba(X)
}

// Score returns the wrapped classifier's own score when it has one, and
// falls back to plain accuracy otherwise.
func (c *CleanLearning) Score(X mat.Matrix, y []int) (float64, error) {
	if !c.state.IsFitted() {
		return 0, errors.NewNotFittedError("CleanLearning", "Score")
	}
	if scorer, ok := c.clf.(model.Scorer); ok {
		return scorer.Score(X, y)
	}
	predictions, err := c.clf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, predictions)
}

// Classes returns the wrapped classifier's class labels.
func (c *CleanLearning) Classes() []int {
	return c.clf.Classes()
}

// Result returns the record of the last fit, or nil before fitting.
func (c *CleanLearning) Result() *FitResult {
	return c.result
}

// Classifier exposes the wrapped, fitted classifier.
func (c *CleanLearning) Classifier() model.Classifier {
	return c.clf
}

func (c *CleanLearning) estimationOptions(cfg fitConfig) []estimation.Option {
	opts := []estimation.Option{
		estimation.WithConvergence(c.convergeLatentEstimates),
		estimation.WithPyMethod(c.pyMethod),
	}
	if cfg.thresholds != nil {
		opts = append(opts, estimation.WithThresholds(cfg.thresholds))
	}
	return opts
}

func validateSuppliedConditional(name string, m mat.Matrix, k int) error {
	r, c := m.Dims()
	if r != k || c != k {
		return errors.NewDimensionError("CleanLearning.Fit", k, r, 1)
	}
	return algebra.ValidateConditional(name, m)
}

// zeroClassNoiseCounts zeroes the off-diagonal counts in the given class's
// row and column of a confident joint, leaving its diagonal count intact.
func zeroClassNoiseCounts(cj *mat.Dense, class int) {
	k, _ := cj.Dims()
	for j := 0; j < k; j++ {
		if j != class {
			cj.Set(class, j, 0)
			cj.Set(j, class, 0)
		}
	}
}

func prunedTrainingSet(X mat.Matrix, s []int, mask []bool) (*mat.Dense, []int) {
	_, d := X.Dims()
	kept := make([]int, 0, len(s))
	for i, isNoise := range mask {
		if !isNoise {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	xPruned := mat.NewDense(len(kept), d, nil)
	sPruned := make([]int, len(kept))
	for row, idx := range kept {
		for j := 0; j < d; j++ {
			xPruned.Set(row, j, X.At(idx, j))
		}
		sPruned[row] = s[idx]
	}
	return xPruned, sPruned
}
