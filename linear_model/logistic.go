// Package linear_model implements the gradient descent logistic regression
// used as the default classifier for label noise estimation. It supports
// per-sample weights so a pruned dataset can be refit with class-dependent
// loss reweighting.
package linear_model

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/pkg/errors"
)

// LogisticRegression is a binary and one-vs-rest multiclass classifier
// trained by batch gradient descent with L2 regularization.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // inverse regularization strength
	fitIntercept bool
	maxIter      int
	tol          float64
	seed         int64

	// Learned parameters
	coef      [][]float64 // one weight vector for binary, one per class otherwise
	intercept []float64
	classes   []int
	nFeatures int

	rng *rand.Rand
}

var (
	_ model.Prototype      = (*LogisticRegression)(nil)
	_ model.WeightedFitter = (*LogisticRegression)(nil)
	_ model.Scorer         = (*LogisticRegression)(nil)
)

// Option configures a LogisticRegression.
type Option func(*LogisticRegression)

// WithC sets the inverse regularization strength. Larger values regularize
// less; math.Inf(1) disables regularization entirely.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithFitIntercept controls whether an intercept term is learned.
func WithFitIntercept(fit bool) Option {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithMaxIter sets the maximum number of gradient descent iterations.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the gradient infinity-norm threshold that stops training.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithSeed fixes the seed for weight initialization. Negative seeds draw
// from the global source.
func WithSeed(seed int64) Option {
	return func(lr *LogisticRegression) {
		lr.seed = seed
	}
}

// NewLogisticRegression creates a LogisticRegression with the given options.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
		seed:         -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.seed >= 0 {
		lr.rng = rand.New(rand.NewPCG(uint64(lr.seed), uint64(lr.seed)))
	} else {
		lr.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return lr
}

// Fit trains the model on X with one integer class label per row.
func (lr *LogisticRegression) Fit(X mat.Matrix, y []int) error {
	return lr.FitWeighted(X, y, nil)
}

// FitWeighted trains the model with a nonnegative weight per sample. A nil
// sampleWeight weighs every sample equally.
func (lr *LogisticRegression) FitWeighted(X mat.Matrix, y []int, sampleWeight []float64) error {
	nSamples, nFeatures := X.Dims()
	if nSamples != len(y) {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(y), 0)
	}
	if nSamples == 0 {
		return errors.NewValidationError("X", "must contain at least one sample", nSamples)
	}
	if sampleWeight != nil {
		if len(sampleWeight) != nSamples {
			return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(sampleWeight), 0)
		}
		total := 0.0
		for i, w := range sampleWeight {
			if w < 0 {
				return errors.NewValidationError("sampleWeight",
					"weights must be nonnegative", i)
			}
			total += w
		}
		if total <= 0 {
			return errors.NewValidationError("sampleWeight",
				"weights must have a positive total", total)
		}
	}

	lr.classes = uniqueSortedLabels(y)
	if len(lr.classes) < 2 {
		return errors.NewValidationError("y",
			"requires at least 2 distinct classes", len(lr.classes))
	}
	lr.nFeatures = nFeatures
	lr.initializeWeights(nFeatures)

	targets := make([]float64, nSamples)
	if len(lr.classes) == 2 {
		fillTargets(targets, y, lr.classes[1])
		lr.fitColumn(X, targets, sampleWeight, 0)
	} else {
		// One-vs-rest: an independent sigmoid per class.
		for classIdx, class := range lr.classes {
			fillTargets(targets, y, class)
			lr.fitColumn(X, targets, sampleWeight, classIdx)
		}
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetNumClasses(len(lr.classes))
	lr.state.SetFitted()
	return nil
}

func uniqueSortedLabels(y []int) []int {
	seen := make(map[int]bool)
	classes := make([]int, 0)
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	sort.Ints(classes)
	return classes
}

func fillTargets(targets []float64, y []int, positiveClass int) {
	for i, label := range y {
		if label == positiveClass {
			targets[i] = 1
		} else {
			targets[i] = 0
		}
	}
}

func (lr *LogisticRegression) initializeWeights(nFeatures int) {
	nVectors := len(lr.classes)
	if nVectors == 2 {
		nVectors = 1
	}
	lr.coef = make([][]float64, nVectors)
	lr.intercept = make([]float64, nVectors)
	for i := range lr.coef {
		lr.coef[i] = make([]float64, nFeatures)
		for j := range lr.coef[i] {
			lr.coef[i][j] = lr.rng.NormFloat64() * 0.01
		}
	}
}

// fitColumn runs gradient descent for one sigmoid against binary targets.
// Sample weights scale each example's gradient contribution; the gradient
// is normalized by the total weight so the learning rate schedule behaves
// the same for weighted and unweighted fits.
func (lr *LogisticRegression) fitColumn(X mat.Matrix, targets, sampleWeight []float64, classIdx int) {
	nSamples, nFeatures := X.Dims()
	weights := lr.coef[classIdx]
	intercept := &lr.intercept[classIdx]

	totalWeight := float64(nSamples)
	if sampleWeight != nil {
		totalWeight = floats.Sum(sampleWeight)
	}
	lambda := 0.0
	if !math.IsInf(lr.c, 1) {
		lambda = 1.0 / lr.c
	}

	gradWeights := make([]float64, nFeatures)
	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			diff := sigmoid(z) - targets[i]
			if sampleWeight != nil {
				diff *= sampleWeight[i]
			}
			gradIntercept += diff
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += diff * X.At(i, j)
			}
		}
		floats.Scale(1/totalWeight, gradWeights)
		gradIntercept /= totalWeight

		for j := range weights {
			gradWeights[j] += lambda * weights[j]
		}

		step := 1.0 / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= step * gradWeights[j]
		}
		if lr.fitIntercept {
			*intercept -= step * gradIntercept
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			break
		}
	}
}

// Predict returns the most probable class label for each row of X.
func (lr *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		best, bestProb := 0, probs.At(i, 0)
		for classIdx := 1; classIdx < len(lr.classes); classIdx++ {
			if p := probs.At(i, classIdx); p > bestProb {
				best, bestProb = classIdx, p
			}
		}
		predictions[i] = lr.classes[best]
	}
	return predictions, nil
}

// PredictProba returns class probability estimates with columns in
// Classes() order. Binary models use the sigmoid directly; multiclass
// models softmax the per-class scores.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures, nFeatures, 1)
	}

	nClasses := len(lr.classes)
	probs := mat.NewDense(nSamples, nClasses, nil)

	if nClasses == 2 {
		for i := 0; i < nSamples; i++ {
			p := sigmoid(lr.decision(X, i, 0))
			probs.Set(i, 0, 1-p)
			probs.Set(i, 1, p)
		}
		return probs, nil
	}

	scores := make([]float64, nClasses)
	for i := 0; i < nSamples; i++ {
		maxScore := math.Inf(-1)
		for classIdx := 0; classIdx < nClasses; classIdx++ {
			scores[classIdx] = lr.decision(X, i, classIdx)
			if scores[classIdx] > maxScore {
				maxScore = scores[classIdx]
			}
		}
		sum := 0.0
		for classIdx := 0; classIdx < nClasses; classIdx++ {
			scores[classIdx] = math.Exp(scores[classIdx] - maxScore)
			sum += scores[classIdx]
		}
		for classIdx := 0; classIdx < nClasses; classIdx++ {
			probs.Set(i, classIdx, scores[classIdx]/sum)
		}
	}
	return probs, nil
}

func (lr *LogisticRegression) decision(X mat.Matrix, row, classIdx int) float64 {
	z := lr.intercept[classIdx]
	for j := 0; j < lr.nFeatures; j++ {
		z += X.At(row, j) * lr.coef[classIdx][j]
	}
	return z
}

// Classes returns the class labels in PredictProba column order.
func (lr *LogisticRegression) Classes() []int {
	return lr.classes
}

// Clone returns a fresh unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.Classifier {
	return NewLogisticRegression(
		WithC(lr.c),
		WithFitIntercept(lr.fitIntercept),
		WithMaxIter(lr.maxIter),
		WithTol(lr.tol),
		WithSeed(lr.seed),
	)
}

// Score returns the mean accuracy of predictions on X against y.
func (lr *LogisticRegression) Score(X mat.Matrix, y []int) (float64, error) {
	nSamples, _ := X.Dims()
	if nSamples != len(y) {
		return 0, errors.NewDimensionError("LogisticRegression.Score", nSamples, len(y), 0)
	}
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, label := range predictions {
		if label == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             lr.c,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"seed":          lr.seed,
	}
}

// SetParams sets the model hyperparameters.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			lr.c = value.(float64)
		case "fit_intercept":
			lr.fitIntercept = value.(bool)
		case "max_iter":
			lr.maxIter = value.(int)
		case "tol":
			lr.tol = value.(float64)
		case "seed":
			lr.seed = value.(int64)
			if lr.seed >= 0 {
				lr.rng = rand.New(rand.NewPCG(uint64(lr.seed), uint64(lr.seed)))
			}
		default:
			return errors.NewValueError("LogisticRegression.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
