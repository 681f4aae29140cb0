package crossval

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/pkg/log"
	"github.com/YuminosukeSato/cleango/util"
)

// EstimateCVPredictedProbabilities computes out-of-sample predicted
// probabilities for every example using stratified k-fold cross-validation.
// Row i of the returned n x K matrix holds the class probabilities for
// example i predicted by the one fold whose holdout contains i, so no
// probability comes from a model trained on its own example. Column j
// always corresponds to label j regardless of classifier column ordering.
func EstimateCVPredictedProbabilities(X mat.Matrix, s []int, proto model.Prototype, nFolds int, seed int64) (*mat.Dense, error) {
	n, _ := X.Dims()
	if n != len(s) {
		return nil, errors.NewDimensionError("EstimateCVPredictedProbabilities", 0, n, len(s))
	}
	if proto == nil {
		return nil, errors.NewValidationError("proto", "a classifier prototype is required", nil)
	}

	splitter := NewStratifiedKFold(nFolds, true, seed)
	folds, err := splitter.Split(s)
	if err != nil {
		return nil, err
	}

	k := util.NumClasses(s)
	psx := mat.NewDense(n, k, nil)

	logger := log.GetLoggerWithName("cleango.crossval")
	logger.Debug("Starting cross-validated probability estimation",
		log.SamplesKey, n,
		log.ClassesKey, k,
		log.FoldsKey, len(folds),
		log.SeedKey, seed,
	)

	// Each fold writes a disjoint set of psx rows, so the goroutines never
	// touch the same element.
	var wg sync.WaitGroup
	foldErrs := make([]error, len(folds))

	for foldIdx := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			clf := proto.Clone()

			trainX := extractRows(X, fold.TrainIndices)
			trainLabels := extractLabels(s, fold.TrainIndices)
			if err := clf.Fit(trainX, trainLabels); err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d training failed", idx)
				return
			}

			holdoutX := extractRows(X, fold.HoldoutIndices)
			probs, err := clf.PredictProba(holdoutX)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d probability prediction failed", idx)
				return
			}

			// Scatter through Classes() so the probability for label c
			// lands in column c even if the classifier orders its output
			// columns differently.
			classes := clf.Classes()
			for i, sampleIdx := range fold.HoldoutIndices {
				for j, label := range classes {
					psx.Set(sampleIdx, label, probs.At(i, j))
				}
			}

			logger.Debug("Scored cross-validation fold",
				log.FoldKey, idx,
				log.SamplesKey, len(fold.HoldoutIndices),
			)
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}
	return psx, nil
}

// extractRows copies the given rows of X into a new dense matrix.
func extractRows(X mat.Matrix, indices []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, X.At(idx, j))
		}
	}
	return out
}

// extractLabels copies the given entries of s into a new slice.
func extractLabels(s []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = s[idx]
	}
	return out
}
