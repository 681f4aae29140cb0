// Package crossval produces out-of-sample predicted probabilities via
// stratified k-fold cross-validation. Every example is held out exactly
// once, so the probabilities used for noise estimation never come from a
// model that saw the example during training.
package crossval

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

// Fold holds the train and holdout indices for one cross-validation fold.
type Fold struct {
	TrainIndices   []int
	HoldoutIndices []int
}

// StratifiedKFold splits a labeled dataset into folds that preserve the
// class proportions of the full dataset. Splits are deterministic for a
// fixed seed: grouping is by class index, never by map iteration order.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, seed int64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split generates train/holdout indices for each fold. Labels must be
// consecutive integers starting at 0, and every class needs at least
// NSplits members so each holdout receives at least one.
func (skf *StratifiedKFold) Split(s []int) ([]Fold, error) {
	if len(s) == 0 {
		return nil, errors.NewValidationError("s", "labels must not be empty", len(s))
	}
	for i, label := range s {
		if label < 0 {
			return nil, errors.NewValidationError("s",
				fmt.Sprintf("labels must be non-negative, index %d is negative", i), label)
		}
	}
	k := util.NumClasses(s)
	counts := util.ValueCounts(s, k)
	for class, count := range counts {
		if count == 0 {
			return nil, errors.NewValidationError("s",
				fmt.Sprintf("class %d has no examples; labels must be consecutive integers starting at 0", class), count)
		}
		if count < skf.NSplits {
			return nil, errors.NewValidationError("s",
				fmt.Sprintf("class %d has %d examples but stratified splitting needs at least %d", class, count, skf.NSplits), count)
		}
	}

	// Group sample indices by class. A slice indexed by class keeps the
	// ordering stable across runs.
	classIndices := make([][]int, k)
	for i, label := range s {
		classIndices[label] = append(classIndices[label], i)
	}

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.Seed), uint64(skf.Seed)))
		for class := 0; class < k; class++ {
			indices := classIndices[class]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.NSplits)

	// Distribute each class across folds, spreading the remainder over the
	// leading folds.
	for class := 0; class < k; class++ {
		indices := classIndices[class]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		currentIdx := 0
		for i := 0; i < skf.NSplits; i++ {
			holdoutSize := foldSize
			if i < remainder {
				holdoutSize++
			}
			folds[i].HoldoutIndices = append(folds[i].HoldoutIndices, indices[currentIdx:currentIdx+holdoutSize]...)
			currentIdx += holdoutSize
		}
	}

	// Train sets are everything outside the fold's holdout.
	for i := 0; i < skf.NSplits; i++ {
		holdout := make([]bool, len(s))
		for _, idx := range folds[i].HoldoutIndices {
			holdout[idx] = true
		}
		folds[i].TrainIndices = make([]int, 0, len(s)-len(folds[i].HoldoutIndices))
		for j := range s {
			if !holdout[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}

	return folds, nil
}
