// Package metrics provides classification quality measures used to compare
// models fit on noisy and cleaned labels.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

// AccuracyScore returns the fraction of predictions matching the true labels.
func AccuracyScore(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty input")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("AccuracyScore", n, len(yPred), 0)
	}

	correct := 0
	for i, label := range yTrue {
		if yPred[i] == label {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// WeightedAccuracyScore returns the weight-normalized fraction of matching
// predictions. A nil sampleWeight behaves like AccuracyScore.
func WeightedAccuracyScore(yTrue, yPred []int, sampleWeight []float64) (float64, error) {
	if sampleWeight == nil {
		return AccuracyScore(yTrue, yPred)
	}
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("WeightedAccuracyScore", "empty input")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("WeightedAccuracyScore", n, len(yPred), 0)
	}
	if len(sampleWeight) != n {
		return 0, errors.NewDimensionError("WeightedAccuracyScore", n, len(sampleWeight), 0)
	}

	var correct, total float64
	for i, label := range yTrue {
		w := sampleWeight[i]
		if w < 0 {
			return 0, errors.NewValidationError("sampleWeight", "weights must be nonnegative", i)
		}
		total += w
		if yPred[i] == label {
			correct += w
		}
	}
	if total <= 0 {
		return 0, errors.NewValidationError("sampleWeight", "weights must have a positive total", total)
	}
	return correct / total, nil
}

// ConfusionMatrix returns the K x K count matrix with true labels on rows
// and predicted labels on columns. K is inferred from the largest label.
func ConfusionMatrix(yTrue, yPred []int) (*mat.Dense, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty input")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, len(yPred), 0)
	}
	for i := 0; i < n; i++ {
		if yTrue[i] < 0 || yPred[i] < 0 {
			return nil, errors.NewValidationError("labels", "labels must be nonnegative", i)
		}
	}

	k := util.NumClasses(yTrue)
	if kp := util.NumClasses(yPred); kp > k {
		k = kp
	}
	counts := mat.NewDense(k, k, nil)
	for i := 0; i < n; i++ {
		counts.Set(yTrue[i], yPred[i], counts.At(yTrue[i], yPred[i])+1)
	}
	return counts, nil
}

// AUC returns the area under the ROC curve for binary labels scored by the
// predicted probability of the positive class. Tied scores share the
// average of their ranks.
func AUC(yTrue []int, scores []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty input")
	}
	if len(scores) != n {
		return 0, errors.NewDimensionError("AUC", n, len(scores), 0)
	}
	nPos := 0
	for _, label := range yTrue {
		if label != 0 && label != 1 {
			return 0, errors.NewValidationError("yTrue", "labels must be 0 or 1", label)
		}
		nPos += label
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewValueError("AUC", "requires both positive and negative examples")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		// 1-based ranks i+1..j share their average.
		avg := float64(i+j+1) / 2.0
		for t := i; t < j; t++ {
			ranks[order[t]] = avg
		}
		i = j
	}

	sumPositiveRanks := 0.0
	for i, label := range yTrue {
		if label == 1 {
			sumPositiveRanks += ranks[i]
		}
	}
	return (sumPositiveRanks - float64(nPos)*float64(nPos+1)/2) /
		(float64(nPos) * float64(nNeg)), nil
}
