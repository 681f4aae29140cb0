// Package estimation computes the confident joint and the latent
// distributions it implies: the class prior p(y), the noise matrix P(s|y)
// and the inverse noise matrix P(y|s). The confident joint C is a K x K
// count matrix whose rows index the observed noisy label s and whose
// columns index the estimated true label y; C[s][y] counts examples labeled
// s whose predicted probability for class y clears the class-y threshold.
package estimation

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/cleango/core/parallel"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/pkg/log"
	"github.com/YuminosukeSato/cleango/util"
)

// thresholdSlack loosens the threshold comparison so examples sitting
// exactly on a class threshold still qualify despite float rounding.
const thresholdSlack = 1e-6

// minParallelRows is the example count below which the counting loop runs
// sequentially.
const minParallelRows = 10000

// ValidateLabelsAndProbabilities checks that s and psx describe the same
// examples: equal lengths, labels inside {0..K-1} where K is the column
// count of psx, and at least one example per class. The estimators call
// this before any counting, so downstream helpers may assume valid input.
func ValidateLabelsAndProbabilities(s []int, psx mat.Matrix) error {
	n, k := psx.Dims()
	if n != len(s) {
		return errors.NewDimensionError("ValidateLabelsAndProbabilities", len(s), n, 0)
	}
	if len(s) == 0 {
		return errors.NewValidationError("s", "labels must not be empty", 0)
	}
	if k < 2 {
		return errors.NewValidationError("psx",
			"probabilities must cover at least 2 classes", k)
	}
	for i, label := range s {
		if label < 0 || label >= k {
			return errors.NewValidationError("s",
				fmt.Sprintf("label at index %d is outside {0..%d}", i, k-1), label)
		}
	}
	counts := util.ValueCounts(s, k)
	for class, count := range counts {
		if count == 0 {
			return errors.NewValidationError("s",
				fmt.Sprintf("class %d has no examples; labels must cover {0..%d}", class, k-1), count)
		}
	}
	return nil
}

// ComputeThresholds returns the per-class expected self-confidence: the
// mean of psx[i][k] over the examples labeled k. An example counts toward
// class k in the confident joint only if its probability for k reaches
// this threshold. Inputs are assumed validated.
func ComputeThresholds(s []int, psx mat.Matrix) []float64 {
	_, k := psx.Dims()
	selfProbs := make([][]float64, k)
	for i, label := range s {
		selfProbs[label] = append(selfProbs[label], psx.At(i, label))
	}
	thresholds := make([]float64, k)
	for class, probs := range selfProbs {
		if len(probs) > 0 {
			thresholds[class] = stat.Mean(probs, nil)
		}
	}
	return thresholds
}

// ComputeConfidentJoint counts examples into the K x K confident joint.
// For each example the qualifying classes are those whose predicted
// probability clears the class threshold; the example is counted under its
// noisy label toward the qualifying class with the largest margin above
// its threshold, lowest class index on exact ties. Examples with no
// qualifying class are dropped from the counts.
func ComputeConfidentJoint(s []int, psx mat.Matrix, opts ...Option) (*mat.Dense, error) {
	cfg := newConfig(opts)
	if err := ValidateLabelsAndProbabilities(s, psx); err != nil {
		return nil, err
	}

	n, k := psx.Dims()
	thresholds := cfg.thresholds
	if thresholds == nil {
		thresholds = ComputeThresholds(s, psx)
	} else if len(thresholds) != k {
		return nil, errors.NewDimensionError("ComputeConfidentJoint", k, len(thresholds), 1)
	}

	counts := make([]float64, k*k)
	var mu sync.Mutex

	parallel.ParallelizeWithThreshold(n, minParallelRows, func(start, end int) {
		local := make([]float64, k*k)
		for i := start; i < end; i++ {
			bestClass := -1
			bestMargin := 0.0
			for class := 0; class < k; class++ {
				p := psx.At(i, class)
				if p < thresholds[class]-thresholdSlack {
					continue
				}
				margin := p - thresholds[class]
				if bestClass < 0 || margin > bestMargin {
					bestClass = class
					bestMargin = margin
				}
			}
			if bestClass >= 0 {
				local[s[i]*k+bestClass]++
			}
		}
		mu.Lock()
		for idx, v := range local {
			counts[idx] += v
		}
		mu.Unlock()
	})

	cj := mat.NewDense(k, k, counts)
	logConfidentJoint(cj, n, k)

	if cfg.calibrate {
		return CalibrateConfidentJoint(cj, s), nil
	}
	return cj, nil
}

// CalibrateConfidentJoint rescales the confident joint so each row sums
// to the observed count of its noisy class and the total equals the number
// of examples, then rounds back to integers preserving row totals. A row
// with no confident members recovers by placing the full class count on
// the diagonal.
func CalibrateConfidentJoint(C mat.Matrix, s []int) *mat.Dense {
	k, _ := C.Dims()
	sCounts := util.ValueCounts(s, k)

	calibrated := mat.DenseCopyOf(C)
	rowSums := util.RowSums(calibrated)
	for i := 0; i < k; i++ {
		if rowSums[i] <= 0 {
			errors.Warn(errors.NewDegenerateClassWarning(i, "confident joint",
				"no confident members; assuming the class is entirely correctly labeled"))
			calibrated.Set(i, i, float64(sCounts[i]))
			continue
		}
		scale := float64(sCounts[i]) / rowSums[i]
		for j := 0; j < k; j++ {
			calibrated.Set(i, j, calibrated.At(i, j)*scale)
		}
	}

	total := mat.Sum(calibrated)
	if total > 0 {
		calibrated.Scale(float64(len(s))/total, calibrated)
	}
	return util.RoundPreservingRowTotals(calibrated)
}

func logConfidentJoint(cj *mat.Dense, n, k int) {
	log.GetLoggerWithName("cleango.estimation").Debug("Computed confident joint",
		log.OperationKey, log.OperationConfidentJoint,
		log.SamplesKey, n,
		log.ClassesKey, k,
		log.ConfidentCountKey, int(mat.Sum(cj)),
	)
}
