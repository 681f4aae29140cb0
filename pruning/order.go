package pruning

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// RankMethod selects the severity score used to order flagged label errors.
type RankMethod int

const (
	// RankBySelfConfidence scores an example by the predicted probability
	// of its given label. Lower means more likely mislabeled.
	RankBySelfConfidence RankMethod = iota
	// RankByNormalizedMargin scores an example by the predicted probability
	// of its given label minus the largest probability among the other
	// classes.
	RankByNormalizedMargin
)

// String returns the canonical name of the rank method.
func (m RankMethod) String() string {
	switch m {
	case RankBySelfConfidence:
		return "prob_given_label"
	case RankByNormalizedMargin:
		return "normalized_margin"
	default:
		return "unknown"
	}
}

// OrderLabelErrors returns the indices flagged by the noise mask, ordered
// most severe first. Score ties keep the original example order.
func OrderLabelErrors(mask []bool, psx mat.Matrix, s []int, method RankMethod) []int {
	_, k := psx.Dims()

	flagged := make([]int, 0)
	for i, isError := range mask {
		if isError {
			flagged = append(flagged, i)
		}
	}

	score := func(i int) float64 {
		self := psx.At(i, s[i])
		if method != RankByNormalizedMargin {
			return self
		}
		maxOther := 0.0
		for j := 0; j < k; j++ {
			if j != s[i] && psx.At(i, j) > maxOther {
				maxOther = psx.At(i, j)
			}
		}
		return self - maxOther
	}

	sort.SliceStable(flagged, func(a, b int) bool {
		return score(flagged[a]) < score(flagged[b])
	})
	return flagged
}
