package pruning

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/estimation"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/pkg/log"
	"github.com/YuminosukeSato/cleango/util"
)

// GetNoiseIndices computes the boolean noise mask over the dataset: element
// i is true when example i is judged mislabeled under the configured prune
// method. Either invNoiseMatrix or confidentJoint may be nil; whichever the
// count method needs is then estimated from (s, psx). Classes with at most
// Options.MinExamplesPerClass members are never pruned.
func GetNoiseIndices(s []int, psx mat.Matrix, invNoiseMatrix, confidentJoint mat.Matrix, opts Options) ([]bool, error) {
	if err := estimation.ValidateLabelsAndProbabilities(s, psx); err != nil {
		return nil, err
	}
	opts = opts.normalized()

	pcm, err := PruneCountMatrix(s, psx, invNoiseMatrix, confidentJoint, opts)
	if err != nil {
		return nil, err
	}

	_, k := psx.Dims()
	sCounts := util.ValueCounts(s, k)

	// Member indices per noisy class, kept in original example order so
	// stable sorts break probability ties by first occurrence.
	classMembers := make([][]int, k)
	for i, label := range s {
		classMembers[label] = append(classMembers[label], i)
	}

	var mask []bool
	switch opts.Method {
	case ByClass:
		mask = pruneByClass(classMembers, psx, pcm, sCounts, opts.MinExamplesPerClass)
	case ByNoiseRate:
		mask = pruneByNoiseRate(classMembers, psx, pcm, sCounts, opts.MinExamplesPerClass)
	case Both:
		byClass := pruneByClass(classMembers, psx, pcm, sCounts, opts.MinExamplesPerClass)
		byRate := pruneByNoiseRate(classMembers, psx, pcm, sCounts, opts.MinExamplesPerClass)
		mask = make([]bool, len(s))
		for i := range mask {
			mask[i] = byClass[i] && byRate[i]
		}
	default:
		return nil, errors.NewValueError("GetNoiseIndices",
			fmt.Sprintf("unknown prune method %d", int(opts.Method)))
	}

	pruned := 0
	for _, flagged := range mask {
		if flagged {
			pruned++
		}
	}
	logger := log.GetLoggerWithName("cleango.pruning")
	logger.Debug("Computed noise mask",
		log.OperationKey, log.OperationPrune,
		log.PruneMethodKey, opts.Method.String(),
		log.SamplesKey, len(s),
		log.PrunedKey, pruned,
	)
	return mask, nil
}

// pruneByClass flags, within each class, the examples assigned the lowest
// predicted probability of their own label. The per-class quota is the
// off-diagonal mass of that class's prune-count row.
func pruneByClass(classMembers [][]int, psx mat.Matrix, pcm *mat.Dense, sCounts []int, minPerClass int) []bool {
	n, k := psx.Dims()
	mask := make([]bool, n)
	for class := 0; class < k; class++ {
		if sCounts[class] <= minPerClass {
			continue
		}
		target := 0.0
		for j := 0; j < k; j++ {
			if j != class {
				target += pcm.At(class, j)
			}
		}
		num := int(target)
		if num <= 0 {
			continue
		}
		members := classMembers[class]
		if num > len(members) {
			errors.Warn(errors.NewPruneClampWarning(class, class, num, len(members)))
			num = len(members)
		}

		order := make([]int, len(members))
		copy(order, members)
		sort.SliceStable(order, func(a, b int) bool {
			return psx.At(order[a], class) < psx.At(order[b], class)
		})
		for _, idx := range order[:num] {
			mask[idx] = true
		}
	}
	return mask
}

// pruneByNoiseRate flags, for every ordered class pair (s, y) with s != y,
// the pcm[s][y] examples labeled s with the highest predicted probability
// of class y.
func pruneByNoiseRate(classMembers [][]int, psx mat.Matrix, pcm *mat.Dense, sCounts []int, minPerClass int) []bool {
	n, k := psx.Dims()
	mask := make([]bool, n)
	for ks := 0; ks < k; ks++ {
		if sCounts[ks] <= minPerClass {
			continue
		}
		members := classMembers[ks]
		for ky := 0; ky < k; ky++ {
			if ky == ks {
				continue
			}
			num := int(pcm.At(ks, ky))
			if num <= 0 {
				continue
			}
			if num > len(members) {
				errors.Warn(errors.NewPruneClampWarning(ks, ky, num, len(members)))
				num = len(members)
			}

			order := make([]int, len(members))
			copy(order, members)
			sort.SliceStable(order, func(a, b int) bool {
				return psx.At(order[a], ky) > psx.At(order[b], ky)
			})
			for _, idx := range order[:num] {
				mask[idx] = true
			}
		}
	}
	return mask
}
