// Package util provides label statistics and numeric clipping helpers shared
// by the estimation and pruning stages. All matrix helpers follow the
// convention that conditional probability matrices are column-stochastic:
// each column of P(s|y) and P(y|s) sums to 1.
package util

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// noiseRateCeiling keeps off-diagonal conditional probabilities strictly
// below 1 so renormalization cannot zero out a diagonal.
const noiseRateCeiling = 0.9999

// ValueCounts returns the number of occurrences of each label in s.
// Labels must lie in {0..k-1}; callers validate before counting.
func ValueCounts(s []int, k int) []int {
	counts := make([]int, k)
	for _, label := range s {
		counts[label]++
	}
	return counts
}

// NumClasses returns the number of classes implied by the labels, assuming
// labels are encoded {0..K-1}. Returns 0 for an empty slice.
func NumClasses(s []int) int {
	k := 0
	for _, label := range s {
		if label+1 > k {
			k = label + 1
		}
	}
	return k
}

// ClipValues clips every entry of x into [low, high]. When newSum is
// positive the clipped vector is rescaled so its entries sum to newSum,
// preserving relative proportions. Returns a new slice.
func ClipValues(x []float64, low, high, newSum float64) []float64 {
	clipped := make([]float64, len(x))
	for i, v := range x {
		clipped[i] = math.Min(math.Max(v, low), high)
	}
	if newSum > 0 {
		total := floats.Sum(clipped)
		if total > 0 {
			floats.Scale(newSum/total, clipped)
		}
	}
	return clipped
}

// ClipNoiseRates clips the off-diagonal entries of a column-stochastic
// conditional matrix into [0, 0.9999] and renormalizes each column to sum
// to 1. Diagonal entries are self-label probabilities, not noise rates, so
// they pass through unclipped before renormalization. Returns a new matrix.
func ClipNoiseRates(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v := m.At(i, j)
			if i != j {
				v = math.Min(math.Max(v, 0), noiseRateCeiling)
			}
			out.Set(i, j, v)
		}
	}
	for j := 0; j < c; j++ {
		colSum := 0.0
		for i := 0; i < r; i++ {
			colSum += out.At(i, j)
		}
		if colSum <= 0 {
			continue
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, out.At(i, j)/colSum)
		}
	}
	return out
}

// RoundPreservingSum rounds each entry of x to the nearest integer while
// keeping the integer total equal to the rounded sum of x. Entries farthest
// from their rounded value absorb the correction one unit at a time, so the
// result is deterministic.
func RoundPreservingSum(x []float64) []int {
	ints := make([]int, len(x))
	intSum := 0
	for i, v := range x {
		ints[i] = int(math.Round(v))
		intSum += ints[i]
	}
	origSum := int(math.Round(floats.Sum(x)))

	for intSum > origSum {
		bestIdx, bestDiff := 0, math.Inf(-1)
		for i := range ints {
			diff := float64(ints[i]) - x[i]
			if diff > bestDiff {
				bestIdx, bestDiff = i, diff
			}
		}
		ints[bestIdx]--
		intSum--
	}
	for intSum < origSum {
		bestIdx, bestDiff := 0, math.Inf(-1)
		for i := range ints {
			diff := x[i] - float64(ints[i])
			if diff > bestDiff {
				bestIdx, bestDiff = i, diff
			}
		}
		ints[bestIdx]++
		intSum++
	}
	return ints
}

// RoundPreservingRowTotals rounds every entry of m to an integer while
// preserving each row's total. Count matrices (the confident joint, prune
// targets) stay integral without drifting from their per-class totals.
// Returns a new matrix with integer-valued entries.
func RoundPreservingRowTotals(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		rounded := RoundPreservingSum(row)
		for j := 0; j < c; j++ {
			out.Set(i, j, float64(rounded[j]))
		}
	}
	return out
}

// RemoveNoiseFromClass zeroes the off-diagonal entries of the given class's
// row and column in a column-stochastic conditional matrix and renormalizes
// every column through its diagonal. Used for positive-unlabeled learning
// where one class is known to be perfectly labeled: nothing flips into or
// out of that class.
func RemoveNoiseFromClass(m mat.Matrix, classWithoutNoise int) *mat.Dense {
	r, c := m.Dims()
	out := mat.DenseCopyOf(m)

	cwn := classWithoutNoise
	for j := 0; j < c; j++ {
		if j != cwn {
			out.Set(cwn, j, 0)
		}
	}
	for i := 0; i < r; i++ {
		if i != cwn {
			out.Set(i, cwn, 0)
		}
	}

	// Columns regain total mass 1 through their diagonal entry.
	for j := 0; j < c; j++ {
		offDiag := 0.0
		for i := 0; i < r; i++ {
			if i != j {
				offDiag += out.At(i, j)
			}
		}
		out.Set(j, j, 1-offDiag)
	}
	return out
}

// ColumnSums returns the per-column sums of m.
func ColumnSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			sums[j] += m.At(i, j)
		}
	}
	return sums
}

// RowSums returns the per-row sums of m.
func RowSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums[i] += m.At(i, j)
		}
	}
	return sums
}
