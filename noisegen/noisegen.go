// Package noisegen generates synthetic label noise: column-stochastic noise
// matrices with a prescribed trace and noisy labels drawn from them. It
// exists for benchmarks, examples, and recovery tests where the true noise
// process must be known exactly.
package noisegen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/util"
)

const (
	columnSumTol = 1e-6

	// diagFloor keeps generated self-label probabilities away from exact
	// zero so every class retains some correctly labeled mass.
	diagFloor = 1e-5
)

// Option configures noise matrix generation.
type Option func(*config)

type config struct {
	maxIter    int
	fracZero   float64
	validation bool
}

func newConfig(opts []Option) config {
	cfg := config{
		maxIter:    10000,
		validation: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxIterations bounds the rejection sampling attempts.
func WithMaxIterations(n int) Option {
	return func(cfg *config) {
		cfg.maxIter = n
	}
}

// WithFracZeroNoiseRates requests that roughly the given fraction of
// off-diagonal noise rates be exactly zero, mimicking sparse real-world
// noise where most class pairs are never confused.
func WithFracZeroNoiseRates(frac float64) Option {
	return func(cfg *config) {
		cfg.fracZero = frac
	}
}

// WithValidation controls whether candidate matrices are rejected until
// NoiseMatrixIsValid accepts one. Disabling it removes the need for a prior.
func WithValidation(validate bool) Option {
	return func(cfg *config) {
		cfg.validation = validate
	}
}

// GenerateNoiseMatrixFromTrace samples a K x K column-stochastic noise
// matrix P(s|y) whose diagonal sums to the given trace. Candidates are
// rejected until the matrix passes the learnability check against the class
// prior py; pass WithValidation(false) to accept the first candidate.
// The same seed reproduces the same matrix.
func GenerateNoiseMatrixFromTrace(k int, trace float64, py []float64, seed int64, opts ...Option) (*mat.Dense, error) {
	cfg := newConfig(opts)

	if k < 2 {
		return nil, errors.NewValidationError("k", "requires at least 2 classes", k)
	}
	if trace <= 1 {
		return nil, errors.NewNoiseTraceError("noise matrix", trace)
	}
	if trace > float64(k) {
		return nil, errors.NewValidationError("trace",
			fmt.Sprintf("cannot exceed the number of classes %d", k), trace)
	}
	if cfg.validation {
		if len(py) != k {
			return nil, errors.NewValidationError("py",
				fmt.Sprintf("must hold %d class priors", k), len(py))
		}
		if math.Abs(floats.Sum(py)-1) > columnSumTol {
			return nil, errors.NewValidationError("py", "must sum to 1", floats.Sum(py))
		}
	}

	src := rand.NewPCG(uint64(seed), uint64(seed))
	rng := rand.New(src)
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}

	zeroBudget := int(cfg.fracZero * float64(k*(k-1)))
	zerosPerColumn := zeroBudget / k
	if zerosPerColumn > k-2 {
		zerosPerColumn = k - 2
	}

	for iter := 0; iter < cfg.maxIter; iter++ {
		nm := mat.NewDense(k, k, nil)
		diag := randProbabilitiesSummingTo(uniform, k, trace, 1)
		for i, d := range diag {
			nm.Set(i, i, d)
		}

		for col := 0; col < k; col++ {
			remaining := 1 - diag[col]
			if remaining <= 0 {
				continue
			}

			// Off-diagonal row indices for this column, with a random
			// subset forced to zero.
			rows := make([]int, 0, k-1)
			for i := 0; i < k; i++ {
				if i != col {
					rows = append(rows, i)
				}
			}
			rng.Shuffle(len(rows), func(a, b int) {
				rows[a], rows[b] = rows[b], rows[a]
			})
			free := rows[zerosPerColumn:]

			rates := randProbabilitiesSummingTo(uniform, len(free), remaining, remaining)
			for idx, row := range free {
				nm.Set(row, col, rates[idx])
			}
		}

		if !cfg.validation || NoiseMatrixIsValid(nm, py) {
			return nm, nil
		}
	}
	return nil, errors.NewValueError("GenerateNoiseMatrixFromTrace",
		fmt.Sprintf("no valid noise matrix found in %d attempts", cfg.maxIter))
}

// randProbabilitiesSummingTo draws n positive values, scales them to the
// requested total, and redistributes any mass above maxProb over the
// remaining entries so no single probability exceeds it. Requires
// total <= n*maxProb, which callers guarantee.
func randProbabilitiesSummingTo(uniform distuv.Uniform, n int, total, maxProb float64) []float64 {
	probs := make([]float64, n)
	for i := range probs {
		probs[i] = uniform.Rand() + diagFloor
	}
	floats.Scale(total/floats.Sum(probs), probs)

	pinned := make([]bool, n)
	for {
		excess, unpinned := 0.0, 0.0
		for i, p := range probs {
			switch {
			case pinned[i]:
			case p > maxProb:
				excess += p - maxProb
				probs[i] = maxProb
				pinned[i] = true
			default:
				unpinned += p
			}
		}
		if excess == 0 || unpinned <= 0 {
			return probs
		}
		scale := (unpinned + excess) / unpinned
		for i := range probs {
			if !pinned[i] {
				probs[i] *= scale
			}
		}
	}
}

// GenerateSymmetricNoiseMatrix returns the K x K matrix where every label
// flips to each other class with probability noiseRate/(K-1).
func GenerateSymmetricNoiseMatrix(k int, noiseRate float64) *mat.Dense {
	nm := mat.NewDense(k, k, nil)
	off := noiseRate / float64(k-1)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if i == j {
				nm.Set(i, j, 1-noiseRate)
			} else {
				nm.Set(i, j, off)
			}
		}
	}
	return nm
}

// GenerateNoisyLabels flips each true label y[i]=j to class s with
// probability noiseMatrix[s][j]. The same seed reproduces the same labels.
func GenerateNoisyLabels(y []int, noiseMatrix mat.Matrix, seed int64) ([]int, error) {
	if len(y) == 0 {
		return nil, errors.NewValueError("GenerateNoisyLabels", "empty labels")
	}
	r, c := noiseMatrix.Dims()
	if r != c {
		return nil, errors.NewDimensionError("GenerateNoisyLabels", r, c, 1)
	}
	for j := 0; j < c; j++ {
		colSum := 0.0
		for i := 0; i < r; i++ {
			colSum += noiseMatrix.At(i, j)
		}
		if math.Abs(colSum-1) > columnSumTol {
			return nil, errors.NewValidationError("noiseMatrix",
				fmt.Sprintf("column %d must sum to 1, got %.6f", j, colSum), colSum)
		}
	}
	for i, label := range y {
		if label < 0 || label >= c {
			return nil, errors.NewValidationError("y",
				fmt.Sprintf("label at index %d outside {0..%d}", i, c-1), label)
		}
	}

	// Cumulative distribution of s per true class column.
	cumulative := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		run := 0.0
		for i := 0; i < r; i++ {
			run += noiseMatrix.At(i, j)
			cumulative.Set(i, j, run)
		}
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	noisy := make([]int, len(y))
	for i, label := range y {
		u := rng.Float64()
		noisy[i] = r - 1
		for s := 0; s < r; s++ {
			if u <= cumulative.At(s, label) {
				noisy[i] = s
				break
			}
		}
	}
	return noisy, nil
}

// NoiseMatrixIsValid reports whether learning with noisy labels drawn from
// the matrix is feasible for the class prior py: every class must keep more
// joint mass on its diagonal cell than the off-diagonal products allow.
func NoiseMatrixIsValid(noiseMatrix mat.Matrix, py []float64) bool {
	r, c := noiseMatrix.Dims()
	if r != c || len(py) != r {
		return false
	}
	for j := 0; j < c; j++ {
		colSum := 0.0
		for i := 0; i < r; i++ {
			colSum += noiseMatrix.At(i, j)
		}
		if math.Abs(colSum-1) > columnSumTol {
			return false
		}
	}

	// joint[s][y] = P(s|y) * P(y)
	joint := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			joint.Set(i, j, noiseMatrix.At(i, j)*py[j])
		}
	}
	if math.Abs(mat.Sum(joint)-1) > columnSumTol {
		return false
	}

	rowSums := util.RowSums(joint)
	colSums := util.ColumnSums(joint)
	for i := 0; i < r; i++ {
		correct := joint.At(i, i)
		e1 := rowSums[i] - correct
		e2 := colSums[i] - correct
		other := 1 - e1 - e2 - correct
		if correct*other <= e1*e2 {
			return false
		}
	}
	return true
}
