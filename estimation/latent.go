package estimation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cleango/algebra"
	"github.com/YuminosukeSato/cleango/pkg/errors"
	"github.com/YuminosukeSato/cleango/pkg/log"
	"github.com/YuminosukeSato/cleango/util"
)

// EstimateLatent derives the three latent estimates from a confident joint:
// the true-class prior py, the noise matrix P(s|y) and the inverse noise
// matrix P(y|s). Noise rates are clipped to valid probabilities; when the
// convergence pass runs, everything is clipped again afterwards.
func EstimateLatent(C mat.Matrix, s []int, opts ...Option) ([]float64, *mat.Dense, *mat.Dense, error) {
	cfg := newConfig(opts)

	k, cols := C.Dims()
	if k != cols {
		return nil, nil, nil, errors.NewDimensionError("EstimateLatent", k, cols, 1)
	}

	sCounts := util.ValueCounts(s, k)
	ps := make([]float64, k)
	for class, count := range sCounts {
		ps[class] = float64(count) / float64(len(s))
	}

	// Column sums count examples confidently assigned to each true class;
	// they feed the marginal py method.
	yCounts := util.ColumnSums(C)

	noiseMatrix := algebra.NoiseMatrixFromConfidentJoint(C)
	invNoiseMatrix := algebra.InvNoiseMatrixFromConfidentJoint(C)

	py, err := algebra.ComputePy(ps, noiseMatrix, invNoiseMatrix, cfg.pyMethod, yCounts)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "estimating latent prior")
	}

	noiseMatrix = util.ClipNoiseRates(noiseMatrix)
	invNoiseMatrix = util.ClipNoiseRates(invNoiseMatrix)

	if cfg.converge {
		py, noiseMatrix, invNoiseMatrix, err = algebra.ConvergeEstimates(
			ps, py, noiseMatrix, invNoiseMatrix,
			algebra.DefaultInnerIterations, algebra.DefaultOuterIterations)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "converging latent estimates")
		}
		py = util.ClipValues(py, 1e-5, 1.0, 1.0)
		noiseMatrix = util.ClipNoiseRates(noiseMatrix)
		invNoiseMatrix = util.ClipNoiseRates(invNoiseMatrix)
	}

	log.GetLoggerWithName("cleango.estimation").Debug("Estimated latent distributions",
		log.OperationKey, log.OperationLatent,
		log.ClassesKey, k,
		log.NoiseTraceKey, mat.Trace(noiseMatrix),
		log.InverseTraceKey, mat.Trace(invNoiseMatrix),
	)
	return py, noiseMatrix, invNoiseMatrix, nil
}
