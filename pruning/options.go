// Package pruning decides which examples to remove from a noisy training
// set. Counts of likely-mislabeled examples per (noisy class, true class)
// pair come from a prune-count matrix derived from the inverse noise matrix
// or the calibrated confident joint; ranking by predicted probability then
// selects the concrete examples.
package pruning

import "fmt"

// Method selects the pruning strategy.
type Method int

const (
	// ByNoiseRate removes, for every ordered class pair (s, y) with s != y,
	// the examples labeled s with the highest predicted probability of class
	// y, up to the pair's prune count.
	ByNoiseRate Method = iota
	// ByClass removes, for every class, the examples with the lowest
	// predicted probability of belonging to their own label.
	ByClass
	// Both removes only examples flagged by ByNoiseRate and ByClass alike.
	Both
)

func (m Method) String() string {
	switch m {
	case ByNoiseRate:
		return "prune_by_noise_rate"
	case ByClass:
		return "prune_by_class"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// CountMethod selects how the prune-count matrix is derived.
type CountMethod int

const (
	// InverseNMDotS scales the inverse noise matrix by the observed
	// per-class label counts.
	InverseNMDotS CountMethod = iota
	// CalibrateConfidentJoint scales the calibrated confident joint to the
	// total number of examples.
	CalibrateConfidentJoint
)

func (m CountMethod) String() string {
	switch m {
	case InverseNMDotS:
		return "inverse_nm_dot_s"
	case CalibrateConfidentJoint:
		return "calibrate_confident_joint"
	default:
		return fmt.Sprintf("CountMethod(%d)", int(m))
	}
}

// defaultMinExamplesPerClass is the floor below which a class is never
// pruned and the minimum count every class keeps after pruning.
const defaultMinExamplesPerClass = 5

// Options configures noise-index selection. The zero value selects
// ByNoiseRate counting via InverseNMDotS, prunes the full estimated noise
// and keeps at least 5 examples per class.
type Options struct {
	Method      Method
	CountMethod CountMethod

	// FracNoise scales the estimated off-diagonal noise counts; 1 prunes
	// everything the estimate calls noise, 0.5 prunes half. Values <= 0
	// mean 1.
	FracNoise float64

	// NumToRemovePerClass, when non-nil, overrides the estimated counts so
	// exactly this many examples are removed from each noisy class.
	NumToRemovePerClass []int

	// ConvergeLatentEstimates applies the fixed-point consistency pass when
	// the inverse noise matrix has to be estimated internally.
	ConvergeLatentEstimates bool

	// MinExamplesPerClass guards small classes: a class with this many
	// examples or fewer is never pruned, and prune counts are reduced so
	// at least this many examples survive per class. Values < 1 mean 5.
	MinExamplesPerClass int
}

func (o Options) normalized() Options {
	if o.FracNoise <= 0 {
		o.FracNoise = 1
	}
	if o.MinExamplesPerClass < 1 {
		o.MinExamplesPerClass = defaultMinExamplesPerClass
	}
	return o
}
