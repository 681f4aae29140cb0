package estimation

import "github.com/YuminosukeSato/cleango/algebra"

// Option configures the confident joint and latent estimators. The same
// options apply to the single-step functions and to the pipelines that
// chain them.
type Option func(*config)

type config struct {
	thresholds []float64
	calibrate  bool
	pyMethod   algebra.PyMethod
	converge   bool
}

func newConfig(opts []Option) config {
	cfg := config{calibrate: true, pyMethod: algebra.PyMethodCnt}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithThresholds supplies precomputed per-class probability thresholds
// instead of deriving them from (s, psx).
func WithThresholds(thresholds []float64) Option {
	return func(cfg *config) { cfg.thresholds = thresholds }
}

// WithCalibration controls whether the confident joint is calibrated so its
// rows match the observed per-class label counts and its total matches the
// number of examples. Defaults to true.
func WithCalibration(calibrate bool) Option {
	return func(cfg *config) { cfg.calibrate = calibrate }
}

// WithPyMethod selects how the latent prior p(y) is computed from the
// noise matrices. Defaults to algebra.PyMethodCnt.
func WithPyMethod(method algebra.PyMethod) Option {
	return func(cfg *config) { cfg.pyMethod = method }
}

// WithConvergence enables the fixed-point pass that forces py, the noise
// matrix and the inverse noise matrix to agree algebraically. Defaults to
// false.
func WithConvergence(converge bool) Option {
	return func(cfg *config) { cfg.converge = converge }
}
