// Package preprocessing provides feature transforms fitted on training
// data, used to condition inputs before classification.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/cleango/core/model"
	"github.com/YuminosukeSato/cleango/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance
// using statistics learned from the training data. Features with
// numerically zero spread keep a scale of 1 so they pass through
// unchanged.
type StandardScaler struct {
	state *model.StateManager

	withMean bool
	withStd  bool

	mean  []float64
	scale []float64
}

var _ model.InverseTransformer = (*StandardScaler)(nil)

// Option configures a StandardScaler.
type Option func(*StandardScaler)

// WithMean controls whether features are centered before scaling.
// When disabled the scale is computed about zero.
func WithMean(center bool) Option {
	return func(s *StandardScaler) {
		s.withMean = center
	}
}

// WithStd controls whether features are divided by their standard
// deviation.
func WithStd(scale bool) Option {
	return func(s *StandardScaler) {
		s.withStd = scale
	}
}

// NewStandardScaler creates a scaler that centers and scales by default.
func NewStandardScaler(opts ...Option) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager(),
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit learns the per-feature mean and scale from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.mean = make([]float64, nFeatures)
	s.scale = make([]float64, nFeatures)

	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		mat.Col(col, j, X)
		if s.withMean {
			s.mean[j] = stat.Mean(col, nil)
		}
		s.scale[j] = 1.0
		if s.withStd {
			variance := 0.0
			for _, v := range col {
				d := v - s.mean[j]
				variance += d * d
			}
			std := math.Sqrt(variance / float64(nSamples))
			if std > 1e-8 {
				s.scale[j] = std
			}
		}
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := s.state.GetDimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", wantFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			out.Set(i, j, (X.At(i, j)-s.mean[j])/s.scale[j])
		}
	}
	return out, nil
}

// FitTransform fits on X and returns the standardized X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original feature
// space.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	nSamples, nFeatures := X.Dims()
	wantFeatures, _ := s.state.GetDimensions()
	if nFeatures != wantFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", wantFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			out.Set(i, j, X.At(i, j)*s.scale[j]+s.mean[j])
		}
	}
	return out, nil
}

// Mean returns a copy of the fitted per-feature means.
func (s *StandardScaler) Mean() []float64 {
	out := make([]float64, len(s.mean))
	copy(out, s.mean)
	return out
}

// Scale returns a copy of the fitted per-feature scales.
func (s *StandardScaler) Scale() []float64 {
	out := make([]float64, len(s.scale))
	copy(out, s.scale)
	return out
}

// GetParams returns the scaler configuration.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, nFeatures)
}
