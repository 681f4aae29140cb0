package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for estimators that learn from labeled data.
// X is (n_samples x n_features); y holds one integer class label per row.
type Fitter interface {
	Fit(X mat.Matrix, y []int) error
}

// WeightedFitter is implemented by estimators that accept per-sample
// weights. A weight of zero removes that sample's influence entirely.
type WeightedFitter interface {
	Fitter
	FitWeighted(X mat.Matrix, y []int, sampleWeight []float64) error
}

// Predictor is the interface for fitted estimators that assign a class
// label to each input row.
type Predictor interface {
	Predict(X mat.Matrix) ([]int, error)
}

// Scorer is the interface for estimators that evaluate their own
// predictions against known labels. For classifiers the score is
// accuracy in [0, 1].
type Scorer interface {
	Score(X mat.Matrix, y []int) (float64, error)
}
