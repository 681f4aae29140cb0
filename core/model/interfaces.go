// Package model provides capability interfaces composed by the concrete
// estimators. This file complements the single-capability interfaces in
// estimator.go.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Classifier is the contract required of any classifier used for noise
// estimation. PredictProba must return an (n_samples x n_classes) matrix
// whose columns follow the order of Classes() and whose rows sum to 1.
type Classifier interface {
	Fitter
	Predictor

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (*mat.Dense, error)

	// Classes returns the class labels in PredictProba column order.
	Classes() []int
}

// Prototype is a classifier that can produce fresh unfitted copies of
// itself so that cross-validation can train an independent instance per
// fold without sharing state.
type Prototype interface {
	Classifier

	// Clone returns a new unfitted classifier with the same hyperparameters.
	Clone() Classifier
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
