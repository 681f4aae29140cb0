package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for stateless-per-call feature transforms
// that learn their parameters from data, such as scalers.
type Transformer interface {
	// Fit learns the transform parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transform to X.
	Transform(X mat.Matrix) (*mat.Dense, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}

// InverseTransformer is a Transformer whose mapping can be reversed.
type InverseTransformer interface {
	Transformer

	// InverseTransform maps transformed data back to the original space.
	InverseTransform(X mat.Matrix) (*mat.Dense, error)
}
