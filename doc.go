// Package cleango finds label errors in classification datasets and trains
// classifiers that are robust to them.
//
// The library implements confident learning: it characterizes the label
// noise of a dataset directly from out-of-sample predicted probabilities,
// with no clean reference data required. From the noisy labels s and the
// probabilities psx it estimates the latent joint distribution of noisy and
// true labels, flags the examples most likely to be mislabeled, and refits
// any classifier on the cleaned remainder.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/cleango/classification"
//	)
//
//	func main() {
//	    // X is an (n x d) gonum matrix, s the observed (possibly noisy)
//	    // integer labels in {0..K-1}.
//	    cl := classification.NewCleanLearning()
//	    result, err := cl.Fit(X, s)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Printf("flagged %d label errors\n", result.PrunedCount)
//	    fmt.Printf("estimated noise matrix:\n%v\n", result.NoiseMatrix)
//
//	    predictions, err := cl.Predict(XTest)
//	    ...
//	}
//
// # Packages
//
//   - classification: CleanLearning, the noise-robust training orchestrator
//   - estimation: confident joint counting and latent matrix estimation
//   - pruning: noise masks from count matrices and pruning strategies
//   - algebra: conversions between ps, py, the noise matrix and its inverse
//   - crossval: stratified K-fold out-of-sample predicted probabilities
//   - noisegen: synthetic noise matrices and noisy labels for experiments
//   - linear_model: the default logistic regression classifier
//   - metrics: accuracy and confusion matrix helpers
//   - preprocessing: feature standardization
//   - plotting: noise matrix heat maps and self-confidence histograms
//
// Any classifier implementing the small interfaces in core/model (Fit,
// Predict, PredictProba, Classes, Clone) plugs into the same pipeline;
// classifiers that also accept per-sample weights are refit with
// class-dependent loss reweighting after pruning.
package cleango
