// Package log defines standard attribute keys for label-noise estimation
// and pruning operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in cleango. Using these standard keys enables better
// log analysis, monitoring, and debugging of noise-estimation workflows.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Data Shape and Characteristics
//   - Noise Estimation Context
//   - Pruning Context
//   - Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "CleanLearning", "LogisticRegression"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	// This is useful for tracking multiple instances of the same model type.
	// Examples: "cl-001", UUID strings
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "confident_joint",
	// "latent_estimation", "prune"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "estimation", "pruning", "crossval", "classification"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the cleaning pipeline.
	// Examples: "cross_validation", "estimation", "pruning", "refit", "inference"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct classes K.
	ClassesKey = "data.classes"

	// ClassKey identifies a single class index in per-class messages.
	ClassKey = "data.class"

	// ClassCountKey records the number of examples observed for one class.
	ClassCountKey = "data.class_count"
)

// Noise Estimation Context
// These attributes describe latent estimation inputs and outputs.
const (
	// NoiseTraceKey records trace(P(s|y)), the sum of per-class label
	// correctness probabilities. Values near K mean little noise; the
	// estimation pipeline requires a value above 1.
	NoiseTraceKey = "noise.trace"

	// InverseTraceKey records trace(P(y|s)).
	InverseTraceKey = "noise.inverse_trace"

	// JointTraceKey records trace(P(s,y)), the estimated fraction of
	// correctly labeled examples.
	JointTraceKey = "noise.joint_trace"

	// ThresholdKey records a per-class confidence threshold used when
	// counting the confident joint.
	ThresholdKey = "noise.threshold"

	// ConfidentCountKey records the number of examples counted into the
	// confident joint (rows with at least one confident class).
	ConfidentCountKey = "noise.confident_count"

	// EstimationModeKey records which latent quantities were supplied by
	// the caller versus estimated from data.
	// Examples: "estimate_all", "from_noise_matrix", "from_inverse", "both_given"
	EstimationModeKey = "noise.estimation_mode"
)

// Pruning Context
// These attributes describe label-error identification and pruning.
const (
	// PruneMethodKey records the pruning strategy.
	// Standard values: "prune_by_class", "prune_by_noise_rate", "both"
	PruneMethodKey = "prune.method"

	// PrunedKey records the number of examples flagged as label errors.
	PrunedKey = "prune.count"

	// PruneFractionKey records pruned count divided by total samples.
	PruneFractionKey = "prune.fraction"

	// SampleWeightKey records the reweighting factor applied to a class
	// after pruning, 1 / P(s=k|y=k).
	SampleWeightKey = "prune.sample_weight"
)

// Cross-Validation Context
// These attributes describe out-of-sample probability estimation.
const (
	// FoldsKey records the total number of cross-validation folds.
	FoldsKey = "cv.folds"

	// FoldKey records the index of the current fold.
	FoldKey = "cv.fold"

	// SeedKey records the random seed used for fold assignment.
	SeedKey = "cv.seed"
)

// Performance Metrics
// These attributes capture timing, accuracy, and resource usage information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the execution time in seconds for longer operations.
	DurationSecondsKey = "perf.duration_seconds"

	// AccuracyKey records classification accuracy for evaluation operations.
	// Range typically [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the current iteration number during iterative
	// processes such as latent-estimate convergence.
	IterationKey = "training.iteration"
)

// Prediction and Output Context
// These attributes describe prediction operations and their results.
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"

	// ConfidenceKey records prediction confidence or probability.
	// Range typically [0.0, 1.0].
	ConfidenceKey = "preds.confidence"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "NOISE_TRACE"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "NoiseTraceError", "DimensionError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Check label encoding", "Provide more folds"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
// These attributes capture model configuration for reproducibility.
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard operations
	OperationFit            = "fit"
	OperationPredict        = "predict"
	OperationScore          = "score"
	OperationConfidentJoint = "confident_joint"
	OperationLatent         = "latent_estimation"
	OperationPrune          = "prune"
	OperationCrossVal       = "cross_validation"

	// Standard pipeline phases
	PhaseCrossValidation = "cross_validation"
	PhaseEstimation      = "estimation"
	PhasePruning         = "pruning"
	PhaseRefit           = "refit"
	PhaseInference       = "inference"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorNoiseTrace        = "NOISE_TRACE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
