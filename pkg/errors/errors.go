// Package errors provides error handling and the warning system used across
// cleango. It is inspired by scikit-learn's warning/exception hierarchy and
// keeps structured context on every error so that callers (and the pkg/log
// handlers) can report label-noise estimation failures precisely.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("cleango-warning: %v\n", w)
	}
	// zerolog warn hook (lazily installed to avoid an import cycle with pkg/log).
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler for the whole library.
// Degenerate-estimation conditions (empty confident classes, clamped prune
// targets, non-converged latent estimates) are surfaced through this hook
// rather than as hard failures.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink (avoids a
// circular import between pkg/errors and pkg/log).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink takes precedence when installed,
// otherwise the plain handler is used.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	scikit-learn compatible warning types
//
// ===========================================================================

// ConvergenceWarning is raised when an iterative estimate did not stabilize
// within its iteration budget (e.g. the latent-estimate convergence rounds).
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing the iteration budget.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DegenerateClassWarning is raised when a class ends up with no confident
// members (or no usable probability mass) during noise estimation. The
// estimators recover locally, but the affected estimates can be unreliable.
type DegenerateClassWarning struct {
	Class     int
	Stage     string
	Condition string
}

func (w *DegenerateClassWarning) Error() string {
	return fmt.Sprintf("class %d is degenerate during %s: %s", w.Class, w.Stage, w.Condition)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DegenerateClassWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("class", w.Class).
		Str("stage", w.Stage).
		Str("condition", w.Condition).
		Str("type", "DegenerateClassWarning")
}

// NewDegenerateClassWarning creates a new DegenerateClassWarning.
func NewDegenerateClassWarning(class int, stage, condition string) *DegenerateClassWarning {
	return &DegenerateClassWarning{Class: class, Stage: stage, Condition: condition}
}

// PruneClampWarning is raised when a prune target for an ordered class pair
// exceeds the number of available candidates and is clamped down. Expected
// under extreme noise; pruning continues with the clamped count.
type PruneClampWarning struct {
	NoisyClass int
	TrueClass  int
	Requested  int
	Available  int
}

func (w *PruneClampWarning) Error() string {
	return fmt.Sprintf("prune target for pair (s=%d, y=%d) clamped from %d to %d available candidates",
		w.NoisyClass, w.TrueClass, w.Requested, w.Available)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *PruneClampWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("noisy_class", w.NoisyClass).
		Int("true_class", w.TrueClass).
		Int("requested", w.Requested).
		Int("available", w.Available).
		Str("type", "PruneClampWarning")
}

// NewPruneClampWarning creates a new PruneClampWarning.
func NewPruneClampWarning(noisyClass, trueClass, requested, available int) *PruneClampWarning {
	return &PruneClampWarning{NoisyClass: noisyClass, TrueClass: trueClass, Requested: requested, Available: available}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when Predict, PredictProba or Score is called on
// an estimator whose Fit has not completed.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("cleango: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when an input has a different shape than expected.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/examples, 1 for columns/classes
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("cleango: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when an input parameter fails validation before
// any estimation work begins (mismatched lengths, labels outside {0..K-1},
// fewer class members than cross-validation folds, and similar).
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cleango: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// NoiseTraceError is returned when a supplied or derived noise matrix (or
// inverse noise matrix) has trace <= 1. Such a matrix means the noisy labels
// carry no more signal than uniform guessing, which violates the core
// assumption of confident learning. It is never silently corrected.
type NoiseTraceError struct {
	Matrix string // "noise_matrix" or "inverse_noise_matrix"
	Trace  float64
}

func (e *NoiseTraceError) Error() string {
	return fmt.Sprintf("cleango: trace(%s) = %.6f but must exceed 1; the labels would be no better than random guessing", e.Matrix, e.Trace)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NoiseTraceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("matrix", e.Matrix).
		Float64("trace", e.Trace).
		Str("type", "NoiseTraceError")
}

// NewNoiseTraceError creates a NoiseTraceError with a stack trace attached.
func NewNoiseTraceError(matrix string, trace float64) error {
	err := &NoiseTraceError{Matrix: matrix, Trace: trace}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is invalid for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cleango: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general error raised by an estimator.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cleango: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("cleango: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError reports NaN, Inf, overflow or underflow detected
// during latent-estimate computation.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("cleango: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a
// stack trace attached.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when empty data is passed to an estimator.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a matrix inversion fails.
	ErrSingularMatrix = New("singular matrix")
)
