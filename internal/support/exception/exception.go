// Package exception provides the error types used by the cleaning pipeline.
// It standardizes failures into a small taxonomy so that callers can decide,
// with errors.Is, whether an invocation failed on its input, its schema, or
// one of the storage collaborators.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Sentinel errors forming the pipeline failure taxonomy. Fatal kinds abort
// the whole invocation before anything is written; the collaborator kinds
// originate in the storage layer and propagate unchanged.
var (
	// ErrMalformedInput indicates the raw input could not be parsed into a
	// record table (corrupt or empty file, missing header).
	ErrMalformedInput = errors.New("malformed input")
	// ErrSchemaMismatch indicates a column required by the rule table is
	// absent from the parsed table.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrNotFound indicates the requested object does not exist in storage.
	ErrNotFound = errors.New("object not found")
	// ErrAccess indicates an authorization failure against storage.
	ErrAccess = errors.New("storage access denied")
	// ErrCapacity indicates the storage backend refused the write for
	// capacity reasons.
	ErrCapacity = errors.New("storage capacity exceeded")
)

// PipelineError is the error type raised by pipeline stages. It carries the
// stage where the error occurred, a message, the wrapped original error and
// the taxonomy kind it belongs to.
type PipelineError struct {
	// Stage indicates where the error occurred (e.g. "reader", "cleaner",
	// "writer", "storage", "config", "ledger").
	Stage string
	// Message is a concise description of the error.
	Message string
	// Kind is the taxonomy sentinel this error belongs to, or nil for
	// errors outside the taxonomy.
	Kind error
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewPipelineError creates a new PipelineError instance.
// kind may be nil when the error does not map to a taxonomy sentinel.
func NewPipelineError(stage, message string, kind, originalErr error) *PipelineError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &PipelineError{
		Stage:       stage,
		Message:     message,
		Kind:        kind,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
	}
}

// NewMalformedInputError creates a fatal error for unparseable input.
func NewMalformedInputError(stage, message string, originalErr error) *PipelineError {
	return NewPipelineError(stage, message, ErrMalformedInput, originalErr)
}

// NewSchemaMismatchError creates a fatal error naming the missing column.
func NewSchemaMismatchError(stage, column string) *PipelineError {
	return NewPipelineError(stage, fmt.Sprintf("required column '%s' is absent from the input table", column), ErrSchemaMismatch, nil)
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

// Unwrap exposes the wrapped errors to errors.Is / errors.As. Both the
// taxonomy sentinel and the original error are reachable through the chain.
func (e *PipelineError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.OriginalErr != nil {
		errs = append(errs, e.OriginalErr)
	}
	return errs
}

// IsFatal reports whether err aborts the invocation before any write.
// Only the malformed-input and schema-mismatch kinds are fatal to the engine
// itself; collaborator errors are surfaced but originate outside it.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMalformedInput) || errors.Is(err, ErrSchemaMismatch)
}

// KindName returns the taxonomy name for err, or "internal" when the error
// does not belong to the taxonomy. The ledger stores this string.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "MalformedInputError"
	case errors.Is(err, ErrSchemaMismatch):
		return "SchemaMismatchError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrAccess):
		return "AccessError"
	case errors.Is(err, ErrCapacity):
		return "CapacityError"
	default:
		return "internal"
	}
}

// ExtractErrorMessage extracts the error message string from an error.
// For PipelineError, it returns the cleaner Message field.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
