package churn

import "fmt"

// ValidationError reports a malformed or out-of-domain input field.
// It is recoverable: the caller fix is a better request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// PipelineIntegrityError reports a feature-vector shape mismatch
// against the loaded artifact. Unlike a ValidationError it indicates
// the artifact and the code have drifted: the deployment is broken,
// not the request.
type PipelineIntegrityError struct {
	Reason string
}

func (e *PipelineIntegrityError) Error() string {
	return fmt.Sprintf("pipeline integrity: %s", e.Reason)
}

// BatchError wraps the failure of a single record inside a batch call,
// carrying the zero-based index of the record that failed.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
