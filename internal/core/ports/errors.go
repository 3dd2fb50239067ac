package ports

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrResolution is wrapped by every ResolutionError.
	ErrResolution = errors.New("route resolution failed")
	// ErrSubmission is wrapped by every SubmissionError.
	ErrSubmission = errors.New("submission failed")
	// ErrPersistence is wrapped by every PersistenceError.
	ErrPersistence = errors.New("draft persistence failed")
)

// ResolutionError reports that a waypoint could not be located or no route was found.
// The user may retry or edit the addresses.
type ResolutionError struct {
	Reason string
	Cause  error
}

func NewResolutionError(reason string, cause error) *ResolutionError {
	return &ResolutionError{Reason: reason, Cause: cause}
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrResolution, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrResolution, e.Reason)
}

func (e *ResolutionError) Unwrap() []error {
	return unwrapWith(ErrResolution, e.Cause)
}

// Retryable is always true: resolution failures never damage the draft.
func (e *ResolutionError) Retryable() bool {
	return true
}

// SubmissionError reports a rejected or failed submission. HTTPStatus is 0 when the
// backend was not reached.
type SubmissionError struct {
	HTTPStatus int
	Message    string
	Cause      error
}

func NewSubmissionError(httpStatus int, message string, cause error) *SubmissionError {
	return &SubmissionError{HTTPStatus: httpStatus, Message: message, Cause: cause}
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrSubmission, e.Message)
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s: status %d: %s", ErrSubmission, e.HTTPStatus, e.Message)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *SubmissionError) Unwrap() []error {
	return unwrapWith(ErrSubmission, e.Cause)
}

// Retryable reports whether the same draft may be submitted again as is: transport
// failures, timeouts, throttling and server errors.
func (e *SubmissionError) Retryable() bool {
	switch {
	case e.HTTPStatus == 0:
		return true
	case e.HTTPStatus == http.StatusRequestTimeout, e.HTTPStatus == http.StatusTooManyRequests:
		return true
	default:
		return e.HTTPStatus >= http.StatusInternalServerError
	}
}

// PersistenceError reports a failed draft store operation. The session keeps working
// in memory.
type PersistenceError struct {
	Op    string
	Key   string
	Cause error
}

func NewPersistenceError(op, key string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Key: key, Cause: cause}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s %s (cause: %v)", ErrPersistence, e.Op, e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() []error {
	return unwrapWith(ErrPersistence, e.Cause)
}

func (e *PersistenceError) Retryable() bool {
	return true
}

func unwrapWith(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
