package wizard

import (
	"errors"
	"fmt"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/services/validation"
)

var (
	// ErrOperationInProgress is returned when a session already waits on an external call.
	ErrOperationInProgress = errors.New("another operation is in progress for this session")

	// ErrDraftMoved is returned when an external call completed after the draft
	// was retreated or reset; its result was discarded.
	ErrDraftMoved = errors.New("draft moved on while the call was in flight")

	// ErrFinalizeRequired is returned when the payment stage is submitted to Advance.
	ErrFinalizeRequired = errors.New("payment stage is completed by finalize")

	// ErrNotInitialized is returned by operations on a controller that was never initialized.
	ErrNotInitialized = errors.New("wizard is not initialized")

	// ErrNoDraftStore is returned by Flush when the session has no store to save to.
	ErrNoDraftStore = errors.New("no draft store is configured")
)

// ValidationError carries the field errors that kept a stage input from completing Stage.
type ValidationError struct {
	Stage  expedition.Stage
	Fields validation.FieldErrors
}

func NewValidationError(stage expedition.Stage, fields validation.FieldErrors) *ValidationError {
	return &ValidationError{Stage: stage, Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s stage input is invalid: %s", e.Stage, e.Fields.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}
