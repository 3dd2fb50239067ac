package http

import (
	"errors"
	"net/http"

	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

// errorResponse maps an application error to its response body; Code is the HTTP status.
func errorResponse(err error) ErrorResponse {
	var (
		validationErr *wizard.ValidationError
		resolutionErr *ports.ResolutionError
		submissionErr *ports.SubmissionError
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: validationErr.Stage.String() + " stage input is invalid",
			Fields:  validationErr.Fields.Messages(),
		}

	case errors.As(err, &resolutionErr):
		return failure(http.StatusBadGateway, resolutionErr.Error(), true)

	case errors.As(err, &submissionErr):
		status := http.StatusBadGateway
		switch submissionErr.HTTPStatus {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			status = submissionErr.HTTPStatus
		}
		return failure(status, submissionErr.Error(), submissionErr.Retryable())

	case errors.Is(err, wizard.ErrOperationInProgress):
		return failure(http.StatusConflict, err.Error(), true)

	case errors.Is(err, wizard.ErrDraftMoved),
		errors.Is(err, wizard.ErrFinalizeRequired),
		errors.Is(err, expedition.ErrStageTransition),
		errors.Is(err, expedition.ErrRouteIsNotResolved):
		return failure(http.StatusConflict, err.Error(), false)

	case errors.Is(err, errs.ErrObjectNotFound):
		return failure(http.StatusNotFound, err.Error(), false)

	case errors.Is(err, ports.ErrPersistence):
		return failure(http.StatusServiceUnavailable, err.Error(), true)

	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return failure(http.StatusBadRequest, err.Error(), false)
	}

	return failure(http.StatusInternalServerError, "internal error", false)
}

func failure(code int, message string, retryable bool) ErrorResponse {
	return ErrorResponse{Code: code, Message: message, Retryable: retryable}
}
