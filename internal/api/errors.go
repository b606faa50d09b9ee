package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/snaplead-api/internal/api/shared"
	"github.com/phrazzld/snaplead-api/internal/capture"
	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/service"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, capture.ErrSessionNotFound):
		return http.StatusNotFound

	// Conflict errors: the client asked for a move the current screen does
	// not allow, usually a stale tab or a double tap
	case errors.Is(err, capture.ErrInvalidTransition):
		return http.StatusConflict

	// Upstream webhook failures
	case errors.Is(err, service.ErrAnalysisFailed):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, domain.ErrImageDataURLMalformed),
		errors.Is(err, domain.ErrContactEmailEmpty),
		errors.Is(err, domain.ErrContactEmailInvalid),
		errors.Is(err, domain.ErrContactWhatsAppEmpty),
		errors.Is(err, domain.ErrContactWhatsAppInvalid),
		errors.Is(err, domain.ErrPreferencesNameEmpty),
		errors.Is(err, domain.ErrPreferencesGenderInvalid),
		errors.Is(err, domain.ErrPreferencesCoffeeInvalid),
		errors.Is(err, domain.ErrPreferencesAlcoholInvalid):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Domain validation messages are written for the customer
// and pass through unchanged; everything else gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, capture.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, capture.ErrInvalidTransition):
		return "That action is not available on the current screen"

	case errors.Is(err, service.ErrAnalysisFailed):
		return "Photo analysis failed, please try again"

	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// respondServiceError writes the mapped status and safe message for err,
// logging the full error server-side.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
