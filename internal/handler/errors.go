package handler

import (
	"errors"
	"net/http"

	"previewhub/internal/domain"
	"previewhub/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// The outermost typed error decides the status, so a ValidationError that
// wraps a NotFoundError is still a 400.
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"name": conflictErr.Name,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// handleParseError answers a request body that could not be decoded
func handleParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
}
