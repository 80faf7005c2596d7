package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/domain"
	"inkwell/internal/httputil"
)

// handleError maps domain errors to HTTP responses. All classification
// happens here so handlers stay thin; unknown errors become opaque 500s.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var lockErr *domain.LockConflictError
	if errors.As(err, &lockErr) {
		httputil.RespondErrorWithExtras(w, http.StatusConflict, lockErr.Error(), map[string]interface{}{
			"held_by":   lockErr.HeldBy,
			"locked_at": lockErr.LockedAt,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConcurrency):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUserID extracts the acting user or writes a 401. Mutating endpoints
// must not proceed without an identity.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user identity required")
		return "", false
	}
	return userID, true
}
