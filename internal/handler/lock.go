package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"

	verSvc "inkwell/internal/domain/services/versioning"
)

// LockHandler handles edit-lock HTTP requests
type LockHandler struct {
	locks  verSvc.LockManager
	logger *slog.Logger
}

// NewLockHandler creates a new lock handler
func NewLockHandler(locks verSvc.LockManager, logger *slog.Logger) *LockHandler {
	return &LockHandler{
		locks:  locks,
		logger: logger,
	}
}

// AcquireLock takes (or refreshes) the edit lock for the acting user
// POST /api/documents/{id}/lock
// Returns 409 with held_by/locked_at when another user holds a fresh lock.
func (h *LockHandler) AcquireLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, err := h.locks.Acquire(r.Context(), documentID, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ReleaseLock releases the edit lock if the acting user holds it
// DELETE /api/documents/{id}/lock
func (h *LockHandler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := h.locks.Release(r.Context(), documentID, userID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForceUnlock clears the lock unconditionally (administrative override)
// POST /api/documents/{id}/force-unlock
func (h *LockHandler) ForceUnlock(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := h.locks.ForceUnlock(r.Context(), documentID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
