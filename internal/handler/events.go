package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/notify"

	verSvc "inkwell/internal/domain/services/versioning"
)

// EventsHandler upgrades clients to websocket subscriptions on a document's
// event stream. Delivery is best-effort; clients re-fetch state on reconnect.
type EventsHandler struct {
	hub        *notify.Hub
	docService verSvc.DocumentService
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *notify.Hub, docService verSvc.DocumentService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hub:        hub,
		docService: docService,
		logger:     logger,
	}
}

// Subscribe streams a document's lock_changed/version_created events
// GET /api/documents/{id}/events
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	// Reject subscriptions to unknown documents before upgrading
	if _, err := h.docService.GetDocument(r.Context(), documentID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.hub.Subscribe(w, r, documentID); err != nil {
		// Upgrade failures already wrote a response
		h.logger.Debug("websocket upgrade failed", "document_id", documentID, "error", err)
	}
}
