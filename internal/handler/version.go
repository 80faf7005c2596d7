package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/diff"
	"inkwell/internal/httputil"

	verSvc "inkwell/internal/domain/services/versioning"
)

// VersionHandler handles version history HTTP requests
type VersionHandler struct {
	versions   verSvc.VersionService
	milestones verSvc.MilestoneService
	restore    verSvc.RestoreService
	logger     *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(
	versions verSvc.VersionService,
	milestones verSvc.MilestoneService,
	restore verSvc.RestoreService,
	logger *slog.Logger,
) *VersionHandler {
	return &VersionHandler{
		versions:   versions,
		milestones: milestones,
		restore:    restore,
		logger:     logger,
	}
}

// CreateVersion commits a new content snapshot for a document
// POST /api/documents/{id}/versions
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req verSvc.CreateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.CreatedBy = userID

	version, err := h.versions.CreateVersion(r.Context(), documentID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// ListVersions lists a document's versions, newest first
// GET /api/documents/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	versions, err := h.versions.ListVersions(r.Context(), documentID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetVersion retrieves a single version
// GET /api/versions/{id}
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version ID is required")
		return
	}

	version, err := h.versions.GetVersion(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// CompareVersions diffs two versions of a document
// GET /api/documents/{id}/diff?old={versionId}&new={versionId}&granularity=word|character
func (h *VersionHandler) CompareVersions(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	oldID := r.URL.Query().Get("old")
	newID := r.URL.Query().Get("new")
	if documentID == "" || oldID == "" || newID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID and old/new version IDs are required")
		return
	}

	granularity, err := diff.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comparison, err := h.versions.CompareVersions(r.Context(), documentID, oldID, newID, granularity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comparison)
}

// RestoreVersion re-materializes a past snapshot as a new current version
// POST /api/documents/{id}/versions/{versionId}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	documentID := r.PathValue("id")
	versionID := r.PathValue("versionId")
	if documentID == "" || versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID and version ID are required")
		return
	}

	version, err := h.restore.Restore(r.Context(), documentID, versionID, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// markMilestoneRequest is the body of a milestone mark call
type markMilestoneRequest struct {
	Name string `json:"name"`
}

// MarkMilestone flags a version as a named checkpoint
// PUT /api/versions/{id}/milestone
func (h *VersionHandler) MarkMilestone(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version ID is required")
		return
	}

	var req markMilestoneRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.milestones.Mark(r.Context(), id, req.Name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// UnmarkMilestone clears the milestone fields of a version
// DELETE /api/versions/{id}/milestone
func (h *VersionHandler) UnmarkMilestone(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version ID is required")
		return
	}

	version, err := h.milestones.Unmark(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// ListMilestones lists a document's milestone versions, newest first
// GET /api/documents/{id}/milestones
func (h *VersionHandler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	versions, err := h.milestones.ListMilestones(r.Context(), documentID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}
