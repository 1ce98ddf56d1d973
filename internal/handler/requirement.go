package handler

import (
	"log/slog"
	"net/http"

	docsystem "dealdesk/internal/domain/models/docsystem"
	"dealdesk/internal/domain/services"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
	"dealdesk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// RequirementHandler handles requirement checklist HTTP requests
type RequirementHandler struct {
	tracker    docsysSvc.RequirementTracker
	authorizer services.DealAuthorizer
	logger     *slog.Logger
}

// NewRequirementHandler creates a new requirement handler
func NewRequirementHandler(tracker docsysSvc.RequirementTracker, authorizer services.DealAuthorizer, logger *slog.Logger) *RequirementHandler {
	return &RequirementHandler{
		tracker:    tracker,
		authorizer: authorizer,
		logger:     logger,
	}
}

// LinkRequest names the file that fulfils a requirement
type LinkRequest struct {
	NodeID string `json:"node_id"`
}

// UpdateRequirementRequest overrides is_required
type UpdateRequirementRequest struct {
	IsRequired *bool `json:"is_required"`
}

// ListRequirements lists a deal's requirements by category then name
// GET /api/deals/{dealID}/requirements
func (h *RequirementHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.tracker.ListRequirements(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reqs)
}

// CreateRequirement adds a requirement to a deal
// POST /api/deals/{dealID}/requirements
func (h *RequirementHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateRequirementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.DealID = chi.URLParam(r, "dealID")

	requirement, err := h.tracker.CreateRequirement(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, requirement)
}

// Summarize counts a deal's requirements by status
// GET /api/deals/{dealID}/requirements/summary
func (h *RequirementHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tracker.Summarize(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}

// SeedDefaults creates the standard checklist for a deal
// POST /api/deals/{dealID}/requirements/seed
func (h *RequirementHandler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.tracker.SeedDefaults(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reqs)
}

// GetRequirement retrieves a requirement
// GET /api/requirements/{requirementID}
func (h *RequirementHandler) GetRequirement(w http.ResponseWriter, r *http.Request) {
	requirement, err := h.authorizeRequirement(r, false)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// LinkUpload marks a requirement as fulfilled by a file
// POST /api/requirements/{requirementID}/link
func (h *RequirementHandler) LinkUpload(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.NodeID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node_id is required")
		return
	}

	requirement, err := h.authorizeRequirement(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	requirement, err = h.tracker.LinkUpload(r.Context(), requirement.ID, req.NodeID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// Unlink clears a requirement's uploaded file
// POST /api/requirements/{requirementID}/unlink
func (h *RequirementHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	requirement, err := h.authorizeRequirement(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	requirement, err = h.tracker.Unlink(r.Context(), requirement.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// UpdateRequirement overrides whether a requirement is required
// PATCH /api/requirements/{requirementID}
func (h *RequirementHandler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequirementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.IsRequired == nil {
		httputil.RespondError(w, http.StatusBadRequest, "is_required is required")
		return
	}

	requirement, err := h.authorizeRequirement(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	requirement, err = h.tracker.SetRequired(r.Context(), requirement.ID, *req.IsRequired)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// DeleteRequirement removes a requirement
// DELETE /api/requirements/{requirementID}
func (h *RequirementHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	requirement, err := h.authorizeRequirement(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	if err := h.tracker.DeleteRequirement(r.Context(), requirement.ID); err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeRequirement loads the {requirementID} requirement and checks access to its deal
func (h *RequirementHandler) authorizeRequirement(r *http.Request, write bool) (*docsystem.Requirement, error) {
	requirement, err := h.tracker.GetRequirement(r.Context(), chi.URLParam(r, "requirementID"))
	if err != nil {
		return nil, err
	}
	if err := authorizeDeal(r.Context(), h.authorizer, httputil.GetPrincipal(r), requirement.DealID, write); err != nil {
		return nil, err
	}
	return requirement, nil
}
