package handler

import (
	"context"
	"log/slog"
	"net/http"

	"dealdesk/internal/domain/models"
	docsystem "dealdesk/internal/domain/models/docsystem"
	"dealdesk/internal/domain/services"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
	"dealdesk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// NodeHandler handles folder and file HTTP requests
type NodeHandler struct {
	treeService docsysSvc.TreeService
	resolver    docsysSvc.BreadcrumbResolver
	authorizer  services.DealAuthorizer
	logger      *slog.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	treeService docsysSvc.TreeService,
	resolver docsysSvc.BreadcrumbResolver,
	authorizer services.DealAuthorizer,
	logger *slog.Logger,
) *NodeHandler {
	return &NodeHandler{
		treeService: treeService,
		resolver:    resolver,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// UpdateNodeRequest renames and/or moves a node.
// parent_id: absent = keep, null = move to top level, string = move under that folder.
type UpdateNodeRequest struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// ListChildren lists the direct children of a folder, or the deal's top level
// GET /api/deals/{dealID}/nodes?parent_id=
func (h *NodeHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")
	parentID := httputil.OptionalQuery(r, "parent_id")

	children, err := h.treeService.ListChildren(r.Context(), dealID, parentID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// GetTree returns the nested folder/file tree of a deal
// GET /api/deals/{dealID}/tree
func (h *NodeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.treeService.GetTree(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// CreateFolder creates a folder
// POST /api/deals/{dealID}/folders
func (h *NodeHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.DealID = chi.URLParam(r, "dealID")
	req.CreatedBy = httputil.GetUserID(r)

	folder, err := h.treeService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// CreateFile records an uploaded file, optionally fulfilling a requirement
// POST /api/deals/{dealID}/files
func (h *NodeHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.DealID = chi.URLParam(r, "dealID")
	req.CreatedBy = httputil.GetUserID(r)

	file, err := h.treeService.CreateFile(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetNode retrieves a node
// GET /api/nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.authorizeNode(r, false)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// GetBreadcrumb returns the path from the deal root to the node
// GET /api/nodes/{nodeID}/breadcrumb
func (h *NodeHandler) GetBreadcrumb(w http.ResponseWriter, r *http.Request) {
	node, err := h.authorizeNode(r, false)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	crumbs, err := h.resolver.Resolve(r.Context(), node.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, crumbs)
}

// UpdateNode renames and/or moves a node; both changes commit together or not at all
// PATCH /api/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Name == nil && !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update: set name and/or parent_id")
		return
	}

	node, err := h.authorizeNode(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	node, err = h.treeService.Update(r.Context(), node.ID, &docsysSvc.UpdateNodeRequest{
		Name:     req.Name,
		Move:     req.ParentID.Present,
		ParentID: req.ParentID.Value,
	})
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// ReplaceContent points a file at newly uploaded bytes
// PUT /api/nodes/{nodeID}/content
func (h *NodeHandler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.ReplaceContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	node, err := h.authorizeNode(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	node, err = h.treeService.ReplaceContent(r.Context(), node.ID, &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode deletes a node; non-empty folders need ?cascade=true
// DELETE /api/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	cascade, err := httputil.QueryBool(r, "cascade")
	if err != nil {
		badRequest(w, err)
		return
	}

	node, err := h.authorizeNode(r, true)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	if err := h.treeService.Delete(r.Context(), node.ID, cascade); err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeNode loads the {nodeID} node and checks access to its deal
func (h *NodeHandler) authorizeNode(r *http.Request, write bool) (*docsystem.Node, error) {
	node, err := h.treeService.GetNode(r.Context(), chi.URLParam(r, "nodeID"))
	if err != nil {
		return nil, err
	}
	if err := authorizeDeal(r.Context(), h.authorizer, httputil.GetPrincipal(r), node.DealID, write); err != nil {
		return nil, err
	}
	return node, nil
}

// authorizeDeal applies the read or write check for dealID
func authorizeDeal(ctx context.Context, authorizer services.DealAuthorizer, p *models.Principal, dealID string, write bool) error {
	if write {
		return authorizer.CanWriteDeal(ctx, p, dealID)
	}
	return authorizer.CanReadDeal(ctx, p, dealID)
}
