package handler

import (
	"net/http"

	"dealdesk/internal/httputil"
	"dealdesk/internal/service/navigation"
)

// NavigationHandler serves UI navigation breadcrumbs
type NavigationHandler struct{}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Breadcrumbs derives navigation crumbs from a UI path
// GET /api/navigation/breadcrumbs?path=/deals/{id}/documents
func (h *NavigationHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, navigation.BreadcrumbsFromPath(r.URL.Query().Get("path")))
}

// HealthCheck reports that the process is serving
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
