package handler

import (
	"log/slog"
	"net/http"

	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/httputil"
)

// TemplateLister lists the folder templates offered to clients
type TemplateLister interface {
	IDs() []string
}

// WorkspaceHandler serves the whole-tree endpoints
type WorkspaceHandler struct {
	store     wsSvc.Store
	templates TemplateLister
	logger    *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(store wsSvc.Store, templates TemplateLister, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		store:     store,
		templates: templates,
		logger:    logger,
	}
}

// HealthCheck handles GET /health
func (h *WorkspaceHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"workspace_version": h.store.Snapshot().Version,
	})
}

// GetWorkspace returns the current snapshot
// GET /api/workspace
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.store.Snapshot().View())
}

// ListTemplates returns the template ids accepted by node creation
// GET /api/templates
func (h *WorkspaceHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string][]string{
		"templates": h.templates.IDs(),
	})
}
