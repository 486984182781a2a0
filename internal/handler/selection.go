package handler

import (
	"log/slog"
	"net/http"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"
	previewSvc "previewhub/internal/domain/services/preview"
	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/httputil"
)

// SelectionHandler handles the single active {node, path} selection
type SelectionHandler struct {
	store        wsSvc.Store
	orchestrator previewSvc.Orchestrator
	logger       *slog.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(store wsSvc.Store, orchestrator previewSvc.Orchestrator, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{
		store:        store,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetSelection returns the selection, or 204 when nothing is selected
// GET /api/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel := h.store.Selection()
	if sel == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nodeView(sel.Path, sel.Node))
}

// SelectNode selects a node and makes its project the active preview
// PUT /api/selection
func (h *SelectionHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	var req wsSvc.SelectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	path := models.ParsePath(req.Path)
	if len(path) == 0 {
		handleError(w, &domain.ValidationError{Message: "path is required"})
		return
	}

	sel, err := h.store.Select(path)
	if err != nil {
		handleError(w, err)
		return
	}
	if _, err := h.orchestrator.Dispatch(previewSvc.ActivateProject{Project: path.Project()}); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("node selected", "path", path.String())
	httputil.RespondJSON(w, http.StatusOK, nodeView(sel.Path, sel.Node))
}

// ClearSelection drops the selection
// DELETE /api/selection
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}
