package handler

import (
	"log/slog"
	"net/http"

	previewSvc "previewhub/internal/domain/services/preview"
	"previewhub/internal/httputil"
)

// PreviewHandler handles compile and preview state requests
type PreviewHandler struct {
	orchestrator previewSvc.Orchestrator
	logger       *slog.Logger
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(orchestrator previewSvc.Orchestrator, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetActivePreview returns the displayed preview, or 204 when no project is active
// GET /api/preview
func (h *PreviewHandler) GetActivePreview(w http.ResponseWriter, r *http.Request) {
	st, ok := h.orchestrator.Active()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, st)
}

// SetActiveProject switches the displayed preview
// PUT /api/preview/active
func (h *PreviewHandler) SetActiveProject(w http.ResponseWriter, r *http.Request) {
	var req previewSvc.ActivateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	st, err := h.orchestrator.Dispatch(previewSvc.ActivateProject{Project: req.Project})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, st)
}

// TriggerCompile starts a compile; remote kinds finish asynchronously
// POST /api/projects/{name}/compile
func (h *PreviewHandler) TriggerCompile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	st, err := h.orchestrator.Dispatch(previewSvc.TriggerCompile{Project: name})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusAccepted, st)
}

// GetProjectPreview returns a project's retained preview state
// GET /api/projects/{name}/preview
func (h *PreviewHandler) GetProjectPreview(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.orchestrator.State(r.PathValue("name")))
}

// GetSandbox returns the local bundler configuration for a project
// GET /api/projects/{name}/sandbox
func (h *PreviewHandler) GetSandbox(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.orchestrator.Sandbox(r.PathValue("name"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cfg)
}

// ReportConsole records console output from the local sandbox
// POST /api/projects/{name}/console
func (h *PreviewHandler) ReportConsole(w http.ResponseWriter, r *http.Request) {
	var req previewSvc.ConsoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	entries, err := h.orchestrator.ReportSandboxConsole(r.PathValue("name"), req.Messages)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entries)
}
