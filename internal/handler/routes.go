package handler

import "net/http"

// Handlers groups every HTTP handler the server exposes
type Handlers struct {
	Workspace *WorkspaceHandler
	Nodes     *NodeHandler
	Selection *SelectionHandler
	Preview   *PreviewHandler
	Logs      *LogHandler
}

// Register adds all API routes to mux (Go 1.22+ method and wildcard patterns)
func (h *Handlers) Register(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", h.Workspace.HealthCheck)

	// Workspace routes
	mux.HandleFunc("GET /api/workspace", h.Workspace.GetWorkspace)
	mux.HandleFunc("GET /api/templates", h.Workspace.ListTemplates)

	// Node routes, addressed by slash-separated path
	mux.HandleFunc("GET /api/nodes/{path...}", h.Nodes.GetNode)
	mux.HandleFunc("POST /api/nodes/{path...}", h.Nodes.CreateNode)
	mux.HandleFunc("PATCH /api/nodes/{path...}", h.Nodes.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{path...}", h.Nodes.DeleteNode)
	mux.HandleFunc("POST /api/edits/{path...}", h.Nodes.SubmitEdit) // Debounced

	// Selection routes
	mux.HandleFunc("GET /api/selection", h.Selection.GetSelection)
	mux.HandleFunc("PUT /api/selection", h.Selection.SelectNode)
	mux.HandleFunc("DELETE /api/selection", h.Selection.ClearSelection)

	// Preview routes
	mux.HandleFunc("GET /api/preview", h.Preview.GetActivePreview)
	mux.HandleFunc("PUT /api/preview/active", h.Preview.SetActiveProject)
	mux.HandleFunc("POST /api/projects/{name}/compile", h.Preview.TriggerCompile)
	mux.HandleFunc("GET /api/projects/{name}/preview", h.Preview.GetProjectPreview)
	mux.HandleFunc("GET /api/projects/{name}/sandbox", h.Preview.GetSandbox)
	mux.HandleFunc("POST /api/projects/{name}/console", h.Preview.ReportConsole)

	// Log routes
	mux.HandleFunc("GET /api/projects/{name}/logs", h.Logs.GetLogs)
	mux.HandleFunc("GET /api/projects/{name}/logs/stream", h.Logs.StreamLogs) // SSE
}
