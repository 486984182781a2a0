package handler

import (
	"log/slog"
	"net/http"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"
	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/httputil"
	"previewhub/internal/service/workspace"
)

// NodeHandler handles file and folder requests addressed by path
type NodeHandler struct {
	store     wsSvc.Store
	committer wsSvc.ContentCommitter
	logger    *slog.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(store wsSvc.Store, committer wsSvc.ContentCommitter, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		store:     store,
		committer: committer,
		logger:    logger,
	}
}

// nodeView pairs a node with its path and editor language
func nodeView(path models.Path, node *models.Node) wsSvc.NodeView {
	view := wsSvc.NodeView{Path: path.String(), Node: node}
	if !node.IsFolder() {
		view.LanguageID = workspace.LanguageID(node.Name)
	}
	return view
}

// requireNodePath reads a non-empty path from the URL
func requireNodePath(w http.ResponseWriter, r *http.Request) (models.Path, bool) {
	path := httputil.NodePath(r)
	if len(path) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "node path is required")
		return nil, false
	}
	return path, true
}

// GetNode returns a node and its language id
// GET /api/nodes/{path...}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	path, ok := requireNodePath(w, r)
	if !ok {
		return
	}

	node, err := h.store.Node(path)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nodeView(path, node))
}

// CreateNode adds a file or folder inside the folder at path. An empty path
// creates a top-level project folder.
// POST /api/nodes/{path...}
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	parent := httputil.NodePath(r)

	var req wsSvc.CreateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	var (
		tree *models.Tree
		err  error
	)
	switch {
	case req.Template != "":
		if req.Kind != "" && req.Kind != models.KindFolder {
			httputil.RespondError(w, http.StatusBadRequest, "templates can only create folders")
			return
		}
		tree, err = h.store.CreateFolderFromTemplate(parent, req.Name, req.Template)
	case req.Kind == models.KindFile:
		tree, err = h.store.AddNode(parent, models.NewFile(req.Name, req.Content))
	default:
		tree, err = h.store.AddNode(parent, &models.Node{Name: req.Name, Kind: req.Kind})
	}
	if err != nil {
		handleError(w, err)
		return
	}

	path := parent.Join(req.Name)
	node, _ := tree.Lookup(path)
	h.logger.Debug("node created", "path", path.String(), "kind", node.Kind, "template", req.Template)
	httputil.RespondJSON(w, http.StatusCreated, nodeView(path, node))
}

// UpdateNode sets file content and/or renames the node at path.
// Both changes land in one store mutation, so a rejected rename keeps the old content.
// PATCH /api/nodes/{path...}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	path, ok := requireNodePath(w, r)
	if !ok {
		return
	}

	var req wsSvc.UpdateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	if req.Name == nil && req.Content == nil {
		handleError(w, &domain.ValidationError{Message: "nothing to update: set name and/or content"})
		return
	}

	if req.Content != nil {
		// An explicit save supersedes any debounced edit still waiting
		h.committer.Cancel(path)
	}
	if req.Name != nil {
		// Pending edits address the old path
		h.committer.Flush()
	}

	tree, err := h.store.UpdateNode(path, req.Name, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}
	if req.Name != nil {
		path = path.Parent().Join(*req.Name)
	}

	node, found := tree.Lookup(path)
	if !found {
		handleError(w, &domain.NotFoundError{Message: "node not found after update"})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nodeView(path, node))
}

// DeleteNode removes the node at path; deleting a missing node succeeds
// DELETE /api/nodes/{path...}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	path, ok := requireNodePath(w, r)
	if !ok {
		return
	}

	h.committer.Cancel(path)
	if _, err := h.store.DeleteNode(path.Parent(), path.Base()); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitEdit queues an editor content change; only the last change in a
// quiet period is committed
// POST /api/edits/{path...}
func (h *NodeHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	path, ok := requireNodePath(w, r)
	if !ok {
		return
	}

	var req wsSvc.EditRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	node, err := h.store.Node(path)
	if err != nil {
		handleError(w, err)
		return
	}
	if node.IsFolder() {
		handleError(w, &domain.ValidationError{Message: path.String() + " is a folder, not a file"})
		return
	}

	h.committer.Submit(path, req.Content)
	httputil.RespondJSON(w, http.StatusAccepted, map[string]string{"path": path.String(), "status": "pending"})
}
