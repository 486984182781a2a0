package workspace

import (
	models "previewhub/internal/domain/models/workspace"
)

// Store owns the workspace tree and the selection.
// Every mutation is validated against the current snapshot and either swaps
// in a complete new snapshot or returns an error with nothing changed.
type Store interface {
	// Snapshot returns the current immutable tree
	Snapshot() *models.Tree

	// Node looks up a node by path
	Node(path models.Path) (*models.Node, error)

	// Project looks up a top-level project folder by name
	Project(name string) (*models.Node, error)

	// AddNode adds node under the folder at parentPath
	AddNode(parentPath models.Path, node *models.Node) (*models.Tree, error)

	// DeleteNode removes the child named name; a missing child is a no-op
	DeleteNode(parentPath models.Path, name string) (*models.Tree, error)

	// RenameNode renames a child; renaming to the same name is a no-op
	RenameNode(parentPath models.Path, oldName, newName string) (*models.Tree, error)

	// UpdateFileContent replaces the content of the file at path
	UpdateFileContent(path models.Path, content string) (*models.Tree, error)

	// UpdateNode sets content and/or renames the node at path in one mutation;
	// a nil argument leaves that aspect unchanged
	UpdateNode(path models.Path, newName, content *string) (*models.Tree, error)

	// CreateFolderFromTemplate creates a folder seeded with a deep copy of a template
	CreateFolderFromTemplate(parentPath models.Path, folderName, templateID string) (*models.Tree, error)

	// Select makes the node at path the active selection
	Select(path models.Path) (*models.Selection, error)

	// Selection returns the active selection or nil
	Selection() *models.Selection

	// ClearSelection drops the active selection
	ClearSelection()
}

// ContentCommitter coalesces rapid content changes per file before they reach the Store
type ContentCommitter interface {
	// Submit records a content change; only the last value in a quiet period is committed
	Submit(path models.Path, content string)

	// Cancel drops a pending change without committing it
	Cancel(path models.Path) bool

	// Flush commits every pending change immediately
	Flush()
}

// CreateNodeRequest is the body of POST /api/nodes/{path...}
type CreateNodeRequest struct {
	Name     string      `json:"name"`
	Kind     models.Kind `json:"kind"`
	Content  string      `json:"content,omitempty"`
	Template string      `json:"template,omitempty"` // Folders only
}

// UpdateNodeRequest is the body of PATCH /api/nodes/{path...}
type UpdateNodeRequest struct {
	Name    *string `json:"name,omitempty"`    // rename
	Content *string `json:"content,omitempty"` // files only, committed immediately
}

// EditRequest is a debounced content-changed event from the editor
type EditRequest struct {
	Content string `json:"content"`
}

// SelectRequest is the body of PUT /api/selection
type SelectRequest struct {
	Path string `json:"path"`
}

// NodeView is a node plus the editor language id derived from its name
type NodeView struct {
	Path       string       `json:"path"`
	LanguageID string       `json:"language_id,omitempty"` // Files only
	Node       *models.Node `json:"node"`
}
