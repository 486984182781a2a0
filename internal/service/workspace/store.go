package workspace

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"previewhub/internal/config"
	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"
	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/metrics"
)

// store implements the Store interface.
// Writers are serialized by mu; readers load the published snapshot without locking.
type store struct {
	mu        sync.Mutex
	current   atomic.Pointer[models.Tree]
	selection *models.Selection // guarded by mu
	catalog   *TemplateCatalog
	logger    *slog.Logger
}

// NewStore creates a store seeded with initial. A nil initial starts empty.
func NewStore(initial *models.Tree, catalog *TemplateCatalog, logger *slog.Logger) wsSvc.Store {
	if initial == nil {
		initial = models.NewTree()
	}
	s := &store{
		catalog: catalog,
		logger:  logger,
	}
	s.current.Store(initial)
	metrics.SetWorkspaceFiles(initial.Root.FileCount())
	return s
}

// Snapshot returns the current immutable tree
func (s *store) Snapshot() *models.Tree {
	return s.current.Load()
}

// Node looks up a node by path
func (s *store) Node(path models.Path) (*models.Node, error) {
	node, ok := s.Snapshot().Lookup(path)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%q not found", path.String())}
	}
	return node, nil
}

// Project looks up a top-level project folder by name
func (s *store) Project(name string) (*models.Node, error) {
	node, _ := s.Snapshot().Root.Child(name)
	if node == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("project %q not found", name)}
	}
	return node, nil
}

// AddNode adds node under the folder at parentPath
func (s *store) AddNode(parentPath models.Path, node *models.Node) (*models.Tree, error) {
	return s.apply("add", parentPath, func(root *models.Node) (*models.Node, error) {
		return addNode(root, parentPath, node)
	}, nil)
}

// DeleteNode removes the child named name; a missing child is a no-op
func (s *store) DeleteNode(parentPath models.Path, name string) (*models.Tree, error) {
	return s.apply("delete", parentPath.Join(name), func(root *models.Node) (*models.Node, error) {
		return deleteNode(root, parentPath, name)
	}, nil)
}

// RenameNode renames a child; renaming to the same name is a no-op
func (s *store) RenameNode(parentPath models.Path, oldName, newName string) (*models.Tree, error) {
	if oldName == newName {
		return s.Snapshot(), nil
	}
	oldPath := parentPath.Join(oldName)
	return s.apply("rename", oldPath, func(root *models.Node) (*models.Node, error) {
		return renameNode(root, parentPath, oldName, newName)
	}, renamedSelection(oldPath, newName))
}

// UpdateFileContent replaces the content of the file at path
func (s *store) UpdateFileContent(path models.Path, content string) (*models.Tree, error) {
	if err := checkContentSize(content); err != nil {
		return nil, err
	}
	return s.apply("update", path, func(root *models.Node) (*models.Node, error) {
		return updateFileContent(root, path, content)
	}, nil)
}

// UpdateNode applies a content change and a rename against the same snapshot.
// Either both are published or neither is.
func (s *store) UpdateNode(path models.Path, newName, content *string) (*models.Tree, error) {
	if newName == nil && content == nil {
		return nil, &domain.ValidationError{Message: "nothing to update: set name and/or content"}
	}
	if len(path) == 0 {
		return nil, &domain.ValidationError{Message: "node path is required"}
	}
	if content != nil {
		if err := checkContentSize(*content); err != nil {
			return nil, err
		}
	}

	rename := newName != nil && *newName != path.Base()
	var remap func(models.Path) models.Path
	if rename {
		remap = renamedSelection(path, *newName)
	}

	return s.apply("update", path, func(root *models.Node) (*models.Node, error) {
		var err error
		if content != nil {
			if root, err = updateFileContent(root, path, *content); err != nil {
				return nil, err
			}
		}
		if rename {
			return renameNode(root, path.Parent(), path.Base(), *newName)
		}
		return root, nil
	}, remap)
}

// CreateFolderFromTemplate creates a folder seeded with a deep copy of a template
func (s *store) CreateFolderFromTemplate(parentPath models.Path, folderName, templateID string) (*models.Tree, error) {
	children, err := s.catalog.Instantiate(templateID)
	if err != nil {
		return nil, err
	}
	return s.AddNode(parentPath, models.NewFolder(folderName, children...))
}

// apply runs one mutation against the current snapshot and publishes the result.
// On error nothing is published; a returned root identical to the input is a no-op.
// remap, when set, rewrites the selection path before it is re-resolved.
func (s *store) apply(
	op string,
	target models.Path,
	mutate func(root *models.Node) (*models.Node, error),
	remap func(selected models.Path) models.Path,
) (*models.Tree, error) {
	if err := validatePath(target); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	root, err := mutate(prev.Root)
	if err != nil {
		s.logger.Debug("workspace mutation rejected",
			"op", op,
			"path", target.String(),
			"error", err,
		)
		metrics.RecordTreeMutation(op, false)
		return nil, err
	}
	if root == prev.Root {
		return prev, nil
	}

	next := &models.Tree{Root: root, Version: prev.Version + 1}
	s.current.Store(next)
	if remap != nil && s.selection != nil {
		s.selection = &models.Selection{Path: remap(s.selection.Path), Node: s.selection.Node}
	}
	s.reresolveSelectionLocked(next)

	metrics.RecordTreeMutation(op, true)
	metrics.SetWorkspaceFiles(root.FileCount())
	s.logger.Debug("workspace mutated",
		"op", op,
		"path", target.String(),
		"version", next.Version,
	)
	return next, nil
}

// renamedSelection rewrites selected paths at or below oldPath to carry newName
func renamedSelection(oldPath models.Path, newName string) func(models.Path) models.Path {
	return func(selected models.Path) models.Path {
		if !selected.HasPrefix(oldPath) {
			return selected
		}
		renamed := append(models.Path(nil), selected...)
		renamed[len(oldPath)-1] = newName
		return renamed
	}
}

func checkContentSize(content string) error {
	if len(content) > config.MaxFileContentBytes {
		return &domain.ValidationError{
			Message: fmt.Sprintf("content exceeds %d bytes", config.MaxFileContentBytes),
		}
	}
	return nil
}

// Select makes the node at path the active selection.
// The lookup and the assignment happen under mu so a concurrent delete
// cannot leave the selection pointing at a removed node.
func (s *store) Select(path models.Path) (*models.Selection, error) {
	if len(path) == 0 {
		return nil, &domain.ValidationError{Message: "selection path is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.current.Load().Lookup(path)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%q not found", path.String())}
	}
	s.selection = &models.Selection{Path: append(models.Path(nil), path...), Node: node}
	return s.selection, nil
}

// Selection returns the active selection or nil
func (s *store) Selection() *models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// ClearSelection drops the active selection
func (s *store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// reresolveSelectionLocked points the selection at the node in the new
// snapshot, or clears it when the node is gone
func (s *store) reresolveSelectionLocked(tree *models.Tree) {
	if s.selection == nil {
		return
	}
	node, ok := tree.Lookup(s.selection.Path)
	if !ok {
		s.logger.Debug("selection cleared, node removed", "path", s.selection.Path.String())
		s.selection = nil
		return
	}
	s.selection = &models.Selection{Path: s.selection.Path, Node: node}
}
