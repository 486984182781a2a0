package workspace

import (
	"fmt"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"
)

// Persistent tree operations. Each takes the current root and returns a new
// root; the input is never modified. Only the folders on the path from the
// root to the changed folder are copied, every other subtree is shared.
// Returning the input root unchanged signals a no-op.

// folderEdit transforms one folder into its replacement
type folderEdit func(folder *models.Node) (*models.Node, error)

// editFolder applies edit to the folder at path and rebuilds the spine above it.
// Missing or non-folder segments fail fast with a ValidationError.
func editFolder(root *models.Node, path models.Path, edit folderEdit) (*models.Node, error) {
	return editFolderAt(root, path, 0, edit)
}

func editFolderAt(node *models.Node, path models.Path, depth int, edit folderEdit) (*models.Node, error) {
	if depth == len(path) {
		return edit(node)
	}

	child, idx := node.Child(path[depth])
	if child == nil {
		return nil, missingSegment(path[:depth+1])
	}
	if !child.IsFolder() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("%q is not a folder", path[:depth+1].String()),
		}
	}

	updated, err := editFolderAt(child, path, depth+1, edit)
	if err != nil {
		return nil, err
	}
	if updated == child {
		return node, nil
	}
	return withChild(node, idx, updated), nil
}

func missingSegment(p models.Path) error {
	notFound := &domain.NotFoundError{Message: fmt.Sprintf("%q not found", p.String())}
	return &domain.ValidationError{Message: notFound.Message, Err: notFound}
}

// withChild copies folder, replacing the child at idx
func withChild(folder *models.Node, idx int, child *models.Node) *models.Node {
	children := make([]*models.Node, len(folder.Children))
	copy(children, folder.Children)
	children[idx] = child
	return &models.Node{Name: folder.Name, Kind: folder.Kind, Children: children}
}

// withAppended copies folder with child added at the end
func withAppended(folder *models.Node, child *models.Node) *models.Node {
	children := make([]*models.Node, len(folder.Children), len(folder.Children)+1)
	copy(children, folder.Children)
	children = append(children, child)
	return &models.Node{Name: folder.Name, Kind: folder.Kind, Children: children}
}

// withoutChild copies folder with the child at idx removed
func withoutChild(folder *models.Node, idx int) *models.Node {
	children := make([]*models.Node, 0, len(folder.Children)-1)
	children = append(children, folder.Children[:idx]...)
	children = append(children, folder.Children[idx+1:]...)
	return &models.Node{Name: folder.Name, Kind: folder.Kind, Children: children}
}

// addNode inserts a deep copy of node under parentPath
func addNode(root *models.Node, parentPath models.Path, node *models.Node) (*models.Node, error) {
	if err := validateNode(node); err != nil {
		return nil, err
	}
	if len(parentPath) == 0 && !node.IsFolder() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("top-level node %q must be a project folder", node.Name),
		}
	}

	return editFolder(root, parentPath, func(folder *models.Node) (*models.Node, error) {
		if existing, _ := folder.Child(node.Name); existing != nil {
			return nil, &domain.ConflictError{
				Message: fmt.Sprintf("a node named %q already exists in %q", node.Name, parentPath.String()),
				Name:    node.Name,
			}
		}
		return withAppended(folder, node.Clone()), nil
	})
}

// deleteNode removes the named child; a missing child leaves root unchanged
func deleteNode(root *models.Node, parentPath models.Path, name string) (*models.Node, error) {
	return editFolder(root, parentPath, func(folder *models.Node) (*models.Node, error) {
		_, idx := folder.Child(name)
		if idx < 0 {
			return folder, nil
		}
		return withoutChild(folder, idx), nil
	})
}

// renameNode renames a child. The renamed node keeps its children by reference.
func renameNode(root *models.Node, parentPath models.Path, oldName, newName string) (*models.Node, error) {
	if oldName == newName {
		return root, nil
	}
	if err := validateName(newName); err != nil {
		return nil, err
	}

	return editFolder(root, parentPath, func(folder *models.Node) (*models.Node, error) {
		node, idx := folder.Child(oldName)
		if node == nil {
			return nil, &domain.NotFoundError{
				Message: fmt.Sprintf("%q not found", parentPath.Join(oldName).String()),
			}
		}
		if other, _ := folder.Child(newName); other != nil {
			return nil, &domain.ConflictError{
				Message: fmt.Sprintf("a node named %q already exists in %q", newName, parentPath.String()),
				Name:    newName,
			}
		}
		renamed := &models.Node{Name: newName, Kind: node.Kind, Content: node.Content, Children: node.Children}
		return withChild(folder, idx, renamed), nil
	})
}

// updateFileContent replaces the content of the file at path
func updateFileContent(root *models.Node, path models.Path, content string) (*models.Node, error) {
	if len(path) == 0 {
		return nil, &domain.ValidationError{Message: "file path is required"}
	}

	name := path.Base()
	return editFolder(root, path.Parent(), func(folder *models.Node) (*models.Node, error) {
		node, idx := folder.Child(name)
		if node == nil {
			return nil, missingSegment(path)
		}
		if node.IsFolder() {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%q is a folder, not a file", path.String()),
			}
		}
		if node.Content == content {
			return folder, nil
		}
		return withChild(folder, idx, models.NewFile(name, content)), nil
	})
}
