package workspace

// Tree is one immutable snapshot of the workspace.
// Root is a virtual folder whose children are the projects.
type Tree struct {
	Root    *Node  `json:"-"`
	Version uint64 `json:"version"`
}

// NewTree wraps top-level project folders in a snapshot at version 0
func NewTree(projects ...*Node) *Tree {
	return &Tree{Root: NewFolder("", projects...)}
}

// Projects returns the top-level project folders
func (t *Tree) Projects() []*Node {
	return t.Root.Children
}

// Lookup walks the path from the root. Returns the node and true on success.
// An empty path resolves to the virtual root.
func (t *Tree) Lookup(p Path) (*Node, bool) {
	node := t.Root
	for _, name := range p {
		if !node.IsFolder() {
			return nil, false
		}
		child, _ := node.Child(name)
		if child == nil {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Selection is the single active {node, path} pair
type Selection struct {
	Path Path  `json:"path"`
	Node *Node `json:"node"`
}

// TreeView is the JSON shape returned to clients
type TreeView struct {
	Version  uint64  `json:"version"`
	Projects []*Node `json:"projects"`
}

// View returns the snapshot as a client payload
func (t *Tree) View() TreeView {
	projects := t.Root.Children
	if projects == nil {
		projects = []*Node{}
	}
	return TreeView{Version: t.Version, Projects: projects}
}
