package workspace

import "strings"

// Kind distinguishes files from folders
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is a file or folder in the workspace tree.
//
// Nodes reachable from a published Tree are immutable: mutations build new
// nodes along the changed spine and share every untouched subtree.
type Node struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Content  string  `json:"content,omitempty"`  // Files only
	Children []*Node `json:"children,omitempty"` // Folders only, ordered
}

// NewFile creates a file node
func NewFile(name, content string) *Node {
	return &Node{Name: name, Kind: KindFile, Content: content}
}

// NewFolder creates a folder node with the given children
func NewFolder(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: KindFolder, Children: children}
}

// IsFolder reports whether the node is a folder
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Child returns the child with the given name and its index, or (nil, -1)
func (n *Node) Child(name string) (*Node, int) {
	for i, c := range n.Children {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of the node and its subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Name: n.Name, Kind: n.Kind, Content: n.Content}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// FileCount returns the number of file nodes in the subtree
func (n *Node) FileCount() int {
	if !n.IsFolder() {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.FileCount()
	}
	return total
}

// Path addresses a node by the names from a project root down to the node.
// Path[0] is the project name; an empty Path is the workspace root.
type Path []string

// ParsePath splits a slash-separated path, dropping empty segments
func ParsePath(s string) Path {
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

// String renders the path slash-joined ("project/src/main.jsx")
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Project returns the project name, or "" for the root path
func (p Path) Project() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Parent returns the path without its last segment
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Base returns the last segment, or "" for the root path
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Join returns a new path with name appended; p is never aliased
func (p Path) Join(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// HasPrefix reports whether prefix addresses p or one of its ancestors
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two paths address the same node
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}
