package workspace

import (
	_ "embed"
	"fmt"
	"sort"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// TemplateCatalog is the static set of folder templates
type TemplateCatalog struct {
	templates map[string][]*models.Node
	seed      []seedProject
}

type catalogFile struct {
	Templates map[string][]catalogNode `yaml:"templates"`
	Workspace []seedProject            `yaml:"workspace"`
}

type catalogNode struct {
	Name     string        `yaml:"name"`
	Folder   bool          `yaml:"folder"`
	Content  string        `yaml:"content"`
	Children []catalogNode `yaml:"children"`
}

type seedProject struct {
	Project  string `yaml:"project"`
	Template string `yaml:"template"`
}

// DefaultCatalog parses the embedded catalog
func DefaultCatalog() (*TemplateCatalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog parses and validates a YAML catalog document
func ParseCatalog(data []byte) (*TemplateCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	catalog := &TemplateCatalog{
		templates: make(map[string][]*models.Node, len(file.Templates)),
		seed:      file.Workspace,
	}
	for id, nodes := range file.Templates {
		children := convertNodes(nodes)
		// Validate through a throwaway folder so sibling collisions are caught too
		if err := validateNode(models.NewFolder(id, children...)); err != nil {
			return nil, fmt.Errorf("template %q: %w", id, err)
		}
		catalog.templates[id] = children
	}
	for _, s := range file.Workspace {
		if _, ok := catalog.templates[s.Template]; !ok {
			return nil, fmt.Errorf("seed project %q: unknown template %q", s.Project, s.Template)
		}
	}
	return catalog, nil
}

func convertNodes(in []catalogNode) []*models.Node {
	out := make([]*models.Node, 0, len(in))
	for _, n := range in {
		if n.Folder || len(n.Children) > 0 {
			out = append(out, models.NewFolder(n.Name, convertNodes(n.Children)...))
			continue
		}
		out = append(out, models.NewFile(n.Name, n.Content))
	}
	return out
}

// IDs returns the template ids in sorted order
func (c *TemplateCatalog) IDs() []string {
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instantiate returns a deep copy of the template's children.
// Callers own the result; the catalog is never shared with a tree.
func (c *TemplateCatalog) Instantiate(id string) ([]*models.Node, error) {
	nodes, ok := c.templates[id]
	if !ok {
		notFound := &domain.NotFoundError{Message: fmt.Sprintf("template %q not found", id)}
		return nil, &domain.ValidationError{Message: notFound.Message, Err: notFound}
	}
	out := make([]*models.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out, nil
}

// InitialTree builds the seed workspace described by the catalog
func (c *TemplateCatalog) InitialTree() (*models.Tree, error) {
	projects := make([]*models.Node, 0, len(c.seed))
	for _, s := range c.seed {
		children, err := c.Instantiate(s.Template)
		if err != nil {
			return nil, err
		}
		projects = append(projects, models.NewFolder(s.Project, children...))
	}
	root := models.NewFolder("", projects...)
	if err := validateNode(&models.Node{Name: "workspace", Kind: models.KindFolder, Children: root.Children}); err != nil {
		return nil, fmt.Errorf("seed workspace: %w", err)
	}
	return &models.Tree{Root: root}, nil
}
