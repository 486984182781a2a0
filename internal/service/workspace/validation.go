package workspace

import (
	"errors"
	"fmt"
	"strings"

	"previewhub/internal/config"
	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/workspace"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validateName checks a single node name
func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxNodeNameLength),
		validation.By(checkSegment),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid name %q: %v", name, err)}
	}
	return nil
}

// checkSegment rejects names that would break path addressing
func checkSegment(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) != s {
		return errors.New("must not have leading or trailing whitespace")
	}
	if strings.Contains(s, "/") {
		return errors.New("must not contain '/'")
	}
	if s == "." || s == ".." {
		return errors.New("must not be '.' or '..'")
	}
	return nil
}

// validateNode checks an incoming node and its whole subtree
func validateNode(n *models.Node) error {
	if n == nil {
		return &domain.ValidationError{Message: "node is required"}
	}
	if err := validateName(n.Name); err != nil {
		return err
	}
	if err := validation.Validate(n.Kind, validation.Required, validation.In(models.KindFile, models.KindFolder)); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid kind %q for %q", n.Kind, n.Name)}
	}
	if !n.IsFolder() {
		if len(n.Children) > 0 {
			return &domain.ValidationError{Message: fmt.Sprintf("file %q cannot have children", n.Name)}
		}
		if len(n.Content) > config.MaxFileContentBytes {
			return &domain.ValidationError{Message: fmt.Sprintf("file %q exceeds %d bytes", n.Name, config.MaxFileContentBytes)}
		}
		return nil
	}
	seen := make(map[string]struct{}, len(n.Children))
	for _, c := range n.Children {
		if err := validateNode(c); err != nil {
			return err
		}
		if _, dup := seen[c.Name]; dup {
			return &domain.ConflictError{
				Message: fmt.Sprintf("duplicate name %q in folder %q", c.Name, n.Name),
				Name:    c.Name,
			}
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// validatePath bounds path depth and checks each segment
func validatePath(p models.Path) error {
	if len(p) > config.MaxPathDepth {
		return &domain.ValidationError{Message: fmt.Sprintf("path exceeds maximum depth of %d", config.MaxPathDepth)}
	}
	for _, segment := range p {
		if err := validateName(segment); err != nil {
			return err
		}
	}
	return nil
}
