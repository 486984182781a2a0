package preview

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"

	models "previewhub/internal/domain/models/preview"
	wsmodels "previewhub/internal/domain/models/workspace"
)

// entryCandidates are tried in order; the first present file is the entry
var entryCandidates = []string{
	"/src/main.jsx",
	"/src/main.js",
	"/src/main.tsx",
	"/src/main.ts",
	"/src/index.jsx",
	"/src/index.js",
	"/src/index.tsx",
	"/src/index.ts",
	"/index.html",
	"/server.js",
	"/app.js",
	"/index.js",
}

var scriptExtensions = map[string]bool{".js": true, ".jsx": true, ".ts": true, ".tsx": true}

// reactDependencies is the manifest handed to the sandbox for react templates
var reactDependencies = map[string]string{
	"react":     "^18.2.0",
	"react-dom": "^18.2.0",
}

var (
	errNoFiles = errors.New("project has no files to render")
	errNoEntry = errors.New("no entry point found: add src/main.jsx, src/index.js or index.html")
)

// Flatten maps every file in the project to its absolute path inside the
// project ("/src/main.jsx"). Folders are not listed; the project name is not
// part of the path.
func Flatten(project *wsmodels.Node) map[string]string {
	files := make(map[string]string)
	if project == nil {
		return files
	}
	for _, child := range project.Children {
		flattenInto(files, "", child)
	}
	return files
}

func flattenInto(files map[string]string, prefix string, node *wsmodels.Node) {
	p := normalizePath(prefix + "/" + node.Name)
	if !node.IsFolder() {
		files[p] = node.Content
		return
	}
	for _, child := range node.Children {
		flattenInto(files, p, child)
	}
}

// normalizePath collapses duplicate and empty segments into one leading-slash path
func normalizePath(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return "/" + strings.Join(kept, "/")
}

// FindEntryPoint picks the file the sandbox starts from. Returns "" when the
// project has nothing runnable.
func FindEntryPoint(files map[string]string) string {
	for _, candidate := range entryCandidates {
		if _, ok := files[candidate]; ok {
			return candidate
		}
	}

	var scripts []string
	for p := range files {
		if strings.HasPrefix(p, "/src/") && scriptExtensions[path.Ext(p)] {
			scripts = append(scripts, p)
		}
	}
	if len(scripts) > 0 {
		sort.Strings(scripts)
		return scripts[0]
	}

	if _, ok := files["/index.html"]; ok {
		return "/index.html"
	}
	return ""
}

// DetectBundlerTemplate chooses the sandbox template for an entry point
func DetectBundlerTemplate(files map[string]string, entry string) models.BundlerTemplate {
	if entry == "/server.js" || entry == "/app.js" {
		if _, ok := files["/package.json"]; ok {
			return models.TemplateNode
		}
		return models.TemplateStatic
	}

	switch path.Ext(entry) {
	case ".js", ".jsx":
		return models.TemplateReact
	case ".ts", ".tsx":
		return models.TemplateReactTS
	case ".svelte":
		return models.TemplateSvelte
	case ".vue":
		return models.TemplateVue
	default:
		return models.TemplateStatic
	}
}

// BuildSandboxConfig assembles what the local bundler needs to render a
// bundled-frontend project. The error describes why it cannot render.
func BuildSandboxConfig(project *wsmodels.Node) (*models.SandboxConfig, error) {
	files := Flatten(project)
	if len(files) == 0 {
		return nil, errNoFiles
	}
	entry := FindEntryPoint(files)
	if entry == "" {
		return nil, errNoEntry
	}

	cfg := &models.SandboxConfig{
		TemplateID: DetectBundlerTemplate(files, entry),
		Files:      files,
		Entry:      entry,
	}
	if cfg.TemplateID == models.TemplateReact || cfg.TemplateID == models.TemplateReactTS {
		cfg.Dependencies = make(map[string]string, len(reactDependencies))
		for name, version := range reactDependencies {
			cfg.Dependencies[name] = version
		}
	}
	return cfg, nil
}

// ExtractSessionID pulls the log session id out of a compile result URL.
// Backend URLs carry it after the "api" segment ("/api/<id>/..."); mobile
// preview URLs end with it. Returns "" when none can be found.
func ExtractSessionID(kind models.ProjectKind, rawURL string) string {
	segments := urlSegments(rawURL)
	if len(segments) == 0 {
		return ""
	}
	if kind == models.KindBackendService {
		for i, s := range segments {
			if s == "api" && i+1 < len(segments) {
				return segments[i+1]
			}
		}
	}
	return segments[len(segments)-1]
}

func urlSegments(rawURL string) []string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
