package preview

import (
	"testing"

	models "previewhub/internal/domain/models/preview"
	wsmodels "previewhub/internal/domain/models/workspace"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		project *wsmodels.Node
		want    models.ProjectKind
	}{
		{"mobile manifest", flutterProject(), models.KindMobileApp},
		{"backend entry", expressProject(), models.KindBackendService},
		{"react", reactProject(), models.KindBundledFrontend},
		{"empty", wsmodels.NewFolder("empty"), models.KindBundledFrontend},
		{
			"mobile wins over backend",
			wsmodels.NewFolder("both",
				wsmodels.NewFile("server.js", ""),
				wsmodels.NewFile("pubspec.yaml", ""),
			),
			models.KindMobileApp,
		},
		{
			"nested markers are ignored",
			wsmodels.NewFolder("nested",
				wsmodels.NewFolder("api", wsmodels.NewFile("server.js", "")),
				wsmodels.NewFile("index.html", ""),
			),
			models.KindBundledFrontend,
		},
		{
			"marker folder is not a file",
			wsmodels.NewFolder("odd", wsmodels.NewFolder("server.js")),
			models.KindBundledFrontend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.project); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	project := wsmodels.NewFolder("my-project",
		wsmodels.NewFile("index.html", "<html/>"),
		wsmodels.NewFolder("src",
			wsmodels.NewFile("main.jsx", "main"),
			wsmodels.NewFolder("components",
				wsmodels.NewFile("Button.jsx", "button"),
			),
			wsmodels.NewFolder("empty"),
		),
	)

	want := map[string]string{
		"/index.html":                "<html/>",
		"/src/main.jsx":              "main",
		"/src/components/Button.jsx": "button",
	}
	if diff := cmp.Diff(want, Flatten(project)); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}

	if got := Flatten(wsmodels.NewFolder("empty")); len(got) != 0 {
		t.Errorf("empty project flattened to %v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/src/main.jsx":    "/src/main.jsx",
		"//src///main.jsx": "/src/main.jsx",
		"src/main.jsx/":    "/src/main.jsx",
		"":                 "/",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindEntryPoint(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"main.jsx first", []string{"/src/index.js", "/src/main.jsx", "/index.html"}, "/src/main.jsx"},
		{"main.js over index", []string{"/src/index.jsx", "/src/main.js"}, "/src/main.js"},
		{"typed main", []string{"/src/main.tsx", "/index.html"}, "/src/main.tsx"},
		{"index.tsx", []string{"/src/index.tsx", "/src/App.tsx"}, "/src/index.tsx"},
		{"markup", []string{"/index.html", "/styles.css"}, "/index.html"},
		{"server", []string{"/server.js", "/package.json"}, "/server.js"},
		{"app.js", []string{"/app.js"}, "/app.js"},
		{"root index.js", []string{"/index.js", "/lib/util.js"}, "/index.js"},
		{"fallback first sorted src script", []string{"/src/zeta.ts", "/src/alpha.jsx", "/src/readme.md"}, "/src/alpha.jsx"},
		{"nothing runnable", []string{"/README.md", "/styles.css"}, ""},
		{"no files", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := make(map[string]string, len(tt.files))
			for _, f := range tt.files {
				files[f] = ""
			}
			if got := FindEntryPoint(files); got != tt.want {
				t.Errorf("FindEntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectBundlerTemplate(t *testing.T) {
	withManifest := map[string]string{"/package.json": "{}"}
	bare := map[string]string{}

	tests := []struct {
		name  string
		files map[string]string
		entry string
		want  models.BundlerTemplate
	}{
		{"server with manifest", withManifest, "/server.js", models.TemplateNode},
		{"app with manifest", withManifest, "/app.js", models.TemplateNode},
		{"server without manifest", bare, "/server.js", models.TemplateStatic},
		{"jsx", bare, "/src/main.jsx", models.TemplateReact},
		{"js", withManifest, "/src/index.js", models.TemplateReact},
		{"tsx", bare, "/src/main.tsx", models.TemplateReactTS},
		{"ts", bare, "/src/index.ts", models.TemplateReactTS},
		{"html", bare, "/index.html", models.TemplateStatic},
		{"svelte", bare, "/src/App.svelte", models.TemplateSvelte},
		{"vue", bare, "/src/App.vue", models.TemplateVue},
		{"empty entry", bare, "", models.TemplateStatic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBundlerTemplate(tt.files, tt.entry); got != tt.want {
				t.Errorf("DetectBundlerTemplate(%q) = %q, want %q", tt.entry, got, tt.want)
			}
		})
	}
}

func TestBuildSandboxConfig(t *testing.T) {
	t.Run("react project", func(t *testing.T) {
		cfg, err := BuildSandboxConfig(reactProject())
		if err != nil {
			t.Fatalf("BuildSandboxConfig: %v", err)
		}
		want := &models.SandboxConfig{
			TemplateID: models.TemplateReact,
			Entry:      "/src/main.jsx",
			Files: map[string]string{
				"/index.html":   "<div id=root></div>",
				"/src/App.jsx":  "export default App",
				"/src/main.jsx": "render(<App />)",
				"/package.json": "{}",
			},
			Dependencies: map[string]string{"react": "^18.2.0", "react-dom": "^18.2.0"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("static site has no dependencies", func(t *testing.T) {
		cfg, err := BuildSandboxConfig(wsmodels.NewFolder("site", wsmodels.NewFile("index.html", "<h1/>")))
		if err != nil {
			t.Fatalf("BuildSandboxConfig: %v", err)
		}
		if cfg.TemplateID != models.TemplateStatic || cfg.Dependencies != nil {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("dependency manifest is not shared", func(t *testing.T) {
		a, _ := BuildSandboxConfig(reactProject())
		a.Dependencies["react"] = "0.0.0"
		b, _ := BuildSandboxConfig(reactProject())
		if b.Dependencies["react"] != "^18.2.0" {
			t.Error("dependency manifest leaked between configs")
		}
	})

	t.Run("empty project", func(t *testing.T) {
		if _, err := BuildSandboxConfig(wsmodels.NewFolder("empty")); err == nil {
			t.Error("expected render error")
		}
	})

	t.Run("no entry", func(t *testing.T) {
		if _, err := BuildSandboxConfig(wsmodels.NewFolder("docs", wsmodels.NewFile("README.md", ""))); err == nil {
			t.Error("expected render error")
		}
	})
}

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name string
		kind models.ProjectKind
		url  string
		want string
	}{
		{"backend api segment", models.KindBackendService, "https://run.example.com/api/xyz789", "xyz789"},
		{"backend api with suffix", models.KindBackendService, "https://run.example.com/api/xyz789/hello", "xyz789"},
		{"backend relative url", models.KindBackendService, "/api/xyz789", "xyz789"},
		{"backend without api", models.KindBackendService, "https://run.example.com/svc/abc", "abc"},
		{"mobile last segment", models.KindMobileApp, "https://preview.example.com/builds/abc123", "abc123"},
		{"mobile trailing slash", models.KindMobileApp, "https://preview.example.com/builds/abc123/", "abc123"},
		{"mobile ignores api", models.KindMobileApp, "https://preview.example.com/api/one/two", "two"},
		{"query dropped", models.KindMobileApp, "https://preview.example.com/p/s1?x=1", "s1"},
		{"no path", models.KindMobileApp, "https://preview.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSessionID(tt.kind, tt.url); got != tt.want {
				t.Errorf("ExtractSessionID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
