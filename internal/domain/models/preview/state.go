package preview

import "time"

// ProjectKind is the runtime kind a project classifies as
type ProjectKind string

const (
	KindUnset           ProjectKind = ""
	KindBundledFrontend ProjectKind = "bundled-frontend"
	KindBackendService  ProjectKind = "backend-service"
	KindMobileApp       ProjectKind = "mobile-app"
)

// IsRemote reports whether the kind compiles on the remote service
func (k ProjectKind) IsRemote() bool {
	return k == KindBackendService || k == KindMobileApp
}

// Status is the compile lifecycle state of one project
type Status string

const (
	StatusIdle      Status = "idle"
	StatusCompiling Status = "compiling"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// State is the retained preview state for one project name.
// PreviewURL (mobile) and APIURL (backend) are mutually exclusive.
type State struct {
	ProjectName  string         `json:"project_name"`
	Kind         ProjectKind    `json:"kind"`
	Status       Status         `json:"status"`
	PreviewURL   *string        `json:"preview_url"`
	APIURL       *string        `json:"api_url"`
	ErrorMessage string         `json:"error_message,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	Sandbox      *SandboxConfig `json:"sandbox,omitempty"`      // bundled-frontend only
	RenderError  string         `json:"render_error,omitempty"` // invalid sandbox configuration
	Token        uint64         `json:"token"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IdleState is what a never-compiled project reports
func IdleState(projectName string) State {
	return State{ProjectName: projectName, Status: StatusIdle}
}

// BundlerTemplate is the closed set of local sandbox templates
type BundlerTemplate string

const (
	TemplateReact   BundlerTemplate = "react"    // script entry
	TemplateReactTS BundlerTemplate = "react-ts" // typed-script entry
	TemplateStatic  BundlerTemplate = "static"   // markup only
	TemplateSvelte  BundlerTemplate = "svelte"
	TemplateVue     BundlerTemplate = "vue"
	TemplateNode    BundlerTemplate = "node" // server runtime, needs /package.json
)

// SandboxConfig is everything the local bundler sandbox needs to render a
// bundled-frontend project
type SandboxConfig struct {
	TemplateID   BundlerTemplate   `json:"template_id"`
	Files        map[string]string `json:"files"`
	Entry        string            `json:"entry"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
