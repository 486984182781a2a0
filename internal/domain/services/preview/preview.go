package preview

import (
	"context"

	models "previewhub/internal/domain/models/preview"
	wsmodels "previewhub/internal/domain/models/workspace"
)

// CompileRequest is sent to the remote compile service
type CompileRequest struct {
	ProjectName string            `json:"projectName"`
	Files       map[string]string `json:"files"`
}

// CompileResult is a successful compile response. Exactly one URL is set,
// depending on the endpoint that was called.
type CompileResult struct {
	PreviewURL string `json:"previewUrl,omitempty"`
	APIURL     string `json:"apiUrl,omitempty"`
}

// CompileClient talks to the remote compile service.
// Errors are *domain.CompileRequestError.
type CompileClient interface {
	Compile(ctx context.Context, kind models.ProjectKind, req *CompileRequest) (*CompileResult, error)
}

// LogChannel is one open real-time log connection
type LogChannel interface {
	// Next blocks until the next event arrives or the channel fails.
	// A normal close by the remote end returns io.EOF.
	Next() (*models.LogEvent, error)

	// Close tears the connection down; a blocked Next returns an error
	Close() error
}

// LogDialer opens log channels keyed by session id
type LogDialer interface {
	Dial(ctx context.Context, sessionID string) (LogChannel, error)
}

// ProjectSource resolves a project subtree from the current workspace snapshot
type ProjectSource interface {
	Project(name string) (*wsmodels.Node, error)
}

// ActivateRequest is the body of PUT /api/preview/active
type ActivateRequest struct {
	Project string `json:"project"`
}

// ConsoleRequest carries local sandbox console messages
type ConsoleRequest struct {
	Messages []models.LogEvent `json:"messages"`
}

// Event drives the preview state machine. All transitions go through
// Orchestrator.Dispatch and are applied one at a time.
type Event interface {
	project() string
}

// TriggerCompile starts a new compile of a project, superseding any in flight
type TriggerCompile struct {
	Project string
}

// CompileSucceeded reports a remote compile result tagged with its request token
type CompileSucceeded struct {
	Project string
	Token   uint64
	URL     string
}

// CompileFailed reports a remote compile failure tagged with its request token
type CompileFailed struct {
	Project string
	Token   uint64
	Err     error
}

// ActivateProject changes which project's preview is displayed
type ActivateProject struct {
	Project string
}

func (e TriggerCompile) project() string   { return e.Project }
func (e CompileSucceeded) project() string { return e.Project }
func (e CompileFailed) project() string    { return e.Project }
func (e ActivateProject) project() string  { return e.Project }

// ProjectOf returns the project an event refers to
func ProjectOf(e Event) string { return e.project() }

// Orchestrator owns per-project preview state and the active project
type Orchestrator interface {
	// Dispatch applies one event and returns the resulting state of its project
	Dispatch(e Event) (models.State, error)

	// State returns the retained state of a project, idle if never compiled
	State(project string) models.State

	// Active returns the state of the active project; false when none is active
	Active() (models.State, bool)

	// Sandbox builds the local bundler configuration from the current workspace
	Sandbox(project string) (*models.SandboxConfig, error)

	// ReportSandboxConsole appends local sandbox console output to a project's logs
	ReportSandboxConsole(project string, events []models.LogEvent) ([]models.LogEntry, error)
}

// LogReader exposes per-project log history and live feeds
type LogReader interface {
	// Entries returns project's history in arrival order
	Entries(project string) []models.LogEntry

	// Subscribe returns the history so far plus a feed of later entries
	Subscribe(project string) ([]models.LogEntry, chan models.LogEntry)

	// Unsubscribe ends a feed and closes its channel
	Unsubscribe(project string, ch chan models.LogEntry)
}
