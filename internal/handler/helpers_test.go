package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"previewhub/internal/clock"
	"previewhub/internal/domain"
	previewModels "previewhub/internal/domain/models/preview"
	models "previewhub/internal/domain/models/workspace"
	previewSvc "previewhub/internal/domain/services/preview"
	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/handler/sse"
	"previewhub/internal/service/preview"
	"previewhub/internal/service/workspace"
)

const testQuiet = 500 * time.Millisecond

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stubOrchestrator records dispatched events and answers from canned state
type stubOrchestrator struct {
	mu         sync.Mutex
	events     []previewSvc.Event
	states     map[string]previewModels.State
	active     string
	sandbox    *previewModels.SandboxConfig
	sandboxErr error
	consoleErr error
	console    []previewModels.LogEvent
}

func newStubOrchestrator() *stubOrchestrator {
	return &stubOrchestrator{states: make(map[string]previewModels.State)}
}

func (o *stubOrchestrator) Dispatch(e previewSvc.Event) (previewModels.State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	project := previewSvc.ProjectOf(e)
	if project == "" {
		return previewModels.State{}, &domain.ValidationError{Message: "project is required"}
	}
	o.events = append(o.events, e)
	switch e.(type) {
	case previewSvc.ActivateProject:
		o.active = project
	case previewSvc.TriggerCompile:
		st := o.stateLocked(project)
		st.Status = previewModels.StatusCompiling
		st.Token++
		o.states[project] = st
	}
	return o.stateLocked(project), nil
}

func (o *stubOrchestrator) State(project string) previewModels.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked(project)
}

func (o *stubOrchestrator) stateLocked(project string) previewModels.State {
	if st, ok := o.states[project]; ok {
		return st
	}
	return previewModels.IdleState(project)
}

func (o *stubOrchestrator) Active() (previewModels.State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == "" {
		return previewModels.State{}, false
	}
	return o.stateLocked(o.active), true
}

func (o *stubOrchestrator) Sandbox(project string) (*previewModels.SandboxConfig, error) {
	if o.sandboxErr != nil {
		return nil, o.sandboxErr
	}
	return o.sandbox, nil
}

func (o *stubOrchestrator) ReportSandboxConsole(project string, events []previewModels.LogEvent) ([]previewModels.LogEntry, error) {
	if o.consoleErr != nil {
		return nil, o.consoleErr
	}
	o.console = append(o.console, events...)
	out := make([]previewModels.LogEntry, len(events))
	for i, e := range events {
		out[i] = previewModels.LogEntry{
			Seq:      uint64(i + 1),
			Severity: previewModels.ParseSeverity(e.Type),
			Message:  e.Message,
			Source:   previewModels.SourceSandbox,
		}
	}
	return out, nil
}

func (o *stubOrchestrator) dispatched() []previewSvc.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]previewSvc.Event(nil), o.events...)
}

// fixture wires real workspace services and a stub orchestrator behind the mux
type fixture struct {
	store     wsSvc.Store
	committer wsSvc.ContentCommitter
	clock     *clock.FakeClock
	orch      *stubOrchestrator
	book      *preview.LogBook
	mux       *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := workspace.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	tree := models.NewTree(
		models.NewFolder("my-project",
			models.NewFile("index.html", "<html></html>"),
			models.NewFolder("src",
				models.NewFile("main.jsx", "render()"),
			),
		),
		models.NewFolder("api",
			models.NewFile("server.js", "listen()"),
		),
	)

	f := &fixture{
		clock: clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		orch:  newStubOrchestrator(),
	}
	f.store = workspace.NewStore(tree, catalog, testLogger())
	f.committer = workspace.NewContentCommitter(f.store, f.clock, testQuiet, testLogger())
	f.book = preview.NewLogBook(f.clock)

	h := &Handlers{
		Workspace: NewWorkspaceHandler(f.store, catalog, testLogger()),
		Nodes:     NewNodeHandler(f.store, f.committer, testLogger()),
		Selection: NewSelectionHandler(f.store, f.orch, testLogger()),
		Preview:   NewPreviewHandler(f.orch, testLogger()),
		Logs:      NewLogHandler(f.book, &sse.Config{KeepAliveInterval: time.Hour}, testLogger()),
	}
	f.mux = http.NewServeMux()
	h.Register(f.mux)
	return f
}

// do sends a request through the mux; body is JSON-encoded unless it is a string
func (f *fixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	switch b := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// problem is the decoded RFC 7807 body
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Name   string `json:"name"`
}

func (p problem) String() string {
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}
