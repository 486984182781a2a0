package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"previewhub/internal/clock"
	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"
	"previewhub/internal/metrics"
)

// Orchestrator implements the preview Orchestrator interface.
//
// Every transition runs under mu. Remote compiles run in their own goroutine
// and come back through Dispatch; a result whose token is no longer the
// latest for its project is discarded.
type Orchestrator struct {
	source  previewSvc.ProjectSource
	client  previewSvc.CompileClient
	bridge  *LogBridge
	book    *LogBook
	clock   clock.Clock
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	states map[string]models.State
	active string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// OrchestratorConfig bundles the orchestrator's collaborators
type OrchestratorConfig struct {
	Source         previewSvc.ProjectSource
	Client         previewSvc.CompileClient
	Bridge         *LogBridge
	Book           *LogBook
	Clock          clock.Clock
	CompileTimeout time.Duration
	Logger         *slog.Logger
}

// NewOrchestrator creates an orchestrator with no active project
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		source:  cfg.Source,
		client:  cfg.Client,
		bridge:  cfg.Bridge,
		book:    cfg.Book,
		clock:   cfg.Clock,
		timeout: cfg.CompileTimeout,
		logger:  cfg.Logger,
		states:  make(map[string]models.State),
		ctx:     ctx,
		cancel:  cancel,
	}
}

var _ previewSvc.Orchestrator = (*Orchestrator)(nil)

// Dispatch applies one event and returns the resulting state of its project
func (o *Orchestrator) Dispatch(e previewSvc.Event) (models.State, error) {
	name := previewSvc.ProjectOf(e)
	if name == "" {
		return models.State{}, &domain.ValidationError{Message: "project name is required"}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch ev := e.(type) {
	case previewSvc.TriggerCompile:
		return o.triggerCompileLocked(ev)
	case previewSvc.CompileSucceeded:
		return o.compileSucceededLocked(ev), nil
	case previewSvc.CompileFailed:
		return o.compileFailedLocked(ev), nil
	case previewSvc.ActivateProject:
		return o.activateLocked(ev), nil
	default:
		return models.State{}, fmt.Errorf("unknown preview event %T", e)
	}
}

func (o *Orchestrator) triggerCompileLocked(ev previewSvc.TriggerCompile) (models.State, error) {
	project, err := o.source.Project(ev.Project)
	if err != nil {
		return models.State{}, err
	}

	o.bridge.Close()
	o.book.Clear(ev.Project)
	o.active = ev.Project

	prev := o.stateLocked(ev.Project)
	st := models.State{
		ProjectName: ev.Project,
		Kind:        Classify(project),
		Status:      models.StatusCompiling,
		Token:       prev.Token + 1,
		UpdatedAt:   o.clock.Now(),
	}

	if !st.Kind.IsRemote() {
		cfg, err := BuildSandboxConfig(project)
		st.Status = models.StatusReady
		if err != nil {
			st.RenderError = err.Error()
			metrics.RecordCompile(string(st.Kind), "render_error", 0)
		} else {
			st.Sandbox = cfg
			metrics.RecordCompile(string(st.Kind), "ready", 0)
		}
		o.states[ev.Project] = st
		o.logger.Info("sandbox preview ready",
			"project", ev.Project,
			"template", templateOf(st.Sandbox),
			"render_error", st.RenderError,
		)
		return st, nil
	}

	o.states[ev.Project] = st
	req := &previewSvc.CompileRequest{ProjectName: ev.Project, Files: Flatten(project)}
	o.wg.Add(1)
	go o.compile(st.Kind, st.Token, req)

	o.logger.Info("compile requested",
		"project", ev.Project,
		"kind", st.Kind,
		"token", st.Token,
		"files", len(req.Files),
	)
	return st, nil
}

// compile runs one remote request and feeds the outcome back through Dispatch
func (o *Orchestrator) compile(kind models.ProjectKind, token uint64, req *previewSvc.CompileRequest) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result, err := o.client.Compile(ctx, kind, req)
	elapsed := time.Since(start)

	var url string
	if err == nil {
		url = result.PreviewURL
		if kind == models.KindBackendService {
			url = result.APIURL
		}
		if url == "" {
			err = &domain.CompileRequestError{Message: "compile service returned no URL"}
		}
	}

	var e previewSvc.Event
	if err != nil {
		metrics.RecordCompile(string(kind), "error", elapsed)
		e = previewSvc.CompileFailed{Project: req.ProjectName, Token: token, Err: err}
	} else {
		metrics.RecordCompile(string(kind), "ready", elapsed)
		e = previewSvc.CompileSucceeded{Project: req.ProjectName, Token: token, URL: url}
	}
	if _, err := o.Dispatch(e); err != nil {
		o.logger.Error("compile result dispatch failed", "project", req.ProjectName, "error", err)
	}
}

// currentLocked returns the project's state if token is still the latest
func (o *Orchestrator) currentLocked(project string, token uint64) (models.State, bool) {
	st, ok := o.states[project]
	if !ok || st.Token != token {
		metrics.RecordStaleResult()
		o.logger.Debug("stale compile result discarded",
			"project", project,
			"token", token,
			"latest", st.Token,
		)
		return o.stateLocked(project), false
	}
	return st, true
}

func (o *Orchestrator) compileSucceededLocked(ev previewSvc.CompileSucceeded) models.State {
	st, ok := o.currentLocked(ev.Project, ev.Token)
	if !ok {
		return st
	}

	url := ev.URL
	st.Status = models.StatusReady
	st.ErrorMessage = ""
	st.PreviewURL, st.APIURL = nil, nil
	if st.Kind == models.KindBackendService {
		st.APIURL = &url
	} else {
		st.PreviewURL = &url
	}
	st.SessionID = ExtractSessionID(st.Kind, url)
	st.UpdatedAt = o.clock.Now()
	o.states[ev.Project] = st

	o.logger.Info("compile succeeded",
		"project", ev.Project,
		"kind", st.Kind,
		"url", url,
		"session_id", st.SessionID,
	)

	// Channels belong to the active project only
	if o.active == ev.Project && st.SessionID != "" {
		o.bridge.Open(ev.Project, st.SessionID)
	}
	return st
}

func (o *Orchestrator) compileFailedLocked(ev previewSvc.CompileFailed) models.State {
	st, ok := o.currentLocked(ev.Project, ev.Token)
	if !ok {
		return st
	}

	st.Status = models.StatusError
	st.ErrorMessage = errorMessage(ev.Err)
	st.PreviewURL, st.APIURL = nil, nil
	st.SessionID = ""
	st.UpdatedAt = o.clock.Now()
	o.states[ev.Project] = st

	o.logger.Warn("compile failed",
		"project", ev.Project,
		"kind", st.Kind,
		"error", ev.Err,
	)
	return st
}

func (o *Orchestrator) activateLocked(ev previewSvc.ActivateProject) models.State {
	if owner, open := o.bridge.Owner(); open && owner != ev.Project {
		o.bridge.Close()
	}
	if o.active != ev.Project {
		o.logger.Debug("active project changed", "from", o.active, "to", ev.Project)
	}
	o.active = ev.Project
	return o.stateLocked(ev.Project)
}

// State returns the retained state of a project, idle if never compiled
func (o *Orchestrator) State(project string) models.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked(project)
}

func (o *Orchestrator) stateLocked(project string) models.State {
	if st, ok := o.states[project]; ok {
		return st
	}
	return models.IdleState(project)
}

// Active returns the state of the active project; false when none is active
func (o *Orchestrator) Active() (models.State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == "" {
		return models.State{}, false
	}
	return o.stateLocked(o.active), true
}

// Sandbox builds the local bundler configuration from the current workspace
func (o *Orchestrator) Sandbox(project string) (*models.SandboxConfig, error) {
	node, err := o.source.Project(project)
	if err != nil {
		return nil, err
	}
	if kind := Classify(node); kind.IsRemote() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("project %q is a %s and has no sandbox", project, kind),
		}
	}
	cfg, err := BuildSandboxConfig(node)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// ReportSandboxConsole appends local sandbox console output to a project's logs
func (o *Orchestrator) ReportSandboxConsole(project string, events []models.LogEvent) ([]models.LogEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.stateLocked(project)
	if st.Kind.IsRemote() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("project %q is a %s; its logs come from the log channel", project, st.Kind),
		}
	}

	entries := make([]models.LogEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, o.book.Append(project, models.ParseSeverity(e.Type), e.Message, e.Timestamp, models.SourceSandbox))
	}
	return entries, nil
}

// Wait blocks until every in-flight compile has applied or discarded its result.
// An open log channel keeps running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown abandons in-flight compiles, closes the log channel and waits
func (o *Orchestrator) Shutdown() {
	o.cancel()
	o.Wait()
	o.mu.Lock()
	o.bridge.Close()
	o.mu.Unlock()
	o.bridge.Wait()
}

func errorMessage(err error) string {
	var cre *domain.CompileRequestError
	if errors.As(err, &cre) {
		return cre.Message
	}
	return err.Error()
}

func templateOf(cfg *models.SandboxConfig) string {
	if cfg == nil {
		return ""
	}
	return string(cfg.TemplateID)
}
