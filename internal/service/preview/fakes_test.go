package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/preview"
	wsmodels "previewhub/internal/domain/models/workspace"
	previewSvc "previewhub/internal/domain/services/preview"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// eventually polls cond until it holds or the deadline passes
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// fakeSource serves fixed project subtrees
type fakeSource map[string]*wsmodels.Node

func (s fakeSource) Project(name string) (*wsmodels.Node, error) {
	if p, ok := s[name]; ok {
		return p, nil
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("project %q not found", name)}
}

// fakeCompileClient parks every request until the test replies to it
type fakeCompileClient struct {
	calls chan *compileCall
}

type compileCall struct {
	kind  models.ProjectKind
	req   *previewSvc.CompileRequest
	reply chan compileReply
}

type compileReply struct {
	result *previewSvc.CompileResult
	err    error
}

func newFakeCompileClient() *fakeCompileClient {
	return &fakeCompileClient{calls: make(chan *compileCall, 16)}
}

func (c *fakeCompileClient) Compile(ctx context.Context, kind models.ProjectKind, req *previewSvc.CompileRequest) (*previewSvc.CompileResult, error) {
	call := &compileCall{kind: kind, req: req, reply: make(chan compileReply, 1)}
	c.calls <- call
	select {
	case r := <-call.reply:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeCompileClient) next(t *testing.T) *compileCall {
	t.Helper()
	select {
	case call := <-c.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a compile request")
		return nil
	}
}

func (c *compileCall) succeed(result *previewSvc.CompileResult) {
	c.reply <- compileReply{result: result}
}

func (c *compileCall) fail(err error) {
	c.reply <- compileReply{err: err}
}

// fakeDialer hands out in-memory channels the test can drive
type fakeDialer struct {
	err      error
	channels chan *fakeChannel

	mu    sync.Mutex
	dials []string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{channels: make(chan *fakeChannel, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, sessionID string) (previewSvc.LogChannel, error) {
	d.mu.Lock()
	d.dials = append(d.dials, sessionID)
	d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	ch := &fakeChannel{
		sessionID: sessionID,
		events:    make(chan *models.LogEvent, 16),
		failures:  make(chan error, 1),
		closed:    make(chan struct{}),
	}
	d.channels <- ch
	return ch, nil
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}

func (d *fakeDialer) next(t *testing.T) *fakeChannel {
	t.Helper()
	select {
	case ch := <-d.channels:
		return ch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dial")
		return nil
	}
}

type fakeChannel struct {
	sessionID string
	events    chan *models.LogEvent
	failures  chan error
	closed    chan struct{}
	once      sync.Once
}

func (c *fakeChannel) Next() (*models.LogEvent, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case err := <-c.failures:
		return nil, err
	case <-c.closed:
		return nil, errors.New("channel closed")
	}
}

func (c *fakeChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeChannel) push(typ, message string) {
	c.events <- &models.LogEvent{Type: typ, Message: message, Timestamp: "2025-01-01T00:00:00Z"}
}

// Sample projects
func reactProject() *wsmodels.Node {
	return wsmodels.NewFolder("my-project",
		wsmodels.NewFile("index.html", "<div id=root></div>"),
		wsmodels.NewFolder("src",
			wsmodels.NewFile("App.jsx", "export default App"),
			wsmodels.NewFile("main.jsx", "render(<App />)"),
		),
		wsmodels.NewFile("package.json", "{}"),
	)
}

func expressProject() *wsmodels.Node {
	return wsmodels.NewFolder("express-api",
		wsmodels.NewFile("server.js", "app.listen()"),
		wsmodels.NewFile("package.json", "{}"),
	)
}

func flutterProject() *wsmodels.Node {
	return wsmodels.NewFolder("flutter-project",
		wsmodels.NewFolder("lib", wsmodels.NewFile("main.dart", "void main() {}")),
		wsmodels.NewFile("pubspec.yaml", "name: app"),
	)
}
