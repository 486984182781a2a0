package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"
	"previewhub/internal/metrics"
)

// LogBridge holds the single real-time log channel of the process. Opening a
// channel closes the previous one; events from a superseded channel never
// reach the log book.
type LogBridge struct {
	dialer previewSvc.LogDialer
	book   *LogBook
	logger *slog.Logger

	mu      sync.Mutex
	current *logSession // nil when no channel is open

	wg sync.WaitGroup
}

// logSession is one Open call. conn is set once the dial completes.
type logSession struct {
	project   string
	sessionID string
	cancel    context.CancelFunc
	conn      previewSvc.LogChannel // guarded by LogBridge.mu
}

// NewLogBridge creates a closed bridge
func NewLogBridge(dialer previewSvc.LogDialer, book *LogBook, logger *slog.Logger) *LogBridge {
	return &LogBridge{
		dialer: dialer,
		book:   book,
		logger: logger,
	}
}

// Open closes any open channel and starts dialing sessionID for project.
// It does not wait for the dial.
func (b *LogBridge) Open(project, sessionID string) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &logSession{project: project, sessionID: sessionID, cancel: cancel}

	b.mu.Lock()
	b.closeLocked()
	b.current = s
	b.wg.Add(1)
	b.mu.Unlock()

	metrics.SetLogChannelsOpen(1)
	b.logger.Debug("log channel opening", "project", project, "session_id", sessionID)

	go b.run(ctx, s)
}

// Close tears down the open channel, if any. Safe to call repeatedly.
func (b *LogBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *LogBridge) closeLocked() {
	s := b.current
	if s == nil {
		return
	}
	b.current = nil
	s.cancel()
	if s.conn != nil {
		s.conn.Close()
	}
	metrics.SetLogChannelsOpen(0)
	b.logger.Debug("log channel closed", "project", s.project, "session_id", s.sessionID)
}

// Owner returns the project whose channel is open
func (b *LogBridge) Owner() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return "", false
	}
	return b.current.project, true
}

// Wait blocks until every reader goroutine has exited
func (b *LogBridge) Wait() {
	b.wg.Wait()
}

func (b *LogBridge) run(ctx context.Context, s *logSession) {
	defer b.wg.Done()

	conn, err := b.dialer.Dial(ctx, s.sessionID)
	if err != nil {
		b.fault(s, fmt.Errorf("connect log channel: %w", err))
		return
	}
	defer conn.Close()

	b.mu.Lock()
	if b.current != s {
		// Superseded while dialing
		b.mu.Unlock()
		return
	}
	s.conn = conn
	b.mu.Unlock()

	b.logger.Info("log channel connected", "project", s.project, "session_id", s.sessionID)

	for {
		event, err := conn.Next()
		if errors.Is(err, io.EOF) {
			b.ended(s)
			return
		}
		if err != nil {
			b.fault(s, fmt.Errorf("log channel read: %w", err))
			return
		}
		if !b.deliver(s, event) {
			return
		}
	}
}

// deliver appends event if s is still the open session
func (b *LogBridge) deliver(s *logSession, event *models.LogEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != s {
		return false
	}
	b.book.Append(s.project, models.ParseSeverity(event.Type), event.Message, event.Timestamp, models.SourceRemote)
	return true
}

// ended closes the bridge after the remote end hung up cleanly.
// No entry is recorded.
func (b *LogBridge) ended(s *logSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != s {
		return
	}
	b.closeLocked()
	b.logger.Info("log channel ended by remote", "project", s.project, "session_id", s.sessionID)
}

// fault records one synthetic error entry and leaves the bridge closed.
// A session that was already closed or superseded fails silently.
func (b *LogBridge) fault(s *logSession, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != s {
		return
	}
	b.closeLocked()
	b.book.Append(s.project, models.SeverityError, err.Error(), "", models.SourceRemote)
	metrics.RecordChannelFault()
	b.logger.Warn("log channel fault",
		"project", s.project,
		"session_id", s.sessionID,
		"error", err,
	)
}
