package workspace

import (
	"log/slog"
	"sync"
	"time"

	"previewhub/internal/clock"
	models "previewhub/internal/domain/models/workspace"
	wsSvc "previewhub/internal/domain/services/workspace"
	"previewhub/internal/metrics"
)

// contentCommitter debounces editor changes per file path. Every Submit
// cancels the pending timer for that path and starts a new quiet period;
// when it elapses the last submitted value is committed to the store.
type contentCommitter struct {
	store  wsSvc.Store
	clock  clock.Clock
	quiet  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingEdit // keyed by Path.String()
}

type pendingEdit struct {
	path    models.Path
	content string
	timer   clock.Timer
}

// NewContentCommitter creates a committer with the given quiet period
func NewContentCommitter(store wsSvc.Store, clk clock.Clock, quiet time.Duration, logger *slog.Logger) wsSvc.ContentCommitter {
	return &contentCommitter{
		store:   store,
		clock:   clk,
		quiet:   quiet,
		logger:  logger,
		pending: make(map[string]*pendingEdit),
	}
}

// Submit records a content change; only the last value in a quiet period is committed
func (c *contentCommitter) Submit(path models.Path, content string) {
	key := path.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.pending[key]; ok {
		prev.timer.Stop()
		metrics.RecordEditCoalesced()
	}

	edit := &pendingEdit{path: append(models.Path(nil), path...), content: content}
	edit.timer = c.clock.AfterFunc(c.quiet, func() { c.fire(key, edit) })
	c.pending[key] = edit
}

// fire commits edit if it is still the pending one for key
func (c *contentCommitter) fire(key string, edit *pendingEdit) {
	c.mu.Lock()
	if c.pending[key] != edit {
		// Superseded after the timer already started firing
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	c.commit(edit)
}

func (c *contentCommitter) commit(edit *pendingEdit) {
	if _, err := c.store.UpdateFileContent(edit.path, edit.content); err != nil {
		// The file may have been deleted or renamed during the quiet period
		c.logger.Warn("debounced content commit failed",
			"path", edit.path.String(),
			"error", err,
		)
		return
	}
	c.logger.Debug("content committed", "path", edit.path.String(), "bytes", len(edit.content))
}

// Cancel drops a pending change without committing it
func (c *contentCommitter) Cancel(path models.Path) bool {
	key := path.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	edit, ok := c.pending[key]
	if !ok {
		return false
	}
	edit.timer.Stop()
	delete(c.pending, key)
	return true
}

// Flush commits every pending change immediately
func (c *contentCommitter) Flush() {
	c.mu.Lock()
	edits := make([]*pendingEdit, 0, len(c.pending))
	for key, edit := range c.pending {
		edit.timer.Stop()
		edits = append(edits, edit)
		delete(c.pending, key)
	}
	c.mu.Unlock()

	for _, edit := range edits {
		c.commit(edit)
	}
}
