package preview

import (
	"sync"
	"time"

	"previewhub/internal/clock"
	"previewhub/internal/config"
	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"
	"previewhub/internal/metrics"
)

// LogBook keeps the ordered log sequence of every project and fans new
// entries out to live subscribers.
type LogBook struct {
	mu          sync.RWMutex
	clock       clock.Clock
	limit       int
	projects    map[string]*projectLog
	subscribers map[string]map[chan models.LogEntry]struct{}
}

type projectLog struct {
	entries []models.LogEntry
	nextSeq uint64
}

// NewLogBook creates an empty log book
func NewLogBook(clk clock.Clock) *LogBook {
	return &LogBook{
		clock:       clk,
		limit:       config.MaxLogEntriesPerProject,
		projects:    make(map[string]*projectLog),
		subscribers: make(map[string]map[chan models.LogEntry]struct{}),
	}
}

// Append adds an entry to project's sequence and publishes it.
// An empty timestamp is filled from the clock.
func (b *LogBook) Append(project string, severity models.Severity, message, timestamp string, source models.LogSource) models.LogEntry {
	if timestamp == "" {
		timestamp = b.clock.Now().UTC().Format(time.RFC3339Nano)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	log, ok := b.projects[project]
	if !ok {
		log = &projectLog{}
		b.projects[project] = log
	}
	log.nextSeq++
	entry := models.LogEntry{
		Seq:       log.nextSeq,
		Severity:  severity,
		Message:   message,
		Timestamp: timestamp,
		Source:    source,
	}
	log.entries = append(log.entries, entry)
	if over := len(log.entries) - b.limit; over > 0 {
		log.entries = append(log.entries[:0:0], log.entries[over:]...)
	}

	for ch := range b.subscribers[project] {
		select {
		case ch <- entry:
		default:
			// Drop entry for slow consumer
		}
	}
	metrics.RecordLogEntry(string(severity), string(source))
	return entry
}

// Clear drops project's history. Sequence numbers keep counting from where
// they were, so live subscribers never see an id twice.
func (b *LogBook) Clear(project string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if log, ok := b.projects[project]; ok {
		log.entries = nil
	}
}

// Entries returns a copy of project's history in arrival order
func (b *LogBook) Entries(project string) []models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	log, ok := b.projects[project]
	if !ok {
		return []models.LogEntry{}
	}
	out := make([]models.LogEntry, len(log.entries))
	copy(out, log.entries)
	return out
}

// Subscribe registers a live feed for project along with the history up to
// that moment, so no entry falls between the two. The caller must call
// Unsubscribe when done.
func (b *LogBook) Subscribe(project string) ([]models.LogEntry, chan models.LogEntry) {
	ch := make(chan models.LogEntry, 64)

	b.mu.Lock()
	subs, ok := b.subscribers[project]
	if !ok {
		subs = make(map[chan models.LogEntry]struct{})
		b.subscribers[project] = subs
	}
	subs[ch] = struct{}{}
	var history []models.LogEntry
	if log, ok := b.projects[project]; ok {
		history = make([]models.LogEntry, len(log.entries))
		copy(history, log.entries)
	}
	count := b.countLocked()
	b.mu.Unlock()

	metrics.SetSSEClientsActive(count)
	return history, ch
}

// Unsubscribe removes a feed and closes its channel
func (b *LogBook) Unsubscribe(project string, ch chan models.LogEntry) {
	b.mu.Lock()
	if subs, ok := b.subscribers[project]; ok {
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(b.subscribers, project)
		}
	}
	count := b.countLocked()
	b.mu.Unlock()

	metrics.SetSSEClientsActive(count)
}

// Subscribers returns the number of live feeds across all projects
func (b *LogBook) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}

func (b *LogBook) countLocked() int {
	n := 0
	for _, subs := range b.subscribers {
		n += len(subs)
	}
	return n
}

var _ previewSvc.LogReader = (*LogBook)(nil)
