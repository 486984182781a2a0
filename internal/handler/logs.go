package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"
	"previewhub/internal/handler/sse"
	"previewhub/internal/httputil"

	"github.com/google/uuid"
)

// logEvent is the SSE event name for one log entry
const logEvent = "log"

// LogHandler serves project log history and the live log stream
type LogHandler struct {
	logs      previewSvc.LogReader
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs previewSvc.LogReader, sseConfig *sse.Config, logger *slog.Logger) *LogHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &LogHandler{
		logs:      logs,
		sseConfig: sseConfig,
		logger:    logger,
	}
}

// GetLogs returns a project's log history in arrival order
// GET /api/projects/{name}/logs
func (h *LogHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.logs.Entries(r.PathValue("name")))
}

// StreamLogs sends the history and then every new entry as SSE "log"
// events, with keep-alive comments while idle
// GET /api/projects/{name}/logs/stream
func (h *LogHandler) StreamLogs(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("name")
	clientID := uuid.NewString()

	stream, err := sse.NewWriter(w)
	if err != nil {
		// Headers are already sent
		h.logger.Error("log stream unavailable", "project", project, "error", err)
		return
	}

	history, entries := h.logs.Subscribe(project)
	defer func() {
		h.logs.Unsubscribe(project, entries)
		h.logger.Debug("log stream closed", "project", project, "client_id", clientID)
	}()

	h.logger.Debug("log stream opened",
		"project", project,
		"client_id", clientID,
		"history", len(history),
	)

	for _, e := range history {
		if err := h.writeEntry(stream, e); err != nil {
			return
		}
	}

	ticker := time.NewTicker(h.sseConfig.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := h.writeEntry(stream, e); err != nil {
				h.logger.Info("client disconnected during log write",
					"project", project,
					"client_id", clientID,
					"error", err,
				)
				return
			}

		case <-ticker.C:
			if err := stream.WriteKeepAlive(); err != nil {
				h.logger.Info("client disconnected during keepalive",
					"project", project,
					"client_id", clientID,
					"error", err,
				)
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

func (h *LogHandler) writeEntry(stream *sse.Writer, e models.LogEntry) error {
	return stream.WriteEvent(logEvent, strconv.FormatUint(e.Seq, 10), e)
}
