// Package logstream connects to the real-time log channel of a remotely
// compiled project.
package logstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"

	"github.com/gorilla/websocket"
)

const (
	// sessionParam is the query parameter that selects a session's logs
	sessionParam = "projectId"

	handshakeTimeout = 10 * time.Second
)

// Dialer opens WebSocket log channels
type Dialer struct {
	baseURL string
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

// NewDialer creates a dialer for the log service at baseURL (ws:// or wss://)
func NewDialer(baseURL string, logger *slog.Logger) *Dialer {
	return &Dialer{
		baseURL: baseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger,
	}
}

var _ previewSvc.LogDialer = (*Dialer)(nil)

// Dial connects to the channel for sessionID
func (d *Dialer) Dial(ctx context.Context, sessionID string) (previewSvc.LogChannel, error) {
	target, err := channelURL(d.baseURL, sessionID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := d.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	d.logger.Debug("log channel dialed", "session_id", sessionID)
	return &channel{conn: conn}, nil
}

func channelURL(base, sessionID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid log stream url %q: %w", base, err)
	}
	q := u.Query()
	q.Set(sessionParam, sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// channel adapts a WebSocket connection to LogChannel
type channel struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// Next blocks until the next JSON frame arrives.
// A normal or going-away close frame ends the stream with io.EOF.
func (c *channel) Next() (*models.LogEvent, error) {
	var event models.LogEvent
	if err := c.conn.ReadJSON(&event); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, err
	}
	return &event, nil
}

// Close closes the connection; later calls return the first result
func (c *channel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
