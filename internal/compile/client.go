// Package compile talks to the remote compile service that builds backend
// and mobile projects and hands back a hosted URL.
package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"previewhub/internal/domain"
	models "previewhub/internal/domain/models/preview"
	previewSvc "previewhub/internal/domain/services/preview"

	"github.com/google/uuid"
)

const (
	// Endpoint paths relative to the service base URL
	mobilePath  = "/compile"
	backendPath = "/compile-backend"

	// RequestIDHeader carries a per-request id the service echoes in its logs
	RequestIDHeader = "X-Request-ID"

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 1 << 20
)

// Client implements the CompileClient interface over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a compile client. timeout bounds each request; the
// caller's context may cut it shorter.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

var _ previewSvc.CompileClient = (*Client)(nil)

// compileResponse is the union of every shape the service answers with
type compileResponse struct {
	PreviewURL string `json:"previewUrl"`
	APIURL     string `json:"apiUrl"`
	Error      string `json:"error"`
}

// Compile posts the project files to the endpoint for kind
func (c *Client) Compile(ctx context.Context, kind models.ProjectKind, req *previewSvc.CompileRequest) (*previewSvc.CompileResult, error) {
	endpoint, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compile request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("compile request sent",
		"project", req.ProjectName,
		"kind", kind,
		"endpoint", endpoint,
		"request_id", requestID,
		"bytes", len(payload),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.CompileRequestError{
			Message: fmt.Sprintf("compile service unreachable: %v", err),
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.CompileRequestError{
			Message: fmt.Sprintf("failed to read compile response: %v", err),
			Err:     err,
		}
	}

	var parsed compileResponse
	parseErr := json.Unmarshal(body, &parsed)

	// The service reports build failures in the body, with any status
	if parseErr == nil && parsed.Error != "" {
		return nil, &domain.CompileRequestError{Message: parsed.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.CompileRequestError{
			Message: fmt.Sprintf("compile service error (status %d): %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}
	if parseErr != nil {
		return nil, &domain.CompileRequestError{
			Message: fmt.Sprintf("failed to parse compile response: %v", parseErr),
			Err:     parseErr,
		}
	}

	return &previewSvc.CompileResult{PreviewURL: parsed.PreviewURL, APIURL: parsed.APIURL}, nil
}

func endpointFor(kind models.ProjectKind) (string, error) {
	switch kind {
	case models.KindMobileApp:
		return mobilePath, nil
	case models.KindBackendService:
		return backendPath, nil
	default:
		return "", fmt.Errorf("project kind %q is not compiled remotely", kind)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
