// Package metrics provides Prometheus metrics for the preview server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "previewhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Workspace metrics
	treeMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewhub_tree_mutations_total",
			Help: "Workspace tree mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	workspaceFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "previewhub_workspace_files",
			Help: "Number of files in the current workspace snapshot",
		},
	)

	editsCoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "previewhub_edits_coalesced_total",
			Help: "Editor changes superseded inside the debounce window",
		},
	)

	// Compile metrics
	compileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewhub_compile_requests_total",
			Help: "Compile requests by project kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	compileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "previewhub_compile_duration_seconds",
			Help:    "Remote compile round-trip duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	staleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "previewhub_stale_compile_results_total",
			Help: "Compile responses discarded because a newer request superseded them",
		},
	)

	// Log channel metrics
	logChannelsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "previewhub_log_channels_open",
			Help: "Open real-time log channels (0 or 1)",
		},
	)

	logEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewhub_log_entries_total",
			Help: "Log entries appended by severity and source",
		},
		[]string{"severity", "source"},
	)

	channelFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "previewhub_log_channel_faults_total",
			Help: "Log channel dial or read faults",
		},
	)

	sseClientsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "previewhub_sse_clients_active",
			Help: "Number of connected log stream subscribers",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTreeMutation records a workspace mutation attempt.
func RecordTreeMutation(op string, ok bool) {
	result := "applied"
	if !ok {
		result = "rejected"
	}
	treeMutationsTotal.WithLabelValues(op, result).Inc()
}

// SetWorkspaceFiles sets the file count of the current snapshot.
func SetWorkspaceFiles(n int) {
	workspaceFiles.Set(float64(n))
}

// RecordEditCoalesced counts an editor change replaced by a newer one.
func RecordEditCoalesced() {
	editsCoalescedTotal.Inc()
}

// RecordCompile records the outcome of a compile request.
func RecordCompile(kind, outcome string, duration time.Duration) {
	compileRequestsTotal.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		compileDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordStaleResult counts a discarded compile response.
func RecordStaleResult() {
	staleResultsTotal.Inc()
}

// SetLogChannelsOpen sets the number of open log channels.
func SetLogChannelsOpen(n int) {
	logChannelsOpen.Set(float64(n))
}

// RecordLogEntry counts an appended log entry.
func RecordLogEntry(severity, source string) {
	logEntriesTotal.WithLabelValues(severity, source).Inc()
}

// RecordChannelFault counts a log channel fault.
func RecordChannelFault() {
	channelFaultsTotal.Inc()
}

// SetSSEClientsActive sets the number of log stream subscribers.
func SetSSEClientsActive(n int) {
	sseClientsActive.Set(float64(n))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE handlers keep streaming behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request counts and durations.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
