package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"previewhub/internal/clock"
	"previewhub/internal/compile"
	"previewhub/internal/config"
	"previewhub/internal/handler"
	"previewhub/internal/handler/sse"
	"previewhub/internal/logstream"
	"previewhub/internal/metrics"
	"previewhub/internal/middleware"
	"previewhub/internal/service/preview"
	"previewhub/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"compile_service", cfg.CompileServiceURL,
		"log_stream", cfg.LogStreamURL,
	)

	// Seed the workspace from the embedded template catalog
	catalog, err := workspace.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}
	initial, err := catalog.InitialTree()
	if err != nil {
		log.Fatalf("Failed to build initial workspace: %v", err)
	}

	// Workspace services
	store := workspace.NewStore(initial, catalog, logger)
	committer := workspace.NewContentCommitter(store, clock.Real(), cfg.EditDebounce, logger)

	// Preview services
	compileClient := compile.NewClient(cfg.CompileServiceURL, cfg.CompileTimeout, logger)
	dialer := logstream.NewDialer(cfg.LogStreamURL, logger)
	logBook := preview.NewLogBook(clock.Real())
	bridge := preview.NewLogBridge(dialer, logBook, logger)
	orchestrator := preview.NewOrchestrator(preview.OrchestratorConfig{
		Source:         store,
		Client:         compileClient,
		Bridge:         bridge,
		Book:           logBook,
		Clock:          clock.Real(),
		CompileTimeout: cfg.CompileTimeout,
		Logger:         logger,
	})

	logger.Info("services initialized",
		"projects", len(initial.Projects()),
		"templates", catalog.IDs(),
	)

	// Create handlers
	handlers := &handler.Handlers{
		Workspace: handler.NewWorkspaceHandler(store, catalog, logger),
		Nodes:     handler.NewNodeHandler(store, committer, logger),
		Selection: handler.NewSelectionHandler(store, orchestrator, logger),
		Preview:   handler.NewPreviewHandler(orchestrator, logger),
		Logs:      handler.NewLogHandler(logBook, &sse.Config{KeepAliveInterval: cfg.SSEKeepAlive}, logger),
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → RequestID → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestID(logger)(h)
	h = metrics.Middleware(h)

	// CORS - outermost so OPTIONS pre-flight requests are answered directly
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
		// Request contexts end on shutdown so open log streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}

	// Commit edits still in their quiet period, then stop compiles and the log channel
	committer.Flush()
	orchestrator.Shutdown()

	logger.Info("server stopped")
}
