package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/veeru594/ai-agent/internal/config"
	"github.com/veeru594/ai-agent/internal/credentials"
	"github.com/veeru594/ai-agent/internal/llm"
	"github.com/veeru594/ai-agent/internal/llm/configbuilder"
	"github.com/veeru594/ai-agent/internal/observability"
	"github.com/veeru594/ai-agent/internal/router"
	routerpc "github.com/veeru594/ai-agent/internal/rpc/route"
	toolrpc "github.com/veeru594/ai-agent/internal/rpc/tools"
	"github.com/veeru594/ai-agent/internal/toolcall"
	"github.com/veeru594/ai-agent/internal/tools"
)

// Server hosts the routing endpoints plus health, metrics and pool status.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	runner   routerpc.Runner
	metrics  *observability.Metrics
	tools    *tools.Registry
	fs       *tools.Filesystem
	registry *llm.Registry
}

// NewServer constructs a daemon instance. Provider keys are read from the
// process environment.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	return newServer(cfg, logger, configbuilder.Options{})
}

func newServer(cfg *config.Config, logger *zap.Logger, opts configbuilder.Options) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics()

	opts.Logger = logger
	opts.Recorder = metrics
	registry, err := configbuilder.BuildRegistryFromConfig(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	fs, err := tools.NewFilesystem(cfg.Sandbox.WorkingDir, cfg.Sandbox.MaxReadChars)
	if err != nil {
		return nil, fmt.Errorf("build filesystem: %w", err)
	}
	if fs.Root() == "" {
		logger.Warn("no project root configured, read_file fails until POST /project")
	}
	toolRegistry := tools.NewRegistry(fs)

	var usage string
	if s, ok := toolRegistry.Schema(toolcall.ToolReadFile); ok {
		usage = s.Usage()
	}
	rt, err := configbuilder.BuildRouter(cfg, registry, fs, router.Options{
		ToolUsage: usage,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		runner:   &routerpc.RouterRunner{Router: rt, Logger: logger},
		metrics:  metrics,
		tools:    toolRegistry,
		fs:       fs,
		registry: registry,
	}, nil
}

// Handler assembles the HTTP routes. Connect transport is served over h2c.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)
	mux.HandleFunc("/credentials", s.credentialsHandler)
	mux.Handle("/tools/schemas", toolrpc.SchemaHandler{Registry: s.tools})
	mux.Handle("/project", toolrpc.ProjectHandler{FS: s.fs, Logger: s.logger})
	mux.Handle("/route", routerpc.NewHandler(s.runner, s.metrics))

	if s.transport() == "ndjson" {
		return mux
	}
	path, handler := routerpc.NewConnectHandler(s.runner, s.metrics)
	mux.Handle(path, handler)
	return h2c.NewHandler(mux, &http2.Server{})
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting jarvis daemon", zap.String("addr", s.cfg.Server.Addr), zap.String("transport", s.transport()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down jarvis daemon")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) transport() string {
	return strings.ToLower(strings.TrimSpace(s.cfg.Server.Transport))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) credentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	pools := s.registry.Pools()
	out := make([]credentials.Status, 0, len(pools))
	for _, p := range pools {
		out = append(out, p.Status())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
