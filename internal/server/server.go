// Package server wires the HTTP API, task manager, and worker pool
// into one long-running service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/docx"
	"github.com/thesistools/thesisfmt/internal/home"
	"github.com/thesistools/thesisfmt/internal/pipeline"
	"github.com/thesistools/thesisfmt/internal/report"
	"github.com/thesistools/thesisfmt/internal/server/endpoints"
	"github.com/thesistools/thesisfmt/internal/svcctx"
	"github.com/thesistools/thesisfmt/internal/tasks"
)

// Server is the main thesisfmt HTTP server. It owns the task manager
// and worker pool lifecycle.
type Server struct {
	httpServer  *http.Server
	configMgr   *config.Manager
	logger      *slog.Logger
	home        *home.Dir
	taskManager *tasks.Manager
	pool        *tasks.Pool
	runner      *pipeline.Runner

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the application home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		home:      cfg.Home,
		runner:    pipeline.NewRunner(nil),
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the worker pool and HTTP server. It blocks until the
// context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	cfg := s.configMgr.Get()
	s.taskManager = tasks.NewManager(s.logger)
	s.pool = tasks.NewPool(tasks.PoolConfig{
		Logger:      s.logger,
		Manager:     s.taskManager,
		Handler:     s.formatTask,
		WorkerCount: cfg.Tasks.MaxWorkers,
		QueueSize:   cfg.Tasks.QueueSize,
	})

	s.services = &svcctx.Services{
		Config: s.configMgr,
		Logger: s.logger,
		Home:   s.home,
		Tasks:  s.taskManager,
		Pool:   s.pool,
	}

	go s.pool.Start(ctx)
	go s.expireLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// formatTask is the pool handler: load the uploaded document, run the
// pipeline, and save the result. On cancellation the partial document
// is discarded and no output is written.
func (s *Server) formatTask(ctx context.Context, t *tasks.Task, progress func(pass string, done, total int)) (*report.Report, string, error) {
	data, err := os.ReadFile(t.InputPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}

	doc, err := docx.Load(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load document: %w", err)
	}

	cfg := s.configMgr.Get()
	if len(t.DisabledPasses) > 0 {
		cfg = cfg.WithPassesDisabled(t.DisabledPasses)
	}

	rep, err := s.runner.Run(ctx, doc, pipeline.Options{
		Config: cfg,
		Meta:   t.Meta,
		Logger: s.logger.With("task_id", t.ID),
		OnPass: func(name string, index, total int) {
			progress(name, index-1, total)
		},
	})
	if err != nil {
		return rep, "", err
	}

	out, err := docx.Save(doc)
	if err != nil {
		return rep, "", fmt.Errorf("failed to serialize document: %w", err)
	}

	outputPath := s.home.ResultPath(t.ID)
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return rep, "", fmt.Errorf("failed to write result: %w", err)
	}
	return rep, outputPath, nil
}

// expireLoop periodically removes finished tasks past the retention
// window, deleting their files.
func (s *Server) expireLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retention := time.Duration(s.configMgr.Get().Tasks.RetentionHours) * time.Hour
			if retention <= 0 {
				continue
			}
			for _, t := range s.taskManager.Expire(time.Now().UTC().Add(-retention)) {
				for _, p := range []string{t.InputPath, t.OutputPath} {
					if p != "" {
						os.Remove(p)
					}
				}
			}
		}
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// TaskManager returns the task manager.
// Returns nil if the server hasn't started yet.
func (s *Server) TaskManager() *tasks.Manager {
	return s.taskManager
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the task manager or pool aren't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.taskManager == nil || s.pool == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
