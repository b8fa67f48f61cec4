// Package api provides the HTTP REST and WebSocket interface of the
// ScanPro daemon. It wires the job manager, scheduler, and profile
// store into versioned endpoints under /api/v1 and streams job
// lifecycle events over /ws/scans.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/MAS191/ScanPro/docs/swagger" // Import generated swagger docs
	apihandlers "github.com/MAS191/ScanPro/internal/api/handlers"
	"github.com/MAS191/ScanPro/internal/api/middleware"
	"github.com/MAS191/ScanPro/internal/auth"
	"github.com/MAS191/ScanPro/internal/config"
	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/logging"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scheduler"
)

// Connection limits for the HTTP server itself. Per-request deadlines
// come from the timeout middleware.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 1 << 20 // 1 MB
)

// Server represents the API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	handlers   *apihandlers.HandlerManager
	keyring    *auth.Keyring
	logger     *slog.Logger
	metrics    *metrics.Registry
}

// New creates an API server wired to the given job manager, scheduler,
// and profile store.
func New(cfg *config.Config, jobManager *jobs.Manager, schedules *scheduler.Scheduler,
	profileStore *profiles.Manager) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if jobManager == nil || schedules == nil || profileStore == nil {
		return nil, fmt.Errorf("job manager, scheduler and profile store are required")
	}

	logger := logging.Default().With("component", "api")
	metricsRegistry := metrics.NewRegistry()

	keyring := auth.NewKeyring()
	for _, key := range cfg.API.Auth.APIKeys {
		keyring.Add(key.Name, key.Hash)
	}

	server := &Server{
		router:   mux.NewRouter(),
		config:   cfg,
		handlers: apihandlers.New(jobManager, schedules, profileStore, logger, metricsRegistry),
		keyring:  keyring,
		logger:   logger,
		metrics:  metricsRegistry,
	}

	server.setupMiddleware()
	server.setupRoutes()

	// CORS wraps the whole router so preflight requests are answered
	// even for paths registered without an OPTIONS method.
	handler := http.Handler(server.router)
	if cfg.API.CORS.Enabled {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.API.CORS.AllowedOrigins),
			handlers.AllowedHeaders(cfg.API.CORS.AllowedHeaders),
			handlers.AllowedMethods(cfg.API.CORS.AllowedMethods),
		)(handler)
	}

	server.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	return server, nil
}

// Start starts the API server and blocks until the context is
// canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server",
		"address", s.httpServer.Addr,
		"tls", s.config.API.TLS.Enabled,
		"auth", s.config.API.Auth.Enabled)

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.API.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.config.API.TLS.CertFile, s.config.API.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the API server. The listener closes first so
// no new requests arrive, then the WebSocket hub drops its clients,
// whose hijacked connections Shutdown does not wait for.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(),
		s.config.API.ShutdownTimeout.Std())
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.handlers.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}

// HandleJobEvent relays a job lifecycle event to connected WebSocket
// clients. The daemon wires it into the jobs manager event hook.
func (s *Server) HandleJobEvent(event jobs.JobEvent) {
	s.handlers.HandleJobEvent(event)
}

// ReloadKeys replaces the accepted API keys. Called on configuration
// reload; in-flight requests keep matching against a consistent set.
func (s *Server) ReloadKeys(keys []config.APIKey) {
	hashes := make(map[string]string, len(keys))
	for _, key := range keys {
		hashes[key.Name] = key.Hash
	}
	s.keyring.ReplaceAll(hashes)

	s.logger.Info("API keys reloaded", "count", len(hashes))
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.ContentType())
	s.router.Use(middleware.RequestTimeout(s.config.API.RequestTimeout.Std()))

	maxRequestSize := s.config.API.MaxRequestSize
	s.router.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, maxRequestSize)
	})
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	if s.config.API.Auth.Enabled {
		api.Use(middleware.Authentication(s.keyring, s.logger))
	}

	// Health and status endpoints
	api.HandleFunc("/healthz", s.handlers.Healthz).Methods("GET")
	api.HandleFunc("/status", s.handlers.Status).Methods("GET")
	api.HandleFunc("/version", s.handlers.Version).Methods("GET")
	api.Handle("/metrics", promhttp.HandlerFor(
		metrics.GetGlobalMetrics().GetRegistry(),
		promhttp.HandlerOpts{},
	)).Methods("GET")

	// Scan job endpoints
	api.HandleFunc("/scans", s.handlers.ListScans).Methods("GET")
	api.HandleFunc("/scans", s.handlers.CreateScan).Methods("POST")
	api.HandleFunc("/scans/{id}", s.handlers.GetScan).Methods("GET")
	api.HandleFunc("/scans/{id}/results", s.handlers.GetScanResults).Methods("GET")
	api.HandleFunc("/scans/{id}/stop", s.handlers.StopScan).Methods("POST")

	// Profile and preset endpoints
	api.HandleFunc("/profiles", s.handlers.ListProfiles).Methods("GET")
	api.HandleFunc("/profiles", s.handlers.CreateProfile).Methods("POST")
	api.HandleFunc("/profiles/{id}", s.handlers.GetProfile).Methods("GET")
	api.HandleFunc("/profiles/{id}", s.handlers.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profiles/{id}", s.handlers.DeleteProfile).Methods("DELETE")
	api.HandleFunc("/presets", s.handlers.ListPresets).Methods("GET")

	// Schedule endpoints
	api.HandleFunc("/schedules", s.handlers.ListSchedules).Methods("GET")
	api.HandleFunc("/schedules", s.handlers.CreateSchedule).Methods("POST")
	api.HandleFunc("/schedules/{id}", s.handlers.GetSchedule).Methods("GET")
	api.HandleFunc("/schedules/{id}", s.handlers.DeleteSchedule).Methods("DELETE")
	api.HandleFunc("/schedules/{id}/enable", s.handlers.EnableSchedule).Methods("POST")
	api.HandleFunc("/schedules/{id}/disable", s.handlers.DisableSchedule).Methods("POST")

	// WebSocket event stream, outside the versioned prefix
	s.router.HandleFunc("/ws/scans", s.handlers.ScanWebSocket).Methods("GET")

	// Swagger documentation endpoints
	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))

	// Documentation aliases
	s.router.HandleFunc("/docs", s.redirectToSwagger).Methods("GET")
	s.router.HandleFunc("/docs/", s.redirectToSwagger).Methods("GET")
	s.router.HandleFunc("/api-docs", s.redirectToSwagger).Methods("GET")

	// Root index - API information for clients
	s.router.HandleFunc("/", s.apiIndex).Methods("GET")
}

// apiIndex returns API information for root requests.
func (s *Server) apiIndex(w http.ResponseWriter, _ *http.Request) {
	response := map[string]interface{}{
		"service": "ScanPro API",
		"version": "v1",
		"endpoints": map[string]string{
			"scans":     "/api/v1/scans",
			"profiles":  "/api/v1/profiles",
			"presets":   "/api/v1/presets",
			"schedules": "/api/v1/schedules",
			"healthz":   "/api/v1/healthz",
			"status":    "/api/v1/status",
			"metrics":   "/api/v1/metrics",
			"events":    "/ws/scans",
			"docs":      "/swagger/",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode API index response", "error", err)
	}
}

// redirectToSwagger redirects to the Swagger UI.
func (s *Server) redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return s.httpServer.Addr
}

// ConnectedClients returns the number of WebSocket clients currently
// subscribed to the event stream.
func (s *Server) ConnectedClients() int {
	return s.handlers.ConnectedClients()
}

// IsRunning checks if the server is accepting connections.
func (s *Server) IsRunning() bool {
	if s.httpServer == nil {
		return false
	}

	conn, err := net.DialTimeout("tcp", s.httpServer.Addr, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
