// Package daemon provides the background service functionality for
// ScanPro. It owns the worker pool, the job manager, the scheduler,
// and the HTTP API server, and coordinates startup, configuration
// reload, and graceful shutdown.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/MAS191/ScanPro/internal/api"
	"github.com/MAS191/ScanPro/internal/config"
	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/logging"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scheduler"
	"github.com/MAS191/ScanPro/internal/workers"
)

const (
	healthCheckInterval   = 10 * time.Second
	metricsUpdateInterval = 15 * time.Second
)

// File permission constants.
const (
	DefaultDirPermissions  = 0o750
	DefaultFilePermissions = 0o600
)

// Daemon represents the main daemon process.
type Daemon struct {
	config     *config.Config
	configPath string

	profiles  *profiles.Manager
	pool      *workers.Pool
	jobs      *jobs.Manager
	scheduler *scheduler.Scheduler
	apiServer atomic.Pointer[api.Server]

	pidFile   string
	logger    *logging.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	debugMode bool
	mu        sync.RWMutex
}

// New creates a new daemon instance. configPath is the file the
// configuration was loaded from; it is re-read on SIGHUP and may be
// empty when the daemon runs on built-in defaults.
func New(cfg *config.Config, configPath string) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		config:     cfg,
		configPath: configPath,
		pidFile:    cfg.Daemon.PIDFile,
		logger:     logging.Default().WithComponent("daemon"),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start starts the daemon and blocks until shutdown.
func (d *Daemon) Start() error {
	d.logger.InfoDaemon("Starting ScanPro daemon")

	if err := d.getConfig().Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := d.createPIDFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}

	d.setupSignalHandlers()

	if err := d.initComponents(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	if err := d.initAPIServer(d.getConfig()); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize API server: %w", err)
	}

	d.logger.InfoDaemon("Daemon started", "pid", os.Getpid())
	return d.run()
}

// Stop stops the daemon gracefully.
func (d *Daemon) Stop() error {
	d.logger.InfoDaemon("Stopping daemon")

	d.cancel()

	select {
	case <-d.done:
		d.logger.InfoDaemon("Daemon stopped gracefully")
	case <-time.After(d.getConfig().Daemon.ShutdownTimeout.Std()):
		d.logger.InfoDaemon("Shutdown timeout reached, forcing exit")
	}

	d.cleanup()
	return nil
}

// initComponents builds the scan pipeline: profile store, worker pool,
// job manager, and scheduler. Order matters, each layer feeds the next.
func (d *Daemon) initComponents() error {
	cfg := d.getConfig()

	d.profiles = profiles.NewManager()

	d.pool = workers.New(workers.Config{
		Workers:         cfg.Jobs.Workers,
		QueueSize:       cfg.Jobs.QueueSize,
		ShutdownTimeout: cfg.Daemon.ShutdownTimeout.Std(),
	})
	d.pool.Start()

	d.jobs = jobs.NewManager(jobs.Options{
		Pool:         d.pool,
		Profiles:     d.profiles,
		Resolver:     cfg.BuildResolver(),
		Defaults:     cfg.ScanDefaults(),
		DefaultPorts: cfg.Scanning.DefaultPorts,
		MaxCompleted: cfg.Jobs.MaxCompleted,
		MaxTargets:   cfg.API.MaxTargetsPerScan,
		PrivateOnly:  !cfg.API.AllowPublicTargets,
		// Matching the limit to the worker count keeps the slot wait from
		// ever blocking here; the limiter contributes run tracking for the
		// health check.
		MaxConcurrentRuns: cfg.Jobs.Workers,
		// The API server is created after the manager and may be swapped
		// out on reload, so events go through the atomic pointer.
		OnEvent: func(event jobs.JobEvent) {
			if server := d.apiServer.Load(); server != nil {
				server.HandleJobEvent(event)
			}
		},
	})

	d.scheduler = scheduler.New(d.jobs)
	if err := d.registerSchedules(cfg); err != nil {
		return err
	}
	if cfg.Scheduler.Enabled {
		if err := d.scheduler.Start(); err != nil {
			return fmt.Errorf("scheduler start failed: %w", err)
		}
		d.logger.InfoDaemon("Scheduler started",
			"schedules", len(d.scheduler.Entries()))
	}

	return nil
}

// registerSchedules registers the recurring scans declared in the
// configuration file.
func (d *Daemon) registerSchedules(cfg *config.Config) error {
	for _, job := range cfg.Scheduler.Jobs {
		entry, err := d.scheduler.Add(scheduler.Schedule{
			Name: job.Name,
			Cron: job.Cron,
			Request: jobs.Request{
				Targets: []string{job.Targets},
				Ports:   job.Ports,
				Profile: job.Profile,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to register schedule %q: %w", job.Name, err)
		}

		d.logger.InfoDaemon("Schedule registered",
			"name", entry.Name,
			"cron", entry.Cron,
			"next_run", entry.NextRun)
	}
	return nil
}

// initAPIServer initializes the API server when enabled.
func (d *Daemon) initAPIServer(cfg *config.Config) error {
	if !cfg.IsAPIEnabled() {
		d.logger.InfoDaemon("API server disabled, skipping initialization")
		return nil
	}

	server, err := api.New(cfg, d.jobs, d.scheduler, d.profiles)
	if err != nil {
		return fmt.Errorf("API server creation failed: %w", err)
	}

	d.apiServer.Store(server)
	d.logger.InfoDaemon("API server initialized", "address", cfg.GetAPIAddress())
	return nil
}

// createPIDFile creates the PID file.
func (d *Daemon) createPIDFile() error {
	if d.pidFile == "" {
		return nil
	}

	dir := filepath.Dir(d.pidFile)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}

	if err := d.checkExistingPID(); err != nil {
		return err
	}

	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	d.logger.InfoDaemon("Created PID file", "path", d.pidFile, "pid", pid)
	return nil
}

// checkExistingPID checks whether a PID file exists and whether the
// process it names is still running.
func (d *Daemon) checkExistingPID() error {
	if _, err := os.Stat(d.pidFile); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		// Invalid PID file, remove it.
		_ = os.Remove(d.pidFile)
		return nil
	}

	if d.isProcessRunning(pid) {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}

	// Stale PID file.
	_ = os.Remove(d.pidFile)
	return nil
}

// isProcessRunning checks if a process with the given PID is running.
func (d *Daemon) isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// setupSignalHandlers sets up signal handling for shutdown, reload,
// and diagnostics.
func (d *Daemon) setupSignalHandlers() {
	sigChan := make(chan os.Signal, 1)

	signal.Notify(sigChan,
		syscall.SIGTERM, // Termination signal
		syscall.SIGINT,  // Interrupt signal (Ctrl+C)
		syscall.SIGHUP,  // Reload configuration
		syscall.SIGUSR1, // Dump status to the log
		syscall.SIGUSR2, // Toggle debug logging
	)

	go func() {
		for sig := range sigChan {
			d.logger.InfoDaemon("Received signal", "signal", sig.String())

			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				d.logger.InfoDaemon("Initiating graceful shutdown")
				d.cancel()
				return
			case syscall.SIGHUP:
				if err := d.reloadConfiguration(); err != nil {
					d.logger.ErrorDaemon("Configuration reload failed", err)
				} else {
					d.logger.InfoDaemon("Configuration reloaded")
				}
			case syscall.SIGUSR1:
				d.dumpStatus()
			case syscall.SIGUSR2:
				d.toggleDebugMode()
			}
		}
	}()
}

// run executes the main daemon loop.
func (d *Daemon) run() error {
	if server := d.apiServer.Load(); server != nil {
		go func() {
			d.logger.InfoDaemon("Starting API server", "address", server.GetAddress())
			if err := server.Start(d.ctx); err != nil {
				d.logger.ErrorDaemon("API server error", err)
			}
		}()
	}

	go metrics.GetGlobalMetrics().StartPeriodicUpdates(d.ctx, metricsUpdateInterval)

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.InfoDaemon("Shutdown signal received")
			close(d.done)
			return nil
		case <-ticker.C:
			d.performHealthCheck()
		}
	}
}

// performHealthCheck runs periodic self-checks on the scan pipeline.
func (d *Daemon) performHealthCheck() {
	if d.jobs == nil {
		return
	}

	stats := d.jobs.Stats()
	queueSize := d.getConfig().Jobs.QueueSize
	if queueSize > 0 && stats.Pending >= queueSize {
		d.logger.Warn("Job queue saturated, new submissions will be rejected",
			"pending", stats.Pending,
			"queue_size", queueSize)
	}
	if long := d.jobs.LongRunning(); len(long) > 0 {
		d.logger.Warn("Scan jobs running longer than expected",
			"count", len(long),
			"job_ids", long)
	}

	d.logger.Debug("Health check",
		"jobs_pending", stats.Pending,
		"jobs_running", stats.Running,
		"jobs_total", stats.Total,
		"goroutines", runtime.NumGoroutine())
}

// cleanup performs cleanup tasks. Shutdown order: the API first so no
// new jobs arrive, then the scheduler, then in-flight jobs, then the
// pool itself.
func (d *Daemon) cleanup() {
	d.logger.InfoDaemon("Performing cleanup")

	if server := d.apiServer.Swap(nil); server != nil {
		if err := server.Stop(); err != nil {
			d.logger.ErrorDaemon("Error stopping API server", err)
		} else {
			d.logger.InfoDaemon("API server stopped")
		}
	}

	if d.scheduler != nil {
		d.scheduler.Stop()
	}

	if d.jobs != nil {
		d.jobs.CancelAll()
	}

	if d.pool != nil {
		if err := d.pool.Shutdown(); err != nil {
			d.logger.ErrorDaemon("Worker pool shutdown", err)
		}
	}

	if d.jobs != nil {
		d.jobs.Close()
	}

	if d.pidFile != "" {
		if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
			d.logger.ErrorDaemon("Error removing PID file", err)
		}
	}

	d.logger.InfoDaemon("Cleanup completed")
}

// GetPID returns the daemon's PID.
func (d *Daemon) GetPID() int {
	return os.Getpid()
}

// IsRunning checks if the daemon is running.
func (d *Daemon) IsRunning() bool {
	select {
	case <-d.ctx.Done():
		return false
	default:
		return true
	}
}

// reloadConfiguration re-reads the configuration file and applies what
// can change at runtime: logging settings, API keys, and the API
// server itself when its listen or security settings moved. Worker
// pool sizing and configured schedules take effect on restart.
func (d *Daemon) reloadConfiguration() error {
	if d.configPath == "" {
		return fmt.Errorf("daemon started without a configuration file, nothing to reload")
	}

	newConfig, err := config.Load(d.configPath)
	if err != nil {
		return fmt.Errorf("failed to load new configuration: %w", err)
	}

	d.mu.Lock()
	oldConfig := d.config
	d.config = newConfig
	d.mu.Unlock()

	d.applyLoggingConfig(newConfig)

	if d.hasAPIConfigChanged(oldConfig, newConfig) {
		d.restartAPIServer(newConfig)
	} else if server := d.apiServer.Load(); server != nil {
		server.ReloadKeys(newConfig.API.Auth.APIKeys)
	}

	if oldConfig.Jobs != newConfig.Jobs {
		d.logger.InfoDaemon("Worker pool changes take effect on restart")
	}

	return nil
}

// applyLoggingConfig rebuilds the default logger from the given
// configuration.
func (d *Daemon) applyLoggingConfig(cfg *config.Config) {
	logger, err := logging.New(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Format: logging.LogFormat(cfg.Logging.Format),
		Output: cfg.GetLogOutput(),
	})
	if err != nil {
		d.logger.ErrorDaemon("Failed to apply logging configuration", err)
		return
	}

	logging.SetDefault(logger)
	d.logger = logging.Default().WithComponent("daemon")
}

// dumpStatus writes the current daemon state to the log.
func (d *Daemon) dumpStatus() {
	cfg := d.getConfig()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	d.logger.InfoDaemon("Status dump",
		"pid", os.Getpid(),
		"debug_mode", d.IsDebugMode(),
		"goroutines", runtime.NumGoroutine(),
		"alloc_kb", m.Alloc/1024,
		"sys_kb", m.Sys/1024,
		"gc_cycles", m.NumGC)

	if d.jobs != nil {
		stats := d.jobs.Stats()
		d.logger.InfoDaemon("Job status",
			"pending", stats.Pending,
			"running", stats.Running,
			"completed", stats.Completed,
			"failed", stats.Failed,
			"canceled", stats.Canceled)
	}

	if d.scheduler != nil {
		d.logger.InfoDaemon("Scheduler status",
			"schedules", len(d.scheduler.Entries()),
			"enabled", cfg.Scheduler.Enabled)
	}

	if server := d.apiServer.Load(); server != nil {
		d.logger.InfoDaemon("API status",
			"address", server.GetAddress(),
			"websocket_clients", server.ConnectedClients())
	} else {
		d.logger.InfoDaemon("API status", "state", "disabled")
	}
}

// toggleDebugMode switches the default logger between the configured
// level and debug.
func (d *Daemon) toggleDebugMode() {
	d.mu.Lock()
	d.debugMode = !d.debugMode
	enabled := d.debugMode
	cfg := d.config
	d.mu.Unlock()

	level := logging.LogLevel(cfg.Logging.Level)
	if enabled {
		level = logging.LevelDebug
	}

	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: logging.LogFormat(cfg.Logging.Format),
		Output: cfg.GetLogOutput(),
	})
	if err != nil {
		d.logger.ErrorDaemon("Failed to toggle debug mode", err)
		return
	}

	logging.SetDefault(logger)
	d.logger = logging.Default().WithComponent("daemon")
	d.logger.InfoDaemon("Debug mode toggled", "enabled", enabled)
}

// IsDebugMode returns the current debug mode state.
func (d *Daemon) IsDebugMode() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.debugMode
}

// hasAPIConfigChanged reports whether the API server must be rebuilt
// to apply the new configuration. The listen address and the security
// middleware are fixed at construction.
func (d *Daemon) hasAPIConfigChanged(oldConfig, newConfig *config.Config) bool {
	return oldConfig.API.Enabled != newConfig.API.Enabled ||
		oldConfig.API.Host != newConfig.API.Host ||
		oldConfig.API.Port != newConfig.API.Port ||
		oldConfig.API.Auth.Enabled != newConfig.API.Auth.Enabled ||
		oldConfig.API.CORS.Enabled != newConfig.API.CORS.Enabled ||
		oldConfig.API.TLS != newConfig.API.TLS
}

// restartAPIServer stops the running API server and starts a fresh one
// with the new configuration.
func (d *Daemon) restartAPIServer(newConfig *config.Config) {
	d.logger.InfoDaemon("API configuration changed, restarting API server")

	if server := d.apiServer.Swap(nil); server != nil {
		if err := server.Stop(); err != nil {
			d.logger.ErrorDaemon("Failed to stop API server", err)
		}
	}

	if !newConfig.IsAPIEnabled() {
		return
	}

	server, err := api.New(newConfig, d.jobs, d.scheduler, d.profiles)
	if err != nil {
		d.logger.ErrorDaemon("Failed to create API server with new config", err)
		return
	}

	go func() {
		if err := server.Start(d.ctx); err != nil {
			d.logger.ErrorDaemon("API server error", err)
		}
	}()

	d.apiServer.Store(server)
}

// GetContext returns the daemon's context.
func (d *Daemon) GetContext() context.Context {
	return d.ctx
}

// GetConfig returns the daemon configuration.
func (d *Daemon) GetConfig() *config.Config {
	return d.getConfig()
}

func (d *Daemon) getConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}
