// Package config loads and validates ScanPro configuration files.
// Configuration is YAML (JSON parses too, being a YAML subset) over a
// defaults baseline, so a file only needs the keys it changes.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scanning"
	"github.com/MAS191/ScanPro/internal/targets"
)

// Duration wraps time.Duration so configuration files can use
// human-readable forms like "500ms" or "1m30s". Bare numbers are
// rejected; a unit is always required.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML parses duration strings such as "3s" or "100ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON renders the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON parses duration strings, or numbers as nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

// Config represents the complete ScanPro configuration.
type Config struct {
	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon" json:"daemon"`

	// Scan defaults applied when a request leaves settings unset
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Hostname resolution configuration
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Background job execution configuration
	Jobs JobsConfig `yaml:"jobs" json:"jobs"`

	// Recurring scan schedules
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`

	// API server configuration
	API APIConfig `yaml:"api" json:"api"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DaemonConfig holds daemon-specific settings.
type DaemonConfig struct {
	// PID file location; empty disables PID file handling
	PIDFile string `yaml:"pid_file" json:"pid_file"`

	// Graceful shutdown timeout
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"min=0"`
}

// ScanningConfig holds the scan defaults. Requests that come in
// without explicit values inherit these.
type ScanningConfig struct {
	// Default port specification (spec or preset name)
	DefaultPorts string `yaml:"default_ports" json:"default_ports" validate:"required"`

	// Default scan profile; empty applies no profile
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`

	// Default scan type
	DefaultScanType string `yaml:"default_scan_type" json:"default_scan_type" validate:"oneof=tcp_connect tcp_syn udp icmp"`

	// Per-connection timeout
	Timeout Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// Worker pool size per host
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"min=1,max=1000"`

	// Pause between connection attempts
	Delay Duration `yaml:"delay" json:"delay" validate:"min=0"`

	// Grab service banners from open ports
	Banners bool `yaml:"banners" json:"banners"`
}

// ResolverConfig holds hostname resolution settings.
type ResolverConfig struct {
	// Custom DNS server ("host" or "host:port"); empty uses the
	// system resolver
	DNSServer string `yaml:"dns_server" json:"dns_server"`

	// DNS query timeout
	Timeout Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

// JobsConfig holds background job execution settings.
type JobsConfig struct {
	// Number of concurrent scan jobs
	Workers int `yaml:"workers" json:"workers" validate:"min=1,max=256"`

	// Pending job queue size
	QueueSize int `yaml:"queue_size" json:"queue_size" validate:"min=1"`

	// Completed jobs retained in memory before eviction
	MaxCompleted int `yaml:"max_completed" json:"max_completed" validate:"min=1"`
}

// SchedulerConfig holds recurring scan settings.
type SchedulerConfig struct {
	// Enable the scheduler
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Scheduled scan definitions
	Jobs []ScheduledJob `yaml:"jobs" json:"jobs" validate:"dive"`
}

// ScheduledJob describes one recurring scan.
type ScheduledJob struct {
	// Schedule name, unique within the configuration
	Name string `yaml:"name" json:"name" validate:"required"`

	// Cron expression (standard five-field form, or @every syntax)
	Cron string `yaml:"cron" json:"cron" validate:"required"`

	// Target specification
	Targets string `yaml:"targets" json:"targets" validate:"required"`

	// Port specification; empty uses the scanning defaults
	Ports string `yaml:"ports" json:"ports"`

	// Scan profile; empty uses the scanning defaults
	Profile string `yaml:"profile" json:"profile"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	// Enable the API server
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address
	Host string `yaml:"host" json:"host"`

	// Listen port
	Port int `yaml:"port" json:"port"`

	// Per-request timeout
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`

	// Graceful shutdown timeout
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"min=0"`

	// Maximum request body size in bytes
	MaxRequestSize int64 `yaml:"max_request_size" json:"max_request_size" validate:"min=1"`

	// Maximum expanded target count accepted per scan request
	MaxTargetsPerScan int `yaml:"max_targets_per_scan" json:"max_targets_per_scan" validate:"min=1"`

	// Accept targets outside private, loopback and link-local ranges
	AllowPublicTargets bool `yaml:"allow_public_targets" json:"allow_public_targets"`

	// TLS settings
	TLS TLSConfig `yaml:"tls" json:"tls"`

	// API key authentication
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// CORS settings
	CORS CORSConfig `yaml:"cors" json:"cors"`
}

// TLSConfig holds TLS settings for the API server.
type TLSConfig struct {
	// Enable TLS
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Certificate file path
	CertFile string `yaml:"cert_file" json:"cert_file"`

	// Private key file path
	KeyFile string `yaml:"key_file" json:"key_file"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	// Require an API key on every request
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Accepted API keys (bcrypt hashes, generated by
	// "scanpro apikeys generate")
	APIKeys []APIKey `yaml:"api_keys" json:"api_keys" validate:"dive"`
}

// APIKey is one accepted API key entry.
type APIKey struct {
	// Key name, for logs and revocation
	Name string `yaml:"name" json:"name" validate:"required"`

	// Bcrypt hash of the key
	Hash string `yaml:"hash" json:"hash" validate:"required"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enable CORS headers
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Allowed origins
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// Allowed methods
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`

	// Allowed headers
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, or a file path)
	Output string `yaml:"output" json:"output" validate:"required"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			PIDFile:         "",
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Scanning: ScanningConfig{
			DefaultPorts:    "top100",
			DefaultProfile:  "default",
			DefaultScanType: string(scanning.ScanTypeTCPConnect),
			Timeout:         Duration(3 * time.Second),
			Concurrency:     100,
			Delay:           0,
			Banners:         true,
		},
		Resolver: ResolverConfig{
			DNSServer: "",
			Timeout:   Duration(5 * time.Second),
		},
		Jobs: JobsConfig{
			Workers:      4,
			QueueSize:    32,
			MaxCompleted: 100,
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
		},
		API: APIConfig{
			Enabled:           true,
			Host:              "127.0.0.1",
			Port:              8080,
			RequestTimeout:    Duration(30 * time.Second),
			ShutdownTimeout:   Duration(10 * time.Second),
			MaxRequestSize:    1024 * 1024, // 1MB
			MaxTargetsPerScan: 1024,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file. The file must exist; values it
// omits keep their defaults. YAML and JSON are accepted.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config (assumed YAML): %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path
// is empty or names a file that does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to a file as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks the configuration for consistency. Structural rules
// are covered by validator tags; the checks below cover what tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Scanning.Timeout.Std() < profiles.MinTimeout || c.Scanning.Timeout.Std() > profiles.MaxTimeout {
		return fmt.Errorf("scanning timeout must be between %s and %s", profiles.MinTimeout, profiles.MaxTimeout)
	}
	if c.Scanning.Delay.Std() > profiles.MaxDelay {
		return fmt.Errorf("scanning delay must not exceed %s", profiles.MaxDelay)
	}
	if _, err := targets.ParsePorts(c.Scanning.DefaultPorts); err != nil {
		return fmt.Errorf("invalid default ports: %w", err)
	}
	if c.Scanning.DefaultProfile != "" {
		if _, err := profiles.NewManager().GetByID(c.Scanning.DefaultProfile); err != nil {
			return fmt.Errorf("unknown default profile %q", c.Scanning.DefaultProfile)
		}
	}

	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	return c.validateAPI()
}

func (c *Config) validateResolver() error {
	server := c.Resolver.DNSServer
	if server == "" {
		return nil
	}
	if _, port, err := net.SplitHostPort(server); err == nil {
		if _, perr := net.LookupPort("udp", port); perr != nil {
			return fmt.Errorf("invalid DNS server port %q", port)
		}
	}
	return nil
}

func (c *Config) validateScheduler() error {
	seen := make(map[string]bool, len(c.Scheduler.Jobs))
	for i := range c.Scheduler.Jobs {
		job := &c.Scheduler.Jobs[i]
		if seen[job.Name] {
			return fmt.Errorf("duplicate scheduled job name %q", job.Name)
		}
		seen[job.Name] = true

		if _, err := cron.ParseStandard(job.Cron); err != nil {
			return fmt.Errorf("invalid cron expression for job %q: %w", job.Name, err)
		}
		if _, err := targets.ParseTargets(job.Targets); err != nil {
			return fmt.Errorf("invalid targets for job %q: %w", job.Name, err)
		}
		if job.Ports != "" {
			if _, err := targets.ParsePorts(job.Ports); err != nil {
				return fmt.Errorf("invalid ports for job %q: %w", job.Name, err)
			}
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > 65535 {
			return fmt.Errorf("API port must be between 1 and 65535")
		}
		if c.API.Host == "" {
			return fmt.Errorf("API host is required when the API is enabled")
		}
	}
	if c.API.TLS.Enabled {
		if c.API.TLS.CertFile == "" {
			return fmt.Errorf("TLS certificate file is required when TLS is enabled")
		}
		if c.API.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file is required when TLS is enabled")
		}
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return fmt.Errorf("API authentication is enabled but no API keys are configured")
	}
	return nil
}

// ScanDefaults returns a scan configuration seeded with the configured
// defaults. Targets and ports are resolved from their specifications
// at submit time and are left empty here.
func (c *Config) ScanDefaults() scanning.Config {
	return scanning.Config{
		ScanType:    scanning.ScanType(c.Scanning.DefaultScanType),
		Timeout:     c.Scanning.Timeout.Std(),
		Concurrency: c.Scanning.Concurrency,
		Delay:       c.Scanning.Delay.Std(),
		Banners:     c.Scanning.Banners,
	}
}

// BuildResolver returns the hostname resolver the configuration asks
// for: a custom DNS resolver when dns_server is set, otherwise the
// system resolver.
func (c *Config) BuildResolver() scanning.Resolver {
	if c.Resolver.DNSServer != "" {
		return scanning.NewDNSResolver(c.Resolver.DNSServer, c.Resolver.Timeout.Std())
	}
	return scanning.SystemResolver{}
}

// GetAPIAddress returns the host:port the API server listens on.
func (c *Config) GetAPIAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// IsAPIEnabled returns true if the API server is enabled.
func (c *Config) IsAPIEnabled() bool {
	return c.API.Enabled
}

// GetLogOutput returns the log output destination.
func (c *Config) GetLogOutput() string {
	return c.Logging.Output
}
