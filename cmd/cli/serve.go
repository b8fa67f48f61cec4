package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MAS191/ScanPro/internal/daemon"
)

var serveListen string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ScanPro daemon",
	Long: `Run ScanPro as a long-lived daemon.

The daemon executes submitted and scheduled scans through a worker
pool and serves the REST API with live progress over WebSocket.
Signals control the running daemon: SIGTERM and SIGINT shut it down
gracefully, SIGHUP reloads the configuration file, SIGUSR1 dumps
status to the log, and SIGUSR2 toggles debug logging.`,
	Example: `  scanpro serve
  scanpro serve --listen 0.0.0.0:9090
  scanpro serve --config /etc/scanpro/config.yaml`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"API listen address as host:port (overrides config, implies api.enabled)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitUsage)
	}

	if serveListen != "" {
		host, port, err := parseListenAddress(serveListen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --listen address: %v\n", err)
			os.Exit(exitUsage)
		}
		cfg.API.Enabled = true
		cfg.API.Host = host
		cfg.API.Port = port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(exitUsage)
	}

	fmt.Printf("Starting ScanPro daemon %s\n", getVersion())
	if cfg.IsAPIEnabled() {
		fmt.Printf("API server: http://%s\n", cfg.GetAPIAddress())
		fmt.Printf("API documentation: http://%s/swagger/\n", cfg.GetAPIAddress())
		fmt.Printf("Liveness check: http://%s/api/v1/healthz\n", cfg.GetAPIAddress())
	} else {
		fmt.Println("API server disabled; the daemon runs scheduled scans only")
	}

	d := daemon.New(cfg, cfgFile)
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Daemon failed: %v\n", err)
		os.Exit(exitError)
	}

	// Start returns after a shutdown signal; Stop releases the
	// components and the PID file.
	if err := d.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		os.Exit(exitError)
	}
	fmt.Println("Daemon stopped")
}

// parseListenAddress splits and checks a host:port listen address. An
// empty host means all interfaces.
func parseListenAddress(addr string) (host string, port int, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port must be between 1 and 65535, got %q", portStr)
	}
	return host, port, nil
}
