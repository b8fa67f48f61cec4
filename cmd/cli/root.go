// Package cli implements the scanpro command line interface. It wires
// the Cobra command tree with commands for running scans, serving the
// daemon, inspecting profiles and presets, and generating API keys.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MAS191/ScanPro/internal/api/handlers"
	"github.com/MAS191/ScanPro/internal/config"
	"github.com/MAS191/ScanPro/internal/logging"
)

// Exit codes. Runtime failures and interrupted scans exit with
// exitError; flag, argument, and configuration problems exit with
// exitUsage.
const (
	exitError = 1
	exitUsage = 2
)

// defaultConfigFile is picked up from the working directory when no
// --config flag or SCANPRO_CONFIG variable names a file.
const defaultConfigFile = "scanpro.yaml"

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scanpro",
	Short: "Concurrent TCP port scanner",
	Long: `ScanPro is a concurrent TCP port scanner with service detection,
banner grabbing, and scan profiles. It runs one-shot scans from the
command line or as a daemon exposing a REST API with scheduled scans
and live progress over WebSocket.`,
	Version: getVersion(),
}

// Execute runs the root command. Cobra reports unknown commands and
// malformed flags as errors; those are usage problems.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"config file (default is ./"+defaultConfigFile+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	bindPersistentFlags(flags)
}

// bindPersistentFlags binds the global flags to viper so that
// SCANPRO_VERBOSE and SCANPRO_CONFIG work as environment overrides.
func bindPersistentFlags(flags *pflag.FlagSet) {
	for _, name := range []string{"verbose", "config"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", name, err)
		}
	}
}

// initConfig resolves the configuration file path from flags and
// environment variables.
func initConfig() {
	viper.SetEnvPrefix("SCANPRO")
	viper.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
	if cfgFile == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			cfgFile = defaultConfigFile
		}
	}
	verbose = viper.GetBool("verbose")

	if verbose && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
	}

	// Initialize structured logging after config is resolved
	initLogging()
}

// loadAppConfig loads the typed configuration. A missing or unset
// config file falls back to built-in defaults.
func loadAppConfig() (*config.Config, error) {
	return config.LoadOrDefault(cfgFile)
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main). The API
// server's /version endpoint reports the same values.
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
	handlers.SetBuildInfo(v, c, bt)
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := loadAppConfig()
	if err != nil {
		// If config loading fails, use default logging. The command
		// itself reports the config problem to the user.
		logging.SetDefault(logging.NewDefault())
		return
	}

	logConfig := logging.Config{
		Level:     logging.LogLevel(cfg.Logging.Level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.GetLogOutput(),
		AddSource: cfg.Logging.Level == "debug",
	}
	if verbose {
		logConfig.Level = logging.LevelDebug
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)
}
