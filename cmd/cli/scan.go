package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MAS191/ScanPro/internal/config"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/report"
	"github.com/MAS191/ScanPro/internal/scanning"
	"github.com/MAS191/ScanPro/internal/targets"
)

const (
	formatTable = "table"

	maxBannerDisplayLen = 40
)

var (
	scanTargets     []string
	scanTargetFile  string
	scanPorts       string
	scanPreset      string
	scanProfileID   string
	scanTypeFlag    string
	scanTimeout     time.Duration
	scanConcurrency int
	scanDelay       time.Duration
	scanNoBanners   bool
	scanFormat      string
	scanOutput      string
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan targets for open TCP ports",
	Long: `Scan one or more targets for open TCP ports, with optional service
detection and banner grabbing.

Targets may be hostnames, IP addresses, CIDR blocks (192.168.1.0/24),
or address ranges (192.168.1.10-20), given on the command line or one
per line in a file. Ports are listed explicitly (22,80,8000-8100) or
picked by preset name (see 'scanpro presets').

Timing comes from the profile and the configuration file; explicit
flags always win. Interrupting a scan with Ctrl+C reports the results
collected so far and exits non-zero.`,
	Example: `  scanpro scan --targets 192.168.1.10
  scanpro scan --targets 192.168.1.0/24 --preset web
  scanpro scan --targets scanme.example.com --ports 1-1024 --profile slow
  scanpro scan --target-file hosts.txt --format json --output report.json
  scanpro scan --targets 10.0.0.5 --timeout 500ms --concurrency 200 -v`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanTargets, "targets", nil,
		"Targets to scan (hostnames, IPs, CIDR blocks, ranges)")
	scanCmd.Flags().StringVar(&scanTargetFile, "target-file", "",
		"File with one target per line ('#' starts a comment)")
	scanCmd.Flags().StringVar(&scanPorts, "ports", "",
		"Port specification, e.g. '22,80,8000-8100' or a preset name")
	scanCmd.Flags().StringVar(&scanPreset, "preset", "",
		"Port preset: "+strings.Join(profiles.PresetNames(), ", "))
	scanCmd.Flags().StringVar(&scanProfileID, "profile", "",
		"Scan profile: default, fast, slow, stealth, aggressive")
	scanCmd.Flags().StringVar(&scanTypeFlag, "type", "",
		"Scan type (tcp_connect)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0,
		"Per-connection timeout, e.g. 3s or 500ms")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0,
		"Probe workers per host")
	scanCmd.Flags().DurationVar(&scanDelay, "delay", 0,
		"Pause between connection attempts")
	scanCmd.Flags().BoolVar(&scanNoBanners, "no-banners", false,
		"Skip banner grabbing on open ports")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", formatTable,
		"Output format: table, json, text, xml")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "",
		"Write the report to a file instead of stdout")

	scanCmd.MarkFlagsMutuallyExclusive("ports", "preset")
}

func runScan(cmd *cobra.Command, _ []string) {
	if err := validateFormat(scanFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	specs, err := collectTargetSpecs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
	if len(specs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: at least one of --targets or --target-file is required\n\n")
		_ = cmd.Help()
		os.Exit(exitUsage)
	}

	expanded, err := targets.ParseTargets(strings.Join(specs, ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid target specification: %v\n", err)
		os.Exit(exitUsage)
	}

	appCfg, err := loadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	scanCfg, err := buildScanConfig(cmd, appCfg, expanded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning %d hosts on %d ports (type=%s timeout=%s concurrency=%d)\n",
			len(scanCfg.Targets), len(scanCfg.Ports),
			scanCfg.ScanType, scanCfg.Timeout, scanCfg.Concurrency)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := scanning.RunWithResolver(ctx, scanCfg, appCfg.BuildResolver(), scanProgress())

	// A canceled run still carries the results collected so far.
	if result != nil {
		if err := renderResult(result, scanCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", runErr)
		os.Exit(exitError)
	}
}

// collectTargetSpecs merges the --targets list with the contents of
// --target-file.
func collectTargetSpecs() ([]string, error) {
	specs := append([]string{}, scanTargets...)
	if scanTargetFile != "" {
		fromFile, err := targets.LoadTargetsFile(scanTargetFile)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}
	return specs, nil
}

// buildScanConfig resolves the effective scan configuration: config
// file defaults, then the profile, then explicit flags, then clamping
// into the supported ranges.
func buildScanConfig(cmd *cobra.Command, appCfg *config.Config, expanded []string) (*scanning.Config, error) {
	ports, err := resolvePorts(appCfg)
	if err != nil {
		return nil, err
	}

	defaults := appCfg.ScanDefaults()
	cfg := &scanning.Config{
		Targets:  expanded,
		Ports:    ports,
		ScanType: defaults.ScanType,
		Banners:  defaults.Banners,
		Verbose:  verbose,
	}
	if scanTypeFlag != "" {
		cfg.ScanType = scanning.ScanType(scanTypeFlag)
	}

	if scanProfileID != "" {
		profile, err := profiles.NewManager().GetByID(scanProfileID)
		if err != nil {
			return nil, err
		}
		profile.Apply(cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.Delay == 0 {
		cfg.Delay = defaults.Delay
	}

	// Changed() distinguishes an explicit zero from an unset flag, so
	// --delay 0 can override a profile that sets a delay.
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = scanTimeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = scanConcurrency
	}
	if flags.Changed("delay") {
		cfg.Delay = scanDelay
	}
	if scanNoBanners {
		cfg.Banners = false
	}

	profiles.Clamp(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePorts turns --preset or --ports into a normalized port list,
// falling back to the configured default specification.
func resolvePorts(appCfg *config.Config) ([]int, error) {
	if scanPreset != "" {
		ports, err := profiles.GetPreset(scanPreset)
		if err != nil {
			return nil, err
		}
		return targets.NormalizePorts(ports), nil
	}

	spec := scanPorts
	if strings.TrimSpace(spec) == "" {
		spec = appCfg.Scanning.DefaultPorts
	}
	ports, err := targets.ParsePorts(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid port specification %q: %w", spec, err)
	}
	return targets.NormalizePorts(ports), nil
}

// validateFormat accepts the table format plus every registered report
// format.
func validateFormat(format string) error {
	if format == formatTable {
		return nil
	}
	if _, err := report.NewWriter(format); err != nil {
		return fmt.Errorf("unsupported format %q (choose from table, %s)",
			format, strings.Join(report.Formats(), ", "))
	}
	return nil
}

// scanProgress returns the progress callback for verbose runs.
// Progress goes to stderr so reports on stdout stay machine-readable.
func scanProgress() scanning.ProgressFunc {
	if !verbose {
		return nil
	}
	return func(ev scanning.Event) {
		switch ev.Type {
		case scanning.EventHostStarted:
			fmt.Fprintf(os.Stderr, "Scanning %s (%d/%d)...\n",
				ev.Target, ev.TargetIndex+1, ev.TargetCount)
		case scanning.EventPortResult:
			if ev.Result != nil && ev.Result.State == scanning.PortStateOpen {
				service := ev.Result.Service
				if service == "" {
					service = "unknown"
				}
				fmt.Fprintf(os.Stderr, "  open %s:%d (%s)\n", ev.Target, ev.Result.Port, service)
			}
		case scanning.EventHostSkipped:
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", ev.Target, ev.Err)
		case scanning.EventHostCompleted:
			if ev.Host != nil {
				fmt.Fprintf(os.Stderr, "Completed %s: %d open of %d scanned\n",
					ev.Target, len(ev.Host.OpenPorts()), len(ev.Host.Ports))
			}
		}
	}
}

// renderResult writes the completed run to the requested destination.
func renderResult(result *scanning.RunResult, cfg *scanning.Config) error {
	doc := report.New(result, cfg)

	if scanOutput != "" {
		format := scanFormat
		if format == formatTable {
			format = formatForPath(scanOutput)
		}
		if err := report.Save(scanOutput, format, doc); err != nil {
			return err
		}
		fmt.Printf("Results written to %s\n", scanOutput)
		return nil
	}

	if scanFormat == formatTable {
		displayScanTable(result)
		return nil
	}
	return report.Write(os.Stdout, scanFormat, doc)
}

// formatForPath picks a report format from a file extension. Table
// output has no file form, so unknown extensions get JSON.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".txt", ".text":
		return "text"
	case ".xml":
		return "xml"
	default:
		return "json"
	}
}

// displayScanTable renders open ports as a table with a summary line.
func displayScanTable(result *scanning.RunResult) {
	if result.Stats.OpenPorts == 0 {
		fmt.Println("No open ports found.")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("HOST", "PORT", "STATE", "SERVICE", "BANNER")

		for i := range result.Hosts {
			host := &result.Hosts[i]
			open := host.OpenPorts()
			sort.Slice(open, func(a, b int) bool { return open[a].Port < open[b].Port })
			for _, p := range open {
				_ = table.Append([]string{
					host.Host,
					strconv.Itoa(p.Port),
					string(p.State),
					p.Service,
					truncateBanner(p.Banner),
				})
			}
		}
		_ = table.Render()
	}

	fmt.Printf("\nScanned %d hosts (%d up) in %s: %d open ports\n",
		result.Stats.TotalHosts, result.Stats.LiveHosts,
		result.Duration.Round(time.Millisecond), result.Stats.OpenPorts)
}

// truncateBanner flattens a banner to one displayable line.
func truncateBanner(banner string) string {
	flat := strings.Join(strings.Fields(banner), " ")
	if len(flat) > maxBannerDisplayLen {
		return flat[:maxBannerDisplayLen-3] + "..."
	}
	return flat
}
