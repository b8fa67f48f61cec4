package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MAS191/ScanPro/internal/profiles"
)

// maxPresetPortsShown caps the ports column so the "all" preset does
// not print 65535 numbers.
const maxPresetPortsShown = 12

// presetsCmd represents the presets command.
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List port presets",
	Long: `List the built-in port presets. A preset names a set of commonly
scanned ports and can be used anywhere a port specification is
accepted, including the --preset flag and the ports field of API scan
requests.`,
	Example: `  scanpro presets
  scanpro scan --targets 192.168.1.10 --preset web`,
	Run: runPresetsList,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresetsList(_ *cobra.Command, _ []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("NAME", "PORTS", "INCLUDES")

	for _, preset := range profiles.ListPresets() {
		_ = table.Append([]string{
			preset.Name,
			strconv.Itoa(len(preset.Ports)),
			portListPreview(preset.Ports),
		})
	}

	_ = table.Render()
}

// portListPreview renders the first ports of a preset, eliding the
// rest.
func portListPreview(ports []int) string {
	shown := ports
	elided := false
	if len(shown) > maxPresetPortsShown {
		shown = shown[:maxPresetPortsShown]
		elided = true
	}

	parts := make([]string, 0, len(shown)+1)
	for _, port := range shown {
		parts = append(parts, strconv.Itoa(port))
	}
	if elided {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ",")
}
