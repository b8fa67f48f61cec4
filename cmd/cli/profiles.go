package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MAS191/ScanPro/internal/profiles"
)

// profilesCmd represents the profiles command. Called bare it lists
// the available profiles.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List scan profiles",
	Long: `List the scan profiles that bundle timing parameters for common
situations. A profile supplies the timeout, concurrency, and delay for
a scan; explicit flags override individual values.`,
	Example: `  scanpro profiles
  scanpro profiles show stealth`,
	Run: runProfilesList,
}

// profilesShowCmd represents the profiles show command.
var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show details of a scan profile",
	Args:  cobra.ExactArgs(1),
	Run:   runProfilesShow,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesShowCmd)
}

func runProfilesList(_ *cobra.Command, _ []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "NAME", "TIMEOUT", "CONCURRENCY", "DELAY", "DESCRIPTION")

	for _, p := range profiles.NewManager().GetAll() {
		_ = table.Append([]string{
			p.ID,
			p.Name,
			p.Timeout.String(),
			strconv.Itoa(p.Concurrency),
			p.Delay.String(),
			p.Description,
		})
	}

	_ = table.Render()
}

func runProfilesShow(_ *cobra.Command, args []string) {
	profile, err := profiles.NewManager().GetByID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	fmt.Printf("ID:          %s\n", profile.ID)
	fmt.Printf("Name:        %s\n", profile.Name)
	fmt.Printf("Description: %s\n", profile.Description)
	fmt.Printf("Timeout:     %s\n", profile.Timeout)
	fmt.Printf("Concurrency: %d\n", profile.Concurrency)
	fmt.Printf("Delay:       %s\n", profile.Delay)
	fmt.Println()
	fmt.Printf("Usage: scanpro scan --targets <targets> --profile %s\n", profile.ID)
}
