// This file implements API key generation for API server
// authentication. Keys are not persisted anywhere; the generated
// bcrypt hash goes into the configuration file and the plain key is
// shown exactly once.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MAS191/ScanPro/internal/auth"
)

var apiKeyName string

// apiKeysCmd represents the apikeys command group.
var apiKeysCmd = &cobra.Command{
	Use:     "apikeys",
	Aliases: []string{"apikey", "keys", "key"},
	Short:   "Manage API keys for client authentication",
	Long: `Manage API keys for client authentication with the ScanPro API server.

API keys let clients (CLI tools, dashboards, monitoring apps)
authenticate with the API server. ScanPro stores no key material:
'apikeys generate' prints the key once together with the bcrypt hash
to paste into the api.auth.api_keys section of the configuration.
Revoking a key means removing its entry from the configuration and
reloading the daemon with SIGHUP.`,
	Example: `  # Generate an API key for a dashboard application
  scanpro apikeys generate --name "Production Dashboard"

  # Generate a key and accept it in the running daemon
  scanpro apikeys generate --name "CLI Access"
  # paste the printed hash into the config, then: kill -HUP <daemon-pid>`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help if no subcommand is provided
		_ = cmd.Help()
	},
}

// apiKeysGenerateCmd generates a new API key.
var apiKeysGenerateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "create"},
	Short:   "Generate a new API key",
	Long: `Generate a new API key for client authentication.

The key is displayed only once and cannot be recovered; save it in a
secure location. The accompanying bcrypt hash is what goes into the
configuration file.`,
	Example: `  scanpro apikeys generate --name "Production System"
  scanpro apikeys generate --name "CI" && export SCANPRO_API_KEY=sk_...`,
	Run: runAPIKeysGenerate,
}

func init() {
	rootCmd.AddCommand(apiKeysCmd)
	apiKeysCmd.AddCommand(apiKeysGenerateCmd)

	apiKeysGenerateCmd.Flags().StringVarP(&apiKeyName, "name", "n", "", "Name for the API key (required)")
	_ = apiKeysGenerateCmd.MarkFlagRequired("name")
}

func runAPIKeysGenerate(_ *cobra.Command, _ []string) {
	if err := executeGenerateAPIKey(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}

func executeGenerateAPIKey(out io.Writer) error {
	generated, err := auth.GenerateAPIKey(apiKeyName)
	if err != nil {
		return fmt.Errorf("failed to generate API key: %w", err)
	}

	fmt.Fprintln(out, "API Key Generated")
	fmt.Fprintln(out)

	table := tablewriter.NewWriter(out)
	table.Header("NAME", "PREFIX", "CREATED")
	_ = table.Append([]string{
		generated.Name,
		generated.KeyPrefix,
		generated.CreatedAt.Format("2006-01-02 15:04:05 MST"),
	})
	_ = table.Render()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Key: %s\n", generated.Key)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "IMPORTANT: Save this key now - it will not be shown again!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To accept this key, add the hash to your configuration:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "api:")
	fmt.Fprintln(out, "  auth:")
	fmt.Fprintln(out, "    enabled: true")
	fmt.Fprintln(out, "    api_keys:")
	fmt.Fprintf(out, "      - name: %q\n", generated.Name)
	fmt.Fprintf(out, "        hash: %q\n", generated.Hash)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Clients send the key in the X-API-Key header:")
	fmt.Fprintf(out, "  export SCANPRO_API_KEY=%s\n", generated.Key)
	return nil
}
