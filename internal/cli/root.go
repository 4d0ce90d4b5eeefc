// Package cli implements bendonctl, the command line counterpart of the
// options page and popup.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:           "bendonctl",
	Short:         "Manage the weekly lunch reminder and fill the order form",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("server", serverFromEnv(), "Bendon Helper server URL (env BENDON_SERVER)")
	rootCmd.AddCommand(settingsCmd, alarmCmd, testNotificationCmd, fillCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func serverFromEnv() string {
	if u := os.Getenv("BENDON_SERVER"); strings.TrimSpace(u) != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultServerURL
}

func apiFor(cmd *cobra.Command) *apiClient {
	server, _ := cmd.Flags().GetString("server")
	return newAPIClient(strings.TrimRight(server, "/"))
}
