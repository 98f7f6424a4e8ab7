package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Personal trading-journal API server",
	Long: `Journal is a single-user trading-journal service.

It records forex, crypto and commodity positions, tracks their lifecycle
from open to close, and serves aggregate performance statistics (win rate,
total profit, equity curve) over a JSON API.

Commands:
  serve  - run the HTTP API server
  seed   - load the demo dataset into the database`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
