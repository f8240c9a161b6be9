// Package cli wires the engine's commands: serve, search, purge, version.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartnews",
	Short: "Intelligence ingestion and correlation engine",
	Long:  "Smartnews captures email, messages, notifications, and market signals into one enriched, linked intelligence store. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(purgeCmd)
}
