// Package cli implements the gdata command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/gdata/internal/logger"
)

var version = "dev"

// Global flags.
var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "gdata",
	Short: "Query GData-style feeds from the command line",
	Long: `gdata talks to Atom and JSON feed services such as calendar, contacts
and tasks. It fetches feeds with typed entries, follows pagination and
signs requests with ClientLogin or OAuth 2.0 credentials.

Configuration is read from ~/.gdata/config.toml unless --config names
another directory.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.gdata)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and parser diagnostics")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
