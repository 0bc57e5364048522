package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gdata/internal/connectors/calendar"
	"github.com/custodia-labs/gdata/internal/connectors/contacts"
	"github.com/custodia-labs/gdata/internal/connectors/tasks"
	"github.com/custodia-labs/gdata/internal/core/domain"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the client version and the protocol it speaks",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if versionShort {
		cmd.Println(version)
		return nil
	}

	cmd.Printf("gdata version %s\n", version)
	cmd.Printf("  go:            %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	cmd.Printf("  GData-Version: %s (default)\n", domain.DefaultClientConfig().APIVersion)
	cmd.Println("  services:")
	for _, d := range []domain.AuthorizationDomain{
		calendar.AuthorizationDomain,
		contacts.AuthorizationDomain,
		tasks.AuthorizationDomain,
	} {
		cmd.Printf("    %-6s %s\n", d.ServiceName, d.Scope)
	}
	return nil
}
