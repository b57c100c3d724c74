package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rollkit/disputes/config"
)

// GitSHA is set at build time
var GitSHA string

// Version is set at build time
var Version string

// VersionCmd prints version information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := Version
		if version == "" {
			version = config.Version
		}
		if GitSHA == "" {
			return fmt.Errorf("git sha not set")
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 2, ' ', 0)
		fmt.Fprintf(w, "\ndisputes version:\t%v\n", version)
		fmt.Fprintf(w, "disputes git sha:\t%v\n", GitSHA)
		fmt.Fprintln(w, "")
		return w.Flush()
	},
}
