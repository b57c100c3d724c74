package commands

import (
	"github.com/spf13/cobra"

	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/log"
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

// registerFlagsRootCmd registers the flags for the root command
func registerFlagsRootCmd(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.PersistentFlags().String(config.FlagLogLevel, def.LogLevel, "set the log level; default is info. other options include debug, info, error, none")
	cmd.PersistentFlags().String(config.FlagLogFormat, log.FormatPlain, "set the log format; options include plain and json")
}

// RootCmd is the root command for the dispute ordering node
var RootCmd = &cobra.Command{
	Use:   "disputes",
	Short: "Dispute ordering for a relay chain node.",
	Long: `
Disputes tracks which parachain candidates were included in which relay chain blocks
and orders disputed candidates by the age of their relay parent.
The run command drives it with a simulated relay chain.
`,
}
