// ABOUTME: Root CLI command with global flags and the ASCII banner
// ABOUTME: Wires all subcommands and mutually exclusive verbosity flags
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

const banner = `
███████╗ █████╗  ██████╗  █████╗ ███████╗ ██████╗██████╗ ██╗██████╗ ███████╗
██╔════╝██╔══██╗██╔════╝ ██╔══██╗██╔════╝██╔════╝██╔══██╗██║██╔══██╗██╔════╝
███████╗███████║██║  ███╗███████║███████╗██║     ██████╔╝██║██████╔╝█████╗
╚════██║██╔══██║██║   ██║██╔══██║╚════██║██║     ██╔══██╗██║██╔══██╗██╔══╝
███████║██║  ██║╚██████╔╝██║  ██║███████║╚██████╗██║  ██║██║██████╔╝███████╗
╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sagascribe",
		Short: "Turn tabletop session transcripts into narrated stories",
		Long: banner + `
SagaScribe segments long tabletop-RPG session transcripts, narrates each
segment through configurable generation backends with automatic failover,
and synthesizes the pieces into one coherent story.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewNarrateCmd())
	cmd.AddCommand(NewBackendsCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
