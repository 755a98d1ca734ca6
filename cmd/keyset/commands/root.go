package commands

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	conf   string
	memory string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "keyset",
		Short:         "Keyset pagination over MongoDB collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.conf, "conf", "c", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.memory, "memory", "", "serve JSON lines files from this file or directory instead of MongoDB")

	rootCmd.AddCommand(
		newPageCommand(flags),
		newServeCommand(flags),
		newDecodeCommand(),
		newVersionCommand(),
	)

	return rootCmd
}
