package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "supportctl",
		Short:         "Operator tooling for the support desk",
		Long:          "supportctl seeds accounts, manages DynamoDB tables and replays the e-mail outbox.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "support.yaml", "path to support.yaml")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAdminCmd(&configPath))
	cmd.AddCommand(newAgentCmd(&configPath))
	cmd.AddCommand(newDynamoCmd(&configPath))
	cmd.AddCommand(newOutboxCmd(&configPath))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "supportctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
