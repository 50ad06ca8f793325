// Package cli holds the quizctl operator commands.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "quizctl",
		Short:        "Operator tooling for the CourseMart quiz service",
		SilenceUsage: true,
	}

	cmd.AddCommand(newTokenCmd(readSecretFromTerminal))
	cmd.AddCommand(newPurgeAttemptsCmd())
	return cmd
}
