package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trove",
	Short: "Trove - an encrypted, content-addressed document repository.",
	Long: `Trove stores text documents encrypted at rest under a key derived from a
single password. Documents live in named collections and are addressed by a
handle derived from their ciphertext.

Usage:
  trove <command> [flags]

Available Commands:
  repo    Manage the encrypted document repository

Run 'trove help <command>' for more details on a specific command.
`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to Trove! Run 'trove --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(RepoCmd)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
