package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

var readOutput string

func init() {
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "write the document to this file instead of stdout")
}

func resetReadCommandState() {
	readOutput = ""
}

var readCmd = &cobra.Command{
	Use:   "read <collection> <handle>",
	Short: "Decrypt and print a document",
	Long: `Decrypts one document and writes it to stdout, or to --output.

Reading fails if the entry is missing, corrupt, or was sealed under a
different password.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting read command")

		if err := unlockSource(); err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to read password", err))
			return err
		}

		result, err := workflows.Read(context.Background(), workflows.ReadOptions{
			RepoOptions: repoOptions(),
			Collection:  repo.Collection(args[0]),
			Handle:      repo.Handle(args[1]),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to read "+args[1], err))
			return err
		}

		if readOutput == "" {
			_, err := os.Stdout.Write(result.Document.Content)
			return err
		}

		if err := os.WriteFile(readOutput, result.Document.Content, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", readOutput, err)
		}
		fmt.Println(ui.Success.Sprint(ui.MarkSuccess) + " Wrote " + ui.Handle.Sprint(result.Document.Handle) + " to " + ui.Path.Sprint(readOutput))
		return nil
	},
}
