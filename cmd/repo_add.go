package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/utils"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	addCollection string
	addFromStdin  bool
)

func init() {
	addCmd.Flags().StringVarP(&addCollection, "collection", "c", "", "collection to add the documents to (required)")
	addCmd.Flags().BoolVar(&addFromStdin, "stdin", false, "read a single document from stdin")
	if err := addCmd.MarkFlagRequired("collection"); err != nil {
		panic(err)
	}
}

func resetAddCommandState() {
	addCollection = ""
	addFromStdin = false
}

var addCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Encrypt and store documents",
	Long: `Encrypts each file as one document in the given collection and prints its
handle. Paths may be files, directories or glob patterns, including ** for
recursive matches.

Examples:
  trove repo add -c notes todo.txt
  trove repo add -c notes "journal/**/*.md"
  echo "hello" | trove repo add -c inbox --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command")

		opts := workflows.AddOptions{Collection: repo.Collection(addCollection), Patterns: args}
		switch {
		case addFromStdin && len(args) > 0:
			return errors.New("cannot combine --stdin with file arguments")
		case addFromStdin:
			content, err := utils.ReadStdin()
			if err != nil {
				return err
			}
			opts.Content = content
		case len(args) == 0:
			return errors.New("no files given (pass files, or use --stdin)")
		}

		if err := unlockSource(); err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to read password", err))
			return err
		}

		spinner, cleanup := startSpinner("Adding documents...", verbose)
		defer cleanup()

		opts.RepoOptions = repoOptions()
		result, err := workflows.Add(context.Background(), opts)

		var lines []string
		if result != nil {
			for _, doc := range result.Documents {
				lines = append(lines, fmt.Sprintf("  %s  %s %s", ui.Handle.Sprint(doc.Handle), doc.Source, ui.Muted.Sprint(utils.FormatSize(doc.Size))))
			}
		}

		if err != nil {
			msg := failureMessage("Failed to add documents", err)
			if len(lines) > 0 {
				msg = fmt.Sprintf("%s\nAdded before the failure:\n%s", msg, strings.Join(lines, "\n"))
			}
			spinner.FinalMSG = msg
			return err
		}

		spinner.FinalMSG = fmt.Sprintf("%s Added %d document(s) to %s\n%s",
			ui.Success.Sprint(ui.MarkSuccess), len(result.Documents), ui.Collection.Sprint(addCollection), strings.Join(lines, "\n"))
		return nil
	},
}
