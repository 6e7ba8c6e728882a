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

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <handle>...",
	Short: "Delete documents",
	Long: `Removes documents from a collection immediately. Handles are processed in
order and the command stops at the first one that cannot be deleted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting delete command")

		handles := make([]repo.Handle, 0, len(args)-1)
		for _, arg := range args[1:] {
			handles = append(handles, repo.Handle(arg))
		}

		if err := unlockSource(); err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to read password", err))
			return err
		}

		spinner, cleanup := startSpinner("Deleting documents...", verbose)
		defer cleanup()

		result, err := workflows.Delete(context.Background(), workflows.DeleteOptions{
			RepoOptions: repoOptions(),
			Collection:  repo.Collection(args[0]),
			Handles:     handles,
		})
		deleted := 0
		if result != nil {
			deleted = len(result.Deleted)
		}
		if err != nil {
			spinner.FinalMSG = failureMessage(fmt.Sprintf("Deleted %d of %d document(s)", deleted, len(handles)), err)
			return err
		}

		spinner.FinalMSG = fmt.Sprintf("%s Deleted %d document(s) from %s",
			ui.Success.Sprint(ui.MarkSuccess), deleted, ui.Collection.Sprint(args[0]))
		return nil
	},
}
