package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	checkJSONOutput bool
	// checkExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	checkExitFunc = os.Exit
)

func init() {
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "output in JSON format")
}

// resetCheckCommandState leaves checkExitFunc alone; tests own it through
// SetCheckExitFunc.
func resetCheckCommandState() {
	checkJSONOutput = false
}

// SetCheckExitFunc sets the exit function for testing purposes.
func SetCheckExitFunc(f func(int)) {
	checkExitFunc = f
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run health checks on the repository",
	Long: `Verifies that the repository folder exists, its salt is readable, the
password source yields a password and a key can be derived. No document is
read or written, and nothing is created.

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting check command")

	if err := unlockSource(); err != nil {
		Logger.Debugf("Password prompt failed: %v", err)
	}

	spinner, cleanup := startSpinner("Running health checks...", verbose)
	defer cleanup()

	result, err := workflows.Check(context.Background(), workflows.CheckOptions{RepoOptions: repoOptions()})
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint(ui.MarkError) + " Failed to run health checks: " + err.Error()
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status, check.Message)
	}

	if checkJSONOutput {
		spinner.FinalMSG = ""
		if err := outputCheckJSON(result); err != nil {
			return err
		}
	} else {
		printCheckResults(result)
		switch {
		case result.Summary.Errors > 0:
			spinner.FinalMSG = ui.Error.Sprint(ui.MarkError) + " Health checks completed with errors"
		case result.Summary.Warnings > 0:
			spinner.FinalMSG = ui.Warning.Sprint(ui.MarkWarning) + " Health checks completed with warnings"
		default:
			spinner.FinalMSG = ui.Success.Sprint(ui.MarkSuccess) + " Health checks completed"
		}
	}

	if result.Summary.Errors > 0 {
		cleanup()
		checkExitFunc(2)
		return nil
	}
	if result.Summary.Warnings > 0 {
		cleanup()
		checkExitFunc(1)
	}
	return nil
}

func outputCheckJSON(result *workflows.CheckReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printCheckResults(result *workflows.CheckReport) {
	fmt.Println("Checking " + ui.Path.Sprint(result.Folder))
	fmt.Println()

	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Success.Sprint(ui.MarkSuccess)
		case workflows.CheckWarning:
			statusIcon = ui.Warning.Sprint(ui.MarkWarning)
		case workflows.CheckError:
			statusIcon = ui.Error.Sprint(ui.MarkError)
		case workflows.CheckSkipped:
			statusIcon = ui.Muted.Sprint("-")
		}
		fmt.Printf("%s %s\n", statusIcon, check.Message)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprintf("%d warning(s)", result.Summary.Warnings))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprintf("%d error(s)", result.Summary.Errors))
	}
	if result.Summary.Skipped > 0 {
		fmt.Printf(", %d skipped", result.Summary.Skipped)
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Info.Sprint(ui.MarkHint), suggestion)
		}
	}
}
