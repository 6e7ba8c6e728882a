package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/trove/internal/audit"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit      int
	logOperation  string
	logCollection string
	logSince      string
	logJSON       bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVarP(&logCollection, "collection", "c", "", "filter by collection")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of repository operations: who did what, when, and
to which handles. Document contents are never logged.

Examples:
  trove repo log                        # View full log
  trove repo log -n 10                  # Last 10 entries
  trove repo log --operation add,delete # Filter by operation
  trove repo log -c notes --since 2024-01-01
  trove repo log --json                 # JSON output`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		opts := workflows.LogOptions{
			Settings:   settings,
			Limit:      logLimit,
			Collection: logCollection,
			Since:      logSince,
		}
		if logOperation != "" {
			opts.Operations = strings.Split(logOperation, ",")
		}

		result, err := workflows.Log(context.Background(), opts)
		if err != nil {
			switch {
			case errors.Is(err, kerrors.ErrRepoNotInitialized):
				fmt.Fprintln(os.Stderr, ui.Error.Sprint(ui.MarkError)+" The repository has not been set up\n"+
					ui.Info.Sprint(ui.MarkHint)+" Run "+ui.Code.Sprint("trove repo setup")+" first")
			default:
				fmt.Fprintln(os.Stderr, ui.Error.Sprint(ui.MarkError)+" Failed to read audit log: "+err.Error())
			}
			return err
		}
		Logger.Debugf("Showing %d of %d entries", len(result.Entries), result.Total)

		if logJSON {
			entries := result.Entries
			if entries == nil {
				entries = []audit.Entry{}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal entries to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(result.Entries) == 0 {
			if result.Total == 0 {
				fmt.Println("No audit log entries found.")
			} else {
				fmt.Println("No audit log entries found matching the filters.")
			}
			return nil
		}

		for _, e := range result.Entries {
			fmt.Printf("%-19s  %-16s  %-7s  %s\n", formatDateTime(e.Timestamp), e.User, e.Operation, formatDetails(e))
		}
		return nil
	},
}

func formatDateTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(time.DateTime)
}

func formatDetails(e audit.Entry) string {
	var parts []string
	if e.Collection != "" {
		parts = append(parts, ui.Collection.Sprint(e.Collection))
	}
	switch {
	case len(e.Handles) == 1:
		parts = append(parts, ui.Handle.Sprint(e.Handles[0]))
	case len(e.Handles) > 1:
		parts = append(parts, fmt.Sprintf("%d handles", len(e.Handles)))
	case e.Count > 0:
		parts = append(parts, fmt.Sprintf("%d documents", e.Count))
	}
	if e.Failures > 0 {
		parts = append(parts, ui.Warning.Sprintf("%d unreadable", e.Failures))
	}
	if e.Source != "" {
		parts = append(parts, "via "+e.Source)
	}
	return strings.Join(parts, " ")
}
