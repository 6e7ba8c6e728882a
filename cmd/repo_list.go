package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/utils"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

const previewLength = 60

var listCountOnly bool

func init() {
	listCmd.Flags().BoolVar(&listCountOnly, "count", false, "print only the number of readable documents")
}

func resetListCommandState() {
	listCountOnly = false
}

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the documents in a collection",
	Long: `Decrypts every document in a collection and prints its handle, size and
first line. Entries that cannot be read are reported as warnings and do not
stop the listing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		if err := unlockSource(); err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to read password", err))
			return err
		}

		opts := workflows.ListOptions{
			RepoOptions: repoOptions(),
			Collection:  repo.Collection(args[0]),
		}
		if !listCountOnly {
			opts.Each = func(doc repo.Document) bool {
				fmt.Printf("%s  %8s  %s\n", ui.Handle.Sprint(doc.Handle), utils.FormatSize(len(doc.Content)), preview(doc.Content))
				return true
			}
		}

		result, err := workflows.List(context.Background(), opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Failed to list "+args[0], err))
			return err
		}

		for _, failure := range result.Failures {
			Logger.Warnf("%v", failure.Err)
		}

		if listCountOnly {
			fmt.Println(result.Count)
			return nil
		}

		summary := fmt.Sprintf("%d document(s) in %s", result.Count, ui.Collection.Sprint(args[0]))
		if len(result.Failures) > 0 {
			summary += ", " + ui.Warning.Sprintf("%d unreadable", len(result.Failures))
		}
		fmt.Fprintln(os.Stderr, summary)
		return nil
	},
}

// preview returns the first line of content, shortened for display.
func preview(content []byte) string {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	if !utf8.Valid(line) {
		return ui.Muted.Sprint("binary")
	}
	// Terminal escapes and other control runes must not reach the screen.
	s := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return '?'
	}, string(line))
	if utf8.RuneCountInString(s) > previewLength {
		runes := []rune(s)
		s = string(runes[:previewLength]) + "..."
	}
	return s
}
