package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Failures go to stderr so stdout stays parsable.
		if finalMsg != "" {
			if strings.HasPrefix(finalMsg, ui.Error.Sprint(ui.MarkError)) {
				fmt.Fprint(os.Stderr, finalMsg)
			} else {
				fmt.Print(finalMsg)
			}
		}
	}

	return s, cleanup
}

// failureMessage renders err as a status line with a hint for the errors
// an operator can act on.
func failureMessage(action string, err error) string {
	msg := ui.Error.Sprint(ui.MarkError) + " " + action + ": " + err.Error()

	var hint string
	switch {
	case errors.Is(err, kerrors.ErrNoPassword):
		hint = "Run " + ui.Code.Sprint("trove repo setup") + " or choose another " + ui.Flag.Sprint("--password-source")
	case errors.Is(err, kerrors.ErrDecrypt):
		hint = "Check that you are using the repository password"
	case errors.Is(err, kerrors.ErrInvalidHandle):
		hint = "Handles are 16 lowercase hex digits, as printed by " + ui.Code.Sprint("trove repo add")
	case errors.Is(err, kerrors.ErrConfigCorrupt):
		hint = "Run " + ui.Code.Sprint("trove repo check") + " for details"
	}
	if hint != "" {
		msg += "\n" + ui.Info.Sprint(ui.MarkHint) + " " + hint
	}
	return msg
}
