package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/configs"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/repo"
)

// LogOptions configures the log workflow. Reading the audit log needs no
// password.
type LogOptions struct {
	Settings configs.Settings

	// Limit is the maximum number of entries to return, most recent kept.
	// 0 means no limit.
	Limit int

	// Operations keeps only these operations when non-empty.
	Operations []string

	// Collection keeps only entries for this collection when set.
	Collection string

	// Since keeps entries on or after this date (YYYY-MM-DD).
	Since string
}

// LogResult contains the filtered audit entries, oldest first.
type LogResult struct {
	Entries []audit.Entry

	// Total is the number of entries before filtering.
	Total int
}

// Log reads and filters the audit log.
//
// Returns ErrRepoNotInitialized if the repository folder does not exist.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	folder := filepath.Join(opts.Settings.DataRoot, repo.RepoDirName)
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		return nil, kerrors.ErrRepoNotInitialized
	}

	var since time.Time
	if opts.Since != "" {
		t, err := time.Parse(time.DateOnly, opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since must be YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		since = t
	}

	entries, err := audit.ReadEntries(folder)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ops := make(map[string]bool, len(opts.Operations))
	for _, op := range opts.Operations {
		ops[strings.ToLower(strings.TrimSpace(op))] = true
	}

	result := &LogResult{Total: len(entries)}
	for _, e := range entries {
		if len(ops) > 0 && !ops[strings.ToLower(e.Operation)] {
			continue
		}
		if opts.Collection != "" && e.Collection != opts.Collection {
			continue
		}
		if !since.IsZero() {
			t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
			if err != nil || t.Before(since) {
				continue
			}
		}
		result.Entries = append(result.Entries, e)
	}

	if opts.Limit > 0 && len(result.Entries) > opts.Limit {
		result.Entries = result.Entries[len(result.Entries)-opts.Limit:]
	}
	return result, nil
}
