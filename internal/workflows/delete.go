package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/repo"
)

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	RepoOptions
	Collection repo.Collection
	Handles    []repo.Handle
}

// DeleteResult lists the handles that were removed.
type DeleteResult struct {
	Folder  string
	Deleted []repo.Handle
}

// Delete removes the given documents in order, stopping at the first
// failure. Handles removed before the failure are still reported and audited.
func Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	if err := opts.Collection.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Handles) == 0 {
		return nil, fmt.Errorf("no handles given")
	}

	r, err := buildRepo(opts.RepoOptions)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := &DeleteResult{Folder: r.Folder()}
	defer func() {
		if len(result.Deleted) == 0 {
			return
		}
		entry := audit.NewEntry("delete")
		entry.Collection = opts.Collection.String()
		for _, h := range result.Deleted {
			entry.Handles = append(entry.Handles, h.String())
		}
		entry.Count = len(result.Deleted)
		record(opts.RepoOptions, result.Folder, entry)
	}()

	for _, h := range opts.Handles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.Delete(opts.Collection, h); err != nil {
			return result, fmt.Errorf("deleting %s: %w", h, err)
		}
		opts.Logger.Infof("Deleted %s from %s", h, opts.Collection)
		result.Deleted = append(result.Deleted, h)
	}

	return result, nil
}
