package workflows

import (
	"context"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/repo"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	RepoOptions
	Collection repo.Collection

	// Each, when set, receives every document as it is decrypted and the
	// result keeps no contents. Returning false stops the listing.
	Each func(repo.Document) bool
}

// ListFailure is an entry that could not be read.
type ListFailure struct {
	Err error
}

// ListResult contains the outcome of the list workflow.
type ListResult struct {
	Folder    string
	Documents []repo.Document
	Count     int
	Failures  []ListFailure
}

// List enumerates a collection. Unreadable entries are collected as
// failures rather than ending the listing.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if err := opts.Collection.Validate(); err != nil {
		return nil, err
	}

	r, err := buildRepo(opts.RepoOptions)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := &ListResult{Folder: r.Folder()}
	for doc, err := range r.List(opts.Collection) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		if err != nil {
			opts.Logger.Debugf("Skipping unreadable entry: %v", err)
			result.Failures = append(result.Failures, ListFailure{Err: err})
			continue
		}
		result.Count++
		if opts.Each != nil {
			if !opts.Each(doc) {
				break
			}
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	entry := audit.NewEntry("list")
	entry.Collection = opts.Collection.String()
	entry.Count = result.Count
	entry.Failures = len(result.Failures)
	record(opts.RepoOptions, result.Folder, entry)

	return result, nil
}
