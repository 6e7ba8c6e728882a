package workflows

import (
	"context"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/repo"
)

// ReadOptions configures the read workflow.
type ReadOptions struct {
	RepoOptions
	Collection repo.Collection
	Handle     repo.Handle
}

// ReadResult contains the decrypted document.
type ReadResult struct {
	Folder   string
	Document repo.Document
}

// Read decrypts one document. Only successful reads are audited.
func Read(ctx context.Context, opts ReadOptions) (*ReadResult, error) {
	if err := opts.Collection.Validate(); err != nil {
		return nil, err
	}

	r, err := buildRepo(opts.RepoOptions)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := r.Read(opts.Collection, opts.Handle)
	if err != nil {
		return nil, err
	}

	entry := audit.NewEntry("read")
	entry.Collection = opts.Collection.String()
	entry.Handles = []string{opts.Handle.String()}
	record(opts.RepoOptions, r.Folder(), entry)

	return &ReadResult{
		Folder:   r.Folder(),
		Document: repo.Document{Handle: opts.Handle, Content: content},
	}, nil
}
