package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/utils"
)

// StdinSource names content read from standard input in results.
const StdinSource = "<stdin>"

// AddOptions configures the add workflow.
type AddOptions struct {
	RepoOptions

	// Collection receives the new documents.
	Collection repo.Collection

	// Patterns are file paths, directories or globs to add, one document each.
	Patterns []string

	// BaseDir resolves relative patterns. Defaults to the working directory.
	BaseDir string

	// Content, when non-nil, is added as a single document instead of files.
	Content []byte
}

// AddedDocument describes one document stored by Add.
type AddedDocument struct {
	Source string
	Handle repo.Handle
	Size   int
}

// AddResult contains the outcome of the add workflow.
type AddResult struct {
	Folder    string
	Documents []AddedDocument
}

// Add seals each named file (or the given content) into the collection.
// Files are added in order and the first failure stops the workflow; the
// documents added before it are still reported.
func Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	if err := opts.Collection.Validate(); err != nil {
		return nil, err
	}

	type pending struct {
		source string
		path   string
	}
	var inputs []pending

	if opts.Content == nil {
		if len(opts.Patterns) == 0 {
			return nil, errors.New("nothing to add: pass files or use --stdin")
		}
		baseDir := opts.BaseDir
		if baseDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			baseDir = wd
		}
		files, err := ResolveFiles(opts.Patterns, baseDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			rel, err := filepath.Rel(baseDir, f)
			if err != nil {
				rel = f
			}
			inputs = append(inputs, pending{source: rel, path: f})
		}
		opts.Logger.Debugf("Resolved %d files: %s", len(files), utils.FormatPaths(files))
	}

	r, err := buildRepo(opts.RepoOptions)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := &AddResult{Folder: r.Folder()}
	entry := audit.NewEntry("add")
	entry.Collection = opts.Collection.String()
	defer func() {
		if len(result.Documents) == 0 {
			return
		}
		for _, doc := range result.Documents {
			entry.Handles = append(entry.Handles, doc.Handle.String())
		}
		entry.Count = len(result.Documents)
		record(opts.RepoOptions, result.Folder, entry)
	}()

	if opts.Content != nil {
		h, err := r.Add(opts.Collection, opts.Content)
		if err != nil {
			return result, err
		}
		result.Documents = append(result.Documents, AddedDocument{Source: StdinSource, Handle: h, Size: len(opts.Content)})
		return result, nil
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		content, err := os.ReadFile(in.path)
		if err != nil {
			return result, fmt.Errorf("reading %s: %w", in.source, err)
		}
		h, err := r.Add(opts.Collection, content)
		if err != nil {
			return result, fmt.Errorf("adding %s: %w", in.source, err)
		}
		opts.Logger.Infof("Added %s as %s (%s)", in.source, h, utils.FormatSize(len(content)))
		result.Documents = append(result.Documents, AddedDocument{Source: in.source, Handle: h, Size: len(content)})
	}

	return result, nil
}
