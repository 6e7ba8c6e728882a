package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/trove/internal/audit"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/repo"
)

// SetupOptions configures the setup workflow.
type SetupOptions struct {
	RepoOptions

	// Prompter asks for a new password when the source has none. Nil reads
	// from the terminal.
	Prompter repo.Prompter
}

// SetupResult contains the outcome of setup.
type SetupResult struct {
	// Folder is the repository folder.
	Folder string

	// CreatedConfig is true when repo.def was written by this run.
	CreatedConfig bool

	// StoredPassword is true when a new password was saved to the keyring.
	StoredPassword bool
}

// Setup performs the one-time bootstrap: it makes sure the password source
// can produce a password (storing one in the keyring if needed), creates the
// repository folder and config, and verifies a key can be derived.
func Setup(ctx context.Context, opts SetupOptions) (*SetupResult, error) {
	if opts.Source == nil {
		return nil, errors.New("no password source configured")
	}

	password, err := opts.Source.Password()
	stored := false
	if errors.Is(err, kerrors.ErrNoPassword) {
		if err := repo.SetupIfNeeded(opts.Source, opts.Prompter); err != nil {
			return nil, fmt.Errorf("setting up %s password: %w", opts.Source, err)
		}
		opts.Logger.Infof("Stored a new repository password in the %s", opts.Source)
		stored = true
		password, err = opts.Source.Password()
	}
	if err != nil {
		return nil, err
	}

	folder, err := repo.RepoFolder(opts.Settings.DataRoot)
	if err != nil {
		return nil, err
	}

	_, existed, err := repo.ReadRepoConfig(folder)
	if err != nil {
		return nil, err
	}
	if _, err := repo.ReadOrBuildRepoConfig(folder); err != nil {
		return nil, err
	}
	if !existed {
		opts.Logger.Infof("Created repository config in %s", folder)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reuse the password so interactive sources are asked only once.
	if err := repo.Check(opts.Settings.DataRoot, repo.PassIn{Value: password}); err != nil {
		return nil, fmt.Errorf("verifying setup: %w", err)
	}

	entry := audit.NewEntry("setup")
	entry.Source = opts.Source.String()
	record(opts.RepoOptions, folder, entry)

	return &SetupResult{
		Folder:         folder,
		CreatedConfig:  !existed,
		StoredPassword: stored,
	}, nil
}
