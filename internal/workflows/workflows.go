package workflows

import (
	"errors"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/configs"
	logger "github.com/PolarWolf314/trove/internal/logging"
	"github.com/PolarWolf314/trove/internal/repo"
)

// RepoOptions carries what every repository workflow needs.
type RepoOptions struct {
	// Settings locates the repository.
	Settings configs.Settings

	// Source supplies the repository password.
	Source repo.PasswordSource

	// Logger receives progress and warnings. The zero value is quiet.
	Logger logger.Logger
}

// buildRepo derives the key and opens the repository.
func buildRepo(opts RepoOptions) (*repo.EncryptedRepo, error) {
	if opts.Source == nil {
		return nil, errors.New("no password source configured")
	}
	opts.Logger.Debugf("Building repository under %s with %s password source", opts.Settings.DataRoot, opts.Source)
	return repo.Build(opts.Settings.DataRoot, opts.Source)
}

// record appends to the audit log, warning instead of failing.
func record(opts RepoOptions, folder string, entry audit.Entry) {
	if err := audit.Log(folder, entry); err != nil {
		opts.Logger.Warnf("Could not write audit log: %v", err)
	}
}
