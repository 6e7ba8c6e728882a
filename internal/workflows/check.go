package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/trove/internal/audit"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/repo"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
	// CheckSkipped means an earlier failure made the check meaningless.
	CheckSkipped
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	case CheckSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// CheckReport holds the complete result of the check workflow.
type CheckReport struct {
	Folder      string        `json:"folder"`
	Checks      []CheckResult `json:"checks"`
	Summary     CheckSummary  `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// CheckSummary holds counts of checks by status.
type CheckSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
	Skipped  int `json:"skipped"`
}

// CheckOptions configures the check workflow.
type CheckOptions struct {
	RepoOptions
}

const setupHint = "Run 'trove repo setup' to initialize the repository"

// Check validates the repository setup without reading or writing any
// document. It never creates the folder or the config.
//
// The checks run in order, and a failed prerequisite skips the checks that
// depend on it:
//   - the repository folder exists and is private to the user
//   - repo.def decodes to a valid salt
//   - the password source yields a password
//   - a key can be derived (the same probe as repo.Check)
//   - the audit log is readable
func Check(ctx context.Context, opts CheckOptions) (*CheckReport, error) {
	if opts.Source == nil {
		return nil, errors.New("no password source configured")
	}

	folder := filepath.Join(opts.Settings.DataRoot, repo.RepoDirName)
	report := &CheckReport{Folder: folder}
	add := func(r CheckResult) { report.Checks = append(report.Checks, r) }

	folderOK := checkFolder(folder, add)

	configOK := false
	if folderOK {
		configOK = checkConfig(folder, add)
	} else {
		add(skipped("config"))
	}

	password, passwordOK := checkPassword(opts.Source, add)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if configOK && passwordOK {
		// Reuse the password so interactive sources are asked only once.
		if err := repo.Check(opts.Settings.DataRoot, repo.PassIn{Value: password}); err != nil {
			add(CheckResult{Name: "key", Status: CheckError, Message: fmt.Sprintf("Key derivation failed: %v", err)})
		} else {
			add(CheckResult{Name: "key", Status: CheckPass, Message: "Repository key can be derived"})
		}
	} else {
		add(skipped("key"))
	}

	if folderOK {
		checkAuditLog(folder, add)
	} else {
		add(skipped("audit"))
	}

	report.Summary = summarize(report.Checks)

	seen := make(map[string]bool)
	for _, result := range report.Checks {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			report.Suggestions = append(report.Suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	opts.Logger.Debugf("Check summary: %+v", report.Summary)
	return report, nil
}

func skipped(name string) CheckResult {
	return CheckResult{Name: name, Status: CheckSkipped, Message: fmt.Sprintf("Skipped %s check", name)}
}

func checkFolder(folder string, add func(CheckResult)) bool {
	info, err := os.Stat(folder)
	switch {
	case os.IsNotExist(err):
		add(CheckResult{Name: "folder", Status: CheckError, Message: "Repository folder does not exist: " + folder, Suggestion: setupHint})
		return false
	case err != nil:
		add(CheckResult{Name: "folder", Status: CheckError, Message: fmt.Sprintf("Cannot access repository folder: %v", err)})
		return false
	case !info.IsDir():
		add(CheckResult{Name: "folder", Status: CheckError, Message: "Repository path is not a directory: " + folder})
		return false
	}

	if info.Mode().Perm()&0077 != 0 {
		add(CheckResult{
			Name:       "folder",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Repository folder is accessible by other users (%o)", info.Mode().Perm()),
			Suggestion: "Run 'chmod 700 " + folder + "'",
		})
		return true
	}

	add(CheckResult{Name: "folder", Status: CheckPass, Message: "Repository folder exists"})
	return true
}

func checkConfig(folder string, add func(CheckResult)) bool {
	_, ok, err := repo.ReadRepoConfig(folder)
	switch {
	case errors.Is(err, kerrors.ErrConfigCorrupt):
		add(CheckResult{
			Name:       "config",
			Status:     CheckError,
			Message:    fmt.Sprintf("Repository config is corrupt: %v", err),
			Suggestion: "Restore " + repo.ConfigFileName + " from a backup; without the original salt existing entries cannot be decrypted",
		})
		return false
	case err != nil:
		add(CheckResult{Name: "config", Status: CheckError, Message: fmt.Sprintf("Cannot read repository config: %v", err)})
		return false
	case !ok:
		add(CheckResult{Name: "config", Status: CheckError, Message: "Repository config is missing", Suggestion: setupHint})
		return false
	}

	add(CheckResult{Name: "config", Status: CheckPass, Message: "Repository config has a valid salt"})
	return true
}

func checkPassword(source repo.PasswordSource, add func(CheckResult)) (string, bool) {
	password, err := source.Password()
	if errors.Is(err, kerrors.ErrNoPassword) {
		add(CheckResult{
			Name:       "password",
			Status:     CheckError,
			Message:    fmt.Sprintf("No password available from %s", source),
			Suggestion: "Run 'trove repo setup' to store a password, or choose another --password-source",
		})
		return "", false
	}
	if err != nil {
		add(CheckResult{Name: "password", Status: CheckError, Message: fmt.Sprintf("Reading password from %s failed: %v", source, err)})
		return "", false
	}

	add(CheckResult{Name: "password", Status: CheckPass, Message: fmt.Sprintf("Password available from %s", source)})
	return password, true
}

func checkAuditLog(folder string, add func(CheckResult)) {
	entries, err := audit.ReadEntries(folder)
	if err != nil {
		add(CheckResult{Name: "audit", Status: CheckWarning, Message: fmt.Sprintf("Audit log is unreadable: %v", err)})
		return
	}
	add(CheckResult{Name: "audit", Status: CheckPass, Message: fmt.Sprintf("Audit log readable (%d entries)", len(entries))})
}

func summarize(results []CheckResult) CheckSummary {
	var summary CheckSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		case CheckSkipped:
			summary.Skipped++
		}
	}
	return summary
}
