package repo

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
)

const (
	// RepoDirName is the repository folder under the application data root.
	RepoDirName = "text-repo"

	// ConfigFileName is the reserved name of the repository config file.
	// List skips any file with this name.
	ConfigFileName = "repo.def"

	// LockFileName is the advisory lock taken while creating the config.
	LockFileName = "repo.lock"

	// AuditFileName is the operation log kept next to the config.
	AuditFileName = "audit.jsonl"

	// SaltSize is the length of the Argon2id salt.
	SaltSize = 16
)

// RepoConfig is the persisted per-repository metadata.
type RepoConfig struct {
	Salt []byte
}

func (c RepoConfig) MarshalBinary() ([]byte, error) {
	return encodeFields(c.Salt), nil
}

func (c *RepoConfig) UnmarshalBinary(data []byte) error {
	fields, err := decodeFields(data, 1)
	if err != nil {
		return err
	}
	if len(fields[0]) != SaltSize {
		return fmt.Errorf("salt is %d bytes, want %d", len(fields[0]), SaltSize)
	}
	c.Salt = fields[0]
	return nil
}

// RepoFolder returns the repository folder under dataRoot, creating it if missing.
func RepoFolder(dataRoot string) (string, error) {
	if dataRoot == "" {
		return "", errors.New("application data root is not configured")
	}

	folder := filepath.Join(dataRoot, RepoDirName)
	if err := os.MkdirAll(folder, 0700); err != nil {
		return "", ioErr("creating repository folder "+folder, err)
	}
	return folder, nil
}

// ReadRepoConfig reads repo.def from folder. ok is false when no config exists.
func ReadRepoConfig(folder string) (cfg RepoConfig, ok bool, err error) {
	path := filepath.Join(folder, ConfigFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return RepoConfig{}, false, nil
	}
	if err != nil {
		return RepoConfig{}, false, ioErr("reading "+path, err)
	}

	if err := cfg.UnmarshalBinary(data); err != nil {
		return RepoConfig{}, false, fmt.Errorf("%s: %w: %v", path, kerrors.ErrConfigCorrupt, err)
	}
	return cfg, true, nil
}

// ReadOrBuildRepoConfig returns the existing config, or creates one with a
// fresh random salt. Creation is serialized by an advisory lock on platforms
// that support it.
func ReadOrBuildRepoConfig(folder string) (RepoConfig, error) {
	unlock, err := lockRepo(folder)
	if err != nil {
		return RepoConfig{}, err
	}
	defer unlock()

	cfg, ok, err := ReadRepoConfig(folder)
	if err != nil {
		return RepoConfig{}, err
	}
	if ok {
		return cfg, nil
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return RepoConfig{}, fmt.Errorf("generating salt: %w", err)
	}

	cfg = RepoConfig{Salt: salt}
	if err := cfg.Write(folder); err != nil {
		return RepoConfig{}, err
	}
	return cfg, nil
}

// Write persists the config. Writing the salt that is already on disk is a
// no-op; writing a different salt fails with ErrConfigConflict and leaves the
// existing file untouched.
func (c RepoConfig) Write(folder string) error {
	if len(c.Salt) != SaltSize {
		return fmt.Errorf("salt is %d bytes, want %d", len(c.Salt), SaltSize)
	}

	existing, ok, err := ReadRepoConfig(folder)
	if err != nil {
		return err
	}
	if ok {
		return c.compare(existing, folder)
	}

	path := filepath.Join(folder, ConfigFileName)
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		// Another writer created it after our read.
		existing, ok, err := ReadRepoConfig(folder)
		if err != nil {
			return err
		}
		if !ok {
			return ioErr("creating "+path, fs.ErrExist)
		}
		return c.compare(existing, folder)
	}
	if err != nil {
		return ioErr("creating "+path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return ioErr("writing "+path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return ioErr("closing "+path, err)
	}
	return nil
}

func (c RepoConfig) compare(existing RepoConfig, folder string) error {
	if bytes.Equal(existing.Salt, c.Salt) {
		return nil
	}
	return fmt.Errorf("%s: %w", filepath.Join(folder, ConfigFileName), kerrors.ErrConfigConflict)
}
