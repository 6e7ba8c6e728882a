package errors

import "errors"

// Password errors indicate no usable secret could be obtained.
var (
	// ErrNoPassword indicates the configured password source yielded nothing.
	ErrNoPassword = errors.New("no repository password available (run 'trove repo setup' first)")

	// ErrPasswordMismatch indicates the setup confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Repository configuration errors indicate problems with repo.def.
var (
	// ErrConfigCorrupt indicates repo.def exists but cannot be decoded.
	ErrConfigCorrupt = errors.New("repository config is corrupt")

	// ErrConfigConflict indicates an attempt to replace the salt of an existing repository.
	ErrConfigConflict = errors.New("repository config already exists with a different salt")

	// ErrRepoNotInitialized indicates the repository folder or config is missing.
	ErrRepoNotInitialized = errors.New("repository has not been initialized")
)

// Entry errors indicate a stored document could not be located or recovered.
var (
	// ErrNotFound indicates no entry exists for the given handle.
	ErrNotFound = errors.New("entry not found")

	// ErrCorruptEntry indicates an entry file exists but cannot be decoded.
	ErrCorruptEntry = errors.New("entry is corrupt")

	// ErrInvalidNonce indicates a decoded nonce has the wrong length.
	ErrInvalidNonce = errors.New("entry has an invalid nonce")

	// ErrDecrypt indicates authentication failed when opening an entry.
	ErrDecrypt = errors.New("failed to decrypt entry (wrong password, or the entry is corrupted or tampered with)")
)

// Argument errors indicate a caller supplied an unusable name or handle.
var (
	// ErrInvalidCollection indicates a collection name is not filesystem-safe or is reserved.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidHandle indicates a handle is not a well-formed content hash.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrInvalidDateFormat indicates a date flag is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Lifecycle and I/O errors.
var (
	// ErrRepoClosed indicates the repository key has already been destroyed.
	ErrRepoClosed = errors.New("repository is closed")

	// ErrIO indicates an underlying filesystem operation failed.
	ErrIO = errors.New("filesystem error")

	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")
)
