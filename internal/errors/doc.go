// Package errors provides typed error values for trove.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Password errors: no usable secret (ErrNoPassword)
//   - Config errors: repo.def problems (ErrConfigCorrupt, ErrConfigConflict)
//   - Entry errors: lookup and recovery (ErrNotFound, ErrCorruptEntry,
//     ErrInvalidNonce, ErrDecrypt)
//   - I/O errors: wrapped platform errors (ErrIO)
//
// # Usage
//
// Filesystem failures carry both the kind and the original error, so either
// can be matched:
//
//	return fmt.Errorf("writing %s: %w: %w", path, errors.ErrIO, err)
//
// Handle errors in the CLI layer:
//
//	content, err := r.Read(collection, handle)
//	if errors.Is(err, kerrors.ErrDecrypt) {
//	    // Wrong password, or the entry was tampered with.
//	}
package errors
