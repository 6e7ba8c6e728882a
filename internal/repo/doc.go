// Package repo implements trove's encrypted, content-addressed document
// repository.
//
// A repository is a folder under the application data root:
//
//	<data-root>/text-repo/
//	  repo.def               RepoConfig (the KDF salt)
//	  repo.lock              advisory lock taken while creating repo.def
//	  audit.jsonl            operation log, see package audit
//	  <collection>/<handle>  one sealed document per file
//
// # Key Derivation
//
// The symmetric key is derived from the user's password and the persisted
// salt with Argon2id using interactive work factors. The same password and
// salt always give the same key, so the salt in repo.def must never change:
// RepoConfig.Write refuses to replace an existing salt with a different one.
//
// Passwords come from a PasswordSource: an interactive Prompt, the OS
// Keyring, an explicit PassIn value, or the TROVE_PASSWORD Environment
// variable.
//
// # Documents
//
// Each Add seals the content with NaCl secretbox under a fresh random 24-byte
// nonce and stores the envelope {nonce, ciphertext} in a file named by the
// xxHash64 of the ciphertext. Because the nonce is random, adding the same
// content twice yields two different handles. Callers that want
// deduplication must hash the plaintext themselves.
//
// xxHash64 is not collision resistant. A handle is a storage key only:
// confidentiality and integrity come from secretbox. Two distinct
// ciphertexts with the same handle would overwrite each other; with 64-bit
// hashes over random-nonce ciphertext this needs roughly 2^32 documents in a
// single collection before it becomes likely.
//
// # Listing
//
// List enumerates a collection lazily. Each element carries its own error so
// one corrupt entry does not hide the others. Files named repo.def and
// anything that is not a regular file are skipped. Concurrent modification of
// the collection during iteration has platform-dependent results.
//
// # Concurrency
//
// An EncryptedRepo is immutable after Build and may be shared between
// goroutines. Close must not race with other calls. No locking protects
// document files; the tool assumes one user and one process at a time.
package repo
