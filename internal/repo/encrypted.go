package repo

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

// NonceSize is the secretbox (XSalsa20) nonce length.
const NonceSize = 24

// EncryptedRepo stores documents sealed under a key derived from the user's
// password.
type EncryptedRepo struct {
	key  *Key
	base string
}

// Build resolves the repository folder under dataRoot, reads or creates its
// config, obtains the password from source and derives the key.
func Build(dataRoot string, source PasswordSource) (*EncryptedRepo, error) {
	base, err := RepoFolder(dataRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := ReadOrBuildRepoConfig(base)
	if err != nil {
		return nil, err
	}

	password, err := source.Password()
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(password, cfg.Salt)
	if err != nil {
		return nil, err
	}
	return Open(base, key), nil
}

// Open returns a repository rooted at base using an already derived key.
// The repository takes ownership of key.
func Open(base string, key *Key) *EncryptedRepo {
	return &EncryptedRepo{key: key, base: base}
}

// Folder returns the repository folder.
func (r *EncryptedRepo) Folder() string { return r.base }

// Close destroys the key. Later operations fail with ErrRepoClosed.
func (r *EncryptedRepo) Close() error {
	r.key.Destroy()
	return nil
}

func (r *EncryptedRepo) checkOpen() error {
	if r.key.Destroyed() {
		return kerrors.ErrRepoClosed
	}
	return nil
}

// Add seals content under a fresh nonce and stores it in c. The returned
// handle is the hash of the ciphertext, so identical content added twice
// gets two handles.
func (r *EncryptedRepo) Add(c Collection, content []byte) (Handle, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if err := r.checkOpen(); err != nil {
		return "", err
	}

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	var sealed []byte
	err := r.key.with(func(key *[KeySize]byte) error {
		sealed = secretbox.Seal(nil, content, &nonce, key)
		return nil
	})
	if err != nil {
		return "", err
	}
	h := handleOf(sealed)

	data, err := diskEntry{Nonce: nonce[:], Content: sealed}.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encoding entry: %w", err)
	}

	if err := writeEntry(r.base, c, h, data); err != nil {
		return "", err
	}
	return h, nil
}

// Read returns the plaintext stored under h in c.
func (r *EncryptedRepo) Read(c Collection, h Handle) ([]byte, error) {
	path, err := entryPath(r.base, c, h)
	if err != nil {
		return nil, err
	}
	return r.ReadFile(path)
}

// ReadFile decodes and opens the entry at path.
func (r *EncryptedRepo) ReadFile(path string) ([]byte, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	data, err := readEntry(path)
	if err != nil {
		return nil, err
	}

	var entry diskEntry
	if err := entry.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, kerrors.ErrCorruptEntry, err)
	}

	if len(entry.Nonce) != NonceSize {
		return nil, fmt.Errorf("%s: %w: %d bytes, want %d", path, kerrors.ErrInvalidNonce, len(entry.Nonce), NonceSize)
	}
	var nonce [NonceSize]byte
	copy(nonce[:], entry.Nonce)

	var plaintext []byte
	ok := false
	err = r.key.with(func(key *[KeySize]byte) error {
		plaintext, ok = secretbox.Open(nil, entry.Content, &nonce, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, kerrors.ErrDecrypt)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// Delete removes the entry immediately.
func (r *EncryptedRepo) Delete(c Collection, h Handle) error {
	return removeEntry(r.base, c, h)
}

// List lazily decrypts every entry in c. Each element carries its own error.
func (r *EncryptedRepo) List(c Collection) iter.Seq2[Document, error] {
	return listCollection(r.base, c, r.ReadFile)
}

// Check verifies that the repository under dataRoot exists, that its config
// holds a valid salt and that source yields a password a key can be derived
// from. It reads and writes no documents and creates nothing.
func Check(dataRoot string, source PasswordSource) error {
	folder := filepath.Join(dataRoot, RepoDirName)

	info, err := os.Stat(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", folder, kerrors.ErrRepoNotInitialized)
	}
	if err != nil {
		return ioErr("inspecting "+folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", folder, kerrors.ErrRepoNotInitialized)
	}

	cfg, ok, err := ReadRepoConfig(folder)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", filepath.Join(folder, ConfigFileName), kerrors.ErrRepoNotInitialized)
	}

	password, err := source.Password()
	if err != nil {
		return err
	}

	key, err := DeriveKey(password, cfg.Salt)
	if err != nil {
		return err
	}
	key.Destroy()
	return nil
}
