package repo

import (
	"fmt"
	"runtime"
	"sync"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"golang.org/x/crypto/argon2"
)

// KeySize is the secretbox key length.
const KeySize = 32

// Argon2id work factors, libsodium's "interactive" tuning.
const (
	kdfTime    = 2
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 1
)

// Key holds a derived symmetric key. Destroy zeroes it; a finalizer does the
// same if the owner forgets. The key bytes are only reachable through with,
// which holds the key alive and blocks Destroy until the callback returns.
type Key struct {
	mu   sync.RWMutex
	b    *[KeySize]byte
	free func()
}

// DeriveKey derives the repository key from password and salt with Argon2id.
func DeriveKey(password string, salt []byte) (*Key, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt is %d bytes, want %d: %w", len(salt), SaltSize, kerrors.ErrConfigCorrupt)
	}

	pw := []byte(password)
	defer zero(pw)

	derived := argon2.IDKey(pw, salt, kdfTime, kdfMemory, kdfThreads, KeySize)
	defer zero(derived)

	return NewKey(derived)
}

// NewKey copies raw into a new Key. raw must be KeySize bytes.
func NewKey(raw []byte) (*Key, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(raw), KeySize)
	}

	b, free := allocKey()
	copy(b[:], raw)
	k := &Key{b: b, free: free}
	runtime.SetFinalizer(k, (*Key).Destroy)
	return k, nil
}

// heapKey is the fallback when no locked page can be had.
func heapKey() (*[KeySize]byte, func()) {
	return new([KeySize]byte), func() {}
}

// with runs fn with the key bytes, or returns ErrRepoClosed once destroyed.
// fn must not retain the pointer.
func (k *Key) with(fn func(key *[KeySize]byte) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.b == nil {
		return kerrors.ErrRepoClosed
	}
	return fn(k.b)
}

// Destroy zeroes the key and releases its memory. It is safe to call more
// than once, and waits for in-flight users of the key.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.b == nil {
		return
	}
	zero(k.b[:])
	k.free()
	k.b = nil
	k.free = nil
	runtime.SetFinalizer(k, nil)
}

// Destroyed reports whether Destroy has been called.
func (k *Key) Destroyed() bool {
	if k == nil {
		return true
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.b == nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
