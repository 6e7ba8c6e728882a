package repo

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
)

// SecretStore is a service/account keyed secret store.
type SecretStore interface {
	// Get returns the stored secret or an error wrapping ErrNoPassword.
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// KeyringStore is a SecretStore backed by github.com/99designs/keyring.
type KeyringStore struct {
	mu    sync.Mutex
	open  func(service string) (keyring.Keyring, error)
	rings map[string]keyring.Keyring
}

// NewKeyringStore opens the OS credential manager. With no backends given,
// every backend available on the platform is allowed.
func NewKeyringStore(backends ...keyring.BackendType) *KeyringStore {
	return &KeyringStore{
		open: func(service string) (keyring.Keyring, error) {
			return keyring.Open(keyring.Config{
				ServiceName:              service,
				AllowedBackends:          backends,
				KeychainTrustApplication: true,
				LibSecretCollectionName:  "login",
			})
		},
		rings: make(map[string]keyring.Keyring),
	}
}

// NewMemoryKeyringStore returns a store that lives only in memory.
func NewMemoryKeyringStore() *KeyringStore {
	return &KeyringStore{
		open: func(string) (keyring.Keyring, error) {
			return keyring.NewArrayKeyring(nil), nil
		},
		rings: make(map[string]keyring.Keyring),
	}
}

func (s *KeyringStore) ring(service string) (keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rings[service]; ok {
		return r, nil
	}
	r, err := s.open(service)
	if err != nil {
		return nil, fmt.Errorf("opening keyring for %s: %w", service, err)
	}
	s.rings[service] = r
	return r, nil
}

func (s *KeyringStore) Get(service, account string) (string, error) {
	r, err := s.ring(service)
	if err != nil {
		return "", err
	}

	item, err := r.Get(account)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("no %s/%s entry in keyring: %w", service, account, kerrors.ErrNoPassword)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s/%s from keyring: %w", service, account, err)
	}
	if len(item.Data) == 0 {
		return "", fmt.Errorf("empty %s/%s entry in keyring: %w", service, account, kerrors.ErrNoPassword)
	}
	return string(item.Data), nil
}

func (s *KeyringStore) Set(service, account, value string) error {
	r, err := s.ring(service)
	if err != nil {
		return err
	}

	err = r.Set(keyring.Item{
		Key:         account,
		Data:        []byte(value),
		Label:       service + " " + account,
		Description: "trove repository password",
	})
	if err != nil {
		return fmt.Errorf("writing %s/%s to keyring: %w", service, account, err)
	}
	return nil
}
