package repo

import (
	"fmt"
	"regexp"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/cespare/xxhash/v2"
)

var collectionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// reservedNames live directly in the repository folder and cannot be collections.
var reservedNames = map[string]bool{
	ConfigFileName: true,
	LockFileName:   true,
	AuditFileName:  true,
}

const maxCollectionLen = 128

// Collection is a named partition of the repository, stored as a subfolder.
type Collection string

// Validate checks the name is filesystem-safe and not reserved.
func (c Collection) Validate() error {
	name := string(c)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", kerrors.ErrInvalidCollection)
	case len(name) > maxCollectionLen:
		return fmt.Errorf("%w: %q is longer than %d characters", kerrors.ErrInvalidCollection, name, maxCollectionLen)
	case !collectionPattern.MatchString(name):
		return fmt.Errorf("%w: %q may only contain letters, digits, '.', '_' and '-'", kerrors.ErrInvalidCollection, name)
	case reservedNames[name]:
		return fmt.Errorf("%w: %q is reserved", kerrors.ErrInvalidCollection, name)
	}
	return nil
}

func (c Collection) String() string { return string(c) }

const handleLen = 16

// Handle names a stored document: the hex xxHash64 of its stored bytes.
type Handle string

func handleOf(data []byte) Handle {
	return Handle(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

// Validate checks h is 16 lowercase hex digits.
func (h Handle) Validate() error {
	if len(h) != handleLen {
		return fmt.Errorf("%w: %q is not %d hex digits", kerrors.ErrInvalidHandle, string(h), handleLen)
	}
	for _, r := range h {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("%w: %q is not %d hex digits", kerrors.ErrInvalidHandle, string(h), handleLen)
		}
	}
	return nil
}

func (h Handle) String() string { return string(h) }
