package repo

import (
	"fmt"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
)

// ioErr wraps a filesystem failure so both ErrIO and the platform error match.
func ioErr(action string, err error) error {
	return fmt.Errorf("%s: %w: %w", action, kerrors.ErrIO, err)
}
