//go:build unix

package repo

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockRepo takes an exclusive flock on the repository lock file.
func lockRepo(folder string) (func(), error) {
	path := filepath.Join(folder, LockFileName)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, ioErr("opening "+path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, ioErr("locking "+path, err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
