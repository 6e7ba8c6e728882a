//go:build linux || darwin

package repo

import (
	"os"

	"golang.org/x/sys/unix"
)

// allocKey places the key on its own anonymous page so mlock and munlock
// never affect memory shared with another key. Locking is best effort: a
// page that cannot be locked (RLIMIT_MEMLOCK) is still used.
func allocKey() (*[KeySize]byte, func()) {
	mem, err := unix.Mmap(-1, 0, os.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return heapKey()
	}
	locked := unix.Mlock(mem) == nil

	return (*[KeySize]byte)(mem[:KeySize]), func() {
		if locked {
			_ = unix.Munlock(mem)
		}
		_ = unix.Munmap(mem)
	}
}
