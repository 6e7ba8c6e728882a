//go:build !linux && !darwin

package repo

func allocKey() (*[KeySize]byte, func()) { return heapKey() }
