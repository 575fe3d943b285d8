//go:build linux || darwin

package memlib

import (
	"errors"

	"golang.org/x/sys/unix"
)

// mapAnon reserves size bytes of private anonymous memory. The kernel zero-fills
// pages on first touch.
func mapAnon(size int) ([]byte, error) {
	if size == 0 {
		return nil, ErrExhausted
	}
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmapAnon(data []byte) error {
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
