//go:build !linux && !darwin

package memlib

// mapAnon falls back to a Go slice where anonymous mappings are not wired up.
func mapAnon(size int) ([]byte, error) {
	if size == 0 {
		return nil, ErrExhausted
	}
	return make([]byte, size), nil
}

func unmapAnon([]byte) error { return nil }
