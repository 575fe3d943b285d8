package format

import "errors"

var (
	// ErrTruncated indicates a word lies partly or wholly outside the arena.
	ErrTruncated = errors.New("format: word outside arena")
	// ErrMisaligned indicates an address that is not on a DSize boundary.
	ErrMisaligned = errors.New("format: address not double-word aligned")
)
