package memlib

import "errors"

var (
	// ErrExhausted indicates the arena reached its maximum size.
	ErrExhausted = errors.New("memlib: arena exhausted")

	// ErrBadIncrement indicates a growth request that is not a positive
	// multiple of the alignment unit.
	ErrBadIncrement = errors.New("memlib: increment must be a positive multiple of 16")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("memlib: arena closed")
)
