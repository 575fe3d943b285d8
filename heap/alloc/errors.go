package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block fits and the arena could not grow.
	ErrNoSpace = errors.New("alloc: arena exhausted")

	// ErrInit indicates the arena could not be laid out during initialization.
	ErrInit = errors.New("alloc: initialization failed")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: negative size")
)
