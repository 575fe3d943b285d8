package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrOverlap indicates a returned block overlaps a live block.
	ErrOverlap = errors.New("trace: block overlaps a live block")

	// ErrMisaligned indicates a returned address is not DSize-aligned.
	ErrMisaligned = errors.New("trace: misaligned block")

	// ErrOutOfBounds indicates a returned block does not fit inside the arena.
	ErrOutOfBounds = errors.New("trace: block outside the arena")

	// ErrCorrupted indicates payload bytes changed while the block was live.
	ErrCorrupted = errors.New("trace: payload corrupted")

	// ErrInconsistent indicates the consistency checker found violations.
	ErrInconsistent = errors.New("trace: heap inconsistent")

	// ErrCompression indicates an unsupported compression suffix.
	ErrCompression = errors.New("trace: unsupported compression")
)

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %s", e.Line, e.Msg)
}

// ReplayError reports the operation at which a replay failed.
type ReplayError struct {
	Trace string
	Op    int // index into Trace.Ops, -1 for the final check
	Line  int
	Err   error
}

func (e *ReplayError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("trace %s: final check: %v", e.Trace, e.Err)
	}
	return fmt.Sprintf("trace %s: op %d (line %d): %v", e.Trace, e.Op, e.Line, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}
