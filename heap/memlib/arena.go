package memlib

import (
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
)

// DefaultMaxHeap is the default maximum arena size (20 MiB).
const DefaultMaxHeap = 20 * (1 << 20)

// Arena is the growth primitive consumed by the allocator.
type Arena interface {
	// Sbrk extends the arena by incr bytes and returns the offset of the
	// first new byte. incr must be a positive multiple of format.DSize.
	// On error the arena is unchanged.
	Sbrk(incr int) (int, error)

	// Lo returns the first valid offset of the arena.
	Lo() int

	// Hi returns the last valid offset of the arena (Lo-1 when empty).
	Hi() int

	// Bytes returns the arena contents from Lo through Hi.
	// The slice is only valid until the next Sbrk call.
	Bytes() []byte

	// Close releases the backing memory. Offsets are meaningless afterwards.
	Close() error
}

// region is the break-pointer bookkeeping shared by every implementation.
type region struct {
	data []byte // reserved backing store, len == max size
	brk  int    // current break: bytes in use
}

// Sbrk moves the break forward by incr bytes.
func (r *region) Sbrk(incr int) (int, error) {
	if r.data == nil {
		return 0, ErrClosed
	}
	if incr <= 0 || incr%format.DSize != 0 {
		return 0, fmt.Errorf("sbrk(%d): %w", incr, ErrBadIncrement)
	}
	if incr > len(r.data)-r.brk {
		return 0, fmt.Errorf("sbrk(%d) with %d of %d bytes in use: %w",
			incr, r.brk, len(r.data), ErrExhausted)
	}
	old := r.brk
	r.brk += incr
	return old, nil
}

// Lo returns 0: addresses are offsets from the start of the arena.
func (r *region) Lo() int { return 0 }

// Hi returns the last byte currently inside the arena.
func (r *region) Hi() int { return r.brk - 1 }

// Bytes returns the in-use part of the arena. The capacity is clipped so
// appends cannot spill past the break.
func (r *region) Bytes() []byte {
	if r.data == nil {
		return nil
	}
	return r.data[:r.brk:r.brk]
}

// Size returns the number of bytes currently in the arena.
func (r *region) Size() int { return r.brk }

// Max returns the size the arena may grow to.
func (r *region) Max() int { return len(r.data) }

// Slice is an Arena backed by an ordinary Go byte slice.
type Slice struct {
	region
}

// NewSlice reserves an arena that can grow to maxSize bytes. maxSize is rounded down
// to the alignment unit; values <= 0 select DefaultMaxHeap.
func NewSlice(maxSize int) *Slice {
	return &Slice{region: region{data: make([]byte, clampMax(maxSize))}}
}

// Close drops the backing slice.
func (s *Slice) Close() error {
	s.data = nil
	s.brk = 0
	return nil
}

// Mmap is an Arena backed by an anonymous memory mapping where the platform
// supports it.
type Mmap struct {
	region
}

// NewMmap reserves an anonymous mapping of maxSize bytes. maxSize is rounded down to
// the alignment unit; values <= 0 select DefaultMaxHeap.
func NewMmap(maxSize int) (*Mmap, error) {
	data, err := mapAnon(clampMax(maxSize))
	if err != nil {
		return nil, fmt.Errorf("memlib: reserve %d bytes: %w", maxSize, err)
	}
	return &Mmap{region: region{data: data}}, nil
}

// Close unmaps the arena. Calling Close twice is a no-op.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	m.brk = 0
	return unmapAnon(data)
}

func clampMax(maxSize int) int {
	if maxSize <= 0 {
		maxSize = DefaultMaxHeap
	}
	return maxSize &^ (format.DSize - 1)
}
