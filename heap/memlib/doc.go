// Package memlib provides the arena growth primitive the allocator is built on.
//
// # Overview
//
// An Arena is a single contiguous byte range that only ever grows. The
// allocator asks it for more room with Sbrk, the same contract as the classic
// sbrk(2) break pointer: on success the range is extended by exactly incr bytes
// and the offset of the first new byte (the old break) is returned; on failure
// the range is left unchanged.
//
// Addresses are offsets into the arena, so Lo is always 0 and Hi is the last
// valid offset. The backing memory is reserved up front at the arena's
// maximum size, which keeps the slice returned by Bytes stable for the
// lifetime of the arena: growing only moves the break, never the data.
//
// # Implementations
//
// Slice: backed by a Go byte slice. Portable, zeroed by the runtime.
//
// Mmap: backed by an anonymous private mapping (linux and darwin). Pages are
// only committed by the kernel when first touched, so a large maximum costs
// nothing until the allocator actually uses it. Other platforms fall back to
// a Go slice with the same semantics.
//
// # Usage Example
//
//	mem := memlib.NewSlice(memlib.DefaultMaxHeap)
//	old, err := mem.Sbrk(4096)
//	if errors.Is(err, memlib.ErrExhausted) {
//	    // arena cannot grow any further
//	}
//
// # Thread Safety
//
// Arenas are not thread-safe. A growth call must not overlap with any other
// call on the same arena.
package memlib
