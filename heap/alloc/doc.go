// Package alloc provides a segregated-fit dynamic memory allocator over a
// single growable arena.
//
// # Overview
//
// Blocks carry a boundary tag (size plus allocated flag) at both ends, so the
// blocks on either side of any block are found in O(1). Free blocks are kept
// in ten doubly-linked lists, one per size class, threaded through their own
// payloads. Allocation is first-fit within a class, scanning upward through
// larger classes, with splitting; frees coalesce immediately. When nothing
// fits, the arena grows through a memlib.Arena.
//
// # Usage Example
//
//	mem := memlib.NewSlice(memlib.DefaultMaxHeap)
//	a, err := alloc.New(mem, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Malloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(a.Bytes(p), "hello")
//
//	p, err = a.Realloc(p, 4000)
//	if err != nil {
//	    return err
//	}
//	a.Free(p)
//
// # Arena Layout
//
// Offset 0 holds the bucket heads and tails, so an address of 0 never names a
// payload and doubles as Nil. The prologue and epilogue sentinels are
// permanently allocated, which removes every boundary case from coalescing:
//
//	[heads x10][tails x10][pad][prologue hdr|ftr][block]...[block][epilogue hdr]
//
// # Size Classes
//
// ClassOf halves the block size until it is at most 32 bytes and counts the
// halvings, so the class ranges are:
//
//	Class 0:     0 -   32 bytes
//	Class 1:    33 -   65 bytes
//	Class 2:    66 -  131 bytes
//	Class 3:   132 -  263 bytes
//	Class 4:   264 -  527 bytes
//	Class 5:   528 - 1055 bytes
//	Class 6:  1056 - 2111 bytes
//	Class 7:  2112 - 4223 bytes
//	Class 8:  4224 - 8447 bytes
//	Class 9:  8448+      bytes (overflow)
//
// # Thread Safety
//
// Allocator instances are not safe for concurrent use. Run independent
// allocators over independent arenas instead.
//
// # Related Packages
//
//   - github.com/joshuapare/segalloc/heap/memlib: Growth primitive
//   - github.com/joshuapare/segalloc/heap/verify: Consistency checker
//   - github.com/joshuapare/segalloc/internal/format: Block layout
package alloc
