// Package verify checks the structural invariants of an allocator arena.
//
// # Overview
//
// The checker is read-only: it decodes the arena with internal/format and
// never writes to it, so it can run between any two allocator calls. It is
// primarily used in tests and by the segctl check command.
//
// Checks performed:
//   - Prologue: size format.DSize, allocated, header equals footer
//   - Every block: payload aligned to format.DSize, header equals footer,
//     size at least format.MinBlockSize and inside the arena
//   - Epilogue: size 0, allocated, last word of the arena
//   - Free lists: every free block is linked into exactly one bucket, the one
//     its size maps to; no allocated block is linked; back links and bucket
//     tails agree with the forward links; no cycles
//   - Coalescing: no two address-adjacent blocks are both free
//
// # Quick Start
//
//	r := verify.Walk(verify.Heap{Data: arena, ClassOf: alloc.ClassOf})
//	if err := r.Err(); err != nil {
//	    fmt.Printf("heap corrupt: %v\n", err)
//	}
//
// # Violations
//
// Every finding is a *Violation, which implements error:
//
//	for _, v := range r.Violations {
//	    fmt.Printf("%s at %#x: %s\n", v.Kind, v.Addr, v.Message)
//	}
//
// Report.Err joins them with errors.Join, so errors.As finds the first one.
//
// # Free-list bookkeeping
//
// Block addresses are DSize-aligned, so addr/DSize is a dense uint32 key.
// The walk records free and allocated blocks in roaring bitmaps; the bucket
// scan records every address it visits in a third bitmap. A repeated address
// means a cycle or a block linked twice, and the free blocks left in
// free AND NOT listed are exactly the ones missing from every bucket.
package verify
