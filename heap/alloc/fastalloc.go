package alloc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/segalloc/heap/memlib"
	"github.com/joshuapare/segalloc/internal/format"
)

// maxRequest bounds request sizes so that adding tag overhead cannot overflow.
const maxRequest = math.MaxInt - 2*format.DSize

// Allocator is a segregated-fit allocator over a single growable arena.
//
// - Boundary tags at both ends of every block give O(1) access to both
// address neighbors.
// - Ten insertion-ordered free lists, one per size class, give O(1) insert
// and remove.
// - Free blocks are coalesced immediately, so no two adjacent blocks are ever
// both free between calls.
//
// An Allocator is not safe for concurrent use.
type Allocator struct {
	mem  memlib.Arena
	data []byte // mem.Bytes(), refreshed after every Sbrk

	chunk int // minimum extension in bytes
	log   *slog.Logger

	stats Stats

	// Test hook: called after every successful extension (nil in production)
	onGrow func(int)
}

// New lays out an empty arena and returns an allocator ready for use.
//
// The bucket head/tail arrays are reserved at the very start of the arena,
// followed by the prologue and epilogue sentinels; then the arena is grown by
// one chunk. mem must be empty. Any growth failure is reported as ErrInit.
//
// Parameters:
//   - mem: The arena to manage; the allocator becomes its only user
//   - cfg: Chunk size and logger (use nil for DefaultConfig)
func New(mem memlib.Arena, cfg *Config) (*Allocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	a := &Allocator{
		mem:   mem,
		chunk: cfg.chunkSize(),
		log:   cfg.logger(),
	}
	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Allocator) init() error {
	old, err := a.mem.Sbrk(format.BucketAreaSize)
	if err != nil {
		return fmt.Errorf("%w: bucket storage: %w", ErrInit, err)
	}
	if old != 0 {
		return fmt.Errorf("%w: arena already holds %d bytes", ErrInit, old)
	}
	if _, err = a.mem.Sbrk(format.PrologueAreaSize); err != nil {
		return fmt.Errorf("%w: prologue: %w", ErrInit, err)
	}
	a.data = a.mem.Bytes()

	for class := range format.NumClasses {
		a.setHead(class, noFree)
		a.setTail(class, noFree)
	}

	base := format.BucketAreaSize
	format.PutWord(a.data, base, 0)                                                    // alignment padding
	format.PutTag(a.data, base+format.WSize, format.Pack(format.PrologueSize, true))   // prologue header
	format.PutTag(a.data, base+2*format.WSize, format.Pack(format.PrologueSize, true)) // prologue footer
	format.PutTag(a.data, base+3*format.WSize, format.Pack(0, true))                   // epilogue header

	if _, err = a.extend(a.chunk / format.WSize); err != nil {
		return fmt.Errorf("%w: initial chunk: %w", ErrInit, err)
	}

	a.log.Debug("allocator initialized",
		"chunk", a.chunk,
		"heap", a.HeapSize(),
	)
	return nil
}

// Malloc allocates a block with at least n bytes of payload and returns its
// address, aligned to format.DSize.
//
// n == 0 returns Nil and a nil error without touching the heap. When no free
// block fits and the arena cannot grow, Malloc returns Nil and ErrNoSpace.
func (a *Allocator) Malloc(n int) (Addr, error) {
	switch {
	case n == 0:
		return Nil, nil
	case n < 0:
		return Nil, fmt.Errorf("malloc(%d): %w", n, ErrBadSize)
	case n > maxRequest:
		return Nil, fmt.Errorf("malloc(%d): %w", n, ErrNoSpace)
	}
	a.stats.AllocCalls++

	asize := format.AdjustedSize(n)

	if f := a.findFit(asize); f != noFree {
		a.stats.AllocFastPath++
		return Addr(a.place(f, asize)), nil
	}

	f, err := a.extend(max(asize, a.chunk) / format.WSize)
	if err != nil {
		return Nil, err
	}
	a.stats.AllocSlowPath++
	return Addr(a.place(f, asize)), nil
}

// place allocates asize bytes at the start of the free block f, splitting off
// the remainder as a new free block when it is at least format.MinBlockSize.
// Otherwise the whole block is handed out and the slack stays inside it.
func (a *Allocator) place(f freeBlock, asize int) block {
	b := block(f)
	csize := a.size(b)

	a.remove(f)

	if csize-asize >= format.MinBlockSize {
		a.setTags(b, asize, true)
		a.insert(a.markFree(a.next(b), csize-asize))
		a.stats.SplitCount++
		a.stats.BytesAllocated += int64(asize)
		return b
	}

	a.setTags(b, csize, true)
	a.stats.BytesAllocated += int64(csize)
	return b
}

// Free releases the block at p. Free(Nil) is a no-op. p must have been
// returned by Malloc or Realloc and not freed since; misuse is not detected.
func (a *Allocator) Free(p Addr) {
	if p == Nil {
		return
	}
	a.stats.FreeCalls++

	b := block(p)
	size := a.size(b)
	a.stats.BytesFreed += int64(size)

	a.coalesce(a.markFree(b, size))
}

// Realloc resizes the block at p to hold at least n payload bytes.
//
//   - n == 0 frees p and returns Nil.
//   - p == Nil behaves like Malloc(n).
//   - If the block already holds n bytes, p is returned unchanged (a shrink
//     keeps the whole block).
//   - If the following block is free and the two together hold n bytes, it is
//     absorbed in place without moving data.
//   - Otherwise a new block is allocated, min(n, old payload) bytes are
//     copied, and p is freed.
//
// On failure the original block is left untouched and ErrNoSpace is returned.
func (a *Allocator) Realloc(p Addr, n int) (Addr, error) {
	switch {
	case n == 0:
		a.Free(p)
		return Nil, nil
	case p == Nil:
		return a.Malloc(n)
	case n < 0:
		return Nil, fmt.Errorf("realloc(%d): %w", n, ErrBadSize)
	case n > maxRequest:
		return Nil, fmt.Errorf("realloc(%d): %w", n, ErrNoSpace)
	}
	a.stats.ReallocCalls++

	b := block(p)
	oldSize := a.size(b)

	if n+format.DSize <= oldSize {
		a.stats.ReallocInPlace++
		return p, nil
	}

	if next, ok := a.asFree(a.next(b)); ok {
		nextSize := a.size(block(next))
		if n+format.DSize <= oldSize+nextSize {
			a.remove(next)
			a.setTags(b, oldSize+nextSize, true)
			a.stats.ReallocGrowInPlace++
			a.stats.BytesAllocated += int64(nextSize)
			return p, nil
		}
	}

	np, err := a.Malloc(n)
	if err != nil {
		return Nil, err
	}

	keep := min(n, oldSize-format.DSize)
	copy(a.data[int(np):int(np)+keep], a.data[int(p):int(p)+keep])
	a.Free(p)

	a.stats.ReallocMoved++
	return np, nil
}

// Bytes returns the payload of the allocated block at p. Its length is the
// block's usable size, which is at least the size last requested for it.
// The slice aliases the arena and is only meaningful while p is allocated.
func (a *Allocator) Bytes(p Addr) []byte {
	if p == Nil {
		return nil
	}
	end := int(p) + a.UsableSize(p)
	return a.data[int(p):end:end]
}

// UsableSize returns the number of payload bytes available at p.
func (a *Allocator) UsableSize(p Addr) int {
	if p == Nil {
		return 0
	}
	return a.size(block(p)) - format.DSize
}

// HeapSize returns the current size of the arena in bytes.
func (a *Allocator) HeapSize() int {
	return a.mem.Hi() - a.mem.Lo() + 1
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}
