package alloc

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/heap/memlib"
	"github.com/joshuapare/segalloc/internal/format"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// newTestAllocator creates an allocator over a Go-heap arena of maxHeap bytes
// with the default 4096-byte chunk. After New the arena holds the bootstrap
// area and one free block at format.FirstBlockAddr.
func newTestAllocator(t testing.TB, maxHeap int) (*Allocator, *memlib.Slice) {
	t.Helper()
	return newTestAllocatorWithConfig(t, maxHeap, nil)
}

func newTestAllocatorWithConfig(t testing.TB, maxHeap int, cfg *Config) (*Allocator, *memlib.Slice) {
	t.Helper()

	mem := memlib.NewSlice(maxHeap)
	a, err := New(mem, cfg)
	require.NoError(t, err, "failed to create allocator")

	t.Cleanup(func() { _ = mem.Close() })
	return a, mem
}

// discardConfig returns a config with a logger that drops everything.
func discardConfig(chunk int) *Config {
	return &Config{
		ChunkSize: chunk,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// ============================================================================
// Block Inspection
// ============================================================================

// blockAt returns the size and allocated flag from the header at p.
func blockAt(a *Allocator, p Addr) (int, bool) {
	t := a.tag(block(p))
	return t.Size(), t.Allocated()
}

// bucketOrder returns the addresses linked into class, head first.
func bucketOrder(a *Allocator, class int) []Addr {
	var out []Addr
	a.walkBucket(class, func(f freeBlock) bool {
		out = append(out, Addr(f))
		return true
	})
	return out
}

// freeBlocks counts free blocks across all buckets.
func freeBlocks(a *Allocator) int {
	n := 0
	for class := range format.NumClasses {
		n += a.bucketLen(class)
	}
	return n
}

// ============================================================================
// Invariant Checks
// ============================================================================

// assertInvariants runs the consistency checker and fails the test with its
// output on any violation.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()

	var buf bytes.Buffer
	r := a.Check(&buf, false)
	if !r.OK() {
		var verbose bytes.Buffer
		a.Check(&verbose, true)
		require.FailNow(t, "heap invariants violated", "%v\n%s", r.Err(), verbose.String())
	}
}

// fillPattern writes a pattern derived from seed over the payload at p.
func fillPattern(a *Allocator, p Addr, n int, seed byte) {
	buf := a.Bytes(p)[:n]
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}

// checkPattern reports whether the first n payload bytes at p still carry the
// pattern written by fillPattern.
func checkPattern(a *Allocator, p Addr, n int, seed byte) bool {
	buf := a.Bytes(p)[:n]
	for i := range buf {
		if buf[i] != seed+byte(i) {
			return false
		}
	}
	return true
}
