package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
)

// sevenBlocks allocates seven 48-byte blocks back to back:
// 192, 240, 288, 336, 384, 432, 480, followed by the free remainder at 528.
func sevenBlocks(t *testing.T) (*Allocator, []Addr) {
	t.Helper()
	a, _ := newTestAllocator(t, 1<<16)

	ptrs := make([]Addr, 7)
	for i := range ptrs {
		p, err := a.Malloc(32)
		require.NoError(t, err)
		ptrs[i] = p
	}
	require.Equal(t, []Addr{192, 240, 288, 336, 384, 432, 480}, ptrs)
	return a, ptrs
}

func TestFreeList_FreshHeap(t *testing.T) {
	a, _ := newTestAllocator(t, 1<<16)

	buckets := a.Buckets()
	require.Len(t, buckets, format.NumClasses)
	for _, b := range buckets {
		if b.Class == 7 {
			assert.Equal(t, 1, b.Count)
			assert.Equal(t, format.ChunkSize, b.Bytes)
			continue
		}
		assert.Zero(t, b.Count, "class %d", b.Class)
		assert.Zero(t, b.Bytes, "class %d", b.Class)
	}
	assert.Equal(t, []Addr{format.FirstBlockAddr}, bucketOrder(a, 7))

	lo, hi := buckets[1].Lo, buckets[1].Hi
	assert.Equal(t, 33, lo)
	assert.Equal(t, 65, hi)
	assert.Equal(t, -1, buckets[9].Hi)
}

func TestFreeList_InsertionOrder(t *testing.T) {
	a, p := sevenBlocks(t)

	a.Free(p[3])
	a.Free(p[1])
	a.Free(p[5])
	assert.Equal(t, []Addr{p[3], p[1], p[5]}, bucketOrder(a, 1), "blocks are appended at the tail")
	assertInvariants(t, a)

	// First fit walks from the head: the block freed first is reused first.
	q, err := a.Malloc(24)
	require.NoError(t, err)
	assert.Equal(t, p[3], q)
	assert.Equal(t, []Addr{p[1], p[5]}, bucketOrder(a, 1))
	assertInvariants(t, a)
}

func TestFreeList_RemoveRelinks(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		want   []int
	}{
		{"head", 1, []int{3, 5}},
		{"middle", 3, []int{1, 5}},
		{"tail", 5, []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, p := sevenBlocks(t)
			a.Free(p[1])
			a.Free(p[3])
			a.Free(p[5])

			a.remove(freeBlock(p[tt.remove]))

			want := []Addr{p[tt.want[0]], p[tt.want[1]]}
			assert.Equal(t, want, bucketOrder(a, 1))
			assert.Equal(t, freeBlock(want[0]), a.head(1))
			assert.Equal(t, freeBlock(want[1]), a.tail(1))
			assert.Equal(t, noFree, a.prevLink(freeBlock(want[0])))
			assert.Equal(t, freeBlock(want[0]), a.prevLink(freeBlock(want[1])))
			assert.Equal(t, noFree, a.nextLink(freeBlock(want[1])))

			// Relinking restores a consistent heap, now at the tail.
			a.insert(freeBlock(p[tt.remove]))
			assert.Equal(t, append(want, p[tt.remove]), bucketOrder(a, 1))
			assertInvariants(t, a)
		})
	}
}

func TestFreeList_RemoveOnlyBlock(t *testing.T) {
	a, p := sevenBlocks(t)
	a.Free(p[2])

	a.remove(freeBlock(p[2]))
	assert.Equal(t, noFree, a.head(1))
	assert.Equal(t, noFree, a.tail(1))
	assert.Zero(t, a.bucketLen(1))
}

func TestFindFit_ScansUpward(t *testing.T) {
	a, p := sevenBlocks(t)

	// Merge p[1..2] into a 96-byte block in class 2.
	a.Free(p[1])
	a.Free(p[2])
	require.Equal(t, []Addr{p[1]}, bucketOrder(a, 2))
	require.Zero(t, a.bucketLen(1))

	// A 48-byte request finds nothing in class 1 and takes the class 2 block.
	f := a.findFit(48)
	assert.Equal(t, freeBlock(p[1]), f)

	// Nothing in any class holds 8000 bytes.
	assert.Equal(t, noFree, a.findFit(8000))
}

func TestFindFit_SkipsSmallBlocksInClass(t *testing.T) {
	a, p := sevenBlocks(t)

	// Class 1 spans 33..65 bytes: a 48-byte block sits in the same class as a
	// 64-byte request but cannot serve it.
	a.Free(p[3])
	f := a.findFit(64)
	assert.NotEqual(t, freeBlock(p[3]), f)
	assert.Equal(t, freeBlock(528), f, "falls through to the remainder")
}
