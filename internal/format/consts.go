// Package format defines the in-arena layout used by the allocator: word
// sizes, the boundary-tag encoding, and the fixed offsets of the bootstrap
// area that precedes the first user block. It is deliberately free of any
// allocation policy so the allocator and the checker can share one decoder.
package format

const (
	// WSize is the size of a machine word, a boundary tag, and a free-list link.
	WSize = 8

	// DSize is the double-word size. Every block starts and ends on a DSize
	// boundary, so it is also the alignment unit of returned addresses.
	DSize = 2 * WSize

	// ChunkSize is the default number of bytes the arena grows by when no free
	// block fits a request.
	ChunkSize = 1 << 12

	// NumClasses is the number of segregated free-list buckets.
	NumClasses = 10

	// MinBlockSize is the smallest legal block: header, footer, and the two
	// link words a free block needs.
	MinBlockSize = 2 * DSize

	// AllocBit is the allocated flag. It lives below the alignment granularity,
	// where a valid size is always zero.
	AllocBit = 0x1

	// SizeMask clears the flag bits of a boundary tag.
	SizeMask = ^uint64(DSize - 1)
)

// Bootstrap layout. The bucket head and tail arrays live at the very start of
// the arena, followed by a padding word, the prologue block and the initial
// epilogue header:
//
//	Offset  Size              Description
//	0x00    NumClasses*WSize  Bucket heads (arena offsets, 0 = empty)
//	0x50    NumClasses*WSize  Bucket tails
//	0xA0    WSize             Alignment padding
//	0xA8    WSize             Prologue header  [DSize:a]
//	0xB0    WSize             Prologue footer  [DSize:a]
//	0xB8    WSize             Epilogue header  [0:a]
const (
	HeadsOffset    = 0
	TailsOffset    = NumClasses * WSize
	BucketAreaSize = 2 * NumClasses * WSize

	// PrologueSize is the size stored in the prologue's tags.
	PrologueSize = DSize

	// PrologueAreaSize covers padding, prologue header/footer and epilogue.
	PrologueAreaSize = 4 * WSize

	// PrologueAddr is the payload address of the prologue, where every heap
	// walk starts.
	PrologueAddr = BucketAreaSize + 2*WSize

	// FirstBlockAddr is the payload address of the first block created by
	// arena extension after initialization.
	FirstBlockAddr = BucketAreaSize + PrologueAreaSize
)

// Free-block link layout, relative to the payload address of a free block.
const (
	PrevLinkOffset = 0
	NextLinkOffset = WSize
)
