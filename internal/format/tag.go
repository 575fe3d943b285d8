package format

import "fmt"

// Tag is a boundary tag: the block size with the allocated flag packed into
// the low bits.
//
// Tag layout (little-endian uint64):
//
//	Bits   Description
//	0      Allocated flag
//	1-3    Always zero (sizes are multiples of DSize)
//	4-63   Block size in bytes, header and footer included
type Tag uint64

// Pack builds the tag for a block of size bytes.
func Pack(size int, allocated bool) Tag {
	t := Tag(uint64(size))
	if allocated {
		t |= AllocBit
	}
	return t
}

// Size returns the block size stored in the tag.
func (t Tag) Size() int {
	return int(uint64(t) & SizeMask)
}

// Allocated reports whether the allocated flag is set.
func (t Tag) Allocated() bool {
	return uint64(t)&AllocBit != 0
}

// String renders the tag as [size:a] or [size:f].
func (t Tag) String() string {
	state := 'f'
	if t.Allocated() {
		state = 'a'
	}
	return fmt.Sprintf("[%d:%c]", t.Size(), state)
}
