package format

import (
	"encoding/binary"
	"fmt"
)

// Word encoding for the arena. Tags and links are stored as little-endian
// uint64 words regardless of host byte order, so a dumped arena decodes the
// same everywhere.

// ReadWord reads the word at off.
func ReadWord(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+WSize])
}

// PutWord writes v as the word at off.
func PutWord(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+WSize], v)
}

// CheckWord reports whether a full word at off lies inside b.
func CheckWord(b []byte, off int) error {
	if off < 0 || off+WSize > len(b) {
		return fmt.Errorf("offset %d (arena %d bytes): %w", off, len(b), ErrTruncated)
	}
	return nil
}

// ReadTag reads the boundary tag at off.
func ReadTag(b []byte, off int) Tag {
	return Tag(ReadWord(b, off))
}

// PutTag writes t at off.
func PutTag(b []byte, off int, t Tag) {
	PutWord(b, off, uint64(t))
}

// HeaderOff returns the offset of the header of the block whose payload starts at bp.
func HeaderOff(bp int) int {
	return bp - WSize
}

// FooterOff returns the offset of the footer of a block of the given size.
func FooterOff(bp, size int) int {
	return bp + size - DSize
}

// NextBlock returns the payload address of the block following bp, found by
// skipping bp's size from its header.
func NextBlock(b []byte, bp int) int {
	return bp + ReadTag(b, HeaderOff(bp)).Size()
}

// PrevBlock returns the payload address of the block preceding bp, found
// through the footer that sits immediately before bp's header.
func PrevBlock(b []byte, bp int) int {
	return bp - ReadTag(b, bp-DSize).Size()
}
