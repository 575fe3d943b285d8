package alloc

import "github.com/joshuapare/segalloc/internal/format"

// ClassOf returns the free-list bucket for a block of size bytes.
//
// Sizes up to format.MinBlockSize map to class 0. Larger sizes map to the
// number of times size must be halved (integer shift) before it drops to
// format.MinBlockSize or below, clamped to the last class. The function is
// monotonic in size. The last class collects every larger size, so its list
// has no size ordering at all.
func ClassOf(size int) int {
	if size <= format.MinBlockSize {
		return 0
	}
	class := 0
	for size > format.MinBlockSize {
		size >>= 1
		class++
	}
	return min(class, format.NumClasses-1)
}

// ClassBounds returns the inclusive range of block sizes ClassOf maps to
// class. hi is -1 for the overflow class.
//
// Because halving truncates, class k >= 1 covers
// [(M+1)<<(k-1), ((M+1)<<k) - 1] with M = format.MinBlockSize, e.g.
// class 1 is 33..65 bytes and class 2 is 66..131 bytes.
func ClassBounds(class int) (lo, hi int) {
	const m = format.MinBlockSize
	switch {
	case class <= 0:
		return 0, m
	case class >= format.NumClasses-1:
		return (m + 1) << (format.NumClasses - 2), -1
	default:
		return (m + 1) << (class - 1), ((m + 1) << class) - 1
	}
}
