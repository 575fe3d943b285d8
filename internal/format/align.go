package format

// Alignment utilities for block sizes and addresses.

// AlignD returns n rounded up to the next DSize boundary.
//
// Example:
//
//	AlignD(1)  = 16
//	AlignD(16) = 16
//	AlignD(17) = 32
func AlignD(n int) int {
	return (n + DSize - 1) &^ (DSize - 1)
}

// IsAligned reports whether n sits on a DSize boundary.
func IsAligned(n int) bool {
	return n&(DSize-1) == 0
}

// AdjustedSize returns the block size needed to serve a payload of n bytes:
// header and footer overhead added, rounded to DSize, never below
// MinBlockSize.
//
// Example:
//
//	AdjustedSize(1)  = 32
//	AdjustedSize(16) = 32
//	AdjustedSize(17) = 48
//	AdjustedSize(24) = 48
func AdjustedSize(n int) int {
	if n <= DSize {
		return MinBlockSize
	}
	return AlignD(n + DSize)
}

// EvenWords rounds a word count up to an even number, so a region of that many
// words keeps DSize alignment.
func EvenWords(words int) int {
	if words%2 != 0 {
		return words + 1
	}
	return words
}
