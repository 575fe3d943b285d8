package alloc

import "github.com/joshuapare/segalloc/internal/format"

// Segregated free lists. Each bucket is a doubly-linked list of free blocks
// threaded through their payloads; the head and tail of every bucket are
// stored at the start of the arena itself (see format.HeadsOffset).
//
// Lists are kept in insertion order: blocks are appended at the tail and the
// fit search walks from the head, so first-fit here means "first by recency
// of insertion", not lowest address.

func (a *Allocator) head(class int) freeBlock {
	return freeBlock(format.ReadWord(a.data, format.HeadsOffset+class*format.WSize))
}

func (a *Allocator) tail(class int) freeBlock {
	return freeBlock(format.ReadWord(a.data, format.TailsOffset+class*format.WSize))
}

func (a *Allocator) setHead(class int, f freeBlock) {
	format.PutWord(a.data, format.HeadsOffset+class*format.WSize, uint64(f))
}

func (a *Allocator) setTail(class int, f freeBlock) {
	format.PutWord(a.data, format.TailsOffset+class*format.WSize, uint64(f))
}

// insert appends f to the tail of the bucket for its size. O(1).
func (a *Allocator) insert(f freeBlock) {
	class := ClassOf(a.size(block(f)))
	last := a.tail(class)

	a.setPrevLink(f, last)
	a.setNextLink(f, noFree)
	if last == noFree {
		a.setHead(class, f)
	} else {
		a.setNextLink(last, f)
	}
	a.setTail(class, f)
}

// remove unlinks f from its bucket. O(1). The bucket is derived from f's
// current size, so callers must remove a block before rewriting its tags.
func (a *Allocator) remove(f freeBlock) {
	class := ClassOf(a.size(block(f)))
	p, n := a.prevLink(f), a.nextLink(f)

	if p == noFree {
		a.setHead(class, n)
	} else {
		a.setNextLink(p, n)
	}
	if n == noFree {
		a.setTail(class, p)
	} else {
		a.setPrevLink(n, p)
	}
}

// walkBucket calls fn for each block of class in list order until fn
// returns false.
func (a *Allocator) walkBucket(class int, fn func(freeBlock) bool) {
	for f := a.head(class); f != noFree; f = a.nextLink(f) {
		if !fn(f) {
			return
		}
	}
}

// bucketLen returns the number of blocks linked into class.
func (a *Allocator) bucketLen(class int) int {
	n := 0
	a.walkBucket(class, func(freeBlock) bool {
		n++
		return true
	})
	return n
}

// findFit returns the first block, in list order, of at least asize bytes,
// scanning buckets upward from the class of asize. A bucket may hold blocks
// smaller than asize, so each one is scanned in full before moving on.
func (a *Allocator) findFit(asize int) freeBlock {
	for class := ClassOf(asize); class < format.NumClasses; class++ {
		found := noFree
		a.walkBucket(class, func(f freeBlock) bool {
			if a.size(block(f)) >= asize {
				found = f
				return false
			}
			return true
		})
		if found != noFree {
			return found
		}
	}
	return noFree
}

// Buckets reports the length and total size of every free list.
func (a *Allocator) Buckets() []BucketStat {
	out := make([]BucketStat, format.NumClasses)
	for class := range out {
		lo, hi := ClassBounds(class)
		out[class] = BucketStat{Class: class, Lo: lo, Hi: hi, Count: a.bucketLen(class)}
		a.walkBucket(class, func(f freeBlock) bool {
			out[class].Bytes += a.size(block(f))
			return true
		})
	}
	return out
}
