package alloc

// coalesce merges the free block f with whichever address neighbors are free,
// inserts the result into its bucket and returns it. The result may start
// before f when the preceding block absorbs it.
//
// After coalesce returns, no two adjacent blocks are both free. It runs after
// every allocated-to-free transition and after every arena extension.
func (a *Allocator) coalesce(f freeBlock) freeBlock {
	b := block(f)
	size := a.size(b)

	// The prologue and epilogue are permanently allocated, so both neighbors
	// always exist.
	prev, prevFree := a.asFree(a.prev(b))
	next, nextFree := a.asFree(a.next(b))

	switch {
	case !prevFree && !nextFree:
		// Nothing to merge.

	case !prevFree && nextFree:
		a.remove(next)
		size += a.size(block(next))
		f = a.markFree(b, size)
		a.stats.CoalesceForward++

	case prevFree && !nextFree:
		a.remove(prev)
		size += a.size(block(prev))
		f = a.markFree(block(prev), size)
		a.stats.CoalesceBackward++

	default:
		a.remove(prev)
		a.remove(next)
		size += a.size(block(prev)) + a.size(block(next))
		f = a.markFree(block(prev), size)
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
	}

	a.insert(f)
	return f
}
