package alloc

import (
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
)

// extend grows the arena by at least words words (rounded up to an even count
// to keep DSize alignment) and returns the resulting free block, already
// coalesced with a free block that ended at the old epilogue.
//
// The new block's header overwrites the old epilogue header, and a fresh
// epilogue is written in the last word of the new region.
func (a *Allocator) extend(words int) (freeBlock, error) {
	size := format.EvenWords(words) * format.WSize

	old, err := a.mem.Sbrk(size)
	if err != nil {
		a.log.Warn("arena extension failed",
			"bytes", size,
			"heap", a.HeapSize(),
			"error", err,
		)
		return noFree, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}
	a.data = a.mem.Bytes()

	b := block(old)
	f := a.markFree(b, size)
	format.PutTag(a.data, format.HeaderOff(int(a.next(b))), format.Pack(0, true))

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)
	a.log.Debug("arena extended",
		"bytes", size,
		"heap", a.HeapSize(),
		"grow", a.stats.GrowCalls,
	)

	if a.onGrow != nil {
		a.onGrow(size)
	}

	return a.coalesce(f), nil
}
