package alloc

import (
	"io"

	"github.com/joshuapare/segalloc/heap/verify"
)

// Check walks the heap and the free lists and prints the findings to w. With
// verbose set, every block is printed as well. Check never modifies the heap
// and the allocation paths never call it.
func (a *Allocator) Check(w io.Writer, verbose bool) *verify.Report {
	r := verify.Walk(verify.Heap{Data: a.data, ClassOf: ClassOf})
	r.Print(w, verbose)

	if !r.OK() {
		a.log.Warn("heap check failed",
			"violations", len(r.Violations),
			"heap", a.HeapSize(),
		)
	}
	return r
}
