package verify

import (
	"fmt"
	"io"
)

// Print writes the report to w. With verbose set, every block is listed in
// address order first.
func (r *Report) Print(w io.Writer, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "Heap (%d bytes):\n", r.HeapSize)
		for _, b := range r.Blocks {
			fmt.Fprintf(w, "%#x: header: %s footer: %s\n", b.Addr, b.Header, b.Footer)
		}
		if r.Epilogue >= 0 {
			fmt.Fprintf(w, "%#x: end of heap\n", r.Epilogue)
		}
	}

	for _, v := range r.Violations {
		fmt.Fprintf(w, "Error: %v\n", v)
	}

	if r.ListsConsistent() {
		fmt.Fprintln(w, "Heap and segregated free lists are consistent")
	}
	if r.Coalesced() {
		fmt.Fprintln(w, "Coalesced properly")
	}
}

// Summary returns a one-line description of the block counts.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d bytes, %d allocated blocks (%d bytes), %d free blocks (%d bytes), %d violations",
		r.HeapSize, r.AllocatedBlocks, r.AllocatedBytes, r.FreeBlocks, r.FreeBytes, len(r.Violations))
}
