package verify

import (
	"errors"
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
)

// Kind classifies a violation.
type Kind int

const (
	KindTruncated       Kind = iota // arena ends inside a block or the bootstrap area
	KindAlignment                   // payload address not DSize-aligned
	KindTagMismatch                 // header and footer differ
	KindPrologue                    // bad prologue block
	KindEpilogue                    // bad epilogue header
	KindBadSize                     // block smaller than MinBlockSize
	KindNotListed                   // free block missing from every bucket
	KindAllocatedListed             // allocated block linked into a bucket
	KindWrongBucket                 // free block linked into the wrong bucket
	KindDuplicate                   // block reached twice by the bucket scan
	KindDangling                    // bucket link that is not a block address
	KindBrokenLink                  // back link or tail disagrees with forward links
	KindUncoalesced                 // two adjacent free blocks
)

var kindNames = [...]string{
	KindTruncated:       "truncated",
	KindAlignment:       "alignment",
	KindTagMismatch:     "tag mismatch",
	KindPrologue:        "prologue",
	KindEpilogue:        "epilogue",
	KindBadSize:         "bad size",
	KindNotListed:       "not listed",
	KindAllocatedListed: "allocated listed",
	KindWrongBucket:     "wrong bucket",
	KindDuplicate:       "duplicate",
	KindDangling:        "dangling link",
	KindBrokenLink:      "broken link",
	KindUncoalesced:     "uncoalesced",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Violation is a single broken invariant.
type Violation struct {
	Kind    Kind
	Addr    int // payload address of the offending block, or a bucket slot offset
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s at %#x: %s", v.Kind, v.Addr, v.Message)
}

// Heap is the view of an arena the checker needs.
type Heap struct {
	// Data is the whole arena, from offset 0 to the break.
	Data []byte

	// ClassOf maps a block size to its bucket.
	ClassOf func(size int) int
}

// BlockInfo records one block met by the address walk.
type BlockInfo struct {
	Addr   int
	Header format.Tag
	Footer format.Tag
}

// Size returns the block size from the header.
func (b BlockInfo) Size() int { return b.Header.Size() }

// Allocated reports the header's allocated flag.
func (b BlockInfo) Allocated() bool { return b.Header.Allocated() }

// Report is the result of Walk.
type Report struct {
	HeapSize int

	// Blocks lists every block from the prologue up to, not including, the
	// epilogue, in address order.
	Blocks []BlockInfo

	// Epilogue is the payload address of the epilogue, or -1 if the walk
	// never reached it.
	Epilogue int

	AllocatedBlocks int
	AllocatedBytes  int
	FreeBlocks      int
	FreeBytes       int
	ListedBlocks    int // blocks reached by the bucket scan

	Violations []*Violation
}

func (r *Report) add(kind Kind, addr int, msg string, args ...any) {
	r.Violations = append(r.Violations, &Violation{
		Kind:    kind,
		Addr:    addr,
		Message: fmt.Sprintf(msg, args...),
	})
}

// OK reports whether no violation was found.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// ListsConsistent reports whether every check except coalescing passed.
func (r *Report) ListsConsistent() bool {
	for _, v := range r.Violations {
		if v.Kind != KindUncoalesced {
			return false
		}
	}
	return true
}

// Coalesced reports whether no two adjacent free blocks were found.
func (r *Report) Coalesced() bool {
	return len(r.ByKind(KindUncoalesced)) == 0
}

// ByKind returns the violations of one kind.
func (r *Report) ByKind(kind Kind) []*Violation {
	var out []*Violation
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// Err joins all violations, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}
