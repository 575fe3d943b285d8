package trace

import (
	"bufio"
	"fmt"
	"io"
)

// OpKind is the operation code of a trace line.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("OpKind(%q)", byte(k))
	}
}

// Op is one trace operation.
type Op struct {
	Kind OpKind
	ID   int
	Size int // unused for OpFree
	Line int // source line, 0 for generated traces
}

// Trace is a parsed allocation trace.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// Write renders tr in the text trace format.
func Write(w io.Writer, tr *Trace) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", tr.SuggestedHeap, tr.NumIDs, len(tr.Ops), tr.Weight)
	for _, op := range tr.Ops {
		switch op.Kind {
		case OpAlloc, OpRealloc:
			fmt.Fprintf(bw, "%c %d %d\n", op.Kind, op.ID, op.Size)
		case OpFree:
			fmt.Fprintf(bw, "%c %d\n", op.Kind, op.ID)
		default:
			return fmt.Errorf("trace: write: unknown op %v", op.Kind)
		}
	}
	return bw.Flush()
}
