package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// headerFields is the number of numeric header lines.
const headerFields = 4

// Parse reads a trace from r. The declared operation count must match the
// number of operations, and every id must be below the declared id count.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	tr := &Trace{}
	var header [headerFields]int
	headerSeen := 0
	numOps := 0
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if headerSeen < headerFields {
			v, err := strconv.Atoi(strings.Fields(line)[0])
			if err != nil || v < 0 {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("bad header value %q", line)}
			}
			header[headerSeen] = v
			headerSeen++
			if headerSeen == headerFields {
				tr.SuggestedHeap, tr.NumIDs, numOps, tr.Weight = header[0], header[1], header[2], header[3]
				tr.Ops = make([]Op, 0, min(numOps, 1<<20))
			}
			continue
		}

		op, err := parseOp(line, lineNo, tr.NumIDs)
		if err != nil {
			return nil, err
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}

	if headerSeen < headerFields {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("truncated header: %d of %d values", headerSeen, headerFields)}
	}
	if len(tr.Ops) != numOps {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header declares %d ops, found %d", numOps, len(tr.Ops))}
	}
	return tr, nil
}

func parseOp(line string, lineNo, numIDs int) (Op, error) {
	fields := strings.Fields(line)
	if len(fields[0]) != 1 {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unknown op %q", fields[0])}
	}

	op := Op{Kind: OpKind(fields[0][0]), Line: lineNo}
	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unknown op %q", fields[0])}
	}
	if len(fields) != want {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("%s takes %d fields, got %d", op.Kind, want, len(fields))}
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("bad id %q (trace declares %d ids)", fields[1], numIDs)}
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("bad size %q", fields[2])}
		}
		op.Size = size
	}
	return op, nil
}
