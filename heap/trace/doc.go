// Package trace reads allocation traces and replays them against a fresh
// allocator while validating every result.
//
// # Trace Format
//
// A trace is plain text. Four header numbers come first, then one operation
// per line:
//
//	20000      suggested heap size (informational)
//	3          number of distinct block ids
//	5          number of operations
//	1          weight
//	a 0 512    allocate 512 bytes as id 0
//	a 1 128
//	r 0 640    resize id 0 to 640 bytes
//	f 1        free id 1
//	f 0
//
// Blank lines and lines starting with '#' are ignored. Open also reads traces
// compressed with zstd (.zst) or lz4 (.lz4), chosen by file suffix.
//
// # Replay
//
// Replay gives every trace its own arena and allocator. For each operation it
// checks that the returned address is aligned, lies inside the arena, does
// not overlap any live block, and that payload bytes survive a resize and are
// intact when the block is freed. The consistency checker can run every N
// operations and once at the end.
//
//	tr, err := trace.Open("traces/binary.rep.zst")
//	if err != nil {
//	    return err
//	}
//	res, err := trace.Replay(tr, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: utilization %.1f%%\n", tr.Name, 100*res.Utilization)
package trace
