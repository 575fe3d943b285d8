package trace

import (
	"math/rand"
	"slices"
)

// GenOptions configures Generate.
type GenOptions struct {
	Seed    int64
	NumIDs  int // distinct blocks; each is allocated once and freed once
	MaxSize int // largest request in bytes

	// ReallocPct is the chance, in percent, that an operation on a live
	// block resizes it instead of freeing it. Capped at 90.
	ReallocPct int
}

// DefaultGenOptions produces a small mixed trace.
var DefaultGenOptions = GenOptions{
	Seed:       1,
	NumIDs:     1000,
	MaxSize:    16 << 10,
	ReallocPct: 20,
}

// Generate builds a random, well-formed trace. The same options always yield
// the same trace. Every id is allocated exactly once and freed before the end.
func Generate(opts GenOptions) *Trace {
	rng := rand.New(rand.NewSource(opts.Seed))
	maxSize := max(opts.MaxSize, 1)
	reallocPct := min(max(opts.ReallocPct, 0), 90) // leave room for frees so the loop ends

	tr := &Trace{
		Name:   "generated",
		NumIDs: opts.NumIDs,
		Weight: 1,
	}

	var liveIDs []int
	next := 0
	for next < opts.NumIDs || len(liveIDs) > 0 {
		// Allocate while ids remain, with a bias toward growing the live set.
		if next < opts.NumIDs && (len(liveIDs) == 0 || rng.Intn(100) < 55) {
			size := requestSize(rng, maxSize)
			tr.Ops = append(tr.Ops, Op{Kind: OpAlloc, ID: next, Size: size})
			tr.SuggestedHeap += size
			liveIDs = append(liveIDs, next)
			next++
			continue
		}

		i := rng.Intn(len(liveIDs))
		id := liveIDs[i]
		if rng.Intn(100) < reallocPct {
			size := requestSize(rng, maxSize)
			tr.Ops = append(tr.Ops, Op{Kind: OpRealloc, ID: id, Size: size})
			tr.SuggestedHeap += size
			continue
		}
		tr.Ops = append(tr.Ops, Op{Kind: OpFree, ID: id})
		liveIDs = slices.Delete(liveIDs, i, i+1)
	}
	return tr
}

// requestSize draws a size with a roughly log-uniform distribution, so small
// requests dominate but every class sees traffic.
func requestSize(rng *rand.Rand, maxSize int) int {
	bits := 1
	for 1<<bits < maxSize {
		bits++
	}
	limit := min(1<<(1+rng.Intn(bits)), maxSize)
	return 1 + rng.Intn(limit)
}
