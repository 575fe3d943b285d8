package alloc

import (
	"io"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
)

// liveBlock tracks one allocation made by the property tests.
type liveBlock struct {
	n    int  // requested size
	seed byte // pattern written over the first n bytes
}

// randomSize picks mostly small requests with an occasional large one.
func randomSize(rng *rand.Rand) int {
	switch r := rng.Intn(100); {
	case r < 70:
		return 1 + rng.Intn(256)
	case r < 95:
		return 257 + rng.Intn(4096)
	default:
		return 4096 + rng.Intn(20000)
	}
}

// checkLive verifies every live payload is aligned, inside the heap, disjoint
// from its neighbors and still carries its pattern.
func checkLive(t *testing.T, a *Allocator, live map[Addr]liveBlock, step int) {
	t.Helper()

	addrs := make([]Addr, 0, len(live))
	for p := range live {
		addrs = append(addrs, p)
	}
	slices.Sort(addrs)

	for i, p := range addrs {
		lb := live[p]
		require.True(t, format.IsAligned(int(p)), "step %d: %d misaligned", step, p)
		require.GreaterOrEqual(t, a.UsableSize(p), lb.n, "step %d: block %d too small", step, p)
		end := int(p) + a.UsableSize(p)
		require.LessOrEqual(t, end, a.HeapSize(), "step %d: block %d past the break", step, p)
		if i+1 < len(addrs) {
			require.LessOrEqual(t, end, int(addrs[i+1]), "step %d: %d overlaps %d", step, p, addrs[i+1])
		}
		require.True(t, checkPattern(a, p, lb.n, lb.seed), "step %d: payload at %d corrupted", step, p)
	}
}

// Test_Property_RandomOps runs a fixed-seed mix of malloc, free and realloc,
// checking payload integrity and the full heap invariants periodically.
func Test_Property_RandomOps(t *testing.T) {
	a, _ := newTestAllocator(t, 8<<20)
	rng := rand.New(rand.NewSource(42))
	live := make(map[Addr]liveBlock)

	pick := func() Addr {
		// Map order is random; sort for reproducibility.
		keys := make([]Addr, 0, len(live))
		for p := range live {
			keys = append(keys, p)
		}
		slices.Sort(keys)
		return keys[rng.Intn(len(keys))]
	}

	for step := range 3000 {
		switch op := rng.Intn(10); {
		case op < 5 || len(live) == 0:
			n := randomSize(rng)
			p, err := a.Malloc(n)
			if err != nil {
				require.ErrorIs(t, err, ErrNoSpace, "step %d", step)
				continue
			}
			_, dup := live[p]
			require.False(t, dup, "step %d: %d handed out twice", step, p)
			seed := byte(rng.Intn(256))
			fillPattern(a, p, n, seed)
			live[p] = liveBlock{n: n, seed: seed}

		case op < 8:
			p := pick()
			a.Free(p)
			delete(live, p)

		default:
			p := pick()
			lb := live[p]
			n := randomSize(rng)
			q, err := a.Realloc(p, n)
			if err != nil {
				require.ErrorIs(t, err, ErrNoSpace, "step %d", step)
				require.True(t, checkPattern(a, p, lb.n, lb.seed), "step %d: failed realloc touched %d", step, p)
				continue
			}
			keep := min(lb.n, n)
			require.True(t, checkPattern(a, q, keep, lb.seed), "step %d: realloc %d -> %d lost data", step, p, q)
			delete(live, p)
			fillPattern(a, q, n, lb.seed)
			live[q] = liveBlock{n: n, seed: lb.seed}
		}

		if step%10 == 0 {
			checkLive(t, a, live, step)
		}
		if step%100 == 0 {
			assertInvariants(t, a)
		}
	}

	for p := range live {
		a.Free(p)
	}
	assertInvariants(t, a)
	require.Equal(t, 1, freeBlocks(a), "everything coalesces back into one block")
}

// Test_Property_ReuseAfterFree verifies repeatedly allocating and freeing the
// same size never grows the heap past the first round.
func Test_Property_ReuseAfterFree(t *testing.T) {
	a, _ := newTestAllocator(t, 1<<20)

	for round := range 50 {
		var ptrs []Addr
		for range 15 {
			p, err := a.Malloc(200)
			require.NoError(t, err)
			ptrs = append(ptrs, p)
		}
		for _, p := range ptrs {
			a.Free(p)
		}
		require.Equal(t, format.FirstBlockAddr+format.ChunkSize, a.HeapSize(), "round %d", round)
	}
	assertInvariants(t, a)
}

// FuzzAllocator interprets the input as a sequence of operations, two bytes
// each: an opcode and a size or slot index.
func FuzzAllocator(f *testing.F) {
	f.Add([]byte{0, 16, 0, 32, 0, 64, 1, 1, 0, 24})
	f.Add([]byte{0, 255, 2, 0, 1, 0, 0, 1})
	f.Add([]byte{0, 100, 0, 100, 2, 0, 2, 0, 1, 1, 1, 0})

	f.Fuzz(func(t *testing.T, ops []byte) {
		a, _ := newTestAllocator(t, 1<<20)
		var ptrs []Addr

		for i := 0; i+1 < len(ops); i += 2 {
			arg := int(ops[i+1])
			switch ops[i] % 3 {
			case 0:
				p, err := a.Malloc(arg * 17)
				if err == nil && p != Nil {
					ptrs = append(ptrs, p)
				}
			case 1:
				if len(ptrs) == 0 {
					continue
				}
				j := arg % len(ptrs)
				a.Free(ptrs[j])
				ptrs = slices.Delete(ptrs, j, j+1)
			case 2:
				if len(ptrs) == 0 {
					continue
				}
				j := arg % len(ptrs)
				q, err := a.Realloc(ptrs[j], arg*33)
				if err != nil {
					continue
				}
				if q == Nil {
					ptrs = slices.Delete(ptrs, j, j+1)
				} else {
					ptrs[j] = q
				}
			}
		}

		r := a.Check(io.Discard, false)
		require.NoError(t, r.Err())
	})
}
