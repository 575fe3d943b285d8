package trace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/segalloc/heap/alloc"
	"github.com/joshuapare/segalloc/heap/memlib"
	"github.com/joshuapare/segalloc/heap/verify"
	"github.com/joshuapare/segalloc/internal/format"
)

// Options configures a replay.
type Options struct {
	// CheckEvery runs the consistency checker after every N operations.
	// Zero disables periodic checks.
	CheckEvery int

	// Verify runs the consistency checker once after the last operation.
	Verify bool

	// ChunkSize is passed to alloc.Config. Zero selects format.ChunkSize.
	ChunkSize int

	// MaxHeap caps the arena. Zero selects memlib.DefaultMaxHeap.
	MaxHeap int

	// UseMmap backs the arena with an anonymous mapping instead of a Go slice.
	UseMmap bool

	// ImagePath, when set, receives the raw arena after the last operation.
	ImagePath string

	// Logger receives allocator and replay events. When nil, replay events
	// are discarded and the allocator picks its own default.
	Logger *slog.Logger
}

// DefaultOptions is used when Replay is given nil options.
var DefaultOptions = Options{
	Verify:    true,
	ChunkSize: format.ChunkSize,
	MaxHeap:   memlib.DefaultMaxHeap,
}

// Result summarizes a successful replay.
type Result struct {
	Name string
	Ops  int

	// PeakPayload is the largest total of requested bytes live at once.
	PeakPayload int

	// HeapSize is the arena size after the last operation.
	HeapSize int

	// Utilization is PeakPayload / HeapSize.
	Utilization float64

	Stats   alloc.Stats
	Buckets []alloc.BucketStat

	// Report is the final checker report, nil unless Options.Verify is set.
	Report *verify.Report
}

// live is one block owned by a trace id.
type live struct {
	p alloc.Addr
	n int
}

type replayer struct {
	tr   *Trace
	opts *Options
	a    *alloc.Allocator
	log  *slog.Logger

	blocks  map[int]live
	granule *roaring.Bitmap // DSize granules covered by live payloads
	payload int
	peak    int
}

// Replay runs tr against a fresh arena and allocator and validates every
// operation. The arena is released before Replay returns.
//
// When only the final check fails, the Result is returned together with the
// error so the report can still be printed.
func Replay(tr *Trace, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &DefaultOptions
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mem, err := newArena(opts)
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", tr.Name, err)
	}
	defer mem.Close()

	a, err := alloc.New(mem, &alloc.Config{ChunkSize: opts.ChunkSize, Logger: opts.Logger})
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", tr.Name, err)
	}

	r := &replayer{
		tr:      tr,
		opts:    opts,
		a:       a,
		log:     log,
		blocks:  make(map[int]live, tr.NumIDs),
		granule: roaring.New(),
	}
	for i, op := range tr.Ops {
		if err := r.step(op); err != nil {
			return nil, &ReplayError{Trace: tr.Name, Op: i, Line: op.Line, Err: err}
		}
		if opts.CheckEvery > 0 && (i+1)%opts.CheckEvery == 0 {
			if err := r.check(); err != nil {
				return nil, &ReplayError{Trace: tr.Name, Op: i, Line: op.Line, Err: err}
			}
		}
	}

	res := &Result{
		Name:        tr.Name,
		Ops:         len(tr.Ops),
		PeakPayload: r.peak,
		HeapSize:    a.HeapSize(),
		Stats:       a.Stats(),
		Buckets:     a.Buckets(),
	}
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapSize)
	}
	if opts.ImagePath != "" {
		if err := writeImage(a, opts.ImagePath); err != nil {
			return nil, fmt.Errorf("trace %s: %w", tr.Name, err)
		}
	}
	if opts.Verify {
		res.Report = verify.Walk(verify.Heap{Data: mem.Bytes(), ClassOf: alloc.ClassOf})
		if err := res.Report.Err(); err != nil {
			return res, &ReplayError{Trace: tr.Name, Op: -1, Err: fmt.Errorf("%w: %w", ErrInconsistent, err)}
		}
	}

	log.Debug("replay finished",
		"trace", tr.Name,
		"ops", res.Ops,
		"heap", res.HeapSize,
		"peak", res.PeakPayload,
	)
	return res, nil
}

func writeImage(a *alloc.Allocator, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = a.WriteImage(f)
	return err
}

func newArena(opts *Options) (memlib.Arena, error) {
	if opts.UseMmap {
		return memlib.NewMmap(opts.MaxHeap)
	}
	return memlib.NewSlice(opts.MaxHeap), nil
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		// Reusing a live id drops the old block from tracking; it stays
		// allocated in the heap.
		if old, ok := r.blocks[op.ID]; ok {
			r.untrack(op.ID, old)
		}
		p, err := r.a.Malloc(op.Size)
		if err != nil {
			return err
		}
		return r.track(op.ID, p, op.Size)

	case OpRealloc:
		old, ok := r.blocks[op.ID]
		if ok {
			r.untrack(op.ID, old)
		}
		p, err := r.a.Realloc(old.p, op.Size)
		if err != nil {
			if ok {
				// The original block is untouched on failure.
				return errors.Join(err, r.track(op.ID, old.p, old.n))
			}
			return err
		}
		if keep := min(old.n, op.Size); p != alloc.Nil && !r.intact(p, op.ID, keep) {
			return fmt.Errorf("%w: id %d lost data across realloc %d -> %d", ErrCorrupted, op.ID, old.p, p)
		}
		return r.track(op.ID, p, op.Size)

	case OpFree:
		old, ok := r.blocks[op.ID]
		if !ok {
			r.a.Free(alloc.Nil)
			return nil
		}
		if !r.intact(old.p, op.ID, old.n) {
			return fmt.Errorf("%w: id %d at %d", ErrCorrupted, op.ID, old.p)
		}
		r.untrack(op.ID, old)
		r.a.Free(old.p)
		return nil

	default:
		return fmt.Errorf("unknown op %v", op.Kind)
	}
}

// track validates a freshly returned block and records it as live.
func (r *replayer) track(id int, p alloc.Addr, n int) error {
	if p == alloc.Nil {
		return nil
	}
	if !format.IsAligned(int(p)) {
		return fmt.Errorf("%w: id %d at %d", ErrMisaligned, id, p)
	}
	if int(p) < format.FirstBlockAddr || int(p)+n > r.a.HeapSize() {
		return fmt.Errorf("%w: id %d at %d+%d, heap %d bytes", ErrOutOfBounds, id, p, n, r.a.HeapSize())
	}

	lo, hi := granules(p, n)
	if hi > lo && r.granule.Rank(uint32(hi-1))-rankBelow(r.granule, lo) > 0 {
		return fmt.Errorf("%w: id %d at %d+%d", ErrOverlap, id, p, n)
	}
	r.granule.AddRange(lo, hi)

	fill(r.a.Bytes(p)[:n], id)
	r.blocks[id] = live{p: p, n: n}
	r.payload += n
	r.peak = max(r.peak, r.payload)
	return nil
}

func (r *replayer) untrack(id int, b live) {
	lo, hi := granules(b.p, b.n)
	r.granule.RemoveRange(lo, hi)
	delete(r.blocks, id)
	r.payload -= b.n
}

func (r *replayer) intact(p alloc.Addr, id, n int) bool {
	buf := r.a.Bytes(p)[:n]
	for i, c := range buf {
		if c != pattern(id, i) {
			return false
		}
	}
	return true
}

func (r *replayer) check() error {
	rep := r.a.Check(io.Discard, false)
	if err := rep.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInconsistent, err)
	}
	return nil
}

// granules returns the half-open range of DSize granules covering [p, p+n).
func granules(p alloc.Addr, n int) (lo, hi uint64) {
	lo = uint64(p) / format.DSize
	hi = (uint64(p) + uint64(n) + format.DSize - 1) / format.DSize
	return lo, hi
}

// rankBelow counts set granules strictly below g.
func rankBelow(b *roaring.Bitmap, g uint64) uint64 {
	if g == 0 {
		return 0
	}
	return b.Rank(uint32(g - 1))
}

func pattern(id, i int) byte {
	return byte(id*31 + i*7 + 1)
}

func fill(buf []byte, id int) {
	for i := range buf {
		buf[i] = pattern(id, i)
	}
}
