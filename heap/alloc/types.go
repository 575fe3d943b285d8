package alloc

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/segalloc/internal/format"
)

// Addr is the payload address of a block: a byte offset into the arena.
type Addr int

// Nil is the null address. Offset 0 always holds bucket storage, so no
// payload ever lives there.
const Nil Addr = 0

// logEnvVar enables debug logging to stderr when no logger is configured.
const logEnvVar = "SEGALLOC_LOG_ALLOC"

// Config tunes an Allocator.
type Config struct {
	// ChunkSize is the minimum number of bytes the arena grows by when no free
	// block fits. Rounded up to format.DSize. Zero selects format.ChunkSize.
	ChunkSize int

	// Logger receives growth and initialization events. When nil, output is
	// discarded unless SEGALLOC_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig is used when New is given a nil config.
var DefaultConfig = Config{
	ChunkSize: format.ChunkSize,
}

func (c *Config) chunkSize() int {
	if c.ChunkSize <= 0 {
		return format.ChunkSize
	}
	return format.AlignD(c.ChunkSize)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if os.Getenv(logEnvVar) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats holds allocator counters.
type Stats struct {
	AllocCalls         int   // Malloc calls with a non-zero size
	AllocFastPath      int   // Allocations served from a free list
	AllocSlowPath      int   // Allocations that required arena growth
	FreeCalls          int   // Free calls with a non-nil address
	ReallocCalls       int   // Realloc calls that were not a plain malloc or free
	ReallocInPlace     int   // Realloc served by the current block as-is
	ReallocGrowInPlace int   // Realloc served by absorbing the next free block
	ReallocMoved       int   // Realloc that allocated, copied and freed
	SplitCount         int   // Free blocks split during placement
	CoalesceForward    int   // Merges with a following free block
	CoalesceBackward   int   // Merges with a preceding free block
	GrowCalls          int   // Successful arena extensions
	GrowBytes          int64 // Total bytes added by extensions
	BytesAllocated     int64 // Total block bytes handed out (tags included)
	BytesFreed         int64 // Total block bytes released
}

// BucketStat describes one segregated free list.
type BucketStat struct {
	Class int
	Lo    int // smallest block size mapped to this class
	Hi    int // largest block size mapped to this class, -1 for the overflow class
	Count int // free blocks currently linked
	Bytes int // sum of their sizes
}
