package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a trace file is encoded.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZSTD
	CompressionLZ4
)

// CompressionFor picks the encoding from the file suffix.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Open reads and parses the trace at path, decompressing it when the suffix
// says so. The trace is named after the file with compression suffixes
// removed.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	defer f.Close()

	r, closeFn, err := newReader(bufio.NewReader(f), CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("trace: %s: %w", path, err)
	}
	defer closeFn()

	tr, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tr.Name = Name(path)
	return tr, nil
}

// Create writes tr to path, compressing it when the suffix says so.
func Create(path string, tr *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("trace: %w", cerr)
		}
	}()

	w, err := newWriter(f, CompressionFor(path))
	if err != nil {
		return fmt.Errorf("trace: %s: %w", path, err)
	}
	if err = Write(w, tr); err != nil {
		_ = w.Close()
		return fmt.Errorf("trace: %s: %w", path, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("trace: %s: flush: %w", path, err)
	}
	return nil
}

// Name returns the base name of path without compression suffixes.
func Name(path string) string {
	base := filepath.Base(path)
	if CompressionFor(base) != CompressionNone {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

func newReader(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, ErrCompression
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, ErrCompression
	}
}
