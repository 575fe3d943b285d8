package alloc

import (
	"fmt"
	"io"
)

// WriteImage writes the raw arena, offset 0 to the break, to w. The image
// can be checked offline with verify.WalkFile.
func (a *Allocator) WriteImage(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	if err != nil {
		return int64(n), fmt.Errorf("write arena image: %w", err)
	}
	return int64(n), nil
}
