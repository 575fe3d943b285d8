package verify

import (
	"github.com/joshuapare/segalloc/internal/mmfile"
)

// WalkFile maps the arena image at path read-only and walks it.
func WalkFile(path string, classOf func(size int) int) (*Report, error) {
	m, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return Walk(Heap{Data: m.Data, ClassOf: classOf}), nil
}
