// Package mmfile maps arena image files read-only.
//
// An arena image is the raw byte dump of an allocator arena, offset 0 to the
// break. The checker walks it in place, so the mapping is never written.
package mmfile

import "fmt"

// Mapping is a read-only view of a whole file.
type Mapping struct {
	Data []byte

	unmap func([]byte) error
}

// Close releases the mapping. Calling Close twice is a no-op.
func (m *Mapping) Close() error {
	if m.unmap == nil {
		return nil
	}
	err := m.unmap(m.Data)
	m.unmap = nil
	m.Data = nil
	if err != nil {
		return fmt.Errorf("mmfile: unmap: %w", err)
	}
	return nil
}
