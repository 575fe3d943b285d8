package memlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arenas(t *testing.T, maxSize int) map[string]Arena {
	t.Helper()
	m, err := NewMmap(maxSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return map[string]Arena{
		"slice": NewSlice(maxSize),
		"mmap":  m,
	}
}

func TestSbrk_GrowsContiguously(t *testing.T) {
	for name, a := range arenas(t, 1<<16) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, a.Lo())
			assert.Equal(t, -1, a.Hi(), "empty arena")

			old, err := a.Sbrk(160)
			require.NoError(t, err)
			assert.Equal(t, 0, old)

			old, err = a.Sbrk(4096)
			require.NoError(t, err)
			assert.Equal(t, 160, old, "second region starts at the old break")
			assert.Equal(t, 160+4096-1, a.Hi())
			assert.Len(t, a.Bytes(), 160+4096)
		})
	}
}

func TestSbrk_RejectsBadIncrements(t *testing.T) {
	for name, a := range arenas(t, 1<<12) {
		t.Run(name, func(t *testing.T) {
			for _, incr := range []int{0, -16, 8, 24} {
				_, err := a.Sbrk(incr)
				require.ErrorIs(t, err, ErrBadIncrement, "incr=%d", incr)
			}
			assert.Equal(t, -1, a.Hi(), "failed calls must not move the break")
		})
	}
}

func TestSbrk_ExhaustionLeavesArenaUntouched(t *testing.T) {
	for name, a := range arenas(t, 1<<12) {
		t.Run(name, func(t *testing.T) {
			_, err := a.Sbrk(4000)
			require.NoError(t, err)
			before := a.Hi()

			_, err = a.Sbrk(4096)
			require.ErrorIs(t, err, ErrExhausted)
			assert.Equal(t, before, a.Hi())

			// The remainder is still grantable.
			old, err := a.Sbrk(96)
			require.NoError(t, err)
			assert.Equal(t, 4000, old)
		})
	}
}

func TestBytes_StableAcrossGrowth(t *testing.T) {
	for name, a := range arenas(t, 1<<14) {
		t.Run(name, func(t *testing.T) {
			_, err := a.Sbrk(64)
			require.NoError(t, err)
			a.Bytes()[10] = 0xAB

			_, err = a.Sbrk(4096)
			require.NoError(t, err)
			assert.Equal(t, byte(0xAB), a.Bytes()[10], "growth must not move data")
			assert.Equal(t, byte(0), a.Bytes()[64], "new bytes are zeroed")
		})
	}
}

func TestClose(t *testing.T) {
	s := NewSlice(1 << 12)
	require.NoError(t, s.Close())
	_, err := s.Sbrk(16)
	require.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, s.Bytes())

	m, err := NewMmap(1 << 12)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "second Close is a no-op")
	_, err = m.Sbrk(16)
	require.ErrorIs(t, err, ErrClosed)
}

func TestDefaultMax(t *testing.T) {
	s := NewSlice(0)
	assert.Equal(t, DefaultMaxHeap, s.Max())

	s = NewSlice(1000)
	assert.Equal(t, 992, s.Max(), "rounded down to the alignment unit")
}
