package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type particle struct {
	X, Y, Z float64
}

func TestTlsfGrowerPreservesContents(t *testing.T) {
	tl, err := NewTlsf(make([]byte, 1<<20), 4)
	require.NoError(t, err)
	g := NewTlsfGrower[particle](tl)

	var s []particle
	for i := 0; i < 100; i++ {
		if len(s) == cap(s) {
			newCap := 2 * cap(s)
			if newCap < 8 {
				newCap = 8
			}
			s = g.Grow(s, newCap)
		}
		s = append(s, particle{X: float64(i)})
	}

	require.Len(t, s, 100)
	for i := range s {
		assert.Equal(t, float64(i), s[i].X)
	}
	assert.Same(t, tl, g.Engine())
}

func TestTlsfGrowerFreesPrevious(t *testing.T) {
	tl, err := NewTlsf(make([]byte, 4096), 4)
	require.NoError(t, err)
	g := NewTlsfGrower[int64](tl)

	s := g.Grow(nil, 8)
	first := g.off
	require.GreaterOrEqual(t, first, int32(0))

	s = g.Grow(s, 16)
	assert.NotEqual(t, first, g.off)
	// The superseded allocation was already released.
	assert.False(t, tl.Free(first))
	assert.Equal(t, 16, cap(s))
}

func TestTlsfGrowerPanicsOnExhaustion(t *testing.T) {
	tl, err := NewTlsf(make([]byte, 1024), 4)
	require.NoError(t, err)
	g := NewTlsfGrower[particle](tl)

	assert.Panics(t, func() { g.Grow(nil, 1<<20) })
}

func TestArenaGrowerPreservesContents(t *testing.T) {
	a := NewArena(512)
	g := NewArenaGrower[particle](a)

	s := g.Grow(nil, 8)
	s = append(s, particle{X: 1}, particle{Y: 2})
	s = g.Grow(s, 32)

	require.Len(t, s, 2)
	assert.Equal(t, 1.0, s[0].X)
	assert.Equal(t, 2.0, s[1].Y)
	assert.Equal(t, 32, cap(s))
	assert.Same(t, a, g.Engine())
}

func TestArenaGrowerPanicsWhenExternalBufferFull(t *testing.T) {
	a := NewArenaBuffer(make([]byte, 64))
	g := NewArenaGrower[particle](a)

	assert.Panics(t, func() { g.Grow(nil, 1000) })
}
