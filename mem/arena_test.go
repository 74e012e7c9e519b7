package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaBumpAllocation(t *testing.T) {
	a := NewArena(256)

	b1 := a.Alloc(64)
	b2 := a.Alloc(64)
	require.Len(t, b1, 64)
	require.Len(t, b2, 64)

	// Consecutive allocations come from one block, back to back.
	assert.Same(t, &a.head.buf[0], &b1[0])
	assert.Same(t, &a.head.buf[64], &b2[0])
}

func TestArenaAddressReuseAfterReset(t *testing.T) {
	a := NewArena(256)

	b1 := a.Alloc(64)
	a.Reset()
	b2 := a.Alloc(64)
	assert.Same(t, &b1[0], &b2[0])
}

func TestArenaChainsOversizeBlocks(t *testing.T) {
	a := NewArena(128)

	small := a.Alloc(100)
	require.NotNil(t, small)

	big := a.Alloc(1000)
	require.Len(t, big, 1000)
	assert.GreaterOrEqual(t, a.Cap(), 1128)

	// The chain survives a reset and keeps serving without growing.
	a.Reset()
	capBefore := a.Cap()
	a.Alloc(1000)
	assert.Equal(t, capBefore, a.Cap())
}

func TestArenaExternalBufferExhausts(t *testing.T) {
	buf := make([]byte, 128)
	a := NewArenaBuffer(buf)

	first := a.Alloc(100)
	require.NotNil(t, first)
	assert.Nil(t, a.Alloc(100))

	a.Reset()
	assert.NotNil(t, a.Alloc(100))
}

func TestArenaZeroAlloc(t *testing.T) {
	a := NewArena(64)
	assert.Nil(t, a.Alloc(0))
	assert.Nil(t, a.Alloc(-5))
}
