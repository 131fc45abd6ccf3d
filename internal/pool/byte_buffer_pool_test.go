package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte("hello"))
	assert.Equal(t, "hello", string(bb.Bytes()))
	assert.Equal(t, 5, bb.Len())

	bb.MustWriteByte('!')
	assert.Equal(t, "hello!", string(bb.Bytes()))

	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 4)
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(0)
	bb.Grow(100)
	assert.GreaterOrEqual(t, bb.Cap(), 100)

	bb.MustWrite(make([]byte, 50))
	before := bb.Cap()
	bb.Grow(10) // already has room, no growth
	assert.Equal(t, before, bb.Cap())
}

func TestByteBuffer_SetLengthAndSlice(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.SetLength(8)
	assert.Equal(t, 8, bb.Len())

	s := bb.Slice(0, 4)
	assert.Len(t, s, 4)

	assert.Panics(t, func() { bb.Slice(-1, 4) })
	assert.Panics(t, func() { bb.SetLength(-1) })
}

func TestByteBufferPool_GetPutReuse(t *testing.T) {
	p := NewByteBufferPool(16, 64)
	bb := p.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("data"))
	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 0, bb2.Len(), "pooled buffer must be reset before reuse")
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(16, 32)
	bb := p.Get()
	bb.Grow(1024)
	p.Put(bb) // exceeds maxThreshold, should be discarded not pooled

	bb2 := p.Get()
	assert.Less(t, bb2.Cap(), 1024)
}

func TestGetBlobBuffer_RoundTrip(t *testing.T) {
	bb := GetBlobBuffer()
	bb.MustWrite([]byte("x"))
	PutBlobBuffer(bb)

	bb2 := GetVBlockBuffer()
	require.NotNil(t, bb2)
	PutVBlockBuffer(bb2)
}

func TestArena_AllocAndSweepClean(t *testing.T) {
	a := NewArena("vb-1")
	bb := a.Alloc(32, "ctx.dict")
	bb.MustWrite([]byte("ACGT"))

	assert.NotPanics(t, func() { a.Sweep() })
	a.Destroy()
}

func TestArena_SweepDetectsOverflow(t *testing.T) {
	a := NewArena("vb-2")
	bb := a.Alloc(8, "b250.stream")

	// simulate heap corruption by stomping the guard word
	bb.guard[0] = ^bb.guard[0]

	assert.Panics(t, func() { a.Sweep() })
}
