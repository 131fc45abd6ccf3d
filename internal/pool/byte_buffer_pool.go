// Package pool provides growable byte buffers and a process-wide arena
// registry used by contexts, b250 streams and local streams while
// segmenting a vblock.
package pool

import (
	"fmt"
	"io"
	"sync"
)

// Default and maximum sizes for pooled buffers. Vblock-sized buffers default
// small (one context's worth of b250/local data); the owner (a vblock) may
// hold hundreds of these at once.
const (
	BlobBufferDefaultSize     = 1024 * 16       // 16KiB
	BlobBufferMaxThreshold    = 1024 * 128      // 128KiB
	BlobSetBufferDefaultSize  = 1024 * 1024     // 1MiB
	BlobSetBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB

	guardSize = 8
)

var guardPattern = [guardSize]byte{0xDE, 0xAD, 0xC0, 0xDE, 0xFE, 0xED, 0xFA, 0xCE}

// ByteBuffer is a growable byte array, the basic unit of the arena.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte

	owner string
	tag   string
	guard [guardSize]byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite writes data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// MustWriteByte appends a single byte, growing the buffer if necessary.
func (bb *ByteBuffer) MustWriteByte(b byte) {
	bb.B = append(bb.B, b)
}

// Slice returns a slice of the buffer from start to end.
// Panics if the indices are out of bounds.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("Slice: invalid indices")
	}

	return bb.B[start:end]
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without
// reallocating.
//
// Growth strategy:
//   - For small buffers (capacity up to 4*BlobBufferDefaultSize), grow by BlobBufferDefaultSize to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := BlobBufferDefaultSize
	if cap(bb.B) > 4*BlobBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	blobDefaultPool    = NewByteBufferPool(BlobBufferDefaultSize, BlobBufferMaxThreshold)
	blobSetDefaultPool = NewByteBufferPool(BlobSetBufferDefaultSize, BlobSetBufferMaxThreshold)
)

// GetBlobBuffer retrieves a ByteBuffer from the default per-context pool.
func GetBlobBuffer() *ByteBuffer {
	return blobDefaultPool.Get()
}

// PutBlobBuffer returns a ByteBuffer to the default per-context pool.
func PutBlobBuffer(bb *ByteBuffer) {
	blobDefaultPool.Put(bb)
}

// GetVBlockBuffer retrieves a ByteBuffer from the default per-vblock pool.
func GetVBlockBuffer() *ByteBuffer {
	return blobSetDefaultPool.Get()
}

// PutVBlockBuffer returns a ByteBuffer to the default per-vblock pool.
func PutVBlockBuffer(bb *ByteBuffer) {
	blobSetDefaultPool.Put(bb)
}

// Arena is a process-wide registry of guarded allocations owned by a single
// task (a worker thread's vblock, or the I/O thread's pseudo-vblock). It
// implements the "single sweep to detect overflow, free all memory on task
// teardown" buffer list: every allocation is inserted into the owner's list
// so Sweep can detect corruption and Destroy can release everything at once.
type Arena struct {
	mu      sync.Mutex
	buffers []*ByteBuffer
	name    string
}

// NewArena creates an arena for one owner (identified by name, e.g. "vb-3" or "evb").
func NewArena(name string) *Arena {
	return &Arena{name: name}
}

// Alloc allocates a guarded buffer of at least minCapacity bytes and registers
// it with the arena. tag identifies the allocation's purpose for diagnostics
// (e.g. "ctx.dict", "b250.stream").
func (a *Arena) Alloc(minCapacity int, tag string) *ByteBuffer {
	bb := NewByteBuffer(minCapacity)
	bb.owner = a.name
	bb.tag = tag
	bb.guard = guardPattern

	a.mu.Lock()
	a.buffers = append(a.buffers, bb)
	a.mu.Unlock()

	return bb
}

// Sweep checks every registered buffer's guard and panics with a diagnostic
// naming the owner and tag of the first corrupted allocation. Out-of-memory
// and heap corruption are both fatal per the error model; Sweep is the single
// checkpoint that turns silent corruption into a loud, attributable failure.
func (a *Arena) Sweep() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, bb := range a.buffers {
		if bb.guard != guardPattern {
			panic(fmt.Sprintf("pool: buffer overflow detected in arena %q, allocation %q", bb.owner, bb.tag))
		}
	}
}

// Destroy releases every buffer registered with the arena, required at
// vblock/task teardown.
func (a *Arena) Destroy() {
	a.mu.Lock()
	a.buffers = nil
	a.mu.Unlock()
}
