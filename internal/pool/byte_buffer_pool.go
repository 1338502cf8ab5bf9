// Package pool provides reusable buffers for encode and decode calls: pooled
// byte buffers for whole streams, role-typed scratch space for a single call
// and typed slice pools for decoded vectors' temporaries.
package pool

import (
	"io"
	"sync"
)

// Default sizes of pooled buffers. Buffers grown beyond the threshold are
// dropped instead of being returned to the pool.
const (
	StreamBufferDefaultSize   = 1024 * 16       // 16KiB
	StreamBufferMaxThreshold  = 1024 * 1024 * 4 // 4MiB
	ScratchBufferDefaultSize  = 1024 * 4        // 4KiB
	ScratchBufferMaxThreshold = 1024 * 1024     // 1MiB
)

// ByteBuffer is a growable byte slice that can be pooled.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
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

// Reset empties the buffer, keeping its capacity.
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

// MustWrite appends data to the buffer.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends c to the buffer.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Write appends data to the buffer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// Grow makes room for n more bytes without reallocating. Capacity at least
// doubles whenever the buffer has to be reallocated, and never shrinks.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	newCap := max(2*cap(bb.B), len(bb.B)+n)
	newBuf := make([]byte, len(bb.B), newCap)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers that refuses to retain
// buffers grown past maxThreshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with defaultSize initial
// capacity. A maxThreshold of 0 keeps every buffer.
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

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool. nil is ignored.
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
	streamDefaultPool  = NewByteBufferPool(StreamBufferDefaultSize, StreamBufferMaxThreshold)
	scratchDefaultPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)
)

// GetStreamBuffer retrieves a ByteBuffer for a whole encoded stream.
func GetStreamBuffer() *ByteBuffer {
	return streamDefaultPool.Get()
}

// PutStreamBuffer returns a ByteBuffer to the stream pool.
func PutStreamBuffer(bb *ByteBuffer) {
	streamDefaultPool.Put(bb)
}

// GetScratchBuffer retrieves a ByteBuffer for a transform's intermediate output.
func GetScratchBuffer() *ByteBuffer {
	return scratchDefaultPool.Get()
}

// PutScratchBuffer returns a ByteBuffer to the scratch pool.
func PutScratchBuffer(bb *ByteBuffer) {
	scratchDefaultPool.Put(bb)
}
