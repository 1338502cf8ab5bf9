package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)
	require.NotNil(t, bb.B)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_Writes(t *testing.T) {
	bb := NewByteBuffer(0)
	bb.MustWrite([]byte("ab"))
	require.NoError(t, bb.WriteByte('c'))
	n, err := bb.Write([]byte("de"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte("abcde"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(64)
	bb.MustWrite([]byte("some data"))
	capBefore := bb.Cap()

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, capBefore, bb.Cap())
}

func TestByteBuffer_Grow_SufficientCapacity(t *testing.T) {
	bb := NewByteBuffer(100)
	bb.Grow(50)
	require.Equal(t, 100, bb.Cap())
}

func TestByteBuffer_Grow_Doubles(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite(make([]byte, 16))
	bb.Grow(1)
	require.Equal(t, 32, bb.Cap())
	require.Equal(t, 16, bb.Len())
}

func TestByteBuffer_Grow_LargeRequest(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("keep"))
	bb.Grow(1000)
	require.GreaterOrEqual(t, bb.Cap(), 1004)
	require.Equal(t, []byte("keep"), bb.Bytes())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())

	_, err = bb.WriteTo(failingWriter{})
	require.Error(t, err)
}

func TestByteBufferPool_ResetsOnPut(t *testing.T) {
	p := NewByteBufferPool(64, 0)
	bb := p.Get()
	bb.MustWrite([]byte("stale"))
	p.Put(bb)

	require.Equal(t, 0, p.Get().Len())
	p.Put(nil)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 32)
	bb := p.Get()
	bb.Grow(1024)
	p.Put(bb)

	// An oversized buffer is dropped, so Get cannot return it.
	got := p.Get()
	require.LessOrEqual(t, got.Cap(), 32)
}

func TestDefaultPools(t *testing.T) {
	stream := GetStreamBuffer()
	require.GreaterOrEqual(t, stream.Cap(), StreamBufferDefaultSize)
	PutStreamBuffer(stream)

	scratch := GetScratchBuffer()
	require.GreaterOrEqual(t, scratch.Cap(), ScratchBufferDefaultSize)
	PutScratchBuffer(scratch)
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	p := NewByteBufferPool(64, 0)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bb := p.Get()
			bb.MustWrite([]byte{byte(i)})
			p.Put(bb)
		}()
	}
	wg.Wait()
}

func BenchmarkByteBuffer_Write(b *testing.B) {
	bb := NewByteBuffer(StreamBufferDefaultSize)
	data := make([]byte, 128)

	for b.Loop() {
		bb.Reset()
		for range 64 {
			bb.MustWrite(data)
		}
	}
}
