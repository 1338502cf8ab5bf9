package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/errs"
)

// LZ4 frame methods, stored after the length prefix.
const (
	lz4MethodStored byte = 0 // data follows verbatim
	lz4MethodBlock  byte = 1 // one LZ4 block follows
)

// lz4MaxExpansion bounds the decoded size claimed by a block; LZ4 cannot
// expand data by more than this factor.
const lz4MaxExpansion = 255

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses with LZ4 block compression. It has the fastest
// decompression of the built-in codecs.
//
// Output layout: varint(uncompressed length), method byte, payload. The
// length prefix lets Decompress allocate the exact output size once, and
// incompressible data is stored verbatim.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data as one LZ4 block.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := encoding.AppendUvarint(nil, uint64(len(data)))
	head := len(dst) + 1
	dst = append(dst, lz4MethodBlock)
	dst = append(dst, make([]byte, lz4.CompressBlockBound(len(data)))...)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[head:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		dst[head-1] = lz4MethodStored
		return append(dst[:head], data...), nil
	}

	return dst[:head+n], nil
}

// Decompress reverses Compress.
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: errs.ErrTruncated or errs.ErrInvalidLength for a malformed
//     frame, or the LZ4 decoding error
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, n, err := encoding.Uvarint(data)
	if err != nil {
		return nil, fmt.Errorf("lz4 frame length: %w", err)
	}
	if n >= len(data) {
		return nil, fmt.Errorf("lz4 frame method: %w", errs.ErrTruncated)
	}
	method, payload := data[n], data[n+1:]

	switch method {
	case lz4MethodStored:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("lz4 stored frame of %d bytes claims %d: %w", len(payload), size, errs.ErrInvalidLength)
		}

		return append([]byte(nil), payload...), nil
	case lz4MethodBlock:
		if size > uint64(len(payload))*lz4MaxExpansion {
			return nil, fmt.Errorf("lz4 block of %d bytes claims %d: %w", len(payload), size, errs.ErrInvalidLength)
		}
		buf := make([]byte, size)
		written, err := lz4.UncompressBlock(payload, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(written) != size {
			return nil, fmt.Errorf("lz4 block decoded to %d bytes, expected %d: %w", written, size, errs.ErrInvalidLength)
		}

		return buf, nil
	default:
		return nil, fmt.Errorf("lz4 frame method %d: %w", method, errs.ErrUnknownEncoding)
	}
}
