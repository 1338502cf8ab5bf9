package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor compresses with S2, a faster Snappy extension. It balances
// speed and ratio.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses data as one S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses one S2 block.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return decompressed, nil
}
