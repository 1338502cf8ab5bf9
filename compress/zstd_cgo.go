//go:build gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// zstdLevel matches klauspost's SpeedDefault.
const zstdLevel = 3

// Compress compresses data with the reference zstd library.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress decompresses data with the reference zstd library.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
