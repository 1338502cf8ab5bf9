package compress

import (
	"fmt"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
)

// Compressor compresses a whole stream body.
//
// Memory management:
//   - Returned slice is owned by the caller and may alias data for NoOp
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same type.
//
// Decompress validates its input and returns an error for corrupt data or
// data produced by another algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression of a stream body.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType
	// OriginalSize is the body size before compression
	OriginalSize int64
	// CompressedSize is the body size after compression
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for an
// empty body.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a new Codec for compressionType.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompressor for an unknown type
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compression %s: %w", compressionType, errs.ErrUnsupportedCompressor)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for compressionType. Built-in
// codecs are safe for concurrent use.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compression %s: %w", compressionType, errs.ErrUnsupportedCompressor)
}
