package compress

// NoOpCompressor stores the body unchanged. It is the codec of streams
// written without compression.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself, without copying.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself, without copying.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
