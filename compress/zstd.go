package compress

// ZstdCompressor compresses with Zstandard. It gives the best ratio of the
// built-in codecs and suits streams written once and read rarely.
//
// The pure-Go klauspost implementation is used by default; building with
// the gozstd tag switches to the cgo binding of the reference library.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
