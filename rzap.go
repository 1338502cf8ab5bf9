// Package rzap provides a compact, type-aware binary serialization format for
// trees of R-like values: vectors with NA, attribute lists, generic vectors,
// calls, closures and environments.
//
// Each vector type gets its own encoding. Integers are frame-of-reference
// bit-packed when their deltas are small, doubles are ALP-encoded when they
// are decimals at heart, logicals become two bitmaps and strings are joined
// into one NUL-separated buffer. Shared environments are written once and
// referenced afterwards, which also makes cyclic environments serializable.
//
// # Core Features
//
//   - Per-type encodings with automatic fallback to a safe encoding
//   - NA preserved bit for bit, including NaN payloads and negative zero
//   - Environment deduplication and cycle support; optional list references
//   - Optional whole-body compression (Zstd, S2, LZ4) and xxHash64 checksum
//   - Hardened decoding: length, depth and reference checks on every read
//
// # Basic Usage
//
// Serializing a value:
//
//	import "github.com/arloliu/rzap"
//
//	frame := node.NewList(
//	    node.NewInteger(1, 2, 3),
//	    node.NewDouble(0.5, 1.25, 2),
//	)
//	node.SetAttr(frame, "names", node.NewString("id", "score"))
//
//	data, err := rzap.Marshal(frame)
//
// Reading it back:
//
//	value, err := rzap.Unmarshal(data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the codec
// package. For repeated calls with the same options, build a codec.Encoder
// or codec.Decoder once and reuse it.
package rzap

import (
	"io"

	"github.com/arloliu/rzap/codec"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/node"
	"github.com/arloliu/rzap/section"
)

// Option configures encoding and decoding.
type Option = codec.Option

// Option constructors, see the codec package for details.
var (
	WithLogicalEncoding  = codec.WithLogicalEncoding
	WithIntegerEncoding  = codec.WithIntegerEncoding
	WithFactorEncoding   = codec.WithFactorEncoding
	WithDoubleEncoding   = codec.WithDoubleEncoding
	WithDoubleFallback   = codec.WithDoubleFallback
	WithStringEncoding   = codec.WithStringEncoding
	WithLogicalThreshold = codec.WithLogicalThreshold
	WithIntegerThreshold = codec.WithIntegerThreshold
	WithFactorThreshold  = codec.WithFactorThreshold
	WithDoubleThreshold  = codec.WithDoubleThreshold
	WithStringThreshold  = codec.WithStringThreshold
	WithoutTransforms    = codec.WithoutTransforms
	WithListReferences   = codec.WithListReferences
	WithCompression      = codec.WithCompression
	WithChecksum         = codec.WithChecksum
	WithMaxLength        = codec.WithMaxLength
	WithMaxDepth         = codec.WithMaxDepth
	WithLogger           = codec.WithLogger
	WithObserver         = codec.WithObserver
	WithOpaqueCodec      = codec.WithOpaqueCodec
	WithEnvResolver      = codec.WithEnvResolver
	WithFactorDetector   = codec.WithFactorDetector
)

var compactOptions = []Option{
	codec.WithCompression(format.CompressionZstd),
	codec.WithChecksum(true),
	codec.WithListReferences(true),
}

// Marshal serializes n.
//
// Parameters:
//   - n: Root of the tree; nil is serialized as Null
//   - opts: Encoding options
//
// Returns:
//   - []byte: The stream
//   - error: An invalid option, or a node that cannot be serialized
//
// Example:
//
//	data, err := rzap.Marshal(value,
//	    rzap.WithCompression(format.CompressionZstd),
//	    rzap.WithChecksum(true),
//	)
func Marshal(n node.Node, opts ...Option) ([]byte, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(n)
}

// MarshalCompact serializes n with the settings recommended for storage:
// Zstd body compression, a checksum trailer and list references. opts are
// applied after them and may override any of them.
func MarshalCompact(n node.Node, opts ...Option) ([]byte, error) {
	return Marshal(n, append(append([]Option{}, compactOptions...), opts...)...)
}

// Unmarshal reads the tree serialized in data.
//
// The stream header decides list references, compression and checksum;
// encoding options in opts are ignored. Decoded values never alias data.
//
// Parameters:
//   - data: A complete stream
//   - opts: Decoding options: WithMaxLength, WithMaxDepth, WithLogger,
//     WithOpaqueCodec, WithEnvResolver
//
// Returns:
//   - node.Node: The root node
//   - error: A format or limit error, see errs.KindOf
func Unmarshal(data []byte, opts ...Option) (node.Node, error) {
	dec, err := codec.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return dec.Decode(data)
}

// Size returns the exact size of the stream Marshal would produce for n
// with the same options.
func Size(n node.Node, opts ...Option) (int, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return 0, err
	}

	return enc.Size(n)
}

// Write serializes n to w and returns the number of bytes written.
func Write(w io.Writer, n node.Node, opts ...Option) (int64, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return 0, err
	}

	return enc.EncodeTo(w, n)
}

// Version returns the format version written by this package.
func Version() int {
	return section.Version
}

// Inspect parses the header of a stream without decoding its body.
func Inspect(data []byte) (section.Header, error) {
	return section.ParseHeader(data)
}
