// Package compress provides the codecs that compress a stream body.
//
// Compression is applied once to the whole body, after every node has been
// encoded, and is recorded in bits 1-2 of the header's first flag byte. The
// header itself is never compressed. When a checksum trailer is requested it
// covers the compressed body, so a reader can reject a corrupt stream before
// decompressing it.
//
// # Algorithms
//
//   - None: the body is stored as written
//   - Zstd: best ratio, pure Go by default, cgo with the gozstd build tag
//   - S2: Snappy-compatible block format, fast in both directions
//   - LZ4: fastest decompression; framed with the uncompressed length
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	body, err := codec.Compress(raw)
//
// Built-in codecs returned by GetCodec are shared and safe for concurrent
// use; CreateCodec returns a fresh instance.
package compress
