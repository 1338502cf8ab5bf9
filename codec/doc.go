// Package codec serializes node trees into rzap streams and back.
//
// # Stream layout
//
// A stream is a 4-byte header (see package section) followed by the body:
// the root node written by a recursive dispatcher. Every node starts with a
// kind byte whose low 5 bits are the node kind; for generic vectors bit 7
// marks a back-reference. Vector kinds are followed by a sub-encoding byte
// and a varint element count, then the encoded payload. Every kind except
// Null and Opaque ends with an attributes block: the attribute list node and
// the class node, both Null when the node has no attributes.
//
// # Encodings
//
//   - Logical: raw int32 or truth and NA bitmaps
//   - Integer: raw int32, zigzag + delta-shuffle, or deltaframe; deltaframe
//     falls back to zigzag when the deltas need more than 12 bits
//   - Factor: codes bit-packed at the width of the level count, code 0 is NA
//   - Double and Complex: raw, shuffle, delta-shuffle or ALP with patches;
//     ALP falls back to the configured fallback when it does not pay off
//   - String: per-element NA flag and bytes, or one NUL-joined buffer with
//     an NA bitmap
//
// Vectors shorter than the per-kind threshold are always written raw.
//
// # Shared structure
//
// Environments are written in full once per call and as back-references
// afterwards, so cyclic environments terminate and shared ones decode to a
// single instance. Generic vectors get the same treatment when
// WithListReferences is set.
//
// # Usage
//
//	enc, err := codec.NewEncoder(codec.WithCompression(format.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//	data, err := enc.Encode(tree)
//
//	dec, _ := codec.NewDecoder()
//	tree, err = dec.Decode(data)
//
// Encoders and Decoders are immutable and safe for concurrent use.
package codec
