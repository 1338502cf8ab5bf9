// Package encoding provides the low-level transforms behind rzap's per-type
// vector encodings.
//
// Everything here is a pure function over slices: no stream state, no
// length prefixes, no kind bytes. The codec package decides which transform
// a vector gets and how its output is framed.
//
// # Primitives
//
//   - Varint: unsigned LEB128 for lengths and counts (AppendUvarint, Uvarint)
//   - ZigZag: maps small signed integers to small unsigned ones
//   - Bit packing: fixed-width lanes in little-endian uint64 containers,
//     filled most-significant lane first (PackBits, UnpackBits)
//   - Bitmaps: one bit per element in little-endian uint32 containers, used
//     for NA flags and logical truth values
//   - Shuffle and delta-shuffle: byte-plane transpose for 4- and 8-byte
//     words, optionally storing each byte as its difference from the
//     previous one
//
// # Vector transforms
//
//   - DeltaFrame: frame-of-reference over consecutive integer deltas, packed
//     at the smallest width of at most 12 bits
//   - ALP: adaptive lossless floating-point, scaling doubles by powers of ten
//     to exact integers, with patches for values that do not fit
//   - Mega-string: every string of a vector joined with NUL terminators
//
// A transform that cannot represent its input reports it (the bool result of
// DeltaFrameDeltas and ALPProbe) and the caller falls back to another one.
package encoding
