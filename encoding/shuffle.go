package encoding

import (
	"fmt"

	"github.com/arloliu/rzap/errs"
)

// Word is an element type the shuffle transforms operate on directly.
type Word interface {
	~uint32 | ~uint64
}

func wordWidth[T Word]() int {
	var zero T
	if uint64(^zero) == 0xFFFF_FFFF {
		return 4
	}

	return 8
}

// Shuffle transposes src, a sequence of width-byte elements, into byte
// planes: byte 0 of every element, then byte 1 of every element, and so on.
// It appends len(src) bytes to dst. len(src) must be a multiple of width.
func Shuffle(dst, src []byte, width int) []byte {
	n := len(src) / width
	start := len(dst)
	dst = grow(dst, len(src))
	out := dst[start:]

	for k := range width {
		plane := out[k*n : (k+1)*n]
		for i := range plane {
			plane[i] = src[i*width+k]
		}
	}

	return dst
}

// Unshuffle reverses Shuffle, appending len(src) bytes to dst.
func Unshuffle(dst, src []byte, width int) []byte {
	n := len(src) / width
	start := len(dst)
	dst = grow(dst, len(src))
	out := dst[start:]

	for k := range width {
		plane := src[k*n : (k+1)*n]
		for i, b := range plane {
			out[i*width+k] = b
		}
	}

	return dst
}

// DeltaShuffle is Shuffle followed by a running byte difference over the
// planar output: each byte is stored as its difference (mod 256) from the
// byte before it. The running value starts at zero and carries across plane
// boundaries.
func DeltaShuffle(dst, src []byte, width int) []byte {
	n := len(src) / width
	start := len(dst)
	dst = grow(dst, len(src))
	out := dst[start:]

	var prev byte
	for k := range width {
		plane := out[k*n : (k+1)*n]
		for i := range plane {
			v := src[i*width+k]
			plane[i] = v - prev
			prev = v
		}
	}

	return dst
}

// DeltaUnshuffle reverses DeltaShuffle, appending len(src) bytes to dst.
func DeltaUnshuffle(dst, src []byte, width int) []byte {
	n := len(src) / width
	start := len(dst)
	dst = grow(dst, len(src))
	out := dst[start:]

	var prev byte
	for k := range width {
		plane := src[k*n : (k+1)*n]
		for i, d := range plane {
			prev += d
			out[i*width+k] = prev
		}
	}

	return dst
}

// DeltaShuffleWords is DeltaShuffle over the little-endian bytes of src,
// reading the words directly instead of going through a byte buffer.
func DeltaShuffleWords[T Word](dst []byte, src []T) []byte {
	width := wordWidth[T]()
	n := len(src)
	start := len(dst)
	dst = grow(dst, n*width)
	out := dst[start:]

	var prev byte
	for k := range width {
		shift := 8 * k
		plane := out[k*n : (k+1)*n]
		for i, w := range src {
			v := byte(w >> shift)
			plane[i] = v - prev
			prev = v
		}
	}

	return dst
}

// DeltaUnshuffleWords reverses DeltaShuffleWords, filling all of dst.
//
// Returns:
//   - error: errs.ErrInvalidPackedSize if len(src) is not len(dst) words
func DeltaUnshuffleWords[T Word](dst []T, src []byte) error {
	width := wordWidth[T]()
	n := len(dst)
	if len(src) != n*width {
		return fmt.Errorf("delta-unshuffle %d words of %d bytes from %d bytes: %w",
			n, width, len(src), errs.ErrInvalidPackedSize)
	}

	clear(dst)
	var prev byte
	for k := range width {
		shift := 8 * k
		plane := src[k*n : (k+1)*n]
		for i, d := range plane {
			prev += d
			dst[i] |= T(prev) << shift
		}
	}

	return nil
}

// grow extends dst by n bytes, reallocating at most once.
func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) >= n {
		return dst[:len(dst)+n]
	}

	out := make([]byte, len(dst)+n, 2*len(dst)+n)
	copy(out, dst)

	return out
}
