package encoding

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
)

// NAInteger is the missing-value marker shared by integer and logical vectors.
const NAInteger int32 = math.MinInt32

// BitmapLen returns the size in bytes of a 1-bit-per-element bitmap over n
// elements: whole little-endian uint32 containers of 32 elements each.
func BitmapLen(n int) int {
	return (n + 31) / 32 * 4
}

// appendBitmap builds a bitmap of n elements where bit j of container c is
// set when set(32*c+j) is true.
func appendBitmap(dst []byte, n int, set func(i int) bool) []byte {
	engine := endian.Wire()
	for i := 0; i < n; i += 32 {
		end := min(i+32, n)
		var c uint32
		for j := i; j < end; j++ {
			if set(j) {
				c |= 1 << (j - i)
			}
		}
		dst = engine.AppendUint32(dst, c)
	}

	return dst
}

// AppendNABitmap appends a bitmap marking elements of src equal to NAInteger.
func AppendNABitmap(dst []byte, src []int32) []byte {
	return appendBitmap(dst, len(src), func(i int) bool { return src[i] == NAInteger })
}

// AppendTruthBitmap appends a bitmap of the low bit of each element of src.
// NA elements contribute their low bit (0) and are recovered from a separate
// NA bitmap.
func AppendTruthBitmap(dst []byte, src []int32) []byte {
	return appendBitmap(dst, len(src), func(i int) bool { return src[i]&1 != 0 })
}

// AppendBoolBitmap appends a bitmap of src.
func AppendBoolBitmap(dst []byte, src []bool) []byte {
	return appendBitmap(dst, len(src), func(i int) bool { return src[i] })
}

// CheckBitmap validates that src is exactly a bitmap over n elements.
func CheckBitmap(src []byte, n int) error {
	if len(src) != BitmapLen(n) {
		return fmt.Errorf("bitmap over %d elements has %d bytes: %w", n, len(src), errs.ErrInvalidPackedSize)
	}

	return nil
}

// ForEachSetBit calls fn with the index of every set bit among the first n
// bits of src, in increasing order. Empty containers are skipped in one step.
func ForEachSetBit(src []byte, n int, fn func(i int)) error {
	if err := CheckBitmap(src, n); err != nil {
		return err
	}

	engine := endian.Wire()
	for base, off := 0, 0; base < n; base, off = base+32, off+4 {
		c := engine.Uint32(src[off:])
		for c != 0 {
			j := bits.TrailingZeros32(c)
			if base+j >= n {
				break
			}
			fn(base + j)
			c &= c - 1
		}
	}

	return nil
}

// UnpackBitmapInt32 sets dst[i] to bit i of src (0 or 1).
func UnpackBitmapInt32(dst []int32, src []byte) error {
	if err := CheckBitmap(src, len(dst)); err != nil {
		return err
	}

	engine := endian.Wire()
	for base, off := 0, 0; base < len(dst); base, off = base+32, off+4 {
		c := engine.Uint32(src[off:])
		end := min(base+32, len(dst))
		for j := base; j < end; j++ {
			dst[j] = int32((c >> (j - base)) & 1) //nolint:gosec
		}
	}

	return nil
}
