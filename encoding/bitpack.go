package encoding

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
)

// MaxPackBits is the widest lane PackBits accepts. Wider values gain nothing
// from 64-bit containers.
const MaxPackBits = 32

// BitsFor returns ceil(log2(n)), the number of bits needed to represent the
// n distinct codes 0..n-1, with a floor of 1.
func BitsFor(n uint64) int {
	if n <= 2 {
		return 1
	}

	return bits.Len64(n - 1)
}

// lanesPerContainer returns how many nbits-wide lanes fit in one uint64.
func lanesPerContainer(nbits int) int {
	return 64 / nbits
}

// PackedLen returns the size in bytes of n values packed at nbits each:
// whole uint64 containers holding floor(64/nbits) values.
func PackedLen(n, nbits int) int {
	k := lanesPerContainer(nbits)
	return (n + k - 1) / k * 8
}

// PackBits packs src into nbits-wide lanes of little-endian uint64 containers
// and appends the containers to dst.
//
// Lanes are filled most-significant first: in a container the first value
// sits at shift nbits*(k-1) and the k-th at shift 0, where k = floor(64/nbits).
// A final partial container keeps the same lane positions, leaving its low
// lanes zero. Bits of src above nbits are dropped.
//
// Parameters:
//   - dst: Destination to append to
//   - src: Values to pack
//   - nbits: Lane width, 1..MaxPackBits
//
// Returns:
//   - []byte: dst extended by PackedLen(len(src), nbits) bytes
func PackBits(dst []byte, src []uint32, nbits int) []byte {
	if nbits < 1 || nbits > MaxPackBits {
		panic(fmt.Sprintf("PackBits: invalid bit width %d", nbits))
	}

	k := lanesPerContainer(nbits)
	mask := uint64(1)<<nbits - 1
	top := nbits * (k - 1)

	for i := 0; i < len(src); i += k {
		end := min(i+k, len(src))
		var c uint64
		shift := top
		for _, v := range src[i:end] {
			c |= (uint64(v) & mask) << shift
			shift -= nbits
		}
		dst = endian.Wire().AppendUint64(dst, c)
	}

	return dst
}

// UnpackBits reverses PackBits, filling all of dst from src.
//
// Returns:
//   - error: errs.ErrInvalidBitWidth for a width outside 1..MaxPackBits,
//     errs.ErrInvalidPackedSize if len(src) != PackedLen(len(dst), nbits)
func UnpackBits(dst []uint32, src []byte, nbits int) error {
	if nbits < 1 || nbits > MaxPackBits {
		return fmt.Errorf("unpack %d-bit lanes: %w", nbits, errs.ErrInvalidBitWidth)
	}
	if len(src) != PackedLen(len(dst), nbits) {
		return fmt.Errorf("unpack %d values at %d bits from %d bytes: %w",
			len(dst), nbits, len(src), errs.ErrInvalidPackedSize)
	}

	k := lanesPerContainer(nbits)
	mask := uint64(1)<<nbits - 1
	top := nbits * (k - 1)
	engine := endian.Wire()

	for i, off := 0, 0; i < len(dst); i, off = i+k, off+8 {
		c := engine.Uint64(src[off:])
		end := min(i+k, len(dst))
		shift := top
		for j := i; j < end; j++ {
			dst[j] = uint32((c >> shift) & mask) //nolint:gosec
			shift -= nbits
		}
	}

	return nil
}
