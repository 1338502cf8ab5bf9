package encoding

import "github.com/arloliu/rzap/errs"

// MaxVarintLen is the maximum number of bytes of an encoded uint64.
const MaxVarintLen = 10

// AppendUvarint appends v to dst as an unsigned LEB128 varint:
// 7 data bits per byte, least significant group first, high bit set on
// every byte but the last.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// UvarintLen returns the number of bytes AppendUvarint would emit for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// Uvarint decodes a varint from the start of src.
//
// Returns:
//   - uint64: The decoded value
//   - int: Number of bytes consumed
//   - error: errs.ErrTruncated if src ends mid-varint, errs.ErrVarintOverflow
//     if the value does not fit 64 bits
func Uvarint(src []byte) (uint64, int, error) {
	var v uint64
	var shift uint

	for i, b := range src {
		if i == MaxVarintLen {
			return 0, 0, errs.ErrVarintOverflow
		}
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				return 0, 0, errs.ErrVarintOverflow
			}

			return v | uint64(b)<<shift, i + 1, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}

	return 0, 0, errs.ErrTruncated
}
