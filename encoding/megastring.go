package encoding

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/rzap/errs"
)

// MaxMegaStringTotal bounds the joined size of a mega-string, terminators
// included.
const MaxMegaStringTotal = math.MaxUint32

// MegaStringTotal returns the joined size of src: every string's bytes plus
// one NUL terminator per element. NA elements count as empty strings.
func MegaStringTotal(src []string, na []bool) uint64 {
	total := uint64(len(src))
	for i, s := range src {
		if na != nil && na[i] {
			continue
		}
		total += uint64(len(s))
	}

	return total
}

// MegaStringEligible reports whether src can be joined into a mega-string and
// split back losslessly.
//
// Strings containing NUL cannot be split back. A vector whose non-NA strings
// are all empty joins to exactly one terminator per element, and that layout
// carries no NA bitmap, so it cannot hold any NA either.
func MegaStringEligible(src []string, na []bool) bool {
	empty := true
	for i, s := range src {
		if na != nil && na[i] {
			continue
		}
		if strings.IndexByte(s, 0) >= 0 {
			return false
		}
		if s != "" {
			empty = false
		}
	}
	if !empty {
		return true
	}
	for _, isNA := range na {
		if isNA {
			return false
		}
	}

	return true
}

// AppendMegaString appends every element of src followed by a NUL byte. NA
// elements contribute only the terminator.
//
// Returns:
//   - []byte: dst extended by MegaStringTotal(src, na) bytes
//   - error: errs.ErrStringTooLong if the total reaches MaxMegaStringTotal
func AppendMegaString(dst []byte, src []string, na []bool) ([]byte, error) {
	total := MegaStringTotal(src, na)
	if total >= MaxMegaStringTotal {
		return dst, fmt.Errorf("mega-string of %d bytes: %w", total, errs.ErrStringTooLong)
	}

	dst = grow(dst, int(total))[:len(dst)]
	for i, s := range src {
		if na == nil || !na[i] {
			dst = append(dst, s...)
		}
		dst = append(dst, 0)
	}

	return dst, nil
}

// SplitMegaString fills dst with the NUL-terminated strings of src, in order.
// The strings share one allocation.
//
// Returns:
//   - error: errs.ErrInvalidString if src does not hold exactly len(dst)
//     terminated strings
func SplitMegaString(dst []string, src []byte) error {
	if len(src) > 0 && src[len(src)-1] != 0 {
		return fmt.Errorf("mega-string is not NUL terminated: %w", errs.ErrInvalidString)
	}

	joined := string(src)
	for i := range dst {
		end := strings.IndexByte(joined, 0)
		if end < 0 {
			return fmt.Errorf("mega-string holds %d of %d strings: %w", i, len(dst), errs.ErrInvalidString)
		}
		dst[i] = joined[:end]
		joined = joined[end+1:]
	}
	if joined != "" {
		return fmt.Errorf("mega-string has %d bytes past %d strings: %w",
			len(joined), len(dst), errs.ErrInvalidString)
	}

	return nil
}
