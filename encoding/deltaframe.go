package encoding

// Deltaframe limits. A delta range wider than this is not worth packing and
// the vector is stored as zigzag + delta-shuffle instead.
const (
	DeltaFrameMaxBits  = 12
	DeltaFrameMaxRange = 1 << DeltaFrameMaxBits
)

// DeltaFrame holds the scalar parameters of a deltaframe-encoded vector.
//
// Element i (i > 0) decodes as value[i-1] + packed[i] + Offset, with 32-bit
// wraparound; element 0 decodes as Ref. NA positions are restored from a
// separate bitmap afterwards.
type DeltaFrame struct {
	Bits   int   // Bits is the lane width of the packed deltas.
	Ref    int32 // Ref is the first non-NA value.
	Offset int32 // Offset is the smallest delta, subtracted before packing.
}

// DeltaFrameDeltas computes the frame-of-reference deltas of src into dst.
//
// Deltas are taken between consecutive non-NA values. NA elements carry the
// previous value forward, so their stored delta is the one that decodes to
// "no change". The first element's lane is never read and is left zero.
//
// Parameters:
//   - dst: Destination for the offset deltas, at least len(src) long
//   - src: Values to encode, NAInteger marks NA
//
// Returns:
//   - DeltaFrame: Parameters needed to restore src from dst
//   - bool: false when src has no non-NA value or its delta range needs more
//     than DeltaFrameMaxBits bits; dst is unspecified in that case
func DeltaFrameDeltas(dst []uint32, src []int32) (DeltaFrame, bool) {
	first := -1
	for i, v := range src {
		if v != NAInteger {
			first = i
			break
		}
	}
	if first < 0 {
		return DeltaFrame{}, false
	}

	ref := src[first]
	var lo, hi int64
	prior := int64(ref)
	for _, v := range src[first+1:] {
		if v == NAInteger {
			continue
		}
		d := int64(v) - prior
		lo = min(lo, d)
		hi = max(hi, d)
		prior = int64(v)
	}

	span := uint64(hi-lo) + 2 //nolint:gosec
	if span > DeltaFrameMaxRange {
		return DeltaFrame{}, false
	}
	nbits := BitsFor(span)
	if nbits > DeltaFrameMaxBits {
		return DeltaFrame{}, false
	}

	dst = dst[:len(src)]
	dst[0] = 0
	prior = int64(ref)
	for i := 1; i < len(src); i++ {
		v := src[i]
		if v == NAInteger {
			dst[i] = uint32(-lo) //nolint:gosec
			continue
		}
		dst[i] = uint32(int64(v) - prior - lo) //nolint:gosec
		prior = int64(v)
	}

	return DeltaFrame{Bits: nbits, Ref: ref, Offset: int32(lo)}, true //nolint:gosec
}

// DeltaFrameRestore reverses DeltaFrameDeltas, filling dst from the deltas.
// NA positions come out holding the carried-forward value; the caller
// overwrites them from the NA bitmap.
func DeltaFrameRestore(dst []int32, deltas []uint32, frame DeltaFrame) {
	if len(dst) == 0 {
		return
	}

	deltas = deltas[:len(dst)]
	prev := frame.Ref
	dst[0] = prev
	for i := 1; i < len(dst); i++ {
		prev += int32(deltas[i]) + frame.Offset //nolint:gosec
		dst[i] = prev
	}
}
