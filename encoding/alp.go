package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/rzap/errs"
)

// ALP (adaptive lossless floating-point) stores a double x as the integer
// round(x * 10^e / 10^f) and recovers it as enc * 10^f / 10^e. Values that do
// not survive the round trip bit for bit are stored verbatim as patches.
const (
	// ALPMaxExponent is the largest e (and f) the probe tries.
	ALPMaxExponent = 15
	// ALPSampleSize is the number of equi-spaced values the probe scores.
	ALPSampleSize = 256
	// alpMinScore is the share of sampled values, in tenths, that must
	// round-trip for ALP to be used at all.
	alpMinScore = 9

	// alpSweet rounds to the nearest integer by pushing the fraction out of
	// the mantissa: 2^52 + 2^51.
	alpSweet = 6755399441055744.0
	// alpLimit is the largest double whose int64 conversion is exact.
	alpLimit = 9223372036854774784.0
)

var alpFact = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22, 1e23,
}

var alpInvFact = [...]float64{
	1e-0, 1e-1, 1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7, 1e-8, 1e-9, 1e-10, 1e-11,
	1e-12, 1e-13, 1e-14, 1e-15, 1e-16, 1e-17, 1e-18, 1e-19, 1e-20, 1e-21, 1e-22, 1e-23,
}

// ALPParams is the (e, f) exponent pair chosen for a vector.
type ALPParams struct {
	E uint8
	F uint8
}

// Validate checks that p could have been chosen by ALPProbe.
func (p ALPParams) Validate() error {
	if p.E > ALPMaxExponent || p.F > p.E {
		return fmt.Errorf("e=%d f=%d: %w", p.E, p.F, errs.ErrInvalidALPParams)
	}

	return nil
}

// alpImpossible reports values that are always patched: non-finite values,
// negative zero and magnitudes beyond exact int64 conversion.
func alpImpossible(x float64) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return true
	}
	if x > alpLimit || x < -alpLimit {
		return true
	}

	return x == 0 && math.Signbit(x)
}

// alpScale returns round(x * 10^e / 10^f) as a double. The explicit
// conversions keep the compiler from fusing the multiplies, which would make
// the result platform dependent.
func alpScale(x float64, e, f int) float64 {
	scaled := float64(float64(x*alpFact[e]) * alpInvFact[f])
	return float64(scaled+alpSweet) - alpSweet
}

// alpUnscale maps an encoded integer back to a double.
func alpUnscale(enc int64, e, f int) float64 {
	return float64(float64(float64(enc)*alpFact[f]) * alpInvFact[e])
}

// alpEncodeOne returns the encoded integer for x, or false when x must be
// patched.
func alpEncodeOne(x float64, e, f int) (int64, bool) {
	r := alpScale(x, e, f)
	if !(r >= -alpLimit && r <= alpLimit) {
		return 0, false
	}
	enc := int64(r)
	if math.Float64bits(alpUnscale(enc, e, f)) != math.Float64bits(x) {
		return 0, false
	}

	return enc, true
}

// ALPProbe picks the exponent pair for src.
//
// Up to ALPSampleSize equi-spaced values are sampled (all of them for short
// vectors). Every pair with 15 >= e >= f >= 0 is scored by how many sampled
// values round-trip exactly; values that are always patched are left out of
// both the score and the sample count. The highest score wins, ties going to
// the smallest gap e-f and then to the highest e.
//
// Parameters:
//   - src: Values to encode
//
// Returns:
//   - ALPParams: Best exponent pair
//   - bool: false when fewer than 90% of the scored values round-trip and
//     the vector should use a non-ALP encoding instead
func ALPProbe(src []float64) (ALPParams, bool) {
	var samples [ALPSampleSize]float64
	sample := samples[:0]
	step := 1
	if len(src) >= ALPSampleSize {
		step = len(src) / ALPSampleSize
	}
	for j := 0; j < ALPSampleSize && j*step < len(src); j++ {
		if x := src[j*step]; !alpImpossible(x) {
			sample = append(sample, x)
		}
	}

	best := ALPParams{}
	bestScore, bestGap := -1, 0
	for e := ALPMaxExponent; e >= 0; e-- {
		for f := e; f >= 0; f-- {
			score := 0
			for _, x := range sample {
				if _, ok := alpEncodeOne(x, e, f); ok {
					score++
				}
			}
			if gap := e - f; score > bestScore || (score == bestScore && gap < bestGap) {
				best = ALPParams{E: uint8(e), F: uint8(f)} //nolint:gosec
				bestScore, bestGap = score, gap
			}
		}
	}

	if len(sample) > 0 && bestScore*10 < len(sample)*alpMinScore {
		return best, false
	}

	return best, true
}

// ALPEncode encodes src at p into enc and collects the patches.
//
// A patched position keeps the previous position's encoded integer (zero at
// index 0) so the integer stream stays smooth; the decoder overwrites it.
//
// Parameters:
//   - enc: Destination for encoded integers, at least len(src) long
//   - src: Values to encode
//   - p: Exponent pair from ALPProbe
//   - idx: Patch index buffer to append to
//   - vals: Patch value buffer to append to
//
// Returns:
//   - []uint32: idx with the patched positions appended
//   - []float64: vals with the patched values appended
func ALPEncode(enc []int64, src []float64, p ALPParams, idx []uint32, vals []float64) ([]uint32, []float64) {
	e, f := int(p.E), int(p.F)
	enc = enc[:len(src)]

	var prev int64
	for i, x := range src {
		if !alpImpossible(x) {
			if v, ok := alpEncodeOne(x, e, f); ok {
				enc[i] = v
				prev = v

				continue
			}
		}
		enc[i] = prev
		idx = append(idx, uint32(i)) //nolint:gosec
		vals = append(vals, x)
	}

	return idx, vals
}

// ALPDecode restores dst from the encoded integers. Patches are applied
// separately with ALPPatch.
func ALPDecode(dst []float64, enc []int64, p ALPParams) {
	e, f := int(p.E), int(p.F)
	enc = enc[:len(dst)]
	for i, v := range enc {
		dst[i] = alpUnscale(v, e, f)
	}
}

// ALPPatch writes vals[j] to dst[idx[j]].
//
// Returns:
//   - error: errs.ErrInvalidPatchIndex if an index is outside dst
func ALPPatch(dst []float64, idx []uint32, vals []float64) error {
	if len(idx) != len(vals) {
		return fmt.Errorf("%d patch indices for %d values: %w", len(idx), len(vals), errs.ErrInvalidPatchIndex)
	}
	for j, i := range idx {
		if int(i) >= len(dst) {
			return fmt.Errorf("patch index %d of %d: %w", i, len(dst), errs.ErrInvalidPatchIndex)
		}
		dst[i] = vals[j]
	}

	return nil
}
