package codec

import (
	"fmt"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
)

// MaxPackedFactorLevels is the level count from which factors are written as
// raw integer vectors: the codes plus the NA code no longer fit 12 bits.
const MaxPackedFactorLevels = 1 << encoding.DeltaFrameMaxBits

// writeFactor writes a factor with nlevels levels as bit-packed codes.
//
// Code 0 of the packed lanes is NA, so no NA bitmap is needed. Factors that
// cannot be packed, including ones holding a code outside 1..nlevels, are
// written as raw integer vectors.
func (w *writer) writeFactor(v *node.Integer, nlevels int) {
	values := v.Values
	n := len(values)
	if w.cfg.factor == format.FactorRaw || nlevels >= MaxPackedFactorLevels ||
		n < w.cfg.factorThreshold || !codesInRange(values, nlevels) {
		w.writeKind(format.KindInteger, uint8(format.IntegerRaw))
		w.writeLen(n)
		w.out.B = endian.AppendInt32s(w.out.B, values)

		return
	}

	ncodes := nlevels + 1
	w.writeByte(byte(format.KindFactor))
	w.writeLen(ncodes)
	w.writeLen(n)
	if n == 0 {
		return
	}

	codes, cleanup := pool.Uint32s.Get(n)
	defer cleanup()
	for i, c := range values {
		if c == node.NAInteger {
			codes[i] = 0
		} else {
			codes[i] = uint32(c) //nolint:gosec
		}
	}

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)
	tb.B = encoding.PackBits(tb.B, codes, encoding.BitsFor(uint64(ncodes))) //nolint:gosec
	w.writeBuf(tb.B)
}

func codesInRange(values []int32, nlevels int) bool {
	for _, c := range values {
		if c != node.NAInteger && (c < 1 || int(c) > nlevels) {
			return false
		}
	}

	return true
}

func (rd *readState) readFactor() (node.Node, error) {
	ncodes, err := rd.count(MaxPackedFactorLevels)
	if err != nil {
		return nil, err
	}
	if ncodes < 1 {
		return nil, fmt.Errorf("factor with %d codes: %w", ncodes, errs.ErrInvalidLength)
	}
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &node.Integer{Values: []int32{}}, nil
	}

	nbits := encoding.BitsFor(uint64(ncodes)) //nolint:gosec
	packed, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if len(packed) != encoding.PackedLen(n, nbits) {
		return nil, fmt.Errorf("factor payload of %d bytes for %d codes at %d bits: %w",
			len(packed), n, nbits, errs.ErrInvalidPackedSize)
	}

	codes, cleanup := pool.Uint32s.Get(n)
	defer cleanup()
	if err := encoding.UnpackBits(codes, packed, nbits); err != nil {
		return nil, err
	}

	values := make([]int32, n)
	for i, c := range codes {
		if c == 0 {
			values[i] = node.NAInteger
		} else {
			values[i] = int32(c) //nolint:gosec
		}
	}

	return &node.Integer{Values: values}, nil
}
