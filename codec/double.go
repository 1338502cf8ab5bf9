package codec

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
)

// complexAsFloats views a complex vector as its real and imaginary parts,
// interleaved.
func complexAsFloats(v []complex128) []float64 {
	if len(v) == 0 {
		return nil
	}

	return unsafe.Slice((*float64)(unsafe.Pointer(unsafe.SliceData(v))), 2*len(v))
}

// writeDouble writes a double vector, or a complex vector viewed as
// doubles, under kind.
func (w *writer) writeDouble(kind format.Kind, values []float64) error {
	n := len(values)
	enc := w.cfg.double
	if n < w.cfg.doubleThreshold {
		enc = format.DoubleRaw
	}

	if enc == format.DoubleALP && n > 0 {
		if w.writeALP(kind, values) {
			return nil
		}
		if ce := w.cfg.logger.Check(zap.DebugLevel, "ALP rejected"); ce != nil {
			ce.Write(zap.Stringer("kind", kind), zap.Int("length", n), zap.Stringer("fallback", w.cfg.doubleFallback))
		}
		enc = w.cfg.doubleFallback
	}

	w.writeKind(kind, uint8(enc))
	w.writeLen(n)
	if n == 0 {
		return nil
	}

	if enc == format.DoubleRaw {
		w.writeLen(8 * n)
		w.out.B = endian.AppendFloat64s(w.out.B, values)

		return nil
	}

	words := w.scratch.Acquire(pool.RoleWords)
	defer w.scratch.Release(pool.RoleWords)
	words.B = endian.AppendFloat64s(words.B, values)

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)

	switch enc {
	case format.DoubleShuffle:
		tb.B = encoding.Shuffle(tb.B, words.B, 8)
	case format.DoubleDeltaShuffle:
		tb.B = encoding.DeltaShuffle(tb.B, words.B, 8)
	default:
		return fmt.Errorf("double encoding %s: %w", enc, errs.ErrInvalidConfig)
	}
	w.writeBuf(tb.B)

	return nil
}

// writeALP writes a non-empty vector with ALP and reports whether it could.
// Nothing is written when the probe rejects the vector.
func (w *writer) writeALP(kind format.Kind, values []float64) bool {
	params, ok := encoding.ALPProbe(values)
	if !ok {
		return false
	}

	n := len(values)
	ints, cleanupInts := pool.Int64s.Get(n)
	defer cleanupInts()
	idx, cleanupIdx := pool.Uint32s.Get(0)
	defer cleanupIdx()
	vals, cleanupVals := pool.Float64s.Get(0)
	defer cleanupVals()

	idx, vals = encoding.ALPEncode(ints, values, params, idx, vals)

	w.writeKind(kind, uint8(format.DoubleALP))
	w.writeLen(n)
	w.writeLen(len(idx))

	if len(idx) > 0 {
		pi := w.scratch.Acquire(pool.RolePatchIndex)
		defer w.scratch.Release(pool.RolePatchIndex)
		pi.B = encoding.DeltaShuffleWords(pi.B, idx)
		w.writeBuf(pi.B)
	}

	pv := w.scratch.Acquire(pool.RolePatchValue)
	defer w.scratch.Release(pool.RolePatchValue)
	pv.B = endian.AppendFloat64s(pv.B, vals)
	w.writeBuf(pv.B)

	w.writeByte(params.E)
	w.writeByte(params.F)

	words := w.scratch.Acquire(pool.RoleWords)
	defer w.scratch.Release(pool.RoleWords)
	words.B = endian.AppendInt64s(words.B, ints)

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)
	tb.B = encoding.DeltaShuffle(tb.B, words.B, 8)
	w.writeBuf(tb.B)

	return true
}

func (rd *readState) readDouble() (node.Node, error) {
	sub, n, err := rd.readDoubleHeader()
	if err != nil {
		return nil, err
	}
	values := make([]float64, n)
	if err := rd.readDoubleValues(sub, values); err != nil {
		return nil, err
	}

	return &node.Double{Values: values}, nil
}

func (rd *readState) readComplex() (node.Node, error) {
	sub, n, err := rd.readDoubleHeader()
	if err != nil {
		return nil, err
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("complex vector of %d doubles: %w", n, errs.ErrInvalidLength)
	}
	values := make([]complex128, n/2)
	if err := rd.readDoubleValues(sub, complexAsFloats(values)); err != nil {
		return nil, err
	}

	return &node.Complex{Values: values}, nil
}

// readDoubleHeader reads the sub-encoding and double count. Every encoding
// stores at least 8 bytes per double, which bounds the count before any
// allocation.
func (rd *readState) readDoubleHeader() (format.DoubleEncoding, int, error) {
	sub, err := rd.readByte()
	if err != nil {
		return 0, 0, err
	}
	if sub > uint8(format.DoubleALP) {
		return 0, 0, fmt.Errorf("double sub-encoding %d: %w", sub, errs.ErrUnknownEncoding)
	}
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return 0, 0, err
	}
	if n > rd.remaining()/8 {
		return 0, 0, fmt.Errorf("%d doubles, %d bytes left: %w", n, rd.remaining(), errs.ErrTruncated)
	}

	return format.DoubleEncoding(sub), n, nil
}

// readDoubleValues fills dst from a payload of sub-encoding sub.
func (rd *readState) readDoubleValues(sub format.DoubleEncoding, dst []float64) error {
	n := len(dst)
	if n == 0 {
		return nil
	}
	if sub == format.DoubleALP {
		return rd.readALP(dst)
	}

	payload, err := rd.buf()
	if err != nil {
		return err
	}
	if len(payload) != 8*n {
		return fmt.Errorf("%s payload of %d bytes for %d doubles: %w", sub, len(payload), n, errs.ErrInvalidPackedSize)
	}

	if sub == format.DoubleRaw {
		endian.Float64s(dst, payload)
		return nil
	}

	tb := rd.scratch.Acquire(pool.RoleTransform)
	defer rd.scratch.Release(pool.RoleTransform)
	if sub == format.DoubleShuffle {
		tb.B = encoding.Unshuffle(tb.B, payload, 8)
	} else {
		tb.B = encoding.DeltaUnshuffle(tb.B, payload, 8)
	}
	endian.Float64s(dst, tb.B)

	return nil
}

func (rd *readState) readALP(dst []float64) error {
	n := len(dst)
	npatch, err := rd.count(n)
	if err != nil {
		return err
	}

	idx, cleanupIdx := pool.Uint32s.Get(npatch)
	defer cleanupIdx()
	if npatch > 0 {
		payload, err := rd.buf()
		if err != nil {
			return err
		}
		if err := encoding.DeltaUnshuffleWords(idx, payload); err != nil {
			return err
		}
	}

	payload, err := rd.buf()
	if err != nil {
		return err
	}
	if len(payload) != 8*npatch {
		return fmt.Errorf("%d bytes of patch values for %d patches: %w", len(payload), npatch, errs.ErrInvalidPackedSize)
	}
	vals, cleanupVals := pool.Float64s.Get(npatch)
	defer cleanupVals()
	endian.Float64s(vals, payload)

	var params encoding.ALPParams
	if params.E, err = rd.readByte(); err != nil {
		return err
	}
	if params.F, err = rd.readByte(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	payload, err = rd.buf()
	if err != nil {
		return err
	}
	if len(payload) != 8*n {
		return fmt.Errorf("ALP payload of %d bytes for %d doubles: %w", len(payload), n, errs.ErrInvalidPackedSize)
	}

	tb := rd.scratch.Acquire(pool.RoleTransform)
	defer rd.scratch.Release(pool.RoleTransform)
	tb.B = encoding.DeltaUnshuffle(tb.B, payload, 8)

	ints, cleanupInts := pool.Int64s.Get(n)
	defer cleanupInts()
	endian.Int64s(ints, tb.B)

	encoding.ALPDecode(dst, ints, params)

	return encoding.ALPPatch(dst, idx, vals)
}
