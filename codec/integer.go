package codec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
)

// deltaFrameSentinelBits is the bit width that marks "not deltaframe
// encoded". It never appears in a valid stream.
const deltaFrameSentinelBits = 32

// writeInteger writes an integer vector.
//
// A vector whose deltas do not fit a deltaframe is written exactly as the
// zigzag encoding would write it, sub-encoding byte included.
func (w *writer) writeInteger(v *node.Integer) {
	values := v.Values
	n := len(values)
	enc := w.cfg.integer
	if n < w.cfg.integerThreshold {
		enc = format.IntegerRaw
	}

	if enc == format.IntegerDeltaFrame && n > 0 {
		if w.writeDeltaFrame(values) {
			return
		}
		if ce := w.cfg.logger.Check(zap.DebugLevel, "deltaframe rejected, using zigzag"); ce != nil {
			ce.Write(zap.Int("length", n))
		}
		enc = format.IntegerZigZag
	}

	w.writeKind(format.KindInteger, uint8(enc))
	w.writeLen(n)

	switch enc {
	case format.IntegerRaw:
		w.out.B = endian.AppendInt32s(w.out.B, values)
	case format.IntegerZigZag:
		if n > 0 {
			w.writeZigZag(values)
		}
	case format.IntegerDeltaFrame:
		// empty vector: header only
	}
}

func (w *writer) writeZigZag(values []int32) {
	words, cleanup := pool.Uint32s.Get(len(values))
	defer cleanup()
	encoding.ZigZagSlice32(words, values)

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)

	tb.B = encoding.DeltaShuffleWords(tb.B, words)
	w.writeBuf(tb.B)
}

// writeDeltaFrame writes a non-empty vector as a deltaframe and reports
// whether it could. Nothing is written when it cannot.
func (w *writer) writeDeltaFrame(values []int32) bool {
	deltas, cleanup := pool.Uint32s.Get(len(values))
	defer cleanup()

	frame, ok := encoding.DeltaFrameDeltas(deltas, values)
	if !ok {
		return false
	}

	w.writeKind(format.KindInteger, uint8(format.IntegerDeltaFrame))
	w.writeLen(len(values))
	w.writeLen(frame.Bits)
	w.writeInt32(frame.Ref)
	w.writeInt32(frame.Offset)

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)
	tb.B = encoding.PackBits(tb.B, deltas, frame.Bits)
	w.writeBuf(tb.B)

	bm := w.scratch.Acquire(pool.RoleBitmap)
	defer w.scratch.Release(pool.RoleBitmap)
	bm.B = encoding.AppendNABitmap(bm.B, values)
	w.writeBuf(bm.B)

	return true
}

func (rd *readState) readInteger() (node.Node, error) {
	sub, err := rd.readByte()
	if err != nil {
		return nil, err
	}
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return nil, err
	}

	var values []int32
	switch format.IntegerEncoding(sub) {
	case format.IntegerRaw:
		values, err = rd.readInt32s(n)
	case format.IntegerZigZag:
		values, err = rd.readZigZag(n)
	case format.IntegerDeltaFrame:
		values, err = rd.readDeltaFrame(n)
	default:
		err = fmt.Errorf("integer sub-encoding %d: %w", sub, errs.ErrUnknownEncoding)
	}
	if err != nil {
		return nil, err
	}

	return &node.Integer{Values: values}, nil
}

func (rd *readState) readZigZag(n int) ([]int32, error) {
	if n == 0 {
		return []int32{}, nil
	}

	payload, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if len(payload) != 4*n {
		return nil, fmt.Errorf("zigzag payload of %d bytes for %d values: %w", len(payload), n, errs.ErrInvalidPackedSize)
	}

	values := make([]int32, n)
	words, cleanup := pool.Uint32s.Get(n)
	defer cleanup()
	if err := encoding.DeltaUnshuffleWords(words, payload); err != nil {
		return nil, err
	}
	encoding.UnZigZagSlice32(values, words)

	return values, nil
}

func (rd *readState) readDeltaFrame(n int) ([]int32, error) {
	if n == 0 {
		return []int32{}, nil
	}

	nbits, err := rd.uvarint()
	if err != nil {
		return nil, err
	}
	switch {
	case nbits == deltaFrameSentinelBits:
		return nil, errs.ErrDeltaFrameInvalid
	case nbits < 1 || nbits > encoding.DeltaFrameMaxBits:
		return nil, fmt.Errorf("deltaframe width %d: %w", nbits, errs.ErrInvalidBitWidth)
	}

	var frame encoding.DeltaFrame
	frame.Bits = int(nbits)
	if frame.Ref, err = rd.int32(); err != nil {
		return nil, err
	}
	if frame.Offset, err = rd.int32(); err != nil {
		return nil, err
	}
	packed, err := rd.buf()
	if err != nil {
		return nil, err
	}
	na, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if err := encoding.CheckBitmap(na, n); err != nil {
		return nil, err
	}
	if len(packed) != encoding.PackedLen(n, frame.Bits) {
		return nil, fmt.Errorf("deltaframe payload of %d bytes for %d values at %d bits: %w",
			len(packed), n, frame.Bits, errs.ErrInvalidPackedSize)
	}

	values := make([]int32, n)
	deltas, cleanup := pool.Uint32s.Get(n)
	defer cleanup()
	if err := encoding.UnpackBits(deltas, packed, frame.Bits); err != nil {
		return nil, err
	}
	encoding.DeltaFrameRestore(values, deltas, frame)
	_ = encoding.ForEachSetBit(na, n, func(i int) { values[i] = node.NAInteger })

	return values, nil
}
