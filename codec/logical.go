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

// writeLogical writes a logical vector.
//
// Packed layout: truth bitmap then NA bitmap, each length-prefixed, both
// omitted for an empty vector.
func (w *writer) writeLogical(v *node.Logical) {
	n := len(v.Values)
	enc := w.cfg.logical
	if n < w.cfg.logicalThreshold {
		enc = format.LogicalRaw
	}

	w.writeKind(format.KindLogical, uint8(enc))
	w.writeLen(n)

	if enc == format.LogicalRaw {
		w.out.B = endian.AppendInt32s(w.out.B, v.Values)
		return
	}
	if n == 0 {
		return
	}

	bm := w.scratch.Acquire(pool.RoleBitmap)
	defer w.scratch.Release(pool.RoleBitmap)

	bm.B = encoding.AppendTruthBitmap(bm.B, v.Values)
	w.writeBuf(bm.B)
	bm.Reset()
	bm.B = encoding.AppendNABitmap(bm.B, v.Values)
	w.writeBuf(bm.B)
}

func (rd *readState) readLogical() (node.Node, error) {
	sub, err := rd.readByte()
	if err != nil {
		return nil, err
	}
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return nil, err
	}

	switch format.LogicalEncoding(sub) {
	case format.LogicalRaw:
		values, err := rd.readInt32s(n)
		if err != nil {
			return nil, err
		}

		return &node.Logical{Values: values}, nil
	case format.LogicalPacked:
		if n == 0 {
			return &node.Logical{Values: []int32{}}, nil
		}
		truth, err := rd.buf()
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
		if err := encoding.CheckBitmap(truth, n); err != nil {
			return nil, err
		}

		values := make([]int32, n)
		if err := encoding.UnpackBitmapInt32(values, truth); err != nil {
			return nil, err
		}
		_ = encoding.ForEachSetBit(na, n, func(i int) { values[i] = node.NAInteger })

		return &node.Logical{Values: values}, nil
	default:
		return nil, fmt.Errorf("logical sub-encoding %d: %w", sub, errs.ErrUnknownEncoding)
	}
}

// readInt32s reads n raw little-endian int32 values.
func (rd *readState) readInt32s(n int) ([]int32, error) {
	if n > rd.remaining()/4 {
		return nil, fmt.Errorf("%d int32 values, %d bytes left: %w", n, rd.remaining(), errs.ErrTruncated)
	}
	b, err := rd.next(4 * n)
	if err != nil {
		return nil, err
	}
	values := make([]int32, n)
	endian.Int32s(values, b)

	return values, nil
}
