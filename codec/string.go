package codec

import (
	"fmt"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
)

// writeString writes a string vector.
//
// Mega layout: the joined length, then the NA bitmap and the joined bytes.
// When the joined length equals the element count every element is the
// empty string and both buffers are omitted.
func (w *writer) writeString(v *node.String) error {
	n := len(v.Values)
	if v.NA != nil && len(v.NA) != n {
		return fmt.Errorf("string vector of %d values with %d NA flags: %w", n, len(v.NA), errs.ErrInvalidLength)
	}

	enc := w.cfg.str
	if n < w.cfg.stringThreshold || !encoding.MegaStringEligible(v.Values, v.NA) {
		enc = format.StringRaw
	}

	if enc == format.StringRaw {
		w.writeKind(format.KindString, uint8(format.StringRaw))
		w.writeLen(n)
		for i, s := range v.Values {
			if v.IsNA(i) {
				w.writeByte(1)
				continue
			}
			w.writeByte(0)
			w.writeLen(len(s))
			w.out.B = append(w.out.B, s...)
		}

		return nil
	}

	tb := w.scratch.Acquire(pool.RoleTransform)
	defer w.scratch.Release(pool.RoleTransform)
	joined, err := encoding.AppendMegaString(tb.B, v.Values, v.NA)
	if err != nil {
		return err
	}
	tb.B = joined

	w.writeKind(format.KindString, uint8(format.StringMega))
	w.writeLen(n)
	if n == 0 {
		return nil
	}
	w.writeLen(len(joined))
	if len(joined) == n {
		return nil
	}

	bm := w.scratch.Acquire(pool.RoleBitmap)
	defer w.scratch.Release(pool.RoleBitmap)
	if v.NA != nil {
		bm.B = encoding.AppendBoolBitmap(bm.B, v.NA)
	} else {
		bm.B = append(bm.B, make([]byte, encoding.BitmapLen(n))...)
	}
	w.writeBuf(bm.B)
	w.writeBuf(joined)

	return nil
}

func (rd *readState) readString() (node.Node, error) {
	sub, err := rd.readByte()
	if err != nil {
		return nil, err
	}
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return nil, err
	}

	switch format.StringEncoding(sub) {
	case format.StringRaw:
		return rd.readRawStrings(n)
	case format.StringMega:
		return rd.readMegaString(n)
	default:
		return nil, fmt.Errorf("string sub-encoding %d: %w", sub, errs.ErrUnknownEncoding)
	}
}

func (rd *readState) readRawStrings(n int) (*node.String, error) {
	// Each element takes at least its NA flag byte.
	if n > rd.remaining() {
		return nil, fmt.Errorf("%d strings, %d bytes left: %w", n, rd.remaining(), errs.ErrTruncated)
	}

	v := &node.String{Values: make([]string, n)}
	for i := range n {
		flag, err := rd.readByte()
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			b, err := rd.buf()
			if err != nil {
				return nil, err
			}
			v.Values[i] = string(b)
		case 1:
			if v.NA == nil {
				v.NA = make([]bool, n)
			}
			v.NA[i] = true
		default:
			return nil, fmt.Errorf("NA flag %d of element %d: %w", flag, i, errs.ErrInvalidString)
		}
	}

	return v, nil
}

func (rd *readState) readMegaString(n int) (*node.String, error) {
	if n == 0 {
		return &node.String{Values: []string{}}, nil
	}

	total, err := rd.uvarint()
	if err != nil {
		return nil, err
	}
	if total >= encoding.MaxMegaStringTotal {
		return nil, fmt.Errorf("mega-string of %d bytes: %w", total, errs.ErrStringTooLong)
	}
	if total == uint64(n) {
		return &node.String{Values: make([]string, n)}, nil
	}

	bitmap, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if err := encoding.CheckBitmap(bitmap, n); err != nil {
		return nil, err
	}
	joined, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if uint64(len(joined)) != total || len(joined) < n {
		return nil, fmt.Errorf("mega-string of %d bytes, header says %d for %d strings: %w",
			len(joined), total, n, errs.ErrInvalidString)
	}

	v := &node.String{Values: make([]string, n)}
	if err := encoding.SplitMegaString(v.Values, joined); err != nil {
		return nil, err
	}
	_ = encoding.ForEachSetBit(bitmap, n, func(i int) {
		if v.NA == nil {
			v.NA = make([]bool, n)
		}
		v.NA[i] = true
		v.Values[i] = ""
	})

	return v, nil
}
