package codec

import (
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/arloliu/rzap/compress"
	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/hash"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/internal/refcache"
	"github.com/arloliu/rzap/node"
	"github.com/arloliu/rzap/section"
)

// Encoder serializes node trees into rzap streams.
//
// An Encoder only holds its configuration and is safe for concurrent use.
// Every call builds its own scratch buffers and reference caches and
// releases them before returning.
type Encoder struct {
	cfg *Config
}

// NewEncoder creates an Encoder.
//
// Parameters:
//   - opts: Encoding options, see the With* functions
//
// Returns:
//   - *Encoder: The encoder
//   - error: errs.ErrInvalidConfig for a rejected option
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode serializes n into a new stream.
func (e *Encoder) Encode(n node.Node) ([]byte, error) {
	return e.AppendEncode(nil, n)
}

// AppendEncode serializes n and appends the stream to dst.
func (e *Encoder) AppendEncode(dst []byte, n node.Node) ([]byte, error) {
	bb := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(bb)

	if err := e.encode(bb, n); err != nil {
		return dst, err
	}

	return append(dst, bb.B...), nil
}

// EncodeTo serializes n and writes the stream to w.
//
// Returns:
//   - int64: Number of bytes written to w
//   - error: Encoding error, or the error returned by w
func (e *Encoder) EncodeTo(w io.Writer, n node.Node) (int64, error) {
	bb := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(bb)

	if err := e.encode(bb, n); err != nil {
		return 0, err
	}

	return bb.WriteTo(w)
}

// Size returns the length of the stream Encode would produce for n.
func (e *Encoder) Size(n node.Node) (int, error) {
	bb := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(bb)

	if err := e.encode(bb, n); err != nil {
		return 0, err
	}

	return bb.Len(), nil
}

func (e *Encoder) encode(bb *pool.ByteBuffer, n node.Node) error {
	header := section.NewHeader()
	header.Flag.SetListRefs(e.cfg.listRefs)
	header.Flag.SetCompression(e.cfg.compression)
	header.Flag.SetChecksum(e.cfg.checksum)
	bb.B = header.Append(bb.B)

	w := newWriter(e.cfg, bb)
	defer w.close()

	if err := w.writeNode(n); err != nil {
		return err
	}

	bodyLen := bb.Len() - section.HeaderSize
	if e.cfg.compression != format.CompressionNone {
		codec, err := compress.GetCodec(e.cfg.compression)
		if err != nil {
			return err
		}
		compressed, err := codec.Compress(bb.B[section.HeaderSize:])
		if err != nil {
			return fmt.Errorf("compress body: %w", err)
		}
		bb.B = append(bb.B[:section.HeaderSize], compressed...)
	}
	if e.cfg.checksum {
		sum := hash.Checksum(bb.B[section.HeaderSize:])
		bb.B = endian.Wire().AppendUint64(bb.B, sum)
	}

	if ce := e.cfg.logger.Check(zap.DebugLevel, "encoded stream"); ce != nil {
		stats := compress.CompressionStats{
			Algorithm:      e.cfg.compression,
			OriginalSize:   int64(bodyLen),
			CompressedSize: int64(bb.Len() - section.HeaderSize),
		}
		ce.Write(
			zap.Int("nodes", w.count),
			zap.Int("body_bytes", bodyLen),
			zap.Int("stream_bytes", bb.Len()),
			zap.Stringer("compression", stats.Algorithm),
			zap.Float64("ratio", stats.CompressionRatio()),
			zap.Int("environments", w.envs.Len()),
		)
	}

	return nil
}

// writer holds the state of one encode call.
type writer struct {
	cfg     *Config
	out     *pool.ByteBuffer
	scratch *pool.Scratch
	envs    *refcache.Cache
	lists   *refcache.Cache
	base    int
	depth   int
	count   int
}

func newWriter(cfg *Config, out *pool.ByteBuffer) *writer {
	w := &writer{
		cfg:     cfg,
		out:     out,
		scratch: pool.NewScratch(),
		envs:    refcache.New(),
		base:    out.Len(),
	}
	if cfg.listRefs {
		w.lists = refcache.New()
	}

	return w
}

func (w *writer) close() {
	w.scratch.Close()
}

func (w *writer) writeByte(b byte) {
	w.out.B = append(w.out.B, b)
}

func (w *writer) writeKind(k format.Kind, sub uint8) {
	w.out.B = append(w.out.B, byte(k), sub)
}

func (w *writer) writeLen(n int) {
	w.out.B = encoding.AppendUvarint(w.out.B, uint64(n)) //nolint:gosec
}

func (w *writer) writeBuf(b []byte) {
	w.writeLen(len(b))
	w.out.B = append(w.out.B, b...)
}

func (w *writer) writeInt32(v int32) {
	w.out.B = endian.Wire().AppendUint32(w.out.B, uint32(v)) //nolint:gosec
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n node.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)

	return v.Kind() == reflect.Pointer && v.IsNil()
}

// writeNode writes n and, for every kind but null and opaque, its
// attributes block.
func (w *writer) writeNode(n node.Node) error {
	if w.depth >= w.cfg.maxDepth {
		return fmt.Errorf("writing node at depth %d: %w", w.depth, errs.ErrDepthExceeded)
	}

	start := w.out.Len()
	index := w.count
	w.count++
	w.depth++
	hasAttrs, opaque, err := w.dispatch(n)
	w.depth--
	if err != nil {
		return err
	}

	if w.cfg.observer != nil {
		w.cfg.observer(Record{
			Index:    index,
			Depth:    w.depth,
			Kind:     format.Kind(w.out.B[start] & format.KindMask),
			Start:    start - w.base,
			End:      w.out.Len() - w.base,
			Opaque:   opaque,
			HasAttrs: hasAttrs,
		})
	}

	return nil
}

func (w *writer) dispatch(n node.Node) (hasAttrs bool, opaque bool, err error) {
	if isNilNode(n) {
		w.writeByte(byte(format.KindNull))
		return false, false, nil
	}

	switch v := n.(type) {
	case node.Null:
		w.writeByte(byte(format.KindNull))
		return false, false, nil
	case *node.Logical:
		w.writeLogical(v)
	case *node.Integer:
		if nlevels, ok := w.cfg.factorDetector(v); ok {
			w.writeFactor(v, nlevels)
		} else {
			w.writeInteger(v)
		}
	case *node.Double:
		err = w.writeDouble(format.KindDouble, v.Values)
	case *node.Complex:
		err = w.writeDouble(format.KindComplex, complexAsFloats(v.Values))
	case *node.String:
		err = w.writeString(v)
	case *node.Raw:
		w.writeByte(byte(format.KindRaw))
		w.writeBuf(v.Bytes)
	case *node.List:
		err = w.writeList(v)
	case *node.Expression:
		err = w.writeSequence(format.KindExpression, v.Elems)
	case *node.Pairlist:
		err = w.writeCells(format.KindPairlist, v.Cells, true)
	case *node.Language:
		err = w.writeCells(format.KindLanguage, v.Cells, false)
	case *node.Symbol:
		err = w.writeSymbol(v)
	case *node.Closure:
		err = w.writeClosure(v)
	case *node.Environment:
		err = w.writeEnv(v)
	default:
		return false, true, w.writeOpaque(n)
	}
	if err != nil {
		return false, false, err
	}

	return true, false, w.writeAttrs(n.Attrs())
}

// writeAttrs writes the attributes block. Without an attribute list the
// class is not written either.
func (w *writer) writeAttrs(a *node.Attributes) error {
	if a == nil || node.IsNull(a.Attrib) {
		w.writeByte(byte(format.KindNull))
		w.writeByte(byte(format.KindNull))

		return nil
	}
	if err := w.writeNode(a.Attrib); err != nil {
		return err
	}

	return w.writeNode(a.Class)
}
