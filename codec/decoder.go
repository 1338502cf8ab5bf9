package codec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/rzap/compress"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/hash"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
	"github.com/arloliu/rzap/section"
)

// Decoder reconstructs node trees from rzap streams.
//
// A Decoder only holds its configuration and is safe for concurrent use.
// Decoded vectors never alias the input stream.
type Decoder struct {
	cfg *Config
}

// NewDecoder creates a Decoder. Encoding options are accepted and ignored;
// the stream header decides how it is read.
func NewDecoder(opts ...Option) (*Decoder, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// Decode reads one node tree from data.
//
// Parameters:
//   - data: A complete stream, header included
//
// Returns:
//   - node.Node: The root node
//   - error: A format error for a corrupt or foreign stream, errs.ErrLengthExceeded
//     or errs.ErrDepthExceeded for a stream beyond the configured limits
func (d *Decoder) Decode(data []byte) (node.Node, error) {
	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if !header.VersionMatches() {
		d.cfg.logger.Warn("stream version mismatch, decoding anyway",
			zap.Uint8("stream_version", header.Version),
			zap.Uint8("supported_version", section.Version),
		)
	}

	body := data[section.HeaderSize:]
	if header.Flag.HasChecksum() {
		if len(body) < section.ChecksumSize {
			return nil, fmt.Errorf("checksum trailer of %d bytes: %w", len(body), errs.ErrTruncated)
		}
		split := len(body) - section.ChecksumSize
		want := endian.Wire().Uint64(body[split:])
		body = body[:split]
		if got := hash.Checksum(body); got != want {
			return nil, fmt.Errorf("body hash %016x, trailer %016x: %w", got, want, errs.ErrChecksumMismatch)
		}
	}

	if ct := header.Flag.Compression(); ct != format.CompressionNone {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return nil, err
		}
		if body, err = codec.Decompress(body); err != nil {
			return nil, fmt.Errorf("decompress body: %w", err)
		}
	}

	rd := newReadState(d.cfg, body, header.Flag.HasListRefs())
	defer rd.close()

	root, err := rd.readNode()
	if err != nil {
		return nil, err
	}
	if rd.remaining() != 0 {
		return nil, fmt.Errorf("%d bytes after root node: %w", rd.remaining(), errs.ErrTrailingData)
	}

	return root, nil
}

// readState holds the state of one decode call.
type readState struct {
	reader

	cfg      *Config
	scratch  *pool.Scratch
	envs     []*node.Environment
	lists    []*node.List
	listRefs bool
	resolve  EnvResolver
	depth    int
}

func newReadState(cfg *Config, body []byte, listRefs bool) *readState {
	rd := &readState{
		reader:   reader{data: body},
		cfg:      cfg,
		scratch:  pool.NewScratch(),
		listRefs: listRefs,
		resolve:  cfg.envResolver,
	}
	if rd.resolve == nil {
		rd.resolve = newPlaceholderResolver()
	}

	return rd
}

func (rd *readState) close() {
	rd.scratch.Close()
}

// orNil maps Null to nil for optional slots.
func orNil(n node.Node) node.Node {
	if node.IsNull(n) {
		return nil
	}

	return n
}

// readNode reads one node and its attributes block.
func (rd *readState) readNode() (node.Node, error) {
	if rd.depth >= rd.cfg.maxDepth {
		return nil, fmt.Errorf("reading node at depth %d: %w", rd.depth, errs.ErrDepthExceeded)
	}
	rd.depth++
	defer func() { rd.depth-- }()

	at := rd.off
	b, err := rd.readByte()
	if err != nil {
		return nil, err
	}
	kind := format.Kind(b & format.KindMask)
	flags := b & format.FlagMask
	if flags != 0 && (kind != format.KindList || flags != format.FlagRef) {
		return nil, fmt.Errorf("kind byte 0x%02x at offset %d: %w", b, at, errs.ErrUnknownKind)
	}

	// fresh reports whether n was built by this read and may take the
	// attributes that follow. Shared nodes, resolved or referenced, keep
	// their own.
	var n node.Node
	fresh := true
	switch kind {
	case format.KindNull:
		return node.Nil, nil
	case format.KindLogical:
		n, err = rd.readLogical()
	case format.KindInteger:
		n, err = rd.readInteger()
	case format.KindFactor:
		n, err = rd.readFactor()
	case format.KindDouble:
		n, err = rd.readDouble()
	case format.KindComplex:
		n, err = rd.readComplex()
	case format.KindString:
		n, err = rd.readString()
	case format.KindRaw:
		n, err = rd.readRaw()
	case format.KindList:
		n, fresh, err = rd.readList(flags == format.FlagRef)
	case format.KindExpression:
		n, err = rd.readExpression()
	case format.KindPairlist:
		n, err = rd.readPairlist()
	case format.KindLanguage:
		n, err = rd.readLanguage()
	case format.KindSymbol:
		n, err = rd.readSymbol()
	case format.KindClosure:
		n, err = rd.readClosure()
	case format.KindEnv:
		n, fresh, err = rd.readEnv()
	case format.KindOpaque:
		return rd.readOpaque()
	default:
		return nil, fmt.Errorf("kind byte 0x%02x at offset %d: %w", b, at, errs.ErrUnknownKind)
	}
	if err != nil {
		if leafKind(kind) {
			return nil, fmt.Errorf("%s at offset %d: %w", kind, at, err)
		}

		return nil, err
	}

	if err := rd.readAttrs(n, fresh); err != nil {
		return nil, err
	}

	return n, nil
}

// leafKind reports whether nodes of kind k have no child nodes. Errors are
// annotated at the leaf only, so a deep tree does not nest one message per
// level.
func leafKind(k format.Kind) bool {
	switch k {
	case format.KindLogical, format.KindInteger, format.KindFactor, format.KindDouble,
		format.KindComplex, format.KindString, format.KindRaw, format.KindSymbol:
		return true
	default:
		return false
	}
}

func (rd *readState) readAttrs(n node.Node, apply bool) error {
	attrib, err := rd.readNode()
	if err != nil {
		return err
	}
	class, err := rd.readNode()
	if err != nil {
		return err
	}

	if a := n.Attrs(); apply && a != nil {
		a.Attrib = orNil(attrib)
		a.Class = orNil(class)
	}

	return nil
}
