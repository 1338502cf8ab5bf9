package codec

import (
	"bytes"
	"fmt"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/node"
)

// blobCodec is the default OpaqueCodec. It stores the blob of a
// *node.Opaque verbatim and rejects every other node.
type blobCodec struct{}

func (blobCodec) MarshalOpaque(n node.Node) ([]byte, error) {
	o, ok := n.(*node.Opaque)
	if !ok {
		return nil, fmt.Errorf("%T: %w", n, errs.ErrUnsupportedNode)
	}

	return o.Blob, nil
}

func (blobCodec) UnmarshalOpaque(blob []byte) (node.Node, error) {
	return &node.Opaque{Blob: bytes.Clone(blob)}, nil
}

// writeOpaque writes n through the configured OpaqueCodec. No attributes
// block follows: the blob carries them.
func (w *writer) writeOpaque(n node.Node) error {
	blob, err := w.cfg.opaque.MarshalOpaque(n)
	if err != nil {
		return err
	}
	w.writeByte(byte(format.KindOpaque))
	w.writeBuf(blob)

	return nil
}

func (rd *readState) readOpaque() (node.Node, error) {
	blob, err := rd.buf()
	if err != nil {
		return nil, err
	}
	n, err := rd.cfg.opaque.UnmarshalOpaque(blob)
	if err != nil {
		return nil, fmt.Errorf("opaque blob of %d bytes: %w", len(blob), err)
	}
	if n == nil {
		return node.Nil, nil
	}

	return n, nil
}
