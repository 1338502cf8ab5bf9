package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/refcache"
	"github.com/arloliu/rzap/node"
)

// writeList writes a generic vector. With list references enabled, a list
// already written in this call is written as [List|FlagRef] varint(index).
func (w *writer) writeList(v *node.List) error {
	if w.lists != nil {
		key := refcache.IDKey(v.ID())
		if idx := w.lists.Lookup(key[:]); idx >= 0 {
			w.writeByte(byte(format.KindList) | format.FlagRef)
			w.writeLen(idx)

			return nil
		}
		want := w.lists.Len()
		if got := w.lists.Add(key[:]); got != want {
			return fmt.Errorf("list cache index %d, expected %d: %w", got, want, errs.ErrCacheMismatch)
		}
	}

	return w.writeSequence(format.KindList, v.Elems)
}

func (w *writer) writeSequence(kind format.Kind, elems []node.Node) error {
	w.writeByte(byte(kind))
	w.writeLen(len(elems))
	for _, el := range elems {
		if err := w.writeNode(el); err != nil {
			return err
		}
	}

	return nil
}

// writeCells writes a pairlist (tag before value) or a call (value before
// tag).
func (w *writer) writeCells(kind format.Kind, cells []node.Cell, tagFirst bool) error {
	w.writeByte(byte(kind))
	w.writeLen(len(cells))
	for _, c := range cells {
		first, second := c.Value, c.Tag
		if tagFirst {
			first, second = c.Tag, c.Value
		}
		if err := w.writeNode(first); err != nil {
			return err
		}
		if err := w.writeNode(second); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) writeSymbol(s *node.Symbol) error {
	if strings.IndexByte(s.Name, 0) >= 0 {
		return fmt.Errorf("symbol %q contains NUL: %w", s.Name, errs.ErrInvalidSymbol)
	}
	w.writeByte(byte(format.KindSymbol))
	w.writeLen(len(s.Name) + 1)
	w.out.B = append(w.out.B, s.Name...)
	w.writeByte(0)

	return nil
}

func (w *writer) writeClosure(c *node.Closure) error {
	w.writeByte(byte(format.KindClosure))
	if err := w.writeNode(c.Formals); err != nil {
		return err
	}
	if err := w.writeNode(c.Body); err != nil {
		return err
	}
	if err := w.writeNode(c.Env); err != nil {
		return err
	}

	return w.writeNode(c.Tag)
}

func (rd *readState) readRaw() (node.Node, error) {
	b, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if len(b) > rd.cfg.maxLength {
		return nil, fmt.Errorf("raw vector of %d bytes: %w", len(b), errs.ErrLengthExceeded)
	}

	return &node.Raw{Bytes: bytes.Clone(b)}, nil
}

// readElems reads n child nodes, Null elements kept as node.Nil.
func (rd *readState) readElems(n int) ([]node.Node, error) {
	elems := make([]node.Node, n)
	for i := range elems {
		el, err := rd.readNode()
		if err != nil {
			return nil, err
		}
		elems[i] = el
	}

	return elems, nil
}

// seqCount reads the length of a node sequence. Each child takes at least
// one byte, which bounds the count before allocation.
func (rd *readState) seqCount(perElem int) (int, error) {
	n, err := rd.count(rd.cfg.maxLength)
	if err != nil {
		return 0, err
	}
	if n > rd.remaining()/perElem {
		return 0, fmt.Errorf("%d children, %d bytes left: %w", n, rd.remaining(), errs.ErrTruncated)
	}

	return n, nil
}

// readList reads a generic vector or a back-reference to one. fresh is
// false for a back-reference.
func (rd *readState) readList(ref bool) (l *node.List, fresh bool, err error) {
	if ref {
		idx, err := rd.uvarint()
		if err != nil {
			return nil, false, err
		}
		if idx >= uint64(len(rd.lists)) {
			return nil, false, fmt.Errorf("list reference %d of %d: %w", idx, len(rd.lists), errs.ErrInvalidReference)
		}

		return rd.lists[idx], false, nil
	}

	n, err := rd.seqCount(1)
	if err != nil {
		return nil, false, err
	}
	l = &node.List{}
	if rd.listRefs {
		rd.lists = append(rd.lists, l)
	}
	if l.Elems, err = rd.readElems(n); err != nil {
		return nil, false, err
	}

	return l, true, nil
}

func (rd *readState) readExpression() (node.Node, error) {
	n, err := rd.seqCount(1)
	if err != nil {
		return nil, err
	}
	elems, err := rd.readElems(n)
	if err != nil {
		return nil, err
	}

	return &node.Expression{Elems: elems}, nil
}

func (rd *readState) readCells(tagFirst bool) ([]node.Cell, error) {
	n, err := rd.seqCount(2)
	if err != nil {
		return nil, err
	}
	cells := make([]node.Cell, n)
	for i := range cells {
		first, err := rd.readNode()
		if err != nil {
			return nil, err
		}
		second, err := rd.readNode()
		if err != nil {
			return nil, err
		}
		if tagFirst {
			cells[i] = node.Cell{Tag: orNil(first), Value: second}
		} else {
			cells[i] = node.Cell{Tag: orNil(second), Value: first}
		}
	}

	return cells, nil
}

func (rd *readState) readPairlist() (node.Node, error) {
	cells, err := rd.readCells(true)
	if err != nil {
		return nil, err
	}

	return &node.Pairlist{Cells: cells}, nil
}

func (rd *readState) readLanguage() (node.Node, error) {
	cells, err := rd.readCells(false)
	if err != nil {
		return nil, err
	}

	return &node.Language{Cells: cells}, nil
}

func (rd *readState) readSymbol() (node.Node, error) {
	b, err := rd.buf()
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || b[len(b)-1] != 0 {
		return nil, fmt.Errorf("symbol of %d bytes is not NUL terminated: %w", len(b), errs.ErrInvalidSymbol)
	}
	name := b[:len(b)-1]
	if bytes.IndexByte(name, 0) >= 0 {
		return nil, fmt.Errorf("symbol contains NUL: %w", errs.ErrInvalidSymbol)
	}

	return &node.Symbol{Name: string(name)}, nil
}

func (rd *readState) readClosure() (node.Node, error) {
	var slots [4]node.Node
	for i := range slots {
		n, err := rd.readNode()
		if err != nil {
			return nil, err
		}
		slots[i] = orNil(n)
	}

	c := &node.Closure{Formals: slots[0], Body: slots[1], Tag: slots[3]}
	if slots[2] != nil {
		env, ok := slots[2].(*node.Environment)
		if !ok {
			return nil, fmt.Errorf("closure environment is %s: %w", slots[2].Kind(), errs.ErrInvalidEnvironment)
		}
		c.Env = env
	}

	return c, nil
}
