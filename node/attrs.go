package node

import (
	"github.com/samber/lo"
)

// NewLogical creates a logical vector.
func NewLogical(values ...int32) *Logical { return &Logical{Values: values} }

// NewInteger creates an integer vector.
func NewInteger(values ...int32) *Integer { return &Integer{Values: values} }

// NewDouble creates a double vector.
func NewDouble(values ...float64) *Double { return &Double{Values: values} }

// NewString creates a string vector without NA elements.
func NewString(values ...string) *String { return &String{Values: values} }

// NewList creates a generic vector.
func NewList(elems ...Node) *List { return &List{Elems: elems} }

// NewPairlist creates a pairlist.
func NewPairlist(cells ...Cell) *Pairlist { return &Pairlist{Cells: cells} }

// Sym creates a symbol.
func Sym(name string) *Symbol { return &Symbol{Name: name} }

// Tagged creates a pairlist cell tagged with name.
func Tagged(name string, value Node) Cell {
	return Cell{Tag: Sym(name), Value: value}
}

// TagName returns the name of a cell's tag, or "" when it has none.
func (c Cell) TagName() string {
	if s, ok := c.Tag.(*Symbol); ok {
		return s.Name
	}

	return ""
}

// Attr returns the attribute called name, or nil.
func Attr(n Node, name string) Node {
	attrs := n.Attrs()
	if attrs == nil {
		return nil
	}
	list, ok := attrs.Attrib.(*Pairlist)
	if !ok {
		return nil
	}
	cell, found := lo.Find(list.Cells, func(c Cell) bool { return c.TagName() == name })
	if !found {
		return nil
	}

	return cell.Value
}

// SetAttr sets the attribute called name, replacing an existing one.
// Setting "class" also sets the node's class slot.
func SetAttr(n Node, name string, value Node) {
	attrs := n.Attrs()
	if attrs == nil {
		return
	}

	list, ok := attrs.Attrib.(*Pairlist)
	if !ok {
		list = &Pairlist{}
		attrs.Attrib = list
	}
	if _, i, found := lo.FindIndexOf(list.Cells, func(c Cell) bool { return c.TagName() == name }); found {
		list.Cells[i].Value = value
	} else {
		list.Cells = append(list.Cells, Tagged(name, value))
	}

	if name == "class" {
		attrs.Class = value
	}
}

// Classes returns the class names of n.
func Classes(n Node) []string {
	attrs := n.Attrs()
	if attrs == nil {
		return nil
	}
	class, ok := attrs.Class.(*String)
	if !ok {
		return nil
	}

	return lo.Reject(class.Values, func(_ string, i int) bool { return class.IsNA(i) })
}

// Inherits reports whether class is one of the class names of n.
func Inherits(n Node, class string) bool {
	return lo.Contains(Classes(n), class)
}

// NewFactor creates a factor: 1-based level codes (NAInteger for NA) with
// their level labels.
func NewFactor(codes []int32, levels ...string) *Integer {
	v := NewInteger(codes...)
	SetAttr(v, "levels", NewString(levels...))
	SetAttr(v, "class", NewString("factor"))

	return v
}

// FactorLevels reports whether v is a factor and, if so, its number of
// levels.
func FactorLevels(v *Integer) (int, bool) {
	if !Inherits(v, "factor") {
		return 0, false
	}
	levels, ok := Attr(v, "levels").(*String)
	if !ok {
		return 0, false
	}

	return levels.Len(), true
}
