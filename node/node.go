// Package node is the value model rzap serializes: a closed set of node
// types mirroring the host runtime's tagged values.
//
// Vectors hold their elements in plain Go slices. NA integers and logicals
// are math.MinInt32 (NAInteger), NA doubles are the host's NA bit pattern or
// any NaN, and NA strings are flagged in a parallel []bool. Generic vectors,
// pairlists and expressions hold child nodes; environments and closures
// reference other environments.
//
// Every node but Null may carry an attribute list and a class, both
// themselves nodes.
package node

import (
	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/format"
)

// NAInteger is the missing-value marker of Logical and Integer vectors.
const NAInteger = encoding.NAInteger

// Node is a value that can be serialized.
type Node interface {
	// Kind returns the node's wire kind.
	Kind() format.Kind
	// Attrs returns the node's attribute slots, or nil for Null.
	Attrs() *Attributes
}

// Attributes are the optional attribute list and class of a node. Embedding
// Attributes gives a node type its Attrs method.
type Attributes struct {
	Attrib Node // Attrib is usually a *Pairlist of tagged values.
	Class  Node // Class is usually a *String.
}

// Attrs returns a.
func (a *Attributes) Attrs() *Attributes {
	return a
}

// Null is the empty value.
type Null struct{}

// Nil is the Null value.
var Nil Node = Null{}

func (Null) Kind() format.Kind  { return format.KindNull }
func (Null) Attrs() *Attributes { return nil }

// IsNull reports whether n is nil or Null.
func IsNull(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(Null)

	return ok
}

// Logical is a tri-state boolean vector: 0, 1 or NAInteger.
type Logical struct {
	Attributes
	Values []int32
}

func (*Logical) Kind() format.Kind { return format.KindLogical }
func (v *Logical) Len() int        { return len(v.Values) }

// Integer is a 32-bit integer vector. Factors are Integers whose attributes
// mark them as such, see FactorLevels.
type Integer struct {
	Attributes
	Values []int32
}

func (*Integer) Kind() format.Kind { return format.KindInteger }
func (v *Integer) Len() int        { return len(v.Values) }

// Double is a float64 vector.
type Double struct {
	Attributes
	Values []float64
}

func (*Double) Kind() format.Kind { return format.KindDouble }
func (v *Double) Len() int        { return len(v.Values) }

// Complex is a complex128 vector.
type Complex struct {
	Attributes
	Values []complex128
}

func (*Complex) Kind() format.Kind { return format.KindComplex }
func (v *Complex) Len() int        { return len(v.Values) }

// String is a string vector. NA is nil when no element is NA; otherwise it
// has one flag per element and the string of an NA element is ignored.
type String struct {
	Attributes
	Values []string
	NA     []bool
}

func (*String) Kind() format.Kind { return format.KindString }
func (v *String) Len() int        { return len(v.Values) }

// IsNA reports whether element i is NA.
func (v *String) IsNA(i int) bool {
	return v.NA != nil && v.NA[i]
}

// Raw is a byte vector.
type Raw struct {
	Attributes
	Bytes []byte
}

func (*Raw) Kind() format.Kind { return format.KindRaw }
func (v *Raw) Len() int        { return len(v.Bytes) }

// List is a generic vector. Lists have identity: when list references are
// enabled, a List reachable more than once is serialized once.
type List struct {
	Attributes
	identity
	Elems []Node
}

func (*List) Kind() format.Kind { return format.KindList }
func (v *List) Len() int        { return len(v.Elems) }

// Expression is a sequence of calls, symbols and constants.
type Expression struct {
	Attributes
	Elems []Node
}

func (*Expression) Kind() format.Kind { return format.KindExpression }
func (v *Expression) Len() int        { return len(v.Elems) }

// Cell is one element of a Pairlist or Language node. Tag is a *Symbol or
// nil.
type Cell struct {
	Tag   Node
	Value Node
}

// Pairlist is a list of optionally tagged values, typically an attribute
// list or formal arguments.
type Pairlist struct {
	Attributes
	Cells []Cell
}

func (*Pairlist) Kind() format.Kind { return format.KindPairlist }
func (v *Pairlist) Len() int        { return len(v.Cells) }

// Language is a call: the first cell holds the function, the rest its
// arguments.
type Language struct {
	Attributes
	Cells []Cell
}

func (*Language) Kind() format.Kind { return format.KindLanguage }
func (v *Language) Len() int        { return len(v.Cells) }

// Symbol is a name. The empty name is the missing-argument marker.
type Symbol struct {
	Attributes
	Name string
}

func (*Symbol) Kind() format.Kind { return format.KindSymbol }

// IsMissing reports whether s is the missing-argument marker.
func (s *Symbol) IsMissing() bool {
	return s.Name == ""
}

// MissingArg returns a new missing-argument marker.
func MissingArg() *Symbol {
	return &Symbol{}
}

// IsMissingArg reports whether n is the missing-argument marker.
func IsMissingArg(n Node) bool {
	s, ok := n.(*Symbol)
	return ok && s.IsMissing()
}

// Closure is a function: formal arguments, body and enclosing environment.
// Tag optionally names the function.
type Closure struct {
	Attributes
	Formals Node
	Body    Node
	Env     *Environment
	Tag     Node
}

func (*Closure) Kind() format.Kind { return format.KindClosure }

// Opaque is a value serialized by the host rather than by rzap. Blob is the
// host's serialization; rzap stores it verbatim.
type Opaque struct {
	Blob []byte
}

func (*Opaque) Kind() format.Kind  { return format.KindOpaque }
func (*Opaque) Attrs() *Attributes { return nil }
