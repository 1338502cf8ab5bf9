package format

import (
	"fmt"

	"github.com/arloliu/rzap/errs"
)

type (
	// Kind is the node kind carried in the low 5 bits of a kind byte.
	Kind uint8

	LogicalEncoding uint8
	IntegerEncoding uint8
	FactorEncoding  uint8
	DoubleEncoding  uint8
	StringEncoding  uint8
	CompressionType uint8
)

// Node kinds. The numbering mirrors the host runtime's type tags; KindFactor
// and KindOpaque are private extensions.
const (
	KindNull       Kind = 0  // KindNull is the empty value.
	KindSymbol     Kind = 1  // KindSymbol is a name or the missing-argument marker.
	KindPairlist   Kind = 2  // KindPairlist is a tagged cons list.
	KindClosure    Kind = 3  // KindClosure is a function with its enclosing environment.
	KindEnv        Kind = 4  // KindEnv is an environment.
	KindLanguage   Kind = 6  // KindLanguage is a call.
	KindLogical    Kind = 10 // KindLogical is a tri-state boolean vector.
	KindInteger    Kind = 13 // KindInteger is a 32-bit integer vector.
	KindDouble     Kind = 14 // KindDouble is a float64 vector.
	KindComplex    Kind = 15 // KindComplex is a complex128 vector.
	KindString     Kind = 16 // KindString is a string vector.
	KindList       Kind = 19 // KindList is a generic vector.
	KindExpression Kind = 20 // KindExpression is an expression sequence.
	KindRaw        Kind = 24 // KindRaw is a byte vector.
	KindFactor     Kind = 30 // KindFactor is a bit-packed categorical vector.
	KindOpaque     Kind = 31 // KindOpaque is a host-serialized blob.
)

// Kind byte layout.
const (
	KindMask     = 0x1f // KindMask selects the node kind from a kind byte.
	FlagMask     = 0xe0 // FlagMask selects the per-kind side flags.
	FlagRef byte = 0x80 // FlagRef marks a generic vector back-reference.
)

const (
	LogicalRaw    LogicalEncoding = 0 // LogicalRaw stores 4 bytes per element.
	LogicalPacked LogicalEncoding = 1 // LogicalPacked stores truth and NA bitmaps.

	IntegerRaw        IntegerEncoding = 0 // IntegerRaw stores 4 bytes per element.
	IntegerZigZag     IntegerEncoding = 1 // IntegerZigZag stores zigzag + delta-shuffle.
	IntegerDeltaFrame IntegerEncoding = 2 // IntegerDeltaFrame stores bit-packed deltas.

	FactorRaw    FactorEncoding = 0 // FactorRaw defers to raw integer encoding.
	FactorPacked FactorEncoding = 1 // FactorPacked bit-packs level codes.

	DoubleRaw          DoubleEncoding = 0 // DoubleRaw stores 8 bytes per element.
	DoubleShuffle      DoubleEncoding = 1 // DoubleShuffle byte-plane transposes.
	DoubleDeltaShuffle DoubleEncoding = 2 // DoubleDeltaShuffle transposes and deltas.
	DoubleALP          DoubleEncoding = 3 // DoubleALP scales to integers with patches.

	StringRaw  StringEncoding = 0 // StringRaw stores NA flag and length per element.
	StringMega StringEncoding = 1 // StringMega stores one NUL-joined buffer.

	CompressionNone CompressionType = 0x0 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x1 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x2 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x3 // CompressionLZ4 represents LZ4 compression.
)

var kindNames = map[Kind]string{
	KindNull:       "Null",
	KindSymbol:     "Symbol",
	KindPairlist:   "Pairlist",
	KindClosure:    "Closure",
	KindEnv:        "Environment",
	KindLanguage:   "Language",
	KindLogical:    "Logical",
	KindInteger:    "Integer",
	KindDouble:     "Double",
	KindComplex:    "Complex",
	KindString:     "String",
	KindList:       "List",
	KindExpression: "Expression",
	KindRaw:        "Raw",
	KindFactor:     "Factor",
	KindOpaque:     "Opaque",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a kind the codec understands.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (e LogicalEncoding) String() string {
	switch e {
	case LogicalRaw:
		return "raw"
	case LogicalPacked:
		return "packed"
	default:
		return "unknown"
	}
}

func (e IntegerEncoding) String() string {
	switch e {
	case IntegerRaw:
		return "raw"
	case IntegerZigZag:
		return "zzshuf"
	case IntegerDeltaFrame:
		return "deltaframe"
	default:
		return "unknown"
	}
}

func (e FactorEncoding) String() string {
	switch e {
	case FactorRaw:
		return "raw"
	case FactorPacked:
		return "packed"
	default:
		return "unknown"
	}
}

func (e DoubleEncoding) String() string {
	switch e {
	case DoubleRaw:
		return "raw"
	case DoubleShuffle:
		return "shuffle"
	case DoubleDeltaShuffle:
		return "delta_shuffle"
	case DoubleALP:
		return "alp"
	default:
		return "unknown"
	}
}

func (e StringEncoding) String() string {
	switch e {
	case StringRaw:
		return "raw"
	case StringMega:
		return "mega"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseLogicalEncoding maps an option name ("raw", "packed") to its encoding.
func ParseLogicalEncoding(name string) (LogicalEncoding, error) {
	switch name {
	case "raw":
		return LogicalRaw, nil
	case "packed":
		return LogicalPacked, nil
	default:
		return 0, fmt.Errorf("logical encoding %q: %w", name, errs.ErrUnknownEncoding)
	}
}

// ParseIntegerEncoding maps an option name ("raw", "zzshuf", "deltaframe") to its encoding.
func ParseIntegerEncoding(name string) (IntegerEncoding, error) {
	switch name {
	case "raw":
		return IntegerRaw, nil
	case "zzshuf":
		return IntegerZigZag, nil
	case "deltaframe":
		return IntegerDeltaFrame, nil
	default:
		return 0, fmt.Errorf("integer encoding %q: %w", name, errs.ErrUnknownEncoding)
	}
}

// ParseFactorEncoding maps an option name ("raw", "packed") to its encoding.
func ParseFactorEncoding(name string) (FactorEncoding, error) {
	switch name {
	case "raw":
		return FactorRaw, nil
	case "packed":
		return FactorPacked, nil
	default:
		return 0, fmt.Errorf("factor encoding %q: %w", name, errs.ErrUnknownEncoding)
	}
}

// ParseDoubleEncoding maps an option name ("raw", "shuffle", "delta_shuffle", "alp") to its encoding.
func ParseDoubleEncoding(name string) (DoubleEncoding, error) {
	switch name {
	case "raw":
		return DoubleRaw, nil
	case "shuffle":
		return DoubleShuffle, nil
	case "delta_shuffle":
		return DoubleDeltaShuffle, nil
	case "alp":
		return DoubleALP, nil
	default:
		return 0, fmt.Errorf("double encoding %q: %w", name, errs.ErrUnknownEncoding)
	}
}

// ParseStringEncoding maps an option name ("raw", "mega") to its encoding.
func ParseStringEncoding(name string) (StringEncoding, error) {
	switch name {
	case "raw":
		return StringRaw, nil
	case "mega":
		return StringMega, nil
	default:
		return 0, fmt.Errorf("string encoding %q: %w", name, errs.ErrUnknownEncoding)
	}
}
