// Package errs defines the sentinel errors returned by rzap and a coarse
// classification of them.
//
// Errors are returned wrapped with context (kind byte, offsets, expected vs.
// found values); use errors.Is against the sentinels below, or KindOf to get
// the error class.
package errs

import "errors"

// Format errors: the stream is corrupt, truncated or was not produced by rzap.
var (
	ErrInvalidMagic          = errors.New("invalid stream magic")
	ErrInvalidHeaderSize     = errors.New("invalid stream header size")
	ErrInvalidHeaderFlags    = errors.New("invalid stream header flags")
	ErrUnknownKind           = errors.New("unknown kind byte")
	ErrUnknownEncoding       = errors.New("unknown sub-encoding")
	ErrTruncated             = errors.New("unexpected end of stream")
	ErrVarintOverflow        = errors.New("varint overflows 64 bits")
	ErrInvalidLength         = errors.New("invalid length")
	ErrInvalidBitWidth       = errors.New("invalid bit width")
	ErrInvalidPackedSize     = errors.New("packed buffer size does not match element count")
	ErrInvalidReference      = errors.New("reference index out of range")
	ErrInvalidALPParams      = errors.New("invalid ALP parameters")
	ErrInvalidPatchIndex     = errors.New("ALP patch index out of range")
	ErrInvalidEnvironment    = errors.New("invalid environment tag")
	ErrInvalidSymbol         = errors.New("invalid symbol")
	ErrInvalidString         = errors.New("invalid string payload")
	ErrTrailingData          = errors.New("trailing data after root node")
	ErrChecksumMismatch      = errors.New("stream checksum mismatch")
	ErrUnsupportedCompressor = errors.New("unsupported compression type")
)

// Limit errors: the input is well formed but exceeds a hard size limit.
var (
	ErrStringTooLong  = errors.New("total string length exceeds 2^32")
	ErrLengthExceeded = errors.New("vector length exceeds configured maximum")
	ErrDepthExceeded  = errors.New("nesting depth exceeds configured maximum")
)

// Internal errors: invariant violations that indicate a bug or a crafted stream.
var (
	ErrCacheMismatch     = errors.New("reference cache insertion index mismatch")
	ErrDeltaFrameInvalid = errors.New("deltaframe fallback sentinel in stream")
	ErrInvalidConfig     = errors.New("invalid codec configuration")
)

// Unsupported errors: the node graph contains something rzap cannot encode.
var (
	ErrUnsupportedNode = errors.New("unsupported node type")
	ErrNilEnvironment  = errors.New("nil environment")
)

// Kind classifies an error returned by rzap.
type Kind uint8

const (
	KindUnknown     Kind = iota // KindUnknown is any error not produced by rzap.
	KindFormat                  // KindFormat marks corrupt or foreign input.
	KindLimit                   // KindLimit marks input exceeding a hard size limit.
	KindInternal                // KindInternal marks a violated internal invariant.
	KindUnsupported             // KindUnsupported marks a node rzap cannot encode.
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "Format"
	case KindLimit:
		return "Limit"
	case KindInternal:
		return "Internal"
	case KindUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

var kindTable = []struct {
	kind Kind
	errs []error
}{
	{KindFormat, []error{
		ErrInvalidMagic, ErrInvalidHeaderSize, ErrInvalidHeaderFlags, ErrUnknownKind,
		ErrUnknownEncoding, ErrTruncated, ErrVarintOverflow, ErrInvalidLength,
		ErrInvalidBitWidth, ErrInvalidPackedSize, ErrInvalidReference, ErrInvalidALPParams,
		ErrInvalidPatchIndex, ErrInvalidEnvironment, ErrInvalidSymbol, ErrInvalidString,
		ErrTrailingData, ErrChecksumMismatch, ErrUnsupportedCompressor,
	}},
	{KindLimit, []error{
		ErrStringTooLong, ErrLengthExceeded, ErrDepthExceeded,
	}},
	{KindInternal, []error{ErrCacheMismatch, ErrDeltaFrameInvalid, ErrInvalidConfig}},
	{KindUnsupported, []error{ErrUnsupportedNode, ErrNilEnvironment}},
}

// KindOf reports the class of err, or KindUnknown when err does not wrap an
// rzap sentinel.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for _, entry := range kindTable {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return entry.kind
			}
		}
	}

	return KindUnknown
}
