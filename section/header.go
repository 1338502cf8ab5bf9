package section

import (
	"fmt"

	"github.com/arloliu/rzap/errs"
)

// Header is the 4-byte header at the start of every stream.
type Header struct {
	Version uint8
	Flag    Flag
}

// NewHeader creates a header for the current version with every flag clear.
func NewHeader() Header {
	return Header{Version: Version}
}

// VersionMatches reports whether the stream was written by this format
// version.
func (h Header) VersionMatches() bool {
	return h.Version == Version
}

// Append appends the serialized header to dst.
func (h Header) Append(dst []byte) []byte {
	return append(dst, Magic, h.Version, h.Flag.Flags1, h.Flag.Flags2)
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	return h.Append(make([]byte, 0, HeaderSize))
}

// ParseHeader parses a header from the start of data.
//
// Parameters:
//   - data: Stream bytes, at least HeaderSize long
//
// Returns:
//   - Header: Parsed header
//   - error: ErrInvalidHeaderSize if data is too short, ErrInvalidMagic for a
//     foreign stream, ErrInvalidHeaderFlags for reserved bits
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("stream of %d bytes: %w", len(data), errs.ErrInvalidHeaderSize)
	}
	if data[0] != Magic {
		return Header{}, fmt.Errorf("first byte 0x%02x, expected 0x%02x: %w", data[0], Magic, errs.ErrInvalidMagic)
	}

	h := Header{
		Version: data[1],
		Flag:    Flag{Flags1: data[2], Flags2: data[3]},
	}
	if err := h.Flag.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
