package section

import (
	"fmt"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
)

// Flag holds the two flag bytes of the header.
type Flag struct {
	// Flags1 is a packed field of stream options.
	// Bit 0 is list reference mode.
	// Bit 1-2 are the body compression type.
	// Bit 3 marks a checksum trailer.
	// Bit 4-7 are reserved and must be 0.
	Flags1 uint8
	// Flags2 is reserved and must be 0.
	Flags2 uint8
}

// HasListRefs returns whether shared lists are written as references.
func (f Flag) HasListRefs() bool {
	return f.Flags1&ListRefsMask != 0
}

// SetListRefs enables or disables list reference mode.
func (f *Flag) SetListRefs(enabled bool) {
	if enabled {
		f.Flags1 |= ListRefsMask
	} else {
		f.Flags1 &^= ListRefsMask
	}
}

// Compression returns the body compression type.
func (f Flag) Compression() format.CompressionType {
	return format.CompressionType((f.Flags1 & CompressionMask) >> CompressionShift)
}

// SetCompression sets the body compression type. Only the low two bits of
// c are kept.
func (f *Flag) SetCompression(c format.CompressionType) {
	f.Flags1 = f.Flags1&^CompressionMask | (uint8(c)<<CompressionShift)&CompressionMask
}

// HasChecksum returns whether the stream ends with a checksum trailer.
func (f Flag) HasChecksum() bool {
	return f.Flags1&ChecksumMask != 0
}

// SetChecksum enables or disables the checksum trailer.
func (f *Flag) SetChecksum(enabled bool) {
	if enabled {
		f.Flags1 |= ChecksumMask
	} else {
		f.Flags1 &^= ChecksumMask
	}
}

// Validate rejects reserved bits that are set.
//
// Returns:
//   - error: errs.ErrInvalidHeaderFlags if a reserved bit is set
func (f Flag) Validate() error {
	if f.Flags1&Flags1ReservedMask != 0 {
		return fmt.Errorf("flags1 0x%02x has reserved bits set: %w", f.Flags1, errs.ErrInvalidHeaderFlags)
	}
	if f.Flags2 != 0 {
		return fmt.Errorf("flags2 0x%02x is not zero: %w", f.Flags2, errs.ErrInvalidHeaderFlags)
	}

	return nil
}
