package section

// Stream header layout: [Magic][Version][Flags1][Flags2], followed by the
// body and, when the checksum flag is set, an 8-byte trailer.
const (
	HeaderSize   = 4          // fixed header size in bytes
	Magic        = 0x80 | 'Z' // first byte of every stream
	Version      = 1          // format version written by this package
	ChecksumSize = 8          // size of the xxHash64 trailer
)

// Flags1 bits.
const (
	ListRefsMask       = 0x01 // Mask for list reference mode (bit 0)
	CompressionMask    = 0x06 // Mask for body compression type (bits 1-2)
	CompressionShift   = 1    // Shift of the compression type
	ChecksumMask       = 0x08 // Mask for the checksum trailer bit (bit 3)
	Flags1ReservedMask = 0xF0 // Reserved bits, must be zero (bits 4-7)
)
