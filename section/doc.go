// Package section defines the fixed-size parts of an rzap stream: the
// 4-byte header and the optional checksum trailer.
//
// # Stream Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (4 bytes, fixed)                                 │
//	│  - Magic: 0x80 | 'Z'                                    │
//	│  - Version                                              │
//	│  - Flags1: list refs, compression, checksum             │
//	│  - Flags2: reserved, zero                               │
//	├─────────────────────────────────────────────────────────┤
//	│ Body (variable)                                         │
//	│  - The root node, optionally compressed as a whole      │
//	├─────────────────────────────────────────────────────────┤
//	│ Checksum (8 bytes, optional)                            │
//	│  - xxHash64 of the stored body, little-endian           │
//	└─────────────────────────────────────────────────────────┘
//
// # Flag Format
//
//	Flags1:
//	  Bit 0:   List reference mode (0=inline, 1=shared lists written once)
//	  Bit 1-2: Body compression (0=none, 1=zstd, 2=s2, 3=lz4)
//	  Bit 3:   Checksum trailer present
//	  Bit 4-7: Reserved, must be 0
//
//	Flags2: reserved, must be 0
//
// With every flag clear a stream is the header followed directly by the
// uncompressed root node.
//
// A version other than Version is not rejected here; the decoder reports it
// and carries on.
package section
