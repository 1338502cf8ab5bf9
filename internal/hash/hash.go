// Package hash provides the two hash functions rzap needs: FNV-1a for
// reference cache buckets and xxHash64 for the optional stream checksum.
package hash

import "github.com/cespare/xxhash/v2"

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3
)

// FNV1a computes the 64-bit FNV-1a hash of data.
func FNV1a(data []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}

	return h
}

// Checksum computes the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
