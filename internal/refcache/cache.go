// Package refcache maps the identity of an already-serialized object to the
// order in which it was first seen, so later occurrences can be written as a
// short back-reference.
package refcache

import (
	"encoding/binary"

	"github.com/arloliu/rzap/internal/hash"
)

// DefaultBuckets is the bucket count used by New.
const DefaultBuckets = 64

type entry struct {
	key   string
	index int
}

// Cache is a fixed-bucket hash table keyed by opaque byte strings, hashed
// with FNV-1a. Each bucket grows independently.
//
// Add does not check for an existing key: callers Lookup first. A Cache
// lives for one encode call and is not safe for concurrent use.
type Cache struct {
	buckets [][]entry
	count   int
}

// New creates a cache with DefaultBuckets buckets.
func New() *Cache {
	return NewWithBuckets(DefaultBuckets)
}

// NewWithBuckets creates a cache with n buckets. Any n >= 1 works; n < 1 is
// treated as 1.
func NewWithBuckets(n int) *Cache {
	return &Cache{buckets: make([][]entry, max(n, 1))}
}

func (c *Cache) bucket(key []byte) int {
	return int(hash.FNV1a(key) % uint64(len(c.buckets))) //nolint:gosec
}

// Add records key and returns its index: the number of keys added before it.
func (c *Cache) Add(key []byte) int {
	b := c.bucket(key)
	index := c.count
	c.buckets[b] = append(c.buckets[b], entry{key: string(key), index: index})
	c.count++

	return index
}

// Lookup returns the index recorded for key, or -1 if key was never added.
// When a key was added more than once the first index wins.
func (c *Cache) Lookup(key []byte) int {
	for _, e := range c.buckets[c.bucket(key)] {
		if e.key == string(key) {
			return e.index
		}
	}

	return -1
}

// Len returns the number of keys added.
func (c *Cache) Len() int {
	return c.count
}

// Reset empties the cache, keeping bucket capacity.
func (c *Cache) Reset() {
	for i := range c.buckets {
		c.buckets[i] = c.buckets[i][:0]
	}
	c.count = 0
}

// IDKey returns the cache key of an object identified by a numeric ID:
// its 8 little-endian bytes.
func IDKey(id uint64) [8]byte {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], id)

	return key
}
