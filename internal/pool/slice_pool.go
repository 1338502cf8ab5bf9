package pool

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// Number is an element type SlicePool can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// SlicePool reuses slices of T across calls.
type SlicePool[T Number] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty pool.
func NewSlicePool[T Number]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves a slice of exactly size elements. Its contents are
// unspecified. The caller must call the returned cleanup function once it no
// longer uses the slice.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []T: A slice with length equal to size
//   - func(): Cleanup function returning the slice to the pool
//
// Example:
//
//	deltas, cleanup := pool.Uint32s.Get(len(values))
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := *ptr

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}

// Shared pools for the element types the codec works with.
var (
	Uint32s  = NewSlicePool[uint32]()
	Int64s   = NewSlicePool[int64]()
	Float64s = NewSlicePool[float64]()
)
