package pool

import "sync"

// SlicePool reuses scratch slices of T.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool returns an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get returns a slice of length size and a cleanup function that returns it to the pool.
// Element values are unspecified. If the pooled slice is too small a new one is allocated.
//
//	offsets, cleanup := offsetPool.Get(n)
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
