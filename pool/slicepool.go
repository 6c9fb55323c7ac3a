// File: pool/slicepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "sync"

// SlicePool hands out slices of a requested length, reusing backing arrays.
// It is safe for concurrent use.
type SlicePool[T any] struct {
	p sync.Pool // holds *[]T
}

// NewSlicePool creates an empty pool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{p: sync.Pool{New: func() any { return new([]T) }}}
}

// Get returns a slice of length n. When zero is true every element is reset;
// otherwise the contents are whatever the previous user left.
func (sp *SlicePool[T]) Get(n int, zero bool) []T {
	s := *sp.p.Get().(*[]T)
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	if zero {
		clear(s)
	}
	return s
}

// Put returns s to the pool. s must not be used afterwards.
func (sp *SlicePool[T]) Put(s []T) {
	if cap(s) == 0 {
		return
	}
	s = s[:0]
	sp.p.Put(&s)
}
