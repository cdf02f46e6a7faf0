// Package ringbuf provides a fixed-capacity ring buffer that overwrites its
// oldest entry when full.
package ringbuf

import (
	"errors"
	"iter"
)

// ErrCapacity is returned by New for a capacity that is not a power of two.
var ErrCapacity = errors.New("ringbuf: capacity must be a power of two")

// Ring holds up to Cap() values. Indexing masks with Cap()-1, so the
// capacity is a power of two. The zero value is unusable; call New.
type Ring[T any] struct {
	start int
	count int
	items []T
}

// New returns an empty ring of the given capacity.
func New[T any](capacity int) (*Ring[T], error) {
	if !IsPowerOfTwo(capacity) {
		return nil, ErrCapacity
	}
	return &Ring[T]{items: make([]T, capacity)}, nil
}

// MustNew is New that panics on an invalid capacity.
func MustNew[T any](capacity int) *Ring[T] {
	r, err := New[T](capacity)
	if err != nil {
		panic(err)
	}
	return r
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func (r *Ring[T]) mask() int { return len(r.items) - 1 }

// Emplace claims the slot for a new newest entry and returns it for the
// caller to fill in place. When the ring is full the oldest entry's slot is
// reused; its previous contents are left for the caller to overwrite.
func (r *Ring[T]) Emplace() *T {
	if r.count < len(r.items) {
		i := (r.start + r.count) & r.mask()
		r.count++
		return &r.items[i]
	}
	i := r.start
	r.start = (r.start + 1) & r.mask()
	return &r.items[i]
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) { *r.Emplace() = v }

// Len returns the number of entries held.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// Reset drops every entry.
func (r *Ring[T]) Reset() { r.start, r.count = 0, 0 }

// Newest returns the i-th newest entry, 0 being the most recent.
func (r *Ring[T]) Newest(i int) (T, bool) {
	if i < 0 || i >= r.count {
		var zero T
		return zero, false
	}
	return r.items[(r.start+r.count-1-i)&r.mask()], true
}

// All yields the entries from oldest to newest with their age, where the
// newest has age 0.
func (r *Ring[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for k := 0; k < r.count; k++ {
			if !yield(r.count-1-k, r.items[(r.start+k)&r.mask()]) {
				return
			}
		}
	}
}

// AppendNewest appends up to n entries to dst, newest first. n < 0 means
// all of them.
func (r *Ring[T]) AppendNewest(dst []T, n int) []T {
	if n < 0 || n > r.count {
		n = r.count
	}
	for i := 0; i < n; i++ {
		dst = append(dst, r.items[(r.start+r.count-1-i)&r.mask()])
	}
	return dst
}
