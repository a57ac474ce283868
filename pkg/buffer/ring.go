// Package buffer provides a fixed-capacity generic ring buffer used to
// slide an analysis window over a sample stream. The buffer is
// index-based: advancing by a hop moves the head pointer instead of
// copying the remaining data to the front.
package buffer

import "fmt"

// Ring is a fixed-capacity ring buffer over elements of type T.
//
// The typical access pattern is streaming windowed analysis:
//
//	r := buffer.NewRing[float32](windowSize + chunkSize)
//	for each chunk {
//		r.Write(chunk)
//		for r.Len() >= windowSize {
//			r.Window(win)
//			// analyze win
//			r.Discard(hopSize)
//		}
//	}
//
// Ring is not safe for concurrent use; the window loop owns it.
type Ring[T any] struct {
	buf        []T
	head, tail int64
}

// NewRing creates a Ring with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	return int(r.tail - r.head)
}

// Cap returns the buffer capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Write appends p to the buffer. It fails if p does not fit in the
// remaining capacity; the caller sizes the ring for its chunk and
// window sizes up front.
func (r *Ring[T]) Write(p []T) error {
	if len(p) > len(r.buf)-r.Len() {
		return fmt.Errorf("buffer: write of %d elements exceeds free capacity %d", len(p), len(r.buf)-r.Len())
	}
	tail := int(r.tail % int64(len(r.buf)))
	n := copy(r.buf[tail:], p)
	copy(r.buf, p[n:])
	r.tail += int64(len(p))
	return nil
}

// Window copies the oldest len(dst) elements into dst without consuming
// them. It fails if fewer elements are buffered.
func (r *Ring[T]) Window(dst []T) error {
	if len(dst) > r.Len() {
		return fmt.Errorf("buffer: window of %d elements exceeds buffered %d", len(dst), r.Len())
	}
	head := int(r.head % int64(len(r.buf)))
	n := copy(dst, r.buf[head:])
	if n < len(dst) {
		copy(dst[n:], r.buf)
	}
	return nil
}

// Discard drops the oldest n elements. Discarding more than is buffered
// empties the buffer.
func (r *Ring[T]) Discard(n int) {
	if n >= r.Len() {
		r.head = r.tail
		return
	}
	r.head += int64(n)
}

// Reset empties the buffer.
func (r *Ring[T]) Reset() {
	r.head = 0
	r.tail = 0
}
