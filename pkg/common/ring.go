package common

// NewRing creates a ring which is able to remember the last capacity values.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		values: make([]T, capacity),
	}
}

// Ring is a fixed size buffer which always keeps the most recent values that
// were pushed to it. It is NOT safe for concurrent use.
type Ring[T any] struct {
	values []T
	offset int
	length int
}

func (this *Ring[T]) Push(v T) {
	this.values[this.offset] = v
	this.offset++
	if this.offset >= len(this.values) {
		this.offset = 0
	}
	if this.length < len(this.values) {
		this.length++
	}
}

func (this *Ring[T]) Write(p []T) (n int, err error) {
	for _, v := range p {
		this.Push(v)
	}
	return len(p), nil
}

// Behind returns the value which was pushed n pushes ago. Behind(1) is the
// most recent one. Positions which were never written yield the zero value.
func (this *Ring[T]) Behind(n int) (result T) {
	if n < 1 || n > this.length {
		return result
	}
	i := this.offset - n
	if i < 0 {
		i += len(this.values)
	}
	return this.values[i]
}

// Latest copies the most recent values in chronological order into dst and
// returns how many of them were really pushed before. If fewer values than
// len(dst) were pushed yet, the front of dst is filled with zero values.
func (this *Ring[T]) Latest(dst []T) int {
	for i := range dst {
		dst[i] = this.Behind(len(dst) - i)
	}
	return min(len(dst), this.length)
}

func (this *Ring[T]) Len() int {
	return this.length
}

func (this *Ring[T]) Cap() int {
	return len(this.values)
}

func (this *Ring[T]) Reset() {
	var zero T
	for i := range this.values {
		this.values[i] = zero
	}
	this.offset = 0
	this.length = 0
}
