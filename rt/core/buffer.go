package core

import (
	"fmt"
	"unsafe"
)

// Buffer is a fixed-count, contiguous array of records. The index of an
// element is its identity: a dispatched kernel processes element i with
// invocation i. The count never changes after NewBuffer.
//
// A Buffer is not safe for concurrent use; gpu.Fence arbitrates host and
// device access to the storage it is uploaded to.
type Buffer[T Record] struct {
	elems []T
}

// NewBuffer allocates count zero-valued records.
func NewBuffer[T Record](count int) *Buffer[T] {
	if count < 0 {
		count = 0
	}
	return &Buffer[T]{elems: make([]T, count)}
}

func (b *Buffer[T]) Len() int { return len(b.elems) }

// At returns a pointer to element i for in-place mutation.
func (b *Buffer[T]) At(i int) *T { return &b.elems[i] }

func (b *Buffer[T]) Set(i int, v T) { b.elems[i] = v }

// Elements exposes the backing slice. Its length is fixed; do not append.
func (b *Buffer[T]) Elements() []T { return b.elems }

// Reset zeroes every record.
func (b *Buffer[T]) Reset() { clear(b.elems) }

// Stride is the distance in bytes between consecutive records.
func (b *Buffer[T]) Stride() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (b *Buffer[T]) ByteLen() int { return len(b.elems) * b.Stride() }

// Bytes returns the records' memory without copying. The slice aliases the
// buffer and is what gets uploaded to the device.
func (b *Buffer[T]) Bytes() []byte {
	if len(b.elems) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.elems[0])), b.ByteLen())
}

// Encode serializes the buffer through the explicit record codec. The
// result equals Bytes() except that padding is guaranteed zero.
func (b *Buffer[T]) Encode() []byte {
	stride := b.Stride()
	out := make([]byte, b.ByteLen())
	for i := range b.elems {
		putRecord(out[i*stride:(i+1)*stride], &b.elems[i])
	}
	return out
}

// Load replaces the contents with raw, typically a device readback. raw
// must hold exactly Len() records.
func (b *Buffer[T]) Load(raw []byte) error {
	if len(raw) != b.ByteLen() {
		return fmt.Errorf("%w: got %d bytes, want %d (%d x %d)",
			ErrSizeMismatch, len(raw), b.ByteLen(), len(b.elems), b.Stride())
	}
	stride := b.Stride()
	for i := range b.elems {
		readRecord(raw[i*stride:(i+1)*stride], &b.elems[i])
	}
	return nil
}

func putRecord[T Record](dst []byte, v *T) {
	switch r := any(v).(type) {
	case *Particle:
		PutParticle(dst, *r)
	case *Vertex:
		PutVertex(dst, *r)
	}
}

func readRecord[T Record](src []byte, v *T) {
	switch r := any(v).(type) {
	case *Particle:
		*r = ReadParticle(src)
	case *Vertex:
		*r = ReadVertex(src)
	}
}
