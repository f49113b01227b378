package kansoku

import "iter"

// Change is one decoded change buffer entry: the object's key header and
// the payload recorded for it.
type Change[T any] struct {
	ObjectData
	Data T
}

// ChangeBuffer is an append-only buffer of fixed-stride records, each
// holding an ObjectData header followed by the raw image of a T. Records are
// padded to WordAlign; the stride is computed once per type and shared with
// every reader, so writers and readers can never disagree on it.
//
// The buffer is cleared, not reallocated, between frames.
type ChangeBuffer[T any] struct {
	data   []byte
	layout recordLayout
}

// NewChangeBuffer creates a ChangeBuffer with room for capacity records. It
// panics if T contains pointers.
//
// Parameters:
//   - capacity: The number of records to pre-allocate.
//
// Returns:
//   - A pointer to the new, empty ChangeBuffer.
func NewChangeBuffer[T any](capacity int) *ChangeBuffer[T] {
	l := layoutOf[T]()
	return &ChangeBuffer[T]{
		data:   make([]byte, 0, capacity*l.stride),
		layout: l,
	}
}

// Add appends one record for obj with payload v.
func (c *ChangeBuffer[T]) Add(obj ObjectData, v T) {
	off := len(c.data)
	c.data = extendByteSlice(c.data, c.layout.stride)
	putRecord(c.layout, c.data[off:off+c.layout.stride], obj, v)
}

// Clear drops every record and keeps the allocated capacity.
func (c *ChangeBuffer[T]) Clear() {
	c.data = c.data[:0]
}

// Dispose releases the backing storage.
func (c *ChangeBuffer[T]) Dispose() {
	c.data = nil
}

// IsEmpty reports whether no record has been added since the last Clear.
func (c *ChangeBuffer[T]) IsEmpty() bool { return len(c.data) == 0 }

// Count returns the number of records stored.
func (c *ChangeBuffer[T]) Count() int { return len(c.data) / c.layout.stride }

// Stride returns the aligned size of one record in bytes.
func (c *ChangeBuffer[T]) Stride() int { return c.layout.stride }

// RawData returns the encoded records. The slice aliases the buffer and is
// only valid until the next Add or Clear; callers must not modify it.
func (c *ChangeBuffer[T]) RawData() []byte {
	return c.data[:len(c.data):len(c.data)]
}

// List returns a read-only view of the records currently in the buffer.
func (c *ChangeBuffer[T]) List() ChangeList[T] {
	return ChangeList[T]{data: c.RawData(), layout: c.layout}
}

// Cursor returns a cursor positioned before the first record.
func (c *ChangeBuffer[T]) Cursor() *ChangeCursor[T] {
	return c.List().Cursor()
}

// All iterates the records in insertion order.
func (c *ChangeBuffer[T]) All() iter.Seq[Change[T]] {
	return c.List().All()
}

// ChangeList is a read-only view over the raw bytes of a fixed-stride
// change buffer, as received by a sink.
type ChangeList[T any] struct {
	data   []byte
	layout recordLayout
}

// NewChangeList wraps raw bytes produced by a ChangeBuffer[T]. It panics
// with ErrCorruptedBuffer if the length is not a whole number of records.
func NewChangeList[T any](raw []byte) ChangeList[T] {
	l := layoutOf[T]()
	if len(raw)%l.stride != 0 {
		corruptedf("%d bytes is not a multiple of the %d byte stride", len(raw), l.stride)
	}
	return ChangeList[T]{data: raw, layout: l}
}

// IsEmpty reports whether the list holds no record.
func (l ChangeList[T]) IsEmpty() bool { return len(l.data) == 0 }

// Count returns the number of records in the list.
func (l ChangeList[T]) Count() int {
	if l.layout.stride == 0 {
		return 0
	}
	return len(l.data) / l.layout.stride
}

// RawData returns the encoded records.
func (l ChangeList[T]) RawData() []byte { return l.data }

// Cursor returns a cursor positioned before the first record.
func (l ChangeList[T]) Cursor() *ChangeCursor[T] {
	return &ChangeCursor[T]{data: l.data, layout: l.layout, index: -1}
}

// All iterates the records in insertion order.
func (l ChangeList[T]) All() iter.Seq[Change[T]] {
	return func(yield func(Change[T]) bool) {
		cur := l.Cursor()
		for cur.Next() {
			if !yield(cur.Current()) {
				return
			}
		}
	}
}

// ChangeCursor walks a fixed-stride change buffer forward, one stride at a
// time.
//
// Example:
//
//	cur := buf.Cursor()
//	for cur.Next() {
//	    c := cur.Current()
//	    // ... use c.InstanceID, c.Data
//	}
type ChangeCursor[T any] struct {
	data   []byte
	layout recordLayout
	index  int
}

// Next advances to the next record and reports whether there was one.
func (c *ChangeCursor[T]) Next() bool {
	if (c.index+1)*c.layout.stride >= len(c.data) {
		return false
	}
	c.index++
	return true
}

// Reset moves the cursor back before the first record.
func (c *ChangeCursor[T]) Reset() {
	c.index = -1
}

// Current decodes the record under the cursor. It must only be called after
// Next returned true.
func (c *ChangeCursor[T]) Current() Change[T] {
	off := c.index * c.layout.stride
	if c.index < 0 || off+c.layout.stride > len(c.data) {
		panic("kansoku: ChangeCursor.Current called without a current record")
	}
	return readRecord[T](c.layout, c.data[off:off+c.layout.stride])
}
