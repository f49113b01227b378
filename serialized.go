package kansoku

import (
	"encoding/binary"
	"iter"
)

// Serializer encodes payloads of type T for a SerializedChangeBuffer.
//
// MaxSize returns an upper bound of the encoded size of v, or 0 when v
// carries no data. Write encodes v into dst, which is exactly MaxSize(v)
// bytes long, and returns the number of bytes actually written. Parse decodes
// exactly the bytes Write produced; it must not retain src.
type Serializer[T any] interface {
	MaxSize(v T) int
	Write(dst []byte, v T) int
	Parse(src []byte) (T, error)
}

// SerializedChangeBuffer is an append-only buffer of variable-length
// records for payloads that need a serializer. Each record is laid out as
//
//	[u32 total size, padded to WordAlign][ObjectData][payload]
//
// where total size counts the prefix, the header and the payload but not
// the trailing padding; the next record starts at AlignSize(total).
type SerializedChangeBuffer[T any] struct {
	data       []byte
	serializer Serializer[T]
}

// NewSerializedChangeBuffer creates a buffer encoding payloads with s.
//
// Parameters:
//   - s: The serializer used by Add and by the buffer's cursors.
//   - capacity: The number of bytes to pre-allocate.
//
// Returns:
//   - A pointer to the new, empty SerializedChangeBuffer.
func NewSerializedChangeBuffer[T any](s Serializer[T], capacity int) *SerializedChangeBuffer[T] {
	return &SerializedChangeBuffer[T]{
		data:       make([]byte, 0, capacity),
		serializer: s,
	}
}

// Add appends one record for obj with payload v. Space for the serializer's
// maximum size is reserved first; the buffer is then shrunk back to the
// aligned size of what was actually written.
func (c *SerializedChangeBuffer[T]) Add(obj ObjectData, v T) {
	c.add(obj, v, c.serializer.MaxSize(v))
}

// AddEmpty appends a record for obj that carries no payload. Readers decode
// it as the zero T.
func (c *SerializedChangeBuffer[T]) AddEmpty(obj ObjectData) {
	var zero T
	c.add(obj, zero, 0)
}

func (c *SerializedChangeBuffer[T]) add(obj ObjectData, v T, maxSize int) {
	if maxSize < 0 {
		invariantf("serializer reported negative max size %d", maxSize)
	}
	old := len(c.data)
	reserved := AlignSize(serializedHeaderSize + maxSize)
	c.data = extendByteSlice(c.data, reserved)
	rec := c.data[old : old+reserved]
	clear(rec[:serializedHeaderSize])
	putObjectData(rec[SizePrefixSize:], obj)

	written := 0
	if maxSize > 0 {
		dst := rec[serializedHeaderSize : serializedHeaderSize+maxSize : serializedHeaderSize+maxSize]
		written = c.serializer.Write(dst, v)
		if written < 0 || written > maxSize {
			invariantf("serializer wrote %d bytes into a %d byte reservation", written, maxSize)
		}
	}
	total := serializedHeaderSize + written
	binary.LittleEndian.PutUint32(rec, uint32(total))

	end := AlignSize(total)
	clear(rec[total:end])
	c.data = c.data[:old+end]
}

// Clear drops every record and keeps the allocated capacity.
func (c *SerializedChangeBuffer[T]) Clear() {
	c.data = c.data[:0]
}

// Dispose releases the backing storage.
func (c *SerializedChangeBuffer[T]) Dispose() {
	c.data = nil
}

// IsEmpty reports whether no record has been added since the last Clear.
func (c *SerializedChangeBuffer[T]) IsEmpty() bool { return len(c.data) == 0 }

// RawData returns the encoded records. The slice aliases the buffer and is
// only valid until the next Add or Clear; callers must not modify it.
func (c *SerializedChangeBuffer[T]) RawData() []byte {
	return c.data[:len(c.data):len(c.data)]
}

// List returns a read-only view of the records currently in the buffer.
func (c *SerializedChangeBuffer[T]) List() SerializedChangeList[T] {
	return SerializedChangeList[T]{data: c.RawData(), serializer: c.serializer}
}

// Count walks the buffer and returns the number of records.
func (c *SerializedChangeBuffer[T]) Count() int { return c.List().Count() }

// Cursor returns a cursor positioned before the first record.
func (c *SerializedChangeBuffer[T]) Cursor() *SerializedCursor[T] { return c.List().Cursor() }

// All iterates and decodes the records in insertion order.
func (c *SerializedChangeBuffer[T]) All() iter.Seq[Change[T]] { return c.List().All() }

// SerializedChangeList is a read-only view over the raw bytes of a
// variable-length change buffer.
type SerializedChangeList[T any] struct {
	data       []byte
	serializer Serializer[T]
}

// NewSerializedChangeList wraps raw bytes produced by a
// SerializedChangeBuffer using the matching serializer.
func NewSerializedChangeList[T any](raw []byte, s Serializer[T]) SerializedChangeList[T] {
	return SerializedChangeList[T]{data: raw, serializer: s}
}

// IsEmpty reports whether the list holds no record.
func (l SerializedChangeList[T]) IsEmpty() bool { return len(l.data) == 0 }

// RawData returns the encoded records.
func (l SerializedChangeList[T]) RawData() []byte { return l.data }

// Count walks the list and returns the number of records.
func (l SerializedChangeList[T]) Count() int {
	n := 0
	cur := l.Cursor()
	for cur.Next() {
		n++
	}
	return n
}

// Cursor returns a cursor positioned before the first record.
func (l SerializedChangeList[T]) Cursor() *SerializedCursor[T] {
	return &SerializedCursor[T]{data: l.data, serializer: l.serializer, off: -1}
}

// All iterates and decodes the records in insertion order.
func (l SerializedChangeList[T]) All() iter.Seq[Change[T]] {
	return func(yield func(Change[T]) bool) {
		cur := l.Cursor()
		for cur.Next() {
			if !yield(cur.Current()) {
				return
			}
		}
	}
}

// SerializedCursor walks a variable-length change buffer forward, reading
// each record's size prefix to find the next one.
type SerializedCursor[T any] struct {
	data       []byte
	serializer Serializer[T]
	off        int
}

// Next advances to the next record and reports whether there was one. It
// panics with ErrCorruptedBuffer if a size prefix points past the end of the
// buffer.
func (c *SerializedCursor[T]) Next() bool {
	if c.off < 0 {
		if len(c.data) == 0 {
			return false
		}
		c.off = 0
		c.recordSize(c.off)
		return true
	}
	next := c.off + AlignSize(c.recordSize(c.off))
	if next >= len(c.data) {
		return false
	}
	c.off = next
	c.recordSize(c.off)
	return true
}

// Reset moves the cursor back before the first record.
func (c *SerializedCursor[T]) Reset() {
	c.off = -1
}

// PayloadSize returns the number of serialized payload bytes of the current
// record.
func (c *SerializedCursor[T]) PayloadSize() int {
	c.mustBePositioned()
	return c.recordSize(c.off) - serializedHeaderSize
}

// Object decodes only the key header of the current record.
func (c *SerializedCursor[T]) Object() ObjectData {
	c.mustBePositioned()
	return readObjectData(c.data[c.off+SizePrefixSize:])
}

// Current decodes the record under the cursor. Records with an empty
// payload yield the zero T without calling the serializer.
func (c *SerializedCursor[T]) Current() Change[T] {
	c.mustBePositioned()
	total := c.recordSize(c.off)
	ch := Change[T]{ObjectData: readObjectData(c.data[c.off+SizePrefixSize:])}
	if n := total - serializedHeaderSize; n > 0 {
		start := c.off + serializedHeaderSize
		v, err := c.serializer.Parse(c.data[start : start+n : start+n])
		if err != nil {
			corruptedf("record at offset %d: %v", c.off, err)
		}
		ch.Data = v
	}
	return ch
}

func (c *SerializedCursor[T]) mustBePositioned() {
	if c.off < 0 {
		panic("kansoku: SerializedCursor used without a current record")
	}
}

// recordSize returns the unpadded size of the record at off after checking
// that the whole aligned record lies inside the buffer.
func (c *SerializedCursor[T]) recordSize(off int) int {
	if off+SizePrefixSize > len(c.data) {
		corruptedf("truncated size prefix at offset %d of %d", off, len(c.data))
	}
	total := int(binary.LittleEndian.Uint32(c.data[off:]))
	if total < serializedHeaderSize || off+AlignSize(total) > len(c.data) {
		corruptedf("record of %d bytes at offset %d overruns buffer of %d bytes", total, off, len(c.data))
	}
	return total
}
