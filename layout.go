package kansoku

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"unsafe"
)

// WordAlign is the platform's natural alignment. Every record in a change
// buffer starts on a multiple of it.
const WordAlign = int(unsafe.Alignof(uintptr(0)))

const (
	// ObjectDataSize is the encoded size of an ObjectData header: 8 bytes of
	// InstanceID, 4 bytes of TrackingFlags and 4 bytes of padding.
	ObjectDataSize = 16

	// SizePrefixSize is the size of the 4 byte record length that starts a
	// variable-length record, padded to WordAlign.
	SizePrefixSize = (4 + WordAlign - 1) &^ (WordAlign - 1)

	// serializedHeaderSize is everything in a variable-length record that
	// precedes the serialized payload.
	serializedHeaderSize = SizePrefixSize + ObjectDataSize
)

// AlignSize rounds n up to the next multiple of WordAlign.
func AlignSize(n int) int {
	return (n + WordAlign - 1) &^ (WordAlign - 1)
}

func alignTo(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// ObjectData is the key header stored in front of every change buffer
// payload.
type ObjectData struct {
	InstanceID    InstanceID
	TrackingFlags TrackingFlags
}

func putObjectData(b []byte, d ObjectData) {
	_ = b[ObjectDataSize-1]
	binary.LittleEndian.PutUint64(b[0:8], uint64(d.InstanceID))
	binary.LittleEndian.PutUint32(b[8:12], uint32(d.TrackingFlags))
	binary.LittleEndian.PutUint32(b[12:16], 0)
}

func readObjectData(b []byte) ObjectData {
	_ = b[ObjectDataSize-1]
	return ObjectData{
		InstanceID:    InstanceID(binary.LittleEndian.Uint64(b[0:8])),
		TrackingFlags: TrackingFlags(binary.LittleEndian.Uint32(b[8:12])),
	}
}

// recordLayout describes one fixed-stride record. It is computed once per
// payload type and shared by the writer and every reader of that type.
type recordLayout struct {
	payloadOffset int // offset of T inside the record
	payloadSize   int // unsafe.Sizeof(T)
	stride        int // aligned record size
}

// layoutOf computes the fixed-stride layout for T. It panics if T holds
// pointers: records are copied as raw bytes into memory the garbage
// collector does not scan.
func layoutOf[T any]() recordLayout {
	t := reflect.TypeFor[T]()
	if hasPointers(t) {
		panic(fmt.Sprintf("kansoku: payload type %s contains pointers and cannot be stored in a fixed-stride change buffer", t))
	}
	off := alignTo(ObjectDataSize, t.Align())
	size := int(t.Size())
	return recordLayout{
		payloadOffset: off,
		payloadSize:   size,
		stride:        AlignSize(off + size),
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// putRecord writes obj and v into rec, which must be exactly one stride long.
// Padding bytes are zeroed so the raw bytes are deterministic.
func putRecord[T any](l recordLayout, rec []byte, obj ObjectData, v T) {
	clear(rec)
	putObjectData(rec, obj)
	if l.payloadSize > 0 {
		*(*T)(unsafe.Pointer(&rec[l.payloadOffset])) = v
	}
}

// readRecord decodes the record that starts at rec[0].
func readRecord[T any](l recordLayout, rec []byte) Change[T] {
	c := Change[T]{ObjectData: readObjectData(rec)}
	if l.payloadSize > 0 {
		c.Data = *(*T)(unsafe.Pointer(&rec[l.payloadOffset]))
	}
	return c
}
