package kansoku

import (
	"testing"
	"unsafe"
)

type testPayload struct {
	A uint8
	B float64
	C [3]int16
}

// go test -run ^TestChangeBufferScenario$ . -count 1
func TestChangeBufferScenario(t *testing.T) {
	buf := NewChangeBuffer[int32](0)
	if !buf.IsEmpty() || buf.Count() != 0 {
		t.Fatal("expected a new buffer to be empty")
	}
	buf.Add(ObjectData{InstanceID: 10}, 111)
	buf.Add(ObjectData{InstanceID: 20, TrackingFlags: Running | Dirty}, 222)
	if buf.IsEmpty() {
		t.Fatal("expected a non-empty buffer")
	}
	if buf.Count() != 2 {
		t.Fatalf("expected 2 records, got %d", buf.Count())
	}

	cur := buf.Cursor()
	check := func(pass string) {
		if !cur.Next() {
			t.Fatalf("%s: expected a first record", pass)
		}
		c := cur.Current()
		if c.InstanceID != 10 || c.Data != 111 || c.TrackingFlags != 0 {
			t.Errorf("%s: unexpected first record %+v", pass, c)
		}
		if !cur.Next() {
			t.Fatalf("%s: expected a second record", pass)
		}
		c = cur.Current()
		if c.InstanceID != 20 || c.Data != 222 || c.TrackingFlags != Running|Dirty {
			t.Errorf("%s: unexpected second record %+v", pass, c)
		}
		if cur.Next() {
			t.Errorf("%s: expected the cursor to stop after two records", pass)
		}
	}
	check("first pass")
	cur.Reset()
	check("after reset")
}

// go test -run ^TestChangeBufferAlignment$ . -count 1
func TestChangeBufferAlignment(t *testing.T) {
	buf := NewChangeBuffer[byte](4)
	buf.Add(ObjectData{InstanceID: 1}, 0xAA)
	buf.Add(ObjectData{InstanceID: 2}, 0xBB)
	want := 2 * AlignSize(ObjectDataSize+1)
	if got := len(buf.RawData()); got != want {
		t.Fatalf("expected %d raw bytes, got %d", want, got)
	}
	if buf.Stride()%WordAlign != 0 {
		t.Errorf("stride %d is not a multiple of %d", buf.Stride(), WordAlign)
	}

	raw := buf.RawData()
	if raw[ObjectDataSize] != 0xAA || raw[buf.Stride()+ObjectDataSize] != 0xBB {
		t.Error("payloads are not where the layout puts them")
	}
	for i := ObjectDataSize + 1; i < buf.Stride(); i++ {
		if raw[i] != 0 {
			t.Fatalf("padding byte %d is %#x, want 0", i, raw[i])
		}
	}
}

// go test -run ^TestChangeBufferStructPayload$ . -count 1
func TestChangeBufferStructPayload(t *testing.T) {
	buf := NewChangeBuffer[testPayload](0)
	wantStride := AlignSize(alignTo(ObjectDataSize, int(unsafe.Alignof(testPayload{}))) + int(unsafe.Sizeof(testPayload{})))
	if buf.Stride() != wantStride {
		t.Errorf("expected stride %d, got %d", wantStride, buf.Stride())
	}
	in := make([]testPayload, 100)
	for i := range in {
		in[i] = testPayload{A: uint8(i), B: float64(i) * 1.5, C: [3]int16{int16(i), -int16(i), 7}}
		buf.Add(ObjectData{InstanceID: InstanceID(i + 1), TrackingFlags: Running}, in[i])
	}
	if buf.Count() != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), buf.Count())
	}
	i := 0
	for c := range buf.All() {
		if c.InstanceID != InstanceID(i+1) || c.Data != in[i] {
			t.Fatalf("record %d: got %+v", i, c)
		}
		i++
	}
	if i != len(in) {
		t.Errorf("iterated %d records, want %d", i, len(in))
	}
}

// go test -run ^TestChangeBufferClear$ . -count 1
func TestChangeBufferClear(t *testing.T) {
	buf := NewChangeBuffer[int64](8)
	for i := range 8 {
		buf.Add(ObjectData{InstanceID: InstanceID(i)}, int64(i))
	}
	capBefore := cap(buf.data)
	buf.Clear()
	buf.Clear()
	if !buf.IsEmpty() || buf.Count() != 0 || len(buf.RawData()) != 0 {
		t.Error("expected an empty buffer after Clear")
	}
	if cap(buf.data) != capBefore {
		t.Errorf("Clear changed capacity from %d to %d", capBefore, cap(buf.data))
	}
	if buf.Cursor().Next() {
		t.Error("expected no records after Clear")
	}
	buf.Add(ObjectData{InstanceID: 42}, 4242)
	c := buf.Cursor()
	if !c.Next() || c.Current().Data != 4242 {
		t.Error("expected the buffer to be reusable after Clear")
	}
}

// go test -run ^TestChangeListFromRaw$ . -count 1
func TestChangeListFromRaw(t *testing.T) {
	buf := NewChangeBuffer[GameObjectData](0)
	buf.Add(ObjectData{InstanceID: 5, TrackingFlags: Running}, GameObjectData{Active: true, Layer: 3})
	buf.Add(ObjectData{InstanceID: 6, TrackingFlags: Running | Disabled}, GameObjectData{Layer: 4})

	raw := append([]byte(nil), buf.RawData()...)
	list := NewChangeList[GameObjectData](raw)
	if list.Count() != 2 || list.IsEmpty() {
		t.Fatalf("expected 2 records, got %d", list.Count())
	}
	var got []Change[GameObjectData]
	for c := range list.All() {
		got = append(got, c)
	}
	if got[0].Data != (GameObjectData{Active: true, Layer: 3}) || got[1].TrackingFlags != Running|Disabled {
		t.Errorf("unexpected records %+v", got)
	}

	expectPanic(t, ErrCorruptedBuffer, func() { NewChangeList[GameObjectData](raw[:len(raw)-1]) })
}

// go test -run ^TestChangeBufferRejectsPointers$ . -count 1
func TestChangeBufferRejectsPointers(t *testing.T) {
	type withPointer struct {
		ID   int
		Name string
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a payload holding pointers")
		}
	}()
	NewChangeBuffer[withPointer](1)
}

func TestChangeCursorCurrentWithoutNext(t *testing.T) {
	buf := NewChangeBuffer[int32](1)
	buf.Add(ObjectData{InstanceID: 1}, 1)
	defer func() {
		if recover() == nil {
			t.Error("expected Current before Next to panic")
		}
	}()
	buf.Cursor().Current()
}

func BenchmarkChangeBufferAdd(b *testing.B) {
	buf := NewChangeBuffer[GameObjectData](1024)
	obj := ObjectData{InstanceID: 1, TrackingFlags: Running}
	data := GameObjectData{Active: true, Layer: 1}
	b.ReportAllocs()
	for b.Loop() {
		for range 1024 {
			buf.Add(obj, data)
		}
		buf.Clear()
	}
}

func BenchmarkChangeBufferIterate(b *testing.B) {
	buf := NewChangeBuffer[GameObjectData](1024)
	for i := range 1024 {
		buf.Add(ObjectData{InstanceID: InstanceID(i)}, GameObjectData{Layer: int32(i)})
	}
	b.ReportAllocs()
	for b.Loop() {
		var sum int32
		cur := buf.Cursor()
		for cur.Next() {
			sum += cur.Current().Data.Layer
		}
		_ = sum
	}
}
