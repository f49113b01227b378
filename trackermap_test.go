package kansoku

import "testing"

// go test -run ^TestTrackerMapBasics$ . -count 1
func TestTrackerMapBasics(t *testing.T) {
	m := NewTrackerMap[Entity, TrackingRecord[GameObjectData]](4)
	e := Entity{ID: 1, Version: 1}
	if _, ok := m.Get(e); ok {
		t.Fatal("expected an empty map")
	}
	var rec TrackingRecord[GameObjectData]
	rec.Initialize(IDFor(e), e)
	rec.CustomData.Layer = 5
	m.Add(e, rec)
	if !m.Contains(e) || m.Len() != 1 {
		t.Fatal("expected the record to be tracked")
	}
	got := m.At(e)
	if got.InstanceID() != IDFor(e) || got.CustomData.Layer != 5 {
		t.Errorf("unexpected record %+v", got)
	}

	got.CustomData.Layer = 6
	m.Set(e, got)
	if r, _ := m.Get(e); r.CustomData.Layer != 6 {
		t.Errorf("expected Set to overwrite, got layer %d", r.CustomData.Layer)
	}

	m.Remove(e)
	m.Remove(e)
	if m.Contains(e) || m.Len() != 0 {
		t.Error("expected the record to be removed")
	}
	if r, ok := m.Get(e); ok || r.InstanceID() != NoInstance {
		t.Error("expected Get on a missing key to return the zero record")
	}
	expectPanic(t, ErrInvariantViolation, func() { m.At(e) })
}

// go test -run ^TestTrackerMapExclusivity$ . -count 1
func TestTrackerMapExclusivity(t *testing.T) {
	m := NewTrackerMap[Entity, int](0)
	tracked := Entity{ID: 1, Version: 1}
	ignored := Entity{ID: 2, Version: 1}
	m.Add(tracked, 1)
	m.Ignore(ignored)

	expectPanic(t, ErrInvariantViolation, func() { m.Add(ignored, 2) })
	expectPanic(t, ErrInvariantViolation, func() { m.Ignore(tracked) })

	for _, e := range []Entity{tracked, ignored} {
		if m.Contains(e) == m.IsIgnored(e) {
			t.Errorf("%v: expected exactly one of tracked or ignored", e)
		}
	}

	m.Unignore(ignored)
	m.Add(ignored, 2)
	if !m.Contains(ignored) || m.IsIgnored(ignored) {
		t.Error("expected an unignored key to be trackable")
	}
	m.Remove(tracked)
	m.Ignore(tracked)
	if !m.IsIgnored(tracked) {
		t.Error("expected a removed key to be ignorable")
	}
}

// go test -run ^TestTrackerMapLifecycle$ . -count 1
func TestTrackerMapLifecycle(t *testing.T) {
	m := NewTrackerMap[int, int](2)
	for i := range 10 {
		m.Add(i, i*i)
	}
	sum := 0
	for k, v := range m.All() {
		if v != k*k {
			t.Errorf("key %d: got %d", k, v)
		}
		sum += k
	}
	if sum != 45 {
		t.Errorf("expected to visit every key, sum %d", sum)
	}
	expectPanic(t, ErrInvariantViolation, func() { m.Initialize(4) })
	expectPanic(t, ErrInvariantViolation, func() { NewTrackerMap[int, int](4).Initialize(4) })

	m.Dispose()
	if m.Len() != 0 {
		t.Errorf("expected no records after Dispose, got %d", m.Len())
	}
	expectPanic(t, ErrInvariantViolation, func() { m.Add(1, 1) })
	expectPanic(t, ErrInvariantViolation, func() { m.Ignore(1) })
	m.Unignore(1)
	m.Initialize(4)
	m.Add(1, 1)
	if m.Len() != 1 {
		t.Error("expected the map to be reusable after Initialize")
	}
}
