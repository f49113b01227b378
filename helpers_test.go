package kansoku

import (
	"errors"
	"testing"
)

// expectPanic runs fn and fails t unless it panics with an error wrapping
// target. A nil target accepts any panic value.
func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v, got none", target)
		}
		if target == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic wrapping %v, got %v", target, r)
		}
	}()
	fn()
}
