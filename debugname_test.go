//go:build !kansoku_release

package kansoku

import (
	"strings"
	"testing"
)

// go test -run ^TestDebugNameTruncation$ . -count 1
func TestDebugNameTruncation(t *testing.T) {
	var d debugName
	long := strings.Repeat("x", 40)
	d.set(long)
	if d.String() != long[:maxDebugNameLen] {
		t.Errorf("expected the name truncated to %d bytes, got %q", maxDebugNameLen, d.String())
	}

	// A multi-byte rune straddling the limit is dropped whole.
	prefix := strings.Repeat("a", maxDebugNameLen-1)
	d.set(prefix + "é")
	if d.String() != prefix {
		t.Errorf("unexpected truncation %q", d.String())
	}

	d.set("")
	if d.String() != "" {
		t.Errorf("expected an empty name, got %q", d.String())
	}
}
