//go:build !kansoku_release

package kansoku

import "unicode/utf8"

const maxDebugNameLen = 31

// debugName keeps a truncated object name for diagnostics. It is a fixed
// array so tracking records stay pointer-free.
type debugName struct {
	buf [maxDebugNameLen]byte
	n   uint8
}

func (d *debugName) set(s string) {
	if len(s) > maxDebugNameLen {
		n := maxDebugNameLen
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	d.n = uint8(copy(d.buf[:], s))
}

func (d *debugName) String() string {
	return string(d.buf[:d.n])
}
