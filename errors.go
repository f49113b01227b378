package kansoku

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation is wrapped by every panic raised for a programming
	// error: an invalid TrackingFlags combination, a tracked/ignored key
	// conflict or a record initialized twice.
	ErrInvariantViolation = errors.New("kansoku: invariant violation")

	// ErrCorruptedBuffer is wrapped by the panic raised when a change buffer
	// walk finds a record that extends past the buffer's length.
	ErrCorruptedBuffer = errors.New("kansoku: corrupted change buffer")
)

func invariantf(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...)))
}

func corruptedf(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrCorruptedBuffer, fmt.Sprintf(format, args...)))
}
