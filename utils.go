package kansoku

// extendByteSlice extends a byte slice by n bytes, reallocating if necessary.
// Capacity at least doubles on reallocation so appends stay amortized O(1).
func extendByteSlice(s []byte, n int) []byte {
	newLen := len(s) + n
	if cap(s) >= newLen {
		return s[:newLen]
	}
	newCap := max(2*cap(s), newLen)
	ns := make([]byte, newLen, newCap)
	copy(ns, s)
	return ns
}

// resizeSlice sets the length of s to n, keeping its backing array when it is
// large enough. Elements past the old length are not zeroed.
func resizeSlice[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	ns := make([]T, n, max(2*cap(s), n))
	copy(ns, s)
	return ns
}
