//go:build !kansoku_release

package kansoku

// validationEnabled turns on the TrackingFlags consistency checks. Build with
// the kansoku_release tag to strip them from the hot path.
const validationEnabled = true
