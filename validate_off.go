//go:build kansoku_release

package kansoku

const validationEnabled = false
