//go:build kansoku_release

package kansoku

type debugName struct{}

func (*debugName) set(string) {}

func (*debugName) String() string { return "" }
