// Package fb holds the FlatBuffers encoding of the render payload that
// mesh renderer change records carry.
//
// The generated accessors live in render_data_generated.go. Like other
// FlatBuffers types in Go they come without an object API, so RenderData is
// the plain struct used by the rest of the module and BuildRenderData /
// UnbuildRenderData convert between the two.
package fb

// You must have flatc installed to regenerate the accessors:
//go:generate flatc --go -o .. render.fbs
