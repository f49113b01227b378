package fb

import (
	"fmt"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"
)

// RenderData is what the renderer needs to draw one mesh renderer.
type RenderData struct {
	MeshID             uint64
	RenderingLayerMask uint32
	MaterialIDs        []uint64
}

// Equal reports whether two payloads carry the same values.
func (rd *RenderData) Equal(o *RenderData) bool {
	if rd == nil || o == nil {
		return rd == o
	}
	if rd.MeshID != o.MeshID || rd.RenderingLayerMask != o.RenderingLayerMask || len(rd.MaterialIDs) != len(o.MaterialIDs) {
		return false
	}
	for i := range rd.MaterialIDs {
		if rd.MaterialIDs[i] != o.MaterialIDs[i] {
			return false
		}
	}
	return true
}

// BuildRenderData encodes rd into bu and finishes the buffer.
func BuildRenderData(bu *flatbuffers.Builder, rd *RenderData) {
	var mats flatbuffers.UOffsetT
	if n := len(rd.MaterialIDs); n > 0 {
		RenderDataFStartMaterialIdsVector(bu, n)
		for i := n - 1; i >= 0; i-- {
			bu.PrependUint64(rd.MaterialIDs[i])
		}
		mats = bu.EndVector(n)
	}
	RenderDataFStart(bu)
	RenderDataFAddMeshId(bu, rd.MeshID)
	RenderDataFAddRenderingLayerMask(bu, rd.RenderingLayerMask)
	if mats != 0 {
		RenderDataFAddMaterialIds(bu, mats)
	}
	bu.Finish(RenderDataFEnd(bu))
}

// UnbuildRenderData copies a RenderDataF out of its buffer.
func UnbuildRenderData(f *RenderDataF) *RenderData {
	rd := &RenderData{
		MeshID:             f.MeshId(),
		RenderingLayerMask: f.RenderingLayerMask(),
	}
	if n := f.MaterialIdsLength(); n > 0 {
		rd.MaterialIDs = make([]uint64, n)
		for i := range rd.MaterialIDs {
			rd.MaterialIDs[i] = f.MaterialIds(i)
		}
	}
	return rd
}

// renderDataOverhead bounds everything in a finished RenderDataF buffer
// except the material id elements: root offset, vtable, table fields, vector
// length and the alignment padding in between.
const renderDataOverhead = 72

var builderPool = sync.Pool{
	New: func() any { return flatbuffers.NewBuilder(128) },
}

// RenderDataSerializer encodes *RenderData payloads for a variable-length
// change buffer. A nil payload carries no data.
type RenderDataSerializer struct{}

// MaxSize returns an upper bound of the encoded size of rd.
func (RenderDataSerializer) MaxSize(rd *RenderData) int {
	if rd == nil {
		return 0
	}
	return renderDataOverhead + 8*len(rd.MaterialIDs)
}

// Write encodes rd into dst and returns the encoded length.
func (s RenderDataSerializer) Write(dst []byte, rd *RenderData) int {
	if rd == nil {
		return 0
	}
	bu := builderPool.Get().(*flatbuffers.Builder)
	defer builderPool.Put(bu)
	bu.Reset()
	BuildRenderData(bu, rd)
	out := bu.FinishedBytes()
	if len(out) > len(dst) {
		panic(fmt.Sprintf("fb: RenderData encoded to %d bytes, over the %d byte bound", len(out), len(dst)))
	}
	return copy(dst, out)
}

// Parse decodes a payload written by Write. The result does not alias src.
func (RenderDataSerializer) Parse(src []byte) (rd *RenderData, err error) {
	if len(src) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("fb: RenderData payload of %d bytes is too short", len(src))
	}
	defer func() {
		if r := recover(); r != nil {
			rd, err = nil, fmt.Errorf("fb: malformed RenderData payload: %v", r)
		}
	}()
	return UnbuildRenderData(GetRootAsRenderDataF(src, 0)), nil
}
