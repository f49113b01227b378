package kansoku

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// AssetRef is the host's reference to a material or mesh asset.
type AssetRef struct {
	Key  uint64
	Name string
}

// RenderMeshArray is a shared list of materials and meshes that mesh
// renderers index into. A nil Materials or Meshes slice means the array is
// not loaded yet; it is left alone until both are set.
type RenderMeshArray struct {
	SharedIndex int32
	Version     uint32
	Materials   []AssetRef
	Meshes      []AssetRef
}

// MaterialMeshInfo selects one material and one mesh of a RenderMeshArray.
type MaterialMeshInfo struct {
	SharedIndex   int32
	MaterialIndex int32
	MeshIndex     int32
}

// AssetRegistry hands out renderer-side ids for host assets.
type AssetRegistry interface {
	RegisterMaterial(ref AssetRef) AssetID
	RegisterMesh(ref AssetRef) AssetID
	Unregister(id AssetID)
}

type renderMeshEntry struct {
	version   uint32
	hash      uint64
	materials []AssetID
	meshes    []AssetID
}

// renderMeshRegistry mirrors the host's render mesh arrays as registered
// asset ids, keyed by shared index.
type renderMeshRegistry struct {
	assets  AssetRegistry
	entries map[int32]*renderMeshEntry
	seen    map[int32]struct{}
	retired []*renderMeshEntry
	digest  *xxhash.Digest
}

func newRenderMeshRegistry(assets AssetRegistry) renderMeshRegistry {
	return renderMeshRegistry{
		assets:  assets,
		entries: make(map[int32]*renderMeshEntry),
		seen:    make(map[int32]struct{}),
		digest:  xxhash.New(),
	}
}

// sync brings the registry in line with arrays. Arrays that are gone are
// unregistered; arrays whose version or content changed are registered
// again. Old ids are released only after the new ones were handed out.
// It returns the number of arrays registered and unregistered.
func (r *renderMeshRegistry) sync(arrays []RenderMeshArray) (registered, unregistered int) {
	clear(r.seen)
	for i := range arrays {
		r.seen[arrays[i].SharedIndex] = struct{}{}
	}
	for idx, e := range r.entries {
		if _, ok := r.seen[idx]; !ok {
			r.retired = append(r.retired, e)
			delete(r.entries, idx)
		}
	}
	for i := range arrays {
		a := &arrays[i]
		if a.Materials == nil || a.Meshes == nil {
			continue
		}
		h := r.hash(a)
		old, ok := r.entries[a.SharedIndex]
		if ok && old.version == a.Version && old.hash == h {
			continue
		}
		if ok {
			r.retired = append(r.retired, old)
		}
		e := &renderMeshEntry{
			version:   a.Version,
			hash:      h,
			materials: make([]AssetID, len(a.Materials)),
			meshes:    make([]AssetID, len(a.Meshes)),
		}
		for j, ref := range a.Materials {
			e.materials[j] = r.assets.RegisterMaterial(ref)
		}
		for j, ref := range a.Meshes {
			e.meshes[j] = r.assets.RegisterMesh(ref)
		}
		r.entries[a.SharedIndex] = e
		registered++
	}
	unregistered = len(r.retired)
	r.releaseRetired()
	return registered, unregistered
}

func (r *renderMeshRegistry) releaseRetired() {
	for i, e := range r.retired {
		for _, id := range e.materials {
			r.assets.Unregister(id)
		}
		for _, id := range e.meshes {
			r.assets.Unregister(id)
		}
		r.retired[i] = nil
	}
	r.retired = r.retired[:0]
}

// resolve returns the mesh and material ids selected by info, or
// InvalidAsset for whichever cannot be resolved.
func (r *renderMeshRegistry) resolve(info MaterialMeshInfo) (mesh, material AssetID) {
	e, ok := r.entries[info.SharedIndex]
	if !ok {
		return InvalidAsset, InvalidAsset
	}
	return assetAt(e.meshes, info.MeshIndex), assetAt(e.materials, info.MaterialIndex)
}

func assetAt(ids []AssetID, i int32) AssetID {
	if i < 0 || int(i) >= len(ids) {
		return InvalidAsset
	}
	return ids[i]
}

func (r *renderMeshRegistry) len() int { return len(r.entries) }

// sharedIndices returns the registered shared indices in ascending order.
func (r *renderMeshRegistry) sharedIndices() []int32 {
	idx := make([]int32, 0, len(r.entries))
	for k := range r.entries {
		idx = append(idx, k)
	}
	slices.Sort(idx)
	return idx
}

// close unregisters every asset the registry still holds.
func (r *renderMeshRegistry) close() {
	for _, idx := range r.sharedIndices() {
		r.retired = append(r.retired, r.entries[idx])
		delete(r.entries, idx)
	}
	r.releaseRetired()
}

// hash digests the asset references of a, so that arrays rebuilt under the
// same version are still detected.
func (r *renderMeshRegistry) hash(a *RenderMeshArray) uint64 {
	d := r.digest
	d.Reset()
	writeRefs(d, a.Materials)
	writeRefs(d, a.Meshes)
	return d.Sum64()
}

func writeRefs(d *xxhash.Digest, refs []AssetRef) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(len(refs)))
	d.Write(b[:])
	for _, ref := range refs {
		binary.LittleEndian.PutUint64(b[:], ref.Key)
		d.Write(b[:])
		binary.LittleEndian.PutUint64(b[:], uint64(len(ref.Name)))
		d.Write(b[:])
		d.WriteString(ref.Name)
	}
}
