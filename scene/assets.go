package scene

import "github.com/edwinsyarief/kansoku"

// AssetKind tells materials and meshes apart.
type AssetKind uint8

const (
	Material AssetKind = iota + 1
	Mesh
)

// String returns "material" or "mesh".
func (k AssetKind) String() string {
	switch k {
	case Material:
		return "material"
	case Mesh:
		return "mesh"
	}
	return "unknown"
}

type asset struct {
	ref  kansoku.AssetRef
	kind AssetKind
}

// Assets is an in-memory kansoku.AssetRegistry. Ids of unregistered assets
// are reused, so a stale id may later name a different asset.
type Assets struct {
	items   []asset
	freeIDs []int
	live    int
}

// RegisterMaterial registers ref as a material and returns its id.
func (a *Assets) RegisterMaterial(ref kansoku.AssetRef) kansoku.AssetID {
	return a.add(ref, Material)
}

// RegisterMesh registers ref as a mesh and returns its id.
func (a *Assets) RegisterMesh(ref kansoku.AssetRef) kansoku.AssetID {
	return a.add(ref, Mesh)
}

func (a *Assets) add(ref kansoku.AssetRef, kind AssetKind) kansoku.AssetID {
	var idx int
	if n := len(a.freeIDs); n > 0 {
		idx = a.freeIDs[n-1]
		a.freeIDs = a.freeIDs[:n-1]
		a.items[idx] = asset{ref: ref, kind: kind}
	} else {
		a.items = append(a.items, asset{ref: ref, kind: kind})
		idx = len(a.items) - 1
	}
	a.live++
	return kansoku.AssetID(idx + 1)
}

// Has reports whether id names a registered asset.
func (a *Assets) Has(id kansoku.AssetID) bool {
	idx := int(id) - 1
	return idx >= 0 && idx < len(a.items) && a.items[idx].kind != 0
}

// Get returns the reference and kind registered under id.
func (a *Assets) Get(id kansoku.AssetID) (kansoku.AssetRef, AssetKind, bool) {
	if !a.Has(id) {
		return kansoku.AssetRef{}, 0, false
	}
	it := a.items[id-1]
	return it.ref, it.kind, true
}

// Unregister releases id. Unknown ids are ignored.
func (a *Assets) Unregister(id kansoku.AssetID) {
	if !a.Has(id) {
		return
	}
	idx := int(id) - 1
	a.items[idx] = asset{}
	a.freeIDs = append(a.freeIDs, idx)
	a.live--
}

// Len returns the number of registered assets.
func (a *Assets) Len() int { return a.live }
