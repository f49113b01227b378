package kansoku

import (
	"fmt"
	"testing"
)

// fakeAssets hands out sequential ids and logs every call.
type fakeAssets struct {
	next AssetID
	live map[AssetID]AssetRef
	log  []string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{live: make(map[AssetID]AssetRef)}
}

func (a *fakeAssets) register(kind string, ref AssetRef) AssetID {
	a.next++
	a.live[a.next] = ref
	a.log = append(a.log, fmt.Sprintf("+%s:%s=%d", kind, ref.Name, a.next))
	return a.next
}

func (a *fakeAssets) RegisterMaterial(ref AssetRef) AssetID { return a.register("material", ref) }
func (a *fakeAssets) RegisterMesh(ref AssetRef) AssetID     { return a.register("mesh", ref) }

func (a *fakeAssets) Unregister(id AssetID) {
	if _, ok := a.live[id]; !ok {
		panic(fmt.Sprintf("asset %d unregistered twice", id))
	}
	delete(a.live, id)
	a.log = append(a.log, fmt.Sprintf("-%d", id))
}

func refs(names ...string) []AssetRef {
	out := make([]AssetRef, len(names))
	for i, n := range names {
		out[i] = AssetRef{Key: uint64(i + 1), Name: n}
	}
	return out
}

// go test -run ^TestRenderMeshRegistrySync$ . -count 1
func TestRenderMeshRegistrySync(t *testing.T) {
	assets := newFakeAssets()
	r := newRenderMeshRegistry(assets)
	arrays := []RenderMeshArray{
		{SharedIndex: 1, Version: 1, Materials: refs("red", "blue"), Meshes: refs("cube")},
		{SharedIndex: 2, Version: 1, Materials: refs("green"), Meshes: refs("sphere", "cone")},
	}

	t.Run("register", func(t *testing.T) {
		reg, unreg := r.sync(arrays)
		if reg != 2 || unreg != 0 || r.len() != 2 || len(assets.live) != 6 {
			t.Fatalf("expected 2 arrays and 6 assets, got %d/%d arrays and %d assets", reg, unreg, len(assets.live))
		}
		mesh, mat := r.resolve(MaterialMeshInfo{SharedIndex: 1, MaterialIndex: 1, MeshIndex: 0})
		if assets.live[mesh].Name != "cube" || assets.live[mat].Name != "blue" {
			t.Errorf("resolved to %v and %v", assets.live[mesh], assets.live[mat])
		}
	})
	t.Run("unchanged", func(t *testing.T) {
		before := len(assets.log)
		if reg, unreg := r.sync(arrays); reg != 0 || unreg != 0 {
			t.Errorf("expected no work, got %d/%d", reg, unreg)
		}
		if len(assets.log) != before {
			t.Errorf("unexpected asset calls %v", assets.log[before:])
		}
	})
	t.Run("version change", func(t *testing.T) {
		arrays[0].Version = 2
		before := len(assets.log)
		if reg, unreg := r.sync(arrays); reg != 1 || unreg != 1 {
			t.Fatalf("expected one re-registration, got %d/%d", reg, unreg)
		}
		calls := assets.log[before:]
		want := []string{"+material:red=7", "+material:blue=8", "+mesh:cube=9", "-1", "-2", "-3"}
		if fmt.Sprint(calls) != fmt.Sprint(want) {
			t.Errorf("expected %v, got %v", want, calls)
		}
	})
	t.Run("content change", func(t *testing.T) {
		arrays[1].Meshes = refs("sphere", "torus")
		if reg, unreg := r.sync(arrays); reg != 1 || unreg != 1 {
			t.Fatalf("expected the content change to be detected, got %d/%d", reg, unreg)
		}
		mesh, _ := r.resolve(MaterialMeshInfo{SharedIndex: 2, MeshIndex: 1})
		if assets.live[mesh].Name != "torus" {
			t.Errorf("expected torus, got %v", assets.live[mesh])
		}
	})
	t.Run("not loaded keeps entry", func(t *testing.T) {
		pending := []RenderMeshArray{arrays[0], {SharedIndex: 2, Version: 5}}
		if reg, unreg := r.sync(pending); reg != 0 || unreg != 0 {
			t.Errorf("expected an array without assets to be left alone, got %d/%d", reg, unreg)
		}
		if r.len() != 2 {
			t.Errorf("expected 2 entries, got %d", r.len())
		}
	})
	t.Run("removed", func(t *testing.T) {
		if reg, unreg := r.sync(arrays[:1]); reg != 0 || unreg != 1 {
			t.Fatalf("expected one removal, got %d/%d", reg, unreg)
		}
		if mesh, mat := r.resolve(MaterialMeshInfo{SharedIndex: 2}); mesh != InvalidAsset || mat != InvalidAsset {
			t.Error("expected a removed array to resolve to InvalidAsset")
		}
		if len(assets.live) != 3 {
			t.Errorf("expected 3 live assets, got %d", len(assets.live))
		}
	})
	t.Run("close", func(t *testing.T) {
		r.close()
		if r.len() != 0 || len(assets.live) != 0 {
			t.Errorf("expected everything unregistered, %d entries and %d assets left", r.len(), len(assets.live))
		}
	})
}

func TestRenderMeshRegistryResolveOutOfRange(t *testing.T) {
	r := newRenderMeshRegistry(newFakeAssets())
	r.sync([]RenderMeshArray{{SharedIndex: 0, Materials: refs("m"), Meshes: refs("s")}})
	tests := []MaterialMeshInfo{
		{SharedIndex: 0, MaterialIndex: 1, MeshIndex: 0},
		{SharedIndex: 0, MaterialIndex: 0, MeshIndex: -1},
		{SharedIndex: 9},
	}
	for _, info := range tests {
		mesh, mat := r.resolve(info)
		if info.SharedIndex == 0 && info.MaterialIndex == 1 && (mat != InvalidAsset || mesh == InvalidAsset) {
			t.Errorf("%+v: expected only the material to be invalid, got %d/%d", info, mesh, mat)
		}
		if info.MeshIndex == -1 && (mesh != InvalidAsset || mat == InvalidAsset) {
			t.Errorf("%+v: expected only the mesh to be invalid, got %d/%d", info, mesh, mat)
		}
		if info.SharedIndex == 9 && (mesh != InvalidAsset || mat != InvalidAsset) {
			t.Errorf("%+v: expected both to be invalid", info)
		}
	}
}
