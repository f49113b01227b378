// Package scene is an in-memory scene graph that reports its changes to a
// kansoku.Tracker. It backs the simulator, the profiling entry point and the
// tracker's integration tests.
package scene

import (
	"slices"

	"github.com/edwinsyarief/kansoku"
)

type pending uint8

const (
	pendingMove pending = 1 << iota
	pendingMesh
)

// slot holds the state of one entity ID, live or free.
type slot struct {
	version uint32 // 0 if the ID is free
	state   kansoku.ObjectState
	visible bool
	mesh    kansoku.MaterialMeshInfo
	hasMesh bool

	// What the tracker has been told so far.
	known        bool
	knownVisible bool
	knownMesh    bool

	pending pending
	queued  bool
}

// SpawnOptions describes a new object.
type SpawnOptions struct {
	Parent    kansoku.Entity
	Transform kansoku.Transform
	Layer     int32
	Hidden    bool
}

// Scene is a set of objects with transforms, visibility and mesh renderers.
// Mutations are queued and reported by the next Collect. A Scene is not safe
// for concurrent use.
type Scene struct {
	slots           []slot
	freeIDs         []uint32 // stack of recycled entity IDs
	capacity        int
	nextVersion     uint32
	live            int
	touched         []uint32
	removed         []kansoku.Entity
	renderArrays    map[int32]kansoku.RenderMeshArray
	renderArrayKeys []int32
	assets          Assets
}

// New creates a Scene with room for capacity objects.
//
// Parameters:
//   - capacity: The number of objects to pre-allocate memory for.
//
// Returns:
//   - The newly created Scene.
func New(capacity int) *Scene {
	s := &Scene{
		capacity:     capacity,
		slots:        make([]slot, capacity),
		freeIDs:      make([]uint32, capacity),
		nextVersion:  1,
		renderArrays: make(map[int32]kansoku.RenderMeshArray),
	}
	for i := range s.freeIDs {
		s.freeIDs[i] = uint32(capacity - 1 - i)
	}
	return s
}

// Assets returns the registry the tracker should register assets with.
func (s *Scene) Assets() *Assets { return &s.assets }

// Len returns the number of live objects.
func (s *Scene) Len() int { return s.live }

// IsValid reports whether e names a live object.
func (s *Scene) IsValid(e kansoku.Entity) bool {
	if int(e.ID) >= len(s.slots) {
		return false
	}
	v := s.slots[e.ID].version
	return v != 0 && v == e.Version
}

// expand grows the slot table when no free ID is left.
func (s *Scene) expand(additional int) {
	oldCap := s.capacity
	newCap := max(oldCap*2, oldCap+additional, 1)
	delta := newCap - oldCap
	s.slots = append(s.slots, make([]slot, delta)...)
	newFree := make([]uint32, delta)
	for i := range delta {
		newFree[i] = uint32(newCap - 1 - i)
	}
	s.freeIDs = append(s.freeIDs, newFree...)
	s.capacity = newCap
}

// Spawn adds an object and returns its entity.
func (s *Scene) Spawn(o SpawnOptions) kansoku.Entity {
	if len(s.freeIDs) == 0 {
		s.expand(1)
	}
	last := len(s.freeIDs) - 1
	id := s.freeIDs[last]
	s.freeIDs = s.freeIDs[:last]

	e := kansoku.Entity{ID: id, Version: s.nextVersion}
	s.nextVersion++
	sl := &s.slots[id]
	queued := sl.queued
	*sl = slot{
		version: e.Version,
		state:   kansoku.ObjectState{Entity: e, Parent: o.Parent, Transform: o.Transform, Layer: o.Layer},
		visible: !o.Hidden,
		queued:  queued,
	}
	s.touch(id)
	s.live++
	return e
}

// Despawn removes e. Stale entities are ignored.
func (s *Scene) Despawn(e kansoku.Entity) {
	if !s.IsValid(e) {
		return
	}
	sl := &s.slots[e.ID]
	if sl.known {
		s.removed = append(s.removed, e)
	}
	queued := sl.queued
	*sl = slot{queued: queued}
	s.freeIDs = append(s.freeIDs, e.ID)
	s.live--
}

// Move sets the world transform of e.
func (s *Scene) Move(e kansoku.Entity, tr kansoku.Transform) {
	if sl := s.get(e); sl != nil {
		sl.state.Transform = tr
		sl.pending |= pendingMove
		s.touch(e.ID)
	}
}

// SetParent re-parents e. The zero Entity makes it a root object.
func (s *Scene) SetParent(e, parent kansoku.Entity) {
	if sl := s.get(e); sl != nil {
		sl.state.Parent = parent
		sl.pending |= pendingMove
		s.touch(e.ID)
	}
}

// SetVisible shows or hides e.
func (s *Scene) SetVisible(e kansoku.Entity, visible bool) {
	if sl := s.get(e); sl != nil {
		sl.visible = visible
		s.touch(e.ID)
	}
}

// SetMesh gives e a mesh renderer, or changes the one it has.
func (s *Scene) SetMesh(e kansoku.Entity, info kansoku.MaterialMeshInfo) {
	if sl := s.get(e); sl != nil {
		sl.mesh = info
		sl.hasMesh = true
		sl.pending |= pendingMesh
		s.touch(e.ID)
	}
}

// ClearMesh removes the mesh renderer of e.
func (s *Scene) ClearMesh(e kansoku.Entity) {
	if sl := s.get(e); sl != nil && sl.hasMesh {
		sl.hasMesh = false
		sl.mesh = kansoku.MaterialMeshInfo{}
		sl.pending |= pendingMesh
		s.touch(e.ID)
	}
}

// SetRenderMeshArray adds or replaces the render mesh array with a's shared
// index.
func (s *Scene) SetRenderMeshArray(a kansoku.RenderMeshArray) {
	if _, ok := s.renderArrays[a.SharedIndex]; !ok {
		s.renderArrayKeys = append(s.renderArrayKeys, a.SharedIndex)
		slices.Sort(s.renderArrayKeys)
	}
	s.renderArrays[a.SharedIndex] = a
}

// RemoveRenderMeshArray drops the render mesh array with shared index idx.
func (s *Scene) RemoveRenderMeshArray(idx int32) {
	if _, ok := s.renderArrays[idx]; !ok {
		return
	}
	delete(s.renderArrays, idx)
	if i, found := slices.BinarySearch(s.renderArrayKeys, idx); found {
		s.renderArrayKeys = slices.Delete(s.renderArrayKeys, i, i+1)
	}
}

// Collect reports everything that changed since the previous call.
func (s *Scene) Collect(f *kansoku.Frame) {
	f.Removed = append(f.Removed, s.removed...)
	s.removed = s.removed[:0]

	for _, id := range s.touched {
		sl := &s.slots[id]
		sl.queued = false
		if sl.version == 0 {
			continue
		}
		if !sl.known {
			sl.known = true
			sl.knownVisible = sl.visible
			if sl.visible {
				f.NewVisible = append(f.NewVisible, sl.state)
			} else {
				f.NewInvisible = append(f.NewInvisible, sl.state)
			}
		} else {
			if sl.pending&pendingMove != 0 {
				f.Transforms = append(f.Transforms, sl.state)
			}
			if sl.visible != sl.knownVisible {
				sl.knownVisible = sl.visible
				if sl.visible {
					f.EnableRendering = append(f.EnableRendering, sl.state.Entity)
				} else {
					f.DisableRendering = append(f.DisableRendering, sl.state.Entity)
				}
			}
		}
		if sl.pending&pendingMesh != 0 {
			switch {
			case sl.hasMesh:
				sl.knownMesh = true
				f.NewMaterialMeshes = append(f.NewMaterialMeshes, kansoku.MaterialMeshState{Entity: sl.state.Entity, Info: sl.mesh})
			case sl.knownMesh:
				sl.knownMesh = false
				f.RemovedMaterialMeshes = append(f.RemovedMaterialMeshes, sl.state.Entity)
			}
		}
		sl.pending = 0
	}
	s.touched = s.touched[:0]

	for _, idx := range s.renderArrayKeys {
		f.RenderMeshArrays = append(f.RenderMeshArrays, s.renderArrays[idx])
	}
}

func (s *Scene) get(e kansoku.Entity) *slot {
	if !s.IsValid(e) {
		return nil
	}
	return &s.slots[e.ID]
}

func (s *Scene) touch(id uint32) {
	if sl := &s.slots[id]; !sl.queued {
		sl.queued = true
		s.touched = append(s.touched, id)
	}
}
