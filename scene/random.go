package scene

import (
	"fmt"
	"math/rand/v2"

	"github.com/edwinsyarief/kansoku"
)

// Populate fills an empty scene with arrays render mesh arrays and objects
// objects, every third of them hidden and most of them with a mesh.
func (s *Scene) Populate(rng *rand.Rand, arrays, objects int) {
	for i := range arrays {
		s.SetRenderMeshArray(randomArray(rng, int32(i), 1))
	}
	for range objects {
		s.spawnRandom(rng, arrays)
	}
}

// Step applies n random mutations, the kind of churn a running game
// produces in one frame. arrays is the number of render mesh arrays objects
// may draw from.
func (s *Scene) Step(rng *rand.Rand, n, arrays int) {
	for range n {
		switch op := rng.IntN(100); {
		case op < 50:
			if e, ok := s.randomLive(rng); ok {
				s.Move(e, randomTransform(rng))
			}
		case op < 65:
			if e, ok := s.randomLive(rng); ok {
				s.SetVisible(e, rng.IntN(2) == 0)
			}
		case op < 75:
			if e, ok := s.randomLive(rng); ok && arrays > 0 {
				s.SetMesh(e, randomMesh(rng, arrays))
			}
		case op < 78:
			if e, ok := s.randomLive(rng); ok {
				s.ClearMesh(e)
			}
		case op < 89:
			s.spawnRandom(rng, arrays)
		case op < 99:
			if e, ok := s.randomLive(rng); ok {
				s.Despawn(e)
			}
		default:
			if arrays > 0 {
				idx := int32(rng.IntN(arrays))
				version := uint32(1)
				if a, ok := s.renderArrays[idx]; ok {
					version = a.Version + 1
				}
				s.SetRenderMeshArray(randomArray(rng, idx, version))
			}
		}
	}
}

func (s *Scene) spawnRandom(rng *rand.Rand, arrays int) kansoku.Entity {
	o := SpawnOptions{
		Transform: randomTransform(rng),
		Layer:     int32(rng.IntN(8)),
		Hidden:    rng.IntN(3) == 0,
	}
	if p, ok := s.randomLive(rng); ok && rng.IntN(2) == 0 {
		o.Parent = p
	}
	e := s.Spawn(o)
	if arrays > 0 && rng.IntN(4) != 0 {
		s.SetMesh(e, randomMesh(rng, arrays))
	}
	return e
}

// randomLive picks a live object, probing a few random slots.
func (s *Scene) randomLive(rng *rand.Rand) (kansoku.Entity, bool) {
	if s.live == 0 {
		return kansoku.Entity{}, false
	}
	for range 8 {
		id := uint32(rng.IntN(len(s.slots)))
		if sl := &s.slots[id]; sl.version != 0 {
			return kansoku.Entity{ID: id, Version: sl.version}, true
		}
	}
	return kansoku.Entity{}, false
}

func randomTransform(rng *rand.Rand) kansoku.Transform {
	return kansoku.Transform{
		Position: kansoku.Vec3{X: rng.Float32()*200 - 100, Y: rng.Float32() * 50, Z: rng.Float32()*200 - 100},
		Rotation: kansoku.IdentityQuat,
		Scale:    kansoku.Vec3{X: 1, Y: 1, Z: 1},
	}
}

func randomMesh(rng *rand.Rand, arrays int) kansoku.MaterialMeshInfo {
	return kansoku.MaterialMeshInfo{
		SharedIndex:   int32(rng.IntN(arrays)),
		MaterialIndex: int32(rng.IntN(4)),
		MeshIndex:     int32(rng.IntN(3)),
	}
}

func randomArray(rng *rand.Rand, idx int32, version uint32) kansoku.RenderMeshArray {
	a := kansoku.RenderMeshArray{
		SharedIndex: idx,
		Version:     version,
		Materials:   make([]kansoku.AssetRef, 4),
		Meshes:      make([]kansoku.AssetRef, 3),
	}
	for i := range a.Materials {
		a.Materials[i] = kansoku.AssetRef{Key: rng.Uint64(), Name: fmt.Sprintf("material-%d-%d", idx, i)}
	}
	for i := range a.Meshes {
		a.Meshes[i] = kansoku.AssetRef{Key: rng.Uint64(), Name: fmt.Sprintf("mesh-%d-%d", idx, i)}
	}
	return a
}
