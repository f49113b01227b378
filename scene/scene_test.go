package scene_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/edwinsyarief/kansoku"
	"github.com/edwinsyarief/kansoku/scene"
)

type countingSink struct {
	frames, created, removed, changes, transforms, renderers int
}

func (s *countingSink) Flush(c *kansoku.FrameChanges) error {
	s.frames++
	s.created += c.NewObjects.Len()
	s.removed += len(c.RemovedObjects)
	s.changes += c.ObjectChanges.Count()
	s.transforms += c.Transforms.Len()
	s.renderers += c.MeshRenderers.Count()
	return nil
}

func collect(s *scene.Scene) *kansoku.Frame {
	f := &kansoku.Frame{}
	s.Collect(f)
	return f
}

// go test -run ^TestSceneCollect$ ./scene -count 1
func TestSceneCollect(t *testing.T) {
	s := scene.New(2)
	a := s.Spawn(scene.SpawnOptions{Layer: 1})
	b := s.Spawn(scene.SpawnOptions{Parent: a, Hidden: true})
	s.Move(a, kansoku.Transform{Position: kansoku.Vec3{X: 4}})
	s.SetMesh(b, kansoku.MaterialMeshInfo{SharedIndex: 1})

	f := collect(s)
	if len(f.NewVisible) != 1 || f.NewVisible[0].Entity != a || f.NewVisible[0].Transform.Position.X != 4 {
		t.Errorf("unexpected visible objects %+v", f.NewVisible)
	}
	if len(f.NewInvisible) != 1 || f.NewInvisible[0].Parent != a {
		t.Errorf("unexpected invisible objects %+v", f.NewInvisible)
	}
	if len(f.Transforms) != 0 {
		t.Error("new objects must not be reported as moved")
	}
	if len(f.NewMaterialMeshes) != 1 || f.NewMaterialMeshes[0].Entity != b {
		t.Errorf("unexpected mesh renderers %+v", f.NewMaterialMeshes)
	}

	s.Move(a, kansoku.Transform{})
	s.SetVisible(b, true)
	s.SetVisible(a, true)
	s.ClearMesh(b)
	f = collect(s)
	if len(f.Transforms) != 1 || len(f.EnableRendering) != 1 || f.EnableRendering[0] != b {
		t.Errorf("expected one move and b enabled, got %+v", f)
	}
	if len(f.DisableRendering) != 0 {
		t.Error("an unchanged visibility must not be reported")
	}
	if len(f.RemovedMaterialMeshes) != 1 || f.RemovedMaterialMeshes[0] != b {
		t.Errorf("expected b's mesh renderer removed, got %v", f.RemovedMaterialMeshes)
	}

	s.Despawn(a)
	c := s.Spawn(scene.SpawnOptions{})
	if c.ID != a.ID || c.Version == a.Version {
		t.Errorf("expected %v to recycle the ID of %v", c, a)
	}
	f = collect(s)
	if len(f.Removed) != 1 || f.Removed[0] != a || len(f.NewVisible) != 1 || f.NewVisible[0].Entity != c {
		t.Errorf("expected a removed and c created, got %+v", f)
	}
	if s.IsValid(a) || !s.IsValid(c) || s.Len() != 2 {
		t.Error("unexpected liveness after recycling")
	}
}

// go test -run ^TestSceneUnreportedObjects$ ./scene -count 1
func TestSceneUnreportedObjects(t *testing.T) {
	s := scene.New(0)
	e := s.Spawn(scene.SpawnOptions{})
	s.SetMesh(e, kansoku.MaterialMeshInfo{})
	s.Despawn(e)
	f := collect(s)
	if len(f.NewVisible)+len(f.Removed)+len(f.NewMaterialMeshes) != 0 {
		t.Errorf("an object spawned and despawned between frames must not be reported, got %+v", f)
	}
	s.Despawn(e)
	s.Move(e, kansoku.Transform{})
	if f := collect(s); len(f.Transforms) != 0 || len(f.Removed) != 0 {
		t.Error("stale entities must be ignored")
	}
}

// go test -run ^TestSceneRenderMeshArrays$ ./scene -count 1
func TestSceneRenderMeshArrays(t *testing.T) {
	s := scene.New(0)
	for _, idx := range []int32{5, 1, 3} {
		s.SetRenderMeshArray(kansoku.RenderMeshArray{SharedIndex: idx})
	}
	s.RemoveRenderMeshArray(3)
	s.RemoveRenderMeshArray(42)
	f := collect(s)
	if len(f.RenderMeshArrays) != 2 || f.RenderMeshArrays[0].SharedIndex != 1 || f.RenderMeshArrays[1].SharedIndex != 5 {
		t.Errorf("expected arrays 1 and 5 in order, got %+v", f.RenderMeshArrays)
	}
	if f := collect(s); len(f.RenderMeshArrays) != 2 {
		t.Error("arrays must be reported every frame")
	}
}

// go test -run ^TestSceneDrivesTracker$ ./scene -count 1
func TestSceneDrivesTracker(t *testing.T) {
	const arrays = 4
	rng := rand.New(rand.NewPCG(1, 2))
	s := scene.New(64)
	s.Populate(rng, arrays, 500)

	sink := &countingSink{}
	opts := kansoku.DefaultOptions()
	opts.Workers = 3
	tr := kansoku.NewTracker(s, s.Assets(), sink, opts)
	ctx := context.Background()
	for frame := range 200 {
		s.Step(rng, 300, arrays)
		if err := tr.Update(ctx); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		if tr.Len() != s.Len() {
			t.Fatalf("frame %d: tracker holds %d objects, scene %d", frame, tr.Len(), s.Len())
		}
	}
	if sink.created-sink.removed != tr.Len() {
		t.Errorf("created %d and removed %d, tracker holds %d", sink.created, sink.removed, tr.Len())
	}
	if sink.transforms == 0 || sink.changes == 0 || sink.renderers == 0 {
		t.Errorf("expected every kind of change, got %+v", sink)
	}
	if s.Assets().Len() != arrays*7 {
		t.Errorf("expected %d live assets, got %d", arrays*7, s.Assets().Len())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Assets().Len() != 0 {
		t.Errorf("expected Close to release every asset, %d left", s.Assets().Len())
	}
}

func BenchmarkSceneFrame(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	s := scene.New(10000)
	s.Populate(rng, 8, 10000)
	tr := kansoku.NewTracker(s, s.Assets(), nil, kansoku.DefaultOptions())
	ctx := context.Background()
	_ = tr.Update(ctx)
	b.ReportAllocs()
	for b.Loop() {
		s.Step(rng, 1000, 8)
		_ = tr.Update(ctx)
	}
}
