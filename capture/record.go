package capture

import "github.com/edwinsyarief/kansoku"

// NewObject is a decoded creation entry.
type NewObject struct {
	ID       uint64       `msgpack:"id"`
	Parent   uint64       `msgpack:"parent,omitempty"`
	Position kansoku.Vec3 `msgpack:"pos"`
	Rotation kansoku.Quat `msgpack:"rot"`
	Scale    kansoku.Vec3 `msgpack:"scale"`
	Active   bool         `msgpack:"active"`
	Layer    int32        `msgpack:"layer,omitempty"`
}

// ObjectChange is a decoded object change buffer record.
type ObjectChange struct {
	ID     uint64 `msgpack:"id"`
	Flags  uint32 `msgpack:"flags"`
	Active bool   `msgpack:"active"`
	Layer  int32  `msgpack:"layer,omitempty"`
}

// Transform is a decoded transform and hierarchy entry.
type Transform struct {
	ID       uint64       `msgpack:"id"`
	Parent   uint64       `msgpack:"parent,omitempty"`
	Position kansoku.Vec3 `msgpack:"pos"`
	Rotation kansoku.Quat `msgpack:"rot"`
	Scale    kansoku.Vec3 `msgpack:"scale"`
}

// MeshRenderer is a decoded mesh renderer record.
type MeshRenderer struct {
	ID                 uint64   `msgpack:"id"`
	Flags              uint32   `msgpack:"flags"`
	MeshID             uint64   `msgpack:"mesh"`
	RenderingLayerMask uint32   `msgpack:"mask"`
	MaterialIDs        []uint64 `msgpack:"materials,omitempty"`
}

// FrameRecord is everything a tracker flushed for one frame, decoded out of
// the change buffers so that it does not depend on the in-memory layout of
// the process that wrote it.
type FrameRecord struct {
	Frame                uint64         `msgpack:"frame"`
	NewObjects           []NewObject    `msgpack:"new,omitempty"`
	ObjectChanges        []ObjectChange `msgpack:"changed,omitempty"`
	Transforms           []Transform    `msgpack:"moved,omitempty"`
	MeshRenderers        []MeshRenderer `msgpack:"renderers,omitempty"`
	RemovedMeshRenderers []uint64       `msgpack:"renderers_removed,omitempty"`
	RemovedObjects       []uint64       `msgpack:"removed,omitempty"`
}

// FromChanges decodes every view of c into a FrameRecord. The result does
// not alias c.
func FromChanges(c *kansoku.FrameChanges) *FrameRecord {
	rec := &FrameRecord{Frame: c.Frame}
	if n := c.NewObjects.Len(); n > 0 {
		rec.NewObjects = make([]NewObject, n)
		for i := range rec.NewObjects {
			rec.NewObjects[i] = NewObject{
				ID:       uint64(c.NewObjects.IDs[i]),
				Parent:   uint64(c.NewObjects.ParentIDs[i]),
				Position: c.NewObjects.Positions[i],
				Rotation: c.NewObjects.Rotations[i],
				Scale:    c.NewObjects.Scales[i],
				Active:   c.NewObjects.Data[i].Active,
				Layer:    c.NewObjects.Data[i].Layer,
			}
		}
	}
	for ch := range c.ObjectChanges.All() {
		rec.ObjectChanges = append(rec.ObjectChanges, ObjectChange{
			ID:     uint64(ch.InstanceID),
			Flags:  uint32(ch.TrackingFlags),
			Active: ch.Data.Active,
			Layer:  ch.Data.Layer,
		})
	}
	if n := c.Transforms.Len(); n > 0 {
		rec.Transforms = make([]Transform, n)
		for i := range rec.Transforms {
			rec.Transforms[i] = Transform{
				ID:       uint64(c.Transforms.IDs[i]),
				Parent:   uint64(c.Hierarchy.ParentIDs[i]),
				Position: c.Transforms.Positions[i],
				Rotation: c.Transforms.Rotations[i],
				Scale:    c.Transforms.Scales[i],
			}
		}
	}
	for ch := range c.MeshRenderers.All() {
		mr := MeshRenderer{ID: uint64(ch.InstanceID), Flags: uint32(ch.TrackingFlags)}
		if ch.Data != nil {
			mr.MeshID = ch.Data.MeshID
			mr.RenderingLayerMask = ch.Data.RenderingLayerMask
			mr.MaterialIDs = ch.Data.MaterialIDs
		}
		rec.MeshRenderers = append(rec.MeshRenderers, mr)
	}
	rec.RemovedMeshRenderers = toUint64s(c.RemovedMeshRenderers)
	rec.RemovedObjects = toUint64s(c.RemovedObjects)
	return rec
}

func toUint64s(ids []kansoku.InstanceID) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
