package kansoku

import "github.com/edwinsyarief/kansoku/fb"

// ObjectState is the host-side state of one scene object as reported for a
// frame.
type ObjectState struct {
	Entity    Entity
	Parent    Entity // zero for root objects
	Transform Transform
	Layer     int32
}

// MaterialMeshState pairs an object with the mesh renderer info it carries
// this frame.
type MaterialMeshState struct {
	Entity Entity
	Info   MaterialMeshInfo
}

// Frame is the caller-owned scratch filled by a Host once per frame. The
// sets are expected to be disjoint per object, except that an object may
// appear in NewVisible or NewInvisible and also carry mesh renderer info.
//
// The Tracker owns one Frame and resets it before every Collect, so hosts
// should append to the slices rather than replace them.
type Frame struct {
	NewVisible            []ObjectState
	NewInvisible          []ObjectState
	Removed               []Entity
	Transforms            []ObjectState
	NewMaterialMeshes     []MaterialMeshState
	RemovedMaterialMeshes []Entity
	EnableRendering       []Entity
	DisableRendering      []Entity
	RenderMeshArrays      []RenderMeshArray
}

// Reset truncates every set and keeps the allocated capacity.
func (f *Frame) Reset() {
	f.NewVisible = f.NewVisible[:0]
	f.NewInvisible = f.NewInvisible[:0]
	f.Removed = f.Removed[:0]
	f.Transforms = f.Transforms[:0]
	f.NewMaterialMeshes = f.NewMaterialMeshes[:0]
	f.RemovedMaterialMeshes = f.RemovedMaterialMeshes[:0]
	f.EnableRendering = f.EnableRendering[:0]
	f.DisableRendering = f.DisableRendering[:0]
	f.RenderMeshArrays = f.RenderMeshArrays[:0]
}

// NewObjects holds the one-shot creation payload of the objects that started
// being tracked this frame. All slices have the same length.
type NewObjects struct {
	IDs       []InstanceID
	ParentIDs []InstanceID
	Positions []Vec3
	Rotations []Quat
	Scales    []Vec3
	Data      []GameObjectData
}

// Len returns the number of new objects.
func (n *NewObjects) Len() int { return len(n.IDs) }

func (n *NewObjects) add(id, parent InstanceID, tr *Transform, data GameObjectData) {
	n.IDs = append(n.IDs, id)
	n.ParentIDs = append(n.ParentIDs, parent)
	n.Positions = append(n.Positions, tr.Position)
	n.Rotations = append(n.Rotations, tr.Rotation)
	n.Scales = append(n.Scales, tr.Scale)
	n.Data = append(n.Data, data)
}

func (n *NewObjects) clear() {
	n.IDs = n.IDs[:0]
	n.ParentIDs = n.ParentIDs[:0]
	n.Positions = n.Positions[:0]
	n.Rotations = n.Rotations[:0]
	n.Scales = n.Scales[:0]
	n.Data = n.Data[:0]
}

// TransformChanges holds the new world transforms of tracked objects. All
// slices have the same length.
type TransformChanges struct {
	IDs       []InstanceID
	Positions []Vec3
	Rotations []Quat
	Scales    []Vec3
}

// Len returns the number of transform changes.
func (c *TransformChanges) Len() int { return len(c.IDs) }

func (c *TransformChanges) resize(n int) {
	c.IDs = resizeSlice(c.IDs, n)
	c.Positions = resizeSlice(c.Positions, n)
	c.Rotations = resizeSlice(c.Rotations, n)
	c.Scales = resizeSlice(c.Scales, n)
}

// HierarchyChanges holds the parents of the objects in TransformChanges, in
// the same order.
type HierarchyChanges struct {
	IDs       []InstanceID
	ParentIDs []InstanceID
}

// Len returns the number of hierarchy changes.
func (c *HierarchyChanges) Len() int { return len(c.IDs) }

func (c *HierarchyChanges) resize(n int) {
	c.IDs = resizeSlice(c.IDs, n)
	c.ParentIDs = resizeSlice(c.ParentIDs, n)
}

// FrameChanges is what a Sink receives at the end of a frame. Every view
// aliases tracker-owned storage and is only valid for the duration of
// Sink.Flush.
type FrameChanges struct {
	Frame                uint64
	NewObjects           NewObjects
	ObjectChanges        ChangeList[GameObjectData]
	Transforms           TransformChanges
	Hierarchy            HierarchyChanges
	MeshRenderers        SerializedChangeList[*fb.RenderData]
	RemovedMeshRenderers []InstanceID
	RemovedObjects       []InstanceID
}

// IsEmpty reports whether nothing changed this frame.
func (c *FrameChanges) IsEmpty() bool {
	return c.NewObjects.Len() == 0 &&
		c.ObjectChanges.IsEmpty() &&
		c.Transforms.Len() == 0 &&
		c.MeshRenderers.IsEmpty() &&
		len(c.RemovedMeshRenderers) == 0 &&
		len(c.RemovedObjects) == 0
}
