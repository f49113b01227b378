package kansoku

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/edwinsyarief/kansoku/fb"
)

// ErrClosed is returned by Update after Close.
var ErrClosed = errors.New("kansoku: tracker closed")

// parallelTransformThreshold is the number of transform changes below which
// the copy runs on the calling goroutine.
const parallelTransformThreshold = 512

// Host fills the per-frame sets of scene changes.
type Host interface {
	// Collect appends this frame's changes to f, which was reset by the
	// caller.
	Collect(f *Frame)
}

// Sink consumes the changes of one frame. The views in c are only valid
// until Flush returns.
type Sink interface {
	Flush(c *FrameChanges) error
}

// Options configures a Tracker.
type Options struct {
	// InitialCapacity pre-sizes the tracker maps and change buffers.
	InitialCapacity int
	// Workers bounds the goroutines copying transform changes. Values below
	// 2 copy on the calling goroutine.
	Workers int
	// RenderingLayerMask is written into every mesh renderer payload.
	RenderingLayerMask uint32
	// Bus receives lifecycle events. A nil Bus gets a private one.
	Bus *EventBus
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		InitialCapacity:    1024,
		Workers:            4,
		RenderingLayerMask: 1,
	}
}

type objectRecord = TrackingRecord[GameObjectData]
type rendererRecord = TrackingRecord[MeshMaterialData]

// Tracker turns the per-frame sets reported by a Host into change buffers
// handed to a Sink. It is not safe for concurrent use; Update must be called
// from one goroutine at a time.
type Tracker struct {
	host Host
	sink Sink
	opts Options
	bus  *EventBus

	objects   *TrackerMap[Entity, objectRecord]
	renderers *TrackerMap[Entity, rendererRecord]
	meshes    renderMeshRegistry

	frame    Frame
	frameNo  uint64
	appeared map[Entity]struct{}
	removed  map[Entity]struct{}
	moved    []int // indices into frame.Transforms copied this frame

	newObjects       NewObjects
	objectChanges    *ChangeBuffer[GameObjectData]
	transforms       TransformChanges
	hierarchy        HierarchyChanges
	meshRenderers    *SerializedChangeBuffer[*fb.RenderData]
	removedRenderers []InstanceID
	removedObjects   []InstanceID

	renderData fb.RenderData
	materials  [1]uint64
	changes    FrameChanges
	closed     bool
}

// NewTracker creates a Tracker reading from host, registering assets with
// assets and flushing to sink. A nil sink drops every frame.
//
// Parameters:
//   - host: The Host queried once per Update.
//   - assets: The registry render mesh arrays are registered with.
//   - sink: The Sink receiving each frame's changes, or nil.
//   - opts: Tracker options, see DefaultOptions.
//
// Returns:
//   - A pointer to the new Tracker.
func NewTracker(host Host, assets AssetRegistry, sink Sink, opts Options) *Tracker {
	if host == nil || assets == nil {
		panic("kansoku: NewTracker requires a host and an asset registry")
	}
	if opts.InitialCapacity < 0 {
		opts.InitialCapacity = 0
	}
	if opts.Bus == nil {
		opts.Bus = &EventBus{}
	}
	c := opts.InitialCapacity
	t := &Tracker{
		host:          host,
		sink:          sink,
		opts:          opts,
		bus:           opts.Bus,
		objects:       NewTrackerMap[Entity, objectRecord](c),
		renderers:     NewTrackerMap[Entity, rendererRecord](c),
		meshes:        newRenderMeshRegistry(assets),
		appeared:      make(map[Entity]struct{}),
		removed:       make(map[Entity]struct{}),
		objectChanges: NewChangeBuffer[GameObjectData](c),
		meshRenderers: NewSerializedChangeBuffer[*fb.RenderData](fb.RenderDataSerializer{}, c*128),
	}
	log.Infof("kansoku: tracker started with capacity %d and %d workers", c, opts.Workers)
	return t
}

// Bus returns the event bus lifecycle events are published on.
func (t *Tracker) Bus() *EventBus { return t.bus }

// Frame returns the number of frames processed so far.
func (t *Tracker) Frame() uint64 { return t.frameNo }

// Len returns the number of tracked objects.
func (t *Tracker) Len() int { return t.objects.Len() }

// SetWorkers changes the goroutine bound of the transform copy from the next
// Update on. It must not be called concurrently with Update.
func (t *Tracker) SetWorkers(n int) {
	log.Infof("kansoku: transform workers %d -> %d", t.opts.Workers, n)
	t.opts.Workers = n
}

// Object returns the tracking record of e.
func (t *Tracker) Object(e Entity) (TrackingRecord[GameObjectData], bool) {
	return t.objects.Get(e)
}

// MeshRenderer returns the mesh renderer tracking record of e.
func (t *Tracker) MeshRenderer(e Entity) (TrackingRecord[MeshMaterialData], bool) {
	return t.renderers.Get(e)
}

// Ignore excludes e from tracking. It panics if e is already tracked as an
// object or as a mesh renderer, leaving both maps unchanged.
func (t *Tracker) Ignore(e Entity) {
	if t.objects.Contains(e) || t.renderers.Contains(e) {
		invariantf("cannot ignore tracked key %v", e)
	}
	t.objects.Ignore(e)
	t.renderers.Ignore(e)
}

// Unignore makes e eligible for tracking again.
func (t *Tracker) Unignore(e Entity) {
	t.objects.Unignore(e)
	t.renderers.Unignore(e)
}

// Update processes one frame: it collects the host's changes, updates the
// tracking records, fills the change buffers, flushes them to the sink and
// clears them. ctx is only checked before the frame starts.
//
// The returned error is the sink's; the buffers are cleared either way.
func (t *Tracker) Update(ctx context.Context) error {
	if t.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	t.frameNo++
	t.frame.Reset()
	t.host.Collect(&t.frame)
	clear(t.appeared)
	clear(t.removed)

	f := &t.frame
	if reg, unreg := t.meshes.sync(f.RenderMeshArrays); reg+unreg > 0 {
		log.V(1).Infof("kansoku: frame %d registered %d and unregistered %d render mesh arrays", t.frameNo, reg, unreg)
	}
	for i := range f.NewVisible {
		t.addObject(&f.NewVisible[i], true)
	}
	for i := range f.NewInvisible {
		t.addObject(&f.NewInvisible[i], false)
	}
	for _, e := range f.Removed {
		t.removeObject(e)
	}
	t.copyTransforms()
	for i := range f.NewMaterialMeshes {
		t.updateMeshRenderer(&f.NewMaterialMeshes[i])
	}
	for _, e := range f.RemovedMaterialMeshes {
		t.removeMeshRenderer(e)
	}
	for _, e := range f.DisableRendering {
		t.setRendering(e, false)
	}
	for _, e := range f.EnableRendering {
		t.setRendering(e, true)
	}

	err := t.flush()
	t.clearBuffers()
	mTrackedObjects.Set(float64(t.objects.Len()))
	mTrackedMeshRenderers.Set(float64(t.renderers.Len()))
	mFrameLatency.Observe(time.Since(start).Seconds())
	return err
}

func (t *Tracker) addObject(s *ObjectState, visible bool) {
	e := s.Entity
	if e.IsZero() {
		invariantf("host reported the zero entity as a new object")
	}
	if t.objects.IsIgnored(e) {
		log.V(2).Infof("kansoku: skipping ignored %v", e)
		return
	}
	if t.objects.Contains(e) {
		invariantf("%v appeared while already tracked", e)
	}
	var rec objectRecord
	rec.Initialize(IDFor(e), e)
	if validationEnabled && rec.LifecycleStage() != Created {
		invariantf("new record for %v is %s", e, rec.TrackingFlags())
	}
	rec.SetLifecycleStage(Running)
	rec.CustomData = GameObjectData{Active: visible, Layer: s.Layer}
	if !visible {
		rec.SetEnabledState(false)
	}
	t.objects.Add(e, rec)
	t.appeared[e] = struct{}{}
	t.newObjects.add(rec.InstanceID(), IDFor(s.Parent), &s.Transform, rec.CustomData)
	mObjectsCreated.Inc()
	Publish(t.bus, ObjectCreated{Entity: e, ID: rec.InstanceID(), Visible: visible})
	log.V(2).Infof("kansoku: tracking %v as %d", e, rec.InstanceID())
}

func (t *Tracker) removeObject(e Entity) {
	if t.objects.IsIgnored(e) {
		return
	}
	rec := t.objects.At(e)
	rec.MarkForDestruction()
	t.removedObjects = append(t.removedObjects, rec.InstanceID())
	t.objects.Remove(e)
	t.removed[e] = struct{}{}
	if r, ok := t.renderers.Get(e); ok {
		t.destroyMeshRenderer(e, r)
	}
	mObjectsDestroyed.Inc()
	Publish(t.bus, ObjectDestroyed{Entity: e, ID: rec.InstanceID(), Flags: rec.TrackingFlags()})
	log.V(2).Infof("kansoku: %v destroyed", e)
}

// copyTransforms fills the pre-sized transform and hierarchy outputs. The
// copy is split into disjoint index ranges, one per worker.
func (t *Tracker) copyTransforms() {
	src := t.frame.Transforms
	moved := t.moved[:0]
	for i := range src {
		e := src[i].Entity
		if _, ok := t.appeared[e]; ok {
			continue
		}
		if !t.objects.Contains(e) {
			log.V(2).Infof("kansoku: transform of untracked %v dropped", e)
			continue
		}
		moved = append(moved, i)
	}
	t.moved = moved

	n := len(moved)
	t.transforms.resize(n)
	t.hierarchy.resize(n)
	workers := t.opts.Workers
	if workers < 2 || n < parallelTransformThreshold {
		t.copyTransformRange(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("kansoku: copying transforms [%d, %d): %v", lo, hi, r)
				}
			}()
			t.copyTransformRange(lo, hi)
			return nil
		})
	}
	// A failed worker is re-raised on the calling goroutine.
	if err := g.Wait(); err != nil {
		panic(err)
	}
}

func (t *Tracker) copyTransformRange(lo, hi int) {
	src := t.frame.Transforms
	for i := lo; i < hi; i++ {
		s := &src[t.moved[i]]
		id := IDFor(s.Entity)
		t.transforms.IDs[i] = id
		t.transforms.Positions[i] = s.Transform.Position
		t.transforms.Rotations[i] = s.Transform.Rotation
		t.transforms.Scales[i] = s.Transform.Scale
		t.hierarchy.IDs[i] = id
		t.hierarchy.ParentIDs[i] = IDFor(s.Parent)
	}
}

func (t *Tracker) updateMeshRenderer(s *MaterialMeshState) {
	e := s.Entity
	if _, ok := t.removed[e]; ok {
		return
	}
	if t.renderers.IsIgnored(e) {
		return
	}
	rec, ok := t.renderers.Get(e)
	if !ok {
		if e.IsZero() {
			invariantf("host reported mesh renderer info for the zero entity")
		}
		rec.Initialize(IDFor(e), e)
		rec.SetLifecycleStage(Running)
	}
	mesh, material := t.meshes.resolve(s.Info)
	rec.CustomData = MeshMaterialData{MeshID: mesh, MaterialID: material}
	rec.MarkDirty()

	t.materials[0] = uint64(material)
	t.renderData = fb.RenderData{
		MeshID:             uint64(mesh),
		RenderingLayerMask: t.opts.RenderingLayerMask,
		MaterialIDs:        t.materials[:],
	}
	t.meshRenderers.Add(rec.Object(), &t.renderData)
	rec.MarkClean()
	t.renderers.Set(e, rec)
	Publish(t.bus, MeshRendererUpdated{Entity: e, ID: rec.InstanceID(), Data: rec.CustomData})
}

func (t *Tracker) removeMeshRenderer(e Entity) {
	if _, ok := t.removed[e]; ok {
		return
	}
	if t.renderers.IsIgnored(e) {
		return
	}
	t.destroyMeshRenderer(e, t.renderers.At(e))
}

func (t *Tracker) destroyMeshRenderer(e Entity, rec rendererRecord) {
	rec.MarkForDestruction()
	t.removedRenderers = append(t.removedRenderers, rec.InstanceID())
	t.renderers.Remove(e)
	Publish(t.bus, MeshRendererDestroyed{Entity: e, ID: rec.InstanceID(), Flags: rec.TrackingFlags()})
}

// setRendering applies an enable or disable rendering change to a tracked
// object and records it in the object change buffer.
func (t *Tracker) setRendering(e Entity, visible bool) {
	if _, ok := t.appeared[e]; ok {
		return
	}
	if _, ok := t.removed[e]; ok {
		return
	}
	if t.objects.IsIgnored(e) {
		return
	}
	rec := t.objects.At(e)
	rec.SetEnabledState(visible)
	rec.CustomData.Active = visible
	rec.MarkDirty()
	t.objectChanges.Add(rec.Object(), rec.CustomData)
	flags := rec.TrackingFlags()
	rec.MarkClean()
	t.objects.Set(e, rec)
	Publish(t.bus, VisibilityChanged{Entity: e, ID: rec.InstanceID(), Flags: flags})
}

func (t *Tracker) flush() error {
	c := &t.changes
	*c = FrameChanges{
		Frame:                t.frameNo,
		NewObjects:           t.newObjects,
		ObjectChanges:        t.objectChanges.List(),
		Transforms:           t.transforms,
		Hierarchy:            t.hierarchy,
		MeshRenderers:        t.meshRenderers.List(),
		RemovedMeshRenderers: t.removedRenderers,
		RemovedObjects:       t.removedObjects,
	}
	empty := c.IsEmpty()
	var err error
	if !empty && t.sink != nil {
		if err = t.sink.Flush(c); err != nil {
			mSinkErrors.Inc()
			log.Errorf("kansoku: flushing frame %d: %v", t.frameNo, err)
			err = fmt.Errorf("kansoku: flush frame %d: %w", t.frameNo, err)
		}
	}
	if !empty {
		mNewObjectRecords.Add(float64(c.NewObjects.Len()))
		mObjectChangeRecords.Add(float64(c.ObjectChanges.Count()))
		mTransformRecords.Add(float64(c.Transforms.Len()))
		mMeshRendererRecords.Add(float64(c.MeshRenderers.Count()))
		mRemovedRendererRecords.Add(float64(len(c.RemovedMeshRenderers)))
		mRemovedObjectRecords.Add(float64(len(c.RemovedObjects)))
		log.V(1).Infof("kansoku: frame %d: %d new, %d changed, %d moved, %d renderers, %d renderers removed, %d removed",
			t.frameNo, c.NewObjects.Len(), c.ObjectChanges.Count(), c.Transforms.Len(),
			c.MeshRenderers.Count(), len(c.RemovedMeshRenderers), len(c.RemovedObjects))
	}
	*c = FrameChanges{}
	Publish(t.bus, FrameFlushed{Frame: t.frameNo, Empty: empty, Err: err})
	return err
}

func (t *Tracker) clearBuffers() {
	t.newObjects.clear()
	t.objectChanges.Clear()
	t.transforms.resize(0)
	t.hierarchy.resize(0)
	t.meshRenderers.Clear()
	t.removedRenderers = t.removedRenderers[:0]
	t.removedObjects = t.removedObjects[:0]
	t.moved = t.moved[:0]
}

// Close unregisters every asset, releases all backing storage and makes
// further Updates fail with ErrClosed. Closing twice is a no-op.
func (t *Tracker) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.meshes.close()
	t.objects.Dispose()
	t.renderers.Dispose()
	t.objectChanges.Dispose()
	t.meshRenderers.Dispose()
	t.newObjects = NewObjects{}
	t.transforms = TransformChanges{}
	t.hierarchy = HierarchyChanges{}
	t.removedRenderers = nil
	t.removedObjects = nil
	t.frame = Frame{}
	mTrackedObjects.Set(0)
	mTrackedMeshRenderers.Set(0)
	log.Infof("kansoku: tracker closed after %d frames", t.frameNo)
	return nil
}
