package kansoku

// TrackingRecord is the per-object state kept by a TrackerMap: the object's
// InstanceID, its TrackingFlags, a debug name in diagnostic builds and
// caller-defined CustomData describing what the renderer sees.
//
// T must be a fixed-size value without pointers so that records can be
// copied into fixed-stride change buffers.
type TrackingRecord[T any] struct {
	id         InstanceID
	flags      TrackingFlags
	name       debugName
	CustomData T
}

// Initialize assigns id to the record, names it after e and sets its flags
// to Created. In validation builds initializing a record twice panics.
func (r *TrackingRecord[T]) Initialize(id InstanceID, e Entity) {
	if validationEnabled && r.flags != 0 {
		invariantf("record %d initialized twice (flags %s)", r.id, r.flags)
	}
	r.id = id
	r.name.set(e.String())
	r.flags.Initialize()
}

// InstanceID returns the id the record was initialized with.
func (r *TrackingRecord[T]) InstanceID() InstanceID { return r.id }

// TrackingFlags returns the packed flags.
func (r *TrackingRecord[T]) TrackingFlags() TrackingFlags { return r.flags }

// IsActive reports whether the owner hierarchy leaves the object active.
func (r *TrackingRecord[T]) IsActive() bool { return r.flags.IsActive() }

// IsEnabled reports whether rendering of the object is enabled.
func (r *TrackingRecord[T]) IsEnabled() bool { return r.flags.IsEnabled() }

// IsActiveAndEnabled reports whether the object should currently be rendered.
func (r *TrackingRecord[T]) IsActiveAndEnabled() bool { return r.flags.IsActiveAndEnabled() }

// IsDirty reports whether the record has changes not yet emitted.
func (r *TrackingRecord[T]) IsDirty() bool { return r.flags.IsDirty() }

// LifecycleStage returns Created, Running or Destroyed.
func (r *TrackingRecord[T]) LifecycleStage() TrackingFlags { return r.flags.LifecycleStage() }

// SetLifecycleStage replaces the lifecycle stage, keeping the other bits.
func (r *TrackingRecord[T]) SetLifecycleStage(s TrackingFlags) { r.flags.SetLifecycleStage(s) }

// SetActiveState sets or clears the Inactive bit.
func (r *TrackingRecord[T]) SetActiveState(active bool) { r.flags.SetActiveState(active) }

// SetEnabledState sets or clears the Disabled bit.
func (r *TrackingRecord[T]) SetEnabledState(enabled bool) { r.flags.SetEnabledState(enabled) }

// MarkDirty sets the dirty bit.
func (r *TrackingRecord[T]) MarkDirty() { r.flags.MarkDirty() }

// MarkClean clears the dirty bit.
func (r *TrackingRecord[T]) MarkClean() { r.flags.MarkClean() }

// ValidateTrackingFlags reports whether the flags hold a legal combination.
func (r *TrackingRecord[T]) ValidateTrackingFlags() bool { return r.flags.Validate() }

// MarkForDestruction moves the record to Destroyed, Inactive and Disabled
// in one update.
func (r *TrackingRecord[T]) MarkForDestruction() {
	r.flags.MarkForDestruction()
}

// SetName replaces the debug name. It is a no-op in release builds.
func (r *TrackingRecord[T]) SetName(name string) {
	r.name.set(name)
}

// Name returns the debug name, or "" in release builds.
func (r *TrackingRecord[T]) Name() string {
	return r.name.String()
}

// Object returns the key header written in front of the record's change
// buffer entries.
func (r *TrackingRecord[T]) Object() ObjectData {
	return ObjectData{InstanceID: r.id, TrackingFlags: r.flags}
}
