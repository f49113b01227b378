package kansoku

import "fmt"

// TrackingFlags packs the lifecycle stage, active state, enabled state and
// dirty bit of a tracked object into one integer so that tracking records
// stay fixed-size and cheap to copy into change buffers.
//
// Exactly one of Created, Running and Destroyed is set at any time. Active
// and enabled are the absence of the Inactive and Disabled bits. A Destroyed
// object is always Inactive and Disabled.
type TrackingFlags uint32

const (
	// Created is the lifecycle stage of a record that was just initialized.
	Created TrackingFlags = 1 << iota
	// Running is the steady-state lifecycle stage.
	Running
	// Destroyed marks a record whose object left the scene.
	Destroyed
	// Inactive is set when the owner hierarchy disabled the object.
	Inactive
	// Disabled is set when the tracked component itself is disabled.
	Disabled
	// Dirty is set while custom data has changes that were not emitted yet.
	Dirty

	lifecycleMask = Created | Running | Destroyed
	destroyedMask = Destroyed | Inactive | Disabled
)

// Initialize resets the flags to Created, active, enabled and clean.
func (f *TrackingFlags) Initialize() {
	*f = Created
}

// LifecycleStage returns just the lifecycle bit of the flags.
func (f TrackingFlags) LifecycleStage() TrackingFlags {
	return f & lifecycleMask
}

// SetLifecycleStage changes the lifecycle stage to stage. When validation is
// enabled it panics if stage is not a single lifecycle bit, if the move goes
// directly between Created and Destroyed, or if the result is inconsistent.
func (f *TrackingFlags) SetLifecycleStage(stage TrackingFlags) {
	if validationEnabled {
		if !isSingleStage(stage) {
			invariantf("%s is not a lifecycle stage", stage)
		}
		cur := f.LifecycleStage()
		if (cur == Created && stage == Destroyed) || (cur == Destroyed && stage == Created) {
			invariantf("lifecycle cannot move from %s to %s without passing through Running", cur, stage)
		}
	}
	*f = (*f &^ lifecycleMask) | stage
	f.check()
}

// SetActiveState sets or clears the Inactive bit.
func (f *TrackingFlags) SetActiveState(active bool) {
	if active {
		*f &^= Inactive
	} else {
		*f |= Inactive
	}
	f.check()
}

// SetEnabledState sets or clears the Disabled bit.
func (f *TrackingFlags) SetEnabledState(enabled bool) {
	if enabled {
		*f &^= Disabled
	} else {
		*f |= Disabled
	}
	f.check()
}

// MarkForDestruction moves the flags to Destroyed, Inactive and Disabled in
// a single store. The dirty bit is dropped.
func (f *TrackingFlags) MarkForDestruction() {
	*f = destroyedMask
}

// IsActive reports whether the Inactive bit is clear.
func (f TrackingFlags) IsActive() bool { return f&Inactive == 0 }

// IsEnabled reports whether the Disabled bit is clear.
func (f TrackingFlags) IsEnabled() bool { return f&Disabled == 0 }

// IsDirty reports whether the Dirty bit is set.
func (f TrackingFlags) IsDirty() bool { return f&Dirty != 0 }

// IsActiveAndEnabled reports whether the object should currently be
// rendered.
func (f TrackingFlags) IsActiveAndEnabled() bool {
	return f&(Inactive|Disabled|Destroyed) == 0
}

// MarkDirty sets the Dirty bit.
func (f *TrackingFlags) MarkDirty() { *f |= Dirty }

// MarkClean clears the Dirty bit.
func (f *TrackingFlags) MarkClean() { *f &^= Dirty }

// Validate reports whether exactly one lifecycle stage is set and a
// Destroyed object is both Inactive and Disabled. It is meant for tests and
// validation builds, not the hot path.
func (f TrackingFlags) Validate() bool {
	if !isSingleStage(f.LifecycleStage()) {
		return false
	}
	if f&Destroyed != 0 && f&destroyedMask != destroyedMask {
		return false
	}
	return true
}

func (f TrackingFlags) check() {
	if validationEnabled && !f.Validate() {
		invariantf("inconsistent tracking flags %s", f)
	}
}

func isSingleStage(stage TrackingFlags) bool {
	return stage == Created || stage == Running || stage == Destroyed
}

var flagNames = [...]string{"Created", "Running", "Destroyed", "Inactive", "Disabled", "Dirty"}

// String lists the set flags, for logs and test failures.
func (f TrackingFlags) String() string {
	if f == 0 {
		return "None"
	}
	s := ""
	for i, name := range flagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	if rest := f &^ (1<<len(flagNames) - 1); rest != 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("0x%x", uint32(rest))
	}
	return s
}
