package kansoku

import "testing"

// go test -run ^TestTrackingFlagsInitialize$ . -count 1
func TestTrackingFlagsInitialize(t *testing.T) {
	f := Dirty | Destroyed | Inactive | Disabled
	f.Initialize()
	if f.LifecycleStage() != Created {
		t.Errorf("expected Created, got %s", f.LifecycleStage())
	}
	if !f.IsActive() || !f.IsEnabled() || f.IsDirty() {
		t.Errorf("expected active, enabled and clean, got %s", f)
	}
	if !f.IsActiveAndEnabled() {
		t.Error("expected a fresh record to be active and enabled")
	}
	if !f.Validate() {
		t.Errorf("expected %s to be valid", f)
	}
}

// go test -run ^TestTrackingFlagsLifecycle$ . -count 1
func TestTrackingFlagsLifecycle(t *testing.T) {
	t.Run("created to running", func(t *testing.T) {
		var f TrackingFlags
		f.Initialize()
		f.SetLifecycleStage(Running)
		if f.LifecycleStage() != Running {
			t.Errorf("expected Running, got %s", f.LifecycleStage())
		}
	})
	t.Run("running to destroyed requires inactive and disabled", func(t *testing.T) {
		var f TrackingFlags
		f.Initialize()
		f.SetLifecycleStage(Running)
		f.SetActiveState(false)
		f.SetEnabledState(false)
		f.SetLifecycleStage(Destroyed)
		if f != Destroyed|Inactive|Disabled {
			t.Errorf("expected Destroyed|Inactive|Disabled, got %s", f)
		}
	})
	if !validationEnabled {
		t.Skip("validation disabled in release builds")
	}
	t.Run("created to destroyed panics", func(t *testing.T) {
		var f TrackingFlags
		f.Initialize()
		expectPanic(t, ErrInvariantViolation, func() { f.SetLifecycleStage(Destroyed) })
	})
	t.Run("destroyed to created panics", func(t *testing.T) {
		f := Destroyed | Inactive | Disabled
		expectPanic(t, ErrInvariantViolation, func() { f.SetLifecycleStage(Created) })
	})
	t.Run("running to destroyed while visible panics", func(t *testing.T) {
		f := Running
		expectPanic(t, ErrInvariantViolation, func() { f.SetLifecycleStage(Destroyed) })
	})
	t.Run("non stage panics", func(t *testing.T) {
		f := Running
		expectPanic(t, ErrInvariantViolation, func() { f.SetLifecycleStage(Dirty) })
		expectPanic(t, ErrInvariantViolation, func() { f.SetLifecycleStage(Created | Running) })
	})
}

// go test -run ^TestTrackingFlagsDestroyedStaysHidden$ . -count 1
func TestTrackingFlagsDestroyedStaysHidden(t *testing.T) {
	var f TrackingFlags
	f.Initialize()
	f.SetLifecycleStage(Running)
	f.MarkDirty()
	f.MarkForDestruction()
	if f.LifecycleStage() != Destroyed || f.IsActive() || f.IsEnabled() {
		t.Errorf("expected Destroyed, inactive and disabled, got %s", f)
	}
	if f.IsDirty() {
		t.Error("expected the dirty bit to be dropped on destruction")
	}
	if f.IsActiveAndEnabled() {
		t.Error("a destroyed object must not be active and enabled")
	}
	if !f.Validate() {
		t.Errorf("expected %s to be valid", f)
	}
	if validationEnabled {
		expectPanic(t, ErrInvariantViolation, func() { f.SetActiveState(true) })
		g := destroyedMask
		expectPanic(t, ErrInvariantViolation, func() { g.SetEnabledState(true) })
	}
}

// go test -run ^TestTrackingFlagsStates$ . -count 1
func TestTrackingFlagsStates(t *testing.T) {
	tests := []struct {
		active, enabled bool
		want            bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, tt := range tests {
		f := Running
		f.SetActiveState(tt.active)
		f.SetEnabledState(tt.enabled)
		if f.IsActive() != tt.active || f.IsEnabled() != tt.enabled {
			t.Errorf("%s: expected active=%v enabled=%v", f, tt.active, tt.enabled)
		}
		if got := f.IsActiveAndEnabled(); got != tt.want {
			t.Errorf("%s: IsActiveAndEnabled() = %v, want %v", f, got, tt.want)
		}
		if f.LifecycleStage() != Running {
			t.Errorf("%s: state changes must not touch the lifecycle", f)
		}
	}

	f := Running
	f.MarkDirty()
	if !f.IsDirty() {
		t.Error("expected dirty")
	}
	f.MarkClean()
	if f.IsDirty() || f != Running {
		t.Errorf("expected clean Running, got %s", f)
	}
}

// go test -run ^TestTrackingFlagsValidate$ . -count 1
func TestTrackingFlagsValidate(t *testing.T) {
	tests := []struct {
		flags TrackingFlags
		want  bool
	}{
		{Created, true},
		{Running | Inactive | Dirty, true},
		{Destroyed | Inactive | Disabled, true},
		{0, false},
		{Inactive | Disabled, false},
		{Created | Running, false},
		{Running | Destroyed | Inactive | Disabled, false},
		{Destroyed, false},
		{Destroyed | Inactive, false},
		{Destroyed | Disabled, false},
	}
	for _, tt := range tests {
		if got := tt.flags.Validate(); got != tt.want {
			t.Errorf("Validate(%s) = %v, want %v", tt.flags, got, tt.want)
		}
	}
}

func TestTrackingFlagsString(t *testing.T) {
	if s := (Running | Dirty).String(); s != "Running|Dirty" {
		t.Errorf("unexpected string %q", s)
	}
	if s := TrackingFlags(0).String(); s != "None" {
		t.Errorf("unexpected string %q", s)
	}
	if s := (Created | 1<<10).String(); s != "Created|0x400" {
		t.Errorf("unexpected string %q", s)
	}
}
