package kansoku

import "reflect"

// maxEventTypes bounds the number of distinct event types an EventBus can
// dispatch.
const maxEventTypes = 32

// ObjectCreated is published when a new object starts being tracked, after
// its record moved to Running.
type ObjectCreated struct {
	Entity  Entity
	ID      InstanceID
	Visible bool
}

// ObjectDestroyed is published when a tracked object leaves the scene. Flags
// holds the record's final flags, after MarkForDestruction.
type ObjectDestroyed struct {
	Entity Entity
	ID     InstanceID
	Flags  TrackingFlags
}

// VisibilityChanged is published for every enable or disable rendering
// update, with the flags that were written to the change buffer.
type VisibilityChanged struct {
	Entity Entity
	ID     InstanceID
	Flags  TrackingFlags
}

// MeshRendererUpdated is published when a mesh renderer record is created or
// updated.
type MeshRendererUpdated struct {
	Entity Entity
	ID     InstanceID
	Data   MeshMaterialData
}

// MeshRendererDestroyed is published when a mesh renderer stops being
// tracked.
type MeshRendererDestroyed struct {
	Entity Entity
	ID     InstanceID
	Flags  TrackingFlags
}

// FrameFlushed is published after the sink received a frame.
type FrameFlushed struct {
	Frame uint64
	Empty bool
	Err   error
}

// EventBus dispatches tracker events to subscribers synchronously, in
// subscription order. Publishing does not allocate.
//
// An EventBus is not safe for concurrent use; the Tracker only publishes
// from the goroutine running Update.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [maxEventTypes][]any
	nextEventTypeID uint8
}

// Subscribe registers handler for events of type T.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type `T`.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.eventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish calls every handler subscribed to T with event.
//
// Parameters:
//   - bus: The EventBus instance to publish to.
//   - event: The event data of type `T` to be sent to handlers.
func Publish[T any](bus *EventBus, event T) {
	if id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// HasSubscribers reports whether any handler is subscribed to T.
func HasSubscribers[T any](bus *EventBus) bool {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	return ok && len(bus.handlers[id]) > 0
}

func (bus *EventBus) eventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if int(bus.nextEventTypeID) >= maxEventTypes {
		panic("kansoku: too many event types")
	}
	id := bus.nextEventTypeID
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
