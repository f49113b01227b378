// Package kansoku tracks the renderable objects of a simulated scene and
// produces, once per frame, compact change buffers describing everything that
// changed since the previous frame.
package kansoku

import "strconv"

// Entity is the opaque host key of a scene object. It combines a recyclable
// 32-bit ID with a 32-bit version so that a recycled ID never matches a stale
// key.
type Entity struct {
	ID      uint32 // The recyclable ID of the entity.
	Version uint32 // The generation of the ID, 0 for the zero Entity.
}

// IsZero reports whether e is the zero Entity, which never names an object.
func (e Entity) IsZero() bool {
	return e.Version == 0
}

// String formats e as Entity(id:version).
func (e Entity) String() string {
	return "Entity(" + strconv.FormatUint(uint64(e.ID), 10) + ":" + strconv.FormatUint(uint64(e.Version), 10) + ")"
}

// InstanceID is the stable 64-bit identity reported to the renderer for a
// tracked object.
type InstanceID uint64

// NoInstance denotes "no object", e.g. the parent of a root object.
const NoInstance InstanceID = 0

// IDFor derives the InstanceID of e. The zero Entity maps to NoInstance; any
// live entity maps to a non-zero id since versions start at 1.
func IDFor(e Entity) InstanceID {
	if e.IsZero() {
		return NoInstance
	}
	return InstanceID(uint64(e.ID)<<32 | uint64(e.Version))
}

// Entity recovers the host key an InstanceID was derived from.
func (id InstanceID) Entity() Entity {
	return Entity{ID: uint32(id >> 32), Version: uint32(id)}
}
