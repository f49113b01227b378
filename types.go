package kansoku

// Vec3 is a position or scale in world space.
type Vec3 struct{ X, Y, Z float32 }

// Quat is a rotation quaternion.
type Quat struct{ X, Y, Z, W float32 }

// IdentityQuat is the rotation that does nothing.
var IdentityQuat = Quat{W: 1}

// Transform is the world-space placement of an object.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// GameObjectData is the custom data tracked per scene object and emitted in
// the object change buffer.
type GameObjectData struct {
	Active bool
	Layer  int32
}

// AssetID identifies a registered mesh or material on the renderer side.
type AssetID uint64

// InvalidAsset is returned when a mesh or material index cannot be resolved.
const InvalidAsset AssetID = 0

// MeshMaterialData is the custom data tracked per mesh renderer.
type MeshMaterialData struct {
	MeshID     AssetID
	MaterialID AssetID
}
