package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief Represents the transform of an object in the world.
 * Transforms can have a parent whose own transform is then
 * taken into account: Position and Rotation are relative to the
 * parent, the World* accessors resolve the whole chain.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	Position Vec3
	/** @brief The rotation relative to the parent. */
	Rotation Quaternion
	/** @brief The scale. Carried along, it does not affect world placement. */
	Scale Vec3
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
