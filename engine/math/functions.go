package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief An approximate representation of PI divided by 4. */
	K_QUARTER_PI float32 = 0.25 * K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
	/** @brief Rotation axes shorter than this are treated as "no rotation". */
	K_AXIS_EPSILON float32 = 1e-6
)

/**
 * Note that these are here in order to prevent having to import the
 * entire <math.h> everywhere.
 */
func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func kacos(x float32) float32 {
	return float32(m.Acos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func katan2(y, x float32) float32 {
	return float32(m.Atan2(float64(y), float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @return A new 3-element vector.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 0.0f.
 */
func NewVec3Zero() Vec3 {
	return Vec3{0.0, 0.0, 0.0}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 1.0f.
 */
func NewVec3One() Vec3 {
	return Vec3{1.0, 1.0, 1.0}
}

/**
 * @brief Adds vector_1 to vector_0 and returns a copy of the result.
 */
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		v.X + other.X,
		v.Y + other.Y,
		v.Z + other.Z}
}

/**
 * @brief Subtracts vector_1 from vector_0 and returns a copy of the result.
 */
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		v.X - other.X,
		v.Y - other.Y,
		v.Z - other.Z}
}

/**
 * @brief Multiplies all elements of vector_0 by scalar and returns a copy of the result.
 */
func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{
		v.X * scalar,
		v.Y * scalar,
		v.Z * scalar}
}

/**
 * @brief Returns the squared length of the provided vector.
 */
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

/**
 * @brief Returns the length of the provided vector.
 */
func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

/**
 * @brief Returns a normalized copy of the supplied vector. A zero vector
 * is returned unchanged.
 */
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	return Vec3{
		v.X / length,
		v.Y / length,
		v.Z / length}
}

/**
 * @brief Returns the dot product between the provided vectors. Typically used
 * to calculate the difference in direction.
 */
func (v Vec3) Dot(other Vec3) float32 {
	p := float32(0)
	p += v.X * other.X
	p += v.Y * other.Y
	p += v.Z * other.Z
	return p
}

/**
 * @brief Calculates and returns the cross product of the supplied vectors.
 * The cross product is a new vector which is orthoganal to both provided vectors.
 */
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X}
}

/**
 * @brief Compares all elements of vector_0 and vector_1 and ensures the difference
 * is less than tolerance.
 *
 * @param tolerance The difference tolerance. Typically K_FLOAT_EPSILON or similar.
 * @return True if within tolerance; otherwise false.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	if kabs(v.X-other.X) > tolerance {
		return false
	}

	if kabs(v.Y-other.Y) > tolerance {
		return false
	}

	if kabs(v.Z-other.Z) > tolerance {
		return false
	}

	return true
}

/**
 * @brief Linearly interpolates towards other. Lerp(v, 0) is v and
 * v.Lerp(v, t) is v for any t.
 */
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{
		Lerp(v.X, other.X, t),
		Lerp(v.Y, other.Y, t),
		Lerp(v.Z, other.Z, t)}
}

/**
 * @brief Returns the unsigned angle, in radians, between two unit vectors.
 * The dot product is clamped to [-1, 1] so nearly parallel or anti-parallel
 * vectors never leave the domain of acos. The result is always in [0, PI].
 */
func AngleBetween(u, v Vec3) float32 {
	return kacos(Clamp(u.Dot(v), -1.0, 1.0))
}

// ------------------------------------------
// Quaternion
// ------------------------------------------

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Returns the normal of the provided quaternion.
 */
func (q Quaternion) Normal() float32 {
	return ksqrt(
		q.X*q.X +
			q.Y*q.Y +
			q.Z*q.Z +
			q.W*q.W)
}

/**
 * @brief Returns a normalized copy of the provided quaternion.
 */
func (q Quaternion) Normalize() Quaternion {
	normal := q.Normal()
	if normal == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{
		q.X / normal,
		q.Y / normal,
		q.Z / normal,
		q.W / normal}
}

/**
 * @brief Returns the conjugate of the provided quaternion. That is,
 * The x, y and z elements are negated, but the w element is untouched.
 */
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

/**
 * @brief Returns an inverse copy of the provided quaternion.
 */
func (q Quaternion) Inverse() Quaternion {
	c := q.Conjugate()
	return c.Normalize()
}

/**
 * @brief Multiplies the provided quaternions (Hamilton product). The result
 * applies other first and q second.
 */
func (q Quaternion) Mul(other Quaternion) Quaternion {
	out_quaternion := Quaternion{}

	out_quaternion.X = q.X*other.W +
		q.Y*other.Z -
		q.Z*other.Y +
		q.W*other.X

	out_quaternion.Y = -q.X*other.Z +
		q.Y*other.W +
		q.Z*other.X +
		q.W*other.Y

	out_quaternion.Z = q.X*other.Y -
		q.Y*other.X +
		q.Z*other.W +
		q.W*other.Z

	out_quaternion.W = -q.X*other.X -
		q.Y*other.Y -
		q.Z*other.Z +
		q.W*other.W

	return out_quaternion
}

/**
 * @brief Calculates the dot product of the provided quaternions.
 */
func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X +
		q.Y*other.Y +
		q.Z*other.Z +
		q.W*other.W
}

/**
 * @brief Rotates the vector v by the quaternion.
 */
func (q Quaternion) RotateVec3(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).MulScalar(2.0)
	return v.Add(t.MulScalar(q.W)).Add(u.Cross(t))
}

/**
 * @brief Compares all elements of both quaternions within tolerance.
 */
func (q Quaternion) Compare(other Quaternion, tolerance float32) bool {
	return kabs(q.X-other.X) <= tolerance &&
		kabs(q.Y-other.Y) <= tolerance &&
		kabs(q.Z-other.Z) <= tolerance &&
		kabs(q.W-other.W) <= tolerance
}

/**
 * @brief Returns the angle, in radians, of the rotation taking q to other.
 * q and -q describe the same orientation and give 0.
 */
func (q Quaternion) AngleTo(other Quaternion) float32 {
	// atan2 keeps small angles accurate where acos(dot) would not.
	r := q.Normalize().Conjugate().Mul(other.Normalize())
	s := ksqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
	return 2.0 * katan2(s, kabs(r.W))
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 *
 * @param axis The axis of rotation.
 * @param angle The angle of rotation.
 * @param normalize Indicates if the quaternion should be normalized.
 * @return A new quaternion.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	half_angle := 0.5 * angle
	s := ksin(half_angle)
	c := kcos(half_angle)

	q := Quaternion{s * axis.X, s * axis.Y, s * axis.Z, c}
	if normalize {
		return q.Normalize()
	}
	return q
}

/**
 * @brief Creates the rotation turning the unit vector from onto the unit
 * vector to, about the axis cross(from, to). When that axis is too short
 * (the vectors are parallel or anti-parallel) the identity is returned.
 */
func NewQuatBetween(from, to Vec3) Quaternion {
	axis := from.Cross(to)
	if axis.Length() < K_AXIS_EPSILON {
		return NewQuatIdentity()
	}
	return NewQuatFromAxisAngle(axis.Normalized(), AngleBetween(from, to), true)
}

/**
 * @brief Calculates spherical linear interpolation of a given percentage
 * between two quaternions, along the shortest path.
 *
 * @param q_0 The first quaternion.
 * @param q_1 The second quaternion.
 * @param percentage The percentage of interpolation, typically a value from 0.0f-1.0f.
 * @return An interpolated quaternion.
 */
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	if q == other {
		return q
	}
	// Source: https://en.Wikipedia.org/wiki/Slerp
	// Only unit quaternions are valid rotations.
	// Normalize to avoid undefined behavior.
	v0 := q.Normalize()
	v1 := other.Normalize()

	// Compute the cosine of the angle between the two vectors.
	dot := v0.Dot(v1)

	// If the dot product is negative, slerp won't take
	// the shorter path. Note that v1 and -v1 are equivalent when
	// the negation is applied to all four components. Fix by
	// reversing one quaternion.
	if dot < 0.0 {
		v1.X = -v1.X
		v1.Y = -v1.Y
		v1.Z = -v1.Z
		v1.W = -v1.W
		dot = -dot
	}

	DOT_THRESHOLD := float32(0.9995)
	if dot > DOT_THRESHOLD {
		// If the inputs are too close for comfort, linearly interpolate
		// and normalize the result.
		qt := Quaternion{
			v0.X + ((v1.X - v0.X) * percentage),
			v0.Y + ((v1.Y - v0.Y) * percentage),
			v0.Z + ((v1.Z - v0.Z) * percentage),
			v0.W + ((v1.W - v0.W) * percentage)}

		return qt.Normalize()
	}

	// Since dot is in range [0, DOT_THRESHOLD], acos is safe
	theta_0 := kacos(dot)         // theta_0 = angle between input vectors
	theta := theta_0 * percentage // theta = angle between v0 and result
	sin_theta := ksin(theta)      // compute this value only once
	sin_theta_0 := ksin(theta_0)  // compute this value only once

	s0 := kcos(theta) - dot*sin_theta/sin_theta_0 // == sin(theta_0 - theta) / sin(theta_0)
	s1 := sin_theta / sin_theta_0

	return Quaternion{
		(v0.X * s0) + (v1.X * s1),
		(v0.Y * s0) + (v1.Y * s1),
		(v0.Z * s0) + (v1.Z * s1),
		(v0.W * s0) + (v1.W * s1)}
}
