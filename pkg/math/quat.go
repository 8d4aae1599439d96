package math

import "math"

// Quat is a rotation quaternion. X, Y, Z are the vector part, W the scalar.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle builds a quaternion rotating angle radians around axis.
// axis must be normalized.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	half := angle / 2
	s := float32(math.Sin(float64(half)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(half))),
	}
}

// QuatBetween returns the minimal rotation taking unit direction from to
// unit direction to. Antiparallel inputs rotate 180 degrees around an
// arbitrary perpendicular axis.
func QuatBetween(from, to Vec3) Quat {
	d := from.Dot(to)
	if d > 0.9999 {
		return QuatIdentity()
	}
	if d < -0.9999 {
		axis := Vec3{X: 1}.Cross(from)
		if axis.Length() < 0.001 {
			axis = Vec3{Y: 1}.Cross(from)
		}
		return QuatFromAxisAngle(axis.Normalize(), float32(math.Pi))
	}
	axis := from.Cross(to)
	s := float32(math.Sqrt(float64((1 + d) * 2)))
	return Quat{X: axis.X / s, Y: axis.Y / s, Z: axis.Z / s, W: s / 2}
}

// Normalize returns a unit quaternion, or identity if q is near zero.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	inv := 1.0 / length
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Dot returns the 4D dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul combines two rotations: q applied after other.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Slerp spherically interpolates from q to other at t in [0, 1], always
// taking the shorter arc.
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)
	if dot < 0 {
		other = Quat{X: -other.X, Y: -other.Y, Z: -other.Z, W: -other.W}
		dot = -dot
	}

	// Nearly parallel: fall back to nlerp to avoid a vanishing divisor.
	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(other.X-q.X),
			Y: q.Y + t*(other.Y-q.Y),
			Z: q.Z + t*(other.Z-q.Z),
			W: q.W + t*(other.W-q.W),
		}.Normalize()
	}

	theta0 := float32(math.Acos(float64(dot)))
	theta := theta0 * t
	sinTheta := float32(math.Sin(float64(theta)))
	sinTheta0 := float32(math.Sin(float64(theta0)))

	s0 := float32(math.Cos(float64(theta))) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// ToMat4 converts the rotation to a 4x4 matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
