package core

import "math"

// Frame is an orthonormal basis. Local coordinates put N on the z axis.
type Frame struct {
	S, T, N Vec3
}

// NewFrame builds a frame around the unit normal n (Duff et al. 2017)
func NewFrame(n Vec3) Frame {
	sign := math.Copysign(1.0, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	s := Vec3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	t := Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return Frame{S: s, T: t, N: n}
}

// NewFrameFromTangent builds a frame from a normal and an approximate tangent
func NewFrameFromTangent(n, tangent Vec3) Frame {
	s := tangent.Subtract(n.Multiply(n.Dot(tangent)))
	if s.LengthSquared() < 1e-12 {
		return NewFrame(n)
	}
	s = s.Normalize()
	return Frame{S: s, T: n.Cross(s), N: n}
}

// ToLocal expresses a world-space vector in this frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// ToWorld converts a local vector back to world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// CosTheta returns the cosine of a local direction with the frame normal
func CosTheta(v Vec3) float64 {
	return v.Z
}

// Reflect mirrors a local direction about the z axis
func Reflect(v Vec3) Vec3 {
	return Vec3{-v.X, -v.Y, v.Z}
}

// ReflectAbout mirrors v about the unit vector m
func ReflectAbout(v, m Vec3) Vec3 {
	return m.Multiply(2 * v.Dot(m)).Subtract(v)
}
