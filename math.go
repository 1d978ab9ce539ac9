package physics2d

import "math"

// IsValidFloat reports whether x is neither NaN nor infinite.
func IsValidFloat(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// A 2D column vector.
type Vec2 struct {
	X, Y float64
}

func MakeVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v *Vec2) SetZero() {
	v.X = 0.0
	v.Y = 0.0
}

func (v *Vec2) Set(x, y float64) {
	v.X = x
	v.Y = y
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the scalar z-component of the 2D cross product.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared avoids the square root; prefer it for comparisons.
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize converts this vector into a unit vector and returns the previous
// length. A near-zero vector is left untouched and returns 0.
func (v *Vec2) Normalize() float64 {
	length := v.Length()
	if length < 1e-9 {
		return 0.0
	}
	inv := 1.0 / length
	v.X *= inv
	v.Y *= inv
	return length
}

// Skew returns the counter-clockwise perpendicular of v.
func (v Vec2) Skew() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

func (v Vec2) IsValid() bool {
	return IsValidFloat(v.X) && IsValidFloat(v.Y)
}

// CrossScalarVec computes s x v.
func CrossScalarVec(s float64, v Vec2) Vec2 {
	return Vec2{X: -s * v.Y, Y: s * v.X}
}

// CrossVecScalar computes v x s.
func CrossVecScalar(v Vec2, s float64) Vec2 {
	return Vec2{X: s * v.Y, Y: -s * v.X}
}

// A rotation expressed as sine/cosine pair to avoid repeated trig calls.
type Rot struct {
	Sin, Cos float64
}

func MakeRot(angle float64) Rot {
	return Rot{Sin: math.Sin(angle), Cos: math.Cos(angle)}
}

func (r Rot) Angle() float64 {
	return math.Atan2(r.Sin, r.Cos)
}

// Apply rotates v by r.
func (r Rot) Apply(v Vec2) Vec2 {
	return Vec2{
		X: r.Cos*v.X - r.Sin*v.Y,
		Y: r.Sin*v.X + r.Cos*v.Y,
	}
}

// ApplyInverse rotates v by the inverse of r.
func (r Rot) ApplyInverse(v Vec2) Vec2 {
	return Vec2{
		X: r.Cos*v.X + r.Sin*v.Y,
		Y: -r.Sin*v.X + r.Cos*v.Y,
	}
}

// A 2-by-2 matrix stored in column-major order, used for the block solves in
// the joint constraints.
type Mat22 struct {
	Ex, Ey Vec2
}

// Solve solves A * x = b via Cramer's rule. Returns the zero vector when the
// matrix is singular, which drops the constraint for the iteration instead
// of propagating infinities.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12 := m.Ex.X, m.Ey.X
	a21, a22 := m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det == 0.0 {
		return Vec2{}
	}
	det = 1.0 / det
	return Vec2{
		X: det * (a22*b.X - a12*b.Y),
		Y: det * (a11*b.Y - a21*b.X),
	}
}

// An axis-aligned bounding box.
type AABB struct {
	Min, Max Vec2
}

func (bb AABB) Center() Vec2 {
	return Vec2{X: 0.5 * (bb.Min.X + bb.Max.X), Y: 0.5 * (bb.Min.Y + bb.Max.Y)}
}

// Perimeter is used as the tree's area metric.
func (bb AABB) Perimeter() float64 {
	return 2.0 * ((bb.Max.X - bb.Min.X) + (bb.Max.Y - bb.Min.Y))
}

func (bb *AABB) Combine(other AABB) {
	bb.Min.X = math.Min(bb.Min.X, other.Min.X)
	bb.Min.Y = math.Min(bb.Min.Y, other.Min.Y)
	bb.Max.X = math.Max(bb.Max.X, other.Max.X)
	bb.Max.Y = math.Max(bb.Max.Y, other.Max.Y)
}

func CombineAABB(a, b AABB) AABB {
	res := a
	res.Combine(b)
	return res
}

func (bb AABB) Contains(other AABB) bool {
	return bb.Min.X <= other.Min.X && bb.Min.Y <= other.Min.Y &&
		other.Max.X <= bb.Max.X && other.Max.Y <= bb.Max.Y
}

func (bb AABB) Overlaps(other AABB) bool {
	if other.Min.X-bb.Max.X > 0.0 || other.Min.Y-bb.Max.Y > 0.0 {
		return false
	}
	if bb.Min.X-other.Max.X > 0.0 || bb.Min.Y-other.Max.Y > 0.0 {
		return false
	}
	return true
}

// Fatten grows the box by margin on every side.
func (bb *AABB) Fatten(margin float64) {
	bb.Min.X -= margin
	bb.Min.Y -= margin
	bb.Max.X += margin
	bb.Max.Y += margin
}

func clampFloat(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}
