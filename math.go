package rigid2d

import "math"

// Vec2 is a 2-component vector used throughout the geometry kernel,
// solver and TOI computer. All arithmetic in this package is float64.
type Vec2 struct {
	X, Y float64
}

func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

var Vec2Zero = Vec2{}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Neg() Vec2            { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// CrossSV returns the 2D cross product of a scalar and a vector: s×v.
func CrossSV(s float64, v Vec2) Vec2 { return Vec2{-s * v.Y, s * v.X} }

// CrossVS returns the 2D cross product of a vector and a scalar: v×s.
func CrossVS(v Vec2, s float64) Vec2 { return Vec2{s * v.Y, -s * v.X} }

func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float64        { return math.Sqrt(v.LengthSquared()) }

// Normalize returns the original length and a copy of v scaled to unit
// length; if v is (near) zero, returns (0, Vec2Zero).
func (v Vec2) Normalize() (float64, Vec2) {
	length := v.Length()
	if length < epsilon {
		return 0, Vec2Zero
	}
	inv := 1.0 / length
	return length, Vec2{v.X * inv, v.Y * inv}
}

func (v Vec2) IsValid() bool { return isValidFloat(v.X) && isValidFloat(v.Y) }

func isValidFloat(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func Vec2Min(a, b Vec2) Vec2 { return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)} }
func Vec2Max(a, b Vec2) Vec2 { return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)} }
func Vec2Abs(a Vec2) Vec2    { return Vec2{math.Abs(a.X), math.Abs(a.Y)} }

func Distance(a, b Vec2) float64        { return a.Sub(b).Length() }
func DistanceSquared(a, b Vec2) float64 { return a.Sub(b).LengthSquared() }

func FloatClamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Mat22 is a 2x2 matrix stored by its two columns.
type Mat22 struct {
	Ex, Ey Vec2
}

func Mat22FromColumns(c1, c2 Vec2) Mat22 { return Mat22{Ex: c1, Ey: c2} }

func (m Mat22) MulVec2(v Vec2) Vec2 {
	return Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

func (m Mat22) MulTVec2(v Vec2) Vec2 {
	return Vec2{v.Dot(m.Ex), v.Dot(m.Ey)}
}

// Solve solves m*x = b for x without explicitly inverting m.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12 := m.Ex.X, m.Ey.X
	a21, a22 := m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22FromColumns(Vec2{det * d, -det * c}, Vec2{-det * b, det * a})
}

// Rot stores a rotation as (sin, cos) to avoid repeated trig calls.
type Rot struct {
	S, C float64
}

func RotFromAngle(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

var RotIdentity = Rot{S: 0, C: 1}

func (r Rot) Angle() float64 { return math.Atan2(r.S, r.C) }
func (r Rot) XAxis() Vec2    { return Vec2{r.C, r.S} }
func (r Rot) YAxis() Vec2    { return Vec2{-r.S, r.C} }

func RotMul(q, r Rot) Rot {
	return Rot{S: q.S*r.C + q.C*r.S, C: q.C*r.C - q.S*r.S}
}

// RotMulT computes qT * r (inverse-rotate r by q).
func RotMulT(q, r Rot) Rot {
	return Rot{S: q.C*r.S - q.S*r.C, C: q.C*r.C + q.S*r.S}
}

func (r Rot) MulVec2(v Vec2) Vec2 {
	return Vec2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

func (r Rot) MulTVec2(v Vec2) Vec2 {
	return Vec2{r.C*v.X + r.S*v.Y, -r.S*v.X + r.C*v.Y}
}

// Transform is a rigid transform: rotate by Q, then translate by P.
type Transform struct {
	P Vec2
	Q Rot
}

var TransformIdentity = Transform{P: Vec2Zero, Q: RotIdentity}

func NewTransform(p Vec2, angle float64) Transform {
	return Transform{P: p, Q: RotFromAngle(angle)}
}

func (t Transform) MulVec2(v Vec2) Vec2 {
	return Vec2{
		(t.Q.C*v.X - t.Q.S*v.Y) + t.P.X,
		(t.Q.S*v.X + t.Q.C*v.Y) + t.P.Y,
	}
}

func (t Transform) MulTVec2(v Vec2) Vec2 {
	px, py := v.X-t.P.X, v.Y-t.P.Y
	return Vec2{
		t.Q.C*px + t.Q.S*py,
		-t.Q.S*px + t.Q.C*py,
	}
}

// TransformMul composes A then B in A's frame: A * B.
func TransformMul(a, b Transform) Transform {
	return Transform{
		Q: RotMul(a.Q, b.Q),
		P: a.Q.MulVec2(b.P).Add(a.P),
	}
}

// TransformMulT computes A^-1 * B.
func TransformMulT(a, b Transform) Transform {
	return Transform{
		Q: RotMulT(a.Q, b.Q),
		P: a.Q.MulTVec2(b.P.Sub(a.P)),
	}
}

// Sweep describes the motion of a body's center of mass between two
// positions bracketing one step: (C0, A0) at fraction Alpha0, (C, A) at
// fraction 1. LocalCenter offsets the body origin from the center of mass.
type Sweep struct {
	LocalCenter Vec2
	C0, C       Vec2
	A0, A       float64
	Alpha0      float64
}

// Transform interpolates the sweep at beta in [0, 1], where 0 gives (C0, A0)
// (the pose at Alpha0) and 1 gives (C, A), and shifts the result from
// center-of-mass space back to body-origin space.
func (s Sweep) Transform(beta float64) Transform {
	p := s.C0.Scale(1 - beta).Add(s.C.Scale(beta))
	angle := (1-beta)*s.A0 + beta*s.A
	q := RotFromAngle(angle)
	return Transform{P: p.Sub(q.MulVec2(s.LocalCenter)), Q: q}
}

// Advance slides Alpha0 forward to alpha, replacing C0/A0 with the
// interpolated position at alpha.
func (s *Sweep) Advance(alpha float64) {
	assertf(s.Alpha0 < 1.0, "sweep: Advance called with Alpha0 already at 1")
	beta := (alpha - s.Alpha0) / (1.0 - s.Alpha0)
	s.C0 = s.C0.Add(s.C.Sub(s.C0).Scale(beta))
	s.A0 += beta * (s.A - s.A0)
	s.Alpha0 = alpha
}

// Normalize reduces A0/A into the same 2*pi window, protecting TOI root
// finding from angle wraparound.
func (s *Sweep) Normalize() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
