package rigid2d

import "math"

// AABB is an axis-aligned bounding box, grounded on CollisionB2Collision.go's
// B2AABB.
type AABB struct {
	LowerBound Vec2
	UpperBound Vec2
}

func (a AABB) IsValid() bool {
	d := a.UpperBound.Sub(a.LowerBound)
	valid := d.X >= 0 && d.Y >= 0
	return valid && a.LowerBound.IsValid() && a.UpperBound.IsValid()
}

func (a AABB) Center() Vec2 {
	return a.LowerBound.Add(a.UpperBound).Scale(0.5)
}

func (a AABB) Extents() Vec2 {
	return a.UpperBound.Sub(a.LowerBound).Scale(0.5)
}

func (a AABB) Perimeter() float64 {
	wx := a.UpperBound.X - a.LowerBound.X
	wy := a.UpperBound.Y - a.LowerBound.Y
	return 2.0 * (wx + wy)
}

// Combine returns the smallest AABB containing both a and b.
func Combine(a, b AABB) AABB {
	return AABB{
		LowerBound: Vec2Min(a.LowerBound, b.LowerBound),
		UpperBound: Vec2Max(a.UpperBound, b.UpperBound),
	}
}

// Contains reports whether a fully contains b.
func (a AABB) Contains(b AABB) bool {
	return a.LowerBound.X <= b.LowerBound.X &&
		a.LowerBound.Y <= b.LowerBound.Y &&
		b.UpperBound.X <= a.UpperBound.X &&
		b.UpperBound.Y <= a.UpperBound.Y
}

// Overlaps reports whether a and b share any area.
func Overlaps(a, b AABB) bool {
	d1 := b.LowerBound.Sub(a.UpperBound)
	d2 := a.LowerBound.Sub(b.UpperBound)
	if d1.X > 0 || d1.Y > 0 {
		return false
	}
	if d2.X > 0 || d2.Y > 0 {
		return false
	}
	return true
}

// RayCastInput describes a segment query: P1 + t*(P2-P1) for t in
// [0, MaxFraction].
type RayCastInput struct {
	P1, P2      Vec2
	MaxFraction float64
}

// RayCastOutput reports where a ray hit: fraction along the input segment
// and world-space normal at the hit point.
type RayCastOutput struct {
	Normal   Vec2
	Fraction float64
}

// RayCast implements the standard slab test against the AABB, matching the
// teacher's B2AABB.RayCast.
func (a AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	tmin := -math.MaxFloat64
	tmax := math.MaxFloat64

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := Vec2Abs(d)

	var normal Vec2

	axes := [2]struct {
		p, d, absD, lower, upper float64
	}{
		{p.X, d.X, absD.X, a.LowerBound.X, a.UpperBound.X},
		{p.Y, d.Y, absD.Y, a.LowerBound.Y, a.UpperBound.Y},
	}

	for i, ax := range axes {
		if ax.absD < epsilon {
			if ax.p < ax.lower || ax.upper < ax.p {
				return RayCastOutput{}, false
			}
			continue
		}

		inv := 1.0 / ax.d
		t1 := (ax.lower - ax.p) * inv
		t2 := (ax.upper - ax.p) * inv

		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		if t1 > tmin {
			if i == 0 {
				normal = Vec2{s, 0}
			} else {
				normal = Vec2{0, s}
			}
			tmin = t1
		}

		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return RayCastOutput{}, false
		}
	}

	if tmin < 0 || input.MaxFraction < tmin {
		return RayCastOutput{}, false
	}

	return RayCastOutput{Normal: normal, Fraction: tmin}, true
}
