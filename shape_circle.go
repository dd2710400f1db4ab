package rigid2d

import "math"

// CircleShape is a disk of Radius centered at Center in body-local space.
type CircleShape struct {
	Center Vec2
	radius float64
}

func (s CircleShape) Type() ShapeType { return ShapeCircle }
func (s CircleShape) ChildCount() int { return 1 }
func (s CircleShape) Radius() float64 { return s.radius }

func (s CircleShape) ComputeAABB(xf Transform, _ int) AABB {
	p := xf.MulVec2(s.Center)
	return AABB{
		LowerBound: V2(p.X-s.radius, p.Y-s.radius),
		UpperBound: V2(p.X+s.radius, p.Y+s.radius),
	}
}

func (s CircleShape) ComputeMass(density float64) MassData {
	mass := density * math.Pi * s.radius * s.radius
	return MassData{
		Mass:   mass,
		Center: s.Center,
		I:      mass * (0.5*s.radius*s.radius + s.Center.Dot(s.Center)),
	}
}

func (s CircleShape) DistanceProxyFor(_ int) DistanceProxy {
	return DistanceProxy{Vertices: []Vec2{s.Center}, Radius: s.radius}
}
