package rigid2d

// ShapeType tags the closed set of shape kinds the narrow-phase dispatcher
// knows how to pair against each other.
type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapePolygon
	ShapeEdge
)

// MassData is the density-derived mass, center of mass and rotational
// inertia (about the shape's own origin) contributed by one shape.
type MassData struct {
	Mass   float64
	Center Vec2
	I      float64
}

// DistanceProxy is an ordered vertex list (plus a shared vertex radius)
// used by the GJK-style distance query and by TOI conservative advancement.
// A circle proxies as a single vertex; polygons and edges proxy as their
// full vertex list.
type DistanceProxy struct {
	Vertices []Vec2
	Radius   float64
}

func (p DistanceProxy) Support(d Vec2) int {
	best := 0
	bestValue := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		v := p.Vertices[i].Dot(d)
		if v > bestValue {
			bestValue = v
			best = i
		}
	}
	return best
}

// Shape is the capability set the narrow phase, mass computation, broad
// phase and TOI computer require of any shape variant: child count (a
// polygon or a circle has one child; a chain has many, but chains are out
// of scope here), vertex radius, AABB at a transform, mass data, and a
// distance-proxy for a given child.
type Shape interface {
	Type() ShapeType
	ChildCount() int
	Radius() float64
	ComputeAABB(xf Transform, childIndex int) AABB
	ComputeMass(density float64) MassData
	DistanceProxyFor(childIndex int) DistanceProxy
}

// SweptAABB unions a shape's AABB at two transforms bracketing a step, used
// by proxy synchronization (spec's proxy-fattening step) and TOI.
func SweptAABB(s Shape, xf1, xf2 Transform, childIndex int) AABB {
	return Combine(s.ComputeAABB(xf1, childIndex), s.ComputeAABB(xf2, childIndex))
}
