package rigid2d

// PolygonShape is a convex polygon of at most maxPolygonVertices vertices,
// given in counter-clockwise order, with a small skin radius matching the
// teacher's polygonRadius convention (keeps narrow-phase manifolds well
// conditioned near vertices).
type PolygonShape struct {
	Vertices []Vec2
	Normals  []Vec2
	Centroid Vec2
	SkinRadius float64
}

// NewPolygonShape builds a polygon adapter from vertices already in CCW
// order (the common case for hand-authored boxes and simple convex
// shapes); it derives outward edge normals and the area centroid.
func NewPolygonShape(vertices []Vec2) *PolygonShape {
	assertf(len(vertices) >= 3 && len(vertices) <= maxPolygonVertices, "polygon: vertex count %d out of range", len(vertices))

	n := len(vertices)
	normals := make([]Vec2, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edge := vertices[j].Sub(vertices[i])
		_, normal := CrossVS(edge, 1.0).Normalize()
		normals[i] = normal
	}

	return &PolygonShape{
		Vertices:   vertices,
		Normals:    normals,
		Centroid:   polygonCentroid(vertices),
		SkinRadius: polygonRadiusDefault,
	}
}

// NewBoxShape returns an axis-aligned box centered at the origin.
func NewBoxShape(halfWidth, halfHeight float64) *PolygonShape {
	return NewPolygonShape([]Vec2{
		V2(-halfWidth, -halfHeight),
		V2(halfWidth, -halfHeight),
		V2(halfWidth, halfHeight),
		V2(-halfWidth, halfHeight),
	})
}

func polygonCentroid(vertices []Vec2) Vec2 {
	center := Vec2Zero
	area := 0.0
	origin := vertices[0]
	const third = 1.0 / 3.0

	for i := 1; i < len(vertices)-1; i++ {
		e1 := vertices[i].Sub(origin)
		e2 := vertices[i+1].Sub(origin)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Scale(triArea * third))
	}
	if area > epsilon {
		center = center.Scale(1.0 / area)
	}
	return center.Add(origin)
}

func (p *PolygonShape) Type() ShapeType { return ShapePolygon }
func (p *PolygonShape) ChildCount() int  { return 1 }
func (p *PolygonShape) Radius() float64  { return p.SkinRadius }

func (p *PolygonShape) ComputeAABB(xf Transform, _ int) AABB {
	lower := xf.MulVec2(p.Vertices[0])
	upper := lower
	for i := 1; i < len(p.Vertices); i++ {
		v := xf.MulVec2(p.Vertices[i])
		lower = Vec2Min(lower, v)
		upper = Vec2Max(upper, v)
	}
	r := V2(p.SkinRadius, p.SkinRadius)
	return AABB{LowerBound: lower.Sub(r), UpperBound: upper.Add(r)}
}

// ComputeMass integrates area, centroid and inertia by summing triangle
// contributions from an interior reference point, matching the teacher's
// B2PolygonShape.ComputeMass derivation.
func (p *PolygonShape) ComputeMass(density float64) MassData {
	n := len(p.Vertices)
	assertf(n >= 3, "polygon: ComputeMass needs at least 3 vertices")

	center := Vec2Zero
	area := 0.0
	I := 0.0

	s := Vec2Zero
	for _, v := range p.Vertices {
		s = s.Add(v)
	}
	s = s.Scale(1.0 / float64(n))

	const third = 1.0 / 3.0
	for i := 0; i < n; i++ {
		e1 := p.Vertices[i].Sub(s)
		var e2 Vec2
		if i+1 < n {
			e2 = p.Vertices[i+1].Sub(s)
		} else {
			e2 = p.Vertices[0].Sub(s)
		}

		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Scale(triArea * third))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		I += (0.25 * third * d) * (intx2 + inty2)
	}

	mass := density * area
	assertf(area > epsilon, "polygon: degenerate area in ComputeMass")
	center = center.Scale(1.0 / area)
	worldCenter := center.Add(s)

	inertia := density*I + mass*(worldCenter.Dot(worldCenter)-center.Dot(center))

	return MassData{Mass: mass, Center: worldCenter, I: inertia}
}

func (p *PolygonShape) DistanceProxyFor(_ int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.SkinRadius}
}
