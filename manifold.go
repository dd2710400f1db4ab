package rigid2d

// ManifoldType tags which of the three narrow-phase manifold flavors a
// Manifold carries, per the data model: circles (both shapes reduce to a
// single point), faceA (a reference face on shape A), faceB (reference
// face on shape B).
type ManifoldType int

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// ContactFeatureID identifies a manifold point's originating feature so that
// warm-starting can match it against next frame's manifold before falling
// back to nearest-point matching.
type ContactFeatureID struct {
	IndexA, IndexB   uint8
	TypeA, TypeB     uint8
}

// ManifoldPoint is one contact point local to a shape's frame, carrying the
// accumulated impulses the solver warm-starts from.
type ManifoldPoint struct {
	LocalPoint     Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactFeatureID
}

// Manifold is the cached geometric description of one contact: up to two
// points, plus either a local normal (circles/faceA/faceB all set one) or
// local point depending on type.
type Manifold struct {
	Type        ManifoldType
	LocalPoint  Vec2
	LocalNormal Vec2
	Points      []ManifoldPoint
}

// WorldManifold is a manifold resolved into world space: the normal plus
// each point and its separation, used by both the velocity-constraint builder and
// the non-penetration testable property.
type WorldManifold struct {
	Normal     Vec2
	Points     []Vec2
	Separations []float64
}

// ComputeWorldManifold resolves a local manifold into world space given the
// two bodies' transforms and shape radii, matching
// CollisionB2Collision.go's b2WorldManifold::Initialize.
func ComputeWorldManifold(m Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) WorldManifold {
	if len(m.Points) == 0 {
		return WorldManifold{}
	}

	wm := WorldManifold{
		Points:      make([]Vec2, len(m.Points)),
		Separations: make([]float64, len(m.Points)),
	}

	switch m.Type {
	case ManifoldCircles:
		pA := xfA.MulVec2(m.LocalPoint)
		pB := xfB.MulVec2(m.Points[0].LocalPoint)
		_, normal := pB.Sub(pA).Normalize()
		if pB.Sub(pA).LengthSquared() < epsilon*epsilon {
			normal = V2(1, 0)
		}
		cA := pA.Add(normal.Scale(radiusA))
		cB := pB.Sub(normal.Scale(radiusB))
		wm.Normal = normal
		wm.Points[0] = cA.Add(cB).Scale(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(normal)

	case ManifoldFaceA:
		normal := xfA.Q.MulVec2(m.LocalNormal)
		planePoint := xfA.MulVec2(m.LocalPoint)
		for i, p := range m.Points {
			clip := xfB.MulVec2(p.LocalPoint)
			cA := clip.Add(normal.Scale(radiusA - clip.Sub(planePoint).Dot(normal)))
			cB := clip.Sub(normal.Scale(radiusB))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(normal)
		}
		wm.Normal = normal

	case ManifoldFaceB:
		normal := xfB.Q.MulVec2(m.LocalNormal)
		planePoint := xfB.MulVec2(m.LocalPoint)
		for i, p := range m.Points {
			clip := xfA.MulVec2(p.LocalPoint)
			cB := clip.Add(normal.Scale(radiusB - clip.Sub(planePoint).Dot(normal)))
			cA := clip.Sub(normal.Scale(radiusA))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(normal)
		}
		// b2Manifold flips the normal for faceB so it always points from A to B.
		wm.Normal = normal.Neg()
	}

	return wm
}

// Collide dispatches to the appropriate shape-pair narrow-phase routine.
// The dispatch table is the closed set the shape adapter promises: circle,
// polygon and edge, paired against each other in either order.
func Collide(shapeA Shape, xfA Transform, shapeB Shape, xfB Transform) Manifold {
	switch a := shapeA.(type) {
	case CircleShape:
		switch b := shapeB.(type) {
		case CircleShape:
			return collideCircles(a, xfA, b, xfB)
		case *PolygonShape:
			return flip(collidePolygonAndCircle(b, xfB, a, xfA))
		case *EdgeShape:
			return flip(collideEdgeAndCircle(b, xfB, a, xfA))
		}
	case *PolygonShape:
		switch b := shapeB.(type) {
		case CircleShape:
			return collidePolygonAndCircle(a, xfA, b, xfB)
		case *PolygonShape:
			return collidePolygons(a, xfA, b, xfB)
		case *EdgeShape:
			return flip(collideEdgeAndPolygon(b, xfB, a, xfA))
		}
	case *EdgeShape:
		switch b := shapeB.(type) {
		case CircleShape:
			return collideEdgeAndCircle(a, xfA, b, xfB)
		case *PolygonShape:
			return collideEdgeAndPolygon(a, xfA, b, xfB)
		case *EdgeShape:
			return collideEdges(a, xfA, b, xfB)
		}
	}
	assertf(false, "collide: unhandled shape pair %T / %T", shapeA, shapeB)
	return Manifold{}
}

// flip swaps a manifold's roles so a faceA result computed against
// (B-as-A, A-as-B) reads correctly as (A, B) again.
func flip(m Manifold) Manifold {
	switch m.Type {
	case ManifoldFaceA:
		m.Type = ManifoldFaceB
	case ManifoldFaceB:
		m.Type = ManifoldFaceA
	case ManifoldCircles:
		if len(m.Points) == 1 {
			m.LocalPoint, m.Points[0].LocalPoint = m.Points[0].LocalPoint, m.LocalPoint
		}
	}
	return m
}
