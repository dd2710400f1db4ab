package rigid2d

// collideCircles is a direct port of B2CollideCircles: two disks overlap
// whenever the distance between centers is at most the sum of radii, and
// the resulting manifold always carries exactly one point.
func collideCircles(a CircleShape, xfA Transform, b CircleShape, xfB Transform) Manifold {
	pA := xfA.MulVec2(a.Center)
	pB := xfB.MulVec2(b.Center)

	d := pB.Sub(pA)
	radius := a.radius + b.radius
	if d.LengthSquared() > radius*radius {
		return Manifold{}
	}

	return Manifold{
		Type:       ManifoldCircles,
		LocalPoint: a.Center,
		Points: []ManifoldPoint{
			{LocalPoint: b.Center, ID: ContactFeatureID{}},
		},
	}
}

// collidePolygonAndCircle is a direct port of B2CollidePolygonAndCircle:
// find the polygon face with the greatest separation from the circle
// center, then case-split on whether the center projects onto that face's
// segment or past one of its endpoints.
func collidePolygonAndCircle(polyA *PolygonShape, xfA Transform, circleB CircleShape, xfB Transform) Manifold {
	c := xfB.MulVec2(circleB.Center)
	cLocal := xfA.MulTVec2(c)

	n := len(polyA.Vertices)
	radius := polyA.SkinRadius + circleB.radius

	normalIndex := 0
	separation := -maxFloatConst
	for i := 0; i < n; i++ {
		s := polyA.Normals[i].Dot(cLocal.Sub(polyA.Vertices[i]))
		if s > radius {
			return Manifold{}
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := polyA.Vertices[normalIndex]
	v2 := polyA.Vertices[(normalIndex+1)%n]

	if separation < epsilon {
		return Manifold{
			Type:        ManifoldFaceA,
			LocalNormal: polyA.Normals[normalIndex],
			LocalPoint:  v1.Add(v2).Scale(0.5),
			Points:      []ManifoldPoint{{LocalPoint: circleB.Center}},
		}
	}

	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if DistanceSquared(cLocal, v1) > radius*radius {
			return Manifold{}
		}
		_, normal := cLocal.Sub(v1).Normalize()
		return Manifold{Type: ManifoldFaceA, LocalNormal: normal, LocalPoint: v1, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	case u2 <= 0:
		if DistanceSquared(cLocal, v2) > radius*radius {
			return Manifold{}
		}
		_, normal := cLocal.Sub(v2).Normalize()
		return Manifold{Type: ManifoldFaceA, LocalNormal: normal, LocalPoint: v2, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		s := cLocal.Sub(faceCenter).Dot(polyA.Normals[normalIndex])
		if s > radius {
			return Manifold{}
		}
		return Manifold{Type: ManifoldFaceA, LocalNormal: polyA.Normals[normalIndex], LocalPoint: faceCenter, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	}
}

const maxFloatConst = 3.402823466e+38

// collideEdgeAndCircle treats the edge as a degenerate two-vertex polygon
// with outward normals on both sides, reusing the polygon/circle case
// analysis above.
func collideEdgeAndCircle(edgeA *EdgeShape, xfA Transform, circleB CircleShape, xfB Transform) Manifold {
	_, edgeDir := edgeA.V2.Sub(edgeA.V1).Normalize()
	normal := V2(edgeDir.Y, -edgeDir.X)

	asPoly := &PolygonShape{
		Vertices:   []Vec2{edgeA.V1, edgeA.V2},
		Normals:    []Vec2{normal, normal.Neg()},
		SkinRadius: edgeA.SkinRadius,
	}
	return collidePolygonAndCircleEdgeSafe(asPoly, xfA, circleB, xfB)
}

// collidePolygonAndCircleEdgeSafe mirrors collidePolygonAndCircle's normal
// selection loop but stops after considering the segment's one real face
// plus its two endpoints (a 2-vertex "polygon" has no second face to loop
// into safely).
func collidePolygonAndCircleEdgeSafe(edgeAsPoly *PolygonShape, xfA Transform, circleB CircleShape, xfB Transform) Manifold {
	c := xfB.MulVec2(circleB.Center)
	cLocal := xfA.MulTVec2(c)

	v1, v2 := edgeAsPoly.Vertices[0], edgeAsPoly.Vertices[1]
	radius := edgeAsPoly.SkinRadius + circleB.radius

	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if DistanceSquared(cLocal, v1) > radius*radius {
			return Manifold{}
		}
		_, normal := cLocal.Sub(v1).Normalize()
		return Manifold{Type: ManifoldFaceA, LocalNormal: normal, LocalPoint: v1, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	case u2 <= 0:
		if DistanceSquared(cLocal, v2) > radius*radius {
			return Manifold{}
		}
		_, normal := cLocal.Sub(v2).Normalize()
		return Manifold{Type: ManifoldFaceA, LocalNormal: normal, LocalPoint: v2, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		normal := edgeAsPoly.Normals[0]
		s := cLocal.Sub(faceCenter).Dot(normal)
		if s < 0 {
			normal = normal.Neg()
			s = -s
		}
		if s > radius {
			return Manifold{}
		}
		return Manifold{Type: ManifoldFaceA, LocalNormal: normal, LocalPoint: faceCenter, Points: []ManifoldPoint{{LocalPoint: circleB.Center}}}
	}
}
