package rigid2d

// DistanceInput bundles two proxies and the transforms placing them in a
// shared frame for a ClosestPoints query.
type DistanceInput struct {
	ProxyA, ProxyB   DistanceProxy
	TransformA, TransformB Transform
	UseRadii         bool

	// MaxIters bounds the GJK reduction loop in closestSimplex. Zero means
	// "use maxDistanceItersDefault", so callers that build a DistanceInput
	// without setting it keep today's behavior.
	MaxIters int
}

// DistanceOutput reports the closest points between the two proxies (in the
// same shared frame as the input transforms) and the distance between them.
type DistanceOutput struct {
	PointA, PointB Vec2
	Distance       float64
	Iterations     int
}

// simplexVertex is one support point of the Minkowski difference A-B, along
// with the local-space vertex indices it came from (used for a simplex
// cache across steps, not implemented here since the world only needs a
// single-shot query per narrow-phase update / TOI iteration).
type simplexVertex struct {
	wA, wB Vec2 // support points in local frames, transformed to world
	w      Vec2 // wB - wA
	a      float64
	iA, iB int // proxy vertex indices the support points came from
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

// closestSimplex runs the GJK reduction loop and returns the final simplex,
// still carrying which proxy vertex indices its points came from — the
// witness feature a caller like TimeOfImpact needs to pick a separating
// axis. ClosestPoints itself only needs the resulting witness points.
func closestSimplex(input DistanceInput) simplex {
	proxyA, proxyB := input.ProxyA, input.ProxyB
	xfA, xfB := input.TransformA, input.TransformB

	supportPoint := func(indexA, indexB int) simplexVertex {
		wA := xfA.MulVec2(proxyA.Vertices[indexA])
		wB := xfB.MulVec2(proxyB.Vertices[indexB])
		return simplexVertex{wA: wA, wB: wB, w: wB.Sub(wA), iA: indexA, iB: indexB}
	}

	s := simplex{count: 1, v: [3]simplexVertex{supportPoint(0, 0)}}

	maxIters := input.MaxIters
	if maxIters <= 0 {
		maxIters = maxDistanceItersDefault
	}
	iter := 0

	for iter < maxIters {
		saveCount := s.count
		saveA := [3]int{s.v[0].iA, s.v[1].iA, s.v[2].iA}
		saveB := [3]int{s.v[0].iB, s.v[1].iB, s.v[2].iB}

		switch s.count {
		case 1:
			// nothing to reduce
		case 2:
			s = solveSimplex2(s)
		case 3:
			s = solveSimplex3(s)
		}

		if s.count == 3 {
			break
		}

		d := searchDirection(s)
		if d.LengthSquared() < epsilon*epsilon {
			break
		}

		indexA := proxyA.Support(negate(rotateInv(xfA, d)))
		indexB := proxyB.Support(rotateInv(xfB, d))

		newVert := supportPoint(indexA, indexB)
		iter++

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if saveA[i] == indexA && saveB[i] == indexB {
				duplicate = true
			}
		}
		if duplicate {
			break
		}

		s.v[s.count] = newVert
		s.count++
	}

	return s
}

// ClosestPoints implements a GJK-style distance query between two convex
// proxies: repeatedly finds the closest point of the current simplex to the
// origin, reduces the simplex to its supporting sub-simplex (1, 2 or 3
// vertices), and stops when adding the new best-direction support point no
// longer changes the simplex. This mirrors the barycentric/Voronoi-region
// case analysis CollisionB2Distance.go documents inline for its own
// b2Distance implementation.
func ClosestPoints(input DistanceInput) DistanceOutput {
	proxyA, proxyB := input.ProxyA, input.ProxyB

	s := closestSimplex(input)
	pointA, pointB := witnessPoints(s)

	output := DistanceOutput{
		PointA:   pointA,
		PointB:   pointB,
		Distance: Distance(pointA, pointB),
	}

	if input.UseRadii {
		if output.Distance < epsilon {
			mid := pointA.Add(pointB).Scale(0.5)
			output.PointA, output.PointB = mid, mid
			output.Distance = 0
			return output
		}
		_, normal := pointB.Sub(pointA).Normalize()
		output.PointA = output.PointA.Add(normal.Scale(proxyA.Radius))
		output.PointB = output.PointB.Sub(normal.Scale(proxyB.Radius))
		output.Distance = maxFloat(0, output.Distance-proxyA.Radius-proxyB.Radius)
	}

	return output
}

func negate(v Vec2) Vec2 { return v.Neg() }

func rotateInv(xf Transform, v Vec2) Vec2 { return xf.Q.MulTVec2(v) }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// searchDirection returns the direction from the simplex toward the origin.
func searchDirection(s simplex) Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e := s.v[1].w.Sub(s.v[0].w)
		sgn := e.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			return CrossSV(1.0, e)
		}
		return CrossVS(e, 1.0)
	default:
		return Vec2Zero
	}
}

// solveSimplex2 projects the origin onto segment v0-v1, dropping to a
// single vertex if the origin lies outside the segment.
func solveSimplex2(s simplex) simplex {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := w2.Sub(w1)

	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		return simplex{count: 1, v: [3]simplexVertex{s.v[0]}}
	}

	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		return simplex{count: 1, v: [3]simplexVertex{s.v[1]}}
	}

	inv := 1.0 / (d12_1 + d12_2)
	v0, v1 := s.v[0], s.v[1]
	v0.a = d12_1 * inv
	v1.a = d12_2 * inv
	return simplex{count: 2, v: [3]simplexVertex{v0, v1}}
}

// solveSimplex3 reduces a 3-vertex simplex to whichever sub-simplex is
// closest to the origin (a vertex, an edge, or the full triangle).
func solveSimplex3(s simplex) simplex {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := w2.Sub(w1)
	w1e12 := w1.Dot(e12)
	w2e12 := w2.Dot(e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := w3.Sub(w1)
	w1e13 := w1.Dot(e13)
	w3e13 := w3.Dot(e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := w3.Sub(w2)
	w2e23 := w2.Dot(e23)
	w3e23 := w3.Dot(e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := e12.Cross(e13)

	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	if d12_2 <= 0 && d13_2 <= 0 {
		return simplex{count: 1, v: [3]simplexVertex{s.v[0]}}
	}
	if d12_1 > 0 && d12_2 > 0 && d123_3 <= 0 {
		inv := 1.0 / (d12_1 + d12_2)
		v0, v1 := s.v[0], s.v[1]
		v0.a = d12_1 * inv
		v1.a = d12_2 * inv
		return simplex{count: 2, v: [3]simplexVertex{v0, v1}}
	}
	if d13_1 > 0 && d13_2 > 0 && d123_2 <= 0 {
		inv := 1.0 / (d13_1 + d13_2)
		v0, v2 := s.v[0], s.v[2]
		v0.a = d13_1 * inv
		v2.a = d13_2 * inv
		return simplex{count: 2, v: [3]simplexVertex{v0, v2}}
	}
	if d12_1 <= 0 && d23_2 <= 0 {
		return simplex{count: 1, v: [3]simplexVertex{s.v[1]}}
	}
	if d13_1 <= 0 && d23_1 <= 0 {
		return simplex{count: 1, v: [3]simplexVertex{s.v[2]}}
	}
	if d23_1 > 0 && d23_2 > 0 && d123_1 <= 0 {
		inv := 1.0 / (d23_1 + d23_2)
		v1, v2 := s.v[1], s.v[2]
		v1.a = d23_1 * inv
		v2.a = d23_2 * inv
		return simplex{count: 2, v: [3]simplexVertex{v1, v2}}
	}

	inv := 1.0 / (d123_1 + d123_2 + d123_3)
	v0, v1, v2 := s.v[0], s.v[1], s.v[2]
	v0.a = d123_1 * inv
	v1.a = d123_2 * inv
	v2.a = d123_3 * inv
	return simplex{count: 3, v: [3]simplexVertex{v0, v1, v2}}
}

func witnessPoints(s simplex) (Vec2, Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		a := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a))
		b := s.v[0].wB.Scale(s.v[0].a).Add(s.v[1].wB.Scale(s.v[1].a))
		return a, b
	default:
		a := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a)).Add(s.v[2].wA.Scale(s.v[2].a))
		return a, a // triangle containing the origin: distance is zero, A==B
	}
}
