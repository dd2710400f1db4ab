package rigid2d

import "math"

// polyFace is the minimal vertex/normal/edge-count view collidePolygons and
// its edge-shape callers both need; an edge shape is represented as a
// 2-vertex, 1-edge polyFace so the same SAT-and-clip machinery serves both.
type polyFace struct {
	vertices []Vec2
	normals  []Vec2
	edges    int // number of real edges: len(vertices) for a closed polygon, 1 for an open edge
	radius   float64
}

func polyFaceOf(p *PolygonShape) polyFace {
	return polyFace{vertices: p.Vertices, normals: p.Normals, edges: len(p.Vertices), radius: p.SkinRadius}
}

func polyFaceOfEdge(e *EdgeShape) polyFace {
	_, dir := e.V2.Sub(e.V1).Normalize()
	normal := V2(dir.Y, -dir.X)
	return polyFace{vertices: []Vec2{e.V1, e.V2}, normals: []Vec2{normal}, edges: 1, radius: e.SkinRadius}
}

// findMaxSeparation returns the edge index of poly1 whose normal, applied
// in poly2's frame, achieves the greatest (most separating) support-point
// separation — the standard SAT probe.
func findMaxSeparation(poly1 polyFace, xf1 Transform, poly2 polyFace, xf2 Transform) (int, float64) {
	xf := TransformMulT(xf2, xf1)

	bestIndex := 0
	bestSeparation := -maxFloatConst

	for i := 0; i < poly1.edges; i++ {
		n := xf.Q.MulVec2(poly1.normals[i])
		v1 := xf.MulVec2(poly1.vertices[i])

		minDot := math.MaxFloat64
		for _, v2 := range poly2.vertices {
			d := n.Dot(v2)
			if d < minDot {
				minDot = d
			}
		}
		separation := minDot - n.Dot(v1)
		if separation > bestSeparation {
			bestSeparation = separation
			bestIndex = i
		}
	}

	return bestIndex, bestSeparation
}

// incidentEdge picks the edge of poly2 whose normal is most anti-parallel
// to the reference normal on poly1 (edge index in poly1's frame), returning
// the two world-space vertices of that edge and their feature indices.
func incidentEdge(poly1 polyFace, xf1 Transform, edge1 int, poly2 polyFace, xf2 Transform) (v [2]Vec2, idx [2]int) {
	n1 := xf2.Q.MulTVec2(xf1.Q.MulVec2(poly1.normals[edge1]))

	index := 0
	minDot := math.MaxFloat64
	for i := 0; i < poly2.edges; i++ {
		d := n1.Dot(poly2.normals[i])
		if d < minDot {
			minDot = d
			index = i
		}
	}

	i1 := index
	i2 := 0
	if i1+1 < len(poly2.vertices) {
		i2 = i1 + 1
	}

	v[0] = xf2.MulVec2(poly2.vertices[i1])
	v[1] = xf2.MulVec2(poly2.vertices[i2])
	idx[0], idx[1] = i1, i2
	return
}

type clipVertex struct {
	point Vec2
	id    ContactFeatureID
	index int
}

// clipSegmentToLine clips a two-point segment against the half-plane
// normal.dot(x) <= offset, matching b2ClipSegmentToLine's vertex-id
// bookkeeping so warm-start feature matching stays stable across frames.
func clipSegmentToLine(in [2]clipVertex, normal Vec2, offset float64, edgeIndex int) ([2]clipVertex, int) {
	var out [2]clipVertex
	numOut := 0

	dist0 := normal.Dot(in[0].point) - offset
	dist1 := normal.Dot(in[1].point) - offset

	if dist0 <= 0 {
		out[numOut] = in[0]
		numOut++
	}
	if dist1 <= 0 {
		out[numOut] = in[1]
		numOut++
	}

	if dist0*dist1 < 0 {
		t := dist0 / (dist0 - dist1)
		out[numOut] = clipVertex{
			point: in[0].point.Add(in[1].point.Sub(in[0].point).Scale(t)),
			id:    ContactFeatureID{IndexA: uint8(edgeIndex), TypeA: 1},
			index: -1,
		}
		numOut++
	}

	return out, numOut
}

// collidePolyFaces is the shared SAT-and-clip narrow-phase routine for two
// polyFace views: pick the least-penetrating separating axis on each side,
// take the one with the larger separation as the reference face, clip the
// other's incident edge against the reference face's side planes, and keep
// only points within the combined radius of the reference plane.
func collidePolyFaces(faceA polyFace, xfA Transform, faceB polyFace, xfB Transform) Manifold {
	totalRadius := faceA.radius + faceB.radius

	edgeA, separationA := findMaxSeparation(faceA, xfA, faceB, xfB)
	if separationA > totalRadius {
		return Manifold{}
	}

	edgeB, separationB := findMaxSeparation(faceB, xfB, faceA, xfA)
	if separationB > totalRadius {
		return Manifold{}
	}

	var (
		poly1, poly2       polyFace
		xf1, xf2           Transform
		edge1              int
		flipped            bool
	)

	const tol = 0.1 * linearSlopDefault
	if separationB > separationA+tol {
		poly1, xf1, edge1 = faceB, xfB, edgeB
		poly2, xf2 = faceA, xfA
		flipped = true
	} else {
		poly1, xf1, edge1 = faceA, xfA, edgeA
		poly2, xf2 = faceB, xfB
		flipped = false
	}

	incident, incidentIdx := incidentEdge(poly1, xf1, edge1, poly2, xf2)

	i11 := edge1
	i12 := 0
	if i11+1 < len(poly1.vertices) {
		i12 = i11 + 1
	}

	v11 := poly1.vertices[i11]
	v12 := poly1.vertices[i12]

	_, localTangent := v12.Sub(v11).Normalize()
	tangent := xf1.Q.MulVec2(localTangent)
	normal := CrossVS(tangent, 1.0)

	v11w := xf1.MulVec2(v11)
	v12w := xf1.MulVec2(v12)

	frontOffset := normal.Dot(v11w)
	sideOffset1 := -tangent.Dot(v11w)
	sideOffset2 := tangent.Dot(v12w)

	incidentClip := [2]clipVertex{
		{point: incident[0], id: ContactFeatureID{IndexA: uint8(incidentIdx[0]), TypeA: 2}, index: incidentIdx[0]},
		{point: incident[1], id: ContactFeatureID{IndexA: uint8(incidentIdx[1]), TypeA: 2}, index: incidentIdx[1]},
	}

	clip1, n1 := clipSegmentToLine(incidentClip, tangent.Neg(), sideOffset1, i11)
	if n1 < 2 {
		return Manifold{}
	}
	clip2, n2 := clipSegmentToLine(clip1, tangent, sideOffset2, i12)
	if n2 < 2 {
		return Manifold{}
	}

	m := Manifold{LocalNormal: poly1.normals[edge1]}
	if len(poly1.vertices) == 1 {
		m.LocalPoint = poly1.vertices[0]
	} else {
		m.LocalPoint = v11
	}

	if flipped {
		m.Type = ManifoldFaceB
	} else {
		m.Type = ManifoldFaceA
	}

	for i := 0; i < 2; i++ {
		cv := clip2[i]
		separation := normal.Dot(cv.point) - frontOffset
		if separation > totalRadius {
			continue
		}
		localPoint := xf2.MulTVec2(cv.point)
		m.Points = append(m.Points, ManifoldPoint{LocalPoint: localPoint, ID: cv.id})
	}

	if len(m.Points) == 0 {
		return Manifold{}
	}
	return m
}

func collidePolygons(a *PolygonShape, xfA Transform, b *PolygonShape, xfB Transform) Manifold {
	return collidePolyFaces(polyFaceOf(a), xfA, polyFaceOf(b), xfB)
}

func collideEdgeAndPolygon(edgeA *EdgeShape, xfA Transform, polyB *PolygonShape, xfB Transform) Manifold {
	return collidePolyFaces(polyFaceOfEdge(edgeA), xfA, polyFaceOf(polyB), xfB)
}

func collideEdges(a *EdgeShape, xfA Transform, b *EdgeShape, xfB Transform) Manifold {
	return collidePolyFaces(polyFaceOfEdge(a), xfA, polyFaceOfEdge(b), xfB)
}
