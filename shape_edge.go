package rigid2d

// EdgeShape is a line segment (V1, V2), optionally carrying ghost vertices
// (V0, V3) used by chain shapes to suppress spurious internal-edge
// collisions; ghost vertices are not required for a standalone edge.
type EdgeShape struct {
	V0, V1, V2, V3 Vec2
	HasV0, HasV3   bool
	SkinRadius     float64
}

func NewEdgeShape(v1, v2 Vec2) *EdgeShape {
	return &EdgeShape{V1: v1, V2: v2, SkinRadius: polygonRadiusDefault}
}

func (e *EdgeShape) Type() ShapeType { return ShapeEdge }
func (e *EdgeShape) ChildCount() int  { return 1 }
func (e *EdgeShape) Radius() float64  { return e.SkinRadius }

func (e *EdgeShape) ComputeAABB(xf Transform, _ int) AABB {
	v1 := xf.MulVec2(e.V1)
	v2 := xf.MulVec2(e.V2)
	lower := Vec2Min(v1, v2)
	upper := Vec2Max(v1, v2)
	r := V2(e.SkinRadius, e.SkinRadius)
	return AABB{LowerBound: lower.Sub(r), UpperBound: upper.Add(r)}
}

// ComputeMass reports zero mass, matching the teacher: edges are meant to
// be attached to static or kinematic bodies, never to contribute inertia.
func (e *EdgeShape) ComputeMass(_ float64) MassData {
	mid := e.V1.Add(e.V2).Scale(0.5)
	return MassData{Mass: 0, Center: mid, I: 0}
}

func (e *EdgeShape) DistanceProxyFor(_ int) DistanceProxy {
	return DistanceProxy{Vertices: []Vec2{e.V1, e.V2}, Radius: e.SkinRadius}
}
