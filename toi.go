package rigid2d

import "math"

// TOIState reports how a TimeOfImpact query resolved.
type TOIState int

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

// TOIInput bundles the two proxies and their sweeps for a conservative-
// advancement query over the time interval [0, TMax].
type TOIInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB Sweep
	TMax           float64

	// MaxIters and MaxRootIters bound TimeOfImpact's outer conservative-
	// advancement loop and inner root finder; MaxDistanceIters bounds the
	// GJK queries it runs along the way. Zero means "use the matching
	// *Default constant", so callers that build a TOIInput without setting
	// them keep today's behavior.
	MaxIters, MaxRootIters, MaxDistanceIters int
}

// TOIOutput reports the resolved state and, for Touching/Separated/Failed,
// the fraction of the interval at which it was determined.
type TOIOutput struct {
	State TOIState
	T     float64
}

// separationFuncType tags which witness-feature the separating axis in a
// separationFunction was derived from.
type separationFuncType int

const (
	sepPoints separationFuncType = iota
	sepFaceA
	sepFaceB
)

// separationFunction evaluates the separation between two swept convex
// proxies along a fixed axis (chosen from the simplex the initial distance
// query returns) as a function of time, so TimeOfImpact can root-find the
// first instant that separation drops to the target value.
type separationFunction struct {
	proxyA, proxyB *DistanceProxy
	sweepA, sweepB Sweep
	kind           separationFuncType
	localPoint     Vec2
	axis           Vec2
}

func (f *separationFunction) initialize(cache simplexCacheView, proxyA *DistanceProxy, sweepA Sweep, proxyB *DistanceProxy, sweepB Sweep, t1 float64) float64 {
	f.proxyA, f.proxyB = proxyA, proxyB
	f.sweepA, f.sweepB = sweepA, sweepB

	xfA := sweepA.Transform(t1)
	xfB := sweepB.Transform(t1)

	switch {
	case cache.count == 1:
		f.kind = sepPoints
		localA := proxyA.Vertices[cache.indexA[0]]
		localB := proxyB.Vertices[cache.indexB[0]]
		pA := xfA.MulVec2(localA)
		pB := xfB.MulVec2(localB)
		f.axis = pB.Sub(pA)
		dist, axis := f.axis.Normalize()
		f.axis = axis
		return dist

	case cache.indexA[0] == cache.indexA[1]:
		f.kind = sepFaceB
		localB1 := proxyB.Vertices[cache.indexB[0]]
		localB2 := proxyB.Vertices[cache.indexB[1]]
		_, axis := CrossVS(localB2.Sub(localB1), 1.0).Normalize()
		f.axis = axis
		normal := xfB.Q.MulVec2(f.axis)

		f.localPoint = localB1.Add(localB2).Scale(0.5)
		pB := xfB.MulVec2(f.localPoint)

		localA := proxyA.Vertices[cache.indexA[0]]
		pA := xfA.MulVec2(localA)

		s := pA.Sub(pB).Dot(normal)
		if s < 0 {
			f.axis = f.axis.Neg()
			s = -s
		}
		return s

	default:
		f.kind = sepFaceA
		localA1 := proxyA.Vertices[cache.indexA[0]]
		localA2 := proxyA.Vertices[cache.indexA[1]]
		_, axis := CrossVS(localA2.Sub(localA1), 1.0).Normalize()
		f.axis = axis
		normal := xfA.Q.MulVec2(f.axis)

		f.localPoint = localA1.Add(localA2).Scale(0.5)
		pA := xfA.MulVec2(f.localPoint)

		localB := proxyB.Vertices[cache.indexB[0]]
		pB := xfB.MulVec2(localB)

		s := pB.Sub(pA).Dot(normal)
		if s < 0 {
			f.axis = f.axis.Neg()
			s = -s
		}
		return s
	}
}

func (f *separationFunction) findMinSeparation(t float64) (indexA, indexB int, separation float64) {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.kind {
	case sepPoints:
		axisA := xfA.Q.MulTVec2(f.axis)
		axisB := xfB.Q.MulTVec2(f.axis.Neg())
		indexA = f.proxyA.Support(axisA)
		indexB = f.proxyB.Support(axisB)
		pA := xfA.MulVec2(f.proxyA.Vertices[indexA])
		pB := xfB.MulVec2(f.proxyB.Vertices[indexB])
		return indexA, indexB, pB.Sub(pA).Dot(f.axis)

	case sepFaceA:
		normal := xfA.Q.MulVec2(f.axis)
		pA := xfA.MulVec2(f.localPoint)
		axisB := xfB.Q.MulTVec2(normal.Neg())
		indexA = -1
		indexB = f.proxyB.Support(axisB)
		pB := xfB.MulVec2(f.proxyB.Vertices[indexB])
		return indexA, indexB, pB.Sub(pA).Dot(normal)

	default: // sepFaceB
		normal := xfB.Q.MulVec2(f.axis)
		pB := xfB.MulVec2(f.localPoint)
		axisA := xfA.Q.MulTVec2(normal.Neg())
		indexB = -1
		indexA = f.proxyA.Support(axisA)
		pA := xfA.MulVec2(f.proxyA.Vertices[indexA])
		return indexA, indexB, pA.Sub(pB).Dot(normal)
	}
}

func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.kind {
	case sepPoints:
		pA := xfA.MulVec2(f.proxyA.Vertices[indexA])
		pB := xfB.MulVec2(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(f.axis)

	case sepFaceA:
		normal := xfA.Q.MulVec2(f.axis)
		pA := xfA.MulVec2(f.localPoint)
		pB := xfB.MulVec2(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(normal)

	default: // sepFaceB
		normal := xfB.Q.MulVec2(f.axis)
		pB := xfB.MulVec2(f.localPoint)
		pA := xfA.MulVec2(f.proxyA.Vertices[indexA])
		return pA.Sub(pB).Dot(normal)
	}
}

// simplexCacheView is the minimal witness-feature record findMinSeparation's
// caller (TimeOfImpact) needs from a ClosestPoints call: which vertex
// indices formed the closest simplex, so separationFunction can pick the
// same separating axis the distance query already found.
type simplexCacheView struct {
	count          int
	indexA, indexB [2]int
}

// TimeOfImpact computes the largest fraction of [0, TMax] over which the two
// swept proxies stay separated by at least a target gap, via conservative
// advancement along a fixed separating axis: run a distance query at the
// current time, derive a separating axis from its witness simplex, then
// root-find the time at which that axis's separation drops back to target,
// repeating with a fresh axis until the proxies overlap, come within
// tolerance of target, stay separated over the whole interval, or an
// iteration cap is hit. Mirrors CollisionB2TimeOfImpact.go's b2TimeOfImpact.
func TimeOfImpact(input TOIInput) TOIOutput {
	output := TOIOutput{State: TOIUnknown, T: input.TMax}

	proxyA, proxyB := input.ProxyA, input.ProxyB
	sweepA, sweepB := input.SweepA, input.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(linearSlopDefault, totalRadius-3.0*linearSlopDefault)
	tolerance := 0.25 * linearSlopDefault

	maxIterations := input.MaxIters
	if maxIterations <= 0 {
		maxIterations = maxTOIItersDefault
	}
	maxRootIters := input.MaxRootIters
	if maxRootIters <= 0 {
		maxRootIters = maxRootItersDefault
	}

	t1 := 0.0
	iter := 0

	for {
		xfA := sweepA.Transform(t1)
		xfB := sweepB.Transform(t1)

		distOut := ClosestPoints(DistanceInput{
			ProxyA: proxyA, ProxyB: proxyB,
			TransformA: xfA, TransformB: xfB,
			UseRadii: false,
			MaxIters: input.MaxDistanceIters,
		})

		if distOut.Distance <= 0 {
			output.State = TOIOverlapped
			output.T = 0
			break
		}

		if distOut.Distance < target+tolerance {
			output.State = TOITouching
			output.T = t1
			break
		}

		cache := simplexCacheFromDistance(proxyA, proxyB, xfA, xfB, input.MaxDistanceIters)

		var fcn separationFunction
		fcn.initialize(cache, &proxyA, sweepA, &proxyB, sweepB, t1)

		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			indexA, indexB, s2 := fcn.findMinSeparation(t2)

			if s2 > target+tolerance {
				output.State = TOISeparated
				output.T = tMax
				done = true
				break
			}

			if s2 > target-tolerance {
				t1 = t2
				break
			}

			s1 := fcn.evaluate(indexA, indexB, t1)

			if s1 < target-tolerance {
				output.State = TOIFailed
				output.T = t1
				done = true
				break
			}

			if s1 <= target+tolerance {
				output.State = TOITouching
				output.T = t1
				done = true
				break
			}

			rootIterCount := 0
			a1, a2 := t1, t2
			for {
				var t float64
				if rootIterCount&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)
				if math.Abs(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
				if rootIterCount == maxRootIters {
					break
				}
			}

			pushBackIter++
			if pushBackIter == maxPolygonVertices {
				break
			}
		}

		iter++
		if done {
			break
		}
		if iter == maxIterations {
			output.State = TOIFailed
			output.T = t1
			break
		}
	}

	return output
}

// simplexCacheFromDistance re-derives the witness-vertex indices a
// ClosestPoints call used, by re-running the search with the same proxies
// and transforms and reading back which vertices the final simplex touched.
// b2Distance's caller keeps a simplex cache across frames; a single-shot TOI
// query has no prior frame to reuse, so it rebuilds the cache from scratch
// each outer iteration.
func simplexCacheFromDistance(proxyA, proxyB DistanceProxy, xfA, xfB Transform, maxIters int) simplexCacheView {
	s := closestSimplex(DistanceInput{ProxyA: proxyA, ProxyB: proxyB, TransformA: xfA, TransformB: xfB, MaxIters: maxIters})
	view := simplexCacheView{count: s.count}
	for i := 0; i < s.count; i++ {
		view.indexA[i] = s.v[i].iA
		view.indexB[i] = s.v[i].iB
	}
	return view
}
