package rigid2d

import "math"

// Position and Velocity are the per-body solver state an island copies out
// of its bodies before iterating, and copies back afterward. Splitting them
// from Body lets the velocity and position solvers run over a dense,
// cache-friendly slice indexed by island position rather than chasing body
// pointers.
type Position struct {
	C Vec2
	A float64
}

type Velocity struct {
	V Vec2
	W float64
}

// blockSolve enables the two-point block LCP solver; disabling it falls
// back to solving each manifold point independently, which converges more
// slowly but never needs the well-conditioned-2x2 check.
var blockSolve = true

type velocityConstraintPoint struct {
	RA, RB         Vec2
	NormalImpulse  float64
	TangentImpulse float64
	NormalMass     float64
	TangentMass    float64
	VelocityBias   float64
}

type contactVelocityConstraint struct {
	points             [maxManifoldPoints]velocityConstraintPoint
	normal             Vec2
	normalMass         Mat22
	k                  Mat22
	indexA, indexB     int
	invMassA, invMassB float64
	invIA, invIB       float64
	friction           float64
	restitution        float64
	tangentSpeed       float64
	pointCount         int
	contactIndex       int
}

type contactPositionConstraint struct {
	localPoints                [maxManifoldPoints]Vec2
	localNormal                Vec2
	localPoint                 Vec2
	indexA, indexB             int
	invMassA, invMassB         float64
	localCenterA, localCenterB Vec2
	invIA, invIB               float64
	manifoldType               ManifoldType
	radiusA, radiusB           float64
	pointCount                 int
}

// contactSolver runs the velocity and position passes of the constraint
// graph solver over one island's worth of contacts, following the split
// the teacher makes between position-independent setup (done when the
// solver is built) and position-dependent Jacobian setup (done once per
// Solve call before the velocity iterations, since bodies move only in the
// position solver, not the velocity solver).
type contactSolver struct {
	config     StepConfig
	positions  []Position
	velocities []Velocity

	positionConstraints []contactPositionConstraint
	velocityConstraints []contactVelocityConstraint

	contacts []*Contact
	fixtureA []*Fixture
	fixtureB []*Fixture
}

// newContactSolver builds the position-independent portion of every
// constraint: mixed friction/restitution, body indices and inverse mass
// terms, and warm-start impulses scaled by the step's DtRatio.
func newContactSolver(config StepConfig, contacts []*Contact, fixtureA, fixtureB []*Fixture, bodyA, bodyB []*Body, positions []Position, velocities []Velocity) *contactSolver {
	count := len(contacts)
	s := &contactSolver{
		config:              config,
		positions:           positions,
		velocities:          velocities,
		positionConstraints: make([]contactPositionConstraint, count),
		velocityConstraints: make([]contactVelocityConstraint, count),
		contacts:            contacts,
		fixtureA:            fixtureA,
		fixtureB:            fixtureB,
	}

	for i := 0; i < count; i++ {
		contact := contacts[i]
		fA, fB := fixtureA[i], fixtureB[i]
		bA, bB := bodyA[i], bodyB[i]
		radiusA := fA.shape.Radius()
		radiusB := fB.shape.Radius()
		manifold := &contact.manifold

		pointCount := len(manifold.Points)
		assertf(pointCount > 0, "contact solver: contact with no manifold points")

		vc := &s.velocityConstraints[i]
		vc.friction = contact.friction
		vc.restitution = contact.restitution
		vc.tangentSpeed = contact.tangentSpeed
		vc.indexA = bA.islandIndex
		vc.indexB = bB.islandIndex
		vc.invMassA = bA.invMass
		vc.invMassB = bB.invMass
		vc.invIA = bA.invI
		vc.invIB = bB.invI
		vc.contactIndex = i
		vc.pointCount = pointCount

		pc := &s.positionConstraints[i]
		pc.indexA = bA.islandIndex
		pc.indexB = bB.islandIndex
		pc.invMassA = bA.invMass
		pc.invMassB = bB.invMass
		pc.localCenterA = bA.sweep.LocalCenter
		pc.localCenterB = bB.sweep.LocalCenter
		pc.invIA = bA.invI
		pc.invIB = bB.invI
		pc.localNormal = manifold.LocalNormal
		pc.localPoint = manifold.LocalPoint
		pc.pointCount = pointCount
		pc.radiusA = radiusA
		pc.radiusB = radiusB
		pc.manifoldType = manifold.Type

		for j := 0; j < pointCount; j++ {
			cp := &manifold.Points[j]
			vcp := &vc.points[j]

			if config.DoWarmStart {
				vcp.NormalImpulse = config.DtRatio * cp.NormalImpulse
				vcp.TangentImpulse = config.DtRatio * cp.TangentImpulse
			}

			pc.localPoints[j] = cp.LocalPoint
		}
	}

	return s
}

// initializeVelocityConstraints fills in the position-dependent Jacobian
// terms (moment arms, effective masses, restitution bias) using the
// bodies' positions before the velocity iterations begin.
func (s *contactSolver) initializeVelocityConstraints() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		pc := &s.positionConstraints[i]

		radiusA, radiusB := pc.radiusA, pc.radiusB
		manifold := &s.contacts[vc.contactIndex].manifold

		indexA, indexB := vc.indexA, vc.indexB
		mA, mB := vc.invMassA, vc.invMassB
		iA, iB := vc.invIA, vc.invIB
		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB

		cA, aA := s.positions[indexA].C, s.positions[indexA].A
		vA, wA := s.velocities[indexA].V, s.velocities[indexA].W

		cB, aB := s.positions[indexB].C, s.positions[indexB].A
		vB, wB := s.velocities[indexB].V, s.velocities[indexB].W

		assertf(len(manifold.Points) > 0, "contact solver: velocity constraint with no manifold points")

		xfA := Transform{Q: RotFromAngle(aA)}
		xfB := Transform{Q: RotFromAngle(aB)}
		xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
		xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

		wm := ComputeWorldManifold(*manifold, xfA, radiusA, xfB, radiusB)
		vc.normal = wm.Normal

		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]

			vcp.RA = wm.Points[j].Sub(cA)
			vcp.RB = wm.Points[j].Sub(cB)

			rnA := vcp.RA.Cross(vc.normal)
			rnB := vcp.RB.Cross(vc.normal)
			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			if kNormal > 0 {
				vcp.NormalMass = 1.0 / kNormal
			}

			tangent := CrossVS(vc.normal, 1.0)
			rtA := vcp.RA.Cross(tangent)
			rtB := vcp.RB.Cross(tangent)
			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			if kTangent > 0 {
				vcp.TangentMass = 1.0 / kTangent
			}

			vRel := vc.normal.Dot(vB.Add(CrossSV(wB, vcp.RB)).Sub(vA).Sub(CrossSV(wA, vcp.RA)))
			if vRel < -velocityThreshold {
				vcp.VelocityBias = -vc.restitution * vRel
			}
		}

		if vc.pointCount == 2 && blockSolve {
			vcp1, vcp2 := &vc.points[0], &vc.points[1]

			rn1A := vcp1.RA.Cross(vc.normal)
			rn1B := vcp1.RB.Cross(vc.normal)
			rn2A := vcp2.RA.Cross(vc.normal)
			rn2B := vcp2.RB.Cross(vc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			const maxConditionNumber = 1000.0
			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.k = Mat22{Ex: V2(k11, k12), Ey: V2(k12, k22)}
				vc.normalMass = vc.k.Inverse()
			} else {
				vc.pointCount = 1
			}
		}
	}
}

// warmStart reapplies each point's carried-over impulse from last frame so
// the velocity solver starts near the converged solution instead of from
// rest.
func (s *contactSolver) warmStart() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]

		indexA, indexB := vc.indexA, vc.indexB
		mA, iA := vc.invMassA, vc.invIA
		mB, iB := vc.invMassB, vc.invIB

		vA, wA := s.velocities[indexA].V, s.velocities[indexA].W
		vB, wB := s.velocities[indexB].V, s.velocities[indexB].W

		normal := vc.normal
		tangent := CrossVS(normal, 1.0)

		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]
			p := normal.Scale(vcp.NormalImpulse).Add(tangent.Scale(vcp.TangentImpulse))
			wA -= iA * vcp.RA.Cross(p)
			vA = vA.Sub(p.Scale(mA))
			wB += iB * vcp.RB.Cross(p)
			vB = vB.Add(p.Scale(mB))
		}

		s.velocities[indexA] = Velocity{V: vA, W: wA}
		s.velocities[indexB] = Velocity{V: vB, W: wB}
	}
}

// solveVelocityConstraints runs one Gauss-Seidel sweep over every contact's
// tangent (friction) and normal constraints. Tangent constraints solve
// first because non-penetration matters more than friction; two-point
// manifolds use the block LCP solver below unless it's ill-conditioned, in
// which case pointCount was already dropped to 1 during initialization.
// It returns the largest incremental impulse applied this sweep, so callers
// can converge early once every contact and joint has stopped moving.
func (s *contactSolver) solveVelocityConstraints() float64 {
	maxIncrement := 0.0

	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]

		indexA, indexB := vc.indexA, vc.indexB
		mA, iA := vc.invMassA, vc.invIA
		mB, iB := vc.invMassB, vc.invIB
		pointCount := vc.pointCount

		vA, wA := s.velocities[indexA].V, s.velocities[indexA].W
		vB, wB := s.velocities[indexB].V, s.velocities[indexB].W

		normal := vc.normal
		tangent := CrossVS(normal, 1.0)
		friction := vc.friction

		assertf(pointCount == 1 || pointCount == 2, "contact solver: unexpected point count")

		for j := 0; j < pointCount; j++ {
			vcp := &vc.points[j]

			dv := vB.Add(CrossSV(wB, vcp.RB)).Sub(vA).Sub(CrossSV(wA, vcp.RA))

			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vcp.TangentMass * (-vt)

			maxFriction := friction * vcp.NormalImpulse
			newImpulse := FloatClamp(vcp.TangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.TangentImpulse
			vcp.TangentImpulse = newImpulse
			maxIncrement = math.Max(maxIncrement, math.Abs(lambda))

			p := tangent.Scale(lambda)
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * vcp.RA.Cross(p)
			vB = vB.Add(p.Scale(mB))
			wB += iB * vcp.RB.Cross(p)
		}

		if pointCount == 1 || !blockSolve {
			for j := 0; j < pointCount; j++ {
				vcp := &vc.points[j]

				dv := vB.Add(CrossSV(wB, vcp.RB)).Sub(vA).Sub(CrossSV(wA, vcp.RA))

				vn := dv.Dot(normal)
				lambda := -vcp.NormalMass * (vn - vcp.VelocityBias)

				newImpulse := math.Max(vcp.NormalImpulse+lambda, 0.0)
				lambda = newImpulse - vcp.NormalImpulse
				vcp.NormalImpulse = newImpulse
				maxIncrement = math.Max(maxIncrement, math.Abs(lambda))

				p := normal.Scale(lambda)
				vA = vA.Sub(p.Scale(mA))
				wA -= iA * vcp.RA.Cross(p)
				vB = vB.Add(p.Scale(mB))
				wB += iB * vcp.RB.Cross(p)
			}
		} else {
			maxIncrement = math.Max(maxIncrement, s.solveBlock(vc, &vA, &wA, &vB, &wB, mA, iA, mB, iB, normal))
		}

		s.velocities[indexA] = Velocity{V: vA, W: wA}
		s.velocities[indexB] = Velocity{V: vB, W: wB}
	}

	return maxIncrement
}

// solveBlock implements the two-point block LCP by total enumeration of the
// four complementarity cases (both points separating, either point alone
// resting with the other separating, both resting), taking the first case
// whose solution is feasible. Grounded on the block solver's own comment
// block, which credits Dirk Gregorius's collaboration with Erin Catto on
// Box2D_Lite.
func (s *contactSolver) solveBlock(vc *contactVelocityConstraint, vA *Vec2, wA *float64, vB *Vec2, wB *float64, mA, iA, mB, iB float64, normal Vec2) float64 {
	cp1, cp2 := &vc.points[0], &vc.points[1]

	a := V2(cp1.NormalImpulse, cp2.NormalImpulse)
	assertf(a.X >= 0 && a.Y >= 0, "contact solver: negative accumulated impulse entering block solve")

	dv1 := vB.Add(CrossSV(*wB, cp1.RB)).Sub(*vA).Sub(CrossSV(*wA, cp1.RA))
	dv2 := vB.Add(CrossSV(*wB, cp2.RB)).Sub(*vA).Sub(CrossSV(*wA, cp2.RA))

	vn1 := dv1.Dot(normal)
	vn2 := dv2.Dot(normal)

	b := V2(vn1-cp1.VelocityBias, vn2-cp2.VelocityBias)
	b = b.Sub(vc.k.MulVec2(a))

	apply := func(d Vec2) float64 {
		p1 := normal.Scale(d.X)
		p2 := normal.Scale(d.Y)
		sum := p1.Add(p2)
		*vA = vA.Sub(sum.Scale(mA))
		*wA -= iA * (cp1.RA.Cross(p1) + cp2.RA.Cross(p2))
		*vB = vB.Add(sum.Scale(mB))
		*wB += iB * (cp1.RB.Cross(p1) + cp2.RB.Cross(p2))
		return math.Max(math.Abs(d.X), math.Abs(d.Y))
	}

	// Case 1: both points resting (vn == 0 for both).
	x := vc.normalMass.MulVec2(b).Neg()
	if x.X >= 0 && x.Y >= 0 {
		increment := apply(x.Sub(a))
		cp1.NormalImpulse, cp2.NormalImpulse = x.X, x.Y
		return increment
	}

	// Case 2: point 1 resting (vn1 == 0), point 2 separating (x2 == 0).
	x = V2(-cp1.NormalMass*b.X, 0)
	vn2 = vc.k.Ex.Y*x.X + b.Y
	if x.X >= 0 && vn2 >= 0 {
		increment := apply(x.Sub(a))
		cp1.NormalImpulse, cp2.NormalImpulse = x.X, x.Y
		return increment
	}

	// Case 3: point 2 resting (vn2 == 0), point 1 separating (x1 == 0).
	x = V2(0, -cp2.NormalMass*b.Y)
	vn1 = vc.k.Ey.X*x.Y + b.X
	if x.Y >= 0 && vn1 >= 0 {
		increment := apply(x.Sub(a))
		cp1.NormalImpulse, cp2.NormalImpulse = x.X, x.Y
		return increment
	}

	// Case 4: both points separating (x1 == x2 == 0).
	x = Vec2Zero
	vn1, vn2 = b.X, b.Y
	if vn1 >= 0 && vn2 >= 0 {
		increment := apply(x.Sub(a))
		cp1.NormalImpulse, cp2.NormalImpulse = x.X, x.Y
		return increment
	}

	// No case is feasible; a poorly conditioned effective mass matrix hit
	// this occasionally in practice and leaving the impulses unchanged is
	// the documented fallback.
	return 0
}

// storeImpulses writes each constraint's converged impulses back into the
// contact's manifold points, so next frame's update() can warm-start from
// them.
func (s *contactSolver) storeImpulses() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		manifold := &s.contacts[vc.contactIndex].manifold
		for j := 0; j < vc.pointCount; j++ {
			manifold.Points[j].NormalImpulse = vc.points[j].NormalImpulse
			manifold.Points[j].TangentImpulse = vc.points[j].TangentImpulse
		}
	}
}

// positionSolverManifold recomputes a position constraint's world-space
// normal, contact point and separation from the current (mid-solve)
// positions, since the position solver moves bodies between manifold
// points and must re-derive geometry after every point it corrects.
type positionSolverManifold struct {
	normal     Vec2
	point      Vec2
	separation float64
}

func initPositionSolverManifold(pc *contactPositionConstraint, xfA, xfB Transform, index int) positionSolverManifold {
	assertf(pc.pointCount > 0, "contact solver: position constraint with no points")

	var psm positionSolverManifold
	switch pc.manifoldType {
	case ManifoldCircles:
		pointA := xfA.MulVec2(pc.localPoint)
		pointB := xfB.MulVec2(pc.localPoints[0])
		_, normal := pointB.Sub(pointA).Normalize()
		psm.normal = normal
		psm.point = pointA.Add(pointB).Scale(0.5)
		psm.separation = pointB.Sub(pointA).Dot(normal) - pc.radiusA - pc.radiusB

	case ManifoldFaceA:
		normal := xfA.Q.MulVec2(pc.localNormal)
		planePoint := xfA.MulVec2(pc.localPoint)
		clipPoint := xfB.MulVec2(pc.localPoints[index])
		psm.normal = normal
		psm.separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint

	case ManifoldFaceB:
		normal := xfB.Q.MulVec2(pc.localNormal)
		planePoint := xfB.MulVec2(pc.localPoint)
		clipPoint := xfA.MulVec2(pc.localPoints[index])
		psm.separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint
		psm.normal = normal.Neg()
	}
	return psm
}

// solvePositionConstraints runs the sequential (non-block) position
// correction pass, nudging bodies apart along each contact normal by a
// Baumgarte-damped fraction of the penetration, clamped to
// MaxLinearCorrection to avoid a single deep penetration causing a violent
// pop. Returns whether every contact is now within slop of non-penetrating.
func (s *contactSolver) solvePositionConstraints() bool {
	minSeparation := 0.0

	for i := range s.positionConstraints {
		pc := &s.positionConstraints[i]

		indexA, indexB := pc.indexA, pc.indexB
		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB
		mA, iA := pc.invMassA, pc.invIA
		mB, iB := pc.invMassB, pc.invIB

		cA, aA := s.positions[indexA].C, s.positions[indexA].A
		cB, aB := s.positions[indexB].C, s.positions[indexB].A

		for j := 0; j < pc.pointCount; j++ {
			xfA := Transform{Q: RotFromAngle(aA)}
			xfB := Transform{Q: RotFromAngle(aB)}
			xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
			xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

			psm := initPositionSolverManifold(pc, xfA, xfB, j)
			normal := psm.normal
			point := psm.point
			separation := psm.separation

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			minSeparation = math.Min(minSeparation, separation)

			c := FloatClamp(baumgarte*(separation+s.config.LinearSlop), -s.config.MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			impulse := 0.0
			if k > 0 {
				impulse = -c / k
			}

			p := normal.Scale(impulse)
			cA = cA.Sub(p.Scale(mA))
			aA -= iA * rA.Cross(p)
			cB = cB.Add(p.Scale(mB))
			aB += iB * rB.Cross(p)
		}

		s.positions[indexA] = Position{C: cA, A: aA}
		s.positions[indexB] = Position{C: cB, A: aB}
	}

	return minSeparation >= s.config.RegMinSeparation
}

// solveTOIPositionConstraints is the position solver's TOI variant: only
// the two bodies at toiIndexA/toiIndexB (the pair the TOI event actually
// involves) are allowed to move, so resolving this island's TOI event
// doesn't perturb bodies elsewhere in the island that haven't reached their
// own time of impact yet.
func (s *contactSolver) solveTOIPositionConstraints(toiIndexA, toiIndexB int) bool {
	minSeparation := 0.0

	for i := range s.positionConstraints {
		pc := &s.positionConstraints[i]

		indexA, indexB := pc.indexA, pc.indexB
		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB

		mA, iA := 0.0, 0.0
		if indexA == toiIndexA || indexA == toiIndexB {
			mA, iA = pc.invMassA, pc.invIA
		}

		mB, iB := 0.0, 0.0
		if indexB == toiIndexA || indexB == toiIndexB {
			mB, iB = pc.invMassB, pc.invIB
		}

		cA, aA := s.positions[indexA].C, s.positions[indexA].A
		cB, aB := s.positions[indexB].C, s.positions[indexB].A

		for j := 0; j < pc.pointCount; j++ {
			xfA := Transform{Q: RotFromAngle(aA)}
			xfB := Transform{Q: RotFromAngle(aB)}
			xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
			xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

			psm := initPositionSolverManifold(pc, xfA, xfB, j)
			normal := psm.normal
			point := psm.point
			separation := psm.separation

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			minSeparation = math.Min(minSeparation, separation)

			c := FloatClamp(toiBaumgarte*(separation+s.config.LinearSlop), -s.config.MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			impulse := 0.0
			if k > 0 {
				impulse = -c / k
			}

			p := normal.Scale(impulse)
			cA = cA.Sub(p.Scale(mA))
			aA -= iA * rA.Cross(p)
			cB = cB.Add(p.Scale(mB))
			aB += iB * rB.Cross(p)
		}

		s.positions[indexA] = Position{C: cA, A: aA}
		s.positions[indexB] = Position{C: cB, A: aB}
	}

	return minSeparation >= s.config.TOIMinSeparation
}
