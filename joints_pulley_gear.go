package rigid2d

import "math"

// PulleyJointDef configures a PulleyJoint: two bodies each tethered to a
// fixed ground anchor, with the sum of the two rope lengths (weighted by
// Ratio) held constant, the way a rope over a pulley wheel couples two
// hanging weights.
type PulleyJointDef struct {
	JointDef
	GroundAnchorA, GroundAnchorB Vec2
	LocalAnchorA, LocalAnchorB   Vec2
	LengthA, LengthB             float64
	Ratio                        float64
}

// PulleyJoint links two bodies through a shared, inextensible rope: as
// bodyB's tether lengthens, bodyA's must shorten by Ratio times as much.
// The constraint is a single scalar (the weighted length sum), unlike the
// point-pair joints.
type PulleyJoint struct {
	jointBase

	groundAnchorA, groundAnchorB Vec2
	localAnchorA, localAnchorB   Vec2
	lengthA, lengthB             float64
	ratio                        float64
	constant                     float64

	impulse float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	uA, uB                     Vec2
	rA, rB                     Vec2
	mass                       float64
}

func newPulleyJoint(world *World, def PulleyJointDef) *PulleyJoint {
	return &PulleyJoint{
		jointBase:     newJointBase(PulleyJointType, def.JointDef, world),
		groundAnchorA: def.GroundAnchorA,
		groundAnchorB: def.GroundAnchorB,
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		lengthA:       def.LengthA,
		lengthB:       def.LengthB,
		ratio:         def.Ratio,
		constant:      def.LengthA + def.Ratio*def.LengthB,
	}
}

func (j *PulleyJoint) InitVelocityConstraints(data *solverData) {
	bA, bB := j.resolveBodies()
	j.indexA, j.indexB = bA.islandIndex, bB.islandIndex
	j.localCenterA, j.localCenterB = bA.sweep.LocalCenter, bB.sweep.LocalCenter
	j.invMassA, j.invMassB = bA.invMass, bB.invMass
	j.invIA, j.invIB = bA.invI, bB.invI

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	j.uA = cA.Add(j.rA).Sub(j.groundAnchorA)
	j.uB = cB.Add(j.rB).Sub(j.groundAnchorB)

	lengthA := j.uA.Length()
	lengthB := j.uB.Length()

	if lengthA > 10*linearSlopDefault {
		j.uA = j.uA.Scale(1 / lengthA)
	} else {
		j.uA = Vec2Zero
	}
	if lengthB > 10*linearSlopDefault {
		j.uB = j.uB.Scale(1 / lengthB)
	} else {
		j.uB = Vec2Zero
	}

	ruA := j.rA.Cross(j.uA)
	ruB := j.rB.Cross(j.uB)

	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB

	sum := mA + j.ratio*j.ratio*mB
	if sum > 0 {
		j.mass = 1 / sum
	} else {
		j.mass = 0
	}

	if data.config.DoWarmStart {
		j.impulse *= data.config.DtRatio
		pA := j.uA.Scale(-j.impulse)
		pB := j.uB.Scale(-j.ratio * j.impulse)

		vA = vA.Add(pA.Scale(j.invMassA))
		wA += j.invIA * j.rA.Cross(pA)
		vB = vB.Add(pB.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(pB)
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PulleyJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossSV(wA, j.rA))
	vpB := vB.Add(CrossSV(wB, j.rB))

	cdot := -j.uA.Dot(vpA) - j.ratio*j.uB.Dot(vpB)
	impulse := -j.mass * cdot
	j.impulse += impulse

	pA := j.uA.Scale(-impulse)
	pB := j.uB.Scale(-j.ratio * impulse)

	vA = vA.Add(pA.Scale(j.invMassA))
	wA += j.invIA * j.rA.Cross(pA)
	vB = vB.Add(pB.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(pB)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return math.Abs(impulse) < data.config.RegMinMomentum
}

func (j *PulleyJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	uA := cA.Add(rA).Sub(j.groundAnchorA)
	uB := cB.Add(rB).Sub(j.groundAnchorB)

	lengthA := uA.Length()
	lengthB := uB.Length()
	if lengthA > 10*linearSlopDefault {
		uA = uA.Scale(1 / lengthA)
	} else {
		uA = Vec2Zero
	}
	if lengthB > 10*linearSlopDefault {
		uB = uB.Scale(1 / lengthB)
	} else {
		uB = Vec2Zero
	}

	c := j.constant - lengthA - j.ratio*lengthB
	linearError := math.Abs(c)

	ruA := rA.Cross(uA)
	ruB := rB.Cross(uB)
	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB
	sum := mA + j.ratio*j.ratio*mB
	mass := 0.0
	if sum > 0 {
		mass = 1 / sum
	}

	impulse := -mass * c
	pA := uA.Scale(-impulse)
	pB := uB.Scale(-j.ratio * impulse)

	cA = cA.Add(pA.Scale(j.invMassA))
	aA += j.invIA * rA.Cross(pA)
	cB = cB.Add(pB.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(pB)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return linearError < linearSlopDefault
}

func (j *PulleyJoint) ReactionForce(invDt float64) Vec2 { return j.uB.Scale(j.impulse * invDt) }
func (j *PulleyJoint) ReactionTorque(float64) float64   { return 0 }
func (j *PulleyJoint) ShiftOrigin(offset Vec2) {
	j.groundAnchorA = j.groundAnchorA.Sub(offset)
	j.groundAnchorB = j.groundAnchorB.Sub(offset)
}

// GearJointDef configures a GearJoint: it couples the motion of two
// existing revolute or prismatic joints by a fixed ratio, the way a gear
// train couples two shafts.
type GearJointDef struct {
	JointDef
	Joint1, Joint2 JointID
	Ratio          float64
}

type gearJointKind int

const (
	gearRevolute gearJointKind = iota
	gearPrismatic
)

// GearJoint couples the "coordinate" (angle for a revolute sub-joint,
// translation for a prismatic one) of two other joints by a fixed ratio.
// It reaches into the coupled joints' unexported fields directly, since
// both live in this package and expose no getters for anchors/axes on the
// uniform Joint interface — the same "downcast for kind-specific data"
// shape the interface's own doc comment describes.
type GearJoint struct {
	jointBase

	joint1, joint2 JointID
	ratio          float64

	typeA, typeB gearJointKind
	bodyC, bodyD BodyID

	localAnchorA, localAnchorB, localAnchorC, localAnchorD Vec2
	localAxisC, localAxisD                                 Vec2
	referenceAngleA, referenceAngleB                       float64

	constant     float64
	constantSet  bool
	impulse      float64

	indexA, indexB, indexC, indexD int
	lcA, lcB, lcC, lcD             Vec2
	mA, mB, mC, mD                 float64
	iA, iB, iC, iD                 float64

	jvAC, jvBD             Vec2
	jwA, jwB, jwC, jwD     float64
	mass                   float64
}

func newGearJoint(world *World, def GearJointDef) *GearJoint {
	j1 := *world.joints.Get(int(def.Joint1))
	j2 := *world.joints.Get(int(def.Joint2))

	g := &GearJoint{
		jointBase: newJointBase(GearJointType, def.JointDef, world),
		joint1:    def.Joint1,
		joint2:    def.Joint2,
		ratio:     def.Ratio,
	}

	switch jt := j1.(type) {
	case *RevoluteJoint:
		g.typeA = gearRevolute
		g.bodyC = jt.bodyA
		g.localAnchorC = jt.localAnchorA
		g.localAnchorA = jt.localAnchorB
		g.referenceAngleA = jt.referenceAngle
	case *PrismaticJoint:
		g.typeA = gearPrismatic
		g.bodyC = jt.bodyA
		g.localAnchorC = jt.localAnchorA
		g.localAnchorA = jt.localAnchorB
		g.localAxisC = jt.localAxisA
		g.referenceAngleA = jt.referenceAngle
	default:
		assertf(false, "gear joint: joint1 must be a revolute or prismatic joint")
	}

	switch jt := j2.(type) {
	case *RevoluteJoint:
		g.typeB = gearRevolute
		g.bodyD = jt.bodyA
		g.localAnchorD = jt.localAnchorA
		g.localAnchorB = jt.localAnchorB
		g.referenceAngleB = jt.referenceAngle
	case *PrismaticJoint:
		g.typeB = gearPrismatic
		g.bodyD = jt.bodyA
		g.localAnchorD = jt.localAnchorA
		g.localAnchorB = jt.localAnchorB
		g.localAxisD = jt.localAxisA
		g.referenceAngleB = jt.referenceAngle
	default:
		assertf(false, "gear joint: joint2 must be a revolute or prismatic joint")
	}

	return g
}

func (j *GearJoint) coordinateA(qA, qC Rot, cA, cC Vec2, aA, aC float64) float64 {
	if j.typeA == gearRevolute {
		return aA - aC - j.referenceAngleA
	}
	u := qC.MulVec2(j.localAxisC)
	rC := qC.MulVec2(j.localAnchorC.Sub(j.lcC))
	rA := qA.MulVec2(j.localAnchorA.Sub(j.lcA))
	return cA.Add(rA).Sub(cC).Sub(rC).Dot(u)
}

func (j *GearJoint) coordinateB(qB, qD Rot, cB, cD Vec2, aB, aD float64) float64 {
	if j.typeB == gearRevolute {
		return aB - aD - j.referenceAngleB
	}
	u := qD.MulVec2(j.localAxisD)
	rD := qD.MulVec2(j.localAnchorD.Sub(j.lcD))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.lcB))
	return cB.Add(rB).Sub(cD).Sub(rD).Dot(u)
}

func (j *GearJoint) computeJacobians(qA, qB, qC, qD Rot, cA, cB, cC, cD Vec2) {
	if j.typeA == gearRevolute {
		j.jvAC = Vec2Zero
		j.jwA, j.jwC = 1, 1
	} else {
		u := qC.MulVec2(j.localAxisC)
		rC := qC.MulVec2(j.localAnchorC.Sub(j.lcC))
		rA := qA.MulVec2(j.localAnchorA.Sub(j.lcA))
		j.jvAC = u
		j.jwC = rC.Cross(u)
		j.jwA = rA.Cross(u)
	}

	if j.typeB == gearRevolute {
		j.jvBD = Vec2Zero
		j.jwB, j.jwD = j.ratio, j.ratio
	} else {
		u := qD.MulVec2(j.localAxisD)
		rD := qD.MulVec2(j.localAnchorD.Sub(j.lcD))
		rB := qB.MulVec2(j.localAnchorB.Sub(j.lcB))
		j.jvBD = u.Scale(j.ratio)
		j.jwD = j.ratio * rD.Cross(u)
		j.jwB = j.ratio * rB.Cross(u)
	}
}

func (j *GearJoint) InitVelocityConstraints(data *solverData) {
	bA, bB := j.resolveBodies()
	bC := j.world.bodies.Get(int(j.bodyC))
	bD := j.world.bodies.Get(int(j.bodyD))

	j.indexA, j.indexB = bA.islandIndex, bB.islandIndex
	j.indexC, j.indexD = bC.islandIndex, bD.islandIndex
	j.lcA, j.lcB, j.lcC, j.lcD = bA.sweep.LocalCenter, bB.sweep.LocalCenter, bC.sweep.LocalCenter, bD.sweep.LocalCenter
	j.mA, j.mB, j.mC, j.mD = bA.invMass, bB.invMass, bC.invMass, bD.invMass
	j.iA, j.iB, j.iC, j.iD = bA.invI, bB.invI, bC.invI, bD.invI

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	cC, aC := data.positions[j.indexC].C, data.positions[j.indexC].A
	cD, aD := data.positions[j.indexD].C, data.positions[j.indexD].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	vC, wC := data.velocities[j.indexC].V, data.velocities[j.indexC].W
	vD, wD := data.velocities[j.indexD].V, data.velocities[j.indexD].W

	qA, qB, qC, qD := RotFromAngle(aA), RotFromAngle(aB), RotFromAngle(aC), RotFromAngle(aD)

	if !j.constantSet {
		j.constant = j.coordinateA(qA, qC, cA, cC, aA, aC) + j.ratio*j.coordinateB(qB, qD, cB, cD, aB, aD)
		j.constantSet = true
	}

	j.computeJacobians(qA, qB, qC, qD, cA, cB, cC, cD)

	mass := j.mA + j.mB + j.iA*j.jwA*j.jwA + j.iB*j.jwB*j.jwB
	mass += j.ratio * j.ratio * (j.mC + j.mD)
	mass += j.iC*j.jwC*j.jwC + j.iD*j.jwD*j.jwD
	if mass > 0 {
		j.mass = 1 / mass
	} else {
		j.mass = 0
	}

	if data.config.DoWarmStart {
		j.impulse *= data.config.DtRatio
		vA = vA.Add(j.jvAC.Scale(j.mA * j.impulse))
		wA += j.iA * j.impulse * j.jwA
		vB = vB.Add(j.jvBD.Scale(j.mB * j.impulse))
		wB += j.iB * j.impulse * j.jwB
		vC = vC.Sub(j.jvAC.Scale(j.mC * j.impulse))
		wC -= j.iC * j.impulse * j.jwC
		vD = vD.Sub(j.jvBD.Scale(j.mD * j.impulse))
		wD -= j.iD * j.impulse * j.jwD
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
	data.velocities[j.indexC] = Velocity{V: vC, W: wC}
	data.velocities[j.indexD] = Velocity{V: vD, W: wD}
}

func (j *GearJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	vC, wC := data.velocities[j.indexC].V, data.velocities[j.indexC].W
	vD, wD := data.velocities[j.indexD].V, data.velocities[j.indexD].W

	cdot := j.jvAC.Dot(vA.Sub(vC)) + j.jvBD.Dot(vB.Sub(vD)) + j.jwA*wA + j.jwB*wB - j.jwC*wC - j.jwD*wD
	impulse := -j.mass * cdot
	j.impulse += impulse

	vA = vA.Add(j.jvAC.Scale(j.mA * impulse))
	wA += j.iA * impulse * j.jwA
	vB = vB.Add(j.jvBD.Scale(j.mB * impulse))
	wB += j.iB * impulse * j.jwB
	vC = vC.Sub(j.jvAC.Scale(j.mC * impulse))
	wC -= j.iC * impulse * j.jwC
	vD = vD.Sub(j.jvBD.Scale(j.mD * impulse))
	wD -= j.iD * impulse * j.jwD

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
	data.velocities[j.indexC] = Velocity{V: vC, W: wC}
	data.velocities[j.indexD] = Velocity{V: vD, W: wD}

	return math.Abs(impulse) < data.config.RegMinMomentum
}

func (j *GearJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	cC, aC := data.positions[j.indexC].C, data.positions[j.indexC].A
	cD, aD := data.positions[j.indexD].C, data.positions[j.indexD].A

	qA, qB, qC, qD := RotFromAngle(aA), RotFromAngle(aB), RotFromAngle(aC), RotFromAngle(aD)

	j.computeJacobians(qA, qB, qC, qD, cA, cB, cC, cD)

	c := j.coordinateA(qA, qC, cA, cC, aA, aC) + j.ratio*j.coordinateB(qB, qD, cB, cD, aB, aD) - j.constant

	mass := j.mA + j.mB + j.iA*j.jwA*j.jwA + j.iB*j.jwB*j.jwB
	mass += j.ratio * j.ratio * (j.mC + j.mD)
	mass += j.iC*j.jwC*j.jwC + j.iD*j.jwD*j.jwD
	impulse := 0.0
	if mass > 0 {
		impulse = -c / mass
	}

	cA = cA.Add(j.jvAC.Scale(j.mA * impulse))
	aA += j.iA * impulse * j.jwA
	cB = cB.Add(j.jvBD.Scale(j.mB * impulse))
	aB += j.iB * impulse * j.jwB
	cC = cC.Sub(j.jvAC.Scale(j.mC * impulse))
	aC -= j.iC * impulse * j.jwC
	cD = cD.Sub(j.jvBD.Scale(j.mD * impulse))
	aD -= j.iD * impulse * j.jwD

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}
	data.positions[j.indexC] = Position{C: cC, A: aC}
	data.positions[j.indexD] = Position{C: cD, A: aD}

	return math.Abs(c) <= linearSlopDefault
}

func (j *GearJoint) ReactionForce(invDt float64) Vec2 { return j.jvAC.Scale(j.impulse * invDt) }
func (j *GearJoint) ReactionTorque(invDt float64) float64 {
	return invDt * j.impulse * j.jwA
}
func (j *GearJoint) ShiftOrigin(Vec2) {}
