package rigid2d

import "math"

// MotorJointDef configures a MotorJoint: it drives bodyB's origin and
// angle toward a fixed offset from bodyA, servo-style, capped by a maximum
// force and torque.
type MotorJointDef struct {
	JointDef
	LinearOffset     Vec2
	AngularOffset    float64
	MaxForce         float64
	MaxTorque        float64
	CorrectionFactor float64
}

// MotorJoint drives the relative position and angle between two bodies
// toward a fixed target offset, entirely at the velocity level (no
// position-constraint pass) with the error correction folded into the
// velocity bias by CorrectionFactor — the servo pattern real Box2D uses to
// let a script move a body without teleporting it.
type MotorJoint struct {
	jointBase

	linearOffset     Vec2
	angularOffset    float64
	maxForce         float64
	maxTorque        float64
	correctionFactor float64

	linearImpulse  Vec2
	angularImpulse float64

	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	linearMass                 Mat22
	angularMass                float64
	linearError                Vec2
	angularError               float64
}

func newMotorJoint(world *World, def MotorJointDef) *MotorJoint {
	cf := def.CorrectionFactor
	if cf == 0 {
		cf = 0.3
	}
	return &MotorJoint{
		jointBase:        newJointBase(MotorJointType, def.JointDef, world),
		linearOffset:     def.LinearOffset,
		angularOffset:    def.AngularOffset,
		maxForce:         def.MaxForce,
		maxTorque:        def.MaxTorque,
		correctionFactor: cf,
	}
}

func (j *MotorJoint) InitVelocityConstraints(data *solverData) {
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
	j.rA = qA.MulVec2(j.localCenterA.Neg())
	j.rB = qB.MulVec2(j.localCenterB.Neg())

	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	k := Mat22{
		Ex: V2(mA+mB+iA*j.rA.Y*j.rA.Y+iB*j.rB.Y*j.rB.Y, -iA*j.rA.X*j.rA.Y-iB*j.rB.X*j.rB.Y),
		Ey: V2(-iA*j.rA.X*j.rA.Y-iB*j.rB.X*j.rB.Y, mA+mB+iA*j.rA.X*j.rA.X+iB*j.rB.X*j.rB.X),
	}
	j.linearMass = k.Inverse()

	angularSum := iA + iB
	if angularSum > 0 {
		j.angularMass = 1 / angularSum
	}

	j.linearError = cB.Add(j.rB).Sub(cA).Sub(j.rA).Sub(qA.MulVec2(j.linearOffset))
	j.angularError = aB - aA - j.angularOffset

	if data.config.DoWarmStart {
		j.linearImpulse = j.linearImpulse.Scale(data.config.DtRatio)
		j.angularImpulse *= data.config.DtRatio

		p := j.linearImpulse
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * (j.rA.Cross(p) + j.angularImpulse)
		vB = vB.Add(p.Scale(mB))
		wB += iB * (j.rB.Cross(p) + j.angularImpulse)
	} else {
		j.linearImpulse = Vec2Zero
		j.angularImpulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MotorJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	h := data.config.Dt
	invH := 0.0
	if h > 0 {
		invH = 1 / h
	}

	cdotAngular := wB - wA + invH*j.correctionFactor*j.angularError
	impulse := -j.angularMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := h * j.maxTorque
	j.angularImpulse = FloatClamp(old+impulse, -maxImpulse, maxImpulse)
	impulse = j.angularImpulse - old
	wA -= iA * impulse
	wB += iB * impulse

	cdot := vB.Add(CrossSV(wB, j.rB)).Sub(vA).Sub(CrossSV(wA, j.rA)).Add(j.linearError.Scale(invH * j.correctionFactor))
	p := j.linearMass.MulVec2(cdot).Neg()
	oldP := j.linearImpulse
	j.linearImpulse = j.linearImpulse.Add(p)

	maxImpulseV := h * j.maxForce
	if j.linearImpulse.LengthSquared() > maxImpulseV*maxImpulseV {
		_, n := j.linearImpulse.Normalize()
		j.linearImpulse = n.Scale(maxImpulseV)
	}
	p = j.linearImpulse.Sub(oldP)

	vA = vA.Sub(p.Scale(mA))
	wA -= iA * j.rA.Cross(p)
	vB = vB.Add(p.Scale(mB))
	wB += iB * j.rB.Cross(p)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	maxIncrement := math.Max(math.Abs(impulse), p.Length())
	return maxIncrement < data.config.RegMinMomentum
}

func (j *MotorJoint) SolvePositionConstraints(*solverData) bool { return true }

func (j *MotorJoint) ReactionForce(invDt float64) Vec2     { return j.linearImpulse.Scale(invDt) }
func (j *MotorJoint) ReactionTorque(invDt float64) float64 { return invDt * j.angularImpulse }
func (j *MotorJoint) ShiftOrigin(Vec2)                     {}

// MouseJointDef configures a MouseJoint (aka target joint): a soft point
// constraint that drags bodyB's anchor toward a mutable world-space
// target point. BodyA is present only to satisfy the two-body Joint
// contract and conventionally names a static anchor body, matching real
// Box2D's mouse-joint usage where bodyA is the world/ground body.
type MouseJointDef struct {
	JointDef
	Target       Vec2
	MaxForce     float64
	FrequencyHz  float64
	DampingRatio float64
}

// MouseJoint pulls a single point on bodyB toward a target point that
// callers move every frame (SetTarget), the classic drag-with-the-mouse
// constraint: a soft spring toward a moving target rather than a rigid
// link, so grabbing a body never introduces an instantaneous velocity
// spike.
type MouseJoint struct {
	jointBase

	localAnchorB Vec2
	target       Vec2
	maxForce     float64
	frequencyHz  float64
	dampingRatio float64

	beta, gamma float64
	impulse     Vec2
	c           Vec2

	indexB       int
	rB           Vec2
	localCenterB Vec2
	invMassB     float64
	invIB        float64
	mass         Mat22
}

func newMouseJoint(world *World, def MouseJointDef) *MouseJoint {
	bB := world.bodies.Get(int(def.BodyB))
	localAnchorB := bB.Transform().MulTVec2(def.Target)
	return &MouseJoint{
		jointBase:    newJointBase(MouseJointType, def.JointDef, world),
		localAnchorB: localAnchorB,
		target:       def.Target,
		maxForce:     def.MaxForce,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

// SetTarget moves the point the joint drags bodyB's anchor toward.
func (j *MouseJoint) SetTarget(target Vec2) { j.target = target }

// Target reports the point the joint is currently dragging bodyB toward.
func (j *MouseJoint) Target() Vec2 { return j.target }

func (j *MouseJoint) InitVelocityConstraints(data *solverData) {
	_, bB := j.resolveBodies()
	j.indexB = bB.islandIndex
	j.localCenterB = bB.sweep.LocalCenter
	j.invMassB = bB.invMass
	j.invIB = bB.invI

	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qB := RotFromAngle(aB)

	mass := j.invMassB
	omega := 2 * math.Pi * j.frequencyHz
	d := 2 * mass * j.dampingRatio * omega
	k := mass * omega * omega
	h := data.config.Dt

	j.gamma = h * (d + h*k)
	if j.gamma != 0 {
		j.gamma = 1 / j.gamma
	}
	j.beta = h * k * j.gamma

	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	kMat := Mat22{
		Ex: V2(j.invMassB+j.invIB*j.rB.Y*j.rB.Y+j.gamma, -j.invIB*j.rB.X*j.rB.Y),
		Ey: V2(-j.invIB*j.rB.X*j.rB.Y, j.invMassB+j.invIB*j.rB.X*j.rB.X+j.gamma),
	}
	j.mass = kMat.Inverse()

	j.c = cB.Add(j.rB).Sub(j.target).Scale(j.beta)

	wB *= 0.98

	if data.config.DoWarmStart {
		j.impulse = j.impulse.Scale(data.config.DtRatio)
		vB = vB.Add(j.impulse.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(j.impulse)
	} else {
		j.impulse = Vec2Zero
	}

	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MouseJoint) SolveVelocityConstraints(data *solverData) bool {
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	cdot := vB.Add(CrossSV(wB, j.rB))
	impulse := j.mass.MulVec2(cdot.Add(j.c).Add(j.impulse.Scale(j.gamma))).Neg()

	old := j.impulse
	j.impulse = j.impulse.Add(impulse)
	maxImpulse := data.config.Dt * j.maxForce
	if j.impulse.LengthSquared() > maxImpulse*maxImpulse {
		_, n := j.impulse.Normalize()
		j.impulse = n.Scale(maxImpulse)
	}
	impulse = j.impulse.Sub(old)

	vB = vB.Add(impulse.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(impulse)

	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return impulse.Length() < data.config.RegMinMomentum
}

func (j *MouseJoint) SolvePositionConstraints(*solverData) bool { return true }

func (j *MouseJoint) ReactionForce(invDt float64) Vec2     { return j.impulse.Scale(invDt) }
func (j *MouseJoint) ReactionTorque(float64) float64       { return 0 }
func (j *MouseJoint) ShiftOrigin(offset Vec2)               { j.target = j.target.Sub(offset) }
