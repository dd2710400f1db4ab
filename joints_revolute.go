package rigid2d

import "math"

// RevoluteJointDef configures a RevoluteJoint: a shared pin point plus an
// optional angular motor and an optional angular limit.
type RevoluteJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	ReferenceAngle             float64
	EnableLimit                bool
	LowerAngle, UpperAngle     float64
	EnableMotor                bool
	MotorSpeed                 float64
	MaxMotorTorque             float64
}

// RevoluteJoint pins two bodies together at a shared point and lets them
// rotate freely about it, subject to an optional motor and angle limit.
// The point constraint, motor and limit are solved as three independent
// impulses rather than the combined 3x3 solve of point-plus-limit: an
// idiomatic-Go simplification (each accumulated impulse simple to reason
// about on its own) at a small cost in convergence speed near the limit,
// following the same one-sided-complementarity pattern already used for
// RopeJoint's length limit.
type RevoluteJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	referenceAngle             float64
	enableLimit                bool
	lowerAngle, upperAngle     float64
	enableMotor                bool
	motorSpeed                 float64
	maxMotorTorque             float64

	impulse      Vec2
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64

	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	k                          Mat22
	axialMass                  float64
	angle                      float64
}

func newRevoluteJoint(world *World, def RevoluteJointDef) *RevoluteJoint {
	return &RevoluteJoint{
		jointBase:      newJointBase(RevoluteJointType, def.JointDef, world),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		enableLimit:    def.EnableLimit,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		enableMotor:    def.EnableMotor,
		motorSpeed:     def.MotorSpeed,
		maxMotorTorque: def.MaxMotorTorque,
	}
}

func (j *RevoluteJoint) fixedRotation() bool { return j.invIA+j.invIB == 0 }

func (j *RevoluteJoint) InitVelocityConstraints(data *solverData) {
	bA, bB := j.resolveBodies()
	j.indexA, j.indexB = bA.islandIndex, bB.islandIndex
	j.localCenterA, j.localCenterB = bA.sweep.LocalCenter, bB.sweep.LocalCenter
	j.invMassA, j.invMassB = bA.invMass, bB.invMass
	j.invIA, j.invIB = bA.invI, bB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	j.angle = aB - aA - j.referenceAngle

	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	k := iA + iB
	if k > 0 {
		j.axialMass = 1 / k
	} else {
		j.axialMass = 0
	}

	if !j.enableMotor || j.fixedRotation() {
		j.motorImpulse = 0
	}
	if !j.enableLimit || j.fixedRotation() {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	j.k.Ex.X = mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	j.k.Ex.Y = -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	j.k.Ey.X = j.k.Ex.Y
	j.k.Ey.Y = mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X

	if data.config.DoWarmStart {
		j.impulse = j.impulse.Scale(data.config.DtRatio)
		j.motorImpulse *= data.config.DtRatio
		j.lowerImpulse *= data.config.DtRatio
		j.upperImpulse *= data.config.DtRatio

		axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		vA = vA.Sub(j.impulse.Scale(mA))
		wA -= iA * (j.rA.Cross(j.impulse) + axialImpulse)
		vB = vB.Add(j.impulse.Scale(mB))
		wB += iB * (j.rB.Cross(j.impulse) + axialImpulse)
	} else {
		j.impulse = Vec2Zero
		j.motorImpulse, j.lowerImpulse, j.upperImpulse = 0, 0, 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RevoluteJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB
	fixed := j.fixedRotation()

	maxIncrement := 0.0

	if j.enableMotor && !fixed {
		cdot := wB - wA - j.motorSpeed
		impulse := -j.axialMass * cdot
		old := j.motorImpulse
		maxImpulse := data.config.Dt * j.maxMotorTorque
		j.motorImpulse = FloatClamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
		wA -= iA * impulse
		wB += iB * impulse
	}

	if j.enableLimit && !fixed {
		c := j.angle - j.lowerAngle
		cdot := wB - wA
		if c < 0 && data.config.Dt > 0 {
			cdot += c / data.config.Dt
		}
		impulse := -j.axialMass * cdot
		newImpulse := math.Max(j.lowerImpulse+impulse, 0)
		impulse = newImpulse - j.lowerImpulse
		j.lowerImpulse = newImpulse
		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
		wA -= iA * impulse
		wB += iB * impulse

		c = j.upperAngle - j.angle
		cdot = wA - wB
		if c < 0 && data.config.Dt > 0 {
			cdot += c / data.config.Dt
		}
		impulse = -j.axialMass * cdot
		newImpulse = math.Max(j.upperImpulse+impulse, 0)
		impulse = newImpulse - j.upperImpulse
		j.upperImpulse = newImpulse
		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
		wA += iA * impulse
		wB -= iB * impulse
	}

	cdot := vB.Add(CrossSV(wB, j.rB)).Sub(vA).Sub(CrossSV(wA, j.rA))
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)
	maxIncrement = math.Max(maxIncrement, impulse.Length())

	vA = vA.Sub(impulse.Scale(mA))
	wA -= iA * j.rA.Cross(impulse)
	vB = vB.Add(impulse.Scale(mB))
	wB += iB * j.rB.Cross(impulse)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return maxIncrement < data.config.RegMinMomentum
}

func (j *RevoluteJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	angularError := 0.0
	if j.enableLimit && !j.fixedRotation() {
		angle := aB - aA - j.referenceAngle
		if math.Abs(j.upperAngle-j.lowerAngle) < 2*angularSlopDefault {
			c := FloatClamp(angle-j.lowerAngle, -maxAngularCorrectionDefault, maxAngularCorrectionDefault)
			limitImpulse := -j.axialMass * c
			aA -= iA * limitImpulse
			aB += iB * limitImpulse
			angularError = math.Abs(c)
		} else if angle <= j.lowerAngle {
			c := FloatClamp(angle-j.lowerAngle+angularSlopDefault, -maxAngularCorrectionDefault, 0)
			limitImpulse := -j.axialMass * c
			aA -= iA * limitImpulse
			aB += iB * limitImpulse
			angularError = -c
		} else if angle >= j.upperAngle {
			c := FloatClamp(angle-j.upperAngle-angularSlopDefault, 0, maxAngularCorrectionDefault)
			limitImpulse := -j.axialMass * c
			aA -= iA * limitImpulse
			aB += iB * limitImpulse
			angularError = c
		}
	}

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	c := cB.Add(rB).Sub(cA).Sub(rA)
	positionError := c.Length()

	k := Mat22{
		Ex: V2(mA+mB+iA*rA.Y*rA.Y+iB*rB.Y*rB.Y, -iA*rA.X*rA.Y-iB*rB.X*rB.Y),
		Ey: V2(-iA*rA.X*rA.Y-iB*rB.X*rB.Y, mA+mB+iA*rA.X*rA.X+iB*rB.X*rB.X),
	}
	impulse := k.Solve(c).Neg()

	cA = cA.Sub(impulse.Scale(mA))
	aA -= iA * rA.Cross(impulse)
	cB = cB.Add(impulse.Scale(mB))
	aB += iB * rB.Cross(impulse)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return positionError <= linearSlopDefault && angularError <= angularSlopDefault
}

func (j *RevoluteJoint) ReactionForce(invDt float64) Vec2 { return j.impulse.Scale(invDt) }
func (j *RevoluteJoint) ReactionTorque(invDt float64) float64 {
	return invDt * (j.motorImpulse + j.lowerImpulse - j.upperImpulse)
}
func (j *RevoluteJoint) ShiftOrigin(Vec2) {}

// WeldJointDef configures a WeldJoint: a shared point plus a locked
// relative angle, optionally softened into a spring by a non-zero
// frequency (as with DistanceJoint).
type WeldJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	ReferenceAngle             float64
	FrequencyHz                float64
	DampingRatio               float64
}

// WeldJoint rigidly fuses two bodies at a point and angle, decomposed here
// into an independent point constraint and angular constraint (rather than
// the combined 3x3 solve), matching RevoluteJoint's simplification.
type WeldJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	referenceAngle             float64
	frequencyHz, dampingRatio  float64

	impulse        Vec2
	angularImpulse float64
	gamma, bias    float64

	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	k                          Mat22
	axialMass                  float64
}

func newWeldJoint(world *World, def WeldJointDef) *WeldJoint {
	return &WeldJoint{
		jointBase:      newJointBase(WeldJointType, def.JointDef, world),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

func (j *WeldJoint) InitVelocityConstraints(data *solverData) {
	bA, bB := j.resolveBodies()
	j.indexA, j.indexB = bA.islandIndex, bB.islandIndex
	j.localCenterA, j.localCenterB = bA.sweep.LocalCenter, bB.sweep.LocalCenter
	j.invMassA, j.invMassB = bA.invMass, bB.invMass
	j.invIA, j.invIB = bA.invI, bB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	invMassSum := iA + iB
	if invMassSum > 0 {
		j.axialMass = 1 / invMassSum
	}

	if j.frequencyHz > 0 {
		c := aB - aA - j.referenceAngle
		omega := 2 * math.Pi * j.frequencyHz
		d := 2 * j.axialMass * j.dampingRatio * omega
		k := j.axialMass * omega * omega
		h := data.config.Dt

		j.gamma = h * (d + h*k)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = c * h * k * j.gamma

		invM := invMassSum + j.gamma
		if invM != 0 {
			j.axialMass = 1 / invM
		} else {
			j.axialMass = 0
		}
	} else {
		j.gamma, j.bias = 0, 0
	}

	j.k.Ex.X = mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	j.k.Ex.Y = -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	j.k.Ey.X = j.k.Ex.Y
	j.k.Ey.Y = mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X

	if data.config.DoWarmStart {
		j.impulse = j.impulse.Scale(data.config.DtRatio)
		j.angularImpulse *= data.config.DtRatio

		vA = vA.Sub(j.impulse.Scale(mA))
		wA -= iA * (j.rA.Cross(j.impulse) + j.angularImpulse)
		vB = vB.Add(j.impulse.Scale(mB))
		wB += iB * (j.rB.Cross(j.impulse) + j.angularImpulse)
	} else {
		j.impulse = Vec2Zero
		j.angularImpulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *WeldJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	cdotAngular := wB - wA
	impulse := -j.axialMass * (cdotAngular + j.bias + j.gamma*j.angularImpulse)
	j.angularImpulse += impulse
	wA -= iA * impulse
	wB += iB * impulse

	cdot := vB.Add(CrossSV(wB, j.rB)).Sub(vA).Sub(CrossSV(wA, j.rA))
	pointImpulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(pointImpulse)

	vA = vA.Sub(pointImpulse.Scale(mA))
	wA -= iA * j.rA.Cross(pointImpulse)
	vB = vB.Add(pointImpulse.Scale(mB))
	wB += iB * j.rB.Cross(pointImpulse)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	maxIncrement := math.Max(math.Abs(impulse), pointImpulse.Length())
	return maxIncrement < data.config.RegMinMomentum
}

func (j *WeldJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	angularError := 0.0
	if j.frequencyHz == 0 {
		c := aB - aA - j.referenceAngle
		impulse := -j.axialMass * c
		aA -= iA * impulse
		aB += iB * impulse
		angularError = math.Abs(c)
	}

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	c := cB.Add(rB).Sub(cA).Sub(rA)
	positionError := c.Length()

	k := Mat22{
		Ex: V2(mA+mB+iA*rA.Y*rA.Y+iB*rB.Y*rB.Y, -iA*rA.X*rA.Y-iB*rB.X*rB.Y),
		Ey: V2(-iA*rA.X*rA.Y-iB*rB.X*rB.Y, mA+mB+iA*rA.X*rA.X+iB*rB.X*rB.X),
	}
	impulse := k.Solve(c).Neg()

	cA = cA.Sub(impulse.Scale(mA))
	aA -= iA * rA.Cross(impulse)
	cB = cB.Add(impulse.Scale(mB))
	aB += iB * rB.Cross(impulse)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return positionError <= linearSlopDefault && angularError <= angularSlopDefault
}

func (j *WeldJoint) ReactionForce(invDt float64) Vec2   { return j.impulse.Scale(invDt) }
func (j *WeldJoint) ReactionTorque(invDt float64) float64 { return invDt * j.angularImpulse }
func (j *WeldJoint) ShiftOrigin(Vec2)                    {}

// FrictionJointDef configures a FrictionJoint: velocity-only linear and
// angular drag, each capped by a maximum force/torque, with no positional
// constraint at all.
type FrictionJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	MaxForce                   float64
	MaxTorque                  float64
}

// FrictionJoint applies pure velocity damping between two bodies up to a
// force and torque cap; used to simulate surface friction or damped
// dragging without a hard positional link.
type FrictionJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	maxForce, maxTorque        float64

	linearImpulse  Vec2
	angularImpulse float64

	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	linearMass                 Mat22
	angularMass                float64
}

func newFrictionJoint(world *World, def FrictionJointDef) *FrictionJoint {
	return &FrictionJoint{
		jointBase:    newJointBase(FrictionJointType, def.JointDef, world),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxForce:     def.MaxForce,
		maxTorque:    def.MaxTorque,
	}
}

func (j *FrictionJoint) InitVelocityConstraints(data *solverData) {
	bA, bB := j.resolveBodies()
	j.indexA, j.indexB = bA.islandIndex, bB.islandIndex
	j.localCenterA, j.localCenterB = bA.sweep.LocalCenter, bB.sweep.LocalCenter
	j.invMassA, j.invMassB = bA.invMass, bB.invMass
	j.invIA, j.invIB = bA.invI, bB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

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

func (j *FrictionJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB
	h := data.config.Dt

	cdotAngular := wB - wA
	impulse := -j.angularMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := h * j.maxTorque
	j.angularImpulse = FloatClamp(old+impulse, -maxImpulse, maxImpulse)
	impulse = j.angularImpulse - old
	wA -= iA * impulse
	wB += iB * impulse

	cdot := vB.Add(CrossSV(wB, j.rB)).Sub(vA).Sub(CrossSV(wA, j.rA))
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

func (j *FrictionJoint) SolvePositionConstraints(*solverData) bool { return true }

func (j *FrictionJoint) ReactionForce(invDt float64) Vec2   { return j.linearImpulse.Scale(invDt) }
func (j *FrictionJoint) ReactionTorque(invDt float64) float64 { return invDt * j.angularImpulse }
func (j *FrictionJoint) ShiftOrigin(Vec2)                    {}
