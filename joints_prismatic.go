package rigid2d

import "math"

// PrismaticJointDef configures a PrismaticJoint: bodies slide along a
// shared axis with their relative angle locked, with an optional motor
// and translation limit along that axis.
type PrismaticJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB   Vec2
	LocalAxisA                   Vec2
	ReferenceAngle                float64
	EnableLimit                   bool
	LowerTranslation, UpperTranslation float64
	EnableMotor                   bool
	MaxMotorForce, MotorSpeed     float64
}

// PrismaticJoint constrains two bodies to slide relative to one another
// along a shared axis while their relative angle stays fixed. Like
// RevoluteJoint, the perpendicular+angular lock (solved jointly via a 2x2
// effective mass) is kept separate from the axial motor and limit
// (independent scalar impulses), following the same decomposition.
type PrismaticJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	localAxisA                 Vec2
	referenceAngle             float64
	enableLimit                bool
	lowerTranslation, upperTranslation float64
	enableMotor                bool
	maxMotorForce, motorSpeed  float64

	impulse      Vec2
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	axis, perp     Vec2
	s1, s2, a1, a2 float64
	k              Mat22
	axialMass      float64
	translation    float64
}

func newPrismaticJoint(world *World, def PrismaticJointDef) *PrismaticJoint {
	return &PrismaticJoint{
		jointBase:        newJointBase(PrismaticJointType, def.JointDef, world),
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		localAxisA:       def.LocalAxisA,
		referenceAngle:   def.ReferenceAngle,
		enableLimit:      def.EnableLimit,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		enableMotor:      def.EnableMotor,
		maxMotorForce:    def.MaxMotorForce,
		motorSpeed:       def.MotorSpeed,
	}
}

func (j *PrismaticJoint) InitVelocityConstraints(data *solverData) {
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
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	j.axis = qA.MulVec2(j.localAxisA)
	j.a1 = d.Add(rA).Cross(j.axis)
	j.a2 = rB.Cross(j.axis)

	j.perp = V2(-j.axis.Y, j.axis.X)
	j.s1 = d.Add(rA).Cross(j.perp)
	j.s2 = rB.Cross(j.perp)

	j.translation = d.Dot(j.axis)

	k11 := mA + mB + iA*j.s1*j.s1 + iB*j.s2*j.s2
	k12 := iA*j.s1 + iB*j.s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1
	}
	j.k = Mat22{Ex: V2(k11, k12), Ey: V2(k12, k22)}

	axialSum := mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	if axialSum > 0 {
		j.axialMass = 1 / axialSum
	} else {
		j.axialMass = 0
	}

	if !j.enableMotor {
		j.motorImpulse = 0
	}
	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	if data.config.DoWarmStart {
		j.impulse = j.impulse.Scale(data.config.DtRatio)
		j.motorImpulse *= data.config.DtRatio
		j.lowerImpulse *= data.config.DtRatio
		j.upperImpulse *= data.config.DtRatio

		axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		p := j.perp.Scale(j.impulse.X).Add(j.axis.Scale(axialImpulse))
		la := j.impulse.X*j.s1 + j.impulse.Y + axialImpulse*j.a1
		lb := j.impulse.X*j.s2 + j.impulse.Y + axialImpulse*j.a2

		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	} else {
		j.impulse = Vec2Zero
		j.motorImpulse, j.lowerImpulse, j.upperImpulse = 0, 0, 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PrismaticJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	maxIncrement := 0.0

	if j.enableMotor {
		cdot := j.axis.Dot(vB.Sub(vA)) + j.a2*wB - j.a1*wA
		impulse := j.axialMass * (j.motorSpeed - cdot)
		old := j.motorImpulse
		maxImpulse := data.config.Dt * j.maxMotorForce
		j.motorImpulse = FloatClamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old

		p := j.axis.Scale(impulse)
		la, lb := impulse*j.a1, impulse*j.a2
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb

		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
	}

	if j.enableLimit {
		c := j.translation - j.lowerTranslation
		cdot := j.axis.Dot(vB.Sub(vA)) + j.a2*wB - j.a1*wA
		if c < 0 && data.config.Dt > 0 {
			cdot += c / data.config.Dt
		}
		impulse := -j.axialMass * cdot
		newImpulse := math.Max(j.lowerImpulse+impulse, 0)
		impulse = newImpulse - j.lowerImpulse
		j.lowerImpulse = newImpulse

		p := j.axis.Scale(impulse)
		la, lb := impulse*j.a1, impulse*j.a2
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb

		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))

		c = j.upperTranslation - j.translation
		cdot = j.axis.Dot(vA.Sub(vB)) + j.a1*wA - j.a2*wB
		if c < 0 && data.config.Dt > 0 {
			cdot += c / data.config.Dt
		}
		impulse = -j.axialMass * cdot
		newImpulse = math.Max(j.upperImpulse+impulse, 0)
		impulse = newImpulse - j.upperImpulse
		j.upperImpulse = newImpulse

		p = j.axis.Scale(impulse)
		la, lb = impulse*j.a1, impulse*j.a2
		vA = vA.Add(p.Scale(mA))
		wA += iA * la
		vB = vB.Sub(p.Scale(mB))
		wB -= iB * lb

		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
	}

	cdotX := j.perp.Dot(vB.Sub(vA)) + j.s2*wB - j.s1*wA
	cdotY := wB - wA
	impulse2 := j.k.Solve(V2(cdotX, cdotY).Neg())
	j.impulse = j.impulse.Add(impulse2)

	p := j.perp.Scale(impulse2.X)
	la := impulse2.X*j.s1 + impulse2.Y
	lb := impulse2.X*j.s2 + impulse2.Y

	vA = vA.Sub(p.Scale(mA))
	wA -= iA * la
	vB = vB.Add(p.Scale(mB))
	wB += iB * lb

	maxIncrement = math.Max(maxIncrement, impulse2.Length())

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return maxIncrement < data.config.RegMinMomentum
}

func (j *PrismaticJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	axis := qA.MulVec2(j.localAxisA)
	a1 := d.Add(rA).Cross(axis)
	a2 := rB.Cross(axis)
	perp := V2(-axis.Y, axis.X)
	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)

	if j.enableLimit {
		translation := axis.Dot(d)
		var c2 float64
		active := false
		if math.Abs(j.upperTranslation-j.lowerTranslation) < 2*linearSlopDefault {
			c2 = FloatClamp(translation-j.lowerTranslation, -maxLinearCorrectionDefault, maxLinearCorrectionDefault)
			active = true
		} else if translation <= j.lowerTranslation {
			c2 = FloatClamp(translation-j.lowerTranslation+linearSlopDefault, -maxLinearCorrectionDefault, 0)
			active = true
		} else if translation >= j.upperTranslation {
			c2 = FloatClamp(translation-j.upperTranslation-linearSlopDefault, 0, maxLinearCorrectionDefault)
			active = true
		}
		if active {
			axialSum := mA + mB + iA*a1*a1 + iB*a2*a2
			axialMass := 0.0
			if axialSum > 0 {
				axialMass = 1 / axialSum
			}
			limitImpulse := -axialMass * c2
			cA = cA.Sub(axis.Scale(mA * limitImpulse))
			aA -= iA * limitImpulse * a1
			cB = cB.Add(axis.Scale(mB * limitImpulse))
			aB += iB * limitImpulse * a2

			qA, qB = RotFromAngle(aA), RotFromAngle(aB)
			rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
			rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
			d = cB.Add(rB).Sub(cA).Sub(rA)
			axis = qA.MulVec2(j.localAxisA)
			perp = V2(-axis.Y, axis.X)
			s1 = d.Add(rA).Cross(perp)
			s2 = rB.Cross(perp)
		}
	}

	c1x := perp.Dot(d)
	c1y := aB - aA - j.referenceAngle
	linearError := math.Abs(c1x)
	angularError := math.Abs(c1y)

	k11 := mA + mB + iA*s1*s1 + iB*s2*s2
	k12 := iA*s1 + iB*s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1
	}
	k := Mat22{Ex: V2(k11, k12), Ey: V2(k12, k22)}
	impulse2 := k.Solve(V2(c1x, c1y)).Neg()

	cA = cA.Sub(perp.Scale(mA * impulse2.X))
	aA -= iA * (impulse2.X*s1 + impulse2.Y)
	cB = cB.Add(perp.Scale(mB * impulse2.X))
	aB += iB * (impulse2.X*s2 + impulse2.Y)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return linearError <= linearSlopDefault && angularError <= angularSlopDefault
}

func (j *PrismaticJoint) ReactionForce(invDt float64) Vec2 {
	return j.perp.Scale(j.impulse.X).Add(j.axis.Scale(j.motorImpulse + j.lowerImpulse - j.upperImpulse)).Scale(invDt)
}
func (j *PrismaticJoint) ReactionTorque(invDt float64) float64 { return invDt * j.impulse.Y }
func (j *PrismaticJoint) ShiftOrigin(Vec2)                     {}

// WheelJointDef configures a WheelJoint: a perpendicular-translation lock
// (like a suspension strut) plus an axial spring/damper and an optional
// angular drive motor, without locking relative rotation.
type WheelJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	LocalAxisA                 Vec2
	EnableMotor                bool
	MaxMotorTorque, MotorSpeed float64
	FrequencyHz, DampingRatio  float64
}

// WheelJoint models a suspension strut: it locks translation perpendicular
// to an axis while leaving both translation along the axis (governed by a
// spring/damper) and rotation about the anchor (governed by an optional
// motor) free — the shape a driven, sprung wheel needs.
type WheelJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	localAxisA                 Vec2
	enableMotor                bool
	maxMotorTorque, motorSpeed float64
	frequencyHz, dampingRatio  float64

	impulse      float64
	springImpulse float64
	motorImpulse float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	axis, perp     Vec2
	s1, s2, a1, a2 float64
	mass           float64
	motorMass      float64
	springMass     float64
	bias, gamma    float64
}

func newWheelJoint(world *World, def WheelJointDef) *WheelJoint {
	return &WheelJoint{
		jointBase:      newJointBase(WheelJointType, def.JointDef, world),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		localAxisA:     def.LocalAxisA,
		enableMotor:    def.EnableMotor,
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

func (j *WheelJoint) InitVelocityConstraints(data *solverData) {
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
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	j.axis = qA.MulVec2(j.localAxisA)
	j.a1 = d.Add(rA).Cross(j.axis)
	j.a2 = rB.Cross(j.axis)

	axialSum := mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	j.springMass = 0
	if axialSum > 0 {
		j.springMass = 1 / axialSum
	}

	if j.frequencyHz > 0 {
		c := d.Dot(j.axis)
		omega := 2 * math.Pi * j.frequencyHz
		dd := 2 * j.springMass * j.dampingRatio * omega
		kk := j.springMass * omega * omega
		h := data.config.Dt

		j.gamma = h * (dd + h*kk)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = c * h * kk * j.gamma

		invM := axialSum + j.gamma
		if invM != 0 {
			j.springMass = 1 / invM
		} else {
			j.springMass = 0
		}
	} else {
		j.gamma, j.bias, j.springImpulse = 0, 0, 0
	}

	if !j.enableMotor {
		j.motorImpulse = 0
	}
	motorSum := iA + iB
	if motorSum > 0 {
		j.motorMass = 1 / motorSum
	} else {
		j.motorMass = 0
	}

	j.perp = V2(-j.axis.Y, j.axis.X)
	j.s1 = d.Add(rA).Cross(j.perp)
	j.s2 = rB.Cross(j.perp)

	perpSum := mA + mB + iA*j.s1*j.s1 + iB*j.s2*j.s2
	if perpSum > 0 {
		j.mass = 1 / perpSum
	} else {
		j.mass = 0
	}

	if data.config.DoWarmStart {
		j.impulse *= data.config.DtRatio
		j.springImpulse *= data.config.DtRatio
		j.motorImpulse *= data.config.DtRatio

		p := j.perp.Scale(j.impulse).Add(j.axis.Scale(j.springImpulse))
		la := j.impulse*j.s1 + j.springImpulse*j.a1 + j.motorImpulse
		lb := j.impulse*j.s2 + j.springImpulse*j.a2 + j.motorImpulse

		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	} else {
		j.impulse, j.springImpulse, j.motorImpulse = 0, 0, 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *WheelJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	maxIncrement := 0.0

	if j.frequencyHz > 0 {
		cdot := j.axis.Dot(vB.Sub(vA)) + j.a2*wB - j.a1*wA
		impulse := -j.springMass * (cdot + j.bias + j.gamma*j.springImpulse)
		j.springImpulse += impulse

		p := j.axis.Scale(impulse)
		la, lb := impulse*j.a1, impulse*j.a2
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb

		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
	}

	if j.enableMotor {
		cdot := wB - wA - j.motorSpeed
		impulse := -j.motorMass * cdot
		old := j.motorImpulse
		maxImpulse := data.config.Dt * j.maxMotorTorque
		j.motorImpulse = FloatClamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		wA -= iA * impulse
		wB += iB * impulse

		maxIncrement = math.Max(maxIncrement, math.Abs(impulse))
	}

	cdot := j.perp.Dot(vB.Sub(vA)) + j.s2*wB - j.s1*wA
	impulse := -j.mass * cdot
	j.impulse += impulse

	p := j.perp.Scale(impulse)
	la := impulse * j.s1
	lb := impulse * j.s2
	vA = vA.Sub(p.Scale(mA))
	wA -= iA * la
	vB = vB.Add(p.Scale(mB))
	wB += iB * lb

	maxIncrement = math.Max(maxIncrement, math.Abs(impulse))

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return maxIncrement < data.config.RegMinMomentum
}

func (j *WheelJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	mA, mB, iA, iB := j.invMassA, j.invMassB, j.invIA, j.invIB

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	axis := qA.MulVec2(j.localAxisA)
	perp := V2(-axis.Y, axis.X)
	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)

	c := perp.Dot(d)

	k := mA + mB + iA*s1*s1 + iB*s2*s2
	mass := 0.0
	if k > 0 {
		mass = 1 / k
	}
	impulse := -mass * c

	p := perp.Scale(impulse)
	cA = cA.Sub(p.Scale(mA))
	aA -= iA * impulse * s1
	cB = cB.Add(p.Scale(mB))
	aB += iB * impulse * s2

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return math.Abs(c) <= linearSlopDefault
}

func (j *WheelJoint) ReactionForce(invDt float64) Vec2 {
	return j.perp.Scale(j.impulse).Add(j.axis.Scale(j.springImpulse)).Scale(invDt)
}
func (j *WheelJoint) ReactionTorque(invDt float64) float64 { return invDt * j.motorImpulse }
func (j *WheelJoint) ShiftOrigin(Vec2)                     {}
