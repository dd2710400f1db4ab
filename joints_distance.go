package rigid2d

import "math"

// DistanceJointDef configures a DistanceJoint: two body-local anchors and a
// rest length, optionally softened into a spring by a non-zero frequency.
type DistanceJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	Length                     float64
	FrequencyHz                float64
	DampingRatio               float64
}

// DistanceJoint holds two anchor points at a fixed distance apart, softened
// into a mass-spring-damper when FrequencyHz is non-zero (Box2D's soft
// constraint formulation: an implicit spring folded into the same impulse
// solve rather than run as a separate force).
type DistanceJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	length                     float64
	frequencyHz                float64
	dampingRatio               float64

	impulse float64
	gamma   float64
	bias    float64

	indexA, indexB             int
	u                          Vec2
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       float64
}

func newDistanceJoint(world *World, def DistanceJointDef) *DistanceJoint {
	return &DistanceJoint{
		jointBase:     newJointBase(DistanceJointType, def.JointDef, world),
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		length:        def.Length,
		frequencyHz:   def.FrequencyHz,
		dampingRatio:  def.DampingRatio,
	}
}

func (j *DistanceJoint) InitVelocityConstraints(data *solverData) {
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
	j.u = cB.Add(j.rB).Sub(cA).Sub(j.rA)

	length := j.u.Length()
	if length > linearSlopDefault {
		j.u = j.u.Scale(1 / length)
	} else {
		j.u = Vec2Zero
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB
	if invMass != 0 {
		j.mass = 1 / invMass
	}

	if j.frequencyHz > 0 {
		c := length - j.length
		omega := 2 * math.Pi * j.frequencyHz
		d := 2 * j.mass * j.dampingRatio * omega
		k := j.mass * omega * omega
		h := data.config.Dt

		j.gamma = h * (d + h*k)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = c * h * k * j.gamma

		invM := invMass + j.gamma
		if invM != 0 {
			j.mass = 1 / invM
		} else {
			j.mass = 0
		}
	} else {
		j.gamma, j.bias = 0, 0
	}

	if data.config.DoWarmStart {
		j.impulse *= data.config.DtRatio
		p := j.u.Scale(j.impulse)
		vA = vA.Sub(p.Scale(j.invMassA))
		wA -= j.invIA * j.rA.Cross(p)
		vB = vB.Add(p.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(p)
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *DistanceJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossSV(wA, j.rA))
	vpB := vB.Add(CrossSV(wB, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	p := j.u.Scale(impulse)
	vA = vA.Sub(p.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(p)
	vB = vB.Add(p.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(p)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return math.Abs(impulse) < data.config.RegMinMomentum
}

func (j *DistanceJoint) SolvePositionConstraints(data *solverData) bool {
	if j.frequencyHz > 0 {
		// A soft constraint has no position drift to correct.
		return true
	}

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	u := cB.Add(rB).Sub(cA).Sub(rA)

	length, u := u.Normalize()
	c := FloatClamp(length-j.length, -maxLinearCorrectionDefault, maxLinearCorrectionDefault)

	impulse := -j.mass * c
	p := u.Scale(impulse)

	cA = cA.Sub(p.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(p)
	cB = cB.Add(p.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(p)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return math.Abs(c) < linearSlopDefault
}

func (j *DistanceJoint) ReactionForce(invDt float64) Vec2 { return j.u.Scale(invDt * j.impulse) }
func (j *DistanceJoint) ReactionTorque(float64) float64   { return 0 }
func (j *DistanceJoint) ShiftOrigin(Vec2)                 {}

// RopeJointDef configures a RopeJoint: two body-local anchors and a maximum
// separation the joint never lets them exceed. Unlike DistanceJoint it has
// no minimum — it only ever pulls, never pushes.
type RopeJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	MaxLength                  float64
}

// RopeJoint enforces C = |pB - pA| - MaxLength <= 0 with a one-sided
// (never-positive) accumulated impulse: it behaves exactly like a taut
// rope, applying no force at all until stretched to its limit.
type RopeJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	maxLength                  float64
	length                     float64
	impulse                    float64

	indexA, indexB             int
	u, rA, rB                  Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       float64
	state                      LimitState
}

func newRopeJoint(world *World, def RopeJointDef) *RopeJoint {
	return &RopeJoint{
		jointBase:    newJointBase(RopeJointType, def.JointDef, world),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
		state:        InactiveLimit,
	}
}

func (j *RopeJoint) InitVelocityConstraints(data *solverData) {
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
	j.u = cB.Add(j.rB).Sub(cA).Sub(j.rA)

	j.length = j.u.Length()

	c := j.length - j.maxLength
	if c > 0 {
		j.state = AtUpperLimit
	} else {
		j.state = InactiveLimit
	}

	if j.length > linearSlopDefault {
		j.u = j.u.Scale(1 / j.length)
	} else {
		j.u = Vec2Zero
		j.mass = 0
		j.impulse = 0
		return
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB
	if invMass != 0 {
		j.mass = 1 / invMass
	}

	if data.config.DoWarmStart {
		j.impulse *= data.config.DtRatio
		p := j.u.Scale(j.impulse)
		vA = vA.Sub(p.Scale(j.invMassA))
		wA -= j.invIA * j.rA.Cross(p)
		vB = vB.Add(p.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(p)
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RopeJoint) SolveVelocityConstraints(data *solverData) bool {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossSV(wA, j.rA))
	vpB := vB.Add(CrossSV(wB, j.rB))
	c := j.length - j.maxLength
	cdot := j.u.Dot(vpB.Sub(vpA))

	if c < 0 && data.config.Dt > 0 {
		cdot += c / data.config.Dt
	}

	impulse := -j.mass * cdot
	oldImpulse := j.impulse
	j.impulse = math.Min(0, j.impulse+impulse)
	impulse = j.impulse - oldImpulse

	p := j.u.Scale(impulse)
	vA = vA.Sub(p.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(p)
	vB = vB.Add(p.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(p)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}

	return math.Abs(impulse) < data.config.RegMinMomentum
}

func (j *RopeJoint) SolvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := RotFromAngle(aA), RotFromAngle(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	u := cB.Add(rB).Sub(cA).Sub(rA)

	length, u := u.Normalize()
	c := FloatClamp(length-j.maxLength, 0, maxLinearCorrectionDefault)

	impulse := -j.mass * c
	p := u.Scale(impulse)

	cA = cA.Sub(p.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(p)
	cB = cB.Add(p.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(p)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return length-j.maxLength < linearSlopDefault
}

func (j *RopeJoint) ReactionForce(invDt float64) Vec2 { return j.u.Scale(invDt * j.impulse) }
func (j *RopeJoint) ReactionTorque(float64) float64   { return 0 }
func (j *RopeJoint) ShiftOrigin(Vec2)                 {}
