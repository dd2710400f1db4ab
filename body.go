package rigid2d

// BodyType is the body's motion category: static bodies never move,
// kinematic bodies move at a user-set velocity unaffected by forces, and
// dynamic bodies move under the solver's response to forces and impulses.
type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// bodyFlag bits mirror the teacher's body-flags bitset (island membership,
// awake, auto-sleep, bullet, fixed rotation, active, TOI-scheduled).
type bodyFlag uint32

const (
	flagIsland bodyFlag = 1 << iota
	flagAwake
	flagAutoSleep
	flagBullet
	flagFixedRotation
	flagActive
	flagTOI
)

// BodyDef holds all the data needed to construct a body. Safe to reuse
// across CreateBody calls.
type BodyDef struct {
	Type            BodyType
	Position        Vec2
	Angle           float64
	LinearVelocity  Vec2
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64
	AllowSleep      bool
	Awake           bool
	FixedRotation   bool
	Bullet          bool
	Active          bool
	GravityScale    float64
	UserData        interface{}
}

// DefaultBodyDef returns a BodyDef with the teacher's default field values.
func DefaultBodyDef() BodyDef {
	return BodyDef{
		Type:         StaticBody,
		AllowSleep:   true,
		Awake:        true,
		Active:       true,
		GravityScale: 1.0,
	}
}

// Body is a rigid body: a transform, a swept motion state for CCD, velocity
// and force accumulators, mass properties, and the sets of fixtures,
// joints and contacts attached to it — referenced by id rather than by
// pointer, per this package's entity-ownership model.
type Body struct {
	id BodyID

	bodyType BodyType
	flags    bodyFlag

	islandIndex int

	xf    Transform
	sweep Sweep

	linearVelocity  Vec2
	angularVelocity float64

	force  Vec2
	torque float64

	world *World

	fixtures []FixtureID
	joints   []JointID
	contacts []ContactID

	mass, invMass float64
	i, invI       float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64

	userData interface{}
}

func newBody(def BodyDef, world *World) *Body {
	assertf(def.Position.IsValid(), "body: invalid position")
	assertf(def.LinearVelocity.IsValid(), "body: invalid linear velocity")
	assertf(isValidFloat(def.Angle), "body: invalid angle")
	assertf(isValidFloat(def.AngularVelocity), "body: invalid angular velocity")
	assertf(isValidFloat(def.AngularDamping) && def.AngularDamping >= 0, "body: invalid angular damping")
	assertf(isValidFloat(def.LinearDamping) && def.LinearDamping >= 0, "body: invalid linear damping")

	b := &Body{world: world, bodyType: def.Type}

	if def.Bullet {
		b.flags |= flagBullet
	}
	if def.FixedRotation {
		b.flags |= flagFixedRotation
	}
	if def.AllowSleep {
		b.flags |= flagAutoSleep
	}
	if def.Awake {
		b.flags |= flagAwake
	}
	if def.Active {
		b.flags |= flagActive
	}

	b.xf = Transform{P: def.Position, Q: RotFromAngle(def.Angle)}
	b.sweep = Sweep{
		C0: def.Position, C: def.Position,
		A0: def.Angle, A: def.Angle,
	}

	b.linearVelocity = def.LinearVelocity
	b.angularVelocity = def.AngularVelocity
	b.linearDamping = def.LinearDamping
	b.angularDamping = def.AngularDamping
	b.gravityScale = def.GravityScale
	b.userData = def.UserData

	if b.bodyType == DynamicBody {
		b.mass, b.invMass = 1, 1
	}

	return b
}

func (b *Body) ID() BodyID             { return b.id }
func (b *Body) Type() BodyType         { return b.bodyType }
func (b *Body) Transform() Transform   { return b.xf }
func (b *Body) Position() Vec2         { return b.xf.P }
func (b *Body) Angle() float64         { return b.sweep.A }
func (b *Body) WorldCenter() Vec2      { return b.sweep.C }
func (b *Body) LocalCenter() Vec2      { return b.sweep.LocalCenter }
func (b *Body) Mass() float64          { return b.mass }
func (b *Body) UserData() interface{}  { return b.userData }
func (b *Body) Fixtures() []FixtureID  { return b.fixtures }
func (b *Body) Joints() []JointID      { return b.joints }
func (b *Body) Contacts() []ContactID  { return b.contacts }

// Inertia reports rotational inertia about the body origin (I plus the
// parallel-axis shift from the center of mass).
func (b *Body) Inertia() float64 {
	return b.i + b.mass*b.sweep.LocalCenter.Dot(b.sweep.LocalCenter)
}

func (b *Body) MassData() MassData {
	return MassData{Mass: b.mass, I: b.Inertia(), Center: b.sweep.LocalCenter}
}

func (b *Body) WorldPoint(local Vec2) Vec2   { return b.xf.MulVec2(local) }
func (b *Body) WorldVector(local Vec2) Vec2  { return b.xf.Q.MulVec2(local) }
func (b *Body) LocalPoint(world Vec2) Vec2   { return b.xf.MulTVec2(world) }
func (b *Body) LocalVector(world Vec2) Vec2  { return b.xf.Q.MulTVec2(world) }

func (b *Body) LinearVelocityAtWorldPoint(worldPoint Vec2) Vec2 {
	return b.linearVelocity.Add(CrossSV(b.angularVelocity, worldPoint.Sub(b.sweep.C)))
}

func (b *Body) LinearVelocity() Vec2   { return b.linearVelocity }
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

func (b *Body) SetLinearVelocity(v Vec2) {
	if b.bodyType == StaticBody {
		return
	}
	if v.Dot(v) > 0 {
		b.SetAwake(true)
	}
	b.linearVelocity = v
}

func (b *Body) SetAngularVelocity(w float64) {
	if b.bodyType == StaticBody {
		return
	}
	if w*w > 0 {
		b.SetAwake(true)
	}
	b.angularVelocity = w
}

func (b *Body) LinearDamping() float64  { return b.linearDamping }
func (b *Body) SetLinearDamping(d float64) { b.linearDamping = d }
func (b *Body) AngularDamping() float64 { return b.angularDamping }
func (b *Body) SetAngularDamping(d float64) { b.angularDamping = d }
func (b *Body) GravityScale() float64   { return b.gravityScale }
func (b *Body) SetGravityScale(s float64) { b.gravityScale = s }

func (b *Body) SetBullet(flag bool) { setFlag(&b.flags, flagBullet, flag) }
func (b *Body) IsBullet() bool      { return b.flags&flagBullet != 0 }

// SetAwake toggles the awake flag; putting a body to sleep zeros its
// velocity and force accumulators, matching the teacher's SetAwake(false).
func (b *Body) SetAwake(flag bool) {
	if flag {
		b.flags |= flagAwake
		b.sleepTime = 0
		return
	}
	b.flags &^= flagAwake
	b.sleepTime = 0
	b.linearVelocity = Vec2Zero
	b.angularVelocity = 0
	b.force = Vec2Zero
	b.torque = 0
}

func (b *Body) IsAwake() bool          { return b.flags&flagAwake != 0 }
func (b *Body) IsActive() bool         { return b.flags&flagActive != 0 }
func (b *Body) IsFixedRotation() bool  { return b.flags&flagFixedRotation != 0 }

func (b *Body) SetSleepingAllowed(flag bool) {
	if flag {
		b.flags |= flagAutoSleep
		return
	}
	b.flags &^= flagAutoSleep
	b.SetAwake(true)
}

func (b *Body) IsSleepingAllowed() bool { return b.flags&flagAutoSleep != 0 }

func setFlag(flags *bodyFlag, bit bodyFlag, on bool) {
	if on {
		*flags |= bit
	} else {
		*flags &^= bit
	}
}

// ApplyForce accumulates force and the torque it induces about the center
// of mass at point; ignored for non-dynamic bodies and while sleeping.
func (b *Body) ApplyForce(force, point Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.force = b.force.Add(force)
		b.torque += point.Sub(b.sweep.C).Cross(force)
	}
}

func (b *Body) ApplyForceToCenter(force Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.force = b.force.Add(force)
	}
}

func (b *Body) ApplyTorque(torque float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.torque += torque
	}
}

func (b *Body) ApplyLinearImpulse(impulse, point Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
		b.angularVelocity += b.invI * point.Sub(b.sweep.C).Cross(impulse)
	}
}

func (b *Body) ApplyLinearImpulseToCenter(impulse Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
	}
}

func (b *Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && b.flags&flagAwake == 0 {
		b.SetAwake(true)
	}
	if b.flags&flagAwake != 0 {
		b.angularVelocity += b.invI * impulse
	}
}

func (b *Body) synchronizeTransform() {
	b.xf.Q = RotFromAngle(b.sweep.A)
	b.xf.P = b.sweep.C.Sub(b.xf.Q.MulVec2(b.sweep.LocalCenter))
}

// advance slides the sweep back to alpha without touching the broad phase;
// callers resynchronize fixtures separately once every body in the
// TOI-affected island has been advanced.
func (b *Body) advance(alpha float64) {
	b.sweep.Advance(alpha)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}

// resetMassData recomputes mass, center of mass and rotational inertia from
// every attached fixture's density, or zeroes them out for a non-dynamic
// body.
func (b *Body) resetMassData() {
	b.mass, b.invMass, b.i, b.invI = 0, 0, 0, 0
	b.sweep.LocalCenter = Vec2Zero

	if b.bodyType != DynamicBody {
		b.sweep.C0 = b.xf.P
		b.sweep.C = b.xf.P
		return
	}

	localCenter := Vec2Zero
	for _, fid := range b.fixtures {
		f := b.world.fixtures.Get(int(fid))
		if f.density == 0 {
			continue
		}
		md := f.MassData()
		b.mass += md.Mass
		localCenter = localCenter.Add(md.Center.Scale(md.Mass))
		b.i += md.I
	}

	if b.mass > 0 {
		b.invMass = 1 / b.mass
		localCenter = localCenter.Scale(b.invMass)
	} else {
		b.mass, b.invMass = 1, 1
	}

	if b.i > 0 && b.flags&flagFixedRotation == 0 {
		b.i -= b.mass * localCenter.Dot(localCenter)
		assertf(b.i > 0, "body: non-positive rotational inertia after parallel-axis shift")
		b.invI = 1 / b.i
	} else {
		b.i, b.invI = 0, 0
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	b.sweep.C0 = b.xf.MulVec2(localCenter)
	b.sweep.C = b.xf.MulVec2(localCenter)
	b.linearVelocity = b.linearVelocity.Add(CrossSV(b.angularVelocity, b.sweep.C.Sub(oldCenter)))
}

// SetMassData overrides the computed mass properties directly, matching
// the teacher's SetMassData escape hatch for custom mass distributions.
func (b *Body) SetMassData(md MassData) error {
	if b.world.IsLocked() {
		return wrongStateErrorf("body: SetMassData")
	}
	if b.bodyType != DynamicBody {
		return nil
	}

	b.invMass, b.i, b.invI = 0, 0, 0
	b.mass = md.Mass
	if b.mass <= 0 {
		b.mass = 1
	}
	b.invMass = 1 / b.mass

	if md.I > 0 && b.flags&flagFixedRotation == 0 {
		b.i = md.I - b.mass*md.Center.Dot(md.Center)
		assertf(b.i > 0, "body: SetMassData given non-positive rotational inertia")
		b.invI = 1 / b.i
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = md.Center
	b.sweep.C0 = b.xf.MulVec2(md.Center)
	b.sweep.C = b.xf.MulVec2(md.Center)
	b.linearVelocity = b.linearVelocity.Add(CrossSV(b.angularVelocity, b.sweep.C.Sub(oldCenter)))
	return nil
}

// shouldCollide reports whether contacts should be generated between b and
// other: at least one must be dynamic, and no joint connecting them may
// have disabled collision.
func (b *Body) shouldCollide(other *Body) bool {
	if b.bodyType != DynamicBody && other.bodyType != DynamicBody {
		return false
	}
	for _, jid := range b.joints {
		j := *b.world.joints.Get(int(jid))
		base := j.base()
		if base.bodyA == other.id || base.bodyB == other.id {
			if !j.IsCollideConnected() {
				return false
			}
		}
	}
	return true
}

// SetTransform teleports the body to position/angle, bypassing the solver,
// and immediately resynchronizes its fixtures' broad-phase proxies.
func (b *Body) SetTransform(position Vec2, angle float64) error {
	if b.world.IsLocked() {
		return wrongStateErrorf("body: SetTransform")
	}

	b.xf = Transform{P: position, Q: RotFromAngle(angle)}
	b.sweep.C = b.xf.MulVec2(b.sweep.LocalCenter)
	b.sweep.A = angle
	b.sweep.C0 = b.sweep.C
	b.sweep.A0 = angle

	for _, fid := range b.fixtures {
		f := b.world.fixtures.Get(int(fid))
		f.synchronize(b.world.broadPhase, b.xf, b.xf)
	}
	return nil
}

// synchronizeFixtures updates every fixture's fattened proxy AABB to bound
// the body's motion since the last step, from the sweep's Alpha0 pose to
// its current pose.
func (b *Body) synchronizeFixtures() {
	xf1 := Transform{Q: RotFromAngle(b.sweep.A0)}
	xf1.P = b.sweep.C0.Sub(xf1.Q.MulVec2(b.sweep.LocalCenter))

	for _, fid := range b.fixtures {
		f := b.world.fixtures.Get(int(fid))
		f.synchronize(b.world.broadPhase, xf1, b.xf)
	}
}

// SetActive removes or restores the body's broad-phase proxies and drops
// its contacts when deactivated; a deactivated body plays no further part
// in stepping until reactivated.
func (b *Body) SetActive(flag bool) error {
	if b.world.IsLocked() {
		return wrongStateErrorf("body: SetActive")
	}
	if flag == b.IsActive() {
		return nil
	}

	if flag {
		b.flags |= flagActive
		for _, fid := range b.fixtures {
			f := b.world.fixtures.Get(int(fid))
			f.createProxies(b.world.broadPhase, b.xf)
		}
		return nil
	}

	b.flags &^= flagActive
	for _, fid := range b.fixtures {
		f := b.world.fixtures.Get(int(fid))
		f.destroyProxies(b.world.broadPhase)
	}
	for _, cid := range append([]ContactID(nil), b.contacts...) {
		b.world.contactManager.destroy(cid)
	}
	b.contacts = nil
	return nil
}

// SetType changes the body's dynamics category, matching the teacher's
// SetType: mass data is recomputed for the new type, the body is forced
// awake, every contact it was party to is torn down (ShouldCollide may
// answer differently now), and its fixtures' broad-phase proxies are
// touched so new contacts can form against its new type.
func (b *Body) SetType(t BodyType) error {
	if b.world.IsLocked() {
		return wrongStateErrorf("body: SetType")
	}
	if t == b.bodyType {
		return nil
	}

	b.bodyType = t
	b.resetMassData()

	if b.bodyType == StaticBody {
		b.linearVelocity = Vec2Zero
		b.angularVelocity = 0
		b.sweep.A0 = b.sweep.A
		b.sweep.C0 = b.sweep.C
		b.synchronizeFixtures()
	}

	b.SetAwake(true)
	b.force = Vec2Zero
	b.torque = 0

	for _, cid := range append([]ContactID(nil), b.contacts...) {
		b.world.contactManager.destroy(cid)
	}
	b.contacts = nil

	for _, fid := range b.fixtures {
		f := b.world.fixtures.Get(int(fid))
		for _, p := range f.proxies {
			b.world.broadPhase.TouchProxy(p.proxyID)
		}
	}
	return nil
}

func (b *Body) SetFixedRotation(flag bool) {
	if flag == (b.flags&flagFixedRotation != 0) {
		return
	}
	setFlag(&b.flags, flagFixedRotation, flag)
	b.angularVelocity = 0
	b.resetMassData()
}

