package rigid2d

// JointType tags which of the eleven supported joint kinds a Joint is,
// mainly for introspection and def-to-concrete-type dispatch; the solver
// itself only ever calls through the Joint interface.
type JointType int

const (
	UnknownJoint JointType = iota
	RevoluteJointType
	PrismaticJointType
	DistanceJointType
	PulleyJointType
	MouseJointType
	GearJointType
	WheelJointType
	WeldJointType
	FrictionJointType
	RopeJointType
	MotorJointType
)

// LimitState reports which side, if any, of a joint's translation or angle
// limit is currently active, used by limited joints (revolute, prismatic,
// rope) to decide whether the limit constraint should resist motion in one
// direction, both, or neither.
type LimitState int

const (
	InactiveLimit LimitState = iota
	AtLowerLimit
	AtUpperLimit
	EqualLimits
)

// solverData is the per-island working set every joint's constraint
// methods read and write: the step configuration and the position/velocity
// arrays an island copied out of its bodies before solving.
type solverData struct {
	config     StepConfig
	positions  []Position
	velocities []Velocity
}

// jointBase carries the fields common to every joint kind: identity, the
// two connected bodies (by id, resolved through world at solve time), the
// collide-connected flag, and island bookkeeping. Concrete joint types
// embed it and inherit its accessor methods.
type jointBase struct {
	id               JointID
	jointType        JointType
	bodyA, bodyB     BodyID
	collideConnected bool
	islandIndex      int
	userData         interface{}
	world            *World
}

func (jb *jointBase) ID() JointID                { return jb.id }
func (jb *jointBase) Type() JointType             { return jb.jointType }
func (jb *jointBase) BodyA() BodyID               { return jb.bodyA }
func (jb *jointBase) BodyB() BodyID               { return jb.bodyB }
func (jb *jointBase) IsCollideConnected() bool    { return jb.collideConnected }
func (jb *jointBase) UserData() interface{}       { return jb.userData }
func (jb *jointBase) base() jointBase             { return *jb }

// resolveBodies fetches the two connected bodies by id, the one place every
// joint's InitVelocityConstraints starts from.
func (jb *jointBase) resolveBodies() (*Body, *Body) {
	return jb.world.bodies.Get(int(jb.bodyA)), jb.world.bodies.Get(int(jb.bodyB))
}

// Joint is the uniform contract the solver, island and world drive every
// joint kind through: init/solve-velocity, solve-position, reaction
// queries, body connectivity, the collide-connected flag, and origin
// shifting. This is deliberately the entire cross-kind surface — per-kind
// behavior (limits, motors, springs, ratios) lives only on the concrete
// types and is reached by type-asserting a Joint back to its kind when a
// caller needs it (mirroring the teacher's own GetType()-then-downcast
// pattern for kind-specific accessors).
type Joint interface {
	ID() JointID
	Type() JointType
	base() jointBase
	BodyA() BodyID
	BodyB() BodyID
	IsCollideConnected() bool
	UserData() interface{}

	InitVelocityConstraints(data *solverData)
	SolveVelocityConstraints(data *solverData) bool
	SolvePositionConstraints(data *solverData) bool

	ReactionForce(invDt float64) Vec2
	ReactionTorque(invDt float64) float64

	ShiftOrigin(offset Vec2)
}

// JointDef is embedded by every concrete *JointDef type; BodyA/BodyB are
// resolved to ids at CreateJoint time, not stored as pointers.
type JointDef struct {
	BodyA, BodyB     BodyID
	CollideConnected bool
	UserData         interface{}
}

func newJointBase(jt JointType, def JointDef, world *World) jointBase {
	assertf(def.BodyA != def.BodyB, "joint: bodyA and bodyB must differ")
	return jointBase{
		jointType:        jt,
		bodyA:            def.BodyA,
		bodyB:            def.BodyB,
		collideConnected: def.CollideConnected,
		userData:         def.UserData,
		world:            world,
	}
}
