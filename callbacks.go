package rigid2d

// DestructionListener hears about fixtures and joints implicitly destroyed
// as a side effect of destroying their body.
type DestructionListener interface {
	SayGoodbyeToFixture(fixtureID FixtureID)
	SayGoodbyeToJoint(jointID JointID)
}

// ContactFilter decides whether two fixtures should ever generate a
// contact. DefaultContactFilter reproduces the standard group/category/mask
// precedence rules also used internally for broad-phase pair filtering.
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB *Fixture) bool
}

type defaultContactFilter struct{}

func (defaultContactFilter) ShouldCollide(fixtureA, fixtureB *Fixture) bool {
	return shouldCollideFilters(fixtureA.filter, fixtureB.filter)
}

// ContactImpulse reports the per-point normal/tangent impulses a solved
// contact applied, for PostSolve inspection; kept separate from Manifold
// since TOI sub-step impulses can be arbitrarily large relative to the
// manifold's own bookkeeping.
type ContactImpulse struct {
	NormalImpulses  [maxManifoldPoints]float64
	TangentImpulses [maxManifoldPoints]float64
	Count           int
}

// ContactListener hears begin/end-touching transitions and brackets the
// solver: PreSolve fires before constraints are built (with the previous
// frame's manifold, so a listener can detect what changed and optionally
// disable the contact), PostSolve fires after with actual applied
// impulses.
type ContactListener interface {
	BeginContact(c *Contact)
	EndContact(c *Contact)
	PreSolve(c *Contact, oldManifold Manifold)
	PostSolve(c *Contact, impulse *ContactImpulse)
}

// NopContactListener implements ContactListener with no-ops, for callers
// that only care about a subset of the hooks (embed and override).
type NopContactListener struct{}

func (NopContactListener) BeginContact(*Contact)                {}
func (NopContactListener) EndContact(*Contact)                  {}
func (NopContactListener) PreSolve(*Contact, Manifold)          {}
func (NopContactListener) PostSolve(*Contact, *ContactImpulse)  {}

// QueryCallback is called for each fixture whose fat AABB overlaps a
// World.Query region; returning false stops the query early.
type QueryCallback func(fixtureID FixtureID) bool

// RayCastCallback is called for each fixture a World.RayCast hits, in no
// particular order across fixtures but always at the closest point for a
// given fixture. The return value controls how the cast proceeds:
// negative to ignore this fixture and continue at the original fraction,
// zero to terminate the cast, a fraction in (0,1] to clip the ray to that
// point, or 1 to record the hit without clipping.
type RayCastCallback func(fixtureID FixtureID, point, normal Vec2, fraction float64) float64
