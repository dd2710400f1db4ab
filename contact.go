package rigid2d

import "math"

// MixFriction blends two fixtures' friction coefficients geometrically, so
// either fixture can drive the contact's friction toward zero (ice slides
// no matter what it's touching).
func MixFriction(a, b float64) float64 { return math.Sqrt(a * b) }

// MixRestitution takes the larger of two fixtures' restitution values, so a
// superball bounces off anything.
func MixRestitution(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

type contactFlag uint32

const (
	contactFlagTouching contactFlag = 1 << iota
	contactFlagEnabled
	contactFlagFilter
	// contactFlagImpenetrable marks a contact created between a bullet and
	// anything, or between a dynamic body and a static or kinematic one, as
	// eligible for the TOI phase rather than tunneling through in one
	// regular step.
	contactFlagImpenetrable
	contactFlagTOI
	contactFlagIsland
)

// Contact tracks one candidate collision between two fixtures' child
// shapes: the current manifold, touching/enabled state, and the mixed
// material properties the solver reads from. Unlike the teacher's
// per-shape-pair Contact subtypes (each overriding Evaluate), a single
// concrete type suffices here because Collide already dispatches on shape
// type for every pair.
type Contact struct {
	id ContactID

	fixtureA, fixtureB           FixtureID
	childIndexA, childIndexB     int

	flags contactFlag

	manifold Manifold

	toiCount int
	toi      float64

	friction     float64
	restitution  float64
	tangentSpeed float64
}

func newContact(fixtureA *Fixture, indexA int, fixtureB *Fixture, indexB int) *Contact {
	return &Contact{
		fixtureA:    fixtureA.id,
		fixtureB:    fixtureB.id,
		childIndexA: indexA,
		childIndexB: indexB,
		flags:       contactFlagEnabled,
		friction:    MixFriction(fixtureA.friction, fixtureB.friction),
		restitution: MixRestitution(fixtureA.restitution, fixtureB.restitution),
	}
}

func (c *Contact) ID() ContactID             { return c.id }
func (c *Contact) FixtureA() FixtureID       { return c.fixtureA }
func (c *Contact) FixtureB() FixtureID       { return c.fixtureB }
func (c *Contact) ChildIndexA() int          { return c.childIndexA }
func (c *Contact) ChildIndexB() int          { return c.childIndexB }
func (c *Contact) Manifold() Manifold        { return c.manifold }
func (c *Contact) IsTouching() bool          { return c.flags&contactFlagTouching != 0 }
func (c *Contact) IsEnabled() bool           { return c.flags&contactFlagEnabled != 0 }
func (c *Contact) IsImpenetrable() bool      { return c.flags&contactFlagImpenetrable != 0 }
func (c *Contact) TOI() (float64, bool)      { return c.toi, c.flags&contactFlagTOI != 0 }
func (c *Contact) Friction() float64         { return c.friction }
func (c *Contact) Restitution() float64      { return c.restitution }
func (c *Contact) TangentSpeed() float64     { return c.tangentSpeed }
func (c *Contact) SetTangentSpeed(v float64) { c.tangentSpeed = v }
func (c *Contact) SetFriction(v float64)     { c.friction = v }
func (c *Contact) SetRestitution(v float64)  { c.restitution = v }

func (c *Contact) SetEnabled(flag bool) {
	if flag {
		c.flags |= contactFlagEnabled
	} else {
		c.flags &^= contactFlagEnabled
	}
}

func (c *Contact) ResetFriction(fixtureA, fixtureB *Fixture) {
	c.friction = MixFriction(fixtureA.friction, fixtureB.friction)
}

func (c *Contact) ResetRestitution(fixtureA, fixtureB *Fixture) {
	c.restitution = MixRestitution(fixtureA.restitution, fixtureB.restitution)
}

func (c *Contact) flagForFiltering() { c.flags |= contactFlagFilter }

// update re-evaluates a contact's manifold and touching flag for the
// current body transforms, matching cached impulses forward by feature id
// so the solver can warm-start, then calls the listener's begin/end/
// pre-solve hooks around the transition. Mirrors B2ContactUpdate.
func (c *Contact) update(fixtureA, fixtureB *Fixture, bodyA, bodyB *Body, listener ContactListener) {
	oldManifold := c.manifold

	c.flags |= contactFlagEnabled

	wasTouching := c.flags&contactFlagTouching != 0
	sensor := fixtureA.isSensor || fixtureB.isSensor

	xfA, xfB := bodyA.xf, bodyB.xf

	var touching bool
	if sensor {
		m := Collide(fixtureA.shape, xfA, fixtureB.shape, xfB)
		touching = len(m.Points) > 0
		c.manifold = Manifold{}
	} else {
		c.manifold = Collide(fixtureA.shape, xfA, fixtureB.shape, xfB)
		touching = len(c.manifold.Points) > 0

		for i := range c.manifold.Points {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0
			mp2.TangentImpulse = 0
			for _, mp1 := range oldManifold.Points {
				if mp1.ID == mp2.ID {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.SetAwake(true)
			bodyB.SetAwake(true)
		}
	}

	if touching {
		c.flags |= contactFlagTouching
	} else {
		c.flags &^= contactFlagTouching
	}

	if listener == nil {
		return
	}
	if !wasTouching && touching {
		listener.BeginContact(c)
	}
	if wasTouching && !touching {
		listener.EndContact(c)
	}
	if !sensor && touching {
		listener.PreSolve(c, oldManifold)
	}
}
