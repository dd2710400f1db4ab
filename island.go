package rigid2d

import "math"

// island is a maximal connected component of the contact/joint graph over
// awake, non-static bodies: the unit the velocity and position solvers
// actually iterate over. Static bodies never link two islands together
// (they don't propagate motion), which is why body/contact/joint
// traversal in world.go stops at them.
type island struct {
	world *World

	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	positions  []Position
	velocities []Velocity

	listener ContactListener
}

func newIsland(world *World, listener ContactListener) *island {
	return &island{world: world, listener: listener}
}

func (isl *island) clear() {
	isl.bodies = isl.bodies[:0]
	isl.contacts = isl.contacts[:0]
	isl.joints = isl.joints[:0]
}

func (isl *island) addBody(b *Body) {
	b.islandIndex = len(isl.bodies)
	isl.bodies = append(isl.bodies, b)
}

func (isl *island) addContact(c *Contact) { isl.contacts = append(isl.contacts, c) }
func (isl *island) addJoint(j Joint)      { isl.joints = append(isl.joints, j) }

// solve runs one full velocity+position pass over the island: integrate
// forces, warm-start and iterate the contact and joint constraints, move
// bodies, then correct positional drift, following the teacher's
// Island::Solve stage order exactly. It returns how many velocity
// iterations actually ran and the largest incremental impulse applied
// across them, for the caller's step statistics.
func (isl *island) solve(config StepConfig, gravity Vec2, allowSleep bool) (velocityIterations int, maxIncrement float64) {
	n := len(isl.bodies)
	isl.positions = make([]Position, n)
	isl.velocities = make([]Velocity, n)

	for i, b := range isl.bodies {
		c := b.sweep.C
		a := b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity

		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A

		if b.bodyType == DynamicBody {
			v = v.Add(gravity.Scale(b.gravityScale).Add(b.force.Scale(b.invMass)).Scale(config.Dt))
			w += config.Dt * b.invI * b.torque

			v = v.Scale(1 / (1 + config.Dt*b.linearDamping))
			w *= 1 / (1 + config.Dt*b.angularDamping)
		}

		isl.positions[i] = Position{C: c, A: a}
		isl.velocities[i] = Velocity{V: v, W: w}
	}

	data := &solverData{config: config, positions: isl.positions, velocities: isl.velocities}

	fixtureA := make([]*Fixture, len(isl.contacts))
	fixtureB := make([]*Fixture, len(isl.contacts))
	bodyA := make([]*Body, len(isl.contacts))
	bodyB := make([]*Body, len(isl.contacts))
	for i, c := range isl.contacts {
		fixtureA[i] = isl.world.fixtures.Get(int(c.FixtureA()))
		fixtureB[i] = isl.world.fixtures.Get(int(c.FixtureB()))
		bodyA[i] = isl.world.bodies.Get(int(fixtureA[i].BodyID()))
		bodyB[i] = isl.world.bodies.Get(int(fixtureB[i].BodyID()))
	}

	cs := newContactSolver(config, isl.contacts, fixtureA, fixtureB, bodyA, bodyB, isl.positions, isl.velocities)
	cs.initializeVelocityConstraints()

	if config.DoWarmStart {
		cs.warmStart()
	}

	for _, j := range isl.joints {
		j.InitVelocityConstraints(data)
	}

	for i := 0; i < config.RegVelocityIterations; i++ {
		jointsOkay := true
		for _, j := range isl.joints {
			if !j.SolveVelocityConstraints(data) {
				jointsOkay = false
			}
		}
		increment := cs.solveVelocityConstraints()
		velocityIterations++
		maxIncrement = math.Max(maxIncrement, increment)

		if increment < config.RegMinMomentum && jointsOkay {
			break
		}
	}

	cs.storeImpulses()

	for i, b := range isl.bodies {
		c := isl.positions[i].C
		a := isl.positions[i].A
		v := isl.velocities[i].V
		w := isl.velocities[i].W

		translation := v.Scale(config.Dt)
		if translation.Dot(translation) > config.MaxTranslation*config.MaxTranslation {
			ratio := config.MaxTranslation / translation.Length()
			v = v.Scale(ratio)
		}

		rotation := config.Dt * w
		if rotation*rotation > config.MaxRotation*config.MaxRotation {
			ratio := config.MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		c = c.Add(v.Scale(config.Dt))
		a += config.Dt * w

		isl.positions[i] = Position{C: c, A: a}
		isl.velocities[i] = Velocity{V: v, W: w}

		b.linearVelocity = v
		b.angularVelocity = w
	}

	converged := false
	for i := 0; i < config.RegPositionIterations; i++ {
		contactsOkay := cs.solvePositionConstraints()

		jointsOkay := true
		for _, j := range isl.joints {
			if !j.SolvePositionConstraints(data) {
				jointsOkay = false
			}
		}

		if contactsOkay && jointsOkay {
			converged = true
			break
		}
	}

	for i, b := range isl.bodies {
		b.sweep.C = isl.positions[i].C
		b.sweep.A = isl.positions[i].A
		b.linearVelocity = isl.velocities[i].V
		b.angularVelocity = isl.velocities[i].W
		b.synchronizeTransform()
	}

	isl.report(cs)

	if !allowSleep {
		return velocityIterations, maxIncrement
	}

	minSleepTime := math.MaxFloat64
	linTolSqr := config.LinearSleepTolerance * config.LinearSleepTolerance
	angTolSqr := config.AngularSleepTolerance * config.AngularSleepTolerance

	for _, b := range isl.bodies {
		if b.bodyType == StaticBody {
			continue
		}
		if !b.IsSleepingAllowed() ||
			b.angularVelocity*b.angularVelocity > angTolSqr ||
			b.linearVelocity.Dot(b.linearVelocity) > linTolSqr {
			b.sleepTime = 0
			minSleepTime = 0
		} else {
			b.sleepTime += config.Dt
			minSleepTime = math.Min(minSleepTime, b.sleepTime)
		}
	}

	if minSleepTime >= config.MinStillTime && converged {
		for _, b := range isl.bodies {
			b.SetAwake(false)
		}
	}

	return velocityIterations, maxIncrement
}

// report hands each solved contact's per-point impulses to the contact
// listener, once per Solve call, after the velocity iterations that
// produced them and before the island's bodies (and thus its contacts)
// might be discarded for the next island.
func (isl *island) report(cs *contactSolver) {
	if isl.listener == nil {
		return
	}
	for i, c := range isl.contacts {
		vc := &cs.velocityConstraints[i]
		var impulse ContactImpulse
		impulse.Count = vc.pointCount
		for p := 0; p < vc.pointCount; p++ {
			impulse.NormalImpulses[p] = vc.points[p].NormalImpulse
			impulse.TangentImpulses[p] = vc.points[p].TangentImpulse
		}
		isl.listener.PostSolve(c, &impulse)
	}
}

// solveTOI advances exactly the two bodies of a single time-of-impact
// event (plus whatever else the caller has already added to the island):
// a TOI position pass that moves only those two bodies, then contact
// velocity iterations and integration of every island body over subDt.
// Joints are not solved. Used by the continuous-collision phase to resolve
// one bullet-through-thin-wall event at a time rather than the whole world.
func (isl *island) solveTOI(config StepConfig, subDt float64, toiIndexA, toiIndexB int) {
	n := len(isl.bodies)
	isl.positions = make([]Position, n)
	isl.velocities = make([]Velocity, n)

	for i, b := range isl.bodies {
		isl.positions[i] = Position{C: b.sweep.C, A: b.sweep.A}
		isl.velocities[i] = Velocity{V: b.linearVelocity, W: b.angularVelocity}
	}

	fixtureA := make([]*Fixture, len(isl.contacts))
	fixtureB := make([]*Fixture, len(isl.contacts))
	bodyA := make([]*Body, len(isl.contacts))
	bodyB := make([]*Body, len(isl.contacts))
	for i, c := range isl.contacts {
		fixtureA[i] = isl.world.fixtures.Get(int(c.FixtureA()))
		fixtureB[i] = isl.world.fixtures.Get(int(c.FixtureB()))
		bodyA[i] = isl.world.bodies.Get(int(fixtureA[i].BodyID()))
		bodyB[i] = isl.world.bodies.Get(int(fixtureB[i].BodyID()))
	}

	cs := newContactSolver(config, isl.contacts, fixtureA, fixtureB, bodyA, bodyB, isl.positions, isl.velocities)

	for i := 0; i < config.TOIPositionIterations; i++ {
		if cs.solveTOIPositionConstraints(toiIndexA, toiIndexB) {
			break
		}
	}

	isl.bodies[toiIndexA].sweep.C0 = isl.positions[toiIndexA].C
	isl.bodies[toiIndexA].sweep.A0 = isl.positions[toiIndexA].A
	isl.bodies[toiIndexB].sweep.C0 = isl.positions[toiIndexB].C
	isl.bodies[toiIndexB].sweep.A0 = isl.positions[toiIndexB].A

	cs.initializeVelocityConstraints()

	for i := 0; i < config.TOIVelocityIterations; i++ {
		if cs.solveVelocityConstraints() < config.TOIMinMomentum {
			break
		}
	}

	for i, b := range isl.bodies {
		c := isl.positions[i].C
		a := isl.positions[i].A
		v := isl.velocities[i].V
		w := isl.velocities[i].W

		c = c.Add(v.Scale(subDt))
		a += subDt * w

		b.sweep.C = c
		b.sweep.A = a
		b.linearVelocity = v
		b.angularVelocity = w
		b.synchronizeTransform()
	}

	isl.report(cs)
}
