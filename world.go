package rigid2d

import "math"

// World owns every body, fixture, joint and contact and drives them forward
// through Step. It is the sole mutator of that state: mutating operations
// reject with a wrong-state error while a Step call holds the lock.
type World struct {
	bodies   *slotAllocator[Body]
	fixtures *slotAllocator[Fixture]
	joints   *slotAllocator[Joint]

	broadPhase     *BroadPhase
	contacts       *slotAllocator[Contact]
	contactManager *contactManager

	gravity Vec2
	locked  bool

	destructionListener DestructionListener
}

// NewWorld constructs an empty world with the given gravity vector. The
// broad phase and contact set live inside a contactManager but are also
// aliased directly onto World, since body.go and fixture.go reach for
// world.broadPhase/world.contacts without going through the manager —
// mirroring how the teacher's own B2World embeds its contact manager's
// members inline rather than behind an accessor.
func NewWorld(gravity Vec2) *World {
	w := &World{
		bodies:   newSlotAllocator[Body](),
		fixtures: newSlotAllocator[Fixture](),
		joints:   newSlotAllocator[Joint](),
		gravity:  gravity,
	}
	w.contactManager = newContactManager(w)
	w.broadPhase = w.contactManager.broadPhase
	w.contacts = w.contactManager.contacts
	return w
}

func (w *World) IsLocked() bool     { return w.locked }
func (w *World) Gravity() Vec2      { return w.gravity }
func (w *World) SetGravity(g Vec2)  { w.gravity = g }

func (w *World) SetDestructionListener(l DestructionListener) { w.destructionListener = l }
func (w *World) SetContactFilter(f ContactFilter)              { w.contactManager.filter = f }
func (w *World) SetContactListener(l ContactListener)          { w.contactManager.listener = l }

func (w *World) BodyCount() int    { return w.bodies.Len() }
func (w *World) FixtureCount() int { return w.fixtures.Len() }
func (w *World) JointCount() int   { return w.joints.Len() }
func (w *World) ContactCount() int { return w.contacts.Len() }

// Body resolves a live body id to its data. Calling this with a freed id is
// a programmer error, same as every other slot-allocator lookup.
func (w *World) Body(id BodyID) *Body { return w.bodies.Get(int(id)) }

// Fixture resolves a live fixture id to its data.
func (w *World) Fixture(id FixtureID) *Fixture { return w.fixtures.Get(int(id)) }

// Joint resolves a live joint id to its data.
func (w *World) Joint(id JointID) Joint { return *w.joints.Get(int(id)) }

// Contact resolves a live contact id to its data.
func (w *World) Contact(id ContactID) *Contact { return w.contacts.Get(int(id)) }

// EachBody calls fn once per live body, in ascending id order.
func (w *World) EachBody(fn func(id BodyID, b *Body)) {
	w.bodies.Each(func(idx int, b *Body) { fn(BodyID(idx), b) })
}

// CreateBody allocates a new body from def and returns its id.
func (w *World) CreateBody(def BodyDef) (BodyID, error) {
	if w.IsLocked() {
		return 0, wrongStateErrorf("world: CreateBody")
	}
	b := newBody(def, w)
	id := BodyID(w.bodies.Alloc(*b))
	w.bodies.Get(int(id)).id = id
	return id, nil
}

// DestroyBody frees a body and, as a side effect, every fixture, joint and
// contact still attached to it — firing DestructionListener hooks for the
// fixtures and joints, since those are destroyed implicitly rather than by
// direct user request.
func (w *World) DestroyBody(id BodyID) error {
	if w.IsLocked() {
		return wrongStateErrorf("world: DestroyBody")
	}
	b := w.bodies.Get(int(id))

	for _, cid := range append([]ContactID(nil), b.contacts...) {
		w.contactManager.destroy(cid)
	}

	for _, jid := range append([]JointID(nil), b.joints...) {
		j := *w.joints.Get(int(jid))
		base := j.base()
		otherID := base.bodyA
		if otherID == id {
			otherID = base.bodyB
		}
		other := w.bodies.Get(int(otherID))
		other.joints = removeJointID(other.joints, jid)
		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeToJoint(jid)
		}
		w.joints.Free(int(jid))
	}

	for _, fid := range append([]FixtureID(nil), b.fixtures...) {
		f := w.fixtures.Get(int(fid))
		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeToFixture(fid)
		}
		if b.IsActive() {
			f.destroyProxies(w.broadPhase)
		}
		w.fixtures.Free(int(fid))
	}

	w.bodies.Free(int(id))
	return nil
}

func removeJointID(list []JointID, id JointID) []JointID {
	for i, jid := range list {
		if jid == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeFixtureID(list []FixtureID, id FixtureID) []FixtureID {
	for i, fid := range list {
		if fid == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// CreateFixture attaches a new fixture to bodyID and returns its id,
// creating broad-phase proxies immediately if the body is active and
// recomputing the body's mass if the fixture carries density.
func (w *World) CreateFixture(bodyID BodyID, def FixtureDef) (FixtureID, error) {
	if w.IsLocked() {
		return 0, wrongStateErrorf("world: CreateFixture")
	}
	assertf(def.Shape != nil, "world: CreateFixture requires a shape")

	b := w.bodies.Get(int(bodyID))
	f := newFixture(bodyID, w, def)
	id := FixtureID(w.fixtures.Alloc(*f))
	nf := w.fixtures.Get(int(id))
	nf.id = id

	b.fixtures = append(b.fixtures, id)

	if b.IsActive() {
		nf.createProxies(w.broadPhase, b.xf)
	}
	if def.Density > 0 {
		b.resetMassData()
	}
	return id, nil
}

// DestroyFixture detaches and frees a fixture, destroying any contact that
// referenced it and recomputing the owning body's mass.
func (w *World) DestroyFixture(id FixtureID) error {
	if w.IsLocked() {
		return wrongStateErrorf("world: DestroyFixture")
	}
	f := w.fixtures.Get(int(id))
	b := w.bodies.Get(int(f.bodyID))

	b.fixtures = removeFixtureID(b.fixtures, id)

	for _, cid := range append([]ContactID(nil), b.contacts...) {
		c := w.contacts.Get(int(cid))
		if c.fixtureA == id || c.fixtureB == id {
			w.contactManager.destroy(cid)
		}
	}

	if b.IsActive() {
		f.destroyProxies(w.broadPhase)
	}
	w.fixtures.Free(int(id))
	b.resetMassData()
	return nil
}

// flagContactsForFiltering marks every existing contact between bodyA and
// bodyB for a fresh ShouldCollide check on the next collide() pass, used
// when a joint's collide-connected relationship between them changes.
func (w *World) flagContactsForFiltering(bodyA, bodyB BodyID) {
	a := w.bodies.Get(int(bodyA))
	for _, cid := range a.contacts {
		c := w.contacts.Get(int(cid))
		fa := w.fixtures.Get(int(c.fixtureA))
		fb := w.fixtures.Get(int(c.fixtureB))
		if (fa.bodyID == bodyA && fb.bodyID == bodyB) || (fa.bodyID == bodyB && fb.bodyID == bodyA) {
			c.flagForFiltering()
		}
	}
}

// CreateJoint builds one of the eleven concrete joint kinds from def and
// returns its id. def must be one of the exported *JointDef struct types
// (passed by value); any other type is a programmer error reported as an
// invalid-argument error.
func (w *World) CreateJoint(def interface{}) (JointID, error) {
	if w.IsLocked() {
		return 0, wrongStateErrorf("world: CreateJoint")
	}

	var (
		id    JointID
		bodyA BodyID
		bodyB BodyID
		cc    bool
	)

	switch d := def.(type) {
	case DistanceJointDef:
		j := newDistanceJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case RopeJointDef:
		j := newRopeJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case RevoluteJointDef:
		j := newRevoluteJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case WeldJointDef:
		j := newWeldJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case FrictionJointDef:
		j := newFrictionJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case PrismaticJointDef:
		j := newPrismaticJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case WheelJointDef:
		j := newWheelJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case PulleyJointDef:
		j := newPulleyJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case GearJointDef:
		j := newGearJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case MotorJointDef:
		j := newMotorJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	case MouseJointDef:
		j := newMouseJoint(w, d)
		id = JointID(w.joints.Alloc(Joint(j)))
		j.id = id
		bodyA, bodyB, cc = d.BodyA, d.BodyB, d.CollideConnected
	default:
		return 0, invalidArgumentErrorf("world: CreateJoint: unsupported joint def type %T", def)
	}

	bA := w.bodies.Get(int(bodyA))
	bB := w.bodies.Get(int(bodyB))
	bA.joints = append(bA.joints, id)
	bB.joints = append(bB.joints, id)

	if !cc {
		w.flagContactsForFiltering(bodyA, bodyB)
	}
	return id, nil
}

// DestroyJoint frees a joint, detaching it from both bodies and, if it had
// disabled collision between them, flagging any contact between the pair
// for re-filtering so collision can resume.
func (w *World) DestroyJoint(id JointID) error {
	if w.IsLocked() {
		return wrongStateErrorf("world: DestroyJoint")
	}
	j := *w.joints.Get(int(id))
	base := j.base()

	bA := w.bodies.Get(int(base.bodyA))
	bB := w.bodies.Get(int(base.bodyB))
	bA.joints = removeJointID(bA.joints, id)
	bB.joints = removeJointID(bB.joints, id)

	if !base.collideConnected {
		w.flagContactsForFiltering(base.bodyA, base.bodyB)
	}

	w.joints.Free(int(id))
	return nil
}

// ShiftOrigin translates every body, joint and the broad-phase tree by
// -newOrigin, for callers periodically re-centering a world that has
// drifted far from the coordinate origin to preserve float precision.
func (w *World) ShiftOrigin(newOrigin Vec2) error {
	if w.IsLocked() {
		return wrongStateErrorf("world: ShiftOrigin")
	}

	w.bodies.Each(func(_ int, b *Body) {
		b.xf.P = b.xf.P.Sub(newOrigin)
		b.sweep.C0 = b.sweep.C0.Sub(newOrigin)
		b.sweep.C = b.sweep.C.Sub(newOrigin)
	})

	w.joints.Each(func(_ int, j *Joint) { (*j).ShiftOrigin(newOrigin) })

	w.broadPhase.ShiftOrigin(newOrigin)
	return nil
}

// QueryAABB invokes callback once per fixture whose fattened broad-phase
// proxy overlaps aabb, stopping early if callback returns false.
func (w *World) QueryAABB(callback QueryCallback, aabb AABB) {
	w.broadPhase.Query(func(proxyID int) bool {
		key := w.broadPhase.GetUserData(proxyID).(fixtureProxyKey)
		return callback(key.FixtureID)
	}, aabb)
}

// RayCast invokes callback once per fixture whose broad-phase proxy the
// segment [p1, p2] intersects. Hit precision is at the fattened-AABB level
// rather than the exact shape boundary: Shape carries no per-shape RayCast
// method (only ComputeAABB), and adding one has no grounding in the
// teacher or the rest of the pack, so this reports the AABB slab
// intersection point/normal/fraction instead of an exact shape hit.
func (w *World) RayCast(callback RayCastCallback, p1, p2 Vec2) {
	input := RayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	w.broadPhase.RayCast(func(rin RayCastInput, proxyID int) float64 {
		key := w.broadPhase.GetUserData(proxyID).(fixtureProxyKey)
		fatAABB := w.broadPhase.GetFatAABB(proxyID)
		out, hit := fatAABB.RayCast(rin)
		if !hit {
			return -1
		}
		point := p1.Add(p2.Sub(p1).Scale(out.Fraction))
		return callback(key.FixtureID, point, out.Normal, out.Fraction)
	}, input)
}

// Step advances the world by config.Dt, following the ordered phases:
// proxy maintenance, contact destruction/creation/update, the regular
// solve, and (if enabled) the continuous-collision solve. Proxy creation/
// destruction and per-mutation proxy synchronization (phases 1-2) happen
// eagerly inside CreateFixture/SetActive/SetTransform rather than being
// batched here, since those calls are already rejected while the world is
// locked — there is nothing left pending at Step entry to flush.
func (w *World) Step(config StepConfig) StepStats {
	var stats StepStats

	w.locked = true
	defer func() { w.locked = false }()

	beforeContacts := w.contacts.Len()
	w.contactManager.findNewContacts()
	stats.ContactsAdded = w.contacts.Len() - beforeContacts

	beforeDestroy := w.contacts.Len()
	w.contactManager.collide(&stats)
	stats.ContactsDestroyed = beforeDestroy - w.contacts.Len()
	stats.ContactsUpdated = stats.TouchingUpdated + stats.TouchingSkipped

	w.solveIslands(config, &stats)

	w.solveTOI(config, &stats)

	stats.MaxTOIIters = config.MaxTOIIters
	stats.MaxRootIters = config.MaxRootIters
	return stats
}

// solveIslands is the regular-solve phase (§4.14): partition awake,
// enabled, non-static bodies into connected islands over touching contacts
// and joints, solve each independently, then resynchronize the fixture
// proxies of every body an island actually moved.
func (w *World) solveIslands(config StepConfig, stats *StepStats) {
	w.bodies.Each(func(_ int, b *Body) { b.flags &^= flagIsland })

	listener := w.contactManager.listener
	var stack []*Body

	w.bodies.Each(func(_ int, seed *Body) {
		if seed.flags&flagIsland != 0 {
			return
		}
		if !seed.IsAwake() || !seed.IsActive() || seed.bodyType == StaticBody {
			return
		}

		isl := newIsland(w, listener)
		stack = stack[:0]
		seed.flags |= flagIsland
		stack = append(stack, seed)

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			isl.addBody(b)

			if b.bodyType == StaticBody {
				continue
			}

			for _, cid := range b.contacts {
				c := w.contacts.Get(int(cid))
				if c.flags&contactFlagIsland != 0 || !c.IsEnabled() || !c.IsTouching() {
					continue
				}
				fixtureA := w.fixtures.Get(int(c.fixtureA))
				fixtureB := w.fixtures.Get(int(c.fixtureB))
				if fixtureA.isSensor || fixtureB.isSensor {
					continue
				}

				isl.addContact(c)
				c.flags |= contactFlagIsland

				other := w.bodies.Get(int(fixtureA.bodyID))
				if other == b {
					other = w.bodies.Get(int(fixtureB.bodyID))
				}
				if other.flags&flagIsland != 0 {
					continue
				}
				other.flags |= flagIsland
				if other.bodyType != StaticBody {
					other.SetAwake(true)
				}
				stack = append(stack, other)
			}

			for _, jid := range b.joints {
				j := *w.joints.Get(int(jid))
				base := j.base()
				isl.addJoint(j)

				other := w.bodies.Get(int(base.bodyA))
				if other == b {
					other = w.bodies.Get(int(base.bodyB))
				}
				if other.flags&flagIsland != 0 {
					continue
				}
				other.flags |= flagIsland
				if other.bodyType != StaticBody {
					other.SetAwake(true)
				}
				stack = append(stack, other)
			}
		}

		velocityIters, maxIncrement := isl.solve(config, w.gravity, true)

		stats.IslandsFound++
		stats.IslandsSolved++
		stats.VelocityIterationsSum += velocityIters
		stats.PositionIterationsSum += config.RegPositionIterations
		stats.MaxIncrementalImpulse = math.Max(stats.MaxIncrementalImpulse, maxIncrement)

		for _, b := range isl.bodies {
			if b.bodyType == StaticBody {
				b.flags &^= flagIsland
				continue
			}
			b.synchronizeFixtures()
			if !b.IsAwake() {
				stats.BodiesSlept++
			}
		}
	})

	w.contacts.Each(func(_ int, c *Contact) { c.flags &^= contactFlagIsland })

	w.contactManager.findNewContacts()
}

// solveTOI is the continuous-collision phase (§4.15): repeatedly find the
// contact with the soonest cached time of impact among impenetrable pairs,
// advance both its bodies to that instant, build a small island around the
// event, and resolve it — bounded by maxTOIContacts passes per Step so a
// pathological configuration can't stall the frame indefinitely.
func (w *World) solveTOI(config StepConfig, stats *StepStats) {
	if !config.DoTOI {
		return
	}

	w.bodies.Each(func(_ int, b *Body) { b.sweep.Alpha0 = 0 })
	w.contacts.Each(func(_ int, c *Contact) {
		c.flags &^= contactFlagTOI
		c.toi = 0
		c.toiCount = 0
	})

	for pass := 0; pass < maxTOIContacts; pass++ {
		var minContact *Contact
		minAlpha := 1.0

		w.contacts.Each(func(_ int, c *Contact) {
			if !c.IsEnabled() || !c.IsImpenetrable() || c.toiCount >= config.MaxSubSteps {
				return
			}
			fixtureA := w.fixtures.Get(int(c.fixtureA))
			fixtureB := w.fixtures.Get(int(c.fixtureB))
			if fixtureA.isSensor || fixtureB.isSensor {
				return
			}
			bodyA := w.bodies.Get(int(fixtureA.bodyID))
			bodyB := w.bodies.Get(int(fixtureB.bodyID))

			alpha := 1.0
			if c.flags&contactFlagTOI != 0 {
				alpha = c.toi
			} else {
				activeA := bodyA.IsAwake() && bodyA.bodyType != StaticBody
				activeB := bodyB.IsAwake() && bodyB.bodyType != StaticBody
				if !activeA && !activeB {
					return
				}

				alpha0 := math.Max(bodyA.sweep.Alpha0, bodyB.sweep.Alpha0)
				if bodyA.sweep.Alpha0 < alpha0 {
					bodyA.sweep.Advance(alpha0)
				}
				if bodyB.sweep.Alpha0 < alpha0 {
					bodyB.sweep.Advance(alpha0)
				}

				sweepA, sweepB := bodyA.sweep, bodyB.sweep
				sweepA.Normalize()
				sweepB.Normalize()

				proxyA := fixtureA.shape.DistanceProxyFor(c.childIndexA)
				proxyB := fixtureB.shape.DistanceProxyFor(c.childIndexB)

				out := TimeOfImpact(TOIInput{
					ProxyA: proxyA, ProxyB: proxyB,
					SweepA: sweepA, SweepB: sweepB,
					TMax:             1,
					MaxIters:         config.MaxTOIIters,
					MaxRootIters:     config.MaxRootIters,
					MaxDistanceIters: config.MaxDistanceIters,
				})

				if out.State == TOITouching {
					alpha = math.Min(alpha0+(1-alpha0)*out.T, 1)
				}

				c.toi = alpha
				c.flags |= contactFlagTOI
			}

			if alpha < minAlpha {
				minAlpha = alpha
				minContact = c
			}
		})

		if minContact == nil {
			break
		}

		fixtureA := w.fixtures.Get(int(minContact.fixtureA))
		fixtureB := w.fixtures.Get(int(minContact.fixtureB))
		bodyA := w.bodies.Get(int(fixtureA.bodyID))
		bodyB := w.bodies.Get(int(fixtureB.bodyID))

		backupA, backupB := bodyA.sweep, bodyB.sweep

		bodyA.advance(minAlpha)
		bodyB.advance(minAlpha)

		minContact.update(fixtureA, fixtureB, bodyA, bodyB, w.contactManager.listener)
		minContact.toiCount++

		if !minContact.IsTouching() || !minContact.IsEnabled() {
			minContact.SetEnabled(false)
			bodyA.sweep = backupA
			bodyB.sweep = backupB
			bodyA.synchronizeTransform()
			bodyB.synchronizeTransform()
			continue
		}

		bodyA.SetAwake(true)
		bodyB.SetAwake(true)

		isl := newIsland(w, w.contactManager.listener)
		isl.addBody(bodyA)
		isl.addBody(bodyB)
		isl.addContact(minContact)
		bodyA.flags |= flagTOI
		bodyB.flags |= flagTOI

		for _, seed := range [2]*Body{bodyA, bodyB} {
			if seed.bodyType != DynamicBody {
				continue
			}
			for _, cid := range seed.contacts {
				if len(isl.contacts) >= maxTOIContacts {
					break
				}
				c2 := w.contacts.Get(int(cid))
				if c2 == minContact || !c2.IsEnabled() {
					continue
				}
				f2A := w.fixtures.Get(int(c2.fixtureA))
				f2B := w.fixtures.Get(int(c2.fixtureB))
				if f2A.isSensor || f2B.isSensor {
					continue
				}
				b2A := w.bodies.Get(int(f2A.bodyID))
				b2B := w.bodies.Get(int(f2B.bodyID))
				other := b2A
				if other == seed {
					other = b2B
				}
				if other.flags&flagTOI != 0 {
					continue
				}

				backupOther := other.sweep
				if other.bodyType != StaticBody && other.sweep.Alpha0 < minAlpha {
					other.sweep.Advance(minAlpha)
				}
				other.flags |= flagTOI

				c2.update(f2A, f2B, b2A, b2B, w.contactManager.listener)
				if !c2.IsTouching() {
					other.sweep = backupOther
					other.flags &^= flagTOI
					continue
				}

				isl.addBody(other)
				isl.addContact(c2)
			}
		}

		isl.solveTOI(config, (1-minAlpha)*config.Dt, 0, 1)

		for _, b := range isl.bodies {
			b.flags &^= flagTOI
			if b.bodyType != StaticBody {
				b.synchronizeFixtures()
			}
		}

		if minContact.toiCount >= config.MaxSubSteps {
			stats.ContactsAtMaxSubSteps++
		}

		if config.SubStepping {
			break
		}

		w.contactManager.findNewContacts()
	}
}
