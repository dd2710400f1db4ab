package rigid2d

// contactManager owns the broad phase and the live contact set, and runs
// the two top-level phases the world's step delegates to it each frame:
// FindNewContacts (broad-phase pair discovery) and Collide (narrow-phase
// manifold refresh for existing contacts).
type contactManager struct {
	broadPhase *BroadPhase
	contacts   *slotAllocator[Contact]

	filter   ContactFilter
	listener ContactListener

	world *World
}

func newContactManager(world *World) *contactManager {
	return &contactManager{
		broadPhase: NewBroadPhase(aabbExtensionDefault, aabbMultiplierDefault),
		contacts:   newSlotAllocator[Contact](),
		filter:     defaultContactFilter{},
		world:      world,
	}
}

// destroy removes a contact from its two owning bodies' contact lists,
// fires EndContact if it was still touching, and frees its slot.
func (m *contactManager) destroy(id ContactID) {
	c := m.contacts.Get(int(id))
	fixtureA := m.world.fixtures.Get(int(c.fixtureA))
	fixtureB := m.world.fixtures.Get(int(c.fixtureB))
	bodyA := m.world.bodies.Get(int(fixtureA.bodyID))
	bodyB := m.world.bodies.Get(int(fixtureB.bodyID))

	if m.listener != nil && c.IsTouching() {
		m.listener.EndContact(c)
	}

	if len(c.manifold.Points) > 0 && !fixtureA.isSensor && !fixtureB.isSensor {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}

	bodyA.contacts = removeContactID(bodyA.contacts, id)
	bodyB.contacts = removeContactID(bodyB.contacts, id)

	m.contacts.Free(int(id))
}

func removeContactID(list []ContactID, id ContactID) []ContactID {
	for i, cid := range list {
		if cid == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// collide is the top-level per-step narrow-phase pass: destroy contacts
// flagged for re-filtering that no longer pass, drop contacts whose broad-
// phase proxies no longer overlap, and otherwise refresh the manifold of
// every contact with at least one awake, non-static body. stats.ContactsSkipped
// counts contacts left untouched because both bodies were inactive;
// stats.TouchingUpdated/TouchingSkipped classify only the contacts whose
// manifold was actually recomputed this call.
func (m *contactManager) collide(stats *StepStats) {
	var toDestroy []ContactID

	m.contacts.Each(func(idx int, c *Contact) {
		fixtureA := m.world.fixtures.Get(int(c.fixtureA))
		fixtureB := m.world.fixtures.Get(int(c.fixtureB))
		bodyA := m.world.bodies.Get(int(fixtureA.bodyID))
		bodyB := m.world.bodies.Get(int(fixtureB.bodyID))

		if c.flags&contactFlagFilter != 0 {
			if !bodyB.shouldCollide(bodyA) {
				toDestroy = append(toDestroy, ContactID(idx))
				return
			}
			if m.filter != nil && !m.filter.ShouldCollide(fixtureA, fixtureB) {
				toDestroy = append(toDestroy, ContactID(idx))
				return
			}
			c.flags &^= contactFlagFilter
		}

		activeA := bodyA.IsAwake() && bodyA.bodyType != StaticBody
		activeB := bodyB.IsAwake() && bodyB.bodyType != StaticBody
		if !activeA && !activeB {
			stats.ContactsSkipped++
			return
		}

		proxyIDA := fixtureA.proxies[c.childIndexA].proxyID
		proxyIDB := fixtureB.proxies[c.childIndexB].proxyID
		if !m.broadPhase.TestOverlap(proxyIDA, proxyIDB) {
			toDestroy = append(toDestroy, ContactID(idx))
			return
		}

		c.update(fixtureA, fixtureB, bodyA, bodyB, m.listener)
		if c.IsTouching() {
			stats.TouchingUpdated++
		} else {
			stats.TouchingSkipped++
		}
	})

	for _, id := range toDestroy {
		m.destroy(id)
	}
}

// findNewContacts drains the broad phase's move buffer, discovering every
// newly overlapping fixture-proxy pair, and creates a Contact for each one
// that passes the joint/filter checks and doesn't already exist.
func (m *contactManager) findNewContacts() {
	m.broadPhase.UpdatePairs(m.addPair)
}

func (m *contactManager) addPair(userDataA, userDataB interface{}) {
	keyA := userDataA.(fixtureProxyKey)
	keyB := userDataB.(fixtureProxyKey)

	fixtureA := m.world.fixtures.Get(int(keyA.FixtureID))
	fixtureB := m.world.fixtures.Get(int(keyB.FixtureID))
	indexA, indexB := keyA.ChildIndex, keyB.ChildIndex

	if fixtureA.bodyID == fixtureB.bodyID {
		return
	}

	bodyA := m.world.bodies.Get(int(fixtureA.bodyID))
	bodyB := m.world.bodies.Get(int(fixtureB.bodyID))

	for _, cid := range bodyB.contacts {
		c := m.contacts.Get(int(cid))
		otherIsA := (c.fixtureA == fixtureA.id && c.fixtureB == fixtureB.id && c.childIndexA == indexA && c.childIndexB == indexB) ||
			(c.fixtureA == fixtureB.id && c.fixtureB == fixtureA.id && c.childIndexA == indexB && c.childIndexB == indexA)
		if otherIsA {
			return
		}
	}

	if !bodyB.shouldCollide(bodyA) {
		return
	}
	if m.filter != nil && !m.filter.ShouldCollide(fixtureA, fixtureB) {
		return
	}

	contact := newContact(fixtureA, indexA, fixtureB, indexB)
	if bodyA.IsBullet() || bodyB.IsBullet() || bodyA.bodyType != DynamicBody || bodyB.bodyType != DynamicBody {
		contact.flags |= contactFlagImpenetrable
	}
	id := ContactID(m.contacts.Alloc(*contact))
	m.contacts.Get(int(id)).id = id

	bodyA.contacts = append(bodyA.contacts, id)
	bodyB.contacts = append(bodyB.contacts, id)

	if !fixtureA.isSensor && !fixtureB.isSensor {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}
}
