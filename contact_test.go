package rigid2d

import "testing"

// orderedListener records the sequence of hooks fired for a single test
// contact, so TestListenerOrdering can assert BeginContact/PreSolve/
// PostSolve/EndContact happen in the right relative order.
type orderedListener struct {
	NopContactListener
	events []string
}

func (l *orderedListener) BeginContact(c *Contact) { l.events = append(l.events, "begin") }
func (l *orderedListener) EndContact(c *Contact)   { l.events = append(l.events, "end") }
func (l *orderedListener) PreSolve(c *Contact, old Manifold) {
	l.events = append(l.events, "presolve")
}
func (l *orderedListener) PostSolve(c *Contact, impulse *ContactImpulse) {
	l.events = append(l.events, "postsolve")
}

// TestListenerOrdering covers Testable Property 3: begin-contact fires
// before any post-solve for the same contact, and the pair fires exactly
// once while the shapes stay overlapping.
func TestListenerOrdering(t *testing.T) {
	w := NewWorld(Vec2Zero)
	listener := &orderedListener{}
	w.SetContactListener(listener)

	groundDef := DefaultBodyDef()
	groundDef.Type = StaticBody
	groundID, _ := w.CreateBody(groundDef)
	if _, err := w.CreateFixture(groundID, boxFixtureDef(5, 1, 0)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	diskDef := DefaultBodyDef()
	diskDef.Type = DynamicBody
	diskDef.Position = V2(0, 1.0)
	diskID, _ := w.CreateBody(diskDef)
	if _, err := w.CreateFixture(diskID, circleFixtureDef(0.5, 1)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	for i := 0; i < 3; i++ {
		w.Step(config)
	}

	beginAt, presolveAt, postsolveAt := -1, -1, -1
	for i, e := range listener.events {
		switch e {
		case "begin":
			if beginAt == -1 {
				beginAt = i
			}
		case "presolve":
			if presolveAt == -1 {
				presolveAt = i
			}
		case "postsolve":
			if postsolveAt == -1 {
				postsolveAt = i
			}
		}
	}

	if beginAt == -1 || postsolveAt == -1 {
		t.Fatalf("missing begin or postsolve event: %v", listener.events)
	}
	if beginAt > postsolveAt {
		t.Errorf("begin fired after postsolve: %v", listener.events)
	}
	if presolveAt != -1 && beginAt > presolveAt {
		t.Errorf("begin fired after presolve: %v", listener.events)
	}

	beginCount := 0
	for _, e := range listener.events {
		if e == "begin" {
			beginCount++
		}
	}
	if beginCount != 1 {
		t.Errorf("BeginContact fired %d times while shapes stayed touching, want 1", beginCount)
	}
}

// TestContactSetConsistency covers Testable Property 6: after a step,
// overlapping fixture-children with permitting filters have exactly one
// contact, and separated shapes have none.
func TestContactSetConsistency(t *testing.T) {
	w := NewWorld(Vec2Zero)

	makeCircle := func(x float64) BodyID {
		def := DefaultBodyDef()
		def.Type = DynamicBody
		def.Position = V2(x, 0)
		id, _ := w.CreateBody(def)
		w.CreateFixture(id, circleFixtureDef(0.5, 1))
		return id
	}

	touching := []BodyID{makeCircle(0), makeCircle(0.5)}
	_ = makeCircle(100) // far away, should never pair with anything

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	w.Step(config)

	if got := len(w.Body(touching[0]).Contacts()); got != 1 {
		t.Errorf("touching body has %d contacts, want exactly 1 (its overlapping neighbor)", got)
	}
	if got := len(w.Body(touching[1]).Contacts()); got != 1 {
		t.Errorf("touching body has %d contacts, want exactly 1", got)
	}
}

// TestProxyAABBContainment covers Testable Property 5: a fixture's stored
// fattened proxy AABB always contains the shape's true AABB at the body's
// current transform.
func TestProxyAABBContainment(t *testing.T) {
	w := NewWorld(V2(0, -10))

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = V2(0, 10)
	id, _ := w.CreateBody(def)
	fid, err := w.CreateFixture(id, circleFixtureDef(0.5, 1))
	if err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	for i := 0; i < 5; i++ {
		w.Step(config)

		f := w.Fixture(fid)
		b := w.Body(id)
		trueAABB := f.Shape().ComputeAABB(b.Transform(), 0)
		fatAABB := f.AABB(0)
		if !fatAABB.Contains(trueAABB) {
			t.Fatalf("step %d: fat AABB %v does not contain shape AABB %v", i, fatAABB, trueAABB)
		}
	}
}

// TestWarmStartIdempotence covers Testable Property 8: stepping with dt=0
// leaves body positions and velocities unchanged.
func TestWarmStartIdempotence(t *testing.T) {
	w := NewWorld(V2(0, -10))

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = V2(0, 5)
	def.LinearVelocity = V2(1, 2)
	id, _ := w.CreateBody(def)
	if _, err := w.CreateFixture(id, circleFixtureDef(0.5, 1)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	posBefore := w.Body(id).Position()
	velBefore := w.Body(id).LinearVelocity()

	config := DefaultStepConfig()
	config.Dt = 0
	w.Step(config)
	w.Step(config)

	if w.Body(id).Position() != posBefore {
		t.Errorf("position changed with dt=0: %v -> %v", posBefore, w.Body(id).Position())
	}
	if w.Body(id).LinearVelocity() != velBefore {
		t.Errorf("velocity changed with dt=0: %v -> %v", velBefore, w.Body(id).LinearVelocity())
	}
}
