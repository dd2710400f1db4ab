package rigid2d

import (
	"errors"
	"math"
	"testing"
)

func boxFixtureDef(hw, hh, density float64) FixtureDef {
	fd := DefaultFixtureDef()
	fd.Shape = NewBoxShape(hw, hh)
	fd.Density = density
	return fd
}

func circleFixtureDef(radius, density float64) FixtureDef {
	fd := DefaultFixtureDef()
	fd.Shape = CircleShape{radius: radius}
	fd.Density = density
	return fd
}

// TestIdentifierStability covers Testable Property 1: a created id keeps
// resolving to the same entity until destroyed, and a freed slot can be
// reused by a later create without aliasing the old id.
func TestIdentifierStability(t *testing.T) {
	w := NewWorld(Vec2Zero)

	def := DefaultBodyDef()
	def.Position = V2(1, 2)
	id1, err := w.CreateBody(def)
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	if w.Body(id1).Position() != V2(1, 2) {
		t.Fatalf("id1 resolves to wrong body")
	}

	if err := w.DestroyBody(id1); err != nil {
		t.Fatalf("DestroyBody: %v", err)
	}

	def2 := DefaultBodyDef()
	def2.Position = V2(9, 9)
	id2, err := w.CreateBody(def2)
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	if w.Body(id2).Position() != V2(9, 9) {
		t.Fatalf("id2 resolves to wrong body after slot reuse")
	}
}

// TestLockInvariant covers Testable Property 2: every mutating world call
// raises ErrWrongState while a Step is in flight. Step never reenters
// itself, so this drives the check directly against World.locked.
func TestLockInvariant(t *testing.T) {
	w := NewWorld(Vec2Zero)
	bodyID, err := w.CreateBody(DefaultBodyDef())
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}

	w.locked = true
	defer func() { w.locked = false }()

	if _, err := w.CreateBody(DefaultBodyDef()); !errors.Is(err, ErrWrongState) {
		t.Errorf("CreateBody while locked: got %v, want ErrWrongState", err)
	}
	if err := w.DestroyBody(bodyID); !errors.Is(err, ErrWrongState) {
		t.Errorf("DestroyBody while locked: got %v, want ErrWrongState", err)
	}
	if _, err := w.CreateFixture(bodyID, boxFixtureDef(1, 1, 1)); !errors.Is(err, ErrWrongState) {
		t.Errorf("CreateFixture while locked: got %v, want ErrWrongState", err)
	}
	if _, err := w.CreateJoint(RopeJointDef{JointDef: JointDef{BodyA: bodyID, BodyB: bodyID}}); !errors.Is(err, ErrWrongState) {
		t.Errorf("CreateJoint while locked: got %v, want ErrWrongState", err)
	}
	if err := w.ShiftOrigin(Vec2Zero); !errors.Is(err, ErrWrongState) {
		t.Errorf("ShiftOrigin while locked: got %v, want ErrWrongState", err)
	}
}

// TestMassSumInvariant covers Testable Property 4: a body's inverse mass is
// 1/sum(density*area) over its positive-density fixtures, and a static
// body always carries zero inverse mass regardless of its fixtures.
func TestMassSumInvariant(t *testing.T) {
	w := NewWorld(Vec2Zero)

	dynDef := DefaultBodyDef()
	dynDef.Type = DynamicBody
	dynID, _ := w.CreateBody(dynDef)
	if _, err := w.CreateFixture(dynID, boxFixtureDef(1, 1, 2)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	dyn := w.Body(dynID)
	wantMass := 2.0 * (2 * 1) * (2 * 1) // density * area (2x2 box, half-extents 1x1)
	if math.Abs(dyn.Mass()-wantMass) > 1e-9 {
		t.Errorf("dynamic body mass = %v, want %v", dyn.Mass(), wantMass)
	}
	if math.Abs(dyn.invMass-1/wantMass) > 1e-9 {
		t.Errorf("dynamic body invMass = %v, want %v", dyn.invMass, 1/wantMass)
	}

	staticDef := DefaultBodyDef()
	staticDef.Type = StaticBody
	staticID, _ := w.CreateBody(staticDef)
	if _, err := w.CreateFixture(staticID, boxFixtureDef(1, 1, 5)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}
	static := w.Body(staticID)
	if static.invMass != 0 {
		t.Errorf("static body invMass = %v, want 0", static.invMass)
	}
}

// TestShiftOriginCorrectness covers Testable Property 9 and the
// Origin-shift end-to-end scenario: shifting by the body's own position
// moves it exactly to the new origin, leaves its local center untouched,
// and subsequent stepping keeps behaving.
func TestShiftOriginCorrectness(t *testing.T) {
	w := NewWorld(V2(0, -10))

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = V2(1000000, 0)
	id, _ := w.CreateBody(def)
	if _, err := w.CreateFixture(id, circleFixtureDef(0.5, 1)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	localCenterBefore := w.Body(id).LocalCenter()

	if err := w.ShiftOrigin(V2(1000000, 0)); err != nil {
		t.Fatalf("ShiftOrigin: %v", err)
	}

	got := w.Body(id).Position()
	if math.Abs(got.X) > 1e-4 || math.Abs(got.Y) > 1e-4 {
		t.Errorf("position after shift = %v, want ~(0,0)", got)
	}
	if w.Body(id).LocalCenter() != localCenterBefore {
		t.Errorf("local center changed by ShiftOrigin: %v -> %v", localCenterBefore, w.Body(id).LocalCenter())
	}

	config := DefaultStepConfig()
	stats := w.Step(config)
	if stats.IslandsFound < 0 {
		t.Errorf("stepping after shift-origin misbehaved")
	}
}

// TestTwoDiskRest is the Two-disk rest end-to-end scenario: two unit-mass
// zero-friction disks pressed together with no gravity settle to near-zero
// separation and near-zero closing velocity after one step.
func TestTwoDiskRest(t *testing.T) {
	w := NewWorld(Vec2Zero)

	makeDisk := func(x float64) BodyID {
		def := DefaultBodyDef()
		def.Type = DynamicBody
		def.Position = V2(x, 0)
		id, err := w.CreateBody(def)
		if err != nil {
			t.Fatalf("CreateBody: %v", err)
		}
		fd := circleFixtureDef(1, 1.0/math.Pi) // unit mass: density*pi*r^2 = 1
		fd.Friction = 0
		if _, err := w.CreateFixture(id, fd); err != nil {
			t.Fatalf("CreateFixture: %v", err)
		}
		return id
	}

	left := makeDisk(-0.5)
	right := makeDisk(0.5)

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	config.LinearSlop = linearSlopDefault
	w.Step(config)

	lp := w.Body(left).Position()
	rp := w.Body(right).Position()
	separation := Distance(lp, rp) - 2.0 // sum of radii

	if separation > 0 || separation < -linearSlopDefault-1e-6 {
		t.Errorf("two-disk separation = %v, want within [-%v, 0]", separation, linearSlopDefault)
	}

	normal := rp.Sub(lp)
	relVel := w.Body(right).LinearVelocity().Sub(w.Body(left).LinearVelocity())
	_, unitNormal := normal.Normalize()
	closingSpeed := relVel.Dot(unitNormal)
	if math.Abs(closingSpeed) > 1e-3 {
		t.Errorf("closing velocity along normal = %v, want ~0", closingSpeed)
	}
}

// TestSleepingIsland is the Sleeping-island end-to-end scenario, scaled
// down from 100 disks to keep the test fast: dynamic disks resting on a
// static plane fall asleep within the configured still-time window.
func TestSleepingIsland(t *testing.T) {
	w := NewWorld(V2(0, -10))

	groundDef := DefaultBodyDef()
	groundDef.Type = StaticBody
	groundID, _ := w.CreateBody(groundDef)
	if _, err := w.CreateFixture(groundID, boxFixtureDef(50, 1, 0)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	var diskIDs []BodyID
	for i := 0; i < 8; i++ {
		def := DefaultBodyDef()
		def.Type = DynamicBody
		def.Position = V2(float64(i)*1.1, 1.0+float64(i)*2.5)
		id, _ := w.CreateBody(def)
		if _, err := w.CreateFixture(id, circleFixtureDef(0.5, 1)); err != nil {
			t.Fatalf("CreateFixture: %v", err)
		}
		diskIDs = append(diskIDs, id)
	}

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	config.MinStillTime = 0.5
	config.LinearSleepTolerance = 0.01

	steps := int(4.0 / config.Dt) // 4s simulated, generous margin over the 2s scenario bound
	for i := 0; i < steps; i++ {
		w.Step(config)
	}

	for _, id := range diskIDs {
		if w.Body(id).IsAwake() {
			t.Errorf("body %d still awake after %d steps", id, steps)
		}
	}
}

// TestBulletThroughPlank is the Bullet-through-plank end-to-end scenario:
// a fast bullet-flagged box must not tunnel through a static edge when TOI
// is enabled, but may tunnel when it is disabled.
func TestBulletThroughPlank(t *testing.T) {
	run := func(doTOI bool) float64 {
		w := NewWorld(Vec2Zero)

		groundDef := DefaultBodyDef()
		groundDef.Type = StaticBody
		groundID, _ := w.CreateBody(groundDef)
		edge := NewEdgeShape(V2(-10, 0), V2(10, 0))
		gfd := DefaultFixtureDef()
		gfd.Shape = edge
		if _, err := w.CreateFixture(groundID, gfd); err != nil {
			t.Fatalf("CreateFixture: %v", err)
		}

		bulletDef := DefaultBodyDef()
		bulletDef.Type = DynamicBody
		bulletDef.Bullet = true
		bulletDef.Position = V2(0.20352793, 10)
		bulletDef.LinearVelocity = V2(0, -50)
		bulletID, _ := w.CreateBody(bulletDef)
		if _, err := w.CreateFixture(bulletID, boxFixtureDef(0.125, 0.125, 1)); err != nil {
			t.Fatalf("CreateFixture: %v", err)
		}

		config := DefaultStepConfig()
		config.Dt = 1.0 / 60.0
		config.DoTOI = doTOI
		w.Step(config)

		return w.Body(bulletID).Position().Y
	}

	if y := run(true); y < 0 {
		t.Errorf("bullet tunneled with doTOI=true: y=%v, want >= 0", y)
	}
	_ = run(false) // tunneling permitted; nothing to assert
}

// TestBodySetType covers switching a resting dynamic body to static:
// its contacts must be torn down (ShouldCollide may answer differently for
// its new type) and its mass data must reset to the static body's zero
// inverse mass.
func TestBodySetType(t *testing.T) {
	w := NewWorld(V2(0, -10))

	groundDef := DefaultBodyDef()
	groundDef.Type = StaticBody
	groundID, _ := w.CreateBody(groundDef)
	if _, err := w.CreateFixture(groundID, boxFixtureDef(50, 1, 0)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	boxDef := DefaultBodyDef()
	boxDef.Type = DynamicBody
	boxDef.Position = V2(0, 1.5)
	boxID, _ := w.CreateBody(boxDef)
	if _, err := w.CreateFixture(boxID, boxFixtureDef(0.5, 0.5, 1)); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	for i := 0; i < 30; i++ {
		w.Step(config)
	}

	box := w.Body(boxID)
	if len(box.Contacts()) == 0 {
		t.Fatalf("box has no contacts before SetType, test setup is wrong")
	}

	if err := box.SetType(StaticBody); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	if box.Type() != StaticBody {
		t.Errorf("Type() = %v, want StaticBody", box.Type())
	}
	if box.Mass() != 0 {
		t.Errorf("Mass() = %v, want 0 after switching to StaticBody", box.Mass())
	}
	if len(box.Contacts()) != 0 {
		t.Errorf("Contacts() = %v, want none after SetType", box.Contacts())
	}
	if !box.IsAwake() {
		t.Errorf("box should be forced awake by SetType")
	}

	w.locked = true
	defer func() { w.locked = false }()
	if err := box.SetType(DynamicBody); !errors.Is(err, ErrWrongState) {
		t.Errorf("SetType while locked: got %v, want ErrWrongState", err)
	}
}
