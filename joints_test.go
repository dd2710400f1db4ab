package rigid2d

import (
	"math"
	"testing"
)

// TestPrismaticLimits is the Prismatic-limits end-to-end scenario: two
// disks joined by a prismatic joint with a pinned [0,0] linear limit
// converge their axial translation to the limit, and widening the limit to
// [0,2] then narrowing it to [-2,0] moves the settled translation into the
// new range each time.
func TestPrismaticLimits(t *testing.T) {
	w := NewWorld(Vec2Zero)

	leftDef := DefaultBodyDef()
	leftDef.Type = DynamicBody
	leftDef.Position = V2(-1, 0)
	leftID, _ := w.CreateBody(leftDef)
	w.CreateFixture(leftID, circleFixtureDef(0.4, 1))

	rightDef := DefaultBodyDef()
	rightDef.Type = DynamicBody
	rightDef.Position = V2(1, 0)
	rightID, _ := w.CreateBody(rightDef)
	w.CreateFixture(rightID, circleFixtureDef(0.4, 1))

	jointID, err := w.CreateJoint(PrismaticJointDef{
		JointDef:         JointDef{BodyA: leftID, BodyB: rightID, CollideConnected: false},
		LocalAxisA:       V2(1, 0),
		EnableLimit:      true,
		LowerTranslation: 0,
		UpperTranslation: 0,
	})
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	pj := w.Joint(jointID).(*PrismaticJoint)

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	for i := 0; i < 120; i++ {
		w.Step(config)
	}
	if math.Abs(pj.translation) > 1e-3 {
		t.Errorf("translation settled at %v, want within 1e-3 of the pinned [0,0] limit", pj.translation)
	}

	// Widen the limit to [0,2]: the joint must never let translation drift
	// below its new lower bound.
	pj.lowerTranslation, pj.upperTranslation = 0, 2
	for i := 0; i < 60; i++ {
		w.Step(config)
		if pj.translation < -1e-3 {
			t.Fatalf("translation %v violates lower limit 0 after widening to [0,2]", pj.translation)
		}
	}

	// Narrow it the other way to [-2,0]: translation must never exceed 0.
	pj.lowerTranslation, pj.upperTranslation = -2, 0
	for i := 0; i < 60; i++ {
		w.Step(config)
		if pj.translation > 1e-3 {
			t.Fatalf("translation %v violates upper limit 0 after narrowing to [-2,0]", pj.translation)
		}
	}
}

// TestRopeJointUpperLimit is the Rope-joint-upper-limit end-to-end
// scenario: two disks anchored by a rope shorter than their initial
// separation are pulled toward (but never past) the rope's max length, and
// the rope never pushes (its impulse is non-positive).
func TestRopeJointUpperLimit(t *testing.T) {
	w := NewWorld(Vec2Zero)

	leftDef := DefaultBodyDef()
	leftDef.Type = DynamicBody
	leftDef.Position = V2(-1.5, 0)
	leftID, _ := w.CreateBody(leftDef)
	w.CreateFixture(leftID, circleFixtureDef(0.1, 1.0/(math.Pi*0.01))) // unit mass: density*pi*r^2 = 1

	rightDef := DefaultBodyDef()
	rightDef.Type = DynamicBody
	rightDef.Position = V2(1.5, 0)
	rightID, _ := w.CreateBody(rightDef)
	w.CreateFixture(rightID, circleFixtureDef(0.1, 1.0/(math.Pi*0.01)))

	jointID, err := w.CreateJoint(RopeJointDef{
		JointDef:  JointDef{BodyA: leftID, BodyB: rightID, CollideConnected: true},
		MaxLength: 2.0,
	})
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0
	w.Step(config)

	dist := Distance(w.Body(leftID).Position(), w.Body(rightID).Position())
	if dist > 2.0+linearSlopDefault {
		t.Errorf("distance after step = %v, want <= %v", dist, 2.0+linearSlopDefault)
	}

	rj := w.Joint(jointID).(*RopeJoint)
	if rj.impulse > 0 {
		t.Errorf("rope joint impulse = %v, want <= 0 (a rope never pushes)", rj.impulse)
	}
}
