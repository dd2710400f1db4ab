package rigid2d

import (
	"fmt"
	"sort"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// buildComplianceScene assembles a small mixed scene (ground edge, a falling
// box, a falling disk, a disk pinned to the ground by a revolute joint) and
// returns every body keyed by a
// stable name, mirroring the named-character map the teacher's own
// compliance trace builds bodies into.
func buildComplianceScene(w *World) map[string]BodyID {
	bodies := make(map[string]BodyID)

	groundDef := DefaultBodyDef()
	groundDef.Type = StaticBody
	groundID, _ := w.CreateBody(groundDef)
	gfd := DefaultFixtureDef()
	gfd.Shape = NewEdgeShape(V2(-20, 0), V2(20, 0))
	w.CreateFixture(groundID, gfd)
	bodies["01_ground"] = groundID

	boxDef := DefaultBodyDef()
	boxDef.Type = DynamicBody
	boxDef.Position = V2(-2, 5)
	boxID, _ := w.CreateBody(boxDef)
	w.CreateFixture(boxID, boxFixtureDef(0.5, 0.5, 1))
	bodies["02_box"] = boxID

	diskDef := DefaultBodyDef()
	diskDef.Type = DynamicBody
	diskDef.Position = V2(2, 8)
	diskDef.AllowSleep = false
	diskID, _ := w.CreateBody(diskDef)
	fd := circleFixtureDef(0.5, 1)
	fd.Friction = 1.0
	w.CreateFixture(diskID, fd)
	bodies["03_disk"] = diskID

	pendulumDef := DefaultBodyDef()
	pendulumDef.Type = DynamicBody
	pendulumDef.Position = V2(0, 10)
	pendulumID, _ := w.CreateBody(pendulumDef)
	w.CreateFixture(pendulumID, circleFixtureDef(0.3, 1))
	bodies["04_pendulum"] = pendulumID

	w.CreateJoint(RevoluteJointDef{
		JointDef:     JointDef{BodyA: groundID, BodyB: pendulumID, CollideConnected: false},
		LocalAnchorA: V2(0, 10),
		LocalAnchorB: Vec2Zero,
	})

	return bodies
}

// traceScene steps the world a fixed number of times and prints each named
// body's position and angle every step, in name order — the same shape of
// trace the teacher's compliance test builds before diffing it against a
// reference log, adapted from a fixed external oracle to a determinism
// check against this package's own prior run.
func traceScene(w *World, bodies map[string]BodyID, steps int) string {
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)

	config := DefaultStepConfig()
	config.Dt = 1.0 / 60.0

	var out string
	for i := 0; i < steps; i++ {
		w.Step(config)
		for _, name := range names {
			b := w.Body(bodies[name])
			p := b.Position()
			out += fmt.Sprintf("%d(%s): %.3f %.3f %.3f\n", i, name, p.X, p.Y, b.Angle())
		}
	}
	return out
}

// TestSimulationTraceIsDeterministic replays the same scene twice from
// identical initial conditions and requires byte-identical traces: no step
// in this package may read wall-clock time, map iteration order, or any
// other source of nondeterminism. A mismatch is reported as a unified diff
// exactly the way the teacher's own compliance test reports a mismatch
// against its reference log.
func TestSimulationTraceIsDeterministic(t *testing.T) {
	run := func() string {
		w := NewWorld(V2(0, -10))
		bodies := buildComplianceScene(w)
		return traceScene(w, bodies, 60)
	}

	first := run()
	second := run()

	if first != second {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "Run1",
			ToFile:   "Run2",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("simulation trace is not deterministic across identical runs:\n%s", text)
	}
}
