package physics2d_test

import (
	"math"
	"testing"

	physics2d "github.com/flashkit/physics2d"
)

func anchorBody(w *physics2d.World, x, y float64) physics2d.BodyId {
	def := physics2d.MakeBodyDef()
	def.Type = physics2d.StaticBody
	def.ShapeType = physics2d.CircleShape
	def.Position = physics2d.MakeVec2(x, y)
	def.Width = 10
	def.Height = 10
	return w.CreateBody(&def)
}

func TestDistanceJointHoldsLength(t *testing.T) {
	w := physics2d.NewWorld(8)

	pivot := anchorBody(w, 0, 0)
	bob := w.CreateBody(dynamicCircleDef(100, 0, 20))

	def := physics2d.MakeDistanceJointDef()
	def.Initialize(w, pivot, bob, physics2d.MakeVec2(0, 0), physics2d.MakeVec2(100, 0))
	if math.Abs(def.Length-100.0) > 1e-9 {
		t.Fatalf("Initialize measured length %.3f, want 100", def.Length)
	}
	id := w.CreateJoint(&def)
	if id.IsNull() {
		t.Fatal("joint creation failed")
	}

	stepN(w, 240, testDt)

	pos, _ := w.GetBodyPosition(bob)
	dist := pos.Length()
	if math.Abs(dist-100.0) > 3.0 {
		t.Fatalf("anchor distance %.3f after swinging, want about 100", dist)
	}
}

func TestSoftDistanceJointOscillates(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	pivot := anchorBody(w, 0, 0)
	bob := w.CreateBody(dynamicCircleDef(150, 0, 20))

	def := physics2d.MakeDistanceJointDef()
	def.Initialize(w, pivot, bob, physics2d.MakeVec2(0, 0), physics2d.MakeVec2(150, 0))
	def.Length = 100.0
	def.FrequencyHz = 2.0
	def.DampingRatio = 0.1
	w.CreateJoint(&def)

	// A soft joint pulls the stretched bob inward instead of snapping it.
	stepN(w, 3, testDt)
	pos, _ := w.GetBodyPosition(bob)
	if pos.X >= 150.0 {
		t.Fatal("soft joint applied no restoring force")
	}
	if pos.X < 110.0 {
		t.Fatalf("soft joint snapped to rest length immediately: x=%.2f", pos.X)
	}
}

func TestRevoluteJointPendulum(t *testing.T) {
	w := physics2d.NewWorld(8)

	pivot := anchorBody(w, 0, 0)
	bob := w.CreateBody(dynamicCircleDef(80, 0, 20))

	def := physics2d.MakeRevoluteJointDef()
	def.Initialize(w, pivot, bob, physics2d.MakeVec2(0, 0))
	w.CreateJoint(&def)

	for i := 0; i < 300; i++ {
		w.Step(testDt)
		pos, _ := w.GetBodyPosition(bob)
		if d := pos.Length(); math.Abs(d-80.0) > 3.0 {
			t.Fatalf("pivot distance %.3f at step %d, want about 80", d, i)
		}
	}
}

func TestRevoluteMotorReachesSpeed(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	ground := anchorBody(w, 0, 0)

	wheel := physics2d.MakeBodyDef()
	wheel.Type = physics2d.DynamicBody
	wheel.ShapeType = physics2d.BoxShape
	wheel.Position = physics2d.MakeVec2(0, 0)
	wheel.Width = 40
	wheel.Height = 40
	wheel.MaskBits = 0 // no contacts, the motor acts alone
	b := w.CreateBody(&wheel)

	def := physics2d.MakeRevoluteJointDef()
	def.Initialize(w, ground, b, physics2d.MakeVec2(0, 0))
	def.EnableMotor = true
	def.MotorSpeed = 5.0
	def.MaxMotorTorque = 1e9
	w.CreateJoint(&def)

	stepN(w, 60, testDt)

	_, omega, _ := w.GetBodyVelocity(b)
	if math.Abs(omega-5.0) > 0.5 {
		t.Fatalf("motor reached %.3f rad/s, want about 5", omega)
	}
}

func TestRevoluteLimitClampsAngle(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	ground := anchorBody(w, 0, 0)
	armDef := dynamicCircleDef(0, 0, 40)
	armDef.MaskBits = 0
	arm := w.CreateBody(armDef)

	def := physics2d.MakeRevoluteJointDef()
	def.Initialize(w, ground, arm, physics2d.MakeVec2(0, 0))
	def.EnableLimit = true
	def.LowerAngle = -0.25
	def.UpperAngle = 0.25
	w.CreateJoint(&def)

	for i := 0; i < 240; i++ {
		w.ApplyTorque(arm, 1e7)
		w.Step(testDt)
	}

	angle, _ := w.GetBodyAngle(arm)
	if angle > 0.35 {
		t.Fatalf("limit allowed angle %.3f, upper bound is 0.25", angle)
	}
}

func TestPrismaticJointConstrainsToAxis(t *testing.T) {
	w := physics2d.NewWorld(8)

	ground := anchorBody(w, 0, 0)

	slider := physics2d.MakeBodyDef()
	slider.Type = physics2d.DynamicBody
	slider.ShapeType = physics2d.BoxShape
	slider.Position = physics2d.MakeVec2(0, 0)
	slider.Width = 20
	slider.Height = 20
	slider.MaskBits = 0
	b := w.CreateBody(&slider)

	def := physics2d.MakePrismaticJointDef()
	def.Initialize(w, ground, b, physics2d.MakeVec2(0, 0), physics2d.MakeVec2(1, 0))
	w.CreateJoint(&def)

	// Gravity pulls along -y, perpendicular to the slide axis; the joint
	// must hold the slider at y=0 while x stays free.
	w.SetBodyVelocity(b, physics2d.MakeVec2(50, 0))
	stepN(w, 180, testDt)

	pos, _ := w.GetBodyPosition(b)
	if math.Abs(pos.Y) > 1.0 {
		t.Fatalf("slider drifted to y=%.3f under gravity", pos.Y)
	}
	if pos.X < 50.0 {
		t.Fatalf("slider blocked along its own axis: x=%.3f", pos.X)
	}
	angle, _ := w.GetBodyAngle(b)
	if math.Abs(angle) > 0.05 {
		t.Fatalf("slider rotated to %.4f rad", angle)
	}
}

func TestPrismaticLimitStopsTravel(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	ground := anchorBody(w, 0, 0)

	slider := physics2d.MakeBodyDef()
	slider.Type = physics2d.DynamicBody
	slider.ShapeType = physics2d.BoxShape
	slider.Position = physics2d.MakeVec2(0, 0)
	slider.Width = 20
	slider.Height = 20
	slider.MaskBits = 0
	b := w.CreateBody(&slider)

	def := physics2d.MakePrismaticJointDef()
	def.Initialize(w, ground, b, physics2d.MakeVec2(0, 0), physics2d.MakeVec2(1, 0))
	def.EnableLimit = true
	def.LowerTranslation = -50
	def.UpperTranslation = 50
	w.CreateJoint(&def)

	w.SetBodyVelocity(b, physics2d.MakeVec2(400, 0))
	stepN(w, 120, testDt)

	pos, _ := w.GetBodyPosition(b)
	if pos.X > 55.0 {
		t.Fatalf("slider passed the upper limit: x=%.3f", pos.X)
	}
}

func TestWeldJointHoldsPose(t *testing.T) {
	w := physics2d.NewWorld(8)

	base := anchorBody(w, 0, 0)
	arm := w.CreateBody(dynamicCircleDef(40, 0, 20))

	def := physics2d.MakeWeldJointDef()
	def.Initialize(w, base, arm, physics2d.MakeVec2(20, 0))
	w.CreateJoint(&def)

	stepN(w, 240, testDt)

	pos, _ := w.GetBodyPosition(arm)
	if math.Abs(pos.X-40.0) > 2.0 || math.Abs(pos.Y) > 2.0 {
		t.Fatalf("welded body drifted to (%.3f, %.3f)", pos.X, pos.Y)
	}
	angle, _ := w.GetBodyAngle(arm)
	if math.Abs(angle) > 0.05 {
		t.Fatalf("welded body rotated to %.4f rad", angle)
	}
}

func TestJointCreationRejections(t *testing.T) {
	w := physics2d.NewWorld(8)
	a := w.CreateBody(dynamicCircleDef(0, 0, 20))
	b := w.CreateBody(dynamicCircleDef(100, 0, 20))

	def := physics2d.MakeDistanceJointDef()
	def.BodyA = a
	def.BodyB = a
	if id := w.CreateJoint(&def); !id.IsNull() {
		t.Fatal("joint between a body and itself was created")
	}

	def.BodyB = b
	def.Length = 100
	id := w.CreateJoint(&def)
	if id.IsNull() {
		t.Fatal("valid joint rejected")
	}
	if jt, ok := w.JointTypeOf(id); !ok || jt != physics2d.DistanceJointType {
		t.Fatalf("JointTypeOf = %v, %v", jt, ok)
	}
	if w.JointCount() != 1 {
		t.Fatalf("JointCount = %d, want 1", w.JointCount())
	}

	w.DestroyJoint(id)
	if w.JointCount() != 0 {
		t.Fatalf("JointCount = %d after destroy, want 0", w.JointCount())
	}
	if _, ok := w.JointTypeOf(id); ok {
		t.Fatal("stale joint handle still resolves")
	}
}

func TestDestroyBodyDestroysItsJoints(t *testing.T) {
	w := physics2d.NewWorld(8)
	a := w.CreateBody(dynamicCircleDef(0, 0, 20))
	b := w.CreateBody(dynamicCircleDef(100, 0, 20))
	c := w.CreateBody(dynamicCircleDef(200, 0, 20))

	ab := physics2d.MakeDistanceJointDef()
	ab.Initialize(w, a, b, physics2d.MakeVec2(0, 0), physics2d.MakeVec2(100, 0))
	abId := w.CreateJoint(&ab)

	bc := physics2d.MakeDistanceJointDef()
	bc.Initialize(w, b, c, physics2d.MakeVec2(100, 0), physics2d.MakeVec2(200, 0))
	bcId := w.CreateJoint(&bc)

	w.DestroyBody(b)

	if _, ok := w.JointTypeOf(abId); ok {
		t.Fatal("joint to a destroyed body survived")
	}
	if _, ok := w.JointTypeOf(bcId); ok {
		t.Fatal("joint from a destroyed body survived")
	}
	if w.JointCount() != 0 {
		t.Fatalf("JointCount = %d, want 0", w.JointCount())
	}

	// The world keeps stepping without the destroyed participants.
	stepN(w, 10, testDt)
}
