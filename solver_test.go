package physics2d_test

import (
	"math"
	"testing"

	physics2d "github.com/flashkit/physics2d"
)

func kineticEnergy(w *physics2d.World, ids ...physics2d.BodyId) float64 {
	total := 0.0
	for _, id := range ids {
		v, _, ok := w.GetBodyVelocity(id)
		if !ok {
			continue
		}
		// All test bodies share the same mass, so speed squared stands in
		// for energy.
		total += v.LengthSquared()
	}
	return total
}

func headOnWorld(t *testing.T, restitution float64) (*physics2d.World, physics2d.BodyId, physics2d.BodyId) {
	t.Helper()
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	defA := dynamicCircleDef(-40, 0, 20)
	defA.Restitution = restitution
	defA.Friction = 0.0
	a := w.CreateBody(defA)

	defB := dynamicCircleDef(40, 0, 20)
	defB.Restitution = restitution
	defB.Friction = 0.0
	b := w.CreateBody(defB)

	w.SetBodyVelocity(a, physics2d.MakeVec2(200, 0))
	w.SetBodyVelocity(b, physics2d.MakeVec2(-200, 0))
	return w, a, b
}

func TestElasticCollisionConservesEnergy(t *testing.T) {
	w, a, b := headOnWorld(t, 1.0)

	before := kineticEnergy(w, a, b)
	stepN(w, 20, testDt)
	after := kineticEnergy(w, a, b)

	if relErr := math.Abs(after-before) / before; relErr > 0.15 {
		t.Fatalf("kinetic energy drifted %.1f%% across an elastic collision", relErr*100)
	}

	// The bodies must have actually bounced apart.
	va, _, _ := w.GetBodyVelocity(a)
	vb, _, _ := w.GetBodyVelocity(b)
	if va.X >= 0 || vb.X <= 0 {
		t.Fatalf("bodies did not separate: va.x=%.2f vb.x=%.2f", va.X, vb.X)
	}
}

func TestInelasticCollisionReachesCommonVelocity(t *testing.T) {
	w, a, b := headOnWorld(t, 0.0)

	stepN(w, 30, testDt)

	va, _, _ := w.GetBodyVelocity(a)
	vb, _, _ := w.GetBodyVelocity(b)
	if math.Abs(va.X-vb.X) > 20.0 {
		t.Fatalf("relative velocity %.2f remains after an inelastic head-on collision", math.Abs(va.X-vb.X))
	}
}

func TestBoxRestsOnGround(t *testing.T) {
	w := physics2d.NewWorld(8)

	w.CreateBody(staticBoxDef(0, -50, 1000, 100))

	def := physics2d.MakeBodyDef()
	def.Type = physics2d.DynamicBody
	def.ShapeType = physics2d.BoxShape
	def.Position = physics2d.MakeVec2(0, 60)
	def.Width = 40
	def.Height = 40
	box := w.CreateBody(&def)

	stepN(w, 300, testDt)

	pos, _ := w.GetBodyPosition(box)
	// Resting height is ground top (0) plus the half extent, give or take
	// solver slop.
	if math.Abs(pos.Y-20.0) > 2.0 {
		t.Fatalf("box settled at y=%.3f, want about 20", pos.Y)
	}
	v, _, _ := w.GetBodyVelocity(box)
	if v.Length() > 5.0 {
		t.Fatalf("box still moving at %.3f after settling", v.Length())
	}
}

func TestWarmStartPersistsOnlyWhileTouching(t *testing.T) {
	w := physics2d.NewWorld(8)

	w.CreateBody(staticBoxDef(0, -50, 1000, 100))
	def := physics2d.MakeBodyDef()
	def.Type = physics2d.DynamicBody
	def.ShapeType = physics2d.BoxShape
	def.Position = physics2d.MakeVec2(0, 30)
	def.Width = 40
	def.Height = 40
	box := w.CreateBody(&def)

	stepN(w, 120, testDt)

	// Yank the box far away; the pair separates and the persisted contact
	// state must not pull it back or resist new motion.
	w.SetBodyVelocity(box, physics2d.MakeVec2(0, 4000))
	stepN(w, 10, testDt)
	pos, _ := w.GetBodyPosition(box)
	if pos.Y < 200 {
		t.Fatalf("box held back after separation, y=%.2f", pos.Y)
	}
}

type recordingListener struct {
	begins  int
	sensors int
}

func (l *recordingListener) BeginContact(a, b physics2d.BodyId) { l.begins++ }
func (l *recordingListener) SensorOverlap(a, b physics2d.BodyId) {
	l.sensors++
}

func TestSensorOverlapsWithoutResponse(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	sensor := physics2d.MakeBodyDef()
	sensor.Type = physics2d.StaticBody
	sensor.ShapeType = physics2d.BoxShape
	sensor.Position = physics2d.MakeVec2(100, 0)
	sensor.Width = 40
	sensor.Height = 40
	sensor.IsSensor = true
	w.CreateBody(&sensor)

	ball := w.CreateBody(dynamicCircleDef(0, 0, 20))
	w.SetBodyVelocity(ball, physics2d.MakeVec2(120, 0))

	var listener recordingListener
	w.SetContactListener(&listener)

	stepN(w, 90, testDt)

	if listener.sensors == 0 {
		t.Fatal("sensor overlap was never reported")
	}
	// The sensor must not have deflected the ball.
	v, _, _ := w.GetBodyVelocity(ball)
	if v.X < 100 {
		t.Fatalf("sensor applied an impulse: vx=%.2f", v.X)
	}
}

func TestCollisionFilterBlocksContact(t *testing.T) {
	w := physics2d.NewWorld(8)
	w.Gravity.SetZero()

	defA := dynamicCircleDef(-15, 0, 20)
	defA.CategoryBits = 0x0001
	defA.MaskBits = 0x0002
	a := w.CreateBody(defA)

	defB := dynamicCircleDef(15, 0, 20)
	defB.CategoryBits = 0x0004
	defB.MaskBits = 0x0004
	b := w.CreateBody(defB)

	w.SetBodyVelocity(a, physics2d.MakeVec2(60, 0))
	stepN(w, 30, testDt)

	// The filter rejects the pair, so a passes straight through b.
	va, _, _ := w.GetBodyVelocity(a)
	vb, _, _ := w.GetBodyVelocity(b)
	if vb.Length() != 0 {
		t.Fatalf("filtered pair still collided: vb=%.2f", vb.Length())
	}
	if va.X < 50 {
		t.Fatalf("filtered pair still collided: va.x=%.2f", va.X)
	}
}
