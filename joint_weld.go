package physics2d

// WeldJointDef locks the relative position and orientation of two bodies.
// A positive FrequencyHz softens the angular lock into a spring-damper,
// which is also the numerically safer configuration: a perfectly rigid weld
// fights the iterative solver in long chains.
type WeldJointDef struct {
	JointDefBase

	// ReferenceAngle is bodyB's angle minus bodyA's angle in the welded
	// pose.
	ReferenceAngle float64

	// The spring frequency in Hertz. Zero makes the weld fully rigid.
	FrequencyHz float64

	// The damping ratio. 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeWeldJointDef() WeldJointDef {
	return WeldJointDef{}
}

// Initialize sets the bodies and a shared world-space anchor.
func (def *WeldJointDef) Initialize(w *World, bodyA, bodyB BodyId, anchor Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	a := w.body(bodyA)
	b := w.body(bodyB)
	if a == nil || b == nil {
		return
	}
	def.LocalAnchorA = MakeRot(a.Rotation).ApplyInverse(anchor.Sub(a.Position))
	def.LocalAnchorB = MakeRot(b.Rotation).ApplyInverse(anchor.Sub(b.Position))
	def.ReferenceAngle = b.Rotation - a.Rotation
}

func (def *WeldJointDef) defBase() *JointDefBase { return &def.JointDefBase }

func (def *WeldJointDef) makeJoint() Joint {
	return &weldJoint{
		jointBase:      jointBase{typ: WeldJointType},
		referenceAngle: def.ReferenceAngle,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

// Linear constraint: C = pB + rB - pA - rA, solved as a 2x2 block.
// Angular constraint: C = aB - aA - referenceAngle, optionally softened with
// the gamma/bias spring formulation.
type weldJoint struct {
	jointBase

	referenceAngle float64
	frequencyHz    float64
	dampingRatio   float64

	linearImpulse  Vec2
	angularImpulse float64

	// Solver temp
	rA, rB      Vec2
	linearK     Mat22
	angularMass float64
	gamma       float64
	bias        float64
}

func (j *weldJoint) initVelocityConstraints(w *World, dt float64) {
	if !j.resolve(w) {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]

	j.rA = MakeRot(a.Rotation).Apply(j.localAnchorA)
	j.rB = MakeRot(b.Rotation).Apply(j.localAnchorB)

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	j.linearK.Ex.X = mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	j.linearK.Ex.Y = -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	j.linearK.Ey.X = j.linearK.Ex.Y
	j.linearK.Ey.Y = mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X

	angularK := iA + iB
	j.gamma = 0.0
	j.bias = 0.0
	if j.frequencyHz > 0.0 && angularK > 0.0 {
		c := b.Rotation - a.Rotation - j.referenceAngle

		omega := 2.0 * pi * j.frequencyHz
		m := 1.0 / angularK
		d := 2.0 * m * j.dampingRatio * omega
		k := m * omega * omega

		j.gamma = dt * (d + dt*k)
		if j.gamma != 0.0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * dt * k * j.gamma
		angularK += j.gamma
	}
	if angularK > 0.0 {
		j.angularMass = 1.0 / angularK
	} else {
		j.angularMass = 0.0
	}

	if w.EnableWarmStarting {
		a.Velocity = a.Velocity.Sub(j.linearImpulse.Scale(mA))
		a.AngularVelocity -= iA * (j.rA.Cross(j.linearImpulse) + j.angularImpulse)
		b.Velocity = b.Velocity.Add(j.linearImpulse.Scale(mB))
		b.AngularVelocity += iB * (j.rB.Cross(j.linearImpulse) + j.angularImpulse)
	} else {
		j.linearImpulse.SetZero()
		j.angularImpulse = 0.0
	}
}

func (j *weldJoint) solveVelocityConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}
	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	// Angular row first so the linear block sees the corrected spin.
	{
		cdot := b.AngularVelocity - a.AngularVelocity
		impulse := -j.angularMass * (cdot + j.bias + j.gamma*j.angularImpulse)
		j.angularImpulse += impulse

		a.AngularVelocity -= iA * impulse
		b.AngularVelocity += iB * impulse
	}

	{
		cdot := b.Velocity.Add(CrossScalarVec(b.AngularVelocity, j.rB)).
			Sub(a.Velocity.Add(CrossScalarVec(a.AngularVelocity, j.rA)))
		impulse := j.linearK.Solve(cdot.Neg())
		j.linearImpulse = j.linearImpulse.Add(impulse)

		a.Velocity = a.Velocity.Sub(impulse.Scale(mA))
		a.AngularVelocity -= iA * j.rA.Cross(impulse)
		b.Velocity = b.Velocity.Add(impulse.Scale(mB))
		b.AngularVelocity += iB * j.rB.Cross(impulse)
	}
}

func (j *weldJoint) solvePositionConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	// Rigid welds also correct angular drift; springs leave it to the
	// velocity solver.
	if j.frequencyHz == 0.0 && iA+iB > 0.0 {
		c := b.Rotation - a.Rotation - j.referenceAngle
		impulse := -c / (iA + iB)
		a.Rotation -= iA * impulse
		b.Rotation += iB * impulse
	}

	rA := MakeRot(a.Rotation).Apply(j.localAnchorA)
	rB := MakeRot(b.Rotation).Apply(j.localAnchorB)
	c := b.Position.Add(rB).Sub(a.Position.Add(rA))

	var k Mat22
	k.Ex.X = mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y
	k.Ex.Y = -iA*rA.X*rA.Y - iB*rB.X*rB.Y
	k.Ey.X = k.Ex.Y
	k.Ey.Y = mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X

	impulse := k.Solve(c.Neg())

	a.Position = a.Position.Sub(impulse.Scale(mA))
	a.Rotation -= iA * rA.Cross(impulse)
	b.Position = b.Position.Add(impulse.Scale(mB))
	b.Rotation += iB * rB.Cross(impulse)
}
