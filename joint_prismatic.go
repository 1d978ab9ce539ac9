package physics2d

import "math"

// PrismaticJointDef describes a slider: relative motion is restricted to a
// single axis fixed in bodyA, with optional translation limits and a motor
// pushing along the axis.
type PrismaticJointDef struct {
	JointDefBase

	// The slide axis in bodyA's local frame. Must be non-zero; it is
	// normalized at creation.
	LocalAxisA Vec2

	// ReferenceAngle is bodyB's angle minus bodyA's angle in the joint's
	// zero position; the joint locks relative rotation to it.
	ReferenceAngle float64

	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64

	EnableMotor   bool
	MotorSpeed    float64
	MaxMotorForce float64
}

func MakePrismaticJointDef() PrismaticJointDef {
	return PrismaticJointDef{LocalAxisA: Vec2{X: 1, Y: 0}}
}

// Initialize sets the bodies, a shared world anchor and a world axis.
func (def *PrismaticJointDef) Initialize(w *World, bodyA, bodyB BodyId, anchor, axis Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	a := w.body(bodyA)
	b := w.body(bodyB)
	if a == nil || b == nil {
		return
	}
	def.LocalAnchorA = MakeRot(a.Rotation).ApplyInverse(anchor.Sub(a.Position))
	def.LocalAnchorB = MakeRot(b.Rotation).ApplyInverse(anchor.Sub(b.Position))
	def.LocalAxisA = MakeRot(a.Rotation).ApplyInverse(axis)
	def.ReferenceAngle = b.Rotation - a.Rotation
}

func (def *PrismaticJointDef) defBase() *JointDefBase { return &def.JointDefBase }

func (def *PrismaticJointDef) makeJoint() Joint {
	axis := def.LocalAxisA
	if axis.Normalize() == 0.0 {
		axis = Vec2{X: 1, Y: 0}
	}
	return &prismaticJoint{
		jointBase:        jointBase{typ: PrismaticJointType},
		localAxisA:       axis,
		referenceAngle:   def.ReferenceAngle,
		enableLimit:      def.EnableLimit,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		enableMotor:      def.EnableMotor,
		motorSpeed:       def.MotorSpeed,
		maxMotorForce:    def.MaxMotorForce,
	}
}

// Perpendicular constraint
// C = dot(perp, d)
// Cdot = dot(perp, vB - vA) + s2 * wB - s1 * wA
//
// Angular constraint
// C = aB - aA - referenceAngle
// Cdot = wB - wA
//
// Axial motor/limit
// Cdot = dot(axis, vB - vA) + a2 * wB - a1 * wA
type prismaticJoint struct {
	jointBase

	localAxisA     Vec2
	referenceAngle float64

	enableLimit      bool
	lowerTranslation float64
	upperTranslation float64

	enableMotor   bool
	motorSpeed    float64
	maxMotorForce float64

	impulse      Vec2 // (perpendicular, angular)
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64

	// Solver temp
	axis, perp Vec2
	s1, s2     float64
	a1, a2     float64
	k          Mat22
	axialMass  float64
	invH       float64
}

func (j *prismaticJoint) initVelocityConstraints(w *World, dt float64) {
	if !j.resolve(w) {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	j.invH = 1.0 / dt

	qA := MakeRot(a.Rotation)
	qB := MakeRot(b.Rotation)

	rA := qA.Apply(j.localAnchorA)
	rB := qB.Apply(j.localAnchorB)
	d := b.Position.Add(rB).Sub(a.Position.Add(rA))

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	j.axis = qA.Apply(j.localAxisA)
	j.a1 = d.Add(rA).Cross(j.axis)
	j.a2 = rB.Cross(j.axis)

	axialK := mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	if axialK > 0.0 {
		j.axialMass = 1.0 / axialK
	} else {
		j.axialMass = 0.0
	}

	j.perp = j.axis.Skew()
	j.s1 = d.Add(rA).Cross(j.perp)
	j.s2 = rB.Cross(j.perp)

	k11 := mA + mB + iA*j.s1*j.s1 + iB*j.s2*j.s2
	k12 := iA*j.s1 + iB*j.s2
	k22 := iA + iB
	if k22 == 0.0 {
		// Two bodies with fixed rotation: the angular row is meaningless.
		k22 = 1.0
	}
	j.k.Ex = Vec2{X: k11, Y: k12}
	j.k.Ey = Vec2{X: k12, Y: k22}

	if !j.enableMotor {
		j.motorImpulse = 0.0
	}
	if !j.enableLimit {
		j.lowerImpulse = 0.0
		j.upperImpulse = 0.0
	}

	if w.EnableWarmStarting {
		axial := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		p := j.perp.Scale(j.impulse.X).Add(j.axis.Scale(axial))
		lA := j.impulse.X*j.s1 + j.impulse.Y + axial*j.a1
		lB := j.impulse.X*j.s2 + j.impulse.Y + axial*j.a2

		a.Velocity = a.Velocity.Sub(p.Scale(mA))
		a.AngularVelocity -= iA * lA
		b.Velocity = b.Velocity.Add(p.Scale(mB))
		b.AngularVelocity += iB * lB
	} else {
		j.impulse.SetZero()
		j.motorImpulse = 0.0
		j.lowerImpulse = 0.0
		j.upperImpulse = 0.0
	}
}

func (j *prismaticJoint) solveVelocityConstraints(w *World) {
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

	axialCdot := func() float64 {
		return j.axis.Dot(b.Velocity.Sub(a.Velocity)) + j.a2*b.AngularVelocity - j.a1*a.AngularVelocity
	}
	applyAxial := func(impulse float64) {
		p := j.axis.Scale(impulse)
		a.Velocity = a.Velocity.Sub(p.Scale(mA))
		a.AngularVelocity -= iA * impulse * j.a1
		b.Velocity = b.Velocity.Add(p.Scale(mB))
		b.AngularVelocity += iB * impulse * j.a2
	}

	// Motor.
	if j.enableMotor {
		impulse := -j.axialMass * (axialCdot() - j.motorSpeed)
		oldImpulse := j.motorImpulse
		maxImpulse := j.maxMotorForce / j.invH
		j.motorImpulse = clampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		applyAxial(j.motorImpulse - oldImpulse)
	}

	// Limits.
	if j.enableLimit {
		qA := MakeRot(a.Rotation)
		qB := MakeRot(b.Rotation)
		rA := qA.Apply(j.localAnchorA)
		rB := qB.Apply(j.localAnchorB)
		translation := j.axis.Dot(b.Position.Add(rB).Sub(a.Position.Add(rA)))

		// Lower limit: C = translation - lower >= 0.
		{
			c := translation - j.lowerTranslation
			bias := math.Min(c, 0.0) * j.invH * baumgarte
			impulse := -j.axialMass * (axialCdot() + bias)
			oldImpulse := j.lowerImpulse
			j.lowerImpulse = math.Max(oldImpulse+impulse, 0.0)
			applyAxial(j.lowerImpulse - oldImpulse)
		}

		// Upper limit: C = upper - translation >= 0.
		{
			c := j.upperTranslation - translation
			bias := math.Min(c, 0.0) * j.invH * baumgarte
			impulse := -j.axialMass * (-axialCdot() + bias)
			oldImpulse := j.upperImpulse
			j.upperImpulse = math.Max(oldImpulse+impulse, 0.0)
			applyAxial(-(j.upperImpulse - oldImpulse))
		}
	}

	// Perpendicular and angular rows, solved as a block.
	cdot := Vec2{
		X: j.perp.Dot(b.Velocity.Sub(a.Velocity)) + j.s2*b.AngularVelocity - j.s1*a.AngularVelocity,
		Y: b.AngularVelocity - a.AngularVelocity,
	}
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	p := j.perp.Scale(impulse.X)
	lA := impulse.X*j.s1 + impulse.Y
	lB := impulse.X*j.s2 + impulse.Y

	a.Velocity = a.Velocity.Sub(p.Scale(mA))
	a.AngularVelocity -= iA * lA
	b.Velocity = b.Velocity.Add(p.Scale(mB))
	b.AngularVelocity += iB * lB
}

func (j *prismaticJoint) solvePositionConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}

	qA := MakeRot(a.Rotation)
	qB := MakeRot(b.Rotation)
	rA := qA.Apply(j.localAnchorA)
	rB := qB.Apply(j.localAnchorB)
	d := b.Position.Add(rB).Sub(a.Position.Add(rA))

	axis := qA.Apply(j.localAxisA)
	perp := axis.Skew()

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)
	a1 := d.Add(rA).Cross(axis)
	a2 := rB.Cross(axis)

	// Perpendicular and angular drift.
	c := Vec2{
		X: perp.Dot(d),
		Y: b.Rotation - a.Rotation - j.referenceAngle,
	}

	// Translation limit drift.
	var axialC float64
	if j.enableLimit {
		translation := axis.Dot(d)
		if translation < j.lowerTranslation {
			axialC = translation - j.lowerTranslation
		} else if translation > j.upperTranslation {
			axialC = translation - j.upperTranslation
		}
	}

	k11 := mA + mB + iA*s1*s1 + iB*s2*s2
	k12 := iA*s1 + iB*s2
	k22 := iA + iB
	if k22 == 0.0 {
		k22 = 1.0
	}
	k := Mat22{Ex: Vec2{X: k11, Y: k12}, Ey: Vec2{X: k12, Y: k22}}
	impulse := k.Solve(c.Neg())

	p := perp.Scale(impulse.X)
	lA := impulse.X*s1 + impulse.Y
	lB := impulse.X*s2 + impulse.Y

	if axialC != 0.0 {
		axialK := mA + mB + iA*a1*a1 + iB*a2*a2
		if axialK > 0.0 {
			axialImpulse := -axialC * baumgarte / axialK
			p = p.Add(axis.Scale(axialImpulse))
			lA += axialImpulse * a1
			lB += axialImpulse * a2
		}
	}

	a.Position = a.Position.Sub(p.Scale(mA))
	a.Rotation -= iA * lA
	b.Position = b.Position.Add(p.Scale(mB))
	b.Rotation += iB * lB
}
