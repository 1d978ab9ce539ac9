package physics2d

import "math"

// RevoluteJointDef describes a hinge: the two bodies share an anchor point
// and rotate freely about it, optionally limited to an angle range and
// driven by a motor.
type RevoluteJointDef struct {
	JointDefBase

	// ReferenceAngle is bodyB's angle minus bodyA's angle in the joint's
	// zero position.
	ReferenceAngle float64

	EnableLimit bool
	LowerAngle  float64
	UpperAngle  float64

	EnableMotor    bool
	MotorSpeed     float64
	MaxMotorTorque float64
}

func MakeRevoluteJointDef() RevoluteJointDef {
	return RevoluteJointDef{}
}

// Initialize sets the bodies and a shared world-space anchor.
func (def *RevoluteJointDef) Initialize(w *World, bodyA, bodyB BodyId, anchor Vec2) {
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

func (def *RevoluteJointDef) defBase() *JointDefBase { return &def.JointDefBase }

func (def *RevoluteJointDef) makeJoint() Joint {
	return &revoluteJoint{
		jointBase:      jointBase{typ: RevoluteJointType},
		referenceAngle: def.ReferenceAngle,
		enableLimit:    def.EnableLimit,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		enableMotor:    def.EnableMotor,
		motorSpeed:     def.MotorSpeed,
		maxMotorTorque: def.MaxMotorTorque,
	}
}

// Point-to-point constraint
// C = pB + rB - pA - rA
// Cdot = vB + cross(wB, rB) - vA - cross(wA, rA)
// J = [-I -skew(rA) I skew(rB)]
//
// Motor/limit constraint
// Cdot = wB - wA
// J = [0 0 -1 0 0 1]
type revoluteJoint struct {
	jointBase

	referenceAngle float64

	enableLimit bool
	lowerAngle  float64
	upperAngle  float64

	enableMotor    bool
	motorSpeed     float64
	maxMotorTorque float64

	impulse      Vec2
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64

	// Solver temp
	rA        Vec2
	rB        Vec2
	k         Mat22
	axialMass float64
	invH      float64
}

func (j *revoluteJoint) initVelocityConstraints(w *World, dt float64) {
	if !j.resolve(w) {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	j.invH = 1.0 / dt

	j.rA = MakeRot(a.Rotation).Apply(j.localAnchorA)
	j.rB = MakeRot(b.Rotation).Apply(j.localAnchorB)

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

	j.k.Ex.X = mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	j.k.Ex.Y = -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	j.k.Ey.X = j.k.Ex.Y
	j.k.Ey.Y = mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X

	if iA+iB > 0.0 {
		j.axialMass = 1.0 / (iA + iB)
	} else {
		j.axialMass = 0.0
	}

	if !j.enableMotor {
		j.motorImpulse = 0.0
	}
	if !j.enableLimit {
		j.lowerImpulse = 0.0
		j.upperImpulse = 0.0
	}

	if w.EnableWarmStarting {
		axial := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		a.Velocity = a.Velocity.Sub(j.impulse.Scale(mA))
		a.AngularVelocity -= iA * (j.rA.Cross(j.impulse) + axial)
		b.Velocity = b.Velocity.Add(j.impulse.Scale(mB))
		b.AngularVelocity += iB * (j.rB.Cross(j.impulse) + axial)
	} else {
		j.impulse.SetZero()
		j.motorImpulse = 0.0
		j.lowerImpulse = 0.0
		j.upperImpulse = 0.0
	}
}

func (j *revoluteJoint) solveVelocityConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}
	iA, iB := a.InverseInertia, b.InverseInertia

	// Motor.
	if j.enableMotor {
		cdot := b.AngularVelocity - a.AngularVelocity - j.motorSpeed
		impulse := -j.axialMass * cdot
		oldImpulse := j.motorImpulse
		maxImpulse := j.maxMotorTorque / j.invH
		j.motorImpulse = clampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - oldImpulse

		a.AngularVelocity -= iA * impulse
		b.AngularVelocity += iB * impulse
	}

	// Limits.
	if j.enableLimit {
		angle := b.Rotation - a.Rotation - j.referenceAngle

		// Lower limit: C = angle - lower >= 0.
		{
			c := angle - j.lowerAngle
			bias := math.Min(c, 0.0) * j.invH * baumgarte
			cdot := b.AngularVelocity - a.AngularVelocity
			impulse := -j.axialMass * (cdot + bias)
			oldImpulse := j.lowerImpulse
			j.lowerImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.lowerImpulse - oldImpulse

			a.AngularVelocity -= iA * impulse
			b.AngularVelocity += iB * impulse
		}

		// Upper limit: C = upper - angle >= 0.
		{
			c := j.upperAngle - angle
			bias := math.Min(c, 0.0) * j.invH * baumgarte
			cdot := a.AngularVelocity - b.AngularVelocity
			impulse := -j.axialMass * (cdot + bias)
			oldImpulse := j.upperImpulse
			j.upperImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.upperImpulse - oldImpulse

			a.AngularVelocity += iA * impulse
			b.AngularVelocity -= iB * impulse
		}
	}

	// Point constraint.
	cdot := b.Velocity.Add(CrossScalarVec(b.AngularVelocity, j.rB)).
		Sub(a.Velocity.Add(CrossScalarVec(a.AngularVelocity, j.rA)))
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	a.Velocity = a.Velocity.Sub(impulse.Scale(a.InverseMass))
	a.AngularVelocity -= iA * j.rA.Cross(impulse)
	b.Velocity = b.Velocity.Add(impulse.Scale(b.InverseMass))
	b.AngularVelocity += iB * j.rB.Cross(impulse)
}

func (j *revoluteJoint) solvePositionConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}

	// Angular limit correction.
	if j.enableLimit {
		angle := b.Rotation - a.Rotation - j.referenceAngle
		var c float64
		if angle < j.lowerAngle {
			c = angle - j.lowerAngle
		} else if angle > j.upperAngle {
			c = angle - j.upperAngle
		}
		if c != 0.0 && j.axialMass > 0.0 {
			impulse := -j.axialMass * c * baumgarte
			a.Rotation -= a.InverseInertia * impulse
			b.Rotation += b.InverseInertia * impulse
		}
	}

	// Point correction.
	rA := MakeRot(a.Rotation).Apply(j.localAnchorA)
	rB := MakeRot(b.Rotation).Apply(j.localAnchorB)
	c := b.Position.Add(rB).Sub(a.Position.Add(rA))

	mA, mB := a.InverseMass, b.InverseMass
	iA, iB := a.InverseInertia, b.InverseInertia

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
