package physics2d

import "math"

// DistanceJointDef describes a joint keeping two anchor points at a fixed
// separation. A positive FrequencyHz turns the rod into a spring-damper.
// A zero or near-zero length is clamped; a zero-length rod has no axis.
type DistanceJointDef struct {
	JointDefBase

	// The natural length between the anchor points.
	Length float64

	// The mass-spring-damper frequency in Hertz. Zero disables softness.
	FrequencyHz float64

	// The damping ratio. 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeDistanceJointDef() DistanceJointDef {
	return DistanceJointDef{Length: 1.0}
}

// Initialize sets the bodies, world-space anchors and the current distance
// as the natural length.
func (def *DistanceJointDef) Initialize(w *World, bodyA, bodyB BodyId, anchorA, anchorB Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	a := w.body(bodyA)
	b := w.body(bodyB)
	if a == nil || b == nil {
		return
	}
	def.LocalAnchorA = MakeRot(a.Rotation).ApplyInverse(anchorA.Sub(a.Position))
	def.LocalAnchorB = MakeRot(b.Rotation).ApplyInverse(anchorB.Sub(b.Position))
	def.Length = anchorB.Sub(anchorA).Length()
}

func (def *DistanceJointDef) defBase() *JointDefBase { return &def.JointDefBase }

func (def *DistanceJointDef) makeJoint() Joint {
	return &distanceJoint{
		jointBase:    jointBase{typ: DistanceJointType},
		length:       math.Max(def.Length, minJointLength),
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

// C = norm(pB + rB - pA - rA) - L
// u = (pB + rB - pA - rA) / norm(...)
// Cdot = dot(u, vB + cross(wB, rB) - vA - cross(wA, rA))
// J = [-u -cross(rA, u) u cross(rB, u)]
// K = J * invM * JT = mA + mB + iA * cross(rA, u)^2 + iB * cross(rB, u)^2
type distanceJoint struct {
	jointBase

	length       float64
	frequencyHz  float64
	dampingRatio float64

	impulse float64

	// Solver temp
	u     Vec2
	rA    Vec2
	rB    Vec2
	mass  float64
	gamma float64
	bias  float64
}

func (j *distanceJoint) initVelocityConstraints(w *World, dt float64) {
	if !j.resolve(w) {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]

	j.rA = MakeRot(a.Rotation).Apply(j.localAnchorA)
	j.rB = MakeRot(b.Rotation).Apply(j.localAnchorB)
	j.u = b.Position.Add(j.rB).Sub(a.Position.Add(j.rA))

	// Handle singularity.
	length := j.u.Normalize()
	if length == 0.0 {
		j.u = Vec2{X: 1, Y: 0}
		length = minJointLength
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := a.InverseMass + b.InverseMass + a.InverseInertia*crA*crA + b.InverseInertia*crB*crB

	j.gamma = 0.0
	j.bias = 0.0
	if j.frequencyHz > 0.0 {
		c := length - j.length

		omega := 2.0 * pi * j.frequencyHz
		var effMass float64
		if invMass != 0.0 {
			effMass = 1.0 / invMass
		}
		// Damping and spring coefficients, then the soft-constraint gamma.
		d := 2.0 * effMass * j.dampingRatio * omega
		k := effMass * omega * omega

		j.gamma = dt * (d + dt*k)
		if j.gamma != 0.0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * dt * k * j.gamma
		invMass += j.gamma
	}
	if invMass != 0.0 {
		j.mass = 1.0 / invMass
	} else {
		j.mass = 0.0
	}

	if w.EnableWarmStarting {
		p := j.u.Scale(j.impulse)
		j.applyImpulse(a, b, p)
	} else {
		j.impulse = 0.0
	}
}

func (j *distanceJoint) applyImpulse(a, b *Body, p Vec2) {
	a.Velocity = a.Velocity.Sub(p.Scale(a.InverseMass))
	a.AngularVelocity -= a.InverseInertia * j.rA.Cross(p)
	b.Velocity = b.Velocity.Add(p.Scale(b.InverseMass))
	b.AngularVelocity += b.InverseInertia * j.rB.Cross(p)
}

func (j *distanceJoint) solveVelocityConstraints(w *World) {
	if !j.enabled {
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}

	vpA := a.Velocity.Add(CrossScalarVec(a.AngularVelocity, j.rA))
	vpB := b.Velocity.Add(CrossScalarVec(b.AngularVelocity, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	j.applyImpulse(a, b, j.u.Scale(impulse))
}

func (j *distanceJoint) solvePositionConstraints(w *World) {
	if !j.enabled || j.frequencyHz > 0.0 {
		// Springs do not need positional correction.
		return
	}
	a := &w.bodies[j.slotA]
	b := &w.bodies[j.slotB]
	if !a.IsAwake && !b.IsAwake {
		return
	}

	rA := MakeRot(a.Rotation).Apply(j.localAnchorA)
	rB := MakeRot(b.Rotation).Apply(j.localAnchorB)
	u := b.Position.Add(rB).Sub(a.Position.Add(rA))

	length := u.Normalize()
	c := clampFloat(length-j.length, -0.2, 0.2)

	crA := rA.Cross(u)
	crB := rB.Cross(u)
	invMass := a.InverseMass + b.InverseMass + a.InverseInertia*crA*crA + b.InverseInertia*crB*crB
	if invMass == 0.0 {
		return
	}

	impulse := -c / invMass
	p := u.Scale(impulse)

	a.Position = a.Position.Sub(p.Scale(a.InverseMass))
	a.Rotation -= a.InverseInertia * rA.Cross(p)
	b.Position = b.Position.Add(p.Scale(b.InverseMass))
	b.Rotation += b.InverseInertia * rB.Cross(p)
}
