package physics2d

import "math"

// softness carries the spring-damper coefficients of a soft constraint,
// derived from a frequency and damping ratio per Box2D's soft constraint
// formulation.
type softness struct {
	biasRate     float64
	massScale    float64
	impulseScale float64
}

// makeSoftness converts (hertz, dampingRatio) into solver coefficients for a
// step of length h:
//
//	bias = omega / (2 * zeta + h * omega)
//	massScale = h * omega * (2 * zeta + h * omega) / (1 + h * omega * (2 * zeta + h * omega))
//	impulseScale = 1 / (1 + h * omega * (2 * zeta + h * omega))
func makeSoftness(hertz, dampingRatio, h float64) softness {
	if hertz == 0.0 {
		return softness{}
	}
	omega := 2.0 * pi * hertz
	a1 := 2.0*dampingRatio + h*omega
	a2 := h * omega * a1
	a3 := 1.0 / (1.0 + a2)
	return softness{
		biasRate:     omega / a1,
		massScale:    a2 * a3,
		impulseScale: a3,
	}
}

// cachedImpulse is the warm-start payload kept per contact point across
// steps while its body pair persists.
type cachedImpulse struct {
	normal  float64
	tangent float64
}

// pairKey builds the order-independent pair identity from two handle
// indices. Handle indices are stable across slot compaction, so the key
// survives body destruction elsewhere in the array.
func pairKey(a, b int32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}

// contactPointKey tags a pair key with the contact point index (the low
// bits; a manifold has at most two points).
func contactPointKey(key uint64, point int) uint64 {
	return key<<2 | uint64(point)
}

type contactConstraintPoint struct {
	anchorA Vec2
	anchorB Vec2

	baseSeparation float64

	normalImpulse  float64
	tangentImpulse float64

	normalMass  float64
	tangentMass float64
}

// contactConstraint is one manifold prepared for the velocity solver.
type contactConstraint struct {
	slotA int32
	slotB int32
	key   uint64

	normal      Vec2
	friction    float64
	restitution float64

	points     [maxManifoldPoints]contactConstraintPoint
	pointCount int

	soft softness
}

// makeContactConstraint precomputes anchors and effective masses for a
// manifold. Restitution is only armed when the approach velocity exceeds the
// threshold, which keeps resting contacts from jittering.
func makeContactConstraint(a, b *Body, pair broadphasePair, m *Manifold, soft softness, restitutionThreshold float64) contactConstraint {
	c := contactConstraint{
		slotA:      pair.slotA,
		slotB:      pair.slotB,
		key:        pairKey(a.Id.index, b.Id.index),
		normal:     m.Normal,
		friction:   math.Sqrt(a.Friction * b.Friction),
		pointCount: m.PointCount,
		soft:       soft,
	}

	relV := b.Velocity.Sub(a.Velocity).Dot(m.Normal)
	if relV < -restitutionThreshold {
		c.restitution = math.Max(a.Restitution, b.Restitution)
	}

	tangent := m.Normal.Skew()
	for i := 0; i < m.PointCount; i++ {
		cp := &c.points[i]
		cp.anchorA = m.Points[i].Sub(a.Position)
		cp.anchorB = m.Points[i].Sub(b.Position)
		cp.baseSeparation = -m.Penetration

		raN := cp.anchorA.Cross(m.Normal)
		rbN := cp.anchorB.Cross(m.Normal)
		kN := a.InverseMass + b.InverseMass +
			raN*raN*a.InverseInertia + rbN*rbN*b.InverseInertia +
			soft.massScale
		if kN > 0.0 {
			cp.normalMass = 1.0 / kN
		}

		raT := cp.anchorA.Cross(tangent)
		rbT := cp.anchorB.Cross(tangent)
		kT := a.InverseMass + b.InverseMass +
			raT*raT*a.InverseInertia + rbT*rbT*b.InverseInertia
		if kT > 0.0 {
			cp.tangentMass = 1.0 / kT
		}
	}
	return c
}

// applyImpulse applies P at the contact anchors, pushing A and B apart.
func (c *contactConstraint) applyImpulse(a, b *Body, ra, rb, p Vec2) {
	if a.Type == DynamicBody {
		a.Velocity.X -= p.X * a.InverseMass
		a.Velocity.Y -= p.Y * a.InverseMass
		a.AngularVelocity -= ra.Cross(p) * a.InverseInertia
	}
	if b.Type == DynamicBody {
		b.Velocity.X += p.X * b.InverseMass
		b.Velocity.Y += p.Y * b.InverseMass
		b.AngularVelocity += rb.Cross(p) * b.InverseInertia
	}
}

// warmStart seeds each constraint point with the impulse accumulated during
// the previous step, if the same pair (and point) was in contact then, and
// applies it so the solver starts near the converged solution.
func (w *World) warmStart() {
	for i := range w.constraints {
		c := &w.constraints[i]
		a := &w.bodies[c.slotA]
		b := &w.bodies[c.slotB]
		tangent := c.normal.Skew()

		for j := 0; j < c.pointCount; j++ {
			cp := &c.points[j]
			cached, ok := w.prevImpulseCache[contactPointKey(c.key, j)]
			if !ok {
				cp.normalImpulse = 0.0
				cp.tangentImpulse = 0.0
				continue
			}
			cp.normalImpulse = cached.normal
			cp.tangentImpulse = cached.tangent

			p := c.normal.Scale(cp.normalImpulse).Add(tangent.Scale(cp.tangentImpulse))
			c.applyImpulse(a, b, cp.anchorA, cp.anchorB, p)
		}
	}
}

// solveVelocityConstraints runs one sequential-impulse pass over all contact
// constraints: a soft-biased normal impulse clamped to be repulsive, then a
// friction impulse clamped by the friction cone.
func (w *World) solveVelocityConstraints() {
	for i := range w.constraints {
		c := &w.constraints[i]
		a := &w.bodies[c.slotA]
		b := &w.bodies[c.slotB]
		if !a.IsAwake && !b.IsAwake {
			continue
		}

		tangent := c.normal.Skew()
		for j := 0; j < c.pointCount; j++ {
			cp := &c.points[j]
			ra := cp.anchorA
			rb := cp.anchorB

			dv := b.Velocity.Add(CrossScalarVec(b.AngularVelocity, rb)).
				Sub(a.Velocity.Add(CrossScalarVec(a.AngularVelocity, ra)))

			// Normal impulse with soft bias and optional restitution.
			vn := dv.Dot(c.normal)
			bias := c.soft.massScale * c.soft.biasRate * cp.baseSeparation
			if c.restitution > 0.0 {
				bias -= c.restitution * vn
			}

			lambda := -cp.normalMass*(c.soft.massScale*vn+bias) - c.soft.impulseScale*cp.normalImpulse
			oldImpulse := cp.normalImpulse
			cp.normalImpulse = math.Max(oldImpulse+lambda, 0.0)
			lambda = cp.normalImpulse - oldImpulse

			c.applyImpulse(a, b, ra, rb, c.normal.Scale(lambda))

			// Friction impulse, clamped by the normal impulse.
			dv = b.Velocity.Add(CrossScalarVec(b.AngularVelocity, rb)).
				Sub(a.Velocity.Add(CrossScalarVec(a.AngularVelocity, ra)))
			lambdaT := -cp.tangentMass * dv.Dot(tangent)
			maxF := c.friction * cp.normalImpulse
			oldImpulse = cp.tangentImpulse
			cp.tangentImpulse = clampFloat(oldImpulse+lambdaT, -maxF, maxF)
			lambdaT = cp.tangentImpulse - oldImpulse

			c.applyImpulse(a, b, ra, rb, tangent.Scale(lambdaT))
		}
	}
}

// storeImpulses moves this step's accumulated impulses into the cache the
// next step will warm-start from, then swaps the maps so stale pairs are
// dropped rather than accumulating forever. The cache doubles as the
// touched-last-step record behind BeginContact, so it is maintained even
// with warm starting disabled.
func (w *World) storeImpulses() {
	for k := range w.impulseCache {
		delete(w.impulseCache, k)
	}
	for i := range w.constraints {
		c := &w.constraints[i]
		for j := 0; j < c.pointCount; j++ {
			cp := &c.points[j]
			w.impulseCache[contactPointKey(c.key, j)] = cachedImpulse{
				normal:  cp.normalImpulse,
				tangent: cp.tangentImpulse,
			}
		}
	}
	w.prevImpulseCache, w.impulseCache = w.impulseCache, w.prevImpulseCache
}

// purgeImpulseCache drops every cached impulse involving the given handle
// index from both caches.
func (w *World) purgeImpulseCache(index int32) {
	purge := func(m map[uint64]cachedImpulse) {
		for k := range m {
			pk := k >> 2
			a := int32(pk >> 32)
			b := int32(pk & 0xFFFFFFFF)
			if a == index || b == index {
				delete(m, k)
			}
		}
	}
	purge(w.impulseCache)
	purge(w.prevImpulseCache)
}

// solvePositionConstraints removes residual penetration with pseudo
// impulses. The narrowphase is re-run per pair so corrections are based on
// current positions, not the stale pre-integration manifold.
func (w *World) solvePositionConstraints() {
	for i := range w.constraints {
		c := &w.constraints[i]
		a := &w.bodies[c.slotA]
		b := &w.bodies[c.slotB]
		if !a.IsAwake && !b.IsAwake {
			continue
		}

		m, ok := collide(a, b)
		if !ok {
			continue
		}

		correction := math.Max(m.Penetration-linearSlop, 0.0) * baumgarte
		if correction <= 0.0 {
			continue
		}

		perPoint := correction / float64(m.PointCount)
		for j := 0; j < m.PointCount; j++ {
			ra := m.Points[j].Sub(a.Position)
			rb := m.Points[j].Sub(b.Position)
			raN := ra.Cross(m.Normal)
			rbN := rb.Cross(m.Normal)
			k := a.InverseMass + b.InverseMass +
				raN*raN*a.InverseInertia + rbN*rbN*b.InverseInertia
			if k <= 1e-6 {
				continue
			}

			impulse := perPoint / k
			p := m.Normal.Scale(impulse)
			if a.Type == DynamicBody {
				a.Position.X -= p.X * a.InverseMass
				a.Position.Y -= p.Y * a.InverseMass
				a.Rotation -= ra.Cross(p) * a.InverseInertia
			}
			if b.Type == DynamicBody {
				b.Position.X += p.X * b.InverseMass
				b.Position.Y += p.Y * b.InverseMass
				b.Rotation += rb.Cross(p) * b.InverseInertia
			}
		}
	}
}
