package physics2d

// World owns every fixed-capacity store of the simulation. All backing
// arrays are allocated once in NewWorld and never resized; creation calls
// fail with null handles when a pool is exhausted.
type World struct {
	// Global tuning. Safe to change between Step calls.
	Gravity              Vec2
	VelocityIterations   int
	PositionIterations   int
	EnableWarmStarting   bool
	ContactHertz         float64
	ContactDampingRatio  float64
	RestitutionThreshold float64
	MaxLinearVelocity    float64

	bodies    []Body
	bodyCount int
	bodySlots slotTable

	joints     []Joint
	jointCount int
	jointSlots slotTable

	softBodies    []SoftBody
	softBodyCount int
	softSlots     slotTable

	tree *dynamicTree

	// Per-step scratch, preallocated.
	pairs       []broadphasePair
	constraints []contactConstraint

	// Warm-start impulse caches keyed by contact-point identity. The caches
	// are swapped each step so impulses persist exactly as long as their
	// body pair keeps touching.
	impulseCache     map[uint64]cachedImpulse
	prevImpulseCache map[uint64]cachedImpulse

	island unionFind

	listener ContactListener
}

// NewWorld allocates a world with room for maxBodies bodies. Returns nil if
// the capacity is non-positive or above the platform limit; a nil world is
// the creation-failure sentinel and every method on it is a no-op.
func NewWorld(maxBodies int) *World {
	if maxBodies <= 0 || maxBodies > maxWorldBodies {
		return nil
	}

	maxJoints := maxBodies
	if maxJoints > 128 {
		maxJoints = 128
	}
	maxSoftBodies := 32
	maxPairs := maxBodies * 8
	maxConstraints := maxBodies * 4

	w := &World{
		Gravity:              Vec2{X: 0, Y: defaultGravityY},
		VelocityIterations:   defaultVelocityIterations,
		PositionIterations:   defaultPositionIterations,
		EnableWarmStarting:   true,
		ContactHertz:         defaultContactHertz,
		ContactDampingRatio:  defaultContactDampingRatio,
		RestitutionThreshold: defaultRestitutionThreshold,
		MaxLinearVelocity:    defaultMaxLinearVelocity,

		bodies:    make([]Body, maxBodies),
		bodySlots: makeSlotTable(maxBodies),

		joints:     make([]Joint, maxJoints),
		jointSlots: makeSlotTable(maxJoints),

		softBodies: make([]SoftBody, maxSoftBodies),
		softSlots:  makeSlotTable(maxSoftBodies),

		tree: newDynamicTree(2 * maxBodies),

		pairs:       make([]broadphasePair, 0, maxPairs),
		constraints: make([]contactConstraint, 0, maxConstraints),

		impulseCache:     make(map[uint64]cachedImpulse),
		prevImpulseCache: make(map[uint64]cachedImpulse),
	}
	w.island.init(maxBodies)
	return w
}

// Destroy releases every store. The world must not be used afterwards. This
// exists for symmetry with the creation call; the garbage collector would
// reclaim everything anyway.
func (w *World) Destroy() {
	if w == nil {
		return
	}
	w.bodies = nil
	w.joints = nil
	w.softBodies = nil
	w.tree = nil
	w.pairs = nil
	w.constraints = nil
	w.impulseCache = nil
	w.prevImpulseCache = nil
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	if w == nil {
		return 0
	}
	return w.bodyCount
}

// BodyCapacity returns the fixed body capacity.
func (w *World) BodyCapacity() int {
	if w == nil {
		return 0
	}
	return len(w.bodies)
}

// JointCount returns the number of live joints.
func (w *World) JointCount() int {
	if w == nil {
		return 0
	}
	return w.jointCount
}

// SetContactListener installs l. Pass nil to remove it.
func (w *World) SetContactListener(l ContactListener) {
	if w == nil {
		return
	}
	w.listener = l
}

// Step advances the simulation by dt seconds: soft bodies, broadphase,
// narrowphase, velocity solve with joints interleaved, integration, then
// positional correction. It runs to completion on the calling goroutine and
// performs a bounded amount of work; a non-positive dt is a no-op.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0.0 {
		return
	}

	w.stepSoftBodies(dt)

	if w.bodyCount == 0 {
		return
	}

	w.updateBroadphase()
	w.buildContactConstraints(dt)
	w.buildIslands()
	w.integrateVelocities(dt)

	for i := 0; i < w.jointCount; i++ {
		w.joints[i].initVelocityConstraints(w, dt)
	}
	if w.EnableWarmStarting {
		w.warmStart()
	}
	for iter := 0; iter < w.VelocityIterations; iter++ {
		w.solveVelocityConstraints()
		for i := 0; i < w.jointCount; i++ {
			w.joints[i].solveVelocityConstraints(w)
		}
	}
	w.storeImpulses()

	w.integratePositions(dt)

	for iter := 0; iter < w.PositionIterations; iter++ {
		w.solvePositionConstraints()
		for i := 0; i < w.jointCount; i++ {
			w.joints[i].solvePositionConstraints(w)
		}
	}
}

// updateBroadphase refreshes the proxies of every non-static body and resets
// the per-step contact counters.
func (w *World) updateBroadphase() {
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		b.CollisionCount = 0
		b.IslandId = nullIndex
		if b.Type == StaticBody {
			continue
		}
		w.tree.moveProxy(b.proxyId, b.aabb())
	}
}

// buildContactConstraints runs the narrowphase over the broadphase pair set
// and emits solver constraints. Sensors report overlaps through the listener
// but never produce a constraint.
func (w *World) buildContactConstraints(dt float64) {
	w.pairs = w.tree.queryPairs(w.pairs)
	w.constraints = w.constraints[:0]

	soft := makeSoftness(w.ContactHertz, w.ContactDampingRatio, dt)

	for _, pair := range w.pairs {
		if len(w.constraints) == cap(w.constraints) {
			break
		}
		a := &w.bodies[pair.slotA]
		b := &w.bodies[pair.slotB]

		if a.Type == StaticBody && b.Type == StaticBody {
			continue
		}
		if !shouldCollide(a, b) {
			continue
		}

		m, ok := collide(a, b)
		if !ok {
			continue
		}

		a.CollisionCount++
		b.CollisionCount++

		if a.IsSensor || b.IsSensor {
			if w.listener != nil {
				w.listener.SensorOverlap(a.Id, b.Id)
			}
			continue
		}

		key := pairKey(a.Id.index, b.Id.index)
		if w.listener != nil {
			if _, seen := w.prevImpulseCache[contactPointKey(key, 0)]; !seen {
				w.listener.BeginContact(a.Id, b.Id)
			}
		}

		// A fresh contact wakes a sleeping body when the other side is
		// moving; two sleeping bodies stay asleep.
		if a.IsAwake || b.IsAwake {
			if b.Type == DynamicBody {
				b.wake()
			}
			if a.Type == DynamicBody {
				a.wake()
			}
		}

		w.constraints = append(w.constraints, makeContactConstraint(a, b, pair, &m, soft, w.RestitutionThreshold))
	}
}

// buildIslands groups dynamic awake bodies connected through contacts or
// joints with union-find, rebuilt from scratch every step.
func (w *World) buildIslands() {
	w.island.reset(w.bodyCount)

	for i := range w.constraints {
		c := &w.constraints[i]
		a := &w.bodies[c.slotA]
		b := &w.bodies[c.slotB]
		if a.Type == DynamicBody && b.Type == DynamicBody {
			w.island.union(int(c.slotA), int(c.slotB))
		}
	}
	for i := 0; i < w.jointCount; i++ {
		base := w.joints[i].base()
		slotA := w.bodySlots.lookup(base.bodyA.index, base.bodyA.generation)
		slotB := w.bodySlots.lookup(base.bodyB.index, base.bodyB.generation)
		if slotA == nullIndex || slotB == nullIndex {
			continue
		}
		if w.bodies[slotA].Type == DynamicBody && w.bodies[slotB].Type == DynamicBody {
			w.island.union(int(slotA), int(slotB))
		}
	}

	for i := 0; i < w.bodyCount; i++ {
		if w.bodies[i].Type == DynamicBody {
			w.bodies[i].IslandId = w.island.find(i)
		}
	}
}

// integrateVelocities applies gravity, accumulated forces and damping, then
// handles per-island sleeping: an island goes to sleep only once every
// member has been at rest past the sleep time.
func (w *World) integrateVelocities(dt float64) {
	// First pass: rest accounting per body.
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		if b.Type != DynamicBody {
			continue
		}
		resting := b.Velocity.LengthSquared() < linearSleepToleranceSq &&
			absFloat(b.AngularVelocity) < angularSleepTolerance &&
			b.Force.X == 0 && b.Force.Y == 0 && b.Torque == 0
		if resting {
			b.SleepTime += dt
		} else {
			b.wake()
		}
	}

	// Second pass: island sleep decision. The minimum rest time over the
	// island gates the whole group, so one restless body keeps its island
	// awake.
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		if b.Type != DynamicBody {
			continue
		}
		w.island.accumulateMinSleep(i, b.SleepTime)
	}
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		if b.Type != DynamicBody || !b.IsAwake {
			continue
		}
		if w.island.minSleepOf(i) > timeToSleep {
			b.IsAwake = false
			b.Velocity.SetZero()
			b.AngularVelocity = 0.0
		}
	}

	// Third pass: integration of the awake set.
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		if b.Type == StaticBody || !b.IsAwake {
			continue
		}
		if b.Type == DynamicBody {
			b.Velocity.X += (w.Gravity.X + b.Force.X*b.InverseMass) * dt
			b.Velocity.Y += (w.Gravity.Y + b.Force.Y*b.InverseMass) * dt
			b.AngularVelocity += b.Torque * b.InverseInertia * dt

			b.Velocity.X *= velocityDamping
			b.Velocity.Y *= velocityDamping
			b.AngularVelocity *= velocityDamping
		}
		b.Force.SetZero()
		b.Torque = 0.0
	}
}

// integratePositions moves awake bodies by their velocities, clamping the
// linear velocity to the world cap first. Bullets are exempt from the clamp.
func (w *World) integratePositions(dt float64) {
	capSq := w.MaxLinearVelocity * w.MaxLinearVelocity
	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]
		if b.Type == StaticBody || !b.IsAwake {
			continue
		}
		if !b.IsBullet && b.Velocity.LengthSquared() > capSq {
			scale := w.MaxLinearVelocity / b.Velocity.Length()
			b.Velocity = b.Velocity.Scale(scale)
		}
		b.Position.X += b.Velocity.X * dt
		b.Position.Y += b.Velocity.Y * dt
		b.Rotation += b.AngularVelocity * dt
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
