package physics2d

import "math"

type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

type ShapeType int

const (
	CircleShape ShapeType = iota
	BoxShape
)

// Body is a rigid-body record in the world's flat array. Field order matches
// the binary layout consumed on the engine side; do not reorder.
type Body struct {
	Id        BodyId
	Type      BodyType
	ShapeType ShapeType

	Position Vec2
	Rotation float64

	Velocity        Vec2
	AngularVelocity float64

	Force  Vec2
	Torque float64

	Mass           float64
	InverseMass    float64
	Inertia        float64
	InverseInertia float64

	Restitution float64
	Friction    float64

	Width  float64
	Height float64
	Radius float64

	IsSensor bool
	IsBullet bool

	CollisionCount int

	SleepTime float64

	CategoryBits uint32
	MaskBits     uint32

	proxyId  int
	IsAwake  bool
	IslandId int
}

// BodyDef holds creation parameters for a body. Make one with MakeBodyDef to
// get the defaults, tweak, then pass to World.CreateBody.
type BodyDef struct {
	Type      BodyType
	ShapeType ShapeType

	Position Vec2
	Angle    float64

	// Box dimensions. For circles the radius is half the smaller extent,
	// matching the reference engine; set both to the diameter.
	Width  float64
	Height float64

	Density     float64
	Restitution float64
	Friction    float64

	CategoryBits uint32
	MaskBits     uint32

	IsSensor bool
	IsBullet bool
}

func MakeBodyDef() BodyDef {
	return BodyDef{
		Type:         StaticBody,
		ShapeType:    BoxShape,
		Width:        1.0,
		Height:       1.0,
		Density:      1.0,
		Restitution:  0.2,
		Friction:     0.4,
		CategoryBits: 0x0001,
		MaskBits:     0xFFFFFFFF,
	}
}

// computeMass fills mass, inertia and their inverses from shape, dimensions
// and density. Static and kinematic bodies get zero inverse mass and inertia,
// which is what makes them immovable in the solver.
func (b *Body) computeMass(density float64) {
	if b.Type != DynamicBody {
		b.Mass = 0.0
		b.InverseMass = 0.0
		b.Inertia = 0.0
		b.InverseInertia = 0.0
		return
	}

	if b.ShapeType == CircleShape {
		b.Mass = density * pi * b.Radius * b.Radius
		b.Inertia = 0.5 * b.Mass * b.Radius * b.Radius
	} else {
		b.Mass = density * b.Width * b.Height
		b.Inertia = (1.0 / 12.0) * b.Mass * (b.Width*b.Width + b.Height*b.Height)
	}

	b.InverseMass = 1.0 / b.Mass
	b.InverseInertia = 1.0 / b.Inertia
}

// aabb returns the tight world-space bounding box of the body's shape.
func (b *Body) aabb() AABB {
	if b.ShapeType == CircleShape {
		return AABB{
			Min: Vec2{X: b.Position.X - b.Radius, Y: b.Position.Y - b.Radius},
			Max: Vec2{X: b.Position.X + b.Radius, Y: b.Position.Y + b.Radius},
		}
	}

	hw := 0.5 * b.Width
	hh := 0.5 * b.Height
	q := MakeRot(b.Rotation)

	// Extents of a rotated box: |c|*hw + |s|*hh per axis.
	ex := math.Abs(q.Cos)*hw + math.Abs(q.Sin)*hh
	ey := math.Abs(q.Sin)*hw + math.Abs(q.Cos)*hh
	return AABB{
		Min: Vec2{X: b.Position.X - ex, Y: b.Position.Y - ey},
		Max: Vec2{X: b.Position.X + ex, Y: b.Position.Y + ey},
	}
}

func (b *Body) wake() {
	b.IsAwake = true
	b.SleepTime = 0.0
}

// shouldCollide applies the category/mask filter between two bodies.
func shouldCollide(a, b *Body) bool {
	return (a.MaskBits&b.CategoryBits) != 0 && (b.MaskBits&a.CategoryBits) != 0
}

// CreateBody allocates a body from the fixed pool. It returns NullBodyId when
// the world is at capacity or the def is unusable; it never grows the store.
func (w *World) CreateBody(def *BodyDef) BodyId {
	if w == nil || def == nil || w.bodyCount >= len(w.bodies) {
		return NullBodyId
	}

	slot := int32(w.bodyCount)
	index, generation := w.bodySlots.acquire(slot)
	if index == nullIndex {
		return NullBodyId
	}
	w.bodyCount++

	b := &w.bodies[slot]
	*b = Body{}
	b.Id = BodyId{index: index, generation: generation}
	b.Type = def.Type
	b.ShapeType = def.ShapeType
	b.Position = def.Position
	b.Rotation = def.Angle

	// Degenerate shapes are clamped rather than allowed to poison the mass
	// computation with zeroes.
	b.Width = math.Max(def.Width, minShapeExtent)
	b.Height = math.Max(def.Height, minShapeExtent)
	b.Radius = 0.5 * math.Min(b.Width, b.Height)

	b.Restitution = def.Restitution
	b.Friction = def.Friction
	b.CategoryBits = def.CategoryBits
	b.MaskBits = def.MaskBits
	b.IsSensor = def.IsSensor
	b.IsBullet = def.IsBullet
	b.IsAwake = true
	b.IslandId = nullIndex

	density := def.Density
	if density <= 0.0 {
		density = 1.0
	}
	b.computeMass(density)

	aabb := b.aabb()
	aabb.Fatten(aabbExtension)
	b.proxyId = w.tree.createProxy(aabb, slot)

	return b.Id
}

// DestroyBody removes a body in O(1) by swapping the last live record into
// its slot. Joints referencing the body are destroyed with it and its
// broadphase proxy is released. A stale or null id is a no-op.
func (w *World) DestroyBody(id BodyId) {
	if w == nil {
		return
	}
	slot := w.bodySlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return
	}

	// Dependent joints must not outlive the body.
	for i := 0; i < w.jointCount; {
		j := w.joints[i]
		base := j.base()
		if base.bodyA == id || base.bodyB == id {
			w.destroyJointAtSlot(int32(i))
			continue // slot i now holds the previously-last joint
		}
		i++
	}

	// The warm-start caches key pairs by handle index; purge this body's
	// entries so a future body reusing the index cannot inherit impulses.
	w.purgeImpulseCache(id.index)

	w.tree.destroyProxy(w.bodies[slot].proxyId)
	w.bodySlots.release(id.index)

	last := int32(w.bodyCount - 1)
	if slot != last {
		w.bodies[slot] = w.bodies[last]
		w.bodySlots.moved(w.bodies[slot].Id.index, slot)
		w.tree.setUserData(w.bodies[slot].proxyId, slot)
	}
	w.bodyCount--
}

// body resolves a handle, returning nil for stale or null ids.
func (w *World) body(id BodyId) *Body {
	if w == nil {
		return nil
	}
	slot := w.bodySlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return nil
	}
	return &w.bodies[slot]
}

// ApplyForce accumulates a force at the center of mass. Only dynamic bodies
// accept forces; anything else, including stale handles, is a silent no-op.
func (w *World) ApplyForce(id BodyId, force Vec2) {
	b := w.body(id)
	if b == nil || b.Type != DynamicBody {
		return
	}
	b.Force = b.Force.Add(force)
	b.wake()
}

// ApplyTorque accumulates a torque. Dynamic bodies only; silent no-op
// otherwise.
func (w *World) ApplyTorque(id BodyId, torque float64) {
	b := w.body(id)
	if b == nil || b.Type != DynamicBody {
		return
	}
	b.Torque += torque
	b.wake()
}

// SetBodyVelocity overwrites the linear velocity. Dynamic bodies only;
// silent no-op otherwise.
func (w *World) SetBodyVelocity(id BodyId, velocity Vec2) {
	b := w.body(id)
	if b == nil || b.Type != DynamicBody {
		return
	}
	b.Velocity = velocity
	b.wake()
}

// GetBodyPosition returns the body position, or a zero vector and false for
// a stale handle.
func (w *World) GetBodyPosition(id BodyId) (Vec2, bool) {
	b := w.body(id)
	if b == nil {
		return Vec2{}, false
	}
	return b.Position, true
}

// GetBodyAngle returns the body rotation in radians.
func (w *World) GetBodyAngle(id BodyId) (float64, bool) {
	b := w.body(id)
	if b == nil {
		return 0.0, false
	}
	return b.Rotation, true
}

// GetBodyVelocity returns linear and angular velocity.
func (w *World) GetBodyVelocity(id BodyId) (Vec2, float64, bool) {
	b := w.body(id)
	if b == nil {
		return Vec2{}, 0.0, false
	}
	return b.Velocity, b.AngularVelocity, true
}

// IsBodyAwake reports the sleep flag; false for stale handles.
func (w *World) IsBodyAwake(id BodyId) bool {
	b := w.body(id)
	return b != nil && b.IsAwake
}

// BodyContactCount returns the number of contacts the body participated in
// during the last step.
func (w *World) BodyContactCount(id BodyId) int {
	b := w.body(id)
	if b == nil {
		return 0
	}
	return b.CollisionCount
}
