package physics2d

import "math"

const (
	softBodyIterations  = 10
	softBodyPointRadius = 2.0
	softBodyDamping     = 0.99
	softBodyPressureK   = 0.00001
	softBodyWorldBound  = 1000.0
)

// softBodyPoint is a Verlet particle: velocity is implicit in the distance
// to the previous position.
type softBodyPoint struct {
	pos  Vec2
	old  Vec2
	acc  Vec2
	mass float64
}

type softBodyConstraint struct {
	p1, p2     int
	restLength float64
	stiffness  float64
}

// SoftBody is a closed pressure-stabilized blob of Verlet points: distance
// constraints keep the perimeter and cross braces in shape, and a pressure
// term pushes the enclosed area back towards its rest value.
type SoftBody struct {
	Id SoftBodyId

	points      []softBodyPoint
	constraints []softBodyConstraint

	targetArea float64

	Pressure    float64
	Stiffness   float64
	Friction    float64
	Restitution float64
}

// polygonArea applies the shoelace formula over the current point loop.
func (sb *SoftBody) polygonArea() float64 {
	area := 0.0
	n := len(sb.points)
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		area += sb.points[i].pos.X*sb.points[next].pos.Y - sb.points[next].pos.X*sb.points[i].pos.Y
	}
	return math.Abs(area) * 0.5
}

// CreateSoftBody builds a soft body from a closed loop of world-space
// points. The point and constraint storage is allocated here, once; nothing
// grows during stepping. Returns NullSoftBodyId when the pool is full or the
// loop has fewer than three points.
func (w *World) CreateSoftBody(points []Vec2, pressure, stiffness float64) SoftBodyId {
	if w == nil || len(points) < 3 || w.softBodyCount >= len(w.softBodies) {
		return NullSoftBodyId
	}

	slot := int32(w.softBodyCount)
	index, generation := w.softSlots.acquire(slot)
	if index == nullIndex {
		return NullSoftBodyId
	}
	w.softBodyCount++

	n := len(points)
	sb := &w.softBodies[slot]
	*sb = SoftBody{
		Id:          SoftBodyId{index: index, generation: generation},
		points:      make([]softBodyPoint, n),
		constraints: make([]softBodyConstraint, 0, n+n/2),
		Pressure:    pressure,
		Stiffness:   stiffness,
		Friction:    0.4,
		Restitution: 0.2,
	}

	for i, p := range points {
		sb.points[i] = softBodyPoint{pos: p, old: p, mass: 1.0}
	}
	sb.targetArea = sb.polygonArea()

	// Perimeter springs.
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		sb.constraints = append(sb.constraints, softBodyConstraint{
			p1:         i,
			p2:         next,
			restLength: points[i].Sub(points[next]).Length(),
			stiffness:  stiffness,
		})
	}
	// Cross braces across the loop, softer than the perimeter.
	for i := 0; i < n/2; i++ {
		opposite := (i + n/2) % n
		sb.constraints = append(sb.constraints, softBodyConstraint{
			p1:         i,
			p2:         opposite,
			restLength: points[i].Sub(points[opposite]).Length(),
			stiffness:  stiffness * 0.1,
		})
	}

	return sb.Id
}

// DestroySoftBody removes a soft body in O(1). Stale ids are a no-op.
func (w *World) DestroySoftBody(id SoftBodyId) {
	if w == nil {
		return
	}
	slot := w.softSlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return
	}
	w.softSlots.release(id.index)

	last := int32(w.softBodyCount - 1)
	if slot != last {
		w.softBodies[slot] = w.softBodies[last]
		w.softSlots.moved(w.softBodies[slot].Id.index, slot)
	}
	w.softBodies[last] = SoftBody{}
	w.softBodyCount--
}

func (w *World) softBody(id SoftBodyId) *SoftBody {
	if w == nil {
		return nil
	}
	slot := w.softSlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return nil
	}
	return &w.softBodies[slot]
}

// SoftBodyPointCount returns the number of points, 0 for stale ids.
func (w *World) SoftBodyPointCount(id SoftBodyId) int {
	sb := w.softBody(id)
	if sb == nil {
		return 0
	}
	return len(sb.points)
}

// GetSoftBodyPoint reads a point position; ok is false for stale ids or an
// out-of-range index.
func (w *World) GetSoftBodyPoint(id SoftBodyId, pointIdx int) (Vec2, bool) {
	sb := w.softBody(id)
	if sb == nil || pointIdx < 0 || pointIdx >= len(sb.points) {
		return Vec2{}, false
	}
	return sb.points[pointIdx].pos, true
}

// SetSoftBodyPoint teleports a point, zeroing its implicit velocity so a
// dragged blob does not explode on release.
func (w *World) SetSoftBodyPoint(id SoftBodyId, pointIdx int, pos Vec2) {
	sb := w.softBody(id)
	if sb == nil || pointIdx < 0 || pointIdx >= len(sb.points) {
		return
	}
	p := &sb.points[pointIdx]
	p.pos = pos
	p.old = pos
}

// SetSoftBodyParams updates pressure and the stiffness of every constraint.
// Stale ids are a no-op.
func (w *World) SetSoftBodyParams(id SoftBodyId, pressure, stiffness float64) {
	sb := w.softBody(id)
	if sb == nil {
		return
	}
	sb.Pressure = pressure
	sb.Stiffness = stiffness
	n := len(sb.points)
	for i := range sb.constraints {
		if i < n {
			sb.constraints[i].stiffness = stiffness
		} else {
			sb.constraints[i].stiffness = stiffness * 0.1
		}
	}
}

// stepSoftBodies advances every soft body: Verlet integration, constraint
// relaxation with pressure, then collision against the rigid bodies.
func (w *World) stepSoftBodies(dt float64) {
	for s := 0; s < w.softBodyCount; s++ {
		sb := &w.softBodies[s]

		// Integration.
		for i := range sb.points {
			p := &sb.points[i]
			p.acc = w.Gravity

			vel := p.pos.Sub(p.old).Scale(softBodyDamping)
			p.old = p.pos
			p.pos = p.pos.Add(vel).Add(p.acc.Scale(dt * dt))
		}

		// Constraint relaxation with the pressure term folded into each
		// iteration, as the reference solver does.
		for iter := 0; iter < softBodyIterations; iter++ {
			for c := range sb.constraints {
				sb.relaxConstraint(&sb.constraints[c])
			}
			sb.applyPressure()
		}

		// Collision with rigid bodies.
		for b := 0; b < w.bodyCount; b++ {
			sb.collideRigidBody(&w.bodies[b])
		}

		// Primitive world bound.
		for i := range sb.points {
			p := &sb.points[i]
			p.pos.X = clampFloat(p.pos.X, -softBodyWorldBound, softBodyWorldBound)
			p.pos.Y = clampFloat(p.pos.Y, -softBodyWorldBound, softBodyWorldBound)
		}
	}
}

func (sb *SoftBody) relaxConstraint(c *softBodyConstraint) {
	p1 := &sb.points[c.p1]
	p2 := &sb.points[c.p2]

	d := p2.pos.Sub(p1.pos)
	dist := d.Length()
	if dist < 1e-4 {
		return
	}

	diff := (dist - c.restLength) / dist
	off := d.Scale(0.5 * diff * c.stiffness)
	p1.pos = p1.pos.Add(off)
	p2.pos = p2.pos.Sub(off)
}

// applyPressure pushes each point along its outward normal in proportion to
// how far the enclosed area has drifted from rest.
func (sb *SoftBody) applyPressure() {
	areaDiff := sb.targetArea - sb.polygonArea()
	n := len(sb.points)

	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		next := (i + 1) % n

		normal := Vec2{
			X: sb.points[next].pos.Y - sb.points[prev].pos.Y,
			Y: -(sb.points[next].pos.X - sb.points[prev].pos.X),
		}
		if normal.Normalize() == 0.0 {
			continue
		}
		force := areaDiff * sb.Pressure * softBodyPressureK
		sb.points[i].pos = sb.points[i].pos.Add(normal.Scale(force))
	}
}

// collideRigidBody pushes points out of a rigid body and applies a crude
// positional friction by dragging the previous position along.
func (sb *SoftBody) collideRigidBody(b *Body) {
	if b.ShapeType == CircleShape {
		r := b.Radius + softBodyPointRadius
		for i := range sb.points {
			p := &sb.points[i]
			d := p.pos.Sub(b.Position)
			distSq := d.LengthSquared()
			if distSq >= r*r {
				continue
			}
			dist := math.Sqrt(distSq)
			if dist < 1e-4 {
				continue
			}
			n := d.Scale(1.0 / dist)
			p.pos = p.pos.Add(n.Scale(r - dist))

			vel := p.pos.Sub(p.old)
			p.old = p.old.Add(vel.Scale(0.1))
		}
		return
	}

	q := MakeRot(b.Rotation)
	hw := 0.5*b.Width + softBodyPointRadius
	hh := 0.5*b.Height + softBodyPointRadius

	for i := range sb.points {
		p := &sb.points[i]
		local := q.ApplyInverse(p.pos.Sub(b.Position))
		if local.X <= -hw || local.X >= hw || local.Y <= -hh || local.Y >= hh {
			continue
		}

		// Push towards the closest face. The normal points from the box to
		// the point.
		dLeft := local.X + hw
		dRight := hw - local.X
		dBottom := local.Y + hh
		dTop := hh - local.Y

		minPen := dLeft
		localN := Vec2{X: -1, Y: 0}
		if dRight < minPen {
			minPen = dRight
			localN = Vec2{X: 1, Y: 0}
		}
		if dBottom < minPen {
			minPen = dBottom
			localN = Vec2{X: 0, Y: -1}
		}
		if dTop < minPen {
			minPen = dTop
			localN = Vec2{X: 0, Y: 1}
		}

		worldN := q.Apply(localN)
		p.pos = p.pos.Add(worldN.Scale(minPen))

		// Dampen the implicit velocity so points stick instead of sliding.
		vel := p.pos.Sub(p.old)
		p.old = p.pos.Sub(vel.Scale(0.5))
	}
}
