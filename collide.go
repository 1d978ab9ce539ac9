package physics2d

import "math"

// Manifold is the transient contact description produced by the narrowphase:
// a shared normal pointing from body A to body B, a penetration depth, and up
// to two world-space contact points.
type Manifold struct {
	Normal      Vec2
	Penetration float64
	Points      [maxManifoldPoints]Vec2
	PointCount  int
}

// collide dispatches on the shape pair and returns the manifold between a
// and b with the normal oriented A-to-B. ok is false when the shapes do not
// overlap.
func collide(a, b *Body) (m Manifold, ok bool) {
	switch {
	case a.ShapeType == CircleShape && b.ShapeType == CircleShape:
		return collideCircles(a, b)
	case a.ShapeType == BoxShape && b.ShapeType == BoxShape:
		return collideBoxes(a, b)
	case a.ShapeType == CircleShape:
		m, ok = collideCircleBox(a, b)
		// collideCircleBox reports the normal box-to-circle; flip it so the
		// convention (A to B) holds with the circle as A.
		m.Normal = m.Normal.Neg()
		return m, ok
	default:
		return collideCircleBox(b, a)
	}
}

func collideCircles(a, b *Body) (Manifold, bool) {
	d := b.Position.Sub(a.Position)
	distSq := d.LengthSquared()
	radiusSum := a.Radius + b.Radius
	if distSq >= radiusSum*radiusSum {
		return Manifold{}, false
	}

	var m Manifold
	m.PointCount = 1

	dist := math.Sqrt(distSq)
	if dist == 0.0 {
		// Concentric circles have no defined normal; pick one.
		m.Penetration = a.Radius
		m.Normal = Vec2{X: 0, Y: 1}
		m.Points[0] = a.Position
	} else {
		m.Penetration = radiusSum - dist
		m.Normal = d.Scale(1.0 / dist)
		m.Points[0] = b.Position.Sub(m.Normal.Scale(b.Radius))
	}
	return m, true
}

// boxVertices writes the four world-space corners of a box body.
func boxVertices(b *Body, out *[4]Vec2) {
	hw := 0.5 * b.Width
	hh := 0.5 * b.Height
	q := MakeRot(b.Rotation)
	out[0] = b.Position.Add(q.Apply(Vec2{X: -hw, Y: -hh}))
	out[1] = b.Position.Add(q.Apply(Vec2{X: hw, Y: -hh}))
	out[2] = b.Position.Add(q.Apply(Vec2{X: hw, Y: hh}))
	out[3] = b.Position.Add(q.Apply(Vec2{X: -hw, Y: hh}))
}

func projectOntoAxis(verts *[4]Vec2, axis Vec2) (min, max float64) {
	min = axis.Dot(verts[0])
	max = min
	for i := 1; i < 4; i++ {
		p := axis.Dot(verts[i])
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}

// collideBoxes runs SAT over the four face axes of the two oriented boxes.
// The incident box's penetrating vertices become the contact points, giving
// the two-point manifolds stacking needs.
func collideBoxes(a, b *Body) (Manifold, bool) {
	var vertsA, vertsB [4]Vec2
	boxVertices(a, &vertsA)
	boxVertices(b, &vertsB)

	qa := MakeRot(a.Rotation)
	qb := MakeRot(b.Rotation)
	axes := [4]Vec2{
		qa.Apply(Vec2{X: 1, Y: 0}),
		qa.Apply(Vec2{X: 0, Y: 1}),
		qb.Apply(Vec2{X: 1, Y: 0}),
		qb.Apply(Vec2{X: 0, Y: 1}),
	}

	minOverlap := maxFloat
	var bestAxis Vec2
	inc := b
	refVerts, incVerts := &vertsA, &vertsB

	for i := 0; i < 4; i++ {
		minA, maxA := projectOntoAxis(&vertsA, axes[i])
		minB, maxB := projectOntoAxis(&vertsB, axes[i])

		overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
		if overlap <= 0.0 {
			return Manifold{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			bestAxis = axes[i]
			if i < 2 {
				inc = b
				refVerts, incVerts = &vertsA, &vertsB
			} else {
				inc = a
				refVerts, incVerts = &vertsB, &vertsA
			}
		}
	}

	// Orient the separating axis from A towards B.
	if bestAxis.Dot(b.Position.Sub(a.Position)) < 0.0 {
		bestAxis = bestAxis.Neg()
	}

	var m Manifold
	m.Normal = bestAxis
	m.Penetration = minOverlap

	// Reference face interval along the axis; incident vertices inside it
	// (with a little slop) are the contact points.
	_, maxRef := projectOntoAxis(refVerts, bestAxis)

	for i := 0; i < 4 && m.PointCount < maxManifoldPoints; i++ {
		p := bestAxis.Dot(incVerts[i])
		if p <= maxRef+0.01 {
			m.Points[m.PointCount] = incVerts[i].Add(bestAxis.Scale(0.5 * minOverlap))
			m.PointCount++
		}
	}

	if m.PointCount == 0 {
		// Deep overlap can leave no vertex inside the interval; fall back to
		// the incident center so the solver still gets a point.
		m.PointCount = 1
		m.Points[0] = inc.Position
	}
	return m, true
}

// collideCircleBox tests a circle against an oriented box. The returned
// normal points from the box towards the circle.
func collideCircleBox(circle, box *Body) (Manifold, bool) {
	q := MakeRot(box.Rotation)
	localD := q.ApplyInverse(circle.Position.Sub(box.Position))

	hw := 0.5 * box.Width
	hh := 0.5 * box.Height

	closest := Vec2{
		X: clampFloat(localD.X, -hw, hw),
		Y: clampFloat(localD.Y, -hh, hh),
	}
	localNormal := localD.Sub(closest)
	distSq := localNormal.LengthSquared()
	r := circle.Radius

	outside := math.Abs(localD.X) > hw || math.Abs(localD.Y) > hh
	if distSq > r*r && outside {
		return Manifold{}, false
	}

	var m Manifold
	m.PointCount = 1

	dist := math.Sqrt(distSq)
	if dist > 1e-4 {
		m.Normal = q.Apply(localNormal.Scale(1.0 / dist))
	} else {
		// Center inside the box: push out along the axis of least depth.
		dx := hw - math.Abs(localD.X)
		dy := hh - math.Abs(localD.Y)
		if dx < dy {
			n := Vec2{X: 1, Y: 0}
			if localD.X < 0 {
				n.X = -1
			}
			m.Normal = q.Apply(n)
			dist = -dx
		} else {
			n := Vec2{X: 0, Y: 1}
			if localD.Y < 0 {
				n.Y = -1
			}
			m.Normal = q.Apply(n)
			dist = -dy
		}
	}

	m.Penetration = r - dist
	m.Points[0] = box.Position.Add(q.Apply(closest))
	return m, true
}
