package physics2d

import "math"

// RayCastHit describes the closest intersection of a segment cast. On a
// miss, Hit is false and Body is NullBodyId.
type RayCastHit struct {
	Hit      bool
	Body     BodyId
	Point    Vec2
	Normal   Vec2
	Fraction float64
}

// RayCast tests the segment p1->p2 against every body and returns the
// closest hit. Exactly equal fractions tie-break to the body created first,
// so results are reproducible regardless of internal storage order.
func (w *World) RayCast(p1, p2 Vec2) RayCastHit {
	closest := RayCastHit{Body: NullBodyId, Fraction: 1.0}
	if w == nil {
		return closest
	}

	d := p2.Sub(p1)

	for i := 0; i < w.bodyCount; i++ {
		b := &w.bodies[i]

		var fraction float64
		var normal Vec2
		var hit bool
		if b.ShapeType == CircleShape {
			fraction, normal, hit = rayCircle(p1, d, b.Position, b.Radius)
		} else {
			fraction, normal, hit = rayBox(p1, d, b)
		}
		if !hit {
			continue
		}

		better := !closest.Hit || fraction < closest.Fraction ||
			(fraction == closest.Fraction && b.Id.index < closest.Body.index)
		if better {
			closest.Hit = true
			closest.Body = b.Id
			closest.Fraction = fraction
			closest.Normal = normal
			closest.Point = p1.Add(d.Scale(fraction))
		}
	}

	return closest
}

// rayCircle solves the quadratic for a segment against a circle and returns
// the entry fraction with the outward normal at the hit point.
func rayCircle(start, d Vec2, center Vec2, r float64) (float64, Vec2, bool) {
	f := start.Sub(center)

	a := d.LengthSquared()
	if a < 1e-12 {
		return 0, Vec2{}, false
	}
	b := 2.0 * f.Dot(d)
	c := f.LengthSquared() - r*r

	discriminant := b*b - 4.0*a*c
	if discriminant < 0.0 {
		return 0, Vec2{}, false
	}

	t := (-b - math.Sqrt(discriminant)) / (2.0 * a)
	if t < 0.0 || t > 1.0 {
		return 0, Vec2{}, false
	}

	hitPoint := start.Add(d.Scale(t))
	normal := hitPoint.Sub(center)
	normal.Normalize()
	return t, normal, true
}

// rayBox transforms the segment into the box's local frame, slab-tests it
// against the half extents and rotates the face normal back to world space.
func rayBox(start, d Vec2, b *Body) (float64, Vec2, bool) {
	q := MakeRot(b.Rotation)
	localStart := q.ApplyInverse(start.Sub(b.Position))
	localD := q.ApplyInverse(d)

	hw := 0.5 * b.Width
	hh := 0.5 * b.Height

	tMin := 0.0
	tMax := 1.0
	var normal Vec2

	// X slab.
	if math.Abs(localD.X) < 1e-9 {
		if localStart.X < -hw || localStart.X > hw {
			return 0, Vec2{}, false
		}
	} else {
		invD := 1.0 / localD.X
		t1 := (-hw - localStart.X) * invD
		t2 := (hw - localStart.X) * invD
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = Vec2{X: s, Y: 0}
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, Vec2{}, false
		}
	}

	// Y slab.
	if math.Abs(localD.Y) < 1e-9 {
		if localStart.Y < -hh || localStart.Y > hh {
			return 0, Vec2{}, false
		}
	} else {
		invD := 1.0 / localD.Y
		t1 := (-hh - localStart.Y) * invD
		t2 := (hh - localStart.Y) * invD
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = Vec2{X: 0, Y: s}
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, Vec2{}, false
		}
	}

	// A segment starting inside the box reports no entry face.
	if normal.X == 0.0 && normal.Y == 0.0 {
		return 0, Vec2{}, false
	}

	return tMin, q.Apply(normal), true
}
