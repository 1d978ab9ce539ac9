package physics2d

type JointType int

const (
	DistanceJointType JointType = iota
	RevoluteJointType
	PrismaticJointType
	WeldJointType
)

// JointDefBase carries the fields every joint definition shares. Anchors are
// in body-local coordinates so the initial configuration may violate the
// constraint slightly.
type JointDefBase struct {
	BodyA BodyId
	BodyB BodyId

	LocalAnchorA Vec2
	LocalAnchorB Vec2
}

// JointDef is implemented by the four typed joint definitions.
type JointDef interface {
	defBase() *JointDefBase
	makeJoint() Joint
}

// Joint is the single constraint capability contacts share the solver loop
// with: every joint contributes velocity rows inside each velocity
// iteration, interleaved with contact rows, and position rows inside each
// position iteration. The interleaving is what keeps jointed stacks stable.
type Joint interface {
	base() *jointBase
	Type() JointType

	initVelocityConstraints(w *World, dt float64)
	solveVelocityConstraints(w *World)
	solvePositionConstraints(w *World)
}

// jointBase is the state common to all joint types.
type jointBase struct {
	id  JointId
	typ JointType

	bodyA BodyId
	bodyB BodyId

	localAnchorA Vec2
	localAnchorB Vec2

	// Solver temp, resolved at the start of each step.
	slotA   int32
	slotB   int32
	enabled bool
}

func (j *jointBase) base() *jointBase { return j }

func (j *jointBase) Type() JointType { return j.typ }

// resolve maps body handles to current slots. A joint whose body vanished is
// disabled for the step; DestroyBody removes such joints eagerly, so this is
// a second line of defense rather than the normal path.
func (j *jointBase) resolve(w *World) bool {
	j.slotA = w.bodySlots.lookup(j.bodyA.index, j.bodyA.generation)
	j.slotB = w.bodySlots.lookup(j.bodyB.index, j.bodyB.generation)
	j.enabled = j.slotA != nullIndex && j.slotB != nullIndex
	if j.enabled {
		// A jointed pair moves together; keep both sides awake while either
		// is.
		a := &w.bodies[j.slotA]
		b := &w.bodies[j.slotB]
		if a.IsAwake || b.IsAwake {
			if a.Type == DynamicBody {
				a.IsAwake = true
			}
			if b.Type == DynamicBody {
				b.IsAwake = true
			}
		}
	}
	return j.enabled
}

// CreateJoint allocates a joint from the fixed pool. Returns NullJointId when
// the pool is exhausted, either body handle is stale, or both handles refer
// to the same body.
func (w *World) CreateJoint(def JointDef) JointId {
	if w == nil || def == nil {
		return NullJointId
	}
	base := def.defBase()
	if base.BodyA == base.BodyB {
		return NullJointId
	}
	if w.body(base.BodyA) == nil || w.body(base.BodyB) == nil {
		return NullJointId
	}
	if w.jointCount >= len(w.joints) {
		return NullJointId
	}

	slot := int32(w.jointCount)
	index, generation := w.jointSlots.acquire(slot)
	if index == nullIndex {
		return NullJointId
	}
	w.jointCount++

	j := def.makeJoint()
	jb := j.base()
	jb.id = JointId{index: index, generation: generation}
	jb.bodyA = base.BodyA
	jb.bodyB = base.BodyB
	jb.localAnchorA = base.LocalAnchorA
	jb.localAnchorB = base.LocalAnchorB
	w.joints[slot] = j

	if a := w.body(base.BodyA); a != nil && a.Type == DynamicBody {
		a.wake()
	}
	if b := w.body(base.BodyB); b != nil && b.Type == DynamicBody {
		b.wake()
	}
	return jb.id
}

// DestroyJoint removes a joint in O(1). Stale or null ids are a no-op.
func (w *World) DestroyJoint(id JointId) {
	if w == nil {
		return
	}
	slot := w.jointSlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return
	}
	w.destroyJointAtSlot(slot)
}

func (w *World) destroyJointAtSlot(slot int32) {
	jb := w.joints[slot].base()
	w.jointSlots.release(jb.id.index)

	last := int32(w.jointCount - 1)
	if slot != last {
		w.joints[slot] = w.joints[last]
		w.jointSlots.moved(w.joints[slot].base().id.index, slot)
	}
	w.joints[last] = nil
	w.jointCount--
}

// joint resolves a handle, returning nil for stale or null ids.
func (w *World) joint(id JointId) Joint {
	if w == nil {
		return nil
	}
	slot := w.jointSlots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return nil
	}
	return w.joints[slot]
}

// JointTypeOf returns the type of a live joint; ok is false for stale handles.
func (w *World) JointTypeOf(id JointId) (JointType, bool) {
	j := w.joint(id)
	if j == nil {
		return 0, false
	}
	return j.Type(), true
}
