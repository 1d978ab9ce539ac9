package physics2d

// Handles returned by the creation calls are generation-tagged indices: the
// index selects a slot-table entry and the generation detects reuse of that
// slot after destruction. A stale handle therefore fails validation instead
// of silently addressing whatever body now occupies the slot, which is the
// only recoverable behavior at a no-crash API boundary.

const nullIndex = -1

// BodyId is a stable handle to a body. The zero value is not valid; use
// NullBodyId for "no body".
type BodyId struct {
	index      int32
	generation uint32
}

// NullBodyId is the sentinel returned by a failed CreateBody and carried by
// RayCastHit on a miss.
var NullBodyId = BodyId{index: nullIndex}

// IsNull reports whether the handle is the creation-failure sentinel.
// It does not check liveness; a destroyed body's handle is non-null but
// stale.
func (id BodyId) IsNull() bool {
	return id.index == nullIndex
}

// JointId is a stable handle to a joint.
type JointId struct {
	index      int32
	generation uint32
}

var NullJointId = JointId{index: nullIndex}

func (id JointId) IsNull() bool {
	return id.index == nullIndex
}

// SoftBodyId is a stable handle to a soft body.
type SoftBodyId struct {
	index      int32
	generation uint32
}

var NullSoftBodyId = SoftBodyId{index: nullIndex}

func (id SoftBodyId) IsNull() bool {
	return id.index == nullIndex
}

// slotEntry maps a handle index to the current array slot of the record.
// While free, slot holds the next free index.
type slotEntry struct {
	slot       int32
	generation uint32
	live       bool
}

// slotTable is the shared handle allocator for every fixed-capacity store.
type slotTable struct {
	entries  []slotEntry
	freeList int32
}

func makeSlotTable(capacity int) slotTable {
	t := slotTable{
		entries:  make([]slotEntry, capacity),
		freeList: 0,
	}
	for i := range t.entries {
		t.entries[i].slot = int32(i + 1)
	}
	t.entries[capacity-1].slot = nullIndex
	return t
}

// acquire pops a free entry and binds it to slot. Returns the handle index
// and generation, or nullIndex when the table is exhausted.
func (t *slotTable) acquire(slot int32) (int32, uint32) {
	if t.freeList == nullIndex {
		return nullIndex, 0
	}
	index := t.freeList
	e := &t.entries[index]
	t.freeList = e.slot
	e.slot = slot
	e.live = true
	return index, e.generation
}

// release invalidates the entry and bumps its generation so outstanding
// handles go stale.
func (t *slotTable) release(index int32) {
	e := &t.entries[index]
	e.live = false
	e.generation++
	e.slot = t.freeList
	t.freeList = index
}

// lookup resolves a handle to its array slot, or nullIndex if the handle is
// stale, freed, or out of range.
func (t *slotTable) lookup(index int32, generation uint32) int32 {
	if index < 0 || int(index) >= len(t.entries) {
		return nullIndex
	}
	e := &t.entries[index]
	if !e.live || e.generation != generation {
		return nullIndex
	}
	return e.slot
}

// moved records that the record for handle index now lives at slot.
func (t *slotTable) moved(index int32, slot int32) {
	t.entries[index].slot = slot
}
