package physics2d

// Scene is the native side of the engine's scene graph: a fixed pool of
// transform nodes the renderer reads back once per frame. A node composes
// its local transform onto its parent's world transform; a node bound to a
// body takes its local position and rotation from the body first, which is
// how simulation results reach the display tree.

// NodeId is a stable handle to a scene node.
type NodeId struct {
	index      int32
	generation uint32
}

var NullNodeId = NodeId{index: nullIndex}

func (id NodeId) IsNull() bool {
	return id.index == nullIndex
}

// Transform is a 2D similarity transform (translation, rotation, uniform
// scale per axis) kept decomposed; the renderer recomposes matrices itself.
type Transform struct {
	Position Vec2
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

func identityTransform() Transform {
	return Transform{ScaleX: 1.0, ScaleY: 1.0}
}

// compose applies child on top of parent.
func (parent Transform) compose(child Transform) Transform {
	q := MakeRot(parent.Rotation)
	scaled := Vec2{X: child.Position.X * parent.ScaleX, Y: child.Position.Y * parent.ScaleY}
	return Transform{
		Position: parent.Position.Add(q.Apply(scaled)),
		Rotation: parent.Rotation + child.Rotation,
		ScaleX:   parent.ScaleX * child.ScaleX,
		ScaleY:   parent.ScaleY * child.ScaleY,
	}
}

type sceneNode struct {
	id     NodeId
	parent NodeId

	local Transform
	world Transform

	body BodyId
}

// Scene is a fixed-capacity node pool. Nodes are stored in creation order
// and a node's parent must exist before it, so a single forward pass
// propagates world transforms.
type Scene struct {
	nodes     []sceneNode
	nodeCount int
	slots     slotTable
}

// NewScene allocates a scene with room for maxNodes nodes. Returns nil for a
// non-positive or oversized capacity.
func NewScene(maxNodes int) *Scene {
	if maxNodes <= 0 || maxNodes > maxWorldBodies {
		return nil
	}
	return &Scene{
		nodes: make([]sceneNode, maxNodes),
		slots: makeSlotTable(maxNodes),
	}
}

// Destroy releases the node pool. The scene must not be used afterwards.
func (s *Scene) Destroy() {
	if s == nil {
		return
	}
	s.nodes = nil
	s.nodeCount = 0
}

// NodeCount returns the number of live nodes.
func (s *Scene) NodeCount() int {
	if s == nil {
		return 0
	}
	return s.nodeCount
}

// CreateNode allocates a node under parent; pass NullNodeId for a root node.
// Returns NullNodeId when the pool is exhausted or the parent is stale.
func (s *Scene) CreateNode(parent NodeId) NodeId {
	if s == nil || s.nodeCount >= len(s.nodes) {
		return NullNodeId
	}
	if !parent.IsNull() && s.node(parent) == nil {
		return NullNodeId
	}

	slot := int32(s.nodeCount)
	index, generation := s.slots.acquire(slot)
	if index == nullIndex {
		return NullNodeId
	}
	s.nodeCount++

	n := &s.nodes[slot]
	*n = sceneNode{
		id:     NodeId{index: index, generation: generation},
		parent: parent,
		local:  identityTransform(),
		world:  identityTransform(),
		body:   NullBodyId,
	}
	return n.id
}

// DestroyNode removes a node and reparents its children to the destroyed
// node's parent, preserving the parents-before-children ordering of the
// backing array. Stale ids are a no-op.
func (s *Scene) DestroyNode(id NodeId) {
	if s == nil {
		return
	}
	slot := s.slots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return
	}
	parent := s.nodes[slot].parent
	for i := 0; i < s.nodeCount; i++ {
		if s.nodes[i].parent == id {
			s.nodes[i].parent = parent
		}
	}

	s.slots.release(id.index)

	// Shift instead of swap: a swap could move a child ahead of its parent.
	last := int32(s.nodeCount - 1)
	for i := slot; i < last; i++ {
		s.nodes[i] = s.nodes[i+1]
		s.slots.moved(s.nodes[i].id.index, i)
	}
	s.nodes[last] = sceneNode{}
	s.nodeCount--
}

func (s *Scene) node(id NodeId) *sceneNode {
	if s == nil {
		return nil
	}
	slot := s.slots.lookup(id.index, id.generation)
	if slot == nullIndex {
		return nil
	}
	return &s.nodes[slot]
}

// SetNodeTransform sets the node's local transform. Stale ids are a no-op.
func (s *Scene) SetNodeTransform(id NodeId, t Transform) {
	n := s.node(id)
	if n == nil {
		return
	}
	n.local = t
}

// BindNodeToBody makes the node's local position and rotation follow a
// body's simulated pose on each UpdateTransforms. Pass NullBodyId to unbind.
func (s *Scene) BindNodeToBody(id NodeId, body BodyId) {
	n := s.node(id)
	if n == nil {
		return
	}
	n.body = body
}

// NodeWorldTransform returns the node's world transform as of the last
// UpdateTransforms; ok is false for stale ids.
func (s *Scene) NodeWorldTransform(id NodeId) (Transform, bool) {
	n := s.node(id)
	if n == nil {
		return Transform{}, false
	}
	return n.world, true
}

// UpdateTransforms recomputes every node's world transform in one forward
// pass, pulling bound bodies' poses from the world first. This is the
// per-frame bridge between the simulation and the display tree; w may be
// nil when no node is body-bound.
func (s *Scene) UpdateTransforms(w *World) {
	if s == nil {
		return
	}
	for i := 0; i < s.nodeCount; i++ {
		n := &s.nodes[i]

		if !n.body.IsNull() && w != nil {
			if b := w.body(n.body); b != nil {
				n.local.Position = b.Position
				n.local.Rotation = b.Rotation
			}
		}

		if n.parent.IsNull() {
			n.world = n.local
			continue
		}
		if p := s.node(n.parent); p != nil {
			n.world = p.world.compose(n.local)
		} else {
			// Parent vanished between frames; treat as root.
			n.world = n.local
		}
	}
}
