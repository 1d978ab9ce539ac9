package physics2d

// Dynamic AABB tree broadphase. Leaves are body proxies with fattened AABBs
// so bodies can move a little without a tree update. Nodes are pooled and
// relocatable, so the tree uses node indices rather than pointers.

const nullNode = -1

type treeNode struct {
	// Enlarged AABB.
	aabb AABB

	// Body slot for leaves, unused for internal nodes.
	userData int32

	// parent doubles as the free-list next pointer.
	parent int
	child1 int
	child2 int

	// leaf = 0, free node = -1
	height int
}

func (node *treeNode) isLeaf() bool {
	return node.child1 == nullNode
}

type dynamicTree struct {
	root int

	nodes        []treeNode
	nodeCount    int
	nodeCapacity int

	freeList int

	// scratch stack for iterative traversal, reused across queries to keep
	// the per-step path allocation-free.
	stack []int
}

// broadphasePair is a candidate body pair, identified by array slots with
// slotA < slotB.
type broadphasePair struct {
	slotA int32
	slotB int32
}

func newDynamicTree(capacity int) *dynamicTree {
	t := &dynamicTree{
		root:         nullNode,
		nodes:        make([]treeNode, capacity),
		nodeCapacity: capacity,
		stack:        make([]int, 0, 256),
	}

	// Build a linked list of free nodes.
	for i := 0; i < capacity-1; i++ {
		t.nodes[i].parent = i + 1
		t.nodes[i].height = -1
	}
	t.nodes[capacity-1].parent = nullNode
	t.nodes[capacity-1].height = -1
	t.freeList = 0

	return t
}

func (t *dynamicTree) allocateNode() int {
	// The pool holds 2*maxBodies nodes; a binary tree over maxBodies leaves
	// needs at most 2*maxBodies-1, so exhaustion means a bookkeeping bug.
	if t.freeList == nullNode {
		physAssert(false)
		return nullNode
	}

	nodeId := t.freeList
	t.freeList = t.nodes[nodeId].parent
	n := &t.nodes[nodeId]
	n.parent = nullNode
	n.child1 = nullNode
	n.child2 = nullNode
	n.height = 0
	n.userData = nullIndex
	t.nodeCount++
	return nodeId
}

func (t *dynamicTree) freeNode(nodeId int) {
	t.nodes[nodeId].parent = t.freeList
	t.nodes[nodeId].height = -1
	t.freeList = nodeId
	t.nodeCount--
}

// createProxy inserts a leaf holding aabb and returns its proxy id.
func (t *dynamicTree) createProxy(aabb AABB, userData int32) int {
	proxyId := t.allocateNode()
	if proxyId == nullNode {
		return nullNode
	}
	t.nodes[proxyId].aabb = aabb
	t.nodes[proxyId].userData = userData
	t.insertLeaf(proxyId)
	return proxyId
}

func (t *dynamicTree) destroyProxy(proxyId int) {
	if proxyId == nullNode {
		return
	}
	physAssert(t.nodes[proxyId].isLeaf())
	t.removeLeaf(proxyId)
	t.freeNode(proxyId)
}

// moveProxy updates the leaf AABB. Returns true if the proxy was reinserted,
// false if the fat AABB still contained it and nothing moved.
func (t *dynamicTree) moveProxy(proxyId int, aabb AABB) bool {
	if t.nodes[proxyId].aabb.Contains(aabb) {
		return false
	}

	t.removeLeaf(proxyId)

	fat := aabb
	fat.Fatten(aabbExtension)
	t.nodes[proxyId].aabb = fat
	t.insertLeaf(proxyId)
	return true
}

func (t *dynamicTree) userData(proxyId int) int32 {
	return t.nodes[proxyId].userData
}

func (t *dynamicTree) setUserData(proxyId int, userData int32) {
	t.nodes[proxyId].userData = userData
}

func (t *dynamicTree) fatAABB(proxyId int) AABB {
	return t.nodes[proxyId].aabb
}

func (t *dynamicTree) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	// Find the best sibling for this leaf using the surface area heuristic.
	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combinedArea := CombineAABB(t.nodes[index].aabb, leafAABB).Perimeter()

		// Cost of creating a new parent for this node and the new leaf.
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree.
		inheritanceCost := 2.0 * (combinedArea - area)

		descend := func(child int) float64 {
			combined := CombineAABB(leafAABB, t.nodes[child].aabb).Perimeter()
			if t.nodes[child].isLeaf() {
				return combined + inheritanceCost
			}
			oldArea := t.nodes[child].aabb.Perimeter()
			return (combined - oldArea) + inheritanceCost
		}

		cost1 := descend(child1)
		cost2 := descend(child2)

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent.
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = CombineAABB(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	// Walk back up refitting AABBs and rebalancing.
	t.fixUpwardsFrom(t.nodes[leaf].parent)
}

func (t *dynamicTree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent

	var sibling int
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		// Destroy parent and connect sibling to grandparent.
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		t.fixUpwardsFrom(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

func (t *dynamicTree) fixUpwardsFrom(index int) {
	for index != nullNode {
		index = t.balance(index)

		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		t.nodes[index].height = 1 + maxInt(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = CombineAABB(t.nodes[child1].aabb, t.nodes[child2].aabb)

		index = t.nodes[index].parent
	}
}

// balance performs one AVL rotation if the subtree rooted at iA is
// unbalanced. Returns the new subtree root.
func (t *dynamicTree) balance(iA int) int {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}

	iB := a.child1
	iC := a.child2
	b := &t.nodes[iB]
	c := &t.nodes[iC]

	balance := c.height - b.height

	// Rotate C up.
	if balance > 1 {
		iF := c.child1
		iG := c.child2
		f := &t.nodes[iF]
		g := &t.nodes[iG]

		c.child1 = iA
		c.parent = a.parent
		a.parent = iC

		if c.parent != nullNode {
			if t.nodes[c.parent].child1 == iA {
				t.nodes[c.parent].child1 = iC
			} else {
				t.nodes[c.parent].child2 = iC
			}
		} else {
			t.root = iC
		}

		if f.height > g.height {
			c.child2 = iF
			a.child2 = iG
			g.parent = iA
			a.aabb = CombineAABB(b.aabb, g.aabb)
			c.aabb = CombineAABB(a.aabb, f.aabb)
			a.height = 1 + maxInt(b.height, g.height)
			c.height = 1 + maxInt(a.height, f.height)
		} else {
			c.child2 = iG
			a.child2 = iF
			f.parent = iA
			a.aabb = CombineAABB(b.aabb, f.aabb)
			c.aabb = CombineAABB(a.aabb, g.aabb)
			a.height = 1 + maxInt(b.height, f.height)
			c.height = 1 + maxInt(a.height, g.height)
		}

		return iC
	}

	// Rotate B up.
	if balance < -1 {
		iD := b.child1
		iE := b.child2
		d := &t.nodes[iD]
		e := &t.nodes[iE]

		b.child1 = iA
		b.parent = a.parent
		a.parent = iB

		if b.parent != nullNode {
			if t.nodes[b.parent].child1 == iA {
				t.nodes[b.parent].child1 = iB
			} else {
				t.nodes[b.parent].child2 = iB
			}
		} else {
			t.root = iB
		}

		if d.height > e.height {
			b.child2 = iD
			a.child1 = iE
			e.parent = iA
			a.aabb = CombineAABB(c.aabb, e.aabb)
			b.aabb = CombineAABB(a.aabb, d.aabb)
			a.height = 1 + maxInt(c.height, e.height)
			b.height = 1 + maxInt(a.height, d.height)
		} else {
			b.child2 = iE
			a.child1 = iD
			d.parent = iA
			a.aabb = CombineAABB(c.aabb, d.aabb)
			b.aabb = CombineAABB(a.aabb, e.aabb)
			a.height = 1 + maxInt(c.height, d.height)
			b.height = 1 + maxInt(a.height, e.height)
		}

		return iB
	}

	return iA
}

// query invokes callback for every leaf whose fat AABB overlaps aabb.
func (t *dynamicTree) query(aabb AABB, callback func(proxyId int) bool) {
	t.stack = t.stack[:0]
	t.stack = append(t.stack, t.root)

	for len(t.stack) > 0 {
		nodeId := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		if nodeId == nullNode {
			continue
		}

		node := &t.nodes[nodeId]
		if !node.aabb.Overlaps(aabb) {
			continue
		}

		if node.isLeaf() {
			if !callback(nodeId) {
				return
			}
		} else {
			t.stack = append(t.stack, node.child1, node.child2)
		}
	}
}

// queryPairs appends every overlapping leaf pair to out, capped at its
// capacity, and returns the filled slice. Pairs are emitted once with
// slotA < slotB. False positives (fat AABB overlap only) are fine; the
// narrowphase rejects them.
func (t *dynamicTree) queryPairs(out []broadphasePair) []broadphasePair {
	out = out[:0]
	if t.root == nullNode {
		return out
	}

	for leaf := range t.nodes {
		node := &t.nodes[leaf]
		if node.height != 0 || !node.isLeaf() {
			continue
		}
		slotA := node.userData
		aabb := node.aabb

		t.query(aabb, func(otherId int) bool {
			if otherId == leaf {
				return true
			}
			slotB := t.nodes[otherId].userData
			// Each pair is seen from both leaves; keep the ordered one.
			if slotA >= slotB {
				return true
			}
			if len(out) == cap(out) {
				return false
			}
			out = append(out, broadphasePair{slotA: slotA, slotB: slotB})
			return true
		})
		if len(out) == cap(out) {
			break
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
