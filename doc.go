// Package physics2d is a deterministic, fixed-capacity 2D rigid-body and
// particle simulation core.
//
// A World owns preallocated arrays of bodies, joints and soft bodies;
// nothing is reallocated after NewWorld, so creation calls fail with null
// handles instead of growing storage. Each Step runs broadphase culling over
// a dynamic AABB tree, SAT narrowphase for circles and boxes, and a
// warm-started sequential-impulse solver in which contacts and the four
// joint types (distance, revolute, prismatic, weld) are iterated together.
// Bodies at rest are grouped into islands and put to sleep.
//
// The package works in pixel units with gravity along -Y by default. A World
// is not safe for concurrent use; Step is synchronous and is meant to be
// called once per frame from a single goroutine.
//
// Handles (BodyId, JointId, SoftBodyId, NodeId) are generation-tagged:
// operating on a destroyed handle is a detectable no-op rather than a read
// of whatever reused the slot.
package physics2d
