package physics2d

import "math"

const physDebug = false

func physAssert(a bool) {
	if physDebug && !a {
		panic("physics2d: assertion failed")
	}
}

const maxFloat = math.MaxFloat64
const pi = math.Pi

// Global tuning constants. The engine works in pixel units with a Y-up
// coordinate system, so lengths here are pixels and the defaults below
// mirror the reference tuning (1 unit = 1 cm).

// The maximum number of contact points between two shapes.
const maxManifoldPoints = 2

// Hard cap on world capacity. NewWorld refuses anything above this so a bad
// caller cannot ask for a multi-gigabyte allocation across the API boundary.
const maxWorldBodies = 1 << 16

// AABBs in the broadphase tree are fattened by this margin so a proxy can
// move a little without a tree update.
const aabbExtension = 2.0

// A small length used as a collision and constraint tolerance. Numerically
// significant, visually insignificant.
const linearSlop = 0.01

// Controls how fast positional overlap is resolved. 1 would remove all
// overlap in one step but overshoots; keep it well under 1.
const baumgarte = 0.2

// The time in seconds a body must be still before its island may sleep.
const timeToSleep = 1.0

// A body cannot sleep while its squared linear velocity is above this.
const linearSleepToleranceSq = 0.2

// A body cannot sleep while its angular velocity magnitude is above this.
const angularSleepTolerance = 0.2

// Velocity damping applied each step to keep stacks from ringing.
const velocityDamping = 0.999

// Minimum shape extent. Degenerate zero-size shapes are clamped up to this
// instead of feeding zeroes into the mass computation.
const minShapeExtent = 0.1

// Minimum distance joint length; a zero-length rod has no defined axis.
const minJointLength = linearSlop

// Defaults installed by NewWorld. All of them are fields on World and may be
// changed between steps.
const (
	defaultGravityY             = -9.81 * 100.0
	defaultVelocityIterations   = 8
	defaultPositionIterations   = 10
	defaultContactHertz         = 120.0
	defaultContactDampingRatio  = 1.0
	defaultRestitutionThreshold = 100.0
	defaultMaxLinearVelocity    = 2000.0 * 100.0
)
