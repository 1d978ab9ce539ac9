package physics2d

// ContactListener receives contact notifications during Step. Callbacks run
// synchronously inside the step on the calling goroutine; implementations
// must not create or destroy bodies from within a callback.
type ContactListener interface {
	// BeginContact fires once when two solid bodies start touching.
	BeginContact(a, b BodyId)

	// SensorOverlap fires every step for each overlapping pair involving at
	// least one sensor. Sensor pairs never reach the solver.
	SensorOverlap(a, b BodyId)
}
