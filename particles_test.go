package physics2d_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	physics2d "github.com/flashkit/physics2d"
)

func TestEmitterSpawnAndCapacity(t *testing.T) {
	e := physics2d.NewParticleEmitter(4)
	if e.Capacity() != 4 {
		t.Fatalf("capacity %d, want 4", e.Capacity())
	}

	for i := 0; i < 6; i++ {
		e.Spawn(mgl32.Vec3{}, mgl32.Vec3{}, 1.0, 1.0, 0xFFFFFFFF)
	}
	// Spawns past capacity are dropped, not grown.
	if e.ActiveCount() != 4 {
		t.Fatalf("active %d after overspawn, want 4", e.ActiveCount())
	}

	if physics2d.NewParticleEmitter(0) != nil {
		t.Fatal("zero-capacity emitter must be nil")
	}
}

func TestEmitterUpdateIntegratesAndRecycles(t *testing.T) {
	e := physics2d.NewParticleEmitter(8)
	e.Gravity = mgl32.Vec3{0, -10, 0}

	// One short-lived and one long-lived particle.
	e.Spawn(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, 0.1, 1.0, 0xFFFFFFFF)
	e.Spawn(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 0}, 10.0, 1.0, 0xFFFFFFFF)

	for i := 0; i < 30; i++ {
		e.Update(1.0 / 60.0)
	}

	// The 0.1s particle died and was recycled; the 10s one survives.
	if e.ActiveCount() != 1 {
		t.Fatalf("active %d after 0.5s, want 1", e.ActiveCount())
	}

	// The freed slot is reusable immediately.
	e.Spawn(mgl32.Vec3{}, mgl32.Vec3{}, 1.0, 1.0, 0xFF0000FF)
	if e.ActiveCount() != 2 {
		t.Fatalf("active %d after respawn, want 2", e.ActiveCount())
	}
}

func TestEmitterDefaultLifetime(t *testing.T) {
	e := physics2d.NewParticleEmitter(2)
	e.Spawn(mgl32.Vec3{}, mgl32.Vec3{}, 0, 1.0, 0)

	// A zero lifetime would divide by zero on the first update.
	e.Update(1.0 / 60.0)
	if e.ActiveCount() != 1 {
		t.Fatalf("particle with defaulted lifetime died instantly")
	}
}

func TestFillVertexBufferIdentityProjection(t *testing.T) {
	e := physics2d.NewParticleEmitter(8)
	e.Spawn(mgl32.Vec3{10, 20, 0}, mgl32.Vec3{}, 1.0, 1.0, 0x00123456)

	vertices := make([]float32, physics2d.VerticesPerParticle*2)
	colors := make([]uint32, physics2d.VerticesPerParticle)

	n := e.FillVertexBuffer(mgl32.Ident4(), vertices, colors, 8)
	if n != 1 {
		t.Fatalf("wrote %d particles, want 1", n)
	}

	// Identity projection: w=1, so screen coordinates equal world x/y.
	// Size*Life*500 exceeds the clamp, so the half size is 50.
	wantVerts := []float32{10, 20 - 50, 10 - 50, 20 + 50, 10 + 50, 20 + 50}
	for i, v := range wantVerts {
		if math.Abs(float64(vertices[i]-v)) > 1e-5 {
			t.Fatalf("vertex[%d] = %v, want %v", i, vertices[i], v)
		}
	}

	// Full life keeps alpha at 255 and the RGB channels untouched.
	if colors[0] != 0xFF123456 {
		t.Fatalf("color %08X, want FF123456", colors[0])
	}
	if colors[1] != colors[0] || colors[2] != colors[0] {
		t.Fatal("triangle vertices must share one color")
	}
}

func TestFillVertexBufferRespectsLimits(t *testing.T) {
	e := physics2d.NewParticleEmitter(16)
	for i := 0; i < 10; i++ {
		e.Spawn(mgl32.Vec3{float32(i), 0, 0}, mgl32.Vec3{}, 1.0, 1.0, 0)
	}

	// maxRenderCount below the active count caps the write.
	vertices := make([]float32, 10*physics2d.VerticesPerParticle*2)
	colors := make([]uint32, 10*physics2d.VerticesPerParticle)
	if n := e.FillVertexBuffer(mgl32.Ident4(), vertices, colors, 4); n != 4 {
		t.Fatalf("wrote %d with maxRenderCount=4, want 4", n)
	}

	// Undersized buffers cap it too, whichever is smaller.
	small := make([]float32, 3*physics2d.VerticesPerParticle*2)
	if n := e.FillVertexBuffer(mgl32.Ident4(), small, colors, 10); n != 3 {
		t.Fatalf("wrote %d into a 3-particle vertex buffer, want 3", n)
	}
	smallColors := make([]uint32, 2*physics2d.VerticesPerParticle)
	if n := e.FillVertexBuffer(mgl32.Ident4(), vertices, smallColors, 10); n != 2 {
		t.Fatalf("wrote %d into a 2-particle color buffer, want 2", n)
	}
}

func TestFillVertexBufferCullsBehindNearPlane(t *testing.T) {
	e := physics2d.NewParticleEmitter(8)
	e.Spawn(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, 1.0, 1.0, 0)
	e.Spawn(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 1.0, 1.0, 0)

	// A perspective projection puts the +z particle behind the camera.
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.0, 0.1, 1000)

	vertices := make([]float32, 8*physics2d.VerticesPerParticle*2)
	colors := make([]uint32, 8*physics2d.VerticesPerParticle)
	if n := e.FillVertexBuffer(proj, vertices, colors, 8); n != 1 {
		t.Fatalf("wrote %d particles, want 1 visible", n)
	}
}
