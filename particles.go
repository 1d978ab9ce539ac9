package physics2d

import "github.com/go-gl/mathgl/mgl32"

// The particle subsystem is independent of the rigid-body pipeline: an
// emitter owns its own fixed pool and may be updated before or after the
// world step. Positions are 3D so the billboard fill can project through a
// perspective view; the render path works in float32 because that is what
// the caller's vertex buffers hold.

const (
	particleMinHalfSize = 0.5
	particleMaxHalfSize = 50.0
	particleSizeScale   = 500.0
	particleNearPlane   = 0.1
)

// VerticesPerParticle is the billboard topology written by FillVertexBuffer:
// one triangle, two floats per vertex.
const VerticesPerParticle = 3

// Particle is a value-only pool record; a particle holds no references and a
// dead one is recycled in place.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3

	// Life counts down from 1 to 0; MaxLife is the wall-clock lifetime in
	// seconds it is normalized against.
	Life    float32
	MaxLife float32

	Size  float32
	Color uint32
}

// ParticleEmitter is a fixed-capacity particle pool with its own gravity.
type ParticleEmitter struct {
	Gravity mgl32.Vec3

	particles   []Particle
	activeCount int
}

// NewParticleEmitter allocates an emitter holding at most maxParticles.
// Returns nil for a non-positive capacity.
func NewParticleEmitter(maxParticles int) *ParticleEmitter {
	if maxParticles <= 0 {
		return nil
	}
	return &ParticleEmitter{
		particles: make([]Particle, maxParticles),
	}
}

// ActiveCount returns the number of live particles.
func (e *ParticleEmitter) ActiveCount() int {
	if e == nil {
		return 0
	}
	return e.activeCount
}

// Capacity returns the fixed pool size.
func (e *ParticleEmitter) Capacity() int {
	if e == nil {
		return 0
	}
	return len(e.particles)
}

// Update integrates every live particle and recycles dead ones by swapping
// the last live particle into the freed slot. Iterating backwards keeps the
// swap from skipping the moved particle.
func (e *ParticleEmitter) Update(dt float64) {
	if e == nil {
		return
	}
	h := float32(dt)

	for i := e.activeCount - 1; i >= 0; i-- {
		p := &e.particles[i]

		p.Position = p.Position.Add(p.Velocity.Mul(h))
		p.Velocity = p.Velocity.Add(e.Gravity.Mul(h))
		p.Life -= h / p.MaxLife

		if p.Life <= 0 {
			e.activeCount--
			if i < e.activeCount {
				e.particles[i] = e.particles[e.activeCount]
			}
		}
	}
}

// Spawn adds a particle. At capacity it is a silent no-op; the pool never
// grows.
func (e *ParticleEmitter) Spawn(position, velocity mgl32.Vec3, maxLife, size float32, color uint32) {
	if e == nil || e.activeCount >= len(e.particles) {
		return
	}
	if maxLife <= 0 {
		maxLife = 1.0
	}

	p := &e.particles[e.activeCount]
	e.activeCount++

	p.Position = position
	p.Velocity = velocity
	p.Life = 1.0
	p.MaxLife = maxLife
	p.Size = size
	p.Color = color
}

// FillVertexBuffer projects up to maxRenderCount live particles through the
// view-projection matrix and writes one screen-space triangle per particle
// into the caller-owned buffers: vertices receives 3 vertices of 2 floats
// each, colors receives 3 packed ARGB values with life-faded alpha. Returns
// the number of particles written. Particles behind the near plane are
// culled and do not consume buffer space. The function allocates nothing;
// buffers must be pre-sized for maxRenderCount.
func (e *ParticleEmitter) FillVertexBuffer(viewProjection mgl32.Mat4, vertices []float32, colors []uint32, maxRenderCount int) int {
	if e == nil || e.activeCount == 0 || maxRenderCount <= 0 {
		return 0
	}

	toProcess := e.activeCount
	if toProcess > maxRenderCount {
		toProcess = maxRenderCount
	}
	if n := len(vertices) / (VerticesPerParticle * 2); n < toProcess {
		toProcess = n
	}
	if n := len(colors) / VerticesPerParticle; n < toProcess {
		toProcess = n
	}

	written := 0
	vPtr := 0
	cPtr := 0

	for i := 0; i < e.activeCount && written < toProcess; i++ {
		p := &e.particles[i]

		clip := viewProjection.Mul4x1(mgl32.Vec4{p.Position.X(), p.Position.Y(), p.Position.Z(), 1.0})
		wz := clip.W()
		if wz < particleNearPlane {
			continue
		}

		invW := 1.0 / wz
		screenX := clip.X() * invW
		screenY := clip.Y() * invW

		halfSize := p.Size * p.Life * invW * particleSizeScale
		if halfSize < particleMinHalfSize {
			halfSize = particleMinHalfSize
		}
		if halfSize > particleMaxHalfSize {
			halfSize = particleMaxHalfSize
		}

		vertices[vPtr+0] = screenX
		vertices[vPtr+1] = screenY - halfSize
		vertices[vPtr+2] = screenX - halfSize
		vertices[vPtr+3] = screenY + halfSize
		vertices[vPtr+4] = screenX + halfSize
		vertices[vPtr+5] = screenY + halfSize
		vPtr += 6

		alpha := uint32(p.Life * 255.0)
		col := (p.Color & 0x00FFFFFF) | (alpha << 24)
		colors[cPtr+0] = col
		colors[cPtr+1] = col
		colors[cPtr+2] = col
		cPtr += 3

		written++
	}

	return written
}
