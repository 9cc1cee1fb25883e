package core

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Sizes of one record in bytes, identical on host and device.
const (
	ParticleSize = 24
	VertexSize   = 8
)

// Particle is one simulated entity. Its identity is its index in the owning
// buffer; there is no ID field.
//
// Layout (matches struct Particle in types.wgsl and particle_t in ShaderTypes.h):
//
//	offset  0: kind      uint8 (u32 on the WGSL side, values < 256; "type" in ShaderTypes.h)
//	offset  1: padding   7 bytes, always zero
//	offset  8: position  vec2<f32>
//	offset 16: velocity  vec2<f32>
//
// The value domain of Kind and the ranges of Position/Velocity belong to the
// simulation that owns the buffer.
type Particle struct {
	Kind     uint8      `gpu:"kind,u8" msl:"type"`
	_        [7]byte    // vec2 alignment
	Position mgl32.Vec2 `gpu:"position,vec2f"`
	Velocity mgl32.Vec2 `gpu:"velocity,vec2f"`
}

// Vertex is one point of a mesh or interaction point list. Topology is
// supplied by the draw configuration, not by the record.
type Vertex struct {
	Position mgl32.Vec2 `gpu:"position,vec2f" location:"0"`
}

// Record is the set of types that may cross the host/device boundary.
type Record interface {
	Particle | Vertex
}

// Compile-time layout checks: these fail to build if the Go layout drifts.
var (
	_ [ParticleSize]byte = [unsafe.Sizeof(Particle{})]byte{}
	_ [VertexSize]byte   = [unsafe.Sizeof(Vertex{})]byte{}
	_ [8]byte            = [unsafe.Offsetof(Particle{}.Position)]byte{}
	_ [16]byte           = [unsafe.Offsetof(Particle{}.Velocity)]byte{}
)

// Records lists every record type shared with the device, in the order the
// generated shader declarations use.
func Records() []any {
	return []any{Particle{}, Vertex{}}
}
