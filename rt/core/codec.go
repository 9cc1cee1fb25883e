package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrShortBuffer  = errors.New("core: buffer too short for record")
	ErrSizeMismatch = errors.New("core: byte length does not match buffer layout")
)

// Raw layouts use the host's native byte order; the device shares the
// host's memory, so there is no wire order to convert to.
var byteOrder = binary.NativeEndian

func putVec2(dst []byte, v [2]float32) {
	byteOrder.PutUint32(dst[0:4], math.Float32bits(v[0]))
	byteOrder.PutUint32(dst[4:8], math.Float32bits(v[1]))
}

func readVec2(src []byte) [2]float32 {
	return [2]float32{
		math.Float32frombits(byteOrder.Uint32(src[0:4])),
		math.Float32frombits(byteOrder.Uint32(src[4:8])),
	}
}

// PutParticle writes p into dst[:ParticleSize]. Padding bytes are zeroed so
// the device's u32 view of the kind reads the same value.
func PutParticle(dst []byte, p Particle) {
	_ = dst[ParticleSize-1]
	dst[0] = p.Kind
	clear(dst[1:8])
	putVec2(dst[8:16], p.Position)
	putVec2(dst[16:24], p.Velocity)
}

// ReadParticle decodes one particle from src[:ParticleSize].
func ReadParticle(src []byte) Particle {
	_ = src[ParticleSize-1]
	return Particle{
		Kind:     src[0],
		Position: readVec2(src[8:16]),
		Velocity: readVec2(src[16:24]),
	}
}

func PutVertex(dst []byte, v Vertex) {
	putVec2(dst[0:VertexSize], v.Position)
}

func ReadVertex(src []byte) Vertex {
	return Vertex{Position: readVec2(src[0:VertexSize])}
}

func (p Particle) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ParticleSize)
	PutParticle(buf, p)
	return buf, nil
}

func (p *Particle) UnmarshalBinary(data []byte) error {
	if len(data) < ParticleSize {
		return fmt.Errorf("particle: %w (%d < %d)", ErrShortBuffer, len(data), ParticleSize)
	}
	*p = ReadParticle(data)
	return nil
}

func (v Vertex) MarshalBinary() ([]byte, error) {
	buf := make([]byte, VertexSize)
	PutVertex(buf, v)
	return buf, nil
}

func (v *Vertex) UnmarshalBinary(data []byte) error {
	if len(data) < VertexSize {
		return fmt.Errorf("vertex: %w (%d < %d)", ErrShortBuffer, len(data), VertexSize)
	}
	*v = ReadVertex(data)
	return nil
}
