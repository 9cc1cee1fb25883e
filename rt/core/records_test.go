package core

import (
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticle_Size(t *testing.T) {
	// 1 byte kind + 7 bytes alignment padding + two 8 byte vectors
	assert.Equal(t, uintptr(1+7+8+8), unsafe.Sizeof(Particle{}))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(Particle{}.Kind))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(Particle{}.Position))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(Particle{}.Velocity))
}

func TestVertex_Size(t *testing.T) {
	assert.Equal(t, uintptr(8), unsafe.Sizeof(Vertex{}))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(Vertex{}.Position))
}

func TestParticle_RoundTripBitIdentical(t *testing.T) {
	nan := math.Float32frombits(0x7fc00123)
	negZero := math.Float32frombits(0x80000000)
	cases := []Particle{
		{},
		{Kind: 1, Position: mgl32.Vec2{1, 2}, Velocity: mgl32.Vec2{0.5, -0.5}},
		{Kind: 255, Position: mgl32.Vec2{math.MaxFloat32, -math.MaxFloat32}, Velocity: mgl32.Vec2{math.SmallestNonzeroFloat32, negZero}},
		{Kind: 7, Position: mgl32.Vec2{nan, float32(math.Inf(1))}, Velocity: mgl32.Vec2{float32(math.Inf(-1)), 3}},
	}
	for _, want := range cases {
		raw, err := want.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, raw, ParticleSize)

		var got Particle
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, want.Kind, got.Kind)
		for i := 0; i < 2; i++ {
			assert.Equal(t, math.Float32bits(want.Position[i]), math.Float32bits(got.Position[i]))
			assert.Equal(t, math.Float32bits(want.Velocity[i]), math.Float32bits(got.Velocity[i]))
		}
	}
}

func TestParticle_PaddingZeroed(t *testing.T) {
	raw := make([]byte, ParticleSize)
	for i := range raw {
		raw[i] = 0xAA
	}
	PutParticle(raw, Particle{Kind: 3})
	assert.Equal(t, byte(3), raw[0])
	assert.Equal(t, make([]byte, 7), raw[1:8])
}

func TestParticle_UnmarshalShort(t *testing.T) {
	var p Particle
	err := p.UnmarshalBinary(make([]byte, ParticleSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestVertex_RoundTrip(t *testing.T) {
	want := Vertex{Position: mgl32.Vec2{-1.25, 1e-30}}
	raw, err := want.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, VertexSize)

	var got Vertex
	require.NoError(t, got.UnmarshalBinary(raw))
	assert.Equal(t, want, got)

	assert.ErrorIs(t, got.UnmarshalBinary(raw[:4]), ErrShortBuffer)
}
