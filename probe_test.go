package particles

import (
	"math"
	"testing"

	"github.com/gekko3d/particles/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeInput() *core.Buffer[core.Particle] {
	buf := core.NewBuffer[core.Particle](4)
	buf.Set(0, core.Particle{Kind: 0, Position: mgl32.Vec2{1, 2}, Velocity: mgl32.Vec2{3, 4}})
	buf.Set(1, core.Particle{Kind: 255, Position: mgl32.Vec2{-1, 0}, Velocity: mgl32.Vec2{0, -1}})
	buf.Set(2, core.Particle{Kind: 7, Position: mgl32.Vec2{float32(math.Inf(1)), 0}})
	return buf
}

func simulateParticleProbe(src *core.Buffer[core.Particle]) *core.Buffer[core.Particle] {
	dst := core.NewBuffer[core.Particle](src.Len())
	for i, p := range src.Elements() {
		dst.Set(i, ExpectedParticleProbe(p))
	}
	return dst
}

func TestExpectedParticleProbe(t *testing.T) {
	got := ExpectedParticleProbe(core.Particle{Kind: 255, Position: mgl32.Vec2{1, 2}, Velocity: mgl32.Vec2{3, 4}})
	assert.Equal(t, uint8(0), got.Kind)
	assert.Equal(t, mgl32.Vec2{3, 4}, got.Position)
	assert.Equal(t, mgl32.Vec2{1, 2}, got.Velocity)
}

func TestCheckParticleProbe(t *testing.T) {
	src := probeInput()
	dst := simulateParticleProbe(src)
	require.NoError(t, CheckParticleProbe(src, dst))

	// A device that reads velocity one float late
	dst.At(1).Position[0] = dst.At(1).Position[1]
	err := CheckParticleProbe(src, dst)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Contains(t, err.Error(), "1 of 4 particles differ, first at index 1")

	err = CheckParticleProbe(src, core.NewBuffer[core.Particle](3))
	assert.ErrorIs(t, err, core.ErrSizeMismatch)
}

func TestCheckParticleProbe_Bitwise(t *testing.T) {
	src := core.NewBuffer[core.Particle](1)
	src.At(0).Velocity = mgl32.Vec2{float32(math.Copysign(0, -1)), 0}
	dst := simulateParticleProbe(src)
	require.NoError(t, CheckParticleProbe(src, dst))

	dst.At(0).Position[0] = 0
	assert.ErrorIs(t, CheckParticleProbe(src, dst), ErrLayoutMismatch, "-0 and +0 differ")
}

func TestCheckVertexProbe(t *testing.T) {
	src := FullscreenStrip()
	dst := core.NewBuffer[core.Vertex](src.Len())
	for i, v := range src.Elements() {
		dst.Set(i, ExpectedVertexProbe(v))
	}
	require.NoError(t, CheckVertexProbe(src, dst))
	assert.Equal(t, mgl32.Vec2{-1, 1}, dst.At(1).Position)

	dst.At(3).Position = mgl32.Vec2{}
	assert.ErrorIs(t, CheckVertexProbe(src, dst), ErrLayoutMismatch)
}
