package particles

import (
	"testing"

	"github.com/gekko3d/particles/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerticesFromParticles(t *testing.T) {
	src := core.NewBuffer[core.Particle](3)
	src.At(0).Position = mgl32.Vec2{0, 0}
	src.At(1).Position = mgl32.Vec2{1, 0}
	src.At(2).Position = mgl32.Vec2{0, 1}
	src.At(2).Velocity = mgl32.Vec2{9, 9}

	dst := core.NewBuffer[core.Vertex](3)
	require.NoError(t, VerticesFromParticles(dst, src))

	assert.Equal(t, mgl32.Vec2{1, 0}, dst.At(1).Position)
	assert.Equal(t, mgl32.Vec2{0, 1}, dst.At(2).Position)
	assert.Equal(t, 3*8, dst.ByteLen())

	err := VerticesFromParticles(core.NewBuffer[core.Vertex](2), src)
	assert.ErrorIs(t, err, core.ErrSizeMismatch)
}

func TestFullscreenStrip(t *testing.T) {
	strip := FullscreenStrip()
	require.Equal(t, 4, strip.Len())
	assert.Equal(t, mgl32.Vec2{-1, -1}, strip.At(0).Position)
	assert.Equal(t, mgl32.Vec2{1, 1}, strip.At(3).Position)
}
