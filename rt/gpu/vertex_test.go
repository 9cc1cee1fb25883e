package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexBufferLayout_Vertex(t *testing.T) {
	l, err := VertexBufferLayout(core.Vertex{})
	require.NoError(t, err)

	assert.Equal(t, uint64(core.VertexSize), l.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, l.StepMode)
	require.Len(t, l.Attributes, 1)
	assert.Equal(t, uint32(0), l.Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(0), l.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, l.Attributes[0].Format)
}

type paddedVertex struct {
	Kind  uint32     `gpu:"kind,u32"`
	_     uint32     // vec2 alignment
	Pos   [2]float32 `gpu:"pos,vec2f" location:"0"`
	Color [4]float32 `gpu:"color,vec4f" location:"1"`
}

func TestVertexBufferLayout_UsesRealOffsets(t *testing.T) {
	l, err := VertexBufferLayout(&paddedVertex{})
	require.NoError(t, err)

	assert.Equal(t, uint64(32), l.ArrayStride)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, uint64(8), l.Attributes[0].Offset)
	assert.Equal(t, uint64(16), l.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, l.Attributes[1].Format)
}

func TestVertexBufferLayout_Errors(t *testing.T) {
	// the particle record has no located fields
	_, err := VertexBufferLayout(core.Particle{})
	assert.Error(t, err)

	type u8Attr struct {
		K uint8 `gpu:"k,u8" location:"0"`
	}
	_, err = VertexBufferLayout(u8Attr{})
	assert.Error(t, err)

	type badLoc struct {
		P [2]float32 `gpu:"p,vec2f" location:"x"`
	}
	_, err = VertexBufferLayout(badLoc{})
	assert.Error(t, err)
}

func TestWorkgroups(t *testing.T) {
	assert.Equal(t, uint32(0), Workgroups(0))
	assert.Equal(t, uint32(1), Workgroups(1))
	assert.Equal(t, uint32(1), Workgroups(64))
	assert.Equal(t, uint32(2), Workgroups(65))
	assert.Equal(t, uint32(2), Workgroups(100))
}
