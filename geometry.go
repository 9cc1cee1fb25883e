package particles

import (
	"fmt"

	"github.com/gekko3d/particles/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// VerticesFromParticles regenerates a point list from particle positions,
// index for index.
func VerticesFromParticles(dst *core.Buffer[core.Vertex], src *core.Buffer[core.Particle]) error {
	if dst.Len() != src.Len() {
		return fmt.Errorf("%w: %d vertices for %d particles", core.ErrSizeMismatch, dst.Len(), src.Len())
	}
	for i, p := range src.Elements() {
		dst.At(i).Position = p.Position
	}
	return nil
}

// FullscreenStrip returns the four corners of clip space in triangle-strip
// order.
func FullscreenStrip() *core.Buffer[core.Vertex] {
	buf := core.NewBuffer[core.Vertex](4)
	buf.Set(0, core.Vertex{Position: mgl32.Vec2{-1, -1}})
	buf.Set(1, core.Vertex{Position: mgl32.Vec2{1, -1}})
	buf.Set(2, core.Vertex{Position: mgl32.Vec2{-1, 1}})
	buf.Set(3, core.Vertex{Position: mgl32.Vec2{1, 1}})
	return buf
}
