package particles

import (
	"fmt"
	"math"

	"github.com/gekko3d/particles/rt/core"
)

// The probe kernels apply fixed transforms (see rt/shaders/probe*.wgsl).
// These functions compute what the host expects back and compare bit for
// bit; any difference means host and device disagree on the layout.

func ExpectedParticleProbe(p core.Particle) core.Particle {
	return core.Particle{Kind: p.Kind + 1, Position: p.Velocity, Velocity: p.Position}
}

func ExpectedVertexProbe(v core.Vertex) core.Vertex {
	v.Position[0], v.Position[1] = v.Position[1], v.Position[0]
	return v
}

func CheckParticleProbe(src, dst *core.Buffer[core.Particle]) error {
	if src.Len() != dst.Len() {
		return fmt.Errorf("%w: %d sent, %d returned", core.ErrSizeMismatch, src.Len(), dst.Len())
	}
	bad, first := 0, -1
	for i, p := range src.Elements() {
		if !sameParticle(ExpectedParticleProbe(p), *dst.At(i)) {
			if first < 0 {
				first = i
			}
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d of %d particles differ, first at index %d: got %+v",
			ErrLayoutMismatch, bad, src.Len(), first, *dst.At(first))
	}
	return nil
}

func CheckVertexProbe(src, dst *core.Buffer[core.Vertex]) error {
	if src.Len() != dst.Len() {
		return fmt.Errorf("%w: %d sent, %d returned", core.ErrSizeMismatch, src.Len(), dst.Len())
	}
	bad, first := 0, -1
	for i, v := range src.Elements() {
		if !sameVec2(ExpectedVertexProbe(v).Position, dst.At(i).Position) {
			if first < 0 {
				first = i
			}
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d of %d vertices differ, first at index %d",
			ErrLayoutMismatch, bad, src.Len(), first)
	}
	return nil
}

func sameParticle(a, b core.Particle) bool {
	return a.Kind == b.Kind && sameVec2(a.Position, b.Position) && sameVec2(a.Velocity, b.Velocity)
}

func sameVec2(a, b [2]float32) bool {
	return math.Float32bits(a[0]) == math.Float32bits(b[0]) &&
		math.Float32bits(a[1]) == math.Float32bits(b[1])
}
