package shaders

import (
	_ "embed"
)

//go:generate go run ../../cmd/gpulayout -out .

// TypesWGSL declares every shared record for WGSL kernels.
//
//go:embed types.wgsl
var TypesWGSL string

// ShaderTypesH is the same declarations as a Metal/C header.
//
//go:embed ShaderTypes.h
var ShaderTypesH string

//go:embed probe.wgsl
var ProbeParticlesWGSL string

//go:embed probe_vertices.wgsl
var ProbeVerticesWGSL string

const (
	ProbeParticlesEntry = "probe_particles"
	ProbeVerticesEntry  = "probe_vertices"
	WorkgroupSize       = 64
)

// Compose prefixes a kernel with the record declarations so the kernel and
// the host share one definition.
func Compose(kernel string) string {
	return TypesWGSL + "\n" + kernel
}
