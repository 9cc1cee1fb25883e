package gpu

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/rt/layout"
)

var vertexFormats = map[string]wgpu.VertexFormat{
	"f32":   wgpu.VertexFormatFloat32,
	"u32":   wgpu.VertexFormatUint32,
	"i32":   wgpu.VertexFormatSint32,
	"vec2f": wgpu.VertexFormatFloat32x2,
	"vec2u": wgpu.VertexFormatUint32x2,
	"vec4f": wgpu.VertexFormatFloat32x4,
}

// VertexBufferLayout describes a record as per-vertex input. Fields with a
// `location:"N"` tag become attributes; offsets and stride come from the Go
// compiler's layout, so padding is accounted for.
func VertexBufferLayout(record any) (wgpu.VertexBufferLayout, error) {
	host, err := layout.HostLayout(record)
	if err != nil {
		return wgpu.VertexBufferLayout{}, err
	}
	t := reflect.TypeOf(record)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var attributes []wgpu.VertexAttribute
	for _, f := range host.Fields {
		sf, _ := t.FieldByName(f.GoName)
		loc, ok := sf.Tag.Lookup("location")
		if !ok {
			continue
		}
		location, err := strconv.Atoi(loc)
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("gpu: %s.%s: bad location %q", host.Name, f.GoName, loc)
		}
		format, ok := vertexFormats[f.Type]
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("gpu: %s.%s: %s cannot be a vertex attribute", host.Name, f.GoName, f.Type)
		}
		attributes = append(attributes, wgpu.VertexAttribute{
			ShaderLocation: uint32(location),
			Offset:         f.Offset,
			Format:         format,
		})
	}
	if len(attributes) == 0 {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("gpu: %s has no located fields", host.Name)
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: host.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}, nil
}
