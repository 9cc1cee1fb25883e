// Package layout describes the memory layout of host/device records and
// checks that the Go compiler and the shader compilers agree on it.
//
// A record is a Go struct whose non-blank fields carry a `gpu:"name,type"`
// tag. An `msl:"name"` tag renames a field in the Metal header only, for
// names that are reserved in WGSL. The Go struct is the only definition: device layouts are derived from
// the tags with each target's alignment rules, and the WGSL and Metal
// declarations are generated from the same tags.
package layout

import (
	"fmt"
	"reflect"
	"strings"
)

type Target int

const (
	Host Target = iota
	WGSL
	MSL
)

func (t Target) String() string {
	switch t {
	case Host:
		return "host"
	case WGSL:
		return "wgsl"
	case MSL:
		return "msl"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// Field is one member of a record as seen by one target.
type Field struct {
	Name    string // device-side name
	MSLName string // Name unless overridden by an msl tag
	GoName  string
	Type   string // tag type, see typeTable
	Offset uint64
	Size   uint64
	Align  uint64
}

// Layout is a record's layout on one target.
type Layout struct {
	Name   string
	Target Target
	Fields []Field
	Size   uint64
	Align  uint64
	Stride uint64 // distance between consecutive elements of an array
}

// Field returns the field with the given device-side name.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type typeInfo struct {
	wgsl      string
	msl       string
	hostKind  reflect.Kind
	elemKind  reflect.Kind // arrays only
	hostLen   int          // arrays only
	wgslSize  uint64
	wgslAlign uint64
	mslSize   uint64
	mslAlign  uint64
}

// WGSL has no 8-bit scalar, so u8 is declared as u32 on that target and
// relies on the host zeroing the three bytes after it.
var typeTable = map[string]typeInfo{
	"u8":    {wgsl: "u32", msl: "uint8_t", hostKind: reflect.Uint8, wgslSize: 4, wgslAlign: 4, mslSize: 1, mslAlign: 1},
	"u32":   {wgsl: "u32", msl: "uint32_t", hostKind: reflect.Uint32, wgslSize: 4, wgslAlign: 4, mslSize: 4, mslAlign: 4},
	"i32":   {wgsl: "i32", msl: "int32_t", hostKind: reflect.Int32, wgslSize: 4, wgslAlign: 4, mslSize: 4, mslAlign: 4},
	"f32":   {wgsl: "f32", msl: "float", hostKind: reflect.Float32, wgslSize: 4, wgslAlign: 4, mslSize: 4, mslAlign: 4},
	"vec2f": {wgsl: "vec2<f32>", msl: "vector_float2", hostKind: reflect.Array, elemKind: reflect.Float32, hostLen: 2, wgslSize: 8, wgslAlign: 8, mslSize: 8, mslAlign: 8},
	"vec2u": {wgsl: "vec2<u32>", msl: "vector_uint2", hostKind: reflect.Array, elemKind: reflect.Uint32, hostLen: 2, wgslSize: 8, wgslAlign: 8, mslSize: 8, mslAlign: 8},
	"vec4f": {wgsl: "vec4<f32>", msl: "vector_float4", hostKind: reflect.Array, elemKind: reflect.Float32, hostLen: 4, wgslSize: 16, wgslAlign: 16, mslSize: 16, mslAlign: 16},
}

type taggedField struct {
	sf      reflect.StructField
	name    string
	mslName string
	typ     string
	info    typeInfo
}

func recordType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("layout: nil record")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("layout: %s is not a struct", t)
	}
	return t, nil
}

func taggedFields(t reflect.Type) ([]taggedField, error) {
	var out []taggedField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}
		tag, ok := sf.Tag.Lookup("gpu")
		if !ok {
			return nil, fmt.Errorf("layout: %s.%s has no gpu tag", t.Name(), sf.Name)
		}
		name, typ, ok := strings.Cut(tag, ",")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("layout: %s.%s: malformed gpu tag %q", t.Name(), sf.Name, tag)
		}
		info, ok := typeTable[typ]
		if !ok {
			return nil, fmt.Errorf("layout: %s.%s: unsupported type %q", t.Name(), sf.Name, typ)
		}
		if err := checkHostType(sf.Type, info); err != nil {
			return nil, fmt.Errorf("layout: %s.%s: %w", t.Name(), sf.Name, err)
		}
		mslName := name
		if alias, ok := sf.Tag.Lookup("msl"); ok {
			if alias == "" {
				return nil, fmt.Errorf("layout: %s.%s: empty msl tag", t.Name(), sf.Name)
			}
			mslName = alias
		}
		out = append(out, taggedField{sf: sf, name: name, mslName: mslName, typ: typ, info: info})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("layout: %s has no gpu fields", t.Name())
	}
	return out, nil
}

func checkHostType(t reflect.Type, info typeInfo) error {
	if t.Kind() != info.hostKind {
		return fmt.Errorf("go type %s does not match %s", t, info.wgsl)
	}
	if info.hostKind == reflect.Array && (t.Elem().Kind() != info.elemKind || t.Len() != info.hostLen) {
		return fmt.Errorf("go type %s does not match %s", t, info.wgsl)
	}
	return nil
}

// HostLayout returns the layout the Go compiler chose for v's type.
func HostLayout(v any) (Layout, error) {
	t, err := recordType(v)
	if err != nil {
		return Layout{}, err
	}
	tagged, err := taggedFields(t)
	if err != nil {
		return Layout{}, err
	}
	l := Layout{
		Name:   t.Name(),
		Target: Host,
		Size:   uint64(t.Size()),
		Align:  uint64(t.Align()),
		Stride: uint64(t.Size()),
	}
	for _, tf := range tagged {
		l.Fields = append(l.Fields, Field{
			Name:    tf.name,
			MSLName: tf.mslName,
			GoName:  tf.sf.Name,
			Type:    tf.typ,
			Offset:  uint64(tf.sf.Offset),
			Size:    uint64(tf.sf.Type.Size()),
			Align:   uint64(tf.sf.Type.Align()),
		})
	}
	return l, nil
}

// DeviceLayout computes v's layout under the rules of target, using only
// the gpu tags and not the Go compiler's offsets.
func DeviceLayout(v any, target Target) (Layout, error) {
	if target == Host {
		return HostLayout(v)
	}
	if target != WGSL && target != MSL {
		return Layout{}, fmt.Errorf("layout: unknown target %s", target)
	}
	t, err := recordType(v)
	if err != nil {
		return Layout{}, err
	}
	tagged, err := taggedFields(t)
	if err != nil {
		return Layout{}, err
	}
	l := Layout{Name: t.Name(), Target: target, Align: 1}
	var end uint64
	for _, tf := range tagged {
		size, align := tf.info.wgslSize, tf.info.wgslAlign
		if target == MSL {
			size, align = tf.info.mslSize, tf.info.mslAlign
		}
		offset := roundUp(end, align)
		l.Fields = append(l.Fields, Field{
			Name:    tf.name,
			MSLName: tf.mslName,
			GoName:  tf.sf.Name,
			Type:    tf.typ,
			Offset:  offset,
			Size:    size,
			Align:   align,
		})
		end = offset + size
		l.Align = max(l.Align, align)
	}
	l.Size = roundUp(end, l.Align)
	l.Stride = l.Size
	return l, nil
}

func roundUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}
