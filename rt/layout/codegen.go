package layout

import (
	"fmt"
	"strings"
	"unicode"
)

const generatedHeader = "// Code generated by gpulayout. DO NOT EDIT.\n"

// WGSLSource returns struct declarations for records, in argument order.
func WGSLSource(records ...any) (string, error) {
	var b strings.Builder
	b.WriteString(generatedHeader)
	for _, r := range records {
		l, err := DeviceLayout(r, WGSL)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n// %s: size %d, align %d\n", l.Name, l.Size, l.Align)
		fmt.Fprintf(&b, "struct %s {\n", l.Name)
		for _, f := range l.Fields {
			note := ""
			if f.Type == "u8" {
				note = ", host u8"
			}
			fmt.Fprintf(&b, "    %s: %s, // offset %d%s\n", f.Name, typeTable[f.Type].wgsl, f.Offset, note)
		}
		b.WriteString("}\n")
	}
	return b.String(), nil
}

const mslPreamble = `#ifndef ShaderTypes_h
#define ShaderTypes_h

#ifdef __METAL_VERSION__
#include <metal_stdlib>
#define LAYOUT_ASSERT(cond, msg) static_assert(cond, msg)
#else
#include <stdint.h>
#define LAYOUT_ASSERT(cond, msg) _Static_assert(cond, msg)
#endif

#include <simd/simd.h>
`

// MSLHeader returns a header that both the Metal shader compiler and a C/ObjC host
// compiler can include. Each struct is followed by static assertions on the
// Go compiler's size and offsets, so a stale header fails to compile.
func MSLHeader(records ...any) (string, error) {
	var b strings.Builder
	b.WriteString(generatedHeader)
	b.WriteString("\n")
	b.WriteString(mslPreamble)
	for _, r := range records {
		host, err := HostLayout(r)
		if err != nil {
			return "", err
		}
		name := CName(host.Name)
		b.WriteString("\ntypedef struct {\n")
		for _, f := range host.Fields {
			fmt.Fprintf(&b, "    %s %s;\n", typeTable[f.Type].msl, f.MSLName)
		}
		fmt.Fprintf(&b, "} %s;\n\n", name)
		fmt.Fprintf(&b, "LAYOUT_ASSERT(sizeof(%s) == %d, \"%s size\");\n", name, host.Size, name)
		for _, f := range host.Fields {
			fmt.Fprintf(&b, "LAYOUT_ASSERT(__builtin_offsetof(%s, %s) == %d, \"%s.%s offset\");\n",
				name, f.MSLName, f.Offset, name, f.MSLName)
		}
	}
	b.WriteString("\n#endif /* ShaderTypes_h */\n")
	return b.String(), nil
}

// CName converts a Go type name to the C typedef used in the header:
// Particle -> particle_t, PointVertex -> point_vertex_t.
func CName(goName string) string {
	var b strings.Builder
	for i, r := range goName {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	b.WriteString("_t")
	return b.String()
}
