// gpulayout prints the host and device layouts of the shared records and
// writes the generated device definitions.
//
//	gpulayout               # print the layout report
//	gpulayout -out rt/shaders
//	gpulayout -out rt/shaders -check
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/gekko3d/particles/rt/core"
	"github.com/gekko3d/particles/rt/layout"
)

var targets = []layout.Target{layout.Host, layout.WGSL, layout.MSL}

func main() {
	out := flag.String("out", "", "Directory to write types.wgsl and ShaderTypes.h into")
	check := flag.Bool("check", false, "Compare the files in -out instead of writing them")
	quiet := flag.Bool("q", false, "Do not print the layout report")
	flag.Parse()

	records := core.Records()
	if !*quiet {
		if err := report(os.Stdout, records); err != nil {
			fatalf("%v", err)
		}
	}
	if err := layout.Verify(records...); err != nil {
		fatalf("%v", err)
	}
	if *out == "" {
		return
	}

	files, err := generate(records)
	if err != nil {
		fatalf("%v", err)
	}
	stale := 0
	for _, name := range []string{"types.wgsl", "ShaderTypes.h"} {
		path := filepath.Join(*out, name)
		if *check {
			have, err := os.ReadFile(path)
			if err != nil {
				fatalf("%v", err)
			}
			if !bytes.Equal(have, files[name]) {
				fmt.Fprintf(os.Stderr, "%s is stale, run go generate\n", path)
				stale++
			}
			continue
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			fatalf("%v", err)
		}
	}
	if stale > 0 {
		os.Exit(1)
	}
}

func generate(records []any) (map[string][]byte, error) {
	wgsl, err := layout.WGSLSource(records...)
	if err != nil {
		return nil, err
	}
	msl, err := layout.MSLHeader(records...)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{
		"types.wgsl":    []byte(wgsl),
		"ShaderTypes.h": []byte(msl),
	}, nil
}

func report(w io.Writer, records []any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range records {
		for _, target := range targets {
			var (
				l   layout.Layout
				err error
			)
			if target == layout.Host {
				l, err = layout.HostLayout(r)
			} else {
				l, err = layout.DeviceLayout(r, target)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\tsize %d\talign %d\tstride %d\n", l.Name, l.Target, l.Size, l.Align, l.Stride)
			for _, f := range l.Fields {
				fmt.Fprintf(tw, "\t%s\t%s\toffset %d\tsize %d\n", f.Name, f.Type, f.Offset, f.Size)
			}
		}
	}
	return tw.Flush()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "gpulayout: "+format+"\n", args...)
	os.Exit(1)
}
