// Package inspect looks at particle buffers on the host: summary statistics
// and a rasterized snapshot.
package inspect

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/gekko3d/particles/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"
)

type Summary struct {
	Count     int
	Kinds     map[uint8]int
	Min, Max  mgl32.Vec2
	MeanSpeed float32
	MaxSpeed  float32
	NonFinite int // records with a NaN or infinite component
}

func Summarize(particles []core.Particle) Summary {
	s := Summary{Count: len(particles), Kinds: make(map[uint8]int)}
	if len(particles) == 0 {
		return s
	}
	s.Min = mgl32.Vec2{float32(math.Inf(1)), float32(math.Inf(1))}
	s.Max = mgl32.Vec2{float32(math.Inf(-1)), float32(math.Inf(-1))}

	var total float64
	finite := 0
	for _, p := range particles {
		s.Kinds[p.Kind]++
		if !isFinite(p.Position) || !isFinite(p.Velocity) {
			s.NonFinite++
			continue
		}
		finite++
		for i := 0; i < 2; i++ {
			s.Min[i] = min(s.Min[i], p.Position[i])
			s.Max[i] = max(s.Max[i], p.Position[i])
		}
		speed := p.Velocity.Len()
		total += float64(speed)
		s.MaxSpeed = max(s.MaxSpeed, speed)
	}
	if finite == 0 {
		s.Min, s.Max = mgl32.Vec2{}, mgl32.Vec2{}
		return s
	}
	s.MeanSpeed = float32(total / float64(finite))
	return s
}

func isFinite(v mgl32.Vec2) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

// Options control Render. Simulation space has its origin at the image
// centre with y pointing up.
type Options struct {
	Width, Height int
	Scale         float32 // pixels per simulation unit
	PointSize     float32 // square side in pixels
	Background    color.Color
	Palette       []color.Color // indexed by kind modulo len
}

func DefaultOptions() Options {
	return Options{
		Width:      512,
		Height:     512,
		Scale:      0.5,
		PointSize:  3,
		Background: color.Black,
		Palette: []color.Color{
			color.RGBA{0xff, 0xff, 0xff, 0xff},
			color.RGBA{0xff, 0x80, 0x40, 0xff},
			color.RGBA{0x40, 0xc0, 0xff, 0xff},
			color.RGBA{0x80, 0xff, 0x80, 0xff},
		},
	}
}

// Render draws one square per particle, grouped by kind colour.
func Render(particles []core.Particle, opts Options) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultOptions().Palette
	}
	if opts.PointSize <= 0 {
		opts.PointSize = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if opts.Background != nil {
		bg := image.NewUniform(opts.Background)
		for y := 0; y < opts.Height; y++ {
			for x := 0; x < opts.Width; x++ {
				img.Set(x, y, bg.C)
			}
		}
	}

	cx, cy := float32(opts.Width)/2, float32(opts.Height)/2
	half := opts.PointSize / 2
	z := vector.NewRasterizer(opts.Width, opts.Height)
	for ci, c := range opts.Palette {
		z.Reset(opts.Width, opts.Height)
		drawn := 0
		for _, p := range particles {
			if int(p.Kind)%len(opts.Palette) != ci || !isFinite(p.Position) {
				continue
			}
			x := cx + p.Position[0]*opts.Scale
			y := cy - p.Position[1]*opts.Scale
			if x+half < 0 || y+half < 0 || x-half > float32(opts.Width) || y-half > float32(opts.Height) {
				continue
			}
			z.MoveTo(x-half, y-half)
			z.LineTo(x+half, y-half)
			z.LineTo(x+half, y+half)
			z.LineTo(x-half, y+half)
			z.ClosePath()
			drawn++
		}
		if drawn > 0 {
			z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
		}
	}
	return img
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
