package particles

import (
	"math/rand"
	"sort"

	"github.com/gekko3d/particles/rt/core"
)

type Range struct {
	Min, Max float32
}

func (r Range) sample(rng *rand.Rand) float32 {
	return r.Min + (r.Max-r.Min)*rng.Float32()
}

// Preset is a spawn distribution: every component is drawn uniformly from
// its range.
type Preset struct {
	Name     string
	Position [2]Range
	Velocity [2]Range
}

var builtinPresets = map[string]Preset{
	"particles": {
		Name:     "particles",
		Position: [2]Range{{-200, 200}, {-200, 200}},
		Velocity: [2]Range{{-10, 10}, {-10, 10}},
	},
	"meta": {
		Name:     "meta",
		Position: [2]Range{{-200, 200}, {-200, 200}},
		Velocity: [2]Range{{-8, 8}, {-13, 13}},
	},
	"compute": {
		Name:     "compute",
		Position: [2]Range{{-300, 300}, {-300, 300}},
		Velocity: [2]Range{{-8, 10}, {-8, 10}},
	},
	"interaction": {
		Name:     "interaction",
		Position: [2]Range{{-400, 400}, {-400, 400}},
		Velocity: [2]Range{{-5, 5}, {-5, 5}},
	},
}

func LookupPreset(name string) (Preset, bool) {
	p, ok := builtinPresets[name]
	return p, ok
}

func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spawn overwrites every particle's position and velocity with samples from
// preset. Kinds are left untouched; their meaning belongs to the
// simulation.
func Spawn(buf *core.Buffer[core.Particle], preset Preset, rng *rand.Rand) {
	for i := range buf.Elements() {
		p := buf.At(i)
		p.Position[0] = preset.Position[0].sample(rng)
		p.Position[1] = preset.Position[1].sample(rng)
		p.Velocity[0] = preset.Velocity[0].sample(rng)
		p.Velocity[1] = preset.Velocity[1].sample(rng)
	}
}
