package particles

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// Config is read from an INI-style file:
//
//	[simulation]
//	particles = 100
//	preset = compute
//	seed = 1
//	framesInFlight = 3
//	simulationsInFlight = 1
//
//	[gpu]
//	powerPreference = high
//
//	[log]
//	prefix = particles
//	debug = false
//
//	[preset "wide"]
//	positionMin = -500
//	positionMax = 500
//	velocityXMin = -2
//	velocityXMax = 2
//	velocityYMin = -2
//	velocityYMax = 2
type Config struct {
	Simulation SimulationConfig
	GPU        GPUConfig
	Log        LogConfig
	Preset     map[string]*PresetConfig
}

type SimulationConfig struct {
	Particles           int
	Preset              string
	Seed                int
	FramesInFlight      int
	SimulationsInFlight int
}

type GPUConfig struct {
	Label           string
	PowerPreference string
}

type LogConfig struct {
	Prefix string
	Debug  bool
}

// PresetConfig is a user-defined spawn preset. Position bounds apply to
// both axes.
type PresetConfig struct {
	PositionMin, PositionMax   float64
	VelocityXMin, VelocityXMax float64
	VelocityYMin, VelocityYMax float64
}

func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Particles:           100,
			Preset:              "compute",
			Seed:                1,
			FramesInFlight:      3,
			SimulationsInFlight: 1,
		},
		GPU: GPUConfig{Label: "particles", PowerPreference: "high"},
		Log: LogConfig{Prefix: "particles"},
	}
}

// LoadConfig reads path over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadFileInto(&cfg, path); err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig is LoadConfig for in-memory text.
func ParseConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadStringInto(&cfg, text); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	sim := c.Simulation
	if sim.Particles <= 0 {
		return fmt.Errorf("simulation.particles must be positive, got %d", sim.Particles)
	}
	if sim.FramesInFlight < 2 {
		return fmt.Errorf("simulation.framesInFlight must be at least 2, got %d", sim.FramesInFlight)
	}
	if sim.SimulationsInFlight < 1 || sim.SimulationsInFlight >= sim.FramesInFlight {
		return fmt.Errorf("simulation.simulationsInFlight must be in [1, %d), got %d",
			sim.FramesInFlight, sim.SimulationsInFlight)
	}
	switch c.GPU.PowerPreference {
	case "", "high", "low":
	default:
		return fmt.Errorf("gpu.powerPreference must be high or low, got %q", c.GPU.PowerPreference)
	}
	for name, p := range c.Preset {
		if p.PositionMin > p.PositionMax || p.VelocityXMin > p.VelocityXMax || p.VelocityYMin > p.VelocityYMax {
			return fmt.Errorf("preset %q has a range with min > max", name)
		}
	}
	if _, err := c.ResolvePreset(); err != nil {
		return err
	}
	return nil
}

// ResolvePreset returns the preset named by simulation.preset, looking at
// the config's own presets before the built-in ones.
func (c *Config) ResolvePreset() (Preset, error) {
	name := c.Simulation.Preset
	if p, ok := c.Preset[name]; ok {
		return Preset{
			Name: name,
			Position: [2]Range{
				{float32(p.PositionMin), float32(p.PositionMax)},
				{float32(p.PositionMin), float32(p.PositionMax)},
			},
			Velocity: [2]Range{
				{float32(p.VelocityXMin), float32(p.VelocityXMax)},
				{float32(p.VelocityYMin), float32(p.VelocityYMax)},
			},
		}, nil
	}
	if p, ok := LookupPreset(name); ok {
		return p, nil
	}
	return Preset{}, fmt.Errorf("unknown preset %q", name)
}
