package particles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	p, err := cfg.ResolvePreset()
	require.NoError(t, err)
	assert.Equal(t, "compute", p.Name)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`
[simulation]
particles = 200
preset = wide
seed = 7

[gpu]
powerPreference = low

[log]
debug = true

[preset "wide"]
positionMin = -500
positionMax = 500
velocityXMin = -2
velocityXMax = 2
velocityYMin = -1
velocityYMax = 3
`)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Simulation.Particles)
	assert.Equal(t, 7, cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Simulation.FramesInFlight, "defaults survive")
	assert.Equal(t, "low", cfg.GPU.PowerPreference)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "particles", cfg.Log.Prefix)

	p, err := cfg.ResolvePreset()
	require.NoError(t, err)
	assert.Equal(t, Range{-500, 500}, p.Position[1])
	assert.Equal(t, Range{-1, 3}, p.Velocity[1])
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"zero particles":  "[simulation]\nparticles = 0\n",
		"one frame":       "[simulation]\nframesInFlight = 1\n",
		"too many sims":   "[simulation]\nsimulationsInFlight = 3\n",
		"unknown preset":  "[simulation]\npreset = nope\n",
		"bad power":       "[gpu]\npowerPreference = max\n",
		"unknown key":     "[simulation]\nbogus = 1\n",
		"inverted preset": "[simulation]\npreset = x\n[preset \"x\"]\npositionMin = 1\npositionMax = -1\n",
	}
	for name, text := range cases {
		_, err := ParseConfig(text)
		assert.Error(t, err, name)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.gcfg")
	require.NoError(t, os.WriteFile(path, []byte("[simulation]\npreset = meta\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "meta", cfg.Simulation.Preset)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.gcfg"))
	assert.Error(t, err)
}
