package particles

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gekko3d/particles/rt/core"
	"github.com/gekko3d/particles/rt/gpu"
	"github.com/gekko3d/particles/rt/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Host tests need a real adapter.
func requireGPU(t *testing.T) {
	t.Helper()
	if os.Getenv("PARTICLES_GPU_TESTS") != "1" {
		t.Skip("set PARTICLES_GPU_TESTS=1 to run against a GPU adapter")
	}
}

func TestHost_Probe(t *testing.T) {
	requireGPU(t)

	cfg := DefaultConfig()
	cfg.Simulation.Particles = 1000
	h, err := NewHost(cfg, nil)
	require.NoError(t, err)
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := h.Probe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, report.Particles)
	assert.Equal(t, 1000, report.Vertices)
	assert.Equal(t, 0, report.Frame.Read)
	assert.Equal(t, 1, report.Frame.Write)
}

func TestHost_UpdateVisibleOnDevice(t *testing.T) {
	requireGPU(t)

	cfg := DefaultConfig()
	cfg.Simulation.Particles = 4
	h, err := NewHost(cfg, nil)
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.Update(ctx, func(buf *core.Buffer[core.Particle]) {
		buf.At(2).Kind = 9
	}))

	got, err := h.Read(ctx, h.ring.Next())
	require.NoError(t, err)
	assert.Equal(t, h.Particles().Elements(), got.Elements())
}

func TestNewHost_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.Particles = 0
	_, err := NewHost(cfg, nil)
	assert.Error(t, err)
}

func TestHost_UpdateKeepsDeviceProgress(t *testing.T) {
	requireGPU(t)

	cfg := DefaultConfig()
	cfg.Simulation.Particles = 64
	h, err := NewHost(cfg, nil)
	require.NoError(t, err)
	defer h.Close()

	spawned := h.Particles().Elements()
	before := make([]core.Particle, len(spawned))
	copy(before, spawned)

	kernel, err := h.ctx.NewKernel("step", shaders.ProbeParticlesWGSL, shaders.ProbeParticlesEntry)
	require.NoError(t, err)
	defer kernel.Release()

	ctx := context.Background()
	_, err = h.Step(ctx, kernel)
	require.NoError(t, err)

	// the host edit lands on top of the stepped state, not the spawn state
	require.NoError(t, h.Update(ctx, func(buf *core.Buffer[core.Particle]) {
		buf.At(0).Kind = 200
	}))
	got, err := h.Read(ctx, h.ring.Next())
	require.NoError(t, err)
	for i, p := range before {
		want := ExpectedParticleProbe(p)
		if i == 0 {
			want.Kind = 200
		}
		assert.Equal(t, want, *got.At(i), "particle %d", i)
	}
	assert.Equal(t, got.Elements(), h.Particles().Elements())
}

func TestHost_ReadSlotOutOfRange(t *testing.T) {
	h := &Host{slots: make([]*gpu.Storage, 3)}
	ctx := context.Background()

	_, err := h.Read(ctx, 3)
	assert.Error(t, err)
	_, err = h.Read(ctx, -1)
	assert.Error(t, err)
}
