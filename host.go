// Package particles is the host side of a particle system whose records are
// shared byte for byte with GPU kernels: configuration, spawning, snapshots
// and a Host that drives the device through rt/gpu.
package particles

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gekko3d/particles/rt/core"
	"github.com/gekko3d/particles/rt/gpu"
	"github.com/gekko3d/particles/rt/layout"
	"github.com/gekko3d/particles/rt/shaders"
)

// Host owns the particle buffer and its device copies. Device slots rotate
// through a gpu.Ring; the fence keeps host writes and device steps from
// overlapping.
type Host struct {
	cfg Config
	log Logger

	ctx       *gpu.Context
	ring      *gpu.Ring
	fence     gpu.Fence
	particles *core.Buffer[core.Particle]
	slots     []*gpu.Storage
	behind    bool // the device has stepped since particles was last synced
}

// NewHost checks the record layouts, opens a device and allocates one
// particle slot per frame in flight. Particles are spawned from the
// configured preset.
func NewHost(cfg Config, log Logger) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NewNopLogger()
	}
	if err := layout.Verify(core.Records()...); err != nil {
		return nil, err
	}
	preset, err := cfg.ResolvePreset()
	if err != nil {
		return nil, err
	}

	ring, err := gpu.NewRing(cfg.Simulation.FramesInFlight, cfg.Simulation.SimulationsInFlight)
	if err != nil {
		return nil, err
	}

	particles := core.NewBuffer[core.Particle](cfg.Simulation.Particles)
	Spawn(particles, preset, rand.New(rand.NewSource(int64(cfg.Simulation.Seed))))

	ctx, err := gpu.NewContext(gpu.Options{
		Label:           cfg.GPU.Label,
		PowerPreference: cfg.GPU.PowerPreference,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}

	h := &Host{cfg: cfg, log: log, ctx: ctx, ring: ring, particles: particles}
	for i := 0; i < ring.Slots(); i++ {
		s, err := ctx.NewStorage(fmt.Sprintf("particles_%d", i), particles.Len(), particles.Stride())
		if err != nil {
			h.Close()
			return nil, err
		}
		h.slots = append(h.slots, s)
	}
	if err := gpu.Upload(h.slots[0], particles); err != nil {
		h.Close()
		return nil, err
	}
	log.Infof("host ready: %d particles (%s preset), %d slots", particles.Len(), preset.Name, len(h.slots))
	return h, nil
}

// Particles is the host copy as of the last Update or NewHost. Mutate it
// only through Update.
func (h *Host) Particles() *core.Buffer[core.Particle] { return h.particles }

// Update runs fn on the host copy between steps and uploads the result to
// the slot the next step reads. If the device stepped since the last
// Update, the host copy is first refreshed from that slot.
func (h *Host) Update(ctx context.Context, fn func(*core.Buffer[core.Particle])) error {
	var syncErr error
	err := h.fence.HostAccess(func() {
		slot := h.slots[h.ring.Next()]
		if h.behind {
			if syncErr = gpu.Download(ctx, slot, h.particles); syncErr != nil {
				return
			}
			h.behind = false
		}
		fn(h.particles)
		syncErr = gpu.Upload(slot, h.particles)
	})
	if err != nil {
		return err
	}
	return syncErr
}

// Step runs kernel once over every particle: it reads the current slot and
// writes the next. It returns after the device finished.
func (h *Host) Step(ctx context.Context, kernel *gpu.Kernel) (gpu.Frame, error) {
	frame, err := h.ring.Acquire(ctx)
	if err != nil {
		return gpu.Frame{}, err
	}
	defer h.ring.Release()

	d, err := h.ctx.Dispatch(kernel, &h.fence, h.particles.Len(), h.slots[frame.Read], h.slots[frame.Write])
	if err != nil {
		return frame, err
	}
	h.behind = true
	if err := h.ctx.Await(ctx, d); err != nil {
		return frame, err
	}
	h.log.Debugf("step %d (%s): slot %d -> %d", d.Step, d.ID, frame.Read, frame.Write)
	return frame, nil
}

// Read downloads slot into a new buffer. The fence must be idle.
func (h *Host) Read(ctx context.Context, slot int) (*core.Buffer[core.Particle], error) {
	if slot < 0 || slot >= len(h.slots) {
		return nil, fmt.Errorf("slot %d out of range [0, %d)", slot, len(h.slots))
	}
	if err := h.fence.Wait(ctx); err != nil {
		return nil, err
	}
	out := core.NewBuffer[core.Particle](h.particles.Len())
	if err := gpu.Download(ctx, h.slots[slot], out); err != nil {
		return nil, err
	}
	return out, nil
}

type ProbeReport struct {
	Particles int
	Vertices  int
	Frame     gpu.Frame
	Elapsed   time.Duration
	Result    *core.Buffer[core.Particle] // device output of the particle probe
}

// Probe round-trips the host particles and their vertex list through the
// probe kernels and verifies every record. A returned error wrapping
// ErrLayoutMismatch means the device reads the records differently.
func (h *Host) Probe(ctx context.Context) (ProbeReport, error) {
	start := time.Now()
	report := ProbeReport{Particles: h.particles.Len()}

	kernel, err := h.ctx.NewKernel("probe_particles", shaders.ProbeParticlesWGSL, shaders.ProbeParticlesEntry)
	if err != nil {
		return report, err
	}
	defer kernel.Release()

	if err := h.Update(ctx, func(*core.Buffer[core.Particle]) {}); err != nil {
		return report, err
	}
	frame, err := h.Step(ctx, kernel)
	if err != nil {
		return report, err
	}
	report.Frame = frame
	out, err := h.Read(ctx, frame.Write)
	if err != nil {
		return report, err
	}
	report.Result = out
	if err := CheckParticleProbe(h.particles, out); err != nil {
		return report, err
	}

	n, err := h.probeVertices(ctx)
	report.Vertices = n
	report.Elapsed = time.Since(start)
	if err != nil {
		return report, err
	}
	h.log.Infof("probe ok: %d particles, %d vertices in %s", report.Particles, report.Vertices, report.Elapsed)
	return report, nil
}

func (h *Host) probeVertices(ctx context.Context) (int, error) {
	src := core.NewBuffer[core.Vertex](h.particles.Len())
	if err := VerticesFromParticles(src, h.particles); err != nil {
		return 0, err
	}
	kernel, err := h.ctx.NewKernel("probe_vertices", shaders.ProbeVerticesWGSL, shaders.ProbeVerticesEntry)
	if err != nil {
		return 0, err
	}
	defer kernel.Release()

	in, err := gpu.NewStorageFor(h.ctx, "vertices_in", src)
	if err != nil {
		return 0, err
	}
	defer in.Release()
	out, err := h.ctx.NewStorage("vertices_out", src.Len(), src.Stride())
	if err != nil {
		return 0, err
	}
	defer out.Release()

	var fence gpu.Fence
	d, err := h.ctx.Dispatch(kernel, &fence, src.Len(), in, out)
	if err != nil {
		return 0, err
	}
	if err := h.ctx.Await(ctx, d); err != nil {
		return 0, err
	}
	dst := core.NewBuffer[core.Vertex](src.Len())
	if err := gpu.Download(ctx, out, dst); err != nil {
		return 0, err
	}
	return src.Len(), CheckVertexProbe(src, dst)
}

func (h *Host) Close() {
	for _, s := range h.slots {
		s.Release()
	}
	h.slots = nil
	if h.ctx != nil {
		h.ctx.Release()
		h.ctx = nil
	}
}
