package gpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/rt/shaders"
	"github.com/google/uuid"
)

// Kernel is a compute pipeline whose bind group 0 holds storage buffers at
// bindings 0..n-1.
type Kernel struct {
	Label    string
	Entry    string
	Pipeline *wgpu.ComputePipeline
}

// NewKernel compiles kernel (without record declarations; they are
// prepended here) and builds its pipeline.
func (c *Context) NewKernel(label, kernel, entry string) (*Kernel, error) {
	module, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.Compose(kernel)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s shader module: %w", label, err)
	}
	defer module.Release()

	pipeline, err := c.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entry,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", label, err)
	}
	return &Kernel{Label: label, Entry: entry, Pipeline: pipeline}, nil
}

func (k *Kernel) Release() {
	if k.Pipeline != nil {
		k.Pipeline.Release()
		k.Pipeline = nil
	}
}

// Workgroups returns how many workgroups cover count invocations.
func Workgroups(count int) uint32 {
	if count <= 0 {
		return 0
	}
	return uint32((count + shaders.WorkgroupSize - 1) / shaders.WorkgroupSize)
}

// Dispatch is one submitted step.
type Dispatch struct {
	ID    uuid.UUID
	Step  uint64
	Count int

	fence *Fence
}

// Dispatch submits k over count records with bindings bound in order. It
// fails with ErrInFlight if fence has an unfinished step; the buffers belong
// to the device until Await returns.
func (c *Context) Dispatch(k *Kernel, fence *Fence, count int, bindings ...*Storage) (*Dispatch, error) {
	step, err := fence.Begin()
	if err != nil {
		return nil, err
	}
	d := &Dispatch{ID: uuid.New(), Step: step, Count: count, fence: fence}
	if err := c.submit(k, count, bindings); err != nil {
		// nothing reached the queue, so the buffers are the host's again
		fence.Complete(step)
		return nil, err
	}
	c.log.Debugf("gpu: dispatch %s %s step %d, %d records in %d workgroups",
		d.ID, k.Label, step, count, Workgroups(count))
	return d, nil
}

func (c *Context) submit(k *Kernel, count int, bindings []*Storage) error {
	entries := make([]wgpu.BindGroupEntry, len(bindings))
	for i, s := range bindings {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Buffer: s.Buffer, Size: wgpu.WholeSize}
	}
	layout := k.Pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	group, err := c.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   k.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s bind group: %w", k.Label, err)
	}
	defer group.Release()

	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.Pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups(Workgroups(count), 1, 1)
	err = pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("failed to end %s compute pass: %w", k.Label, err)
	}

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish %s: %w", k.Label, err)
	}
	defer cmdBuf.Release()
	c.Queue.Submit(cmdBuf)
	return nil
}

// Await blocks until the device finished d, then hands its buffers back to
// the host. Submitted work cannot be recalled, so the wait and the hand-back
// happen even when ctx is already done; ctx's error is reported afterwards.
func (c *Context) Await(ctx context.Context, d *Dispatch) error {
	c.poll()
	d.fence.Complete(d.Step)
	return ctx.Err()
}
