package gpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/rt/core"
)

const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageVertex |
	wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

// Storage is a device buffer of Count records of Stride bytes each.
type Storage struct {
	Label  string
	Count  int
	Stride int
	Buffer *wgpu.Buffer

	ctx *Context
}

// NewStorage allocates an uninitialized device buffer of count records.
func (c *Context) NewStorage(label string, count, stride int) (*Storage, error) {
	if count <= 0 || stride <= 0 || stride%4 != 0 {
		return nil, fmt.Errorf("gpu: invalid storage %q: %d records of %d bytes", label, count, stride)
	}
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(count * stride),
		Usage: storageUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage %q: %w", label, err)
	}
	c.log.Debugf("gpu: storage %q %d x %d bytes", label, count, stride)
	return &Storage{Label: label, Count: count, Stride: stride, Buffer: buf, ctx: c}, nil
}

// NewStorageFor allocates a device buffer shaped like buf and uploads it.
func NewStorageFor[T core.Record](c *Context, label string, buf *core.Buffer[T]) (*Storage, error) {
	s, err := c.NewStorage(label, buf.Len(), buf.Stride())
	if err != nil {
		return nil, err
	}
	if err := Upload(s, buf); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *Storage) Size() uint64 { return uint64(s.Count * s.Stride) }

func (s *Storage) Release() {
	if s.Buffer != nil {
		s.Buffer.Release()
		s.Buffer = nil
	}
}

func (s *Storage) checkShape(count, stride int) error {
	if count != s.Count || stride != s.Stride {
		return fmt.Errorf("%w: storage %q is %d x %d, buffer is %d x %d",
			core.ErrSizeMismatch, s.Label, s.Count, s.Stride, count, stride)
	}
	return nil
}

// Upload copies buf into s. The caller must hold the buffer's fence idle.
func Upload[T core.Record](s *Storage, buf *core.Buffer[T]) error {
	if err := s.checkShape(buf.Len(), buf.Stride()); err != nil {
		return err
	}
	if err := s.ctx.Queue.WriteBuffer(s.Buffer, 0, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to upload %q: %w", s.Label, err)
	}
	return nil
}

// Download reads s back into buf.
func Download[T core.Record](ctx context.Context, s *Storage, buf *core.Buffer[T]) error {
	if err := s.checkShape(buf.Len(), buf.Stride()); err != nil {
		return err
	}
	raw, err := s.Read(ctx)
	if err != nil {
		return err
	}
	return buf.Load(raw)
}

// Read copies the buffer's contents to the host through a staging buffer.
// It waits for all previously submitted work.
func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	c := s.ctx
	size := s.Size()
	staging, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.Label + " readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	if err := encoder.CopyBufferToBuffer(s.Buffer, 0, staging, 0, size); err != nil {
		encoder.Release()
		return nil, fmt.Errorf("failed to copy %q for readback: %w", s.Label, err)
	}
	cmdBuf, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return nil, fmt.Errorf("failed to finish readback: %w", err)
	}
	c.Queue.Submit(cmdBuf)
	cmdBuf.Release()

	mapped := make(chan wgpu.BufferMapAsyncStatus, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapped <- status
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map %q: %w", s.Label, err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.poll()
		select {
		case status := <-mapped:
			if status != wgpu.BufferMapAsyncStatusSuccess {
				return nil, fmt.Errorf("failed to map %q: status %v", s.Label, status)
			}
			out := make([]byte, size)
			copy(out, staging.GetMappedRange(0, uint(size)))
			staging.Unmap()
			return out, nil
		default:
		}
	}
}
