package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Logger is the subset of the host logger the runtime writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}

type Options struct {
	Label string
	// "high" or "low"; anything else leaves the choice to the driver
	PowerPreference string
	Logger          Logger
}

// Context is a headless device: compute and copies only, no surface.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	log  Logger
	poll func() // blocks until submitted work is done
}

func NewContext(opts Options) (*Context, error) {
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: powerPreference(opts.PowerPreference),
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	label := opts.Label
	if label == "" {
		label = "particles"
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: label})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	log.Debugf("gpu: device %q ready", label)

	return &Context{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		log:      log,
		poll:     func() { device.Poll(true, nil) },
	}, nil
}

func powerPreference(name string) wgpu.PowerPreference {
	switch name {
	case "high":
		return wgpu.PowerPreferenceHighPerformance
	case "low":
		return wgpu.PowerPreferenceLowPower
	default:
		return 0 // driver default
	}
}

func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
	}
	if c.Device != nil {
		c.Device.Release()
	}
	if c.Adapter != nil {
		c.Adapter.Release()
	}
	if c.Instance != nil {
		c.Instance.Release()
	}
}
