package gpu

import (
	"context"
	"errors"
	"sync"
)

// ErrInFlight is returned when the host touches a buffer, or starts the next
// step, while the device still owns it.
var ErrInFlight = errors.New("gpu: dispatch in flight")

// Fence serializes access to one set of device buffers. The host may only
// read or write between steps; a new step may only begin once the previous
// one completed. Elements are not locked individually: during a step each
// invocation owns exactly one index.
type Fence struct {
	mu        sync.Mutex
	step      uint64 // last step begun
	completed uint64
	done      chan struct{} // non-nil while a step is in flight
}

// Begin marks a step as submitted and returns its number.
func (f *Fence) Begin() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		return 0, ErrInFlight
	}
	f.step++
	f.done = make(chan struct{})
	return f.step, nil
}

// Complete signals that the device finished step. Stale or repeated
// signals are ignored.
func (f *Fence) Complete(step uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done == nil || step != f.step {
		return
	}
	close(f.done)
	f.done = nil
	f.completed = step
}

func (f *Fence) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done == nil
}

// Completed returns the number of the last finished step.
func (f *Fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Wait blocks until no step is in flight or ctx is done.
func (f *Fence) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HostAccess runs fn while no step is in flight. Begin blocks until fn
// returns.
func (f *Fence) HostAccess(fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		return ErrInFlight
	}
	fn()
	return nil
}
