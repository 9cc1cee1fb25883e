package gpu

import (
	"context"
	"fmt"
)

// Frame names the ring slots one step uses: the kernel reads Read and
// writes Write, and the renderer draws Write.
type Frame struct {
	Index int // monotonically increasing step index
	Read  int
	Write int
}

// Ring rotates a fixed set of buffer slots and bounds how many steps may be
// in flight at once. Acquire is called from one goroutine; Release may be
// called from a completion callback.
type Ring struct {
	slots    int
	current  int
	index    int
	inflight chan struct{}
}

func NewRing(slots, maxInFlight int) (*Ring, error) {
	if slots < 2 {
		return nil, fmt.Errorf("gpu: ring needs at least 2 slots, got %d", slots)
	}
	if maxInFlight < 1 || maxInFlight >= slots {
		return nil, fmt.Errorf("gpu: max in flight must be in [1, %d), got %d", slots, maxInFlight)
	}
	return &Ring{slots: slots, inflight: make(chan struct{}, maxInFlight)}, nil
}

func (r *Ring) Slots() int { return r.slots }

// Next is the slot the next acquired frame reads.
func (r *Ring) Next() int { return r.current }

// Acquire waits for an in-flight slot and returns the next frame. Every
// successful Acquire must be paired with a Release once the device is done.
func (r *Ring) Acquire(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	select {
	case r.inflight <- struct{}{}:
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
	f := Frame{Index: r.index, Read: r.current, Write: (r.current + 1) % r.slots}
	r.current = f.Write
	r.index++
	return f, nil
}

func (r *Ring) Release() {
	select {
	case <-r.inflight:
	default:
	}
}

// InFlight returns the number of acquired, unreleased frames.
func (r *Ring) InFlight() int { return len(r.inflight) }
