package gpu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFence_StepOrdering(t *testing.T) {
	var f Fence
	assert.True(t, f.Idle())

	step, err := f.Begin()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), step)

	// step N+1 may not begin before step N completes
	_, err = f.Begin()
	assert.ErrorIs(t, err, ErrInFlight)

	f.Complete(step)
	assert.True(t, f.Idle())
	assert.Equal(t, uint64(1), f.Completed())

	next, err := f.Begin()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}

func TestFence_HostAccess(t *testing.T) {
	var f Fence
	called := false
	require.NoError(t, f.HostAccess(func() { called = true }))
	assert.True(t, called)

	step, _ := f.Begin()
	called = false
	assert.ErrorIs(t, f.HostAccess(func() { called = true }), ErrInFlight)
	assert.False(t, called)

	f.Complete(step)
	assert.NoError(t, f.HostAccess(func() {}))
}

func TestFence_StaleComplete(t *testing.T) {
	var f Fence
	step, _ := f.Begin()
	f.Complete(step + 5)
	assert.False(t, f.Idle())
	f.Complete(step)
	f.Complete(step)
	assert.True(t, f.Idle())
}

func TestFence_Wait(t *testing.T) {
	var f Fence
	require.NoError(t, f.Wait(context.Background()))

	step, _ := f.Begin()
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Complete(step)
	}()
	require.NoError(t, f.Wait(context.Background()))
	assert.True(t, f.Idle())
}

func TestFence_WaitCancelled(t *testing.T) {
	var f Fence
	_, _ = f.Begin()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}
