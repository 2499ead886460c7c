package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packline-io/packline/internal/channel"
)

func waitSignal(t *testing.T, ch <-chan struct{}, want bool) {
	t.Helper()
	select {
	case <-ch:
		assert.True(t, want, "received unexpected signal")
	case <-time.After(50 * time.Millisecond):
		assert.False(t, want, "expected a signal but none arrived")
	}
}

func TestWaker_WakeOneRoundRobin(t *testing.T) {
	w := channel.NewWaker()
	a := w.Handle()
	b := w.Handle()
	defer a.Close()
	defer b.Close()

	w.Wake()
	// Exactly one of a, b should have been signaled; since a was registered
	// first it is woken first under round-robin rotation.
	select {
	case <-a.Ch():
	case <-time.After(50 * time.Millisecond):
		require.Fail(t, "handle a was not woken on first Wake")
	}

	w.Wake()
	select {
	case <-b.Ch():
	case <-time.After(50 * time.Millisecond):
		require.Fail(t, "handle b was not woken on second Wake")
	}
}

func TestWaker_SkipsClosedHandles(t *testing.T) {
	w := channel.NewWaker()
	dead := w.Handle()
	live := w.Handle()
	dead.Close()

	w.Wake()
	select {
	case <-live.Ch():
	case <-time.After(50 * time.Millisecond):
		require.Fail(t, "live handle was not woken after dead handle was skipped")
	}
}

func TestWaker_WakeWithNoHandlesIsNoop(t *testing.T) {
	w := channel.NewWaker()
	assert.NotPanics(t, func() { w.Wake() })
}
