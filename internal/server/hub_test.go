package server

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-live/internal/game"
)

func newTestHub(t *testing.T, clock quartz.Clock) *Hub {
	t.Helper()

	cfg := game.DefaultConfig()
	cfg.BlindEscalation = false
	engine, err := game.NewGame("Human", 3, cfg, rand.New(rand.NewSource(1)), log.New(io.Discard))
	require.NoError(t, err)

	return NewHub("test-game", engine, log.New(io.Discard), clock, 0, time.Minute)
}

func TestContinueSignalIsSingleSlot(t *testing.T) {
	t.Parallel()

	h := newTestHub(t, quartz.NewReal())

	// Repeated signals collapse into one pending slot
	h.HandleContinue()
	h.HandleContinue()
	h.HandleContinue()
	assert.Len(t, h.continueCh, 1)
}

func TestAwaitContinueResumesOnSignal(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	trap := mock.Trap().NewTimer()
	defer trap.Close()

	h := newTestHub(t, mock)

	// A stale signal from before the wait must not satisfy it
	h.HandleContinue()

	done := make(chan struct{})
	go func() {
		h.awaitContinue("AI-ce", "raise")
		close(done)
	}()

	// The driver is now blocked creating its timeout timer
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	select {
	case <-done:
		t.Fatal("wait resumed without a fresh continue signal")
	case <-time.After(50 * time.Millisecond):
	}

	h.HandleContinue()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("continue signal did not resume the wait")
	}
}

func TestAwaitContinueTimesOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	trap := mock.Trap().NewTimer()
	defer trap.Close()

	h := newTestHub(t, mock)

	done := make(chan struct{})
	go func() {
		h.awaitContinue("AI-ce", "raise")
		close(done)
	}()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	// Nobody sends continue; advancing past the timeout must release it
	mock.Advance(time.Minute).MustWait(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout did not resume the wait")
	}
}
