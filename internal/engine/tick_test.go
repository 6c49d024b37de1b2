package engine

import (
	"context"
	"testing"
	"time"
)

func TestEngineRunsUntilCancelled(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Microsecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.OnTick = func(tick uint64) {
		if tick == 50 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
	if got := e.Tick(); got < 50 {
		t.Errorf("engine stopped at tick %d, want >= 50", got)
	}
	if e.Running() {
		t.Error("Running() true after Run returned")
	}
}

func TestEngineStop(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	started := make(chan struct{}, 1)
	e.OnTick = func(uint64) {
		select {
		case started <- struct{}{}:
		default:
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()
	<-started
	e.Stop()
	e.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEnginePausedDoesNotTick(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Microsecond
	e.SetSpeed(0)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	if got := e.Tick(); got != 0 {
		t.Errorf("paused engine ran %d ticks", got)
	}
}

func TestEngineDrivesController(t *testing.T) {
	c := newController(t, 1)
	c.OnPhaseChange = c.AutoConfirm(nil)

	e := NewEngine()
	e.Interval = time.Microsecond
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.OnFinished = cancel
	e.OnTick = func(uint64) { c.Tick() }

	e.Run(ctx)
	if c.Phase() != PhaseFinished {
		t.Errorf("engine stopped in %v, want Finished", c.Phase())
	}
}
