// Package engine sequences world generation phases and drives them with a
// fixed-rate tick loop.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval matches a 64 Hz fixed update.
const DefaultInterval = 15625 * time.Microsecond

// Engine calls OnTick at a fixed rate until stopped.
type Engine struct {
	Interval time.Duration // Base tick interval
	OnTick   func(tick uint64)

	mu      sync.Mutex
	tick    uint64
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool
	stop    chan struct{}
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: DefaultInterval,
		speed:    1.0,
	}
}

// Run starts the tick loop. Blocks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()

	slog.Info("tick engine started", "tick", e.Tick(), "interval", e.Interval)
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("tick engine stopped", "tick", e.Tick())
	}()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond // paused: poll for a speed change
		if speed > 0 {
			start := time.Now()
			e.step()
			target := time.Duration(float64(e.Interval) / speed)
			wait = target - time.Since(start)
		}

		if wait <= 0 {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running && e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Tick returns the number of ticks run so far.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the tick rate multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the tick rate multiplier; 0 pauses.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
}

// step advances the engine by one tick.
func (e *Engine) step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}
}
