package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/platesim/internal/plates"
)

// Transition records a phase change.
type Transition struct {
	Tick uint64 `json:"tick"`
	From Phase  `json:"from"`
	To   Phase  `json:"to"`
}

// Controller walks a World through the generation phases. Tick does the
// fixed-rate work; Confirm and Reset latch edge-triggered signals from any
// goroutine, consumed by the next Tick.
type Controller struct {
	world *plates.World

	mu      sync.Mutex
	phase   Phase
	ticks   uint64
	confirm bool
	reset   bool
	history []Transition

	// Hooks, set before the first Tick. Called outside the controller lock.
	OnPhaseChange func(t Transition)
	OnFinished    func()
}

// NewController creates a controller in PhaseSeedPlates.
func NewController(w *plates.World) *Controller {
	return &Controller{world: w, phase: PhaseSeedPlates}
}

// Confirm latches a confirm signal.
func (c *Controller) Confirm() {
	c.mu.Lock()
	c.confirm = true
	c.mu.Unlock()
}

// Reset latches a reset signal.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.reset = true
	c.mu.Unlock()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Ticks returns how many ticks have run.
func (c *Controller) Ticks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// History returns every transition so far.
func (c *Controller) History() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transition(nil), c.history...)
}

// World returns the world being generated.
func (c *Controller) World() *plates.World { return c.world }

// Tick drains pending signals, runs the current phase's work and returns the
// phase afterwards. Signals the current phase does not consume are dropped.
func (c *Controller) Tick() Phase {
	c.mu.Lock()
	c.ticks++
	confirm, reset := c.confirm, c.reset
	c.confirm, c.reset = false, false

	from := c.phase
	to := c.advance(from, confirm, reset)
	c.phase = to

	var tr Transition
	changed := to != from
	if changed {
		tr = Transition{Tick: c.ticks, From: from, To: to}
		c.history = append(c.history, tr)
	}
	c.mu.Unlock()

	if changed {
		slog.Info("phase change", "from", from, "to", to, "tick", tr.Tick)
		if c.OnPhaseChange != nil {
			c.OnPhaseChange(tr)
		}
		if to == PhaseFinished && c.OnFinished != nil {
			c.OnFinished()
		}
	}
	return to
}

// advance runs one phase's work and returns the next phase.
func (c *Controller) advance(p Phase, confirm, reset bool) Phase {
	switch p {
	case PhaseSeedPlates:
		c.world.SeedPlates()
		return PhaseGenPlates

	case PhaseGenPlates:
		if c.world.GrowPlates() == plates.Done {
			return PhaseFinishedPlates
		}
		return PhaseGenPlates

	case PhaseFinishedPlates:
		if confirm {
			return PhaseAssignPlateBoundaries
		}

	case PhaseAssignPlateBoundaries:
		c.world.AssignBoundaries()
		return PhaseFinishedPlateBoundaries

	case PhaseFinishedPlateBoundaries:
		if confirm {
			return PhaseGenContinents
		}

	case PhaseGenContinents:
		c.world.AssignContinents()
		return PhaseFinishedContinents

	case PhaseFinishedContinents:
		// Reset wins over a confirm arriving in the same tick.
		if reset {
			c.world.ResetContinents()
			return PhaseGenContinents
		}
		if confirm {
			return PhaseGenPlateVelocities
		}

	case PhaseGenPlateVelocities:
		c.world.AssignVelocities()
		return PhaseJustChill

	case PhaseJustChill:
		if confirm {
			return PhaseFinished
		}
	}
	return p
}

// AutoConfirm returns a phase-change hook that confirms every gate as soon as
// it is reached, for unattended runs. It chains to next when non-nil.
func (c *Controller) AutoConfirm(next func(Transition)) func(Transition) {
	return func(t Transition) {
		if t.To.AwaitsConfirm() {
			c.Confirm()
		}
		if next != nil {
			next(t)
		}
	}
}
