//go:build !ebiten

package viewer

import (
	"fmt"

	"github.com/talgya/platesim/internal/engine"
)

// Game is a placeholder that satisfies the API expected by the GUI build.
type Game struct{}

// New panics to indicate that the ebiten build tag is required for GUI support.
func New(*engine.Controller, int, int) *Game {
	panic("viewer.New requires building with the 'ebiten' tag")
}

// Update always reports that the GUI build tag is missing.
func (g *Game) Update() error {
	return fmt.Errorf("viewer.Game.Update requires building with the 'ebiten' tag")
}

// Draw is a no-op placeholder.
func (g *Game) Draw(any) {}

// Layout returns zeros in the headless build.
func (g *Game) Layout(int, int) (int, int) { return 0, 0 }
