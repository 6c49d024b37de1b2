//go:build ebiten

package viewer

import (
	"image/color"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/talgya/platesim/internal/engine"
)

var background = color.RGBA{R: 20, G: 20, B: 24, A: 255}

// Game adapts a generation controller to the ebiten.Game interface.
// Every Update is one controller tick.
type Game struct {
	ctrl   *engine.Controller
	width  int
	height int
	splats []Splat

	notice      string
	noticeUntil time.Time
}

// New constructs a Game drawing a width×height map.
func New(ctrl *engine.Controller, width, height int) *Game {
	return &Game{
		ctrl:   ctrl,
		width:  width,
		height: height,
		splats: Layout(ctrl.World().Graph(), width, height),
	}
}

// Update maps keys to signals and advances generation one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.ctrl.Confirm()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctrl.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(Summary(g.ctrl)); err != nil {
			slog.Warn("clipboard copy failed", "error", err)
			g.flash("clipboard unavailable")
		} else {
			g.flash("summary copied")
		}
	}

	g.ctrl.Tick()
	return nil
}

func (g *Game) flash(msg string) {
	g.notice = msg
	g.noticeUntil = time.Now().Add(2 * time.Second)
}

// Draw renders every cell in its current display colour plus the prompt.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	colours := g.ctrl.World().Colours()
	for i, s := range g.splats {
		vector.FillRect(screen, s.X, s.Y, s.Size, s.Size, colours[i], false)
	}

	text := g.ctrl.Phase().Prompt() + "\n" + Summary(g.ctrl)
	if g.notice != "" && time.Now().Before(g.noticeUntil) {
		text += "\n" + g.notice
	}
	ebitenutil.DebugPrint(screen, text)
}

// Layout returns the fixed logical screen size.
func (g *Game) Layout(int, int) (int, int) {
	return g.width, g.height
}
