package viewer

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/plates"
	"github.com/talgya/platesim/internal/sphere"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		c    mgl64.Vec3
		x, y float64
	}{
		{"prime meridian", mgl64.Vec3{1, 0, 0}, 200, 100},
		{"north pole", mgl64.Vec3{0, 0, 1}, 200, 0},
		{"south pole", mgl64.Vec3{0, 0, -1}, 200, 200},
		{"east", mgl64.Vec3{0, 1, 0}, 300, 100},
		{"west", mgl64.Vec3{0, -1, 0}, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Project(tt.c, 400, 200)
			if math.Abs(x-tt.x) > 1e-9 || math.Abs(y-tt.y) > 1e-9 {
				t.Errorf("Project(%v) = (%.2f, %.2f), want (%.2f, %.2f)", tt.c, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestLayoutCoversEveryCell(t *testing.T) {
	g, err := sphere.Icosphere(3)
	if err != nil {
		t.Fatal(err)
	}
	splats := Layout(g, 800, 400)
	if len(splats) != g.NumCells() {
		t.Fatalf("%d splats for %d cells", len(splats), g.NumCells())
	}
	for i, s := range splats {
		cx, cy := s.X+s.Size/2, s.Y+s.Size/2
		if cx < 0 || cx > 800 || cy < 0 || cy > 400 {
			t.Errorf("cell %d centred off-map at (%.1f, %.1f)", i, cx, cy)
		}
		if s.Size <= 0 {
			t.Errorf("cell %d has size %.1f", i, s.Size)
		}
	}
}

func TestSummary(t *testing.T) {
	g, err := sphere.Icosphere(2)
	if err != nil {
		t.Fatal(err)
	}
	w, err := plates.NewWorld(g, plates.SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := engine.NewController(w)
	c.OnPhaseChange = c.AutoConfirm(nil)
	for c.Tick() != engine.PhaseFinished {
	}

	s := Summary(c)
	for _, want := range []string{"seed 42", "phase Finished", "cells 162/162", "plates 10", "ocean plates 3"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}
