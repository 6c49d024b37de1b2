// Package viewer renders generation progress as an equirectangular map and
// maps keys to controller signals. The window needs the ebiten build tag;
// projection and summaries build everywhere.
package viewer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/plates"
)

// Splat is the screen rectangle one cell is drawn into.
type Splat struct {
	X, Y, Size float32
}

// Project maps a unit vector to equirectangular pixel coordinates, with
// longitude 0 at the centre and +z up.
func Project(c mgl64.Vec3, width, height int) (x, y float64) {
	lon := math.Atan2(c.Y(), c.X())
	lat := math.Asin(mgl64.Clamp(c.Z(), -1, 1))
	x = (lon/(2*math.Pi) + 0.5) * float64(width)
	y = (0.5 - lat/math.Pi) * float64(height)
	return x, y
}

// Layout computes one splat per cell, sized so splats roughly tile the map.
func Layout(g plates.Graph, width, height int) []Splat {
	n := g.NumCells()
	if n == 0 {
		return nil
	}
	size := math.Ceil(math.Sqrt(float64(width*height)/float64(n)) * 1.3)
	out := make([]Splat, n)
	for i := range out {
		x, y := Project(g.Center(i), width, height)
		out[i] = Splat{
			X:    float32(x - size/2),
			Y:    float32(y - size/2),
			Size: float32(size),
		}
	}
	return out
}

// Summary describes the run for the status line and the clipboard.
func Summary(c *engine.Controller) string {
	w := c.World()
	cfg := w.Config()
	assigned, total := w.Progress()
	stats := w.Stats()

	var b strings.Builder
	fmt.Fprintf(&b, "seed %d  phase %s  tick %s\n", cfg.Seed, c.Phase(), humanize.Comma(int64(c.Ticks())))
	fmt.Fprintf(&b, "cells %s/%s  plates %d  relaxations %d\n",
		humanize.Comma(int64(assigned)), humanize.Comma(int64(total)), cfg.NumPlates, stats.Relaxations)

	ps := w.Plates()
	sort.Slice(ps, func(i, j int) bool { return ps[i].Size > ps[j].Size })
	sizes := make([]string, 0, len(ps))
	oceans := 0
	for _, p := range ps {
		sizes = append(sizes, fmt.Sprintf("%d:%d", p.ID, p.Size))
		if p.Surface == plates.SurfaceOcean {
			oceans++
		}
	}
	fmt.Fprintf(&b, "ocean plates %d  sizes %s", oceans, strings.Join(sizes, " "))
	return b.String()
}
