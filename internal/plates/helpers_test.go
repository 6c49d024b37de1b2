package plates

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/platesim/internal/sphere"
)

// torus builds a rows×cols four-neighbour grid wrapped on a torus.
func torus(t *testing.T, rows, cols int) *sphere.Graph {
	t.Helper()
	centers := make([]mgl64.Vec3, rows*cols)
	neighbors := make([][]int, rows*cols)
	idx := func(r, c int) int {
		return ((r+rows)%rows)*cols + (c+cols)%cols
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := 2 * math.Pi * float64(c) / float64(cols)
			v := 2 * math.Pi * float64(r) / float64(rows)
			centers[idx(r, c)] = mgl64.Vec3{
				(2 + math.Cos(v)) * math.Cos(u),
				(2 + math.Cos(v)) * math.Sin(u),
				math.Sin(v),
			}
			neighbors[idx(r, c)] = []int{idx(r-1, c), idx(r, c+1), idx(r+1, c), idx(r, c-1)}
		}
	}
	g, err := sphere.New(centers, neighbors)
	if err != nil {
		t.Fatalf("torus(%d, %d): %v", rows, cols, err)
	}
	return g
}

func icosphere(t *testing.T, level int) *sphere.Graph {
	t.Helper()
	g, err := sphere.Icosphere(level)
	if err != nil {
		t.Fatalf("Icosphere(%d): %v", level, err)
	}
	return g
}

// partitioned runs seeding and flood fill to completion.
func partitioned(t *testing.T, g Graph, numPlates int, seed int64) (*Assignment, *Partitioner) {
	t.Helper()
	a := NewAssignment(g.NumCells(), numPlates)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(seed)))
	p.Seed()
	p.Run()
	if !a.Complete() {
		t.Fatalf("partition incomplete: %d/%d assigned", a.Assigned(), a.NumCells())
	}
	return a, p
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
