package sphere

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCellCount(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 12},
		{1, 42},
		{2, 162},
		{3, 642},
		{4, 2562},
	}
	for _, tt := range tests {
		if got := CellCount(tt.level); got != tt.want {
			t.Errorf("CellCount(%d) = %d, want %d", tt.level, got, tt.want)
		}
		g, err := Icosphere(tt.level)
		if err != nil {
			t.Fatalf("Icosphere(%d): %v", tt.level, err)
		}
		if g.NumCells() != tt.want {
			t.Errorf("Icosphere(%d) has %d cells, want %d", tt.level, g.NumCells(), tt.want)
		}
	}
}

func TestIcosphereDegrees(t *testing.T) {
	g, err := Icosphere(3)
	if err != nil {
		t.Fatal(err)
	}
	counts := g.DegreeCounts()
	if counts[5] != 12 {
		t.Errorf("pentagon cells = %d, want 12", counts[5])
	}
	if counts[6] != g.NumCells()-12 {
		t.Errorf("hexagon cells = %d, want %d", counts[6], g.NumCells()-12)
	}
	if g.Components() != 1 {
		t.Errorf("components = %d, want 1", g.Components())
	}
}

func TestIcosphereCentersOnUnitSphere(t *testing.T) {
	g, err := Icosphere(2)
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < g.NumCells(); c++ {
		if l := g.Center(c).Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("cell %d center length %.12f, want 1", c, l)
		}
	}
}

func TestIcosphereNeighborsFormRing(t *testing.T) {
	g, err := Icosphere(2)
	if err != nil {
		t.Fatal(err)
	}
	isNeighbor := func(a, b int) bool {
		for _, nb := range g.Neighbors(a) {
			if nb == b {
				return true
			}
		}
		return false
	}
	// Angular order means consecutive neighbors share an edge.
	for c := 0; c < g.NumCells(); c++ {
		ns := g.Neighbors(c)
		for i := range ns {
			a, b := ns[i], ns[(i+1)%len(ns)]
			if !isNeighbor(a, b) {
				t.Fatalf("cell %d: consecutive neighbors %d and %d are not adjacent (order %v)", c, a, b, ns)
			}
		}
	}
}

func TestIcosphereRejectsBadLevel(t *testing.T) {
	if _, err := Icosphere(-1); err == nil {
		t.Error("expected error for level -1")
	}
	if _, err := Icosphere(MaxLevel + 1); err == nil {
		t.Errorf("expected error for level %d", MaxLevel+1)
	}
}

func TestNewValidatesAdjacency(t *testing.T) {
	centers := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tests := []struct {
		name      string
		neighbors [][]int
		wantErr   bool
	}{
		{"triangle", [][]int{{1, 2}, {0, 2}, {0, 1}}, false},
		{"asymmetric", [][]int{{1}, {}, {}}, true},
		{"self loop", [][]int{{0}, {}, {}}, true},
		{"out of range", [][]int{{3}, {}, {}}, true},
		{"duplicate", [][]int{{1, 1}, {0}, {}}, true},
		{"length mismatch", [][]int{{}, {}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(centers, tt.neighbors)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponents(t *testing.T) {
	centers := make([]mgl64.Vec3, 4)
	g, err := New(centers, [][]int{{1}, {0}, {3}, {2}})
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Components(); got != 2 {
		t.Errorf("Components() = %d, want 2", got)
	}
}
