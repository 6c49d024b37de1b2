package plates

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/platesim/internal/sphere"
)

func TestAssignmentSetAndSizes(t *testing.T) {
	a := NewAssignment(5, 3)
	if _, ok := a.Get(0); ok {
		t.Fatal("fresh assignment should have no plates")
	}
	a.Set(0, 1)
	a.Set(1, 1)
	a.Set(4, 2)

	if p, ok := a.Get(1); !ok || p != 1 {
		t.Errorf("Get(1) = %d, %v; want 1, true", p, ok)
	}
	if got := a.Size(1); got != 2 {
		t.Errorf("Size(1) = %d, want 2", got)
	}
	if got := a.MinSize(); got != 1 {
		t.Errorf("MinSize() = %d, want 1 (empty plate 0 ignored)", got)
	}
	if a.Assigned() != 3 || a.Complete() {
		t.Errorf("Assigned() = %d, Complete() = %v", a.Assigned(), a.Complete())
	}
}

func TestAssignmentSetPanics(t *testing.T) {
	a := NewAssignment(3, 2)
	a.Set(0, 0)
	assertPanics(t, "reassign", func() { a.Set(0, 1) })
	assertPanics(t, "cell out of range", func() { a.Set(3, 0) })
	assertPanics(t, "plate out of range", func() { a.Set(1, 2) })
	if a.Plate(0) != 0 || a.Size(1) != 0 {
		t.Error("failed Set must not change state")
	}
}

func TestScenarioFourPlatesOnTwentyFourCells(t *testing.T) {
	g := torus(t, 4, 6)
	a := NewAssignment(g.NumCells(), 4)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(7)))

	seeds := p.Seed()
	if len(seeds) != 4 {
		t.Fatalf("seeded %d plates, want 4", len(seeds))
	}
	p.Run()

	if a.Assigned() != 24 {
		t.Fatalf("assigned %d cells, want 24", a.Assigned())
	}
	distinct := make(map[int]bool)
	for c := 0; c < 24; c++ {
		distinct[a.Plate(c)] = true
	}
	if len(distinct) != 4 {
		t.Errorf("found %d distinct plates, want 4", len(distinct))
	}
	total := 0
	for plate := 0; plate < 4; plate++ {
		if a.Size(plate) < 1 {
			t.Errorf("plate %d is empty", plate)
		}
		total += a.Size(plate)
	}
	if total != 24 {
		t.Errorf("plate sizes sum to %d, want 24", total)
	}
}

func TestPartitionTotality(t *testing.T) {
	g := icosphere(t, 2)
	for _, k := range []int{1, 2, 10, 40, g.NumCells()} {
		for seed := int64(1); seed <= 3; seed++ {
			a, p := partitioned(t, g, k, seed)
			for plate := 0; plate < k; plate++ {
				if a.Size(plate) < 1 {
					t.Errorf("k=%d seed=%d: plate %d is empty", k, seed, plate)
				}
			}
			if p.Stats().Finalized {
				t.Errorf("k=%d seed=%d: connected graph needed the finalization sweep", k, seed)
			}
		}
	}
}

func TestSeedsAreDistinct(t *testing.T) {
	g := icosphere(t, 2)
	a := NewAssignment(g.NumCells(), 40)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(3)))
	seen := make(map[int]bool)
	for plate, cell := range p.Seed() {
		if seen[cell] {
			t.Fatalf("cell %d seeded twice", cell)
		}
		seen[cell] = true
		if a.Plate(cell) != plate {
			t.Errorf("seed %d is on plate %d, want %d", cell, a.Plate(cell), plate)
		}
	}
	if a.Assigned() != 40 {
		t.Errorf("assigned %d after seeding, want 40", a.Assigned())
	}
}

func TestPartitionMonotonicGrowth(t *testing.T) {
	g := icosphere(t, 2)
	a := NewAssignment(g.NumCells(), 8)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(11)))
	p.Seed()

	prev := make([]int, g.NumCells())
	for c := range prev {
		prev[c] = a.Plate(c)
	}
	for {
		done := p.Step() == Done
		changed := 0
		for c := range prev {
			cur := a.Plate(c)
			if prev[c] != NoPlate && cur != prev[c] {
				t.Fatalf("cell %d moved from plate %d to %d", c, prev[c], cur)
			}
			if prev[c] == NoPlate && cur != NoPlate {
				changed++
			}
			prev[c] = cur
		}
		if changed > 1 {
			t.Fatalf("one step assigned %d cells", changed)
		}
		if done {
			break
		}
	}
}

func TestPartitionBalanceBound(t *testing.T) {
	const ratio = 3.0
	g := icosphere(t, 3) // 642 cells
	a := NewAssignment(g.NumCells(), 10)
	p := NewPartitioner(g, a, ratio, rand.New(rand.NewSource(5)))
	p.Seed()

	steps, relaxed := 0, 0
	for p.Step() != Done {
		tr := p.Last()
		if tr.Neighbor < 0 {
			continue
		}
		steps++
		if tr.Relaxed {
			relaxed++
			continue
		}
		if got, limit := a.Size(tr.Plate), ratio*float64(tr.MinSize); float64(got) > limit {
			t.Fatalf("plate %d grew to %d, above %.0f (min %d)", tr.Plate, got, limit, tr.MinSize)
		}
	}
	if relaxed != p.Stats().Relaxations {
		t.Errorf("saw %d relaxed assignments, stats report %d relaxations", relaxed, p.Stats().Relaxations)
	}
	t.Logf("%d assignments, %d relaxed", steps, relaxed)
}

func TestPartitionFrontierCellsAreAssigned(t *testing.T) {
	g := icosphere(t, 2)
	a := NewAssignment(g.NumCells(), 6)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(9)))
	p.Seed()
	for i := 0; i < 50; i++ {
		p.Step()
	}
	for _, cell := range p.Frontier() {
		if a.Plate(cell) == NoPlate {
			t.Fatalf("frontier cell %d has no plate", cell)
		}
	}
}

func TestPartitionFinalizesDisconnectedGraph(t *testing.T) {
	// Two disjoint triangles; a single plate can only seed one of them.
	centers := make([]mgl64.Vec3, 6)
	g, err := sphere.New(centers, [][]int{
		{1, 2}, {0, 2}, {0, 1},
		{4, 5}, {3, 5}, {3, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	a, p := partitioned(t, g, 1, 1)

	stats := p.Stats()
	if !stats.Finalized {
		t.Error("expected the finalization sweep to run")
	}
	if stats.Orphans != 1 || stats.Adopted != 2 {
		t.Errorf("orphans=%d adopted=%d, want 1 and 2", stats.Orphans, stats.Adopted)
	}
	if a.Size(0) != 6 {
		t.Errorf("plate 0 size %d, want 6", a.Size(0))
	}
}

func TestPartitionMorePlatesThanCells(t *testing.T) {
	g := torus(t, 3, 3)
	a := NewAssignment(g.NumCells(), 12)
	p := NewPartitioner(g, a, 3.0, rand.New(rand.NewSource(2)))

	if seeds := p.Seed(); len(seeds) != 9 {
		t.Fatalf("seeded %d plates, want 9", len(seeds))
	}
	if p.Step() != Done {
		t.Error("every cell is a seed, Step should report Done")
	}
	for plate := 9; plate < 12; plate++ {
		if a.Size(plate) != 0 {
			t.Errorf("surplus plate %d has size %d", plate, a.Size(plate))
		}
	}
}

func TestPartitionStepBeforeSeedPanics(t *testing.T) {
	g := torus(t, 3, 3)
	p := NewPartitioner(g, NewAssignment(g.NumCells(), 2), 3.0, rand.New(rand.NewSource(1)))
	assertPanics(t, "Step before Seed", func() { p.Step() })
}

func TestPartitionStepAfterDoneIsNoop(t *testing.T) {
	g := torus(t, 4, 6)
	a, p := partitioned(t, g, 3, 4)
	steps := p.Stats().Steps
	if p.Step() != Done {
		t.Error("Step after completion should report Done")
	}
	if p.Stats().Steps != steps || a.Assigned() != 24 {
		t.Error("Step after completion changed state")
	}
}
