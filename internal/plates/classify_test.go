package plates

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClassifyBoundaries(t *testing.T) {
	g := icosphere(t, 3)
	a, _ := partitioned(t, g, 12, 21)
	flags := ClassifyBoundaries(g, a)

	boundaries := 0
	for c := 0; c < g.NumCells(); c++ {
		want := false
		for _, nb := range g.Neighbors(c) {
			if a.Plate(nb) != a.Plate(c) {
				want = true
			}
		}
		if flags[c] != want {
			t.Fatalf("cell %d boundary=%v, want %v", c, flags[c], want)
		}
		if flags[c] {
			boundaries++
		}
	}
	if boundaries == 0 || boundaries == g.NumCells() {
		t.Errorf("implausible boundary count %d of %d", boundaries, g.NumCells())
	}
}

func TestClassifyBoundariesSinglePlate(t *testing.T) {
	g := torus(t, 4, 6)
	a, _ := partitioned(t, g, 1, 1)
	for c, b := range ClassifyBoundaries(g, a) {
		if b {
			t.Fatalf("cell %d flagged as boundary with one plate", c)
		}
	}
}

func TestClassifyRejectsIncompleteAssignment(t *testing.T) {
	g := torus(t, 4, 6)
	a := NewAssignment(g.NumCells(), 2)
	assertPanics(t, "boundaries", func() { ClassifyBoundaries(g, a) })
	assertPanics(t, "surface", func() { LabelSurface(a, []bool{true, false}) })
	assertPanics(t, "velocity", func() { VelocityField(g, a, nil) })
}

func TestChooseOceansCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for k := 1; k <= 60; k++ {
		oceans := ChooseOceans(k, 3, rng)
		n := 0
		for _, o := range oceans {
			if o {
				n++
			}
		}
		if n != k/3 {
			t.Errorf("k=%d: %d ocean plates, want %d", k, n, k/3)
		}
	}
}

func TestLabelSurfaceFollowsPlate(t *testing.T) {
	g := icosphere(t, 2)
	a, _ := partitioned(t, g, 9, 13)
	oceans := ChooseOceans(9, 3, rand.New(rand.NewSource(2)))
	labels := LabelSurface(a, oceans)

	byPlate := make(map[int]Surface)
	for c, s := range labels {
		if s == SurfaceUnset {
			t.Fatalf("cell %d left unset", c)
		}
		plate := a.Plate(c)
		if prev, ok := byPlate[plate]; ok && prev != s {
			t.Fatalf("plate %d has both %v and %v cells", plate, prev, s)
		}
		byPlate[plate] = s
		if (s == SurfaceOcean) != oceans[plate] {
			t.Fatalf("cell %d label %v disagrees with plate %d", c, s, plate)
		}
	}
}

func TestSurfaceText(t *testing.T) {
	for _, s := range []Surface{SurfaceUnset, SurfaceLand, SurfaceOcean} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Surface
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Errorf("round trip of %v gave %v, %v", s, got, err)
		}
	}
	if _, err := ParseSurface("lava"); err == nil {
		t.Error("expected error for unknown surface")
	}
}

func TestRandomUnitVector(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	var sumZ float64
	const n = 4000
	for i := 0; i < n; i++ {
		v := RandomUnitVector(rng)
		if l := v.Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("length %.12f, want 1", l)
		}
		sumZ += v.Z()
	}
	if mean := sumZ / n; math.Abs(mean) > 0.05 {
		t.Errorf("mean z %.3f, want near 0", mean)
	}
}

func TestRandomAngularVelocityBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 1000; i++ {
		if l := RandomAngularVelocity(rng).Len(); l > 1+1e-9 {
			t.Fatalf("angular speed %.6f exceeds 1", l)
		}
	}
}

func TestVelocityFieldRigidAndTangent(t *testing.T) {
	g := icosphere(t, 3)
	a, _ := partitioned(t, g, 10, 17)
	rng := rand.New(rand.NewSource(3))
	omegas := make([]mgl64.Vec3, 10)
	for i := range omegas {
		omegas[i] = RandomAngularVelocity(rng)
	}
	field := VelocityField(g, a, omegas)

	for c, v := range field {
		center := g.Center(c)
		want := omegas[a.Plate(c)].Cross(center)
		if !v.ApproxEqualThreshold(want, 1e-12) {
			t.Fatalf("cell %d velocity %v, want %v", c, v, want)
		}
		if d := v.Dot(center); math.Abs(d) > 1e-9 {
			t.Fatalf("cell %d velocity not tangent: v·c = %g", c, d)
		}
	}
}
