package sphere

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxLevel caps icosphere subdivision (level 8 is ~655k cells).
const MaxLevel = 8

// CellCount returns the number of cells of an icosphere at the given level.
// Each level splits every triangle into four: 10·4^level + 2 vertices.
func CellCount(level int) int {
	return 10*(1<<(2*level)) + 2
}

// Icosphere builds the cell graph of a subdivided icosahedron projected onto
// the unit sphere. Cells are the mesh vertices, so twelve cells have five
// neighbors and the rest have six (the dual is a hex sphere with twelve
// pentagons). Neighbors are ordered counter-clockwise around the outward normal.
func Icosphere(level int) (*Graph, error) {
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("icosphere: level %d outside [0, %d]", level, MaxLevel)
	}

	// Golden ratio.
	t := (1.0 + math.Sqrt(5.0)) / 2.0

	verts := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}

	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for i := 0; i < level; i++ {
		verts, faces = subdivide(verts, faces)
	}

	adj := make([]map[int]bool, len(verts))
	for i := range adj {
		adj[i] = make(map[int]bool, 6)
	}
	for _, f := range faces {
		for j := 0; j < 3; j++ {
			a, b := f[j], f[(j+1)%3]
			adj[a][b] = true
			adj[b][a] = true
		}
	}

	neighbors := make([][]int, len(verts))
	for c := range verts {
		ns := make([]int, 0, len(adj[c]))
		for nb := range adj[c] {
			ns = append(ns, nb)
		}
		neighbors[c] = orderAround(verts[c], ns, verts)
	}

	return New(verts, neighbors)
}

// subdivide splits every triangle into four, pushing new midpoints out to the
// unit sphere. Shared edges reuse the same midpoint vertex.
func subdivide(verts []mgl64.Vec3, faces [][3]int) ([]mgl64.Vec3, [][3]int) {
	midpoints := make(map[[2]int]int, len(faces)*3/2)
	out := make([]mgl64.Vec3, len(verts), len(verts)+len(faces)*3/2)
	copy(out, verts)

	midpoint := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		m := out[a].Add(out[b]).Mul(0.5).Normalize()
		out = append(out, m)
		idx := len(out) - 1
		midpoints[key] = idx
		return idx
	}

	next := make([][3]int, 0, len(faces)*4)
	for _, f := range faces {
		a := midpoint(f[0], f[1])
		b := midpoint(f[1], f[2])
		c := midpoint(f[2], f[0])
		next = append(next,
			[3]int{f[0], a, c},
			[3]int{f[1], b, a},
			[3]int{f[2], c, b},
			[3]int{a, b, c},
		)
	}
	return out, next
}

// orderAround sorts neighbor indices by angle in the tangent plane at p.
func orderAround(p mgl64.Vec3, ns []int, verts []mgl64.Vec3) []int {
	if len(ns) == 0 {
		return ns
	}
	n := p.Normalize()

	// Tangent basis anchored on the lowest-indexed neighbor for stability.
	sort.Ints(ns)
	d0 := verts[ns[0]].Sub(p)
	e1 := d0.Sub(n.Mul(d0.Dot(n))).Normalize()
	e2 := n.Cross(e1)

	angles := make(map[int]float64, len(ns))
	for _, nb := range ns {
		d := verts[nb].Sub(p)
		a := math.Atan2(d.Dot(e2), d.Dot(e1))
		if a < 0 {
			a += 2 * math.Pi
		}
		angles[nb] = a
	}
	sort.SliceStable(ns, func(i, j int) bool {
		return angles[ns[i]] < angles[ns[j]]
	})
	return ns
}
