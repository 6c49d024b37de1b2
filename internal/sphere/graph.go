// Package sphere provides cell adjacency graphs over the surface of a sphere.
// Cells have stable integer indices, a center position and an ordered
// neighbor list. Graphs are immutable once built.
package sphere

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Graph is an immutable cell adjacency structure.
type Graph struct {
	centers   []mgl64.Vec3
	neighbors [][]int
}

// New builds a graph from per-cell centers and neighbor lists.
// Adjacency must be symmetric, in range, and free of self loops and duplicates.
func New(centers []mgl64.Vec3, neighbors [][]int) (*Graph, error) {
	if len(centers) != len(neighbors) {
		return nil, fmt.Errorf("graph: %d centers but %d neighbor lists", len(centers), len(neighbors))
	}
	n := len(centers)

	adj := make([]map[int]bool, n)
	for c, ns := range neighbors {
		adj[c] = make(map[int]bool, len(ns))
		for _, nb := range ns {
			if nb < 0 || nb >= n {
				return nil, fmt.Errorf("graph: cell %d has out-of-range neighbor %d", c, nb)
			}
			if nb == c {
				return nil, fmt.Errorf("graph: cell %d is its own neighbor", c)
			}
			if adj[c][nb] {
				return nil, fmt.Errorf("graph: cell %d lists neighbor %d twice", c, nb)
			}
			adj[c][nb] = true
		}
	}
	for c, ns := range neighbors {
		for _, nb := range ns {
			if !adj[nb][c] {
				return nil, fmt.Errorf("graph: edge %d->%d has no reverse edge", c, nb)
			}
		}
	}

	g := &Graph{
		centers:   make([]mgl64.Vec3, n),
		neighbors: make([][]int, n),
	}
	copy(g.centers, centers)
	for c, ns := range neighbors {
		g.neighbors[c] = append([]int(nil), ns...)
	}
	return g, nil
}

// NumCells returns the number of cells.
func (g *Graph) NumCells() int {
	return len(g.centers)
}

// Neighbors returns the ordered neighbor indices of a cell.
// The returned slice is shared and must not be modified.
func (g *Graph) Neighbors(cell int) []int {
	return g.neighbors[cell]
}

// Center returns the center position of a cell.
func (g *Graph) Center(cell int) mgl64.Vec3 {
	return g.centers[cell]
}

// DegreeCounts returns how many cells have each neighbor count.
func (g *Graph) DegreeCounts() map[int]int {
	counts := make(map[int]int)
	for _, ns := range g.neighbors {
		counts[len(ns)]++
	}
	return counts
}

// Components returns the number of connected components.
func (g *Graph) Components() int {
	seen := make([]bool, len(g.centers))
	components := 0
	var stack []int
	for start := range g.centers {
		if seen[start] {
			continue
		}
		components++
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range g.neighbors[c] {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
	}
	return components
}

// String returns a summary of the graph.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph(cells=%d)", g.NumCells())
}
