package plates

import "fmt"

// NoPlate marks a cell that has not been assigned.
const NoPlate = -1

// Assignment maps each cell to at most one plate and tracks plate sizes.
// A cell's plate never changes once set.
type Assignment struct {
	cells    []int32
	sizes    []int
	assigned int
}

// NewAssignment creates an empty assignment.
func NewAssignment(numCells, numPlates int) *Assignment {
	a := &Assignment{
		cells: make([]int32, numCells),
		sizes: make([]int, numPlates),
	}
	for i := range a.cells {
		a.cells[i] = NoPlate
	}
	return a
}

// Get returns the cell's plate, if any.
func (a *Assignment) Get(cell int) (int, bool) {
	p := a.cells[cell]
	return int(p), p != NoPlate
}

// Plate returns the cell's plate or NoPlate.
func (a *Assignment) Plate(cell int) int {
	return int(a.cells[cell])
}

// Set assigns a cell to a plate. Re-assigning a cell or passing an
// out-of-range index is a programming error and panics.
func (a *Assignment) Set(cell, plate int) {
	if cell < 0 || cell >= len(a.cells) {
		panic(fmt.Sprintf("plates: cell %d out of range [0, %d)", cell, len(a.cells)))
	}
	if plate < 0 || plate >= len(a.sizes) {
		panic(fmt.Sprintf("plates: plate %d out of range [0, %d)", plate, len(a.sizes)))
	}
	if prev := a.cells[cell]; prev != NoPlate {
		panic(fmt.Sprintf("plates: cell %d already on plate %d", cell, prev))
	}
	a.cells[cell] = int32(plate)
	a.sizes[plate]++
	a.assigned++
}

// Size returns the number of cells on a plate.
func (a *Assignment) Size(plate int) int {
	return a.sizes[plate]
}

// Sizes returns a copy of all plate sizes.
func (a *Assignment) Sizes() []int {
	return append([]int(nil), a.sizes...)
}

// MinSize returns the smallest size among plates that own at least one cell,
// or 0 when nothing is assigned.
func (a *Assignment) MinSize() int {
	min := 0
	for _, s := range a.sizes {
		if s > 0 && (min == 0 || s < min) {
			min = s
		}
	}
	return min
}

// NumCells returns the number of cells.
func (a *Assignment) NumCells() int { return len(a.cells) }

// NumPlates returns the number of plates.
func (a *Assignment) NumPlates() int { return len(a.sizes) }

// Assigned returns how many cells have a plate.
func (a *Assignment) Assigned() int { return a.assigned }

// Complete reports whether every cell has a plate.
func (a *Assignment) Complete() bool { return a.assigned == len(a.cells) }
