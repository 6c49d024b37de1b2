package plates

// ClassifyBoundaries flags every cell that has a neighbor on another plate.
// The assignment must be complete.
func ClassifyBoundaries(g Graph, a *Assignment) []bool {
	if !a.Complete() {
		panic("plates: boundary pass on an incomplete assignment")
	}
	flags := make([]bool, g.NumCells())
	for cell := range flags {
		plate := a.Plate(cell)
		for _, nb := range g.Neighbors(cell) {
			if a.Plate(nb) != plate {
				flags[cell] = true
				break
			}
		}
	}
	return flags
}
