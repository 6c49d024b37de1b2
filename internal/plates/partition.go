package plates

import (
	"log/slog"
	"math/rand"
)

// Progress is the result of one partitioner step.
type Progress uint8

const (
	InProgress Progress = iota
	Done
)

func (p Progress) String() string {
	if p == Done {
		return "done"
	}
	return "in progress"
}

// StepTrace describes what the most recent Step did.
type StepTrace struct {
	Cell     int  // Frontier cell picked, -1 if none
	Neighbor int  // Cell assigned this step, -1 if none
	Plate    int  // Plate that grew, NoPlate if none
	MinSize  int  // Smallest non-empty plate when the step began
	Relaxed  bool // Every frontier plate was capped; picked from the whole frontier
	Retired  bool // Picked cell had no unassigned neighbor and left the frontier
}

// PartitionStats counts partitioner activity for diagnostics.
type PartitionStats struct {
	Steps       int  `json:"steps"`
	Assignments int  `json:"assignments"`
	Retired     int  `json:"retired"`
	Relaxations int  `json:"relaxations"`
	Finalized   bool `json:"finalized"`
	Adopted     int  `json:"adopted"` // Cells assigned by the finalization sweep
	Orphans     int  `json:"orphans"` // Cells in seedless components given a random plate
}

// Partitioner grows plates from random seeds by balanced flood fill.
// Each Step assigns at most one cell, and the balance cap is re-evaluated on
// every step, so growth can be spread across ticks.
type Partitioner struct {
	graph  Graph
	assign *Assignment
	rng    *rand.Rand
	ratio  float64

	// Cells that are assigned and may still have unassigned neighbors.
	// Cells are retired lazily, when picked with nothing left to claim.
	frontier []int
	seeds    []int

	candidates []int
	open       []int

	seeded  bool
	done    bool
	last    StepTrace
	stats   PartitionStats
	nextLog int
}

// NewPartitioner creates a partitioner over g writing into a.
func NewPartitioner(g Graph, a *Assignment, ratio float64, rng *rand.Rand) *Partitioner {
	if a.NumCells() != g.NumCells() {
		panic("plates: assignment and graph disagree on cell count")
	}
	return &Partitioner{
		graph:  g,
		assign: a,
		rng:    rng,
		ratio:  ratio,
		last:   StepTrace{Cell: -1, Neighbor: -1, Plate: NoPlate},
	}
}

// Seed picks one distinct random cell per plate and puts it on the frontier.
// With more plates than cells the surplus plates stay empty.
func (p *Partitioner) Seed() []int {
	if p.seeded {
		panic("plates: partitioner seeded twice")
	}
	numCells := p.graph.NumCells()
	n := p.assign.NumPlates()
	if n > numCells {
		slog.Warn("more plates than cells, surplus plates stay empty",
			"plates", n, "cells", numCells)
		n = numCells
	}

	p.seeds = p.rng.Perm(numCells)[:n]
	for plate, cell := range p.seeds {
		p.assign.Set(cell, plate)
		p.frontier = append(p.frontier, cell)
	}
	p.seeded = true
	p.nextLog = numCells / 10

	if p.assign.Complete() {
		p.done = true
	}
	return append([]int(nil), p.seeds...)
}

// Step performs one balanced expansion and reports whether every cell now
// has a plate. When the frontier runs dry first, the finalization sweep runs
// and Step reports Done.
func (p *Partitioner) Step() Progress {
	if !p.seeded {
		panic("plates: Step called before Seed")
	}
	if p.done {
		return Done
	}
	p.stats.Steps++
	p.last = StepTrace{Cell: -1, Neighbor: -1, Plate: NoPlate}

	if p.assign.Complete() {
		p.done = true
		return Done
	}
	if len(p.frontier) == 0 {
		p.finalize()
		p.done = true
		return Done
	}

	minSize := p.assign.MinSize()
	maxAllowed := float64(minSize) * p.ratio

	p.candidates = p.candidates[:0]
	for i, cell := range p.frontier {
		if float64(p.assign.Size(p.assign.Plate(cell))) < maxAllowed {
			p.candidates = append(p.candidates, i)
		}
	}

	var idx int
	relaxed := len(p.candidates) == 0
	if relaxed {
		p.stats.Relaxations++
		idx = p.rng.Intn(len(p.frontier))
	} else {
		idx = p.candidates[p.rng.Intn(len(p.candidates))]
	}

	cell := p.frontier[idx]
	plate := p.assign.Plate(cell)
	p.last = StepTrace{Cell: cell, Neighbor: -1, Plate: plate, MinSize: minSize, Relaxed: relaxed}

	p.open = p.open[:0]
	for _, nb := range p.graph.Neighbors(cell) {
		if p.assign.Plate(nb) == NoPlate {
			p.open = append(p.open, nb)
		}
	}

	if len(p.open) == 0 {
		last := len(p.frontier) - 1
		p.frontier[idx] = p.frontier[last]
		p.frontier = p.frontier[:last]
		p.stats.Retired++
		p.last.Retired = true
	} else {
		nb := p.open[p.rng.Intn(len(p.open))]
		p.assign.Set(nb, plate)
		p.frontier = append(p.frontier, nb)
		p.stats.Assignments++
		p.last.Neighbor = nb
		p.logProgress()
	}

	if p.assign.Complete() {
		p.done = true
		return Done
	}
	return InProgress
}

// Run steps until every cell has a plate.
func (p *Partitioner) Run() PartitionStats {
	for p.Step() != Done {
	}
	return p.stats
}

// finalize hands every leftover cell the plate of a random assigned neighbor,
// sweeping until a pass changes nothing. Components with no assigned cell at
// all get one cell placed on a random plate, then the sweep continues.
func (p *Partitioner) finalize() {
	p.stats.Finalized = true
	slog.Warn("frontier exhausted before every cell was assigned",
		"unassigned", p.assign.NumCells()-p.assign.Assigned())

	for !p.assign.Complete() {
		p.adoptNeighbors()
		if p.assign.Complete() {
			break
		}
		for cell := 0; cell < p.assign.NumCells(); cell++ {
			if p.assign.Plate(cell) == NoPlate {
				p.assign.Set(cell, p.rng.Intn(p.assign.NumPlates()))
				p.stats.Orphans++
				break
			}
		}
	}

	slog.Warn("finalization sweep complete",
		"adopted", p.stats.Adopted, "orphans", p.stats.Orphans)
}

func (p *Partitioner) adoptNeighbors() {
	for {
		changed := false
		for cell := 0; cell < p.assign.NumCells(); cell++ {
			if p.assign.Plate(cell) != NoPlate {
				continue
			}
			p.open = p.open[:0]
			for _, nb := range p.graph.Neighbors(cell) {
				if plate := p.assign.Plate(nb); plate != NoPlate {
					p.open = append(p.open, plate)
				}
			}
			if len(p.open) == 0 {
				continue
			}
			p.assign.Set(cell, p.open[p.rng.Intn(len(p.open))])
			p.stats.Adopted++
			changed = true
		}
		if !changed {
			return
		}
	}
}

func (p *Partitioner) logProgress() {
	if p.nextLog <= 0 || p.assign.Assigned() < p.nextLog {
		return
	}
	slog.Debug("plate growth",
		"assigned", p.assign.Assigned(),
		"cells", p.assign.NumCells(),
		"frontier", len(p.frontier),
		"relaxations", p.stats.Relaxations,
	)
	p.nextLog += p.assign.NumCells() / 10
}

// Last returns a trace of the most recent step.
func (p *Partitioner) Last() StepTrace { return p.last }

// Stats returns the partitioner counters.
func (p *Partitioner) Stats() PartitionStats { return p.stats }

// Seeds returns the seed cell of each seeded plate, indexed by plate.
func (p *Partitioner) Seeds() []int { return append([]int(nil), p.seeds...) }

// Frontier returns a copy of the current frontier.
func (p *Partitioner) Frontier() []int { return append([]int(nil), p.frontier...) }

// Seeded reports whether Seed has run.
func (p *Partitioner) Seeded() bool { return p.seeded }

// Finished reports whether every cell has a plate.
func (p *Partitioner) Finished() bool { return p.done }
