package plates

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Cell is the published state of one cell.
type Cell struct {
	Plate    int        `json:"plate"` // NoPlate until assigned
	Boundary bool       `json:"boundary"`
	Surface  Surface    `json:"surface"`
	Velocity mgl64.Vec3 `json:"velocity"`
}

// Plate is the published state of one plate.
type Plate struct {
	ID              int        `json:"id"`
	SeedCell        int        `json:"seed_cell"` // -1 if the plate was never seeded
	Size            int        `json:"size"`
	Surface         Surface    `json:"surface"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
	Colour          color.RGBA `json:"colour"`
}

// Snapshot is a consistent copy of the world taken under one read lock.
type Snapshot struct {
	Version  uint64         `json:"version"`
	Config   Config         `json:"config"`
	Assigned int            `json:"assigned"`
	Stats    PartitionStats `json:"stats"`
	Cells    []Cell         `json:"cells"`
	Plates   []Plate        `json:"plates"`
}

// World owns all per-cell generation state. Each pass runs under the write
// lock and publishes whole slices, so readers never see a half-finished pass.
type World struct {
	mu sync.RWMutex

	graph  Graph
	cfg    Config
	rng    *rand.Rand
	assign *Assignment
	part   *Partitioner

	boundary []bool
	surface  []Surface
	velocity []mgl64.Vec3
	oceans   []bool
	omegas   []mgl64.Vec3
	seeds    []int
	palette  []color.RGBA

	version uint64
}

// NewWorld creates an empty world over g.
func NewWorld(g Graph, cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g.NumCells() == 0 {
		return nil, fmt.Errorf("%w: graph has no cells", ErrInvalidConfig)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	a := NewAssignment(g.NumCells(), cfg.NumPlates)
	return &World{
		graph:  g,
		cfg:    cfg,
		rng:    rng,
		assign: a,
		part:   NewPartitioner(g, a, cfg.MaxSizeRatio, rng),
	}, nil
}

// SeedPlates places one seed cell per plate and builds the plate palette.
func (w *World) SeedPlates() []int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seeds = w.part.Seed()
	centers := make([]mgl64.Vec3, len(w.seeds))
	for i, cell := range w.seeds {
		centers[i] = w.graph.Center(cell)
	}
	w.palette = Palette(centers, w.cfg.Seed, w.rng)
	w.version++

	slog.Info("plates seeded", "plates", len(w.seeds), "cells", w.graph.NumCells())
	return append([]int(nil), w.seeds...)
}

// GrowPlates runs up to CellsPerTick partitioner steps.
func (w *World) GrowPlates() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()

	progress := InProgress
	for i := 0; i < w.cfg.CellsPerTick; i++ {
		if progress = w.part.Step(); progress == Done {
			break
		}
	}
	w.version++
	return progress
}

// AssignBoundaries runs the boundary pass.
func (w *World) AssignBoundaries() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.boundary = ClassifyBoundaries(w.graph, w.assign)
	w.version++

	n := 0
	for _, b := range w.boundary {
		if b {
			n++
		}
	}
	slog.Info("plate boundaries assigned", "boundary_cells", n)
}

// AssignContinents draws a fresh ocean/land split and labels every cell.
func (w *World) AssignContinents() {
	w.mu.Lock()
	defer w.mu.Unlock()

	oceans := ChooseOceans(w.cfg.NumPlates, w.cfg.OceanDivisor, w.rng)
	w.surface = LabelSurface(w.assign, oceans)
	w.oceans = oceans
	w.version++

	slog.Info("continents assigned", "ocean_plates", w.cfg.OceanCount(), "plates", w.cfg.NumPlates)
}

// ResetContinents clears every land/ocean label. Plate assignment and
// boundary flags are untouched.
func (w *World) ResetContinents() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.surface = nil
	w.oceans = nil
	w.version++
	slog.Info("continents reset")
}

// AssignVelocities draws one angular velocity per plate and derives the
// per-cell velocity field.
func (w *World) AssignVelocities() {
	w.mu.Lock()
	defer w.mu.Unlock()

	omegas := make([]mgl64.Vec3, w.cfg.NumPlates)
	for i := range omegas {
		omegas[i] = RandomAngularVelocity(w.rng)
	}
	w.velocity = VelocityField(w.graph, w.assign, omegas)
	w.omegas = omegas
	w.version++
	slog.Info("plate velocities assigned", "plates", len(omegas))
}

// Snapshot returns a consistent copy of all cells and plates.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cells := make([]Cell, w.graph.NumCells())
	for i := range cells {
		cells[i] = w.cellLocked(i)
	}
	return Snapshot{
		Version:  w.version,
		Config:   w.cfg,
		Assigned: w.assign.Assigned(),
		Stats:    w.part.Stats(),
		Cells:    cells,
		Plates:   w.platesLocked(),
	}
}

// Cell returns the state of one cell.
func (w *World) Cell(cell int) (Cell, bool) {
	if cell < 0 || cell >= w.graph.NumCells() {
		return Cell{}, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cellLocked(cell), true
}

// Plates returns the state of every plate.
func (w *World) Plates() []Plate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.platesLocked()
}

// Colours returns each cell's display colour: the surface colour once
// continents exist, else black on boundaries, else the plate colour.
func (w *World) Colours() []color.RGBA {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]color.RGBA, w.graph.NumCells())
	for cell := range out {
		switch {
		case w.surface != nil && w.surface[cell] == SurfaceOcean:
			out[cell] = OceanColour
		case w.surface != nil && w.surface[cell] == SurfaceLand:
			out[cell] = LandColour
		case w.boundary != nil && w.boundary[cell]:
			out[cell] = BoundaryColour
		case w.assign.Plate(cell) != NoPlate && w.palette != nil:
			out[cell] = w.palette[w.assign.Plate(cell)]
		default:
			out[cell] = UnassignedColour
		}
	}
	return out
}

// Progress returns assigned and total cell counts.
func (w *World) Progress() (assigned, total int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.assign.Assigned(), w.assign.NumCells()
}

// Stats returns the partitioner counters.
func (w *World) Stats() PartitionStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.part.Stats()
}

// Version increments on every published change.
func (w *World) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Graph returns the underlying cell graph.
func (w *World) Graph() Graph { return w.graph }

// Config returns the generation config.
func (w *World) Config() Config { return w.cfg }

func (w *World) cellLocked(cell int) Cell {
	c := Cell{Plate: w.assign.Plate(cell)}
	if w.boundary != nil {
		c.Boundary = w.boundary[cell]
	}
	if w.surface != nil {
		c.Surface = w.surface[cell]
	}
	if w.velocity != nil {
		c.Velocity = w.velocity[cell]
	}
	return c
}

func (w *World) platesLocked() []Plate {
	out := make([]Plate, w.cfg.NumPlates)
	for i := range out {
		p := Plate{ID: i, SeedCell: -1, Size: w.assign.Size(i)}
		if i < len(w.seeds) {
			p.SeedCell = w.seeds[i]
		}
		if i < len(w.palette) {
			p.Colour = w.palette[i]
		}
		if w.oceans != nil {
			if w.oceans[i] {
				p.Surface = SurfaceOcean
			} else {
				p.Surface = SurfaceLand
			}
		}
		if w.omegas != nil {
			p.AngularVelocity = w.omegas[i]
		}
		out[i] = p
	}
	return out
}
