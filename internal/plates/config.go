// Package plates partitions a sphere's cells into tectonic plates and derives
// per-cell boundary flags, land/ocean labels and rigid-rotation velocities.
package plates

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Graph is the read-only cell adjacency the generator works over.
// Indices are stable in [0, NumCells()).
type Graph interface {
	NumCells() int
	Neighbors(cell int) []int
	Center(cell int) mgl64.Vec3
}

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid plates config")

// Config holds plate generation parameters.
type Config struct {
	NumPlates    int     // Number of plates K
	MaxSizeRatio float64 // Largest growing plate may reach MaxSizeRatio × smallest
	OceanDivisor int     // NumPlates / OceanDivisor plates are ocean
	CellsPerTick int     // Partitioner steps per GrowPlates call
	Seed         int64   // Random seed (0 = caller picks one)
}

// DefaultConfig returns the standard 40-plate configuration.
func DefaultConfig() Config {
	return Config{
		NumPlates:    40,
		MaxSizeRatio: 3.0,
		OceanDivisor: 3,
		CellsPerTick: 1,
		Seed:         0,
	}
}

// SmallTestConfig returns a small deterministic configuration for tests.
func SmallTestConfig() Config {
	return Config{
		NumPlates:    10,
		MaxSizeRatio: 3.0,
		OceanDivisor: 3,
		CellsPerTick: 1,
		Seed:         42,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.NumPlates < 1:
		return fmt.Errorf("%w: NumPlates %d < 1", ErrInvalidConfig, c.NumPlates)
	case c.MaxSizeRatio < 1:
		return fmt.Errorf("%w: MaxSizeRatio %.2f < 1", ErrInvalidConfig, c.MaxSizeRatio)
	case c.OceanDivisor < 1:
		return fmt.Errorf("%w: OceanDivisor %d < 1", ErrInvalidConfig, c.OceanDivisor)
	case c.CellsPerTick < 1:
		return fmt.Errorf("%w: CellsPerTick %d < 1", ErrInvalidConfig, c.CellsPerTick)
	}
	return nil
}

// OceanCount returns how many plates are labelled ocean.
func (c Config) OceanCount() int {
	return c.NumPlates / c.OceanDivisor
}
