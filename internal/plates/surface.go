package plates

import (
	"fmt"
	"math/rand"
)

// Surface is the land/ocean label of a plate and its cells.
type Surface uint8

const (
	SurfaceUnset Surface = iota
	SurfaceLand
	SurfaceOcean
)

func (s Surface) String() string {
	switch s {
	case SurfaceLand:
		return "land"
	case SurfaceOcean:
		return "ocean"
	default:
		return "unset"
	}
}

// ParseSurface is the inverse of Surface.String.
func ParseSurface(s string) (Surface, error) {
	switch s {
	case "unset", "":
		return SurfaceUnset, nil
	case "land":
		return SurfaceLand, nil
	case "ocean":
		return SurfaceOcean, nil
	}
	return SurfaceUnset, fmt.Errorf("unknown surface %q", s)
}

// MarshalText encodes the surface by name.
func (s Surface) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a surface name.
func (s *Surface) UnmarshalText(b []byte) error {
	v, err := ParseSurface(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ChooseOceans picks numPlates/divisor distinct plates uniformly at random as
// ocean. The result is indexed by plate.
func ChooseOceans(numPlates, divisor int, rng *rand.Rand) []bool {
	oceans := make([]bool, numPlates)
	for _, plate := range rng.Perm(numPlates)[:numPlates/divisor] {
		oceans[plate] = true
	}
	return oceans
}

// LabelSurface labels each cell with its plate's surface.
// The assignment must be complete.
func LabelSurface(a *Assignment, oceans []bool) []Surface {
	if !a.Complete() {
		panic("plates: surface pass on an incomplete assignment")
	}
	labels := make([]Surface, a.NumCells())
	for cell := range labels {
		if oceans[a.Plate(cell)] {
			labels[cell] = SurfaceOcean
		} else {
			labels[cell] = SurfaceLand
		}
	}
	return labels
}
