package plates

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Display colours for classified cells.
var (
	UnassignedColour = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	BoundaryColour   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	LandColour       = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	OceanColour      = color.RGBA{R: 0, G: 105, B: 148, A: 255}
)

// paletteFrequency scales seed positions before sampling hue noise.
const paletteFrequency = 1.7

// Palette assigns each plate a colour. Hue comes from simplex noise sampled at
// the plate's seed position, so neighbouring plates drift through related
// hues; saturation and value are jittered per plate.
func Palette(seeds []mgl64.Vec3, noiseSeed int64, rng *rand.Rand) []color.RGBA {
	noise := opensimplex.NewNormalized(noiseSeed)
	out := make([]color.RGBA, len(seeds))
	for i, p := range seeds {
		hue := noise.Eval3(p.X()*paletteFrequency, p.Y()*paletteFrequency, p.Z()*paletteFrequency)
		// Spread the narrow band simplex tends to produce over the full wheel.
		hue = math.Mod(hue*3+rng.Float64()*0.15, 1)
		sat := 0.45 + rng.Float64()*0.45
		val := 0.55 + rng.Float64()*0.4
		out[i] = hsv(hue, sat, val)
	}
	return out
}

// hsv converts hue, saturation and value in [0, 1] to an opaque RGBA colour.
func hsv(h, s, v float64) color.RGBA {
	h6 := h * 6
	sector := int(math.Floor(h6)) % 6
	f := h6 - math.Floor(h6)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch sector {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}
