package plates

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// RandomUnitVector samples a direction uniformly on the unit sphere.
func RandomUnitVector(rng *rand.Rand) mgl64.Vec3 {
	u := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi

	r := math.Sqrt(1 - u*u)
	return mgl64.Vec3{r * math.Cos(theta), r * math.Sin(theta), u}
}

// RandomAngularVelocity returns a random rotation axis scaled by a speed in [0, 1].
func RandomAngularVelocity(rng *rand.Rand) mgl64.Vec3 {
	dir := RandomUnitVector(rng)
	return dir.Mul(rng.Float64())
}

// VelocityField returns each cell's linear velocity ω × center for the
// angular velocity ω of its plate. Cells of one plate rotate rigidly together
// and every velocity is tangent to the sphere.
func VelocityField(g Graph, a *Assignment, omegas []mgl64.Vec3) []mgl64.Vec3 {
	if !a.Complete() {
		panic("plates: velocity pass on an incomplete assignment")
	}
	out := make([]mgl64.Vec3, g.NumCells())
	for cell := range out {
		out[cell] = omegas[a.Plate(cell)].Cross(g.Center(cell))
	}
	return out
}
