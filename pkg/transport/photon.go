// Package transport implements the per-photon stepping kernel: the core
// algorithm that advances a photon across voxel boundaries, applies
// refraction and Fresnel reflection at z-slice refractive-index
// interfaces, deposits absorbed weight, and dispatches to Russian
// roulette and Henyey-Greenstein scattering between interactions.
package transport

import (
	"math"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// Photon is one worker's mutable transport state. It is owned by exactly
// one worker for its entire lifetime: from launch, through every step,
// scatter, and roulette draw, until it dies or escapes.
type Photon struct {
	I core.Vec3 // fractional voxel index
	U core.Vec3 // unit direction
	D core.Vec3 // distance to next plane on each axis, cm

	Weight float64
	Time   float64 // s

	Alive        bool
	InsideVolume bool
	SameVoxel    bool

	StepLeft float64 // remaining optical depth before next interaction

	// Current optical properties, refreshed by RefreshProperties whenever
	// SameVoxel is false.
	Mua, Mus, G, RI float64

	ix, iy, iz int // clamped integer voxel index properties were read from
}

// NewStep draws a fresh remaining optical depth, per §4.2: stepLeft = -ln(u).
func NewStep(u float64) float64 {
	return -math.Log(u)
}

// ComputeD recomputes the per-axis distance to the next voxel plane from
// the photon's current fractional index and direction, per §4.2:
// D[k] = (floor(i[k]) + [u[k]>0] - i[k]) * d[k] / u[k] when u[k]!=0, else
// infinity.
func ComputeD(i, u core.Vec3, g *geometry.Grid) core.Vec3 {
	d := [3]float64{g.Dx, g.Dy, g.Dz}
	iv := [3]float64{i.X, i.Y, i.Z}
	uv := [3]float64{u.X, u.Y, u.Z}
	var out [3]float64
	for k := 0; k < 3; k++ {
		if uv[k] == 0 {
			out[k] = math.Inf(1)
			continue
		}
		boundary := math.Floor(iv[k])
		if uv[k] > 0 {
			boundary++
		}
		out[k] = (boundary - iv[k]) * d[k] / uv[k]
	}
	return core.NewVec3(out[0], out[1], out[2])
}

// RefreshProperties clamps the photon's floored voxel index into the grid
// and reads the active material and refractive index, per §4.5. It must
// be called whenever SameVoxel is false before the next step.
func (p *Photon) RefreshProperties(g *geometry.Grid) {
	ix := int(math.Floor(p.I.X))
	iy := int(math.Floor(p.I.Y))
	iz := int(math.Floor(p.I.Z))
	p.ix, p.iy, p.iz = g.ClampVoxel(ix, iy, iz)
	mat, ri := g.PropertyAt(p.ix, p.iy, p.iz)
	p.Mua, p.Mus, p.G, p.RI = mat.Mua, mat.Mus, mat.G, ri
	p.InsideVolume = g.Inside(p.I.X, p.I.Y, p.I.Z)
}

// VoxelIndex returns the linear index of the voxel whose properties are
// currently loaded, for tallying absorbed weight into F.
func (p *Photon) VoxelIndex(g *geometry.Grid) int {
	return g.Index(p.ix, p.iy, p.iz)
}
