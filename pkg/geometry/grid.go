// Package geometry holds the immutable voxel-grid description: edge
// lengths, material labels, and per-material/per-slice optical-property
// tables. A Grid is built once by the host and never mutated once
// simulation starts, mirroring the teacher's treatment of its Scene as a
// read-only value shared by every rendering worker.
package geometry

import "fmt"

// Boundary selects how photons are treated when they cross the grid's
// outer faces.
type Boundary int

const (
	// BoundaryNone keeps photons alive within a KillRange envelope around
	// the grid and never reports an escape.
	BoundaryNone Boundary = iota
	// BoundaryEscapeAll kills a photon the instant it leaves the grid on
	// any face and reports the escape to the light collector.
	BoundaryEscapeAll
	// BoundaryEscapeTop is like BoundaryEscapeAll at the top (z<0) face
	// only; the other faces use the KillRange envelope.
	BoundaryEscapeTop
)

func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryEscapeAll:
		return "escape-all"
	case BoundaryEscapeTop:
		return "escape-top"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// Material holds the optical properties of one tissue type: absorption
// coefficient, scattering coefficient (cm⁻¹), and Henyey-Greenstein
// anisotropy (dimensionless, in [-1,1]).
type Material struct {
	Mua float64
	Mus float64
	G   float64
}

// Grid is the immutable voxel-grid geometry: edge lengths, voxel counts,
// the boundary policy, the per-voxel material-label map, the
// per-material property tables, and the per-z-slice refractive-index
// table. It is constructed once and shared by reference across all
// transport workers.
type Grid struct {
	Dx, Dy, Dz    float64
	Nx, Ny, Nz    int
	Boundary      Boundary
	Materials     []int   // len Nx*Ny*Nz, x-fastest then y then z, indexes into Properties
	Properties    []Material
	RefractiveIdx []float64 // len Nz
}

// VoxelVolume returns dx*dy*dz.
func (g *Grid) VoxelVolume() float64 {
	return g.Dx * g.Dy * g.Dz
}

// NumVoxels returns nx*ny*nz.
func (g *Grid) NumVoxels() int {
	return g.Nx * g.Ny * g.Nz
}

// Index converts clamped integer voxel coordinates to a linear index,
// x-fastest then y then z (matching the teacher's row-major pixel
// addressing in pkg/renderer/stats.go, generalized to 3 dimensions).
func (g *Grid) Index(ix, iy, iz int) int {
	return ix + iy*g.Nx + iz*g.Nx*g.Ny
}

// ClampVoxel clamps integer (floored) voxel coordinates to the nearest defined
// voxel index along each axis, per §4.5: a photon outside the cuboid but
// still alive is ascribed the nearest defined voxel's properties.
func (g *Grid) ClampVoxel(ix, iy, iz int) (int, int, int) {
	return clamp(ix, 0, g.Nx-1), clamp(iy, 0, g.Ny-1), clamp(iz, 0, g.Nz-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PropertyAt returns the material and refractive index active at the
// clamped voxel (ix,iy,iz).
func (g *Grid) PropertyAt(ix, iy, iz int) (Material, float64) {
	cix, ciy, ciz := g.ClampVoxel(ix, iy, iz)
	mat := g.Properties[g.Materials[g.Index(cix, ciy, ciz)]]
	ri := g.RefractiveIdx[ciz]
	return mat, ri
}

// Inside reports whether the fractional voxel index (i[0],i[1],i[2]) lies
// within the grid's bounds on every axis.
func (g *Grid) Inside(ix, iy, iz float64) bool {
	return ix >= 0 && ix < float64(g.Nx) &&
		iy >= 0 && iy < float64(g.Ny) &&
		iz >= 0 && iz < float64(g.Nz)
}
