package beam

import (
	"fmt"
	"math"
	"sort"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/lambertw"
	"github.com/ahewitt/mcvox/pkg/rng"
	"github.com/ahewitt/mcvox/pkg/transport"
)

// lg01Normalizer (1.50087) normalizes the LG01 radial and angular samples
// so that Waist and Divergence correspond to 1/e^2 radii, per §4.2.
const lg01Normalizer = 1.50087

// Launch samples one photon's initial state for beam b, per §4.2. The
// returned Photon has its weight, time, position, direction, D, and
// stepLeft fully initialized and is ready for the first call into the
// transport stepper.
func Launch(b *Beam, g *geometry.Grid, src *rng.Source) (*transport.Photon, error) {
	p := &transport.Photon{
		Alive:     true,
		SameVoxel: false,
		Weight:    1,
		Time:      0,
	}

	var pos core.Vec3
	var dir core.Vec3
	var err error

	switch b.Kind {
	case VolumetricSource:
		pos, dir, err = sampleVolumetric(b, g, src)
	case Pencil:
		pos, dir = samplePencil(b)
		p.Time = launchTime(b, pos, g)
	case IsotropicPoint:
		pos = b.Focus
		dir = sampleIsotropic(src)
	case PlaneWave:
		pos, dir = samplePlaneWave(b, g, src)
		p.Time = launchTime(b, pos, g)
	default:
		if !b.Kind.focusFar() {
			return nil, fmt.Errorf("beam: unsupported kind %v", b.Kind)
		}
		pos, dir, err = sampleFocusFar(b, src)
	}
	if err != nil {
		return nil, err
	}

	p.I = core.NewVec3(pos.X/g.Dx, pos.Y/g.Dy, pos.Z/g.Dz)
	p.U = dir.Normalize()
	p.D = transport.ComputeD(p.I, p.U, g)
	p.StepLeft = transport.NewStep(src.Float64())
	return p, nil
}

// launchTime assigns pencil and plane-wave photons a negative time equal
// to the optical path from their launch point to the beam's focus, so an
// unperturbed ray reaches focus at t=0. The refractive index at the
// launch slice is used for the whole path; this is an approximation for
// media with several z-interfaces between launch and focus, which the
// design notes flag as imported/unspecified behavior for the other beam
// kinds (they leave time=0 at launch).
func launchTime(b *Beam, launchPos core.Vec3, g *geometry.Grid) float64 {
	dist := b.Focus.Subtract(launchPos).Length()
	riIdx := clampIndex(int(math.Floor(launchPos.Z/g.Dz)), g.Nz)
	ri := g.RefractiveIdx[riIdx]
	return -dist * ri / core.SpeedOfLight
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// sampleVolumetric draws a uniform u, binary-searches the cumulative
// distribution S for the voxel it falls in, places the photon at a
// uniform fractional offset within that voxel, and samples an isotropic
// direction, per §4.2. The returned position is in the same physical
// (cm) units as every other sampler in this file, since Launch divides
// it by g.Dx/g.Dy/g.Dz uniformly afterward.
func sampleVolumetric(b *Beam, g *geometry.Grid, src *rng.Source) (core.Vec3, core.Vec3, error) {
	if len(b.Source) == 0 {
		return core.Vec3{}, core.Vec3{}, fmt.Errorf("beam: volumetric source has no cumulative distribution")
	}
	u := src.Float64()
	// S[j] < u <= S[j+1]; sort.Search finds the first index j+1 with S[j+1] >= u.
	j := sort.Search(len(b.Source)-1, func(i int) bool { return b.Source[i+1] >= u })

	ix := j % b.SourceNx
	iy := (j / b.SourceNx) % b.SourceNy
	iz := j / (b.SourceNx * b.SourceNy)

	pos := core.NewVec3(
		(float64(ix)+src.Float64())*g.Dx,
		(float64(iy)+src.Float64())*g.Dy,
		(float64(iz)+src.Float64())*g.Dz,
	)
	return pos, sampleIsotropic(src), nil
}

func sampleIsotropic(src *rng.Source) core.Vec3 {
	cosTheta := 2*src.Float64() - 1
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * src.Float64()
	return core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// samplePencil starts the photon at the z=0 plane at the point where the
// line through Focus along U crosses z=0.
func samplePencil(b *Beam) (core.Vec3, core.Vec3) {
	dir := b.U
	if dir.Z == 0 {
		return core.NewVec3(b.Focus.X, b.Focus.Y, 0), dir
	}
	t := -b.Focus.Z / dir.Z
	return b.Focus.Add(dir.Multiply(t)), dir
}

// samplePlaneWave launches uniformly over the grid's x-y footprint
// (escape-all boundary) or over a KillRange multiple of it otherwise, at
// z=0, propagating along B.U.
func samplePlaneWave(b *Beam, g *geometry.Grid, src *rng.Source) (core.Vec3, core.Vec3) {
	footprintX := float64(g.Nx) * g.Dx
	footprintY := float64(g.Ny) * g.Dy
	extentX, extentY := footprintX, footprintY
	if g.Boundary != geometry.BoundaryEscapeAll {
		extentX *= core.KillRange
		extentY *= core.KillRange
	}
	x := footprintX/2 + (src.Float64()-0.5)*extentX
	y := footprintY/2 + (src.Float64()-0.5)*extentY
	return core.NewVec3(x, y, 0), b.U
}

// sampleFocusFar implements the four Gaussian/top-hat focus/far-field
// combinations and LG01, per §4.2: sample a target radius in the focal
// plane at a random azimuth around B.U, independently sample a
// propagation half-angle, rotate B.U toward that tilt, then project the
// resulting ray back to the z=0 launch plane.
func sampleFocusFar(b *Beam, src *rng.Source) (core.Vec3, core.Vec3, error) {
	phi := 2 * math.Pi * src.Float64()
	radialDir := b.V.RotateAroundAxis(b.U, phi)

	r, err := focalRadius(b, src)
	if err != nil {
		return core.Vec3{}, core.Vec3{}, err
	}
	theta, err := divergenceAngle(b, src)
	if err != nil {
		return core.Vec3{}, core.Vec3{}, err
	}

	focalPoint := b.Focus.Add(radialDir.Multiply(r))

	tiltAxis := radialDir.Cross(b.U)
	if tiltAxis.IsZero() {
		tiltAxis = b.V
	}
	tiltAxis = tiltAxis.Normalize()
	dir := b.U.RotateAroundAxis(tiltAxis, theta).Normalize()

	if dir.Z == 0 {
		return core.NewVec3(focalPoint.X, focalPoint.Y, 0), dir, nil
	}
	t := -focalPoint.Z / dir.Z
	launch := focalPoint.Add(dir.Multiply(t))
	return launch, dir, nil
}

func focalRadius(b *Beam, src *rng.Source) (float64, error) {
	switch b.Kind {
	case GaussianFocusGaussianFar, GaussianFocusTophatFar:
		return b.Waist * math.Sqrt(-0.5*math.Log(src.Float64())), nil
	case TophatFocusGaussianFar, TophatFocusTophatFar:
		return b.Waist * math.Sqrt(src.Float64()), nil
	case LG01:
		return lg01Radius(b.Waist, src)
	default:
		return 0, fmt.Errorf("beam: %v has no focal radial profile", b.Kind)
	}
}

func divergenceAngle(b *Beam, src *rng.Source) (float64, error) {
	switch b.Kind {
	case GaussianFocusGaussianFar, TophatFocusGaussianFar:
		return b.Divergence * math.Sqrt(-0.5*math.Log(src.Float64())), nil
	case GaussianFocusTophatFar, TophatFocusTophatFar:
		return b.Divergence * math.Sqrt(src.Float64()), nil
	case LG01:
		return lg01Radius(b.Divergence, src)
	default:
		return 0, fmt.Errorf("beam: %v has no far-field divergence profile", b.Kind)
	}
}

// lg01Radius evaluates scale * sqrt((W_-1(-u/e)+1)/-2) / 1.50087, shared
// by the LG01 profile's radius and divergence-angle samples (§4.2).
func lg01Radius(scale float64, src *rng.Source) (float64, error) {
	u := src.Float64()
	w, err := lambertw.WMinus1(-u / math.E)
	if err != nil {
		return 0, fmt.Errorf("beam: LG01 sampling: %w", err)
	}
	return scale * math.Sqrt((w+1)/-2) / lg01Normalizer, nil
}
