package transport

import (
	"math"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
)

// dblEpsilon is the machine epsilon used to scale the ULP-sized push
// across a voxel boundary, per the design notes: it must scale with the
// magnitude of the index rather than being a fixed constant.
const dblEpsilon = 2.220446049250313e-16

func epsPush(i float64) float64 {
	return dblEpsilon * (math.Abs(i) + 1)
}

// Accumulator receives absorbed-weight deposits into the volumetric
// tally F. Implemented by sim.Tallies with an atomic add; kept as an
// interface here so the stepper has no dependency on the sim package.
type Accumulator interface {
	AddAbsorption(voxelIndex int, amount float64)
}

// Step performs one iteration of the core algorithm (§4.3): it advances
// the photon to the next interaction or the next voxel boundary,
// whichever comes first, applying refraction/Fresnel reflection at
// z-slice interfaces and depositing absorbed weight along the way.
//
// On return, p.SameVoxel is false iff the step reached a voxel boundary,
// including a z-boundary where the photon reflected and stayed in its
// voxel; the caller must then refresh its properties (RefreshProperties)
// before stepping again. p.StepLeft <= 0 means an interaction occurred
// and the caller should apply roulette and then Scatter.
func Step(p *Photon, g *geometry.Grid, src *rng.Source, acc Accumulator) {
	p.SameVoxel = true

	d := [3]float64{g.Dx, g.Dy, g.Dz}
	i := [3]float64{p.I.X, p.I.Y, p.I.Z}
	u := [3]float64{p.U.X, p.U.Y, p.U.Z}
	D := [3]float64{p.D.X, p.D.Y, p.D.Z}

	s := p.StepLeft / p.Mus
	for k := 0; k < 3; k++ {
		if D[k] < s {
			s = D[k]
		}
	}

	p.StepLeft -= s * p.Mus
	p.Time += s * p.RI / core.SpeedOfLight

	for k := 0; k < 3; k++ {
		if s == D[k] {
			if k < 2 {
				stepAcrossStraight(&i[k], &D[k], u[k], d[k])
				p.SameVoxel = false
				continue
			}
			stepAcrossZ(p, g, &i, &u, &D, d, src)
			p.SameVoxel = false
			continue
		}

		oldFloor := math.Floor(i[k])
		i[k] += s * u[k] / d[k]
		if math.Floor(i[k]) != oldFloor {
			if u[k] > 0 {
				i[k] = oldFloor + 1 - epsPush(i[k])
			} else {
				i[k] = oldFloor + epsPush(i[k])
			}
		}
		D[k] -= s
	}

	p.I = core.NewVec3(i[0], i[1], i[2])
	p.U = core.NewVec3(u[0], u[1], u[2])
	p.D = core.NewVec3(D[0], D[1], D[2])

	absorb := p.Weight * (1 - math.Exp(-p.Mua*s))
	p.Weight -= absorb
	if p.InsideVolume {
		acc.AddAbsorption(p.VoxelIndex(g), absorb)
	}
}

// stepAcrossStraight handles a lateral (x or y) voxel-boundary crossing,
// which always travels straight through (§4.3 step 3: "for k=0 or k=1:
// always travel straight").
func stepAcrossStraight(i, D *float64, u, edge float64) {
	*i = snapAcross(*i, u)
	*D = edge / math.Abs(u)
}

// snapAcross returns the fractional index snapped to the far side of the
// voxel boundary in the direction of travel, landing strictly on the new
// voxel's side of the plane per the ULP-push design note.
func snapAcross(iOld, u float64) float64 {
	if u > 0 {
		boundary := math.Floor(iOld) + 1
		return boundary + epsPush(boundary)
	}
	boundary := math.Floor(iOld)
	return boundary - epsPush(boundary)
}

// stepAcrossZ handles a z-axis voxel-boundary crossing, where the new
// voxel's slice may have a different refractive index: it computes
// Fresnel reflectance, draws whether the photon refracts, reflects
// (including total internal reflection), or passes straight through,
// per §4.3 step 3.
func stepAcrossZ(p *Photon, g *geometry.Grid, i, u, D *[3]float64, d [3]float64, src *rng.Source) {
	u0, u1, u2 := u[0], u[1], u[2]

	sign := 1
	if u2 < 0 {
		sign = -1
	}
	newZIdx := clampInt(int(math.Floor(i[2]))+sign, 0, g.Nz-1)
	riNew := g.RefractiveIdx[newZIdx]
	eta := p.RI / riNew

	action := "straight"
	var cosThetaPrime, reflectance float64

	if eta != 1 {
		sin2ThetaPrime := (u0*u0 + u1*u1) * eta * eta
		if sin2ThetaPrime < 1 {
			cosThetaPrime = signf(u2) * math.Sqrt(1-sin2ThetaPrime)
			reflectance = fresnelReflectance(eta, u2, cosThetaPrime)
			if src.Float64() > reflectance {
				if math.Abs(u2) == 1 {
					action = "straight"
				} else {
					action = "refract"
				}
			} else {
				action = "reflect"
			}
		} else {
			action = "reflect" // total internal reflection
		}
	}

	switch action {
	case "straight":
		i[2] = snapAcross(i[2], u2)
		D[2] = d[2] / math.Abs(u2)

	case "refract":
		i[2] = snapAcross(i[2], u2)
		scale := math.Sqrt((1 - cosThetaPrime*cosThetaPrime) / (1 - u2*u2))
		u[0] = u0 * scale
		u[1] = u1 * scale
		u[2] = cosThetaPrime
		D[0] = transport1D(i[0], u[0], d[0])
		D[1] = transport1D(i[1], u[1], d[1])
		D[2] = d[2] / math.Abs(u[2])

	case "reflect":
		i[2] = snapInside(i[2], u2)
		u[2] = -u2
		D[2] = d[2] / math.Abs(u[2])
	}
}

// fresnelReflectance computes the unpolarized Fresnel reflectance at a
// z-slice interface, per §4.3.
func fresnelReflectance(eta, u2, cosThetaPrime float64) float64 {
	a := (eta*u2 - cosThetaPrime) / (eta*u2 + cosThetaPrime)
	b := (eta*cosThetaPrime - u2) / (eta*cosThetaPrime + u2)
	return 0.5*a*a + 0.5*b*b
}

// snapInside places the fractional index just inside the original voxel
// (used by reflection, which never crosses the boundary it bounced off).
func snapInside(iOld, u float64) float64 {
	if u > 0 {
		boundary := math.Floor(iOld) + 1
		return boundary - epsPush(boundary)
	}
	boundary := math.Floor(iOld)
	return boundary + epsPush(boundary)
}

// transport1D recomputes a lateral axis's distance-to-next-plane after
// its direction component changed during refraction.
func transport1D(i, u, edge float64) float64 {
	if u == 0 {
		return math.Inf(1)
	}
	boundary := math.Floor(i)
	if u > 0 {
		boundary++
	}
	return (boundary - i) * edge / u
}

func signf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
