package transport

import (
	"math"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
)

// Scatter samples a new direction from the Henyey-Greenstein phase
// function and draws a fresh remaining optical depth, per §4.8. It must
// be called after an interaction (StepLeft <= 0) once roulette has
// decided the photon survives.
func Scatter(p *Photon, g *geometry.Grid, src *rng.Source) {
	cosTheta := sampleHGCosTheta(p.G, src.Float64())
	phi := 2 * math.Pi * src.Float64()

	ux, uy, uz := p.U.X, p.U.Y, p.U.Z
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	var nx, ny, nz float64
	if math.Abs(uz) < 1 {
		denom := math.Sqrt(math.Max(1e-300, 1-uz*uz))
		nx = sinTheta*(ux*uz*math.Cos(phi)-uy*math.Sin(phi))/denom + ux*cosTheta
		ny = sinTheta*(uy*uz*math.Cos(phi)+ux*math.Sin(phi))/denom + uy*cosTheta
		nz = -sinTheta*math.Cos(phi)*denom + uz*cosTheta
	} else {
		nx = sinTheta * math.Cos(phi)
		ny = sinTheta * math.Sin(phi)
		nz = signf(uz) * cosTheta
	}

	p.U = core.NewVec3(nx, ny, nz).Normalize()
	p.D = ComputeD(p.I, p.U, g)
	p.StepLeft = NewStep(src.Float64())
}

// sampleHGCosTheta draws cos(theta) from the Henyey-Greenstein phase
// function for anisotropy g, or uniformly on [-1,1] for the isotropic
// case g=0, per §4.8.
func sampleHGCosTheta(g, u float64) float64 {
	if g == 0 {
		return 2*u - 1
	}
	term := (1 - g*g) / (1 - g + 2*g*u)
	return (1 + g*g - term*term) / (2 * g)
}
