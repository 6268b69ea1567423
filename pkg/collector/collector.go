// Package collector implements the virtual light collector (objective
// lens or fiber tip) that turns an escaping photon's ray into a bin
// deposit in an (X,Y,time) image, per §4.6.
package collector

import (
	"math"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// Infinite is the focal-length sentinel that distinguishes a fiber tip
// (Infinite) from an objective lens (any finite F).
const Infinite = math.MaxFloat64

// Collector is the immutable, shared-by-reference light-collector
// description.
type Collector struct {
	Center    core.Vec3 // focal-plane center (objective) or fiber-tip position
	Theta     float64   // polar placement angle, rad
	Phi       float64   // azimuthal placement angle, rad
	F         float64   // focal length, cm, or Infinite for a fiber
	Diameter  float64   // aperture diameter, cm
	FieldSize float64   // objective field size, cm (ignored for a fiber)
	NA        float64   // fiber numerical aperture (ignored for an objective)
	ResX      int
	ResY      int
	ResT      int
	TStart    float64
	TEnd      float64
}

// IsFiber reports whether this collector models a fiber tip rather than
// a finite-focal-length objective.
func (c *Collector) IsFiber() bool {
	return c.F == Infinite
}

// Accumulator receives weight deposits into the image tally. Implemented
// by sim.Tallies with an atomic add.
type Accumulator interface {
	AddImage(binIndex int, weight float64)
}

// Collect projects an escaped photon's position and direction into the
// collector frame and, if it is accepted by the aperture and (for an
// objective) the field stop or (for a fiber) the numerical aperture,
// deposits its weight into the appropriate (X,Y,time) bin, per §4.6.
func Collect(pos, dir core.Vec3, weight, photonTime float64, ri float64, g *geometry.Grid, c *Collector, acc Accumulator) {
	resc := core.NewVec3(
		(pos.X-float64(g.Nx)/2)*g.Dx-c.Center.X,
		(pos.Y-float64(g.Ny)/2)*g.Dy-c.Center.Y,
		(pos.Z-float64(g.Nz)/2)*g.Dz-c.Center.Z,
	)

	sinPhi, cosPhi := math.Sin(c.Phi), math.Cos(c.Phi)
	sinTheta, cosTheta := math.Sin(c.Theta), math.Cos(c.Theta)

	X := sinPhi*resc.X - cosPhi*resc.Y
	Y := cosTheta*cosPhi*resc.X + cosTheta*sinPhi*resc.Y - sinTheta*resc.Z
	Z := sinTheta*cosPhi*resc.X + sinTheta*sinPhi*resc.Y + cosTheta*resc.Z

	uX := sinPhi*dir.X - cosPhi*dir.Y
	uY := cosTheta*cosPhi*dir.X + cosTheta*sinPhi*dir.Y - sinTheta*dir.Z
	uZ := sinTheta*cosPhi*dir.X + sinTheta*sinPhi*dir.Y + cosTheta*dir.Z

	if uZ >= 0 {
		return
	}

	rLCPx := X - Z*uX/uZ
	rLCPy := Y - Z*uY/uZ
	rLCP := math.Hypot(rLCPx, rLCPy)
	if rLCP >= c.Diameter/2 {
		return
	}

	if c.IsFiber() {
		collectFiber(rLCPx, rLCPy, uX, uY, uZ, Z, photonTime, ri, weight, c, acc)
		return
	}
	collectObjective(rLCPx, rLCPy, uX, uY, uZ, Z, photonTime, ri, weight, c, acc)
}

func collectObjective(rLCPx, rLCPy, uX, uY, uZ, Z, photonTime, ri, weight float64, c *Collector, acc Accumulator) {
	rImX := rLCPx + c.F*uX/uZ
	rImY := rLCPy + c.F*uY/uZ
	if math.Hypot(rImX, rImY) >= c.FieldSize/2 {
		return
	}

	binX := int(math.Floor(float64(c.ResX) * (rImX/c.FieldSize + 0.5)))
	binY := int(math.Floor(float64(c.ResY) * (rImY/c.FieldSize + 0.5)))
	if binX < 0 || binX >= c.ResX || binY < 0 || binY >= c.ResY {
		return
	}

	T := timeBin(photonTime-(Z-c.F)/uZ*ri/core.SpeedOfLight, c)
	acc.AddImage(binX+binY*c.ResX+T*c.ResX*c.ResY, weight)
}

func collectFiber(rLCPx, rLCPy, uX, uY, uZ, Z, photonTime, ri, weight float64, c *Collector, acc Accumulator) {
	thetaFF := math.Atan(-math.Hypot(uX, uY) / uZ)
	if thetaFF >= math.Asin(math.Min(1, c.NA)) {
		return
	}
	T := timeBin(photonTime-Z/uZ*ri/core.SpeedOfLight, c)
	acc.AddImage(T, weight)
}

// timeBin maps an arrival time onto [0,ResT-1], per §4.6. With ResT=1
// every photon lands in bin 0.
func timeBin(t float64, c *Collector) int {
	if c.ResT <= 1 {
		return 0
	}
	frac := 1 + float64(c.ResT-2)*(t-c.TStart)/(c.TEnd-c.TStart)
	return clampBin(int(math.Floor(frac)), 0, c.ResT-1)
}

func clampBin(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
