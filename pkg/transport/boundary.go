package transport

import (
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// ApplyBoundary implements §4.4: after each voxel transition it decides
// whether the photon stays alive and whether an escape should be
// reported to the light collector. p.InsideVolume must already be
// current (RefreshProperties sets it).
func ApplyBoundary(p *Photon, g *geometry.Grid) (escaped bool) {
	switch g.Boundary {
	case geometry.BoundaryEscapeAll:
		p.Alive = p.InsideVolume
		return !p.InsideVolume

	case geometry.BoundaryEscapeTop:
		escaped = p.I.Z < 0
		p.Alive = withinKillRange(p.I.X, g.Nx) && withinKillRange(p.I.Y, g.Ny) &&
			p.I.Z/float64(g.Nz)-0.5 < core.KillRange/2 && p.I.Z >= 0
		return escaped

	default: // geometry.BoundaryNone
		p.Alive = withinKillRange(p.I.X, g.Nx) && withinKillRange(p.I.Y, g.Ny) && withinKillRange(p.I.Z, g.Nz)
		return false
	}
}

func withinKillRange(frac float64, n int) bool {
	v := frac/float64(n) - 0.5
	return v > -core.KillRange/2 && v < core.KillRange/2
}
