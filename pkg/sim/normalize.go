package sim

import (
	"github.com/ahewitt/mcvox/pkg/beam"
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// normalize rescales the raw accumulated tallies into physical units,
// per §4.9. It is the only place nPhotons, power, and the per-material
// absorption coefficients come together; everything upstream of it
// only ever adds.
func normalize(rawF, rawImage []float64, in Input, nPhotons int64) (f, image []float64) {
	g := in.Grid
	v := g.VoxelVolume()
	n := float64(nPhotons)
	volumetric := in.Beam.Kind == beam.VolumetricSource
	power := in.Beam.Power

	killRangeSq := 1.0
	if in.Beam.Kind == beam.PlaneWave && g.Boundary != geometry.BoundaryEscapeAll {
		killRangeSq = core.KillRange * core.KillRange
	}

	f = make([]float64, len(rawF))
	for j, val := range rawF {
		mat := g.Properties[g.Materials[j]]
		denom := v * n * mat.Mua * killRangeSq
		if volumetric {
			denom /= power
		}
		if denom != 0 {
			f[j] = val / denom
		}
	}

	if len(rawImage) == 0 {
		return f, nil
	}

	lLC := 1
	if in.UseLightCollector && in.Collector != nil && !in.Collector.IsFiber() {
		lLC = in.Collector.ResX * in.Collector.ResY
	}

	var imgDenom float64
	if lLC > 1 {
		fieldSize := 0.0
		if in.Collector != nil {
			fieldSize = in.Collector.FieldSize
		}
		imgDenom = (fieldSize * fieldSize / float64(lLC)) * n * killRangeSq
	} else {
		imgDenom = n * killRangeSq
	}
	if volumetric {
		imgDenom /= power
	}

	image = make([]float64, len(rawImage))
	for i, val := range rawImage {
		if imgDenom != 0 {
			image[i] = val / imgDenom
		}
	}
	return f, image
}
