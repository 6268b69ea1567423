package transport

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
)

func TestSampleHGCosThetaIsotropicWhenGZero(t *testing.T) {
	src := rng.NewSeeded(3)
	const trials = 200000
	samples := make([]float64, trials)
	for i := range samples {
		samples[i] = sampleHGCosTheta(0, src.Float64())
	}
	if avg := stat.Mean(samples, nil); math.Abs(avg) > 0.01 {
		t.Errorf("isotropic <cosθ> = %v, want ~0", avg)
	}
}

func TestSampleHGCosThetaMeanEqualsG(t *testing.T) {
	src := rng.NewSeeded(4)
	const trials = 300000
	for _, g := range []float64{0.5, 0.8, -0.5} {
		samples := make([]float64, trials)
		for i := range samples {
			samples[i] = sampleHGCosTheta(g, src.Float64())
		}
		avg := stat.Mean(samples, nil)
		if math.Abs(avg-g) > 0.01 {
			t.Errorf("g=%v: <cosθ> = %v, want ~%v", g, avg, g)
		}
	}
}

func TestScatterPreservesUnitDirection(t *testing.T) {
	g := &geometry.Grid{Dx: 0.1, Dy: 0.1, Dz: 0.1, Nx: 4, Ny: 4, Nz: 4, RefractiveIdx: []float64{1, 1, 1, 1}}
	src := rng.NewSeeded(5)
	for i := 0; i < 1000; i++ {
		p := &Photon{I: core.NewVec3(1, 1, 1), U: core.NewVec3(0, 0, 1), G: 0.8}
		Scatter(p, g, src)
		if math.Abs(p.U.Length()-1) > 1e-9 {
			t.Fatalf("scattered direction length = %v, want 1", p.U.Length())
		}
		if p.StepLeft <= 0 {
			t.Fatalf("stepLeft = %v, want > 0", p.StepLeft)
		}
	}
}
