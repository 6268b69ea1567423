package beam

import (
	"math"
	"testing"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
)

func testGrid() *geometry.Grid {
	return &geometry.Grid{
		Dx: 0.1, Dy: 0.1, Dz: 0.1,
		Nx: 20, Ny: 20, Nz: 20,
		Boundary:      geometry.BoundaryEscapeTop,
		Materials:     make([]int, 20*20*20),
		Properties:    []geometry.Material{{Mua: 0.1, Mus: 10, G: 0.9}},
		RefractiveIdx: constFloats(20, 1.33),
	}
}

func constFloats(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestLaunchPencilIsUnitWeight(t *testing.T) {
	g := testGrid()
	b := &Beam{Kind: Pencil, Focus: core.NewVec3(1, 1, 1), U: core.NewVec3(0, 0, 1)}
	src := rng.NewSeeded(1)

	p, err := Launch(b, g, src)
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if p.Weight != 1 {
		t.Errorf("launch weight = %v, want 1", p.Weight)
	}
	if math.Abs(p.U.Length()-1) > 1e-9 {
		t.Errorf("launch direction length = %v, want 1", p.U.Length())
	}
	if p.StepLeft <= 0 {
		t.Errorf("stepLeft = %v, want > 0", p.StepLeft)
	}
}

func TestLaunchIsotropicPointDirectionsAreUnitAndVaried(t *testing.T) {
	g := testGrid()
	b := &Beam{Kind: IsotropicPoint, Focus: core.NewVec3(1, 1, 1)}
	src := rng.NewSeeded(2)

	seen := map[core.Vec3]bool{}
	for i := 0; i < 200; i++ {
		p, err := Launch(b, g, src)
		if err != nil {
			t.Fatalf("Launch returned error: %v", err)
		}
		if math.Abs(p.U.Length()-1) > 1e-9 {
			t.Fatalf("direction length = %v, want 1", p.U.Length())
		}
		seen[p.U] = true
	}
	if len(seen) < 100 {
		t.Errorf("isotropic launch produced only %d distinct directions out of 200 draws", len(seen))
	}
}

func TestLaunchVolumetricSourceRespectsDistribution(t *testing.T) {
	g := testGrid()
	// Two voxels of equal weight: source[0]=0, source[1]=0.5, source[2]=1.
	b := &Beam{
		Kind:     VolumetricSource,
		Source:   []float64{0, 0.5, 1},
		SourceNx: 2, SourceNy: 1, SourceNz: 1,
	}
	src := rng.NewSeeded(3)

	var inFirst, inSecond int
	for i := 0; i < 2000; i++ {
		p, err := Launch(b, g, src)
		if err != nil {
			t.Fatalf("Launch returned error: %v", err)
		}
		if p.I.X < 1 {
			inFirst++
		} else {
			inSecond++
		}
	}
	if inFirst == 0 || inSecond == 0 {
		t.Fatalf("expected draws from both voxels, got first=%d second=%d", inFirst, inSecond)
	}
	ratio := float64(inFirst) / float64(inFirst+inSecond)
	if math.Abs(ratio-0.5) > 0.05 {
		t.Errorf("first-voxel fraction = %v, want ~0.5", ratio)
	}
}

func TestLaunchVolumetricSourceRejectsEmptyDistribution(t *testing.T) {
	g := testGrid()
	b := &Beam{Kind: VolumetricSource}
	src := rng.NewSeeded(4)
	if _, err := Launch(b, g, src); err == nil {
		t.Error("expected an error launching a volumetric source with no distribution")
	}
}

func TestLG01RadiusIsFinitePositive(t *testing.T) {
	src := rng.NewSeeded(5)
	for i := 0; i < 1000; i++ {
		r, err := lg01Radius(0.05, src)
		if err != nil {
			t.Fatalf("lg01Radius returned error: %v", err)
		}
		if math.IsNaN(r) || r < 0 {
			t.Fatalf("lg01Radius = %v, want finite and non-negative", r)
		}
	}
}
