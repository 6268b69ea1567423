package collector

import (
	"math"
	"testing"

	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

type fakeAccumulator struct {
	bin    int
	weight float64
	calls  int
}

func (f *fakeAccumulator) AddImage(binIndex int, weight float64) {
	f.bin = binIndex
	f.weight += weight
	f.calls++
}

func testGrid() *geometry.Grid {
	return &geometry.Grid{Dx: 0.01, Dy: 0.01, Dz: 0.01, Nx: 100, Ny: 100, Nz: 100}
}

func TestCollectObjectiveOnAxisHit(t *testing.T) {
	g := testGrid()
	c := &Collector{
		Center:    core.NewVec3(0, 0, -1),
		F:         1,
		Diameter:  1,
		FieldSize: 1,
		ResX:      10,
		ResY:      10,
		ResT:      1,
	}
	acc := &fakeAccumulator{}

	pos := core.NewVec3(float64(g.Nx)/2, float64(g.Ny)/2, 0)
	dir := core.NewVec3(0, 0, -1)
	Collect(pos, dir, 1.0, 0, 1.0, g, c, acc)

	if acc.calls != 1 {
		t.Fatalf("expected exactly one image deposit for an on-axis escaping photon, got %d", acc.calls)
	}
	wantBin := 5 + 5*c.ResX
	if acc.bin != wantBin {
		t.Errorf("bin = %d, want %d (center pixel)", acc.bin, wantBin)
	}
	if acc.weight != 1.0 {
		t.Errorf("deposited weight = %v, want 1.0", acc.weight)
	}
}

func TestCollectRejectsPhotonMovingAway(t *testing.T) {
	g := testGrid()
	c := &Collector{Center: core.NewVec3(0, 0, -1), F: 1, Diameter: 1, FieldSize: 1, ResX: 10, ResY: 10, ResT: 1}
	acc := &fakeAccumulator{}

	pos := core.NewVec3(float64(g.Nx)/2, float64(g.Ny)/2, 0)
	dir := core.NewVec3(0, 0, 1) // moving back into the medium, away from the collector
	Collect(pos, dir, 1.0, 0, 1.0, g, c, acc)

	if acc.calls != 0 {
		t.Errorf("expected no deposit for a photon moving away from the collector, got %d calls", acc.calls)
	}
}

func TestCollectFiberUsesActualWeight(t *testing.T) {
	g := testGrid()
	c := &Collector{Center: core.NewVec3(0, 0, -1), F: Infinite, Diameter: 1, NA: 1, ResT: 1}
	acc := &fakeAccumulator{}

	pos := core.NewVec3(float64(g.Nx)/2, float64(g.Ny)/2, 0)
	dir := core.NewVec3(0, 0, -1)
	const weight = 0.37
	Collect(pos, dir, weight, 0, 1.0, g, c, acc)

	if acc.calls != 1 {
		t.Fatalf("expected exactly one deposit, got %d", acc.calls)
	}
	if math.Abs(acc.weight-weight) > 1e-12 {
		t.Errorf("fiber deposit weight = %v, want %v", acc.weight, weight)
	}
}

func TestIsFiber(t *testing.T) {
	if (&Collector{F: 1}).IsFiber() {
		t.Error("finite focal length reported as fiber")
	}
	if !(&Collector{F: Infinite}).IsFiber() {
		t.Error("Infinite focal length not reported as fiber")
	}
}
