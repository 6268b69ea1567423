package geometry

import "testing"

func newTestGrid() *Grid {
	return &Grid{
		Dx: 0.1, Dy: 0.1, Dz: 0.1,
		Nx: 2, Ny: 2, Nz: 3,
		Boundary:      BoundaryEscapeTop,
		Materials:     []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1},
		Properties:    []Material{{Mua: 0.1, Mus: 10, G: 0.9}, {Mua: 0.2, Mus: 20, G: 0.8}},
		RefractiveIdx: []float64{1.0, 1.33, 1.4},
	}
}

func TestIndexIsXFastest(t *testing.T) {
	g := newTestGrid()
	if i := g.Index(0, 0, 0); i != 0 {
		t.Errorf("Index(0,0,0) = %d, want 0", i)
	}
	if i := g.Index(1, 0, 0); i != 1 {
		t.Errorf("Index(1,0,0) = %d, want 1", i)
	}
	if i := g.Index(0, 1, 0); i != g.Nx {
		t.Errorf("Index(0,1,0) = %d, want %d", i, g.Nx)
	}
	if i := g.Index(0, 0, 1); i != g.Nx*g.Ny {
		t.Errorf("Index(0,0,1) = %d, want %d", i, g.Nx*g.Ny)
	}
}

func TestClampVoxel(t *testing.T) {
	g := newTestGrid()
	ix, iy, iz := g.ClampVoxel(-1, 5, 2)
	if ix != 0 || iy != g.Ny-1 || iz != 2 {
		t.Errorf("ClampVoxel(-1,5,2) = (%d,%d,%d), want (0,%d,2)", ix, iy, iz, g.Ny-1)
	}
}

func TestInside(t *testing.T) {
	g := newTestGrid()
	if !g.Inside(0, 0, 0) {
		t.Error("(0,0,0) should be inside")
	}
	if g.Inside(float64(g.Nx), 0, 0) {
		t.Error("(nx,0,0) should be outside (half-open)")
	}
	if g.Inside(-0.1, 0, 0) {
		t.Error("(-0.1,0,0) should be outside")
	}
}

func TestVoxelVolumeAndCount(t *testing.T) {
	g := newTestGrid()
	if v := g.VoxelVolume(); v != g.Dx*g.Dy*g.Dz {
		t.Errorf("VoxelVolume() = %v, want %v", v, g.Dx*g.Dy*g.Dz)
	}
	if n := g.NumVoxels(); n != g.Nx*g.Ny*g.Nz {
		t.Errorf("NumVoxels() = %v, want %v", n, g.Nx*g.Ny*g.Nz)
	}
}

func TestPropertyAtUsesMaterialLabel(t *testing.T) {
	g := newTestGrid()
	mat, ri := g.PropertyAt(1, 0, 0)
	if mat != g.Properties[1] {
		t.Errorf("PropertyAt(1,0,0) material = %+v, want %+v", mat, g.Properties[1])
	}
	if ri != g.RefractiveIdx[0] {
		t.Errorf("PropertyAt(1,0,0) ri = %v, want %v", ri, g.RefractiveIdx[0])
	}
}
