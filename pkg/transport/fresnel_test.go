package transport

import (
	"math"
	"testing"

	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
)

// TestStepAcrossZObeysSnellOrMirrorLaw drives the z-interface interaction
// at an oblique angle across many random draws and checks that whichever
// branch fires (straight, refract, or reflect), the result is physically
// consistent: refraction follows Snell's law (the lateral components
// scale by n1/n2), and reflection preserves the lateral components and
// flips the sign of u_z.
func TestStepAcrossZObeysSnellOrMirrorLaw(t *testing.T) {
	g := &geometry.Grid{Dx: 1, Dy: 1, Dz: 1, Nx: 4, Ny: 4, Nz: 2, RefractiveIdx: []float64{1.0, 1.33}}

	const u0, u1 = 0.3, 0.0
	u2 := math.Sqrt(1 - u0*u0 - u1*u1)
	eta := 1.0 / 1.33

	for seed := int64(1); seed <= 500; seed++ {
		src := rng.NewSeeded(seed)
		p := &Photon{RI: 1.0}
		i := [3]float64{2, 2, 0.999}
		u := [3]float64{u0, u1, u2}
		D := [3]float64{100, 100, 0.001}
		d := [3]float64{1, 1, 1}

		stepAcrossZ(p, g, &i, &u, &D, d, src)

		lenSq := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
		if math.Abs(lenSq-1) > 1e-9 {
			t.Fatalf("seed %d: |u|^2 = %v, want 1", seed, lenSq)
		}

		if u[2] > 0 {
			// transmitted: straight (eta applies trivially) or refracted.
			lateralOld := math.Hypot(u0, u1)
			lateralNew := math.Hypot(u[0], u[1])
			if lateralOld > 1e-12 {
				scale := lateralNew / lateralOld
				if math.Abs(scale-eta) > 1e-9 && math.Abs(scale-1) > 1e-9 {
					t.Errorf("seed %d: lateral scale = %v, want eta=%v (refract) or 1 (straight)", seed, scale, eta)
				}
			}
		} else {
			if math.Abs(u[0]-u0) > 1e-9 || math.Abs(u[1]-u1) > 1e-9 {
				t.Errorf("seed %d: reflection changed lateral components: (%v,%v) != (%v,%v)", seed, u[0], u[1], u0, u1)
			}
			if math.Abs(math.Abs(u[2])-u2) > 1e-9 {
				t.Errorf("seed %d: reflection changed |u_z|: %v != %v", seed, math.Abs(u[2]), u2)
			}
		}
	}
}

func TestStepAcrossZTotalInternalReflection(t *testing.T) {
	g := &geometry.Grid{Dx: 1, Dy: 1, Dz: 1, Nx: 4, Ny: 4, Nz: 2, RefractiveIdx: []float64{1.4, 1.0}}

	// Large lateral component relative to u_z: going from the denser (1.4)
	// to the rarer (1.0) medium at a steep angle should always total-internally
	// reflect, regardless of the random draw.
	u2 := 0.2
	u0 := math.Sqrt(1 - u2*u2)
	src := rng.NewSeeded(99)

	p := &Photon{RI: 1.4}
	i := [3]float64{2, 2, 0.999}
	u := [3]float64{u0, 0, u2}
	D := [3]float64{100, 100, 0.001}
	d := [3]float64{1, 1, 1}

	stepAcrossZ(p, g, &i, &u, &D, d, src)

	if u[2] > 0 {
		t.Errorf("expected total internal reflection, u_z stayed positive: %v", u[2])
	}
	if math.Abs(u[0]-u0) > 1e-9 {
		t.Errorf("TIR changed lateral component: %v != %v", u[0], u0)
	}
}
