// Package beam models the light source B as a tagged union over the
// supported launch profiles (pencil, isotropic point, plane wave, four
// Gaussian/top-hat focus/far-field combinations, LG01, and a precomputed
// volumetric source), and samples an initial photon state for each.
//
// Modeled as a sum type with dispatch on Kind, the way the teacher's
// codebase favors named variants over integer-coded switches (see the
// design notes): the source record's numeric beamType becomes the named
// Kind constants below.
package beam

import (
	"fmt"

	"github.com/ahewitt/mcvox/pkg/core"
)

// Kind names one of the supported launch profiles.
type Kind int

const (
	Pencil Kind = iota
	IsotropicPoint
	PlaneWave
	GaussianFocusGaussianFar
	GaussianFocusTophatFar
	TophatFocusGaussianFar
	TophatFocusTophatFar
	LG01
	VolumetricSource
)

func (k Kind) String() string {
	switch k {
	case Pencil:
		return "pencil"
	case IsotropicPoint:
		return "isotropic-point"
	case PlaneWave:
		return "plane-wave"
	case GaussianFocusGaussianFar:
		return "gaussian-focus/gaussian-far"
	case GaussianFocusTophatFar:
		return "gaussian-focus/tophat-far"
	case TophatFocusGaussianFar:
		return "tophat-focus/gaussian-far"
	case TophatFocusTophatFar:
		return "tophat-focus/tophat-far"
	case LG01:
		return "LG01"
	case VolumetricSource:
		return "volumetric-source"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// focusFar reports whether this Kind samples a focal radius and a
// propagation half-angle the way the four Gaussian/top-hat and LG01
// profiles do (§4.2): it's a mixture of a focus-plane radial profile and a
// far-field divergence profile.
func (k Kind) focusFar() bool {
	switch k {
	case GaussianFocusGaussianFar, GaussianFocusTophatFar, TophatFocusGaussianFar, TophatFocusTophatFar, LG01:
		return true
	default:
		return false
	}
}

// Beam is the immutable, shared-by-reference light-source description.
type Beam struct {
	Kind Kind

	Focus core.Vec3 // xFocus, yFocus, zFocus
	U     core.Vec3 // unit direction of propagation
	V     core.Vec3 // unit vector orthonormal to U, spans the focal plane with U x V

	Waist      float64 // cm, focal-plane radius parameter
	Divergence float64 // rad, far-field half-angle parameter
	Power      float64 // W

	// Source, present only for VolumetricSource, is the cumulative
	// distribution over all voxels: Source[0]=0, Source[L]=1,
	// non-decreasing, built from an unnormalized emission density.
	Source []float64
	// SourceNx/Ny/Nz are the voxel-grid dimensions Source indexes into,
	// in x-fastest order, matching geometry.Grid.Index.
	SourceNx, SourceNy, SourceNz int
}
