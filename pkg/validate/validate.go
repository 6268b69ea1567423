// Package validate enforces the preflight checks of §7: configuration
// errors are rejected before any worker launches, with every violation
// collected into one descriptive error rather than failing fast on the
// first one, in the manner of the teacher's aggregated PBRT
// scene-loading error wrapping (pkg/loaders/pbrt.go chains %w errors
// rather than stopping at the first malformed directive).
package validate

import (
	"errors"
	"fmt"

	"github.com/ahewitt/mcvox/pkg/beam"
	"github.com/ahewitt/mcvox/pkg/collector"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// Error aggregates every configuration violation found by Config.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	msg := "invalid configuration:"
	for _, v := range e.Violations {
		msg += "\n  - " + v
	}
	return msg
}

// Unwrap lets errors.Is/As see through to a plain errors.Join of the
// individual violations, for callers that want to inspect them
// programmatically instead of parsing the message.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = errors.New(v)
	}
	return errs
}

// Grid validates a geometry.Grid in isolation: positive voxel edges, a
// non-empty grid, a non-empty material table, in-range anisotropy, and
// RI >= 1.
func Grid(g *geometry.Grid) []string {
	var v []string
	if g == nil {
		return []string{"grid is required"}
	}
	if g.Dx <= 0 || g.Dy <= 0 || g.Dz <= 0 {
		v = append(v, fmt.Sprintf("voxel edges must be positive, got (%g, %g, %g)", g.Dx, g.Dy, g.Dz))
	}
	if g.Nx <= 0 || g.Ny <= 0 || g.Nz <= 0 {
		v = append(v, fmt.Sprintf("grid size must be positive, got (%d, %d, %d)", g.Nx, g.Ny, g.Nz))
	}
	if len(g.Properties) == 0 {
		v = append(v, "material property table is empty")
	}
	for idx, m := range g.Properties {
		if m.G < -1 || m.G > 1 {
			v = append(v, fmt.Sprintf("material %d: anisotropy g=%g out of range [-1,1]", idx, m.G))
		}
	}
	if g.Nz > 0 && len(g.RefractiveIdx) != g.Nz {
		v = append(v, fmt.Sprintf("refractive index table has %d entries, expected nz=%d", len(g.RefractiveIdx), g.Nz))
	}
	for idx, ri := range g.RefractiveIdx {
		if ri < 1 {
			v = append(v, fmt.Sprintf("refractive index at slice %d is %g, must be >= 1", idx, ri))
		}
	}
	if g.Boundary < geometry.BoundaryNone || g.Boundary > geometry.BoundaryEscapeTop {
		v = append(v, fmt.Sprintf("boundary type %d out of range", int(g.Boundary)))
	}
	return v
}

// Beam validates a beam.Beam in isolation: a unit propagation direction
// and, for a volumetric source, a non-trivial cumulative distribution.
func Beam(b *beam.Beam) []string {
	var v []string
	if b == nil {
		return []string{"beam is required"}
	}
	if b.Kind != beam.VolumetricSource {
		if d := b.U.Length(); d < 1e-9 || (d-1) > 1e-6 || (1-d) > 1e-6 {
			v = append(v, fmt.Sprintf("beam direction must be a unit vector, got length %g", d))
		}
	}
	if b.Kind == beam.VolumetricSource {
		if len(b.Source) < 2 {
			v = append(v, "volumetric source distribution must have at least one voxel")
		} else {
			allZero := true
			for _, s := range b.Source {
				if s != 0 {
					allZero = false
					break
				}
			}
			if allZero {
				v = append(v, "volumetric source distribution is all zero")
			}
			if b.Source[0] != 0 {
				v = append(v, "volumetric source distribution must start at 0")
			}
			last := b.Source[len(b.Source)-1]
			if last < 1-1e-9 || last > 1+1e-9 {
				v = append(v, fmt.Sprintf("volumetric source distribution must end at 1, got %g", last))
			}
			for i := 1; i < len(b.Source); i++ {
				if b.Source[i] < b.Source[i-1] {
					v = append(v, "volumetric source distribution must be non-decreasing")
					break
				}
			}
		}
	}
	return v
}

// LightCollector validates a collector.Collector, when in use.
func LightCollector(c *collector.Collector) []string {
	var v []string
	if c == nil {
		return []string{"light collector is required when useLightCollector is set"}
	}
	if !c.IsFiber() {
		if c.ResX <= 0 || c.ResY <= 0 {
			v = append(v, fmt.Sprintf("objective resX/resY must be positive, got (%d, %d)", c.ResX, c.ResY))
		}
	}
	if c.ResT > 1 && c.TEnd <= c.TStart {
		v = append(v, fmt.Sprintf("tEnd (%g) must be greater than tStart (%g) when resT>1", c.TEnd, c.TStart))
	}
	return v
}

// Config validates the full input triple and, if any violation is
// found, returns a single *Error listing all of them. useLightCollector
// gates whether lc is required.
func Config(g *geometry.Grid, b *beam.Beam, useLightCollector bool, lc *collector.Collector) error {
	var violations []string
	violations = append(violations, Grid(g)...)
	violations = append(violations, Beam(b)...)
	if useLightCollector {
		violations = append(violations, LightCollector(lc)...)
	}
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}
