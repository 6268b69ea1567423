// Package sim wires the geometry, beam, and light-collector packages
// together into the parallel driver, the shared tallies, and the final
// normalization pass, and defines the library's public Input/Output
// contract (§6).
package sim

import (
	"github.com/ahewitt/mcvox/pkg/beam"
	"github.com/ahewitt/mcvox/pkg/collector"
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
)

// Input is the complete, host-supplied description of one simulation
// run, per §6.
type Input struct {
	SilentMode     bool
	UseAllCPUs     bool
	SimulationTime float64 // minutes

	Grid *geometry.Grid
	Beam *beam.Beam

	UseLightCollector bool
	Collector         *collector.Collector
}

// Options carries run-time knobs that are not part of the physical
// Input record: the logger to report progress through, and an optional
// progress callback for a host's interactive display.
type Options struct {
	Logger     core.Logger
	NumWorkers int // 0 = auto-detect per UseAllCPUs
	OnProgress func(fractionComplete float64)

	// DisableRoulette turns off the §4.7 Russian roulette termination.
	// Roulette runs by default, as §4.7 requires; this exists only for
	// the energy-conservation test of §8, which needs every photon to
	// either escape or be fully absorbed with no stochastic termination.
	DisableRoulette bool
}

// Output is the complete result of one simulation run, per §6.
type Output struct {
	F        []float64 // matches Grid's M dimensions, x-fastest
	Image    []float64 // (ResX, ResY, ResT) for an objective, ResT alone for a fiber; nil without a collector
	NPhotons int64
	NThreads int
}
