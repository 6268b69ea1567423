package sim

import (
	"context"
	"fmt"

	"github.com/ahewitt/mcvox/pkg/collector"
	"github.com/ahewitt/mcvox/pkg/validate"
)

// Run executes one complete simulation: it validates in, runs the
// parallel driver to exhaustion of in.SimulationTime or ctx, and
// normalizes the accumulated tallies into the returned Output, per §6.
//
// Cancellation through ctx is not reported as an error: the partially
// accumulated tallies are normalized against the photon count actually
// launched and returned, per §7.
func Run(ctx context.Context, in Input, opts Options) (Output, error) {
	if err := validate.Config(in.Grid, in.Beam, in.UseLightCollector, in.Collector); err != nil {
		return Output{}, err
	}

	imageLen := 0
	if in.UseLightCollector {
		imageLen = imageTallyLen(in.Collector)
	}
	tallies := NewTallies(in.Grid.NumVoxels(), imageLen)

	d := newDriver(in, opts, tallies)
	nPhotons, nThreads, err := d.run(ctx)
	if err != nil && ctx.Err() == nil {
		return Output{}, fmt.Errorf("mcvox: simulation failed: %w", err)
	}
	if nPhotons == 0 {
		nPhotons = 1 // avoid dividing the normalizer by zero on an empty run
	}

	f, image := normalize(tallies.F(), tallies.Image(), in, nPhotons)

	return Output{
		F:        f,
		Image:    image,
		NPhotons: nPhotons,
		NThreads: nThreads,
	}, nil
}

// imageTallyLen computes the flat length of the Image tally: (resX *
// resY * resT) for an objective, or resT alone for a fiber, which has
// no spatial resolution (§4.6).
func imageTallyLen(lc *collector.Collector) int {
	if lc == nil {
		return 0
	}
	resT := lc.ResT
	if resT < 1 {
		resT = 1
	}
	if lc.IsFiber() {
		return resT
	}
	return lc.ResX * lc.ResY * resT
}
