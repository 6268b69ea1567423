package sim

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahewitt/mcvox/pkg/beam"
	"github.com/ahewitt/mcvox/pkg/collector"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/rng"
	"github.com/ahewitt/mcvox/pkg/transport"
)

// progressInterval is how often the designated reporting goroutine
// samples elapsed time and calls the host's progress callback.
const progressInterval = 500 * time.Millisecond

// driver runs the fixed-size worker pool of §5: each worker owns its own
// photon and *rng.Source for its entire life and races no other worker
// except through the atomic tallies, until a shared stop flag or ctx is
// tripped. Grounded on the teacher's WorkerPool (pkg/renderer/
// worker_pool.go), adapted from a tile-task queue (bounded, disjoint
// work items) to an unbounded launch loop (photon count is not known in
// advance, only a wall-clock budget), so there is no task channel — each
// worker simply loops launching photons until told to stop.
type driver struct {
	in       Input
	opts     Options
	g        *geometry.Grid
	b        *beam.Beam
	lc       *collector.Collector
	tallies  *Tallies
	stop     atomic.Bool
	launched atomic.Int64
}

func newDriver(in Input, opts Options, tallies *Tallies) *driver {
	return &driver{
		in:      in,
		opts:    opts,
		g:       in.Grid,
		b:       in.Beam,
		lc:      in.Collector,
		tallies: tallies,
	}
}

func (d *driver) numWorkers() int {
	if d.opts.NumWorkers > 0 {
		return d.opts.NumWorkers
	}
	n := runtime.NumCPU()
	if !d.in.UseAllCPUs {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// run launches the worker pool and blocks until the simulation time
// elapses or ctx is canceled. A non-positive SimulationTime fires the
// deadline immediately, so each worker still completes whichever photon
// it is mid-flight on before stop is observed.
func (d *driver) run(ctx context.Context) (int64, int, error) {
	numWorkers := d.numWorkers()
	deadline := time.Duration(d.in.SimulationTime * float64(time.Minute))

	if d.opts.Logger != nil {
		d.opts.Logger.Printf("starting %d workers for %v\n", numWorkers, deadline)
	}

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			if err := d.workerLoop(workerIndex); err != nil {
				errs <- err
			}
		}(w)
	}

	reportDone := make(chan struct{})
	go d.reportProgress(ctx, deadline, reportDone)

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	d.stop.Store(true)
	close(reportDone)

	wg.Wait()
	close(errs)

	if d.opts.Logger != nil {
		d.opts.Logger.Printf("stopped: %d photons launched across %d workers\n", d.launched.Load(), numWorkers)
	}

	if ctx.Err() != nil {
		return d.launched.Load(), numWorkers, ctx.Err()
	}
	for err := range errs {
		if err != nil {
			return d.launched.Load(), numWorkers, err
		}
	}
	return d.launched.Load(), numWorkers, nil
}

// reportProgress is the single goroutine permitted to call
// Options.OnProgress, sampling elapsed wall time against deadline on a
// fixed tick, per the design notes' single-writer progress rule.
func (d *driver) reportProgress(ctx context.Context, deadline time.Duration, done <-chan struct{}) {
	if d.opts.OnProgress == nil {
		return
	}
	start := time.Now()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			frac := 1.0
			if deadline > 0 {
				frac = float64(time.Since(start)) / float64(deadline)
			}
			if frac > 1 {
				frac = 1
			}
			d.opts.OnProgress(frac)
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

// workerLoop launches and fully transports photons one at a time until
// the shared stop flag is raised, implementing the per-photon loop:
// launch, then repeated {step, boundary check, roulette, scatter} until
// the photon dies or escapes.
func (d *driver) workerLoop(workerIndex int) error {
	src := rng.New(workerIndex)
	for !d.stop.Load() {
		if err := d.runOnePhoton(src); err != nil {
			return err
		}
		d.launched.Add(1)
	}
	return nil
}

func (d *driver) runOnePhoton(src *rng.Source) error {
	p, err := beam.Launch(d.b, d.g, src)
	if err != nil {
		return err
	}
	p.RefreshProperties(d.g)

	for p.Alive {
		transport.Step(p, d.g, src, d.tallies)

		if !p.SameVoxel {
			pos, dir, weight, t, ri := p.I, p.U, p.Weight, p.Time, p.RI
			p.RefreshProperties(d.g)
			escaped := transport.ApplyBoundary(p, d.g)
			if escaped && d.in.UseLightCollector {
				collector.Collect(pos, dir, weight, t, ri, d.g, d.lc, d.tallies)
			}
			if !p.Alive {
				break
			}
		}

		if p.StepLeft <= 0 {
			if !d.opts.DisableRoulette {
				transport.Roulette(p, src)
			}
			if p.Alive {
				transport.Scatter(p, d.g, src)
			}
		}
	}
	return nil
}
