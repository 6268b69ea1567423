package sim

import (
	"math"
	"sync/atomic"
)

// Tallies holds the raw accumulated fluence-deposition (F) and image
// tallies shared by every worker. Both are written only via atomic
// scalar adds (§5): the additions commute, so the order workers race in
// does not affect the sum, modulo floating-point non-associativity,
// which the design accepts.
//
// Go has no atomic float64 add, so each bucket is stored as the raw bit
// pattern of its float64 value behind a compare-and-swap retry loop —
// the standard idiom for lock-free float accumulation, grounded on the
// same "shared array, non-overlapping or CAS-protected writes" shape the
// teacher uses for its pixel-statistics array (pkg/renderer/stats.go),
// generalized here to overlapping writers since any worker may deposit
// into any voxel.
type Tallies struct {
	f     []atomic.Uint64
	image []atomic.Uint64
}

// NewTallies allocates zeroed F and Image tallies of the given lengths.
// An imageLen of 0 means no light collector is configured.
func NewTallies(fLen, imageLen int) *Tallies {
	return &Tallies{
		f:     make([]atomic.Uint64, fLen),
		image: make([]atomic.Uint64, imageLen),
	}
}

func atomicAddFloat64(slot *atomic.Uint64, delta float64) {
	for {
		old := slot.Load()
		newVal := math.Float64bits(math.Float64frombits(old) + delta)
		if slot.CompareAndSwap(old, newVal) {
			return
		}
	}
}

// AddAbsorption implements transport.Accumulator.
func (t *Tallies) AddAbsorption(voxelIndex int, amount float64) {
	atomicAddFloat64(&t.f[voxelIndex], amount)
}

// AddImage implements collector.Accumulator.
func (t *Tallies) AddImage(binIndex int, weight float64) {
	atomicAddFloat64(&t.image[binIndex], weight)
}

// F returns a plain float64 copy of the accumulated volumetric tally,
// safe to read once all workers have joined.
func (t *Tallies) F() []float64 {
	return snapshot(t.f)
}

// Image returns a plain float64 copy of the accumulated image tally.
func (t *Tallies) Image() []float64 {
	return snapshot(t.image)
}

func snapshot(src []atomic.Uint64) []float64 {
	out := make([]float64, len(src))
	for i := range src {
		out[i] = math.Float64frombits(src[i].Load())
	}
	return out
}
