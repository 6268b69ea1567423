// Package rng provides each worker's independent 53-bit uniform-deviate
// stream. Grounded on the teacher's per-goroutine *rand.Rand pattern
// (pkg/renderer/progressive.go seeds one *rand.Rand per tile; here one is
// seeded per transport worker instead), so no locking is ever needed on
// the hot path.
package rng

import (
	"math/rand"
	"time"
)

// Source draws uniform deviates in the open-closed interval (0,1]. A
// Source is owned by exactly one worker goroutine for its entire
// lifetime and is never shared.
type Source struct {
	r *rand.Rand
}

// New seeds an independent stream for worker index i, combining the
// wall-clock start with the index so that no two workers ever share a
// stream, per the RNG contract in the design notes.
func New(workerIndex int) *Source {
	seed := time.Now().UnixNano() ^ int64(uint64(workerIndex)*0x9E3779B97F4A7C15)
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// NewSeeded builds a stream from an explicit seed, for reproducible tests.
func NewSeeded(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform deviate in (0,1]. math/rand's Float64 returns
// [0,1), so a zero draw is remapped to 1 instead: callers rely on this
// never being zero to protect -ln(u) and similar divisions.
func (s *Source) Float64() float64 {
	u := s.r.Float64()
	if u == 0 {
		return 1
	}
	return u
}

// Intn returns a uniform integer in [0,n).
func (s *Source) Intn(n int) int {
	return s.r.Intn(n)
}
