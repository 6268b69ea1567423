package transport

import (
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/rng"
)

// Roulette applies the variance-preserving termination of §4.7: photons
// below RouletteThreshold survive with probability RouletteChance,
// compensated by a 1/RouletteChance weight boost, or are killed
// otherwise.
func Roulette(p *Photon, src *rng.Source) {
	if p.Weight >= core.RouletteThreshold {
		return
	}
	if src.Float64() <= core.RouletteChance {
		p.Weight *= 1 / core.RouletteChance
	} else {
		p.Alive = false
	}
}
