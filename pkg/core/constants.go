package core

// Physical and configuration constants shared across the transport engine.
const (
	// SpeedOfLight is c in cm/s, used to convert optical path length to time of flight.
	SpeedOfLight = 2.9979245800e10

	// KillRange is the envelope, in grid-size multiples, beyond which a photon
	// under the "none" or "escape-top" boundary policies is considered
	// unrecoverable and killed outright rather than tracked further.
	KillRange = 6.0

	// RouletteThreshold is the photon weight below which Russian roulette is applied.
	RouletteThreshold = 0.01

	// RouletteChance is the survival probability used by Russian roulette.
	RouletteChance = 0.1
)
