// Package infinitum turns each player's vault into a selection weight and
// draws the round's impostors from those weights.
package infinitum

import (
	"math"

	"impostor-server/game"
	"impostor-server/random"
)

const (
	// NewPlayerWeight is the flat weight of a player with no sessions.
	NewPlayerWeight = 100.0
	// QuarantineWeight keeps a cooling-down player technically selectable.
	QuarantineWeight = 0.01
	// NoiseFactor scales the tie-breaking noise against the pool average.
	NoiseFactor = 0.3
	// CoolingFactor dampens streak growth while a break protocol cools down.
	CoolingFactor = 0.5

	minImpostorRatio = 0.01
	affinityPenalty  = 0.8
)

// recencyPenalty is indexed by how many rounds ago the player was last impostor.
var recencyPenalty = [...]float64{1: 0.05, 2: 0.30, 3: 0.60}

// Factors is the breakdown of one weight computation.
type Factors struct {
	Base     float64 `json:"base"`
	Recency  float64 `json:"recency"`
	Affinity float64 `json:"affinity"`
	Entropy  float64 `json:"entropy"`
	Noise    float64 `json:"noise"`
	Final    float64 `json:"final"`
}

// Breakdown computes the weight of a vault for category. entropy blends
// the history-driven weight toward a flat 100 (1.0 ignores history).
// Noise in [0, avgWeightEstimate*NoiseFactor) is added when src is non-nil.
func Breakdown(v game.InfinityVault, category string, coolingFactor, avgWeightEstimate, entropy float64, src random.Source) Factors {
	f := Factors{Recency: 1, Affinity: 1, Entropy: entropy}
	if v.Metrics.QuarantineRounds > 0 {
		f.Final = QuarantineWeight
		return f
	}
	if v.IsNew() {
		f.Base = NewPlayerWeight
		f.Final = NewPlayerWeight
		return f
	}

	streak := float64(v.Metrics.CivilStreak) * coolingFactor
	f.Base = 100 * math.Log(streak+2) / math.Max(v.Metrics.ImpostorRatio, minImpostorRatio)

	for ago := 1; ago < len(recencyPenalty); ago++ {
		if v.WasImpostorAgo(ago) {
			f.Recency = recencyPenalty[ago]
			break
		}
	}
	if stat, ok := v.CategoryDNA[category]; ok && stat.TimesAsImpostor > 0 {
		f.Affinity = affinityPenalty
	}

	w := f.Base * f.Recency * f.Affinity
	w = w*(1-entropy) + 100*entropy
	if src != nil && avgWeightEstimate > 0 {
		f.Noise = src.Float64() * avgWeightEstimate * NoiseFactor
	}
	f.Final = w + f.Noise
	return f
}

// Weight is Breakdown reduced to its final value.
func Weight(v game.InfinityVault, category string, coolingFactor, avgWeightEstimate, entropy float64, src random.Source) float64 {
	return Breakdown(v, category, coolingFactor, avgWeightEstimate, entropy, src).Final
}

// SynergyPenalty is applied to a candidate who shared the impostor role
// with an already selected player last time.
func SynergyPenalty(groupSize int) float64 {
	return math.Max(0.1, 1-float64(groupSize)/10)
}

// CoolingFor returns the streak dampening factor for a history.
func CoolingFor(h game.GameHistory) float64 {
	if h.CoolingDownRounds > 0 {
		return CoolingFactor
	}
	return 1
}
