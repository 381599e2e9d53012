package infinitum

import (
	"log/slog"
	"math"

	"impostor-server/game"
	"impostor-server/paranoia"
	"impostor-server/random"
)

// MirrorWeight is the outlier weight Mirror forces on its target.
const MirrorWeight = 1e12

// Params configures one impostor draw.
type Params struct {
	Category      string
	Count         int
	CoolingFactor float64
	Break         paranoia.Break
	Logger        *slog.Logger
}

// Selection is the outcome of SelectImpostors.
type Selection struct {
	// IDs are the impostor ids in draw order.
	IDs []string
	// Telemetry is the weight breakdown of the first slot, in roster order.
	Telemetry []game.SelectionTelemetry
	// MirrorTarget is the id Mirror forced into the first slot, if any.
	MirrorTarget string
}

type candidate struct {
	player game.Player
	vault  game.InfinityVault
}

// SelectImpostors draws p.Count impostors without replacement. Players in
// quarantine are left out while enough other candidates remain. Weights
// are recomputed before each slot because the synergy penalty depends on
// who has already been drawn. stats is never modified.
func SelectImpostors(players []game.Player, stats map[string]game.InfinityVault, p Params, src random.Source) Selection {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.CoolingFactor == 0 {
		p.CoolingFactor = 1
	}
	count := p.Count
	if count > len(players) {
		count = len(players)
	}

	calc := LeteoSnapshot(stats, players, p.Break.LeteoGrade)
	pool := eligible(players, calc, count)
	entropy := p.Break.Entropy

	var base float64
	for _, c := range pool {
		base += Weight(c.vault, p.Category, p.CoolingFactor, 0, entropy, nil)
	}
	avg := 0.0
	if len(pool) > 0 {
		avg = base / float64(len(pool))
	}

	var sel Selection
	chosen := make(map[string]bool, count)
	for slot := 0; slot < count && len(pool) > 0; slot++ {
		weights := make([]float64, len(pool))
		factors := make([]Factors, len(pool))
		for i, c := range pool {
			factors[i] = Breakdown(c.vault, p.Category, p.CoolingFactor, avg, entropy, src)
			w := factors[i].Final
			if slot > 0 && sharesPartner(c.vault, chosen) {
				w *= SynergyPenalty(len(players))
			}
			weights[i] = w
		}

		switch p.Break.Protocol {
		case game.BreakBlind:
			for i := range weights {
				weights[i] = 100
			}
		case game.BreakMirror:
			if slot == 0 {
				low := lowestFree(pool, weights)
				weights[low] = MirrorWeight
				sel.MirrorTarget = pool[low].player.ID
			}
		}

		idx, degenerate := random.Pick(src, weights)
		if degenerate {
			logger.Warn("degenerate impostor weights, falling back to uniform draw",
				"tag", "infinitum", "slot", slot, "candidates", len(pool))
		}

		if slot == 0 {
			sel.Telemetry = telemetry(pool, factors, weights, idx)
		}
		picked := pool[idx]
		sel.IDs = append(sel.IDs, picked.player.ID)
		chosen[picked.player.ID] = true
		pool = append(pool[:idx:idx], pool[idx+1:]...)
	}
	return sel
}

// LeteoSnapshot returns a copy of stats adjusted for a memory wipe of the
// given grade. Grade 1 and above wipe every roster player's role
// sequence; grade 2 also levels civil streaks to the roster mean. Grade 0
// returns stats unchanged (not copied).
func LeteoSnapshot(stats map[string]game.InfinityVault, players []game.Player, grade int) map[string]game.InfinityVault {
	if grade <= 0 {
		return stats
	}
	out := game.CloneStats(stats)
	var total, known int
	for _, pl := range players {
		key := game.VaultKey(pl.Name)
		v, ok := out[key]
		if !ok {
			continue
		}
		v.SequenceAnalytics.RoleSequence = []bool{}
		out[key] = v
		total += v.Metrics.CivilStreak
		known++
	}
	if grade == 2 && known > 0 {
		mean := int(math.Round(float64(total) / float64(known)))
		for _, pl := range players {
			key := game.VaultKey(pl.Name)
			if v, ok := out[key]; ok {
				v.Metrics.CivilStreak = mean
				out[key] = v
			}
		}
	}
	return out
}

func eligible(players []game.Player, stats map[string]game.InfinityVault, count int) []candidate {
	all := make([]candidate, 0, len(players))
	free := make([]candidate, 0, len(players))
	for _, pl := range players {
		c := candidate{player: pl, vault: game.GetVault(pl.Name, stats)}
		all = append(all, c)
		if c.vault.Metrics.QuarantineRounds == 0 {
			free = append(free, c)
		}
	}
	if len(free) >= count {
		return free
	}
	return all
}

func sharesPartner(v game.InfinityVault, chosen map[string]bool) bool {
	for _, id := range v.SequenceAnalytics.LastImpostorPartners {
		if chosen[id] {
			return true
		}
	}
	return false
}

// lowestFree is the lowest weight outside quarantine, or the lowest
// overall when the whole pool is quarantined.
func lowestFree(pool []candidate, weights []float64) int {
	low := -1
	for i, w := range weights {
		if pool[i].vault.Metrics.QuarantineRounds > 0 {
			continue
		}
		if low < 0 || w < weights[low] {
			low = i
		}
	}
	if low >= 0 {
		return low
	}
	low = 0
	for i, w := range weights {
		if w < weights[low] {
			low = i
		}
	}
	return low
}

func telemetry(pool []candidate, factors []Factors, weights []float64, picked int) []game.SelectionTelemetry {
	var total float64
	for _, w := range weights {
		total += w
	}
	out := make([]game.SelectionTelemetry, len(pool))
	for i, c := range pool {
		prob := 0.0
		if total > 0 {
			prob = weights[i] / total
		}
		out[i] = game.SelectionTelemetry{
			PlayerID:     c.player.ID,
			Name:         c.player.Name,
			BaseWeight:   factors[i].Base,
			RecencyMult:  factors[i].Recency,
			AffinityMult: factors[i].Affinity,
			Entropy:      factors[i].Entropy,
			Noise:        factors[i].Noise,
			FinalWeight:  weights[i],
			Probability:  prob,
			Quarantined:  c.vault.Metrics.QuarantineRounds > 0,
			Selected:     i == picked,
		}
	}
	return out
}
