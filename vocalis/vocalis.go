// Package vocalis decides who opens each round's discussion.
package vocalis

import (
	"unicode/utf8"

	"impostor-server/game"
	"impostor-server/random"
)

const (
	architectExclusion = 0.9
	baseWeight         = 100.0
	neverMultiplier    = 3.0
	jitterLow          = 0.8
	jitterHigh         = 1.2
)

// recency is indexed by position in a most-recent-first list.
var recency = []float64{0.001, 0.05, 0.25}

// SelectStarter picks the starting speaker. In party mode the longest
// name wins, ties broken at random. Otherwise the Architect is excluded
// nine times out of ten and everyone else is weighted against how
// recently they started.
func SelectStarter(players []game.Player, h game.GameHistory, isParty bool, architectID string, src random.Source) game.Player {
	if len(players) == 0 {
		return game.Player{}
	}
	if isParty {
		return longestName(players, src)
	}

	pool := players
	if architectID != "" && len(players) > 1 && random.Chance(src, architectExclusion) {
		pool = make([]game.Player, 0, len(players)-1)
		for _, p := range players {
			if p.ID != architectID {
				pool = append(pool, p)
			}
		}
	}
	return draw(pool, h.LastStartingPlayers, src)
}

// SelectBartender picks the party-mode bartender against LastBartenders,
// using the same recency weighting as the starter.
func SelectBartender(players []game.Player, h game.GameHistory, src random.Source) game.Player {
	if len(players) == 0 {
		return game.Player{}
	}
	return draw(players, h.LastBartenders, src)
}

// Weight returns the pre-jitter weight of a player given a most-recent-first id list.
func Weight(p game.Player, recent []string) float64 {
	mult := neverMultiplier
	for i, id := range recent {
		if id != p.ID {
			continue
		}
		if i < len(recency) {
			mult = recency[i]
		} else {
			mult = 1.0
		}
		break
	}
	return baseWeight*mult + nameOffset(p.Name)
}

func draw(pool []game.Player, recent []string, src random.Source) game.Player {
	weights := make([]float64, len(pool))
	for i, p := range pool {
		weights[i] = Weight(p, recent) * random.Between(src, jitterLow, jitterHigh)
	}
	idx, _ := random.Pick(src, weights)
	return pool[idx]
}

// nameOffset is a small stable tie-breaker in [0, 1).
func nameOffset(name string) float64 {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return float64(sum%100) / 100
}

func longestName(players []game.Player, src random.Source) game.Player {
	longest := 0
	var ties []game.Player
	for _, p := range players {
		n := utf8.RuneCountInString(p.Name)
		switch {
		case n > longest:
			longest = n
			ties = []game.Player{p}
		case n == longest:
			ties = append(ties, p)
		}
	}
	return ties[src.Intn(len(ties))]
}
